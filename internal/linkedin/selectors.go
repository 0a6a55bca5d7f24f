// Package linkedin holds the LinkedIn-specific selectors, in-page scripts and
// search URL helpers used by discovery and the application driver.
package linkedin

// SelectorSet groups the CSS selectors the automation relies on
type SelectorSet struct {
	// Search form
	KeywordInput  string
	LocationInput string
	SearchSubmit  string

	// Results listing
	ResultCountText   string
	ResultItem        string
	ResultItemLink    string
	ResultItemCompany string
	JobDescription    string

	// Easy apply
	EasyApplyButton string
	Modal           string
	NextButton      string
	SubmitButton    string
	FormError       string
	HomeCity        string
	Phone           string
	DocumentUpload  string
	FollowCompany   string
}

// Selectors is the selector set for the logged-in LinkedIn UI
var Selectors = SelectorSet{
	KeywordInput:  `input[id*="jobs-search-box-keyword-id"]`,
	LocationInput: `input[id*="jobs-search-box-location-id"]`,
	SearchSubmit:  "button.jobs-search-box__submit-button",

	ResultCountText:   "small.jobs-search-results-list__text",
	ResultItem:        ".jobs-search-results-list li.jobs-search-results__list-item",
	ResultItemLink:    "a.job-card-list__title",
	ResultItemCompany: "div.job-card-container__company-name, a.job-card-container__company-name",
	JobDescription:    "div.jobs-description-content > div.jobs-description-content__text > div.mt4 > span",

	EasyApplyButton: "button.jobs-apply-button",
	Modal:           ".jobs-easy-apply-modal",
	NextButton:      ".jobs-easy-apply-modal footer button[aria-label*='next'], footer button[aria-label*='Review']",
	SubmitButton:    "button[aria-label*='Submit application']",
	FormError:       "div[id*='error'] div[class*='error']",
	HomeCity:        ".jobs-easy-apply-modal input[id*='easyApplyFormElement'][id*='city-HOME-CITY']",
	Phone:           ".jobs-easy-apply-modal input[id*='easyApplyFormElement'][id*='phoneNumber']",
	DocumentUpload:  "input[type='file'][id*='jobs-document-upload']",
	FollowCompany:   `input[type="checkbox"]#follow-company-checkbox`,
}
