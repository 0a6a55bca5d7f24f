package models

// ApplicantProfile holds everything the form filler may type into an
// application. Maps are keyed by a fragment of the question text; matching is
// case-insensitive.
type ApplicantProfile struct {
	Phone                   string            `yaml:"phone" json:"phone" validate:"required,phone"`
	Email                   string            `yaml:"email" json:"email" validate:"omitempty,email"`
	HomeCity                string            `yaml:"home_city" json:"home_city"`
	CVPath                  string            `yaml:"cv_path" json:"cv_path" validate:"omitempty,file"`
	CoverLetterPath         string            `yaml:"cover_letter_path" json:"cover_letter_path" validate:"omitempty,file"`
	YearsOfExperience       map[string]int    `yaml:"years_of_experience" json:"years_of_experience" validate:"dive,gte=0"`
	LanguageProficiency     map[string]string `yaml:"language_proficiency" json:"language_proficiency"`
	RequiresVisaSponsorship bool              `yaml:"requires_visa_sponsorship" json:"requires_visa_sponsorship"`
	Booleans                map[string]bool   `yaml:"booleans" json:"booleans"`
	TextFields              map[string]string `yaml:"text_fields" json:"text_fields"`
	MultipleChoiceFields    map[string]string `yaml:"multiple_choice_fields" json:"multiple_choice_fields"`
}

// RunStats summarises one runner invocation
type RunStats struct {
	RunID     string      `json:"run_id"`
	Search    SearchStats `json:"search"`
	Yielded   int         `json:"yielded"`
	Skipped   int         `json:"skipped"`
	Submitted int         `json:"submitted"`
	DryRun    int         `json:"dry_run"`
	NoApply   int         `json:"no_easy_apply"`
	Failed    int         `json:"failed"`
}
