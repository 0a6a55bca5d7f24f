package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letraz-autoapply/internal/browser"
	"letraz-autoapply/internal/browser/browsertest"
	"letraz-autoapply/internal/linkedin"
	"letraz-autoapply/internal/logging"
	"letraz-autoapply/pkg/models"
)

const stepHTML = `<div class="jobs-easy-apply-modal">
  <label for="easyApplyFormElement-phoneNumber">Mobile phone number</label>
  <input type="text" id="easyApplyFormElement-phoneNumber">

  <label for="q-go">How many years of work experience do you have with Go?</label>
  <input type="text" id="q-go">

  <label for="q-gcp">How many years of work experience do you have with Google Cloud?</label>
  <input type="number" id="q-gcp">

  <label for="q-salary">Expected salary</label>
  <input type="text" id="q-salary" value="90000">

  <label for="q-why">Why do you want to work here?</label>
  <textarea id="q-why"></textarea>

  <label for="q-german">What is your level of proficiency in German?</label>
  <select id="q-german">
    <option value="Select an option">Select an option</option>
    <option value="Conversational">Conversational</option>
    <option value="Professional">Professional</option>
    <option value="Native or bilingual">Native or bilingual</option>
  </select>

  <fieldset>
    <legend><span>Will you now or in the future require sponsorship for employment visa status?</span></legend>
    <input type="radio" id="visa-yes" value="Yes"><label for="visa-yes">Yes</label>
    <input type="radio" id="visa-no" value="No"><label for="visa-no">No</label>
  </fieldset>

  <fieldset>
    <legend>Are you comfortable commuting to this job's location?</legend>
    <input type="radio" id="commute-yes"><label for="commute-yes">Yes</label>
    <input type="radio" id="commute-no"><label for="commute-no">No</label>
  </fieldset>

  <fieldset>
    <legend>Have you completed the following level of education: Bachelor's Degree?</legend>
    <input type="radio" id="edu-yes" checked><label for="edu-yes">Yes</label>
    <input type="radio" id="edu-no"><label for="edu-no">No</label>
  </fieldset>

  <fieldset>
    <legend>Preferred team</legend>
    <input type="radio" id="team-1"><label for="team-1">Payments platform</label>
    <input type="radio" id="team-2"><label for="team-2">Search</label>
  </fieldset>

  <label for="q-clearance">Do you hold a security clearance?</label>
  <input type="text" id="q-clearance">
</div>`

func testProfile() *models.ApplicantProfile {
	return &models.ApplicantProfile{
		Phone:    "+49 151 0000000",
		HomeCity: "Berlin",
		CVPath:   "/tmp/cv.pdf",
		YearsOfExperience: map[string]int{
			"go":           5,
			"google cloud": 2,
		},
		LanguageProficiency: map[string]string{"german": "Professional"},
		Booleans:            map[string]bool{"commuting": false},
		TextFields:          map[string]string{"want to work here": "I like the product."},
		MultipleChoiceFields: map[string]string{
			"preferred team": "payments",
		},
		RequiresVisaSponsorship: true,
	}
}

func TestPlan(t *testing.T) {
	actions, unanswered, err := Plan(stepHTML, testProfile())
	require.NoError(t, err)

	byID := make(map[string]Action)
	for _, a := range actions {
		byID[a.ID] = a
	}

	assert.Equal(t, "5", byID["q-go"].Value)
	assert.Equal(t, "2", byID["q-gcp"].Value, "longest key wins")
	assert.Equal(t, "I like the product.", byID["q-why"].Value)
	assert.Equal(t, "Professional", byID["q-german"].Value)
	assert.Equal(t, ActionSet, byID["q-german"].Kind)

	assert.Equal(t, ActionClick, byID["visa-yes"].Kind)
	assert.Contains(t, byID, "commute-no")
	assert.Contains(t, byID, "team-1")

	assert.NotContains(t, byID, "easyApplyFormElement-phoneNumber")
	assert.NotContains(t, byID, "q-salary", "prefilled inputs are left alone")
	assert.NotContains(t, byID, "edu-yes")
	assert.NotContains(t, byID, "edu-no")

	assert.Equal(t, []string{"Do you hold a security clearance?"}, unanswered)
}

func TestFiller_Fill(t *testing.T) {
	sel := linkedin.Selectors
	s := browsertest.NewSession()
	s.Set(sel.Modal, &browsertest.Element{HTMLValue: stepHTML})
	s.Set(sel.Phone, &browsertest.Element{})
	cvSlot := &browsertest.Element{}
	s.Set(sel.DocumentUpload, cvSlot)

	var evaluated [][]interface{}
	s.OnEvaluate = func(_ *browsertest.Session, js string, args []interface{}) (interface{}, error) {
		evaluated = append(evaluated, append([]interface{}{js}, args...))
		return true, nil
	}

	f := NewFiller(sel, logging.NewNopLogger())
	err := f.Fill(context.Background(), s, testProfile())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnanswered)
	assert.Contains(t, err.Error(), "security clearance")

	assert.Equal(t, []string{"/tmp/cv.pdf"}, cvSlot.Files())
	assert.Contains(t, evaluated, []interface{}{linkedin.SetFieldJS, sel.Phone, "+49 151 0000000"})
	assert.Contains(t, evaluated, []interface{}{linkedin.SetFieldByIDJS, "q-go", "5"})
	assert.Contains(t, evaluated, []interface{}{linkedin.ClickByIDJS, "visa-yes"})
	assert.Contains(t, evaluated, []interface{}{linkedin.UncheckJS, sel.FollowCompany})

	for _, call := range evaluated {
		assert.NotEqual(t, sel.HomeCity, call[1], "home city input is absent")
	}
}

func TestFiller_Uploads(t *testing.T) {
	sel := linkedin.Selectors
	profile := &models.ApplicantProfile{CVPath: "/tmp/cv.pdf", CoverLetterPath: "/tmp/letter.pdf"}

	fill := func(t *testing.T, s *browsertest.Session, p *models.ApplicantProfile) {
		t.Helper()
		s.Set(sel.Modal, &browsertest.Element{HTMLValue: "<div></div>"})
		f := NewFiller(sel, logging.NewNopLogger())
		require.NoError(t, f.Fill(context.Background(), s, p))
	}

	t.Run("cv and cover letter", func(t *testing.T) {
		s := browsertest.NewSession()
		cv, letter := &browsertest.Element{}, &browsertest.Element{}
		s.Set(sel.DocumentUpload, cv, letter)

		fill(t, s, profile)
		assert.Equal(t, []string{"/tmp/cv.pdf"}, cv.Files())
		assert.Equal(t, []string{"/tmp/letter.pdf"}, letter.Files())
	})

	t.Run("single slot takes the cv only", func(t *testing.T) {
		s := browsertest.NewSession()
		cv := &browsertest.Element{}
		s.Set(sel.DocumentUpload, cv)

		fill(t, s, profile)
		assert.Equal(t, []string{"/tmp/cv.pdf"}, cv.Files())
	})

	t.Run("cover letter without cv", func(t *testing.T) {
		s := browsertest.NewSession()
		cv, letter := &browsertest.Element{}, &browsertest.Element{}
		s.Set(sel.DocumentUpload, cv, letter)

		fill(t, s, &models.ApplicantProfile{CoverLetterPath: "/tmp/letter.pdf"})
		assert.Empty(t, cv.Files())
		assert.Equal(t, []string{"/tmp/letter.pdf"}, letter.Files())
	})

	t.Run("no upload inputs", func(t *testing.T) {
		s := browsertest.NewSession()
		fill(t, s, profile)
		assert.Equal(t, 1, s.Count("queryAll "+sel.DocumentUpload))
	})
}

func TestFiller_MissingModal(t *testing.T) {
	s := browsertest.NewSession()
	f := NewFiller(linkedin.Selectors, logging.NewNopLogger())

	err := f.Fill(context.Background(), s, &models.ApplicantProfile{Phone: "+1 555 0100"})
	assert.ErrorIs(t, err, browser.ErrElementNotFound)
}

func TestAdvancer_Next(t *testing.T) {
	sel := linkedin.Selectors
	s := browsertest.NewSession()
	a := NewAdvancer(sel, 0)

	err := a.Next(context.Background(), s)
	assert.True(t, errors.Is(err, browser.ErrTimeout))

	next := &browsertest.Element{}
	s.Set(sel.NextButton, next)
	require.NoError(t, a.Next(context.Background(), s))
	assert.Equal(t, 1, next.Clicks())
}
