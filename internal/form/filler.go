// Package form answers and advances the steps of an easy-apply form.
package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"letraz-autoapply/internal/browser"
	"letraz-autoapply/internal/linkedin"
	"letraz-autoapply/internal/logging/types"
	"letraz-autoapply/pkg/models"
)

// ErrUnanswered marks a question the profile has no answer for
var ErrUnanswered = errors.New("no answer for question")

// Filler fills the visible step of the easy-apply modal from a profile.
// It is best effort: every problem is collected and returned joined, and
// nothing already written is undone.
type Filler struct {
	selectors linkedin.SelectorSet
	logger    types.Logger
}

func NewFiller(selectors linkedin.SelectorSet, logger types.Logger) *Filler {
	return &Filler{selectors: selectors, logger: logger}
}

func (f *Filler) Fill(ctx context.Context, session browser.Session, profile *models.ApplicantProfile) error {
	sel := f.selectors
	var errs []error

	if profile.Phone != "" {
		errs = append(errs, f.setIfPresent(ctx, session, sel.Phone, profile.Phone))
	}
	if profile.HomeCity != "" {
		errs = append(errs, f.setIfPresent(ctx, session, sel.HomeCity, profile.HomeCity))
	}
	if profile.CVPath != "" || profile.CoverLetterPath != "" {
		errs = append(errs, f.upload(ctx, session, profile))
	}

	html, err := session.HTML(ctx, sel.Modal)
	if err != nil {
		errs = append(errs, fmt.Errorf("read form: %w", err))
		return errors.Join(errs...)
	}

	actions, unanswered, err := Plan(html, profile)
	if err != nil {
		errs = append(errs, err)
		return errors.Join(errs...)
	}

	for _, a := range actions {
		errs = append(errs, f.apply(ctx, session, a))
	}
	for _, q := range unanswered {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnanswered, q))
	}

	if _, err := session.Evaluate(ctx, linkedin.UncheckJS, sel.FollowCompany); err != nil {
		errs = append(errs, fmt.Errorf("unfollow company: %w", err))
	}

	f.logger.Debug("Form step filled", map[string]interface{}{
		"answered":   len(actions),
		"unanswered": len(unanswered),
	})
	return errors.Join(errs...)
}

func (f *Filler) setIfPresent(ctx context.Context, session browser.Session, selector, value string) error {
	if _, err := session.Query(ctx, selector); err != nil {
		if errors.Is(err, browser.ErrElementNotFound) {
			return nil
		}
		return err
	}
	if _, err := session.Evaluate(ctx, linkedin.SetFieldJS, selector, value); err != nil {
		return fmt.Errorf("set %s: %w", selector, err)
	}
	return nil
}

// upload attaches the CV to the first document slot and the cover letter to
// the second. Steps without upload inputs are left alone.
func (f *Filler) upload(ctx context.Context, session browser.Session, profile *models.ApplicantProfile) error {
	slots, err := session.QueryAll(ctx, f.selectors.DocumentUpload)
	if err != nil {
		return fmt.Errorf("find upload inputs: %w", err)
	}

	var errs []error
	if profile.CVPath != "" && len(slots) > 0 {
		if err := slots[0].SetFiles(ctx, profile.CVPath); err != nil {
			errs = append(errs, fmt.Errorf("upload CV: %w", err))
		}
	}
	if profile.CoverLetterPath != "" && len(slots) > 1 {
		if err := slots[1].SetFiles(ctx, profile.CoverLetterPath); err != nil {
			errs = append(errs, fmt.Errorf("upload cover letter: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (f *Filler) apply(ctx context.Context, session browser.Session, a Action) error {
	var err error
	switch a.Kind {
	case ActionClick:
		_, err = session.Evaluate(ctx, linkedin.ClickByIDJS, a.ID)
	default:
		_, err = session.Evaluate(ctx, linkedin.SetFieldByIDJS, a.ID, a.Value)
	}
	if err != nil {
		return fmt.Errorf("answer %q: %w", a.Question, err)
	}
	return nil
}

// Advancer moves the form to its next step
type Advancer struct {
	selectors linkedin.SelectorSet
	timeout   time.Duration
}

func NewAdvancer(selectors linkedin.SelectorSet, timeout time.Duration) *Advancer {
	return &Advancer{selectors: selectors, timeout: timeout}
}

// Next clicks the next or review button once it appears
func (a *Advancer) Next(ctx context.Context, session browser.Session) error {
	el, err := session.WaitForSelector(ctx, a.selectors.NextButton, browser.WaitOptions{Timeout: a.timeout})
	if err != nil {
		return fmt.Errorf("next button: %w", err)
	}
	return el.Click(ctx)
}
