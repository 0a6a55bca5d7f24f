// Package apply drives a posting's easy-apply flow from activation to an
// optional submission.
package apply

import (
	"context"
	"errors"
	"time"

	"letraz-autoapply/internal/browser"
	"letraz-autoapply/internal/config"
	"letraz-autoapply/internal/linkedin"
	"letraz-autoapply/internal/logging/types"
	"letraz-autoapply/pkg/models"
	"letraz-autoapply/pkg/utils"
)

// FormFiller answers the questions on the current form step
type FormFiller interface {
	Fill(ctx context.Context, session browser.Session, profile *models.ApplicantProfile) error
}

// StepAdvancer moves the form to its next step
type StepAdvancer interface {
	Next(ctx context.Context, session browser.Session) error
}

// Options tunes an Applier. Zero durations other than SettleDelay fall back
// to DefaultOptions.
type Options struct {
	MaxSteps          int
	StepTimeout       time.Duration
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	EasyApplyTimeout  time.Duration
	ErrorWaitTimeout  time.Duration
	Selectors         linkedin.SelectorSet
}

func DefaultOptions() Options {
	return Options{
		MaxSteps:          5,
		StepTimeout:       45 * time.Second,
		NavigationTimeout: 60 * time.Second,
		SettleDelay:       2 * time.Second,
		EasyApplyTimeout:  10 * time.Second,
		ErrorWaitTimeout:  30 * time.Second,
		Selectors:         linkedin.Selectors,
	}
}

// OptionsFromConfig maps the apply section of cfg onto Options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxSteps:          cfg.Apply.MaxSteps,
		StepTimeout:       cfg.Apply.StepTimeout,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		SettleDelay:       cfg.Apply.SettleDelay,
		EasyApplyTimeout:  cfg.Apply.EasyApplyTimeout,
		ErrorWaitTimeout:  cfg.Apply.ErrorWaitTimeout,
		Selectors:         linkedin.Selectors,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxSteps <= 0 {
		o.MaxSteps = d.MaxSteps
	}
	if o.StepTimeout <= 0 {
		o.StepTimeout = d.StepTimeout
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = d.NavigationTimeout
	}
	if o.EasyApplyTimeout <= 0 {
		o.EasyApplyTimeout = d.EasyApplyTimeout
	}
	if o.ErrorWaitTimeout <= 0 {
		o.ErrorWaitTimeout = d.ErrorWaitTimeout
	}
	if o.Selectors == (linkedin.SelectorSet{}) {
		o.Selectors = d.Selectors
	}
	return o
}

// Applier is the application driver. It shares the session with discovery
// and must not be used concurrently with it.
type Applier struct {
	session  browser.Session
	filler   FormFiller
	advancer StepAdvancer
	opts     Options
	logger   types.Logger
}

func NewApplier(session browser.Session, filler FormFiller, advancer StepAdvancer, opts Options, logger types.Logger) *Applier {
	return &Applier{
		session:  session,
		filler:   filler,
		advancer: advancer,
		opts:     opts.withDefaults(),
		logger:   logger,
	}
}

// Apply opens link, activates easy apply, runs the form for the full step
// budget and submits when shouldSubmit is set.
//
// A posting without easy apply yields OutcomeNoEasyApply and a nil error.
// A form that never reaches its submit control yields OutcomeFailed and a
// hard-tier error.
func (a *Applier) Apply(ctx context.Context, link string, profile *models.ApplicantProfile, shouldSubmit bool) (models.ApplyOutcome, error) {
	logger := a.logger.WithField("link", link)
	sel := a.opts.Selectors

	if err := a.session.Navigate(ctx, link, a.opts.NavigationTimeout); err != nil {
		return models.OutcomeFailed, utils.NewPostingLoadError(link, err)
	}
	if err := utils.Sleep(ctx, a.opts.SettleDelay); err != nil {
		return models.OutcomeFailed, err
	}

	if err := a.activate(ctx); err != nil {
		if ctx.Err() != nil {
			return models.OutcomeFailed, ctx.Err()
		}
		logger.Info("Easy apply button not found in posting", map[string]interface{}{
			"error": utils.NewNoEasyApplyError(link, err).Error(),
		})
		return models.OutcomeNoEasyApply, nil
	}

	if err := utils.Sleep(ctx, a.opts.SettleDelay); err != nil {
		return models.OutcomeFailed, err
	}

	loop := StepLoop{
		MaxIterations: a.opts.MaxSteps,
		StepTimeout:   a.opts.StepTimeout,
		Logger:        logger,
	}
	if _, err := loop.Run(ctx,
		Step{Name: "fill", Run: func(ctx context.Context) error {
			return a.filler.Fill(ctx, a.session, profile)
		}},
		Step{Name: "next", Run: func(ctx context.Context) error {
			return a.advancer.Next(ctx, a.session)
		}},
		Step{Name: "wait_no_error", Run: func(ctx context.Context) error {
			return a.session.WaitForCondition(ctx, linkedin.NoFormErrorJS, a.opts.ErrorWaitTimeout)
		}},
	); err != nil {
		return models.OutcomeFailed, err
	}

	if err := utils.Sleep(ctx, a.opts.SettleDelay); err != nil {
		return models.OutcomeFailed, err
	}

	submit, err := a.session.Query(ctx, sel.SubmitButton)
	if err != nil {
		if ctx.Err() != nil {
			return models.OutcomeFailed, ctx.Err()
		}
		if errors.Is(err, browser.ErrElementNotFound) {
			return models.OutcomeFailed, utils.NewSubmitNotFoundError(link)
		}
		return models.OutcomeFailed, utils.NewSubmitError(link, err)
	}

	if !shouldSubmit {
		logger.Info("Dry run, leaving application unsubmitted")
		return models.OutcomeDryRun, nil
	}

	if err := submit.Click(ctx); err != nil {
		return models.OutcomeFailed, utils.NewSubmitError(link, err)
	}
	logger.Info("Application submitted")
	return models.OutcomeSubmitted, nil
}

// activate waits for the apply button and clicks the one labelled easy apply
func (a *Applier) activate(ctx context.Context) error {
	sel := a.opts.Selectors

	if _, err := a.session.WaitForSelector(ctx, sel.EasyApplyButton, browser.WaitOptions{Timeout: a.opts.EasyApplyTimeout}); err != nil {
		return err
	}
	if err := utils.Sleep(ctx, a.opts.SettleDelay); err != nil {
		return err
	}

	res, err := a.session.Evaluate(ctx, linkedin.ClickEasyApplyJS, sel.EasyApplyButton)
	if err != nil {
		return err
	}
	if clicked, _ := res.(bool); !clicked {
		return browser.ErrElementNotFound
	}
	return nil
}
