// Package runner connects discovery to the application driver: it skips
// postings already applied to, paces attempts and records every outcome.
package runner

import (
	"context"
	"sync"
	"time"

	"letraz-autoapply/internal/logging/types"
	"letraz-autoapply/internal/metrics"
	"letraz-autoapply/internal/store"
	"letraz-autoapply/pkg/models"
	"letraz-autoapply/pkg/utils"
)

// PostingSource yields postings one at a time; *discovery.Cursor satisfies it
type PostingSource interface {
	Next(ctx context.Context) bool
	Posting() models.JobPosting
	Err() error
	Stats() models.SearchStats
}

// Applicant applies to one posting; *apply.Applier satisfies it
type Applicant interface {
	Apply(ctx context.Context, link string, profile *models.ApplicantProfile, shouldSubmit bool) (models.ApplyOutcome, error)
}

// Options controls a run
type Options struct {
	RunID        string
	ShouldSubmit bool
	// MaxApplications stops the run after this many submitted or dry-run
	// applications; zero means no limit
	MaxApplications int
}

// Runner drives one discovery-and-apply run
type Runner struct {
	source    PostingSource
	applicant Applicant
	store     store.Store
	guard     *Guard
	metrics   *metrics.Metrics
	profile   *models.ApplicantProfile
	opts      Options
	logger    types.Logger

	mu    sync.RWMutex
	stats models.RunStats
}

func New(source PostingSource, applicant Applicant, st store.Store, guard *Guard, m *metrics.Metrics, profile *models.ApplicantProfile, opts Options, logger types.Logger) *Runner {
	if opts.RunID == "" {
		opts.RunID = utils.GenerateRunID()
	}
	if st == nil {
		st = store.NopStore{}
	}
	return &Runner{
		source:    source,
		applicant: applicant,
		store:     st,
		guard:     guard,
		metrics:   m,
		profile:   profile,
		opts:      opts,
		logger:    logger.WithField("run_id", opts.RunID),
		stats:     models.RunStats{RunID: opts.RunID},
	}
}

// Run consumes the source until it is exhausted, the application limit is
// reached or ctx ends. The returned stats are valid even with an error.
func (r *Runner) Run(ctx context.Context) (models.RunStats, error) {
	started := time.Now()
	r.logger.Info("Run started", map[string]interface{}{
		"should_submit":    r.opts.ShouldSubmit,
		"max_applications": r.opts.MaxApplications,
	})

	for !r.limitReached() && r.source.Next(ctx) {
		posting := r.source.Posting()
		r.syncSearch()
		r.update(func(s *models.RunStats) { s.Yielded++ })
		if r.metrics != nil {
			r.metrics.PostingsYielded.Inc()
		}

		if err := r.handle(ctx, posting); err != nil {
			return r.finish(started, err)
		}
	}

	r.syncSearch()
	if err := r.source.Err(); err != nil {
		return r.finish(started, err)
	}
	return r.finish(started, ctx.Err())
}

// handle applies to one posting. Only context errors are returned; every
// per-posting problem is logged and recorded instead.
func (r *Runner) handle(ctx context.Context, posting models.JobPosting) error {
	key := utils.JobKey(posting.Link)
	logger := r.logger.WithFields(map[string]interface{}{
		"job_id":  key,
		"title":   posting.Title,
		"company": posting.CompanyName,
	})

	applied, err := r.store.HasApplied(ctx, key)
	if err != nil {
		logger.Warn("Could not check application ledger, applying anyway", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if applied {
		logger.Info("Already applied, skipping posting")
		r.update(func(s *models.RunStats) { s.Skipped++ })
		if r.metrics != nil {
			r.metrics.PostingsSkipped.Inc()
		}
		return nil
	}

	if r.guard != nil {
		if err := r.guard.Wait(ctx); err != nil {
			return err
		}
	}

	start := time.Now()
	outcome, applyErr := r.applicant.Apply(ctx, posting.Link, r.profile, r.opts.ShouldSubmit)
	took := time.Since(start)
	if applyErr != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	r.tally(outcome)
	if r.metrics != nil {
		r.metrics.ObserveApplication(outcome, took)
		r.metrics.CircuitState.Set(float64(r.circuitState()))
	}
	r.observeGuard(outcome, applyErr)

	rec := models.ApplicationRecord{
		JobID:       key,
		Link:        posting.Link,
		Title:       posting.Title,
		Company:     posting.CompanyName,
		Outcome:     outcome,
		RunID:       r.opts.RunID,
		AttemptedAt: start,
	}
	fields := map[string]interface{}{
		"outcome":  outcome.String(),
		"duration": utils.FormatDuration(took),
	}
	if applyErr != nil {
		rec.Error = applyErr.Error()
		fields["error"] = applyErr.Error()
		fields["tier"] = utils.TierOf(applyErr).String()
		logger.Error("Application failed", fields)
	} else {
		logger.Info("Application finished", fields)
	}

	if err := r.store.Record(ctx, rec); err != nil {
		logger.Warn("Failed to record application attempt", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

func (r *Runner) observeGuard(outcome models.ApplyOutcome, err error) {
	if r.guard == nil {
		return
	}
	switch outcome {
	case models.OutcomeSubmitted, models.OutcomeDryRun:
		r.guard.RecordSuccess()
	case models.OutcomeFailed:
		r.guard.RecordFailure(err)
	}
}

func (r *Runner) circuitState() CircuitState {
	if r.guard == nil {
		return CircuitClosed
	}
	return r.guard.State()
}

func (r *Runner) tally(outcome models.ApplyOutcome) {
	r.update(func(s *models.RunStats) {
		switch outcome {
		case models.OutcomeSubmitted:
			s.Submitted++
		case models.OutcomeDryRun:
			s.DryRun++
		case models.OutcomeNoEasyApply:
			s.NoApply++
		default:
			s.Failed++
		}
	})
}

func (r *Runner) limitReached() bool {
	if r.opts.MaxApplications <= 0 {
		return false
	}
	s := r.Stats()
	return s.Submitted+s.DryRun >= r.opts.MaxApplications
}

func (r *Runner) syncSearch() {
	search := r.source.Stats()
	r.update(func(s *models.RunStats) { s.Search = search })
	if r.metrics != nil {
		r.metrics.SetSearch(search)
	}
}

func (r *Runner) update(fn func(*models.RunStats)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.stats)
}

// Stats returns a snapshot; safe to call from other goroutines during Run
func (r *Runner) Stats() models.RunStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// GuardStats exposes the pacing state, or nil without a guard
func (r *Runner) GuardStats() map[string]interface{} {
	if r.guard == nil {
		return nil
	}
	return r.guard.Stats()
}

func (r *Runner) finish(started time.Time, err error) (models.RunStats, error) {
	stats := r.Stats()
	fields := map[string]interface{}{
		"duration":  utils.FormatDuration(time.Since(started)),
		"seen":      stats.Search.Seen,
		"matched":   stats.Search.Matched,
		"yielded":   stats.Yielded,
		"skipped":   stats.Skipped,
		"submitted": stats.Submitted,
		"dry_run":   stats.DryRun,
		"no_apply":  stats.NoApply,
		"failed":    stats.Failed,
	}
	if err != nil {
		fields["error"] = err.Error()
		r.logger.Error("Run ended with error", fields)
		return stats, err
	}
	r.logger.Info("Run finished", fields)
	return stats, nil
}
