package runner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letraz-autoapply/internal/logging"
	"letraz-autoapply/internal/metrics"
	"letraz-autoapply/internal/store"
	"letraz-autoapply/pkg/models"
	"letraz-autoapply/pkg/utils"
)

type sliceSource struct {
	postings []models.JobPosting
	err      error
	pos      int
	calls    int
}

func (s *sliceSource) Next(ctx context.Context) bool {
	s.calls++
	if ctx.Err() != nil || s.pos >= len(s.postings) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceSource) Posting() models.JobPosting { return s.postings[s.pos-1] }
func (s *sliceSource) Err() error                 { return s.err }
func (s *sliceSource) Stats() models.SearchStats {
	return models.SearchStats{Seen: s.pos, Matched: s.pos, Total: len(s.postings)}
}

type result struct {
	outcome models.ApplyOutcome
	err     error
}

type scriptedApplicant struct {
	results map[string]result
	links   []string
	submit  []bool
	onApply func()
}

func (a *scriptedApplicant) Apply(_ context.Context, link string, _ *models.ApplicantProfile, shouldSubmit bool) (models.ApplyOutcome, error) {
	a.links = append(a.links, link)
	a.submit = append(a.submit, shouldSubmit)
	if a.onApply != nil {
		a.onApply()
	}
	if r, ok := a.results[link]; ok {
		return r.outcome, r.err
	}
	if shouldSubmit {
		return models.OutcomeSubmitted, nil
	}
	return models.OutcomeDryRun, nil
}

func posting(id string) models.JobPosting {
	return models.JobPosting{
		Link:        "https://www.linkedin.com/jobs/view/" + id + "/?refId=abc",
		Title:       "Engineer " + id,
		CompanyName: "Acme",
	}
}

func openStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunner_SkipsPostingsAlreadySubmitted(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	require.NoError(t, st.Record(ctx, models.ApplicationRecord{JobID: "1", Link: "x", Outcome: models.OutcomeSubmitted}))
	require.NoError(t, st.Record(ctx, models.ApplicationRecord{JobID: "2", Link: "x", Outcome: models.OutcomeDryRun}))

	source := &sliceSource{postings: []models.JobPosting{posting("1"), posting("2"), posting("3")}}
	applicant := &scriptedApplicant{}
	m := metrics.New()
	r := New(source, applicant, st, nil, m, &models.ApplicantProfile{}, Options{RunID: "run-7", ShouldSubmit: true}, logging.NewNopLogger())

	stats, err := r.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{posting("2").Link, posting("3").Link}, applicant.links)
	assert.Equal(t, []bool{true, true}, applicant.submit)
	assert.Equal(t, models.RunStats{
		RunID:     "run-7",
		Search:    models.SearchStats{Seen: 3, Matched: 3, Total: 3},
		Yielded:   3,
		Skipped:   1,
		Submitted: 2,
	}, stats)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PostingsSkipped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Applications.WithLabelValues("submitted")))

	for _, id := range []string{"2", "3"} {
		applied, err := st.HasApplied(ctx, id)
		require.NoError(t, err)
		assert.True(t, applied, id)
	}

	recent, err := st.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "run-7", recent[0].RunID)
	assert.Equal(t, "Engineer 3", recent[0].Title)
}

func TestRunner_StopsAtMaxApplications(t *testing.T) {
	source := &sliceSource{postings: []models.JobPosting{posting("1"), posting("2"), posting("3")}}
	applicant := &scriptedApplicant{results: map[string]result{
		posting("1").Link: {outcome: models.OutcomeNoEasyApply},
	}}
	r := New(source, applicant, nil, nil, nil, &models.ApplicantProfile{}, Options{MaxApplications: 1}, logging.NewNopLogger())

	stats, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.NoApply)
	assert.Equal(t, 1, stats.DryRun)
	assert.Len(t, applicant.links, 2)
	assert.Equal(t, 2, source.calls, "discovery is not resumed once the limit is hit")
	assert.NotEmpty(t, stats.RunID)
}

func TestRunner_FailuresAreRecordedAndRunContinues(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	source := &sliceSource{postings: []models.JobPosting{posting("1"), posting("2")}}
	applicant := &scriptedApplicant{results: map[string]result{
		posting("1").Link: {outcome: models.OutcomeFailed, err: utils.NewSubmitNotFoundError(posting("1").Link)},
	}}
	guard := NewGuard(GuardConfig{MaxConsecutiveFailures: 3, Cooldown: time.Minute}, logging.NewNopLogger())
	r := New(source, applicant, st, guard, nil, &models.ApplicantProfile{}, Options{}, logging.NewNopLogger())

	stats, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.DryRun)

	recent, err := st.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, models.OutcomeFailed, recent[1].Outcome)
	assert.Contains(t, recent[1].Error, "Submit button not found")

	gs := r.GuardStats()
	assert.Equal(t, int64(1), gs["failures"])
	assert.Equal(t, 0, gs["failure_count"], "the dry run reset the streak")
}

func TestRunner_SourceErrorIsReturned(t *testing.T) {
	setupErr := utils.NewSearchSetupError("no geoId after search", errors.New("timeout"))
	source := &sliceSource{err: setupErr}
	r := New(source, &scriptedApplicant{}, nil, nil, nil, &models.ApplicantProfile{}, Options{}, logging.NewNopLogger())

	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, setupErr)
	assert.True(t, utils.IsFatal(err))
}

func TestRunner_ContextCancelledDuringApply(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := &sliceSource{postings: []models.JobPosting{posting("1"), posting("2")}}
	applicant := &scriptedApplicant{
		onApply: cancel,
		results: map[string]result{posting("1").Link: {outcome: models.OutcomeFailed, err: context.Canceled}},
	}
	r := New(source, applicant, nil, nil, nil, &models.ApplicantProfile{}, Options{}, logging.NewNopLogger())

	stats, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, applicant.links, 1)
	assert.Zero(t, stats.Failed)
}
