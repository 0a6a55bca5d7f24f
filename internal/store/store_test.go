package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"letraz-autoapply/internal/config"
	"letraz-autoapply/pkg/models"
)

func record(jobID string, outcome models.ApplyOutcome, at time.Time) models.ApplicationRecord {
	return models.ApplicationRecord{
		JobID:       jobID,
		Link:        "https://www.linkedin.com/jobs/view/" + jobID + "/",
		Title:       "Go Engineer",
		Company:     "Acme",
		Outcome:     outcome,
		RunID:       "run-1",
		AttemptedAt: at,
	}
}

// exerciseStore checks the behaviour every ledger implementation shares
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	applied, err := s.HasApplied(ctx, "100")
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, s.Record(ctx, record("100", models.OutcomeDryRun, base)))
	require.NoError(t, s.Record(ctx, record("200", models.OutcomeNoEasyApply, base.Add(time.Minute))))

	failed := record("300", models.OutcomeFailed, base.Add(2*time.Minute))
	failed.Error = "Submit button not found"
	require.NoError(t, s.Record(ctx, failed))

	for _, key := range []string{"100", "200", "300"} {
		applied, err := s.HasApplied(ctx, key)
		require.NoError(t, err)
		assert.False(t, applied, "only submitted attempts count: %s", key)
	}

	require.NoError(t, s.Record(ctx, record("100", models.OutcomeSubmitted, base.Add(3*time.Minute))))
	applied, err = s.HasApplied(ctx, "100")
	require.NoError(t, err)
	assert.True(t, applied)

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "100", recent[0].JobID)
	assert.Equal(t, models.OutcomeSubmitted, recent[0].Outcome)
	assert.True(t, base.Add(3*time.Minute).Equal(recent[0].AttemptedAt))
	assert.Equal(t, "300", recent[1].JobID)
	assert.Equal(t, "Submit button not found", recent[1].Error)
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "applications.db"))
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, record("42", models.OutcomeSubmitted, time.Now())))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	applied, err := s.HasApplied(ctx, "42")
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(context.Background(), RedisOptions{
		URL:       "redis://" + mr.Addr(),
		Timeout:   time.Second,
		KeyPrefix: "test",
	})
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)

	members, err := mr.Members("test:applied")
	require.NoError(t, err)
	assert.Equal(t, []string{"100"}, members)
}

func TestRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(context.Background(), RedisOptions{URL: "redis://" + addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	cfg := config.Default()

	cfg.Store.Driver = "none"
	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, s)

	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "ledger.db")
	s, err = New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	cfg.Store.Driver = "postgres"
	_, err = New(context.Background(), cfg)
	assert.Error(t, err)
}
