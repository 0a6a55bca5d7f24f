package browser

import (
	"context"
	"testing"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBounded(t *testing.T) {
	t.Run("caller timeout wins", func(t *testing.T) {
		ctx, cancel := bounded(context.Background(), time.Minute, time.Second)
		defer cancel()
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.Greater(t, time.Until(deadline), 30*time.Second)
	})

	t.Run("fallback when no timeout given", func(t *testing.T) {
		ctx, cancel := bounded(context.Background(), 0, time.Second)
		defer cancel()
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.LessOrEqual(t, time.Until(deadline), time.Second)
	})

	t.Run("never unbounded", func(t *testing.T) {
		ctx, cancel := bounded(context.Background(), 0, 0)
		defer cancel()
		_, ok := ctx.Deadline()
		assert.True(t, ok)
	})
}

func TestNewRodSession_DefaultActionTimeout(t *testing.T) {
	assert.Equal(t, DefaultActionTimeout, NewRodSession(nil, 0).actionTimeout)
	assert.Equal(t, 3*time.Second, NewRodSession(nil, 3*time.Second).actionTimeout)
}

func TestClassify(t *testing.T) {
	assert.ErrorIs(t, classify(context.DeadlineExceeded), ErrTimeout)
	assert.ErrorIs(t, classify(context.DeadlineExceeded), context.DeadlineExceeded)
	assert.NotErrorIs(t, classify(context.Canceled), ErrTimeout)
}

// newLocalPage opens a blank page in a locally installed Chrome or Chromium
func newLocalPage(t *testing.T) *rod.Page {
	t.Helper()
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no local Chrome or Chromium")
	}

	l := launcher.New().Bin(bin).Headless(true).NoSandbox(true)
	u, err := l.Launch()
	require.NoError(t, err)

	b := rod.New().ControlURL(u)
	require.NoError(t, b.Connect())
	t.Cleanup(func() {
		_ = b.Close()
		l.Cleanup()
	})

	page, err := b.Page(proto.TargetCreateTarget{})
	require.NoError(t, err)
	return page
}

const coveredPage = `<html><body>
<input id="keywords">
<button id="submit" onclick="document.title = 'clicked'">Submit</button>
<div style="position:fixed;top:0;left:0;width:100vw;height:100vh;z-index:10;background:#fff"></div>
</body></html>`

func TestRodSession_CallsReturnWithoutCallerDeadline(t *testing.T) {
	page := newLocalPage(t)
	require.NoError(t, page.SetDocumentContent(coveredPage))

	s := NewRodSession(page, 2*time.Second)
	ctx := context.Background()

	t.Run("type into a missing element fails at once", func(t *testing.T) {
		start := time.Now()
		err := s.Type(ctx, "#no-such-box", "golang")
		assert.ErrorIs(t, err, ErrElementNotFound)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("type into a covered input", func(t *testing.T) {
		require.NoError(t, s.Type(ctx, "#keywords", "golang"))
		got, err := s.Evaluate(ctx, `() => document.querySelector('#keywords').value`)
		require.NoError(t, err)
		assert.Equal(t, "golang", got)
	})

	t.Run("click a covered button", func(t *testing.T) {
		done := make(chan error, 1)
		go func() { done <- s.Click(ctx, "#submit") }()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("click did not return")
		}
		got, err := s.Evaluate(ctx, `() => document.title`)
		require.NoError(t, err)
		assert.Equal(t, "clicked", got)
	})

	t.Run("wait for a missing element times out", func(t *testing.T) {
		_, err := s.WaitForSelector(ctx, "#never", WaitOptions{})
		assert.ErrorIs(t, err, ErrTimeout)
	})
}
