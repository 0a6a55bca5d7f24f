package browser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileLock(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")

	first, err := AcquireProfileLock(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "autoapply.lock"), first.Path())

	_, err = AcquireProfileLock(dir)
	assert.ErrorIs(t, err, ErrProfileInUse)

	require.NoError(t, first.Release())

	second, err := AcquireProfileLock(dir)
	require.NoError(t, err)
	require.NoError(t, second.Release())
}
