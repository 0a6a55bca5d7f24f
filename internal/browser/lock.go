package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = "autoapply.lock"

// ErrProfileInUse is returned when another process already drives the profile
var ErrProfileInUse = errors.New("browser profile is in use by another process")

// ProfileLock is an advisory file lock held for as long as a process
// drives a browser profile directory
type ProfileLock struct {
	fl *flock.Flock
}

// AcquireProfileLock takes the lock in dir without blocking
func AcquireProfileLock(dir string) (*ProfileLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	fl := flock.New(filepath.Join(dir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock profile %s: %w", dir, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrProfileInUse, dir)
	}
	return &ProfileLock{fl: fl}, nil
}

// Path returns the lock file path
func (l *ProfileLock) Path() string {
	return l.fl.Path()
}

func (l *ProfileLock) Release() error {
	return l.fl.Unlock()
}
