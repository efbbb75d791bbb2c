// Package lock guards an output directory against concurrent runs.
package lock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/eucVeteran/video-normalization-pipeline/internal/config"
	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
)

// DirLock is an advisory lock held on a directory for the length of a run.
type DirLock struct {
	dir  string
	lock *flock.Flock
}

// Acquire takes the lock file inside dir without blocking. It fails with a
// KindLocked error when another process holds it.
func Acquire(dir string) (*DirLock, error) {
	path := filepath.Join(dir, config.LockFileName)
	l := flock.New(path)

	ok, err := l.TryLock()
	if err != nil {
		return nil, errors.NewIOError(fmt.Sprintf("acquire lock %s", path), err)
	}
	if !ok {
		return nil, errors.NewLockedError(dir)
	}
	return &DirLock{dir: dir, lock: l}, nil
}

// Path returns the lock file path.
func (d *DirLock) Path() string {
	return d.lock.Path()
}

// Release unlocks. The lock file itself is left in place.
func (d *DirLock) Release() error {
	if d == nil {
		return nil
	}
	return d.lock.Unlock()
}
