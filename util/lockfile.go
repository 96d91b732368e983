package util

import (
	"context"
	"time"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/gofrs/flock"
)

const defaultLockRetryDelay = 100 * time.Millisecond

// Lockfile is an advisory file lock shared between processes.
type Lockfile struct {
	*flock.Flock
}

func NewLockfile(filename string) *Lockfile {
	return &Lockfile{
		flock.New(filename),
	}
}

// Lock blocks until the exclusive lock is held or the context is done.
func (lockfile *Lockfile) Lock(ctx context.Context) error {
	locked, err := lockfile.TryLockContext(ctx, defaultLockRetryDelay)
	if err != nil {
		return errors.New(err)
	}

	if !locked {
		return errors.Errorf("unable to lock file %q", lockfile.Path())
	}

	return nil
}

// Unlock releases the lock if it is held.
func (lockfile *Lockfile) Unlock() error {
	if !lockfile.Locked() {
		return nil
	}

	return errors.New(lockfile.Flock.Unlock())
}
