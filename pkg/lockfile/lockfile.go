// Package lockfile provides a non-blocking advisory file lock used to keep
// overlapping runs of the same job from stepping on each other. The lock is
// a marker file created with O_EXCL; stale locks are reclaimed by age.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/relayops/fleetbridge/pkg/constants"
	"github.com/relayops/fleetbridge/pkg/errors"
)

// StaleAfter is how old a lock file may be before a new run reclaims it.
// Crashed runs leave their lock behind, so age is the only liveness signal.
var StaleAfter = 2 * time.Hour

// Lock is a held advisory lock.
type Lock struct {
	path string
}

// Acquire attempts to take the lock at path without blocking. It returns
// errors.ErrLockHeld when another live run owns it.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", filepath.Dir(path), err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, constants.FilePermissions)
	if os.IsExist(err) {
		if !stale(path) {
			return nil, fmt.Errorf("lock %s: %w", path, errors.ErrLockHeld)
		}
		// Reclaim an abandoned lock and retry once.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errors.WrapIO("delete", path, err)
		}
		file, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, constants.FilePermissions)
		if os.IsExist(err) {
			return nil, fmt.Errorf("lock %s: %w", path, errors.ErrLockHeld)
		}
	}
	if err != nil {
		return nil, errors.WrapIO("create", path, err)
	}

	_, _ = file.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return nil, errors.WrapIO("write", path, err)
	}

	return &Lock{path: path}, nil
}

// Release removes the lock file. Safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}
	path := l.path
	l.path = ""
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("delete", path, err)
	}
	return nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

func stale(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		// Treat a vanished lock as reclaimable.
		return os.IsNotExist(err)
	}
	return time.Since(info.ModTime()) > StaleAfter
}
