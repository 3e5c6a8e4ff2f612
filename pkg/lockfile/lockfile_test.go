package lockfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayops/fleetbridge/pkg/errors"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locks", "dispatch-updates.lock")

	lock, err := Acquire(path)
	require.NoError(t, err)
	assert.Equal(t, path, lock.Path())
	assert.FileExists(t, path)

	require.NoError(t, lock.Release())
	assert.NoFileExists(t, path)

	// Releasing twice is a no-op.
	require.NoError(t, lock.Release())
}

func TestAcquireHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.lock")

	first, err := Acquire(path)
	require.NoError(t, err)
	defer func() { _ = first.Release() }()

	_, err = Acquire(path)
	require.Error(t, err)
	assert.True(t, errors.IsLockHeld(err))
}

func TestAcquireReclaimsStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.lock")

	require.NoError(t, os.WriteFile(path, []byte("999999\n"), 0o644))
	old := time.Now().Add(-StaleAfter - time.Minute)
	require.NoError(t, os.Chtimes(path, old, old))

	lock, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}

func TestAcquireFreshLockNotReclaimed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.lock")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))

	_, err := Acquire(path)
	require.Error(t, err)
	assert.True(t, errors.IsLockHeld(err))
}
