package state

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ErrLockHeld is returned by TryLockFile when another process holds the lock.
var ErrLockHeld = errors.New("lock is held by another process")

// FileLock is an advisory flock(2) lock on a file.
type FileLock struct {
	file *os.File
}

// LockFile blocks until it holds an exclusive lock on path, creating the
// file if needed.
func LockFile(path string) (*FileLock, error) {
	return lock(path, syscall.LOCK_EX)
}

// TryLockFile is LockFile without blocking. It returns ErrLockHeld when the
// lock is taken.
func TryLockFile(path string) (*FileLock, error) {
	return lock(path, syscall.LOCK_EX|syscall.LOCK_NB)
}

func lock(path string, how int) (*FileLock, error) {
	//nolint:gosec // G304: lock paths are derived from cdl's own directories
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		_ = f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	return &FileLock{file: f}, nil
}

// Unlock releases the lock. Calling it twice is a no-op.
func (l *FileLock) Unlock() error {
	if l == nil || l.file == nil {
		return nil
	}

	f := l.file
	l.file = nil

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return f.Close()
}
