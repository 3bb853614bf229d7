package registry

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

var (
	// ErrNotRunning indicates no registry entry exists for the name.
	ErrNotRunning = errors.New("server is not running")

	// ErrProcessGone indicates the recorded worker process no longer exists.
	// The stale entry has already been pruned when this is returned.
	ErrProcessGone = errors.New("worker process is gone")

	// ErrOperationFailed indicates the liveness probe failed for a reason
	// other than process death (e.g. permission denied). The registry is
	// left untouched.
	ErrOperationFailed = errors.New("liveness probe failed")
)

// probeFunc checks whether a PID names a live process. Injectable for tests.
// Returns nil if alive, ErrProcessGone-compatible errors via syscall.ESRCH.
var probeFunc = probeProcess

// probeProcess sends signal 0, which checks for process existence without
// delivering anything.
func probeProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return syscall.ESRCH
	}
	return proc.Signal(syscall.Signal(0))
}

// WithLiveEntry loads the entry for name, verifies its worker process is
// still alive, and invokes fn with the entry. A dead process prunes the
// entry before failing with ErrProcessGone, so the next start succeeds.
func WithLiveEntry(name string, fn func(*Entry) error) error {
	entries, err := Load()
	if err != nil {
		return err
	}

	entry, ok := entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRunning, name)
	}

	if err := probeFunc(entry.PID); err != nil {
		if errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone) {
			// Stale entry: the worker died out-of-band. Self-heal.
			delete(entries, name)
			if saveErr := Save(entries); saveErr != nil {
				return fmt.Errorf("%w (and failed to prune entry: %v)", ErrProcessGone, saveErr)
			}
			return fmt.Errorf("%w: %s (pid %d)", ErrProcessGone, name, entry.PID)
		}
		return fmt.Errorf("%w: pid %d: %v", ErrOperationFailed, entry.PID, err)
	}

	return fn(entry)
}
