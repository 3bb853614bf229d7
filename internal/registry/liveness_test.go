package registry

import (
	"errors"
	"os"
	"syscall"
	"testing"
)

// withProbe swaps the process probe for the test's duration.
func withProbe(t *testing.T, probe func(pid int) error) {
	t.Helper()
	orig := probeFunc
	probeFunc = probe
	t.Cleanup(func() { probeFunc = orig })
}

func TestWithLiveEntry_NotRunning(t *testing.T) {
	useTempRegistry(t)

	err := WithLiveEntry("ghost", func(*Entry) error { return nil })
	if !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
}

func TestWithLiveEntry_AliveInvokesOperation(t *testing.T) {
	useTempRegistry(t)
	withProbe(t, func(pid int) error { return nil })

	if err := Put(testEntry("github", 4242)); err != nil {
		t.Fatal(err)
	}

	var seen *Entry
	err := WithLiveEntry("github", func(e *Entry) error {
		seen = e
		return nil
	})
	if err != nil {
		t.Fatalf("WithLiveEntry: %v", err)
	}
	if seen == nil || seen.PID != 4242 {
		t.Errorf("operation saw wrong entry: %+v", seen)
	}
}

func TestWithLiveEntry_DeadProcessPrunesEntry(t *testing.T) {
	useTempRegistry(t)
	withProbe(t, func(pid int) error { return syscall.ESRCH })

	if err := Put(testEntry("github", 4242)); err != nil {
		t.Fatal(err)
	}

	err := WithLiveEntry("github", func(*Entry) error {
		t.Fatal("operation must not run against a dead worker")
		return nil
	})
	if !errors.Is(err, ErrProcessGone) {
		t.Fatalf("expected ErrProcessGone, got %v", err)
	}

	// Entry pruned: the next lookup reports not running, and a fresh start
	// would be allowed.
	err = WithLiveEntry("github", func(*Entry) error { return nil })
	if !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning after prune, got %v", err)
	}
}

func TestWithLiveEntry_ProcessDoneAlsoPrunes(t *testing.T) {
	useTempRegistry(t)
	withProbe(t, func(pid int) error { return os.ErrProcessDone })

	if err := Put(testEntry("fs", 77)); err != nil {
		t.Fatal(err)
	}

	err := WithLiveEntry("fs", func(*Entry) error { return nil })
	if !errors.Is(err, ErrProcessGone) {
		t.Fatalf("expected ErrProcessGone, got %v", err)
	}
}

func TestWithLiveEntry_PermissionErrorDoesNotPrune(t *testing.T) {
	useTempRegistry(t)
	withProbe(t, func(pid int) error { return syscall.EPERM })

	if err := Put(testEntry("github", 4242)); err != nil {
		t.Fatal(err)
	}

	err := WithLiveEntry("github", func(*Entry) error { return nil })
	if !errors.Is(err, ErrOperationFailed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}

	// Registry untouched
	entries, _ := Load()
	if _, ok := entries["github"]; !ok {
		t.Error("entry pruned on a non-fatal probe failure")
	}
}

func TestWithLiveEntry_OperationErrorPropagates(t *testing.T) {
	useTempRegistry(t)
	withProbe(t, func(pid int) error { return nil })

	if err := Put(testEntry("github", 1)); err != nil {
		t.Fatal(err)
	}

	opErr := errors.New("socket refused")
	err := WithLiveEntry("github", func(*Entry) error { return opErr })
	if !errors.Is(err, opErr) {
		t.Fatalf("expected operation error to propagate, got %v", err)
	}
}
