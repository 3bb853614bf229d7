package cmd

import (
	"errors"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/zhubert/mcpkeep/internal/registry"
)

func TestStopCmdRegisteredOnRoot(t *testing.T) {
	found := false
	for _, sub := range rootCmd.Commands() {
		if sub.Name() == "stop" {
			found = true
			break
		}
	}
	if !found {
		t.Error("expected 'stop' subcommand to be registered on rootCmd")
	}
}

func TestRunStop_NotRunning(t *testing.T) {
	useTempRegistry(t)

	err := runStop(&cobra.Command{}, []string{"docs"})
	if !errors.Is(err, registry.ErrNotRunning) {
		t.Errorf("err = %v, want ErrNotRunning", err)
	}
}

// TestRunStop_SignalsAndRemoves starts a real child process, registers it,
// and verifies stop terminates it and clears the registry entry.
func TestRunStop_SignalsAndRemoves(t *testing.T) {
	useTempRegistry(t)

	child := exec.Command("sleep", "30")
	if err := child.Start(); err != nil {
		t.Fatal(err)
	}
	defer child.Process.Kill()

	if err := registry.Put(&registry.Entry{Name: "docs", PID: child.Process.Pid}); err != nil {
		t.Fatal(err)
	}

	if err := runStop(&cobra.Command{}, []string{"docs"}); err != nil {
		t.Fatalf("runStop: %v", err)
	}

	// SIGTERM kills sleep; Wait reports the signal
	done := make(chan error, 1)
	go func() { done <- child.Wait() }()
	select {
	case err := <-done:
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("child exit: %v", err)
		}
		status := exitErr.Sys().(syscall.WaitStatus)
		if !status.Signaled() || status.Signal() != syscall.SIGTERM {
			t.Errorf("child not terminated by SIGTERM: %v", exitErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("child did not exit after stop")
	}

	entries, err := registry.Load()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := entries["docs"]; ok {
		t.Error("entry not removed after stop")
	}
}

func TestRunStop_DeadProcessPrunes(t *testing.T) {
	useTempRegistry(t)

	// Spawn and reap a child so its PID is definitely dead
	child := exec.Command("true")
	if err := child.Run(); err != nil {
		t.Fatal(err)
	}
	if err := registry.Put(&registry.Entry{Name: "docs", PID: child.Process.Pid}); err != nil {
		t.Fatal(err)
	}

	if err := runStop(&cobra.Command{}, []string{"docs"}); err == nil {
		t.Error("expected error for dead worker")
	}

	entries, err := registry.Load()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := entries["docs"]; ok {
		t.Error("stale entry not pruned")
	}
}
