// Package launcher spawns detached worker processes and records them in
// the registry once they report readiness.
package launcher

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/zhubert/mcpkeep/internal/ipc"
	"github.com/zhubert/mcpkeep/internal/registry"
	"github.com/zhubert/mcpkeep/internal/upstream"
)

var (
	// ErrAlreadyRunning is returned when the registry already holds an
	// entry for the requested name.
	ErrAlreadyRunning = errors.New("already running")

	// ErrStartupTimeout is returned when the worker does not report
	// readiness within the startup window.
	ErrStartupTimeout = errors.New("worker startup timed out")

	// ErrSpawnFailed is returned when the worker process cannot be
	// started or reports a startup error over the control pipe.
	ErrSpawnFailed = errors.New("worker spawn failed")
)

// startupTimeout bounds how long the launcher waits for the worker's
// readiness report. Overridable in tests.
var startupTimeout = 60 * time.Second

// workerCommand builds the command that runs the worker process. It is a
// variable so tests can substitute a stand-in process.
var workerCommand = func(name string, specJSON []byte) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolving executable: %w", err)
	}
	return exec.Command(exe, "__worker", "--name", name, "--spec", string(specJSON)), nil
}

// Launch spawns a detached worker for the named upstream and waits for it
// to report readiness on the control pipe. On success the new entry has
// been persisted to the registry.
func Launch(name string, spec upstream.LaunchSpec) (*registry.Entry, error) {
	entries, err := registry.Load()
	if err != nil {
		return nil, err
	}
	if _, ok := entries[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, name)
	}

	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("encoding launch spec: %w", err)
	}

	ctlRead, ctlWrite, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating control pipe: %w", err)
	}
	defer ctlRead.Close()

	cmd, err := workerCommand(name, specJSON)
	if err != nil {
		ctlWrite.Close()
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	// Detach: new session, no controlling terminal, stdio to /dev/null.
	// The control pipe rides on fd 3.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.ExtraFiles = []*os.File{ctlWrite}

	if err := cmd.Start(); err != nil {
		ctlWrite.Close()
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}
	// The worker holds its own copy of the write end now.
	ctlWrite.Close()

	msg, err := awaitReady(ctlRead)
	if err != nil {
		cmd.Process.Kill()
		cmd.Process.Release()
		return nil, err
	}

	entry := &registry.Entry{
		Name:       name,
		Launch:     spec,
		PID:        cmd.Process.Pid,
		SocketPath: msg.SocketAddress,
		StartedAt:  time.Now().UTC(),
	}
	if err := registry.Put(entry); err != nil {
		cmd.Process.Kill()
		cmd.Process.Release()
		return nil, err
	}

	// Orphan the worker so it outlives this process.
	cmd.Process.Release()
	return entry, nil
}

// awaitReady reads one control message from the worker, enforcing the
// startup timeout. Pipe EOF before any message means the worker died
// during startup.
func awaitReady(r *os.File) (*ipc.ControlMessage, error) {
	type result struct {
		msg *ipc.ControlMessage
		err error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(r).ReadBytes('\n')
		if err != nil && len(line) == 0 {
			ch <- result{err: fmt.Errorf("%w: worker exited before reporting readiness", ErrSpawnFailed)}
			return
		}
		var msg ipc.ControlMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			ch <- result{err: fmt.Errorf("%w: malformed control message: %v", ErrSpawnFailed, err)}
			return
		}
		ch <- result{msg: &msg}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		switch res.msg.Type {
		case ipc.ControlReady:
			return res.msg, nil
		case ipc.ControlError:
			return nil, fmt.Errorf("%w: %s", ErrSpawnFailed, res.msg.Error)
		default:
			return nil, fmt.Errorf("%w: unexpected control message %q", ErrSpawnFailed, res.msg.Type)
		}
	case <-time.After(startupTimeout):
		// Unblock the reader goroutine.
		r.SetReadDeadline(time.Now())
		return nil, ErrStartupTimeout
	}
}
