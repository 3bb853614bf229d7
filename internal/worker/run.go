package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/zhubert/mcpkeep/internal/ipc"
	"github.com/zhubert/mcpkeep/internal/logger"
	"github.com/zhubert/mcpkeep/internal/upstream"
)

// Run is the whole worker lifetime: connect upstream, bind the socket,
// signal readiness over the control channel, serve until a termination
// signal, then tear down. It returns only when the worker should exit;
// a non-nil error means startup failed and the process must exit nonzero.
func Run(name string, spec upstream.LaunchSpec, ctl io.WriteCloser) error {
	if logPath, err := logger.WorkerLogPath(name); err == nil {
		if err := logger.Init(logPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	defer logger.Close()
	log := logger.WithComponent("worker").With("server", name)

	log.Info("connecting upstream", "target", spec.Target())
	conn, err := upstream.Connect(context.Background(), spec)
	if err != nil {
		log.Error("upstream connect failed", "error", err)
		reportControl(ctl, ipc.ControlMessage{Type: ipc.ControlError, Error: err.Error()})
		ctl.Close()
		return err
	}

	srv := NewServer(name, conn, log)
	socketPath, err := srv.Listen()
	if err != nil {
		log.Error("socket bind failed", "error", err)
		conn.Close()
		reportControl(ctl, ipc.ControlMessage{Type: ipc.ControlError, Error: err.Error()})
		ctl.Close()
		return err
	}

	// Readiness: the launcher is blocked on this line. Closing the control
	// channel afterwards lets it release us and exit.
	reportControl(ctl, ipc.ControlMessage{Type: ipc.ControlReady, SocketAddress: socketPath})
	ctl.Close()

	// SIGTERM is the operator-requested stop; SIGINT covers a controlling
	// terminal interrupt when running un-detached for debugging.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info("received signal, shutting down", "signal", sig)
		srv.Shutdown()
	}()

	log.Info("serving", "socketPath", socketPath)
	srv.Serve()

	srv.Cleanup()
	log.Info("worker exited cleanly")
	return nil
}

// reportControl writes one newline-delimited control message. Write failures
// are swallowed: if the launcher died, the worker keeps going regardless.
func reportControl(w io.Writer, msg ipc.ControlMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	w.Write(append(data, '\n'))
}
