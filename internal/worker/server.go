// Package worker implements the detached background process that owns one
// upstream MCP connection and serves it to CLI invocations over a local
// unix socket.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/zhubert/mcpkeep/internal/ipc"
	"github.com/zhubert/mcpkeep/internal/upstream"
)

// Server accepts connections on the worker's unix socket and dispatches
// decoded requests against the shared upstream connection. Each connection
// gets its own line buffer and write lock; the upstream session is shared
// and handles its own request correlation.
type Server struct {
	name       string
	conn       upstream.Conn
	log        *slog.Logger
	listener   net.Listener
	socketPath string

	closed   bool
	closedMu sync.RWMutex
	wg       sync.WaitGroup

	teardown sync.Once
}

// NewServer wraps an established upstream connection for serving.
func NewServer(name string, conn upstream.Conn, log *slog.Logger) *Server {
	return &Server{
		name: name,
		conn: conn,
		log:  log.With("component", "worker-socket"),
	}
}

// Listen binds the worker's unix socket and returns its path. A stale socket
// file from a previous worker generation is removed before binding.
func (s *Server) Listen() (string, error) {
	socketPath := ipc.SocketPath(s.name)
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return "", err
	}
	s.listener = listener
	s.socketPath = socketPath
	s.log.Info("listening", "socketPath", socketPath)
	return socketPath, nil
}

// Serve accepts connections until Shutdown closes the listener.
func (s *Server) Serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isClosed() {
				s.log.Info("listener closed, stopping accept loop")
				return
			}
			// Transient accept failure: keep serving
			s.log.Warn("accept error (continuing)", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Shutdown stops accepting new connections. In-flight requests on accepted
// connections are abandoned; their callers observe a closed connection.
// Safe to call from a signal handler goroutine while Serve blocks.
func (s *Server) Shutdown() {
	s.closedMu.Lock()
	s.closed = true
	s.closedMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
}

// Cleanup closes the upstream connection and removes the socket's filesystem
// entry. Removal failure is ignored: the next worker for this name unlinks
// stale sockets before binding. Idempotent.
func (s *Server) Cleanup() {
	s.teardown.Do(func() {
		if s.conn != nil {
			s.conn.Close()
		}
		if s.socketPath != "" {
			os.Remove(s.socketPath)
		}
	})
}

func (s *Server) isClosed() bool {
	s.closedMu.RLock()
	defer s.closedMu.RUnlock()
	return s.closed
}

// handleConnection reads newline-delimited requests from one connection and
// answers each with exactly one response. Responses go out in completion
// order, not arrival order: dispatch is asynchronous so a slow tool call
// never blocks a fast one behind it.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	s.log.Debug("connection accepted")

	var (
		lines   ipc.LineBuffer
		writeMu sync.Mutex
	)

	chunk := make([]byte, 4096)
	for {
		n, readErr := conn.Read(chunk)
		if n > 0 {
			for _, line := range lines.Feed(chunk[:n]) {
				var req ipc.Request
				if err := json.Unmarshal(line, &req); err != nil {
					// No per-message recovery exists once framing is
					// suspect; give up on this connection only.
					s.log.Error("malformed request line, closing connection", "error", err)
					return
				}

				go func(req ipc.Request) {
					resp := s.dispatch(context.Background(), req)
					data, err := json.Marshal(resp)
					if err != nil {
						s.log.Error("failed to encode response", "id", req.ID, "error", err)
						return
					}
					writeMu.Lock()
					defer writeMu.Unlock()
					if _, err := conn.Write(append(data, '\n')); err != nil {
						s.log.Debug("response write failed (caller gone?)", "id", req.ID, "error", err)
					}
				}(req)
			}
		}
		if readErr != nil {
			s.log.Debug("connection closed", "error", readErr)
			return
		}
	}
}

// dispatch forwards one request to the upstream connection. Upstream
// failures become error responses; they never terminate the connection or
// the worker.
func (s *Server) dispatch(ctx context.Context, req ipc.Request) ipc.Response {
	var (
		result json.RawMessage
		err    error
	)

	switch req.Method {
	case ipc.MethodListTools:
		result, err = s.conn.ListTools(ctx)
	case ipc.MethodCallTool:
		if req.Params == nil {
			return ipc.Response{ID: req.ID, Error: "callTool requires params"}
		}
		result, err = s.conn.CallTool(ctx, req.Params.Name, req.Params.Arguments)
	default:
		return ipc.Response{ID: req.ID, Error: "unknown method: " + req.Method}
	}

	if err != nil {
		s.log.Warn("upstream dispatch failed", "id", req.ID, "method", req.Method, "error", err)
		return ipc.Response{ID: req.ID, Error: err.Error()}
	}
	return ipc.Response{ID: req.ID, Result: result}
}
