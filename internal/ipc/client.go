package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/google/uuid"
)

// ErrConnectionClosed indicates the worker closed the connection before a
// complete response arrived (typically the worker shut down mid-request).
var ErrConnectionClosed = errors.New("connection closed before response")

// RemoteError is a dispatch failure reported by the worker. The upstream
// server rejected, timed out, or errored; the worker itself is healthy.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Call opens a new connection to a worker's socket, sends exactly one request,
// and awaits the matching response. There is no pooling: every call dials
// fresh, which keeps the protocol trivially correct for short-lived CLI
// processes.
//
// The context's deadline, if any, bounds the whole exchange. An expired
// deadline surfaces as a net timeout error.
func Call(ctx context.Context, socketPath, method string, params *CallParams) (json.RawMessage, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", socketPath, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	req := Request{
		ID:     uuid.NewString(),
		Method: method,
		Params: params,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	// Accumulate bytes and attempt a full parse after every chunk. A single
	// request gets a single response, so line framing is unnecessary on this
	// side: the buffer either parses as one JSON object or is still partial.
	var acc []byte
	chunk := make([]byte, 4096)
	for {
		n, readErr := conn.Read(chunk)
		if n > 0 {
			acc = append(acc, chunk[:n]...)

			var resp Response
			if err := json.Unmarshal(acc, &resp); err == nil {
				if resp.ID != req.ID {
					return nil, fmt.Errorf("response id %q does not match request id %q", resp.ID, req.ID)
				}
				if resp.Error != "" {
					return nil, &RemoteError{Message: resp.Error}
				}
				return resp.Result, nil
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil, ErrConnectionClosed
			}
			return nil, fmt.Errorf("read response: %w", readErr)
		}
	}
}
