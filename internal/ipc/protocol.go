// Package ipc implements the local socket protocol between short-lived CLI
// invocations and the long-lived worker process.
//
// The wire format is newline-delimited UTF-8 JSON objects in both directions.
// Tool arguments and results travel as raw JSON so the relay never re-encodes
// them: what the caller sends is byte-for-byte what the upstream server sees.
package ipc

import "encoding/json"

// RPC methods the worker dispatches.
const (
	MethodListTools = "listTools"
	MethodCallTool  = "callTool"
)

// Request is one RPC request from a CLI invocation to the worker.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params *CallParams `json:"params,omitempty"`
}

// CallParams carries the tool invocation payload for callTool requests.
type CallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Response answers exactly one Request, matched by ID. Exactly one of
// Result/Error is meaningful.
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}
