package ipc

// Control message types exchanged over the launcher↔worker pipe.
const (
	ControlReady = "ready"
	ControlError = "error"
)

// ControlMessage is the one-shot readiness signal a worker writes back to its
// launcher once the upstream connection is established and the socket is
// bound, or an error report when startup fails.
type ControlMessage struct {
	Type          string `json:"type"`
	SocketAddress string `json:"socketAddress,omitempty"`
	Error         string `json:"error,omitempty"`
}
