package ipc

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
)

// SocketPath returns the unix socket path for a named server. The path is a
// pure function of the name, so the launcher and worker agree on it without
// coordination.
//
// The name is hashed rather than embedded: unix socket paths have a limit of
// roughly 104 characters, and server names may contain arbitrary bytes.
// 12 hex chars gives ~2^48 combinations, making collisions negligible.
func SocketPath(name string) string {
	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(name)))
	return filepath.Join(os.TempDir(), fmt.Sprintf("mcpkeep-%s.sock", hash[:12]))
}
