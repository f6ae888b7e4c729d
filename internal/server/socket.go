package server

import (
	"os"
	"path/filepath"

	"github.com/grabtube/grabtube/common"
)

// tcpHost is the bind address used when the socket transport falls
// back to TCP. Loopback only; the daemon is not a public service.
const tcpHost = "127.0.0.1"

func socketPath() string {
	if path := os.Getenv(common.SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "grabtube.sock")
}

func forceTCP() bool {
	return os.Getenv(common.ForceTCPEnv) == "1"
}
