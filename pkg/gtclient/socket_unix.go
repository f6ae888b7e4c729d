//go:build !windows

package gtclient

import (
	"os"
	"path/filepath"

	"github.com/grabtube/grabtube/common"
)

func socketPath() string {
	if path := os.Getenv(common.SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "grabtube.sock")
}
