//go:build windows

package server

import (
	"github.com/grabtube/grabtube/common"
)

// pipePath returns the Windows named pipe path for the daemon.
func pipePath() string {
	return common.PipePath()
}
