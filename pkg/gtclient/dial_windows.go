//go:build windows

package gtclient

import (
	"context"
	"fmt"
	"net"

	"github.com/Microsoft/go-winio"

	"github.com/grabtube/grabtube/common"
)

func dialPipe(path string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), common.DefaultDialTimeout)
	defer cancel()
	return winio.DialPipeContext(ctx, path)
}

// dial connects to the daemon over its named pipe, falling back to TCP.
// Transport priority: named pipe > TCP.
func dial() (net.Conn, error) {
	if forceTCP() {
		debugLog("force TCP mode enabled, dialing %s", tcpAddress())
		return dialFunc("tcp", tcpAddress())
	}
	path := common.PipePath()
	debugLog("dialing named pipe at %s", path)
	conn, pipeErr := dialPipe(path)
	if pipeErr != nil {
		debugLog("named pipe failed: %v, falling back to TCP", pipeErr)
		conn, err := dialFunc("tcp", tcpAddress())
		if err != nil {
			return nil, fmt.Errorf("failed to connect: named pipe error: %v; tcp error: %w", pipeErr, err)
		}
		return conn, nil
	}
	return conn, nil
}

// isDaemonRunning reports whether something is accepting on the daemon's
// transport.
func isDaemonRunning() bool {
	if forceTCP() {
		conn, err := net.DialTimeout("tcp", tcpAddress(), socketDialTimeout)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}
	conn, err := dialPipe(common.PipePath())
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
