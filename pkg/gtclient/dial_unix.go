//go:build !windows

package gtclient

import (
	"fmt"
	"net"
)

// dial connects to the daemon over its Unix socket, falling back to TCP.
// Transport priority: Unix socket > TCP.
func dial() (net.Conn, error) {
	if forceTCP() {
		debugLog("force TCP mode enabled, dialing %s", tcpAddress())
		return dialFunc("tcp", tcpAddress())
	}
	debugLog("dialing unix socket at %s", socketPath())
	conn, unixErr := dialFunc("unix", socketPath())
	if unixErr != nil {
		debugLog("unix socket failed: %v, falling back to TCP", unixErr)
		conn, err := dialFunc("tcp", tcpAddress())
		if err != nil {
			return nil, fmt.Errorf("failed to connect: unix socket error: %v; tcp error: %w", unixErr, err)
		}
		return conn, nil
	}
	return conn, nil
}

// isDaemonRunning reports whether something is accepting on the daemon's
// transport.
func isDaemonRunning() bool {
	network, address := "unix", socketPath()
	if forceTCP() {
		network, address = "tcp", tcpAddress()
	}
	conn, err := net.DialTimeout(network, address, socketDialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
