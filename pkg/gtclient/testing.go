package gtclient

import "net"

// NewClientForTesting creates a Client over an existing connection,
// letting tests inject a mock transport without a daemon.
func NewClientForTesting(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		d:    newDispatcher(),
	}
}
