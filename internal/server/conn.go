package server

import (
	"net"
	"sync"
)

// SyncConn serializes framed reads and writes on a shared connection.
// Request handling and event broadcasts may touch the same conn from
// different goroutines.
type SyncConn struct {
	Conn     net.Conn
	rmu, wmu sync.Mutex
}

func NewSyncConn(conn net.Conn) *SyncConn {
	return &SyncConn{
		Conn: conn,
	}
}

func (s *SyncConn) Write(b []byte) error {
	return writeFrame(&s.wmu, s.Conn, b)
}

func (s *SyncConn) Read() ([]byte, error) {
	return readFrame(&s.rmu, s.Conn)
}
