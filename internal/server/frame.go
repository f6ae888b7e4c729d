package server

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
)

// Socket messages are framed as a 4-byte little-endian length followed by
// the JSON payload. maxFrameSize bounds a single message; anything larger
// is a protocol violation, not a legitimate request.
const maxFrameSize = 8 << 20

func frameHead(n int) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(n))
	return b
}

func readFrame(mu *sync.Mutex, conn net.Conn) ([]byte, error) {
	mu.Lock()
	defer mu.Unlock()
	head := make([]byte, 4)
	if _, err := io.ReadFull(conn, head); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(head)
	if size > maxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeFrame(mu *sync.Mutex, conn net.Conn, b []byte) error {
	mu.Lock()
	defer mu.Unlock()
	if _, err := conn.Write(frameHead(len(b))); err != nil {
		return err
	}
	_, err := conn.Write(b)
	return err
}
