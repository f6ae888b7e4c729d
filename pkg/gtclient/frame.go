package gtclient

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/grabtube/grabtube/common"
)

// Messages are framed as a 4-byte little-endian length followed by the
// JSON payload, mirroring the daemon's socket protocol.

func read(conn net.Conn) ([]byte, error) {
	head := make([]byte, 4)
	if _, err := io.ReadFull(conn, head); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(head)
	if size > uint32(common.MaxMessageSize) {
		return nil, fmt.Errorf("payload too large: %d", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func write(conn net.Conn, b []byte) error {
	if len(b) > common.MaxMessageSize {
		return fmt.Errorf("payload too large: %d", len(b))
	}
	head := make([]byte, 4)
	binary.LittleEndian.PutUint32(head, uint32(len(b)))
	if _, err := conn.Write(head); err != nil {
		return err
	}
	_, err := conn.Write(b)
	return err
}
