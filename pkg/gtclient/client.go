// Package gtclient is the client library for talking to a running
// grabtube daemon over its local socket. It covers the full request
// surface plus the attach/listen event stream the CLI uses for live
// progress.
package gtclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/grabtube/grabtube/common"
)

type Client struct {
	mu   sync.Mutex
	d    *Dispatcher
	conn net.Conn
}

// ensureDaemonFunc points to ensureDaemon in production; tests swap it
// out to skip spawning.
var ensureDaemonFunc = ensureDaemon

// NewClient connects to the daemon, spawning one if none is reachable.
func NewClient() (*Client, error) {
	if err := ensureDaemonFunc(); err != nil {
		return nil, err
	}
	conn, err := dial()
	if err != nil {
		return nil, fmt.Errorf("error connecting to daemon: %w", err)
	}
	return &Client{
		conn: conn,
		d:    newDispatcher(),
	}, nil
}

// AddHandler subscribes a handler to pushed updates of the given type.
// Register handlers before calling Listen.
func (c *Client) AddHandler(utype common.UpdateType, h Handler) {
	c.d.register(utype, h)
}

// Listen consumes pushed updates until Disconnect is called or the
// connection drops. Call Attach first so the daemon includes this
// connection in its broadcasts.
func (c *Client) Listen() error {
	for {
		buf, err := read(c.conn)
		if err != nil {
			if c.d.stopped() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("error reading: %w", err)
		}
		if err := c.d.process(buf); err != nil {
			if errors.Is(err, ErrDisconnect) {
				return nil
			}
			return fmt.Errorf("error processing: %w", err)
		}
	}
}

// Disconnect makes Listen return after the current update.
func (c *Client) Disconnect() {
	c.d.stop()
}

// Close releases the daemon connection.
func (c *Client) Close() error {
	c.d.stop()
	return c.conn.Close()
}

func (c *Client) invoke(method common.UpdateType, message any) (json.RawMessage, error) {
	// One request-response exchange at a time per connection.
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, err := json.Marshal(&Request{
		Method:  method,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", method, err)
	}
	if err = write(c.conn, buf); err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", method, err)
	}
	buf, err = read(c.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %w", method, err)
	}
	var res Response
	if err = json.Unmarshal(buf, &res); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", method, err)
	}
	if !res.Ok {
		return nil, errors.New(res.Error)
	}
	if res.Update == nil {
		return nil, fmt.Errorf("empty response for %s", method)
	}
	return res.Update.Message, nil
}
