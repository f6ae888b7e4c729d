package gtclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/grabtube/grabtube/common"
)

// ErrDisconnect signals a handler-initiated end of the listen loop.
var ErrDisconnect = errors.New("disconnect")

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[common.UpdateType][]Handler
	done     atomic.Bool
}

func newDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[common.UpdateType][]Handler),
	}
}

func (d *Dispatcher) register(utype common.UpdateType, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[utype] = append(d.handlers[utype], h)
}

func (d *Dispatcher) stop()         { d.done.Store(true) }
func (d *Dispatcher) stopped() bool { return d.done.Load() }

func (d *Dispatcher) process(buf []byte) error {
	var res Response
	if err := json.Unmarshal(buf, &res); err != nil {
		return fmt.Errorf("failed to parse (%s): '%s'", err.Error(), string(buf))
	}
	if !res.Ok {
		return errors.New(res.Error)
	}
	if res.Update == nil {
		return nil
	}
	d.mu.RLock()
	handlers := d.handlers[res.Update.Type]
	d.mu.RUnlock()
	for _, h := range handlers {
		if err := h.Handle(res.Update.Message); err != nil {
			return err
		}
	}
	if d.stopped() {
		return ErrDisconnect
	}
	return nil
}
