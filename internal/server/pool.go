package server

import (
	"log"

	"github.com/grabtube/grabtube/pkg/gtlib"
)

// Pool tracks attached client connections. A client that attaches
// receives every download and schedule event the daemon emits until
// its connection drops.
type Pool struct {
	conns    gtlib.VMap[*SyncConn, struct{}]
	log      *log.Logger
	onChange func(n int)
}

func NewPool(l *log.Logger) *Pool {
	return &Pool{
		conns: gtlib.NewVMap[*SyncConn, struct{}](),
		log:   l,
	}
}

// OnCountChange registers f to observe the attached-client count after
// every attach, detach or broadcast drop. Set it before the server
// starts accepting connections.
func (p *Pool) OnCountChange(f func(n int)) {
	p.onChange = f
}

func (p *Pool) notify() {
	if p.onChange != nil {
		p.onChange(p.conns.Len())
	}
}

// Attach subscribes a connection to event broadcasts.
func (p *Pool) Attach(conn *SyncConn) {
	p.conns.Set(conn, struct{}{})
	p.notify()
}

// Detach removes a connection from the broadcast set.
func (p *Pool) Detach(conn *SyncConn) {
	p.conns.Delete(conn)
	p.notify()
}

// Count returns the number of attached connections.
func (p *Pool) Count() int {
	return p.conns.Len()
}

// Broadcast writes data to every attached connection. Connections that
// fail to receive are dropped from the set and closed.
func (p *Pool) Broadcast(data []byte) {
	conns, _ := p.conns.Dump()
	var dropped bool
	for _, conn := range conns {
		if err := conn.Write(data); err != nil {
			if p.log != nil {
				p.log.Printf("dropping attached client: %v", err)
			}
			p.conns.Delete(conn)
			_ = conn.Conn.Close()
			dropped = true
		}
	}
	if dropped {
		p.notify()
	}
}
