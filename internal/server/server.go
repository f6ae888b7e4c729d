package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/grabtube/grabtube/common"
	"github.com/grabtube/grabtube/pkg/gtlib"
)

// Server accepts CLI client connections over a Unix socket (or named
// pipe on Windows) and dispatches framed JSON requests to registered
// handlers. The web server runs alongside it for browser and remote
// RPC access.
type Server struct {
	log      *log.Logger
	pool     *Pool
	ws       *WebServer
	handler  map[common.UpdateType]HandlerFunc
	port     int
	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a socket server. The web server is optional; pass
// nil to run the socket transport alone.
func NewServer(l *log.Logger, ws *WebServer, port int) *Server {
	return &Server{
		log:     l,
		pool:    NewPool(l),
		ws:      ws,
		handler: make(map[common.UpdateType]HandlerFunc),
		port:    port,
	}
}

// Pool returns the attached-client pool for event broadcasting.
func (s *Server) Pool() *Pool {
	return s.pool
}

// RegisterHandler associates a handler with a request method.
func (s *Server) RegisterHandler(method common.UpdateType, handler HandlerFunc) {
	s.handler[method] = handler
}

// Start begins listening and blocks until the context is canceled.
// Each accepted connection is served in its own goroutine.
func (s *Server) Start(ctx context.Context) error {
	if s.ws != nil {
		go func() {
			if err := s.ws.Start(); err != nil {
				s.log.Printf("web server: %v", err)
			}
		}()
	}

	l, err := s.createListener()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			s.log.Printf("accept: %v", err)
			continue
		}
		gtlib.SafeGo(s.log, "client connection", func() {
			s.handleConnection(conn)
		})
	}
}

// Shutdown closes the listener, stops the web server and removes the
// socket file.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.log.Printf("close listener: %v", err)
		}
		s.listener = nil
	}

	if s.ws != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.ws.Shutdown(shutdownCtx); err != nil {
			s.log.Printf("shutdown web server: %v", err)
		}
	}

	if err := cleanupSocket(); err != nil {
		s.log.Printf("remove socket file: %v", err)
	}
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	sconn := NewSyncConn(conn)
	defer func() {
		s.pool.Detach(sconn)
		conn.Close()
	}()
	for {
		buf, err := sconn.Read()
		if err != nil {
			if err != io.EOF {
				s.log.Printf("read: %v", err)
			}
			return
		}
		if err := s.handlerWrapper(sconn, buf); err != nil {
			s.log.Printf("handle: %v", err)
			return
		}
	}
}

func (s *Server) handlerWrapper(sconn *SyncConn, b []byte) error {
	req, err := ParseRequest(b)
	if err != nil {
		return fmt.Errorf("parse request: %w", err)
	}
	rHandler, ok := s.handler[req.Method]
	if !ok {
		if err := sconn.Write(CreateError("unknown method: " + string(req.Method))); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		return nil
	}
	utype, msg, err := rHandler(sconn, s.pool, req.Message)
	if err != nil {
		if err := sconn.Write(InitError(err)); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		return nil
	}
	if err := sconn.Write(MakeResult(utype, msg)); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
