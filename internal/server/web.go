package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WebServer exposes the daemon's HTTP surface: the JSON-RPC bridge at
// /rpc, a WebSocket JSON-RPC endpoint with push notifications at /ws,
// and Prometheus metrics at /metrics.
type WebServer struct {
	port      int
	listenAll bool
	l         *log.Logger
	rpc       *RPCServer
	notifier  *RPCNotifier
	server    *http.Server
	mu        sync.Mutex
}

// NewWebServer creates the HTTP server hosting the RPC bridge.
func NewWebServer(l *log.Logger, rpc *RPCServer, notifier *RPCNotifier, port int, listenAll bool) *WebServer {
	return &WebServer{
		port:      port,
		listenAll: listenAll,
		l:         l,
		rpc:       rpc,
		notifier:  notifier,
	}
}

// Notifier returns the push-notification broadcaster.
func (s *WebServer) Notifier() *RPCNotifier {
	return s.notifier
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/rpc", requireToken(s.rpc.secret, s.rpc.bridge))
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// handleWS upgrades the connection and runs a dedicated jrpc2 server
// over it. WebSocket clients authenticate with a token query parameter
// since browsers cannot set arbitrary headers on the handshake.
func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = r.Header.Get("Authorization")
	} else {
		token = "Bearer " + token
	}
	if !validToken(s.rpc.secret, token) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.l.Printf("websocket accept: %v", err)
		return
	}

	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.rpc.methods, nil).Start(ch)
	if s.notifier != nil {
		s.notifier.Register(srv)
		defer s.notifier.Unregister(srv)
	}
	if err := srv.Wait(); err != nil {
		s.l.Printf("websocket rpc session ended: %v", err)
	}
}

func (s *WebServer) addr() string {
	host := tcpHost
	if s.listenAll {
		host = ""
	}
	return fmt.Sprintf("%s:%d", host, s.port)
}

// Start runs the HTTP server until Shutdown is called.
func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:    s.addr(),
		Handler: s.handler(),
	}
	s.mu.Unlock()

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the web server and the RPC bridge.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	s.rpc.Close()
	return s.server.Shutdown(ctx)
}
