package debugfeed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/trackgen/server/internal/config"
	"go.uber.org/zap"
)

// Server accepts overlay connections on /ws and fans frames out to them.
type Server struct {
	listener  net.Listener
	http      *http.Server
	upgrader  websocket.Upgrader
	queueSize int
	runID     string
	catalog   string
	log       *zap.Logger

	mu      sync.Mutex
	clients map[string]*Client
	seq     uint64
}

func NewServer(cfg config.DebugFeedConfig, runID, catalog string, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", cfg.BindAddress)
	if err != nil {
		return nil, fmt.Errorf("listen debug feed %s: %w", cfg.BindAddress, err)
	}
	queue := cfg.ClientQueueSize
	if queue < 1 {
		queue = 1
	}
	s := &Server{
		listener:  ln,
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		queueSize: queue,
		runID:     runID,
		catalog:   catalog,
		log:       log,
		clients:   make(map[string]*Client),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.http = &http.Server{Handler: mux}
	return s, nil
}

// Serve runs the HTTP server until Shutdown. Run it in its own goroutine.
func (s *Server) Serve() {
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("debug feed stopped", zap.Error(err))
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("debug feed upgrade failed", zap.Error(err))
		return
	}
	c := newClient(uuid.New().String(), conn, s.queueSize, s.log)

	s.mu.Lock()
	s.clients[c.ID] = c
	hello, err := s.nextFrame(FrameHello, Hello{ClientID: c.ID, RunID: s.runID, Catalog: s.catalog})
	s.mu.Unlock()
	if err == nil {
		c.Send(hello)
	}
	c.start()
	s.log.Info("debug feed client connected", zap.String("client", c.ID), zap.String("ip", r.RemoteAddr))
}

// nextFrame must be called with mu held.
func (s *Server) nextFrame(typ string, payload any) ([]byte, error) {
	s.seq++
	return encode(typ, s.seq, payload)
}

// Broadcast encodes payload once and queues it on every client. Clients
// that are closed or too slow are removed.
func (s *Server) Broadcast(typ string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) == 0 {
		return
	}
	frame, err := s.nextFrame(typ, payload)
	if err != nil {
		s.log.Error("debug feed encode failed", zap.String("type", typ), zap.Error(err))
		return
	}
	for id, c := range s.clients {
		if !c.Send(frame) {
			delete(s.clients, id)
			s.log.Info("debug feed client disconnected", zap.String("client", id))
		}
	}
}

// Clients returns the number of registered clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Shutdown stops accepting connections and closes every client. Hijacked
// websocket connections are not tracked by http.Server, so they are closed
// here.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	s.mu.Lock()
	for id, c := range s.clients {
		c.Close()
		delete(s.clients, id)
	}
	s.mu.Unlock()
	return err
}
