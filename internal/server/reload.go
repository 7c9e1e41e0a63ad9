// Package server provides the optional live-reload notifier for watch mode.
//
// Connected browsers receive a reload event over WebSocket after every
// successful discovery pass and a build-error payload (the aggregated issue
// list) after an aborted one. The current registry snapshot is also served
// as JSON for tooling.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/featforge/featforge/internal/logging"
	"github.com/featforge/featforge/internal/registry"
	"github.com/featforge/featforge/internal/types"
)

// writeWait is the time allowed to push a message to a peer.
const writeWait = 10 * time.Second

// reloadMessage is the wire format pushed to connected clients.
type reloadMessage struct {
	Type   string                  `json:"type"`
	Issues []types.ValidationIssue `json:"issues,omitempty"`
}

// ReloadServer pushes pass results to connected clients.
type ReloadServer struct {
	addr     string
	registry *registry.SnapshotRegistry
	logger   logging.Logger

	mutex sync.Mutex
	conns map[*websocket.Conn]struct{}
	// connCtx bounds connection read loops to the server lifetime. The
	// request context cannot be used for this: net/http cancels it as soon
	// as the handler returns, which would drop every client immediately.
	connCtx context.Context
}

// NewReloadServer creates a reload notifier bound to host:port.
func NewReloadServer(host string, port int, reg *registry.SnapshotRegistry, logger logging.Logger) *ReloadServer {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &ReloadServer{
		addr:     fmt.Sprintf("%s:%d", host, port),
		registry: reg,
		logger:   logger.WithComponent("reload"),
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// Serve runs the HTTP server and the snapshot broadcast loop until ctx is
// cancelled.
func (s *ReloadServer) Serve(ctx context.Context) error {
	s.mutex.Lock()
	s.connCtx = ctx
	s.mutex.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/registry.json", s.handleRegistry)

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("starting reload server on %s: %w", s.addr, err)
	}

	srv := &http.Server{Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	snapshots := s.registry.Subscribe()
	defer s.registry.Unsubscribe(snapshots)

	s.logger.Info(ctx, "reload server listening", "addr", s.addr)

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			return ctx.Err()
		case err := <-errCh:
			if err == http.ErrServerClosed {
				return nil
			}
			return err
		case snapshot := <-snapshots:
			s.broadcast(ctx, snapshot)
		}
	}
}

func (s *ReloadServer) broadcast(ctx context.Context, snapshot *registry.Snapshot) {
	msg := reloadMessage{Type: "reload"}
	if snapshot.Aborted {
		msg = reloadMessage{Type: "build-error", Issues: snapshot.Issues}
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(ctx, err, "marshaling reload message")
		return
	}

	s.mutex.Lock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mutex.Unlock()

	for _, conn := range conns {
		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err := conn.Write(writeCtx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			s.drop(conn)
		}
	}

	s.logger.Debug(ctx, "pass result broadcast", "type", msg.Type, "clients", len(conns))
}

func (s *ReloadServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	s.mutex.Lock()
	s.conns[conn] = struct{}{}
	ctx := s.connCtx
	s.mutex.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	// Read loop exists only to observe the close; clients never send data.
	// It outlives the handler, so it must not use the request context.
	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()
}

func (s *ReloadServer) drop(conn *websocket.Conn) {
	s.mutex.Lock()
	_, known := s.conns[conn]
	delete(s.conns, conn)
	s.mutex.Unlock()
	if known {
		conn.Close(websocket.StatusNormalClosure, "")
	}
}

func (s *ReloadServer) handleRegistry(w http.ResponseWriter, r *http.Request) {
	snapshot := s.registry.Current()
	if snapshot == nil {
		http.Error(w, "no discovery pass has run yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		s.logger.Warn(r.Context(), err, "writing registry response")
	}
}
