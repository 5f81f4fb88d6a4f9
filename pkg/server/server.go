// Package server exposes the controller over HTTP and pushes display updates
// to WebSocket clients.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/juju/loggo/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chaininsight/pkg/controller"
	"chaininsight/pkg/metrics"
)

var log = loggo.GetLogger("chaininsight.server")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	ctrl     *controller.Controller
	registry *prometheus.Registry
	clients  map[*websocket.Conn]bool
	mu       sync.Mutex
	mux      *http.ServeMux
}

// NewServer builds the API mux. A nil registry gets the package collectors
// from pkg/metrics.
func NewServer(ctrl *controller.Controller, registry *prometheus.Registry) *Server {
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	s := &Server{
		ctrl:     ctrl,
		registry: registry,
		clients:  make(map[*websocket.Conn]bool),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/networks", s.handleNetworks)
	s.mux.HandleFunc("/api/connect", s.handleAction(controller.ActionConnect))
	s.mux.HandleFunc("/api/toggle", s.handleAction(controller.ActionToggle))
	s.mux.HandleFunc("/api/block", s.handleAction(controller.ActionBlockStats))
	s.mux.HandleFunc("/api/balance", s.handleAction(controller.ActionBalance))
	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
}

func (s *Server) Start(port int) error {
	go s.listenToController(s.ctrl.Subscribe())

	log.Infof("API server listening on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), s.mux)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debugf("encode response: %v", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.ctrl.State())
}

func (s *Server) handleNetworks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"networks": s.ctrl.Networks(),
		"active":   s.ctrl.Network(),
	})
}

// handleAction runs action and answers with the resulting controller state.
// Action failures are part of the display, not HTTP errors.
func (s *Server) handleAction(action controller.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.ctrl.Dispatch(r.Context(), action, r.URL.Query().Get("address"))
		writeJSON(w, s.ctrl.State())
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("websocket upgrade: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	// Register and send the initial state under the lock so a concurrent
	// broadcast cannot interleave writes on conn.
	s.mu.Lock()
	err = conn.WriteJSON(map[string]any{
		"type": "initial",
		"data": s.ctrl.State(),
	})
	if err == nil {
		s.clients[conn] = true
	}
	s.mu.Unlock()
	if err != nil {
		return
	}

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Server) listenToController(sub controller.Subscriber) {
	defer s.ctrl.Unsubscribe(sub)

	for event := range sub {
		s.broadcast(event)
	}
}

func (s *Server) broadcast(event controller.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(event); err != nil {
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}
