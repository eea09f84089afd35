// Package server exposes the dashboard over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"shitdash/internal/domain"
	"shitdash/internal/engine"
	"shitdash/internal/observability"
	"shitdash/internal/window"
)

// Options configures a Server.
type Options struct {
	Addr    string
	Engine  *engine.Engine
	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// Server serves dashboard queries and pushes refreshed dashboards to
// WebSocket subscribers.
type Server struct {
	addr    string
	engine  *engine.Engine
	logger  *zap.Logger
	metrics *observability.Metrics
	hub     *Hub

	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// New creates a Server and registers it as the engine's update handler so
// every published dashboard is broadcast to connected clients.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		addr:    opts.Addr,
		engine:  opts.Engine,
		logger:  logger,
		metrics: opts.Metrics,
		hub:     NewHub(logger, opts.Metrics),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The dashboard is read-only public data.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/dashboard", s.instrument("dashboard", s.handleDashboard)).Methods(http.MethodGet)
	router.HandleFunc("/api/domains/{domain}", s.instrument("domain", s.handleDomain)).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.engine.SetUpdateHandler(s.broadcastDashboard)
	return s
}

// ListenAndServe blocks serving HTTP until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.addr))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server and disconnects WebSocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

// Hub exposes the WebSocket hub, mainly for tests.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":    "ok",
		"computing": s.engine.Computing(),
	}
	if snap := s.engine.Snapshot(); snap != nil {
		status["records"] = snap.TotalRecords()
		status["loadedAt"] = snap.LoadedAt
	}
	writeJSON(w, http.StatusOK, status)
}

// handleDashboard serves the full six-domain dashboard. Without query
// parameters it reports the last seven days.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	startDate, endDate := rangeFromQuery(r)

	d, err := s.engine.Dashboard(r.Context(), startDate, endDate)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDomain(w http.ResponseWriter, r *http.Request) {
	name := domain.DomainName(mux.Vars(r)["domain"])
	if !knownDomain(name) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown domain"})
		return
	}

	startDate, endDate := rangeFromQuery(r)
	state, err := s.engine.Domain(r.Context(), name, startDate, endDate)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newWSClient(s.hub, conn)
	s.hub.add(client)

	// New subscribers immediately get the last published dashboard.
	if d := s.engine.Current(); d != nil {
		if payload, err := json.Marshal(d); err == nil {
			select {
			case client.send <- payload:
			default:
			}
		}
	}

	go client.writePump()
	go client.readPump()
}

func (s *Server) broadcastDashboard(d *domain.Dashboard) {
	payload, err := json.Marshal(d)
	if err != nil {
		s.logger.Error("encode dashboard for broadcast", zap.Error(err))
		return
	}
	s.hub.Broadcast(payload)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, window.ErrInvalidRange) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.logger.Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next(rec, r)
		if s.metrics != nil {
			s.metrics.HTTPRequestDuration.
				WithLabelValues(route, strconv.Itoa(rec.code)).
				Observe(time.Since(start).Seconds())
		}
	}
}

func rangeFromQuery(r *http.Request) (string, string) {
	startDate := r.URL.Query().Get("start")
	endDate := r.URL.Query().Get("end")
	if startDate == "" || endDate == "" {
		defStart, defEnd := window.DefaultRange(time.Now())
		if startDate == "" {
			startDate = defStart
		}
		if endDate == "" {
			endDate = defEnd
		}
	}
	return startDate, endDate
}

func knownDomain(name domain.DomainName) bool {
	for _, n := range domain.DomainNames {
		if n == name {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
