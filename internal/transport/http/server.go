package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	feedService "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/feed/service"
	runDomain "github.com/reshetovitsme/yandere-telegram-feed/internal/modules/run/domain"
	"github.com/reshetovitsme/yandere-telegram-feed/internal/shared/config"
	apperrors "github.com/reshetovitsme/yandere-telegram-feed/internal/shared/errors"
	sloghttp "github.com/samber/slog-http"
)

// StatusSource exposes the orchestrator state.
type StatusSource interface {
	Progress() runDomain.Progress
	LastReport() *runDomain.Report
}

// Trigger starts a tick in the background.
type Trigger interface {
	Trigger() error
	Next() string
}

// Server serves health, status, the RSS mirror and manual runs
type Server struct {
	cfg         *config.Config
	feedService *feedService.Service
	status      StatusSource
	trigger     Trigger
	logger      *slog.Logger
	server      *http.Server
}

// New creates a new HTTP server
func New(cfg *config.Config, feedService *feedService.Service, status StatusSource, trigger Trigger) *Server {
	s := &Server{
		cfg:         cfg,
		feedService: feedService,
		status:      status,
		trigger:     trigger,
		logger:      slog.Default(),
	}
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Core.HTTPPort),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// SetLogger sets the logger. Call it before Start.
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
	s.server.Handler = s.Handler()
}

// Handler builds the routed handler with logging and recovery middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /rss", s.handleRSSFeed)
	mux.HandleFunc("POST /run", s.handleRun)

	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)
	return handler
}

// Start starts the HTTP server; it returns http.ErrServerClosed after
// Shutdown, also when Shutdown ran first.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRSSFeed(w http.ResponseWriter, r *http.Request) {
	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)

	feed, err := s.feedService.GenerateFeed(baseURL)
	if err != nil {
		s.logger.Error("Error generating feed", "error", err)
		http.Error(w, "Failed to generate feed", http.StatusInternalServerError)
		return
	}

	rss, err := feed.ToRss()
	if err != nil {
		s.logger.Error("Error converting feed to RSS", "error", err)
		http.Error(w, "Failed to generate RSS", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(rss))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

type statusResponse struct {
	Progress   runDomain.Progress `json:"progress"`
	LastReport *runDomain.Report  `json:"last_report"`
	NextRun    string             `json:"next_run,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Progress:   s.status.Progress(),
		LastReport: s.status.LastReport(),
		NextRun:    s.trigger.Next(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if err := s.trigger.Trigger(); err != nil {
		if errors.Is(err, apperrors.ErrTickInProgress) {
			writeJSON(w, http.StatusConflict, map[string]string{"status": "running"})
			return
		}
		s.logger.Error("Failed to trigger run", "error", err)
		http.Error(w, "Failed to trigger run", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
