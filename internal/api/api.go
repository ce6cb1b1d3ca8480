// Package api provides HTTP handlers and the main API server logic for enrollbot.
//
// It exposes the chat endpoint driven by the dialogue engine, lead capture and
// management endpoints backed by the store, the analytics summary, and
// Prometheus metrics. The server itself is stateless: conversation state
// travels with the client on every request.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/learningcurve/enrollbot/internal/genai"
	"github.com/learningcurve/enrollbot/internal/notify"
	"github.com/learningcurve/enrollbot/internal/store"
)

// Server configuration defaults.
const (
	// DefaultAPIAddr is the default address for the API server.
	DefaultAPIAddr = ":8080"
	// DefaultFreeformTimeout bounds one free-form AI completion.
	DefaultFreeformTimeout = 15 * time.Second
	// DefaultNotifyTimeout bounds the background delivery of one lead alert.
	DefaultNotifyTimeout = 30 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr           string
	AdminAPIKey    string
	AllowedOrigins []string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithAdminAPIKey protects the staff endpoints with an X-API-Key check. When
// empty the staff endpoints are open, which is only sensible in development.
func WithAdminAPIKey(key string) Option {
	return func(o *Opts) { o.AdminAPIKey = key }
}

// WithAllowedOrigins sets the origins the browser widget may call from.
func WithAllowedOrigins(origins []string) Option {
	return func(o *Opts) { o.AllowedOrigins = origins }
}

// Server routes HTTP requests to the dialogue engine, store, and notifier.
type Server struct {
	st             store.Store
	responder      genai.FreeformResponder
	notifier       notify.Notifier
	adminAPIKey    string
	allowedOrigins []string
}

// NewServer wires the collaborators into a server. Nil collaborators are
// replaced with safe defaults so tests can pass only what they exercise.
func NewServer(st store.Store, responder genai.FreeformResponder, notifier notify.Notifier, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if st == nil {
		st = store.NewInMemoryStore()
	}
	if responder == nil {
		responder = genai.StaticResponder{}
	}
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	return &Server{
		st:             st,
		responder:      responder,
		notifier:       notifier,
		adminAPIKey:    cfg.AdminAPIKey,
		allowedOrigins: cfg.AllowedOrigins,
	}
}

// Router builds the chi router with all endpoints mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.chatHandler)
		r.Post("/leads", s.createLeadHandler)
		r.Get("/health", s.healthHandler)

		// Staff endpoints.
		r.Group(func(r chi.Router) {
			r.Use(s.adminAuthMiddleware)
			r.Get("/leads", s.listLeadsHandler)
			r.Put("/leads/{id}", s.updateLeadStatusHandler)
			r.Get("/analytics", s.analyticsHandler)
		})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// corsMiddleware answers preflight requests and stamps allowed origins so the
// embedded widget can call the API cross-origin.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// adminAuthMiddleware gates staff endpoints behind the configured API key.
func (s *Server) adminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminAPIKey != "" && r.Header.Get("X-API-Key") != s.adminAPIKey {
			slog.Warn("Server.adminAuthMiddleware: rejected request", "path", r.URL.Path)
			writeJSONResponse(w, http.StatusUnauthorized, map[string]interface{}{
				"status":  "error",
				"message": "Invalid or missing API key",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run assembles the configured modules and serves the API until the listener
// fails. It owns backend selection: the store is chosen by DSN, the responder
// degrades to a static fallback, and notification channels are attached only
// when their credentials are present.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, resendOpts []notify.ResendOption, twilioOpts []notify.TwilioOption, apiOpts []Option) error {
	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	var responder genai.FreeformResponder
	if client, err := genai.NewClient(genaiOpts...); err != nil {
		slog.Warn("Run: AI responder not configured, using static fallback", "error", err)
		responder = genai.StaticResponder{}
	} else {
		responder = client
	}

	notifier := buildNotifier(resendOpts, twilioOpts)

	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAPIAddr
	}

	srv := NewServer(st, responder, notifier, apiOpts...)
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	slog.Info("enrollbot API running", "addr", cfg.Addr, "admin_key_set", cfg.AdminAPIKey != "")
	return httpServer.ListenAndServe()
}

// buildStore selects the storage backend from the configured DSN.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Warn("Run: no database DSN configured, using in-memory store (leads lost on restart)")
		return store.NewInMemoryStore(), nil
	}
	switch store.DetectDSNType(cfg.DSN) {
	case "postgres":
		slog.Info("Run: using PostgreSQL store")
		return store.NewPostgresStore(storeOpts...)
	default:
		slog.Info("Run: using SQLite store", "path", cfg.DSN)
		return store.NewSQLiteStore(storeOpts...)
	}
}

// buildNotifier attaches every channel whose credentials are configured.
func buildNotifier(resendOpts []notify.ResendOption, twilioOpts []notify.TwilioOption) notify.Notifier {
	var channels notify.MultiNotifier
	if n, err := notify.NewResendNotifier(resendOpts...); err != nil {
		slog.Warn("Run: email notifications disabled", "error", err)
	} else {
		slog.Info("Run: email notifications enabled")
		channels = append(channels, n)
	}
	if n, err := notify.NewTwilioNotifier(twilioOpts...); err != nil {
		slog.Warn("Run: WhatsApp notifications disabled", "error", err)
	} else {
		slog.Info("Run: WhatsApp notifications enabled")
		channels = append(channels, n)
	}
	if len(channels) == 0 {
		slog.Warn("Run: no notification channel configured, lead alerts will be logged only")
		return notify.NoopNotifier{}
	}
	return channels
}
