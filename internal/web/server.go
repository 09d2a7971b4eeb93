// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

// Package web is the HTTP boundary of the admin panel: login, logout and
// the access-gated pages. Everything behind RequireAuth is reachable only
// with a valid session.
package web

import (
	"context"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/JJHAVOK/full-admin-panel/internal/auth"
	"github.com/JJHAVOK/full-admin-panel/internal/observability"
)

// Options configures the web server.
type Options struct {
	Addr       string
	StaticDir  string // served under /static/; empty disables
	CookieName string
	Metrics    *observability.Metrics // nil disables metric recording
	Logger     *slog.Logger           // nil uses slog.Default()
}

// Server serves the panel over HTTP.
type Server struct {
	addr       string
	staticDir  string
	cookie     SessionCookie
	auth       *auth.Service
	metrics    *observability.Metrics
	logger     *slog.Logger
	templates  *template.Template
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates a web server around the auth service.
func NewServer(service *auth.Service, opts Options) (*Server, error) {
	if service == nil {
		return nil, oops.Code("WEB_NIL_DEPENDENCY").Errorf("auth service is required")
	}
	if opts.Addr == "" {
		return nil, oops.Code("WEB_INVALID_ADDR").Errorf("listen address is required")
	}
	if opts.CookieName == "" {
		return nil, oops.Code("WEB_INVALID_COOKIE").Errorf("cookie name is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Server{
		addr:      opts.Addr,
		staticDir: opts.StaticDir,
		cookie:    SessionCookie{Name: opts.CookieName},
		auth:      service,
		metrics:   opts.Metrics,
		logger:    logger,
		templates: templates,
	}, nil
}

// Handler builds the route table. Exposed for httptest-based tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLoginSubmit)
	mux.HandleFunc("GET /logout", s.handleLogout)

	// Protected pages: all pass through the access gate.
	mux.Handle("GET /dashboard", s.RequireAuth(http.HandlerFunc(s.handleDashboard)))
	mux.Handle("GET /analytics", s.RequireAuth(http.HandlerFunc(s.handleAnalytics)))
	mux.Handle("GET /crm", s.RequireAuth(http.HandlerFunc(s.handleCRM)))

	if s.staticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))
	}

	mux.HandleFunc("/", s.handleRoot)

	return mux
}

// Start begins serving. It returns an error channel that will receive any
// errors from the HTTP server after it starts; the channel is closed when
// the server stops gracefully.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("web server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("web server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("web server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the web server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_web_server").Wrap(err)
		}
	}

	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
