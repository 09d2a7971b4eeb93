// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/samber/oops"

	"github.com/JJHAVOK/full-admin-panel/internal/auth"
	"github.com/JJHAVOK/full-admin-panel/pkg/errutil"
)

//go:embed templates/*.html
var templatesFS embed.FS

func parseTemplates() (*template.Template, error) {
	t, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, oops.Code("WEB_TEMPLATES_FAILED").Wrap(err)
	}
	return t, nil
}

// handleRoot redirects to the dashboard; the gate takes it from there.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// handleLoginPage serves the login form. Authenticated visitors are sent
// straight to the dashboard.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	token, _ := s.cookie.Read(r)
	identity, err := s.auth.Resolve(r.Context(), token)
	if err != nil {
		errutil.LogError(s.logger, "session resolution failed", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	if identity != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	s.render(w, "login.html", map[string]any{
		"Error": r.URL.Query().Get("error") != "",
	})
}

// handleLoginSubmit authenticates the submitted credentials. Rejections are
// uniform: the caller learns only that the pair was wrong, never which half.
func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	_, token, err := s.auth.Login(r.Context(), email, password)
	if err != nil {
		if auth.IsInvalidCredentials(err) {
			s.observeLogin("rejected")
			http.Redirect(w, r, "/login?error=1", http.StatusFound)
			return
		}
		s.observeLogin("error")
		errutil.LogError(s.logger, "login failed", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}

	s.observeLogin("success")
	s.cookie.Write(w, r, token, s.auth.SessionTTL())
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// handleLogout destroys the session unconditionally and clears the cookie.
// Logging out an already-dead session is fine.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := s.cookie.Read(r)
	if err := s.auth.Logout(r.Context(), token); err != nil {
		errutil.LogError(s.logger, "logout failed", err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	s.cookie.Clear(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// handleDashboard renders the dashboard for the resolved identity.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		// RequireAuth guarantees an identity; reaching here is a routing bug.
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	s.render(w, "dashboard.html", map[string]any{
		"Email": identity.Email,
		"Role":  identity.Role,
	})
}

// handleAnalytics is a protected placeholder page.
func (s *Server) handleAnalytics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	//nolint:errcheck // best effort page write
	w.Write([]byte("Analytics\n"))
}

// handleCRM is a protected placeholder page.
func (s *Server) handleCRM(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	//nolint:errcheck // best effort page write
	w.Write([]byte("CRM\n"))
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		errutil.LogError(s.logger, "template render failed", err)
	}
}

func (s *Server) observeLogin(result string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(result).Inc()
	}
}
