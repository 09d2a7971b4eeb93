// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package web

import (
	"context"
	"net/http"

	"github.com/JJHAVOK/full-admin-panel/internal/auth"
	"github.com/JJHAVOK/full-admin-panel/pkg/errutil"
)

type identityContextKey struct{}

// IdentityFromContext returns the identity injected by RequireAuth.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*auth.Identity)
	return identity, ok
}

// withIdentity returns a request whose context carries the identity.
func withIdentity(r *http.Request, identity *auth.Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityContextKey{}, identity))
}

// RequireAuth is the access gate. It resolves the session cookie before the
// protected handler runs: anonymous requests are redirected to /login with
// no protected payload constructed, and resolver failures deny with a
// generic service error - a broken store never fails open.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _ := s.cookie.Read(r)

		identity, err := s.auth.Resolve(r.Context(), token)
		if err != nil {
			s.observeResolution("error")
			errutil.LogError(s.logger, "session resolution failed", err)
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		if identity == nil {
			s.observeResolution("anonymous")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		s.observeResolution("authenticated")
		next.ServeHTTP(w, withIdentity(r, identity))
	})
}

func (s *Server) observeResolution(outcome string) {
	if s.metrics != nil {
		s.metrics.SessionsResolvedTotal.WithLabelValues(outcome).Inc()
	}
}
