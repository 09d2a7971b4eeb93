// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package web

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookie centralizes session cookie behavior. The cookie carries the
// plaintext session token; it is HttpOnly and never readable by page
// scripts.
type SessionCookie struct {
	Name string
}

// Read returns the trimmed session token when present.
func (c SessionCookie) Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(c.Name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// Write sets the session cookie with a lifetime matching the session TTL.
func (c SessionCookie) Write(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    strings.TrimSpace(token),
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (c SessionCookie) Clear(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func isHTTPS(r *http.Request) bool {
	return r != nil && r.TLS != nil
}
