// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// TokenHeader is the alternative to a bearer Authorization header.
const TokenHeader = "X-API-Token"

// RequireToken rejects requests that do not carry a token matching the
// bcrypt hash. The token is read from "Authorization: Bearer <token>" or
// the X-API-Token header. An empty hash disables the check.
func RequireToken(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if hash == "" {
			return next
		}
		hashed := []byte(hash)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := requestToken(r)
			if token == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="pagestore"`)
				writeError(w, "Missing API token.", http.StatusUnauthorized)
				return
			}
			if err := bcrypt.CompareHashAndPassword(hashed, []byte(token)); err != nil {
				slog.Warn("api token rejected", "remote", r.RemoteAddr, "path", r.URL.Path)
				w.Header().Set("WWW-Authenticate", `Bearer realm="pagestore", error="invalid_token"`)
				writeError(w, "Invalid API token.", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get(TokenHeader))
}
