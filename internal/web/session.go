package web

import (
	"context"
	"net/http"
)

type ctxKey int

const sessionIDKey ctxKey = iota

// withSession ensures every API request runs under a live session. It
// reads the session cookie, creates a fresh session when the cookie is
// missing or names an expired one, and re-sets the cookie when the ID
// changes.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var current string
		if c, err := r.Cookie(s.cfg.Session.CookieName); err == nil {
			current = c.Value
		}

		id := s.service.EnsureSession(current)
		if id != current {
			http.SetCookie(w, &http.Cookie{
				Name:     s.cfg.Session.CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID returns the session ID installed by withSession.
func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionIDKey).(string)
	return id
}
