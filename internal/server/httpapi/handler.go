package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/transport"
)

const (
	maxFormBytes = 64 << 10
	pingTimeout  = 2 * time.Second
)

func (s *Server) begin(w http.ResponseWriter, r *http.Request) *services.Session {
	creds := transport.NewCookieCredentials(w, r, s.credentialKey)
	return s.manager.Begin(creds, auth.Fingerprint(r.UserAgent()))
}

// handleLogin is the provider callback: the ticket arrives as form field "token".
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed form"})
		return
	}

	user, err := s.begin(w, r).Login(r.Context(), r.PostForm.Get("token"))
	if err != nil {
		s.fail(w, r, "login refused", err)
		return
	}

	writeJSON(w, http.StatusOK, user.Attributes())
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.begin(w, r).CurrentUser(r.Context())
	if err != nil {
		s.fail(w, r, "error resolving session", err)
		return
	}

	writeJSON(w, http.StatusOK, user.Attributes())
}

// handleLogout ends the session; ?all=1 ends every session of the user.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	user, err := s.begin(w, r).Logout(r.Context(), all)
	if err != nil {
		s.fail(w, r, "error ending session", err)
		return
	}

	writeJSON(w, http.StatusOK, user.Attributes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := s.pinger.PingContext(ctx); err != nil {
		s.logger.Warn(ctx, "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	code, body := statusFor(err)

	args := []any{"request_id", RequestIDFromContext(r.Context()), "status", code, "error", err}
	if code >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), msg, args...)
	} else {
		s.logger.Info(r.Context(), msg, args...)
	}

	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
