package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cookieName = "gophauth_session"
	testUA     = "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0"
)

var testKey = []byte("http-test-key")

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, ticket string) (*models.Identifiers, error) {
	switch ticket {
	case "down":
		return nil, fmt.Errorf("%w: timeout", identity.ErrUnreachable)
	case "bad":
		return nil, &identity.RejectedError{Message: "Data not found"}
	case "bad-email":
		email := "not an email"
		return &models.Identifiers{Identifier: "https://id.example/bad-email", Email: &email}, nil
	}
	return &models.Identifiers{Identifier: "https://id.example/" + ticket}, nil
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func newTestServer(t *testing.T, opts services.SessionOptions) (*Server, *services.TokenStore) {
	t.Helper()

	db, rm := repotest.NewSQLite(t)
	dir := services.NewDirectory(db, rm, logging.Nop{})
	tokens := services.NewTokenStore(db, rm, auth.NewCodec(testKey), logging.Nop{})

	opts.SecretKey = testKey
	if opts.TTL == 0 {
		opts.TTL = time.Hour
	}
	m := services.NewSessionManager(stubVerifier{}, dir, tokens, opts, logging.Nop{})

	return NewServer("127.0.0.1:0", logging.Nop{}, m, cookieName, db), tokens
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set("User-Agent", testUA)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", cookieName)
	return nil
}

func TestLoginMeLogout(t *testing.T) {
	s, _ := newTestServer(t, services.SessionOptions{})
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/auth/login", url.Values{"token": {"alice"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://id.example/alice", decode(t, rec)["identifier"])

	cookie := sessionCookie(t, rec)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)

	rec = do(t, h, http.MethodGet, "/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec)
	assert.Equal(t, "https://id.example/alice", me["identifier"])
	assert.Equal(t, float64(1), me["login_count"])

	rec = do(t, h, http.MethodPost, "/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["anonymous"])
	assert.Equal(t, -1, sessionCookie(t, rec).MaxAge)

	rec = do(t, h, http.MethodGet, "/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["anonymous"])
}

func TestMe_OtherUserAgentIsAnonymous(t *testing.T) {
	s, _ := newTestServer(t, services.SessionOptions{})
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/auth/login", url.Values{"token": {"alice"}})
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("User-Agent", "curl/8.5.0")
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["anonymous"])
	assert.Equal(t, -1, sessionCookie(t, rec).MaxAge)

	// the mismatch destroyed the token, so the first agent is out too
	rec = do(t, h, http.MethodGet, "/auth/me", nil, cookie)
	assert.Equal(t, true, decode(t, rec)["anonymous"])
}

func TestLogoutAll(t *testing.T) {
	s, _ := newTestServer(t, services.SessionOptions{})
	h := s.Handler()

	first := sessionCookie(t, do(t, h, http.MethodPost, "/auth/login", url.Values{"token": {"alice"}}))
	second := sessionCookie(t, do(t, h, http.MethodPost, "/auth/login", url.Values{"token": {"alice"}}))

	rec := do(t, h, http.MethodPost, "/auth/logout?all=1", nil, first)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/auth/me", nil, second)
	assert.Equal(t, true, decode(t, rec)["anonymous"])
}

func TestLogin_Errors(t *testing.T) {
	s, _ := newTestServer(t, services.SessionOptions{})
	h := s.Handler()

	tests := []struct {
		name   string
		ticket string
		want   int
	}{
		{"missing", "", http.StatusBadRequest},
		{"unreachable", "down", http.StatusServiceUnavailable},
		{"rejected", "bad", http.StatusUnauthorized},
		{"invalid profile", "bad-email", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/auth/login", url.Values{"token": {tt.ticket}})
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestLogin_InvalidProfileListsFields(t *testing.T) {
	s, _ := newTestServer(t, services.SessionOptions{})

	rec := do(t, s.Handler(), http.MethodPost, "/auth/login", url.Values{"token": {"bad-email"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []fieldBody{{Field: "email", Rule: services.RuleEmail}}, body.Fields)
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, services.SessionOptions{})

	rec := do(t, s.Handler(), http.MethodGet, "/auth/login", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestID(t *testing.T) {
	s, _ := newTestServer(t, services.SessionOptions{})
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/auth/me", nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, services.SessionOptions{})

	rec := do(t, s.Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.pinger = pingerFunc(func(context.Context) error { return errors.New("db down") })
	rec = do(t, s.Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRecoverPanic(t *testing.T) {
	s := NewServer("127.0.0.1:0", logging.Nop{}, nil, cookieName, nil)

	// a nil manager panics as soon as a ticket needs verifying
	rec := do(t, s.Handler(), http.MethodPost, "/auth/login", url.Values{"token": {"alice"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	s := NewServer("127.0.0.1:0", logging.Nop{}, nil, cookieName, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	s := NewServer("127.0.0.1:99999", logging.Nop{}, nil, cookieName, nil)
	assert.Error(t, s.Run(context.Background()))
}
