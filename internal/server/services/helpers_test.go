package services

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repotest"
)

// --- helpers ---

var testKey = []byte("test-server-key")

func strPtr(s string) *string { return &s }

// memCreds is an in-memory transport.Credentials.
type memCreds struct {
	mu      sync.Mutex
	value   string
	ttl     time.Duration
	sets    int
	deletes int
}

func (c *memCreds) Get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.value != ""
}

func (c *memCreds) Set(value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value, c.ttl = value, ttl
	c.sets++
}

func (c *memCreds) Delete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = ""
	c.deletes++
}

type fakeVerifier struct {
	ids   *models.Identifiers
	err   error
	calls atomic.Int32
}

func (v *fakeVerifier) Verify(ctx context.Context, ticket string) (*models.Identifiers, error) {
	v.calls.Add(1)
	if v.err != nil {
		return nil, v.err
	}
	ids := *v.ids
	return &ids, nil
}

type fixture struct {
	db        *sql.DB
	rm        repomanager.RepositoryManager
	directory *Directory
	tokens    *TokenStore
	verifier  *fakeVerifier
	manager   *SessionManager
	now       time.Time
}

func newFixture(t *testing.T, opts SessionOptions) *fixture {
	t.Helper()
	db, rm := repotest.NewSQLite(t)

	f := &fixture{
		db:       db,
		rm:       rm,
		verifier: &fakeVerifier{ids: &models.Identifiers{Identifier: "https://id.example/alice", DisplayName: strPtr("Alice")}},
		now:      time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	f.directory = NewDirectory(db, rm, logging.Nop{})
	f.directory.now = clock
	f.tokens = NewTokenStore(db, rm, auth.NewCodec(testKey), logging.Nop{})
	f.tokens.now = clock

	if opts.SecretKey == nil {
		opts.SecretKey = testKey
	}
	if opts.TTL == 0 {
		opts.TTL = time.Hour
	}
	f.manager = NewSessionManager(f.verifier, f.directory, f.tokens, opts, logging.Nop{})
	return f
}

func (f *fixture) countTokens(t *testing.T) int {
	t.Helper()
	var n int
	if err := f.db.QueryRow(`SELECT COUNT(*) FROM session_tokens`).Scan(&n); err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	return n
}

func (f *fixture) seedUser(t *testing.T, identifier string, enabled bool) *models.User {
	t.Helper()
	u, err := f.rm.Users(f.db).Create(context.Background(), &models.User{
		Identifier: identifier, IsEnabled: enabled, Created: f.now, Updated: f.now,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}
