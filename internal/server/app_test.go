package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = ":memory:"
	c.VerifierKind = string(identity.KindAnonymous)
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	return c
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := newApp(context.Background(), testConfig(), logging.Nop{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}

func TestApp_RunFailsOnBadAddress(t *testing.T) {
	c := testConfig()
	c.EndpointAddrGRPC = "127.0.0.1:99999"

	app, err := newApp(context.Background(), c, logging.Nop{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app kept running after a server failed to start")
	}
}

func TestNewApp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
		is     error
	}{
		{"bad dsn", func(c *config.Config) { c.DatabaseDSN = "mysql://x" }, nil},
		{"unknown verifier", func(c *config.Config) { c.VerifierKind = "ldap" }, identity.ErrUnknownKind},
		{"rpx without key", func(c *config.Config) { c.VerifierKind = "rpx"; c.ProviderAPIKey = "" }, identity.ErrMissingAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig()
			tt.mutate(c)

			_, err := newApp(context.Background(), c, logging.Nop{})
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestSweepOnce_RemovesExpired(t *testing.T) {
	c := testConfig()
	c.DatabaseDSN = "sqlite://" + filepath.Join(t.TempDir(), "auth.db")
	ctx := context.Background()

	db, rm, err := openStore(ctx, c)
	require.NoError(t, err)

	user, err := services.NewDirectory(db, rm, logging.Nop{}).
		FindOrCreate(ctx, &models.Identifiers{Identifier: "https://id.example/alice"})
	require.NoError(t, err)

	tokens := services.NewTokenStore(db, rm, auth.NewCodec([]byte(c.SecretKey)), logging.Nop{})
	_, err = tokens.Issue(ctx, user, auth.Fingerprint("ua"), -time.Minute)
	require.NoError(t, err)
	_, err = tokens.Issue(ctx, user, auth.Fingerprint("ua"), time.Hour)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	n, err := sweepOnce(ctx, c, logging.Nop{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
