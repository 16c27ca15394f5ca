package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:8081", "-g", "127.0.0.1:9090", "-d", "sqlite://auth.db", "-s", "secret",
			"-k", "apikey", "-p", "https://idp.example/auth_info", "-v", "anonymous", "-n", "sid",
			"-t", "60", "-w", "5", "-f",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:   "127.0.0.1:8081",
				EndpointAddrGRPC:   "127.0.0.1:9090",
				DatabaseDSN:        "sqlite://auth.db",
				SecretKey:          "secret",
				ProviderAPIKey:     "apikey",
				ProviderEndpoint:   "https://idp.example/auth_info",
				VerifierKind:       "anonymous",
				CredentialKey:      "sid",
				SessionTTL:         time.Minute,
				SweepInterval:      5 * time.Second,
				DisabledLoginFails: true,
			}},
		{name: "unknown flags are ignored", args: []string{"cmd", "-x", "1", "-config", "c.json", "-s", "s2"},
			expected: &Config{SecretKey: "s2"}},
		{name: "bool flag keeps later flags", args: []string{"cmd", "-f", "serve", "-t", "30"},
			expected: &Config{DisabledLoginFails: true, SessionTTL: 30 * time.Second}},
		{name: "bad ttl panics", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
