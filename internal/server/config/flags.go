package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC bind address (e.g., ":50051")
//	-d string   database DSN
//	-s string   server secret key
//	-k string   identity provider API key
//	-p string   identity provider auth_info endpoint
//	-v string   verifier kind: rpx | anonymous
//	-n string   credential (cookie / metadata) name
//	-t int      session lifetime, seconds
//	-w int      expired-token sweep interval, seconds
//	-f          fail loudly on disabled accounts
//
// Only these flags are parsed (see flagx.FilterArgs), so -c/-config and any
// flags owned by other components do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(args(), []string{"-a", "-g", "-d", "-s", "-k", "-p", "-v", "-n", "-t", "-w"}, "-f")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.ProviderAPIKey, "k", config.ProviderAPIKey, "identity provider API key")
	fs.StringVar(&config.ProviderEndpoint, "p", config.ProviderEndpoint, "identity provider auth_info endpoint")
	fs.StringVar(&config.VerifierKind, "v", config.VerifierKind, "verifier kind (rpx, anonymous)")
	fs.StringVar(&config.CredentialKey, "n", config.CredentialKey, "credential cookie/metadata name")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Seconds()), "session lifetime (in seconds)")
	sweepInterval := fs.Int("w", int(config.SweepInterval.Seconds()), "expired token sweep interval (in seconds)")

	fs.BoolVar(&config.DisabledLoginFails, "f", config.DisabledLoginFails, "report disabled accounts as errors")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Second
	config.SweepInterval = time.Duration(*sweepInterval) * time.Second
}
