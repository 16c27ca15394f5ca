package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations accept
// "36h" style strings or plain seconds (see timex.Duration). Pointer fields
// distinguish "absent" from "zero" so a partial file only overrides what it names.
type JsonConfig struct {
	EndpointAddrHTTP   *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC   *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN        *string         `json:"database_dsn"`
	SecretKey          *string         `json:"secret_key"`
	ProviderAPIKey     *string         `json:"provider_api_key"`
	ProviderEndpoint   *string         `json:"provider_endpoint"`
	ProviderTimeout    *timex.Duration `json:"provider_timeout"`
	VerifierKind       *string         `json:"verifier"`
	CredentialKey      *string         `json:"credential_key"`
	SessionTTL         *timex.Duration `json:"session_ttl"`
	SweepInterval      *timex.Duration `json:"sweep_interval"`
	DisabledLoginFails *bool           `json:"disabled_login_fails"`
}

// parseJson loads the file named by -c/-config into config. Without the flag
// nothing happens. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	path := flagx.ConfigFile(args())
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.ProviderAPIKey, c.ProviderAPIKey)
	setString(&config.ProviderEndpoint, c.ProviderEndpoint)
	setString(&config.VerifierKind, c.VerifierKind)
	setString(&config.CredentialKey, c.CredentialKey)
	if c.ProviderTimeout != nil {
		config.ProviderTimeout = c.ProviderTimeout.Duration
	}
	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.SweepInterval != nil {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.DisabledLoginFails != nil {
		config.DisabledLoginFails = *c.DisabledLoginFails
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
