package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// DefaultRPXEndpoint is the Janrain/RPX auth_info API.
const DefaultRPXEndpoint = "https://rpxnow.com/api/v2/auth_info"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

var (
	ErrMissingAPIKey    = errors.New("rpx: api key is required")
	ErrInsecureEndpoint = errors.New("rpx: endpoint must use https")
)

// RPXVerifier calls the auth_info endpoint of an RPX-compatible provider.
type RPXVerifier struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewRPXVerifier validates opts and returns a ready verifier.
func NewRPXVerifier(opts Options) (*RPXVerifier, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultRPXEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("rpx: bad endpoint: %w", err)
	}
	if u.Scheme != "https" && !(opts.AllowInsecure && u.Scheme == "http") {
		return nil, fmt.Errorf("%w: %q", ErrInsecureEndpoint, endpoint)
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &RPXVerifier{apiKey: opts.APIKey, endpoint: endpoint, client: client}, nil
}

type rpxName struct {
	Formatted  *string `json:"formatted"`
	FamilyName *string `json:"familyName"`
	GivenName  *string `json:"givenName"`
}

type rpxProfile struct {
	Identifier        string   `json:"identifier"`
	DisplayName       *string  `json:"displayName"`
	Email             *string  `json:"email"`
	Name              *rpxName `json:"name"`
	PreferredUsername *string  `json:"preferredUsername"`
	ProviderName      *string  `json:"providerName"`
	Provider          *string  `json:"provider"`
	URL               *string  `json:"url"`
	Photo             *string  `json:"photo"`
}

type rpxResponse struct {
	Stat    string      `json:"stat"`
	Profile *rpxProfile `json:"profile"`
	Err     *struct {
		Msg  string `json:"msg"`
		Code int    `json:"code"`
	} `json:"err"`
}

// Verify posts the ticket to auth_info. Transport problems, non-2xx answers
// and undecodable bodies wrap ErrUnreachable; "stat":"fail" and profiles
// without an identifier are *RejectedError.
func (v *RPXVerifier) Verify(ctx context.Context, ticket string) (*models.Identifiers, error) {
	form := url.Values{}
	form.Set("token", ticket)
	form.Set("apiKey", v.apiKey)
	form.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	var payload rpxResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnreachable, err)
	}

	switch payload.Stat {
	case "ok":
		if payload.Profile == nil || strings.TrimSpace(payload.Profile.Identifier) == "" {
			return nil, &RejectedError{Message: "profile has no identifier"}
		}
		return payload.Profile.identifiers(), nil
	case "fail":
		msg := "unknown error"
		if payload.Err != nil && payload.Err.Msg != "" {
			msg = payload.Err.Msg
		}
		return nil, &RejectedError{Message: msg}
	default:
		return nil, fmt.Errorf("%w: unexpected stat %q", ErrUnreachable, payload.Stat)
	}
}

func (p *rpxProfile) identifiers() *models.Identifiers {
	ids := &models.Identifiers{
		Identifier:        p.Identifier,
		DisplayName:       p.DisplayName,
		Email:             p.Email,
		Provider:          p.ProviderName,
		PreferredUsername: p.PreferredUsername,
		URL:               p.URL,
		Photo:             p.Photo,
	}
	if ids.Provider == nil {
		ids.Provider = p.Provider
	}
	if p.Name != nil {
		ids.FormattedName = p.Name.Formatted
		ids.FamilyName = p.Name.FamilyName
		ids.GivenName = p.Name.GivenName
	}
	return ids
}
