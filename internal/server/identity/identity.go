// Package identity exchanges a provider-issued ticket for a verified profile.
//
// The set of strategies is closed: Kind names every verifier the server can
// run, and New builds the one chosen in configuration.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// ErrUnreachable means the provider could not be asked or gave an unusable
// answer. It is a transient condition and is never retried here.
var ErrUnreachable = errors.New("identity provider unreachable")

// ErrUnknownKind is returned by ParseKind and New for unsupported strategies.
var ErrUnknownKind = errors.New("unknown verifier kind")

// RejectedError is returned when the provider explicitly declined the ticket.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "ticket rejected: " + e.Message
}

// Verifier turns a one-time ticket into an identifiers bundle.
type Verifier interface {
	Verify(ctx context.Context, ticket string) (*models.Identifiers, error)
}

// Kind enumerates the available verifier strategies.
type Kind string

const (
	KindRPX       Kind = "rpx"
	KindAnonymous Kind = "anonymous"
)

// ParseKind validates a configured strategy name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindRPX, KindAnonymous:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Options configures the verifier built by New. Only the RPX verifier reads them.
type Options struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	// AllowInsecure permits a plain http:// endpoint. Tests only.
	AllowInsecure bool
}

// New builds the verifier for kind.
func New(kind Kind, opts Options) (Verifier, error) {
	switch kind {
	case KindRPX:
		return NewRPXVerifier(opts)
	case KindAnonymous:
		return NewAnonymousVerifier(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
