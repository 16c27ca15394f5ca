package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/identity"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/transport"
)

// UserDirectory is what the session manager needs from Directory.
type UserDirectory interface {
	FindOrCreate(ctx context.Context, ids *models.Identifiers) (*models.User, error)
	RecordLogin(ctx context.Context, user *models.User) (*models.User, error)
}

// SessionTokens is what the session manager needs from TokenStore.
type SessionTokens interface {
	Issue(ctx context.Context, user *models.User, fingerprint string, ttl time.Duration) (*IssuedToken, error)
	Resolve(ctx context.Context, identifier, secret, fingerprint string) (*models.User, error)
	Revoke(ctx context.Context, identifier, secret string) error
	RevokeAll(ctx context.Context, identifier string) (int64, error)
}

// SessionOptions are the policy knobs of a SessionManager.
type SessionOptions struct {
	// SecretKey signs the credential envelope.
	SecretKey []byte
	// TTL is the lifetime of new sessions and of the client credential.
	TTL time.Duration
	// DisabledLoginFails makes Login return ErrAccountDisabled instead of the
	// anonymous user for disabled accounts.
	DisabledLoginFails bool
}

// SessionManager is built once at startup and shared by every request.
type SessionManager struct {
	verifier  identity.Verifier
	directory UserDirectory
	tokens    SessionTokens
	opts      SessionOptions
	logger    logging.Logger
}

func NewSessionManager(v identity.Verifier, d UserDirectory, t SessionTokens, opts SessionOptions, logger logging.Logger) *SessionManager {
	return &SessionManager{
		verifier:  v,
		directory: d,
		tokens:    t,
		opts:      opts,
		logger:    logger,
	}
}

// Begin opens the request-scoped view of the session carried by creds.
// fingerprint is auth.Fingerprint of the client's User-Agent.
func (m *SessionManager) Begin(creds transport.Credentials, fingerprint string) *Session {
	return &Session{m: m, creds: creds, fingerprint: fingerprint}
}

// Session is one request's handle on the session layer. It memoizes the
// current user for the lifetime of the request and is not safe for
// concurrent use.
type Session struct {
	m           *SessionManager
	creds       transport.Credentials
	fingerprint string

	resolved bool
	user     *models.User
}

// Login exchanges a provider ticket for a session. On success the credential
// is written to the client and the logged-in user is returned.
func (s *Session) Login(ctx context.Context, ticket string) (*models.User, error) {
	if ticket == "" {
		return nil, ErrMissingCredential
	}

	ids, err := s.m.verifier.Verify(ctx, ticket)
	if err != nil {
		s.m.logger.Warn(ctx, "ticket verification failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	user, err := s.m.directory.FindOrCreate(ctx, ids)
	if err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			s.m.logger.Info(ctx, "profile rejected", "identifier", ids.Identifier, "error", verrs)
			return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, verrs)
		}
		return nil, err
	}

	if !user.IsEnabled {
		s.m.logger.Info(ctx, "login by disabled account", "identifier", user.Identifier)
		if s.m.opts.DisabledLoginFails {
			return nil, ErrAccountDisabled
		}
		return models.AnonymousUser(), nil
	}

	user, err = s.m.directory.RecordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	issued, err := s.m.tokens.Issue(ctx, user, s.fingerprint, s.m.opts.TTL)
	if err != nil {
		return nil, err
	}

	value, err := auth.GenerateCredential(user.Identifier, issued.Secret, s.m.opts.SecretKey, s.m.opts.TTL)
	if err != nil {
		return nil, fmt.Errorf("error sealing credential: %w", err)
	}
	s.creds.Set(value, s.m.opts.TTL)

	s.resolved, s.user = true, user
	s.m.logger.Info(ctx, "user logged in", "identifier", user.Identifier, "login_count", user.LoginCount)
	return user, nil
}

// CurrentUser returns the user behind the presented credential, or the
// anonymous user. Unusable credentials are cleared from the client. Only
// storage failures produce an error.
func (s *Session) CurrentUser(ctx context.Context) (*models.User, error) {
	if s.resolved {
		return s.user, nil
	}

	user, err := s.resolve(ctx)
	if err != nil {
		return models.AnonymousUser(), err
	}

	s.resolved, s.user = true, user
	return user, nil
}

func (s *Session) resolve(ctx context.Context) (*models.User, error) {
	value, ok := s.creds.Get()
	if !ok {
		return models.AnonymousUser(), nil
	}

	identifier, secret, err := auth.ParseCredential(value, s.m.opts.SecretKey)
	if err != nil {
		s.m.logger.Debug(ctx, "discarding unusable credential", "error", err)
		s.creds.Delete()
		return models.AnonymousUser(), nil
	}

	user, err := s.m.tokens.Resolve(ctx, identifier, secret, s.fingerprint)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.creds.Delete()
		return models.AnonymousUser(), nil
	}
	return user, nil
}

// Logout ends the current session, or every session of its user when all is
// set, and clears the client credential. Without a credential it does nothing.
// The anonymous user is always returned.
func (s *Session) Logout(ctx context.Context, all bool) (*models.User, error) {
	value, ok := s.creds.Get()
	if !ok {
		s.resolved, s.user = true, models.AnonymousUser()
		return s.user, nil
	}

	var err error
	if all {
		err = s.revokeAll(ctx)
	} else if identifier, secret, perr := auth.ParseCredential(value, s.m.opts.SecretKey); perr == nil {
		if err = s.m.tokens.Revoke(ctx, identifier, secret); err == nil {
			s.m.logger.Info(ctx, "user logged out", "identifier", identifier)
		}
	}

	s.creds.Delete()
	s.resolved, s.user = true, models.AnonymousUser()
	return s.user, err
}

// revokeAll only acts on a live session; a stale credential ends nothing.
func (s *Session) revokeAll(ctx context.Context) error {
	user, err := s.CurrentUser(ctx)
	if err != nil || user.IsAnonymous() {
		return err
	}

	n, err := s.m.tokens.RevokeAll(ctx, user.Identifier)
	if err != nil {
		return err
	}
	s.m.logger.Info(ctx, "user logged out everywhere", "identifier", user.Identifier, "sessions", n)
	return nil
}
