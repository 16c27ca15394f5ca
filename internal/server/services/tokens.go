package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// secretBytes is the entropy of a session secret before hex encoding.
const secretBytes = 32

// newSecret is a seam for tests.
var newSecret = func() (string, error) {
	return common.MakeRandHexString(secretBytes)
}

// IssuedToken pairs the stored token with the secret only the client keeps.
type IssuedToken struct {
	Secret string
	Token  *models.SessionToken
}

// TokenStore issues, resolves and deletes session tokens.
//
// A token moves Issued -> Valid -> Expired or Revoked; both end states are
// physical deletion. Mismatched and expired tokens are deleted as soon as a
// lookup notices them.
type TokenStore struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	codec       *auth.Codec
	logger      logging.Logger
	now         func() time.Time
}

func NewTokenStore(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec, logger logging.Logger) *TokenStore {
	return &TokenStore{
		db:          db,
		repomanager: m,
		codec:       codec,
		logger:      logger,
		now:         time.Now,
	}
}

// Issue mints a secret for user, stores its hash bound to fingerprint and
// returns both. A hash collision is an error, never an overwrite.
func (s *TokenStore) Issue(ctx context.Context, user *models.User, fingerprint string, ttl time.Duration) (*IssuedToken, error) {
	secret, err := newSecret()
	if err != nil {
		return nil, fmt.Errorf("error generating secret: %w", err)
	}

	now := s.now()
	token := &models.SessionToken{
		TokenHash:      s.codec.Derive(secret, user.Identifier),
		UserIdentifier: user.Identifier,
		UserAgent:      fingerprint,
		ExpiresAt:      now.Add(ttl),
		Created:        now,
		Updated:        now,
	}

	if err := s.repomanager.SessionTokens(s.db).Create(ctx, token); err != nil {
		return nil, fmt.Errorf("error storing session token: %w", err)
	}

	return &IssuedToken{Secret: secret, Token: token}, nil
}

// Resolve returns the user owning the session (identifier, secret) when the
// token exists, has not expired and was issued to the same fingerprint.
// Every "no session" outcome is (nil, nil). The lookup, any discard and the
// owner read share one transaction.
func (s *TokenStore) Resolve(ctx context.Context, identifier, secret, fingerprint string) (*models.User, error) {
	hash := s.codec.Derive(secret, identifier)

	var user *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.resolve(ctx, tx, hash, identifier, fingerprint)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *TokenStore) resolve(ctx context.Context, tx dbx.DBTX, hash, identifier, fingerprint string) (*models.User, error) {
	token, err := s.repomanager.SessionTokens(tx).Find(ctx, hash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error searching session token: %w", err)
	}

	if token.UserIdentifier != identifier {
		return nil, nil
	}

	if token.Expired(s.now()) {
		s.logger.Debug(ctx, "session token expired", "identifier", identifier)
		return nil, s.discard(ctx, tx, hash)
	}

	if !auth.Equal(token.UserAgent, fingerprint) {
		s.logger.Warn(ctx, "session token fingerprint mismatch", "identifier", identifier)
		return nil, s.discard(ctx, tx, hash)
	}

	user, err := s.repomanager.Users(tx).Get(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

// Revoke deletes the single session (identifier, secret). Missing sessions are fine.
func (s *TokenStore) Revoke(ctx context.Context, identifier, secret string) error {
	return s.discard(ctx, s.db, s.codec.Derive(secret, identifier))
}

// RevokeAll deletes every session of identifier.
func (s *TokenStore) RevokeAll(ctx context.Context, identifier string) (int64, error) {
	n, err := s.repomanager.SessionTokens(s.db).DeleteByUser(ctx, identifier)
	if err != nil {
		return 0, fmt.Errorf("error revoking sessions: %w", err)
	}
	return n, nil
}

// SweepExpired deletes every token that expired before now.
func (s *TokenStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repomanager.SessionTokens(s.db).DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("error sweeping session tokens: %w", err)
	}
	return n, nil
}

func (s *TokenStore) discard(ctx context.Context, db dbx.DBTX, hash string) error {
	if err := s.repomanager.SessionTokens(db).Delete(ctx, hash); err != nil {
		return fmt.Errorf("error deleting session token: %w", err)
	}
	return nil
}
