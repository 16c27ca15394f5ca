// Package sessiontokens declares the repository contract for session tokens:
// the persisted hash, owner, client fingerprint and expiry of every session.
package sessiontokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository defines operations for storing, looking up and deleting session tokens.
type Repository interface {
	// Create stores token. A clash on token_hash is reported as
	// common.ErrorAlreadyExists; the hash is never silently reused.
	Create(ctx context.Context, token *models.SessionToken) error

	// Find returns the token stored under tokenHash or common.ErrorNotFound.
	Find(ctx context.Context, tokenHash string) (*models.SessionToken, error)

	// Delete removes a token by hash. Deleting a missing token is not an error.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteByUser removes every token owned by identifier and returns how many went.
	DeleteByUser(ctx context.Context, identifier string) (int64, error)

	// DeleteExpired removes tokens with expires_at strictly before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
