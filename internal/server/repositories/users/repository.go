// Package users persists local accounts. Rows are created once per external
// identifier and afterwards only touched by login bookkeeping.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository is the user store used by the directory service.
//
// Get returns common.ErrorNotFound for an unknown identifier. Create returns
// common.ErrorAlreadyExists when the identifier is taken. RecordLogin bumps
// login_count and stamps last_login/updated in a single statement.
type Repository interface {
	Get(ctx context.Context, identifier string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	RecordLogin(ctx context.Context, identifier string, at time.Time) (*models.User, error)
}
