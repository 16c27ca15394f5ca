package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

const userColumns = `identifier, display_name, email, provider, formatted_name, family_name,
		 given_name, preferred_username, url, photo, is_enabled, login_count, last_login, created, updated`

// queries holds the dialect-specific statements; both dialects share the
// same column order so scanUser works for either.
type queries struct {
	get         string
	create      string
	recordLogin string
}

type repository struct {
	db dbx.DBTX
	q  queries
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.Identifier, &u.DisplayName, &u.Email, &u.Provider, &u.FormattedName, &u.FamilyName,
		&u.GivenName, &u.PreferredUsername, &u.URL, &u.Photo, &u.IsEnabled, &u.LoginCount, &u.LastLogin,
		&u.Created, &u.Updated)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// nullable maps an absent optional field to SQL NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func (r *repository) Get(ctx context.Context, identifier string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.q.get, identifier))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.q.create,
		user.Identifier, nullable(user.DisplayName), nullable(user.Email), nullable(user.Provider),
		nullable(user.FormattedName), nullable(user.FamilyName), nullable(user.GivenName),
		nullable(user.PreferredUsername), nullable(user.URL), nullable(user.Photo), user.IsEnabled,
		user.Created.UTC(), user.Updated.UTC()))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *repository) RecordLogin(ctx context.Context, identifier string, at time.Time) (*models.User, error) {
	at = at.UTC()
	u, err := scanUser(r.db.QueryRowContext(ctx, r.q.recordLogin, at, at, identifier))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}
