package sessiontokens

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

type queries struct {
	create        string
	find          string
	delete        string
	deleteByUser  string
	deleteExpired string
}

type repository struct {
	db dbx.DBTX
	q  queries
}

func (r *repository) Create(ctx context.Context, token *models.SessionToken) error {
	_, err := r.db.ExecContext(ctx, r.q.create,
		token.TokenHash, token.UserIdentifier, token.UserAgent,
		token.ExpiresAt.UTC(), token.Created.UTC(), token.Updated.UTC())
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *repository) Find(ctx context.Context, tokenHash string) (*models.SessionToken, error) {
	t := &models.SessionToken{}
	err := r.db.QueryRowContext(ctx, r.q.find, tokenHash).
		Scan(&t.TokenHash, &t.UserIdentifier, &t.UserAgent, &t.ExpiresAt, &t.Created, &t.Updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *repository) Delete(ctx context.Context, tokenHash string) error {
	if _, err := r.db.ExecContext(ctx, r.q.delete, tokenHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *repository) DeleteByUser(ctx context.Context, identifier string) (int64, error) {
	return r.deleteMany(ctx, r.q.deleteByUser, identifier)
}

func (r *repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.deleteMany(ctx, r.q.deleteExpired, now.UTC())
}

func (r *repository) deleteMany(ctx context.Context, query string, arg any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, arg)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
