package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
)

// Directory reconciles verified identities with local user records.
type Directory struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewDirectory(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *Directory {
	return &Directory{
		db:          db,
		repomanager: m,
		logger:      logger,
		now:         time.Now,
	}
}

// FindOrCreate returns the user for ids.Identifier, creating it from the
// bundle on first sight. Existing users are returned unchanged. A bundle that
// fails validation yields ValidationErrors and nothing is stored.
func (d *Directory) FindOrCreate(ctx context.Context, ids *models.Identifiers) (*models.User, error) {
	candidate := models.NewUserFromIdentifiers(ids)
	NormalizeUser(candidate)

	repo := d.repomanager.Users(d.db)

	if candidate.Identifier != "" {
		existing, err := repo.Get(ctx, candidate.Identifier)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("error searching user: %w", err)
		}
	}

	if verrs := ValidateUser(candidate); verrs != nil {
		return nil, verrs
	}

	now := d.now()
	candidate.Created = now
	candidate.Updated = now

	created, err := repo.Create(ctx, candidate)
	if err == nil {
		d.logger.Info(ctx, "user created", "identifier", created.Identifier)
		return created, nil
	}
	if !errors.Is(err, common.ErrorAlreadyExists) {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	// Lost a concurrent first login; the winner's row is authoritative.
	winner, err := repo.Get(ctx, candidate.Identifier)
	if err != nil {
		return nil, fmt.Errorf("error re-reading user: %w", err)
	}
	return winner, nil
}

// RecordLogin bumps the login counter and last-login stamp of user and
// returns the updated record.
func (d *Directory) RecordLogin(ctx context.Context, user *models.User) (*models.User, error) {
	updated, err := d.repomanager.Users(d.db).RecordLogin(ctx, user.Identifier, d.now())
	if err != nil {
		return nil, fmt.Errorf("error recording login: %w", err)
	}
	return updated, nil
}
