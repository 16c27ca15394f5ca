package users

import (
	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

var postgresQueries = queries{
	get: `SELECT ` + userColumns + ` FROM users
		 WHERE identifier = $1
		 `,
	create: `INSERT INTO users (identifier, display_name, email, provider, formatted_name, family_name,
		 given_name, preferred_username, url, photo, is_enabled, created, updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		 RETURNING ` + userColumns + `
		 `,
	recordLogin: `UPDATE users SET login_count = login_count + 1, last_login = $1, updated = $2
		 WHERE identifier = $3
		 RETURNING ` + userColumns + `
		 `,
}

// PostgresRepository is the pgx-backed users.Repository.
type PostgresRepository struct {
	repository
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{repository{db: db, q: postgresQueries}}
}
