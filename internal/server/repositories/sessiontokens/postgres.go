package sessiontokens

import "github.com/dmitrijs2005/gophauth/internal/dbx"

var postgresQueries = queries{
	create: `INSERT INTO session_tokens (token_hash, user_identifier, user_agent, expires_at, created, updated)
         VALUES ($1, $2, $3, $4, $5, $6)
		 `,
	find: `SELECT token_hash, user_identifier, user_agent, expires_at, created, updated
		 FROM session_tokens
		 WHERE token_hash = $1
		 `,
	delete:        `DELETE FROM session_tokens WHERE token_hash = $1`,
	deleteByUser:  `DELETE FROM session_tokens WHERE user_identifier = $1`,
	deleteExpired: `DELETE FROM session_tokens WHERE expires_at < $1`,
}

// PostgresRepository is the pgx-backed sessiontokens.Repository.
type PostgresRepository struct {
	repository
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{repository{db: db, q: postgresQueries}}
}
