package sessiontokens

import "github.com/dmitrijs2005/gophauth/internal/dbx"

var sqliteQueries = queries{
	create: `INSERT INTO session_tokens (token_hash, user_identifier, user_agent, expires_at, created, updated)
         VALUES (?, ?, ?, ?, ?, ?)
		 `,
	find: `SELECT token_hash, user_identifier, user_agent, expires_at, created, updated
		 FROM session_tokens
		 WHERE token_hash = ?
		 `,
	delete:        `DELETE FROM session_tokens WHERE token_hash = ?`,
	deleteByUser:  `DELETE FROM session_tokens WHERE user_identifier = ?`,
	deleteExpired: `DELETE FROM session_tokens WHERE expires_at < ?`,
}

// SQLiteRepository is the modernc-backed sessiontokens.Repository.
type SQLiteRepository struct {
	repository
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{repository{db: db, q: sqliteQueries}}
}
