package users

import (
	"github.com/dmitrijs2005/gophauth/internal/dbx"
)

var sqliteQueries = queries{
	get: `SELECT ` + userColumns + ` FROM users
		 WHERE identifier = ?
		 `,
	create: `INSERT INTO users (identifier, display_name, email, provider, formatted_name, family_name,
		 given_name, preferred_username, url, photo, is_enabled, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING ` + userColumns + `
		 `,
	recordLogin: `UPDATE users SET login_count = login_count + 1, last_login = ?, updated = ?
		 WHERE identifier = ?
		 RETURNING ` + userColumns + `
		 `,
}

// SQLiteRepository is the modernc-backed users.Repository.
type SQLiteRepository struct {
	repository
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{repository{db: db, q: sqliteQueries}}
}
