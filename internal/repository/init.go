package repository

import (
	"database/sql"

	"packtrace/internal/repository/db"
)

// InitDB opens the SQLite store and ensures the schema exists.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
