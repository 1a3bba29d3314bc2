package repository

import (
	"context"
	"database/sql"
	"time"

	"packtrace/internal/models"
)

type AuditSQLite struct {
	db *sql.DB
}

func NewAuditSQLite(db *sql.DB) *AuditSQLite { return &AuditSQLite{db: db} }

var _ AuditRepo = (*AuditSQLite)(nil)

const insertAuditSQL = `
		INSERT INTO query_audit (user_id, order_no, ip_address, user_agent, queried_at)
		VALUES (?, ?, ?, ?, ?)
	`

// Append records one order lookup.
func (r *AuditSQLite) Append(ctx context.Context, a models.QueryAudit) error {
	if a.UserID == "" {
		a.UserID = "anonymous"
	}
	if a.QueriedAt.IsZero() {
		a.QueriedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, insertAuditSQL,
		a.UserID, a.OrderNo, a.IPAddress, a.UserAgent,
		a.QueriedAt.UTC().Format(sqliteTimeLayout))
	return err
}
