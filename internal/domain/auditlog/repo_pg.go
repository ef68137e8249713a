package auditlog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clinicadmin/clinic/internal/platform/db"
)

type auditLogRepoPG struct{ db db.DBTX }

func NewAuditLogRepoPG(conn db.DBTX) AuditLogRepository {
	return &auditLogRepoPG{db: conn}
}

const auditCols = `id, user_id, user_email, action, resource_type, resource_id,
	method, path, status_code, ip_address, request_id, details, created_at`

func scanAuditLog(row pgx.Row) (*AuditLog, error) {
	var l AuditLog
	err := row.Scan(&l.ID, &l.UserID, &l.UserEmail, &l.Action, &l.ResourceType, &l.ResourceID,
		&l.Method, &l.Path, &l.StatusCode, &l.IPAddress, &l.RequestID, &l.Details, &l.CreatedAt)
	return &l, err
}

func (r *auditLogRepoPG) Insert(ctx context.Context, l *AuditLog) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO audit_logs (user_id, user_email, action, resource_type, resource_id,
			method, path, status_code, ip_address, request_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		l.UserID, l.UserEmail, l.Action, l.ResourceType, l.ResourceID,
		l.Method, l.Path, l.StatusCode, l.IPAddress, l.RequestID, l.Details, l.CreatedAt,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (r *auditLogRepoPG) List(ctx context.Context, f Filter) ([]*AuditLog, int, error) {
	where := " WHERE 1=1"
	var args []any
	idx := 1

	if f.Action != "" {
		where += fmt.Sprintf(" AND action = $%d", idx)
		args = append(args, f.Action)
		idx++
	}
	if f.ResourceType != "" {
		where += fmt.Sprintf(" AND resource_type = $%d", idx)
		args = append(args, f.ResourceType)
		idx++
	}
	if f.UserID != nil {
		where += fmt.Sprintf(" AND user_id = $%d", idx)
		args = append(args, *f.UserID)
		idx++
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	query := `SELECT ` + auditCols + ` FROM audit_logs` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	items := []*AuditLog{}
	for rows.Next() {
		l, err := scanAuditLog(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, rows.Err()
}
