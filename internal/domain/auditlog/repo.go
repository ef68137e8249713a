package auditlog

import (
	"context"
)

type AuditLogRepository interface {
	Insert(ctx context.Context, l *AuditLog) error
	List(ctx context.Context, f Filter) ([]*AuditLog, int, error)
}
