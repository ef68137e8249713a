package auditlog

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is one row of audit_logs.
type AuditLog struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UserID       *uuid.UUID `db:"user_id" json:"user_id"`
	UserEmail    *string    `db:"user_email" json:"user_email"`
	Action       string     `db:"action" json:"action"`
	ResourceType string     `db:"resource_type" json:"resource_type"`
	ResourceID   *string    `db:"resource_id" json:"resource_id"`
	Method       string     `db:"method" json:"method"`
	Path         string     `db:"path" json:"path"`
	StatusCode   int        `db:"status_code" json:"status_code"`
	IPAddress    *string    `db:"ip_address" json:"ip_address"`
	RequestID    *string    `db:"request_id" json:"request_id"`
	Details      *string    `db:"details" json:"details"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

var validActions = map[string]bool{"CREATE": true, "UPDATE": true, "DELETE": true, "VIEW": true}

type Filter struct {
	Action       string
	ResourceType string
	UserID       *uuid.UUID
	Limit        int
	Offset       int
}
