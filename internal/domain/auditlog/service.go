package auditlog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/internal/platform/middleware"
	"github.com/clinicadmin/clinic/pkg/formvalue"
)

var tracer = otel.Tracer("github.com/clinicadmin/clinic/internal/domain/auditlog")

// Service reads the audit trail and, as a middleware.AuditRecorder, writes it.
type Service struct {
	repo AuditLogRepository
}

func NewService(repo AuditLogRepository) *Service {
	return &Service{repo: repo}
}

var _ middleware.AuditRecorder = (*Service)(nil)

// RecordAccess persists one entry produced by the audit middleware.
func (s *Service) RecordAccess(ctx context.Context, e middleware.AuditEntry) error {
	l := &AuditLog{
		UserEmail:    formvalue.Optional(e.UserEmail),
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   formvalue.Optional(e.ResourceID),
		Method:       e.Method,
		Path:         e.Path,
		StatusCode:   e.StatusCode,
		IPAddress:    formvalue.Optional(e.IPAddress),
		RequestID:    formvalue.Optional(e.RequestID),
		Details:      formvalue.Optional(e.Details),
		CreatedAt:    e.Timestamp,
	}
	if id, err := uuid.Parse(e.UserID); err == nil {
		l.UserID = &id
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return s.repo.Insert(ctx, l)
}

func (s *Service) List(ctx context.Context, f Filter) ([]*AuditLog, int, error) {
	ctx, span := tracer.Start(ctx, "auditlog.List")
	defer span.End()

	f.Action = strings.ToUpper(strings.TrimSpace(f.Action))
	if f.Action != "" && !validActions[f.Action] {
		return nil, 0, apperr.Validation("invalid action: %s", f.Action)
	}
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	return items, total, nil
}
