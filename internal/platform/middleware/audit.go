package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicadmin/clinic/internal/platform/auth"
)

// AuditEntry is one row of the audit trail: who did what to which resource.
type AuditEntry struct {
	UserID       string
	UserEmail    string
	Action       string // CREATE, UPDATE, DELETE, VIEW
	ResourceType string
	ResourceID   string
	Method       string
	Path         string
	StatusCode   int
	IPAddress    string
	RequestID    string
	Details      string
	Timestamp    time.Time
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	RecordAccess(ctx context.Context, entry AuditEntry) error
}

var resourceTypes = map[string]string{
	"patients":        "patient",
	"appointments":    "appointment",
	"medical-records": "medical_record",
	"providers":       "provider",
	"audit-logs":      "audit_log",
	"dashboard":       "dashboard",
	"me":              "profile",
}

// Audit records every authenticated /api/* request after the handler ran.
// Requests without an identity are not audited. Recorder failures are logged
// and never change the response.
func Audit(logger zerolog.Logger, recorder AuditRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !strings.HasPrefix(req.URL.Path, "/api/") {
				return next(c)
			}

			err := next(c)

			id, ok := auth.FromEcho(c)
			if !ok {
				return err
			}

			status := c.Response().Status
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			} else if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
			}

			resourceType, resourceID := splitResource(req.URL.Path)
			entry := AuditEntry{
				UserID:       id.UserID.String(),
				UserEmail:    id.Email,
				Action:       methodToAction(req.Method),
				ResourceType: resourceType,
				ResourceID:   resourceID,
				Method:       req.Method,
				Path:         req.URL.Path,
				StatusCode:   status,
				IPAddress:    c.RealIP(),
				Timestamp:    time.Now().UTC(),
			}
			entry.RequestID, _ = c.Get("request_id").(string)
			entry.Details = describe(entry)

			if recorder != nil {
				if recErr := recorder.RecordAccess(context.WithoutCancel(req.Context()), entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record audit entry")
				}
			}

			logger.Info().
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Str("action", entry.Action).
				Str("resource_type", entry.ResourceType).
				Str("resource_id", entry.ResourceID).
				Int("status", entry.StatusCode).
				Msg("access")

			return err
		}
	}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "CREATE"
	case http.MethodPut, http.MethodPatch:
		return "UPDATE"
	case http.MethodDelete:
		return "DELETE"
	default:
		return "VIEW"
	}
}

// splitResource maps /api/<collection>[/<id>...] to a resource type and id.
func splitResource(path string) (string, string) {
	segs := strings.Split(strings.Trim(strings.TrimPrefix(path, "/api/"), "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return "unknown", ""
	}
	rt, ok := resourceTypes[segs[0]]
	if !ok {
		rt = segs[0]
	}
	var id string
	if len(segs) > 1 && segs[0] != "dashboard" {
		id = segs[1]
	}
	return rt, id
}

func describe(e AuditEntry) string {
	target := e.ResourceType
	if e.ResourceID != "" {
		target += " " + e.ResourceID
	}
	return fmt.Sprintf("%s %s (%d)", e.Action, target, e.StatusCode)
}
