package auditlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/internal/platform/middleware"
)

type mockAuditRepo struct {
	logs       []*AuditLog
	lastFilter Filter
}

func (m *mockAuditRepo) Insert(_ context.Context, l *AuditLog) error {
	m.logs = append(m.logs, l)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, f Filter) ([]*AuditLog, int, error) {
	m.lastFilter = f
	out := []*AuditLog{}
	for i := len(m.logs) - 1; i >= 0; i-- {
		l := m.logs[i]
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.ResourceType != "" && l.ResourceType != f.ResourceType {
			continue
		}
		if f.UserID != nil && (l.UserID == nil || *l.UserID != *f.UserID) {
			continue
		}
		out = append(out, l)
	}
	return out, len(out), nil
}

func TestService_RecordAccess(t *testing.T) {
	repo := &mockAuditRepo{}
	svc := NewService(repo)

	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	err := svc.RecordAccess(context.Background(), middleware.AuditEntry{
		UserID:       "8b5e7a52-3f0e-4c1a-9d2c-6a1b2c3d4e5f",
		UserEmail:    "dr.smith@clinic.com",
		Action:       "DELETE",
		ResourceType: "patient",
		ResourceID:   "1f0c",
		Method:       "DELETE",
		Path:         "/api/patients/1f0c",
		StatusCode:   200,
		Timestamp:    ts,
	})
	require.NoError(t, err)
	require.Len(t, repo.logs, 1)

	l := repo.logs[0]
	require.NotNil(t, l.UserID)
	assert.Equal(t, "8b5e7a52-3f0e-4c1a-9d2c-6a1b2c3d4e5f", l.UserID.String())
	assert.Equal(t, "1f0c", *l.ResourceID)
	assert.Nil(t, l.IPAddress)
	assert.Nil(t, l.RequestID)
	assert.Equal(t, ts, l.CreatedAt)
}

func TestService_RecordAccess_NonUUIDUser(t *testing.T) {
	repo := &mockAuditRepo{}
	require.NoError(t, NewService(repo).RecordAccess(context.Background(), middleware.AuditEntry{
		UserID: "service", Action: "VIEW", ResourceType: "dashboard", Method: "GET", Path: "/api/dashboard/stats",
	}))
	assert.Nil(t, repo.logs[0].UserID)
	assert.False(t, repo.logs[0].CreatedAt.IsZero())
}

func TestService_List_NormalizesAction(t *testing.T) {
	repo := &mockAuditRepo{}
	svc := NewService(repo)

	_, _, err := svc.List(context.Background(), Filter{Action: " update ", Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE", repo.lastFilter.Action)

	_, _, err = svc.List(context.Background(), Filter{Action: "PURGE"})
	assert.True(t, apperr.IsValidation(err))
}
