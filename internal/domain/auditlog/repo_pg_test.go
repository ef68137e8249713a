package auditlog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var auditColumns = []string{"id", "user_id", "user_email", "action", "resource_type", "resource_id",
	"method", "path", "status_code", "ip_address", "request_id", "details", "created_at"}

func TestAuditLogRepoPG_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`INSERT INTO audit_logs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "VIEW", "patient", pgxmock.AnyArg(),
			"GET", "/api/patients", 200, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

	l := &AuditLog{Action: "VIEW", ResourceType: "patient", Method: "GET", Path: "/api/patients", StatusCode: 200, CreatedAt: time.Now()}
	require.NoError(t, NewAuditLogRepoPG(mock).Insert(context.Background(), l))
	assert.Equal(t, id, l.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepoPG_List_Filtered(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_logs WHERE 1=1 AND action = \$1 AND user_id = \$2`).
		WithArgs("DELETE", userID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM audit_logs WHERE 1=1 AND action = \$1 AND user_id = \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("DELETE", userID, 50, 0).
		WillReturnRows(pgxmock.NewRows(auditColumns).
			AddRow(uuid.New(), &userID, (*string)(nil), "DELETE", "patient", (*string)(nil),
				"DELETE", "/api/patients/x", 200, (*string)(nil), (*string)(nil), (*string)(nil), time.Now()))

	items, total, err := NewAuditLogRepoPG(mock).List(context.Background(), Filter{Action: "DELETE", UserID: &userID, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, userID, *items[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogRepoPG_List_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_logs`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WithArgs(50, 0).
		WillReturnRows(pgxmock.NewRows(auditColumns))

	items, total, err := NewAuditLogRepoPG(mock).List(context.Background(), Filter{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
