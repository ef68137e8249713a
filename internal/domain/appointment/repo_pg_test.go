package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
)

var appointmentColumns = []string{
	"id", "patient_id", "provider_id", "appointment_date", "appointment_time",
	"duration_minutes", "appointment_type", "status", "reason", "notes",
	"created_by", "created_at", "updated_at",
	"p_id", "first_name", "last_name", "mrn", "phone", "email",
	"full_name", "specialty",
}

func strPtr(s string) *string { return &s }

func appointmentRow(id uuid.UUID, date, clock, status string, withPatient bool) []any {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	pid := uuid.MustParse(testPatientID)
	var patientRowID *uuid.UUID
	var first, last, mrn, phone *string
	if withPatient {
		patientRowID = &pid
		first, last, mrn, phone = strPtr("Jane"), strPtr("Doe"), strPtr("MR-000001"), strPtr("415-555-0132")
	}
	return []any{
		id, pid, uuid.MustParse(testProviderID), date, clock,
		30, (*string)(nil), status, strPtr("checkup"), (*string)(nil),
		(*uuid.UUID)(nil), now, now,
		patientRowID, first, last, mrn, phone, (*string)(nil),
		"Unknown", strPtr("Cardiology"),
	}
}

func TestAppointmentRepoPG_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT .* FROM appointments a LEFT JOIN patients p ON p.id = a.patient_id .* WHERE a.id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(appointmentColumns).AddRow(appointmentRow(id, "2026-05-04", "09:30", StatusScheduled, true)...))

	a, err := NewAppointmentRepoPG(mock).GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "09:30", a.AppointmentTime)
	require.NotNil(t, a.Patient)
	assert.Equal(t, "Jane", a.Patient.FirstName)
	require.NotNil(t, a.Provider)
	assert.Equal(t, "Unknown", a.Provider.FullName)
	assert.Equal(t, "Cardiology", *a.Provider.Specialty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepoPG_GetByID_NoPatientJoin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`FROM appointments a`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(appointmentColumns).AddRow(appointmentRow(id, "2026-05-04", "09:30", StatusScheduled, false)...))

	a, err := NewAppointmentRepoPG(mock).GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, a.Patient)
}

func TestAppointmentRepoPG_Cancel(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`WITH a AS \( UPDATE appointments SET status = 'cancelled', updated_at = NOW\(\) WHERE id = \$1 RETURNING \* \)`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(appointmentColumns).AddRow(appointmentRow(id, "2026-05-04", "09:30", StatusCancelled, true)...))

	a, err := NewAppointmentRepoPG(mock).Cancel(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepoPG_Cancel_Missing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`UPDATE appointments SET status = 'cancelled'`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err = NewAppointmentRepoPG(mock).Cancel(context.Background(), id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAppointmentRepoPG_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	pid := uuid.MustParse(testPatientID)
	prid := uuid.MustParse(testProviderID)
	mock.ExpectQuery(`INSERT INTO appointments`).
		WithArgs(pid, prid, "2026-05-04", "09:30", 30, pgxmock.AnyArg(), StatusScheduled,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(appointmentColumns).AddRow(appointmentRow(id, "2026-05-04", "09:30", StatusScheduled, true)...))

	a := &Appointment{
		PatientID: pid, ProviderID: prid,
		AppointmentDate: "2026-05-04", AppointmentTime: "09:30",
		DurationMinutes: 30, Status: StatusScheduled,
	}
	require.NoError(t, NewAppointmentRepoPG(mock).Create(context.Background(), a))
	assert.Equal(t, id, a.ID)
	assert.NotNil(t, a.Patient)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepoPG_List_Filters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	pid := uuid.MustParse(testPatientID)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM appointments a WHERE 1=1 AND a.patient_id = \$1 AND a.status = \$2 AND a.appointment_date = \$3::date`).
		WithArgs(pid, StatusScheduled, "2026-05-04").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`ORDER BY a.appointment_date ASC, a.appointment_time ASC LIMIT \$4 OFFSET \$5`).
		WithArgs(pid, StatusScheduled, "2026-05-04", 50, 0).
		WillReturnRows(pgxmock.NewRows(appointmentColumns).
			AddRow(appointmentRow(uuid.New(), "2026-05-04", "09:00", StatusScheduled, true)...).
			AddRow(appointmentRow(uuid.New(), "2026-05-04", "10:00", StatusScheduled, true)...))

	items, total, err := NewAppointmentRepoPG(mock).List(context.Background(), Filter{
		PatientID: &pid, Status: StatusScheduled, Date: "2026-05-04", Limit: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "09:00", items[0].AppointmentTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}
