package medicalrecord

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
)

var recordColumns = []string{
	"id", "patient_id", "provider_id", "record_type", "record_date", "record_time", "status",
	"chief_complaint", "present_illness", "physical_examination",
	"diagnosis", "diagnosis_codes", "treatment_plan", "vital_signs",
	"follow_up_required", "follow_up_date", "follow_up_notes",
	"is_confidential", "notes", "created_by", "created_at", "updated_at",
	"p_id", "first_name", "last_name", "mrn", "date_of_birth", "full_name",
}

func strPtr(s string) *string { return &s }

func recordRow(id uuid.UUID, date string, vitals []byte) []any {
	now := time.Date(2026, 4, 20, 8, 0, 0, 0, time.UTC)
	pid := uuid.MustParse(testPatientID)
	return []any{
		id, pid, uuid.MustParse(testProviderID), "consultation", date, (*string)(nil), StatusCompleted,
		strPtr("cough"), (*string)(nil), (*string)(nil),
		"Acute bronchitis", []string{"J20.9"}, (*string)(nil), vitals,
		false, (*string)(nil), (*string)(nil),
		false, (*string)(nil), (*uuid.UUID)(nil), now, now,
		&pid, strPtr("Jane"), strPtr("Doe"), strPtr("MR-000001"), strPtr("1980-03-14"), "Dr. Gregory House",
	}
}

func TestMedicalRecordRepoPG_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT .* FROM medical_records m LEFT JOIN patients p ON p.id = m.patient_id .* WHERE m.id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(recordColumns).AddRow(recordRow(id, "2026-04-20", []byte(`{"heart_rate":72}`))...))

	r, err := NewMedicalRecordRepoPG(mock).GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, VitalSigns{"heart_rate": 72.0}, r.VitalSigns)
	assert.Equal(t, []string{"J20.9"}, r.DiagnosisCodes)
	require.NotNil(t, r.Patient)
	assert.Equal(t, "1980-03-14", *r.Patient.DateOfBirth)
	assert.Equal(t, "Dr. Gregory House", r.Provider.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicalRecordRepoPG_GetByID_NullVitals(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`FROM medical_records m`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(recordColumns).AddRow(recordRow(id, "2026-04-20", nil)...))

	r, err := NewMedicalRecordRepoPG(mock).GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, r.VitalSigns)
}

func TestMedicalRecordRepoPG_Create_EncodesVitals(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	args := make([]any, 19)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	args[12] = []byte(`{"heart_rate":72}`)
	mock.ExpectQuery(`WITH m AS \( INSERT INTO medical_records`).
		WithArgs(args...).
		WillReturnRows(pgxmock.NewRows(recordColumns).AddRow(recordRow(id, "2026-04-20", []byte(`{"heart_rate":72}`))...))

	rec := &MedicalRecord{
		PatientID:  uuid.MustParse(testPatientID),
		ProviderID: uuid.MustParse(testProviderID),
		RecordType: "consultation",
		RecordDate: "2026-04-20",
		Status:     StatusCompleted,
		Diagnosis:  "Acute bronchitis",
		VitalSigns: VitalSigns{"heart_rate": 72.0},
	}
	require.NoError(t, NewMedicalRecordRepoPG(mock).Create(context.Background(), rec))
	assert.Equal(t, id, rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicalRecordRepoPG_Update_LeavesParticipants(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	args := make([]any, 17)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	args[0] = id
	args[1] = "consultation"
	mock.ExpectQuery(`UPDATE medical_records SET record_type=\$2,`).
		WithArgs(args...).
		WillReturnRows(pgxmock.NewRows(recordColumns).AddRow(recordRow(id, "2026-04-20", nil)...))

	rec := &MedicalRecord{
		ID:         id,
		RecordType: "consultation",
		RecordDate: "2026-04-20",
		Status:     StatusCompleted,
		Diagnosis:  "Acute bronchitis",
	}
	require.NoError(t, NewMedicalRecordRepoPG(mock).Update(context.Background(), rec))
	assert.Equal(t, testPatientID, rec.PatientID.String())
	assert.Equal(t, testProviderID, rec.ProviderID.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicalRecordRepoPG_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM medical_records WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM medical_records WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewMedicalRecordRepoPG(mock)
	require.NoError(t, repo.Delete(context.Background(), id))
	assert.ErrorIs(t, repo.Delete(context.Background(), id), apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMedicalRecordRepoPG_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM medical_records m WHERE 1=1 AND m.record_type = \$1 AND m.status = \$2`).
		WithArgs("consultation", StatusCompleted).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY m.record_date DESC, m.created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs("consultation", StatusCompleted, 50, 0).
		WillReturnRows(pgxmock.NewRows(recordColumns).AddRow(recordRow(uuid.New(), "2026-04-20", nil)...))

	items, total, err := NewMedicalRecordRepoPG(mock).List(context.Background(), Filter{
		RecordType: "consultation", Status: StatusCompleted, Limit: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
