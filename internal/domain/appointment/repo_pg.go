package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/internal/platform/db"
)

type appointmentRepoPG struct{ db db.DBTX }

func NewAppointmentRepoPG(conn db.DBTX) AppointmentRepository {
	return &appointmentRepoPG{db: conn}
}

const appointmentCols = `a.id, a.patient_id, a.provider_id,
	to_char(a.appointment_date, 'YYYY-MM-DD'), to_char(a.appointment_time, 'HH24:MI'),
	a.duration_minutes, a.appointment_type, a.status, a.reason, a.notes,
	a.created_by, a.created_at, a.updated_at,
	p.id, p.first_name, p.last_name, p.mrn, p.phone, p.email,
	COALESCE(NULLIF(pr.full_name, ''), 'Unknown'), hp.specialty`

const appointmentJoins = `
	LEFT JOIN patients p ON p.id = a.patient_id
	LEFT JOIN healthcare_providers hp ON hp.id = a.provider_id
	LEFT JOIN profiles pr ON pr.id = hp.user_id`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a                       Appointment
		patientRowID            *uuid.UUID
		first, last, mrn, phone *string
		email, specialty        *string
		providerName            string
	)
	err := row.Scan(&a.ID, &a.PatientID, &a.ProviderID,
		&a.AppointmentDate, &a.AppointmentTime,
		&a.DurationMinutes, &a.AppointmentType, &a.Status, &a.Reason, &a.Notes,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
		&patientRowID, &first, &last, &mrn, &phone, &email,
		&providerName, &specialty)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if patientRowID != nil {
		a.Patient = &PatientSummary{
			FirstName: deref(first),
			LastName:  deref(last),
			MRN:       deref(mrn),
			Phone:     deref(phone),
			Email:     email,
		}
	}
	a.Provider = &ProviderSummary{ID: a.ProviderID, FullName: providerName, Specialty: specialty}
	return &a, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Create inserts a and reads it back with its joins in one statement.
func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	created, err := scanAppointment(r.db.QueryRow(ctx, `
		WITH a AS (
			INSERT INTO appointments (patient_id, provider_id, appointment_date, appointment_time,
				duration_minutes, appointment_type, status, reason, notes, created_by)
			VALUES ($1, $2, $3::date, $4::time, $5, $6, $7, $8, $9, $10)
			RETURNING *
		)
		SELECT `+appointmentCols+` FROM a`+appointmentJoins,
		a.PatientID, a.ProviderID, a.AppointmentDate, a.AppointmentTime,
		a.DurationMinutes, a.AppointmentType, a.Status, a.Reason, a.Notes, a.CreatedBy))
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	*a = *created
	return nil
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments a`+appointmentJoins+` WHERE a.id = $1`, id))
}

// Update reschedules or edits an appointment. Patient, provider and
// creation stamps never change.
func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	updated, err := scanAppointment(r.db.QueryRow(ctx, `
		WITH a AS (
			UPDATE appointments SET appointment_date=$2::date, appointment_time=$3::time,
				duration_minutes=$4, appointment_type=$5, status=$6, reason=$7, notes=$8,
				updated_at=NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+appointmentCols+` FROM a`+appointmentJoins,
		a.ID, a.AppointmentDate, a.AppointmentTime,
		a.DurationMinutes, a.AppointmentType, a.Status, a.Reason, a.Notes))
	if err != nil {
		return err
	}
	*a = *updated
	return nil
}

func (r *appointmentRepoPG) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.db.QueryRow(ctx, `
		WITH a AS (
			UPDATE appointments SET status = 'cancelled', updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+appointmentCols+` FROM a`+appointmentJoins, id))
}

func (r *appointmentRepoPG) List(ctx context.Context, f Filter) ([]*Appointment, int, error) {
	where := " WHERE 1=1"
	var args []any
	idx := 1

	if f.PatientID != nil {
		where += fmt.Sprintf(" AND a.patient_id = $%d", idx)
		args = append(args, *f.PatientID)
		idx++
	}
	if f.ProviderID != nil {
		where += fmt.Sprintf(" AND a.provider_id = $%d", idx)
		args = append(args, *f.ProviderID)
		idx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND a.status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}
	if f.Date != "" {
		where += fmt.Sprintf(" AND a.appointment_date = $%d::date", idx)
		args = append(args, f.Date)
		idx++
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments a`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	query := `SELECT ` + appointmentCols + ` FROM appointments a` + appointmentJoins + where +
		fmt.Sprintf(" ORDER BY a.appointment_date ASC, a.appointment_time ASC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	items := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
