package medicalrecord

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/internal/platform/db"
)

type medicalRecordRepoPG struct{ db db.DBTX }

func NewMedicalRecordRepoPG(conn db.DBTX) MedicalRecordRepository {
	return &medicalRecordRepoPG{db: conn}
}

const recordCols = `m.id, m.patient_id, m.provider_id, m.record_type,
	to_char(m.record_date, 'YYYY-MM-DD'), to_char(m.record_time, 'HH24:MI'), m.status,
	m.chief_complaint, m.present_illness, m.physical_examination,
	m.diagnosis, m.diagnosis_codes, m.treatment_plan, m.vital_signs,
	m.follow_up_required, to_char(m.follow_up_date, 'YYYY-MM-DD'), m.follow_up_notes,
	m.is_confidential, m.notes, m.created_by, m.created_at, m.updated_at,
	p.id, p.first_name, p.last_name, p.mrn, to_char(p.date_of_birth, 'YYYY-MM-DD'),
	COALESCE(NULLIF(pr.full_name, ''), 'Unknown')`

const recordJoins = `
	LEFT JOIN patients p ON p.id = m.patient_id
	LEFT JOIN healthcare_providers hp ON hp.id = m.provider_id
	LEFT JOIN profiles pr ON pr.id = hp.user_id`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var (
		r            MedicalRecord
		vitals       []byte
		patientRowID *uuid.UUID
		first, last  *string
		mrn, dob     *string
		providerName string
	)
	err := row.Scan(&r.ID, &r.PatientID, &r.ProviderID, &r.RecordType,
		&r.RecordDate, &r.RecordTime, &r.Status,
		&r.ChiefComplaint, &r.PresentIllness, &r.PhysicalExamination,
		&r.Diagnosis, &r.DiagnosisCodes, &r.TreatmentPlan, &vitals,
		&r.FollowUpRequired, &r.FollowUpDate, &r.FollowUpNotes,
		&r.IsConfidential, &r.Notes, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt,
		&patientRowID, &first, &last, &mrn, &dob,
		&providerName)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if len(vitals) > 0 && string(vitals) != "null" {
		if err := json.Unmarshal(vitals, &r.VitalSigns); err != nil {
			return nil, fmt.Errorf("decode vital_signs: %w", err)
		}
		if len(r.VitalSigns) == 0 {
			r.VitalSigns = nil
		}
	}
	if r.DiagnosisCodes == nil {
		r.DiagnosisCodes = []string{}
	}
	if patientRowID != nil {
		r.Patient = &PatientSummary{
			FirstName:   deref(first),
			LastName:    deref(last),
			MRN:         deref(mrn),
			DateOfBirth: dob,
		}
	}
	r.Provider = &ProviderSummary{FullName: providerName}
	return &r, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// vitalsJSON encodes vitals for the jsonb column; nil stays SQL NULL.
func vitalsJSON(vs VitalSigns) ([]byte, error) {
	if len(vs) == 0 {
		return nil, nil
	}
	return json.Marshal(vs)
}

func (r *medicalRecordRepoPG) Create(ctx context.Context, rec *MedicalRecord) error {
	vitals, err := vitalsJSON(rec.VitalSigns)
	if err != nil {
		return fmt.Errorf("encode vital_signs: %w", err)
	}
	created, err := scanRecord(r.db.QueryRow(ctx, `
		WITH m AS (
			INSERT INTO medical_records (patient_id, provider_id, record_type, record_date, record_time,
				status, chief_complaint, present_illness, physical_examination, diagnosis,
				diagnosis_codes, treatment_plan, vital_signs, follow_up_required, follow_up_date,
				follow_up_notes, is_confidential, notes, created_by)
			VALUES ($1, $2, $3, $4::date, $5::time, $6, $7, $8, $9, $10, $11, $12, $13::jsonb,
				$14, $15::date, $16, $17, $18, $19)
			RETURNING *
		)
		SELECT `+recordCols+` FROM m`+recordJoins,
		rec.PatientID, rec.ProviderID, rec.RecordType, rec.RecordDate, rec.RecordTime,
		rec.Status, rec.ChiefComplaint, rec.PresentIllness, rec.PhysicalExamination, rec.Diagnosis,
		nonNil(rec.DiagnosisCodes), rec.TreatmentPlan, vitals, rec.FollowUpRequired, rec.FollowUpDate,
		rec.FollowUpNotes, rec.IsConfidential, rec.Notes, rec.CreatedBy))
	if err != nil {
		return fmt.Errorf("insert medical record: %w", err)
	}
	*rec = *created
	return nil
}

func (r *medicalRecordRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(r.db.QueryRow(ctx,
		`SELECT `+recordCols+` FROM medical_records m`+recordJoins+` WHERE m.id = $1`, id))
}

func (r *medicalRecordRepoPG) Update(ctx context.Context, rec *MedicalRecord) error {
	vitals, err := vitalsJSON(rec.VitalSigns)
	if err != nil {
		return fmt.Errorf("encode vital_signs: %w", err)
	}
	updated, err := scanRecord(r.db.QueryRow(ctx, `
		WITH m AS (
			UPDATE medical_records SET record_type=$2,
				record_date=$3::date, record_time=$4::time, status=$5, chief_complaint=$6,
				present_illness=$7, physical_examination=$8, diagnosis=$9, diagnosis_codes=$10,
				treatment_plan=$11, vital_signs=$12::jsonb, follow_up_required=$13,
				follow_up_date=$14::date, follow_up_notes=$15, is_confidential=$16, notes=$17,
				updated_at=NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+recordCols+` FROM m`+recordJoins,
		rec.ID, rec.RecordType,
		rec.RecordDate, rec.RecordTime, rec.Status, rec.ChiefComplaint,
		rec.PresentIllness, rec.PhysicalExamination, rec.Diagnosis, nonNil(rec.DiagnosisCodes),
		rec.TreatmentPlan, vitals, rec.FollowUpRequired,
		rec.FollowUpDate, rec.FollowUpNotes, rec.IsConfidential, rec.Notes))
	if err != nil {
		return err
	}
	*rec = *updated
	return nil
}

// Delete removes the row permanently.
func (r *medicalRecordRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete medical record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *medicalRecordRepoPG) List(ctx context.Context, f Filter) ([]*MedicalRecord, int, error) {
	where := " WHERE 1=1"
	var args []any
	idx := 1

	if f.PatientID != nil {
		where += fmt.Sprintf(" AND m.patient_id = $%d", idx)
		args = append(args, *f.PatientID)
		idx++
	}
	if f.ProviderID != nil {
		where += fmt.Sprintf(" AND m.provider_id = $%d", idx)
		args = append(args, *f.ProviderID)
		idx++
	}
	if f.RecordType != "" {
		where += fmt.Sprintf(" AND m.record_type = $%d", idx)
		args = append(args, f.RecordType)
		idx++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND m.status = $%d", idx)
		args = append(args, f.Status)
		idx++
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM medical_records m`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medical records: %w", err)
	}

	query := `SELECT ` + recordCols + ` FROM medical_records m` + recordJoins + where +
		fmt.Sprintf(" ORDER BY m.record_date DESC, m.created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list medical records: %w", err)
	}
	defer rows.Close()

	items := []*MedicalRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
