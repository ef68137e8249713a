package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/internal/platform/db"
)

type patientRepoPG struct{ db db.DBTX }

func NewPatientRepoPG(conn db.DBTX) PatientRepository {
	return &patientRepoPG{db: conn}
}

const patientCols = `id, user_id, mrn, first_name, last_name,
	to_char(date_of_birth, 'YYYY-MM-DD'), gender, blood_type, phone, email,
	address_line1, city, state, postal_code, country,
	emergency_contact_name, emergency_contact_phone,
	allergies, current_medications, chronic_conditions,
	insurance_provider, insurance_policy_number,
	is_active, created_by, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.MRN, &p.FirstName, &p.LastName,
		&p.DateOfBirth, &p.Gender, &p.BloodType, &p.Phone, &p.Email,
		&p.AddressLine1, &p.City, &p.State, &p.PostalCode, &p.Country,
		&p.EmergencyContactName, &p.EmergencyContactPhone,
		&p.Allergies, &p.CurrentMedications, &p.ChronicConditions,
		&p.InsuranceProvider, &p.InsurancePolicyNumber,
		&p.IsActive, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return &p, nil
}

// Create inserts p. A blank MRN is generated from patient_mrn_seq.
func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	created, err := scanPatient(r.db.QueryRow(ctx, `
		INSERT INTO patients (mrn, first_name, last_name, date_of_birth, gender, blood_type,
			phone, email, address_line1, city, state, postal_code, country,
			emergency_contact_name, emergency_contact_phone,
			allergies, current_medications, chronic_conditions,
			insurance_provider, insurance_policy_number, created_by)
		VALUES (COALESCE(NULLIF($1, ''), 'MR-' || lpad(nextval('patient_mrn_seq')::text, 6, '0')),
			$2, $3, $4::date, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING `+patientCols,
		p.MRN, p.FirstName, p.LastName, p.DateOfBirth, p.Gender, p.BloodType,
		p.Phone, p.Email, p.AddressLine1, p.City, p.State, p.PostalCode, p.Country,
		p.EmergencyContactName, p.EmergencyContactPhone,
		nonNil(p.Allergies), nonNil(p.CurrentMedications), nonNil(p.ChronicConditions),
		p.InsuranceProvider, p.InsurancePolicyNumber, p.CreatedBy))
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	*p = *created
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.db.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1 AND is_active = TRUE`, id))
}

// Update overwrites the editable fields of an active patient. MRN,
// ownership and creation stamps are left alone.
func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	updated, err := scanPatient(r.db.QueryRow(ctx, `
		UPDATE patients SET first_name=$2, last_name=$3, date_of_birth=$4::date, gender=$5,
			blood_type=$6, phone=$7, email=$8, address_line1=$9, city=$10, state=$11,
			postal_code=$12, country=$13, emergency_contact_name=$14, emergency_contact_phone=$15,
			allergies=$16, current_medications=$17, chronic_conditions=$18,
			insurance_provider=$19, insurance_policy_number=$20, updated_at=NOW()
		WHERE id = $1 AND is_active = TRUE
		RETURNING `+patientCols,
		p.ID, p.FirstName, p.LastName, p.DateOfBirth, p.Gender,
		p.BloodType, p.Phone, p.Email, p.AddressLine1, p.City, p.State,
		p.PostalCode, p.Country, p.EmergencyContactName, p.EmergencyContactPhone,
		nonNil(p.Allergies), nonNil(p.CurrentMedications), nonNil(p.ChronicConditions),
		p.InsuranceProvider, p.InsurancePolicyNumber))
	if err != nil {
		return err
	}
	*p = *updated
	return nil
}

func (r *patientRepoPG) Deactivate(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.db.QueryRow(ctx, `
		UPDATE patients SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE
		RETURNING `+patientCols, id))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search lists active patients, newest first. A non-empty search matches
// first name, last name, MRN or email case-insensitively.
func (r *patientRepoPG) Search(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	where := " WHERE is_active = TRUE"
	var args []any
	if search = strings.TrimSpace(search); search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		where += fmt.Sprintf(" AND (first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR mrn ILIKE $%[1]d OR email ILIKE $%[1]d)", len(args))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	idx := len(args) + 1
	query := `SELECT ` + patientCols + ` FROM patients` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	items := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
