package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicadmin/clinic/pkg/formvalue"
)

// Patient maps to the patients table. Optional columns serialize as null.
type Patient struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	UserID                *uuid.UUID `db:"user_id" json:"user_id"`
	MRN                   string     `db:"mrn" json:"mrn"`
	FirstName             string     `db:"first_name" json:"first_name"`
	LastName              string     `db:"last_name" json:"last_name"`
	DateOfBirth           *string    `db:"date_of_birth" json:"date_of_birth"`
	Gender                *string    `db:"gender" json:"gender"`
	BloodType             *string    `db:"blood_type" json:"blood_type"`
	Phone                 string     `db:"phone" json:"phone"`
	Email                 *string    `db:"email" json:"email"`
	AddressLine1          *string    `db:"address_line1" json:"address_line1"`
	City                  *string    `db:"city" json:"city"`
	State                 *string    `db:"state" json:"state"`
	PostalCode            *string    `db:"postal_code" json:"postal_code"`
	Country               *string    `db:"country" json:"country"`
	EmergencyContactName  *string    `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone *string    `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	Allergies             []string   `db:"allergies" json:"allergies"`
	CurrentMedications    []string   `db:"current_medications" json:"current_medications"`
	ChronicConditions     []string   `db:"chronic_conditions" json:"chronic_conditions"`
	InsuranceProvider     *string    `db:"insurance_provider" json:"insurance_provider"`
	InsurancePolicyNumber *string    `db:"insurance_policy_number" json:"insurance_policy_number"`
	IsActive              bool       `db:"is_active" json:"is_active"`
	CreatedBy             *uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// Input is the intake form as submitted for create and update. List fields
// accept a comma-separated string or a JSON array.
type Input struct {
	MRN                   string         `json:"mrn"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	DateOfBirth           string         `json:"date_of_birth"`
	Gender                string         `json:"gender"`
	BloodType             string         `json:"blood_type"`
	Phone                 string         `json:"phone"`
	Email                 string         `json:"email"`
	AddressLine1          string         `json:"address_line1"`
	City                  string         `json:"city"`
	State                 string         `json:"state"`
	PostalCode            string         `json:"postal_code"`
	Country               string         `json:"country"`
	EmergencyContactName  string         `json:"emergency_contact_name"`
	EmergencyContactPhone string         `json:"emergency_contact_phone"`
	Allergies             formvalue.List `json:"allergies"`
	CurrentMedications    formvalue.List `json:"current_medications"`
	ChronicConditions     formvalue.List `json:"chronic_conditions"`
	InsuranceProvider     string         `json:"insurance_provider"`
	InsurancePolicyNumber string         `json:"insurance_policy_number"`
}

// SplitList turns a comma-separated form value into a trimmed list with
// empty entries dropped. It is idempotent under re-joining with ",".
func SplitList(raw string) []string {
	return formvalue.Split(raw)
}
