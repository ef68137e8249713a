package medicalrecord

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicadmin/clinic/pkg/formvalue"
)

var validRecordTypes = map[string]bool{
	"consultation": true, "diagnosis": true, "prescription": true, "lab_result": true,
	"imaging": true, "procedure": true, "vaccination": true, "admission": true,
	"discharge": true, "referral": true,
}

const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusAmended   = "amended"
)

var validStatuses = map[string]bool{
	StatusDraft: true, StatusPending: true, StatusCompleted: true,
	StatusCancelled: true, StatusAmended: true,
}

// VitalSigns holds only the measurements that were taken. Blood pressure is
// a string ("120/80"); every other value is a float64.
type VitalSigns map[string]any

// MedicalRecord maps to the medical_records table. Patient and Provider are
// filled on reads from the joined rows.
type MedicalRecord struct {
	ID                  uuid.UUID        `db:"id" json:"id"`
	PatientID           uuid.UUID        `db:"patient_id" json:"patient_id"`
	ProviderID          uuid.UUID        `db:"provider_id" json:"provider_id"`
	RecordType          string           `db:"record_type" json:"record_type"`
	RecordDate          string           `db:"record_date" json:"record_date"`
	RecordTime          *string          `db:"record_time" json:"record_time"`
	Status              string           `db:"status" json:"status"`
	ChiefComplaint      *string          `db:"chief_complaint" json:"chief_complaint"`
	PresentIllness      *string          `db:"present_illness" json:"present_illness"`
	PhysicalExamination *string          `db:"physical_examination" json:"physical_examination"`
	Diagnosis           string           `db:"diagnosis" json:"diagnosis"`
	DiagnosisCodes      []string         `db:"diagnosis_codes" json:"diagnosis_codes"`
	TreatmentPlan       *string          `db:"treatment_plan" json:"treatment_plan"`
	VitalSigns          VitalSigns       `db:"vital_signs" json:"vital_signs"`
	FollowUpRequired    bool             `db:"follow_up_required" json:"follow_up_required"`
	FollowUpDate        *string          `db:"follow_up_date" json:"follow_up_date"`
	FollowUpNotes       *string          `db:"follow_up_notes" json:"follow_up_notes"`
	IsConfidential      bool             `db:"is_confidential" json:"is_confidential"`
	Notes               *string          `db:"notes" json:"notes"`
	CreatedBy           *uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt           time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time        `db:"updated_at" json:"updated_at"`
	Patient             *PatientSummary  `json:"patient"`
	Provider            *ProviderSummary `json:"provider"`
}

type PatientSummary struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	MRN         string  `json:"mrn"`
	DateOfBirth *string `json:"date_of_birth"`
}

type ProviderSummary struct {
	FullName string `json:"full_name"`
}

// VitalsInput is the flat vital-signs section of the record form.
type VitalsInput struct {
	BloodPressure    formvalue.Text `json:"vital_signs_bp"`
	HeartRate        formvalue.Text `json:"vital_signs_hr"`
	Temperature      formvalue.Text `json:"vital_signs_temp"`
	RespiratoryRate  formvalue.Text `json:"vital_signs_rr"`
	OxygenSaturation formvalue.Text `json:"vital_signs_spo2"`
	Weight           formvalue.Text `json:"vital_signs_weight"`
	Height           formvalue.Text `json:"vital_signs_height"`
}

// Input is the record form used for both create and update.
type Input struct {
	PatientID           string         `json:"patient_id"`
	ProviderID          string         `json:"provider_id"`
	RecordType          string         `json:"record_type"`
	RecordDate          string         `json:"record_date"`
	RecordTime          string         `json:"record_time"`
	Status              string         `json:"status"`
	ChiefComplaint      string         `json:"chief_complaint"`
	PresentIllness      string         `json:"present_illness"`
	PhysicalExamination string         `json:"physical_examination"`
	Diagnosis           string         `json:"diagnosis"`
	DiagnosisCodes      formvalue.List `json:"diagnosis_codes"`
	TreatmentPlan       string         `json:"treatment_plan"`
	FollowUpRequired    formvalue.Flag `json:"follow_up_required"`
	FollowUpDate        string         `json:"follow_up_date"`
	FollowUpNotes       string         `json:"follow_up_notes"`
	IsConfidential      formvalue.Flag `json:"is_confidential"`
	Notes               string         `json:"notes"`
	VitalsInput
}

// Filter narrows List. Zero values mean "any".
type Filter struct {
	PatientID  *uuid.UUID
	ProviderID *uuid.UUID
	RecordType string
	Status     string
	Limit      int
	Offset     int
}
