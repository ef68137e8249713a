package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicadmin/clinic/pkg/formvalue"
)

const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no-show"
)

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusConfirmed: true, StatusCompleted: true,
	StatusCancelled: true, StatusNoShow: true,
}

const (
	DefaultDuration = 30
	MinDuration     = 15
	MaxDuration     = 480
)

// Appointment maps to the appointments table. Patient and Provider are
// filled on reads from the joined rows.
type Appointment struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	PatientID       uuid.UUID        `db:"patient_id" json:"patient_id"`
	ProviderID      uuid.UUID        `db:"provider_id" json:"provider_id"`
	AppointmentDate string           `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string           `db:"appointment_time" json:"appointment_time"`
	DurationMinutes int              `db:"duration_minutes" json:"duration_minutes"`
	AppointmentType *string          `db:"appointment_type" json:"appointment_type"`
	Status          string           `db:"status" json:"status"`
	Reason          *string          `db:"reason" json:"reason"`
	Notes           *string          `db:"notes" json:"notes"`
	CreatedBy       *uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
	Patient         *PatientSummary  `json:"patient"`
	Provider        *ProviderSummary `json:"provider"`
}

type PatientSummary struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	MRN       string  `json:"mrn"`
	Phone     string  `json:"phone"`
	Email     *string `json:"email"`
}

// ProviderSummary carries FullName "Unknown" when the provider has no profile.
type ProviderSummary struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Specialty *string   `json:"specialty"`
}

// Input is the booking form. duration_minutes may be a number or a string.
type Input struct {
	PatientID       string         `json:"patient_id"`
	ProviderID      string         `json:"provider_id"`
	AppointmentDate string         `json:"appointment_date"`
	AppointmentTime string         `json:"appointment_time"`
	DurationMinutes formvalue.Text `json:"duration_minutes"`
	AppointmentType string         `json:"appointment_type"`
	Status          string         `json:"status"`
	Reason          string         `json:"reason"`
	Notes           string         `json:"notes"`
}

// Filter narrows List. Zero values mean "any".
type Filter struct {
	PatientID  *uuid.UUID
	ProviderID *uuid.UUID
	Status     string
	Date       string
	Limit      int
	Offset     int
}
