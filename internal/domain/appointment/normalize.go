package appointment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/pkg/formvalue"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// NormalizeCreate validates a booking. Patient, provider, date and time are
// required and reported together when missing.
func NormalizeCreate(in Input) (*Appointment, error) {
	patientID := strings.TrimSpace(in.PatientID)
	providerID := strings.TrimSpace(in.ProviderID)

	var missing []string
	if patientID == "" {
		missing = append(missing, "patient_id")
	}
	if providerID == "" {
		missing = append(missing, "provider_id")
	}
	missing = append(missing, missingSchedule(in)...)
	if len(missing) > 0 {
		return nil, apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}

	pid, err := uuid.Parse(patientID)
	if err != nil {
		return nil, apperr.Validation("invalid patient_id")
	}
	prid, err := uuid.Parse(providerID)
	if err != nil {
		return nil, apperr.Validation("invalid provider_id")
	}

	a, err := normalizeSchedule(in)
	if err != nil {
		return nil, err
	}
	a.PatientID = pid
	a.ProviderID = prid
	return a, nil
}

// NormalizeUpdate validates an edit. Only date and time are required;
// patient and provider are not re-assigned.
func NormalizeUpdate(in Input) (*Appointment, error) {
	if missing := missingSchedule(in); len(missing) > 0 {
		return nil, apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	return normalizeSchedule(in)
}

func missingSchedule(in Input) []string {
	var missing []string
	if strings.TrimSpace(in.AppointmentDate) == "" {
		missing = append(missing, "appointment_date")
	}
	if strings.TrimSpace(in.AppointmentTime) == "" {
		missing = append(missing, "appointment_time")
	}
	return missing
}

func normalizeSchedule(in Input) (*Appointment, error) {
	date := strings.TrimSpace(in.AppointmentDate)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, apperr.Validation("appointment_date must be YYYY-MM-DD")
	}
	clock, err := parseClock(in.AppointmentTime)
	if err != nil {
		return nil, err
	}

	duration := ParseDuration(in.DurationMinutes.String())
	if duration < MinDuration || duration > MaxDuration {
		return nil, apperr.Validation("duration_minutes must be between %d and %d", MinDuration, MaxDuration)
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = StatusScheduled
	}
	if !validStatuses[status] {
		return nil, apperr.Validation("invalid status: %s", status)
	}

	return &Appointment{
		AppointmentDate: date,
		AppointmentTime: clock,
		DurationMinutes: duration,
		AppointmentType: formvalue.Optional(in.AppointmentType),
		Status:          status,
		Reason:          formvalue.Optional(in.Reason),
		Notes:           formvalue.Optional(in.Notes),
	}, nil
}

// ParseDuration reads the leading integer of raw. Blank, zero or
// non-numeric input falls back to DefaultDuration. Oversized values
// saturate rather than fall back. Range checks are left to the caller.
func ParseDuration(raw string) int {
	n, ok := formvalue.LeadingInt(raw)
	if !ok || n == 0 {
		return DefaultDuration
	}
	return n
}

// parseClock accepts HH:MM or HH:MM:SS and returns HH:MM.
func parseClock(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{timeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(timeLayout), nil
		}
	}
	return "", apperr.Validation("appointment_time must be HH:MM")
}
