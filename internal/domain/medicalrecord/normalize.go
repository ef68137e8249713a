package medicalrecord

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/pkg/formvalue"
)

const dateLayout = "2006-01-02"

// Normalize validates a record form and converts it to a MedicalRecord.
// today supplies the default record date.
func Normalize(in Input, today time.Time) (*MedicalRecord, error) {
	patientID := strings.TrimSpace(in.PatientID)
	providerID := strings.TrimSpace(in.ProviderID)

	var missing []string
	if patientID == "" {
		missing = append(missing, "patient_id")
	}
	if providerID == "" {
		missing = append(missing, "provider_id")
	}
	missing = append(missing, missingBody(in)...)
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

	r, err := normalizeBody(in, today)
	if err != nil {
		return nil, err
	}
	r.PatientID = pid
	r.ProviderID = prid
	return r, nil
}

// NormalizeUpdate validates an edit form. The patient and provider of a
// record are fixed at creation, so patient_id and provider_id are ignored
// and left zero on the result.
func NormalizeUpdate(in Input, today time.Time) (*MedicalRecord, error) {
	if missing := missingBody(in); len(missing) > 0 {
		return nil, apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	return normalizeBody(in, today)
}

func missingBody(in Input) []string {
	var missing []string
	if strings.TrimSpace(in.RecordType) == "" {
		missing = append(missing, "record_type")
	}
	if strings.TrimSpace(in.Diagnosis) == "" {
		missing = append(missing, "diagnosis")
	}
	return missing
}

func normalizeBody(in Input, today time.Time) (*MedicalRecord, error) {
	recordType := strings.TrimSpace(in.RecordType)
	if !validRecordTypes[recordType] {
		return nil, apperr.Validation("invalid record_type: %s", recordType)
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = StatusCompleted
	}
	if !validStatuses[status] {
		return nil, apperr.Validation("invalid status: %s", status)
	}

	recordDate := strings.TrimSpace(in.RecordDate)
	if recordDate == "" {
		recordDate = today.UTC().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, recordDate); err != nil {
		return nil, apperr.Validation("record_date must be YYYY-MM-DD")
	}

	recordTime := formvalue.Optional(in.RecordTime)
	if recordTime != nil {
		clock, ok := parseClock(*recordTime)
		if !ok {
			return nil, apperr.Validation("record_time must be HH:MM")
		}
		recordTime = &clock
	}

	r := &MedicalRecord{
		RecordType:          recordType,
		RecordDate:          recordDate,
		RecordTime:          recordTime,
		Status:              status,
		ChiefComplaint:      formvalue.Optional(in.ChiefComplaint),
		PresentIllness:      formvalue.Optional(in.PresentIllness),
		PhysicalExamination: formvalue.Optional(in.PhysicalExamination),
		Diagnosis:           strings.TrimSpace(in.Diagnosis),
		DiagnosisCodes:      in.DiagnosisCodes.Strings(),
		TreatmentPlan:       formvalue.Optional(in.TreatmentPlan),
		VitalSigns:          BuildVitalSigns(in.VitalsInput),
		FollowUpRequired:    bool(in.FollowUpRequired),
		IsConfidential:      bool(in.IsConfidential),
		Notes:               formvalue.Optional(in.Notes),
	}

	if r.FollowUpRequired {
		r.FollowUpDate = formvalue.Optional(in.FollowUpDate)
		if r.FollowUpDate == nil {
			return nil, apperr.Validation("follow_up_date is required when follow_up_required is set")
		}
		if _, err := time.Parse(dateLayout, *r.FollowUpDate); err != nil {
			return nil, apperr.Validation("follow_up_date must be YYYY-MM-DD")
		}
		r.FollowUpNotes = formvalue.Optional(in.FollowUpNotes)
	}
	return r, nil
}

func parseClock(raw string) (string, bool) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("15:04"), true
		}
	}
	return "", false
}
