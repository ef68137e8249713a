package patient

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/internal/platform/auth"
	"github.com/clinicadmin/clinic/internal/platform/metrics"
	"github.com/clinicadmin/clinic/internal/platform/websocket"
	"github.com/clinicadmin/clinic/pkg/formvalue"
)

var tracer = otel.Tracer("github.com/clinicadmin/clinic/internal/domain/patient")

const (
	entityName    = "patient"
	maxNameLen    = 100
	DefaultRegion = "US"
)

var validGenders = map[string]bool{
	"male": true, "female": true, "other": true, "prefer_not_to_say": true,
}

var validBloodTypes = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true, "unknown": true,
}

type Service struct {
	repo    PatientRepository
	region  string
	events  websocket.Publisher
	metrics *metrics.MutationMetrics
	now     func() time.Time
}

func NewService(repo PatientRepository) *Service {
	return &Service{
		repo:   repo,
		region: DefaultRegion,
		events: websocket.NopPublisher{},
		now:    time.Now,
	}
}

// SetPhoneRegion sets the region assumed for phone numbers written without
// an international prefix.
func (s *Service) SetPhoneRegion(region string) {
	if region != "" {
		s.region = strings.ToUpper(region)
	}
}

func (s *Service) SetPublisher(p websocket.Publisher)    { s.events = p }
func (s *Service) SetMetrics(m *metrics.MutationMetrics) { s.metrics = m }

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	ctx, span := tracer.Start(ctx, "patient.List")
	defer span.End()

	items, total, err := s.repo.Search(ctx, search, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	ctx, span := tracer.Start(ctx, "patient.Get")
	defer span.End()
	span.SetAttributes(attribute.String("patient.id", id.String()))

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, actor auth.Identity, in Input) (p *Patient, err error) {
	ctx, span := tracer.Start(ctx, "patient.Create")
	defer span.End()
	defer func() { s.finish(ctx, span, "created", actor, p, err) }()

	p, err = s.normalize(in)
	if err != nil {
		return nil, err
	}
	p.MRN = strings.TrimSpace(in.MRN)
	createdBy := actor.UserID
	p.CreatedBy = &createdBy

	if err = s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Identity, id uuid.UUID, in Input) (p *Patient, err error) {
	ctx, span := tracer.Start(ctx, "patient.Update")
	defer span.End()
	span.SetAttributes(attribute.String("patient.id", id.String()))
	defer func() { s.finish(ctx, span, "updated", actor, p, err) }()

	p, err = s.normalize(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err = s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Deactivate hides the patient from list and get. The row is kept.
func (s *Service) Deactivate(ctx context.Context, actor auth.Identity, id uuid.UUID) (p *Patient, err error) {
	ctx, span := tracer.Start(ctx, "patient.Deactivate")
	defer span.End()
	span.SetAttributes(attribute.String("patient.id", id.String()))
	defer func() { s.finish(ctx, span, "deactivated", actor, p, err) }()

	return s.repo.Deactivate(ctx, id)
}

// finish records the outcome of a mutation and announces successful ones.
func (s *Service) finish(ctx context.Context, span trace.Span, action string, actor auth.Identity, p *Patient, err error) {
	s.metrics.Observe(entityName, action, err)
	if err != nil {
		span.RecordError(err)
		return
	}
	_ = s.events.Publish(ctx, websocket.NewEvent(websocket.TopicPatients, entityName, action,
		p.ID.String(), actor.UserID.String(), p))
}

// normalize validates the intake form and converts it to a Patient.
func (s *Service) normalize(in Input) (*Patient, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	phone := strings.TrimSpace(in.Phone)

	var missing []string
	if first == "" {
		missing = append(missing, "first_name")
	}
	if last == "" {
		missing = append(missing, "last_name")
	}
	if phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return nil, apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}
	if len([]rune(first)) > maxNameLen || len([]rune(last)) > maxNameLen {
		return nil, apperr.Validation("names must be at most %d characters", maxNameLen)
	}
	if !s.possiblePhone(phone) {
		return nil, apperr.Validation("invalid phone number: %s", phone)
	}

	p := &Patient{
		FirstName:             first,
		LastName:              last,
		Phone:                 phone,
		Gender:                formvalue.Optional(in.Gender),
		BloodType:             formvalue.Optional(in.BloodType),
		Email:                 formvalue.Optional(in.Email),
		DateOfBirth:           formvalue.Optional(in.DateOfBirth),
		AddressLine1:          formvalue.Optional(in.AddressLine1),
		City:                  formvalue.Optional(in.City),
		State:                 formvalue.Optional(in.State),
		PostalCode:            formvalue.Optional(in.PostalCode),
		Country:               formvalue.Optional(in.Country),
		EmergencyContactName:  formvalue.Optional(in.EmergencyContactName),
		EmergencyContactPhone: formvalue.Optional(in.EmergencyContactPhone),
		Allergies:             in.Allergies.Strings(),
		CurrentMedications:    in.CurrentMedications.Strings(),
		ChronicConditions:     in.ChronicConditions.Strings(),
		InsuranceProvider:     formvalue.Optional(in.InsuranceProvider),
		InsurancePolicyNumber: formvalue.Optional(in.InsurancePolicyNumber),
		IsActive:              true,
	}

	if p.Gender != nil && !validGenders[*p.Gender] {
		return nil, apperr.Validation("invalid gender: %s", *p.Gender)
	}
	if p.BloodType != nil && !validBloodTypes[*p.BloodType] {
		return nil, apperr.Validation("invalid blood type: %s", *p.BloodType)
	}
	if p.Email != nil && !validEmail(*p.Email) {
		return nil, apperr.Validation("invalid email address: %s", *p.Email)
	}
	if p.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *p.DateOfBirth)
		if err != nil {
			return nil, apperr.Validation("date_of_birth must be YYYY-MM-DD")
		}
		if dob.After(s.now()) {
			return nil, apperr.Validation("date_of_birth cannot be in the future")
		}
	}
	return p, nil
}

func (s *Service) possiblePhone(raw string) bool {
	num, err := phonenumbers.Parse(raw, s.region)
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(num)
}

// validEmail accepts a bare addr-spec only, not "Name <addr>".
func validEmail(raw string) bool {
	addr, err := mail.ParseAddress(raw)
	return err == nil && addr.Address == raw && strings.Contains(raw, ".")
}
