package medicalrecord

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/internal/platform/auth"
	"github.com/clinicadmin/clinic/internal/platform/metrics"
	"github.com/clinicadmin/clinic/internal/platform/websocket"
)

var tracer = otel.Tracer("github.com/clinicadmin/clinic/internal/domain/medicalrecord")

const entityName = "medical_record"

type Service struct {
	repo    MedicalRecordRepository
	events  websocket.Publisher
	metrics *metrics.MutationMetrics
	now     func() time.Time
}

func NewService(repo MedicalRecordRepository) *Service {
	return &Service{repo: repo, events: websocket.NopPublisher{}, now: time.Now}
}

func (s *Service) SetPublisher(p websocket.Publisher)     { s.events = p }
func (s *Service) SetMetrics(m *metrics.MutationMetrics) { s.metrics = m }

func (s *Service) List(ctx context.Context, f Filter) ([]*MedicalRecord, int, error) {
	ctx, span := tracer.Start(ctx, "medicalrecord.List")
	defer span.End()

	if f.RecordType != "" && !validRecordTypes[f.RecordType] {
		return nil, 0, apperr.Validation("invalid record_type: %s", f.RecordType)
	}
	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, apperr.Validation("invalid status: %s", f.Status)
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	ctx, span := tracer.Start(ctx, "medicalrecord.Get")
	defer span.End()
	span.SetAttributes(attribute.String("medical_record.id", id.String()))

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return r, nil
}

func (s *Service) Create(ctx context.Context, actor auth.Identity, in Input) (r *MedicalRecord, err error) {
	ctx, span := tracer.Start(ctx, "medicalrecord.Create")
	defer span.End()
	defer func() { s.finish(ctx, span, "created", actor, recordID(r), r, err) }()

	r, err = Normalize(in, s.now())
	if err != nil {
		return nil, err
	}
	createdBy := actor.UserID
	r.CreatedBy = &createdBy

	if err = s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Identity, id uuid.UUID, in Input) (r *MedicalRecord, err error) {
	ctx, span := tracer.Start(ctx, "medicalrecord.Update")
	defer span.End()
	span.SetAttributes(attribute.String("medical_record.id", id.String()))
	defer func() { s.finish(ctx, span, "updated", actor, id, r, err) }()

	r, err = NormalizeUpdate(in, s.now())
	if err != nil {
		return nil, err
	}
	r.ID = id
	if err = s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes the record permanently; a later Get is ErrNotFound.
func (s *Service) Delete(ctx context.Context, actor auth.Identity, id uuid.UUID) (err error) {
	ctx, span := tracer.Start(ctx, "medicalrecord.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("medical_record.id", id.String()))
	defer func() { s.finish(ctx, span, "deleted", actor, id, nil, err) }()

	return s.repo.Delete(ctx, id)
}

func recordID(r *MedicalRecord) uuid.UUID {
	if r == nil {
		return uuid.Nil
	}
	return r.ID
}

// finish records the outcome of a mutation and announces successful ones.
// Confidential records are announced without their body.
func (s *Service) finish(ctx context.Context, span trace.Span, action string, actor auth.Identity, id uuid.UUID, r *MedicalRecord, err error) {
	s.metrics.Observe(entityName, action, err)
	if err != nil {
		span.RecordError(err)
		return
	}
	var payload any
	if r != nil && !r.IsConfidential {
		payload = r
	}
	_ = s.events.Publish(ctx, websocket.NewEvent(websocket.TopicMedicalRecords, entityName, action,
		id.String(), actor.UserID.String(), payload))
}
