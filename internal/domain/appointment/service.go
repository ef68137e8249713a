package appointment

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

var tracer = otel.Tracer("github.com/clinicadmin/clinic/internal/domain/appointment")

const entityName = "appointment"

type Service struct {
	repo    AppointmentRepository
	events  websocket.Publisher
	metrics *metrics.MutationMetrics
}

func NewService(repo AppointmentRepository) *Service {
	return &Service{repo: repo, events: websocket.NopPublisher{}}
}

func (s *Service) SetPublisher(p websocket.Publisher)     { s.events = p }
func (s *Service) SetMetrics(m *metrics.MutationMetrics) { s.metrics = m }

func (s *Service) List(ctx context.Context, f Filter) ([]*Appointment, int, error) {
	ctx, span := tracer.Start(ctx, "appointment.List")
	defer span.End()

	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, apperr.Validation("invalid status: %s", f.Status)
	}
	if f.Date != "" {
		if _, err := time.Parse(dateLayout, f.Date); err != nil {
			return nil, 0, apperr.Validation("date must be YYYY-MM-DD")
		}
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointment.Get")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id.String()))

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, actor auth.Identity, in Input) (a *Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointment.Create")
	defer span.End()
	defer func() { s.finish(ctx, span, "created", actor, a, err) }()

	a, err = NormalizeCreate(in)
	if err != nil {
		return nil, err
	}
	createdBy := actor.UserID
	a.CreatedBy = &createdBy

	if err = s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Identity, id uuid.UUID, in Input) (a *Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointment.Update")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id.String()))
	defer func() { s.finish(ctx, span, "updated", actor, a, err) }()

	a, err = NormalizeUpdate(in)
	if err != nil {
		return nil, err
	}
	a.ID = id
	if err = s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel marks the appointment cancelled. The row stays readable.
func (s *Service) Cancel(ctx context.Context, actor auth.Identity, id uuid.UUID) (a *Appointment, err error) {
	ctx, span := tracer.Start(ctx, "appointment.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("appointment.id", id.String()))
	defer func() { s.finish(ctx, span, "cancelled", actor, a, err) }()

	return s.repo.Cancel(ctx, id)
}

func (s *Service) finish(ctx context.Context, span trace.Span, action string, actor auth.Identity, a *Appointment, err error) {
	s.metrics.Observe(entityName, action, err)
	if err != nil {
		span.RecordError(err)
		return
	}
	span.SetAttributes(attribute.String("appointment.status", a.Status))
	_ = s.events.Publish(ctx, websocket.NewEvent(websocket.TopicAppointments, entityName, action,
		a.ID.String(), actor.UserID.String(), a))
}
