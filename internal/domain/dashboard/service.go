package dashboard

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/clinicadmin/clinic/internal/domain/dashboard")

type Service struct {
	repo StatsRepository
	now  func() time.Time
}

func NewService(repo StatsRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Stats uses the UTC calendar date as "today".
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	today := s.now().UTC().Format("2006-01-02")
	ctx, span := tracer.Start(ctx, "dashboard.Stats")
	defer span.End()
	span.SetAttributes(attribute.String("dashboard.today", today))

	st, err := s.repo.Stats(ctx, today)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return st, nil
}
