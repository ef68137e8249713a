package provider

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/clinicadmin/clinic/internal/domain/provider")

type Service struct {
	repo ProviderRepository
}

func NewService(repo ProviderRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	ctx, span := tracer.Start(ctx, "provider.List")
	defer span.End()
	if limit <= 0 {
		limit = DefaultLimit
	}
	items, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
	}
	return items, total, err
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Provider, error) {
	ctx, span := tracer.Start(ctx, "provider.Get")
	defer span.End()
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
	}
	return p, err
}
