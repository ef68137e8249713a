package profile

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/internal/platform/auth"
)

var tracer = otel.Tracer("github.com/clinicadmin/clinic/internal/domain/profile")

type Service struct {
	repo ProfileRepository
}

func NewService(repo ProfileRepository) *Service {
	return &Service{repo: repo}
}

// Me describes the caller. A missing profiles row is not an error; the
// role then comes from the token alone.
func (s *Service) Me(ctx context.Context, id auth.Identity) (*Me, error) {
	ctx, span := tracer.Start(ctx, "profile.Me")
	defer span.End()

	me := &Me{ID: id.UserID, Email: id.Email, Role: id.Role}
	p, err := s.repo.GetByID(ctx, id.UserID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return me, nil
	case err != nil:
		span.RecordError(err)
		return nil, err
	}
	me.Profile = p
	if me.Role == "" {
		me.Role = p.Role
	}
	return me, nil
}
