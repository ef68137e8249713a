package provider

import (
	"context"

	"github.com/google/uuid"
)

type ProviderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Provider, error)
	List(ctx context.Context, limit, offset int) ([]*Provider, int, error)
}
