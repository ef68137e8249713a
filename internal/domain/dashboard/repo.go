package dashboard

import (
	"context"
)

type StatsRepository interface {
	// Stats counts relative to today, a YYYY-MM-DD date.
	Stats(ctx context.Context, today string) (*Stats, error)
}
