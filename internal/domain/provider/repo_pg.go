package provider

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/internal/platform/db"
)

type providerRepoPG struct{ db db.DBTX }

func NewProviderRepoPG(conn db.DBTX) ProviderRepository {
	return &providerRepoPG{db: conn}
}

const providerCols = `hp.id, hp.user_id, hp.license_number, hp.specialty,
	COALESCE(NULLIF(pr.full_name, ''), 'Unknown'), COALESCE(pr.email, '')`

const providerFrom = ` FROM healthcare_providers hp LEFT JOIN profiles pr ON pr.id = hp.user_id`

func scanProvider(row pgx.Row) (*Provider, error) {
	var p Provider
	if err := row.Scan(&p.ID, &p.UserID, &p.LicenseNumber, &p.Specialty, &p.FullName, &p.Email); err != nil {
		return nil, apperr.FromDB(err)
	}
	return &p, nil
}

func (r *providerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	return scanProvider(r.db.QueryRow(ctx, `SELECT `+providerCols+providerFrom+` WHERE hp.id = $1`, id))
}

func (r *providerRepoPG) List(ctx context.Context, limit, offset int) ([]*Provider, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM healthcare_providers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count providers: %w", err)
	}
	rows, err := r.db.Query(ctx, `SELECT `+providerCols+providerFrom+
		` ORDER BY pr.full_name ASC NULLS LAST, hp.created_at ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	items := []*Provider{}
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
