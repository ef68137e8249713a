package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicadmin/clinic/internal/platform/apperr"
	"github.com/clinicadmin/clinic/internal/platform/db"
)

type profileRepoPG struct{ db db.DBTX }

func NewProfileRepoPG(conn db.DBTX) ProfileRepository {
	return &profileRepoPG{db: conn}
}

func (r *profileRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.db.QueryRow(ctx, `
		SELECT id, email, full_name, role, phone, is_active, created_at, updated_at
		FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.Phone, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return &p, nil
}
