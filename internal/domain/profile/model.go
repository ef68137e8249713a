package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the staff record kept alongside an auth user.
type Profile struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  *string   `db:"full_name" json:"full_name"`
	Role      string    `db:"role" json:"role"`
	Phone     *string   `db:"phone" json:"phone"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Me is the response of GET /api/me.
type Me struct {
	ID      uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Role    string    `json:"role,omitempty"`
	Profile *Profile  `json:"profile,omitempty"`
}
