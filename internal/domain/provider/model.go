package provider

import "github.com/google/uuid"

// Provider is the flattened view of healthcare_providers joined to profiles.
type Provider struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	UserID        *uuid.UUID `db:"user_id" json:"user_id"`
	LicenseNumber string     `db:"license_number" json:"license_number"`
	Specialty     *string    `db:"specialty" json:"specialty"`
	FullName      string     `db:"full_name" json:"full_name"`
	Email         string     `db:"email" json:"email"`
}

const DefaultLimit = 100
