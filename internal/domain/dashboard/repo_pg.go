package dashboard

import (
	"context"
	"fmt"

	"github.com/clinicadmin/clinic/internal/platform/db"
)

type statsRepoPG struct{ db db.DBTX }

func NewStatsRepoPG(conn db.DBTX) StatsRepository {
	return &statsRepoPG{db: conn}
}

// Cancelled and no-show appointments are not counted.
const statsQuery = `SELECT
	(SELECT COUNT(*) FROM patients WHERE is_active = TRUE),
	(SELECT COUNT(*) FROM appointments
		WHERE appointment_date = $1::date AND status NOT IN ('cancelled', 'no-show')),
	(SELECT COUNT(*) FROM appointments
		WHERE appointment_date > $1::date AND status IN ('scheduled', 'confirmed')),
	(SELECT COUNT(*) FROM medical_records
		WHERE record_date >= date_trunc('month', $1::date) AND record_date <= $1::date)`

func (r *statsRepoPG) Stats(ctx context.Context, today string) (*Stats, error) {
	var s Stats
	err := r.db.QueryRow(ctx, statsQuery, today).Scan(
		&s.TotalPatients, &s.AppointmentsToday, &s.UpcomingAppointments, &s.RecordsThisMonth)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &s, nil
}
