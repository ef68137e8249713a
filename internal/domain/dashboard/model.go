package dashboard

// Stats is the summary shown on the clinic dashboard.
type Stats struct {
	TotalPatients        int `json:"total_patients"`
	AppointmentsToday    int `json:"appointments_today"`
	UpcomingAppointments int `json:"upcoming_appointments"`
	RecordsThisMonth     int `json:"records_this_month"`
}
