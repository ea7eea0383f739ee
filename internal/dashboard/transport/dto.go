// Package transport defines the response DTOs for the staff dashboard.
package transport

import (
	apptrepo "barangay_portal_backend/internal/appointments/repository"
	certrepo "barangay_portal_backend/internal/certificates/repository"
	"barangay_portal_backend/internal/dashboard/service"
)

type CertificateStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type AppointmentStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Cancelled int `json:"cancelled"`
}

type StatsResponse struct {
	Certificates          CertificateStats `json:"certificates"`
	Appointments          AppointmentStats `json:"appointments"`
	UnreadContactMessages int              `json:"unreadContactMessages"`
	Residents             int              `json:"residents"`
}

func ToStatsResponse(stats *service.Stats) StatsResponse {
	return StatsResponse{
		Certificates: CertificateStats{
			Total:    stats.TotalCertificates,
			Pending:  stats.Certificates[certrepo.StatusPending],
			Approved: stats.Certificates[certrepo.StatusApproved],
			Rejected: stats.Certificates[certrepo.StatusRejected],
		},
		Appointments: AppointmentStats{
			Total:     stats.TotalAppointments,
			Pending:   stats.Appointments[apptrepo.StatusPending],
			Confirmed: stats.Appointments[apptrepo.StatusConfirmed],
			Cancelled: stats.Appointments[apptrepo.StatusCancelled],
		},
		UnreadContactMessages: stats.UnreadContactMessages,
		Residents:             stats.Residents,
	}
}
