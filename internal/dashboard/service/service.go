// Package service assembles the staff dashboard from per-module counters.
package service

import (
	"context"
)

// CertificateCounter reports certificate request counts keyed by status.
type CertificateCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// AppointmentCounter reports appointment counts keyed by status.
type AppointmentCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// InboxCounter reports the unread contact message count.
type InboxCounter interface {
	CountUnread(ctx context.Context) (int, error)
}

// ResidentCounter reports the users count for a role.
type ResidentCounter interface {
	CountByRole(ctx context.Context, role string) (int, error)
}

type Service struct {
	certificates CertificateCounter
	appointments AppointmentCounter
	inbox        InboxCounter
	residents    ResidentCounter
}

func New(certificates CertificateCounter, appointments AppointmentCounter, inbox InboxCounter, residents ResidentCounter) *Service {
	return &Service{
		certificates: certificates,
		appointments: appointments,
		inbox:        inbox,
		residents:    residents,
	}
}

// Stats is the staff dashboard snapshot.
type Stats struct {
	Certificates          map[string]int
	TotalCertificates     int
	Appointments          map[string]int
	TotalAppointments     int
	UnreadContactMessages int
	Residents             int
}

// Stats collects the current counters. Each counter is authoritative for
// its own module; the snapshot is not transactionally consistent.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	certs, err := s.certificates.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	appts, err := s.appointments.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	unread, err := s.inbox.CountUnread(ctx)
	if err != nil {
		return nil, err
	}
	residents, err := s.residents.CountByRole(ctx, "resident")
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Certificates:          certs,
		Appointments:          appts,
		UnreadContactMessages: unread,
		Residents:             residents,
	}
	for _, n := range certs {
		stats.TotalCertificates += n
	}
	for _, n := range appts {
		stats.TotalAppointments += n
	}
	return stats, nil
}
