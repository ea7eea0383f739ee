package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"barangay_portal_backend/internal/appointments/slots"
	"barangay_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Appointment statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ErrDuplicateTrackingID signals the generated tracking id is already taken.
var ErrDuplicateTrackingID = errors.New("tracking id already exists")

// Appointment is one booked slot. Resident fields are joined from users.
type Appointment struct {
	ID            uuid.UUID
	TrackingID    string
	UserID        uuid.UUID
	ServiceType   string
	Date          time.Time
	Time          string
	HealthConcern *string
	Status        string
	Remarks       *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	ResidentName  string
	ResidentEmail string
}

// BookParams holds the fields for a new booking.
type BookParams struct {
	TrackingID    string
	UserID        uuid.UUID
	ServiceType   string
	Date          time.Time
	Time          string
	HealthConcern *string
}

// ListFilters narrows and pages listings. UserID scopes the result to one
// resident's own bookings.
type ListFilters struct {
	Status      string
	ServiceType string
	Date        *time.Time
	UserID      uuid.UUID
	Limit       int
	Offset      int
}

// Repository is the storage contract for appointments.
type Repository interface {
	// BookSlot admits a booking only while the slot holds fewer than
	// MaxPerSlot non-cancelled appointments. The capacity re-check and the
	// insert are atomic; concurrent bookers serialize per slot.
	BookSlot(ctx context.Context, params BookParams) (*Appointment, error)
	CountNonCancelled(ctx context.Context, date time.Time, serviceType, timeSlot string) (int, error)
	// BookedCounts returns the non-cancelled count per time slot for a day.
	BookedCounts(ctx context.Context, date time.Time, serviceType string) (map[string]int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	FindByTrackingID(ctx context.Context, trackingID string) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, remarks *string) error
	List(ctx context.Context, filters ListFilters) ([]Appointment, int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed appointment repository.
func New(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const appointmentColumns = `a.id, a.tracking_id, a.user_id, a.service_type, a.appointment_date,
	to_char(a.appointment_time, 'HH24:MI:SS'), a.health_concern, a.status, a.remarks,
	a.created_at, a.updated_at,
	COALESCE(TRIM(u.first_name || ' ' || u.last_name), ''), COALESCE(u.email, '')`

const appointmentFrom = ` FROM appointments a LEFT JOIN users u ON u.id = a.user_id `

func (r *postgresRepository) BookSlot(ctx context.Context, params BookParams) (*Appointment, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to begin booking transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// An advisory lock on the slot key serializes racing bookers without
	// locking the whole table. COUNT has no row to FOR UPDATE on when the
	// slot is still empty, so row locks alone cannot close the race.
	slotKey := fmt.Sprintf("%s|%s|%s", params.Date.Format("2006-01-02"), params.ServiceType, params.Time)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, slotKey); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to lock slot", err)
	}

	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments
		 WHERE appointment_date = $1 AND service_type = $2 AND appointment_time = $3::time
		   AND status <> 'cancelled'`,
		params.Date, params.ServiceType, params.Time,
	).Scan(&count)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to count slot occupancy", err)
	}
	if count >= slots.MaxPerSlot {
		return nil, apperr.SlotFull(fmt.Sprintf("slot %s on %s is fully booked", params.Time, params.Date.Format("2006-01-02")))
	}

	var id uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO appointments (tracking_id, user_id, service_type, appointment_date, appointment_time, health_concern)
		 VALUES ($1, $2, $3, $4, $5::time, $6)
		 RETURNING id`,
		params.TrackingID, params.UserID, params.ServiceType, params.Date, params.Time, params.HealthConcern,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "tracking_id") {
			return nil, ErrDuplicateTrackingID
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create appointment", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to commit booking", err)
	}

	return r.FindByID(ctx, id)
}

func (r *postgresRepository) CountNonCancelled(ctx context.Context, date time.Time, serviceType, timeSlot string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM appointments
		 WHERE appointment_date = $1 AND service_type = $2 AND appointment_time = $3::time
		   AND status <> 'cancelled'`,
		date, serviceType, timeSlot,
	).Scan(&count)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "failed to count slot occupancy", err)
	}
	return count, nil
}

func (r *postgresRepository) BookedCounts(ctx context.Context, date time.Time, serviceType string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT to_char(appointment_time, 'HH24:MI:SS'), COUNT(*)
		 FROM appointments
		 WHERE appointment_date = $1 AND service_type = $2 AND status <> 'cancelled'
		 GROUP BY appointment_time`,
		date, serviceType,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load slot occupancy", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var timeSlot string
		var count int
		if err := rows.Scan(&timeSlot, &count); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan slot occupancy", err)
		}
		counts[timeSlot] = count
	}
	return counts, rows.Err()
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+appointmentFrom+`WHERE a.id = $1`, id)
	return scanAppointment(row)
}

func (r *postgresRepository) FindByTrackingID(ctx context.Context, trackingID string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+appointmentFrom+`WHERE a.tracking_id = $1`, trackingID)
	return scanAppointment(row)
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, remarks *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointments SET status = $2, remarks = $3, updated_at = now() WHERE id = $1`,
		id, status, remarks,
	)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("appointment not found")
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, filters ListFilters) ([]Appointment, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	argN := 1
	if filters.Status != "" {
		where += fmt.Sprintf(" AND a.status = $%d", argN)
		args = append(args, filters.Status)
		argN++
	}
	if filters.ServiceType != "" {
		where += fmt.Sprintf(" AND a.service_type = $%d", argN)
		args = append(args, filters.ServiceType)
		argN++
	}
	if filters.Date != nil {
		where += fmt.Sprintf(" AND a.appointment_date = $%d", argN)
		args = append(args, *filters.Date)
		argN++
	}
	if filters.UserID != uuid.Nil {
		where += fmt.Sprintf(" AND a.user_id = $%d", argN)
		args = append(args, filters.UserID)
		argN++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+appointmentFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to count appointments", err)
	}

	limit := filters.Limit
	if limit < 1 {
		limit = 20
	}
	query := `SELECT ` + appointmentColumns + appointmentFrom + where +
		fmt.Sprintf(" ORDER BY a.appointment_date DESC, a.appointment_time ASC LIMIT $%d OFFSET $%d", argN, argN+1)
	args = append(args, limit, filters.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to list appointments", err)
	}
	defer rows.Close()

	items := make([]Appointment, 0, limit)
	for rows.Next() {
		appt, scanErr := scanAppointment(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		items = append(items, *appt)
	}
	if rows.Err() != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to iterate appointments", rows.Err())
	}

	return items, total, nil
}

func (r *postgresRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM appointments GROUP BY status`)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to count appointments", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan status counts", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	err := row.Scan(
		&appt.ID, &appt.TrackingID, &appt.UserID, &appt.ServiceType, &appt.Date,
		&appt.Time, &appt.HealthConcern, &appt.Status, &appt.Remarks,
		&appt.CreatedAt, &appt.UpdatedAt, &appt.ResidentName, &appt.ResidentEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("appointment not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to scan appointment", err)
	}
	return &appt, nil
}
