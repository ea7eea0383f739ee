package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"barangay_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Request lifecycle states. Pending is the only non-terminal state.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// IsTerminalStatus reports whether a status ends the lifecycle.
func IsTerminalStatus(status string) bool {
	return status == StatusApproved || status == StatusRejected
}

// ErrDuplicateTrackingID signals the generated tracking id is already taken
// and the caller should generate a fresh one.
var ErrDuplicateTrackingID = errors.New("tracking id already exists")

// CertificateRequest is one document application. Requester fields are joined
// from the users table for display and notification addressing.
type CertificateRequest struct {
	ID              uuid.UUID
	TrackingID      string
	UserID          uuid.UUID
	CertificateType string
	Purpose         string
	RequestedBy     time.Time
	Status          string
	Remarks         *string
	ProcessedAt     *time.Time
	IDType          *string
	IDNumber        *string
	IDFileKey       *string
	ArtifactKey     *string
	FeeAmount       float64
	Channel         string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	RequesterName  string
	RequesterEmail string
}

// CreateParams holds the fields for a new request row.
type CreateParams struct {
	TrackingID      string
	UserID          uuid.UUID
	CertificateType string
	Purpose         string
	RequestedBy     time.Time
	IDType          *string
	IDNumber        *string
	IDFileKey       *string
	FeeAmount       float64
	Channel         string
}

// ListFilters narrows and pages listings. UserID scopes the result to one
// resident's own requests.
type ListFilters struct {
	Status          string
	CertificateType string
	UserID          uuid.UUID
	Limit           int
	Offset          int
}

// Repository is the storage contract for certificate requests.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*CertificateRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*CertificateRequest, error)
	FindByTrackingID(ctx context.Context, trackingID string) (*CertificateRequest, error)
	// UpdateStatus writes the status triple atomically. processedAt and
	// artifactKey overwrite the stored values, nil clears them.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, remarks *string, processedAt *time.Time, artifactKey *string) error
	List(ctx context.Context, filters ListFilters) ([]CertificateRequest, int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed certificate request repository.
func New(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const requestColumns = `r.id, r.tracking_id, r.user_id, r.certificate_type, r.purpose,
	r.requested_by, r.status, r.remarks, r.processed_at, r.id_type, r.id_number,
	r.id_file_key, r.artifact_key, r.fee_amount, r.channel, r.created_at, r.updated_at,
	COALESCE(TRIM(u.first_name || ' ' || u.last_name), ''), COALESCE(u.email, '')`

const requestFrom = ` FROM certificate_requests r LEFT JOIN users u ON u.id = r.user_id `

func (r *postgresRepository) Create(ctx context.Context, params CreateParams) (*CertificateRequest, error) {
	channel := params.Channel
	if channel == "" {
		channel = "online"
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`INSERT INTO certificate_requests
		 (tracking_id, user_id, certificate_type, purpose, requested_by, id_type, id_number, id_file_key, fee_amount, channel)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		params.TrackingID, params.UserID, params.CertificateType, params.Purpose,
		params.RequestedBy, params.IDType, params.IDNumber, params.IDFileKey,
		params.FeeAmount, channel,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "tracking_id") {
			return nil, ErrDuplicateTrackingID
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create certificate request", err)
	}

	return r.FindByID(ctx, id)
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*CertificateRequest, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+requestFrom+`WHERE r.id = $1`, id)
	return scanRequest(row)
}

func (r *postgresRepository) FindByTrackingID(ctx context.Context, trackingID string) (*CertificateRequest, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+requestFrom+`WHERE r.tracking_id = $1`, trackingID)
	return scanRequest(row)
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, remarks *string, processedAt *time.Time, artifactKey *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE certificate_requests
		 SET status = $2, remarks = $3, processed_at = $4, artifact_key = COALESCE($5, artifact_key), updated_at = now()
		 WHERE id = $1`,
		id, status, remarks, processedAt, artifactKey,
	)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update certificate request", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("certificate request not found")
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, filters ListFilters) ([]CertificateRequest, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	argN := 1
	if filters.Status != "" {
		where += fmt.Sprintf(" AND r.status = $%d", argN)
		args = append(args, filters.Status)
		argN++
	}
	if filters.CertificateType != "" {
		where += fmt.Sprintf(" AND r.certificate_type = $%d", argN)
		args = append(args, filters.CertificateType)
		argN++
	}
	if filters.UserID != uuid.Nil {
		where += fmt.Sprintf(" AND r.user_id = $%d", argN)
		args = append(args, filters.UserID)
		argN++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+requestFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to count certificate requests", err)
	}

	limit := filters.Limit
	if limit < 1 {
		limit = 20
	}
	query := `SELECT ` + requestColumns + requestFrom + where +
		fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d", argN, argN+1)
	args = append(args, limit, filters.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to list certificate requests", err)
	}
	defer rows.Close()

	items := make([]CertificateRequest, 0, limit)
	for rows.Next() {
		req, scanErr := scanRequest(rows)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		items = append(items, *req)
	}
	if rows.Err() != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to iterate certificate requests", rows.Err())
	}

	return items, total, nil
}

func (r *postgresRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM certificate_requests GROUP BY status`)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to count certificate requests", err)
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

func scanRequest(row pgx.Row) (*CertificateRequest, error) {
	var req CertificateRequest
	err := row.Scan(
		&req.ID, &req.TrackingID, &req.UserID, &req.CertificateType, &req.Purpose,
		&req.RequestedBy, &req.Status, &req.Remarks, &req.ProcessedAt, &req.IDType,
		&req.IDNumber, &req.IDFileKey, &req.ArtifactKey, &req.FeeAmount, &req.Channel,
		&req.CreatedAt, &req.UpdatedAt, &req.RequesterName, &req.RequesterEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("certificate request not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to scan certificate request", err)
	}
	return &req, nil
}
