package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barangay_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Announcement is one public notice on the barangay board.
type Announcement struct {
	ID        uuid.UUID
	Title     string
	Body      string
	Category  string
	ImageKey  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateParams holds the fields for a new announcement.
type CreateParams struct {
	Title    string
	Body     string
	Category string
	ImageKey *string
}

// UpdateParams updates an announcement. Nil fields keep current values;
// ImageKeySet distinguishes "leave image alone" from "clear/replace it".
type UpdateParams struct {
	Title       *string
	Body        *string
	Category    *string
	ImageKey    *string
	ImageKeySet bool
}

// ListFilters narrows and pages the public board.
type ListFilters struct {
	Category string
	Limit    int
	Offset   int
}

// Repository is the storage contract for announcements.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Announcement, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Announcement, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Announcement, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters ListFilters) ([]Announcement, int, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed announcement repository.
func New(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const announcementColumns = `id, title, body, category, image_key, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, params CreateParams) (*Announcement, error) {
	const op = "announcements.repository.Create"

	row := r.pool.QueryRow(ctx, `
		INSERT INTO announcements (title, body, category, image_key)
		VALUES ($1, $2, $3, $4)
		RETURNING `+announcementColumns,
		params.Title, params.Body, params.Category, params.ImageKey,
	)
	a, err := scanAnnouncement(row)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create announcement", err).WithOp(op)
	}
	return a, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*Announcement, error) {
	const op = "announcements.repository.FindByID"

	row := r.pool.QueryRow(ctx, `SELECT `+announcementColumns+` FROM announcements WHERE id = $1`, id)
	a, err := scanAnnouncement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("announcement not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load announcement", err).WithOp(op)
	}
	return a, nil
}

func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Announcement, error) {
	const op = "announcements.repository.Update"

	sets := []string{"updated_at = now()"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Title != nil {
		sets = append(sets, "title = "+arg(*params.Title))
	}
	if params.Body != nil {
		sets = append(sets, "body = "+arg(*params.Body))
	}
	if params.Category != nil {
		sets = append(sets, "category = "+arg(*params.Category))
	}
	if params.ImageKeySet {
		sets = append(sets, "image_key = "+arg(params.ImageKey))
	}

	query := "UPDATE announcements SET "
	for i, set := range sets {
		if i > 0 {
			query += ", "
		}
		query += set
	}
	query += " WHERE id = " + arg(id) + " RETURNING " + announcementColumns

	row := r.pool.QueryRow(ctx, query, args...)
	a, err := scanAnnouncement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("announcement not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to update announcement", err).WithOp(op)
	}
	return a, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "announcements.repository.Delete"

	tag, err := r.pool.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete announcement", err).WithOp(op)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("announcement not found")
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context, filters ListFilters) ([]Announcement, int, error) {
	const op = "announcements.repository.List"

	where := ""
	args := []any{}
	if filters.Category != "" {
		where = " WHERE category = $1"
		args = append(args, filters.Category)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM announcements`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to count announcements", err).WithOp(op)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT `+announcementColumns+` FROM announcements%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, filters.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to list announcements", err).WithOp(op)
	}
	defer rows.Close()

	announcements := make([]Announcement, 0, limit)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to scan announcement", err).WithOp(op)
		}
		announcements = append(announcements, *a)
	}
	return announcements, total, rows.Err()
}

func scanAnnouncement(row pgx.Row) (*Announcement, error) {
	var a Announcement
	err := row.Scan(&a.ID, &a.Title, &a.Body, &a.Category, &a.ImageKey, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
