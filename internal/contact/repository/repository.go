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

// Message statuses.
const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

// Message is one resident inquiry.
type Message struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Subject   string
	Body      string
	Status    string
	CreatedAt time.Time
}

// CreateParams holds the fields for a new inquiry.
type CreateParams struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Body    string
}

// ListFilters narrows and pages the staff listing.
type ListFilters struct {
	Status string
	Limit  int
	Offset int
}

// Repository is the storage contract for contact messages.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Message, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Message, error)
	List(ctx context.Context, filters ListFilters) ([]Message, int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountUnread(ctx context.Context) (int, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// New creates a PostgreSQL-backed contact message repository.
func New(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const messageColumns = `id, name, email, phone, subject, body, status, created_at`

func (r *postgresRepository) Create(ctx context.Context, params CreateParams) (*Message, error) {
	const op = "contact.repository.Create"

	row := r.pool.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, phone, subject, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+messageColumns,
		params.Name, params.Email, params.Phone, params.Subject, params.Body,
	)
	msg, err := scanMessage(row)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create contact message", err).WithOp(op)
	}
	return msg, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*Message, error) {
	const op = "contact.repository.FindByID"

	row := r.pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM contact_messages WHERE id = $1`, id)
	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("contact message not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load contact message", err).WithOp(op)
	}
	return msg, nil
}

func (r *postgresRepository) List(ctx context.Context, filters ListFilters) ([]Message, int, error) {
	const op = "contact.repository.List"

	where := ""
	args := []any{}
	if filters.Status != "" {
		where = " WHERE status = $1"
		args = append(args, filters.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`+where, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to count contact messages", err).WithOp(op)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT `+messageColumns+` FROM contact_messages%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, filters.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to list contact messages", err).WithOp(op)
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to scan contact message", err).WithOp(op)
		}
		messages = append(messages, *msg)
	}
	return messages, total, rows.Err()
}

func (r *postgresRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	const op = "contact.repository.MarkRead"

	tag, err := r.pool.Exec(ctx, `UPDATE contact_messages SET status = $1 WHERE id = $2`, StatusRead, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to mark contact message read", err).WithOp(op)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("contact message not found")
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "contact.repository.Delete"

	tag, err := r.pool.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete contact message", err).WithOp(op)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("contact message not found")
	}
	return nil
}

func (r *postgresRepository) CountUnread(ctx context.Context) (int, error) {
	const op = "contact.repository.CountUnread"

	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages WHERE status = $1`, StatusUnread).Scan(&count)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "failed to count unread contact messages", err).WithOp(op)
	}
	return count, nil
}

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Body, &m.Status, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
