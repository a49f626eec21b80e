package postgres

import (
	"context"
	"database/sql"
	"errors"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/repository"
)

type disputeRepository struct {
	db *sql.DB
}

func NewDisputeRepository(db *sql.DB) repository.DisputeRepository {
	return &disputeRepository{db: db}
}

const disputeColumns = `id, booking_id, opened_by, COALESCE(reason, ''), status, COALESCE(resolution, ''), resolved_by, created_at, updated_at`

func scanDispute(row interface{ Scan(...any) error }) (*domain.Dispute, error) {
	d := &domain.Dispute{}
	err := row.Scan(&d.ID, &d.BookingID, &d.OpenedBy, &d.Reason, &d.Status, &d.Resolution, &d.ResolvedBy, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *disputeRepository) Create(ctx context.Context, d *domain.Dispute) error {
	query := `INSERT INTO disputes (booking_id, opened_by, reason, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		d.BookingID, d.OpenedBy, d.Reason, d.Status,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *disputeRepository) GetByID(ctx context.Context, id int64) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE id = $1`
	return scanDispute(r.db.QueryRowContext(ctx, query, id))
}

func (r *disputeRepository) GetOpenByBooking(ctx context.Context, bookingID int64) (*domain.Dispute, error) {
	query := `SELECT ` + disputeColumns + ` FROM disputes WHERE booking_id = $1 AND status IN ($2, $3) LIMIT 1`
	return scanDispute(r.db.QueryRowContext(ctx, query, bookingID, domain.DisputeStatusOpen, domain.DisputeStatusUnderReview))
}

func (r *disputeRepository) Resolve(ctx context.Context, id, staffID int64, resolution string) error {
	query := `UPDATE disputes SET status = $1, resolution = $2, resolved_by = $3, updated_at = NOW()
	          WHERE id = $4 AND status IN ($5, $6)`
	result, err := r.db.ExecContext(ctx, query,
		domain.DisputeStatusResolved, resolution, staffID, id, domain.DisputeStatusOpen, domain.DisputeStatusUnderReview)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrConcurrencyConflict
	}
	return nil
}
