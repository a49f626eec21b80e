package postgres

import (
	"context"
	"database/sql"
	"errors"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/repository"
)

type transactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

const transactionColumns = `id, booking_id, gateway, order_id, capture_id, amount_cents, status, COALESCE(raw_status, ''), created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	err := row.Scan(&t.ID, &t.BookingID, &t.Gateway, &t.OrderID, &t.CaptureID, &t.AmountCents, &t.Status, &t.RawStatus, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	query := `INSERT INTO transactions (booking_id, gateway, order_id, amount_cents, status, raw_status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		t.BookingID, t.Gateway, t.OrderID, t.AmountCents, t.Status, t.RawStatus,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *transactionRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE order_id = $1`
	return scanTransaction(r.db.QueryRowContext(ctx, query, orderID))
}

func (r *transactionRepository) GetCompletedByBooking(ctx context.Context, bookingID int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE booking_id = $1 AND status = $2`
	return scanTransaction(r.db.QueryRowContext(ctx, query, bookingID, domain.TransactionStatusCompleted))
}

func (r *transactionRepository) MarkRefunded(ctx context.Context, orderID string) error {
	query := `UPDATE transactions SET status = $1, updated_at = NOW() WHERE order_id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, domain.TransactionStatusRefunded, orderID, domain.TransactionStatusCompleted)
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
