package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/repository"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, seeker_id, provider_id, start_at, end_at, amount_cents, status, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	b := &domain.Booking{}
	err := row.Scan(&b.ID, &b.SeekerID, &b.ProviderID, &b.StartAt, &b.EndAt, &b.AmountCents, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (seeker_id, provider_id, start_at, end_at, amount_cents, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW()) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		b.SeekerID, b.ProviderID, b.StartAt, b.EndAt, b.AmountCents, b.Status,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.db.QueryRowContext(ctx, query, id))
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, to, id, from)
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

// ConfirmPayment is the confirm-once transition. The status guards on both
// UPDATEs mean a second concurrent caller affects zero rows and backs out
// with ErrConcurrencyConflict, leaving the first caller's work intact.
func (r *bookingRepository) ConfirmPayment(ctx context.Context, p repository.ConfirmPaymentParams) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		domain.BookingStatusConfirmed, p.BookingID, domain.BookingStatusPaymentPending)
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

	result, err = tx.ExecContext(ctx,
		`UPDATE transactions SET status = $1, capture_id = $2, raw_status = $3, updated_at = NOW()
		 WHERE id = $4 AND status = $5`,
		domain.TransactionStatusCompleted, p.CaptureID, "SUCCESS", p.TransactionID, domain.TransactionStatusPending)
	if err != nil {
		return err
	}
	rows, err = result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrConcurrencyConflict
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO meetings (booking_id, join_url, completion_code_hash, created_at) VALUES ($1, $2, $3, NOW())`,
		p.BookingID, p.JoinURL, p.CompletionCodeHash)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET sessions_completed = sessions_completed + 1
		 WHERE id = (SELECT provider_id FROM bookings WHERE id = $1)`,
		p.BookingID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *bookingRepository) CancelPayment(ctx context.Context, bookingID, transactionID int64, rawStatus string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE transactions SET status = $1, raw_status = $2, updated_at = NOW() WHERE id = $3 AND status = $4`,
		domain.TransactionStatusFailed, rawStatus, transactionID, domain.TransactionStatusPending)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		domain.BookingStatusCancelled, bookingID, domain.BookingStatusPaymentPending)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *bookingRepository) ListExpiredPaymentPending(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND start_at <= $2 ORDER BY start_at ASC`
	return r.listBookings(ctx, query, domain.BookingStatusPaymentPending, cutoff)
}

func (r *bookingRepository) ListConfirmedEndedBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 AND end_at < $2 ORDER BY end_at ASC`
	return r.listBookings(ctx, query, domain.BookingStatusConfirmed, cutoff)
}

func (r *bookingRepository) ListUnremindedStartingBefore(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE status = $1 AND reminder_sent = false AND start_at <= $2 ORDER BY start_at ASC`
	return r.listBookings(ctx, query, domain.BookingStatusConfirmed, cutoff)
}

func (r *bookingRepository) MarkReminderSent(ctx context.Context, bookingID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE bookings SET reminder_sent = true, updated_at = NOW() WHERE id = $1`, bookingID)
	return err
}

func (r *bookingRepository) listBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.SeekerID, &b.ProviderID, &b.StartAt, &b.EndAt, &b.AmountCents, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) GetMeetingByBooking(ctx context.Context, bookingID int64) (*domain.Meeting, error) {
	query := `SELECT id, booking_id, join_url, completion_code_hash, created_at FROM meetings WHERE booking_id = $1`
	m := &domain.Meeting{}
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(&m.ID, &m.BookingID, &m.JoinURL, &m.CompletionCodeHash, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *bookingRepository) PurgeWithTransactions(ctx context.Context, bookingID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE booking_id = $1`, bookingID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM bookings WHERE id = $1 AND status = $2`,
		bookingID, domain.BookingStatusPaymentPending)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("booking %d is not purgeable: %w", bookingID, domain.ErrConcurrencyConflict)
	}

	return tx.Commit()
}
