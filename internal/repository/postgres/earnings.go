package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/repository"
)

type earningsRepository struct {
	db *sql.DB
}

func NewEarningsRepository(db *sql.DB) repository.EarningsRepository {
	return &earningsRepository{db: db}
}

const earningColumns = `id, booking_id, provider_id, gross_cents, commission_cents, net_cents, commission_rate_bps, status, dispute_deadline, COALESCE(approved_by, ''), created_at, updated_at`

func scanEarning(row interface{ Scan(...any) error }) (*domain.ProviderEarning, error) {
	e := &domain.ProviderEarning{}
	err := row.Scan(&e.ID, &e.BookingID, &e.ProviderID, &e.GrossCents, &e.CommissionCents, &e.NetCents,
		&e.CommissionRateBps, &e.Status, &e.DisputeDeadline, &e.ApprovedBy, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CreateForBooking relies on the UNIQUE constraint on booking_id: the
// ON CONFLICT DO NOTHING insert makes concurrent session completions
// collapse to exactly one earning row.
func (r *earningsRepository) CreateForBooking(ctx context.Context, e *domain.ProviderEarning) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	query := `INSERT INTO provider_earnings
	          (booking_id, provider_id, gross_cents, commission_cents, net_cents, commission_rate_bps, status, dispute_deadline, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	          ON CONFLICT (booking_id) DO NOTHING
	          RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, query,
		e.BookingID, e.ProviderID, e.GrossCents, e.CommissionCents, e.NetCents,
		e.CommissionRateBps, e.Status, e.DisputeDeadline,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Another caller created the earning first.
		return false, nil
	}
	if err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		domain.BookingStatusCompleted, e.BookingID, domain.BookingStatusConfirmed)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, domain.ErrConcurrencyConflict
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (r *earningsRepository) GetByID(ctx context.Context, id int64) (*domain.ProviderEarning, error) {
	query := `SELECT ` + earningColumns + ` FROM provider_earnings WHERE id = $1`
	return scanEarning(r.db.QueryRowContext(ctx, query, id))
}

func (r *earningsRepository) GetByBooking(ctx context.Context, bookingID int64) (*domain.ProviderEarning, error) {
	query := `SELECT ` + earningColumns + ` FROM provider_earnings WHERE booking_id = $1`
	return scanEarning(r.db.QueryRowContext(ctx, query, bookingID))
}

func (r *earningsRepository) ListByProvider(ctx context.Context, providerID int64, page, pageSize int32) ([]domain.ProviderEarning, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + earningColumns + ` FROM provider_earnings WHERE provider_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, providerID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var earnings []domain.ProviderEarning
	for rows.Next() {
		var e domain.ProviderEarning
		if err := rows.Scan(&e.ID, &e.BookingID, &e.ProviderID, &e.GrossCents, &e.CommissionCents, &e.NetCents,
			&e.CommissionRateBps, &e.Status, &e.DisputeDeadline, &e.ApprovedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		earnings = append(earnings, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int32
	err = r.db.QueryRowContext(ctx, `SELECT count(*) FROM provider_earnings WHERE provider_id = $1`, providerID).Scan(&count)
	if err != nil {
		return nil, 0, err
	}
	return earnings, count, nil
}

func (r *earningsRepository) ListSweepable(ctx context.Context, now time.Time) ([]repository.SweepCandidate, error) {
	query := `SELECT e.id, e.booking_id,
	                 EXISTS (SELECT 1 FROM disputes d WHERE d.booking_id = e.booking_id AND d.status IN ($1, $2)) AS has_open_dispute
	          FROM provider_earnings e
	          WHERE e.status = $3 AND e.dispute_deadline < $4
	          ORDER BY e.dispute_deadline ASC`
	rows, err := r.db.QueryContext(ctx, query,
		domain.DisputeStatusOpen, domain.DisputeStatusUnderReview, domain.EarningStatusPending, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []repository.SweepCandidate
	for rows.Next() {
		var c repository.SweepCandidate
		if err := rows.Scan(&c.EarningID, &c.BookingID, &c.HasOpenDispute); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (r *earningsRepository) Sweep(ctx context.Context, earningID int64, to domain.EarningStatus, approvedBy string) (bool, error) {
	var approvedByArg any
	if approvedBy != "" {
		approvedByArg = approvedBy
	}
	query := `UPDATE provider_earnings SET status = $1, approved_by = COALESCE($2, approved_by), updated_at = NOW()
	          WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, to, approvedByArg, earningID, domain.EarningStatusPending)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *earningsRepository) Release(ctx context.Context, earningID int64, approvedBy string) (bool, error) {
	query := `UPDATE provider_earnings SET status = $1, approved_by = $2, updated_at = NOW()
	          WHERE id = $3 AND status IN ($4, $5)`
	result, err := r.db.ExecContext(ctx, query,
		domain.EarningStatusApproved, approvedBy, earningID, domain.EarningStatusPending, domain.EarningStatusDisputed)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ApprovedBalance subtracts every allocation still held by a live payout
// from each APPROVED earning's net amount. Rejected payouts release their
// lines; FAILED payouts keep holding until staff release them, at which
// point released_at excludes the lines here.
func (r *earningsRepository) ApprovedBalance(ctx context.Context, providerID int64) (int64, error) {
	var balance int64
	query := `SELECT COALESCE(SUM(e.net_cents - COALESCE(held.amount, 0)), 0)
	          FROM provider_earnings e
	          LEFT JOIN (
	              SELECT pe.earning_id, SUM(pe.amount_cents) AS amount
	              FROM payout_earnings pe
	              JOIN payouts p ON p.id = pe.payout_id
	              WHERE p.status != $1 AND p.released_at IS NULL
	              GROUP BY pe.earning_id
	          ) held ON held.earning_id = e.id
	          WHERE e.provider_id = $2 AND e.status = $3`
	err := r.db.QueryRowContext(ctx, query, domain.PayoutStatusRejected, providerID, domain.EarningStatusApproved).Scan(&balance)
	return balance, err
}
