package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/logger"
	"consultly-backend/internal/repository"
	"consultly-backend/internal/utils"
)

type payoutRepository struct {
	db *sql.DB
}

func NewPayoutRepository(db *sql.DB) repository.PayoutRepository {
	return &payoutRepository{db: db}
}

const payoutColumns = `id, provider_id, bank_account_id, requested_cents, fee_cents, actual_cents, status, COALESCE(transfer_id, ''), COALESCE(reject_reason, ''), released_at, created_at, updated_at`

func scanPayout(row interface{ Scan(...any) error }) (*domain.Payout, error) {
	p := &domain.Payout{}
	err := row.Scan(&p.ID, &p.ProviderID, &p.BankAccountID, &p.RequestedCents, &p.FeeCents, &p.ActualCents,
		&p.Status, &p.TransferID, &p.RejectReason, &p.ReleasedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateWithAllocation is the single-transaction payout request. The
// provider row lock serializes concurrent requests from the same provider;
// everything after it sees a consistent view of earnings and in-flight
// payouts.
func (r *payoutRepository) CreateWithAllocation(ctx context.Context, providerID, bankAccountID, requestedCents int64) (*domain.Payout, error) {
	logger.EnterMethod("payoutRepository.CreateWithAllocation", "providerID", providerID, "requestedCents", requestedCents)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Serialize payout requests per provider.
	var lockedID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, providerID).Scan(&lockedID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// At most one in-flight payout per provider.
	var inflight int64
	err = tx.QueryRowContext(ctx,
		`SELECT count(*) FROM payouts WHERE provider_id = $1 AND status IN ($2, $3, $4)`,
		providerID, domain.PayoutStatusRequested, domain.PayoutStatusApproved, domain.PayoutStatusProcessing,
	).Scan(&inflight)
	if err != nil {
		return nil, err
	}
	if inflight > 0 {
		return nil, domain.Preconditionf("another payout is already in flight for provider %d", providerID)
	}

	// Approved earnings oldest-first with their remaining available amounts.
	// Lines held by rejected or released payouts no longer count.
	rows, err := tx.QueryContext(ctx, `
		SELECT e.id, e.net_cents - COALESCE(held.amount, 0) AS available
		FROM provider_earnings e
		LEFT JOIN (
		    SELECT pe.earning_id, SUM(pe.amount_cents) AS amount
		    FROM payout_earnings pe
		    JOIN payouts p ON p.id = pe.payout_id
		    WHERE p.status != $1 AND p.released_at IS NULL
		    GROUP BY pe.earning_id
		) held ON held.earning_id = e.id
		WHERE e.provider_id = $2 AND e.status = $3
		ORDER BY e.created_at ASC, e.id ASC
		FOR UPDATE OF e`,
		domain.PayoutStatusRejected, providerID, domain.EarningStatusApproved)
	if err != nil {
		return nil, err
	}

	var available []utils.AvailableEarning
	for rows.Next() {
		var e utils.AvailableEarning
		if err := rows.Scan(&e.EarningID, &e.AvailableCents); err != nil {
			rows.Close()
			return nil, err
		}
		available = append(available, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	allocations, err := utils.AllocateFIFO(available, requestedCents)
	if err != nil {
		logger.ExitMethodWithError("payoutRepository.CreateWithAllocation", err, "providerID", providerID)
		return nil, err
	}

	payout := &domain.Payout{
		ProviderID:     providerID,
		BankAccountID:  bankAccountID,
		RequestedCents: requestedCents,
		Status:         domain.PayoutStatusRequested,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO payouts (provider_id, bank_account_id, requested_cents, fee_cents, actual_cents, status, created_at, updated_at)
		 VALUES ($1, $2, $3, 0, 0, $4, NOW(), NOW()) RETURNING id, created_at, updated_at`,
		providerID, bankAccountID, requestedCents, domain.PayoutStatusRequested,
	).Scan(&payout.ID, &payout.CreatedAt, &payout.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, a := range allocations {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO payout_earnings (payout_id, earning_id, amount_cents, created_at) VALUES ($1, $2, $3, NOW())`,
			payout.ID, a.EarningID, a.AmountCents)
		if err != nil {
			return nil, err
		}
		if a.FullyConsumed {
			_, err = tx.ExecContext(ctx,
				`UPDATE provider_earnings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
				domain.EarningStatusPaidOut, a.EarningID, domain.EarningStatusApproved)
			if err != nil {
				return nil, err
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payout_logs (payout_id, actor_user_id, action, details, created_at) VALUES ($1, $2, $3, $4, NOW())`,
		payout.ID, providerID, domain.PayoutActionRequested,
		fmt.Sprintf("requested %d cents over %d earnings", requestedCents, len(allocations)))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.ExitMethod("payoutRepository.CreateWithAllocation", "payoutID", payout.ID, "allocations", len(allocations))
	return payout, nil
}

func (r *payoutRepository) GetByID(ctx context.Context, id int64) (*domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1`
	return scanPayout(r.db.QueryRowContext(ctx, query, id))
}

func (r *payoutRepository) GetByTransferID(ctx context.Context, transferID string) (*domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE transfer_id = $1`
	return scanPayout(r.db.QueryRowContext(ctx, query, transferID))
}

func (r *payoutRepository) ListByProvider(ctx context.Context, providerID int64, page, pageSize int32) ([]domain.Payout, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE provider_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, providerID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payouts, err := collectPayouts(rows)
	if err != nil {
		return nil, 0, err
	}

	var count int32
	err = r.db.QueryRowContext(ctx, `SELECT count(*) FROM payouts WHERE provider_id = $1`, providerID).Scan(&count)
	if err != nil {
		return nil, 0, err
	}
	return payouts, count, nil
}

func (r *payoutRepository) ListByStatus(ctx context.Context, status domain.PayoutStatus) ([]domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE status = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayouts(rows)
}

func collectPayouts(rows *sql.Rows) ([]domain.Payout, error) {
	var payouts []domain.Payout
	for rows.Next() {
		var p domain.Payout
		if err := rows.Scan(&p.ID, &p.ProviderID, &p.BankAccountID, &p.RequestedCents, &p.FeeCents, &p.ActualCents,
			&p.Status, &p.TransferID, &p.RejectReason, &p.ReleasedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

func (r *payoutRepository) ListAllocations(ctx context.Context, payoutID int64) ([]domain.PayoutEarning, error) {
	query := `SELECT id, payout_id, earning_id, amount_cents, created_at FROM payout_earnings WHERE payout_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, payoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.PayoutEarning
	for rows.Next() {
		var l domain.PayoutEarning
		if err := rows.Scan(&l.ID, &l.PayoutID, &l.EarningID, &l.AmountCents, &l.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *payoutRepository) Approve(ctx context.Context, payoutID, staffID, feeCents int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE payouts SET status = $1, fee_cents = $2, actual_cents = requested_cents - $2, updated_at = NOW()
		 WHERE id = $3 AND status = $4`,
		domain.PayoutStatusApproved, feeCents, payoutID, domain.PayoutStatusRequested)
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

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payout_logs (payout_id, actor_user_id, action, details, created_at) VALUES ($1, $2, $3, $4, NOW())`,
		payoutID, staffID, domain.PayoutActionApproved, fmt.Sprintf("approved with fee %d cents", feeCents))
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *payoutRepository) RejectAndRelease(ctx context.Context, payoutID, staffID int64, reason string) error {
	logger.EnterMethod("payoutRepository.RejectAndRelease", "payoutID", payoutID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE payouts SET status = $1, reject_reason = $2, updated_at = NOW() WHERE id = $3 AND status = $4`,
		domain.PayoutStatusRejected, reason, payoutID, domain.PayoutStatusRequested)
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

	if err := releaseConsumedEarnings(ctx, tx, payoutID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payout_logs (payout_id, actor_user_id, action, details, created_at) VALUES ($1, $2, $3, $4, NOW())`,
		payoutID, staffID, domain.PayoutActionRejected, reason)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.ExitMethod("payoutRepository.RejectAndRelease", "payoutID", payoutID)
	return nil
}

// releaseConsumedEarnings flips every earning this payout marked PAID_OUT
// back to APPROVED. Partially consumed earnings never left APPROVED; their
// held amounts free up once the payout is rejected or released.
func releaseConsumedEarnings(ctx context.Context, tx *sql.Tx, payoutID int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE provider_earnings SET status = $1, updated_at = NOW()
		 WHERE status = $2 AND id IN (SELECT earning_id FROM payout_earnings WHERE payout_id = $3)`,
		domain.EarningStatusApproved, domain.EarningStatusPaidOut, payoutID)
	return err
}

func (r *payoutRepository) MarkProcessing(ctx context.Context, payoutID int64, transferID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE payouts SET status = $1, transfer_id = $2, updated_at = NOW() WHERE id = $3 AND status = $4`,
		domain.PayoutStatusProcessing, transferID, payoutID, domain.PayoutStatusApproved)
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

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payout_logs (payout_id, action, details, created_at) VALUES ($1, $2, $3, NOW())`,
		payoutID, domain.PayoutActionTransferInitiated, "transfer "+transferID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *payoutRepository) MarkFailed(ctx context.Context, payoutID int64, detail string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE payouts SET status = $1, updated_at = NOW() WHERE id = $2 AND status IN ($3, $4)`,
		domain.PayoutStatusFailed, payoutID, domain.PayoutStatusApproved, domain.PayoutStatusProcessing)
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

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payout_logs (payout_id, action, details, created_at) VALUES ($1, $2, $3, NOW())`,
		payoutID, domain.PayoutActionFailed, detail)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *payoutRepository) MarkCompleted(ctx context.Context, payoutID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE payouts SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		domain.PayoutStatusCompleted, payoutID, domain.PayoutStatusProcessing)
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

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payout_logs (payout_id, action, created_at) VALUES ($1, $2, NOW())`,
		payoutID, domain.PayoutActionCompleted)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *payoutRepository) ReleaseFailed(ctx context.Context, payoutID, staffID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE payouts SET released_at = NOW(), updated_at = NOW() WHERE id = $1 AND status = $2 AND released_at IS NULL`,
		payoutID, domain.PayoutStatusFailed)
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

	if err := releaseConsumedEarnings(ctx, tx, payoutID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payout_logs (payout_id, actor_user_id, action, created_at) VALUES ($1, $2, $3, NOW())`,
		payoutID, staffID, domain.PayoutActionReleased)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *payoutRepository) HasNonTerminalForProvider(ctx context.Context, providerID int64) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM payouts WHERE provider_id = $1 AND status IN ($2, $3, $4)`,
		providerID, domain.PayoutStatusRequested, domain.PayoutStatusApproved, domain.PayoutStatusProcessing,
	).Scan(&count)
	return count > 0, err
}

func (r *payoutRepository) HasNonTerminalForAccount(ctx context.Context, bankAccountID int64) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM payouts WHERE bank_account_id = $1 AND status IN ($2, $3, $4)`,
		bankAccountID, domain.PayoutStatusRequested, domain.PayoutStatusApproved, domain.PayoutStatusProcessing,
	).Scan(&count)
	return count > 0, err
}
