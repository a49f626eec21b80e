package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/repository"
)

type bankAccountRepository struct {
	db *sql.DB
}

func NewBankAccountRepository(db *sql.DB) repository.BankAccountRepository {
	return &bankAccountRepository{db: db}
}

const bankAccountColumns = `id, provider_id, bank_name, account_number, holder_name, status, penny_cents, COALESCE(penny_reference, ''), attempts, is_active, created_at, updated_at`

func scanBankAccount(row interface{ Scan(...any) error }) (*domain.ProviderBankAccount, error) {
	a := &domain.ProviderBankAccount{}
	err := row.Scan(&a.ID, &a.ProviderID, &a.BankName, &a.AccountNumber, &a.HolderName, &a.Status,
		&a.PennyCents, &a.PennyReference, &a.Attempts, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create relies on the partial unique index on (provider_id) WHERE status
// != 'DELETED' to enforce one live account per provider at the database
// level.
func (r *bankAccountRepository) Create(ctx context.Context, a *domain.ProviderBankAccount) error {
	query := `INSERT INTO provider_bank_accounts
	          (provider_id, bank_name, account_number, holder_name, status, penny_cents, attempts, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, 0, 0, false, NOW(), NOW()) RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		a.ProviderID, a.BankName, a.AccountNumber, a.HolderName, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return domain.Preconditionf("provider %d already has a live bank account", a.ProviderID)
	}
	return err
}

func (r *bankAccountRepository) GetByID(ctx context.Context, id int64) (*domain.ProviderBankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM provider_bank_accounts WHERE id = $1`
	return scanBankAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *bankAccountRepository) GetActiveByProvider(ctx context.Context, providerID int64) (*domain.ProviderBankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM provider_bank_accounts
	          WHERE provider_id = $1 AND status != $2 ORDER BY created_at DESC LIMIT 1`
	return scanBankAccount(r.db.QueryRowContext(ctx, query, providerID, domain.BankAccountStatusDeleted))
}

func (r *bankAccountRepository) MarkPennyTestSent(ctx context.Context, id int64, pennyCents int64, reference string) error {
	query := `UPDATE provider_bank_accounts SET status = $1, penny_cents = $2, penny_reference = $3, updated_at = NOW()
	          WHERE id = $4 AND status = $5`
	result, err := r.db.ExecContext(ctx, query,
		domain.BankAccountStatusPennyTestSent, pennyCents, reference, id, domain.BankAccountStatusPending)
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

func (r *bankAccountRepository) MarkVerified(ctx context.Context, id int64) error {
	query := `UPDATE provider_bank_accounts SET status = $1, is_active = true, updated_at = NOW()
	          WHERE id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query,
		domain.BankAccountStatusVerified, id, domain.BankAccountStatusPennyTestSent)
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

// IncrementAttempts bumps the counter and rejects the account in the same
// statement once the limit is hit, so two concurrent wrong guesses cannot
// both land on attempt two.
func (r *bankAccountRepository) IncrementAttempts(ctx context.Context, id int64) (int32, domain.BankAccountStatus, error) {
	query := `UPDATE provider_bank_accounts
	          SET attempts = attempts + 1,
	              status = CASE WHEN attempts + 1 >= $1 THEN $2::text ELSE status END,
	              updated_at = NOW()
	          WHERE id = $3 AND status = $4
	          RETURNING attempts, status`
	var attempts int32
	var status domain.BankAccountStatus
	err := r.db.QueryRowContext(ctx, query,
		domain.MaxPennyTestAttempts, domain.BankAccountStatusRejected, id, domain.BankAccountStatusPennyTestSent,
	).Scan(&attempts, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", domain.ErrConcurrencyConflict
	}
	if err != nil {
		return 0, "", err
	}
	return attempts, status, nil
}

func (r *bankAccountRepository) MarkDeleted(ctx context.Context, id int64) error {
	query := `UPDATE provider_bank_accounts SET status = $1, is_active = false, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, domain.BankAccountStatusDeleted, id)
	return err
}

func (r *bankAccountRepository) CreateDeleteRequest(ctx context.Context, req *domain.BankAccountDeleteRequest) error {
	query := `INSERT INTO bank_account_delete_requests (bank_account_id, provider_id, reason, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		req.BankAccountID, req.ProviderID, req.Reason, req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *bankAccountRepository) GetDeleteRequest(ctx context.Context, id int64) (*domain.BankAccountDeleteRequest, error) {
	query := `SELECT id, bank_account_id, provider_id, COALESCE(reason, ''), status, reviewed_by, created_at, updated_at
	          FROM bank_account_delete_requests WHERE id = $1`
	req := &domain.BankAccountDeleteRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.BankAccountID, &req.ProviderID, &req.Reason, &req.Status, &req.ReviewedBy, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *bankAccountRepository) ListPendingDeleteRequests(ctx context.Context) ([]domain.BankAccountDeleteRequest, error) {
	query := `SELECT id, bank_account_id, provider_id, COALESCE(reason, ''), status, reviewed_by, created_at, updated_at
	          FROM bank_account_delete_requests WHERE status = $1 ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, domain.DeleteRequestStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.BankAccountDeleteRequest
	for rows.Next() {
		var req domain.BankAccountDeleteRequest
		if err := rows.Scan(&req.ID, &req.BankAccountID, &req.ProviderID, &req.Reason, &req.Status, &req.ReviewedBy, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// ReviewDeleteRequest checks the in-flight payout constraint inside the same
// transaction that soft-deletes the account, so a payout created between the
// check and the delete is impossible.
func (r *bankAccountRepository) ReviewDeleteRequest(ctx context.Context, requestID, staffID int64, approve bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var accountID int64
	err = tx.QueryRowContext(ctx,
		`SELECT bank_account_id FROM bank_account_delete_requests WHERE id = $1 AND status = $2 FOR UPDATE`,
		requestID, domain.DeleteRequestStatusPending).Scan(&accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Preconditionf("delete request %d is not pending", requestID)
	}
	if err != nil {
		return err
	}

	newStatus := domain.DeleteRequestStatusRejected
	if approve {
		newStatus = domain.DeleteRequestStatusApproved

		var inflight int64
		err = tx.QueryRowContext(ctx,
			`SELECT count(*) FROM payouts WHERE bank_account_id = $1 AND status IN ($2, $3, $4)`,
			accountID, domain.PayoutStatusRequested, domain.PayoutStatusApproved, domain.PayoutStatusProcessing,
		).Scan(&inflight)
		if err != nil {
			return err
		}
		if inflight > 0 {
			return domain.Preconditionf("bank account %d has in-flight payouts", accountID)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE provider_bank_accounts SET status = $1, is_active = false, updated_at = NOW() WHERE id = $2`,
			domain.BankAccountStatusDeleted, accountID)
		if err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE bank_account_delete_requests SET status = $1, reviewed_by = $2, updated_at = NOW() WHERE id = $3`,
		newStatus, staffID, requestID)
	if err != nil {
		return err
	}

	return tx.Commit()
}
