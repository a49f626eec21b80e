package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"consultly-backend/internal/domain"
)

func TestBankAccountRepository_IncrementAttempts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBankAccountRepository(db)
	ctx := context.Background()

	t.Run("BumpsCounter", func(t *testing.T) {
		mock.ExpectQuery("UPDATE provider_bank_accounts").
			WithArgs(domain.MaxPennyTestAttempts, string(domain.BankAccountStatusRejected), int64(3), string(domain.BankAccountStatusPennyTestSent)).
			WillReturnRows(sqlmock.NewRows([]string{"attempts", "status"}).AddRow(1, "PENNY_TEST_SENT"))

		attempts, status, err := repo.IncrementAttempts(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, int32(1), attempts)
		assert.Equal(t, domain.BankAccountStatusPennyTestSent, status)
	})

	t.Run("LastAttemptRejectsAccount", func(t *testing.T) {
		mock.ExpectQuery("UPDATE provider_bank_accounts").
			WithArgs(domain.MaxPennyTestAttempts, string(domain.BankAccountStatusRejected), int64(3), string(domain.BankAccountStatusPennyTestSent)).
			WillReturnRows(sqlmock.NewRows([]string{"attempts", "status"}).AddRow(3, "REJECTED"))

		attempts, status, err := repo.IncrementAttempts(ctx, 3)
		assert.NoError(t, err)
		assert.Equal(t, int32(3), attempts)
		assert.Equal(t, domain.BankAccountStatusRejected, status)
	})

	t.Run("AccountNotAwaitingVerification", func(t *testing.T) {
		mock.ExpectQuery("UPDATE provider_bank_accounts").
			WithArgs(domain.MaxPennyTestAttempts, string(domain.BankAccountStatusRejected), int64(3), string(domain.BankAccountStatusPennyTestSent)).
			WillReturnRows(sqlmock.NewRows([]string{"attempts", "status"}))

		_, _, err := repo.IncrementAttempts(ctx, 3)
		assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBankAccountRepository_MarkVerified(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBankAccountRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE provider_bank_accounts").
			WithArgs(string(domain.BankAccountStatusVerified), int64(3), string(domain.BankAccountStatusPennyTestSent)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkVerified(ctx, 3)
		assert.NoError(t, err)
	})

	t.Run("AlreadyVerified", func(t *testing.T) {
		mock.ExpectExec("UPDATE provider_bank_accounts").
			WithArgs(string(domain.BankAccountStatusVerified), int64(3), string(domain.BankAccountStatusPennyTestSent)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkVerified(ctx, 3)
		assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
