package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"consultly-backend/internal/domain"
)

func TestPayoutRepository_Approve(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewPayoutRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE payouts SET status").
			WithArgs(string(domain.PayoutStatusApproved), int64(200), int64(1), string(domain.PayoutStatusRequested)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO payout_logs").
			WithArgs(int64(1), int64(9), string(domain.PayoutActionApproved), "approved with fee 200 cents").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := repo.Approve(ctx, 1, 9, 200)
		assert.NoError(t, err)
	})

	t.Run("AlreadyApproved", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE payouts SET status").
			WithArgs(string(domain.PayoutStatusApproved), int64(200), int64(1), string(domain.PayoutStatusRequested)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Approve(ctx, 1, 9, 200)
		assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepository_CreateWithAllocation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewPayoutRepository(db)
	ctx := context.Background()

	t.Run("ConsumesEarningsOldestFirst", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM users").
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM payouts").
			WithArgs(int64(2), string(domain.PayoutStatusRequested), string(domain.PayoutStatusApproved), string(domain.PayoutStatusProcessing)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT e.id").
			WithArgs(string(domain.PayoutStatusRejected), int64(2), string(domain.EarningStatusApproved)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "available"}).
				AddRow(5, 6000).
				AddRow(6, 4000))
		mock.ExpectQuery("INSERT INTO payouts").
			WithArgs(int64(2), int64(3), int64(8000), string(domain.PayoutStatusRequested)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, time.Now(), time.Now()))
		// Earning 5 is fully consumed, earning 6 only partially.
		mock.ExpectExec("INSERT INTO payout_earnings").
			WithArgs(int64(1), int64(5), int64(6000)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("UPDATE provider_earnings").
			WithArgs(string(domain.EarningStatusPaidOut), int64(5), string(domain.EarningStatusApproved)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO payout_earnings").
			WithArgs(int64(1), int64(6), int64(2000)).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectExec("INSERT INTO payout_logs").
			WithArgs(int64(1), int64(2), string(domain.PayoutActionRequested), "requested 8000 cents over 2 earnings").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		payout, err := repo.CreateWithAllocation(ctx, 2, 3, 8000)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), payout.ID)
		assert.Equal(t, domain.PayoutStatusRequested, payout.Status)
	})

	t.Run("InsufficientBalanceCreatesNothing", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM users").
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM payouts").
			WithArgs(int64(2), string(domain.PayoutStatusRequested), string(domain.PayoutStatusApproved), string(domain.PayoutStatusProcessing)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT e.id").
			WithArgs(string(domain.PayoutStatusRejected), int64(2), string(domain.EarningStatusApproved)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "available"}).AddRow(5, 6000))
		mock.ExpectRollback()

		_, err := repo.CreateWithAllocation(ctx, 2, 3, 8000)
		assert.True(t, domain.IsPrecondition(err))
	})

	t.Run("SecondInFlightPayoutIsBlocked", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM users").
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM payouts").
			WithArgs(int64(2), string(domain.PayoutStatusRequested), string(domain.PayoutStatusApproved), string(domain.PayoutStatusProcessing)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		_, err := repo.CreateWithAllocation(ctx, 2, 3, 8000)
		assert.True(t, domain.IsPrecondition(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayoutRepository_MarkProcessing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewPayoutRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payouts SET status").
		WithArgs(string(domain.PayoutStatusProcessing), "tr_1", int64(1), string(domain.PayoutStatusApproved)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO payout_logs").
		WithArgs(int64(1), string(domain.PayoutActionTransferInitiated), "transfer tr_1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = repo.MarkProcessing(ctx, 1, "tr_1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
