package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/repository"
)

func TestBookingRepository_ConfirmPayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	params := repository.ConfirmPaymentParams{
		BookingID:          10,
		TransactionID:      20,
		CaptureID:          "cap_1",
		JoinURL:            "https://consultly.example/meetings/10",
		CompletionCodeHash: "$2a$10$hash",
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET status").
			WithArgs(string(domain.BookingStatusConfirmed), params.BookingID, string(domain.BookingStatusPaymentPending)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE transactions SET status").
			WithArgs(string(domain.TransactionStatusCompleted), params.CaptureID, "SUCCESS", params.TransactionID, string(domain.TransactionStatusPending)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO meetings").
			WithArgs(params.BookingID, params.JoinURL, params.CompletionCodeHash).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("UPDATE users SET sessions_completed").
			WithArgs(params.BookingID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.ConfirmPayment(ctx, params)
		assert.NoError(t, err)
	})

	t.Run("SecondConfirmBacksOut", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE bookings SET status").
			WithArgs(string(domain.BookingStatusConfirmed), params.BookingID, string(domain.BookingStatusPaymentPending)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.ConfirmPayment(ctx, params)
		assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_PurgeWithTransactions(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM transactions").
			WithArgs(int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("DELETE FROM bookings").
			WithArgs(int64(10), string(domain.BookingStatusPaymentPending)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.PurgeWithTransactions(ctx, 10)
		assert.NoError(t, err)
	})

	t.Run("PaidBookingIsNotPurgeable", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM transactions").
			WithArgs(int64(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM bookings").
			WithArgs(int64(10), string(domain.BookingStatusPaymentPending)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.PurgeWithTransactions(ctx, 10)
		assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ListUnremindedStartingBefore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewBookingRepository(db)
	ctx := context.Background()
	cutoff := time.Now().Add(24 * time.Hour)

	rows := sqlmock.NewRows([]string{"id", "seeker_id", "provider_id", "start_at", "end_at", "amount_cents", "status", "created_at", "updated_at"}).
		AddRow(10, 1, 2, time.Now().Add(time.Hour), time.Now().Add(2*time.Hour), 10000, "CONFIRMED", time.Now(), time.Now())

	mock.ExpectQuery("SELECT (.+) FROM bookings").
		WithArgs(string(domain.BookingStatusConfirmed), cutoff).
		WillReturnRows(rows)

	bookings, err := repo.ListUnremindedStartingBefore(ctx, cutoff)
	assert.NoError(t, err)
	assert.Len(t, bookings, 1)
	assert.Equal(t, int64(10), bookings[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
