package postgres

import (
	"database/sql"

	"consultly-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.BookingRepository
	repository.TransactionRepository
	repository.EarningsRepository
	repository.PayoutRepository
	repository.PayoutLogRepository
	repository.BankAccountRepository
	repository.DisputeRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		UserRepository:        NewUserRepository(db),
		BookingRepository:     NewBookingRepository(db),
		TransactionRepository: NewTransactionRepository(db),
		EarningsRepository:    NewEarningsRepository(db),
		PayoutRepository:      NewPayoutRepository(db),
		PayoutLogRepository:   NewPayoutLogRepository(db),
		BankAccountRepository: NewBankAccountRepository(db),
		DisputeRepository:     NewDisputeRepository(db),
	}
}
