package postgres

import (
	"context"
	"database/sql"

	"consultly-backend/internal/domain"
	"consultly-backend/internal/repository"
)

type payoutLogRepository struct {
	db *sql.DB
}

func NewPayoutLogRepository(db *sql.DB) repository.PayoutLogRepository {
	return &payoutLogRepository{db: db}
}

func (r *payoutLogRepository) Create(ctx context.Context, entry *domain.PayoutLog) error {
	query := `INSERT INTO payout_logs (payout_id, actor_user_id, action, details, created_at)
	          VALUES ($1, $2, $3, $4, NOW()) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		entry.PayoutID, entry.ActorUserID, entry.Action, entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *payoutLogRepository) ListByPayout(ctx context.Context, payoutID int64) ([]domain.PayoutLog, error) {
	query := `SELECT id, payout_id, actor_user_id, action, COALESCE(details, ''), created_at
	          FROM payout_logs WHERE payout_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, payoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PayoutLog
	for rows.Next() {
		var e domain.PayoutLog
		if err := rows.Scan(&e.ID, &e.PayoutID, &e.ActorUserID, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
