package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UsageRepository struct {
	db *pgxpool.Pool
}

func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: db}
}

// Record logs an operation batch (scan, delete, unsubscribe) for usage tracking.
func (r *UsageRepository) Record(ctx context.Context, userID int, action string, count int) error {
	query := `
        INSERT INTO usage_logs (user_id, action, count, created_at)
        VALUES ($1, $2, $3, NOW())
    `
	_, err := r.db.Exec(ctx, query, userID, action, count)
	return err
}

// MonthlyCount returns how many operations of the given action the user has
// consumed in the current calendar month.
func (r *UsageRepository) MonthlyCount(ctx context.Context, userID int, action string) (int, error) {
	query := `
        SELECT COALESCE(SUM(count), 0)
        FROM usage_logs
        WHERE user_id = $1
          AND action = $2
          AND created_at >= date_trunc('month', NOW())
    `
	var total int
	err := r.db.QueryRow(ctx, query, userID, action).Scan(&total)
	return total, err
}
