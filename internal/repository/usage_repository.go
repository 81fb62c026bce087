package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vidlink/api/internal/ids"
	"vidlink/api/internal/models"
)

type UsageRepository struct {
	pool *pgxpool.Pool
}

func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{pool: pool}
}

// GetOrCreate returns the usage row for the given user and day, inserting
// a zero row when none exists. The conflict clause makes concurrent calls
// for a fresh user/day converge on a single row instead of racing a
// check-then-insert.
func (r *UsageRepository) GetOrCreate(ctx context.Context, userID string, day time.Time) (models.DailyUsage, error) {
	const query = `
		INSERT INTO daily_usage (id, user_id, usage_date, total_time_used, created_at, updated_at)
		VALUES ($1, $2, $3, 0, NOW(), NOW())
		ON CONFLICT (user_id, usage_date)
		DO UPDATE SET updated_at = daily_usage.updated_at
		RETURNING id, user_id, usage_date, total_time_used, created_at, updated_at
	`

	row := r.pool.QueryRow(ctx, query, ids.New(), userID, day)
	return scanDailyUsage(row)
}

// AddMinutes increments the day's total as a single upsert, so concurrent
// increments for the same user/day cannot lose updates.
func (r *UsageRepository) AddMinutes(ctx context.Context, userID string, day time.Time, minutes int) (models.DailyUsage, error) {
	const query = `
		INSERT INTO daily_usage (id, user_id, usage_date, total_time_used, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id, usage_date)
		DO UPDATE SET
			total_time_used = daily_usage.total_time_used + EXCLUDED.total_time_used,
			updated_at = NOW()
		RETURNING id, user_id, usage_date, total_time_used, created_at, updated_at
	`

	row := r.pool.QueryRow(ctx, query, ids.New(), userID, day, minutes)
	return scanDailyUsage(row)
}

func (r *UsageRepository) TotalsForDate(ctx context.Context, day time.Time) (users int, minutes int, err error) {
	const query = `
		SELECT COUNT(*), COALESCE(SUM(total_time_used), 0)
		FROM daily_usage
		WHERE usage_date = $1
	`
	row := r.pool.QueryRow(ctx, query, day)
	if err := row.Scan(&users, &minutes); err != nil {
		return 0, 0, err
	}
	return users, minutes, nil
}

func scanDailyUsage(row pgx.Row) (models.DailyUsage, error) {
	var usage models.DailyUsage
	if err := row.Scan(
		&usage.ID,
		&usage.UserID,
		&usage.UsageDate,
		&usage.TotalTimeUsedMinutes,
		&usage.CreatedAt,
		&usage.UpdatedAt,
	); err != nil {
		return models.DailyUsage{}, err
	}
	return usage, nil
}
