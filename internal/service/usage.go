package service

import (
	"context"
	"fmt"
	"time"

	"vidlink/api/internal/clock"
	"vidlink/api/internal/models"
)

// UsageAggregator maintains the per-user daily running total of session
// minutes. It is only used for authenticated users; guest sessions leave
// no usage records.
type UsageAggregator struct {
	usage UsageStore
	clock clock.Clock
}

func NewUsageAggregator(usage UsageStore, clk clock.Clock) *UsageAggregator {
	return &UsageAggregator{
		usage: usage,
		clock: clk,
	}
}

// GetOrCreateToday returns the user's usage row for the current UTC
// calendar day, creating a zero row when none exists. Concurrent calls
// for the same user converge on a single row; the store's upsert holds
// the one-row-per-day invariant.
func (a *UsageAggregator) GetOrCreateToday(ctx context.Context, userID string) (models.DailyUsage, error) {
	usage, err := a.usage.GetOrCreate(ctx, userID, a.today())
	if err != nil {
		return models.DailyUsage{}, fmt.Errorf("get or create daily usage: %w", err)
	}
	return usage, nil
}

// AddUsage rolls a completed session's minutes into today's total.
func (a *UsageAggregator) AddUsage(ctx context.Context, userID string, minutes int) (models.DailyUsage, error) {
	if minutes < 0 {
		return models.DailyUsage{}, ErrNegativeMinutes
	}

	usage, err := a.usage.AddMinutes(ctx, userID, a.today(), minutes)
	if err != nil {
		return models.DailyUsage{}, fmt.Errorf("add daily usage: %w", err)
	}
	return usage, nil
}

func (a *UsageAggregator) today() time.Time {
	now := a.clock.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
