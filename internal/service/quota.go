package service

import (
	"context"

	"vidlink/api/internal/config"
)

// QuotaPolicy decides whether a caller may start a new session, based on
// usage already accumulated today. It does not reserve the time the new
// session will consume, so a user just under the limit can still run
// over it; the overage lands in the daily total and blocks the next
// start.
type QuotaPolicy struct {
	usage *UsageAggregator
	cfg   config.QuotaConfig
}

func NewQuotaPolicy(usage *UsageAggregator, cfg config.QuotaConfig) *QuotaPolicy {
	return &QuotaPolicy{
		usage: usage,
		cfg:   cfg,
	}
}

// IsAllowed reports whether a session may start. Guests (nil userID) are
// always allowed; nothing tracks a guest across sessions. Authenticated
// users are allowed while today's total is strictly under the daily
// limit.
func (p *QuotaPolicy) IsAllowed(ctx context.Context, userID *string) (bool, error) {
	if userID == nil {
		return true, nil
	}

	usage, err := p.usage.GetOrCreateToday(ctx, *userID)
	if err != nil {
		return false, err
	}

	return usage.TotalTimeUsedMinutes < p.cfg.AuthenticatedLimitMinutes, nil
}

// LimitFor returns the daily limit that applies to the caller, for
// rendering in quota rejections.
func (p *QuotaPolicy) LimitFor(userID *string) int {
	if userID == nil {
		return p.cfg.GuestLimitMinutes
	}
	return p.cfg.AuthenticatedLimitMinutes
}
