package service

import (
	"context"
	"time"

	"vidlink/api/internal/models"
)

// SessionStore is the session slice of the record store. End must only
// succeed while the session is still open (repository.ErrSessionEnded
// otherwise), so a session can be ended at most once.
type SessionStore interface {
	Create(ctx context.Context, session models.Session) (models.Session, error)
	GetByID(ctx context.Context, id string) (models.Session, error)
	End(ctx context.Context, id string, endedAt time.Time, durationMinutes int) (models.Session, error)
}

// UsageStore is the daily-usage slice of the record store. Both
// operations are atomic insert-or-get/increment upserts; the store keeps
// at most one row per (userID, day).
type UsageStore interface {
	GetOrCreate(ctx context.Context, userID string, day time.Time) (models.DailyUsage, error)
	AddMinutes(ctx context.Context, userID string, day time.Time, minutes int) (models.DailyUsage, error)
}

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}
