package service

import (
	"context"
	"fmt"

	"vidlink/api/internal/clock"
	"vidlink/api/internal/ids"
	"vidlink/api/internal/models"
	"vidlink/api/internal/repository"
)

// SessionLifecycle creates and terminates session records. It performs
// no quota checks; callers gate Start through QuotaPolicy.
type SessionLifecycle struct {
	sessions SessionStore
	clock    clock.Clock
}

func NewSessionLifecycle(sessions SessionStore, clk clock.Clock) *SessionLifecycle {
	return &SessionLifecycle{
		sessions: sessions,
		clock:    clk,
	}
}

// Start opens a session for the given user, or a guest session when
// user is nil.
func (l *SessionLifecycle) Start(ctx context.Context, user *models.User) (models.Session, error) {
	session := models.Session{
		ID:           ids.New(),
		SessionStart: l.clock.Now().UTC(),
	}
	if user != nil {
		userID := user.ID
		session.UserID = &userID
	}

	created, err := l.sessions.Create(ctx, session)
	if err != nil {
		return models.Session{}, fmt.Errorf("create session: %w", err)
	}
	return created, nil
}

// End closes the session and computes its duration in whole minutes,
// truncating the remainder. Ending an already-ended session fails with
// repository.ErrSessionEnded and leaves the stored duration unchanged.
func (l *SessionLifecycle) End(ctx context.Context, session models.Session) (models.Session, error) {
	if session.Ended() {
		return models.Session{}, repository.ErrSessionEnded
	}

	endedAt := l.clock.Now().UTC()
	durationMinutes := int(endedAt.Sub(session.SessionStart).Seconds()) / 60

	ended, err := l.sessions.End(ctx, session.ID, endedAt, durationMinutes)
	if err != nil {
		return models.Session{}, err
	}
	return ended, nil
}
