package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"vidlink/api/internal/models"
)

// SessionService orchestrates the quota check, session lifecycle and
// usage accounting behind the session HTTP endpoints.
type SessionService struct {
	quota     *QuotaPolicy
	lifecycle *SessionLifecycle
	usage     *UsageAggregator
	sessions  SessionStore
	log       zerolog.Logger
}

func NewSessionService(
	quota *QuotaPolicy,
	lifecycle *SessionLifecycle,
	usage *UsageAggregator,
	sessions SessionStore,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		quota:     quota,
		lifecycle: lifecycle,
		usage:     usage,
		sessions:  sessions,
		log:       log,
	}
}

// StartSession starts a session for the given user, or a guest session
// when user is nil. A caller over today's quota gets a
// *QuotaExceededError carrying the applicable limit.
func (s *SessionService) StartSession(ctx context.Context, user *models.User) (models.Session, error) {
	var userID *string
	if user != nil {
		userID = &user.ID
	}

	allowed, err := s.quota.IsAllowed(ctx, userID)
	if err != nil {
		return models.Session{}, fmt.Errorf("check quota: %w", err)
	}
	if !allowed {
		return models.Session{}, &QuotaExceededError{LimitMinutes: s.quota.LimitFor(userID)}
	}

	session, err := s.lifecycle.Start(ctx, user)
	if err != nil {
		return models.Session{}, err
	}

	s.log.Info().
		Str("session_id", session.ID).
		Bool("guest", session.UserID == nil).
		Msg("session started")

	return session, nil
}

// EndSession ends the session and, for authenticated users, rolls its
// duration into today's usage total. Guest sessions end without any
// aggregation.
func (s *SessionService) EndSession(ctx context.Context, sessionID string) (models.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return models.Session{}, err
	}

	ended, err := s.lifecycle.End(ctx, session)
	if err != nil {
		return models.Session{}, err
	}

	if ended.UserID != nil {
		usage, err := s.usage.AddUsage(ctx, *ended.UserID, *ended.DurationMinutes)
		if err != nil {
			return models.Session{}, fmt.Errorf("aggregate usage: %w", err)
		}
		s.log.Info().
			Str("session_id", ended.ID).
			Str("user_id", *ended.UserID).
			Int("duration_minutes", *ended.DurationMinutes).
			Int("total_today", usage.TotalTimeUsedMinutes).
			Msg("session ended")
		return ended, nil
	}

	s.log.Info().
		Str("session_id", ended.ID).
		Int("duration_minutes", *ended.DurationMinutes).
		Msg("guest session ended")

	return ended, nil
}
