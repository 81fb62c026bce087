package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"vidlink/api/internal/config"
	"vidlink/api/internal/models"
	"vidlink/api/internal/repository"
)

type SessionServiceTestSuite struct {
	suite.Suite
	ctx context.Context

	clock        *fakeClock
	sessionStore *memSessionStore
	usageStore   *memUsageStore

	aggregator *UsageAggregator
	quota      *QuotaPolicy
	lifecycle  *SessionLifecycle
	service    *SessionService

	testUser models.User
}

func (s *SessionServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = newFakeClock(time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC))
	s.sessionStore = newMemSessionStore()
	s.usageStore = newMemUsageStore()

	quotaCfg := config.QuotaConfig{
		GuestLimitMinutes:         10,
		AuthenticatedLimitMinutes: 30,
	}

	s.aggregator = NewUsageAggregator(s.usageStore, s.clock)
	s.quota = NewQuotaPolicy(s.aggregator, quotaCfg)
	s.lifecycle = NewSessionLifecycle(s.sessionStore, s.clock)
	s.service = NewSessionService(s.quota, s.lifecycle, s.aggregator, s.sessionStore, zerolog.Nop())

	s.testUser = models.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
	}
}

func TestSessionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SessionServiceTestSuite))
}

func (s *SessionServiceTestSuite) TestGuestAlwaysAllowed() {
	allowed, err := s.quota.IsAllowed(s.ctx, nil)
	s.Require().NoError(err)
	s.True(allowed)

	// Other guests' sessions leave no cross-session state behind.
	for i := 0; i < 5; i++ {
		session, err := s.service.StartSession(s.ctx, nil)
		s.Require().NoError(err)
		s.clock.Advance(15 * time.Minute)
		_, err = s.service.EndSession(s.ctx, session.ID)
		s.Require().NoError(err)
	}

	allowed, err = s.quota.IsAllowed(s.ctx, nil)
	s.Require().NoError(err)
	s.True(allowed)
	s.Equal(0, s.usageStore.rowCount())
}

func (s *SessionServiceTestSuite) TestAllowedJustUnderLimit() {
	_, err := s.aggregator.AddUsage(s.ctx, s.testUser.ID, 29)
	s.Require().NoError(err)

	allowed, err := s.quota.IsAllowed(s.ctx, &s.testUser.ID)
	s.Require().NoError(err)
	s.True(allowed)
}

func (s *SessionServiceTestSuite) TestDeniedAtLimit() {
	_, err := s.aggregator.AddUsage(s.ctx, s.testUser.ID, 30)
	s.Require().NoError(err)

	allowed, err := s.quota.IsAllowed(s.ctx, &s.testUser.ID)
	s.Require().NoError(err)
	s.False(allowed)
}

func (s *SessionServiceTestSuite) TestDeniedOverLimit() {
	_, err := s.aggregator.AddUsage(s.ctx, s.testUser.ID, 45)
	s.Require().NoError(err)

	allowed, err := s.quota.IsAllowed(s.ctx, &s.testUser.ID)
	s.Require().NoError(err)
	s.False(allowed)
}

func (s *SessionServiceTestSuite) TestQuotaDoesNotReserveUpcomingUsage() {
	// 29 minutes used: the next session may start and run past the
	// limit; only the start after that is rejected.
	_, err := s.aggregator.AddUsage(s.ctx, s.testUser.ID, 29)
	s.Require().NoError(err)

	session, err := s.service.StartSession(s.ctx, &s.testUser)
	s.Require().NoError(err)

	s.clock.Advance(20 * time.Minute)
	ended, err := s.service.EndSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(20, *ended.DurationMinutes)

	usage, err := s.aggregator.GetOrCreateToday(s.ctx, s.testUser.ID)
	s.Require().NoError(err)
	s.Equal(49, usage.TotalTimeUsedMinutes)

	_, err = s.service.StartSession(s.ctx, &s.testUser)
	var quotaErr *QuotaExceededError
	s.Require().ErrorAs(err, &quotaErr)
	s.Equal(30, quotaErr.LimitMinutes)
}

func (s *SessionServiceTestSuite) TestDurationTruncates() {
	session, err := s.service.StartSession(s.ctx, nil)
	s.Require().NoError(err)

	s.clock.Advance(125 * time.Second)
	ended, err := s.service.EndSession(s.ctx, session.ID)
	s.Require().NoError(err)

	s.Require().NotNil(ended.DurationMinutes)
	s.Equal(2, *ended.DurationMinutes)
	s.Equal(s.clock.Now(), *ended.SessionEnd)
}

func (s *SessionServiceTestSuite) TestEndTwiceFails() {
	session, err := s.service.StartSession(s.ctx, &s.testUser)
	s.Require().NoError(err)

	s.clock.Advance(5 * time.Minute)
	first, err := s.service.EndSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(5, *first.DurationMinutes)

	s.clock.Advance(10 * time.Minute)
	_, err = s.service.EndSession(s.ctx, session.ID)
	s.Require().ErrorIs(err, repository.ErrSessionEnded)

	// The stored duration is untouched by the failed second end, and
	// the usage total was aggregated exactly once.
	stored, err := s.sessionStore.GetByID(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(5, *stored.DurationMinutes)

	usage, err := s.aggregator.GetOrCreateToday(s.ctx, s.testUser.ID)
	s.Require().NoError(err)
	s.Equal(5, usage.TotalTimeUsedMinutes)
}

func (s *SessionServiceTestSuite) TestEndUnknownSession() {
	_, err := s.service.EndSession(s.ctx, "no-such-session")
	s.Require().ErrorIs(err, repository.ErrSessionNotFound)
}

func (s *SessionServiceTestSuite) TestGuestEndToEnd() {
	// Guest starts at 10:00:00 and ends at 10:09:59.
	session, err := s.service.StartSession(s.ctx, nil)
	s.Require().NoError(err)
	s.Nil(session.UserID)

	s.clock.Advance(9*time.Minute + 59*time.Second)
	ended, err := s.service.EndSession(s.ctx, session.ID)
	s.Require().NoError(err)

	s.Equal(9, *ended.DurationMinutes)
	s.Equal(0, s.usageStore.rowCount())
}

func (s *SessionServiceTestSuite) TestAuthenticatedEndToEnd() {
	// A user with no prior usage runs a 31-minute session; the overage
	// is recorded and the next start is rejected.
	session, err := s.service.StartSession(s.ctx, &s.testUser)
	s.Require().NoError(err)
	s.Require().NotNil(session.UserID)
	s.Equal(s.testUser.ID, *session.UserID)

	s.clock.Advance(31 * time.Minute)
	ended, err := s.service.EndSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(31, *ended.DurationMinutes)

	usage, err := s.aggregator.GetOrCreateToday(s.ctx, s.testUser.ID)
	s.Require().NoError(err)
	s.Equal(31, usage.TotalTimeUsedMinutes)

	_, err = s.service.StartSession(s.ctx, &s.testUser)
	var quotaErr *QuotaExceededError
	s.Require().ErrorAs(err, &quotaErr)
	s.Equal(30, quotaErr.LimitMinutes)
}

func (s *SessionServiceTestSuite) TestAddUsageAccumulatesSingleRow() {
	first, err := s.aggregator.AddUsage(s.ctx, s.testUser.ID, 5)
	s.Require().NoError(err)
	s.Equal(5, first.TotalTimeUsedMinutes)

	second, err := s.aggregator.AddUsage(s.ctx, s.testUser.ID, 5)
	s.Require().NoError(err)
	s.Equal(10, second.TotalTimeUsedMinutes)

	s.Equal(1, s.usageStore.rowCount())
	s.Equal(first.ID, second.ID)
}

func (s *SessionServiceTestSuite) TestAddUsageRejectsNegativeMinutes() {
	_, err := s.aggregator.AddUsage(s.ctx, s.testUser.ID, 5)
	s.Require().NoError(err)

	_, err = s.aggregator.AddUsage(s.ctx, s.testUser.ID, -1)
	s.Require().ErrorIs(err, ErrNegativeMinutes)

	usage, err := s.aggregator.GetOrCreateToday(s.ctx, s.testUser.ID)
	s.Require().NoError(err)
	s.Equal(5, usage.TotalTimeUsedMinutes)
}

func (s *SessionServiceTestSuite) TestGetOrCreateTodayConcurrent() {
	const goroutines = 32

	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	rowIDs := make(chan string, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			usage, err := s.aggregator.GetOrCreateToday(s.ctx, s.testUser.ID)
			if err != nil {
				errs <- err
				return
			}
			rowIDs <- usage.ID
		}()
	}
	wg.Wait()
	close(errs)
	close(rowIDs)

	for err := range errs {
		s.Require().NoError(err)
	}

	s.Equal(1, s.usageStore.rowCount())

	var firstID string
	for id := range rowIDs {
		if firstID == "" {
			firstID = id
			continue
		}
		s.Equal(firstID, id)
	}
}

func (s *SessionServiceTestSuite) TestUsageRollsOverAtMidnightUTC() {
	_, err := s.aggregator.AddUsage(s.ctx, s.testUser.ID, 30)
	s.Require().NoError(err)

	allowed, err := s.quota.IsAllowed(s.ctx, &s.testUser.ID)
	s.Require().NoError(err)
	s.False(allowed)

	s.clock.Advance(24 * time.Hour)

	allowed, err = s.quota.IsAllowed(s.ctx, &s.testUser.ID)
	s.Require().NoError(err)
	s.True(allowed)
	s.Equal(2, s.usageStore.rowCount())
}

func (s *SessionServiceTestSuite) TestStartPersistsOpenSession() {
	session, err := s.lifecycle.Start(s.ctx, &s.testUser)
	s.Require().NoError(err)

	s.NotEmpty(session.ID)
	s.Equal(s.clock.Now(), session.SessionStart)
	s.Nil(session.SessionEnd)
	s.Nil(session.DurationMinutes)

	stored, err := s.sessionStore.GetByID(s.ctx, session.ID)
	s.Require().NoError(err)
	s.False(stored.Ended())
}

func (s *SessionServiceTestSuite) TestConcurrentEndsAggregateOnce() {
	session, err := s.service.StartSession(s.ctx, &s.testUser)
	s.Require().NoError(err)
	s.clock.Advance(7 * time.Minute)

	const goroutines = 8
	var wg sync.WaitGroup
	results := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.EndSession(s.ctx, session.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			s.Require().True(errors.Is(err, repository.ErrSessionEnded))
		}
	}
	s.Equal(1, succeeded)

	usage, err := s.aggregator.GetOrCreateToday(s.ctx, s.testUser.ID)
	s.Require().NoError(err)
	s.Equal(7, usage.TotalTimeUsedMinutes)
}
