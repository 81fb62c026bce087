package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"vidlink/api/internal/clock"
	"vidlink/api/internal/repository"
)

// Scheduler runs the nightly usage report. It is read-only over the
// record store; nothing here ends sessions or touches usage rows.
type Scheduler struct {
	cron     *cron.Cron
	usage    *repository.UsageRepository
	sessions *repository.SessionRepository
	clock    clock.Clock
	log      zerolog.Logger
}

func NewScheduler(usage *repository.UsageRepository, sessions *repository.SessionRepository, clk clock.Clock, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		usage:    usage,
		sessions: sessions,
		clock:    clk,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	// Five seconds past midnight UTC, after the day has rolled over.
	if _, err := s.cron.AddFunc("5 0 0 * * *", s.reportDailyUsage); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() context.CancelFunc {
	_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		s.cron.Stop()
		cancel()
	}()
	return cancel
}

func (s *Scheduler) reportDailyUsage() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := s.clock.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)

	users, minutes, err := s.usage.TotalsForDate(ctx, yesterday)
	if err != nil {
		s.log.Error().Err(err).Msg("usage report query failed")
		return
	}

	open, err := s.sessions.CountOpen(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("open session count failed")
		return
	}

	s.log.Info().
		Str("date", yesterday.Format("2006-01-02")).
		Int("users", users).
		Int("total_minutes", minutes).
		Int("open_sessions", open).
		Msg("daily usage report")
}
