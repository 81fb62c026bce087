package service

import (
	"context"
	"sync"
	"time"

	"vidlink/api/internal/ids"
	"vidlink/api/internal/models"
	"vidlink/api/internal/repository"
)

// In-memory store fakes. They mirror the repository contracts: End is a
// compare-and-swap on the open session, and the usage operations are
// atomic insert-or-get / increment under the store lock.

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]models.Session)}
}

func (m *memSessionStore) Create(_ context.Context, session models.Session) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
	return session, nil
}

func (m *memSessionStore) GetByID(_ context.Context, id string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return session, nil
}

func (m *memSessionStore) End(_ context.Context, id string, endedAt time.Time, durationMinutes int) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	if session.SessionEnd != nil {
		return models.Session{}, repository.ErrSessionEnded
	}
	session.SessionEnd = &endedAt
	session.DurationMinutes = &durationMinutes
	m.sessions[id] = session
	return session, nil
}

type usageKey struct {
	userID string
	day    string
}

type memUsageStore struct {
	mu   sync.Mutex
	rows map[usageKey]models.DailyUsage
}

func newMemUsageStore() *memUsageStore {
	return &memUsageStore{rows: make(map[usageKey]models.DailyUsage)}
}

func (m *memUsageStore) key(userID string, day time.Time) usageKey {
	return usageKey{userID: userID, day: day.Format("2006-01-02")}
}

func (m *memUsageStore) GetOrCreate(_ context.Context, userID string, day time.Time) (models.DailyUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := m.key(userID, day)
	if row, ok := m.rows[key]; ok {
		return row, nil
	}
	row := models.DailyUsage{
		ID:        ids.New(),
		UserID:    userID,
		UsageDate: day,
	}
	m.rows[key] = row
	return row, nil
}

func (m *memUsageStore) AddMinutes(_ context.Context, userID string, day time.Time, minutes int) (models.DailyUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := m.key(userID, day)
	row, ok := m.rows[key]
	if !ok {
		row = models.DailyUsage{
			ID:        ids.New(),
			UserID:    userID,
			UsageDate: day,
		}
	}
	row.TotalTimeUsedMinutes += minutes
	m.rows[key] = row
	return row, nil
}

func (m *memUsageStore) rowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]models.User)}
}

func (m *memUserStore) Create(_ context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *memUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

// fakeClock is a settable clock for deterministic durations.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
