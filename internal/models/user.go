package models

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is a single video session. UserID is nil for guest sessions.
// SessionEnd and DurationMinutes stay nil until the session is ended;
// they are set together, exactly once.
type Session struct {
	ID              string
	UserID          *string
	SessionStart    time.Time
	SessionEnd      *time.Time
	DurationMinutes *int
}

func (s Session) Ended() bool {
	return s.SessionEnd != nil
}

// DailyUsage is the per-user running total of session minutes for one
// UTC calendar day. There is exactly one row per (UserID, UsageDate).
type DailyUsage struct {
	ID                   string
	UserID               string
	UsageDate            time.Time
	TotalTimeUsedMinutes int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
