package service

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeMinutes = errors.New("minutes must be non-negative")
	ErrEmailRegistered = errors.New("email already registered")
	ErrMissingFields   = errors.New("email and password required")
)

// QuotaExceededError rejects a session start and carries the applicable
// daily limit for the caller to render.
type QuotaExceededError struct {
	LimitMinutes int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("session limit reached: %d minutes allowed per day", e.LimitMinutes)
}
