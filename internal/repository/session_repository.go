package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vidlink/api/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionEnded    = errors.New("session already ended")
)

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, session models.Session) (models.Session, error) {
	const query = `
		INSERT INTO user_sessions (id, user_id, session_start, session_end, duration_minutes)
		VALUES ($1, $2, $3, NULL, NULL)
		RETURNING id, user_id, session_start, session_end, duration_minutes
	`

	row := r.pool.QueryRow(ctx, query, session.ID, session.UserID, session.SessionStart)
	return scanSession(row)
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (models.Session, error) {
	const query = `
		SELECT id, user_id, session_start, session_end, duration_minutes
		FROM user_sessions
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

// End closes the session only if it is still open, so two concurrent
// End calls cannot double-end a session or double-count its duration.
func (r *SessionRepository) End(ctx context.Context, id string, endedAt time.Time, durationMinutes int) (models.Session, error) {
	const query = `
		UPDATE user_sessions
		SET session_end = $2, duration_minutes = $3
		WHERE id = $1 AND session_end IS NULL
		RETURNING id, user_id, session_start, session_end, duration_minutes
	`

	row := r.pool.QueryRow(ctx, query, id, endedAt, durationMinutes)
	session, err := scanSession(row)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Session{}, err
	}

	// No row updated: the session is either missing or already closed.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return models.Session{}, getErr
	}
	return models.Session{}, ErrSessionEnded
}

func (r *SessionRepository) CountOpen(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM user_sessions WHERE session_end IS NULL`
	row := r.pool.QueryRow(ctx, query)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanSession(row pgx.Row) (models.Session, error) {
	var session models.Session
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.SessionStart,
		&session.SessionEnd,
		&session.DurationMinutes,
	); err != nil {
		return models.Session{}, err
	}
	return session, nil
}
