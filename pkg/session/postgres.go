package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by PostgresStore.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists sessions in the "sessions" table.
// Tokens are stored as SHA-256 digests.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore creates a store on top of db.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const createSession = `
INSERT INTO sessions (id, token_hash, user_id, ip, user_agent, created_at, last_active_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (p *PostgresStore) Create(ctx context.Context, s *Session) error {
	if s.Token == "" {
		return ErrInvalidToken
	}
	_, err := p.db.Exec(ctx, createSession,
		s.ID, HashToken(s.Token), s.UserID, s.IP, s.UserAgent,
		s.CreatedAt, s.LastActiveAt, s.ExpiresAt,
	)
	return err
}

const getSession = `
SELECT id, user_id, ip, user_agent, created_at, last_active_at, expires_at
FROM sessions
WHERE token_hash = $1`

func (p *PostgresStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	s := &Session{Token: token}
	err := p.db.QueryRow(ctx, getSession, HashToken(token)).Scan(
		&s.ID, &s.UserID, &s.IP, &s.UserAgent,
		&s.CreatedAt, &s.LastActiveAt, &s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.IsExpired() {
		return nil, ErrExpired
	}
	return s, nil
}

func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (p *PostgresStore) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

func (p *PostgresStore) Touch(ctx context.Context, id string, lastActiveAt time.Time) error {
	tag, err := p.db.Exec(ctx, `UPDATE sessions SET last_active_at = $2 WHERE id = $1`, id, lastActiveAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
