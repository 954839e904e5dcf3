package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsageEntry is one recorded model invocation.
type UsageEntry struct {
	UserID   uuid.UUID
	Endpoint string
	Model    string
	Tokens   int
}

// Recorder persists usage entries. Recording failures are returned rather
// than swallowed; handlers log them and continue, so a tracking outage never
// fails a user request.
type Recorder interface {
	Record(ctx context.Context, entry UsageEntry) error
}

// PGRecorder writes usage rows into Postgres.
type PGRecorder struct {
	pool *pgxpool.Pool
}

// NewPGRecorder connects a pgx pool to databaseURL.
func NewPGRecorder(ctx context.Context, databaseURL string) (*PGRecorder, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create usage pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping usage database: %w", err)
	}
	return &PGRecorder{pool: pool}, nil
}

// Record inserts one usage row.
func (r *PGRecorder) Record(ctx context.Context, entry UsageEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ai_usage (id, user_id, endpoint, model, tokens, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), entry.UserID, entry.Endpoint, entry.Model, entry.Tokens, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (r *PGRecorder) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// NopRecorder discards usage entries. Used when no DATABASE_URL is
// configured.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, UsageEntry) error { return nil }
