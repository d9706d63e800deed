package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/dmitrymomot/mwm/pkg/logger"
)

// Enqueuer inserts jobs without processing them.
type Enqueuer struct {
	pool   *pgxpool.Pool
	client *river.Client[pgx.Tx]
	logger *slog.Logger
}

// EnqueuerOption configures an Enqueuer.
type EnqueuerOption func(*Enqueuer)

// WithEnqueuerLogger sets the enqueuer's logger.
func WithEnqueuerLogger(l *slog.Logger) EnqueuerOption {
	return func(e *Enqueuer) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEnqueuer creates an insert-only River client.
func NewEnqueuer(pool *pgxpool.Pool, opts ...EnqueuerOption) (*Enqueuer, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}
	e := &Enqueuer{pool: pool, logger: logger.NewNope()}
	for _, opt := range opts {
		opt(e)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{Logger: e.logger})
	if err != nil {
		return nil, fmt.Errorf("job: create enqueuer client: %w", err)
	}
	e.client = client
	return e, nil
}

// Enqueue inserts a job for the named task. The name is resolved by the
// worker process.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	args, ins, err := buildArgs(name, payload, opts...)
	if err != nil {
		return err
	}
	if _, err := e.client.Insert(ctx, args, ins); err != nil {
		return fmt.Errorf("job: enqueue %s: %w", name, err)
	}
	e.logger.DebugContext(ctx, "job enqueued", slog.String("task", name))
	return nil
}

// EnqueueTx inserts the job inside tx; it is visible only after commit.
func (e *Enqueuer) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	args, ins, err := buildArgs(name, payload, opts...)
	if err != nil {
		return err
	}
	if _, err := e.client.InsertTx(ctx, tx, args, ins); err != nil {
		return fmt.Errorf("job: enqueue %s in tx: %w", name, err)
	}
	return nil
}
