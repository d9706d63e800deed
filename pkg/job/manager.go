package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/mwm/pkg/logger"
)

const defaultMaxWorkers = 50

// Manager enqueues and processes jobs in this process.
type Manager struct {
	*Enqueuer
	registry *registry
	logger   *slog.Logger
	mu       sync.Mutex
	started  bool
}

// NewManager builds the River client with every registered task. Jobs may
// be enqueued before Start.
func NewManager(pool *pgxpool.Pool, opts ...Option) (*Manager, error) {
	if pool == nil {
		return nil, ErrPoolRequired
	}

	cfg := newConfig()
	cfg.logger = logger.NewNope()
	cfg.maxWorkers = defaultMaxWorkers
	for _, opt := range opts {
		opt(cfg)
	}

	queues := map[string]river.QueueConfig{
		river.QueueDefault: {MaxWorkers: cfg.maxWorkers},
	}
	for name, n := range cfg.queues {
		queues[name] = river.QueueConfig{MaxWorkers: n}
	}

	periodic := make([]*river.PeriodicJob, 0, len(cfg.schedules))
	for _, s := range cfg.schedules {
		sched, err := parseSchedule(s.expr)
		if err != nil {
			return nil, fmt.Errorf("job: task %s: invalid schedule %q: %w", s.name, s.expr, err)
		}
		name := s.name
		periodic = append(periodic, river.NewPeriodicJob(sched,
			func() (river.JobArgs, *river.InsertOpts) {
				return &taskArgs{TaskName: name}, nil
			},
			&river.PeriodicJobOpts{},
		))
		cfg.registry.register(name, s.handler)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &taskWorker{registry: cfg.registry, logger: cfg.logger})

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues:       queues,
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       cfg.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("job: create client: %w", err)
	}

	return &Manager{
		Enqueuer: &Enqueuer{pool: pool, client: client, logger: cfg.logger},
		registry: cfg.registry,
		logger:   cfg.logger,
	}, nil
}

// Tasks returns the registered task names.
func (m *Manager) Tasks() []string {
	return m.registry.names()
}

// Start begins processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return ErrAlreadyStarted
	}
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("job: start client: %w", err)
	}
	m.started = true
	m.logger.Info("job manager started", slog.Any("tasks", m.registry.names()))
	return nil
}

// Stop waits for running jobs to finish or ctx to expire.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotStarted
	}
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("job: stop client: %w", err)
	}
	m.started = false
	m.logger.Info("job manager stopped")
	return nil
}

func (m *Manager) isStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Enqueue rejects names that are not registered here.
func (m *Manager) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.Enqueue(ctx, name, payload, opts...)
}

// EnqueueTx rejects names that are not registered here.
func (m *Manager) EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...EnqueueOption) error {
	if _, ok := m.registry.get(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return m.Enqueuer.EnqueueTx(ctx, tx, name, payload, opts...)
}

// StartFunc adapts Start to a startup hook.
func (m *Manager) StartFunc() func(context.Context) error {
	return m.Start
}

// Shutdown adapts Stop to a shutdown hook.
func (m *Manager) Shutdown() func(context.Context) error {
	return m.Stop
}

type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry *registry
	logger   *slog.Logger
}

func (w *taskWorker) Work(ctx context.Context, j *river.Job[taskArgs]) error {
	return runTask(ctx, w.registry, w.logger, j.Args, j.ID, j.Attempt)
}

func runTask(ctx context.Context, reg *registry, log *slog.Logger, args taskArgs, id int64, attempt int) error {
	e, ok := reg.get(args.TaskName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, args.TaskName)
	}

	attrs := []any{
		slog.String("task", args.TaskName),
		slog.Int64("job_id", id),
		slog.Int("attempt", attempt),
	}
	start := time.Now()
	if err := e.Execute(ctx, args.Payload); err != nil {
		log.ErrorContext(ctx, "task failed", append(attrs, slog.Any("error", err))...)
		return err
	}
	log.DebugContext(ctx, "task completed", append(attrs, slog.Duration("took", time.Since(start)))...)
	return nil
}

type cronSchedule struct {
	cron.Schedule
}

// parseSchedule accepts five-field cron expressions and descriptors.
func parseSchedule(expr string) (river.PeriodicSchedule, error) {
	p := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	s, err := p.Parse(expr)
	if err != nil {
		return nil, err
	}
	return cronSchedule{s}, nil
}
