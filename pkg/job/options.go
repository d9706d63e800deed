package job

import (
	"context"
	"log/slog"
)

type schedule struct {
	handler periodicTask
	name    string
	expr    string
}

type config struct {
	registry   *registry
	queues     map[string]int
	logger     *slog.Logger
	schedules  []schedule
	maxWorkers int
}

func newConfig() *config {
	return &config{
		registry: newRegistry(),
		queues:   make(map[string]int),
	}
}

// Option configures a Manager.
type Option func(*config)

// WithTask registers a task handling payloads of type P. P has to be
// spelled out since Go cannot infer it from T's methods:
//
//	job.WithTask[tasks.WelcomePayload](tasks.NewSendWelcome(mail))
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		c.registry.register(task.Name(), typedTask[P, T]{task: task})
	}
}

// WithScheduledTask registers a periodic task. Schedule returns a five-field
// cron expression or a descriptor such as "@hourly" or "@every 15m".
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, schedule{
			name:    task.Name(),
			expr:    task.Schedule(),
			handler: task.Handle,
		})
	}
}

// WithQueue adds a named queue with its own worker count.
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if name != "" && workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger used by River and the task worker.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the worker count of the default queue.
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}
