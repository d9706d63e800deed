package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/riverqueue/river"
)

type enqueueConfig struct {
	scheduledAt time.Time
	queue       string
	uniqueKey   string
	tags        []string
	maxAttempts int
	uniqueFor   time.Duration
	priority    int
}

// EnqueueOption configures a single enqueue call.
type EnqueueOption func(*enqueueConfig)

// InQueue sends the job to a named queue instead of the default one.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// ScheduledAt delays the job until t.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) {
		c.scheduledAt = t
	}
}

// ScheduledIn delays the job by d.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		c.scheduledAt = time.Now().Add(d)
	}
}

// MaxAttempts caps retries. River defaults to 25.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// UniqueFor skips the job when one with the same task and key was inserted
// within d.
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueFor = d
	}
}

// UniqueKey sets the deduplication key used with UniqueFor, for example a
// user id so each user gets at most one welcome email.
func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.uniqueKey = key
	}
}

// Priority orders jobs; 1 runs first, 4 last.
func Priority(p int) EnqueueOption {
	return func(c *enqueueConfig) {
		if p >= 1 && p <= 4 {
			c.priority = p
		}
	}
}

// Tags attaches labels to the job.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) {
		c.tags = append(c.tags, tags...)
	}
}

// taskArgs is the single River job kind every task is stored under.
type taskArgs struct {
	TaskName  string          `json:"task_name"`
	UniqueKey string          `json:"unique_key,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string { return "mwm:task" }

func buildArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	args := &taskArgs{TaskName: name}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("job: marshal %s payload: %w", name, err)
		}
		args.Payload = raw
	}

	cfg := &enqueueConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	ins := &river.InsertOpts{
		Queue:       cfg.queue,
		ScheduledAt: cfg.scheduledAt,
		MaxAttempts: cfg.maxAttempts,
		Priority:    cfg.priority,
		Tags:        cfg.tags,
	}
	if cfg.uniqueFor > 0 {
		ins.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: cfg.uniqueFor}
		args.UniqueKey = cfg.uniqueKey
	}
	return args, ins, nil
}
