package job

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
)

var (
	// ErrNotConfigured is returned by Context.Enqueue when the app has no
	// job queue.
	ErrNotConfigured  = errors.New("job: not configured")
	ErrUnknownTask    = errors.New("job: unknown task")
	ErrInvalidPayload = errors.New("job: invalid payload")
	ErrAlreadyStarted = errors.New("job: already started")
	ErrNotStarted     = errors.New("job: not started")
	ErrPoolRequired   = errors.New("job: pool is required")
)

// executor runs one registered task from its raw payload.
type executor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

type registry struct {
	executors map[string]executor
	mu        sync.RWMutex
}

func newRegistry() *registry {
	return &registry{executors: make(map[string]executor)}
}

func (r *registry) register(name string, e executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[name] = e
}

func (r *registry) get(name string) (executor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.executors[name]
	return e, ok
}

// names returns the registered task names in sorted order.
func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.executors))
}

// typedTask decodes the JSON payload into P before calling the task.
type typedTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}] struct {
	task T
}

func (w typedTask[P, T]) Execute(ctx context.Context, raw json.RawMessage) error {
	var payload P
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errors.Join(ErrInvalidPayload, err)
		}
	}
	return w.task.Handle(ctx, payload)
}

// periodicTask ignores the payload; scheduled jobs carry none.
type periodicTask func(ctx context.Context) error

func (f periodicTask) Execute(ctx context.Context, _ json.RawMessage) error {
	return f(ctx)
}
