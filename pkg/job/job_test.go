package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/pkg/logger"
)

type welcomePayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type welcomeTask struct {
	got   welcomePayload
	err   error
	calls int
}

func (t *welcomeTask) Name() string { return "send_welcome_email" }

func (t *welcomeTask) Handle(_ context.Context, p welcomePayload) error {
	t.calls++
	t.got = p
	return t.err
}

type purgeTask struct {
	runs int
}

func (t *purgeTask) Name() string     { return "purge_expired_sessions" }
func (t *purgeTask) Schedule() string { return "@hourly" }
func (t *purgeTask) Handle(context.Context) error {
	t.runs++
	return nil
}

func TestOptions(t *testing.T) {
	t.Parallel()

	welcome := &welcomeTask{}
	purge := &purgeTask{}
	cfg := newConfig()
	for _, opt := range []Option{
		WithTask[welcomePayload](welcome),
		WithScheduledTask(purge),
		WithQueue("email", 5),
		WithQueue("ignored", 0),
		WithMaxWorkers(8),
		WithMaxWorkers(-1),
		WithLogger(nil),
	} {
		opt(cfg)
	}

	assert.Equal(t, []string{"send_welcome_email"}, cfg.registry.names())
	require.Len(t, cfg.schedules, 1)
	assert.Equal(t, "@hourly", cfg.schedules[0].expr)
	assert.Equal(t, map[string]int{"email": 5}, cfg.queues)
	assert.Equal(t, 8, cfg.maxWorkers)
	assert.Nil(t, cfg.logger)
}

func TestTypedTask(t *testing.T) {
	t.Parallel()

	t.Run("decodes payload", func(t *testing.T) {
		t.Parallel()
		task := &welcomeTask{}
		e := typedTask[welcomePayload, *welcomeTask]{task: task}
		require.NoError(t, e.Execute(context.Background(), json.RawMessage(`{"user_id":"u1","email":"a@example.com"}`)))
		assert.Equal(t, welcomePayload{UserID: "u1", Email: "a@example.com"}, task.got)
	})

	t.Run("empty payload is the zero value", func(t *testing.T) {
		t.Parallel()
		task := &welcomeTask{}
		e := typedTask[welcomePayload, *welcomeTask]{task: task}
		require.NoError(t, e.Execute(context.Background(), nil))
		require.NoError(t, e.Execute(context.Background(), json.RawMessage("null")))
		assert.Equal(t, 2, task.calls)
	})

	t.Run("invalid payload", func(t *testing.T) {
		t.Parallel()
		task := &welcomeTask{}
		e := typedTask[welcomePayload, *welcomeTask]{task: task}
		require.ErrorIs(t, e.Execute(context.Background(), json.RawMessage(`{"user_id":1}`)), ErrInvalidPayload)
		assert.Zero(t, task.calls)
	})
}

func TestRunTask(t *testing.T) {
	t.Parallel()

	reg := newRegistry()
	welcome := &welcomeTask{}
	purge := &purgeTask{}
	reg.register(welcome.Name(), typedTask[welcomePayload, *welcomeTask]{task: welcome})
	reg.register(purge.Name(), periodicTask(purge.Handle))
	log := logger.NewNope()

	require.NoError(t, runTask(context.Background(), reg, log, taskArgs{
		TaskName: "send_welcome_email",
		Payload:  json.RawMessage(`{"user_id":"u1"}`),
	}, 1, 1))
	assert.Equal(t, "u1", welcome.got.UserID)

	require.NoError(t, runTask(context.Background(), reg, log, taskArgs{TaskName: "purge_expired_sessions"}, 2, 1))
	assert.Equal(t, 1, purge.runs)

	err := runTask(context.Background(), reg, log, taskArgs{TaskName: "nope"}, 3, 1)
	require.ErrorIs(t, err, ErrUnknownTask)

	welcome.err = errors.New("smtp down")
	err = runTask(context.Background(), reg, log, taskArgs{TaskName: "send_welcome_email"}, 4, 2)
	require.ErrorIs(t, err, welcome.err)
}

func TestBuildArgs(t *testing.T) {
	t.Parallel()

	at := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	args, ins, err := buildArgs("send_welcome_email", welcomePayload{UserID: "u1"},
		InQueue("email"),
		ScheduledAt(at),
		MaxAttempts(3),
		Priority(2),
		Priority(9),
		Tags("signup"),
		Tags("email"),
		UniqueFor(time.Hour),
		UniqueKey("u1"),
	)
	require.NoError(t, err)

	assert.Equal(t, "mwm:task", args.Kind())
	assert.Equal(t, "send_welcome_email", args.TaskName)
	assert.JSONEq(t, `{"user_id":"u1","email":""}`, string(args.Payload))
	assert.Equal(t, "u1", args.UniqueKey)

	assert.Equal(t, "email", ins.Queue)
	assert.Equal(t, at, ins.ScheduledAt)
	assert.Equal(t, 3, ins.MaxAttempts)
	assert.Equal(t, 2, ins.Priority)
	assert.Equal(t, []string{"signup", "email"}, ins.Tags)
	assert.Equal(t, time.Hour, ins.UniqueOpts.ByPeriod)

	args, ins, err = buildArgs("purge_expired_sessions", nil, UniqueKey("ignored"))
	require.NoError(t, err)
	assert.Nil(t, args.Payload)
	assert.Empty(t, args.UniqueKey)
	assert.Empty(t, ins.Queue)

	_, _, err = buildArgs("bad", map[string]any{"ch": make(chan int)})
	require.Error(t, err)
}

func TestParseSchedule(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC)
	tests := []struct {
		expr string
		next time.Time
	}{
		{expr: "@hourly", next: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)},
		{expr: "0 * * * *", next: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)},
		{expr: "*/5 * * * *", next: time.Date(2026, 3, 1, 10, 20, 0, 0, time.UTC)},
		{expr: "@daily", next: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		s, err := parseSchedule(tt.expr)
		require.NoError(t, err, tt.expr)
		assert.Equal(t, tt.next, s.Next(from), tt.expr)
	}

	for _, expr := range []string{"", "not cron", "* * * * * *", "61 * * * *"} {
		_, err := parseSchedule(expr)
		assert.Error(t, err, expr)
	}
}

func TestNewManagerRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewManager(nil)
	require.ErrorIs(t, err, ErrPoolRequired)
	_, err = NewEnqueuer(nil)
	require.ErrorIs(t, err, ErrPoolRequired)
	require.ErrorIs(t, Migrate(context.Background(), nil), ErrPoolRequired)
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Healthcheck(nil)(context.Background()), ErrHealthcheckFailed)

	m := &Manager{registry: newRegistry()}
	err := Healthcheck(m)(context.Background())
	require.ErrorIs(t, err, ErrHealthcheckFailed)
	require.ErrorIs(t, err, ErrNotStarted)
}
