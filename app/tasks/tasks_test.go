package tasks_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/app/repository"
	"github.com/dmitrymomot/mwm/app/tasks"
	"github.com/dmitrymomot/mwm/pkg/job"
	"github.com/dmitrymomot/mwm/pkg/mailer"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, email *mailer.Email) error {
	return m.Called(ctx, email).Error(0)
}

func newMailer(s mailer.Sender) *mailer.Mailer {
	return mailer.New(s, mailer.NewRenderer(tasks.EmailTemplates()), mailer.Config{
		DefaultLayout:   "base.html",
		FallbackSubject: "Notification",
	})
}

func TestSendWelcome(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := repository.NewMemory()
	u, err := store.CreateUser(ctx, repository.CreateUserParams{Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)

	sender := &mockSender{}
	sender.On("Send", mock.Anything, mock.MatchedBy(func(e *mailer.Email) bool {
		return e.To[0] == "Ada <ada@example.com>" &&
			e.Subject == "Welcome to mwm, Ada" &&
			strings.Contains(e.HTML, "https://app.example.com/identity/sign-in") &&
			strings.Contains(e.Text, "ada@example.com")
	})).Return(nil).Once()

	task := tasks.NewSendWelcome(newMailer(sender), store, "https://app.example.com")
	assert.Equal(t, tasks.SendWelcomeEmail, task.Name())
	require.NoError(t, task.Handle(ctx, tasks.WelcomePayload{UserID: u.ID}))
	sender.AssertExpectations(t)

	t.Run("missing user is skipped", func(t *testing.T) {
		require.NoError(t, task.Handle(ctx, tasks.WelcomePayload{UserID: "gone"}))
		sender.AssertNumberOfCalls(t, "Send", 1)
	})
}

type fakePurger struct {
	n   int64
	err error
}

func (f fakePurger) PurgeExpired(context.Context) (int64, error) { return f.n, f.err }

func TestPurgeSessions(t *testing.T) {
	t.Parallel()
	task := tasks.NewPurgeSessions(fakePurger{n: 3}, nil)
	assert.Equal(t, "@hourly", task.Schedule())
	require.NoError(t, task.Handle(context.Background()))

	boom := errors.New("db down")
	require.ErrorIs(t, tasks.NewPurgeSessions(fakePurger{err: boom}, nil).Handle(context.Background()), boom)
}

type recordingEnqueuer struct {
	names []string
	inTx  []bool
}

func (r *recordingEnqueuer) Enqueue(_ context.Context, name string, _ any, _ ...job.EnqueueOption) error {
	r.names = append(r.names, name)
	r.inTx = append(r.inTx, false)
	return nil
}

func (r *recordingEnqueuer) EnqueueTx(_ context.Context, _ pgx.Tx, name string, _ any, _ ...job.EnqueueOption) error {
	r.names = append(r.names, name)
	r.inTx = append(r.inTx, true)
	return nil
}

func TestWelcomeOnSignUp(t *testing.T) {
	t.Parallel()
	enq := &recordingEnqueuer{}
	hook := tasks.WelcomeOnSignUp(enq)
	require.NoError(t, hook(context.Background(), nil, repository.User{ID: "u1"}))
	assert.Equal(t, []string{tasks.SendWelcomeEmail}, enq.names)
	assert.Equal(t, []bool{false}, enq.inTx)
}
