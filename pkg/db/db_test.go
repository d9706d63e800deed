package db_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mwm/pkg/db"
)

// fakeTx records how a transaction ended. Unused pgx.Tx methods panic.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return nil
}

type fakeStarter struct {
	tx  *fakeTx
	err error
}

func (f *fakeStarter) Begin(context.Context) (pgx.Tx, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestWithTx(t *testing.T) {
	t.Parallel()

	t.Run("commits on success", func(t *testing.T) {
		t.Parallel()
		s := &fakeStarter{tx: &fakeTx{}}
		require.NoError(t, db.WithTx(context.Background(), s, func(pgx.Tx) error { return nil }))
		assert.True(t, s.tx.committed)
		assert.False(t, s.tx.rolledBack)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		t.Parallel()
		s := &fakeStarter{tx: &fakeTx{}}
		want := errors.New("conflict")
		err := db.WithTx(context.Background(), s, func(pgx.Tx) error { return want })
		require.ErrorIs(t, err, want)
		assert.True(t, s.tx.rolledBack)
		assert.False(t, s.tx.committed)
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		t.Parallel()
		s := &fakeStarter{tx: &fakeTx{}}
		assert.PanicsWithValue(t, "boom", func() {
			_ = db.WithTx(context.Background(), s, func(pgx.Tx) error { panic("boom") })
		})
		assert.True(t, s.tx.rolledBack)
	})

	t.Run("begin failure", func(t *testing.T) {
		t.Parallel()
		want := errors.New("no connection")
		err := db.WithTx(context.Background(), &fakeStarter{err: want}, func(pgx.Tx) error { return nil })
		require.ErrorIs(t, err, want)
	})
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	unique := fmt.Errorf("insert role: %w", &pgconn.PgError{Code: "23505", ConstraintName: "roles_name_key"})
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, db.IsUniqueViolation(unique))
	assert.Equal(t, "roles_name_key", db.ConstraintName(unique))
	assert.False(t, db.IsUniqueViolation(fk))
	assert.True(t, db.IsForeignKeyViolation(fk))

	assert.True(t, db.IsNotFound(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, db.IsNotFound(unique))
	assert.Empty(t, db.ConstraintName(errors.New("plain")))
}

func TestOpenValidation(t *testing.T) {
	t.Parallel()

	_, err := db.Open(context.Background(), "")
	require.ErrorIs(t, err, db.ErrInvalidConfig)

	_, err = db.Open(context.Background(), "postgres://%zz")
	require.ErrorIs(t, err, db.ErrInvalidConfig)
}

func TestHealthcheckNilPool(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, db.Healthcheck(nil)(context.Background()), db.ErrHealthcheck)
}
