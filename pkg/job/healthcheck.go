package job

import (
	"context"
	"errors"
)

// ErrHealthcheckFailed is returned by Healthcheck.
var ErrHealthcheckFailed = errors.New("job: healthcheck failed")

// Healthcheck reports the manager ready once it is started and its pool
// answers a ping.
//
//	mwm.WithReadinessCheck("jobs", job.Healthcheck(manager))
func Healthcheck(m *Manager) func(context.Context) error {
	return func(ctx context.Context) error {
		if m == nil {
			return errors.Join(ErrHealthcheckFailed, errors.New("manager is nil"))
		}
		if !m.isStarted() {
			return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
		}
		if err := m.pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
