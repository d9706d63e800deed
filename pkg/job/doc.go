// Package job runs background tasks on River, a Postgres-backed queue.
//
// A task is any type with a Name and a typed Handle method, so task packages
// never import this one:
//
//	type SendWelcome struct{ mailer *mailer.Mailer }
//
//	func (t *SendWelcome) Name() string { return "send_welcome_email" }
//
//	func (t *SendWelcome) Handle(ctx context.Context, p WelcomePayload) error {
//	    return t.mailer.Send(ctx, mailer.SendParams{...})
//	}
//
// Periodic tasks add a Schedule method returning a cron expression or a
// descriptor such as "@hourly":
//
//	func (t *PurgeSessions) Schedule() string { return "@hourly" }
//	func (t *PurgeSessions) Handle(ctx context.Context) error { ... }
//
// Register both with a Manager, which processes jobs in this process:
//
//	m, err := job.NewManager(pool,
//	    job.WithTask[tasks.WelcomePayload](tasks.NewSendWelcome(mail, users, baseURL)),
//	    job.WithScheduledTask(tasks.NewPurgeSessions(sessions, log)),
//	    job.WithLogger(log),
//	)
//
// Processes that only dispatch work use an Enqueuer. EnqueueTx inserts the
// job inside the caller's transaction, so it only becomes visible once the
// surrounding write commits:
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//	    ...create the user...
//	    return m.EnqueueTx(ctx, tx, "send_welcome_email", WelcomePayload{UserID: id})
//	})
//
// Every task shares one River job kind; the task name travels in the job
// arguments and is resolved against the registry at execution time.
package job
