// Command server runs the mwm web application.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dmitrymomot/mwm"
	"github.com/dmitrymomot/mwm/app/apiv1"
	"github.com/dmitrymomot/mwm/app/config"
	"github.com/dmitrymomot/mwm/app/migrations"
	"github.com/dmitrymomot/mwm/app/public"
	"github.com/dmitrymomot/mwm/app/repository"
	"github.com/dmitrymomot/mwm/app/routetable"
	"github.com/dmitrymomot/mwm/app/services"
	"github.com/dmitrymomot/mwm/app/tasks"
	"github.com/dmitrymomot/mwm/app/views"
	"github.com/dmitrymomot/mwm/middlewares"
	"github.com/dmitrymomot/mwm/pkg/auth"
	"github.com/dmitrymomot/mwm/pkg/cache"
	"github.com/dmitrymomot/mwm/pkg/cookie"
	"github.com/dmitrymomot/mwm/pkg/db"
	"github.com/dmitrymomot/mwm/pkg/job"
	"github.com/dmitrymomot/mwm/pkg/logger"
	"github.com/dmitrymomot/mwm/pkg/mailer"
	"github.com/dmitrymomot/mwm/pkg/mailer/resend"
	"github.com/dmitrymomot/mwm/pkg/redis"
	"github.com/dmitrymomot/mwm/pkg/session"
	"github.com/dmitrymomot/mwm/pkg/storage"
)

// Sign-in throttle: failures allowed per email within the window.
const (
	throttleLimit  = 5
	throttleWindow = 15 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(logger.SentryConfig{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Env,
		MinLevel:    slog.LevelWarn,
	}, middlewares.RequestIDExtractor())

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx, pool, migrations.FS, db.WithLogger(log)); err != nil {
		pool.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	if err := job.Migrate(ctx, pool); err != nil {
		pool.Close()
		return err
	}

	readiness := []mwm.HealthOption{mwm.WithReadinessCheck("postgres", db.Healthcheck(pool))}
	shutdown := []mwm.RunOption{mwm.ShutdownHook(db.Shutdown(pool))}
	if cfg.SentryDSN != "" {
		shutdown = append(shutdown, mwm.ShutdownHook(logger.FlushSentry))
	}

	throttleCache, lifecycle, err := openThrottleCache(ctx, cfg, log)
	if err != nil {
		pool.Close()
		return err
	}
	if lifecycle.check != nil {
		readiness = append(readiness, mwm.WithReadinessCheck("redis", lifecycle.check))
	}
	shutdown = append(shutdown, mwm.ShutdownHook(lifecycle.shutdown))

	store := repository.NewPostgres(pool)
	hasher := auth.NewHasher(auth.Params{Memory: cfg.Password.Memory, Time: cfg.Password.Time})

	enqueuer, err := job.NewEnqueuer(pool, job.WithEnqueuerLogger(log))
	if err != nil {
		pool.Close()
		return fmt.Errorf("job enqueuer: %w", err)
	}

	svcOpts := []services.Option{
		services.WithLogger(log),
		services.WithThrottle(auth.NewThrottle(throttleCache, throttleLimit, throttleWindow)),
		services.WithSignUpHook(tasks.WelcomeOnSignUp(enqueuer)),
	}
	appOpts := []mwm.Option{}

	if cfg.Storage.Enabled() {
		s3, err := storage.New(storage.Config{
			Bucket:    cfg.Storage.Bucket,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			PublicURL: cfg.Storage.PublicURL,
			PathStyle: cfg.Storage.PathStyle,
		})
		if err != nil {
			pool.Close()
			return fmt.Errorf("storage: %w", err)
		}
		svcOpts = append(svcOpts, services.WithStorage(s3))
		appOpts = append(appOpts, mwm.WithStorage(s3))
	} else {
		log.Warn("object storage not configured, avatar uploads are disabled")
	}

	svc := services.New(store, hasher, svcOpts...)
	sessions := auth.NewManager(session.NewPostgresStore(pool), svc,
		auth.WithMaxAge(cfg.SessionMaxAge),
		auth.WithSecure(cfg.IsProduction()),
		auth.WithLogger(log),
	)

	m := mailer.New(newSender(cfg, log), mailer.NewRenderer(tasks.EmailTemplates()), mailer.Config{
		FallbackSubject: "Notification",
		DefaultLayout:   "base.html",
	})

	cookieOpts := []mwm.CookieOption{cookie.WithSecure(cfg.IsProduction())}
	if cfg.CookieSecret != "" {
		cookieOpts = append(cookieOpts, cookie.WithSecret(cfg.CookieSecret))
	}

	appOpts = append(appOpts,
		mwm.WithCustomLogger(log),
		mwm.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.Timeout(30*time.Second),
			services.Inject(svc),
		),
		mwm.WithCookieOptions(cookieOpts...),
		mwm.WithAuth(sessions),
		mwm.WithJobs(pool, append(tasks.Options(m, store, cfg.BaseURL, sessions, log), job.WithLogger(log))...),
		mwm.WithHandlers(apiv1.New(log)),
		mwm.WithPages(routetable.Routes),
		mwm.WithDocument(views.Document),
		mwm.WithAssets(public.FS(), routetable.Assets, cfg.IsDevelopment()),
		mwm.WithErrorHandler(handleError),
		mwm.WithHealthChecks(readiness...),
	)

	app := mwm.New(appOpts...)
	log.Info("starting server", slog.String("address", cfg.Address), slog.String("env", cfg.Env))
	return app.Run(cfg.Address, append(shutdown,
		mwm.Logger(log),
		mwm.ShutdownTimeout(30*time.Second),
	)...)
}

type cacheLifecycle struct {
	check    func(context.Context) error
	shutdown func(context.Context) error
}

// openThrottleCache keeps sign-in failures in Redis when REDIS_URL is set
// so every instance shares the counters, and in memory otherwise.
func openThrottleCache(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Counter, cacheLifecycle, error) {
	if cfg.RedisURL == "" {
		c := cache.NewMemoryCounter()
		return c, cacheLifecycle{shutdown: func(context.Context) error { return c.Close() }}, nil
	}
	client, err := redis.Open(ctx, cfg.RedisURL)
	if err != nil {
		return nil, cacheLifecycle{}, fmt.Errorf("open redis: %w", err)
	}
	log.Info("sign-in throttle backed by redis")
	return cache.NewRedis[int64](client, "throttle"), cacheLifecycle{
		check:    redis.Healthcheck(client),
		shutdown: redis.Shutdown(client),
	}, nil
}

func newSender(cfg config.Config, log *slog.Logger) mailer.Sender {
	if !cfg.Mail.Enabled() {
		return mailer.NewLogSender(log)
	}
	return resend.New(resend.Config{
		APIKey:      cfg.Mail.ResendAPIKey,
		SenderEmail: cfg.Mail.From,
		SenderName:  cfg.Mail.FromName,
	})
}

// handleError renders the themed error page, or just its content for
// partial requests.
func handleError(c mwm.Context, err error) error {
	status := mwm.StatusOf(err)
	msg := http.StatusText(status)
	if he := mwm.AsHTTPError(err); he != nil && he.Message != "" && status < http.StatusInternalServerError {
		msg = he.Message
	}
	page := views.ErrorPage(status, msg, middlewares.GetRequestID(c))
	return c.RenderPartial(status, views.Document(c, views.SiteChrome(c, page)), page)
}
