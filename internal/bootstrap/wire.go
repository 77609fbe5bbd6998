package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/baechuer/coursehub/internal/application/auth"
	"github.com/baechuer/coursehub/internal/application/catalog"
	"github.com/baechuer/coursehub/internal/config"
	"github.com/baechuer/coursehub/internal/domain"
	"github.com/baechuer/coursehub/internal/infrastructure/db/postgres"
	"github.com/baechuer/coursehub/internal/infrastructure/db/postgres/migrations"
	"github.com/baechuer/coursehub/internal/infrastructure/email"
	"github.com/baechuer/coursehub/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/coursehub/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/coursehub/internal/infrastructure/redis"
	"github.com/baechuer/coursehub/internal/infrastructure/sanitize"
	"github.com/baechuer/coursehub/internal/infrastructure/security"
	"github.com/baechuer/coursehub/internal/infrastructure/storage"
	"github.com/baechuer/coursehub/internal/logger"
	http_handlers "github.com/baechuer/coursehub/internal/transport/http/handlers"
	"github.com/baechuer/coursehub/internal/transport/http/middleware"
	"github.com/baechuer/coursehub/internal/transport/http/response"
	"github.com/baechuer/coursehub/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewDB func(addr string, debug bool) (*sql.DB, error)

	// Migrate runs against a freshly opened DB; nil skips migrations.
	Migrate func(ctx context.Context, db *sql.DB) error

	NewRedis func(addr, password string, db int) RedisClient

	NewPublisher func(url, exchange string) (auth.EventPublisher, error)

	NewMailer func(cfg *config.Config) (auth.EmailSender, error)

	NewPhotoStore func(ctx context.Context, cfg *config.Config) (storage.Store, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

// sqlPinger adapts *sql.DB to the readiness probe.
type sqlPinger struct{ db *sql.DB }

func (p sqlPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

type catalogStore interface {
	catalog.TopicRepo
	catalog.CourseRepo
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.JWTSecretInsecure {
		logger.Logger.Warn().Msg("JWT_SECRET not set; using the insecure development secret")
	}

	var cleanupFns []func()
	fail := func(err error) (*http.Server, func(), error) {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	ready := map[string]http_handlers.Pinger{}

	// 1) persistence
	var (
		users    auth.UserRepo
		catalogs catalogStore
	)
	if cfg.DBAddr == config.DBMemory {
		logger.Logger.Warn().Msg("DB_ADDR=memory; data is kept in process only")
		users = memory.NewUserRepo()
		catalogs = memory.NewCatalogRepo()
	} else {
		db, err := deps.NewDB(cfg.DBAddr, cfg.DBDebug)
		if err != nil {
			return nil, nil, err
		}
		cleanupFns = append(cleanupFns, func() { _ = db.Close() })

		if deps.Migrate != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := deps.Migrate(ctx, db)
			cancel()
			if err != nil {
				return fail(err)
			}
		}

		users = postgres.NewUserRepo(db)
		catalogs = postgres.NewCatalogRepo(db)
		ready["postgres"] = sqlPinger{db: db}
	}

	// 2) redis (best-effort)
	var redisCli *redis.Client
	if deps.NewRedis != nil && cfg.RedisAddr != "" {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-process rate limits")
			_ = c.Close()
		} else if rc, ok := c.(*redis.Client); ok {
			logger.Logger.Info().Msg("redis connected")
			redisCli = rc
			cleanupFns = append(cleanupFns, func() { _ = rc.Close() })
			ready["redis"] = rc
		} else {
			_ = c.Close()
		}
	}

	// 3) publisher
	var pub auth.EventPublisher = memory.NewNoopPublisher()
	if cfg.RabbitURL != "" && deps.NewPublisher != nil {
		p, err := deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		switch {
		case err != nil && cfg.IsDev():
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
		case err != nil:
			return fail(err)
		default:
			pub = p
			if c, ok := p.(interface{ Close() error }); ok {
				cleanupFns = append(cleanupFns, func() { _ = c.Close() })
			}
		}
	}

	// 4) email + photos
	mailer, err := deps.NewMailer(cfg)
	if err != nil {
		return fail(err)
	}

	storeCtx, storeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	photos, err := deps.NewPhotoStore(storeCtx, cfg)
	storeCancel()
	if err != nil {
		return fail(err)
	}

	// 5) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	signer, err := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	if err != nil {
		return fail(err)
	}

	// 6) services
	authSvc := auth.NewService(
		users,
		hasher,
		signer,
		security.NewOTPGenerator(),
		mailer,
		photos,
		pub,
		auth.Config{
			OTPTTL:           cfg.OTPTTL,
			EmailSendTimeout: cfg.EmailSendTimeout,
			MaxPhotoBytes:    cfg.MaxPhotoBytes,
		},
	)
	authSvc = authSvc.WithAudit(auditLog).WithWarn(warnLog)

	var limiter middleware.RateLimiter
	if redisCli != nil {
		fw := redis.NewFixedWindowLimiter(redisCli)
		limiter = fw
		authSvc = authSvc.WithResendThrottle(redis.NewThrottle(fw, "verify_email.resend", 1, cfg.ResendCooldown))
	}

	catalogSvc := catalog.NewService(catalogs, catalogs, sanitize.NewHTML()).WithAudit(auditLog)

	// seed (dev only)
	if cfg.IsDev() && cfg.SeedAdminEmail != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := authSvc.SeedAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword, cfg.SeedAdminName)
		cancel()
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("admin seed failed")
		} else {
			logger.Logger.Info().Bool("created", created).Str("email", cfg.SeedAdminEmail).Msg("admin seeded")
		}
	}

	// 7) handlers + middleware
	authMW := middleware.Auth(signer, response.WriteError)
	adminMW := middleware.RequireRole(string(domain.RoleAdmin), response.WriteError)

	rl := func(key string, limit int, window time.Duration) func(http.Handler) http.Handler {
		return middleware.RateLimitFixedWindow(
			limiter,
			middleware.FixedWindowConfig{
				RouteKey: key,
				Limit:    limit,
				Window:   window,
			},
			response.WriteError,
		)
	}

	// 8) router
	mux, err := deps.NewRouter(router.Deps{
		Health:     http_handlers.NewHealthHandler(ready),
		Auth:       http_handlers.NewAuthHandler(authSvc),
		Profile:    http_handlers.NewProfileHandler(authSvc),
		Images:     http_handlers.NewImageHandler(photos),
		AdminUsers: http_handlers.NewAdminUsersHandler(authSvc),
		Catalog:    http_handlers.NewCatalogHandler(catalogSvc),

		Global: []func(http.Handler) http.Handler{
			middleware.RequestID,
			chimw.RealIP,
			middleware.SecurityHeaders,
			middleware.Metrics,
			middleware.AccessLog,
		},

		AuthMW:  authMW,
		AdminMW: adminMW,

		RLRegister: rl("auth.register", cfg.RLRegister, time.Minute),
		RLLogin:    rl("auth.login", cfg.RLLogin, time.Minute),
		RLVerify:   rl("auth.verify_email", cfg.RLVerify, time.Minute),
		RLResend:   rl("auth.verify_email.resend", cfg.RLResend, time.Minute),
	})
	if err != nil {
		return fail(err)
	}

	// 9) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

func auditLog(action string, fields map[string]string) {
	evt := logger.Logger.Info().
		Bool("audit", true).
		Str("action", action)
	for k, v := range fields {
		evt = evt.Str(k, v)
	}
	evt.Msg("audit")
}

func warnLog(msg string, err error, fields map[string]string) {
	evt := logger.Logger.Warn().Err(err)
	for k, v := range fields {
		evt = evt.Str(k, v)
	}
	evt.Msg(msg)
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewDB:      config.NewDB,
		Migrate:    migrations.Up,
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewPublisher: func(url, exchange string) (auth.EventPublisher, error) {
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewMailer:     newMailer,
		NewPhotoStore: newPhotoStore,
		NewRouter:     router.New,
	}
}

func newMailer(cfg *config.Config) (auth.EmailSender, error) {
	switch cfg.EmailDriver {
	case "log":
		logger.Logger.Warn().Msg("EMAIL_DRIVER=log; verification codes are written to the log")
		return email.NewLogSender(logger.Logger), nil
	case "smtp":
		return email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			Timeout:  cfg.EmailSendTimeout,
			Insecure: cfg.SMTPInsecure,
			CodeTTL:  cfg.OTPTTL,
		}, logger.Logger), nil
	default:
		return nil, fmt.Errorf("unknown email driver %q", cfg.EmailDriver)
	}
}

func newPhotoStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case "local":
		return storage.NewLocal(cfg.UploadDir)
	case "s3":
		s, err := storage.NewS3(ctx, storage.S3Config{
			Endpoint:     cfg.S3Endpoint,
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			UsePathStyle: cfg.S3UsePathStyle,
		}, logger.Logger)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
