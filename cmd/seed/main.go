// Command seed creates the verified admin identity if it does not exist yet.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/baechuer/coursehub/internal/application/auth"
	"github.com/baechuer/coursehub/internal/config"
	"github.com/baechuer/coursehub/internal/infrastructure/db/postgres"
	"github.com/baechuer/coursehub/internal/infrastructure/db/postgres/migrations"
	"github.com/baechuer/coursehub/internal/infrastructure/email"
	"github.com/baechuer/coursehub/internal/infrastructure/memory"
	"github.com/baechuer/coursehub/internal/infrastructure/security"
	"github.com/baechuer/coursehub/internal/logger"
)

func main() {
	logger.Init()
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Error().Err(err).Msg("config")
		return 1
	}

	emailFlag := flag.String("email", cfg.SeedAdminEmail, "admin email (SEED_ADMIN_EMAIL)")
	passFlag := flag.String("password", cfg.SeedAdminPassword, "admin password (SEED_ADMIN_PASSWORD)")
	nameFlag := flag.String("name", cfg.SeedAdminName, "admin display name")
	flag.Parse()

	if cfg.DBAddr == config.DBMemory {
		logger.Logger.Error().Msg("seed needs a postgres DB_ADDR")
		return 1
	}

	db, err := config.NewDB(cfg.DBAddr, cfg.DBDebug)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("db connect")
		return 1
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := migrations.Up(ctx, db); err != nil {
		logger.Logger.Error().Err(err).Msg("migrate")
		return 1
	}

	signer, err := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("signer")
		return 1
	}

	// the seeded identity is verified directly, so nothing is mailed or uploaded
	svc := auth.NewService(
		postgres.NewUserRepo(db),
		security.NewBcryptHasher(cfg.BcryptCost),
		signer,
		security.NewOTPGenerator(),
		email.NewLogSender(logger.Logger),
		nil,
		memory.NewNoopPublisher(),
		auth.Config{OTPTTL: cfg.OTPTTL},
	)

	created, err := svc.SeedAdmin(ctx, *emailFlag, *passFlag, *nameFlag)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("seed admin")
		return 1
	}

	logger.Logger.Info().
		Str("email", *emailFlag).
		Bool("created", created).
		Msg("admin ready")
	return 0
}
