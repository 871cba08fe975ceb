package main

import (
	"context"
	"os"
	"os/signal"
	"rms/config"
	"rms/di"
	"rms/helper"
	"rms/shared/logger"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

const otelShutdownTimeout = 5 * time.Second

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	app, err := di.InitializeService()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.Events.Start(ctx)
	go reloadPoliciesOnHangup(ctx, app)

	app.HTTP.Serve()

	stop()

	if err := app.Kafka.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close kafka client")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer cancel()

	if err := app.Otel.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}
}

// reloadPoliciesOnHangup re-reads the policy file on SIGHUP. A bad file keeps the
// previous overrides in place.
func reloadPoliciesOnHangup(ctx context.Context, app *di.App) {
	hangup := make(chan os.Signal, 1)

	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hangup:
			if err := app.Policies.Reload(); err != nil {
				log.Error().Err(err).Msg("Failed to reload policy file")
			}
		}
	}
}
