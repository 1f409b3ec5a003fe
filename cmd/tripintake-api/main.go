// README: Entry point; loads config, wires the parser, stores, and services, then serves HTTP until signalled.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"tripintake/internal/config"
	httptransport "tripintake/internal/http"
	"tripintake/internal/infra"
	"tripintake/internal/logging"
	"tripintake/internal/metrics"
	"tripintake/internal/modules/diagnostics"
	"tripintake/internal/modules/intake"
	"tripintake/internal/modules/quota"
	"tripintake/internal/modules/tripparse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New(os.Stderr, "info", false)
		boot.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := newVerifier(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("auth init")
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer dbPool.Close()

	var diagSvc *diagnostics.Service
	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable; parser diagnostics disabled")
	} else {
		defer redisClient.Close()
		diagSvc = diagnostics.NewService(diagnostics.NewStore(redisClient, cfg.Diagnostics.StreamMaxLen), logger)
	}

	observers := []tripparse.Observer{metrics.ParseObserver{}}
	if cfg.Parser.Debug {
		observers = append(observers, tripparse.LogObserver(logger))
	}
	parser := tripparse.New(
		tripparse.WithPolicy(cfg.Parser.Policy()),
		tripparse.WithLocation(cfg.Parser.Location()),
		tripparse.WithObserver(tripparse.Observers(observers...)),
	)

	var publisher intake.Publisher
	if diagSvc != nil {
		publisher = diagSvc
	}
	intakeSvc := intake.NewService(intake.NewStore(dbPool), parser, publisher, logger)
	if cfg.Quota.Monthly > 0 {
		intakeSvc.WithQuota(quota.NewService(quota.NewStore(dbPool), cfg.Quota.Monthly))
	}

	go intakeSvc.RunExpiry(ctx, cfg.Drafts.SweepEvery, cfg.Drafts.TTL)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Intake:         intakeSvc,
		Diagnostics:    diagSvc,
		Verifier:       verifier,
		Logger:         logger,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().Str("addr", cfg.HTTP.Addr).Msg("listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("serve")
	}
}

func newVerifier(ctx context.Context, cfg config.Config, logger zerolog.Logger) (infra.TokenVerifier, error) {
	if cfg.Firebase.ProjectID == "" && cfg.Firebase.DevUID != "" {
		logger.Warn().Str("uid", cfg.Firebase.DevUID).Msg("dev auth enabled; every bearer token is accepted")
		return infra.DevVerifier{UID: cfg.Firebase.DevUID}, nil
	}
	if cfg.Firebase.ProjectID == "" {
		return nil, errors.New("TRIPINTAKE_FIREBASE_PROJECT_ID is required")
	}
	return infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
}
