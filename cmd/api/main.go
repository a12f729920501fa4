package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/1Welcorn/Estilista-Virtual/internal/catalog"
	"github.com/1Welcorn/Estilista-Virtual/internal/http/handlers"
	httpapi "github.com/1Welcorn/Estilista-Virtual/internal/http/httpapi"
	"github.com/1Welcorn/Estilista-Virtual/internal/imaging"
	"github.com/1Welcorn/Estilista-Virtual/internal/infra"
	"github.com/1Welcorn/Estilista-Virtual/internal/infra/credentials"
	"github.com/1Welcorn/Estilista-Virtual/internal/infra/geoip"
	"github.com/1Welcorn/Estilista-Virtual/internal/infra/google"
	"github.com/1Welcorn/Estilista-Virtual/internal/middleware"
	"github.com/1Welcorn/Estilista-Virtual/internal/providers/genai"
	"github.com/1Welcorn/Estilista-Virtual/internal/providers/stylist"
	"github.com/1Welcorn/Estilista-Virtual/internal/session"
	"github.com/1Welcorn/Estilista-Virtual/internal/sqlinline"
	"github.com/1Welcorn/Estilista-Virtual/internal/storage"
)

// keySource prefers the rotatable stored key and falls back to the one from
// the environment.
type keySource struct {
	store    *credentials.Store
	fallback string
}

func (k keySource) GeminiAPIKey(ctx context.Context) (string, error) {
	key, err := k.store.GeminiAPIKey(ctx)
	if err != nil {
		return "", err
	}
	if key == "" {
		key = k.fallback
	}
	return key, nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	for _, q := range []string{sqlinline.QEnsureTrendsTable, sqlinline.QEnsureIntegrationTokens} {
		if _, err := runner.Exec(ctx, q); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure schema")
		}
	}

	creds := credentials.NewStore(runner)
	keys := keySource{store: creds, fallback: cfg.GeminiAPIKey}
	if ok, err := credentials.Wait(ctx, keys, 3, 2*time.Second); err != nil {
		logger.Fatal().Err(err).Msg("failed to check gemini key")
	} else if !ok {
		logger.Warn().Msg("no gemini api key configured, generation will fail until one is set")
	}

	gemini := genai.NewClient(genai.Options{
		Keys:       keys,
		BaseURL:    cfg.GeminiBaseURL,
		ImageModel: cfg.GeminiImageModel,
		TextModel:  cfg.GeminiTextModel,
		Logger:     &logger,
	})
	stylistSvc := stylist.NewService(gemini, &logger)

	var objects storage.ObjectStore
	switch cfg.StorageBackend {
	case "s3":
		objects, err = storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init s3 storage")
		}
	default:
		objects, err = storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init filesystem storage")
		}
	}

	catalogSvc := catalog.NewService(catalog.NewPGStore(runner), objects, &logger)

	sessions := session.NewStore(30 * time.Minute)
	sessionSvc := session.NewService(sessions, stylistSvc, imaging.NewFetcher(nil), &logger)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					logger.Info().Int("count", n).Msg("idle sessions dropped")
				}
			}
		}
	}()

	var country middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		defer resolver.Close()
		country = resolver.CountryCode
	}

	app := &handlers.App{
		Logger:         &logger,
		Config:         *cfg,
		Sessions:       sessionSvc,
		Catalog:        catalogSvc,
		Credentials:    creds,
		GoogleVerifier: google.NewVerifier(cfg.GoogleIssuer, cfg.GoogleClientID),
	}

	router := httpapi.NewRouter(app, country)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
