package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/case-admin-backend/internal/app"
	"github.com/nekogravitycat/case-admin-backend/internal/config"
	"github.com/nekogravitycat/case-admin-backend/internal/db"
	"github.com/nekogravitycat/case-admin-backend/internal/logger"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/storage"
)

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.Storage.Driver == config.StorageDriverS3 {
		return storage.NewS3Storage(ctx, storage.S3Config{
			Region:       cfg.S3.Region,
			BaseEndpoint: cfg.S3.BaseEndpoint,
			Bucket:       cfg.S3.Bucket,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
		})
	}
	return storage.NewLocalStorage(cfg.Storage.LocalPath)
}

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.NewLogger("server", "info").Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.NewLogger("server", cfg.LogLevel)

	// Connect DB
	var pool *pgxpool.Pool
	if cfg.StoreDriver == config.StoreDriverPostgres {
		pool, err = db.NewPool(ctx, cfg.DBDSN, db.PoolOptions{
			MaxConns:        cfg.DB.MaxConns,
			MinConns:        cfg.DB.MinConns,
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to db")
		}
		defer pool.Close()

		if err := db.Migrate(pool); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate db")
		}
	} else {
		log.Warn().Msg("using in-memory stores, data is lost on exit")
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init file storage")
	}

	container := app.NewContainer(app.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		CookieSecure:   cfg.CookieSecure,
		DBPool:         pool,
		Storage:        store,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
		JWTSecret:      cfg.JWTSecret,
		JWTTTL:         cfg.JWTAccessTokenTTL,
		BcryptCost:     cfg.BcryptCost,
		Logger:         log,
	})

	// Every route but login needs a session, so make sure someone can log in.
	if cfg.AdminUsername != "" {
		created, err := container.UserService.EnsureUser(log.WithContext(ctx), cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to bootstrap admin user")
		}
		if created {
			log.Info().Str("username", cfg.AdminUsername).Msg("admin user created")
		}
	}

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited gracefully")
}
