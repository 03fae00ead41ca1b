// @title CloudVault API
// @version 1.0
// @description Folder hierarchy and file storage backed by Cloudflare R2.
// @BasePath /
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rohits-web03/cloudvault/internal/api"
	"github.com/rohits-web03/cloudvault/internal/api/handlers"
	"github.com/rohits-web03/cloudvault/internal/api/services"
	"github.com/rohits-web03/cloudvault/internal/auth"
	"github.com/rohits-web03/cloudvault/internal/config"
	"github.com/rohits-web03/cloudvault/internal/drive"
	"github.com/rohits-web03/cloudvault/internal/repositories"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repositories.ConnectDatabase(cfg.DB_URL, cfg.IsProduction())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	blobs, err := repositories.NewR2Store(cfg.R2)
	if err != nil {
		return err
	}

	users := repositories.NewUserRepository(db)
	deps := drive.Deps{
		Folders: repositories.NewFolderRepository(db),
		Files:   repositories.NewFileRepository(db),
		Users:   users,
		Orphans: repositories.NewOrphanBlobRepository(db),
		Blobs:   blobs,
		Tx:      repositories.NewTxManager(db),
	}
	opts := drive.Options{
		BlobTimeout:    cfg.BlobTimeout,
		PresignTTL:     cfg.PresignTTL,
		MaxTreeDepth:   cfg.MaxTreeDepth,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	manager := drive.NewManager(deps, opts, logger.With("component", "drive"))
	reconciler := drive.NewReconciler(deps, opts, cfg.ReconcileInterval, logger.With("component", "reconciler"))

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}
	accounts := auth.NewService(users, tokens, logger.With("component", "auth"))

	router := api.SetupRouter(api.RouterDeps{
		Auth: handlers.NewAuthHandler(accounts, services.NewGoogleProvider(cfg.Google), handlers.AuthOptions{
			SessionTTL:  tokens.TTL(),
			Secure:      cfg.IsProduction(),
			FrontendURL: cfg.FrontendURL,
			StateSecret: cfg.JWTSecret,
		}, logger),
		Folders: handlers.NewFolderHandler(manager, logger),
		Files:   handlers.NewFileHandler(manager, cfg.MaxUploadBytes, logger),
		Gate:    auth.NewGate(tokens, users),
		Cors:    cfg.CorsConfig(),
		Logger:  logger,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
		// Uploads stream through the handler.
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
		}
		return nil
	})
	g.Go(func() error {
		return reconciler.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
