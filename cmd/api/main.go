package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"storefront/api"
	"storefront/auth"
	"storefront/config"
	"storefront/db"
	"storefront/googleid"
	"storefront/notification"
	"storefront/product"
	"storefront/provider"
	"storefront/storage"
)

func main() {
	// Local development convenience; a missing .env is fine.
	_ = godotenv.Load()

	if err := run(context.Background()); err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	signingKey, err := cfg.SigningKey()
	if err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	files, err := storage.NewFileStore(cfg.UploadBaseDir)
	if err != nil {
		return err
	}

	var verifier auth.IdentityVerifier
	if cfg.GoogleClientID != "" {
		verifier = googleid.NewVerifier(cfg.GoogleClientID)
	}

	tokens := auth.NewTokenService(signingKey, cfg.TokenLifetime)
	authService := auth.NewService(auth.NewRepository(pool), tokens, verifier)
	productService := product.NewService(product.NewRepository(pool))
	providerService := provider.NewService(provider.NewRepository(pool))

	var notificationService *notification.Service
	if cfg.FCMProjectID != "" && cfg.FCMServiceAccountFile != "" {
		key, err := os.ReadFile(cfg.FCMServiceAccountFile)
		if err != nil {
			return err
		}
		notificationService, err = notification.NewService(ctx, cfg.FCMProjectID, key)
		if err != nil {
			return err
		}
	} else {
		slog.Warn("push notifications disabled: FCM not configured")
	}

	router := api.NewRouter(api.RouterDeps{
		Tokens:        tokens,
		Auth:          authService,
		Products:      productService,
		Providers:     providerService,
		Notifications: notificationService,
		Files:         files,
		CORSOrigins:   cfg.CORSOrigins,
	})

	slog.Info("listening", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, router)
}
