package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thriftmap/thriftmap-backend/config"
	"github.com/thriftmap/thriftmap-backend/internal/app/controller"
	"github.com/thriftmap/thriftmap-backend/internal/app/repository"
	"github.com/thriftmap/thriftmap-backend/internal/app/service"
	"github.com/thriftmap/thriftmap-backend/internal/db"
	"github.com/thriftmap/thriftmap-backend/internal/middleware"
	"github.com/thriftmap/thriftmap-backend/internal/router"
	"github.com/thriftmap/thriftmap-backend/pkg/identity"
	"github.com/thriftmap/thriftmap-backend/pkg/logger"
	"github.com/thriftmap/thriftmap-backend/pkg/qrcode"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: true,
	})

	logger.Info("Starting ThriftMap Backend Server", map[string]interface{}{
		"environment":   cfg.Server.Environment,
		"port":          cfg.Server.Port,
		"log_level":     cfg.Log.Level,
		"auth_provider": cfg.Auth.Provider,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	verifier, err := newVerifier(context.Background(), cfg.Auth)
	if err != nil {
		logger.Fatal("Failed to initialize token verifier", err)
	}

	// Initialize repositories
	storeRepo := repository.NewStoreRepository(db.GetDB())
	userRepo := repository.NewUserRepository(db.GetDB())

	// Initialize services
	storeService := service.NewStoreService(
		storeRepo,
		qrcode.NewGenerator(cfg.Share.QRCodeSize, "M"),
		cfg.Share.PublicBaseURL,
	)
	userService := service.NewUserService(userRepo)

	// Initialize controllers
	storeController := controller.NewStoreController(storeService, userService)
	userController := controller.NewUserController(userService)

	// Setup router
	r := router.NewRouter(
		storeController,
		userController,
		middleware.NewAuthMiddleware(verifier),
		cfg,
	)
	engine := r.Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.RequestTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}

func newVerifier(ctx context.Context, cfg config.AuthConfig) (identity.Verifier, error) {
	switch cfg.Provider {
	case config.AuthProviderJWT:
		logger.Warn("Using HS256 development tokens; do not enable in production", map[string]interface{}{
			"issuer": cfg.JWTIssuer,
		})
		return identity.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer), nil
	case config.AuthProviderFirebase:
		return identity.NewFirebaseVerifier(ctx, identity.FirebaseConfig{
			ProjectID:                cfg.ProjectID,
			CredentialsFile:          cfg.CredentialsFile,
			ServiceAccountJSONBase64: cfg.ServiceAccountJSONBase64,
		})
	}
	return nil, fmt.Errorf("unknown auth provider %q", cfg.Provider)
}
