package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legalchat-backend/internal/api"
	"legalchat-backend/internal/auth"
	"legalchat-backend/internal/config"
	"legalchat-backend/internal/handlers"
	"legalchat-backend/internal/logging"
	"legalchat-backend/internal/metrics"
	"legalchat-backend/internal/services"
	"legalchat-backend/internal/store"
	"legalchat-backend/internal/store/postgres"
	"legalchat-backend/internal/store/sqlite"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		// No logger yet; the config decides its level and format.
		os.Stderr.WriteString("FATAL: failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		os.Stderr.WriteString("FATAL: failed to build logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	logger.Info("Starting legalchat backend...",
		zap.String("env", cfg.AppEnv),
		zap.String("database_driver", cfg.DatabaseDriver),
		zap.Bool("env_file_loaded", cfg.EnvFileLoaded))
	if cfg.UsingDefaultSecret() {
		logger.Warn("SESSION_SECRET not set, using the development default")
	}

	// 2. Open the store
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer initCancel()

	st, err := openStore(initCtx, cfg, logger)
	if err != nil {
		logger.Fatal("Unable to open store", zap.Error(err))
	}
	defer st.Close()

	// 3. The assistant identity must exist before any message can be attributed to it.
	bot, err := services.EnsureBotUser(initCtx, st, services.BotConfig{
		Email:     cfg.BotEmail,
		FirstName: cfg.BotFirstName,
		LastName:  cfg.BotLastName,
	}, logger)
	if err != nil {
		logger.Fatal("Unable to ensure bot user", zap.Error(err))
	}

	// 4. Initialize services and handlers
	authService := services.NewAuthService(st, bot, cfg.SessionTTL, logger)
	conversationService := services.NewConversationService(st, logger)
	messageService := services.NewMessageService(st, conversationService, bot, logger)

	m := metrics.New()
	cookies := auth.CookieConfig{
		Secret:   cfg.SessionSecret,
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite(),
	}

	router := api.NewRouter(api.RouterDependencies{
		AuthHandler:         handlers.NewAuthHandler(authService, cookies, m, logger),
		ConversationHandler: handlers.NewConversationHandler(conversationService, m, logger),
		MessageHandler:      handlers.NewMessageHandler(messageService, m, logger),
		Sessions:            authService,
		Cookies:             cookies,
		Store:               st,
		Metrics:             m,
		Logger:              logger,
		AllowedOrigins:      cfg.AllowedOrigins,
		RequestTimeout:      cfg.RequestTimeout,
	})

	// 5. Configure and Start HTTP Server
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Server listening", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Could not listen", zap.String("port", cfg.HTTPPort), zap.Error(err))
		}
	}()

	<-stopChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server graceful shutdown failed", zap.Error(err))
		return
	}
	logger.Info("Server shutdown complete.")
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case "sqlite":
		st, err := sqlite.New(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("SQLite store initialized", zap.String("path", cfg.DatabaseURL))
		return st, nil
	default:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Database connection pool established and pinged successfully.")
		return postgres.NewPostgresStore(pool, logger), nil
	}
}
