package main

import (
	"errors"
	"os"
	"path/filepath"

	"legalchat-backend/internal/logging"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Applies the SQL files under migrations/ to the Postgres database in DATABASE_URL.
// Usage: migrate [up|down|version]. The sqlite backend creates its schema on open.
func main() {
	envLoaded := godotenv.Load() == nil

	logger, err := logging.New(os.Getenv("LOG_LEVEL"), "console")
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	if !envLoaded {
		logger.Info("No .env file found, using process environment")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Fatal("DATABASE_URL environment variable is required")
	}

	migrationsPath, err := findMigrationsDir()
	if err != nil {
		logger.Fatal("Cannot locate migrations", zap.Error(err))
	}
	logger.Info("Using migrations directory", zap.String("path", migrationsPath))

	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		logger.Fatal("Failed to initialise migrator", zap.Error(err))
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn("Error closing migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("Migration up failed", zap.Error(err))
		}
		logger.Info("Migration up successful")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("Migration down failed", zap.Error(err))
		}
		logger.Info("Migration down successful")
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			logger.Fatal("Failed to read schema version", zap.Error(err))
		}
		logger.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	default:
		logger.Fatal("Unknown command, expected up, down or version", zap.String("command", cmd))
	}
}

// findMigrationsDir walks up from the working directory, then tries paths next to the binary.
func findMigrationsDir() (string, error) {
	var candidates []string

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for current := cwd; ; {
		candidates = append(candidates, filepath.Join(current, "migrations"))
		parent := filepath.Dir(current)
		if parent == current || len(candidates) >= 6 {
			break
		}
		current = parent
	}

	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		candidates = append(candidates,
			filepath.Join(exeDir, "migrations"),
			filepath.Join(exeDir, "..", "migrations"),
		)
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return filepath.Abs(candidate)
		}
	}
	return "", errors.New("migrations directory not found")
}
