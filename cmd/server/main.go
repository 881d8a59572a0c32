// Package main is the entry point for the Team Pulse API server.
//
// The main package stays minimal — its job is to:
//  1. Read configuration from the environment (with .env support for dev)
//  2. Create the logger
//  3. Hand everything to internal/server and block until shutdown
//
// All actual logic lives in the imported packages.
package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sakif/team-pulse/internal/server"
)

func main() {
	// Load .env if present. Real environment variables win — godotenv only
	// fills in what isn't already set, so production config is untouched.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
		port = p
	}

	// JWT_SECRET must be a long random string. Generate one with:
	//   JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	cfg := server.Config{
		Port:         port,
		MongoURI:     envOr("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      envOr("MONGO_DB", "teampulse"),
		JWTSecret:    jwtSecret,
		ClientOrigin: envOr("CLIENT_ORIGIN", "http://localhost:5173"),

		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  os.Getenv("GITHUB_CALLBACK_URL"),
	}

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// envOr returns the environment variable's value or a default when unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// logLevel maps LOG_LEVEL to a slog level, defaulting to debug — this is a
// small team tool, and verbose logs have been worth more than quiet ones.
func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
