// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: main.go hands it a Config and a logger, and
// New assembles the whole dependency chain in one place —
//
//	mongodb.DB → repositories → services → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, the router gets handlers. Nothing
// below this package knows how its dependencies are constructed.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/team-pulse/internal/auth"
	"github.com/sakif/team-pulse/internal/handler"
	"github.com/sakif/team-pulse/internal/middleware"
	"github.com/sakif/team-pulse/internal/repository/mongodb"
	"github.com/sakif/team-pulse/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port         int
	MongoURI     string
	MongoDB      string
	JWTSecret    string
	ClientOrigin string // SPA origin, used for CORS and the OAuth redirect

	// GitHub OAuth is optional; the routes are only registered when the
	// client credentials are present.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the database handle. The database is closed
// during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *mongodb.DB
}

// New connects to MongoDB and wires the full dependency chain.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		_ = db.Close(context.Background())
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// ROUTE STRUCTURE:
//
//	POST /auth/register          → create account (public)
//	POST /auth/login             → authenticate (public)
//	GET  /auth/profile           → caller identity (bearer)
//	GET  /auth/github/login      → OAuth redirect (public, optional)
//	GET  /auth/github/callback   → OAuth completion (public, optional)
//	POST /questions              → create question (bearer)
//	GET  /questions              → list/search questions (public)
//	GET  /questions/{id}         → fetch one question (public)
//	POST /answers/{questionId}   → create answer (bearer)
//	GET  /answers/{questionId}   → list answers (public)
//	GET  /insights               → engagement summary (bearer + manager)
//	GET  /health                 → liveness (public)
//
// Middleware order matters: RequestID and RealIP first so the logger sees
// them, Recoverer before the logger so a panic still produces a log line
// with a 500 status.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The SPA runs on a different origin during development, so the API
	// must answer preflights. Authorization is in the allowed headers list
	// because every protected call carries the bearer token there.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.config.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db.Users, tokens, passwords, s.logger)
	qaService := service.NewQAService(s.db.Questions, s.db.Answers, s.db.Users, s.logger)
	insightsService := service.NewInsightsService(s.db.Questions, s.db.Answers, s.db.Users, s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authHandler := handler.NewAuthHandler(authService, github, s.config.ClientOrigin, s.logger)
	questionHandler := handler.NewQuestionHandler(qaService, s.logger)
	answerHandler := handler.NewAnswerHandler(qaService, s.logger)
	insightsHandler := handler.NewInsightsHandler(insightsService, authService, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Get("/health", handleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.With(requireAuth).Get("/profile", authHandler.HandleProfile)

		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		} else {
			s.logger.Info("GitHub OAuth not configured — OAuth routes disabled")
		}
	})

	s.router.Route("/questions", func(r chi.Router) {
		r.Get("/", questionHandler.HandleList)
		r.Get("/{id}", questionHandler.HandleGet)
		r.With(requireAuth).Post("/", questionHandler.HandleCreate)
	})

	s.router.Route("/answers", func(r chi.Router) {
		r.Get("/{questionId}", answerHandler.HandleList)
		r.With(requireAuth).Post("/{questionId}", answerHandler.HandleCreate)
	})

	s.router.With(requireAuth).Get("/insights", insightsHandler.HandleGet)

	return nil
}

// handleHealth is the liveness probe.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"message":"Team Pulse API is running"}`))
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, close the Mongo pool last.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.MongoDB),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.db.Close(closeCtx); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	return nil
}
