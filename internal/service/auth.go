// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier split:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes MongoDB
//
// Services accept primitives and return domain models and apperror values;
// they know nothing about HTTP. Handlers translate both directions.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/team-pulse/internal/apperror"
	"github.com/sakif/team-pulse/internal/auth"
	"github.com/sakif/team-pulse/internal/model"
	"github.com/sakif/team-pulse/internal/repository"
)

const (
	MaxNameLength     = 100
	MinPasswordLength = 8
)

// AuthService handles registration, login, and profile lookup.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users     repository.UserRepository → read/write user documents
//   - tokens    *auth.TokenService        → issue/validate JWTs
//   - passwords *auth.PasswordService     → bcrypt hashing
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// build the {token, user} response in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account and signs the caller in.
//
// Role defaults to "member" when empty; "manager" is accepted so a team can
// bootstrap its own manager accounts (the original deployment model — there
// is no separate admin surface). Duplicate emails surface as ErrConflict
// from the repository's unique index, which is race-free, unlike a
// check-then-insert here.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if len(name) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("name must be %d characters or less", MaxNameLength))
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperror.ValidationFailed("email", "email is not valid")
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	if role == "" {
		role = model.RoleMember
	}
	if !model.ValidRole(role) {
		return nil, apperror.ValidationFailed("role", `role must be "member" or "manager"`)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password is not usable")
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create user",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("registering user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("role", user.Role),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates an email/password pair and issues a token.
//
// A wrong email and a wrong password return the same ErrUnauthorized with
// the same message — the response must not reveal which half was wrong
// (user enumeration). OAuth-only accounts have no password hash and take
// the same path.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("email", "email and password are required")
	}

	invalid := apperror.Unauthorized("invalid email or password")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, invalid
		}
		s.logger.Error("login lookup failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("logging in: %w", err)
	}

	if user.PasswordHash == "" {
		return nil, invalid
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, invalid
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID. Used by the
// profile handler after the middleware extracts the ID from the token, and
// by the insights handler for the role check.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetByID(ctx, id)
}

// LoginOrRegisterGitHub completes a GitHub OAuth callback: upserts the
// account keyed by the stable GitHub user ID and issues the same JWT a
// password login would. First-time OAuth users become members.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		Name:      ghUser.DisplayName(),
		Email:     strings.ToLower(strings.TrimSpace(ghUser.Email)),
		Role:      model.RoleMember,
		GitHubID:  ghUser.ID,
		AvatarURL: ghUser.AvatarURL,
	}

	if err := s.users.UpsertByGitHubID(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting github user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", ghUser.Login),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}
