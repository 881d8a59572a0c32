package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/team-pulse/internal/auth"
	"github.com/sakif/team-pulse/internal/model"
	"github.com/sakif/team-pulse/internal/service"
)

// AuthHandler exposes registration, login, profile, and the optional GitHub
// OAuth flow.
//
//	POST /auth/register        → create account, return token + user
//	POST /auth/login           → authenticate, return token + user
//	GET  /auth/profile         → caller's identity and role (bearer token)
//	GET  /auth/github/login    → redirect to GitHub (when configured)
//	GET  /auth/github/callback → complete OAuth, redirect to the SPA
type AuthHandler struct {
	auth         *service.AuthService
	github       *auth.GitHubProvider // nil when OAuth is not configured
	clientOrigin string               // SPA origin for the OAuth redirect
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil; the server only
// registers the OAuth routes when it isn't.
func NewAuthHandler(authSvc *service.AuthService, github *auth.GitHubProvider, clientOrigin string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:         authSvc,
		github:       github,
		clientOrigin: clientOrigin,
		logger:       logger,
	}
}

// credentialsRequest is the body for register and login. Register uses all
// four fields; login only email and password.
type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// authResponse is the success body for register and login.
type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /auth/register
// Body: {"name": "...", "email": "...", "password": "...", "role": "member"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "invalid JSON body", Error: "validation_error",
		})
		return
	}

	result, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully",
		Token:   result.Token,
		User:    result.User,
	})
}

// HandleLogin authenticates an email/password pair.
//
// HTTP: POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "invalid JSON body", Error: "validation_error",
		})
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    result.User,
	})
}

// HandleProfile returns the authenticated caller's identity and role.
//
// HTTP: GET /auth/profile
// Auth: bearer token (RequireAuth puts the userID in the context)
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Should never happen behind RequireAuth, but be safe.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Message: "valid authentication required", Error: "unauthorized",
		})
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("profile lookup failed", slog.String("userID", userID))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]*model.User{"user": user})
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// The random state value goes into a short-lived HttpOnly cookie; the
// callback checks that GitHub echoed the same value back, which proves the
// flow started here (CSRF protection).
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// On success the browser is redirected to the SPA's login page with the
// issued JWT in the URL fragment — fragments never reach servers or logs,
// and the SPA moves the token into storage immediately.
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state check failed")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "invalid OAuth state", Error: "validation_error",
		})
		return
	}

	// Single-use — clear it regardless of what happens next.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, h.clientOrigin+"/login?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "missing OAuth code", Error: "validation_error",
		})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Message: "authentication failed", Error: "internal_error",
		})
		return
	}

	result, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("oauth callback: login failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Message: "authentication failed", Error: "internal_error",
		})
		return
	}

	http.Redirect(w, r, h.clientOrigin+"/login#token="+result.Token, http.StatusSeeOther)
}
