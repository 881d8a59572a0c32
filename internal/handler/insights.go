package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/team-pulse/internal/apperror"
	"github.com/sakif/team-pulse/internal/auth"
	"github.com/sakif/team-pulse/internal/model"
	"github.com/sakif/team-pulse/internal/service"
)

// InsightsHandler serves the manager-only engagement summary.
//
//	GET /insights → bearer token, role = manager
type InsightsHandler struct {
	insights *service.InsightsService
	auth     *service.AuthService
	logger   *slog.Logger
}

// NewInsightsHandler creates an InsightsHandler.
func NewInsightsHandler(insights *service.InsightsService, authSvc *service.AuthService, logger *slog.Logger) *InsightsHandler {
	return &InsightsHandler{insights: insights, auth: authSvc, logger: logger}
}

// HandleGet runs the aggregator and returns the summary.
//
// HTTP: GET /insights
//
// The middleware already authenticated the token; the role check happens
// here against the caller's CURRENT user document, so demoting a manager
// takes effect on their next request, not at token expiry. A valid token
// whose user has since been deleted is treated as unauthenticated.
func (h *InsightsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Message: "valid authentication required", Error: "unauthorized",
		})
		return
	}

	caller, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	if caller.Role != model.RoleManager {
		writeError(w, apperror.Forbidden("manager role required"))
		return
	}

	summary, err := h.insights.Summary(r.Context())
	if err != nil {
		h.logger.Error("insights computation failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
