package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/team-pulse/internal/auth"
	"github.com/sakif/team-pulse/internal/service"
)

// AnswerHandler exposes answer creation and listing, both keyed by the
// parent question.
//
//	POST /answers/{questionId} → create (bearer token)
//	GET  /answers/{questionId} → list for a question (public)
type AnswerHandler struct {
	qa     *service.QAService
	logger *slog.Logger
}

// NewAnswerHandler creates an AnswerHandler.
func NewAnswerHandler(qa *service.QAService, logger *slog.Logger) *AnswerHandler {
	return &AnswerHandler{qa: qa, logger: logger}
}

// createAnswerRequest is the POST /answers/{questionId} body.
type createAnswerRequest struct {
	Text string `json:"text"`
}

// HandleCreate creates an answer to the question in the path.
//
// HTTP: POST /answers/{questionId}
// Body: {"text": "..."}
//
// A non-existent question yields 404 and nothing is written.
func (h *AnswerHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Message: "valid authentication required", Error: "unauthorized",
		})
		return
	}

	var req createAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "invalid JSON body", Error: "validation_error",
		})
		return
	}

	answer, err := h.qa.CreateAnswer(r.Context(), userID, r.PathValue("questionId"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Answer created successfully",
		"answer":  answer,
	})
}

// HandleList lists all answers for a question, newest first.
//
// HTTP: GET /answers/{questionId}
func (h *AnswerHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	answers, err := h.qa.ListAnswers(r.Context(), r.PathValue("questionId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"answers": answers})
}
