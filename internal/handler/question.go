package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/team-pulse/internal/auth"
	"github.com/sakif/team-pulse/internal/service"
)

// QuestionHandler exposes question creation, search, and retrieval.
//
//	POST /questions      → create (bearer token)
//	GET  /questions      → list/search, paginated (public)
//	GET  /questions/{id} → fetch one (public)
type QuestionHandler struct {
	qa     *service.QAService
	logger *slog.Logger
}

// NewQuestionHandler creates a QuestionHandler.
func NewQuestionHandler(qa *service.QAService, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{qa: qa, logger: logger}
}

// createQuestionRequest is the POST /questions body.
type createQuestionRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// HandleCreate creates a question authored by the authenticated caller.
//
// HTTP: POST /questions
// Body: {"title": "...", "description": "...", "tags": ["go", "mongo"]}
//
// The author is never taken from the body — identity comes from the
// validated token in the request context and is passed explicitly into the
// service.
func (h *QuestionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Message: "valid authentication required", Error: "unauthorized",
		})
		return
	}

	var req createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: "invalid JSON body", Error: "validation_error",
		})
		return
	}

	question, err := h.qa.CreateQuestion(r.Context(), userID, req.Title, req.Description, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Question created successfully",
		"question": question,
	})
}

// HandleList lists questions with search and pagination.
//
// HTTP: GET /questions?search=deploy&tag=go&page=2&limit=20
//
// search matches title/description/tags case-insensitively as a substring;
// tag is an exact match. Out-of-range page/limit values are clamped by the
// service, never rejected.
func (h *QuestionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.qa.ListQuestions(r.Context(), service.ListQuery{
		Search: q.Get("search"),
		Tag:    q.Get("tag"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGet fetches a single question.
//
// HTTP: GET /questions/{id}
func (h *QuestionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	question, err := h.qa.GetQuestion(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"question": question})
}
