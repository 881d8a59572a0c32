package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sakif/team-pulse/internal/apperror"
	"github.com/sakif/team-pulse/internal/model"
	"github.com/sakif/team-pulse/internal/repository"
)

// Validation limits for user-submitted content.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 10000
	MaxAnswerLength      = 10000
	MaxTags              = 10
	MaxTagLength         = 40

	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// AuthorRef is the slice of a user record that rides along with questions
// and answers in responses — enough for the client to show "asked by".
type AuthorRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// QuestionWithAuthor is a question plus its resolved author. Author is nil
// when the authoring user has since been deleted; the question itself is
// still shown (no cascading deletes).
type QuestionWithAuthor struct {
	model.Question
	Author *AuthorRef `json:"author,omitempty"`
}

// AnswerWithAuthor is an answer plus its resolved author.
type AnswerWithAuthor struct {
	model.Answer
	Author *AuthorRef `json:"author,omitempty"`
}

// ListQuery holds the caller's search/pagination parameters, pre-clamping.
type ListQuery struct {
	Search string
	Tag    string
	Page   int
	Limit  int
}

// QuestionPage is one page of a question listing plus the pagination
// metadata the client needs to render a pager.
type QuestionPage struct {
	Questions   []QuestionWithAuthor `json:"questions"`
	TotalPages  int                  `json:"totalPages"`
	CurrentPage int                  `json:"currentPage"`
	Total       int64                `json:"total"`
}

// QAService handles questions and answers: validated inserts and
// filtered/paginated reads. No state machine, no conflict resolution — the
// store's native insert semantics are enough.
type QAService struct {
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	users     repository.UserRepository
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
}

// NewQAService creates a QAService.
//
// All user-supplied text passes through bluemonday's strict policy before it
// is stored, so a stored document can never carry markup into the SPA. The
// policy is stateless and safe for concurrent use.
func NewQAService(
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *QAService {
	return &QAService{
		questions: questions,
		answers:   answers,
		users:     users,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

// clean trims and HTML-strips one field of user input.
func (s *QAService) clean(text string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(strings.TrimSpace(text)))
}

// CreateQuestion validates and stores a new question authored by authorID
// (the authenticated caller — handlers stamp it from the request context).
func (s *QAService) CreateQuestion(ctx context.Context, authorID, title, description string, tags []string) (*QuestionWithAuthor, error) {
	title = s.clean(title)
	description = s.clean(description)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if description == "" {
		return nil, apperror.ValidationFailed("description", "description is required")
	}
	if len(description) > MaxDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}

	cleanTags, err := s.cleanTags(tags)
	if err != nil {
		return nil, err
	}

	question := &model.Question{
		Title:       title,
		Description: description,
		Tags:        cleanTags,
		CreatedBy:   authorID,
	}
	if err := s.questions.Create(ctx, question); err != nil {
		s.logger.Error("failed to create question",
			slog.String("author", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating question: %w", err)
	}

	s.logger.Info("question created",
		slog.String("id", question.ID),
		slog.String("author", authorID),
	)

	authors := s.resolveAuthors(ctx, []string{authorID})
	return &QuestionWithAuthor{Question: *question, Author: authors[authorID]}, nil
}

// cleanTags normalizes a tag set: trim, strip markup, drop empties, cap the
// count. Tags are matched exactly on listing, so no case folding — "Go" and
// "go" are distinct tags, as they were for the SPA.
func (s *QAService) cleanTags(tags []string) ([]string, error) {
	cleaned := []string{}
	for _, tag := range tags {
		tag = s.clean(tag)
		if tag == "" {
			continue
		}
		if len(tag) > MaxTagLength {
			return nil, apperror.ValidationFailed("tags",
				fmt.Sprintf("tags must be %d characters or less", MaxTagLength))
		}
		cleaned = append(cleaned, tag)
	}
	if len(cleaned) > MaxTags {
		return nil, apperror.ValidationFailed("tags",
			fmt.Sprintf("at most %d tags are allowed", MaxTags))
	}
	return cleaned, nil
}

// ListQuestions returns one page of questions matching the query, newest
// first, with authors resolved in a single batched lookup.
func (s *QAService) ListQuestions(ctx context.Context, q ListQuery) (*QuestionPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}

	questions, total, err := s.questions.List(ctx, repository.QuestionFilter{
		Search: strings.TrimSpace(q.Search),
		Tag:    strings.TrimSpace(q.Tag),
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	})
	if err != nil {
		s.logger.Error("failed to list questions", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing questions: %w", err)
	}

	ids := make([]string, 0, len(questions))
	for _, question := range questions {
		ids = append(ids, question.CreatedBy)
	}
	authors := s.resolveAuthors(ctx, ids)

	enriched := make([]QuestionWithAuthor, 0, len(questions))
	for _, question := range questions {
		enriched = append(enriched, QuestionWithAuthor{
			Question: question,
			Author:   authors[question.CreatedBy],
		})
	}

	totalPages := int(total) / q.Limit
	if int(total)%q.Limit != 0 {
		totalPages++
	}

	return &QuestionPage{
		Questions:   enriched,
		TotalPages:  totalPages,
		CurrentPage: q.Page,
		Total:       total,
	}, nil
}

// GetQuestion retrieves a single question with its author.
// Returns apperror.ErrNotFound if it doesn't exist.
func (s *QAService) GetQuestion(ctx context.Context, id string) (*QuestionWithAuthor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "question ID is required")
	}

	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	authors := s.resolveAuthors(ctx, []string{question.CreatedBy})
	return &QuestionWithAuthor{Question: *question, Author: authors[question.CreatedBy]}, nil
}

// CreateAnswer validates and stores a new answer to questionID.
//
// The parent question must exist: a missing question returns ErrNotFound and
// no answer document is written. The existence check and the insert are not
// atomic — a question deleted in between leaves an orphaned answer, which
// the read paths already tolerate.
func (s *QAService) CreateAnswer(ctx context.Context, authorID, questionID, text string) (*AnswerWithAuthor, error) {
	questionID = strings.TrimSpace(questionID)
	if questionID == "" {
		return nil, apperror.ValidationFailed("questionId", "question ID is required")
	}

	text = s.clean(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "answer text is required")
	}
	if len(text) > MaxAnswerLength {
		return nil, apperror.ValidationFailed("text",
			fmt.Sprintf("answer must be %d characters or less", MaxAnswerLength))
	}

	if _, err := s.questions.GetByID(ctx, questionID); err != nil {
		return nil, err
	}

	answer := &model.Answer{
		Text:       text,
		QuestionID: questionID,
		CreatedBy:  authorID,
	}
	if err := s.answers.Create(ctx, answer); err != nil {
		s.logger.Error("failed to create answer",
			slog.String("questionID", questionID),
			slog.String("author", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating answer: %w", err)
	}

	s.logger.Info("answer created",
		slog.String("id", answer.ID),
		slog.String("questionID", questionID),
	)

	authors := s.resolveAuthors(ctx, []string{authorID})
	return &AnswerWithAuthor{Answer: *answer, Author: authors[authorID]}, nil
}

// ListAnswers returns all answers for a question, newest first, with
// authors resolved. The parent question must exist (404 otherwise).
func (s *QAService) ListAnswers(ctx context.Context, questionID string) ([]AnswerWithAuthor, error) {
	questionID = strings.TrimSpace(questionID)
	if questionID == "" {
		return nil, apperror.ValidationFailed("questionId", "question ID is required")
	}

	if _, err := s.questions.GetByID(ctx, questionID); err != nil {
		return nil, err
	}

	answers, err := s.answers.ListByQuestion(ctx, questionID)
	if err != nil {
		s.logger.Error("failed to list answers",
			slog.String("questionID", questionID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing answers: %w", err)
	}

	ids := make([]string, 0, len(answers))
	for _, answer := range answers {
		ids = append(ids, answer.CreatedBy)
	}
	authors := s.resolveAuthors(ctx, ids)

	enriched := make([]AnswerWithAuthor, 0, len(answers))
	for _, answer := range answers {
		enriched = append(enriched, AnswerWithAuthor{
			Answer: answer,
			Author: authors[answer.CreatedBy],
		})
	}
	return enriched, nil
}

// resolveAuthors batch-fetches the given user IDs and returns them keyed by
// ID. Unresolvable IDs (deleted users) are simply missing from the map —
// callers render those entries without an author. Lookup failures degrade
// the same way rather than failing the whole read.
func (s *QAService) resolveAuthors(ctx context.Context, ids []string) map[string]*AuthorRef {
	unique := make(map[string]struct{}, len(ids))
	distinct := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, seen := unique[id]; seen || id == "" {
			continue
		}
		unique[id] = struct{}{}
		distinct = append(distinct, id)
	}

	result := make(map[string]*AuthorRef, len(distinct))
	if len(distinct) == 0 {
		return result
	}

	users, err := s.users.GetByIDs(ctx, distinct)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("author resolution failed", slog.String("error", err.Error()))
		}
		return result
	}
	for _, u := range users {
		result[u.ID] = &AuthorRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return result
}
