package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/sakif/team-pulse/internal/model"
	"github.com/sakif/team-pulse/internal/repository"
)

// topContributorCount is how many contributors the summary ranks.
const topContributorCount = 3

// Contributor is one ranked entry in the insights summary.
type Contributor struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	TotalActivity int    `json:"totalActivity"` // questions asked + answers given
}

// InsightsSummary is the team engagement report served to managers.
type InsightsSummary struct {
	TotalQuestionsAsked       int           `json:"totalQuestionsAsked"`
	TopContributors           []Contributor `json:"topContributors"`
	AverageAnswersPerQuestion float64       `json:"averageAnswersPerQuestion"`
}

// activityRecord accumulates one user's counts while grouping. Built fresh
// on every call, discarded with the result — nothing here is cached.
type activityRecord struct {
	userID        string
	questionCount int
	answerCount   int
}

func (a *activityRecord) total() int {
	return a.questionCount + a.answerCount
}

// ComputeInsights computes the engagement summary from a snapshot of all
// questions, answers, and the users resolving their authors.
//
// It is a pure function: no I/O, no side effects, deterministic for a given
// input. The steps:
//
//  1. Group questions and answers by author ID and count each group. A user
//     with zero activity never enters the grouping, so they can never rank.
//  2. Union the author IDs; total activity = question count + answer count.
//  3. Resolve each ID against users. IDs with no matching user (the author
//     was deleted) are silently dropped from the ranking — deliberate
//     policy: an orphan's activity vanishes rather than being attributed to
//     a placeholder.
//  4. Sort by total activity descending; ties break on ascending user ID,
//     which makes the order fully deterministic — repeated runs over the
//     same snapshot produce the same result, ties included.
//  5. Keep the top 3.
//
// totalQuestionsAsked counts ALL questions, including ones whose author no
// longer resolves. averageAnswersPerQuestion is answers/questions rounded to
// 2 decimal places, and defined as 0 when there are no questions.
func ComputeInsights(questions []model.Question, answers []model.Answer, users []model.User) InsightsSummary {
	records := make(map[string]*activityRecord)
	grab := func(userID string) *activityRecord {
		rec, ok := records[userID]
		if !ok {
			rec = &activityRecord{userID: userID}
			records[userID] = rec
		}
		return rec
	}

	for _, q := range questions {
		grab(q.CreatedBy).questionCount++
	}
	for _, a := range answers {
		grab(a.CreatedBy).answerCount++
	}

	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	ranked := make([]*activityRecord, 0, len(records))
	for id, rec := range records {
		if _, ok := byID[id]; !ok {
			continue // orphaned author — excluded by policy
		}
		ranked = append(ranked, rec)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].total() != ranked[j].total() {
			return ranked[i].total() > ranked[j].total()
		}
		return ranked[i].userID < ranked[j].userID
	})

	if len(ranked) > topContributorCount {
		ranked = ranked[:topContributorCount]
	}

	// Always a non-nil slice so the JSON field is [] rather than null.
	top := make([]Contributor, 0, len(ranked))
	for _, rec := range ranked {
		u := byID[rec.userID]
		top = append(top, Contributor{
			Name:          u.Name,
			Email:         u.Email,
			TotalActivity: rec.total(),
		})
	}

	avg := 0.0
	if len(questions) > 0 {
		avg = math.Round(float64(len(answers))/float64(len(questions))*100) / 100
	}

	return InsightsSummary{
		TotalQuestionsAsked:       len(questions),
		TopContributors:           top,
		AverageAnswersPerQuestion: avg,
	}
}

// InsightsService fetches the snapshot and runs the computation.
type InsightsService struct {
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	users     repository.UserRepository
	logger    *slog.Logger
}

// NewInsightsService creates an InsightsService.
func NewInsightsService(
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *InsightsService {
	return &InsightsService{
		questions: questions,
		answers:   answers,
		users:     users,
		logger:    logger,
	}
}

// Summary fetches all questions, all answers, and the users referenced by
// either, then computes the summary in memory.
//
// The three fetches are separate reads with no transactional isolation: a
// write landing between them may show up in one count and not another. That
// read skew is accepted for an analytics view. Empty collections are not an
// error — the result is simply zeroed. Any fetch failure is wrapped and
// propagates; the handler turns it into a generic 500, never a partial
// summary.
func (s *InsightsService) Summary(ctx context.Context) (*InsightsSummary, error) {
	questions, err := s.questions.ListAll(ctx)
	if err != nil {
		s.logger.Error("insights: loading questions failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("insights: loading questions: %w", err)
	}

	answers, err := s.answers.ListAll(ctx)
	if err != nil {
		s.logger.Error("insights: loading answers failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("insights: loading answers: %w", err)
	}

	seen := make(map[string]struct{})
	authorIDs := []string{}
	for _, q := range questions {
		if _, ok := seen[q.CreatedBy]; !ok {
			seen[q.CreatedBy] = struct{}{}
			authorIDs = append(authorIDs, q.CreatedBy)
		}
	}
	for _, a := range answers {
		if _, ok := seen[a.CreatedBy]; !ok {
			seen[a.CreatedBy] = struct{}{}
			authorIDs = append(authorIDs, a.CreatedBy)
		}
	}

	users, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		s.logger.Error("insights: resolving users failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("insights: resolving users: %w", err)
	}

	summary := ComputeInsights(questions, answers, users)
	return &summary, nil
}
