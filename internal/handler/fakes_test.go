package handler_test

// In-memory repository fakes for the handler tests. The handlers take
// concrete services, so each test builds the real service stack on top of
// these and drives it through httptest.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/team-pulse/internal/apperror"
	"github.com/sakif/team-pulse/internal/auth"
	"github.com/sakif/team-pulse/internal/model"
	"github.com/sakif/team-pulse/internal/repository"
	"github.com/sakif/team-pulse/internal/service"
)

type memoryStore struct {
	users     map[string]*model.User
	questions []*model.Question
	answers   []*model.Answer
	nextID    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[string]*model.User), nextID: 1}
}

var (
	_ repository.UserRepository     = (*memoryStore)(nil)
	_ repository.QuestionRepository = questionAdapter{}
	_ repository.AnswerRepository   = answerAdapter{}
)

func (m *memoryStore) id(prefix string) string {
	id := fmt.Sprintf("%s-%03d", prefix, m.nextID)
	m.nextID++
	return id
}

// addUser seeds a user directly and returns its ID.
func (m *memoryStore) addUser(name, email, role string) string {
	id := m.id("user")
	m.users[id] = &model.User{
		ID: id, Name: name, Email: email, Role: role,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	return id
}

func (m *memoryStore) addQuestion(authorID, title string, tags ...string) string {
	id := m.id("question")
	m.questions = append(m.questions, &model.Question{
		ID: id, Title: title, Description: "details", Tags: tags, CreatedBy: authorID,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	return id
}

func (m *memoryStore) addAnswer(authorID, questionID string) string {
	id := m.id("answer")
	m.answers = append(m.answers, &model.Answer{
		ID: id, Text: "an answer", QuestionID: questionID, CreatedBy: authorID,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	})
	return id
}

func (m *memoryStore) Create(ctx context.Context, user *model.User) error {
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return apperror.Conflict("a user with this email already exists")
		}
	}
	user.ID = m.id("user")
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (m *memoryStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *memoryStore) GetByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	var users []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (m *memoryStore) UpsertByGitHubID(ctx context.Context, user *model.User) error {
	for _, existing := range m.users {
		if existing.GitHubID == user.GitHubID && existing.GitHubID != 0 {
			existing.Name = user.Name
			existing.Email = user.Email
			existing.AvatarURL = user.AvatarURL
			*user = *existing
			return nil
		}
	}
	return m.Create(ctx, user)
}

func (m *memoryStore) GetQuestionByID(id string) (*model.Question, bool) {
	for _, q := range m.questions {
		if q.ID == id {
			return q, true
		}
	}
	return nil, false
}

// Create on the question interface would clash with the user repository's
// Create, so questions and answers go through small adapters instead.

func (m *memoryStore) questionRepo() repository.QuestionRepository { return questionAdapter{m} }
func (m *memoryStore) answerRepo() repository.AnswerRepository     { return answerAdapter{m} }

type questionAdapter struct{ store *memoryStore }

func (a questionAdapter) Create(ctx context.Context, q *model.Question) error {
	q.ID = a.store.id("question")
	q.CreatedAt = time.Now()
	q.UpdatedAt = time.Now()
	copied := *q
	a.store.questions = append(a.store.questions, &copied)
	return nil
}

func (a questionAdapter) GetByID(ctx context.Context, id string) (*model.Question, error) {
	q, ok := a.store.GetQuestionByID(id)
	if !ok {
		return nil, apperror.NotFound("question", id)
	}
	copied := *q
	return &copied, nil
}

func (a questionAdapter) List(ctx context.Context, filter repository.QuestionFilter) ([]model.Question, int64, error) {
	var matched []model.Question
	for _, q := range a.store.questions {
		if filter.Tag != "" && !containsTag(q.Tags, filter.Tag) {
			continue
		}
		if filter.Search != "" {
			hay := strings.ToLower(q.Title + " " + q.Description + " " + strings.Join(q.Tags, " "))
			if !strings.Contains(hay, strings.ToLower(filter.Search)) {
				continue
			}
		}
		matched = append(matched, *q)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := int64(len(matched))
	if filter.Offset >= len(matched) {
		return []model.Question{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (a questionAdapter) ListAll(ctx context.Context) ([]model.Question, error) {
	all := make([]model.Question, 0, len(a.store.questions))
	for _, q := range a.store.questions {
		all = append(all, *q)
	}
	return all, nil
}

type answerAdapter struct{ store *memoryStore }

func (a answerAdapter) Create(ctx context.Context, ans *model.Answer) error {
	ans.ID = a.store.id("answer")
	ans.CreatedAt = time.Now()
	ans.UpdatedAt = time.Now()
	copied := *ans
	a.store.answers = append(a.store.answers, &copied)
	return nil
}

func (a answerAdapter) ListByQuestion(ctx context.Context, questionID string) ([]model.Answer, error) {
	var result []model.Answer
	for _, ans := range a.store.answers {
		if ans.QuestionID == questionID {
			result = append(result, *ans)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (a answerAdapter) ListAll(ctx context.Context) ([]model.Answer, error) {
	all := make([]model.Answer, 0, len(a.store.answers))
	for _, ans := range a.store.answers {
		all = append(all, *ans)
	}
	return all, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// fixture wires the full service stack over the in-memory store.
type fixture struct {
	store    *memoryStore
	tokens   *auth.TokenService
	authSvc  *service.AuthService
	qaSvc    *service.QAService
	insights *service.InsightsService
}

// discardLogger logs at error level only, so test output stays quiet.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemoryStore()
	logger := discardLogger()

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789")
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest(4)

	questions := store.questionRepo()
	answers := store.answerRepo()

	return &fixture{
		store:    store,
		tokens:   tokens,
		authSvc:  service.NewAuthService(store, tokens, passwords, logger),
		qaSvc:    service.NewQAService(questions, answers, store, logger),
		insights: service.NewInsightsService(questions, answers, store, logger),
	}
}
