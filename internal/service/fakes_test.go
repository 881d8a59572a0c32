package service

// In-memory fakes for the repository interfaces, shared by the service
// tests in this package. Fakes (not a mock framework) keep the tests
// dependency-free and readable — what each fake does is right here.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sakif/team-pulse/internal/apperror"
	"github.com/sakif/team-pulse/internal/model"
	"github.com/sakif/team-pulse/internal/repository"
)

// testLogger logs at error level only, so test output stays quiet.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- users ---

type fakeUserRepo struct {
	users  map[string]*model.User // keyed by internal ID
	nextID int

	// set to a non-nil error to simulate a database failure
	createErr   error
	getByIDErr  error
	getByIDsErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User), nextID: 1}
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// addUser seeds a user directly, bypassing validation. Returns the ID.
func (f *fakeUserRepo) addUser(name, email, role string) string {
	id := fmt.Sprintf("user-%03d", f.nextID)
	f.nextID++
	f.users[id] = &model.User{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return id
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return apperror.Conflict("a user with this email already exists")
		}
	}
	user.ID = fmt.Sprintf("user-%03d", f.nextID)
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if f.getByIDsErr != nil {
		return nil, f.getByIDsErr
	}
	var users []model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) UpsertByGitHubID(ctx context.Context, user *model.User) error {
	for _, existing := range f.users {
		if existing.GitHubID == user.GitHubID && existing.GitHubID != 0 {
			existing.Name = user.Name
			existing.Email = user.Email
			existing.AvatarURL = user.AvatarURL
			*user = *existing
			return nil
		}
	}
	return f.Create(ctx, user)
}

// --- questions ---

type fakeQuestionRepo struct {
	questions []*model.Question
	nextID    int

	createErr  error
	listAllErr error
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{nextID: 1}
}

var _ repository.QuestionRepository = (*fakeQuestionRepo)(nil)

func (f *fakeQuestionRepo) addQuestion(authorID, title string, tags ...string) string {
	id := fmt.Sprintf("question-%03d", f.nextID)
	f.nextID++
	f.questions = append(f.questions, &model.Question{
		ID:        id,
		Title:     title,
		Tags:      tags,
		CreatedBy: authorID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	return id
}

func (f *fakeQuestionRepo) Create(ctx context.Context, q *model.Question) error {
	if f.createErr != nil {
		return f.createErr
	}
	q.ID = fmt.Sprintf("question-%03d", f.nextID)
	f.nextID++
	q.CreatedAt = time.Now()
	q.UpdatedAt = time.Now()
	copied := *q
	f.questions = append(f.questions, &copied)
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	for _, q := range f.questions {
		if q.ID == id {
			copied := *q
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("question", id)
}

func (f *fakeQuestionRepo) matches(q *model.Question, filter repository.QuestionFilter) bool {
	if filter.Tag != "" {
		found := false
		for _, tag := range q.Tags {
			if tag == filter.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		hay := strings.ToLower(q.Title + " " + q.Description + " " + strings.Join(q.Tags, " "))
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

func (f *fakeQuestionRepo) List(ctx context.Context, filter repository.QuestionFilter) ([]model.Question, int64, error) {
	var matched []model.Question
	for _, q := range f.questions {
		if f.matches(q, filter) {
			matched = append(matched, *q)
		}
	}
	// Newest first, like the real store.
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

func (f *fakeQuestionRepo) ListAll(ctx context.Context) ([]model.Question, error) {
	if f.listAllErr != nil {
		return nil, f.listAllErr
	}
	all := make([]model.Question, 0, len(f.questions))
	for _, q := range f.questions {
		all = append(all, *q)
	}
	return all, nil
}

// --- answers ---

type fakeAnswerRepo struct {
	answers []*model.Answer
	nextID  int

	createErr  error
	listAllErr error
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{nextID: 1}
}

var _ repository.AnswerRepository = (*fakeAnswerRepo)(nil)

func (f *fakeAnswerRepo) addAnswer(authorID, questionID string) string {
	id := fmt.Sprintf("answer-%03d", f.nextID)
	f.nextID++
	f.answers = append(f.answers, &model.Answer{
		ID:         id,
		Text:       "an answer",
		QuestionID: questionID,
		CreatedBy:  authorID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	})
	return id
}

func (f *fakeAnswerRepo) Create(ctx context.Context, a *model.Answer) error {
	if f.createErr != nil {
		return f.createErr
	}
	a.ID = fmt.Sprintf("answer-%03d", f.nextID)
	f.nextID++
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	copied := *a
	f.answers = append(f.answers, &copied)
	return nil
}

func (f *fakeAnswerRepo) ListByQuestion(ctx context.Context, questionID string) ([]model.Answer, error) {
	var result []model.Answer
	for _, a := range f.answers {
		if a.QuestionID == questionID {
			result = append(result, *a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeAnswerRepo) ListAll(ctx context.Context) ([]model.Answer, error) {
	if f.listAllErr != nil {
		return nil, f.listAllErr
	}
	all := make([]model.Answer, 0, len(f.answers))
	for _, a := range f.answers {
		all = append(all, *a)
	}
	return all, nil
}
