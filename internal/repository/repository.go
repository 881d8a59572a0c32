// Package repository declares the storage interfaces the service layer
// depends on. Services are written against these interfaces; the mongodb
// subpackage provides the real implementation and the tests provide fakes.
package repository

import (
	"context"

	"github.com/sakif/team-pulse/internal/model"
)

// QuestionFilter describes a filtered, paginated question listing.
//
// Search is matched case-insensitively as a substring of title, description,
// or any tag. Tag is an exact match against the tags array. Zero values mean
// "no filter". Limit/Offset are assumed sane — the service clamps them.
type QuestionFilter struct {
	Search string
	Tag    string
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByIDs returns the users whose IDs appear in ids. IDs with no
	// matching document are simply absent from the result — callers decide
	// how to treat unresolved references.
	GetByIDs(ctx context.Context, ids []string) ([]model.User, error)
	// UpsertByGitHubID inserts the user on first OAuth login and refreshes
	// profile fields on subsequent logins, keyed by user.GitHubID.
	UpsertByGitHubID(ctx context.Context, user *model.User) error
}

type QuestionRepository interface {
	Create(ctx context.Context, question *model.Question) error
	GetByID(ctx context.Context, id string) (*model.Question, error)
	// List returns one page of questions (newest first) plus the total
	// number of documents matching the filter, for pagination metadata.
	List(ctx context.Context, f QuestionFilter) ([]model.Question, int64, error)
	// ListAll returns every question. Used by the insights snapshot fetch.
	ListAll(ctx context.Context) ([]model.Question, error)
}

type AnswerRepository interface {
	Create(ctx context.Context, answer *model.Answer) error
	ListByQuestion(ctx context.Context, questionID string) ([]model.Answer, error)
	// ListAll returns every answer. Used by the insights snapshot fetch.
	ListAll(ctx context.Context) ([]model.Answer, error)
}
