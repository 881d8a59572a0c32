package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/team-pulse/internal/apperror"
	"github.com/sakif/team-pulse/internal/model"
	"github.com/sakif/team-pulse/internal/repository"
)

// QuestionStore implements repository.QuestionRepository on the questions
// collection.
type QuestionStore struct {
	col *mongo.Collection
}

var _ repository.QuestionRepository = (*QuestionStore)(nil)

// Create inserts a new question, stamping ID and timestamps.
func (s *QuestionStore) Create(ctx context.Context, q *model.Question) error {
	now := time.Now().UTC()
	q.ID = xid.New().String()
	q.CreatedAt = now
	q.UpdatedAt = now
	if q.Tags == nil {
		q.Tags = []string{}
	}

	if _, err := s.col.InsertOne(ctx, q); err != nil {
		return fmt.Errorf("mongodb: inserting question: %w", err)
	}
	return nil
}

// GetByID retrieves one question.
// Returns apperror.ErrNotFound if it doesn't exist.
func (s *QuestionStore) GetByID(ctx context.Context, id string) (*model.Question, error) {
	var q model.Question
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("question", id)
		}
		return nil, fmt.Errorf("mongodb: getting question %s: %w", id, err)
	}
	return &q, nil
}

// questionQuery translates a QuestionFilter into a Mongo filter document.
//
// Search uses case-insensitive regexes with the pattern quoted, so the user
// input is matched as a literal substring — "c++" must not become a broken
// regex. Tag is an exact element match: {"tags": "go"} matches any document
// whose tags array contains "go".
func questionQuery(f repository.QuestionFilter) bson.M {
	query := bson.M{}

	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = []bson.M{
			{"title": re},
			{"description": re},
			{"tags": re},
		}
	}
	if f.Tag != "" {
		query["tags"] = f.Tag
	}

	return query
}

// List returns one page of questions matching the filter, newest first,
// along with the total match count for pagination metadata.
//
// The count and the page are two separate queries, so a write landing
// between them can skew the metadata by one. That is acceptable for a
// listing view and not worth a transaction.
func (s *QuestionStore) List(ctx context.Context, f repository.QuestionFilter) ([]model.Question, int64, error) {
	query := questionQuery(f)

	total, err := s.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("mongodb: counting questions: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))

	cur, err := s.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("mongodb: listing questions: %w", err)
	}
	defer cur.Close(ctx)

	questions := []model.Question{}
	if err := cur.All(ctx, &questions); err != nil {
		return nil, 0, fmt.Errorf("mongodb: decoding questions: %w", err)
	}

	return questions, total, nil
}

// ListAll returns every question, in insertion (xid) order. The insights
// aggregator reads the whole collection as its snapshot; at team scale that
// is a few thousand small documents at most.
func (s *QuestionStore) ListAll(ctx context.Context) ([]model.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing all questions: %w", err)
	}
	defer cur.Close(ctx)

	var questions []model.Question
	if err := cur.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("mongodb: decoding questions: %w", err)
	}
	return questions, nil
}
