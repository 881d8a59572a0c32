package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/team-pulse/internal/model"
	"github.com/sakif/team-pulse/internal/repository"
)

// AnswerStore implements repository.AnswerRepository on the answers
// collection.
type AnswerStore struct {
	col *mongo.Collection
}

var _ repository.AnswerRepository = (*AnswerStore)(nil)

// Create inserts a new answer, stamping ID and timestamps. The parent
// question's existence is the service layer's concern — by the time an
// answer reaches this method it has already been checked.
func (s *AnswerStore) Create(ctx context.Context, a *model.Answer) error {
	now := time.Now().UTC()
	a.ID = xid.New().String()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("mongodb: inserting answer: %w", err)
	}
	return nil
}

// ListByQuestion returns all answers for a question, newest first.
func (s *AnswerStore) ListByQuestion(ctx context.Context, questionID string) ([]model.Answer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"question_id": questionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing answers for question %s: %w", questionID, err)
	}
	defer cur.Close(ctx)

	answers := []model.Answer{}
	if err := cur.All(ctx, &answers); err != nil {
		return nil, fmt.Errorf("mongodb: decoding answers: %w", err)
	}
	return answers, nil
}

// ListAll returns every answer, in insertion (xid) order, for the insights
// snapshot.
func (s *AnswerStore) ListAll(ctx context.Context) ([]model.Answer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing all answers: %w", err)
	}
	defer cur.Close(ctx)

	var answers []model.Answer
	if err := cur.All(ctx, &answers); err != nil {
		return nil, fmt.Errorf("mongodb: decoding answers: %w", err)
	}
	return answers, nil
}
