package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sakif/team-pulse/internal/apperror"
	"github.com/sakif/team-pulse/internal/model"
	"github.com/sakif/team-pulse/internal/repository"
)

// UserStore implements repository.UserRepository on the users collection.
type UserStore struct {
	col *mongo.Collection
}

var _ repository.UserRepository = (*UserStore)(nil)

// Create inserts a new user. The caller is expected to have normalized the
// email (lowercased) and hashed the password already — this layer only
// stamps the ID and timestamps and performs the insert.
//
// A duplicate email surfaces as apperror.ErrConflict via the unique index on
// users.email. Relying on the index (rather than a lookup-then-insert) makes
// the check race-free: two concurrent registrations for the same email
// cannot both succeed.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Conflict("a user with this email already exists")
		}
		return fmt.Errorf("mongodb: inserting user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by their ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("mongodb: getting user %s: %w", id, err)
	}
	return &u, nil
}

// GetByEmail looks up a user by their (lowercased) email.
// Returns apperror.ErrNotFound if no user has that email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("mongodb: getting user by email: %w", err)
	}
	return &u, nil
}

// GetByIDs fetches all users whose ID appears in ids with a single $in
// query. IDs that resolve to no document are silently absent from the
// result — the insights aggregator depends on exactly this behavior for its
// orphaned-author exclusion policy.
func (s *UserStore) GetByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing users by ids: %w", err)
	}
	defer cur.Close(ctx)

	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongodb: decoding users: %w", err)
	}
	return users, nil
}

// UpsertByGitHubID inserts the user on first OAuth login and refreshes
// name/email/avatar on subsequent logins, keyed by github_id. The internal
// ID is generated once and kept stable across logins.
func (s *UserStore) UpsertByGitHubID(ctx context.Context, user *model.User) error {
	var existing model.User
	err := s.col.FindOne(ctx, bson.M{"github_id": user.GitHubID}).Decode(&existing)

	switch {
	case err == nil:
		// Known account — keep the internal ID and role, refresh the profile
		// fields in case they changed on GitHub.
		user.ID = existing.ID
		user.Role = existing.Role
		user.CreatedAt = existing.CreatedAt
		user.UpdatedAt = time.Now().UTC()
		_, err = s.col.UpdateOne(ctx,
			bson.M{"_id": existing.ID},
			bson.M{"$set": bson.M{
				"name":       user.Name,
				"email":      user.Email,
				"avatar_url": user.AvatarURL,
				"updated_at": user.UpdatedAt,
			}},
		)
		if err != nil {
			return fmt.Errorf("mongodb: updating github user: %w", err)
		}
		return nil

	case errors.Is(err, mongo.ErrNoDocuments):
		// First login — create the account as a regular member.
		if user.Role == "" {
			user.Role = model.RoleMember
		}
		return s.Create(ctx, user)

	default:
		return fmt.Errorf("mongodb: looking up github user %d: %w", user.GitHubID, err)
	}
}
