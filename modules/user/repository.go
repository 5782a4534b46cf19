package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vidtube/backend/core"
	mongodb "github.com/vidtube/backend/pkg/mongo"
	"github.com/vidtube/backend/modules/subscription"
	"github.com/vidtube/backend/modules/video"
)

// Repository persists user documents and runs the aggregated read views.
type Repository struct {
	users *mongo.Collection
}

// NewRepository creates a user repository on the given database.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{users: db.Collection(Collection)}
}

// EnsureIndexes creates the unique username/email indexes. Run at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return mongodb.EnsureUniqueIndexes(ctx, db, Collection, "username", "email")
}

// Insert stores a new user and fills in its generated ID and timestamps.
// A unique-index violation surfaces as a conflict error.
func (r *Repository) Insert(ctx context.Context, u *User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := r.users.InsertOne(ctx, u)
	if err != nil {
		if mongodb.IsDuplicateKey(err) {
			return core.Conflict("user with email or username already exists")
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		u.ID = id
	}
	return nil
}

// FindByID loads a user by its id.
func (r *Repository) FindByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	var u User
	if err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.NotFound("user does not exist")
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &u, nil
}

// FindByIdentifier loads a user whose username or email equals the given
// identifier. The identifier is matched as stored (lowercase username,
// normalized email); callers sanitize before lookup.
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}}

	var u User
	if err := r.users.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.NotFound("user does not exist")
		}
		return nil, fmt.Errorf("find user by identifier: %w", err)
	}
	return &u, nil
}

// Exists reports whether a user with the given username or email is already
// registered.
func (r *Repository) Exists(ctx context.Context, username, email string) (bool, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}

	n, err := r.users.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

// UpdateFields applies a partial $set to the user document and returns the
// updated record.
func (r *Repository) UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (*User, error) {
	fields["updatedAt"] = time.Now()

	var u User
	err := r.users.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.NotFound("user does not exist")
		}
		if mongodb.IsDuplicateKey(err) {
			return nil, core.Conflict("user with email or username already exists")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

// SetRefreshToken overwrites the stored refresh token. This narrow patch is
// the sole mutation path for refresh tokens and deliberately bypasses full
// record validation.
func (r *Repository) SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error {
	_, err := r.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"refreshToken": token, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	return nil
}

// ClearRefreshToken removes the stored refresh token via $unset, which is
// idempotent and safe to call for users with no token.
func (r *Repository) ClearRefreshToken(ctx context.Context, id bson.ObjectID) error {
	_, err := r.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$unset": bson.M{"refreshToken": ""},
			"$set":   bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// SetPassword stores a new password hash without touching unrelated fields.
func (r *Repository) SetPassword(ctx context.Context, id bson.ObjectID, hash string) error {
	_, err := r.users.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password": hash, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

// ChannelProfile runs the channel aggregation for the given username, with
// isSubscribed computed relative to the viewer.
func (r *Repository) ChannelProfile(ctx context.Context, username string, viewer bson.ObjectID) (*ChannelProfile, error) {
	cursor, err := r.users.Aggregate(ctx, channelProfilePipeline(username, viewer))
	if err != nil {
		return nil, fmt.Errorf("aggregate channel profile: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []ChannelProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("decode channel profile: %w", err)
	}
	if len(profiles) == 0 {
		return nil, core.NotFound("channel does not exist")
	}
	return &profiles[0], nil
}

// WatchHistory resolves the user's watched video references into full video
// documents with their owners, preserving the stored watch order.
func (r *Repository) WatchHistory(ctx context.Context, id bson.ObjectID) ([]WatchEntry, error) {
	cursor, err := r.users.Aggregate(ctx, watchHistoryPipeline(id))
	if err != nil {
		return nil, fmt.Errorf("aggregate watch history: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Order   []bson.ObjectID `bson:"historyOrder"`
		Entries []WatchEntry    `bson:"watchHistory"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode watch history: %w", err)
	}
	if len(results) == 0 {
		return nil, core.NotFound("user does not exist")
	}

	return orderEntries(results[0].Order, results[0].Entries), nil
}

// orderEntries restores the original watch order: $lookup over an array of
// ids returns matches in an unspecified order.
func orderEntries(order []bson.ObjectID, entries []WatchEntry) []WatchEntry {
	byID := make(map[bson.ObjectID]WatchEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	ordered := make([]WatchEntry, 0, len(entries))
	for _, id := range order {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered
}

func channelProfilePipeline(username string, viewer bson.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         subscription.Collection,
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         subscription.Collection,
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscriberCount":   bson.M{"$size": "$subscribers"},
			"subscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed": bson.M{"$cond": bson.M{
				"if":   bson.M{"$in": bson.A{viewer, "$subscribers.subscriber"}},
				"then": true,
				"else": false,
			}},
		}}},
		{{Key: "$project", Value: bson.M{
			"fullName":          1,
			"username":          1,
			"email":             1,
			"avatar":            1,
			"coverImage":        1,
			"subscriberCount":   1,
			"subscribedToCount": 1,
			"isSubscribed":      1,
		}}},
		{{Key: "$limit", Value: 1}},
	}
}

func watchHistoryPipeline(id bson.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$addFields", Value: bson.M{"historyOrder": "$watchHistory"}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         video.Collection,
			"localField":   "watchHistory",
			"foreignField": "_id",
			"as":           "watchHistory",
			"pipeline": mongo.Pipeline{
				{{Key: "$lookup", Value: bson.M{
					"from":         Collection,
					"localField":   "owner",
					"foreignField": "_id",
					"as":           "owner",
					"pipeline": mongo.Pipeline{
						{{Key: "$project", Value: bson.M{
							"fullName": 1,
							"username": 1,
							"avatar":   1,
						}}},
					},
				}}},
				// A video has exactly one owner, so the joined array
				// collapses to a single object.
				{{Key: "$addFields", Value: bson.M{"owner": bson.M{"$first": "$owner"}}}},
			},
		}}},
		{{Key: "$project", Value: bson.M{"historyOrder": 1, "watchHistory": 1}}},
	}
}
