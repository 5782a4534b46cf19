package subscription

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Repository persists subscription edges.
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a subscription repository on the given database.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection(Collection)}
}

// Toggle flips the edge between subscriber and channel: it removes an
// existing subscription, or creates one when none exists. Returns true when
// the caller ends up subscribed.
func (r *Repository) Toggle(ctx context.Context, subscriberID, channelID bson.ObjectID) (bool, error) {
	filter := bson.M{"subscriber": subscriberID, "channel": channelID}

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	_, err = r.col.InsertOne(ctx, Subscription{
		Subscriber: subscriberID,
		Channel:    channelID,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		return false, fmt.Errorf("insert subscription: %w", err)
	}
	return true, nil
}

// CountSubscribers returns how many users subscribe to the channel.
func (r *Repository) CountSubscribers(ctx context.Context, channelID bson.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"channel": channelID})
}

// CountSubscribedTo returns how many channels the user subscribes to.
func (r *Repository) CountSubscribedTo(ctx context.Context, subscriberID bson.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"subscriber": subscriberID})
}

// IsSubscribed reports whether an edge exists from subscriber to channel.
func (r *Repository) IsSubscribed(ctx context.Context, subscriberID, channelID bson.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"subscriber": subscriberID, "channel": channelID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
