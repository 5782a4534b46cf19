// Package subscription models the directed social graph between users: a
// subscriber follows a channel, where both ends are user documents.
package subscription

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Collection is the mongo collection holding subscription edges.
const Collection = "subscriptions"

// Subscription is one directed edge in the social graph.
type Subscription struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Subscriber bson.ObjectID `bson:"subscriber" json:"subscriber"`
	Channel    bson.ObjectID `bson:"channel" json:"channel"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
}
