// Package video defines the video document model. Videos are written by the
// upload pipeline, which lives outside this service; here they are read-only
// join targets for watch-history queries.
package video

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Collection is the mongo collection holding video documents.
const Collection = "videos"

// Video is a published media document owned by exactly one user.
type Video struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner       bson.ObjectID `bson:"owner" json:"-"`
	VideoFile   string        `bson:"videoFile" json:"videoFile"`
	Thumbnail   string        `bson:"thumbnail" json:"thumbnail"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Duration    float64       `bson:"duration" json:"duration"`
	Views       int64         `bson:"views" json:"views"`
	IsPublished bool          `bson:"isPublished" json:"isPublished"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}
