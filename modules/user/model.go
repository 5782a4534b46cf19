// Package user implements the account record: registration, credential
// verification, profile mutation, and the aggregated read views (channel
// profile, watch history).
package user

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

// Collection is the mongo collection holding user documents.
const Collection = "users"

// User is the persisted account document. Password holds a bcrypt hash and
// RefreshToken the single currently-valid refresh token; neither is ever
// serialized to JSON.
type User struct {
	ID           bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string          `bson:"username" json:"username"`
	Email        string          `bson:"email" json:"email"`
	FullName     string          `bson:"fullName" json:"fullName"`
	Avatar       string          `bson:"avatar" json:"avatar"`
	CoverImage   string          `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	WatchHistory []bson.ObjectID `bson:"watchHistory,omitempty" json:"-"`
	Password     string          `bson:"password" json:"-"`
	RefreshToken string          `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// Public is the sanitized account view returned by every operation. It has
// no credential fields at all, so a marshaling mistake cannot leak them.
type Public struct {
	ID         bson.ObjectID `json:"id"`
	Username   string        `json:"username"`
	Email      string        `json:"email"`
	FullName   string        `json:"fullName"`
	Avatar     string        `json:"avatar"`
	CoverImage string        `json:"coverImage,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// Sanitized strips credential material from the record.
func (u *User) Sanitized() Public {
	return Public{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// ChannelProfile is the aggregated public view of a channel, including
// derived subscription counts relative to the viewing user.
type ChannelProfile struct {
	ID                bson.ObjectID `bson:"_id" json:"id"`
	FullName          string        `bson:"fullName" json:"fullName"`
	Username          string        `bson:"username" json:"username"`
	Email             string        `bson:"email" json:"email"`
	Avatar            string        `bson:"avatar" json:"avatar"`
	CoverImage        string        `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	SubscriberCount   int64         `bson:"subscriberCount" json:"subscriberCount"`
	SubscribedToCount int64         `bson:"subscribedToCount" json:"subscribedToCount"`
	IsSubscribed      bool          `bson:"isSubscribed" json:"isSubscribed"`
}

// Owner is the minimal projection of a video's owner used in watch history.
type Owner struct {
	FullName string `bson:"fullName" json:"fullName"`
	Username string `bson:"username" json:"username"`
	Avatar   string `bson:"avatar" json:"avatar"`
}

// WatchEntry is one resolved watch-history item: the video document plus its
// single owner.
type WatchEntry struct {
	ID          bson.ObjectID `bson:"_id" json:"id"`
	VideoFile   string        `bson:"videoFile" json:"videoFile"`
	Thumbnail   string        `bson:"thumbnail" json:"thumbnail"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Duration    float64       `bson:"duration" json:"duration"`
	Views       int64         `bson:"views" json:"views"`
	Owner       Owner         `bson:"owner" json:"owner"`
}

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether candidate matches the stored hash. A
// mismatch is a plain false, never an error.
func VerifyPassword(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}
