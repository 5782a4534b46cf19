package session

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type contextKey struct{}

// WithUserID stores the authenticated user id in the context.
func WithUserID(ctx context.Context, id bson.ObjectID) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// UserIDFromContext extracts the authenticated user id set by the auth
// middleware.
func UserIDFromContext(ctx context.Context) (bson.ObjectID, bool) {
	id, ok := ctx.Value(contextKey{}).(bson.ObjectID)
	return id, ok
}
