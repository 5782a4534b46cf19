package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidtube/backend/core"
	"github.com/vidtube/backend/modules/session"
	"github.com/vidtube/backend/modules/user"
)

func testConfig() session.Config {
	return session.Config{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Hour,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    240 * time.Hour,
	}
}

func TestIssuePairPersistsRefreshToken(t *testing.T) {
	t.Parallel()

	u := &user.User{ID: bson.NewObjectID()}
	store := newMemStore(u)
	tokens, err := session.NewTokenService(testConfig(), store)
	require.NoError(t, err)

	pair, err := tokens.IssuePair(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	stored, err := store.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored.RefreshToken)
}

func TestVerifyAccessToken(t *testing.T) {
	t.Parallel()

	u := &user.User{ID: bson.NewObjectID()}
	tokens, err := session.NewTokenService(testConfig(), newMemStore(u))
	require.NoError(t, err)

	pair, err := tokens.IssuePair(context.Background(), u.ID)
	require.NoError(t, err)

	id, err := tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}

func TestVerifyAccessTokenRejectsRefreshToken(t *testing.T) {
	t.Parallel()

	// Token classes use separate secrets, so a refresh token presented as an
	// access token fails signature verification.
	u := &user.User{ID: bson.NewObjectID()}
	tokens, err := session.NewTokenService(testConfig(), newMemStore(u))
	require.NoError(t, err)

	pair, err := tokens.IssuePair(context.Background(), u.ID)
	require.NoError(t, err)

	_, err = tokens.VerifyAccessToken(pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, core.IsAuth(err, core.ReasonExpiredOrInvalid))
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.AccessTTL = -time.Minute
	u := &user.User{ID: bson.NewObjectID()}
	tokens, err := session.NewTokenService(cfg, newMemStore(u))
	require.NoError(t, err)

	pair, err := tokens.IssuePair(context.Background(), u.ID)
	require.NoError(t, err)

	_, err = tokens.VerifyAccessToken(pair.AccessToken)
	require.Error(t, err)
	assert.True(t, core.IsAuth(err, core.ReasonExpiredOrInvalid))
}

func TestVerifyRefreshToken(t *testing.T) {
	t.Parallel()

	u := &user.User{ID: bson.NewObjectID(), Username: "alice"}
	tokens, err := session.NewTokenService(testConfig(), newMemStore(u))
	require.NoError(t, err)

	pair, err := tokens.IssuePair(context.Background(), u.ID)
	require.NoError(t, err)

	got, err := tokens.VerifyRefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestVerifyRefreshTokenSuperseded(t *testing.T) {
	t.Parallel()

	u := &user.User{ID: bson.NewObjectID()}
	store := newMemStore(u)
	tokens, err := session.NewTokenService(testConfig(), store)
	require.NoError(t, err)

	first, err := tokens.IssuePair(context.Background(), u.ID)
	require.NoError(t, err)

	// Signing at one-second resolution means back-to-back pairs can be
	// byte-identical; the rotation check compares raw values, so spread
	// the issue times apart.
	time.Sleep(1100 * time.Millisecond)

	second, err := tokens.IssuePair(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The older token still decodes fine but no longer matches the stored
	// value.
	_, err = tokens.VerifyRefreshToken(context.Background(), first.RefreshToken)
	require.Error(t, err)
	assert.True(t, core.IsAuth(err, core.ReasonSuperseded))

	// The latest one is still good.
	_, err = tokens.VerifyRefreshToken(context.Background(), second.RefreshToken)
	require.NoError(t, err)
}

func TestVerifyRefreshTokenAfterLogout(t *testing.T) {
	t.Parallel()

	u := &user.User{ID: bson.NewObjectID()}
	store := newMemStore(u)
	tokens, err := session.NewTokenService(testConfig(), store)
	require.NoError(t, err)

	pair, err := tokens.IssuePair(context.Background(), u.ID)
	require.NoError(t, err)

	require.NoError(t, store.ClearRefreshToken(context.Background(), u.ID))

	_, err = tokens.VerifyRefreshToken(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, core.IsAuth(err, core.ReasonSuperseded))
}

func TestVerifyRefreshTokenGarbage(t *testing.T) {
	t.Parallel()

	tokens, err := session.NewTokenService(testConfig(), newMemStore())
	require.NoError(t, err)

	_, err = tokens.VerifyRefreshToken(context.Background(), "not.a.token")
	require.Error(t, err)
	assert.True(t, core.IsAuth(err, core.ReasonExpiredOrInvalid))
}

func TestVerifyRefreshTokenUnknownUser(t *testing.T) {
	t.Parallel()

	u := &user.User{ID: bson.NewObjectID()}
	store := newMemStore(u)
	tokens, err := session.NewTokenService(testConfig(), store)
	require.NoError(t, err)

	pair, err := tokens.IssuePair(context.Background(), u.ID)
	require.NoError(t, err)

	// Deleting the account invalidates outstanding tokens.
	store.mu.Lock()
	delete(store.users, u.ID)
	store.mu.Unlock()

	_, err = tokens.VerifyRefreshToken(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, core.IsAuth(err, core.ReasonExpiredOrInvalid))
}

func TestNewTokenServiceMissingSecret(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.AccessSecret = ""

	_, err := session.NewTokenService(cfg, newMemStore())
	require.Error(t, err)
}
