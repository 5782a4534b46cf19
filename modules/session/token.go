// Package session implements the session lifecycle: token issuance and
// rotation, login/logout, and password changes.
package session

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidtube/backend/core"
	"github.com/vidtube/backend/modules/user"
	"github.com/vidtube/backend/pkg/jwt"
)

// Storage is the user-record access the session layer needs. The user
// repository implements it; tests substitute a mock.
type Storage interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*user.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*user.User, error)
	SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error
	ClearRefreshToken(ctx context.Context, id bson.ObjectID) error
	SetPassword(ctx context.Context, id bson.ObjectID, hash string) error
}

// TokenPair is one issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService issues and verifies the two token classes. Access tokens are
// stateless; the latest refresh token is persisted on the user record so
// superseded tokens can be rejected.
type TokenService struct {
	access  *jwt.Signer
	refresh *jwt.Signer
	store   Storage
}

// NewTokenService creates a token service from the signing configuration.
func NewTokenService(cfg Config, store Storage) (*TokenService, error) {
	access, err := jwt.New(cfg.AccessSecret, cfg.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := jwt.New(cfg.RefreshSecret, cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenService{access: access, refresh: refresh, store: store}, nil
}

// IssuePair generates a fresh access/refresh pair and persists the refresh
// token, invalidating whatever refresh token the user held before. The write
// is an unconditional overwrite: two concurrent calls race and the loser's
// pair is rejected on its next refresh (last writer wins, documented and
// accepted).
func (t *TokenService) IssuePair(ctx context.Context, userID bson.ObjectID) (TokenPair, error) {
	accessToken, err := t.access.Generate(userID.Hex())
	if err != nil {
		return TokenPair{}, core.Internal("failed to generate access token", err)
	}

	refreshToken, err := t.refresh.Generate(userID.Hex())
	if err != nil {
		return TokenPair{}, core.Internal("failed to generate refresh token", err)
	}

	if err := t.store.SetRefreshToken(ctx, userID, refreshToken); err != nil {
		return TokenPair{}, core.Internal("failed to persist refresh token", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// VerifyAccessToken checks an access token and returns the user id it
// encodes.
func (t *TokenService) VerifyAccessToken(raw string) (bson.ObjectID, error) {
	subject, err := t.access.Verify(raw)
	if err != nil {
		return bson.ObjectID{}, core.Auth(core.ReasonExpiredOrInvalid, "access token is expired or invalid")
	}

	id, err := bson.ObjectIDFromHex(subject)
	if err != nil {
		return bson.ObjectID{}, core.Auth(core.ReasonExpiredOrInvalid, "access token is expired or invalid")
	}
	return id, nil
}

// VerifyRefreshToken performs the two-step refresh check: the token must
// carry a valid signature and expiry, and its raw value must equal the one
// currently stored on the user record. A token that decodes fine but no
// longer matches was superseded by a later rotation and is rejected.
func (t *TokenService) VerifyRefreshToken(ctx context.Context, raw string) (*user.User, error) {
	subject, err := t.refresh.Verify(raw)
	if err != nil {
		return nil, core.Auth(core.ReasonExpiredOrInvalid, "refresh token is expired or invalid")
	}

	id, err := bson.ObjectIDFromHex(subject)
	if err != nil {
		return nil, core.Auth(core.ReasonExpiredOrInvalid, "refresh token is expired or invalid")
	}

	u, err := t.store.FindByID(ctx, id)
	if err != nil {
		return nil, core.Auth(core.ReasonExpiredOrInvalid, "refresh token is expired or invalid")
	}

	if u.RefreshToken == "" || u.RefreshToken != raw {
		return nil, core.Auth(core.ReasonSuperseded, "refresh token has been superseded")
	}

	return u, nil
}

// AccessTTL returns the access token lifetime.
func (t *TokenService) AccessTTL() time.Duration { return t.access.TTL() }

// RefreshTTL returns the refresh token lifetime.
func (t *TokenService) RefreshTTL() time.Duration { return t.refresh.TTL() }
