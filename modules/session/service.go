package session

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidtube/backend/core"
	"github.com/vidtube/backend/modules/user"
	"github.com/vidtube/backend/pkg/logger"
	"github.com/vidtube/backend/pkg/sanitizer"
)

// Workflow orchestrates the session state machine: login, refresh, logout,
// and password changes.
type Workflow struct {
	store  Storage
	tokens *TokenService
	logger *slog.Logger
}

// NewWorkflow creates the session workflow.
func NewWorkflow(store Storage, tokens *TokenService, log *slog.Logger) *Workflow {
	if log == nil {
		log = slog.Default()
	}
	return &Workflow{store: store, tokens: tokens, logger: log}
}

// LoginInput carries the credentials of a login request. At least one of
// Username and Email must be set.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is a successful authentication: the sanitized user plus both
// tokens.
type LoginResult struct {
	User   user.Public `json:"user"`
	Tokens TokenPair   `json:"-"`
}

// Login authenticates by username or email plus password and issues a token
// pair.
func (w *Workflow) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	identifier := sanitizer.TrimToLower(in.Username)
	if identifier == "" {
		identifier = sanitizer.NormalizeEmail(in.Email)
	}
	if identifier == "" {
		return nil, core.Validation("username or email is required")
	}
	if in.Password == "" {
		return nil, core.Validation("password is required")
	}

	u, err := w.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if !user.VerifyPassword(u.Password, in.Password) {
		return nil, core.Auth(core.ReasonInvalidCredentials, "invalid user credentials")
	}

	pair, err := w.tokens.IssuePair(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "user logged in",
		logger.UserID(u.ID.Hex()),
		logger.Username(u.Username),
		logger.Component("session"),
	)

	return &LoginResult{User: u.Sanitized(), Tokens: pair}, nil
}

// Refresh rotates a presented refresh token: it verifies signature, expiry,
// and currency against the stored value, then issues and persists a brand-new
// pair. The presented token (and every older one) is invalid afterwards.
func (w *Workflow) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	if raw == "" {
		return TokenPair{}, core.Auth(core.ReasonMissingToken, "refresh token is required")
	}

	u, err := w.tokens.VerifyRefreshToken(ctx, raw)
	if err != nil {
		return TokenPair{}, err
	}

	pair, err := w.tokens.IssuePair(ctx, u.ID)
	if err != nil {
		return TokenPair{}, err
	}

	w.logger.InfoContext(ctx, "session refreshed",
		logger.UserID(u.ID.Hex()),
		logger.Component("session"),
	)

	return pair, nil
}

// Logout clears the stored refresh token, terminating the session. The unset
// is idempotent, so logging out twice is harmless.
func (w *Workflow) Logout(ctx context.Context, userID bson.ObjectID) error {
	if err := w.store.ClearRefreshToken(ctx, userID); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "user logged out",
		logger.UserID(userID.Hex()),
		logger.Component("session"),
	)
	return nil
}

// ChangePassword verifies the current password before accepting the new one.
// Only the password field is written; unrelated fields are not re-validated.
func (w *Workflow) ChangePassword(ctx context.Context, userID bson.ObjectID, oldPassword, newPassword string) error {
	u, err := w.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.VerifyPassword(u.Password, oldPassword) {
		return core.Auth(core.ReasonInvalidCredentials, "invalid user credentials")
	}
	if newPassword == "" {
		return core.Validation("new password is required")
	}

	hash, err := user.HashPassword(newPassword)
	if err != nil {
		return core.Internal("failed to hash password", err)
	}

	return w.store.SetPassword(ctx, userID, hash)
}
