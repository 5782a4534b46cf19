package user

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidtube/backend/core"
	"github.com/vidtube/backend/pkg/blob"
	"github.com/vidtube/backend/pkg/logger"
	"github.com/vidtube/backend/pkg/sanitizer"
	"github.com/vidtube/backend/pkg/validator"
)

// Storage is the persistence surface the service needs. *Repository
// implements it; tests substitute a mock.
type Storage interface {
	Insert(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (*User, error)
	SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error
	ClearRefreshToken(ctx context.Context, id bson.ObjectID) error
	SetPassword(ctx context.Context, id bson.ObjectID, hash string) error
	ChannelProfile(ctx context.Context, username string, viewer bson.ObjectID) (*ChannelProfile, error)
	WatchHistory(ctx context.Context, id bson.ObjectID) ([]WatchEntry, error)
}

// Service implements account operations over Storage.
type Service struct {
	store  Storage
	media  blob.Uploader
	logger *slog.Logger
}

// NewService creates the account service.
func NewService(store Storage, media blob.Uploader, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, media: media, logger: log}
}

// RegisterInput carries the fields of a registration request. The image
// paths point at files already saved locally by the upload middleware.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

// Register validates the input, uploads the avatar and optional cover image,
// and creates the account. The returned view never contains the password or
// a refresh token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Public, error) {
	in.FullName = sanitizer.Trim(in.FullName)
	in.Username = sanitizer.TrimToLower(in.Username)
	in.Email = sanitizer.NormalizeEmail(in.Email)

	if err := validator.Apply(
		validator.RequiredString("fullName", in.FullName),
		validator.RequiredString("username", in.Username),
		validator.RequiredString("password", in.Password),
		validator.RequiredString("email", in.Email),
		validator.ValidEmail("email", in.Email),
	); err != nil {
		return nil, core.Validation(err.Error())
	}
	if in.AvatarPath == "" {
		return nil, core.Validation("avatar file is required")
	}

	exists, err := s.store.Exists(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, core.Conflict("user with email or username already exists")
	}

	avatarURL, err := s.media.Upload(ctx, in.AvatarPath)
	if err != nil {
		return nil, core.Internal("failed to upload avatar", err)
	}
	coverURL, err := s.media.Upload(ctx, in.CoverImagePath)
	if err != nil {
		return nil, core.Internal("failed to upload cover image", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, core.Internal("failed to hash password", err)
	}

	u := &User{
		Username:   in.Username,
		Email:      in.Email,
		FullName:   in.FullName,
		Avatar:     avatarURL,
		CoverImage: coverURL,
		Password:   hash,
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		logger.UserID(u.ID.Hex()),
		logger.Username(u.Username),
		logger.Component("user"),
	)

	public := u.Sanitized()
	return &public, nil
}

// FindByIdentifier looks up a user by username or email. The identifier is
// normalized the same way stored values are, so lookups are case-insensitive.
func (s *Service) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	identifier = sanitizer.TrimToLower(identifier)
	if identifier == "" {
		return nil, core.Validation("username or email is required")
	}
	return s.store.FindByIdentifier(ctx, identifier)
}

// CurrentUser returns the sanitized record for an authenticated user.
func (s *Service) CurrentUser(ctx context.Context, id bson.ObjectID) (*Public, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := u.Sanitized()
	return &public, nil
}

// UpdateProfile applies a partial update to fullName and/or email. Blank
// inputs leave the corresponding field untouched.
func (s *Service) UpdateProfile(ctx context.Context, id bson.ObjectID, fullName, email string) (*Public, error) {
	fields := bson.M{}
	if v := sanitizer.Trim(fullName); v != "" {
		fields["fullName"] = v
	}
	if v := sanitizer.NormalizeEmail(email); v != "" {
		if err := validator.Apply(validator.ValidEmail("email", v)); err != nil {
			return nil, core.Validation(err.Error())
		}
		fields["email"] = v
	}
	if len(fields) == 0 {
		return nil, core.Validation("at least one field is required")
	}

	u, err := s.store.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	public := u.Sanitized()
	return &public, nil
}

// UpdateAvatar uploads a new avatar and stores its URL.
func (s *Service) UpdateAvatar(ctx context.Context, id bson.ObjectID, localPath string) (*Public, error) {
	return s.updateImage(ctx, id, "avatar", localPath)
}

// UpdateCoverImage uploads a new cover image and stores its URL.
func (s *Service) UpdateCoverImage(ctx context.Context, id bson.ObjectID, localPath string) (*Public, error) {
	return s.updateImage(ctx, id, "coverImage", localPath)
}

func (s *Service) updateImage(ctx context.Context, id bson.ObjectID, field, localPath string) (*Public, error) {
	if localPath == "" {
		return nil, core.Validation(field + " file is required")
	}

	url, err := s.media.Upload(ctx, localPath)
	if err != nil {
		return nil, core.Internal("failed to upload "+field, err)
	}

	u, err := s.store.UpdateFields(ctx, id, bson.M{field: url})
	if err != nil {
		return nil, err
	}
	public := u.Sanitized()
	return &public, nil
}

// GetChannelProfile returns the aggregated channel view for username, with
// isSubscribed computed relative to the viewer.
func (s *Service) GetChannelProfile(ctx context.Context, username string, viewer bson.ObjectID) (*ChannelProfile, error) {
	username = sanitizer.TrimToLower(username)
	if username == "" {
		return nil, core.Validation("username is required")
	}
	return s.store.ChannelProfile(ctx, username, viewer)
}

// GetWatchHistory returns the user's watched videos in watch order, each with
// its single owner.
func (s *Service) GetWatchHistory(ctx context.Context, id bson.ObjectID) ([]WatchEntry, error) {
	return s.store.WatchHistory(ctx, id)
}
