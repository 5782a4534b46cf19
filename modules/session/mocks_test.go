package session_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidtube/backend/core"
	"github.com/vidtube/backend/modules/session"
	"github.com/vidtube/backend/modules/user"
)

// MockStorage is a testify mock over session.Storage for expectation-style
// tests.
type MockStorage struct {
	mock.Mock
}

var _ session.Storage = (*MockStorage)(nil)

func (m *MockStorage) FindByID(ctx context.Context, id bson.ObjectID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockStorage) FindByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockStorage) SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockStorage) ClearRefreshToken(ctx context.Context, id bson.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStorage) SetPassword(ctx context.Context, id bson.ObjectID, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

// memStore is a stateful in-memory Storage used by the rotation tests, where
// the stored refresh token must actually change between calls.
type memStore struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*user.User
}

var _ session.Storage = (*memStore)(nil)

func newMemStore(users ...*user.User) *memStore {
	s := &memStore{users: make(map[bson.ObjectID]*user.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *memStore) FindByID(_ context.Context, id bson.ObjectID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.NotFound("user not found")
	}
	clone := *u
	return &clone, nil
}

func (s *memStore) FindByIdentifier(_ context.Context, identifier string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == identifier || u.Email == identifier {
			clone := *u
			return &clone, nil
		}
	}
	return nil, core.NotFound("user not found")
}

func (s *memStore) SetRefreshToken(_ context.Context, id bson.ObjectID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.NotFound("user not found")
	}
	u.RefreshToken = token
	return nil
}

func (s *memStore) ClearRefreshToken(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.RefreshToken = ""
	}
	return nil
}

func (s *memStore) SetPassword(_ context.Context, id bson.ObjectID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.NotFound("user not found")
	}
	u.Password = hash
	return nil
}
