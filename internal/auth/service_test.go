package auth

import (
	"context"
	"errors"
	"testing"

	"blog_system/internal/domain"
	"blog_system/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUsers is an in-memory UserStore
type fakeUsers struct {
	byName    map[string]*domain.User
	nextID    uint
	createErr error
	existsErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: map[string]*domain.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byName[u.Username]; ok {
		return repository.ErrDuplicateKey
	}
	f.nextID++
	u.ID = f.nextID
	f.byName[u.Username] = u
	return nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.byName[username]
	return ok, nil
}

func TestService_RegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	svc := NewService(users)

	u, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.NotEqual(t, "secret1", u.Password)

	got, err := svc.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestService_AuthenticateFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeUsers())
	_, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, wrongPassword := svc.Authenticate(ctx, "alice", "secret2")
	_, unknownUser := svc.Authenticate(ctx, "mallory", "secret1")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestService_AuthenticateLegacyHash(t *testing.T) {
	users := newFakeUsers()
	users.byName["old"] = &domain.User{ID: 7, Username: "old", Password: legacyHash}

	u, err := NewService(users).Authenticate(context.Background(), "old", "secret1")
	require.NoError(t, err)
	assert.EqualValues(t, 7, u.ID)
}

func TestService_RegisterTakenByPrecheck(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeUsers())
	_, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "secret2")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_RegisterTakenAtInsert(t *testing.T) {
	users := newFakeUsers()
	// another request wins the race after our existence check
	users.createErr = repository.ErrDuplicateKey

	_, err := NewService(users).Register(context.Background(), "alice", "secret1")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestService_RegisterPersistenceError(t *testing.T) {
	users := newFakeUsers()
	boom := &repository.PersistenceError{Op: "create user", Err: errors.New("disk full")}
	users.createErr = boom

	_, err := NewService(users).Register(context.Background(), "alice", "secret1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUsernameTaken)
	var perr *repository.PersistenceError
	assert.ErrorAs(t, err, &perr)

	users.createErr = nil
	users.existsErr = errors.New("db down")
	_, err = NewService(users).Register(context.Background(), "bob", "secret1")
	assert.Error(t, err)
}
