package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/agritrack/agritrack/internal/shared"
)

type fakeRepo struct {
	users  map[int64]*User
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[int64]*User), nextID: 1}
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRepo) FindByID(_ context.Context, id int64) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeRepo) Create(_ context.Context, user User) (int64, error) {
	for _, u := range f.users {
		if u.Email == user.Email {
			return 0, ErrEmailTaken
		}
	}
	user.ID = f.nextID
	user.IsActive = true
	f.nextID++
	f.users[user.ID] = &user
	return user.ID, nil
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	user, err := svc.Register(context.Background(), "  Jordan Reyes ", "Jordan@Farm.Example", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, "Jordan Reyes", user.Name)
	require.Equal(t, "jordan@farm.example", user.Email)
	require.Equal(t, shared.RoleFarmer, user.Role)
	require.True(t, user.IsActive)
	require.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), "First", "dup@farm.example", "pass-one")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Second", "DUP@farm.example", "pass-two")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	_, err := svc.Register(context.Background(), "Jordan", "jordan@farm.example", "s3cret-pass")
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), " JORDAN@farm.example ", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, "jordan@farm.example", user.Email)

	_, err = svc.Authenticate(context.Background(), "jordan@farm.example", "wrong-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@farm.example", "s3cret-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateRejectsInactiveAccount(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	user, err := svc.Register(context.Background(), "Jordan", "jordan@farm.example", "s3cret-pass")
	require.NoError(t, err)
	repo.users[user.ID].IsActive = false

	_, err = svc.Authenticate(context.Background(), "jordan@farm.example", "s3cret-pass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
