package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/mymath-exams/internal/auth/jwt"
	"github.com/gokatarajesh/mymath-exams/internal/db/queries"
	"github.com/gokatarajesh/mymath-exams/internal/db/repository"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, u repository.NewUser) (queries.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(queries.User), args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (queries.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(queries.User), args.Error(1)
}

func (m *mockUserStore) GetByID(ctx context.Context, userID uuid.UUID) (queries.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(queries.User), args.Error(1)
}

func (m *mockUserStore) UpdateLogin(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func newTestService(store UserStore) *Service {
	return NewService(store, ServiceOptions{
		TokenConfig: jwt.TokenConfig{
			AccessSecret:  []byte("access"),
			RefreshSecret: []byte("refresh"),
		},
	}, zerolog.Nop())
}

func userRow(id uuid.UUID, email, hash string) queries.User {
	return queries.User{
		UserID:       pgtype.UUID{Bytes: [16]byte(id), Valid: true},
		Email:        pgtype.Text{String: email, Valid: email != ""},
		PasswordHash: pgtype.Text{String: hash, Valid: hash != ""},
		DisplayName:  "Kid",
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("testpassword123")
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.True(t, len(hash) > 20)

	_, err = HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	_, err = HashPassword(string(long))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestVerifyPassword(t *testing.T) {
	hash, _ := HashPassword("testpassword123")

	assert.NoError(t, VerifyPassword(hash, "testpassword123"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrongpassword"), ErrInvalidPassword)
}

func TestService_Register(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)
	id := uuid.New()

	store.On("Create", mock.Anything, mock.MatchedBy(func(u repository.NewUser) bool {
		return u.Email == "kid@example.com" && u.DisplayName == "Kid" && VerifyPassword(u.PasswordHash, "password123") == nil
	})).Return(userRow(id, "kid@example.com", "x"), nil)

	user, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Email:       " Kid@Example.com ",
		Password:    "password123",
		DisplayName: "Kid",
	})

	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, int64(3600), tokens.ExpiresIn)

	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	store.AssertExpectations(t)
}

func TestService_RegisterRejects(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)

	_, _, err := svc.Register(context.Background(), RegisterRequest{Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, _, err = svc.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	store.On("Create", mock.Anything, mock.Anything).Return(queries.User{}, repository.ErrEmailTaken)
	_, _, err = svc.Register(context.Background(), RegisterRequest{Email: "a@b.c", Password: "password123"})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestService_Login(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)
	id := uuid.New()
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	store.On("GetByEmail", mock.Anything, "kid@example.com").Return(userRow(id, "kid@example.com", hash), nil)
	store.On("UpdateLogin", mock.Anything, id).Return(errors.New("db down"))

	user, tokens, err := svc.Login(context.Background(), LoginRequest{Email: "kid@example.com", Password: "password123"})
	require.NoError(t, err, "a failed last-login update does not block sign-in")
	assert.Equal(t, id, user.ID)
	assert.NotEmpty(t, tokens.RefreshToken)

	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "kid@example.com", Password: "nope-nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_LoginUnknownOrPasswordless(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)

	store.On("GetByEmail", mock.Anything, "ghost@example.com").Return(queries.User{}, repository.ErrUserNotFound)
	store.On("GetByEmail", mock.Anything, "oauth@example.com").Return(userRow(uuid.New(), "oauth@example.com", ""), nil)

	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), LoginRequest{Email: "oauth@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_RefreshToken(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)
	id := uuid.New()

	store.On("GetByID", mock.Anything, id).Return(userRow(id, "kid@example.com", ""), nil)

	refresh, err := svc.tokenMgr.GenerateRefreshToken(jwt.Subject{ID: id})
	require.NoError(t, err)

	tokens, err := svc.RefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "kid@example.com", claims.Email)

	_, err = svc.RefreshToken(context.Background(), tokens.AccessToken)
	assert.Error(t, err, "an access token is not a refresh token")
}

func TestService_LoginOAuthCreatesAccountOnce(t *testing.T) {
	store := new(mockUserStore)
	svc := newTestService(store)
	id := uuid.New()
	info := &OAuthUserInfo{ProviderID: "g-1", Email: "Kid@Gmail.com", Name: "Kid"}

	store.On("GetByEmail", mock.Anything, "kid@gmail.com").Return(queries.User{}, repository.ErrUserNotFound).Once()
	store.On("Create", mock.Anything, mock.MatchedBy(func(u repository.NewUser) bool {
		return u.Email == "kid@gmail.com" && u.PasswordHash == "" && len(u.Metadata) > 0
	})).Return(userRow(id, "kid@gmail.com", ""), nil).Once()
	store.On("GetByEmail", mock.Anything, "kid@gmail.com").Return(userRow(id, "kid@gmail.com", ""), nil).Once()
	store.On("UpdateLogin", mock.Anything, id).Return(nil)

	first, _, err := svc.LoginOAuth(context.Background(), OAuthProviderGoogle, info)
	require.NoError(t, err)
	second, _, err := svc.LoginOAuth(context.Background(), OAuthProviderGoogle, info)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	store.AssertNumberOfCalls(t, "Create", 1)
}

func TestService_LoginOAuthRequiresEmail(t *testing.T) {
	svc := newTestService(new(mockUserStore))
	_, _, err := svc.LoginOAuth(context.Background(), OAuthProviderGoogle, &OAuthUserInfo{ProviderID: "g-2"})
	assert.Error(t, err)
}
