package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Payphone-Digital/auth-service/internal/dto"
	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/Payphone-Digital/auth-service/internal/repository"
	"github.com/Payphone-Digital/auth-service/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	svc     *UserService
	store   *memoryStore
	tokens  *JWTService
	hasher  *BcryptHasher
	metrics *countingRecorder
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	store := newMemoryStore()
	hasher := NewBcryptHasher()
	tokens := NewJWTService("test-secret", time.Hour)
	recorder := newCountingRecorder()

	return &userFixture{
		svc:     NewUserService(store, hasher, tokens, recorder, 0),
		store:   store,
		tokens:  tokens,
		hasher:  hasher,
		metrics: recorder,
	}
}

func registerRequest(username, email string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Username:  username,
		Email:     email,
		Password:  "holaquetal",
		FirstName: "Daniel",
		LastName:  "Perez",
	}
}

func TestRegister(t *testing.T) {
	f := newUserFixture(t)

	user, err := f.svc.Register(context.Background(), registerRequest("daniel", "daniel@gmail.com"))
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "daniel", user.Username)
	assert.Equal(t, "daniel@gmail.com", user.Email)
	assert.Equal(t, "Daniel", user.FirstName)
	assert.False(t, user.IsVerified)

	stored := f.store.get(user.ID)
	assert.NotEqual(t, "holaquetal", stored.Password)
	assert.Nil(t, stored.Token)

	ok, err := f.hasher.Verify("holaquetal", stored.Password)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, 1, f.metrics.count("registration:"+metrics.ResultSuccess))
}

func TestRegisterNormalizesIdentifiers(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, registerRequest("LUIS", "LUIS@GMAIL.COM"))
	require.NoError(t, err)
	assert.Equal(t, "luis", user.Username)
	assert.Equal(t, "luis@gmail.com", user.Email)

	byUsername, err := f.store.FindOne(ctx, repository.UserLookup{Username: "luis"})
	require.NoError(t, err)
	require.NotNil(t, byUsername)
	assert.Equal(t, "luis", byUsername.Username)

	byEmail, err := f.store.FindOne(ctx, repository.UserLookup{Email: "luis@gmail.com"})
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
	}{
		{name: "same username", username: "daniel", email: "other@gmail.com"},
		{name: "same username upper case", username: "DANIEL", email: "other@gmail.com"},
		{name: "same email", username: "other", email: "daniel@gmail.com"},
		{name: "same email mixed case", username: "other", email: "Daniel@Gmail.com"},
		{name: "both", username: "Daniel", email: "DANIEL@GMAIL.COM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUserFixture(t)
			ctx := context.Background()

			_, err := f.svc.Register(ctx, registerRequest("daniel", "daniel@gmail.com"))
			require.NoError(t, err)

			_, err = f.svc.Register(ctx, registerRequest(tt.username, tt.email))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrCredentialsInUse))
			assert.Equal(t, 409, apperrors.ToHTTPStatus(err))
			assert.Equal(t, apperrors.KindCredentialsInUse, apperrors.KindOf(err))
			assert.Equal(t, 1, f.metrics.count("registration:"+metrics.ResultConflict))

			users, err := f.store.List(ctx)
			require.NoError(t, err)
			assert.Len(t, users, 1)
		})
	}
}

func TestRegisterStoreFailureIsUnexpected(t *testing.T) {
	for _, op := range []string{"FindByUsernameOrEmail", "Insert"} {
		t.Run(op, func(t *testing.T) {
			f := newUserFixture(t)
			f.store.failOn = op

			_, err := f.svc.Register(context.Background(), registerRequest("daniel", "daniel@gmail.com"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrUnexpected))
			assert.True(t, errors.Is(err, errStoreDown))
			assert.Equal(t, 500, apperrors.ToHTTPStatus(err))
		})
	}
}

func TestLogin(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, registerRequest("daniel", "daniel@gmail.com"))
	require.NoError(t, err)

	tests := []struct {
		name string
		req  dto.LoginRequest
	}{
		{name: "username", req: dto.LoginRequest{Username: "daniel", Password: "holaquetal"}},
		{name: "upper case username", req: dto.LoginRequest{Username: "DANIEL", Password: "holaquetal"}},
		{name: "email", req: dto.LoginRequest{Email: "Daniel@Gmail.com", Password: "holaquetal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.Login(ctx, tt.req)
			require.NoError(t, err)

			assert.Equal(t, registered.ID, res.ID)
			assert.Equal(t, "daniel", res.Username)
			require.NotEmpty(t, res.Token)

			identity, err := f.tokens.Verify(res.Token)
			require.NoError(t, err)
			assert.Equal(t, dto.Identity{ID: registered.ID, Username: "daniel"}, identity)

			stored := f.store.get(registered.ID)
			require.NotNil(t, stored.Token)
			assert.Equal(t, res.Token, *stored.Token)
		})
	}
}

func TestLoginOverwritesStoredToken(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, registerRequest("daniel", "daniel@gmail.com"))
	require.NoError(t, err)

	f.tokens.WithClock(func() time.Time { return time.Now().Add(-time.Minute) })
	first, err := f.svc.Login(ctx, dto.LoginRequest{Username: "daniel", Password: "holaquetal"})
	require.NoError(t, err)

	f.tokens.WithClock(time.Now)
	second, err := f.svc.Login(ctx, dto.LoginRequest{Username: "daniel", Password: "holaquetal"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, second.Token, *f.store.get(registered.ID).Token)
}

func TestLoginInvalidCredentialsAreIndistinguishable(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerRequest("daniel", "daniel@gmail.com"))
	require.NoError(t, err)

	_, unknownErr := f.svc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "holaquetal"})
	_, wrongErr := f.svc.Login(ctx, dto.LoginRequest{Username: "daniel", Password: "wrong-password"})

	require.Error(t, unknownErr)
	require.Error(t, wrongErr)

	for _, err := range []error{unknownErr, wrongErr} {
		assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
		assert.Equal(t, 400, apperrors.ToHTTPStatus(err))
	}
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
	assert.Equal(t, apperrors.KindOf(unknownErr), apperrors.KindOf(wrongErr))
	assert.Equal(t, apperrors.GetErrorMessage(unknownErr), apperrors.GetErrorMessage(wrongErr))
	assert.Equal(t, apperrors.GetErrorDetails(unknownErr), apperrors.GetErrorDetails(wrongErr))

	assert.Nil(t, f.store.get(1).Token)
	assert.Equal(t, 2, f.metrics.count("login:"+metrics.ResultFailure))

	// an empty password must not reveal whether the account exists
	_, knownEmpty := f.svc.Login(ctx, dto.LoginRequest{Username: "daniel", Password: ""})
	_, unknownEmpty := f.svc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: ""})

	for _, err := range []error{knownEmpty, unknownEmpty} {
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
		assert.Equal(t, 400, apperrors.ToHTTPStatus(err))
		assert.Equal(t, apperrors.GetErrorMessage(wrongErr), apperrors.GetErrorMessage(err))
	}
	assert.Equal(t, knownEmpty.Error(), unknownEmpty.Error())
}

func TestLoginRequiresExactlyOneIdentifier(t *testing.T) {
	f := newUserFixture(t)

	tests := map[string]dto.LoginRequest{
		"neither": {Password: "holaquetal"},
		"both":    {Username: "daniel", Email: "daniel@gmail.com", Password: "holaquetal"},
	}

	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
		})
	}
}

func TestLoginTokenPersistFailure(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerRequest("daniel", "daniel@gmail.com"))
	require.NoError(t, err)

	f.store.failOn = "UpdateByID"
	_, err = f.svc.Login(ctx, dto.LoginRequest{Username: "daniel", Password: "holaquetal"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnexpected))
}

func TestChangePassword(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	registered, err := f.svc.Register(ctx, registerRequest("daniel", "daniel@gmail.com"))
	require.NoError(t, err)
	login, err := f.svc.Login(ctx, dto.LoginRequest{Username: "daniel", Password: "holaquetal"})
	require.NoError(t, err)

	identity := dto.Identity{ID: registered.ID, Username: registered.Username}
	require.NoError(t, f.svc.ChangePassword(ctx, identity, "newsecret"))

	stored := f.store.get(registered.ID)
	require.NotNil(t, stored.Token)
	assert.Equal(t, login.Token, *stored.Token)

	_, err = f.svc.Login(ctx, dto.LoginRequest{Username: "daniel", Password: "holaquetal"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))

	_, err = f.svc.Login(ctx, dto.LoginRequest{Username: "daniel", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestChangePasswordErrors(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, dto.Identity{ID: 42, Username: "ghost"}, "newsecret")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	err = f.svc.ChangePassword(ctx, dto.Identity{ID: 42, Username: "ghost"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrHashing))
}

func TestListAndGetByID(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	users, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NotNil(t, users)

	a, err := f.svc.Register(ctx, registerRequest("luisluis", "luis@gmail.com"))
	require.NoError(t, err)
	b, err := f.svc.Register(ctx, registerRequest("danieldaniel", "daniel@gmail.com"))
	require.NoError(t, err)

	users, err = f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, a.ID, users[0].ID)
	assert.Equal(t, b.ID, users[1].ID)

	got, err := f.svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	_, err = f.svc.GetByID(ctx, 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, 404, apperrors.ToHTTPStatus(err))

	f.store.failOn = "List"
	_, err = f.svc.List(ctx)
	assert.True(t, errors.Is(err, apperrors.ErrUnexpected))
}
