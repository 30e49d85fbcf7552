package repository

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/Payphone-Digital/auth-service/internal/errors"
	"github.com/Payphone-Digital/auth-service/internal/model"
	"github.com/Payphone-Digital/auth-service/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *UserRepository {
	t.Helper()

	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.CloseDB(db) })

	return NewUserRepository(db)
}

func insertUser(t *testing.T, repo *UserRepository, username, email string) model.SafeUser {
	t.Helper()

	safe, err := repo.Insert(context.Background(), &model.User{
		Username:  username,
		Email:     email,
		FirstName: "First",
		LastName:  "Last",
	}, "hash:"+username)
	require.NoError(t, err)
	return safe
}

func TestInsertReturnsSafeProjection(t *testing.T) {
	repo := newTestRepository(t)

	user := &model.User{Username: "LUIS", Email: "LUIS@GMAIL.COM", FirstName: "Luis", LastName: "Garcia"}
	safe, err := repo.Insert(context.Background(), user, "bcrypt-hash")
	require.NoError(t, err)

	assert.NotZero(t, safe.ID)
	assert.Equal(t, user.ID, safe.ID)
	assert.Equal(t, "luis", safe.Username)
	assert.Equal(t, "luis@gmail.com", safe.Email)
	assert.False(t, safe.IsVerified)

	stored, err := repo.FindOne(context.Background(), UserLookup{ID: safe.ID})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "bcrypt-hash", stored.Password)
	assert.Nil(t, stored.Token)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestInsertDuplicateIsCredentialsInUse(t *testing.T) {
	repo := newTestRepository(t)
	insertUser(t, repo, "daniel", "daniel@gmail.com")

	tests := map[string][2]string{
		"username": {"Daniel", "other@gmail.com"},
		"email":    {"other", "DANIEL@gmail.com"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Insert(context.Background(), &model.User{
				Username:  tt[0],
				Email:     tt[1],
				FirstName: "First",
				LastName:  "Last",
			}, "hash")
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrCredentialsInUse))
		})
	}
}

func TestFindByUsernameOrEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	luis := insertUser(t, repo, "luis", "luis@gmail.com")
	daniel := insertUser(t, repo, "daniel", "daniel@gmail.com")

	users, err := repo.FindByUsernameOrEmail(ctx, "LUIS", "")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, luis.ID, users[0].ID)

	users, err = repo.FindByUsernameOrEmail(ctx, "", "Daniel@Gmail.com")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, daniel.ID, users[0].ID)

	users, err = repo.FindByUsernameOrEmail(ctx, "luis", "daniel@gmail.com")
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.FindByUsernameOrEmail(ctx, "nobody", "nobody@gmail.com")
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = repo.FindByUsernameOrEmail(ctx, "", " ")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
}

func TestFindOne(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	luis := insertUser(t, repo, "luis", "luis@gmail.com")

	tests := []struct {
		name    string
		lookup  UserLookup
		found   bool
		wantErr bool
	}{
		{name: "by id", lookup: UserLookup{ID: luis.ID}, found: true},
		{name: "by username any case", lookup: UserLookup{Username: "LuIs"}, found: true},
		{name: "by email any case", lookup: UserLookup{Email: "LUIS@GMAIL.COM"}, found: true},
		{name: "missing", lookup: UserLookup{Username: "ghost"}},
		{name: "no discriminator", lookup: UserLookup{}, wantErr: true},
		{name: "two discriminators", lookup: UserLookup{ID: luis.ID, Email: "luis@gmail.com"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.FindOne(ctx, tt.lookup)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrInvalidArgument))
				return
			}
			require.NoError(t, err)
			if !tt.found {
				assert.Nil(t, user)
				return
			}
			require.NotNil(t, user)
			assert.Equal(t, luis.ID, user.ID)
		})
	}
}

func TestUpdateByID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	luis := insertUser(t, repo, "luis", "luis@gmail.com")

	token := "signed-token"
	safe, err := repo.UpdateByID(ctx, luis.ID, UserUpdate{Token: &token})
	require.NoError(t, err)
	assert.Equal(t, luis, safe)

	stored, err := repo.FindOne(ctx, UserLookup{ID: luis.ID})
	require.NoError(t, err)
	require.NotNil(t, stored.Token)
	assert.Equal(t, token, *stored.Token)
	assert.Equal(t, "hash:luis", stored.Password)

	password := "new-hash"
	_, err = repo.UpdateByID(ctx, luis.ID, UserUpdate{Password: &password})
	require.NoError(t, err)

	stored, err = repo.FindOne(ctx, UserLookup{ID: luis.ID})
	require.NoError(t, err)
	assert.Equal(t, "new-hash", stored.Password)
	assert.Equal(t, token, *stored.Token)

	_, err = repo.UpdateByID(ctx, 999, UserUpdate{Password: &password})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestList(t *testing.T) {
	repo := newTestRepository(t)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)

	a := insertUser(t, repo, "luisluis", "luis@gmail.com")
	b := insertUser(t, repo, "danieldaniel", "daniel@gmail.com")

	users, err = repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.SafeUser{a, b}, users)
}
