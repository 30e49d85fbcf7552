package database

import (
	"context"
	"errors"

	"github.com/Payphone-Digital/auth-service/internal/model"
	"gorm.io/gorm"
)

// PasswordHasher is the slice of the credential hasher seeding needs.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// SeedUser describes a development account created at startup.
type SeedUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// DefaultSeedUsers returns the development accounts.
func DefaultSeedUsers() []SeedUser {
	return []SeedUser{
		{Username: "luisluis", Email: "luis@gmail.com", Password: "password123", FirstName: "Luis", LastName: "Luis"},
		{Username: "danieldaniel", Email: "daniel@gmail.com", Password: "password123", FirstName: "Daniel", LastName: "Daniel"},
	}
}

// Seed inserts every seed user whose username and email are both unused.
// It returns the number of users created.
func Seed(ctx context.Context, db *gorm.DB, hasher PasswordHasher, users []SeedUser) (int, error) {
	created := 0
	for _, seed := range users {
		var existing model.User
		err := db.WithContext(ctx).
			Where("LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)", seed.Username, seed.Email).
			Take(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		hash, err := hasher.Hash(seed.Password)
		if err != nil {
			return created, err
		}

		user := model.User{
			Username:  seed.Username,
			Email:     seed.Email,
			Password:  hash,
			FirstName: seed.FirstName,
			LastName:  seed.LastName,
		}
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
