package model

import (
	"time"
)

// User is a registered identity. Username and email are stored lower-cased.
type User struct {
	ID         uint      `gorm:"column:id;primaryKey"`
	Username   string    `gorm:"column:username;size:30;not null;uniqueIndex:idx_users_username"`
	Email      string    `gorm:"column:email;size:255;not null;uniqueIndex:idx_users_email"`
	Password   string    `gorm:"column:password;not null"`
	FirstName  string    `gorm:"column:first_name;size:30;not null"`
	LastName   string    `gorm:"column:last_name;size:30;not null"`
	IsVerified bool      `gorm:"column:is_verified;not null;default:false"`
	Token      *string   `gorm:"column:token;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

// SafeUser is the projection of User that may leave the service.
type SafeUser struct {
	ID         uint   `gorm:"column:id"`
	Username   string `gorm:"column:username"`
	Email      string `gorm:"column:email"`
	FirstName  string `gorm:"column:first_name"`
	LastName   string `gorm:"column:last_name"`
	IsVerified bool   `gorm:"column:is_verified"`
}

// SafeColumns lists the columns selected for SafeUser.
var SafeColumns = []string{"id", "username", "email", "first_name", "last_name", "is_verified"}

// Safe drops the password hash, token and timestamps.
func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsVerified: u.IsVerified,
	}
}
