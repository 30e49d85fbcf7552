package dto

import (
	"strings"

	"github.com/Payphone-Digital/auth-service/internal/model"
)

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=24"`
	FirstName string `json:"firstName" validate:"required,min=2,max=30"`
	LastName  string `json:"lastName" validate:"required,min=2,max=30"`
}

// Normalize trims the names so their length limits apply to what is stored.
func (r *RegisterRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
}

// LoginRequest carries exactly one of Username or Email; the validation
// middleware enforces the exclusivity.
type LoginRequest struct {
	Username string `json:"username,omitempty" validate:"omitempty,alphanum,min=3,max=30"`
	Email    string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	Password             string `json:"password" validate:"required,min=6,max=24"`
	PasswordConfirmation string `json:"passwordConfirmation" validate:"required,eqfield=Password"`
}

type UserResponse struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	IsVerified bool   `json:"isVerified"`
}

type LoginResponse struct {
	UserResponse
	Token string `json:"token"`
}

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type ValidationFailure struct {
	Message string `json:"message"`
	Param   string `json:"param"`
}

type AppInfoResponse struct {
	App        string `json:"app"`
	APIVersion string `json:"apiVersion"`
}

func NewUserResponse(u model.SafeUser) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsVerified: u.IsVerified,
	}
}

func NewUserResponses(users []model.SafeUser) []UserResponse {
	res := make([]UserResponse, 0, len(users))
	for _, u := range users {
		res = append(res, NewUserResponse(u))
	}
	return res
}
