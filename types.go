package authcore

import (
	"time"

	"github.com/rafaelpmaio/authcore/userstore"
)

// PublicUser is the sanitized view of a stored user. It is the only
// user shape Engine operations return; the password hash never crosses
// the package boundary.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       int       `json:"age,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func sanitizeUser(u *userstore.User) PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterRequest carries the inputs to Engine.Register.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// UpdateUserRequest carries the mutable fields for Engine.UpdateUser.
// Nil pointers mean "leave unchanged".
type UpdateUserRequest struct {
	Name   *string
	Email  *string
	Age    *int
	Active *bool
}

// TokenPair is one issuance result: a short-lived access token and the
// refresh token that can later replace it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResult is returned by Login and Register.
type LoginResult struct {
	User   PublicUser `json:"user"`
	Tokens TokenPair  `json:"tokens"`
}
