package input

import "github.com/lipago/voucher-payments/internal/core"

// AuthService is an input port for registration and login
type AuthService interface {
	// Register creates a user account
	Register(req RegisterRequest) error

	// Login verifies credentials and issues a signed token
	Login(email, password string) (*LoginResponse, error)
}

// RegisterRequest represents the request to register a user
type RegisterRequest struct {
	Phone    string
	Email    string
	Fullname string
	Password string
}

// LoginResponse carries the issued token and the account it belongs to
type LoginResponse struct {
	Token string
	User  core.User
}
