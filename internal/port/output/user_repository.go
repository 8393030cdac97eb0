package output

import (
	"github.com/lipago/voucher-payments/internal/core"
)

// UserRepository is an output port (secondary port) for user data access
type UserRepository interface {
	// Create inserts a new user row
	Create(user *core.User) error

	// GetByEmail retrieves a user by email
	GetByEmail(email string) (*core.User, error)

	// GetByID retrieves a user by id
	GetByID(id uint) (*core.User, error)
}
