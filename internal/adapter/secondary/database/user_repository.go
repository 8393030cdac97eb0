package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lipago/voucher-payments/internal/constant/model/db"
	"github.com/lipago/voucher-payments/internal/core"
	"github.com/lipago/voucher-payments/internal/port/output"
	"gorm.io/gorm"
)

// GormUserRepository is a secondary adapter that implements the
// UserRepository output port
type GormUserRepository struct {
	gormDB *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(gormDB *gorm.DB) output.UserRepository {
	return &GormUserRepository{gormDB: gormDB}
}

func userToCore(u *db.User) *core.User {
	return &core.User{
		ID:           u.ID,
		Phone:        u.Phone,
		Email:        u.Email,
		Fullname:     u.Fullname,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

// Create inserts a new user row
func (r *GormUserRepository) Create(user *core.User) error {
	dbUser := &db.User{
		Phone:        user.Phone,
		Email:        user.Email,
		Fullname:     user.Fullname,
		PasswordHash: user.PasswordHash,
	}
	if err := r.gormDB.Create(dbUser).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: phone or email already registered", core.ErrValidation)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = dbUser.ID
	user.CreatedAt = dbUser.CreatedAt
	return nil
}

// GetByEmail retrieves a user by email
func (r *GormUserRepository) GetByEmail(email string) (*core.User, error) {
	var dbUser db.User
	if err := r.gormDB.Where("email = ?", email).First(&dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", core.ErrNotFound, email)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userToCore(&dbUser), nil
}

// GetByID retrieves a user by id
func (r *GormUserRepository) GetByID(id uint) (*core.User, error) {
	var dbUser db.User
	if err := r.gormDB.Where("id = ?", id).First(&dbUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", core.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userToCore(&dbUser), nil
}

// isUniqueViolation matches the Postgres unique constraint error class
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "23505")
}
