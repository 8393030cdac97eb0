package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"

	"github.com/lipago/voucher-payments/internal/core"
	"github.com/lipago/voucher-payments/internal/port/input"
	"github.com/lipago/voucher-payments/internal/port/output"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthServiceImpl implements the AuthService input port
type AuthServiceImpl struct {
	userRepo  output.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo output.UserRepository, jwtSecret string) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
}

// Register creates a user account
func (s *AuthServiceImpl) Register(req input.RegisterRequest) error {
	if req.Phone == "" || req.Email == "" || req.Fullname == "" || req.Password == "" {
		return fmt.Errorf("%w: all fields are required: phone, email, fullname, password", core.ErrValidation)
	}
	if !phoneRegex.MatchString(req.Phone) {
		return fmt.Errorf("%w: invalid phone number format", core.ErrValidation)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", core.ErrValidation)
	}
	fullname := strings.TrimSpace(req.Fullname)
	if len(fullname) < 2 || len(fullname) > 15 {
		return fmt.Errorf("%w: fullname must be between 2 and 15 characters", core.ErrValidation)
	}
	if len(req.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters long", core.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &core.User{
		Phone:        strings.TrimSpace(req.Phone),
		Email:        email,
		Fullname:     fullname,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(user); err != nil {
		return err
	}
	return nil
}

// Login verifies credentials and issues a signed token
func (s *AuthServiceImpl) Login(email, password string) (*input.LoginResponse, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", core.ErrValidation)
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", core.ErrValidation)
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters long", core.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", core.ErrUnauthorized)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: invalid email or password", core.ErrUnauthorized)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  user.ID,
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	out := *user
	out.PasswordHash = ""
	return &input.LoginResponse{Token: signed, User: out}, nil
}
