package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lipago/voucher-payments/internal/port/input"
)

// AuthHandler is a primary adapter (HTTP handler)
type AuthHandler struct {
	authService input.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService input.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRequest represents the HTTP request to register a user
type RegisterRequest struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	Password string `json:"password"`
}

// Register handles account registration
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	err := h.authService.Register(input.RegisterRequest{
		Phone:    req.Phone,
		Email:    req.Email,
		Fullname: req.Fullname,
		Password: req.Password,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

// LoginRequest represents the HTTP request to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles credential verification and token issuing
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	response, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token": response.Token,
		"user": map[string]interface{}{
			"id":       response.User.ID,
			"phone":    response.User.Phone,
			"email":    response.User.Email,
			"fullname": response.User.Fullname,
		},
	})
}
