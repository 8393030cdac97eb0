package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lipago/voucher-payments/internal/port/input"
)

// VoucherHandler is a primary adapter (HTTP handler)
type VoucherHandler struct {
	voucherService input.VoucherService
}

// NewVoucherHandler creates a new voucher handler
func NewVoucherHandler(voucherService input.VoucherService) *VoucherHandler {
	return &VoucherHandler{
		voucherService: voucherService,
	}
}

// GenerateVoucherRequest represents the HTTP request to generate a voucher
type GenerateVoucherRequest struct {
	PackageType    string `json:"package_type"`
	ExpirationDate string `json:"expiration_date"`
	Phone          string `json:"phone"`
}

// Generate handles voucher generation
func (h *VoucherHandler) Generate(c echo.Context) error {
	var req GenerateVoucherRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	response, err := h.voucherService.Generate(input.GenerateVoucherRequest{
		PackageType:    req.PackageType,
		ExpirationDate: req.ExpirationDate,
		Phone:          req.Phone,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":            response.Code,
		"package_type":    response.PackageType,
		"expiration_date": response.ExpirationDate.Format(time.RFC3339),
	})
}

// ValidateVoucherRequest represents the HTTP request to redeem a voucher
type ValidateVoucherRequest struct {
	Code string `json:"code"`
}

// Validate handles voucher redemption
func (h *VoucherHandler) Validate(c echo.Context) error {
	var req ValidateVoucherRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	response, err := h.voucherService.Validate(req.Code, userID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	if !response.OK {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"ok":     false,
			"reason": response.Reason,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":           true,
		"code":         response.Code,
		"package_type": response.PackageType,
	})
}
