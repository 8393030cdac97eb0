package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lipago/voucher-payments/internal/core"
	"github.com/lipago/voucher-payments/internal/port/input"
)

// PaymentHandler is a primary adapter (HTTP handler)
type PaymentHandler struct {
	paymentService input.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService input.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// InitPaymentRequest represents the HTTP request to initialize a payment
type InitPaymentRequest struct {
	Gateway     string  `json:"gateway"`
	Amount      float64 `json:"amount"`
	PhoneNumber string  `json:"phoneNumber"`
	VoucherCode string  `json:"voucherCode"`
}

// InitPaymentResponse represents the HTTP response for a payment initialization
type InitPaymentResponse struct {
	PaymentID   uint   `json:"paymentId"`
	Status      string `json:"status,omitempty"`
	ReferenceID string `json:"referenceId,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
	Message     string `json:"message,omitempty"`
}

// PaymentView represents the HTTP shape of one payment row
type PaymentView struct {
	ID                 uint    `json:"id"`
	UserID             uint    `json:"user_id"`
	Gateway            string  `json:"gateway"`
	Amount             float64 `json:"amount"`
	Status             string  `json:"status"`
	PhoneNumber        string  `json:"phone_number,omitempty"`
	GatewayReferenceID string  `json:"gateway_reference_id,omitempty"`
	VoucherID          *uint   `json:"voucher_id,omitempty"`
	VoucherCode        string  `json:"voucher_code,omitempty"`
	PackageType        string  `json:"package_type,omitempty"`
	ErrorMessage       string  `json:"error_message,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

func toView(p *core.Payment) PaymentView {
	return PaymentView{
		ID:                 p.ID,
		UserID:             p.UserID,
		Gateway:            string(p.Gateway),
		Amount:             p.Amount,
		Status:             string(p.Status),
		PhoneNumber:        p.PhoneNumber,
		GatewayReferenceID: p.GatewayReferenceID,
		VoucherID:          p.VoucherID,
		VoucherCode:        p.VoucherCode,
		PackageType:        p.PackageType,
		ErrorMessage:       p.ErrorMessage,
		CreatedAt:          p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          p.UpdatedAt.Format(time.RFC3339),
	}
}

func toViews(payments []core.Payment) []PaymentView {
	views := make([]PaymentView, 0, len(payments))
	for i := range payments {
		views = append(views, toView(&payments[i]))
	}
	return views
}

// InitPayment handles payment initialization
func (h *PaymentHandler) InitPayment(c echo.Context) error {
	var req InitPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	response, err := h.paymentService.Init(input.InitPaymentRequest{
		Gateway:     core.Gateway(req.Gateway),
		Amount:      req.Amount,
		PhoneNumber: req.PhoneNumber,
		VoucherCode: req.VoucherCode,
		UserID:      userID(c),
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, InitPaymentResponse{
		PaymentID:   response.PaymentID,
		Status:      string(response.Status),
		ReferenceID: response.ReferenceID,
		RedirectURL: response.RedirectURL,
		Message:     response.Message,
	})
}

// GetStatus handles payment status retrieval by ID
func (h *PaymentHandler) GetStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("paymentId"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid payment ID",
		})
	}

	payment, err := h.paymentService.GetStatus(uint(id), userID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toView(payment))
}

// ListByVoucherCode aggregates the payments recorded for a voucher code
func (h *PaymentHandler) ListByVoucherCode(c echo.Context) error {
	result, err := h.paymentService.ListByVoucherCode(c.Param("voucherCode"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"voucherCode":   result.VoucherCode,
		"payments":      toViews(result.Payments),
		"totalPayments": result.TotalPayments,
	})
}

// ListAll handles listing every payment
func (h *PaymentHandler) ListAll(c echo.Context) error {
	payments, err := h.paymentService.ListAll()
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toViews(payments))
}

// ListMine handles listing the caller's payments
func (h *PaymentHandler) ListMine(c echo.Context) error {
	payments, err := h.paymentService.ListMine(userID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toViews(payments))
}

// WebhookRequest represents the provider's webhook body
type WebhookRequest struct {
	ReferenceID string `json:"referenceId"`
	Status      string `json:"status"`
}

// Webhook handles the provider's asynchronous payment notification. The
// endpoint is unauthenticated; the reference id must map to a known
// payment before the status is trusted.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	var req WebhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}
	if req.ReferenceID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "referenceId is required",
		})
	}

	if err := h.paymentService.HandleWebhook(req.ReferenceID, req.Status); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
