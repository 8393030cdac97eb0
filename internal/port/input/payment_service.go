package input

import (
	"github.com/lipago/voucher-payments/internal/core"
)

// PaymentService is an input port (primary port) for payment operations
// Primary adapters (HTTP handlers) will use this
type PaymentService interface {
	// Init creates a payment and dispatches it to the selected gateway
	Init(req InitPaymentRequest) (*InitPaymentResponse, error)

	// GetStatus retrieves a payment owned by userID
	GetStatus(paymentID, userID uint) (*core.Payment, error)

	// HandleWebhook applies a provider status notification identified
	// by the gateway reference id
	HandleWebhook(referenceID, providerStatus string) error

	// ListAll retrieves every payment, newest first
	ListAll() ([]core.Payment, error)

	// ListMine retrieves the payments of one user, newest first
	ListMine(userID uint) ([]core.Payment, error)

	// ListByVoucherCode aggregates the payments recorded for a voucher code
	ListByVoucherCode(code string) (*VoucherPayments, error)
}

// InitPaymentRequest represents the request to initialize a payment
type InitPaymentRequest struct {
	Gateway     core.Gateway
	Amount      float64
	PhoneNumber string
	VoucherCode string
	UserID      uint
}

// InitPaymentResponse represents the response for a payment initialization
type InitPaymentResponse struct {
	PaymentID   uint
	Status      core.PaymentStatus
	ReferenceID string
	RedirectURL string
	Message     string
}

// VoucherPayments aggregates the payments made against one voucher code
type VoucherPayments struct {
	VoucherCode   string
	Payments      []core.Payment
	TotalPayments int
}
