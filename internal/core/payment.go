package core

import (
	"time"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusInit    PaymentStatus = "INIT"
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Gateway selects the payment provider for one payment attempt
type Gateway string

const (
	GatewayMTN    Gateway = "MTN"
	GatewayAirtel Gateway = "Airtel"
)

// Currency represents supported currencies
type Currency string

const (
	CurrencyEUR Currency = "EUR"
)

// Payment represents one attempt to pay for a package
type Payment struct {
	ID                 uint
	UserID             uint
	Gateway            Gateway
	Amount             float64
	Status             PaymentStatus
	PhoneNumber        string
	GatewayReferenceID string
	VoucherID          *uint
	VoucherCode        string
	PackageType        string
	ErrorMessage       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsTerminal checks if payment is in a terminal state
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusPaid || p.Status == PaymentStatusFailed
}

// IsPending checks if payment is awaiting gateway confirmation
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// MapProviderStatus translates a provider-reported status string into an
// internal payment status. Anything the provider has not resolved yet maps
// to PENDING, which callers treat as a no-op. The webhook handler and the
// status poller both go through this single table so the two paths can
// never disagree on a mapping.
func MapProviderStatus(providerStatus string) PaymentStatus {
	switch providerStatus {
	case "SUCCESSFUL":
		return PaymentStatusPaid
	case "FAILED", "TIMEOUT":
		return PaymentStatusFailed
	default:
		return PaymentStatusPending
	}
}
