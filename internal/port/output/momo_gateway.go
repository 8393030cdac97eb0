package output

import (
	"context"

	"github.com/lipago/voucher-payments/internal/core"
)

// MomoGateway is an output port for the mobile-money provider. The payment
// engine only knows these three capabilities; the wire format lives in the
// secondary adapter.
type MomoGateway interface {
	// Authenticate exchanges the configured credentials for a
	// short-lived bearer token
	Authenticate(ctx context.Context) (string, error)

	// RequestToPay validates phone and amount, then submits a
	// request-to-pay and returns the fresh reference id used to
	// correlate later status queries and webhooks. Success means the
	// request was accepted, not that the payment completed.
	RequestToPay(ctx context.Context, phone string, amount float64, currency core.Currency, externalID, payeeNote, payerMessage string) (string, error)

	// CheckStatus returns the provider's current status string for a
	// reference id
	CheckStatus(ctx context.Context, referenceID string) (string, error)
}
