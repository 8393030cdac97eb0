package output

import (
	"github.com/lipago/voucher-payments/internal/core"
)

// PaymentRepository is an output port (secondary port) for payment data access
// Secondary adapters (database implementations) will implement this
type PaymentRepository interface {
	// Create inserts a new payment row
	Create(payment *core.Payment) error

	// GetByID retrieves a payment by its ID
	GetByID(id uint) (*core.Payment, error)

	// GetByReferenceID retrieves a payment by its gateway reference id
	GetByReferenceID(referenceID string) (*core.Payment, error)

	// MarkPending records the gateway reference id and moves the
	// payment from INIT to PENDING
	MarkPending(id uint, referenceID string) error

	// Finalize conditionally moves a payment into a terminal status.
	// The update is restricted to rows not already terminal; false
	// means another finalizer won the race and nothing was written.
	Finalize(id uint, status core.PaymentStatus, errorMessage string) (bool, error)

	// HasPaidForVoucherCode reports whether any PAID payment already
	// references the voucher code
	HasPaidForVoucherCode(code string) (bool, error)

	// ListAll retrieves every payment, newest first
	ListAll() ([]core.Payment, error)

	// ListByUser retrieves one user's payments, newest first
	ListByUser(userID uint) ([]core.Payment, error)

	// ListByVoucherCode retrieves the payments referencing a voucher
	// code, newest first
	ListByVoucherCode(code string) ([]core.Payment, error)
}
