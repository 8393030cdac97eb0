package output

import (
	"github.com/lipago/voucher-payments/internal/core"
)

// VoucherRepository is an output port (secondary port) for voucher data access
type VoucherRepository interface {
	// Create inserts a new voucher row
	Create(voucher *core.Voucher) error

	// GetByCode retrieves a voucher by its code
	GetByCode(code string) (*core.Voucher, error)

	// FinalizeIfUnused conditionally marks the voucher used by userID.
	// The update is restricted to rows where used is still false; a
	// false result means another finalizer already consumed it, which
	// callers treat as a no-op, not an error.
	FinalizeIfUnused(voucherID, userID uint) (bool, error)
}
