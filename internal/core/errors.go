package core

import "errors"

// Sentinel errors classifying every caller-facing rejection. Services wrap
// these with fmt.Errorf("...: %w", Err...) so the HTTP layer can pick the
// response code with errors.Is without parsing message text.
var (
	// ErrValidation covers missing or malformed input
	ErrValidation = errors.New("validation error")

	// ErrVoucherState covers invalid, expired, already-used or
	// already-paid vouchers
	ErrVoucherState = errors.New("voucher state error")

	// ErrGatewayDispatch covers gateway authentication or
	// request-to-pay failures
	ErrGatewayDispatch = errors.New("gateway dispatch error")

	// ErrNotFound covers unknown payment ids and webhook references
	ErrNotFound = errors.New("not found")

	// ErrForbidden covers access to another user's payment
	ErrForbidden = errors.New("access denied")

	// ErrUnauthorized covers bad credentials and bad tokens
	ErrUnauthorized = errors.New("unauthorized")
)
