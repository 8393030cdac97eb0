package input

import "time"

// VoucherService is an input port for voucher generation and redemption
type VoucherService interface {
	// Generate creates a voucher and notifies the recipient by SMS
	Generate(req GenerateVoucherRequest) (*GenerateVoucherResponse, error)

	// Validate redeems an unused, unexpired voucher for userID
	Validate(code string, userID uint) (*ValidateVoucherResponse, error)
}

// GenerateVoucherRequest represents the request to generate a voucher
type GenerateVoucherRequest struct {
	PackageType    string
	ExpirationDate string
	Phone          string
}

// GenerateVoucherResponse carries the generated voucher details
type GenerateVoucherResponse struct {
	Code           string
	PackageType    string
	ExpirationDate time.Time
}

// ValidateVoucherResponse reports the outcome of a redemption attempt
type ValidateVoucherResponse struct {
	OK          bool
	Reason      string
	Code        string
	PackageType string
}
