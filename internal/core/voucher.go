package core

import (
	"regexp"
	"strings"
	"time"
)

// VoucherCodeLength is the fixed length of generated voucher codes
const VoucherCodeLength = 10

var voucherCodeRegex = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// Voucher represents a redeemable prepaid credit for a package type
type Voucher struct {
	ID             uint
	Code           string
	PackageType    string
	ExpirationDate time.Time
	Used           bool
	UsedBy         *uint
}

// IsExpired reports whether the voucher can no longer be redeemed
func (v *Voucher) IsExpired(now time.Time) bool {
	return !v.ExpirationDate.After(now)
}

// NormalizeVoucherCode trims and uppercases a user-supplied voucher code
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidVoucherCode reports whether code has the generated shape:
// exactly ten uppercase alphanumeric characters
func ValidVoucherCode(code string) bool {
	return voucherCodeRegex.MatchString(code)
}
