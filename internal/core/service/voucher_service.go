package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lipago/voucher-payments/internal/core"
	"github.com/lipago/voucher-payments/internal/metrics"
	"github.com/lipago/voucher-payments/internal/port/input"
	"github.com/lipago/voucher-payments/internal/port/output"
)

var phoneRegex = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,15}$`)

// VoucherServiceImpl implements the VoucherService input port
type VoucherServiceImpl struct {
	voucherRepo output.VoucherRepository
	sms         output.SMSPublisher
	log         logrus.FieldLogger
}

// NewVoucherService creates a new voucher service
func NewVoucherService(
	voucherRepo output.VoucherRepository,
	sms output.SMSPublisher,
	log logrus.FieldLogger,
) *VoucherServiceImpl {
	return &VoucherServiceImpl{
		voucherRepo: voucherRepo,
		sms:         sms,
		log:         log,
	}
}

// NewVoucherCode returns a fresh ten-character uppercase voucher code
func NewVoucherCode() string {
	return strings.ToUpper(uuid.NewString()[:core.VoucherCodeLength])
}

// Generate creates a voucher and queues an SMS with the code
func (s *VoucherServiceImpl) Generate(req input.GenerateVoucherRequest) (*input.GenerateVoucherResponse, error) {
	if req.PackageType == "" || req.ExpirationDate == "" || req.Phone == "" {
		return nil, fmt.Errorf("%w: all fields are required: package_type, expiration_date, phone", core.ErrValidation)
	}
	if strings.TrimSpace(req.PackageType) == "" {
		return nil, fmt.Errorf("%w: package type must be a non-empty string", core.ErrValidation)
	}
	if !phoneRegex.MatchString(req.Phone) {
		return nil, fmt.Errorf("%w: invalid phone number format", core.ErrValidation)
	}

	expiration, err := time.Parse(time.RFC3339, req.ExpirationDate)
	if err != nil {
		// Accept a bare date as well
		expiration, err = time.Parse("2006-01-02", req.ExpirationDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid expiration date format", core.ErrValidation)
		}
	}
	now := time.Now()
	if !expiration.After(now) {
		return nil, fmt.Errorf("%w: expiration date must be in the future", core.ErrValidation)
	}
	if expiration.After(now.AddDate(1, 0, 0)) {
		return nil, fmt.Errorf("%w: expiration date cannot be more than 1 year in the future", core.ErrValidation)
	}

	voucher := &core.Voucher{
		Code:           NewVoucherCode(),
		PackageType:    strings.TrimSpace(req.PackageType),
		ExpirationDate: expiration,
	}
	if err := s.voucherRepo.Create(voucher); err != nil {
		return nil, fmt.Errorf("failed to generate voucher: %w", err)
	}
	metrics.VouchersGenerated.WithLabelValues(voucher.PackageType).Inc()

	text := fmt.Sprintf("Your voucher code: %s for %s package", voucher.Code, voucher.PackageType)
	if err := s.sms.PublishSMS(req.Phone, text); err != nil {
		// The voucher exists either way; delivery gets retried by hand
		s.log.WithError(err).WithField("code", voucher.Code).Error("failed to queue voucher SMS")
	}

	return &input.GenerateVoucherResponse{
		Code:           voucher.Code,
		PackageType:    voucher.PackageType,
		ExpirationDate: voucher.ExpirationDate,
	}, nil
}

// Validate redeems an unused, unexpired voucher for userID. Redemption
// goes through the same conditional used-flag update as payment
// finalization, so racing finalizers consume the voucher at most once.
func (s *VoucherServiceImpl) Validate(code string, userID uint) (*input.ValidateVoucherResponse, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: voucher code is required", core.ErrValidation)
	}
	code = core.NormalizeVoucherCode(code)
	if len(code) != core.VoucherCodeLength {
		return nil, fmt.Errorf("%w: voucher code must be exactly %d characters long", core.ErrValidation, core.VoucherCodeLength)
	}
	if !core.ValidVoucherCode(code) {
		return nil, fmt.Errorf("%w: voucher code must contain only uppercase letters and numbers", core.ErrValidation)
	}

	voucher, err := s.voucherRepo.GetByCode(code)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return &input.ValidateVoucherResponse{OK: false, Reason: "invalid_or_expired"}, nil
		}
		return nil, fmt.Errorf("failed to look up voucher: %w", err)
	}
	if voucher.Used || voucher.IsExpired(time.Now()) {
		return &input.ValidateVoucherResponse{OK: false, Reason: "invalid_or_expired"}, nil
	}

	consumed, err := s.voucherRepo.FinalizeIfUnused(voucher.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem voucher: %w", err)
	}
	if !consumed {
		// Another finalizer got there between the read and the write
		return &input.ValidateVoucherResponse{OK: false, Reason: "invalid_or_expired"}, nil
	}
	metrics.VouchersRedeemed.WithLabelValues("validate").Inc()

	return &input.ValidateVoucherResponse{
		OK:          true,
		Code:        voucher.Code,
		PackageType: voucher.PackageType,
	}, nil
}
