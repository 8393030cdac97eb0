package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/lipago/voucher-payments/internal/constant/model/db"
	"github.com/lipago/voucher-payments/internal/core"
	"github.com/lipago/voucher-payments/internal/port/output"
	"gorm.io/gorm"
)

// GormPaymentRepository is a secondary adapter that implements the
// PaymentRepository output port
type GormPaymentRepository struct {
	gormDB *gorm.DB
}

// NewGormPaymentRepository creates a new GORM payment repository
func NewGormPaymentRepository(gormDB *gorm.DB) output.PaymentRepository {
	return &GormPaymentRepository{gormDB: gormDB}
}

// toCore converts db.Payment to core.Payment
func toCore(p *db.Payment) *core.Payment {
	out := &core.Payment{
		ID:        p.ID,
		UserID:    p.UserID,
		Gateway:   core.Gateway(p.Gateway),
		Amount:    p.Amount,
		Status:    core.PaymentStatus(p.Status),
		VoucherID: p.VoucherID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.PhoneNumber != nil {
		out.PhoneNumber = *p.PhoneNumber
	}
	if p.GatewayReferenceID != nil {
		out.GatewayReferenceID = *p.GatewayReferenceID
	}
	if p.VoucherCode != nil {
		out.VoucherCode = *p.VoucherCode
	}
	if p.PackageType != nil {
		out.PackageType = *p.PackageType
	}
	if p.ErrorMessage != nil {
		out.ErrorMessage = *p.ErrorMessage
	}
	return out
}

// fromCore converts core.Payment to db.Payment
func fromCore(p *core.Payment) *db.Payment {
	out := &db.Payment{
		ID:        p.ID,
		UserID:    p.UserID,
		Gateway:   string(p.Gateway),
		Amount:    p.Amount,
		Status:    db.PaymentStatus(p.Status),
		VoucherID: p.VoucherID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.PhoneNumber != "" {
		out.PhoneNumber = &p.PhoneNumber
	}
	if p.GatewayReferenceID != "" {
		out.GatewayReferenceID = &p.GatewayReferenceID
	}
	if p.VoucherCode != "" {
		out.VoucherCode = &p.VoucherCode
	}
	if p.PackageType != "" {
		out.PackageType = &p.PackageType
	}
	if p.ErrorMessage != "" {
		out.ErrorMessage = &p.ErrorMessage
	}
	return out
}

// Create inserts a new payment row
func (r *GormPaymentRepository) Create(payment *core.Payment) error {
	dbPayment := fromCore(payment)
	if err := r.gormDB.Create(dbPayment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	payment.ID = dbPayment.ID
	payment.CreatedAt = dbPayment.CreatedAt
	payment.UpdatedAt = dbPayment.UpdatedAt
	return nil
}

// GetByID retrieves a payment by its ID
func (r *GormPaymentRepository) GetByID(id uint) (*core.Payment, error) {
	var dbPayment db.Payment
	if err := r.gormDB.Where("id = ?", id).First(&dbPayment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: payment %d", core.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return toCore(&dbPayment), nil
}

// GetByReferenceID retrieves a payment by its gateway reference id
func (r *GormPaymentRepository) GetByReferenceID(referenceID string) (*core.Payment, error) {
	var dbPayment db.Payment
	if err := r.gormDB.Where("gateway_reference_id = ?", referenceID).First(&dbPayment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no payment for reference %s", core.ErrNotFound, referenceID)
		}
		return nil, fmt.Errorf("failed to get payment by reference: %w", err)
	}
	return toCore(&dbPayment), nil
}

// MarkPending records the gateway reference id and moves the payment from
// INIT to PENDING
func (r *GormPaymentRepository) MarkPending(id uint, referenceID string) error {
	res := r.gormDB.Model(&db.Payment{}).
		Where("id = ? AND status = ?", id, db.PaymentStatusInit).
		Updates(map[string]interface{}{
			"gateway_reference_id": referenceID,
			"status":               db.PaymentStatusPending,
			"updated_at":           time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark payment pending: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: payment %d not in INIT", core.ErrNotFound, id)
	}
	return nil
}

// Finalize conditionally moves a payment into a terminal status. The
// single UPDATE is restricted to non-terminal rows, which is the
// compare-and-set that keeps racing finalizers from regressing a terminal
// state; zero rows affected means another finalizer won.
func (r *GormPaymentRepository) Finalize(id uint, status core.PaymentStatus, errorMessage string) (bool, error) {
	values := map[string]interface{}{
		"status":     db.PaymentStatus(status),
		"updated_at": time.Now(),
	}
	if errorMessage != "" {
		values["error_message"] = errorMessage
	} else {
		values["error_message"] = nil
	}

	res := r.gormDB.Model(&db.Payment{}).
		Where("id = ? AND status NOT IN ?", id, []db.PaymentStatus{db.PaymentStatusPaid, db.PaymentStatusFailed}).
		Updates(values)
	if res.Error != nil {
		return false, fmt.Errorf("failed to finalize payment: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// HasPaidForVoucherCode reports whether any PAID payment already
// references the voucher code
func (r *GormPaymentRepository) HasPaidForVoucherCode(code string) (bool, error) {
	var count int64
	if err := r.gormDB.Model(&db.Payment{}).
		Where("voucher_code = ? AND status = ?", code, db.PaymentStatusPaid).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check voucher payments: %w", err)
	}
	return count > 0, nil
}

// ListAll retrieves every payment, newest first
func (r *GormPaymentRepository) ListAll() ([]core.Payment, error) {
	return r.list(r.gormDB)
}

// ListByUser retrieves one user's payments, newest first
func (r *GormPaymentRepository) ListByUser(userID uint) ([]core.Payment, error) {
	return r.list(r.gormDB.Where("user_id = ?", userID))
}

// ListByVoucherCode retrieves the payments referencing a voucher code,
// newest first
func (r *GormPaymentRepository) ListByVoucherCode(code string) ([]core.Payment, error) {
	return r.list(r.gormDB.Where("voucher_code = ?", code))
}

func (r *GormPaymentRepository) list(tx *gorm.DB) ([]core.Payment, error) {
	var rows []db.Payment
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	out := make([]core.Payment, 0, len(rows))
	for i := range rows {
		out = append(out, *toCore(&rows[i]))
	}
	return out, nil
}
