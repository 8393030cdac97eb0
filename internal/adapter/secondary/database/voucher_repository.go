package database

import (
	"errors"
	"fmt"

	"github.com/lipago/voucher-payments/internal/constant/model/db"
	"github.com/lipago/voucher-payments/internal/core"
	"github.com/lipago/voucher-payments/internal/port/output"
	"gorm.io/gorm"
)

// GormVoucherRepository is a secondary adapter that implements the
// VoucherRepository output port
type GormVoucherRepository struct {
	gormDB *gorm.DB
}

// NewGormVoucherRepository creates a new GORM voucher repository
func NewGormVoucherRepository(gormDB *gorm.DB) output.VoucherRepository {
	return &GormVoucherRepository{gormDB: gormDB}
}

func voucherToCore(v *db.Voucher) *core.Voucher {
	return &core.Voucher{
		ID:             v.ID,
		Code:           v.Code,
		PackageType:    v.PackageType,
		ExpirationDate: v.ExpirationDate,
		Used:           v.Used,
		UsedBy:         v.UsedBy,
	}
}

// Create inserts a new voucher row
func (r *GormVoucherRepository) Create(voucher *core.Voucher) error {
	dbVoucher := &db.Voucher{
		Code:           voucher.Code,
		PackageType:    voucher.PackageType,
		ExpirationDate: voucher.ExpirationDate,
	}
	if err := r.gormDB.Create(dbVoucher).Error; err != nil {
		return fmt.Errorf("failed to create voucher: %w", err)
	}
	voucher.ID = dbVoucher.ID
	return nil
}

// GetByCode retrieves a voucher by its code
func (r *GormVoucherRepository) GetByCode(code string) (*core.Voucher, error) {
	var dbVoucher db.Voucher
	if err := r.gormDB.Where("code = ?", code).First(&dbVoucher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: voucher %s", core.ErrNotFound, code)
		}
		return nil, fmt.Errorf("failed to get voucher: %w", err)
	}
	return voucherToCore(&dbVoucher), nil
}

// FinalizeIfUnused conditionally marks the voucher used by userID. The
// single UPDATE restricted to used = FALSE is the serialization point
// between racing finalizers; zero rows affected means someone else
// already consumed the voucher.
func (r *GormVoucherRepository) FinalizeIfUnused(voucherID, userID uint) (bool, error) {
	res := r.gormDB.Model(&db.Voucher{}).
		Where("id = ? AND used = ?", voucherID, false).
		Updates(map[string]interface{}{
			"used":    true,
			"used_by": userID,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to finalize voucher: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
