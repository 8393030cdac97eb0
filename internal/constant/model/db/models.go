package db

import (
	"time"
)

// PaymentStatus mirrors core.PaymentStatus at the persistence boundary
type PaymentStatus string

const (
	PaymentStatusInit    PaymentStatus = "INIT"
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Payment represents a payment row
type Payment struct {
	ID                 uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             uint          `gorm:"not null;index" json:"user_id"`
	Gateway            string        `gorm:"type:varchar(20);not null" json:"gateway"`
	Amount             float64       `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status             PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`
	PhoneNumber        *string       `gorm:"type:varchar(20)" json:"phone_number"`
	GatewayReferenceID *string       `gorm:"type:varchar(64);index" json:"gateway_reference_id"`
	VoucherID          *uint         `gorm:"index" json:"voucher_id"`
	VoucherCode        *string       `gorm:"type:varchar(10);index" json:"voucher_code"`
	PackageType        *string       `gorm:"type:varchar(50)" json:"package_type"`
	ErrorMessage       *string       `gorm:"type:text" json:"error_message"`
	CreatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// Voucher represents a voucher row
type Voucher struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code           string    `gorm:"type:varchar(10);not null;uniqueIndex" json:"code"`
	PackageType    string    `gorm:"type:varchar(50);not null" json:"package_type"`
	ExpirationDate time.Time `gorm:"not null" json:"expiration_date"`
	Used           bool      `gorm:"not null;default:false" json:"used"`
	UsedBy         *uint     `json:"used_by"`
}

// TableName specifies the table name for GORM
func (Voucher) TableName() string {
	return "vouchers"
}

// User represents a user row
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Phone        string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Fullname     string    `gorm:"type:varchar(50);not null" json:"fullname"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
