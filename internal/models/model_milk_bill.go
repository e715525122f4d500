package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MilkBillStatus string

const (
	MilkBillStatusUnpaid MilkBillStatus = "UNPAID"
	MilkBillStatusPaid   MilkBillStatus = "PAID"
	MilkBillStatusFailed MilkBillStatus = "FAILED"
)

// MilkBill is a member's billing-period statement settled through the
// payment engine.
type MilkBill struct {
	ID            string          `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID        string          `gorm:"column:user_id;type:varchar(64);not null;index:idx_milk_bill_user" json:"user_id"`
	BillingPeriod string          `gorm:"column:billing_period;type:varchar(16);not null" json:"billing_period"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Status        MilkBillStatus  `gorm:"column:status;type:varchar(16);not null;default:'UNPAID'" json:"status"`
	PaidAt        *time.Time      `gorm:"column:paid_at" json:"paid_at"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (MilkBill) TableName() string { return "milk_bill" }
