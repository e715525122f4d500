package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/kisancoop/dairyops/pkg/types"
)

// PaymentRefund is one refund request against a transaction. A transaction
// may accumulate several partial refunds.
type PaymentRefund struct {
	ID               string             `gorm:"column:id;primary_key;type:uuid" json:"id"`
	MerchantRefundID string             `gorm:"column:merchant_refund_id;type:varchar(64);not null;uniqueIndex:unique_merchant_refund_id" json:"merchant_refund_id"`
	MerchantOrderID  string             `gorm:"column:merchant_order_id;type:varchar(63);not null;index:idx_refund_merchant_order_id" json:"merchant_order_id"`
	Amount           decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Status           types.RefundStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	GatewayRefundID  *string            `gorm:"column:gateway_refund_id;type:varchar(128)" json:"gateway_refund_id"`
	Reason           string             `gorm:"column:reason;type:varchar(255)" json:"reason"`
	InitiatedBy      string             `gorm:"column:initiated_by;type:varchar(64)" json:"initiated_by"`
	GatewayResponse  datatypes.JSON     `gorm:"column:gateway_response;type:jsonb" json:"gateway_response"`
	CreatedAt        time.Time          `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"column:updated_at" json:"updated_at"`
	CompletedAt      *time.Time         `gorm:"column:completed_at" json:"completed_at"`
}

func (PaymentRefund) TableName() string { return "payment_refund" }
