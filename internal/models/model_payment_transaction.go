package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/kisancoop/dairyops/pkg/types"
)

// PaymentTransaction is the authoritative record of one payment attempt.
type PaymentTransaction struct {
	ID                   string                   `gorm:"column:id;primary_key;type:uuid" json:"id"`
	MerchantOrderID      string                   `gorm:"column:merchant_order_id;type:varchar(63);not null;uniqueIndex:unique_merchant_order_id" json:"merchant_order_id"`
	GatewayTransactionID *string                  `gorm:"column:gateway_transaction_id;type:varchar(128)" json:"gateway_transaction_id"`
	Amount               decimal.Decimal          `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Currency             string                   `gorm:"column:currency;type:varchar(8);not null;default:'INR'" json:"currency"`
	Status               types.PaymentStatus      `gorm:"column:status;type:varchar(32);not null;index:idx_status" json:"status"`
	TransactionType      types.PaymentTransactionType `gorm:"column:transaction_type;type:varchar(32);not null" json:"transaction_type"`
	// RelatedKind+RelatedObjectID link the payment to its owning business
	// object. Both set or both null.
	RelatedKind     *types.RelatedObjectKind `gorm:"column:related_kind;type:varchar(32)" json:"related_kind"`
	RelatedObjectID *string                  `gorm:"column:related_object_id;type:varchar(64);index:idx_related_object" json:"related_object_id"`
	UserIdentifier  string                   `gorm:"column:user_identifier;type:varchar(255);not null;index:idx_user_identifier" json:"user_identifier"`
	RedirectURL     string                   `gorm:"column:redirect_url;type:varchar(512)" json:"redirect_url"`

	PaymentMethodType *types.PaymentMethodType `gorm:"column:payment_method_type;type:varchar(32)" json:"payment_method_type"`
	PaymentMethod     datatypes.JSON           `gorm:"column:payment_method;type:jsonb" json:"payment_method"`

	UDF1     string         `gorm:"column:udf1;type:varchar(255)" json:"udf1"`
	UDF2     string         `gorm:"column:udf2;type:varchar(255)" json:"udf2"`
	UDF3     string         `gorm:"column:udf3;type:varchar(255)" json:"udf3"`
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`

	// WebhookResponse keeps the latest verified gateway payload verbatim.
	WebhookResponse        datatypes.JSON `gorm:"column:webhook_response;type:jsonb" json:"webhook_response"`
	GatewayResponseCode    *string        `gorm:"column:gateway_response_code;type:varchar(64)" json:"gateway_response_code"`
	GatewayResponseMessage *string        `gorm:"column:gateway_response_message;type:varchar(255)" json:"gateway_response_message"`

	RetryCount int `gorm:"column:retry_count;not null;default:0" json:"retry_count"`
	MaxRetries int `gorm:"column:max_retries;not null;default:3" json:"max_retries"`

	RefundAmount      decimal.Decimal `gorm:"column:refund_amount;type:numeric(12,2);not null;default:0" json:"refund_amount"`
	RefundInitiatedAt *time.Time      `gorm:"column:refund_initiated_at" json:"refund_initiated_at"`
	RefundCompletedAt *time.Time      `gorm:"column:refund_completed_at" json:"refund_completed_at"`
	RefundReferenceID *string         `gorm:"column:refund_reference_id;type:varchar(64)" json:"refund_reference_id"`

	Checksum  string  `gorm:"column:checksum;type:varchar(64);not null" json:"-"`
	IPAddress *string `gorm:"column:ip_address;type:varchar(64)" json:"ip_address"`
	UserAgent *string `gorm:"column:user_agent;type:varchar(255)" json:"user_agent"`

	CreatedAt   time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updated_at"`
	VerifiedAt  *time.Time `gorm:"column:verified_at" json:"verified_at"`
	ExpiresAt   *time.Time `gorm:"column:expires_at;index:idx_expires_at" json:"expires_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`

	IsDeleted bool       `gorm:"column:is_deleted;not null;default:false;index:idx_is_deleted" json:"is_deleted"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at"`
}

func (PaymentTransaction) TableName() string { return "payment_transaction" }

// RemainingRefundable is amount minus what has already been refunded.
func (t *PaymentTransaction) RemainingRefundable() decimal.Decimal {
	return t.Amount.Sub(t.RefundAmount)
}

func (t *PaymentTransaction) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt) &&
		(t.Status == types.PaymentStatusInitiated || t.Status == types.PaymentStatusPending)
}

func (t *PaymentTransaction) CanRetry() bool {
	return t.Status == types.PaymentStatusFailed && t.RetryCount < t.MaxRetries
}
