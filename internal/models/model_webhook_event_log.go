package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventLogStatus string

const (
	WebhookEventLogStatusReceived     WebhookEventLogStatus = "received"
	WebhookEventLogStatusHandled      WebhookEventLogStatus = "handled"
	WebhookEventLogStatusHandleFailed WebhookEventLogStatus = "handle_failed"
)

// WebhookEventLog records every verified gateway callback for audit and
// replay diagnosis, independent of the transaction row it mutated.
type WebhookEventLog struct {
	ID              string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	TraceID         string                `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	MerchantOrderID string                `gorm:"column:merchant_order_id;type:varchar(63);index:idx_webhook_merchant_order_id" json:"merchant_order_id"`
	EventType       string                `gorm:"column:event_type;type:varchar(64)" json:"event_type"`
	State           string                `gorm:"column:state;type:varchar(32)" json:"state"`
	Data            datatypes.JSON        `gorm:"column:data;type:jsonb" json:"data"`
	Result          *datatypes.JSON       `gorm:"column:result;type:jsonb" json:"result"`
	Status          WebhookEventLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func (WebhookEventLog) TableName() string { return "webhook_event_log" }
