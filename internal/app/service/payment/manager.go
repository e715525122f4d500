package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/types"
)

type InitiateRequest struct {
	Amount            decimal.Decimal              `json:"amount"`
	RedirectURL       string                       `json:"redirect_url"`
	UserIdentifier    string                       `json:"user_identifier"`
	TransactionType   types.PaymentTransactionType `json:"transaction_type"`
	PaymentMethodType *types.PaymentMethodType     `json:"payment_method_type"`
	RelatedModel      *types.RelatedObjectKind     `json:"related_model"`
	RelatedObjectID   *string                      `json:"related_object_id"`
	UDF1              string                       `json:"udf1"`
	UDF2              string                       `json:"udf2"`
	UDF3              string                       `json:"udf3"`
	Metadata          map[string]any               `json:"metadata"`
	IPAddress         string                       `json:"-"`
	UserAgent         string                       `json:"-"`
}

type InitiateResult struct {
	MerchantOrderID  string              `json:"merchant_order_id"`
	CheckoutURL      string              `json:"checkout_url"`
	Amount           decimal.Decimal     `json:"amount"`
	FinalRedirectURL string              `json:"final_redirect_url"`
	Status           types.PaymentStatus `json:"status"`
	ExpiresAt        *time.Time          `json:"expires_at"`
}

type WebhookAck struct {
	Success         bool   `json:"success"`
	MerchantOrderID string `json:"merchant_order_id"`
	State           string `json:"state"`
}

type RefundInitiateRequest struct {
	MerchantOrderID string           `json:"merchant_order_id"`
	Amount          *decimal.Decimal `json:"amount"`
	Reason          string           `json:"reason"`
	InitiatedBy     string           `json:"-"`
}

type RefundAck struct {
	MerchantRefundID string              `json:"merchant_refund_id"`
	MerchantOrderID  string              `json:"merchant_order_id"`
	Amount           decimal.Decimal     `json:"amount"`
	RefundAmount     decimal.Decimal     `json:"refund_amount"`
	Status           types.PaymentStatus `json:"status"`
}

type MilkBillPaymentRequest struct {
	Amount          decimal.Decimal          `json:"amount"`
	UserIdentifier  string                   `json:"user_identifier"`
	RelatedModel    *types.RelatedObjectKind `json:"related_model"`
	RelatedObjectID *string                  `json:"related_object_id"`
	Notes           string                   `json:"notes"`
}

type ScanTransactionsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanTransactionsResponse struct {
	Items []*models.PaymentTransaction `json:"items"`
	Total int64                        `json:"total"`
}

// Manager is the payment engine surface consumed by handlers and sweeps.
type Manager interface {
	Initiate(ctx context.Context, req *InitiateRequest) (*InitiateResult, error)
	ProcessWebhook(ctx context.Context, authorization string, rawBody []byte) (*WebhookAck, error)
	CheckStatus(ctx context.Context, merchantOrderID string) (*models.PaymentTransaction, error)
	VerifyWithGateway(ctx context.Context, merchantOrderID string) (*models.PaymentTransaction, error)
	InitiateRefund(ctx context.Context, req *RefundInitiateRequest) (*RefundAck, error)
	RefundStatus(ctx context.Context, merchantRefundID string) (*models.PaymentRefund, error)
	Retry(ctx context.Context, merchantOrderID string) (*InitiateResult, error)
	MilkBillPayment(ctx context.Context, req *MilkBillPaymentRequest) (*models.PaymentTransaction, error)
	ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error)

	ExpireStale(ctx context.Context, now time.Time) (int64, error)
	PollPending(ctx context.Context, limit int) (int, error)
}
