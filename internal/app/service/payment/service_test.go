package payment

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/types"
)

// recordingHook counts settlement calls so hook side effects can be
// asserted without a database.
type recordingHook struct {
	paid       int
	failed     int
	lastReason string
}

func (h *recordingHook) MarkAsPaid(ctx context.Context, tx *gorm.DB, objectID string) error {
	h.paid++
	return nil
}

func (h *recordingHook) MarkAsFailed(ctx context.Context, tx *gorm.DB, objectID string, reason string) error {
	h.failed++
	h.lastReason = reason
	return nil
}

func serviceWithHook(hook SettlementHook) *Service {
	reg := &HookRegistry{hooks: map[types.RelatedObjectKind]SettlementHook{}}
	reg.Register(types.RelatedKindCaseEntry, hook)
	return &Service{hooks: reg}
}

func initiatedTxn() *models.PaymentTransaction {
	kind := types.RelatedKindCaseEntry
	objectID := "case-1"
	return &models.PaymentTransaction{
		MerchantOrderID: "ORD_CASE_C1_1700000000000_aaaaaaaa",
		Amount:          decimal.NewFromFloat(150.50),
		UserIdentifier:  "farmer-1",
		Status:          types.PaymentStatusInitiated,
		RelatedKind:     &kind,
		RelatedObjectID: &objectID,
	}
}

func TestApplyGatewayState_SuccessIsIdempotent(t *testing.T) {
	hook := &recordingHook{}
	s := serviceWithHook(hook)
	txn := initiatedTxn()

	require.NoError(t, s.applyGatewayState(context.Background(), nil, txn, "COMPLETED", "gw-1", "", ""))
	require.Equal(t, types.PaymentStatusCompleted, txn.Status)
	require.NotNil(t, txn.VerifiedAt)
	require.NotNil(t, txn.CompletedAt)
	require.Equal(t, "gw-1", *txn.GatewayTransactionID)
	require.Equal(t, 1, hook.paid)

	// Re-delivered success event: no error, no second settlement.
	require.NoError(t, s.applyGatewayState(context.Background(), nil, txn, "COMPLETED", "gw-1", "", ""))
	require.Equal(t, types.PaymentStatusCompleted, txn.Status)
	require.Equal(t, 1, hook.paid)
	require.Zero(t, hook.failed)
}

func TestApplyGatewayState_FailureAfterCompletionRejected(t *testing.T) {
	hook := &recordingHook{}
	s := serviceWithHook(hook)
	txn := initiatedTxn()

	require.NoError(t, s.applyGatewayState(context.Background(), nil, txn, "COMPLETED", "gw-1", "", ""))

	err := s.applyGatewayState(context.Background(), nil, txn, "FAILED", "", "ERR", "")
	require.ErrorIs(t, err, ErrIllegalTransition)
	require.Equal(t, types.PaymentStatusCompleted, txn.Status)
	require.Zero(t, hook.failed)
}

func TestApplyGatewayState_FailureReasonFallback(t *testing.T) {
	hook := &recordingHook{}
	s := serviceWithHook(hook)

	txn := initiatedTxn()
	require.NoError(t, s.applyGatewayState(context.Background(), nil, txn, "FAILED", "", "TXN_DECLINED", "INSUFFICIENT_FUNDS"))
	require.Equal(t, types.PaymentStatusFailed, txn.Status)
	require.Equal(t, "INSUFFICIENT_FUNDS", hook.lastReason)
	require.Equal(t, 1, hook.failed)

	txn = initiatedTxn()
	require.NoError(t, s.applyGatewayState(context.Background(), nil, txn, "FAILED", "", "TXN_DECLINED", ""))
	require.Equal(t, "TXN_DECLINED", hook.lastReason)

	txn = initiatedTxn()
	require.NoError(t, s.applyGatewayState(context.Background(), nil, txn, "FAILED", "", "", ""))
	require.Equal(t, "Payment Failed", hook.lastReason)
}

func TestApplyGatewayState_InterimStateMovesToPending(t *testing.T) {
	hook := &recordingHook{}
	s := serviceWithHook(hook)
	txn := initiatedTxn()

	require.NoError(t, s.applyGatewayState(context.Background(), nil, txn, "PROCESSING", "", "", ""))
	require.Equal(t, types.PaymentStatusPending, txn.Status)
	require.Zero(t, hook.paid)
	require.Zero(t, hook.failed)

	// A second interim event leaves the row pending.
	require.NoError(t, s.applyGatewayState(context.Background(), nil, txn, "PENDING", "", "", ""))
	require.Equal(t, types.PaymentStatusPending, txn.Status)

	// Completion after the interim states still settles once.
	require.NoError(t, s.applyGatewayState(context.Background(), nil, txn, "COMPLETED", "gw-1", "", ""))
	require.Equal(t, types.PaymentStatusCompleted, txn.Status)
	require.Equal(t, 1, hook.paid)
}

func TestApplyGatewayState_NoHookRegisteredSettlesSilently(t *testing.T) {
	s := &Service{hooks: &HookRegistry{hooks: map[types.RelatedObjectKind]SettlementHook{}}}
	txn := initiatedTxn()

	require.NoError(t, s.applyGatewayState(context.Background(), nil, txn, "COMPLETED", "gw-1", "", ""))
	require.Equal(t, types.PaymentStatusCompleted, txn.Status)
}

func TestApplyAmountCorrection(t *testing.T) {
	txn := initiatedTxn()
	txn.Checksum = Checksum(txn.MerchantOrderID, txn.Amount, txn.UserIdentifier)
	original := txn.Checksum

	// Matching amount: untouched.
	require.False(t, applyAmountCorrection(txn, minorUnits(txn.Amount)))
	require.Equal(t, original, txn.Checksum)

	// Missing amount on the event: untouched.
	require.False(t, applyAmountCorrection(txn, 0))

	// Gateway reports a different figure: it wins, checksum follows.
	require.True(t, applyAmountCorrection(txn, 16000))
	require.True(t, txn.Amount.Equal(decimal.NewFromInt(160)))
	require.Equal(t, Checksum(txn.MerchantOrderID, txn.Amount, txn.UserIdentifier), txn.Checksum)
	require.NotEqual(t, original, txn.Checksum)
}

func TestRefundAmount(t *testing.T) {
	txn := initiatedTxn()
	txn.Status = types.PaymentStatusCompleted
	txn.RefundAmount = decimal.NewFromInt(50)

	// Default is everything still refundable.
	amount, err := refundAmount(txn, nil)
	require.NoError(t, err)
	require.True(t, amount.Equal(decimal.NewFromFloat(100.50)))

	// A partial amount inside the remaining window is accepted.
	partial := decimal.NewFromInt(30)
	amount, err = refundAmount(txn, &partial)
	require.NoError(t, err)
	require.True(t, amount.Equal(partial))

	// Over-refund is rejected even though it is below the original amount.
	over := decimal.NewFromFloat(100.51)
	_, err = refundAmount(txn, &over)
	require.ErrorIs(t, err, ErrRefundExceedsAmount)

	zero := decimal.Zero
	_, err = refundAmount(txn, &zero)
	require.ErrorIs(t, err, ErrValidation)
}
