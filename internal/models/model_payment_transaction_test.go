package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kisancoop/dairyops/pkg/types"
)

func TestPaymentTransactionRemainingRefundable(t *testing.T) {
	txn := &PaymentTransaction{
		Amount:       decimal.NewFromFloat(150.50),
		RefundAmount: decimal.NewFromFloat(50.50),
	}
	require.True(t, txn.RemainingRefundable().Equal(decimal.NewFromInt(100)))

	txn.RefundAmount = txn.Amount
	require.True(t, txn.RemainingRefundable().IsZero())
}

func TestPaymentTransactionIsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	pending := &PaymentTransaction{Status: types.PaymentStatusPending, ExpiresAt: &past}
	require.True(t, pending.IsExpired(now))

	initiated := &PaymentTransaction{Status: types.PaymentStatusInitiated, ExpiresAt: &future}
	require.False(t, initiated.IsExpired(now))

	// terminal statuses never expire, even past the deadline
	completed := &PaymentTransaction{Status: types.PaymentStatusCompleted, ExpiresAt: &past}
	require.False(t, completed.IsExpired(now))

	noDeadline := &PaymentTransaction{Status: types.PaymentStatusPending}
	require.False(t, noDeadline.IsExpired(now))
}

func TestPaymentTransactionCanRetry(t *testing.T) {
	txn := &PaymentTransaction{Status: types.PaymentStatusFailed, RetryCount: 1, MaxRetries: 3}
	require.True(t, txn.CanRetry())

	txn.RetryCount = 3
	require.False(t, txn.CanRetry())

	txn.RetryCount = 0
	txn.Status = types.PaymentStatusPending
	require.False(t, txn.CanRetry())
}
