package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaymentStatus_AllowedTransitions(t *testing.T) {
	cases := []struct {
		from, to PaymentStatus
		allowed  bool
	}{
		{PaymentStatusInitiated, PaymentStatusPending, true},
		{PaymentStatusInitiated, PaymentStatusCompleted, true},
		{PaymentStatusInitiated, PaymentStatusFailed, true},
		{PaymentStatusInitiated, PaymentStatusExpired, true},
		{PaymentStatusPending, PaymentStatusCompleted, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusPending, PaymentStatusExpired, true},
		{PaymentStatusFailed, PaymentStatusInitiated, true},
		{PaymentStatusCompleted, PaymentStatusPartiallyRefunded, true},
		{PaymentStatusCompleted, PaymentStatusRefunded, true},
		{PaymentStatusPartiallyRefunded, PaymentStatusRefunded, true},

		{PaymentStatusCompleted, PaymentStatusFailed, false},
		{PaymentStatusCompleted, PaymentStatusPending, false},
		{PaymentStatusExpired, PaymentStatusCompleted, false},
		{PaymentStatusRefunded, PaymentStatusCompleted, false},
		{PaymentStatusFailed, PaymentStatusCompleted, false},
		{PaymentStatusPending, PaymentStatusInitiated, false},
	}
	for _, tc := range cases {
		require.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestPaymentStatus_Terminal(t *testing.T) {
	require.False(t, PaymentStatusInitiated.IsTerminal())
	require.False(t, PaymentStatusPending.IsTerminal())
	require.True(t, PaymentStatusCompleted.IsTerminal())
	require.True(t, PaymentStatusFailed.IsTerminal())
	require.True(t, PaymentStatusExpired.IsTerminal())
	require.True(t, PaymentStatusRefunded.IsTerminal())
}

func TestPaymentStatus_Refundable(t *testing.T) {
	require.True(t, PaymentStatusCompleted.Refundable())
	require.True(t, PaymentStatusPartiallyRefunded.Refundable())
	require.False(t, PaymentStatusPending.Refundable())
	require.False(t, PaymentStatusRefunded.Refundable())
}

func TestPaymentTransactionType_Valid(t *testing.T) {
	require.True(t, TransactionTypeMilkBill.Valid())
	require.True(t, TransactionTypeOther.Valid())
	require.False(t, PaymentTransactionType("GIFT").Valid())
	require.False(t, PaymentTransactionType("").Valid())
}

func TestRelatedObjectKind_Valid(t *testing.T) {
	require.True(t, RelatedKindMilkBill.Valid())
	require.True(t, RelatedKindCaseEntry.Valid())
	require.False(t, RelatedObjectKind("invoice").Valid())
}
