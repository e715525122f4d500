package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransferStatus_Transitions(t *testing.T) {
	require.True(t, TransferStatusPending.CanTransitionTo(TransferStatusInTransit))
	require.True(t, TransferStatusPending.CanTransitionTo(TransferStatusCancelled))
	require.True(t, TransferStatusInTransit.CanTransitionTo(TransferStatusReceived))
	require.True(t, TransferStatusInTransit.CanTransitionTo(TransferStatusCancelled))

	require.False(t, TransferStatusPending.CanTransitionTo(TransferStatusReceived))
	require.False(t, TransferStatusReceived.CanTransitionTo(TransferStatusCancelled))
	require.False(t, TransferStatusCancelled.CanTransitionTo(TransferStatusInTransit))
}

func TestApprovalStatus_Terminal(t *testing.T) {
	require.False(t, ApprovalStatusPending.Terminal())
	require.True(t, ApprovalStatusApproved.Terminal())
	require.True(t, ApprovalStatusRejected.Terminal())
}

func TestAlertSeverity_Rank(t *testing.T) {
	require.Less(t, AlertSeverityExpired.Rank(), AlertSeverityCritical.Rank())
	require.Less(t, AlertSeverityCritical.Rank(), AlertSeverityWarning.Rank())
	require.Equal(t, 3, AlertSeverity("unknown").Rank())
}
