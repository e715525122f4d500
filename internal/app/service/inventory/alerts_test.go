package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kisancoop/dairyops/pkg/types"
)

func TestClassifyExpiry(t *testing.T) {
	cases := []struct {
		days int
		want types.AlertSeverity
	}{
		{-10, types.AlertSeverityExpired},
		{-1, types.AlertSeverityExpired},
		{0, types.AlertSeverityCritical},
		{7, types.AlertSeverityCritical},
		{8, types.AlertSeverityWarning},
		{30, types.AlertSeverityWarning},
		{31, ""},
		{365, ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, classifyExpiry(tc.days, 7, 30), "days=%d", tc.days)
	}
}

func TestClassifyAllocation(t *testing.T) {
	min := decimal.NewFromInt(5)
	threshold := decimal.NewFromInt(10)

	require.Equal(t, types.AlertSeverityCritical, classifyAllocation(decimal.NewFromInt(3), min, threshold))
	require.Equal(t, types.AlertSeverityCritical, classifyAllocation(decimal.NewFromInt(5), min, threshold))
	require.Equal(t, types.AlertSeverityWarning, classifyAllocation(decimal.NewFromInt(6), min, threshold))
	require.Equal(t, types.AlertSeverityWarning, classifyAllocation(decimal.NewFromInt(10), min, threshold))
	require.Equal(t, types.AlertSeverity(""), classifyAllocation(decimal.NewFromInt(11), min, threshold))
}

func TestAlertSeverityOrdering(t *testing.T) {
	// dashboards list expired first, then critical, then warning
	require.Less(t, types.AlertSeverityExpired.Rank(), types.AlertSeverityCritical.Rank())
	require.Less(t, types.AlertSeverityCritical.Rank(), types.AlertSeverityWarning.Rank())
}
