package payment

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestGenerateMerchantOrderID_Format(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	id := GenerateMerchantOrderID("milk_bill", "bill-42", now)

	parts := strings.Split(id, "_")
	require.Len(t, parts, 5)
	require.Equal(t, "ORD", parts[0])
	require.Equal(t, "MILKBILL", parts[1])
	require.Equal(t, "BILL42", parts[2])
	require.Equal(t, "1700000000000", parts[3])
	require.Len(t, parts[4], 8)
	require.LessOrEqual(t, len(id), 63)
}

func TestGenerateMerchantOrderID_Defaults(t *testing.T) {
	id := GenerateMerchantOrderID("", "", time.Now())
	require.True(t, strings.HasPrefix(id, "ORD_GEN_NA_"))
}

func TestGenerateMerchantOrderID_TruncatesLongParts(t *testing.T) {
	id := GenerateMerchantOrderID("averyveryverylongmodel", "object-identifier-well-beyond-twelve", time.Now())
	parts := strings.Split(id, "_")
	require.LessOrEqual(t, len(parts[1]), 8)
	require.LessOrEqual(t, len(parts[2]), 12)
	require.LessOrEqual(t, len(id), 63)
}

func TestGenerateMerchantOrderID_Unique(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateMerchantOrderID("case", "c1", now)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestChecksum_Deterministic(t *testing.T) {
	amount := decimal.NewFromFloat(150.50)
	a := Checksum("ORD_GEN_NA_1_aaaaaaaa", amount, "farmer-1")
	b := Checksum("ORD_GEN_NA_1_aaaaaaaa", amount, "farmer-1")
	require.Equal(t, a, b)
	require.Len(t, a, 64)
}

func TestChecksum_SensitiveToEveryInput(t *testing.T) {
	amount := decimal.NewFromFloat(150.50)
	base := Checksum("ORD_1", amount, "farmer-1")
	require.NotEqual(t, base, Checksum("ORD_2", amount, "farmer-1"))
	require.NotEqual(t, base, Checksum("ORD_1", decimal.NewFromFloat(150.51), "farmer-1"))
	require.NotEqual(t, base, Checksum("ORD_1", amount, "farmer-2"))
}

func TestChecksum_UsesTwoDecimalAmount(t *testing.T) {
	require.Equal(t,
		Checksum("ORD_1", decimal.NewFromInt(100), "u"),
		Checksum("ORD_1", decimal.NewFromFloat(100.00), "u"))
}
