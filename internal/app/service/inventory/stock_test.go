package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kisancoop/dairyops/internal/models"
)

func stockWith(total, reserved int64) *models.MedicineStock {
	return &models.MedicineStock{
		TotalQuantity:    decimal.NewFromInt(total),
		ReservedQuantity: decimal.NewFromInt(reserved),
	}
}

func requireStock(t *testing.T, stock *models.MedicineStock, total, reserved int64) {
	t.Helper()
	require.True(t, stock.TotalQuantity.Equal(decimal.NewFromInt(total)),
		"total: got %s, want %d", stock.TotalQuantity, total)
	require.True(t, stock.ReservedQuantity.Equal(decimal.NewFromInt(reserved)),
		"reserved: got %s, want %d", stock.ReservedQuantity, reserved)
	require.True(t, stock.Available().Equal(stock.TotalQuantity.Sub(stock.ReservedQuantity)))
	require.False(t, stock.ReservedQuantity.IsNegative())
	require.False(t, stock.ReservedQuantity.GreaterThan(stock.TotalQuantity))
}

func TestApplyReserveThenConsume(t *testing.T) {
	stock := stockWith(0, 0)

	require.NoError(t, applyAdd(stock, decimal.NewFromInt(100)))
	requireStock(t, stock, 100, 0)

	require.NoError(t, applyReserve(stock, decimal.NewFromInt(40)))
	requireStock(t, stock, 100, 40)
	require.True(t, stock.Available().Equal(decimal.NewFromInt(60)))

	require.NoError(t, applyConsume(stock, decimal.NewFromInt(25)))
	requireStock(t, stock, 75, 15)

	require.NoError(t, applyRelease(stock, decimal.NewFromInt(15)))
	requireStock(t, stock, 75, 0)
}

func TestApplyReserve_InsufficientAvailable(t *testing.T) {
	stock := stockWith(100, 80)

	err := applyReserve(stock, decimal.NewFromInt(30))
	require.ErrorIs(t, err, ErrInsufficientStock)
	requireStock(t, stock, 100, 80)

	// Exactly the remaining available quantity is fine.
	require.NoError(t, applyReserve(stock, decimal.NewFromInt(20)))
	requireStock(t, stock, 100, 100)
}

func TestApplyConsume_MoreThanReserved(t *testing.T) {
	stock := stockWith(100, 10)

	err := applyConsume(stock, decimal.NewFromInt(11))
	require.ErrorIs(t, err, ErrInsufficientStock)
	requireStock(t, stock, 100, 10)
}

func TestApplyRelease_MoreThanReserved(t *testing.T) {
	stock := stockWith(50, 5)

	err := applyRelease(stock, decimal.NewFromInt(6))
	require.ErrorIs(t, err, ErrInsufficientStock)
	requireStock(t, stock, 50, 5)
}

func TestApplyMutations_RejectNonPositive(t *testing.T) {
	stock := stockWith(10, 5)
	zero := decimal.Zero
	negative := decimal.NewFromInt(-1)

	for _, qty := range []decimal.Decimal{zero, negative} {
		require.ErrorIs(t, applyAdd(stock, qty), ErrInvalidAmount)
		require.ErrorIs(t, applyReserve(stock, qty), ErrInvalidAmount)
		require.ErrorIs(t, applyRelease(stock, qty), ErrInvalidAmount)
		require.ErrorIs(t, applyConsume(stock, qty), ErrInvalidAmount)
	}
	requireStock(t, stock, 10, 5)
}
