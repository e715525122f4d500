package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kisancoop/dairyops/pkg/types"
)

func TestMedicineStockAvailable(t *testing.T) {
	stock := &MedicineStock{
		TotalQuantity:    decimal.NewFromInt(100),
		ReservedQuantity: decimal.NewFromInt(30),
	}
	require.True(t, stock.Available().Equal(decimal.NewFromInt(70)))

	stock.ReservedQuantity = stock.TotalQuantity
	require.True(t, stock.Available().IsZero())
}

func TestUserMedicineStockRemaining(t *testing.T) {
	alloc := &UserMedicineStock{
		ApprovalStatus:    types.ApprovalStatusApproved,
		AllocatedQuantity: decimal.NewFromInt(20),
		UsedQuantity:      decimal.NewFromInt(5),
	}
	require.True(t, alloc.Remaining().Equal(decimal.NewFromInt(15)))

	// only approved allocations may be drawn from
	alloc.ApprovalStatus = types.ApprovalStatusPending
	require.True(t, alloc.Remaining().IsZero())

	alloc.ApprovalStatus = types.ApprovalStatusRejected
	require.True(t, alloc.Remaining().IsZero())
}
