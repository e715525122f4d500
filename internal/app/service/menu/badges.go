package menu

import (
	"context"

	"gorm.io/gorm"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/types"
)

// BadgeResolver computes a count for one user. Registered per badge key;
// unknown keys yield no badge.
type BadgeResolver func(ctx context.Context, userID string) (int64, error)

type BadgeRegistry struct {
	resolvers map[string]BadgeResolver
}

func NewBadgeRegistry(db *gorm.DB) *BadgeRegistry {
	r := &BadgeRegistry{resolvers: map[string]BadgeResolver{}}

	r.Register("pending_allocations", func(ctx context.Context, userID string) (int64, error) {
		var count int64
		err := db.WithContext(ctx).Model(&models.UserMedicineStock{}).
			Where("user_id = ? AND approval_status = ?", userID, types.ApprovalStatusPending).
			Count(&count).Error
		return count, err
	})
	r.Register("unpaid_milk_bills", func(ctx context.Context, userID string) (int64, error) {
		var count int64
		err := db.WithContext(ctx).Model(&models.MilkBill{}).
			Where("user_id = ? AND status = ?", userID, models.MilkBillStatusUnpaid).
			Count(&count).Error
		return count, err
	})
	r.Register("pending_payments", func(ctx context.Context, userID string) (int64, error) {
		var count int64
		err := db.WithContext(ctx).Model(&models.PaymentTransaction{}).
			Where("user_identifier = ? AND status IN ? AND is_deleted = false",
				userID, []types.PaymentStatus{types.PaymentStatusInitiated, types.PaymentStatusPending}).
			Count(&count).Error
		return count, err
	})

	return r
}

func (r *BadgeRegistry) Register(key string, resolver BadgeResolver) {
	r.resolvers[key] = resolver
}

func (r *BadgeRegistry) Lookup(key string) (BadgeResolver, bool) {
	resolver, ok := r.resolvers[key]
	return resolver, ok
}
