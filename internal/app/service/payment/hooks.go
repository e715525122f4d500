package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/types"
)

// SettlementHook is implemented per related-object kind. Both methods run
// inside the webhook's transaction; returning an error rolls it back.
type SettlementHook interface {
	MarkAsPaid(ctx context.Context, tx *gorm.DB, objectID string) error
	MarkAsFailed(ctx context.Context, tx *gorm.DB, objectID string, reason string) error
}

// HookRegistry maps a related-object kind to its settlement hook. Kinds
// without a hook settle silently.
type HookRegistry struct {
	hooks map[types.RelatedObjectKind]SettlementHook
}

func NewHookRegistry() *HookRegistry {
	r := &HookRegistry{hooks: map[types.RelatedObjectKind]SettlementHook{}}
	r.Register(types.RelatedKindMilkBill, milkBillHook{})
	return r
}

func (r *HookRegistry) Register(kind types.RelatedObjectKind, hook SettlementHook) {
	r.hooks[kind] = hook
}

func (r *HookRegistry) Lookup(kind types.RelatedObjectKind) (SettlementHook, bool) {
	h, ok := r.hooks[kind]
	return h, ok
}

type milkBillHook struct{}

func (milkBillHook) MarkAsPaid(ctx context.Context, tx *gorm.DB, objectID string) error {
	var bill models.MilkBill
	if err := tx.WithContext(ctx).First(&bill, "id = ?", objectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("milk bill %s not found", objectID)
		}
		return err
	}
	now := time.Now()
	bill.Status = models.MilkBillStatusPaid
	bill.PaidAt = &now
	return tx.WithContext(ctx).Save(&bill).Error
}

func (milkBillHook) MarkAsFailed(ctx context.Context, tx *gorm.DB, objectID string, reason string) error {
	return tx.WithContext(ctx).Model(&models.MilkBill{}).
		Where("id = ? AND status = ?", objectID, models.MilkBillStatusUnpaid).
		Update("status", models.MilkBillStatusFailed).Error
}
