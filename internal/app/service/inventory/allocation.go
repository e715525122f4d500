package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/logctx"
	"github.com/kisancoop/dairyops/pkg/tool"
	"github.com/kisancoop/dairyops/pkg/types"
)

func lockAllocation(tx *gorm.DB, allocationID string) (*models.UserMedicineStock, error) {
	var alloc models.UserMedicineStock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", allocationID).
		First(&alloc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAllocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &alloc, nil
}

// appendTransaction records one ledger row for the allocation. The running
// balance is what the holder may still consume after this event.
func (s *Service) appendTransaction(tx *gorm.DB, alloc *models.UserMedicineStock, action types.StockAction, qty decimal.Decimal, performedBy, notes string) error {
	return tx.Create(&models.UserMedicineTransaction{
		ID:             tool.GenerateUUIDV7(),
		AllocationID:   alloc.ID,
		Action:         action,
		Quantity:       qty,
		RunningBalance: alloc.AllocatedQuantity.Sub(alloc.UsedQuantity),
		PerformedBy:    performedBy,
		Notes:          notes,
		CreatedAt:      time.Now(),
	}).Error
}

// CreateAllocation opens a PENDING allocation. Nothing moves on the batch
// until a reporting head approves it.
func (s *Service) CreateAllocation(ctx context.Context, principal *types.Principal, req *CreateAllocationRequest) (*models.UserMedicineStock, error) {
	log := logctx.FromCtx(ctx, s.log)
	if req == nil || req.UserID == "" || req.StockID == "" {
		return nil, fmt.Errorf("%w: user_id and stock_id are required", ErrValidation)
	}
	if !req.AllocatedQuantity.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.MinThreshold.IsNegative() || req.ThresholdQuantity.IsNegative() {
		return nil, fmt.Errorf("%w: thresholds must not be negative", ErrValidation)
	}
	if req.UserID != principal.ID {
		if err := s.hierarchy.RequireSupervisor(ctx, principal, req.UserID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	alloc := &models.UserMedicineStock{
		ID:                tool.GenerateUUIDV7(),
		UserID:            req.UserID,
		StockID:           req.StockID,
		AllocatedQuantity: req.AllocatedQuantity,
		UsedQuantity:      decimal.Zero,
		MinThreshold:      req.MinThreshold,
		ThresholdQuantity: req.ThresholdQuantity,
		ApprovalStatus:    types.ApprovalStatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, err := lockStock(tx, req.StockID)
		if err != nil {
			return err
		}
		if req.AllocatedQuantity.GreaterThan(stock.Available()) {
			return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientStock, req.AllocatedQuantity, stock.Available())
		}
		if s.cfg.Inventory.ReserveOnCreate {
			if err := s.reserveLocked(tx, stock, req.AllocatedQuantity); err != nil {
				return err
			}
		}
		if err := tx.Create(alloc).Error; err != nil {
			return err
		}
		return s.appendTransaction(tx, alloc, types.StockActionAllocated, req.AllocatedQuantity, principal.ID, "")
	})
	if err != nil {
		log.Errorw("create allocation failed", "user_id", req.UserID, "stock_id", req.StockID, "err", err)
		return nil, err
	}
	log.Infow("allocation created", "allocation_id", alloc.ID, "user_id", req.UserID, "quantity", req.AllocatedQuantity)
	return alloc, nil
}

// ApproveAllocation reserves the allocated quantity on the batch. Approval
// of an already terminal allocation is a no-op for the same decision and a
// conflict for the opposite one.
func (s *Service) ApproveAllocation(ctx context.Context, principal *types.Principal, allocationID string) (*models.UserMedicineStock, error) {
	log := logctx.FromCtx(ctx, s.log)
	var alloc *models.UserMedicineStock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		alloc, err = lockAllocation(tx, allocationID)
		if err != nil {
			return err
		}
		if err := s.hierarchy.RequireSupervisor(ctx, principal, alloc.UserID); err != nil {
			return err
		}
		if alloc.ApprovalStatus == types.ApprovalStatusApproved {
			return nil
		}
		if alloc.ApprovalStatus.Terminal() {
			return fmt.Errorf("%w: allocation is %s", ErrIllegalTransition, alloc.ApprovalStatus)
		}
		if !s.cfg.Inventory.ReserveOnCreate {
			stock, err := lockStock(tx, alloc.StockID)
			if err != nil {
				return err
			}
			if err := s.reserveLocked(tx, stock, alloc.AllocatedQuantity); err != nil {
				return err
			}
		}
		now := time.Now()
		alloc.ApprovalStatus = types.ApprovalStatusApproved
		alloc.ApprovedBy = &principal.ID
		alloc.ApprovalDate = &now
		alloc.UpdatedAt = now
		return tx.Save(alloc).Error
	})
	if err != nil {
		return nil, err
	}
	log.Infow("allocation approved", "allocation_id", allocationID, "approved_by", principal.ID)
	return alloc, nil
}

// RejectAllocation closes a PENDING allocation with no stock effect.
func (s *Service) RejectAllocation(ctx context.Context, principal *types.Principal, allocationID, reason string) (*models.UserMedicineStock, error) {
	log := logctx.FromCtx(ctx, s.log)
	var alloc *models.UserMedicineStock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		alloc, err = lockAllocation(tx, allocationID)
		if err != nil {
			return err
		}
		if err := s.hierarchy.RequireSupervisor(ctx, principal, alloc.UserID); err != nil {
			return err
		}
		if alloc.ApprovalStatus == types.ApprovalStatusRejected {
			return nil
		}
		if alloc.ApprovalStatus.Terminal() {
			return fmt.Errorf("%w: allocation is %s", ErrIllegalTransition, alloc.ApprovalStatus)
		}
		if s.cfg.Inventory.ReserveOnCreate {
			stock, err := lockStock(tx, alloc.StockID)
			if err != nil {
				return err
			}
			if err := s.releaseLocked(tx, stock, alloc.AllocatedQuantity); err != nil {
				return err
			}
		}
		alloc.ApprovalStatus = types.ApprovalStatusRejected
		alloc.RejectionReason = &reason
		alloc.UpdatedAt = time.Now()
		return tx.Save(alloc).Error
	})
	if err != nil {
		return nil, err
	}
	log.Infow("allocation rejected", "allocation_id", allocationID, "rejected_by", principal.ID)
	return alloc, nil
}

// UseMedicine records consumption against an approved allocation and burns
// the quantity on the source batch.
func (s *Service) UseMedicine(ctx context.Context, principal *types.Principal, req *ConsumeRequest) (*models.UserMedicineStock, error) {
	log := logctx.FromCtx(ctx, s.log)
	if !req.Quantity.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var alloc *models.UserMedicineStock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		alloc, err = lockAllocation(tx, req.AllocationID)
		if err != nil {
			return err
		}
		if alloc.UserID != principal.ID {
			if err := s.hierarchy.RequireSupervisor(ctx, principal, alloc.UserID); err != nil {
				return err
			}
		}
		if alloc.ApprovalStatus != types.ApprovalStatusApproved {
			return fmt.Errorf("%w: allocation is %s", ErrNotApproved, alloc.ApprovalStatus)
		}
		remaining := alloc.AllocatedQuantity.Sub(alloc.UsedQuantity)
		if req.Quantity.GreaterThan(remaining) {
			return fmt.Errorf("%w: requested %s, remaining %s", ErrInsufficientStock, req.Quantity, remaining)
		}

		alloc.UsedQuantity = alloc.UsedQuantity.Add(req.Quantity)
		alloc.UpdatedAt = time.Now()
		if err := tx.Save(alloc).Error; err != nil {
			return err
		}
		if err := s.appendTransaction(tx, alloc, types.StockActionUsed, req.Quantity, principal.ID, req.Notes); err != nil {
			return err
		}

		stock, err := lockStock(tx, alloc.StockID)
		if err != nil {
			return err
		}
		return s.consumeLocked(tx, stock, req.Quantity, "allocation "+alloc.ID, principal.ID)
	})
	if err != nil {
		log.Errorw("use medicine failed", "allocation_id", req.AllocationID, "err", err)
		return nil, err
	}
	log.Infow("medicine used", "allocation_id", alloc.ID, "quantity", req.Quantity, "used", alloc.UsedQuantity)
	return alloc, nil
}

// ReturnMedicine reverses part of the recorded usage and puts the quantity
// back on the source batch.
func (s *Service) ReturnMedicine(ctx context.Context, principal *types.Principal, req *ConsumeRequest) (*models.UserMedicineStock, error) {
	log := logctx.FromCtx(ctx, s.log)
	if !req.Quantity.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var alloc *models.UserMedicineStock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		alloc, err = lockAllocation(tx, req.AllocationID)
		if err != nil {
			return err
		}
		if alloc.UserID != principal.ID {
			if err := s.hierarchy.RequireSupervisor(ctx, principal, alloc.UserID); err != nil {
				return err
			}
		}
		if alloc.ApprovalStatus != types.ApprovalStatusApproved {
			return fmt.Errorf("%w: allocation is %s", ErrNotApproved, alloc.ApprovalStatus)
		}
		if req.Quantity.GreaterThan(alloc.UsedQuantity) {
			return fmt.Errorf("%w: requested %s, used %s", ErrInsufficientStock, req.Quantity, alloc.UsedQuantity)
		}

		alloc.UsedQuantity = alloc.UsedQuantity.Sub(req.Quantity)
		alloc.UpdatedAt = time.Now()
		if err := tx.Save(alloc).Error; err != nil {
			return err
		}
		if err := s.appendTransaction(tx, alloc, types.StockActionReturned, req.Quantity, principal.ID, req.Notes); err != nil {
			return err
		}

		stock, err := lockStock(tx, alloc.StockID)
		if err != nil {
			return err
		}
		if err := s.releaseLocked(tx, stock, req.Quantity); err != nil {
			return err
		}
		return s.addLocked(tx, stock, req.Quantity, "return from allocation "+alloc.ID, principal.ID)
	})
	if err != nil {
		log.Errorw("return medicine failed", "allocation_id", req.AllocationID, "err", err)
		return nil, err
	}
	log.Infow("medicine returned", "allocation_id", alloc.ID, "quantity", req.Quantity, "used", alloc.UsedQuantity)
	return alloc, nil
}

func (s *Service) GetAllocation(ctx context.Context, principal *types.Principal, allocationID string) (*models.UserMedicineStock, error) {
	var alloc models.UserMedicineStock
	err := s.db.WithContext(ctx).
		Preload("Stock").Preload("Stock.Medicine").Preload("Stock.Medicine.Category").
		Where("id = ?", allocationID).
		First(&alloc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAllocationNotFound
	}
	if err != nil {
		return nil, err
	}
	if alloc.UserID != principal.ID {
		if err := s.hierarchy.RequireSupervisor(ctx, principal, alloc.UserID); err != nil {
			return nil, err
		}
	}
	return &alloc, nil
}

// ScanAllocations lists allocations visible to the principal: their own plus
// anyone they supervise. Superusers see everything.
func (s *Service) ScanAllocations(ctx context.Context, principal *types.Principal, req *ScanAllocationsRequest) (*ScanAllocationsResponse, error) {
	resp := &ScanAllocationsResponse{Items: []*models.UserMedicineStock{}}

	q := s.db.WithContext(ctx).Model(&models.UserMedicineStock{})
	if !principal.IsSuperuser {
		visible, err := s.hierarchy.VisibleUserIDs(ctx, principal)
		if err != nil {
			return nil, err
		}
		q = q.Where("user_id IN ?", visible)
	}
	if len(req.Filters) > 0 {
		q = q.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}
	if err := q.Count(&resp.Total).Error; err != nil {
		return nil, err
	}

	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	size := req.Size
	if size <= 0 {
		size = 20
	}
	err := q.
		Preload("Stock").Preload("Stock.Medicine").
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"}}}).
		Offset(req.From).Limit(size).
		Find(&resp.Items).Error
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// MyAllocations lists the principal's own allocations, newest first.
func (s *Service) MyAllocations(ctx context.Context, principal *types.Principal) ([]*models.UserMedicineStock, error) {
	allocs := []*models.UserMedicineStock{}
	err := s.db.WithContext(ctx).
		Preload("Stock").Preload("Stock.Medicine").
		Where("user_id = ?", principal.ID).
		Order("created_at desc").
		Find(&allocs).Error
	if err != nil {
		return nil, err
	}
	return allocs, nil
}

// AllocationsForStock lists who a batch has been allocated to. Non-superusers
// only see rows for users they supervise.
func (s *Service) AllocationsForStock(ctx context.Context, principal *types.Principal, stockID string) ([]*models.UserMedicineStock, error) {
	if _, err := s.GetStock(ctx, stockID); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("created_at desc")
	if !principal.IsSuperuser {
		visible, err := s.hierarchy.VisibleUserIDs(ctx, principal)
		if err != nil {
			return nil, err
		}
		q = q.Where("user_id IN ?", visible)
	}
	allocs := []*models.UserMedicineStock{}
	if err := q.Find(&allocs).Error; err != nil {
		return nil, err
	}
	return allocs, nil
}

func (s *Service) TransactionHistory(ctx context.Context, principal *types.Principal, allocationID string) ([]*models.UserMedicineTransaction, error) {
	if _, err := s.GetAllocation(ctx, principal, allocationID); err != nil {
		return nil, err
	}
	var txns []*models.UserMedicineTransaction
	err := s.db.WithContext(ctx).
		Where("allocation_id = ?", allocationID).
		Order("created_at desc").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
