package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/logctx"
	"github.com/kisancoop/dairyops/pkg/tool"
	"github.com/kisancoop/dairyops/pkg/types"
)

func lockTransfer(tx *gorm.DB, transferID string) (*models.MedicineStockTransferLog, error) {
	var transfer models.MedicineStockTransferLog
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", transferID).
		First(&transfer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (s *Service) lockSourceStock(tx *gorm.DB, transfer *models.MedicineStockTransferLog) (*models.MedicineStock, error) {
	var stock models.MedicineStock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("medicine_id = ? AND batch_number = ? AND location_id = ?",
			transfer.MedicineID, transfer.BatchNumber, transfer.SourceLocationID).
		First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// CreateTransfer opens a PENDING transfer and reserves the quantity on the
// source batch so it cannot be allocated away before dispatch.
func (s *Service) CreateTransfer(ctx context.Context, principal *types.Principal, req *CreateTransferRequest) (*models.MedicineStockTransferLog, error) {
	log := logctx.FromCtx(ctx, s.log)
	if req == nil || req.StockID == "" || req.TargetLocationID == "" {
		return nil, fmt.Errorf("%w: stock_id and target_location_id are required", ErrValidation)
	}
	if !req.Quantity.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var transfer *models.MedicineStockTransferLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stock, err := lockStock(tx, req.StockID)
		if err != nil {
			return err
		}
		if stock.LocationID == req.TargetLocationID {
			return fmt.Errorf("%w: source and target locations are the same", ErrValidation)
		}
		if err := s.reserveLocked(tx, stock, req.Quantity); err != nil {
			return err
		}

		now := time.Now()
		transfer = &models.MedicineStockTransferLog{
			ID:               tool.GenerateUUIDV7(),
			MedicineID:       stock.MedicineID,
			BatchNumber:      stock.BatchNumber,
			SourceLocationID: stock.LocationID,
			TargetLocationID: req.TargetLocationID,
			Quantity:         req.Quantity,
			Status:           types.TransferStatusPending,
			UnitCost:         stock.UnitCost,
			InitiatedBy:      principal.ID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if stock.UnitCost != nil {
			total := stock.UnitCost.Mul(req.Quantity)
			transfer.TotalCost = &total
		}
		return tx.Create(transfer).Error
	})
	if err != nil {
		log.Errorw("create transfer failed", "stock_id", req.StockID, "err", err)
		return nil, err
	}
	log.Infow("transfer created", "transfer_id", transfer.ID, "quantity", req.Quantity)
	return transfer, nil
}

// DispatchTransfer consumes the reserved quantity at the source; the goods
// are in transit from here on.
func (s *Service) DispatchTransfer(ctx context.Context, principal *types.Principal, transferID string) (*models.MedicineStockTransferLog, error) {
	log := logctx.FromCtx(ctx, s.log)
	var transfer *models.MedicineStockTransferLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		transfer, err = lockTransfer(tx, transferID)
		if err != nil {
			return err
		}
		if !transfer.Status.CanTransitionTo(types.TransferStatusInTransit) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, transfer.Status, types.TransferStatusInTransit)
		}
		stock, err := s.lockSourceStock(tx, transfer)
		if err != nil {
			return err
		}
		if err := s.consumeLocked(tx, stock, transfer.Quantity, "transfer "+transfer.ID, principal.ID); err != nil {
			return err
		}
		transfer.Status = types.TransferStatusInTransit
		transfer.UpdatedAt = time.Now()
		return tx.Save(transfer).Error
	})
	if err != nil {
		return nil, err
	}
	log.Infow("transfer dispatched", "transfer_id", transferID)
	return transfer, nil
}

// ReceiveTransfer lands the quantity at the target location, creating the
// batch row there if this is the first arrival. Batch number, expiry and
// unit cost carry over from the source.
func (s *Service) ReceiveTransfer(ctx context.Context, principal *types.Principal, transferID string) (*models.MedicineStockTransferLog, error) {
	log := logctx.FromCtx(ctx, s.log)
	var transfer *models.MedicineStockTransferLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		transfer, err = lockTransfer(tx, transferID)
		if err != nil {
			return err
		}
		if !transfer.Status.CanTransitionTo(types.TransferStatusReceived) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, transfer.Status, types.TransferStatusReceived)
		}

		var target models.MedicineStock
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("medicine_id = ? AND batch_number = ? AND location_id = ?",
				transfer.MedicineID, transfer.BatchNumber, transfer.TargetLocationID).
			First(&target).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			var source models.MedicineStock
			if err := tx.Where("medicine_id = ? AND batch_number = ? AND location_id = ?",
				transfer.MedicineID, transfer.BatchNumber, transfer.SourceLocationID).
				First(&source).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			now := time.Now()
			target = models.MedicineStock{
				ID:          tool.GenerateUUIDV7(),
				MedicineID:  transfer.MedicineID,
				BatchNumber: transfer.BatchNumber,
				LocationID:  transfer.TargetLocationID,
				ExpiryDate:  source.ExpiryDate,
				UnitCost:    transfer.UnitCost,
				LastUpdated: now,
				CreatedAt:   now,
			}
			if err := tx.Create(&target).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}
		if err := s.addLocked(tx, &target, transfer.Quantity, "transfer "+transfer.ID, principal.ID); err != nil {
			return err
		}

		now := time.Now()
		transfer.Status = types.TransferStatusReceived
		transfer.ReceivedBy = &principal.ID
		transfer.ReceivedAt = &now
		transfer.UpdatedAt = now
		return tx.Save(transfer).Error
	})
	if err != nil {
		return nil, err
	}
	log.Infow("transfer received", "transfer_id", transferID, "received_by", principal.ID)
	return transfer, nil
}

// CancelTransfer undoes the stock effect of the current stage: a PENDING
// cancel drops the reservation, an IN_TRANSIT cancel puts the quantity back
// on the source batch.
func (s *Service) CancelTransfer(ctx context.Context, principal *types.Principal, transferID string) (*models.MedicineStockTransferLog, error) {
	log := logctx.FromCtx(ctx, s.log)
	var transfer *models.MedicineStockTransferLog
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		transfer, err = lockTransfer(tx, transferID)
		if err != nil {
			return err
		}
		if !transfer.Status.CanTransitionTo(types.TransferStatusCancelled) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, transfer.Status, types.TransferStatusCancelled)
		}
		stock, err := s.lockSourceStock(tx, transfer)
		if err != nil {
			return err
		}
		switch transfer.Status {
		case types.TransferStatusPending:
			if err := s.releaseLocked(tx, stock, transfer.Quantity); err != nil {
				return err
			}
		case types.TransferStatusInTransit:
			if err := s.addLocked(tx, stock, transfer.Quantity, "transfer "+transfer.ID+" cancelled", principal.ID); err != nil {
				return err
			}
		}

		now := time.Now()
		transfer.Status = types.TransferStatusCancelled
		transfer.CancelledAt = &now
		transfer.UpdatedAt = now
		return tx.Save(transfer).Error
	})
	if err != nil {
		return nil, err
	}
	log.Infow("transfer cancelled", "transfer_id", transferID)
	return transfer, nil
}

func (s *Service) GetTransfer(ctx context.Context, transferID string) (*models.MedicineStockTransferLog, error) {
	var transfer models.MedicineStockTransferLog
	err := s.db.WithContext(ctx).Where("id = ?", transferID).First(&transfer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}
