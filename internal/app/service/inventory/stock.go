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

// lockStock loads one batch row under FOR UPDATE. Every mutation of a
// batch goes through this so concurrent writers serialize on the row.
func lockStock(tx *gorm.DB, stockID string) (*models.MedicineStock, error) {
	var stock models.MedicineStock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", stockID).
		First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (s *Service) auditLocked(tx *gorm.DB, stock *models.MedicineStock, auditType types.AuditType, qty decimal.Decimal, reference, performedBy string) error {
	return tx.Create(&models.MedicineStockAudit{
		ID:              tool.GenerateUUIDV7(),
		StockID:         stock.ID,
		MedicineID:      stock.MedicineID,
		TransactionType: auditType,
		Quantity:        qty,
		BalanceAfter:    stock.TotalQuantity,
		Reference:       reference,
		PerformedBy:     performedBy,
		CreatedAt:       time.Now(),
	}).Error
}

// applyAdd, applyReserve, applyRelease and applyConsume mutate the
// in-memory row and enforce 0 <= reserved <= total. The locked wrappers
// below persist and audit.

func applyAdd(stock *models.MedicineStock, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidAmount
	}
	stock.TotalQuantity = stock.TotalQuantity.Add(qty)
	stock.LastUpdated = time.Now()
	return nil
}

func applyReserve(stock *models.MedicineStock, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidAmount
	}
	if qty.GreaterThan(stock.Available()) {
		return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientStock, qty, stock.Available())
	}
	stock.ReservedQuantity = stock.ReservedQuantity.Add(qty)
	stock.LastUpdated = time.Now()
	return nil
}

func applyRelease(stock *models.MedicineStock, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidAmount
	}
	if qty.GreaterThan(stock.ReservedQuantity) {
		return fmt.Errorf("%w: requested release %s, reserved %s", ErrInsufficientStock, qty, stock.ReservedQuantity)
	}
	stock.ReservedQuantity = stock.ReservedQuantity.Sub(qty)
	stock.LastUpdated = time.Now()
	return nil
}

func applyConsume(stock *models.MedicineStock, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return ErrInvalidAmount
	}
	if qty.GreaterThan(stock.ReservedQuantity) {
		return fmt.Errorf("%w: requested %s, reserved %s", ErrInsufficientStock, qty, stock.ReservedQuantity)
	}
	stock.TotalQuantity = stock.TotalQuantity.Sub(qty)
	stock.ReservedQuantity = stock.ReservedQuantity.Sub(qty)
	stock.LastUpdated = time.Now()
	return nil
}

// addLocked grows the batch total and records the inward movement.
func (s *Service) addLocked(tx *gorm.DB, stock *models.MedicineStock, qty decimal.Decimal, reference, performedBy string) error {
	if err := applyAdd(stock, qty); err != nil {
		return err
	}
	if err := tx.Save(stock).Error; err != nil {
		return err
	}
	return s.auditLocked(tx, stock, types.AuditTypeInward, qty, reference, performedBy)
}

// reserveLocked earmarks part of the available quantity. No audit row:
// reservation moves nothing in or out of the batch.
func (s *Service) reserveLocked(tx *gorm.DB, stock *models.MedicineStock, qty decimal.Decimal) error {
	if err := applyReserve(stock, qty); err != nil {
		return err
	}
	return tx.Save(stock).Error
}

func (s *Service) releaseLocked(tx *gorm.DB, stock *models.MedicineStock, qty decimal.Decimal) error {
	if err := applyRelease(stock, qty); err != nil {
		return err
	}
	return tx.Save(stock).Error
}

// consumeLocked removes reserved quantity from the batch for good.
func (s *Service) consumeLocked(tx *gorm.DB, stock *models.MedicineStock, qty decimal.Decimal, reference, performedBy string) error {
	if err := applyConsume(stock, qty); err != nil {
		return err
	}
	if err := tx.Save(stock).Error; err != nil {
		return err
	}
	return s.auditLocked(tx, stock, types.AuditTypeOutward, qty, reference, performedBy)
}

func (s *Service) CreateStock(ctx context.Context, principal *types.Principal, req *CreateStockRequest) (*models.MedicineStock, error) {
	log := logctx.FromCtx(ctx, s.log)
	if req == nil || req.MedicineID == "" || req.BatchNumber == "" || req.LocationID == "" {
		return nil, fmt.Errorf("%w: medicine_id, batch_number and location_id are required", ErrValidation)
	}
	if !req.Quantity.IsPositive() {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	stock := &models.MedicineStock{
		ID:            tool.GenerateUUIDV7(),
		MedicineID:    req.MedicineID,
		BatchNumber:   req.BatchNumber,
		LocationID:    req.LocationID,
		TotalQuantity: req.Quantity,
		ExpiryDate:    req.ExpiryDate,
		UnitCost:      req.UnitCost,
		LastUpdated:   now,
		CreatedAt:     now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(stock).Error; err != nil {
			return err
		}
		return s.auditLocked(tx, stock, types.AuditTypeInward, req.Quantity, "initial stock", principal.ID)
	})
	if err != nil {
		log.Errorw("create stock failed", "medicine_id", req.MedicineID, "batch", req.BatchNumber, "err", err)
		return nil, err
	}
	log.Infow("stock created", "stock_id", stock.ID, "quantity", req.Quantity)
	return stock, nil
}

func (s *Service) AddStock(ctx context.Context, principal *types.Principal, req *StockMutationRequest) (*models.MedicineStock, error) {
	log := logctx.FromCtx(ctx, s.log)
	var stock *models.MedicineStock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stock, err = lockStock(tx, req.StockID)
		if err != nil {
			return err
		}
		return s.addLocked(tx, stock, req.Quantity, req.Reference, principal.ID)
	})
	if err != nil {
		return nil, err
	}
	log.Infow("stock added", "stock_id", stock.ID, "quantity", req.Quantity, "total", stock.TotalQuantity)
	return stock, nil
}

func (s *Service) GetStock(ctx context.Context, stockID string) (*models.MedicineStock, error) {
	var stock models.MedicineStock
	err := s.db.WithContext(ctx).
		Preload("Medicine").Preload("Medicine.Category").Preload("Location").
		Where("id = ?", stockID).
		First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStockNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (s *Service) ScanStocks(ctx context.Context, req *ScanStocksRequest) (*ScanStocksResponse, error) {
	resp := &ScanStocksResponse{Items: []*models.MedicineStock{}}

	q := s.db.WithContext(ctx).Model(&models.MedicineStock{})
	if len(req.Filters) > 0 {
		q = q.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}
	if err := q.Count(&resp.Total).Error; err != nil {
		return nil, err
	}

	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "last_updated"
	}
	size := req.Size
	if size <= 0 {
		size = 20
	}
	err := q.
		Preload("Medicine").Preload("Medicine.Category").Preload("Location").
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: sortBy}, Desc: req.SortOrder != "asc"}}}).
		Offset(req.From).Limit(size).
		Find(&resp.Items).Error
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) StockAuditTrail(ctx context.Context, stockID string) ([]*models.MedicineStockAudit, error) {
	var audits []*models.MedicineStockAudit
	err := s.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("created_at desc").
		Find(&audits).Error
	if err != nil {
		return nil, err
	}
	return audits, nil
}
