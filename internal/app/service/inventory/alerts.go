package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/types"
)

// classifyExpiry maps days-to-expiry onto a severity, or "" when the batch
// is outside the warning window.
func classifyExpiry(daysToExpiry, criticalDays, warningDays int) types.AlertSeverity {
	switch {
	case daysToExpiry < 0:
		return types.AlertSeverityExpired
	case daysToExpiry <= criticalDays:
		return types.AlertSeverityCritical
	case daysToExpiry <= warningDays:
		return types.AlertSeverityWarning
	}
	return ""
}

// classifyAllocation grades an approved allocation by how much is left.
func classifyAllocation(remaining, minThreshold, thresholdQuantity decimal.Decimal) types.AlertSeverity {
	switch {
	case remaining.LessThanOrEqual(minThreshold):
		return types.AlertSeverityCritical
	case remaining.LessThanOrEqual(thresholdQuantity):
		return types.AlertSeverityWarning
	}
	return ""
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	db := s.db.WithContext(ctx)
	now := time.Now()
	warningCutoff := now.AddDate(0, 0, s.cfg.Inventory.ExpiryWarningDays)

	type countQuery struct {
		dest  *int64
		model any
		cond  string
		args  []any
	}
	queries := []countQuery{
		{&stats.TotalMedicines, &models.Medicine{}, "is_active = ?", []any{true}},
		{&stats.TotalStockItems, &models.MedicineStock{}, "", nil},
		{&stats.TotalUserAllocations, &models.UserMedicineStock{}, "", nil},
		{&stats.ExpiredStockCount, &models.MedicineStock{}, "expiry_date < ?", []any{now}},
		{&stats.ExpiringSoonCount, &models.MedicineStock{}, "expiry_date >= ? AND expiry_date <= ?", []any{now, warningCutoff}},
		{&stats.LowStockCount, &models.MedicineStock{}, "total_quantity - reserved_quantity <= ?", []any{s.cfg.Inventory.LowStockThreshold}},
		{&stats.PendingApprovalCount, &models.UserMedicineStock{}, "approval_status = ?", []any{types.ApprovalStatusPending}},
		{&stats.InTransitTransferCount, &models.MedicineStockTransferLog{}, "status = ?", []any{types.TransferStatusInTransit}},
	}
	for _, q := range queries {
		query := db.Model(q.model)
		if q.cond != "" {
			query = query.Where(q.cond, q.args...)
		}
		if err := query.Count(q.dest).Error; err != nil {
			return nil, err
		}
	}

	allocationGrades := []struct {
		dest *int64
		cond string
	}{
		{&stats.CriticalAllocationCount, "allocated_quantity - used_quantity <= min_threshold"},
		{&stats.LowAllocationCount, "allocated_quantity - used_quantity > min_threshold AND allocated_quantity - used_quantity <= threshold_quantity"},
		{&stats.HealthyAllocationCount, "allocated_quantity - used_quantity > threshold_quantity"},
	}
	for _, g := range allocationGrades {
		err := db.Model(&models.UserMedicineStock{}).
			Where("approval_status = ?", types.ApprovalStatusApproved).
			Where(g.cond).
			Count(g.dest).Error
		if err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func stockAlertBase(stock *models.MedicineStock) Alert {
	a := Alert{
		Type:        "global_stock",
		BatchNumber: stock.BatchNumber,
	}
	if stock.Medicine != nil {
		a.MedicineName = stock.Medicine.Name
		a.MedicineStrength = stock.Medicine.Strength
		if stock.Medicine.Category != nil {
			a.UnitOfMeasure = stock.Medicine.Category.UnitOfMeasure
		}
	}
	return a
}

func (s *Service) lowStockAlerts(ctx context.Context) ([]*Alert, error) {
	var stocks []*models.MedicineStock
	err := s.db.WithContext(ctx).
		Preload("Medicine").Preload("Medicine.Category").
		Where("total_quantity - reserved_quantity <= ?", s.cfg.Inventory.LowStockThreshold).
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}

	criticalLevel := decimal.NewFromFloat(s.cfg.Inventory.LowStockThreshold).Div(decimal.NewFromInt(2))
	alerts := make([]*Alert, 0, len(stocks))
	for _, stock := range stocks {
		available := stock.Available()
		a := stockAlertBase(stock)
		a.Severity = types.AlertSeverityWarning
		if available.LessThanOrEqual(criticalLevel) {
			a.Severity = types.AlertSeverityCritical
		}
		a.CurrentQuantity = available
		a.Message = fmt.Sprintf("Low global stock: %s %s remaining", available, a.UnitOfMeasure)
		alerts = append(alerts, &a)
	}
	return alerts, nil
}

func (s *Service) expiryAlerts(ctx context.Context) ([]*Alert, error) {
	now := time.Now()
	cutoff := now.AddDate(0, 0, s.cfg.Inventory.ExpiryWarningDays)
	var stocks []*models.MedicineStock
	err := s.db.WithContext(ctx).
		Preload("Medicine").Preload("Medicine.Category").
		Where("expiry_date IS NOT NULL AND expiry_date <= ? AND total_quantity > 0", cutoff).
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}

	alerts := make([]*Alert, 0, len(stocks))
	for _, stock := range stocks {
		days := int(stock.ExpiryDate.Sub(now).Hours() / 24)
		severity := classifyExpiry(days, s.cfg.Inventory.ExpiryCriticalDays, s.cfg.Inventory.ExpiryWarningDays)
		if severity == "" {
			continue
		}
		a := stockAlertBase(stock)
		a.Severity = severity
		a.CurrentQuantity = stock.TotalQuantity
		a.ExpiryDate = stock.ExpiryDate
		a.DaysToExpiry = &days
		if days < 0 {
			a.Message = fmt.Sprintf("Expired %d days ago", -days)
		} else {
			a.Message = fmt.Sprintf("Expiring in %d days", days)
		}
		alerts = append(alerts, &a)
	}
	return alerts, nil
}

func (s *Service) allocationAlerts(ctx context.Context) ([]*Alert, error) {
	var allocations []*models.UserMedicineStock
	err := s.db.WithContext(ctx).
		Preload("Stock").Preload("Stock.Medicine").Preload("Stock.Medicine.Category").
		Where("approval_status = ?", types.ApprovalStatusApproved).
		Where("allocated_quantity - used_quantity <= threshold_quantity").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	alerts := make([]*Alert, 0, len(allocations))
	for _, alloc := range allocations {
		remaining := alloc.Remaining()
		severity := classifyAllocation(remaining, alloc.MinThreshold, alloc.ThresholdQuantity)
		if severity == "" {
			continue
		}
		a := Alert{
			Type:            "user_stock",
			Severity:        severity,
			UserID:          alloc.UserID,
			CurrentQuantity: remaining,
			Message:         fmt.Sprintf("User stock low: %s remaining of %s allocated", remaining, alloc.AllocatedQuantity),
		}
		if alloc.Stock != nil {
			a.BatchNumber = alloc.Stock.BatchNumber
			if alloc.Stock.Medicine != nil {
				a.MedicineName = alloc.Stock.Medicine.Name
				a.MedicineStrength = alloc.Stock.Medicine.Strength
				if alloc.Stock.Medicine.Category != nil {
					a.UnitOfMeasure = alloc.Stock.Medicine.Category.UnitOfMeasure
				}
			}
		}
		alerts = append(alerts, &a)
	}
	return alerts, nil
}

// AllAlerts merges the three alert families sorted expired first, then
// critical, then warning.
func (s *Service) AllAlerts(ctx context.Context) ([]*Alert, error) {
	var alerts []*Alert
	for _, gen := range []func(context.Context) ([]*Alert, error){
		s.lowStockAlerts,
		s.expiryAlerts,
		s.allocationAlerts,
	} {
		batch, err := gen(ctx)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, batch...)
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Rank() < alerts[j].Severity.Rank()
	})
	return alerts, nil
}

// LowStockUsers groups below-threshold allocations per holder.
func (s *Service) LowStockUsers(ctx context.Context) ([]*LowStockUser, error) {
	var allocations []*models.UserMedicineStock
	err := s.db.WithContext(ctx).
		Preload("Stock").Preload("Stock.Medicine").
		Where("approval_status = ?", types.ApprovalStatusApproved).
		Where("allocated_quantity - used_quantity <= threshold_quantity").
		Order("user_id").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	byUser := map[string]*LowStockUser{}
	order := []string{}
	for _, alloc := range allocations {
		entry, ok := byUser[alloc.UserID]
		if !ok {
			entry = &LowStockUser{UserID: alloc.UserID}
			byUser[alloc.UserID] = entry
			order = append(order, alloc.UserID)
		}
		entry.Allocations = append(entry.Allocations, alloc)
	}
	if len(order) > 0 {
		var profiles []*models.UserProfile
		if err := s.db.WithContext(ctx).Where("user_id IN ?", order).Find(&profiles).Error; err != nil {
			return nil, err
		}
		for _, p := range profiles {
			if entry, ok := byUser[p.UserID]; ok {
				entry.FullName = p.FullName
			}
		}
	}
	out := make([]*LowStockUser, 0, len(order))
	for _, userID := range order {
		out = append(out, byUser[userID])
	}
	return out, nil
}

// ExpiringStock lists batches with stock on hand that expire within the
// window. The sweep uses it to emit expiry notifications.
func (s *Service) ExpiringStock(ctx context.Context, within time.Duration) ([]*models.MedicineStock, error) {
	cutoff := time.Now().Add(within)
	var stocks []*models.MedicineStock
	err := s.db.WithContext(ctx).
		Preload("Medicine").Preload("Location").
		Where("expiry_date IS NOT NULL AND expiry_date <= ? AND total_quantity > 0", cutoff).
		Order("expiry_date asc").
		Find(&stocks).Error
	if err != nil {
		return nil, err
	}
	return stocks, nil
}
