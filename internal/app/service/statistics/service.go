package statistics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kisancoop/dairyops/pkg/types"
)

// transactionFilters composes a WHERE clause from CommonFilter entries,
// always excluding soft-deleted rows.
type transactionFilters struct {
	Filters []*types.CommonFilter
}

func (f transactionFilters) Build(builder clause.Builder) {
	builder.WriteString("is_deleted = false")
	for _, filter := range f.Filters {
		builder.WriteString(" AND ")
		filter.Build(builder)
	}
}

type Summary struct {
	TotalCount      int64           `json:"total_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CompletedCount  int64           `json:"completed_count"`
	CompletedAmount decimal.Decimal `json:"completed_amount"`
	RefundedAmount  decimal.Decimal `json:"refunded_amount"`
	SuccessRate     float64         `json:"success_rate"`
}

type StatusBreakdownItem struct {
	Status types.PaymentStatus `json:"status"`
	Count  int64               `json:"count"`
	Amount decimal.Decimal     `json:"amount"`
}

type DailyStatItem struct {
	Date            string          `json:"date"`
	Count           int64           `json:"count"`
	Amount          decimal.Decimal `json:"amount"`
	CompletedCount  int64           `json:"completed_count"`
	CompletedAmount decimal.Decimal `json:"completed_amount"`
}

type ByObjectItem struct {
	RelatedKind string          `json:"related_kind"`
	Count       int64           `json:"count"`
	Amount      decimal.Decimal `json:"amount"`
}

// Service answers analytics queries over the payment transaction table.
type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) Summary(ctx context.Context, filters []*types.CommonFilter) (*Summary, error) {
	var row struct {
		TotalCount      int64
		TotalAmount     decimal.Decimal
		CompletedCount  int64
		CompletedAmount decimal.Decimal
		RefundedAmount  decimal.Decimal
	}
	q := s.db.WithContext(ctx).Table("payment_transaction").
		Select(`count(*) as total_count,
COALESCE(sum(amount), 0) as total_amount,
count(*) FILTER (WHERE status = 'COMPLETED') as completed_count,
COALESCE(sum(amount) FILTER (WHERE status = 'COMPLETED'), 0) as completed_amount,
COALESCE(sum(refund_amount), 0) as refunded_amount`).
		Where(clause.Where{Exprs: []clause.Expression{transactionFilters{Filters: filters}}})
	if err := q.Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}

	out := &Summary{
		TotalCount:      row.TotalCount,
		TotalAmount:     row.TotalAmount,
		CompletedCount:  row.CompletedCount,
		CompletedAmount: row.CompletedAmount,
		RefundedAmount:  row.RefundedAmount,
	}
	if row.TotalCount > 0 {
		out.SuccessRate = float64(row.CompletedCount) / float64(row.TotalCount)
	}
	return out, nil
}

func (s *Service) StatusBreakdown(ctx context.Context, filters []*types.CommonFilter) ([]StatusBreakdownItem, error) {
	var results []StatusBreakdownItem
	q := s.db.WithContext(ctx).Table("payment_transaction").
		Select("status, count(*) as count, COALESCE(sum(amount), 0) as amount").
		Where(clause.Where{Exprs: []clause.Expression{transactionFilters{Filters: filters}}}).
		Group("status").
		Order("count DESC")
	if err := q.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to compute status breakdown: %w", err)
	}
	return results, nil
}

func (s *Service) DailyStats(ctx context.Context, filters []*types.CommonFilter) ([]DailyStatItem, error) {
	var results []DailyStatItem
	q := s.db.WithContext(ctx).Table("payment_transaction").
		Select(`TO_CHAR(created_at, 'YYYY-MM-DD') as date,
count(*) as count,
COALESCE(sum(amount), 0) as amount,
count(*) FILTER (WHERE status = 'COMPLETED') as completed_count,
COALESCE(sum(amount) FILTER (WHERE status = 'COMPLETED'), 0) as completed_amount`).
		Where(clause.Where{Exprs: []clause.Expression{transactionFilters{Filters: filters}}}).
		Group("TO_CHAR(created_at, 'YYYY-MM-DD')").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true})
	if err := q.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to compute daily stats: %w", err)
	}
	return results, nil
}

func (s *Service) ByObject(ctx context.Context, filters []*types.CommonFilter) ([]ByObjectItem, error) {
	var results []ByObjectItem
	q := s.db.WithContext(ctx).Table("payment_transaction").
		Select("COALESCE(related_kind, 'none') as related_kind, count(*) as count, COALESCE(sum(amount), 0) as amount").
		Where(clause.Where{Exprs: []clause.Expression{transactionFilters{Filters: filters}}}).
		Group("COALESCE(related_kind, 'none')").
		Order("count DESC")
	if err := q.Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to compute by-object stats: %w", err)
	}
	return results, nil
}

type exportRow struct {
	MerchantOrderID string
	Status          string
	TransactionType string
	UserIdentifier  string
	Amount          decimal.Decimal
	Currency        string
	RefundAmount    decimal.Decimal
	CreatedAt       time.Time
	CompletedAt     *time.Time
}

// Export writes matching transactions into an xlsx workbook.
func (s *Service) Export(ctx context.Context, filters []*types.CommonFilter) (*xlsx.File, error) {
	var rows []exportRow
	q := s.db.WithContext(ctx).Table("payment_transaction").
		Select("merchant_order_id, status, transaction_type, user_identifier, amount, currency, refund_amount, created_at, completed_at").
		Where(clause.Where{Exprs: []clause.Expression{transactionFilters{Filters: filters}}}).
		Order("created_at DESC")
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load export rows: %w", err)
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("transactions")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range []string{"Merchant Order ID", "Status", "Type", "User", "Amount", "Currency", "Refunded", "Created At", "Completed At"} {
		header.AddCell().SetString(h)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.MerchantOrderID)
		row.AddCell().SetString(r.Status)
		row.AddCell().SetString(r.TransactionType)
		row.AddCell().SetString(r.UserIdentifier)
		row.AddCell().SetString(r.Amount.StringFixed(2))
		row.AddCell().SetString(r.Currency)
		row.AddCell().SetString(r.RefundAmount.StringFixed(2))
		row.AddCell().SetString(r.CreatedAt.Format(time.RFC3339))
		if r.CompletedAt != nil {
			row.AddCell().SetString(r.CompletedAt.Format(time.RFC3339))
		} else {
			row.AddCell().SetString("")
		}
	}
	return file, nil
}
