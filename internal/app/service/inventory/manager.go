package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kisancoop/dairyops/internal/models"
	"github.com/kisancoop/dairyops/pkg/types"
)

type CreateStockRequest struct {
	MedicineID  string           `json:"medicine_id"`
	BatchNumber string           `json:"batch_number"`
	LocationID  string           `json:"location_id"`
	Quantity    decimal.Decimal  `json:"quantity"`
	ExpiryDate  *time.Time       `json:"expiry_date"`
	UnitCost    *decimal.Decimal `json:"unit_cost"`
}

type StockMutationRequest struct {
	StockID   string          `json:"stock_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reference string          `json:"reference"`
}

type ScanStocksRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanStocksResponse struct {
	Items []*models.MedicineStock `json:"items"`
	Total int64                   `json:"total"`
}

type CreateTransferRequest struct {
	StockID          string          `json:"stock_id"`
	TargetLocationID string          `json:"target_location_id"`
	Quantity         decimal.Decimal `json:"quantity"`
}

type CreateAllocationRequest struct {
	UserID            string          `json:"user_id"`
	StockID           string          `json:"stock_id"`
	AllocatedQuantity decimal.Decimal `json:"allocated_quantity"`
	MinThreshold      decimal.Decimal `json:"min_threshold"`
	ThresholdQuantity decimal.Decimal `json:"threshold_quantity"`
}

type ConsumeRequest struct {
	AllocationID string          `json:"allocation_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Notes        string          `json:"notes"`
}

type ScanAllocationsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanAllocationsResponse struct {
	Items []*models.UserMedicineStock `json:"items"`
	Total int64                       `json:"total"`
}

// Alert is one actionable inventory condition for the dashboard.
type Alert struct {
	Type             string              `json:"type"`
	Severity         types.AlertSeverity `json:"severity"`
	MedicineName     string              `json:"medicine_name"`
	MedicineStrength string              `json:"medicine_strength,omitempty"`
	BatchNumber      string              `json:"batch_number,omitempty"`
	UserID           string              `json:"user_id,omitempty"`
	CurrentQuantity  decimal.Decimal     `json:"current_quantity"`
	UnitOfMeasure    string              `json:"unit_of_measure,omitempty"`
	ExpiryDate       *time.Time          `json:"expiry_date,omitempty"`
	DaysToExpiry     *int                `json:"days_to_expiry,omitempty"`
	Message          string              `json:"message"`
}

type DashboardStats struct {
	TotalMedicines          int64 `json:"total_medicines"`
	TotalStockItems         int64 `json:"total_stock_items"`
	TotalUserAllocations    int64 `json:"total_user_allocations"`
	ExpiredStockCount       int64 `json:"expired_stock_count"`
	ExpiringSoonCount       int64 `json:"expiring_soon_count"`
	LowStockCount           int64 `json:"low_stock_count"`
	CriticalAllocationCount int64 `json:"critical_allocation_count"`
	LowAllocationCount      int64 `json:"low_allocation_count"`
	HealthyAllocationCount  int64 `json:"healthy_allocation_count"`
	PendingApprovalCount    int64 `json:"pending_approval_count"`
	InTransitTransferCount  int64 `json:"in_transit_transfer_count"`
}

type LowStockUser struct {
	UserID      string                      `json:"user_id"`
	FullName    string                      `json:"full_name"`
	Allocations []*models.UserMedicineStock `json:"allocations"`
}

// Manager is the inventory engine surface consumed by handlers and sweeps.
type Manager interface {
	CreateStock(ctx context.Context, principal *types.Principal, req *CreateStockRequest) (*models.MedicineStock, error)
	AddStock(ctx context.Context, principal *types.Principal, req *StockMutationRequest) (*models.MedicineStock, error)
	GetStock(ctx context.Context, stockID string) (*models.MedicineStock, error)
	ScanStocks(ctx context.Context, req *ScanStocksRequest) (*ScanStocksResponse, error)
	StockAuditTrail(ctx context.Context, stockID string) ([]*models.MedicineStockAudit, error)

	CreateTransfer(ctx context.Context, principal *types.Principal, req *CreateTransferRequest) (*models.MedicineStockTransferLog, error)
	DispatchTransfer(ctx context.Context, principal *types.Principal, transferID string) (*models.MedicineStockTransferLog, error)
	ReceiveTransfer(ctx context.Context, principal *types.Principal, transferID string) (*models.MedicineStockTransferLog, error)
	CancelTransfer(ctx context.Context, principal *types.Principal, transferID string) (*models.MedicineStockTransferLog, error)
	GetTransfer(ctx context.Context, transferID string) (*models.MedicineStockTransferLog, error)

	CreateAllocation(ctx context.Context, principal *types.Principal, req *CreateAllocationRequest) (*models.UserMedicineStock, error)
	ApproveAllocation(ctx context.Context, principal *types.Principal, allocationID string) (*models.UserMedicineStock, error)
	RejectAllocation(ctx context.Context, principal *types.Principal, allocationID, reason string) (*models.UserMedicineStock, error)
	UseMedicine(ctx context.Context, principal *types.Principal, req *ConsumeRequest) (*models.UserMedicineStock, error)
	ReturnMedicine(ctx context.Context, principal *types.Principal, req *ConsumeRequest) (*models.UserMedicineStock, error)
	GetAllocation(ctx context.Context, principal *types.Principal, allocationID string) (*models.UserMedicineStock, error)
	ScanAllocations(ctx context.Context, principal *types.Principal, req *ScanAllocationsRequest) (*ScanAllocationsResponse, error)
	MyAllocations(ctx context.Context, principal *types.Principal) ([]*models.UserMedicineStock, error)
	AllocationsForStock(ctx context.Context, principal *types.Principal, stockID string) ([]*models.UserMedicineStock, error)
	TransactionHistory(ctx context.Context, principal *types.Principal, allocationID string) ([]*models.UserMedicineTransaction, error)

	Dashboard(ctx context.Context) (*DashboardStats, error)
	AllAlerts(ctx context.Context) ([]*Alert, error)
	LowStockUsers(ctx context.Context) ([]*LowStockUser, error)
	ExpiringStock(ctx context.Context, within time.Duration) ([]*models.MedicineStock, error)
}
