package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kisancoop/dairyops/pkg/types"
)

type Location struct {
	ID       string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Code     string `gorm:"column:code;type:varchar(64);not null;uniqueIndex:unique_location_code" json:"code"`
	Name     string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Address  string `gorm:"column:address;type:varchar(255)" json:"address"`
	IsActive bool   `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (Location) TableName() string { return "location" }

type Disease struct {
	ID          string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Name        string `gorm:"column:name;type:varchar(128);not null;uniqueIndex:unique_disease_name" json:"name"`
	Description string `gorm:"column:description;type:varchar(512)" json:"description"`
}

func (Disease) TableName() string { return "disease" }

type MedicineCategory struct {
	ID            string `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Name          string `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Form          string `gorm:"column:form;type:varchar(64)" json:"form"`
	UnitOfMeasure string `gorm:"column:unit_of_measure;type:varchar(32);not null" json:"unit_of_measure"`
}

func (MedicineCategory) TableName() string { return "medicine_category" }

type Medicine struct {
	ID                  string            `gorm:"column:id;primary_key;type:uuid" json:"id"`
	Name                string            `gorm:"column:name;type:varchar(128);not null;index:idx_medicine_name" json:"name"`
	CategoryID          string            `gorm:"column:category_id;type:uuid;not null" json:"category_id"`
	Category            *MedicineCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Strength            string            `gorm:"column:strength;type:varchar(64)" json:"strength"`
	Packaging           string            `gorm:"column:packaging;type:varchar(128)" json:"packaging"`
	DefaultExpiryMonths *int              `gorm:"column:default_expiry_months" json:"default_expiry_months"`
	IsActive            bool              `gorm:"column:is_active;not null;default:true" json:"is_active"`

	Diseases []*Disease `gorm:"many2many:medicine_disease;" json:"diseases,omitempty"`
}

func (Medicine) TableName() string { return "medicine" }

// MedicineStock is one batch of one medicine at one location.
// Invariant: 0 <= reserved_quantity <= total_quantity.
type MedicineStock struct {
	ID               string           `gorm:"column:id;primary_key;type:uuid" json:"id"`
	MedicineID       string           `gorm:"column:medicine_id;type:uuid;not null;uniqueIndex:unique_medicine_batch_location,priority:1" json:"medicine_id"`
	Medicine         *Medicine        `gorm:"foreignKey:MedicineID" json:"medicine,omitempty"`
	BatchNumber      string           `gorm:"column:batch_number;type:varchar(64);not null;uniqueIndex:unique_medicine_batch_location,priority:2" json:"batch_number"`
	LocationID       string           `gorm:"column:location_id;type:uuid;not null;uniqueIndex:unique_medicine_batch_location,priority:3" json:"location_id"`
	Location         *Location        `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	TotalQuantity    decimal.Decimal  `gorm:"column:total_quantity;type:numeric(12,2);not null;default:0" json:"total_quantity"`
	ReservedQuantity decimal.Decimal  `gorm:"column:reserved_quantity;type:numeric(12,2);not null;default:0" json:"reserved_quantity"`
	ExpiryDate       *time.Time       `gorm:"column:expiry_date;type:date;index:idx_stock_expiry" json:"expiry_date"`
	UnitCost         *decimal.Decimal `gorm:"column:unit_cost;type:numeric(12,2)" json:"unit_cost"`
	LastUpdated      time.Time        `gorm:"column:last_updated" json:"last_updated"`
	CreatedAt        time.Time        `gorm:"column:created_at" json:"created_at"`
}

func (MedicineStock) TableName() string { return "medicine_stock" }

func (s *MedicineStock) Available() decimal.Decimal {
	return s.TotalQuantity.Sub(s.ReservedQuantity)
}

// UserMedicineStock is one allocation of a batch to one user.
// Invariant: 0 <= used_quantity <= allocated_quantity.
type UserMedicineStock struct {
	ID                string               `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID            string               `gorm:"column:user_id;type:varchar(64);not null;index:idx_allocation_user" json:"user_id"`
	StockID           string               `gorm:"column:stock_id;type:uuid;not null;index:idx_allocation_stock" json:"stock_id"`
	Stock             *MedicineStock       `gorm:"foreignKey:StockID" json:"stock,omitempty"`
	AllocatedQuantity decimal.Decimal      `gorm:"column:allocated_quantity;type:numeric(12,2);not null" json:"allocated_quantity"`
	UsedQuantity      decimal.Decimal      `gorm:"column:used_quantity;type:numeric(12,2);not null;default:0" json:"used_quantity"`
	MinThreshold      decimal.Decimal      `gorm:"column:min_threshold;type:numeric(12,2);not null;default:0" json:"min_threshold"`
	ThresholdQuantity decimal.Decimal      `gorm:"column:threshold_quantity;type:numeric(12,2);not null;default:0" json:"threshold_quantity"`
	ApprovalStatus    types.ApprovalStatus `gorm:"column:approval_status;type:varchar(16);not null;default:'PENDING';index:idx_allocation_approval" json:"approval_status"`
	ApprovedBy        *string              `gorm:"column:approved_by;type:varchar(64)" json:"approved_by"`
	ApprovalDate      *time.Time           `gorm:"column:approval_date" json:"approval_date"`
	RejectionReason   *string              `gorm:"column:rejection_reason;type:varchar(255)" json:"rejection_reason"`
	SyncStatus        string               `gorm:"column:sync_status;type:varchar(16);not null;default:'SYNCED'" json:"sync_status"`
	CreatedAt         time.Time            `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time            `gorm:"column:updated_at" json:"updated_at"`
}

func (UserMedicineStock) TableName() string { return "user_medicine_stock" }

// Remaining is what the user may still consume. Non-approved allocations
// contribute zero.
func (a *UserMedicineStock) Remaining() decimal.Decimal {
	if a.ApprovalStatus != types.ApprovalStatusApproved {
		return decimal.Zero
	}
	return a.AllocatedQuantity.Sub(a.UsedQuantity)
}

// UserMedicineTransaction is the append-only event stream of one allocation.
type UserMedicineTransaction struct {
	ID             string            `gorm:"column:id;primary_key;type:uuid" json:"id"`
	AllocationID   string            `gorm:"column:allocation_id;type:uuid;not null;index:idx_txn_allocation" json:"allocation_id"`
	Action         types.StockAction `gorm:"column:action;type:varchar(16);not null" json:"action"`
	Quantity       decimal.Decimal   `gorm:"column:quantity;type:numeric(12,2);not null" json:"quantity"`
	RunningBalance decimal.Decimal   `gorm:"column:running_balance;type:numeric(12,2);not null" json:"running_balance"`
	PerformedBy    string            `gorm:"column:performed_by;type:varchar(64);not null" json:"performed_by"`
	Notes          string            `gorm:"column:notes;type:varchar(255)" json:"notes"`
	CreatedAt      time.Time         `gorm:"column:created_at" json:"created_at"`
}

func (UserMedicineTransaction) TableName() string { return "user_medicine_transaction" }

// MedicineStockAudit is the append-only central-stock movement log.
type MedicineStockAudit struct {
	ID              string          `gorm:"column:id;primary_key;type:uuid" json:"id"`
	StockID         string          `gorm:"column:stock_id;type:uuid;not null;index:idx_audit_stock" json:"stock_id"`
	MedicineID      string          `gorm:"column:medicine_id;type:uuid;not null;index:idx_audit_medicine" json:"medicine_id"`
	TransactionType types.AuditType `gorm:"column:transaction_type;type:varchar(16);not null" json:"transaction_type"`
	Quantity        decimal.Decimal `gorm:"column:quantity;type:numeric(12,2);not null" json:"quantity"`
	BalanceAfter    decimal.Decimal `gorm:"column:balance_after;type:numeric(12,2);not null" json:"balance_after"`
	Reference       string          `gorm:"column:reference;type:varchar(128)" json:"reference"`
	PerformedBy     string          `gorm:"column:performed_by;type:varchar(64)" json:"performed_by"`
	CreatedAt       time.Time       `gorm:"column:created_at" json:"created_at"`
}

func (MedicineStockAudit) TableName() string { return "medicine_stock_audit" }

// MedicineStockTransferLog tracks a directed transfer between locations.
type MedicineStockTransferLog struct {
	ID               string               `gorm:"column:id;primary_key;type:uuid" json:"id"`
	MedicineID       string               `gorm:"column:medicine_id;type:uuid;not null" json:"medicine_id"`
	BatchNumber      string               `gorm:"column:batch_number;type:varchar(64);not null" json:"batch_number"`
	SourceLocationID string               `gorm:"column:source_location_id;type:uuid;not null" json:"source_location_id"`
	TargetLocationID string               `gorm:"column:target_location_id;type:uuid;not null" json:"target_location_id"`
	Quantity         decimal.Decimal      `gorm:"column:quantity;type:numeric(12,2);not null" json:"quantity"`
	Status           types.TransferStatus `gorm:"column:status;type:varchar(16);not null;default:'PENDING'" json:"status"`
	UnitCost         *decimal.Decimal     `gorm:"column:unit_cost;type:numeric(12,2)" json:"unit_cost"`
	TotalCost        *decimal.Decimal     `gorm:"column:total_cost;type:numeric(12,2)" json:"total_cost"`
	InitiatedBy      string               `gorm:"column:initiated_by;type:varchar(64);not null" json:"initiated_by"`
	ReceivedBy       *string              `gorm:"column:received_by;type:varchar(64)" json:"received_by"`
	CreatedAt        time.Time            `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time            `gorm:"column:updated_at" json:"updated_at"`
	ReceivedAt       *time.Time           `gorm:"column:received_at" json:"received_at"`
	CancelledAt      *time.Time           `gorm:"column:cancelled_at" json:"cancelled_at"`
}

func (MedicineStockTransferLog) TableName() string { return "medicine_stock_transfer_log" }
