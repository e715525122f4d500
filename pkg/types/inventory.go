package types

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

func (s ApprovalStatus) Terminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

type StockAction string

const (
	StockActionAllocated StockAction = "ALLOCATED"
	StockActionUsed      StockAction = "USED"
	StockActionReturned  StockAction = "RETURNED"
)

type AuditType string

const (
	AuditTypeInward  AuditType = "INWARD"
	AuditTypeOutward AuditType = "OUTWARD"
)

type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusInTransit TransferStatus = "IN_TRANSIT"
	TransferStatusReceived  TransferStatus = "RECEIVED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferStatusPending:   {TransferStatusInTransit, TransferStatusCancelled},
	TransferStatusInTransit: {TransferStatusReceived, TransferStatusCancelled},
}

func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	for _, allowed := range transferTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type AlertSeverity string

const (
	AlertSeverityExpired  AlertSeverity = "expired"
	AlertSeverityCritical AlertSeverity = "critical"
	AlertSeverityWarning  AlertSeverity = "warning"
)

// Rank orders alerts expired first, then critical, then warning.
func (s AlertSeverity) Rank() int {
	switch s {
	case AlertSeverityExpired:
		return 0
	case AlertSeverityCritical:
		return 1
	case AlertSeverityWarning:
		return 2
	}
	return 3
}
