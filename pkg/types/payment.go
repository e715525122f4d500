package types

type PaymentStatus string

const (
	PaymentStatusInitiated         PaymentStatus = "INITIATED"
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusCompleted         PaymentStatus = "COMPLETED"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusExpired           PaymentStatus = "EXPIRED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusInitiated:         {PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusExpired},
	PaymentStatusPending:           {PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusExpired},
	PaymentStatusFailed:            {PaymentStatusInitiated},
	PaymentStatusCompleted:         {PaymentStatusPartiallyRefunded, PaymentStatusRefunded},
	PaymentStatusPartiallyRefunded: {PaymentStatusRefunded},
}

// CanTransitionTo reports whether the status graph allows moving to next.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusExpired, PaymentStatusRefunded, PaymentStatusPartiallyRefunded:
		return true
	}
	return false
}

func (s PaymentStatus) Refundable() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusPartiallyRefunded
}

type PaymentTransactionType string

const (
	TransactionTypeProductPurchase PaymentTransactionType = "PRODUCT_PURCHASE"
	TransactionTypeMilkBill        PaymentTransactionType = "MILK_BILL"
	TransactionTypeCaseService     PaymentTransactionType = "CASE_SERVICE"
	TransactionTypeMembershipFee   PaymentTransactionType = "MEMBERSHIP_FEE"
	TransactionTypeAdvancePayment  PaymentTransactionType = "ADVANCE_PAYMENT"
	TransactionTypeOther           PaymentTransactionType = "OTHER"
)

func (t PaymentTransactionType) Valid() bool {
	switch t {
	case TransactionTypeProductPurchase, TransactionTypeMilkBill, TransactionTypeCaseService,
		TransactionTypeMembershipFee, TransactionTypeAdvancePayment, TransactionTypeOther:
		return true
	}
	return false
}

type PaymentMethodType string

const (
	PaymentMethodTypeUPI        PaymentMethodType = "UPI"
	PaymentMethodTypePG         PaymentMethodType = "PG"
	PaymentMethodTypeNetBanking PaymentMethodType = "NET_BANKING"
	PaymentMethodTypeCard       PaymentMethodType = "CARD"
	PaymentMethodTypeAccount    PaymentMethodType = "ACCOUNT"
	PaymentMethodTypeMilkBill   PaymentMethodType = "MILK_BILL"
)

type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "PENDING"
	RefundStatusCompleted RefundStatus = "COMPLETED"
	RefundStatusFailed    RefundStatus = "FAILED"
)

// RelatedObjectKind is the closed set of business objects a payment may settle.
type RelatedObjectKind string

const (
	RelatedKindMilkBill    RelatedObjectKind = "milk_bill"
	RelatedKindCaseEntry   RelatedObjectKind = "case_entry"
	RelatedKindProductSale RelatedObjectKind = "product_sale"
)

func (k RelatedObjectKind) Valid() bool {
	switch k {
	case RelatedKindMilkBill, RelatedKindCaseEntry, RelatedKindProductSale:
		return true
	}
	return false
}
