package payment

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrRefundNotFound      = errors.New("refund not found")
	ErrIllegalTransition   = errors.New("illegal status transition")
	ErrRefundExceedsAmount = errors.New("refund exceeds refundable amount")
	ErrRetryExhausted      = errors.New("retry limit reached")
	ErrUnknownRelatedKind  = errors.New("unknown related model")
)
