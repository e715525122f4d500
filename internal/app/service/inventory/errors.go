package inventory

import "errors"

var (
	ErrInvalidAmount      = errors.New("quantity must be positive")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNotApproved        = errors.New("allocation is not approved")
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrStockNotFound      = errors.New("medicine stock not found")
	ErrAllocationNotFound = errors.New("allocation not found")
	ErrTransferNotFound   = errors.New("transfer not found")
	ErrForbidden          = errors.New("not permitted for this user")
	ErrValidation         = errors.New("validation failed")
)
