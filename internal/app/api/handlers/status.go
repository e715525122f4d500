package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kisancoop/dairyops/internal/app/service/inventory"
	"github.com/kisancoop/dairyops/internal/app/service/menu"
	"github.com/kisancoop/dairyops/internal/app/service/payment"
	"github.com/kisancoop/dairyops/internal/platform/phonepe"
	"github.com/kisancoop/dairyops/pkg/response"
)

// statusFor maps a service error to the HTTP status of the envelope.
func statusFor(err error) int {
	var gatewayErr *phonepe.GatewayError
	switch {
	case errors.Is(err, payment.ErrValidation),
		errors.Is(err, payment.ErrUnknownRelatedKind),
		errors.Is(err, payment.ErrRetryExhausted),
		errors.Is(err, payment.ErrRefundExceedsAmount),
		errors.Is(err, inventory.ErrValidation),
		errors.Is(err, inventory.ErrInvalidAmount),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, inventory.ErrNotApproved),
		errors.Is(err, phonepe.ErrEmptyBody),
		errors.Is(err, phonepe.ErrInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, phonepe.ErrMissingAuthorization),
		errors.Is(err, phonepe.ErrInvalidAuthorization):
		return http.StatusUnauthorized
	case errors.Is(err, inventory.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, payment.ErrTransactionNotFound),
		errors.Is(err, payment.ErrRefundNotFound),
		errors.Is(err, inventory.ErrStockNotFound),
		errors.Is(err, inventory.ErrAllocationNotFound),
		errors.Is(err, inventory.ErrTransferNotFound),
		errors.Is(err, menu.ErrMenuItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, payment.ErrIllegalTransition),
		errors.Is(err, inventory.ErrIllegalTransition):
		return http.StatusConflict
	case errors.As(err, &gatewayErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), response.ErrorT(err.Error(), nil))
}
