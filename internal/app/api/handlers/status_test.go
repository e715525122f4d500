package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kisancoop/dairyops/internal/app/service/inventory"
	"github.com/kisancoop/dairyops/internal/app/service/payment"
	"github.com/kisancoop/dairyops/internal/platform/phonepe"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{payment.ErrValidation, http.StatusBadRequest},
		{payment.ErrRefundExceedsAmount, http.StatusBadRequest},
		{inventory.ErrInsufficientStock, http.StatusBadRequest},
		{inventory.ErrNotApproved, http.StatusBadRequest},
		{phonepe.ErrMissingAuthorization, http.StatusUnauthorized},
		{phonepe.ErrInvalidAuthorization, http.StatusUnauthorized},
		{inventory.ErrForbidden, http.StatusForbidden},
		{payment.ErrTransactionNotFound, http.StatusNotFound},
		{inventory.ErrAllocationNotFound, http.StatusNotFound},
		{payment.ErrIllegalTransition, http.StatusConflict},
		{inventory.ErrIllegalTransition, http.StatusConflict},
		{&phonepe.GatewayError{StatusCode: 500, Code: "INTERNAL"}, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, statusFor(tc.err), "err=%v", tc.err)
	}
}

func TestStatusFor_WrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("%w: requested 10, available 3", inventory.ErrInsufficientStock)
	require.Equal(t, http.StatusBadRequest, statusFor(wrapped))

	forbidden := fmt.Errorf("%w: u1 does not supervise u2", inventory.ErrForbidden)
	require.Equal(t, http.StatusForbidden, statusFor(forbidden))
}
