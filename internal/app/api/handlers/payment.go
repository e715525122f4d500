package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/kisancoop/dairyops/internal/app/api/middleware"
	"github.com/kisancoop/dairyops/internal/app/service/payment"
	"github.com/kisancoop/dairyops/pkg/response"
)

// @Summary      Initiate payment
// @Description  Creates a gateway transaction and returns the checkout URL.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body payment.InitiateRequest true "Payment initiation request"
// @Success      200  {object}  response.APIResponse[payment.InitiateResult]
// @Router       /api/phonepe/initiate [post]
func ApiInitiatePayment(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.InitiateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		req.IPAddress = c.ClientIP()
		req.UserAgent = c.Request.UserAgent()

		res, err := mgr.Initiate(c.Request.Context(), &req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("payment initiated", res))
	}
}

// @Summary      Gateway webhook
// @Description  Receives payment state callbacks from the gateway.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.APIResponse[payment.WebhookAck]
// @Router       /api/phonepe/webhook [post]
func ApiPaymentWebhook(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("unreadable body", nil))
			return
		}
		ack, err := mgr.ProcessWebhook(c.Request.Context(), c.GetHeader("Authorization"), body)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("webhook processed", ack))
	}
}

// @Summary      Order status
// @Description  Returns the stored transaction, verifying with the gateway when still open.
// @Tags         Payment
// @Produce      json
// @Param        merchant_order_id  path  string  true  "Merchant order id"
// @Success      200  {object}  response.APIResponse[models.PaymentTransaction]
// @Router       /api/phonepe/order-status/{merchant_order_id} [get]
func ApiOrderStatus(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		merchantOrderID := c.Param("merchant_order_id")
		verify := c.Query("verify") == "true"

		var err error
		txn, err := mgr.CheckStatus(c.Request.Context(), merchantOrderID)
		if err == nil && verify && !txn.Status.IsTerminal() {
			txn, err = mgr.VerifyWithGateway(c.Request.Context(), merchantOrderID)
		}
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("order status", txn))
	}
}

// @Summary      Initiate refund
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body payment.RefundInitiateRequest true "Refund request"
// @Success      200  {object}  response.APIResponse[payment.RefundAck]
// @Router       /api/phonepe/refund [post]
func ApiInitiateRefund(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.RefundInitiateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		if p := mw.PrincipalFromContext(c); p != nil {
			req.InitiatedBy = p.ID
		}
		ack, err := mgr.InitiateRefund(c.Request.Context(), &req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("refund initiated", ack))
	}
}

// @Summary      Refund status
// @Tags         Payment
// @Produce      json
// @Param        merchant_refund_id  path  string  true  "Merchant refund id"
// @Success      200  {object}  response.APIResponse[models.PaymentRefund]
// @Router       /api/phonepe/refund-status/{merchant_refund_id} [get]
func ApiRefundStatus(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		refund, err := mgr.RefundStatus(c.Request.Context(), c.Param("merchant_refund_id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("refund status", refund))
	}
}

// @Summary      Retry failed payment
// @Tags         Payment
// @Produce      json
// @Param        merchant_order_id  path  string  true  "Merchant order id"
// @Success      200  {object}  response.APIResponse[payment.InitiateResult]
// @Router       /api/phonepe/retry/{merchant_order_id} [post]
func ApiRetryPayment(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := mgr.Retry(c.Request.Context(), c.Param("merchant_order_id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("payment retried", res))
	}
}

// @Summary      Verify payment with gateway
// @Description  Polls the gateway order status and applies the resulting transition.
// @Tags         Payment
// @Produce      json
// @Param        merchant_order_id  path  string  true  "Merchant order id"
// @Success      200  {object}  response.APIResponse[models.PaymentTransaction]
// @Router       /api/phonepe/verify/{merchant_order_id} [post]
func ApiVerifyPayment(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		txn, err := mgr.VerifyWithGateway(c.Request.Context(), c.Param("merchant_order_id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("payment verified", txn))
	}
}

// @Summary      Milk bill payment
// @Description  Settles a milk bill synchronously without the gateway.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body payment.MilkBillPaymentRequest true "Milk bill payment request"
// @Success      200  {object}  response.APIResponse[models.PaymentTransaction]
// @Router       /api/milk-bill/initiate [post]
func ApiMilkBillPayment(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.MilkBillPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		txn, err := mgr.MilkBillPayment(c.Request.Context(), &req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("milk bill paid", txn))
	}
}

// RegisterPaymentRoutes splits the payment surface across three groups:
// bearer-authenticated user routes, the gateway webhook (which carries its
// own credentials), and the milk-bill settlement called service-to-service
// by the billing system under an API key.
func RegisterPaymentRoutes(r, webhook, internal gin.IRouter, mgr payment.Manager) {
	r.POST("/phonepe/initiate", ApiInitiatePayment(mgr))
	r.GET("/phonepe/order-status/:merchant_order_id", ApiOrderStatus(mgr))
	r.POST("/phonepe/refund", ApiInitiateRefund(mgr))
	r.GET("/phonepe/refund-status/:merchant_refund_id", ApiRefundStatus(mgr))
	r.POST("/phonepe/retry/:merchant_order_id", ApiRetryPayment(mgr))

	webhook.POST("/phonepe/webhook", ApiPaymentWebhook(mgr))

	internal.POST("/phonepe/verify/:merchant_order_id", ApiVerifyPayment(mgr))
	internal.POST("/milk-bill/initiate", ApiMilkBillPayment(mgr))
}
