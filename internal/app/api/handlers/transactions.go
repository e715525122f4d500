package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kisancoop/dairyops/internal/app/service/payment"
	"github.com/kisancoop/dairyops/internal/app/service/statistics"
	"github.com/kisancoop/dairyops/pkg/response"
	"github.com/kisancoop/dairyops/pkg/types"
)

type filtersRequest struct {
	Filters []*types.CommonFilter `json:"filters"`
}

// @Summary      List transactions
// @Tags         Transactions
// @Accept       json
// @Produce      json
// @Param        request body payment.ScanTransactionsRequest true "Scan request"
// @Success      200  {object}  response.APIResponse[payment.ScanTransactionsResponse]
// @Router       /api/transactions [post]
func ApiScanTransactions(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.ScanTransactionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		res, err := mgr.ScanTransactions(c.Request.Context(), &req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("transactions", res))
	}
}

// @Summary      Transaction statistics
// @Tags         Transactions
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.APIResponse[statistics.Summary]
// @Router       /api/transactions/statistics [post]
func ApiTransactionStatistics(stats *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req filtersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		summary, err := stats.Summary(c.Request.Context(), req.Filters)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("transaction statistics", summary))
	}
}

// @Summary      Status breakdown
// @Tags         Transactions
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]statistics.StatusBreakdownItem]
// @Router       /api/transactions/status_breakdown [post]
func ApiStatusBreakdown(stats *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req filtersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		items, err := stats.StatusBreakdown(c.Request.Context(), req.Filters)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("status breakdown", items))
	}
}

// @Summary      Daily statistics
// @Tags         Transactions
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]statistics.DailyStatItem]
// @Router       /api/transactions/daily_stats [post]
func ApiDailyStats(stats *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req filtersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		items, err := stats.DailyStats(c.Request.Context(), req.Filters)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("daily statistics", items))
	}
}

// @Summary      Totals by related object
// @Tags         Transactions
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]statistics.ByObjectItem]
// @Router       /api/transactions/by_object [post]
func ApiByObject(stats *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req filtersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		items, err := stats.ByObject(c.Request.Context(), req.Filters)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("totals by object", items))
	}
}

// @Summary      Export transactions
// @Description  Streams matching transactions as an xlsx workbook.
// @Tags         Transactions
// @Accept       json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router       /api/transactions/export [post]
func ApiExportTransactions(stats *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req filtersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		file, err := stats.Export(c.Request.Context(), req.Filters)
		if err != nil {
			abortWithError(c, err)
			return
		}

		filename := fmt.Sprintf("transactions_%s.xlsx", time.Now().Format("20060102_150405"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := file.Write(c.Writer); err != nil {
			abortWithError(c, err)
		}
	}
}

func RegisterTransactionRoutes(r gin.IRouter, mgr payment.Manager, stats *statistics.Service) {
	r.POST("/transactions", ApiScanTransactions(mgr))
	r.POST("/transactions/statistics", ApiTransactionStatistics(stats))
	r.POST("/transactions/status_breakdown", ApiStatusBreakdown(stats))
	r.POST("/transactions/daily_stats", ApiDailyStats(stats))
	r.POST("/transactions/by_object", ApiByObject(stats))
	r.POST("/transactions/export", ApiExportTransactions(stats))
}
