package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	mw "github.com/kisancoop/dairyops/internal/app/api/middleware"
	"github.com/kisancoop/dairyops/internal/app/service/inventory"
	"github.com/kisancoop/dairyops/pkg/response"
	"github.com/kisancoop/dairyops/pkg/types"
)

func requirePrincipal(c *gin.Context) (*types.Principal, bool) {
	principal := mw.PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, response.ErrorT("authentication required", nil))
		return nil, false
	}
	return principal, true
}

// @Summary      Create batch stock
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Param        request body inventory.CreateStockRequest true "Stock"
// @Success      200  {object}  response.APIResponse[models.MedicineStock]
// @Router       /api/inventory/stocks [post]
func ApiCreateStock(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		var req inventory.CreateStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		stock, err := mgr.CreateStock(c.Request.Context(), principal, &req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("stock created", stock))
	}
}

// @Summary      List batch stocks
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.APIResponse[inventory.ScanStocksResponse]
// @Router       /api/inventory/stocks/scan [post]
func ApiScanStocks(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req inventory.ScanStocksRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		res, err := mgr.ScanStocks(c.Request.Context(), &req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("stocks", res))
	}
}

// @Summary      Get batch stock
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.MedicineStock]
// @Router       /api/inventory/stocks/{id} [get]
func ApiGetStock(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		stock, err := mgr.GetStock(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("stock", stock))
	}
}

// @Summary      Add quantity to batch
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.MedicineStock]
// @Router       /api/inventory/stocks/{id}/add [post]
func ApiAddStock(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		var req inventory.StockMutationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		req.StockID = c.Param("id")
		stock, err := mgr.AddStock(c.Request.Context(), principal, &req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("stock updated", stock))
	}
}

// @Summary      Batch audit trail
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]models.MedicineStockAudit]
// @Router       /api/inventory/stocks/{id}/audit [get]
func ApiStockAuditTrail(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		audits, err := mgr.StockAuditTrail(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("audit trail", audits))
	}
}

func principalAction(action func(c *gin.Context, principal *types.Principal) (any, error), message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		res, err := action(c, principal)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(message, res))
	}
}

// @Summary      Create transfer
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.MedicineStockTransferLog]
// @Router       /api/inventory/transfers [post]
func ApiCreateTransfer(mgr inventory.Manager) gin.HandlerFunc {
	return principalAction(func(c *gin.Context, principal *types.Principal) (any, error) {
		var req inventory.CreateTransferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, inventory.ErrValidation
		}
		return mgr.CreateTransfer(c.Request.Context(), principal, &req)
	}, "transfer created")
}

// @Summary      Dispatch transfer
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.MedicineStockTransferLog]
// @Router       /api/inventory/transfers/{id}/dispatch [post]
func ApiDispatchTransfer(mgr inventory.Manager) gin.HandlerFunc {
	return principalAction(func(c *gin.Context, principal *types.Principal) (any, error) {
		return mgr.DispatchTransfer(c.Request.Context(), principal, c.Param("id"))
	}, "transfer dispatched")
}

// @Summary      Receive transfer
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.MedicineStockTransferLog]
// @Router       /api/inventory/transfers/{id}/receive [post]
func ApiReceiveTransfer(mgr inventory.Manager) gin.HandlerFunc {
	return principalAction(func(c *gin.Context, principal *types.Principal) (any, error) {
		return mgr.ReceiveTransfer(c.Request.Context(), principal, c.Param("id"))
	}, "transfer received")
}

// @Summary      Cancel transfer
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.MedicineStockTransferLog]
// @Router       /api/inventory/transfers/{id}/cancel [post]
func ApiCancelTransfer(mgr inventory.Manager) gin.HandlerFunc {
	return principalAction(func(c *gin.Context, principal *types.Principal) (any, error) {
		return mgr.CancelTransfer(c.Request.Context(), principal, c.Param("id"))
	}, "transfer cancelled")
}

// @Summary      Get transfer
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.MedicineStockTransferLog]
// @Router       /api/inventory/transfers/{id} [get]
func ApiGetTransfer(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		transfer, err := mgr.GetTransfer(c.Request.Context(), c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("transfer", transfer))
	}
}

// @Summary      Create allocation
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Param        request body inventory.CreateAllocationRequest true "Allocation"
// @Success      200  {object}  response.APIResponse[models.UserMedicineStock]
// @Router       /api/inventory/allocations [post]
func ApiCreateAllocation(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		var req inventory.CreateAllocationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		alloc, err := mgr.CreateAllocation(c.Request.Context(), principal, &req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("allocation created", alloc))
	}
}

// @Summary      List allocations
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.APIResponse[inventory.ScanAllocationsResponse]
// @Router       /api/inventory/allocations/scan [post]
func ApiScanAllocations(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		var req inventory.ScanAllocationsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		res, err := mgr.ScanAllocations(c.Request.Context(), principal, &req)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("allocations", res))
	}
}

// @Summary      Get allocation
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.UserMedicineStock]
// @Router       /api/inventory/allocations/{id} [get]
func ApiGetAllocation(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		alloc, err := mgr.GetAllocation(c.Request.Context(), principal, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("allocation", alloc))
	}
}

// @Summary      Approve allocation
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.UserMedicineStock]
// @Router       /api/inventory/allocations/{id}/approve [post]
func ApiApproveAllocation(mgr inventory.Manager) gin.HandlerFunc {
	return principalAction(func(c *gin.Context, principal *types.Principal) (any, error) {
		return mgr.ApproveAllocation(c.Request.Context(), principal, c.Param("id"))
	}, "allocation approved")
}

// @Summary      Reject allocation
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.APIResponse[models.UserMedicineStock]
// @Router       /api/inventory/allocations/{id}/reject [post]
func ApiRejectAllocation(mgr inventory.Manager) gin.HandlerFunc {
	return principalAction(func(c *gin.Context, principal *types.Principal) (any, error) {
		var req struct {
			Reason string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, inventory.ErrValidation
		}
		return mgr.RejectAllocation(c.Request.Context(), principal, c.Param("id"), req.Reason)
	}, "allocation rejected")
}

// @Summary      Record medicine usage
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Param        request body inventory.ConsumeRequest true "Usage"
// @Success      200  {object}  response.APIResponse[models.UserMedicineStock]
// @Router       /api/inventory/allocations/{id}/use_medicine [post]
func ApiUseMedicine(mgr inventory.Manager) gin.HandlerFunc {
	return principalAction(func(c *gin.Context, principal *types.Principal) (any, error) {
		var req inventory.ConsumeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, inventory.ErrValidation
		}
		req.AllocationID = c.Param("id")
		return mgr.UseMedicine(c.Request.Context(), principal, &req)
	}, "usage recorded")
}

// @Summary      Return medicine to stock
// @Tags         Inventory
// @Accept       json
// @Produce      json
// @Param        request body inventory.ConsumeRequest true "Return"
// @Success      200  {object}  response.APIResponse[models.UserMedicineStock]
// @Router       /api/inventory/allocations/{id}/return_medicine [post]
func ApiReturnMedicine(mgr inventory.Manager) gin.HandlerFunc {
	return principalAction(func(c *gin.Context, principal *types.Principal) (any, error) {
		var req inventory.ConsumeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, inventory.ErrValidation
		}
		req.AllocationID = c.Param("id")
		return mgr.ReturnMedicine(c.Request.Context(), principal, &req)
	}, "medicine returned")
}

// @Summary      Allocation transaction history
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]models.UserMedicineTransaction]
// @Router       /api/inventory/allocations/{id}/transactions [get]
func ApiTransactionHistory(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requirePrincipal(c)
		if !ok {
			return
		}
		txns, err := mgr.TransactionHistory(c.Request.Context(), principal, c.Param("id"))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("transaction history", txns))
	}
}

// @Summary      My allocations
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]models.UserMedicineStock]
// @Router       /api/inventory/my_allocations [get]
func ApiMyAllocations(mgr inventory.Manager) gin.HandlerFunc {
	return principalAction(func(c *gin.Context, principal *types.Principal) (any, error) {
		return mgr.MyAllocations(c.Request.Context(), principal)
	}, "my allocations")
}

// @Summary      Allocation history for a batch
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]models.UserMedicineStock]
// @Router       /api/inventory/stocks/{id}/allocations [get]
func ApiStockAllocations(mgr inventory.Manager) gin.HandlerFunc {
	return principalAction(func(c *gin.Context, principal *types.Principal) (any, error) {
		return mgr.AllocationsForStock(c.Request.Context(), principal, c.Param("id"))
	}, "allocation history")
}

// @Summary      Inventory dashboard stats
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[inventory.DashboardStats]
// @Router       /api/inventory/dashboard/stats [get]
func ApiDashboardStats(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := mgr.Dashboard(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("dashboard stats", stats))
	}
}

// @Summary      All inventory alerts
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]inventory.Alert]
// @Router       /api/inventory/dashboard/all_alerts [get]
func ApiAllAlerts(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		alerts, err := mgr.AllAlerts(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("alerts", alerts))
	}
}

// @Summary      Users with low allocations
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]inventory.LowStockUser]
// @Router       /api/inventory/low_stock_users [get]
func ApiLowStockUsers(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := mgr.LowStockUsers(c.Request.Context())
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("low stock users", users))
	}
}

// @Summary      Expiring batches
// @Tags         Inventory
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]models.MedicineStock]
// @Router       /api/inventory/expiring [get]
func ApiExpiringStock(mgr inventory.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		days := 30
		if q := c.Query("days"); q != "" {
			if parsed, err := strconv.Atoi(q); err == nil && parsed > 0 {
				days = parsed
			}
		}
		stocks, err := mgr.ExpiringStock(c.Request.Context(), time.Duration(days)*24*time.Hour)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("expiring stock", stocks))
	}
}

func RegisterInventoryRoutes(r gin.IRouter, mgr inventory.Manager) {
	r.POST("/inventory/stocks", ApiCreateStock(mgr))
	r.POST("/inventory/stocks/scan", ApiScanStocks(mgr))
	r.GET("/inventory/stocks/:id", ApiGetStock(mgr))
	r.POST("/inventory/stocks/:id/add", ApiAddStock(mgr))
	r.GET("/inventory/stocks/:id/audit", ApiStockAuditTrail(mgr))
	r.GET("/inventory/stocks/:id/allocations", ApiStockAllocations(mgr))

	r.POST("/inventory/transfers", ApiCreateTransfer(mgr))
	r.GET("/inventory/transfers/:id", ApiGetTransfer(mgr))
	r.POST("/inventory/transfers/:id/dispatch", ApiDispatchTransfer(mgr))
	r.POST("/inventory/transfers/:id/receive", ApiReceiveTransfer(mgr))
	r.POST("/inventory/transfers/:id/cancel", ApiCancelTransfer(mgr))

	r.POST("/inventory/allocations", ApiCreateAllocation(mgr))
	r.POST("/inventory/allocations/scan", ApiScanAllocations(mgr))
	r.GET("/inventory/allocations/:id", ApiGetAllocation(mgr))
	r.POST("/inventory/allocations/:id/approve", ApiApproveAllocation(mgr))
	r.POST("/inventory/allocations/:id/reject", ApiRejectAllocation(mgr))
	r.POST("/inventory/allocations/:id/use_medicine", ApiUseMedicine(mgr))
	r.POST("/inventory/allocations/:id/return_medicine", ApiReturnMedicine(mgr))
	r.GET("/inventory/allocations/:id/transactions", ApiTransactionHistory(mgr))
	r.GET("/inventory/my_allocations", ApiMyAllocations(mgr))

	r.GET("/inventory/dashboard/stats", ApiDashboardStats(mgr))
	r.GET("/inventory/dashboard/all_alerts", ApiAllAlerts(mgr))
	r.GET("/inventory/low_stock_users", ApiLowStockUsers(mgr))
	r.GET("/inventory/expiring", ApiExpiringStock(mgr))
}
