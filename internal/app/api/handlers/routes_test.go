package handlers

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func routeSet(r *gin.Engine) map[string]bool {
	routes := map[string]bool{}
	for _, rt := range r.Routes() {
		routes[rt.Method+" "+rt.Path] = true
	}
	return routes
}

func TestRegisterPaymentRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	webhook := r.Group("/api")
	internal := r.Group("/api")
	RegisterPaymentRoutes(api, webhook, internal, nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/phonepe/initiate"])
	require.True(t, routes["GET /api/phonepe/order-status/:merchant_order_id"])
	require.True(t, routes["POST /api/phonepe/refund"])
	require.True(t, routes["GET /api/phonepe/refund-status/:merchant_refund_id"])
	require.True(t, routes["POST /api/phonepe/retry/:merchant_order_id"])
	require.True(t, routes["POST /api/phonepe/webhook"])
	require.True(t, routes["POST /api/phonepe/verify/:merchant_order_id"])
	require.True(t, routes["POST /api/milk-bill/initiate"])
}

func TestRegisterTransactionRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterTransactionRoutes(r.Group("/api"), nil, nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/transactions"])
	require.True(t, routes["POST /api/transactions/statistics"])
	require.True(t, routes["POST /api/transactions/status_breakdown"])
	require.True(t, routes["POST /api/transactions/daily_stats"])
	require.True(t, routes["POST /api/transactions/by_object"])
	require.True(t, routes["POST /api/transactions/export"])
}

func TestRegisterMenuRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterMenuRoutes(r.Group("/api"), nil)

	routes := routeSet(r)
	require.True(t, routes["GET /api/menu"])
	require.True(t, routes["GET /api/menu/paths"])
	require.True(t, routes["GET /api/menu/preferences"])
	require.True(t, routes["POST /api/menu/preferences"])
}

func TestRegisterInventoryRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterInventoryRoutes(r.Group("/api"), nil)

	routes := routeSet(r)
	require.True(t, routes["POST /api/inventory/stocks"])
	require.True(t, routes["POST /api/inventory/stocks/scan"])
	require.True(t, routes["GET /api/inventory/stocks/:id"])
	require.True(t, routes["POST /api/inventory/stocks/:id/add"])
	require.True(t, routes["GET /api/inventory/stocks/:id/audit"])
	require.True(t, routes["GET /api/inventory/stocks/:id/allocations"])
	require.True(t, routes["POST /api/inventory/transfers"])
	require.True(t, routes["GET /api/inventory/transfers/:id"])
	require.True(t, routes["POST /api/inventory/transfers/:id/dispatch"])
	require.True(t, routes["POST /api/inventory/transfers/:id/receive"])
	require.True(t, routes["POST /api/inventory/transfers/:id/cancel"])
	require.True(t, routes["POST /api/inventory/allocations"])
	require.True(t, routes["POST /api/inventory/allocations/scan"])
	require.True(t, routes["GET /api/inventory/allocations/:id"])
	require.True(t, routes["POST /api/inventory/allocations/:id/approve"])
	require.True(t, routes["POST /api/inventory/allocations/:id/reject"])
	require.True(t, routes["POST /api/inventory/allocations/:id/use_medicine"])
	require.True(t, routes["POST /api/inventory/allocations/:id/return_medicine"])
	require.True(t, routes["GET /api/inventory/allocations/:id/transactions"])
	require.True(t, routes["GET /api/inventory/my_allocations"])
	require.True(t, routes["GET /api/inventory/dashboard/stats"])
	require.True(t, routes["GET /api/inventory/dashboard/all_alerts"])
	require.True(t, routes["GET /api/inventory/low_stock_users"])
	require.True(t, routes["GET /api/inventory/expiring"])
}
