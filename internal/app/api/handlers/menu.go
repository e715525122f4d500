package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/kisancoop/dairyops/internal/app/api/middleware"
	"github.com/kisancoop/dairyops/internal/app/service/menu"
	"github.com/kisancoop/dairyops/pkg/response"
)

// @Summary      User menu tree
// @Description  Returns the navigation tree the principal may see. `refresh=true` bypasses the cache.
// @Tags         Menu
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]menu.TreeNode]
// @Router       /api/menu [get]
func ApiGetMenu(mgr menu.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := mw.PrincipalFromContext(c)
		if principal == nil {
			c.JSON(http.StatusUnauthorized, response.ErrorT("authentication required", nil))
			return
		}
		refresh := c.Query("refresh") == "true"
		tree, err := mgr.GetUserMenu(c.Request.Context(), principal, refresh)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("menu", tree))
	}
}

// @Summary      Accessible paths
// @Tags         Menu
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]string]
// @Router       /api/menu/paths [get]
func ApiGetMenuPaths(mgr menu.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := mw.PrincipalFromContext(c)
		if principal == nil {
			c.JSON(http.StatusUnauthorized, response.ErrorT("authentication required", nil))
			return
		}
		paths, err := mgr.GetPaths(c.Request.Context(), principal)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("paths", paths))
	}
}

// @Summary      List menu preferences
// @Tags         Menu
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]menu.PreferenceView]
// @Router       /api/menu/preferences [get]
func ApiListMenuPreferences(mgr menu.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := mw.PrincipalFromContext(c)
		if principal == nil {
			c.JSON(http.StatusUnauthorized, response.ErrorT("authentication required", nil))
			return
		}
		prefs, err := mgr.ListPreferences(c.Request.Context(), principal)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT("preferences", prefs))
	}
}

// @Summary      Save menu preferences
// @Tags         Menu
// @Accept       json
// @Produce      json
// @Param        request body []menu.PreferenceRequest true "Preferences"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/menu/preferences [post]
func ApiSaveMenuPreferences(mgr menu.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := mw.PrincipalFromContext(c)
		if principal == nil {
			c.JSON(http.StatusUnauthorized, response.ErrorT("authentication required", nil))
			return
		}
		var reqs []*menu.PreferenceRequest
		if err := c.ShouldBindJSON(&reqs); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT("invalid request body", err.Error()))
			return
		}
		if err := mgr.BulkUpsertPreferences(c.Request.Context(), principal, reqs); err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any]("preferences saved", nil))
	}
}

func RegisterMenuRoutes(r gin.IRouter, mgr menu.Manager) {
	r.GET("/menu", ApiGetMenu(mgr))
	r.GET("/menu/paths", ApiGetMenuPaths(mgr))
	r.GET("/menu/preferences", ApiListMenuPreferences(mgr))
	r.POST("/menu/preferences", ApiSaveMenuPreferences(mgr))
}
