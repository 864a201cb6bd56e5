package router

import (
	"hybridRecommender/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, authRequired, selfOrAdmin, adminOnly echo.MiddlewareFunc) {
	reco := api.Group("/recommendations", authRequired)

	reco.GET("/users/:user_id", handler.RecommendForUser, selfOrAdmin)
	reco.GET("/users/:user_id/debug", handler.DebugRecommendForUser, adminOnly)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler) {
	products := api.Group("/products")

	products.GET("/popular", handler.Popular)
	products.GET("/search", handler.Search)
	products.GET("/:id", handler.GetProductInfo)
	products.GET("/:id/similar", handler.Similar)
}

func SetupAdminRoutes(api *echo.Group, handler *rest.AdminHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin", authRequired, adminOnly)

	admin.POST("/catalog/reload", handler.ReloadCatalog)
	admin.GET("/recommendation-logs", handler.ListRecommendationLogs)
}

func SetupOpsRoutes(e *echo.Echo, health *rest.HealthHandler) {
	e.GET("/healthz", health.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
