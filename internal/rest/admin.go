package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"hybridRecommender/business/recommendation"
	"hybridRecommender/domain"
	"hybridRecommender/pkg/logger"
	"hybridRecommender/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	CatalogReloader interface {
		Reload(ctx context.Context) (recommendation.ReloadStats, error)
	}

	RecommendationLogReader interface {
		ListRecent(ctx context.Context, subject string, limit int) ([]domain.RecommendationLog, error)
	}

	AdminHandler struct {
		reloader      CatalogReloader
		logs          RecommendationLogReader
		reloadTimeout time.Duration
	}
)

func NewAdminHandler(reloader CatalogReloader, logs RecommendationLogReader) *AdminHandler {
	return &AdminHandler{
		reloader:      reloader,
		logs:          logs,
		reloadTimeout: 5 * time.Minute,
	}
}

// POST /api/v1/admin/catalog/reload
func (h *AdminHandler) ReloadCatalog(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.reloadTimeout)
	defer cancel()

	stats, err := ReloadAndObserve(ctx, h.reloader)
	if err != nil {
		return c.JSON(statusFor(err), echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}

// GET /api/v1/admin/recommendation-logs?subject=42&limit=50
func (h *AdminHandler) ListRecommendationLogs(c echo.Context) error {
	if h.logs == nil {
		return c.JSON(http.StatusNotImplemented, echo.Map{
			"error": "recommendation log is not configured",
		})
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "invalid limit",
			})
		}
		limit = n
	}

	logs, err := h.logs.ListRecent(c.Request().Context(), c.QueryParam("subject"), limit)
	if err != nil {
		logger.Error("Failed to list recommendation logs", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(logs))
}

// ReloadAndObserve runs one reload and records its latency and result.
func ReloadAndObserve(ctx context.Context, reloader CatalogReloader) (recommendation.ReloadStats, error) {
	start := time.Now()
	stats, err := reloader.Reload(ctx)
	metrics.ObserveReload(time.Since(start).Seconds(), stats.Products, err)
	return stats, err
}
