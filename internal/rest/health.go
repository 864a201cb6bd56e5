package rest

import (
	"net/http"
	"time"

	"hybridRecommender/business/hybrid"

	"github.com/labstack/echo/v4"
)

type SnapshotReader interface {
	Snapshot() *hybrid.Snapshot
}

type HealthHandler struct {
	snapshots SnapshotReader
	version   string
}

func NewHealthHandler(snapshots SnapshotReader, version string) *HealthHandler {
	return &HealthHandler{snapshots: snapshots, version: version}
}

// GET /healthz reports 503 until the first catalog snapshot is served.
func (h *HealthHandler) Healthz(c echo.Context) error {
	snap := h.snapshots.Snapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":  "starting",
			"version": h.version,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":       "ok",
		"version":      h.version,
		"snapshot":     snap.Version,
		"built_at":     snap.BuiltAt.UTC().Format(time.RFC3339),
		"products":     snap.Catalog.Len(),
		"users":        snap.Users.Len(),
		"interactions": snap.Interactions,
	})
}
