package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/services"
)

type OverviewHandler struct {
	sync *services.SyncService
}

func NewOverviewHandler(sync *services.SyncService) *OverviewHandler {
	return &OverviewHandler{sync: sync}
}

func (h *OverviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/overview", h.GetOverview)
	r.GET("/snapshot/latest", h.GetLatestSnapshot)
}

// GetOverview godoc
// @Summary      Run an aggregation cycle and return the overview
// @Tags         overview
// @Produce      json
// @Success      200  {object}  services.OverviewView
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Security     BearerAuth
// @Router       /overview [get]
func (h *OverviewHandler) GetOverview(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}

	snap := h.sync.RefreshUser(c.Request.Context(), userID)
	if snap.Stale {
		// A newer cycle finished first; serve what it published.
		if latest := h.sync.LatestUser(userID); latest != nil {
			snap = latest
		}
	}

	if snap.Failed() {
		c.JSON(http.StatusBadGateway, gin.H{
			"status":  services.StatusError,
			"error":   snap.Err.Error(),
			"warning": snap.Warning,
		})
		return
	}

	c.JSON(http.StatusOK, services.Project(snap))
}

// GetLatestSnapshot godoc
// @Summary      Newest published snapshot without refreshing
// @Tags         overview
// @Produce      json
// @Success      200  {object}  domain.Snapshot
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /snapshot/latest [get]
func (h *OverviewHandler) GetLatestSnapshot(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}

	snap := h.sync.LatestUser(userID)
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}
