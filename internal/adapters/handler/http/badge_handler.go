package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/services"
)

type BadgeHandler struct {
	sync *services.SyncService
}

func NewBadgeHandler(sync *services.SyncService) *BadgeHandler {
	return &BadgeHandler{sync: sync}
}

type badgesResponse struct {
	Unlocked []domain.Badge `json:"unlocked"`
	Total    int            `json:"total"`
}

func (h *BadgeHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/badges", h.ListUnlocked)
}

// RegisterPublicRoutes exposes routes that need no session.
func (h *BadgeHandler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/badges/catalog", h.ListCatalog)
}

// ListUnlocked godoc
// @Summary      Badges the user holds
// @Tags         badges
// @Produce      json
// @Success      200  {object}  badgesResponse
// @Failure      401  {object}  map[string]string
// @Security     BearerAuth
// @Router       /badges [get]
func (h *BadgeHandler) ListUnlocked(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)

	badges, err := h.sync.UnlockedBadgesUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, badgesResponse{
		Unlocked: badges,
		Total:    h.sync.Catalog().Len(),
	})
}

// ListCatalog godoc
// @Summary      Every badge that can be earned
// @Tags         badges
// @Produce      json
// @Success      200  {array}  domain.Badge
// @Router       /badges/catalog [get]
func (h *BadgeHandler) ListCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.sync.Catalog().All())
}
