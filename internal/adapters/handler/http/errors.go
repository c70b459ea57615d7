package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/services"
)

var (
	upstreamUnauthorized = &domain.APIError{Kind: domain.APIErrorServer, StatusCode: http.StatusUnauthorized}
	upstreamForbidden    = &domain.APIError{Kind: domain.APIErrorServer, StatusCode: http.StatusForbidden}
)

// respondError maps service and upstream errors onto gateway status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmailRequired),
		errors.Is(err, services.ErrPasswordRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAuthTokenMissing):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
	case errors.Is(err, upstreamUnauthorized), errors.Is(err, upstreamForbidden):
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.AsAPIError(err).Description})
	case errors.Is(err, domain.ErrUserIDEmpty):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session does not identify a user"})
	default:
		var apiErr *domain.APIError
		if errors.As(err, &apiErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Error(), "kind": apiErr.Kind.String()})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
