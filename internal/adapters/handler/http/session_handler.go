package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/domain"
	"github.com/comitanigiacomo/kanso-stats-gateway/internal/core/services"
)

// Warmer receives the user id of a fresh login so a first cycle can run in
// the background.
type Warmer interface {
	Enqueue(userID string) bool
}

type AccessIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

type SessionHandler struct {
	sessions *services.SessionService
	tokens   AccessIssuer
	warmer   Warmer
}

func NewSessionHandler(sessions *services.SessionService, tokens AccessIssuer, warmer Warmer) *SessionHandler {
	return &SessionHandler{sessions: sessions, tokens: tokens, warmer: warmer}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email,omitempty"`
	Name        string    `json:"name,omitempty"`
}

// Login godoc
// @Summary      Log in upstream
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "credentials"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /session [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if session.UserID == "" {
		respondError(c, domain.NewAPIError(domain.APIErrorDecoding, "login response does not identify a user", nil))
		return
	}

	accessToken, expiresAt, err := h.tokens.Issue(session.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue access token"})
		return
	}

	if h.warmer != nil {
		h.warmer.Enqueue(session.UserID)
	}

	c.JSON(http.StatusCreated, sessionResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		UserID:      session.UserID,
		Email:       session.Email,
		Name:        session.Name,
	})
}

// Logout godoc
// @Summary      Drop the stored upstream token
// @Tags         session
// @Security     BearerAuth
// @Success      204
// @Failure      401   {object}  map[string]string
// @Router       /session [delete]
func (h *SessionHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/session", h.Login)
}

func (h *SessionHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.DELETE("/session", h.Logout)
}
