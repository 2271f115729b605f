package infrastructure

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pooja-supplies/internal/notifier/application"
	"pooja-supplies/pkg/auth"
	"pooja-supplies/pkg/errors"
	"pooja-supplies/pkg/middleware"
)

// HTTPHandler handles device registration
type HTTPHandler struct {
	useCase *application.NotifierUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.NotifierUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers push token routes on an authenticated group
func (h *HTTPHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/push-tokens", h.RegisterToken)
	api.DELETE("/push-tokens", h.RemoveToken)
}

// PushTokenRequest is the request body for push token routes
type PushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// RegisterToken handles POST /push-tokens. Admin devices are registered
// for admin notifications.
func (h *HTTPHandler) RegisterToken(c *gin.Context) {
	var req PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}
	principal, _ := auth.PrincipalFrom(c)

	token, err := h.useCase.RegisterToken(c.Request.Context(), application.RegisterTokenInput{
		UserID: principal.UserID,
		Admin:  principal.Admin,
		Token:  req.Token,
	})
	if err != nil {
		c.Error(err)
		return
	}
	middleware.Respond(c, http.StatusCreated, gin.H{"token": token.Token, "admin": token.Admin})
}

// RemoveToken handles DELETE /push-tokens
func (h *HTTPHandler) RemoveToken(c *gin.Context) {
	var req PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}
	principal, _ := auth.PrincipalFrom(c)

	if err := h.useCase.RemoveToken(c.Request.Context(), principal.UserID, req.Token); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
