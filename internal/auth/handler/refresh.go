package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
	"github.com/adhocteam/va-mobile-sampleweb/internal/logger"
	"github.com/adhocteam/va-mobile-sampleweb/internal/middleware"
)

// refresh is the interactive path: the session's own refresh token is
// exchanged and the session user updated in place.
func (h *Handler) refresh(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok || sess.User == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	if err := h.refresher.Interactive(c.Request.Context(), sess); err != nil {
		logger.Error("interactive refresh failed", zap.Error(err))
		errorView(c, refreshStatus(err), "token refresh failed")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// serverToServerToken is the credential-gated automated pickup path.
// Responses distinguish "needs human login" (404) from transient failure
// (500) so callers can react without parsing prose.
func (h *Handler) serverToServerToken(c *gin.Context) {
	providerKey := c.Param("provider")
	email := c.Param("email")

	accessToken, err := h.refresher.ServerToServer(c.Request.Context(), providerKey, email)
	if err != nil {
		if errors.Is(err, auth.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "manual login required"})
			return
		}
		logger.Error("server-to-server refresh failed",
			zap.String("provider", providerKey),
			zap.String("email", email),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token refresh failed"})
		return
	}

	// The refresh token is deliberately not echoed back.
	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

func refreshStatus(err error) int {
	if errors.Is(err, auth.ErrProviderUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
