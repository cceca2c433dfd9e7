package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adhocteam/va-mobile-sampleweb/internal/logger"
	"github.com/adhocteam/va-mobile-sampleweb/internal/middleware"
)

// The downstream mobile API endpoints are opaque passthroughs: the
// session's bearer token goes out, the JSON comes back untouched.

func (h *Handler) userProfile(c *gin.Context) {
	h.passthrough(c, func(token string) ([]byte, error) {
		return h.api.UserProfile(c.Request.Context(), token)
	})
}

func (h *Handler) messagingFolders(c *gin.Context) {
	h.passthrough(c, func(token string) ([]byte, error) {
		return h.api.MessagingFolders(c.Request.Context(), token)
	})
}

func (h *Handler) folderMessages(c *gin.Context) {
	folderID := c.Param("folderId")
	h.passthrough(c, func(token string) ([]byte, error) {
		return h.api.FolderMessages(c.Request.Context(), folderID, token)
	})
}

func (h *Handler) passthrough(c *gin.Context, call func(token string) ([]byte, error)) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok || sess.User == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	body, err := call(sess.User.AccessToken)
	if err != nil {
		logger.Error("mobile api call failed", zap.Error(err))
		errorView(c, http.StatusBadGateway, "upstream request failed")
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
