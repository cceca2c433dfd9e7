package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adhocteam/va-mobile-sampleweb/internal/session"
)

const sessionContextKey = "authSession"

// SessionFromContext returns the session loaded by LoadSession or
// RequireLogin, if any.
func SessionFromContext(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}

// LoadSession attaches the request's session to the context when a valid
// session cookie is present. It never rejects the request.
func LoadSession(store session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Request.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			c.Next()
			return
		}

		sess, err := store.Get(c.Request.Context(), cookie.Value)
		if err != nil || sess == nil {
			c.Next()
			return
		}

		if time.Now().After(sess.ExpiresAt) {
			_ = store.Delete(c.Request.Context(), sess.SessionID)
			c.Next()
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// RequireLogin redirects to the login entry point unless the session has a
// bound user. Run after LoadSession.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFromContext(c)
		if !ok || sess.User == nil {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
