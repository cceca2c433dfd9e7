package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	stateCookieName = "__oauth_state"
	pkceCookieName  = "__oauth_pkce"

	// Flow cookies only need to survive the round trip to the provider.
	flowCookieTTL = 5 * time.Minute
)

// setFlowCookie stores a short-lived value tied to one authorization
// attempt, retrievable when the callback arrives and nowhere else.
func setFlowCookie(c *gin.Context, name, value string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(flowCookieTTL.Seconds()),
	})
}

func randomURLSafe() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// setState generates the state correlation value for a login attempt.
func setState(c *gin.Context) string {
	state := randomURLSafe()
	setFlowCookie(c, stateCookieName, state)
	return state
}

// validateState compares the callback's state parameter to the value set
// when the attempt started.
func validateState(c *gin.Context) bool {
	stateQuery := c.Query("state")
	if stateQuery == "" {
		return false
	}

	cookie, err := c.Request.Cookie(stateCookieName)
	if err != nil {
		return false
	}
	return cookie.Value == stateQuery
}
