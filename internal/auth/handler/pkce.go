package handler

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/gin-gonic/gin"
)

// generatePKCE creates a per-attempt verifier/challenge pair (S256). Only
// the derived challenge leaves the broker; the verifier rides in a flow
// cookie until the callback needs it.
func generatePKCE(c *gin.Context) (verifier string, challenge string) {
	verifier = randomURLSafe()

	hash := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(hash[:])

	setFlowCookie(c, pkceCookieName, verifier)
	return verifier, challenge
}

func getPKCEVerifier(c *gin.Context) string {
	cookie, err := c.Request.Cookie(pkceCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
