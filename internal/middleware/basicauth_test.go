package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func basicAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/token", RequireBasicAuth("api-user", "api-secret"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestBasicAuthAccepted(t *testing.T) {
	r := basicAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	req.SetBasicAuth("api-user", "api-secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestBasicAuthRejected(t *testing.T) {
	r := basicAuthRouter()

	cases := map[string]func(*http.Request){
		"no header":      func(r *http.Request) {},
		"wrong password": func(r *http.Request) { r.SetBasicAuth("api-user", "guess") },
		"wrong user":     func(r *http.Request) { r.SetBasicAuth("intruder", "api-secret") },
	}
	for name, prep := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/token", nil)
			prep(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Basic")
		})
	}
}
