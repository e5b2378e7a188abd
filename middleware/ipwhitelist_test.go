package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newWhitelistedRouter(ips []string) *gin.Engine {
	r := gin.New()
	r.Use(IPWhitelist(ips))
	r.GET("/admin", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestIPWhitelist_EmptyAllowsAll(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newWhitelistedRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.RemoteAddr = "203.0.113.7:4444"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPWhitelist_AllowedIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newWhitelistedRouter([]string{"10.1.2.3", " 10.1.2.4 "})

	for _, ip := range []string{"10.1.2.3", "10.1.2.4"} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "ip %s", ip)
	}
}

func TestIPWhitelist_BlockedIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newWhitelistedRouter([]string{"10.1.2.3"})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.RemoteAddr = "192.0.2.9:5555"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
