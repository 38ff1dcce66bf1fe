package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"clinical-records-backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newCORSRouter() *gin.Engine {
	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return r
}

func corsRequest(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/health", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := newCORSRouter()

	w := corsRequest(r, http.MethodGet, "http://localhost:3000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	r := newCORSRouter()

	w := corsRequest(r, http.MethodGet, "http://evil.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSVariesOnOrigin(t *testing.T) {
	r := newCORSRouter()

	// Caches must key on Origin whether or not the origin was allowed.
	for _, origin := range []string{"http://localhost:3000", "http://evil.example", ""} {
		w := corsRequest(r, http.MethodGet, origin)
		assert.Contains(t, w.Header().Values("Vary"), "Origin", "origin %q", origin)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	r := newCORSRouter()

	w := corsRequest(r, http.MethodOptions, "http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, w.Code)
}
