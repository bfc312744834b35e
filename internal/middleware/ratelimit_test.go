package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// limitedRouter serves 200 on every method of /test behind limiter
func limitedRouter(limiter gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limiter)
	router.Any("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func hit(router *gin.Engine, method, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/test", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// countAllowed sends n requests from one client and reports how many passed
func countAllowed(router *gin.Engine, method string, n int, remoteAddr string) int {
	allowed := 0
	for i := 0; i < n; i++ {
		if hit(router, method, remoteAddr).Code == http.StatusOK {
			allowed++
		}
	}
	return allowed
}

func TestNewRateLimitConfigFromEnv(t *testing.T) {
	tests := []struct {
		name            string
		enabled, perMin string
		wantEnabled     bool
		wantPerMin      int64
	}{
		{"defaults", "", "", true, 120},
		{"overrides", "false", "100", false, 100},
		{"unparseable values", "maybe", "lots", true, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RATE_LIMIT_ENABLED", tt.enabled)
			t.Setenv("RATE_LIMIT_REQUESTS_PER_MIN", tt.perMin)

			config := NewRateLimitConfigFromEnv()

			assert.Equal(t, tt.wantEnabled, config.Enabled)
			assert.Equal(t, tt.wantPerMin, config.RequestsPerMin)
		})
	}
}

func TestRateLimitersDisabled(t *testing.T) {
	setupTest()
	disabled := &RateLimitConfig{Enabled: false, RequestsPerMin: 1}

	for name, limiter := range map[string]gin.HandlerFunc{
		"global": GlobalRateLimiter(disabled),
		"read":   ReadRateLimiter(disabled),
		"write":  WriteRateLimiter(disabled),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 50, countAllowed(limitedRouter(limiter), http.MethodPut, 50, "10.0.1.1:1000"))
		})
	}
}

func TestGlobalRateLimiter(t *testing.T) {
	setupTest()

	t.Run("caps requests per client", func(t *testing.T) {
		router := limitedRouter(GlobalRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerMin: 5}))

		assert.Equal(t, 5, countAllowed(router, http.MethodGet, 10, "192.168.1.1:12345"))
	})

	t.Run("limited response body", func(t *testing.T) {
		router := limitedRouter(GlobalRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerMin: 1}))

		require.Equal(t, http.StatusOK, hit(router, http.MethodGet, "192.168.1.2:12345").Code)
		w := hit(router, http.MethodGet, "192.168.1.2:12345")

		require.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.JSONEq(t, `{
			"code": "RATE_LIMIT_EXCEEDED",
			"message": "Too many requests. Please try again later.",
			"retryAfter": 60,
			"limit": 1
		}`, w.Body.String())
	})
}

func TestReadRateLimiter(t *testing.T) {
	setupTest()
	router := limitedRouter(ReadRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerMin: 2}))

	assert.Equal(t, 4, countAllowed(router, http.MethodGet, 8, "10.0.0.1:1000"))
}

func TestWriteRateLimiter(t *testing.T) {
	setupTest()

	tests := []struct {
		name    string
		perMin  int64
		sent    int
		allowed int
	}{
		{"half the base rate", 10, 10, 5},
		{"never below one", 1, 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := limitedRouter(WriteRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerMin: tt.perMin}))
			assert.Equal(t, tt.allowed, countAllowed(router, http.MethodPost, tt.sent, "10.0.0.2:1000"))
		})
	}

	t.Run("clients are tracked separately", func(t *testing.T) {
		router := limitedRouter(WriteRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerMin: 2}))

		assert.Equal(t, 1, countAllowed(router, http.MethodDelete, 2, "10.0.0.8:1000"))
		assert.Equal(t, 1, countAllowed(router, http.MethodDelete, 2, "10.0.0.9:1000"))
	})
}
