package middleware

import (
	"net/http"
	"time"

	"futuristic-todo-api/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool
	RequestsPerMin int64
}

// NewRateLimitConfigFromEnv creates rate limit config from environment variables
func NewRateLimitConfigFromEnv() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:        getEnvBool("RATE_LIMIT_ENABLED", true),
		RequestsPerMin: int64(getEnvInt("RATE_LIMIT_REQUESTS_PER_MIN", 120)),
	}
}

// GlobalRateLimiter limits every request per client IP
func GlobalRateLimiter(config *RateLimitConfig) gin.HandlerFunc {
	if !config.Enabled {
		logging.Logger.Info("Rate limiting is disabled")
		return passThrough
	}

	logging.Logger.Infof("Rate limiting enabled: %d requests per minute", config.RequestsPerMin)
	return newRateLimiter("global", config.RequestsPerMin, "Too many requests. Please try again later.")
}

// ReadRateLimiter allows twice the global rate for GET routes
func ReadRateLimiter(config *RateLimitConfig) gin.HandlerFunc {
	if !config.Enabled {
		return passThrough
	}
	return newRateLimiter("read", config.RequestsPerMin*2, "Too many read requests. Please try again later.")
}

// WriteRateLimiter allows half the global rate for routes that change todos.
func WriteRateLimiter(config *RateLimitConfig) gin.HandlerFunc {
	if !config.Enabled {
		return passThrough
	}
	limit := config.RequestsPerMin / 2
	if limit < 1 {
		limit = 1
	}
	return newRateLimiter("write", limit, "Too many write requests. Please try again later.")
}

func passThrough(c *gin.Context) {
	c.Next()
}

// newRateLimiter builds an IP-keyed limiter backed by its own in-memory store
func newRateLimiter(limitType string, perMinute int64, message string) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: time.Minute,
		Limit:  perMinute,
	}
	instance := limiter.New(memory.NewStore(), rate)

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		logging.Logger.WithFields(logrus.Fields{
			"client_ip":     c.ClientIP(),
			"path":          c.Request.URL.Path,
			"method":        c.Request.Method,
			"request_id":    GetRequestID(c),
			"rate_limited":  true,
			"limit_type":    limitType,
			"limit_per_min": rate.Limit,
		}).Warn("Rate limit exceeded")

		c.JSON(http.StatusTooManyRequests, gin.H{
			"code":       "RATE_LIMIT_EXCEEDED",
			"message":    message,
			"retryAfter": int(rate.Period.Seconds()),
			"limit":      rate.Limit,
		})
		c.Abort()
	}))
}
