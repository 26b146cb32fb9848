package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Config configures request rate limiting.
type Config struct {
	Enabled       bool
	RequestsPerIP int                       // budget per window
	WindowSize    time.Duration             // averaging window for the refill rate
	BurstSize     int                       // bucket capacity, defaults to RequestsPerIP
	KeyFunc       func(*gin.Context) string // custom key extractor, defaults to client IP
}

// Middleware enforces the limiter per extracted key. Disabled configs
// produce a pass-through handler.
func Middleware(config Config, limiter Limiter) gin.HandlerFunc {
	if !config.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string {
			return c.ClientIP()
		}
	}

	return func(c *gin.Context) {
		key := keyFunc(c)

		if !limiter.Allow(key) {
			info := limiter.GetInfo(key)

			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetAt.Unix()))
			c.Header("Retry-After", fmt.Sprintf("%d", int(time.Until(info.ResetAt).Seconds())))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":        "rate_limit_exceeded",
					"message":     "Too many requests. Please try again later.",
					"retry_after": int(time.Until(info.ResetAt).Seconds()),
				},
			})
			c.Abort()
			return
		}

		info := limiter.GetInfo(key)
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetAt.Unix()))

		c.Next()
	}
}

// PerEndpointMiddleware keys the limiter by client IP and route, so a
// chatty client cannot starve one endpoint for everyone else it uses.
func PerEndpointMiddleware(config Config, limiter Limiter) gin.HandlerFunc {
	config.KeyFunc = func(c *gin.Context) string {
		return fmt.Sprintf("%s:%s", c.ClientIP(), c.FullPath())
	}
	return Middleware(config, limiter)
}

// NewLimiterFromConfig builds the keyed limiter the middleware expects.
func NewLimiterFromConfig(config Config) Limiter {
	window := config.WindowSize
	if window <= 0 {
		window = time.Minute
	}

	perSecond := float64(config.RequestsPerIP) / window.Seconds()
	burst := config.BurstSize
	if burst == 0 {
		burst = config.RequestsPerIP
	}

	// idle keys live for two windows before eviction
	return NewKeyedLimiter(perSecond, burst, 2*window)
}
