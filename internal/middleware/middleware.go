package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"ticket-marketplace/internal/auth"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/utils"
)

const identityKey = "identity"

func EnhancedLogger(log *logger.Logger) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		duration := param.Latency.String()
		status := fmt.Sprintf("%d", param.StatusCode)

		if param.StatusCode >= 500 {
			log.Error("API", fmt.Sprintf("%s %s - %s (%s) - ERROR: %s",
				param.Method, param.Path, status, duration, param.ErrorMessage))
		} else if param.StatusCode >= 400 {
			log.Warn("API", fmt.Sprintf("%s %s - %s (%s) - Client Error",
				param.Method, param.Path, status, duration))
		} else {
			log.LogAPI(param.Method, param.Path, status, duration)
		}

		log.Debug("REQUEST", fmt.Sprintf("IP: %s, UserAgent: %s",
			param.ClientIP, param.Request.UserAgent()))

		// Return empty string since we're handling logging ourselves
		return ""
	})
}

func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		if err, ok := recovered.(string); ok {
			log.Error("PANIC", fmt.Sprintf("Recovered from panic: %s", err))
			c.String(http.StatusInternalServerError, fmt.Sprintf("error: %s", err))
		} else {
			log.Error("PANIC", fmt.Sprintf("Recovered from panic: %v", recovered))
			c.String(http.StatusInternalServerError, "Internal server error")
		}
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// CORS restricts browser access to the configured client origin.
func CORS(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func RateLimit(log *logger.Logger) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(time.Second), 100) // 100 requests per second

	return func(c *gin.Context) {
		if !limiter.Allow() {
			log.LogSecurity("RATE_LIMIT", fmt.Sprintf("Rate limit exceeded for IP: %s", c.ClientIP()))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": "1s",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuth verifies the bearer token and injects the verified identity
// into the request context. Protected handlers run only after this succeeds.
func RequireAuth(verifier auth.TokenVerifier, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("Unauthorized Access!", ""))
			return
		}

		identity, err := verifier.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			log.LogSecurity("AUTH_FAILED", fmt.Sprintf("Token rejected for IP: %s", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse("Unauthorized Access!", err.Error()))
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// GetIdentity returns the verified identity stored by RequireAuth.
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}
