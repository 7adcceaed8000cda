package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/config"
)

// clientLimiter stores the rate limiters for a specific client.
type clientLimiter struct {
	general  *rate.Limiter
	ai       *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware manages per-client rate limiting. Routes that call
// the AI or the mail servers draw from a separate, smaller bucket.
type RateLimiterMiddleware struct {
	clients    map[string]*clientLimiter
	mu         sync.Mutex
	bucketSize int
	refillRate int
	isCostly   func(c *gin.Context) bool
	logger     *zap.Logger
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware.
func NewRateLimiterMiddleware(cfg *config.Config, logger *zap.Logger) *RateLimiterMiddleware {
	rm := &RateLimiterMiddleware{
		clients:    make(map[string]*clientLimiter),
		bucketSize: cfg.RateLimitBucketSize,
		refillRate: cfg.RateLimitRefillRate,
		isCostly:   isCostlyRoute,
		logger:     logger,
	}
	// Start a background goroutine to clean up old client entries
	go rm.cleanupClients()
	return rm
}

// isCostlyRoute reports whether the matched route triggers AI or mail work.
func isCostlyRoute(c *gin.Context) bool {
	if c.Request.Method == http.MethodGet {
		return strings.HasSuffix(c.FullPath(), "/compare")
	}
	path := c.FullPath()
	return strings.HasSuffix(path, "/rfps/create") ||
		strings.HasSuffix(path, "/send") ||
		strings.HasSuffix(path, "/check-emails")
}

// getClientLimiter retrieves or creates the rate limiters for a given client identifier.
func (rm *RateLimiterMiddleware) getClientLimiter(identifier string) *clientLimiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	limiter, exists := rm.clients[identifier]
	if !exists {
		aiBurst := rm.bucketSize / 2
		if aiBurst < 1 {
			aiBurst = 1
		}
		limiter = &clientLimiter{
			general: rate.NewLimiter(rate.Limit(rm.refillRate), rm.bucketSize),
			ai:      rate.NewLimiter(rate.Limit(float64(rm.refillRate)/4), aiBurst),
		}
		rm.clients[identifier] = limiter
		rm.logger.Debug("created rate limiter entry", zap.String("client", identifier))
	}
	limiter.lastSeen = time.Now()
	return limiter
}

// cleanupClients periodically removes old client entries from the map.
func (rm *RateLimiterMiddleware) cleanupClients() {
	for {
		time.Sleep(10 * time.Minute)
		rm.mu.Lock()
		count := 0
		for id, client := range rm.clients {
			if time.Since(client.lastSeen) > 30*time.Minute {
				delete(rm.clients, id)
				count++
			}
		}
		rm.mu.Unlock()
		if count > 0 {
			rm.logger.Debug("rate limiter cleanup", zap.Int("removed", count))
		}
	}
}

// Limit creates the Gin middleware handler. A non-positive bucket size
// disables limiting.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rm.bucketSize <= 0 {
			c.Next()
			return
		}

		clientKey := c.ClientIP()
		limiter := rm.getClientLimiter(clientKey)

		allowed := limiter.general.Allow()
		if allowed && rm.isCostly(c) {
			allowed = limiter.ai.Allow()
		}
		if !allowed {
			rm.logger.Warn("rate limit exceeded",
				zap.String("client", clientKey),
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": "Too many requests, please try again later"})
			return
		}

		c.Next()
	}
}
