package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hasanRafi2002/asgn-12-server/internal/config"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

// clientLimiter stores rate limiters for a specific client.
type clientLimiter struct {
	softLimiter *rate.Limiter
	hardLimiter *rate.Limiter
	lastSeen    time.Time
}

// RateLimiterMiddleware keeps a soft and a hard token bucket per client IP.
// Exceeding the soft bucket is logged and flagged with a response header;
// exceeding the hard bucket rejects the request.
type RateLimiterMiddleware struct {
	clients map[string]*clientLimiter
	mu      sync.Mutex
	cfg     *config.Config
	stop    chan struct{}
	once    sync.Once
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware.
func NewRateLimiterMiddleware(cfg *config.Config) *RateLimiterMiddleware {
	rm := &RateLimiterMiddleware{
		clients: make(map[string]*clientLimiter),
		cfg:     cfg,
		stop:    make(chan struct{}),
	}
	// Start a background goroutine to clean up old client entries
	go rm.cleanupClients(10*time.Minute, 30*time.Minute)
	return rm
}

// Stop ends the cleanup goroutine.
func (rm *RateLimiterMiddleware) Stop() {
	rm.once.Do(func() { close(rm.stop) })
}

// getClientLimiter retrieves or creates the rate limiters for a given client identifier.
func (rm *RateLimiterMiddleware) getClientLimiter(identifier string) *clientLimiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	limiter, exists := rm.clients[identifier]
	if !exists {
		limiter = &clientLimiter{
			softLimiter: rate.NewLimiter(rate.Limit(rm.cfg.RateLimitSoftRefillRate), rm.cfg.RateLimitSoftBucketSize),
			hardLimiter: rate.NewLimiter(rate.Limit(rm.cfg.RateLimitHardRefillRate), rm.cfg.RateLimitHardBucketSize),
		}
		rm.clients[identifier] = limiter
	}
	limiter.lastSeen = time.Now()
	return limiter
}

// cleanupClients periodically removes client entries idle for longer than maxIdle.
func (rm *RateLimiterMiddleware) cleanupClients(every, maxIdle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rm.stop:
			return
		case <-ticker.C:
		}
		rm.mu.Lock()
		count := 0
		for id, client := range rm.clients {
			if time.Since(client.lastSeen) > maxIdle {
				delete(rm.clients, id)
				count++
			}
		}
		rm.mu.Unlock()
		if count > 0 {
			utils.Logger().Debug("rate limiter cleanup", zap.Int("removed", count))
		}
	}
}

// Limit creates the Gin middleware handler.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := c.ClientIP()
		limiter := rm.getClientLimiter(clientKey)

		if !limiter.hardLimiter.Allow() {
			utils.Logger().Warn("hard rate limit exceeded", zap.String("client", clientKey), zap.String("path", c.FullPath()))
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Rate limit exceeded"})
			return
		}

		if !limiter.softLimiter.Allow() {
			utils.Logger().Info("soft rate limit exceeded", zap.String("client", clientKey), zap.String("path", c.FullPath()))
			c.Header("X-RateLimit-Warning", "soft limit exceeded")
		}

		c.Next()
	}
}
