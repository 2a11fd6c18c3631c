package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"repurpose-backend/internal/models"
)

// RateLimit allows Limit requests per Window for each key.
type RateLimit struct {
	Limit   int
	Window  time.Duration
	Message string
	// PerUser keys on the authenticated user when present, else the client IP.
	PerUser bool
}

var (
	VideoCreationLimit = RateLimit{
		Limit:   10,
		Window:  time.Hour,
		Message: "Too many video requests. Please try again later.",
		PerUser: true,
	}
	ContentGenerationLimit = RateLimit{
		Limit:   20,
		Window:  time.Hour,
		Message: "Too many content generation requests. Please try again later.",
		PerUser: true,
	}
	GeneralLimit = RateLimit{
		Limit:   100,
		Window:  15 * time.Minute,
		Message: "Too many requests. Please try again later.",
	}
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per key. Idle buckets are dropped once
// they have had a full window to refill.
type RateLimiter struct {
	cfg      RateLimit
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewRateLimiter(cfg RateLimit) *RateLimiter {
	return &RateLimiter{
		cfg:      cfg,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		l.prune(now)
		every := l.cfg.Window / time.Duration(l.cfg.Limit)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), l.cfg.Limit)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *RateLimiter) prune(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.cfg.Window {
			delete(l.visitors, key)
		}
	}
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if l.cfg.PerUser {
			if userID := c.GetString(UserIDKey); userID != "" {
				key = userID
			}
		}

		if !l.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Success: false,
				Error:   l.cfg.Message,
			})
			return
		}
		c.Next()
	}
}
