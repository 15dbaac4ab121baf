package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/b3view/internal/logger"
)

// RequestLogger logs one structured line per request with method, path,
// status, latency and the request and session ids when present.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.Session(ttl), middleware.RequestLogger())
//
// Example log output:
//
//	{"level":"info","request_id":"...","session_id":"...","method":"POST","path":"/api/v1/assets/PETR4","status":200,"latency_ms":15,"message":"http_request"}
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		rid, _ := c.Get(RequestIDKey)
		sid, _ := c.Get(SessionKey)

		ev := logger.L().Info()
		if status >= http.StatusInternalServerError {
			ev = logger.L().Warn()
		}
		ev.Str("request_id", toString(rid)).
			Str("session_id", toString(sid)).
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Int64("latency_ms", latency.Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// client is one rate-limited caller.
type client struct {
	lastSeen time.Time
	count    int
}

// In-memory limiter state, shared by every RateLimiter handler.
var (
	clients         = make(map[string]*client)
	window          = time.Minute
	limit           = 120
	rateLimiterLock sync.Mutex
)

// SetRateLimit changes the number of requests allowed per window and resets
// the counters.
func SetRateLimit(n int, w time.Duration) {
	rateLimiterLock.Lock()
	defer rateLimiterLock.Unlock()
	limit = n
	window = w
	clients = make(map[string]*client)
}

// RateLimiter allows up to limit requests per window for each client IP and
// answers 429 beyond that. limit <= 0 disables it.
//
// Response when limit exceeded:
//
//	HTTP/1.1 429 Too Many Requests
//	{"message": "rate limit exceeded", "timestamp": "..."}
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		now := time.Now()

		rateLimiterLock.Lock()
		if limit <= 0 {
			rateLimiterLock.Unlock()
			c.Next()
			return
		}
		cl, ok := clients[key]
		if !ok || now.Sub(cl.lastSeen) > window {
			cl = &client{lastSeen: now, count: 1}
			clients[key] = cl
		} else {
			cl.count++
			cl.lastSeen = now
		}
		exceeded := cl.count > limit
		if len(clients) > 4096 {
			pruneClients(now)
		}
		rateLimiterLock.Unlock()

		if exceeded {
			AbortWithError(c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}

		c.Next()
	}
}

// pruneClients drops callers idle for a full window. Caller holds rateLimiterLock.
func pruneClients(now time.Time) {
	for k, cl := range clients {
		if now.Sub(cl.lastSeen) > window {
			delete(clients, k)
		}
	}
}
