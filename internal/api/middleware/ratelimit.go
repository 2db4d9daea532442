package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/socialfi-backend/pkg/response"
)

// visitorLimiter 按客户端 IP 维护令牌桶；闲置条目定期回收
type visitorLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit 每分钟 perMinute 次，突发额度同值
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		perMinute = 100
	}
	vl := &visitorLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}
	go vl.cleanup()

	return func(c *gin.Context) {
		if !vl.allow(c.ClientIP()) {
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}

func (vl *visitorLimiter) allow(key string) bool {
	vl.mu.Lock()
	v, ok := vl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(vl.limit, vl.burst)}
		vl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	vl.mu.Unlock()
	return v.limiter.Allow()
}

func (vl *visitorLimiter) cleanup() {
	for range time.Tick(3 * time.Minute) {
		vl.mu.Lock()
		for key, v := range vl.visitors {
			if time.Since(v.lastSeen) > 5*time.Minute {
				delete(vl.visitors, key)
			}
		}
		vl.mu.Unlock()
	}
}
