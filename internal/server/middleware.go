package server

import (
	"net/http"
	"strings"
	"sync"

	"word-imposter/internal/game"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const actorContextKey = "actor"

// requireActor resolves the acting identity from the Authorization bearer or
// the X-Guest-Token header and stores it on the request context. Requests
// with no resolvable actor are rejected up front.
func (s *Server) requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := ""
		if header := c.GetHeader("Authorization"); strings.HasPrefix(strings.ToLower(header), "bearer ") {
			bearer = strings.TrimSpace(header[len("bearer "):])
		}
		actor, err := s.auth.Resolve(c.Request.Context(), bearer, c.GetHeader("X-Guest-Token"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
			return
		}
		c.Set(actorContextKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) game.Actor {
	value, _ := c.Get(actorContextKey)
	actor, _ := value.(game.Actor)
	return actor
}

// rateLimit applies a per-client token bucket, keyed by scope and client IP.
func (s *Server) rateLimit(scope string, perSecond rate.Limit, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*rate.Limiter)

	return func(c *gin.Context) {
		key := scope + "|" + c.ClientIP()
		mu.Lock()
		limiter, ok := limiters[key]
		if !ok {
			limiter = rate.NewLimiter(perSecond, burst)
			limiters[key] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "Too many requests"})
			return
		}
		c.Next()
	}
}
