package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/orderdesk/internal/principal"
	"go.uber.org/zap"
)

const contextPrincipalKey = "principal"

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// AuthRequired resolves the session cookie to a principal and stores
// it on both the gin context and the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		p, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		c.Set(contextPrincipalKey, p)
		c.Request = c.Request.WithContext(principal.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// RequireRole gates a route group on the authenticated principal's
// role. Coordinator entry points re-check on their own; this keeps
// obviously wrong requests from reaching them at all.
func (s *Server) RequireRole(role principal.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := currentPrincipal(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if p.Role != role {
			AbortWithError(c, principal.ErrAccessDenied)
			return
		}
		c.Next()
	}
}

func currentPrincipal(c *gin.Context) (principal.Principal, bool) {
	v, ok := c.Get(contextPrincipalKey)
	if !ok {
		return principal.Principal{}, false
	}
	p, ok := v.(principal.Principal)
	return p, ok
}

// mustPrincipal aborts with 401 when the middleware did not run.
func mustPrincipal(c *gin.Context) (principal.Principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
	}
	return p, ok
}
