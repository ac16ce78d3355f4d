package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// EventEnqueuer is the subset of the analytics client the middleware needs.
type EventEnqueuer interface {
	IsInitialized() bool
	Enqueue(distinctID string, event string, properties map[string]any)
}

// pathsToSkip contains route patterns that should not be tracked by PostHog
var pathsToSkip = map[string]bool{
	"/health":                true,
	"/api/exchange-rates":    true,
	"/api/exchange-rates/ws": true,
	"/api/quote":             true,
}

// PosthogMiddleware creates a Gin middleware handler that tracks API events with PostHog
func PosthogMiddleware(posthogClient EventEnqueuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		// set by the session middleware
		memberID, exists := GetMemberIDFromContext(c)
		if !exists {
			return
		}

		// "/api/desk/:deskID/amount" -> "api_desk_:deskID_amount"
		eventName := strings.TrimPrefix(c.FullPath(), "/")
		eventName = strings.ReplaceAll(eventName, "/", "_")
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if len(c.Params) > 0 {
			params := make(map[string]string)
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}

		posthogClient.Enqueue(memberID, eventName, props)
	}
}
