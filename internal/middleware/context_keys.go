package middleware

import (
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// memberIDKey is the key used to store the authenticated member's ID in the Gin context.
const memberIDKey = contextKey("memberID")

// GetMemberIDFromContext retrieves the authenticated member ID from the Gin context.
// It returns the member ID and a boolean indicating if it was found.
func GetMemberIDFromContext(c *gin.Context) (string, bool) {
	if v, exists := c.Get(string(memberIDKey)); exists {
		if memberID, ok := v.(string); ok {
			return memberID, true
		}
		return "", false
	}
	// check in the request context as well
	if s, ok := domain.SessionFromContext(c.Request.Context()); ok {
		return s.MemberID, true
	}
	return "", false
}
