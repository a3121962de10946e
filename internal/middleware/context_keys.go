package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// userIDKey is the key used to store the requesting user's ID in the Gin context.
const userIDKey = contextKey("userID")

// userIDHeader carries the caller's identity. Authentication itself happens
// upstream of this service; the ledger only records the owning user.
const userIDHeader = "X-User-ID"

// UserIdentity extracts the requesting user's ID from the request header and
// stores it in the context. Requests without an identity are rejected since
// every ledger write records its owning user.
func UserIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(userIDHeader)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing " + userIDHeader + " header"})
			return
		}
		c.Set(string(userIDKey), userID)
		c.Next()
	}
}

// GetUserIDFromContext retrieves the requesting user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get(string(userIDKey))
	if !exists {
		return "", false
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", false
	}

	return userID, true
}
