package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const ReviewerKey = "reviewer"

// IdentifyReviewer is a stubbed identity middleware that extracts the
// reviewer handle from the X-Reviewer header
func IdentifyReviewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewer := c.GetHeader("X-Reviewer")
		if reviewer != "" {
			c.Set(ReviewerKey, reviewer)
		}
		c.Next()
	}
}

// GetReviewer retrieves the reviewer handle from the context
func GetReviewer(c *gin.Context) (string, bool) {
	reviewer, exists := c.Get(ReviewerKey)
	if !exists {
		return "", false
	}
	return reviewer.(string), true
}

// RequireReviewer ensures a reviewer identity is present. Discrepancy state
// transitions are audit-relevant, so an anonymous approve/reject/dismiss is
// refused.
func RequireReviewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetReviewer(c); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "reviewer identity required (X-Reviewer header)"})
			c.Abort()
			return
		}
		c.Next()
	}
}
