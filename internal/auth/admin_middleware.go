package auth

import (
	"net/http"

	"github.com/IDON3O/TeamLobby-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware checks the user registry for admin status.
// It must be used AFTER the standard AuthMiddleware. Guests are never
// admins: they have no registry entry.
func AdminMiddleware(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			// This should not happen if AuthMiddleware is used before it
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		user, err := users.Get(c.Request.Context(), userID.(string))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Authenticated user not found"})
			return
		}

		if !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}

		c.Next()
	}
}
