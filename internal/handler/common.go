package handler

import (
	"errors"
	"net/http"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// currentUser resolves the authenticated identity. Registered users are
// looked up fresh in the registry so moderation flags are current; guests
// are reconstructed from token claims since they have no registry entry.
func currentUser(c *gin.Context, users *service.UserService) (models.User, bool) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return models.User{}, false
	}
	if c.GetBool("isGuest") {
		return models.User{
			ID:      userID,
			Alias:   c.GetString("userAlias"),
			IsGuest: true,
		}, true
	}

	user, err := users.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Authenticated user not found"})
		return models.User{}, false
	}
	return user, true
}

// serviceError maps service sentinel errors onto HTTP statuses.
func serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
	case errors.Is(err, service.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": models.JoinMessageRoomNotFound})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Already exists"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, service.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
