package handler

import (
	"net/http"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/service"
	"github.com/IDON3O/TeamLobby-sub000/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Alias    string `json:"alias" binding:"required" example:"testuser"`
	Email    string `json:"email" binding:"omitempty,email" example:"test@example.com"`
	Password string `json:"password" binding:"required,min=8" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"testuser"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// GuestInput defines the structure for guest session creation.
type GuestInput struct {
	Alias string `json:"alias" binding:"required" example:"PartyGoer"`
}

// AuthResponse carries the issued token plus the identity it represents.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// endregion

type AuthHandler struct {
	users *service.UserService
}

func NewAuthHandler(users *service.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a registry entry and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Alias or email already exists"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), input.Alias, input.Email, input.Password)
	if err != nil {
		serviceError(c, err)
		return
	}

	token, err := jwt.GenerateToken(user.ID, user.Alias, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	user.PasswordHash = ""
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login godoc
// @Summary      Log in a user
// @Description  Authenticates with alias/email and password, returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Login(c.Request.Context(), input.Login, input.Password)
	if err != nil {
		serviceError(c, err)
		return
	}

	token, err := jwt.GenerateToken(user.ID, user.Alias, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	user.PasswordHash = ""
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// Guest godoc
// @Summary      Create a guest session
// @Description  Synthesizes a local guest identity and returns a token. Guests participate in rooms but leave no durable account trace.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body GuestInput true "Guest Info"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /auth/guest [post]
func (h *AuthHandler) Guest(c *gin.Context) {
	var input GuestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.NewGuestUser(input.Alias)
	token, err := jwt.GenerateToken(user.ID, user.Alias, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Me godoc
// @Summary      Get the authenticated user's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	user.PasswordHash = ""
	c.JSON(http.StatusOK, user)
}

// ProfileInput defines the editable profile fields.
type ProfileInput struct {
	Nickname           *string   `json:"nickname"`
	AvatarURL          *string   `json:"avatar_url"`
	Platforms          *[]string `json:"platforms"`
	AllowGlobalLibrary *bool     `json:"allow_global_library"`
}

// UpdateMe godoc
// @Summary      Update the authenticated user's profile
// @Description  Updates nickname, avatar, platforms, or the global-library opt-in. Guests have no stored profile.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ProfileInput true "Profile fields"
// @Success      200  {object}  map[string]string "{"message": "Profile updated"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Guests have no stored profile"
// @Router       /users/me [put]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	if c.GetBool("isGuest") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Guests have no stored profile"})
		return
	}

	var input ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := make(map[string]any)
	if input.Nickname != nil {
		patch["nickname"] = *input.Nickname
	}
	if input.AvatarURL != nil {
		patch["avatarUrl"] = *input.AvatarURL
	}
	if input.Platforms != nil {
		patch["platforms"] = *input.Platforms
	}
	if input.AllowGlobalLibrary != nil {
		patch["allowGlobalLibrary"] = *input.AllowGlobalLibrary
	}

	if err := h.users.UpdateProfile(c.Request.Context(), c.GetString("userID"), patch); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}
