package handler

import (
	"net/http"

	"github.com/IDON3O/TeamLobby-sub000/internal/bot"
	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type MessageInput struct {
	Content string `json:"content" binding:"required" example:"gg everyone"`
}

// endregion

type SessionHandler struct {
	sessions  *service.SessionService
	users     *service.UserService
	suggester *bot.Suggester
}

func NewSessionHandler(sessions *service.SessionService, users *service.UserService, suggester *bot.Suggester) *SessionHandler {
	return &SessionHandler{sessions: sessions, users: users, suggester: suggester}
}

// ToggleReady godoc
// @Summary      Toggle the caller's ready state
// @Description  Flips isReady on the caller's member entry; all other fields are untouched.
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Room code"
// @Success      200  {object}  map[string]string "{"message": "Ready state toggled"}"
// @Router       /rooms/{code}/ready [post]
func (h *SessionHandler) ToggleReady(c *gin.Context) {
	err := h.sessions.ToggleReady(c.Request.Context(), c.Param("code"), c.GetString("userID"))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ready state toggled"})
}

// SendMessage godoc
// @Summary      Send a chat message
// @Description  Appends to the room's chat history. Messages starting with /suggest also trigger the suggestion bot.
// @Tags         session
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path string       true "Room code"
// @Param        input body MessageInput true "Message"
// @Success      201  {object}  models.Message
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "User is muted"
// @Router       /rooms/{code}/messages [post]
func (h *SessionHandler) SendMessage(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if user.IsMuted {
		c.JSON(http.StatusForbidden, gin.H{"error": "User is muted"})
		return
	}

	var input MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := models.Message{
		UserID:   user.ID,
		UserName: user.DisplayName(),
		Content:  input.Content,
	}
	sent, err := h.sessions.SendChatMessage(c.Request.Context(), c.Param("code"), msg)
	if err != nil {
		serviceError(c, err)
		return
	}

	if h.suggester != nil {
		h.suggester.MaybeReply(c.Param("code"), sent)
	}

	c.JSON(http.StatusCreated, sent)
}
