package handler

import (
	"net/http"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// ApproveGameInput carries a full game record to upsert into the library.
type ApproveGameInput struct {
	ID          string   `json:"id" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Genre       string   `json:"genre"`
	Platforms   []string `json:"platforms"`
	Tags        []string `json:"tags"`
	Link        string   `json:"link"`
	ProposedBy  string   `json:"proposed_by"`
}

type FlagResponse struct {
	UserID string `json:"user_id"`
	Value  bool   `json:"value"`
}

// endregion

type AdminHandler struct {
	moderation *service.ModerationService
	games      *service.GameQueueService
}

func NewAdminHandler(moderation *service.ModerationService, games *service.GameQueueService) *AdminHandler {
	return &AdminHandler{moderation: moderation, games: games}
}

// ToggleBan godoc
// @Summary      Toggle a user's ban flag
// @Description  Transactionally flips isBanned on the registry entry and returns the new value.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200  {object}  FlagResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /admin/users/{id}/ban [post]
func (h *AdminHandler) ToggleBan(c *gin.Context) {
	value, err := h.moderation.ToggleBan(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, FlagResponse{UserID: c.Param("id"), Value: value})
}

// ToggleMute godoc
// @Summary      Toggle a user's mute flag
// @Description  Transactionally flips isMuted on the registry entry and returns the new value.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200  {object}  FlagResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /admin/users/{id}/mute [post]
func (h *AdminHandler) ToggleMute(c *gin.Context) {
	value, err := h.moderation.ToggleMute(c.Request.Context(), c.Param("id"))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, FlagResponse{UserID: c.Param("id"), Value: value})
}

// StreamUsers godoc
// @Summary      Stream the user registry
// @Description  Server-sent events: fires user_list immediately with all users, then on every registry change.
// @Tags         admin
// @Produce      text/event-stream
// @Security     BearerAuth
// @Router       /admin/users/events [get]
func (h *AdminHandler) StreamUsers(c *gin.Context) {
	cl := make(client, 16)

	unsubscribe, err := h.moderation.SubscribeToAllUsers(func(users []models.User) {
		cl.send(Event{Type: EventUserList, Payload: users})
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	defer unsubscribe()

	streamEvents(c, cl)
}

// ApproveGame godoc
// @Summary      Approve a game into the global library
// @Description  Upserts the game with status forced to approved. Idempotent, last-write-wins.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ApproveGameInput true "Game"
// @Success      200  {object}  models.Game
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Router       /admin/library [post]
func (h *AdminHandler) ApproveGame(c *gin.Context) {
	var input ApproveGameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game := models.Game{
		ID:          input.ID,
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Genre:       input.Genre,
		Platforms:   input.Platforms,
		Tags:        input.Tags,
		Link:        input.Link,
		ProposedBy:  input.ProposedBy,
	}
	if err := h.games.ApproveGame(c.Request.Context(), game); err != nil {
		serviceError(c, err)
		return
	}
	game.Status = models.GameStatusApproved
	c.JSON(http.StatusOK, game)
}
