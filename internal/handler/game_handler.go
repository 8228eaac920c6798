package handler

import (
	"net/http"
	"time"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type GameInput struct {
	Title       string   `json:"title" binding:"required" example:"Overcooked 2"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Genre       string   `json:"genre" example:"Co-op"`
	Platforms   []string `json:"platforms"`
	Tags        []string `json:"tags"`
	Link        string   `json:"link"`
}

// GamePatchInput defines the editable queue-entry fields.
type GamePatchInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	Genre       *string   `json:"genre"`
	Platforms   *[]string `json:"platforms"`
	Tags        *[]string `json:"tags"`
	Link        *string   `json:"link"`
}

type CommentInput struct {
	Text string `json:"text" binding:"required" example:"I own this one!"`
}

// endregion

type GameHandler struct {
	games *service.GameQueueService
	users *service.UserService
}

func NewGameHandler(games *service.GameQueueService, users *service.UserService) *GameHandler {
	return &GameHandler{games: games, users: users}
}

// AddGame godoc
// @Summary      Propose a game for the room queue
// @Description  Appends a proposal; the proposer is an implicit first vote. Library opt-in or admin status approves it straight into the global library.
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path string    true "Room code"
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  models.Game
// @Failure      400  {object}  ErrorResponse
// @Router       /rooms/{code}/games [post]
func (h *GameHandler) AddGame(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game := models.Game{
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Genre:       input.Genre,
		Platforms:   input.Platforms,
		Tags:        input.Tags,
		Link:        input.Link,
	}

	added, err := h.games.AddGame(c.Request.Context(), c.Param("code"), game, user)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

// UpdateGame godoc
// @Summary      Edit a queue entry
// @Description  Shallow-merges the supplied fields onto the matching entry. A missing game id is a no-op.
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code   path string         true "Room code"
// @Param        gameID path string         true "Game ID"
// @Param        input  body GamePatchInput true "Fields to change"
// @Success      200  {object}  map[string]string "{"message": "Game updated"}"
// @Failure      400  {object}  ErrorResponse
// @Router       /rooms/{code}/games/{gameID} [put]
func (h *GameHandler) UpdateGame(c *gin.Context) {
	var input GamePatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := make(map[string]any)
	if input.Title != nil {
		patch["title"] = *input.Title
	}
	if input.Description != nil {
		patch["description"] = *input.Description
	}
	if input.ImageURL != nil {
		patch["imageUrl"] = *input.ImageURL
	}
	if input.Genre != nil {
		patch["genre"] = *input.Genre
	}
	if input.Platforms != nil {
		patch["platforms"] = *input.Platforms
	}
	if input.Tags != nil {
		patch["tags"] = *input.Tags
	}
	if input.Link != nil {
		patch["link"] = *input.Link
	}

	if err := h.games.UpdateGame(c.Request.Context(), c.Param("code"), c.Param("gameID"), patch); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game updated"})
}

// VoteForGame godoc
// @Summary      Toggle a vote on a queue entry
// @Description  Adds the caller's vote if absent, removes it if present. One vote per user per game.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        code   path string true "Room code"
// @Param        gameID path string true "Game ID"
// @Success      200  {object}  map[string]string "{"message": "Vote toggled"}"
// @Router       /rooms/{code}/games/{gameID}/vote [post]
func (h *GameHandler) VoteForGame(c *gin.Context) {
	err := h.games.VoteForGame(c.Request.Context(), c.Param("code"), c.Param("gameID"), c.GetString("userID"))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote toggled"})
}

// AddComment godoc
// @Summary      Comment on a queue entry
// @Tags         games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code   path string       true "Room code"
// @Param        gameID path string       true "Game ID"
// @Param        input  body CommentInput true "Comment"
// @Success      201  {object}  models.Comment
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "User is muted"
// @Router       /rooms/{code}/games/{gameID}/comments [post]
func (h *GameHandler) AddComment(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if user.IsMuted {
		c.JSON(http.StatusForbidden, gin.H{"error": "User is muted"})
		return
	}

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := models.Comment{
		UserID:    user.ID,
		UserName:  user.DisplayName(),
		Text:      input.Text,
		Timestamp: time.Now().UnixMilli(),
	}
	added, err := h.games.AddComment(c.Request.Context(), c.Param("code"), c.Param("gameID"), comment)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

// RemoveGame godoc
// @Summary      Remove a queue entry
// @Description  Removes the entry when the caller proposed it or is an admin; anyone else gets 403 and the queue stays unchanged.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        code   path string true "Room code"
// @Param        gameID path string true "Game ID"
// @Success      200  {object}  map[string]string "{"message": "Game removed"}"
// @Failure      403  {object}  ErrorResponse "Permission denied"
// @Failure      404  {object}  ErrorResponse "Game not found"
// @Router       /rooms/{code}/games/{gameID} [delete]
func (h *GameHandler) RemoveGame(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	err := h.games.RemoveGame(c.Request.Context(), c.Param("code"), c.Param("gameID"), user.ID, user.IsAdmin)
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game removed"})
}

// Library godoc
// @Summary      List the global game library
// @Description  Returns every approved game in the shared library.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Game
// @Router       /library [get]
func (h *GameHandler) Library(c *gin.Context) {
	games, err := h.games.Library(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}
