package handler

import (
	"net/http"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type CreateRoomInput struct {
	Name     string `json:"name" binding:"required" example:"Friday Night"`
	Password string `json:"password" example:"secret"`
}

type CreateRoomResponse struct {
	Code string `json:"code" example:"A1B2C"`
}

type JoinRoomInput struct {
	Password string `json:"password" example:"secret"`
}

// endregion

type RoomHandler struct {
	rooms *service.RoomService
	users *service.UserService
}

func NewRoomHandler(rooms *service.RoomService, users *service.UserService) *RoomHandler {
	return &RoomHandler{rooms: rooms, users: users}
}

// CreateRoom godoc
// @Summary      Create a new room
// @Description  Creates a room with the caller as host and returns its code. A non-empty password makes the room private.
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateRoomInput true "Room Info"
// @Success      201  {object}  CreateRoomResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "User is banned"
// @Router       /rooms [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if user.IsBanned {
		c.JSON(http.StatusForbidden, gin.H{"error": "User is banned"})
		return
	}

	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.rooms.CreateRoom(c.Request.Context(), user, input.Name, input.Password)
	if err != nil {
		serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateRoomResponse{Code: code})
}

// JoinRoom godoc
// @Summary      Join a room by code
// @Description  Joins the room, merging the caller into its members. Private rooms require the password unless the caller is the host.
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path int true "Room code"
// @Param        input body JoinRoomInput false "Join Info"
// @Success      200  {object}  models.JoinResult
// @Failure      403  {object}  ErrorResponse "User is banned"
// @Router       /rooms/{code}/join [post]
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}
	if user.IsBanned {
		c.JSON(http.StatusForbidden, gin.H{"error": "User is banned"})
		return
	}

	var input JoinRoomInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.rooms.JoinRoom(c.Request.Context(), c.Param("code"), user, input.Password)
	if err != nil {
		serviceError(c, err)
		return
	}

	// Callers pattern-match on result.Message; the status code mirrors it.
	if !result.Success {
		status := http.StatusForbidden
		if result.Message == models.JoinMessageRoomNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetRoom godoc
// @Summary      Get a room snapshot
// @Description  Returns the current normalized state of the room.
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Room code"
// @Success      200  {object}  models.Room
// @Failure      404  {object}  ErrorResponse "Room not found"
// @Router       /rooms/{code} [get]
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.rooms.GetRoom(c.Request.Context(), c.Param("code"))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom godoc
// @Summary      Delete a room (host or admin only)
// @Description  Hard-deletes the room subtree. Subscribers receive a room_deleted event.
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        code path string true "Room code"
// @Success      200  {object}  map[string]string "{"message": "Room deleted"}"
// @Failure      403  {object}  ErrorResponse "Permission denied"
// @Failure      404  {object}  ErrorResponse "Room not found"
// @Router       /rooms/{code} [delete]
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	user, ok := currentUser(c, h.users)
	if !ok {
		return
	}

	if err := h.rooms.DeleteRoom(c.Request.Context(), c.Param("code"), user); err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}

// History godoc
// @Summary      List the caller's visited rooms
// @Description  Returns the caller's room history, most recently visited first. Guests always get an empty list.
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.RoomSummary
// @Router       /rooms/history [get]
func (h *RoomHandler) History(c *gin.Context) {
	summaries, err := h.rooms.UserRooms(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}
