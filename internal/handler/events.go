package handler

import (
	"encoding/json"
	"io"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"

	"github.com/gin-gonic/gin"
)

// Event represents a real-time event sent to SSE clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	EventRoomState   = "room_state"
	EventRoomDeleted = "room_deleted"
	EventUserList    = "user_list"
)

// client buffers marshaled events for one SSE connection.
type client chan []byte

func (cl client) send(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	// Non-blocking: a slow consumer drops intermediate snapshots and picks
	// up the next full state. Snapshots are whole values, not diffs, so
	// nothing is lost.
	select {
	case cl <- payload:
	default:
	}
}

// StreamRoom godoc
// @Summary      Stream room state
// @Description  Server-sent events: fires room_state immediately with the current room, then on every change; room_deleted when the room is removed.
// @Tags         rooms
// @Produce      text/event-stream
// @Security     BearerAuth
// @Param        code path string true "Room code"
// @Router       /rooms/{code}/events [get]
func (h *RoomHandler) StreamRoom(c *gin.Context) {
	code := c.Param("code")
	cl := make(client, 16)

	unsubscribe, err := h.rooms.SubscribeToRoom(code, func(room *models.Room) {
		if room == nil {
			cl.send(Event{Type: EventRoomDeleted})
			return
		}
		cl.send(Event{Type: EventRoomState, Payload: room})
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	defer unsubscribe()

	streamEvents(c, cl)
}

func streamEvents(c *gin.Context, cl client) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case payload, ok := <-cl:
			if !ok {
				return false
			}
			c.SSEvent("message", string(payload))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
