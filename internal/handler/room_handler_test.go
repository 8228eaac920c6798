package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IDON3O/TeamLobby-sub000/internal/config"
	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/service"
	"github.com/IDON3O/TeamLobby-sub000/internal/treestore"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type testEnv struct {
	store *treestore.MemoryStore
	rooms *service.RoomService
	users *service.UserService
}

func newTestEnv() testEnv {
	gin.SetMode(gin.TestMode)
	config.AppConfig = &config.Config{JWTSecret: "test-secret"}
	store := treestore.NewMemoryStore()
	return testEnv{
		store: store,
		rooms: service.NewRoomService(store),
		users: service.NewUserService(store),
	}
}

func authedContext(w *httptest.ResponseRecorder, user models.User) (*gin.Context, *gin.Engine) {
	c, e := gin.CreateTestContext(w)
	c.Set("userID", user.ID)
	c.Set("userAlias", user.Alias)
	c.Set("isGuest", user.IsGuest)
	return c, e
}

func TestCreateRoomHandler(t *testing.T) {
	env := newTestEnv()
	h := NewRoomHandler(env.rooms, env.users)

	user, err := env.users.Register(context.Background(), "ann", "", "password123")
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := authedContext(w, user)
	body := bytes.NewBufferString(`{"name": "Friday Night"}`)
	c.Request, _ = http.NewRequest("POST", "/api/v1/rooms", body)
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateRoom(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp CreateRoomResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Code, 5)

	room, err := env.rooms.GetRoom(context.Background(), resp.Code)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, room.HostID)
}

func TestJoinRoomHandlerPasswordFlow(t *testing.T) {
	env := newTestEnv()
	h := NewRoomHandler(env.rooms, env.users)
	ctx := context.Background()

	host, _ := env.users.Register(ctx, "ann", "", "password123")
	member, _ := env.users.Register(ctx, "bob", "", "password123")
	code, err := env.rooms.CreateRoom(ctx, host, "Private Party", "secret")
	assert.NoError(t, err)

	join := func(user models.User, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := authedContext(w, user)
		c.Params = gin.Params{{Key: "code", Value: code}}
		c.Request, _ = http.NewRequest("POST", "/api/v1/rooms/"+code+"/join", bytes.NewBufferString(body))
		c.Request.Header.Set("Content-Type", "application/json")
		h.JoinRoom(c)
		return w
	}

	w := join(member, `{"password": "wrong"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid Password")

	w = join(member, `{"password": "secret"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestJoinRoomHandlerNotFound(t *testing.T) {
	env := newTestEnv()
	h := NewRoomHandler(env.rooms, env.users)

	user, _ := env.users.Register(context.Background(), "ann", "", "password123")

	w := httptest.NewRecorder()
	c, _ := authedContext(w, user)
	c.Params = gin.Params{{Key: "code", Value: "ZZZZZ"}}
	c.Request, _ = http.NewRequest("POST", "/api/v1/rooms/ZZZZZ/join", bytes.NewBufferString(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.JoinRoom(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Room not found")
}

func TestDeleteRoomHandlerDenied(t *testing.T) {
	env := newTestEnv()
	h := NewRoomHandler(env.rooms, env.users)
	ctx := context.Background()

	host, _ := env.users.Register(ctx, "ann", "", "password123")
	outsider, _ := env.users.Register(ctx, "bob", "", "password123")
	code, _ := env.rooms.CreateRoom(ctx, host, "Party", "")

	w := httptest.NewRecorder()
	c, _ := authedContext(w, outsider)
	c.Params = gin.Params{{Key: "code", Value: code}}
	c.Request, _ = http.NewRequest("DELETE", "/api/v1/rooms/"+code, nil)

	h.DeleteRoom(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	_, err := env.rooms.GetRoom(ctx, code)
	assert.NoError(t, err, "room survives the denied delete")
}

func TestGuestSessionHandler(t *testing.T) {
	env := newTestEnv()
	h := NewAuthHandler(env.users)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("POST", "/api/v1/auth/guest", bytes.NewBufferString(`{"alias": "PartyGoer"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Guest(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp AuthResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.User.IsGuest)
	assert.Contains(t, resp.User.ID, models.GuestIDPrefix)

	// guests never reach the registry
	raw, err := env.store.Read(context.Background(), "users/"+resp.User.ID)
	assert.NoError(t, err)
	assert.Nil(t, raw)
}
