package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/service"
	"github.com/IDON3O/TeamLobby-sub000/internal/treestore"
)

func setupRoom(t *testing.T) (treestore.Store, string, *service.GameQueueService, *service.SessionService) {
	t.Helper()
	store := treestore.NewMemoryStore()
	rooms := service.NewRoomService(store)
	code, err := rooms.CreateRoom(context.Background(), models.User{ID: "u1", Alias: "Ann"}, "Party", "")
	assert.NoError(t, err)
	return store, code, service.NewGameQueueService(store), service.NewSessionService(store)
}

func chatLen(t *testing.T, store treestore.Store, code string) int {
	t.Helper()
	raw, err := store.Read(context.Background(), treestore.Join("rooms", code, "chatHistory"))
	assert.NoError(t, err)
	return len(treestore.SliceOf[models.Message](raw))
}

func waitForChatLen(t *testing.T, store treestore.Store, code string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if chatLen(t, store, code) >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("chat never reached %d messages", want)
}

func TestSuggesterRepliesAfterDelay(t *testing.T) {
	store, code, games, sessions := setupRoom(t)
	assert.NoError(t, games.ApproveGame(context.Background(), models.Game{ID: "g1", Title: "Overcooked"}))

	suggester := New(games, sessions, 10*time.Millisecond)
	defer suggester.Close()

	msg, err := sessions.SendChatMessage(context.Background(), code, models.Message{
		UserID: "u1", UserName: "Ann", Content: "/suggest something",
	})
	assert.NoError(t, err)
	suggester.MaybeReply(code, msg)

	// creation notice + trigger + bot reply
	waitForChatLen(t, store, code, 3)

	raw, _ := store.Read(context.Background(), treestore.Join("rooms", code, "chatHistory"))
	history := treestore.SliceOf[models.Message](raw)
	last := history[len(history)-1]
	assert.True(t, last.IsSystem)
	assert.Contains(t, last.Content, "Overcooked")
}

func TestSuggesterIgnoresPlainMessages(t *testing.T) {
	store, code, games, sessions := setupRoom(t)

	suggester := New(games, sessions, time.Millisecond)
	defer suggester.Close()

	msg, err := sessions.SendChatMessage(context.Background(), code, models.Message{
		UserID: "u1", UserName: "Ann", Content: "hello all",
	})
	assert.NoError(t, err)
	suggester.MaybeReply(code, msg)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, chatLen(t, store, code))
}

func TestSuggesterCancelledOnClose(t *testing.T) {
	store, code, games, sessions := setupRoom(t)

	suggester := New(games, sessions, 100*time.Millisecond)
	msg, err := sessions.SendChatMessage(context.Background(), code, models.Message{
		UserID: "u1", UserName: "Ann", Content: "/suggest now",
	})
	assert.NoError(t, err)
	suggester.MaybeReply(code, msg)
	suggester.Close()

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 2, chatLen(t, store, code), "a cancelled reply never lands")
}
