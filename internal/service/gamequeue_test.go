package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/treestore"
)

func queueOf(t *testing.T, store treestore.Store, code string) []models.Game {
	t.Helper()
	raw, err := store.Read(context.Background(), queuePath(code))
	assert.NoError(t, err)
	return normalizeQueue(raw)
}

func TestAddGameDefaults(t *testing.T) {
	store := treestore.NewMemoryStore()
	games := NewGameQueueService(store)
	ctx := context.Background()

	code := createTestRoom(t, store, "")
	proposer := models.User{ID: "u1", Alias: "Ann"}

	added, err := games.AddGame(ctx, code, models.Game{Title: "Overcooked"}, proposer)
	assert.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "u1", added.ProposedBy)
	assert.Equal(t, models.GameStatusPending, added.Status)
	assert.Equal(t, []string{"u1"}, added.VotedBy, "the proposer is an implicit first vote")

	queue := queueOf(t, store, code)
	assert.Len(t, queue, 1)
	assert.Equal(t, added.ID, queue[0].ID)
}

func TestAddGameConcurrentProposalsNotLost(t *testing.T) {
	store := treestore.NewMemoryStore()
	games := NewGameQueueService(store)
	ctx := context.Background()

	code := createTestRoom(t, store, "")

	const proposals = 20
	var wg sync.WaitGroup
	for i := 0; i < proposals; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			proposer := models.User{ID: fmt.Sprintf("u%d", i), Alias: "x"}
			_, err := games.AddGame(ctx, code, models.Game{Title: fmt.Sprintf("Game %d", i)}, proposer)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, queueOf(t, store, code), proposals)
}

func TestVoteToggleIdempotent(t *testing.T) {
	store := treestore.NewMemoryStore()
	games := NewGameQueueService(store)
	ctx := context.Background()

	code := createTestRoom(t, store, "")
	added, _ := games.AddGame(ctx, code, models.Game{Title: "Overcooked"}, models.User{ID: "u1"})

	assert.NoError(t, games.VoteForGame(ctx, code, added.ID, "u2"))
	assert.Equal(t, []string{"u1", "u2"}, queueOf(t, store, code)[0].VotedBy)

	// voting again returns the set to its original state
	assert.NoError(t, games.VoteForGame(ctx, code, added.ID, "u2"))
	assert.Equal(t, []string{"u1"}, queueOf(t, store, code)[0].VotedBy)
}

func TestVoteConcurrentDistinctUsers(t *testing.T) {
	store := treestore.NewMemoryStore()
	games := NewGameQueueService(store)
	ctx := context.Background()

	code := createTestRoom(t, store, "")
	added, _ := games.AddGame(ctx, code, models.Game{Title: "Overcooked"}, models.User{ID: "host"})

	const voters = 10
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, games.VoteForGame(ctx, code, added.ID, fmt.Sprintf("u%d", i)))
		}(i)
	}
	wg.Wait()

	votes := queueOf(t, store, code)[0].VotedBy
	assert.Len(t, votes, voters+1, "every vote lands exactly once")
	seen := make(map[string]int)
	for _, v := range votes {
		seen[v]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "duplicate vote for %s", id)
	}
}

func TestVoteConcurrentSameUserNeverDuplicates(t *testing.T) {
	store := treestore.NewMemoryStore()
	games := NewGameQueueService(store)
	ctx := context.Background()

	code := createTestRoom(t, store, "")
	added, _ := games.AddGame(ctx, code, models.Game{Title: "Overcooked"}, models.User{ID: "host"})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, games.VoteForGame(ctx, code, added.ID, "u2"))
		}()
	}
	wg.Wait()

	count := 0
	for _, v := range queueOf(t, store, code)[0].VotedBy {
		if v == "u2" {
			count++
		}
	}
	assert.Equal(t, 0, count, "two racing toggles cancel out without duplicating")
}

func TestRemovalAuthorization(t *testing.T) {
	store := treestore.NewMemoryStore()
	games := NewGameQueueService(store)
	ctx := context.Background()

	code := createTestRoom(t, store, "")
	added, _ := games.AddGame(ctx, code, models.Game{Title: "Overcooked"}, models.User{ID: "u1"})

	err := games.RemoveGame(ctx, code, added.ID, "u2", false)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Len(t, queueOf(t, store, code), 1, "queue unchanged after denied removal")

	assert.NoError(t, games.RemoveGame(ctx, code, added.ID, "u1", false), "the proposer may remove")
	assert.Empty(t, queueOf(t, store, code))

	added, _ = games.AddGame(ctx, code, models.Game{Title: "Overcooked"}, models.User{ID: "u1"})
	assert.NoError(t, games.RemoveGame(ctx, code, added.ID, "anyone", true), "admins may always remove")
	assert.Empty(t, queueOf(t, store, code))
}

func TestRemoveGameMissing(t *testing.T) {
	store := treestore.NewMemoryStore()
	games := NewGameQueueService(store)

	code := createTestRoom(t, store, "")
	err := games.RemoveGame(context.Background(), code, "missing", "u1", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAutoApproval(t *testing.T) {
	store := treestore.NewMemoryStore()
	games := NewGameQueueService(store)
	ctx := context.Background()

	code := createTestRoom(t, store, "")

	optedIn := models.User{ID: "u1", Alias: "Ann", AllowGlobalLibrary: true}
	added, err := games.AddGame(ctx, code, models.Game{Title: "Overcooked"}, optedIn)
	assert.NoError(t, err)
	assert.Equal(t, models.GameStatusApproved, added.Status)

	library, err := games.Library(ctx)
	assert.NoError(t, err)
	assert.Len(t, library, 1)
	assert.Equal(t, added.ID, library[0].ID)
	assert.Equal(t, models.GameStatusApproved, library[0].Status)

	plain := models.User{ID: "u2", Alias: "Bob"}
	pending, err := games.AddGame(ctx, code, models.Game{Title: "Celeste"}, plain)
	assert.NoError(t, err)
	assert.Equal(t, models.GameStatusPending, pending.Status)

	library, _ = games.Library(ctx)
	assert.Len(t, library, 1, "pending proposals never reach the library")
}

func TestAutoApprovalForAdmin(t *testing.T) {
	store := treestore.NewMemoryStore()
	games := NewGameQueueService(store)

	code := createTestRoom(t, store, "")
	admin := models.User{ID: "mod", Alias: "Mod", IsAdmin: true}
	added, err := games.AddGame(context.Background(), code, models.Game{Title: "Overcooked"}, admin)
	assert.NoError(t, err)
	assert.Equal(t, models.GameStatusApproved, added.Status)
}

func TestUpdateGamePatch(t *testing.T) {
	store := treestore.NewMemoryStore()
	games := NewGameQueueService(store)
	ctx := context.Background()

	code := createTestRoom(t, store, "")
	first, _ := games.AddGame(ctx, code, models.Game{Title: "Overcooked", Genre: "Co-op"}, models.User{ID: "u1"})
	second, _ := games.AddGame(ctx, code, models.Game{Title: "Celeste"}, models.User{ID: "u2"})

	err := games.UpdateGame(ctx, code, first.ID, map[string]any{"title": "Overcooked 2"})
	assert.NoError(t, err)

	queue := queueOf(t, store, code)
	assert.Equal(t, "Overcooked 2", queue[0].Title)
	assert.Equal(t, "Co-op", queue[0].Genre, "unpatched fields survive")
	assert.Equal(t, "Celeste", queue[1].Title, "other entries untouched")
	_ = second

	// unknown id is a no-op
	assert.NoError(t, games.UpdateGame(ctx, code, "missing", map[string]any{"title": "x"}))
	assert.Len(t, queueOf(t, store, code), 2)
}

func TestAddCommentAppends(t *testing.T) {
	store := treestore.NewMemoryStore()
	games := NewGameQueueService(store)
	ctx := context.Background()

	code := createTestRoom(t, store, "")
	added, _ := games.AddGame(ctx, code, models.Game{Title: "Overcooked"}, models.User{ID: "u1"})
	other, _ := games.AddGame(ctx, code, models.Game{Title: "Celeste"}, models.User{ID: "u2"})

	first, err := games.AddComment(ctx, code, added.ID, models.Comment{UserID: "u2", UserName: "Bob", Text: "yes!", Timestamp: 1})
	assert.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = games.AddComment(ctx, code, added.ID, models.Comment{UserID: "u3", UserName: "Cal", Text: "owned", Timestamp: 2})
	assert.NoError(t, err)

	queue := queueOf(t, store, code)
	assert.Len(t, queue[0].Comments, 2)
	assert.Equal(t, "yes!", queue[0].Comments[0].Text)
	assert.Equal(t, "owned", queue[0].Comments[1].Text)
	for _, g := range queue {
		if g.ID == other.ID {
			assert.Empty(t, g.Comments)
		}
	}
}

func TestApproveGameIdempotent(t *testing.T) {
	store := treestore.NewMemoryStore()
	games := NewGameQueueService(store)
	ctx := context.Background()

	game := models.Game{ID: "g1", Title: "Overcooked", Status: models.GameStatusPending}
	assert.NoError(t, games.ApproveGame(ctx, game))
	assert.NoError(t, games.ApproveGame(ctx, game))

	library, err := games.Library(ctx)
	assert.NoError(t, err)
	assert.Len(t, library, 1)
	assert.Equal(t, models.GameStatusApproved, library[0].Status)
}
