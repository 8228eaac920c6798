// Package bot implements the room suggestion bot: a delayed system reply
// delivered through the same chat-append path as user messages.
package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/service"
)

const triggerPrefix = "/suggest"

// DefaultReplyDelay simulates the bot "thinking" before it answers.
const DefaultReplyDelay = 2 * time.Second

// Suggester watches chat messages for the /suggest trigger and schedules a
// cancellable delayed reply picked from the global library.
type Suggester struct {
	games    *service.GameQueueService
	sessions *service.SessionService
	delay    time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func New(games *service.GameQueueService, sessions *service.SessionService, delay time.Duration) *Suggester {
	if delay <= 0 {
		delay = DefaultReplyDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Suggester{
		games:    games,
		sessions: sessions,
		delay:    delay,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Close cancels all pending replies.
func (b *Suggester) Close() { b.cancel() }

// MaybeReply inspects a just-sent message and, when it triggers the bot,
// schedules the delayed reply. The reply is dropped if the bot shuts down
// before the delay elapses.
func (b *Suggester) MaybeReply(code string, msg models.Message) {
	if msg.IsSystem || !strings.HasPrefix(strings.TrimSpace(msg.Content), triggerPrefix) {
		return
	}

	go func() {
		timer := time.NewTimer(b.delay)
		defer timer.Stop()
		select {
		case <-b.ctx.Done():
			return
		case <-timer.C:
		}

		reply := models.Message{
			UserID:   models.ProposedBySystem,
			UserName: "GameBot",
			Content:  b.pickSuggestion(),
			IsSystem: true,
		}
		if _, err := b.sessions.SendChatMessage(b.ctx, code, reply); err != nil {
			logrus.WithError(err).WithField("code", code).Warn("bot reply failed")
		}
	}()
}

func (b *Suggester) pickSuggestion() string {
	library, err := b.games.Library(b.ctx)
	if err != nil || len(library) == 0 {
		return "I have no suggestions yet. Approve some games into the library first!"
	}
	game := library[rand.Intn(len(library))]
	return fmt.Sprintf("How about %s? It's in the shared library.", game.Title)
}
