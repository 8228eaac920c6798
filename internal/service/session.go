package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/treestore"
)

// SessionService tracks per-room session state: ready flags and chat.
type SessionService struct {
	store treestore.Store
}

func NewSessionService(store treestore.Store) *SessionService {
	return &SessionService{store: store}
}

// ToggleReady flips the matching member's isReady flag, leaving every other
// member field untouched. A toggle, not a set-to-value: flipping twice
// restores the original state.
func (s *SessionService) ToggleReady(ctx context.Context, code, userID string) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	_, err := s.store.Transact(ctx, membersPath(code), func(current any) (any, error) {
		items := treestore.SliceOf[map[string]any](current)
		for _, item := range items {
			if item["id"] != userID {
				continue
			}
			ready, _ := item["isReady"].(bool)
			item["isReady"] = !ready
		}
		return items, nil
	})
	return err
}

// SendChatMessage appends to the room's chat history. No size cap and no
// retention policy; history grows unbounded.
func (s *SessionService) SendChatMessage(ctx context.Context, code string, msg models.Message) (models.Message, error) {
	if s.store == nil {
		return models.Message{}, ErrStoreUnavailable
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	_, err := s.store.Transact(ctx, chatPath(code), func(current any) (any, error) {
		history := treestore.SliceOf[models.Message](current)
		return append(history, msg), nil
	})
	return msg, err
}
