package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/treestore"
)

// ModerationService toggles admin-only flags on the user registry,
// independent of any room subtree. Flips run inside a transaction so two
// moderators toggling back-to-back cannot race a read-negate-write.
type ModerationService struct {
	store treestore.Store
}

func NewModerationService(store treestore.Store) *ModerationService {
	return &ModerationService{store: store}
}

// ToggleBan flips isBanned on the user's registry entry and returns the new
// value.
func (s *ModerationService) ToggleBan(ctx context.Context, userID string) (bool, error) {
	return s.toggleFlag(ctx, userID, "isBanned")
}

// ToggleMute flips isMuted on the user's registry entry and returns the new
// value.
func (s *ModerationService) ToggleMute(ctx context.Context, userID string) (bool, error) {
	return s.toggleFlag(ctx, userID, "isMuted")
}

func (s *ModerationService) toggleFlag(ctx context.Context, userID, field string) (bool, error) {
	if s.store == nil {
		return false, ErrStoreUnavailable
	}
	var next bool
	_, err := s.store.Transact(ctx, userPath(userID), func(current any) (any, error) {
		entry, ok := current.(map[string]any)
		if !ok {
			return nil, ErrNotFound
		}
		flag, _ := entry[field].(bool)
		next = !flag
		entry[field] = next
		return entry, nil
	})
	if err != nil {
		return false, err
	}
	logrus.WithFields(logrus.Fields{"user": userID, field: next}).Info("moderation flag toggled")
	return next, nil
}

// SubscribeToAllUsers delivers the full normalized user registry on every
// change. Password hashes are stripped before delivery.
func (s *ModerationService) SubscribeToAllUsers(fn func(users []models.User)) (func(), error) {
	if s.store == nil {
		return func() {}, nil
	}
	return s.store.Subscribe(usersRoot, func(value any) {
		raw := treestore.SliceOf[map[string]any](value)
		users := make([]models.User, 0, len(raw))
		for _, item := range raw {
			user, err := normalizeUser(item)
			if err != nil {
				continue
			}
			user.PasswordHash = ""
			users = append(users, user)
		}
		fn(users)
	})
}
