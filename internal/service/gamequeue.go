package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/treestore"
)

// GameQueueService owns game proposal, voting, commenting, editing, removal,
// and auto-approval into the global library. Every queue mutation is an
// atomic transaction over the queue subtree; entries are handled as raw
// objects inside transactions so fields this version does not know about
// survive round-trips.
type GameQueueService struct {
	store treestore.Store
}

func NewGameQueueService(store treestore.Store) *GameQueueService {
	return &GameQueueService{store: store}
}

// AddGame appends a proposal to the room's queue. The proposer is an
// implicit first vote. When the proposer has opted into the global library
// or is an admin, the entry is approved immediately and mirrored into the
// library store.
func (s *GameQueueService) AddGame(ctx context.Context, code string, game models.Game, proposer models.User) (models.Game, error) {
	if s.store == nil {
		return models.Game{}, ErrStoreUnavailable
	}

	autoApproved := proposer.AllowGlobalLibrary || proposer.IsAdmin
	if game.ID == "" {
		game.ID = uuid.NewString()
	}
	game.ProposedBy = proposer.ID
	game.VotedBy = []string{proposer.ID}
	game.Status = models.GameStatusPending
	if autoApproved {
		game.Status = models.GameStatusApproved
	}
	if game.Comments == nil {
		game.Comments = []models.Comment{}
	}

	_, err := s.store.Transact(ctx, queuePath(code), func(current any) (any, error) {
		return append(normalizeQueue(current), game), nil
	})
	if err != nil {
		return models.Game{}, err
	}

	if autoApproved {
		if err := s.ApproveGame(ctx, game); err != nil {
			return models.Game{}, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"code": code, "game": game.ID, "status": game.Status,
	}).Info("game added to queue")
	return game, nil
}

// UpdateGame shallow-merges patch onto the matching entry. Entries that do
// not match are untouched; a missing id is a no-op.
func (s *GameQueueService) UpdateGame(ctx context.Context, code, gameID string, patch map[string]any) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	_, err := s.store.Transact(ctx, queuePath(code), func(current any) (any, error) {
		items := treestore.SliceOf[map[string]any](current)
		for _, item := range items {
			if item["id"] != gameID {
				continue
			}
			for k, v := range patch {
				item[k] = v
			}
		}
		return items, nil
	})
	return err
}

// VoteForGame toggles the user's membership in the entry's votedBy set.
// Set semantics: duplicates never accumulate, even under racing calls —
// each retry of the transaction sees the latest committed set.
func (s *GameQueueService) VoteForGame(ctx context.Context, code, gameID, userID string) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	_, err := s.store.Transact(ctx, queuePath(code), func(current any) (any, error) {
		items := treestore.SliceOf[map[string]any](current)
		for _, item := range items {
			if item["id"] != gameID {
				continue
			}
			votes := treestore.SliceOf[string](item["votedBy"])
			next := make([]string, 0, len(votes)+1)
			removed := false
			for _, v := range votes {
				if v == userID {
					removed = true
					continue
				}
				next = append(next, v)
			}
			if !removed {
				next = append(next, userID)
			}
			item["votedBy"] = next
		}
		return items, nil
	})
	return err
}

// RemoveGame filters the entry out of the queue when the caller is an admin
// or proposed it. Otherwise the queue is committed unchanged and the denial
// reported as ErrPermissionDenied.
func (s *GameQueueService) RemoveGame(ctx context.Context, code, gameID, userID string, isAdmin bool) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	var found, denied bool
	_, err := s.store.Transact(ctx, queuePath(code), func(current any) (any, error) {
		found, denied = false, false
		items := treestore.SliceOf[map[string]any](current)
		kept := make([]map[string]any, 0, len(items))
		for _, item := range items {
			if item["id"] == gameID {
				found = true
				if isAdmin || item["proposedBy"] == userID {
					continue
				}
				denied = true
			}
			kept = append(kept, item)
		}
		return kept, nil
	})
	if err != nil {
		return err
	}
	if denied {
		return ErrPermissionDenied
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// AddComment appends to the matching entry's comments. Other entries are
// unchanged.
func (s *GameQueueService) AddComment(ctx context.Context, code, gameID string, comment models.Comment) (models.Comment, error) {
	if s.store == nil {
		return models.Comment{}, ErrStoreUnavailable
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	_, err := s.store.Transact(ctx, queuePath(code), func(current any) (any, error) {
		items := treestore.SliceOf[map[string]any](current)
		for _, item := range items {
			if item["id"] != gameID {
				continue
			}
			comments := treestore.SliceOf[models.Comment](item["comments"])
			item["comments"] = append(comments, comment)
		}
		return items, nil
	})
	return comment, err
}

// ApproveGame upserts the game into the global library with status forced to
// approved. Idempotent, last-write-wins.
func (s *GameQueueService) ApproveGame(ctx context.Context, game models.Game) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	game.Status = models.GameStatusApproved
	return s.store.Write(ctx, libraryPath(game.ID), game)
}

// Library returns the global library as an ordered list.
func (s *GameQueueService) Library(ctx context.Context) ([]models.Game, error) {
	if s.store == nil {
		return []models.Game{}, nil
	}
	raw, err := s.store.Read(ctx, libraryRoot)
	if err != nil {
		return nil, err
	}
	games := normalizeQueue(raw)
	return games, nil
}
