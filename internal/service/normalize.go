package service

import (
	"fmt"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/treestore"
)

// Domain-typed views over treestore's normalization boundary. The backend
// may store any collection subtree as a list or as a map keyed by push ids;
// these helpers are the only place that ambiguity is resolved.

func normalizeRoom(code string, v any) (*models.Room, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("room %s: unexpected shape %T", code, v)
	}
	clean := make(map[string]any, len(m))
	for k, val := range m {
		clean[k] = val
	}
	clean["members"] = normalizeMembers(m["members"])
	clean["gameQueue"] = normalizeQueue(m["gameQueue"])
	clean["chatHistory"] = treestore.SliceOf[models.Message](m["chatHistory"])

	room, err := treestore.Decode[models.Room](clean)
	if err != nil {
		return nil, fmt.Errorf("room %s: %w", code, err)
	}
	room.Code = code
	return &room, nil
}

func normalizeMembers(v any) []models.User {
	raw := treestore.SliceOf[map[string]any](v)
	members := make([]models.User, 0, len(raw))
	for _, item := range raw {
		member, err := normalizeUser(item)
		if err != nil {
			continue
		}
		members = append(members, member)
	}
	return members
}

func normalizeUser(v any) (models.User, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return treestore.Decode[models.User](v)
	}
	clean := make(map[string]any, len(m))
	for k, val := range m {
		clean[k] = val
	}
	clean["platforms"] = treestore.SliceOf[string](m["platforms"])
	return treestore.Decode[models.User](clean)
}

func normalizeQueue(v any) []models.Game {
	raw := treestore.SliceOf[map[string]any](v)
	queue := make([]models.Game, 0, len(raw))
	for _, item := range raw {
		game, err := normalizeGame(item)
		if err != nil {
			continue
		}
		queue = append(queue, game)
	}
	return queue
}

func normalizeGame(v any) (models.Game, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return treestore.Decode[models.Game](v)
	}
	clean := make(map[string]any, len(m))
	for k, val := range m {
		clean[k] = val
	}
	clean["votedBy"] = treestore.SliceOf[string](m["votedBy"])
	clean["tags"] = treestore.SliceOf[string](m["tags"])
	clean["platforms"] = treestore.SliceOf[string](m["platforms"])
	clean["comments"] = treestore.SliceOf[models.Comment](m["comments"])
	return treestore.Decode[models.Game](clean)
}
