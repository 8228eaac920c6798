package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/treestore"
)

const roomCodeLength = 5

// base36, uppercased on emit. No checksum, no collision retry: at 36^5
// codes, collisions are treated as acceptably rare.
const roomCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RoomService owns room lifecycle, membership mutation, and visited-room
// history bookkeeping.
type RoomService struct {
	store treestore.Store
}

func NewRoomService(store treestore.Store) *RoomService {
	return &RoomService{store: store}
}

// GenerateRoomCode returns a short uppercase alphanumeric room code.
func GenerateRoomCode() string {
	buf := make([]byte, roomCodeLength)
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = roomCodeAlphabet[int(b)%len(roomCodeAlphabet)]
	}
	return string(buf)
}

// CreateRoom writes a full room record in one operation and records the
// host's visited-room history. Failure is fatal for the operation: the room
// is not created and no retry is attempted.
func (s *RoomService) CreateRoom(ctx context.Context, host models.User, name, password string) (string, error) {
	if s.store == nil {
		return "", ErrStoreUnavailable
	}

	code := GenerateRoomCode()
	hostSnap := host.Snapshot()
	hostSnap.IsReady = false
	now := time.Now().UnixMilli()

	room := models.Room{
		Code:      code,
		Name:      name,
		IsPrivate: password != "",
		Password:  password,
		HostID:    host.ID,
		Members:   []models.User{hostSnap},
		GameQueue: []models.Game{},
		ChatHistory: []models.Message{{
			ID:        uuid.NewString(),
			UserID:    models.ProposedBySystem,
			UserName:  "System",
			Content:   fmt.Sprintf("Room %q created by %s", name, hostSnap.DisplayName()),
			Timestamp: now,
			IsSystem:  true,
		}},
		CreatedAt: now,
	}

	if err := s.store.Write(ctx, roomPath(code), room); err != nil {
		logrus.WithError(err).WithField("code", code).Error("room create failed")
		return "", err
	}

	s.recordVisit(ctx, host, &room)

	logrus.WithFields(logrus.Fields{"code": code, "host": host.ID}).Info("room created")
	return code, nil
}

// JoinRoom checks existence and password on a plain snapshot read, then
// updates membership in a transaction. The password check is deliberately
// not transactional: correctness there is not race-sensitive, membership is.
func (s *RoomService) JoinRoom(ctx context.Context, code string, user models.User, passwordAttempt string) (models.JoinResult, error) {
	if s.store == nil {
		return models.JoinResult{}, ErrStoreUnavailable
	}

	raw, err := s.store.Read(ctx, roomPath(code))
	if err != nil {
		return models.JoinResult{}, err
	}
	if raw == nil {
		return models.JoinResult{Success: false, Message: models.JoinMessageRoomNotFound}, nil
	}
	room, err := normalizeRoom(code, raw)
	if err != nil {
		return models.JoinResult{}, err
	}

	if room.IsPrivate && user.ID != room.HostID && passwordAttempt != room.Password {
		return models.JoinResult{Success: false, Message: models.JoinMessageInvalidPassword}, nil
	}

	_, err = s.store.Transact(ctx, membersPath(code), func(current any) (any, error) {
		members := normalizeMembers(current)
		snap := user.Snapshot()
		for i, m := range members {
			if m.ID == user.ID {
				// merge fresh profile fields, preserve session state
				snap.IsReady = m.IsReady
				members[i] = snap
				return members, nil
			}
		}
		return append(members, snap), nil
	})
	if err != nil {
		return models.JoinResult{}, err
	}

	s.recordVisit(ctx, user, room)
	return models.JoinResult{Success: true}, nil
}

// GetRoom returns a normalized snapshot, or ErrRoomNotFound.
func (s *RoomService) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	raw, err := s.store.Read(ctx, roomPath(code))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrRoomNotFound
	}
	return normalizeRoom(code, raw)
}

// SubscribeToRoom delivers the full normalized room on every change, and nil
// once the room no longer exists (callers treat that as "room was deleted").
// Fires once immediately; the unsubscribe must be called to release the
// listener.
func (s *RoomService) SubscribeToRoom(code string, fn func(room *models.Room)) (func(), error) {
	if s.store == nil {
		return func() {}, nil
	}
	return s.store.Subscribe(roomPath(code), func(value any) {
		if value == nil {
			fn(nil)
			return
		}
		room, err := normalizeRoom(code, value)
		if err != nil {
			logrus.WithError(err).WithField("code", code).Warn("dropping malformed room snapshot")
			return
		}
		fn(room)
	})
}

// DeleteRoom hard-deletes the room subtree. Only the host or an admin may
// delete; denial is reported explicitly rather than silently ignored.
func (s *RoomService) DeleteRoom(ctx context.Context, code string, actor models.User) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	if actor.ID != room.HostID && !actor.IsAdmin {
		return ErrPermissionDenied
	}
	if err := s.store.Remove(ctx, roomPath(code)); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"code": code, "actor": actor.ID}).Info("room deleted")
	return nil
}

// UserRooms returns the user's visited-room history, most recent first.
// Absent history or an unavailable store yields an empty list.
func (s *RoomService) UserRooms(ctx context.Context, userID string) ([]models.RoomSummary, error) {
	if s.store == nil {
		return []models.RoomSummary{}, nil
	}
	raw, err := s.store.Read(ctx, visitedPath(userID))
	if err != nil {
		logrus.WithError(err).WithField("user", userID).Warn("visited rooms unavailable")
		return []models.RoomSummary{}, nil
	}
	summaries := treestore.SliceOf[models.RoomSummary](raw)
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastVisited > summaries[j].LastVisited
	})
	if summaries == nil {
		summaries = []models.RoomSummary{}
	}
	return summaries, nil
}

// recordVisit upserts the user's RoomSummary for the room. Guests leave no
// durable trace and are skipped. History failures are logged, never fatal
// to the join or create that triggered them.
func (s *RoomService) recordVisit(ctx context.Context, user models.User, room *models.Room) {
	if user.IsTransient() {
		return
	}

	hostAlias := "Host"
	if len(room.Members) > 0 {
		hostAlias = room.Members[0].DisplayName()
	}

	summary := models.RoomSummary{
		Code:        room.Code,
		Name:        room.Name,
		HostAlias:   hostAlias,
		LastVisited: time.Now().UnixMilli(),
	}
	if room.IsPrivate {
		summary.SavedPassword = room.Password
	}

	if err := s.store.Write(ctx, visitPath(user.ID, room.Code), summary); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user": user.ID, "code": room.Code}).
			Warn("failed to record visited room")
	}
}
