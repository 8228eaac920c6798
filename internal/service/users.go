package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/IDON3O/TeamLobby-sub000/internal/models"
	"github.com/IDON3O/TeamLobby-sub000/internal/treestore"
)

// Profile fields a user may change about themselves. Moderation flags and
// admin status are off-limits here.
var profileFields = map[string]bool{
	"nickname":           true,
	"avatarUrl":          true,
	"platforms":          true,
	"allowGlobalLibrary": true,
}

// UserService owns the user registry. Guest identities never pass through
// here: they are synthesized locally and leave no registry entry.
type UserService struct {
	store treestore.Store
}

func NewUserService(store treestore.Store) *UserService {
	return &UserService{store: store}
}

// Register creates a registry entry. Alias and email must both be unused.
func (s *UserService) Register(ctx context.Context, alias, email, password string) (models.User, error) {
	if s.store == nil {
		return models.User{}, ErrStoreUnavailable
	}

	existing, err := s.allUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range existing {
		if strings.EqualFold(u.Alias, alias) || (email != "" && strings.EqualFold(u.Email, email)) {
			return models.User{}, ErrConflict
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Alias:        alias,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UnixMilli(),
	}
	if err := s.store.Write(ctx, userPath(user.ID), user); err != nil {
		return models.User{}, err
	}

	logrus.WithFields(logrus.Fields{"user": user.ID, "alias": alias}).Info("user registered")
	return user, nil
}

// Login authenticates by alias or email plus password.
func (s *UserService) Login(ctx context.Context, login, password string) (models.User, error) {
	if s.store == nil {
		return models.User{}, ErrStoreUnavailable
	}
	users, err := s.allUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if !strings.EqualFold(u.Alias, login) && !strings.EqualFold(u.Email, login) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return models.User{}, ErrInvalidCredentials
		}
		return u, nil
	}
	return models.User{}, ErrInvalidCredentials
}

// Get returns the registry entry for an id, or ErrNotFound.
func (s *UserService) Get(ctx context.Context, userID string) (models.User, error) {
	if s.store == nil {
		return models.User{}, ErrStoreUnavailable
	}
	raw, err := s.store.Read(ctx, userPath(userID))
	if err != nil {
		return models.User{}, err
	}
	if raw == nil {
		return models.User{}, ErrNotFound
	}
	return normalizeUser(raw)
}

// UpdateProfile shallow-merges the allowed profile fields onto the registry
// entry. Unknown or privileged fields in patch are dropped.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch map[string]any) error {
	if s.store == nil {
		return ErrStoreUnavailable
	}
	fields := make(map[string]any, len(patch))
	for k, v := range patch {
		if profileFields[k] {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return s.store.Update(ctx, userPath(userID), fields)
}

func (s *UserService) allUsers(ctx context.Context) ([]models.User, error) {
	raw, err := s.store.Read(ctx, usersRoot)
	if err != nil {
		return nil, err
	}
	items := treestore.SliceOf[map[string]any](raw)
	users := make([]models.User, 0, len(items))
	for _, item := range items {
		u, err := normalizeUser(item)
		if err != nil {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}
