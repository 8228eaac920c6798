package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GuestIDPrefix marks locally synthesized identities. Guests participate in
// rooms but are never written to the user registry or visited-room history.
const GuestIDPrefix = "guest-"

// User represents a user in the system. The same shape is stored in the user
// registry and embedded as a per-room member snapshot, where IsReady is
// room-session state.
type User struct {
	ID                 string   `json:"id"`
	Alias              string   `json:"alias"`
	Nickname           string   `json:"nickname,omitempty"`
	Email              string   `json:"email,omitempty"`
	AvatarURL          string   `json:"avatarUrl,omitempty"`
	Platforms          []string `json:"platforms,omitempty"`
	IsReady            bool     `json:"isReady"`
	IsGuest            bool     `json:"isGuest,omitempty"`
	IsAdmin            bool     `json:"isAdmin,omitempty"`
	IsBanned           bool     `json:"isBanned,omitempty"`
	IsMuted            bool     `json:"isMuted,omitempty"`
	AllowGlobalLibrary bool     `json:"allowGlobalLibrary,omitempty"`

	// Registry-only, never embedded in room member snapshots.
	PasswordHash string `json:"passwordHash,omitempty"`
	CreatedAt    int64  `json:"createdAt,omitempty"`
}

// DisplayName returns the nickname when set, falling back to the alias.
func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Alias
}

// Snapshot returns a copy of the user suitable for embedding as a room
// member: registry credentials stripped, nickname defaulted to the alias.
func (u User) Snapshot() User {
	s := u
	s.PasswordHash = ""
	s.CreatedAt = 0
	if s.Nickname == "" {
		s.Nickname = s.Alias
	}
	return s
}

// IsTransient reports whether the user is a guest identity that must leave
// no durable account trace.
func (u User) IsTransient() bool {
	return u.IsGuest || strings.HasPrefix(u.ID, GuestIDPrefix)
}

// NewGuestUser synthesizes a local guest identity.
func NewGuestUser(alias string) User {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return User{
		ID:      fmt.Sprintf("%s%d-%s", GuestIDPrefix, time.Now().UnixMilli(), hex.EncodeToString(suffix)),
		Alias:   alias,
		IsGuest: true,
	}
}
