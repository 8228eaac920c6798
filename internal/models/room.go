package models

// Room is a shared session identified by a short code, containing members,
// a game queue, and chat history.
type Room struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"isPrivate"`
	// Password is stored as given, in the clear. Hashing would break the
	// exact-match join check and saved passwords in user history; pending a
	// product decision.
	Password    string    `json:"password,omitempty"`
	HostID      string    `json:"hostId"`
	Members     []User    `json:"members"`
	GameQueue   []Game    `json:"gameQueue"`
	ChatHistory []Message `json:"chatHistory"`
	CreatedAt   int64     `json:"createdAt"`
}

// RoomSummary is a per-user visited-room history entry, stored under the
// user's own registry entry.
type RoomSummary struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	HostAlias     string `json:"hostAlias"`
	LastVisited   int64  `json:"lastVisited"`
	SavedPassword string `json:"savedPassword,omitempty"`
}

// JoinResult is the room-join contract. When Success is false, Message is
// exactly "Room not found" or "Invalid Password"; callers pattern-match on
// these to decide whether to prompt for a password.
type JoinResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

const (
	JoinMessageRoomNotFound    = "Room not found"
	JoinMessageInvalidPassword = "Invalid Password"
)
