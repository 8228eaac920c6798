package models

// GameStatus is the moderation state of a queue entry. The flow is one-way:
// pending entries become approved, never the reverse.
type GameStatus string

const (
	GameStatusPending  GameStatus = "pending"
	GameStatusApproved GameStatus = "approved"
)

// ProposedBySystem is the sentinel proposer id for system-sourced
// suggestions (e.g. the suggestion bot).
const ProposedBySystem = "system"

// Game is a game-queue entry. VotedBy is a set: one vote per user per game.
type Game struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Genre       string     `json:"genre,omitempty"`
	Platforms   []string   `json:"platforms,omitempty"`
	VotedBy     []string   `json:"votedBy"`
	Tags        []string   `json:"tags,omitempty"`
	Link        string     `json:"link,omitempty"`
	ProposedBy  string     `json:"proposedBy"`
	Status      GameStatus `json:"status"`
	Comments    []Comment  `json:"comments"`
}

// Comment on a queue entry. Append-only once created.
type Comment struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}
