package memory

import (
	"fmt"
	"time"
)

// MaxTurns caps the number of turns kept per user. The oldest turn is
// evicted first once the cap is reached.
const MaxTurns = 10

// Turn is one user-message/bot-reply pair.
type Turn struct {
	User string    `json:"user"`
	Bot  string    `json:"bot"`
	At   time.Time `json:"at"`
}

// Line renders the turn in the format used for prompt assembly.
func (t Turn) Line() string {
	return fmt.Sprintf("user: %s | bot: %s", t.User, t.Bot)
}

// Store abstracts the per-user conversation history.
// Implementations must be safe for concurrent use.
type Store interface {
	History(userID string) []Turn
	Append(userID, userMsg, botReply string) error
	Clear(userID string) (bool, error)
	Context(userID string) string
	Stats() (users, turns int)
}
