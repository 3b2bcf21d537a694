package state

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and temporary data for a user.
type Session struct {
	State    State
	TempData map[string]interface{}
}

// Manager orchestrates user sessions and FSM state transitions.
// Unseen users implicitly hold an idle session with no temp data; a
// session comes into existence on the first write and disappears again
// on Clear or after sitting idle past the configured TTL.
type Manager interface {
	SetState(userID int64, st State)
	GetState(userID int64) State
	InProgress(userID int64) bool
	Clear(userID int64)

	SetTemp(userID int64, key string, value interface{})
	GetTemp(userID int64, key string) (interface{}, bool)
	ClearTemp(userID int64, key string)

	// Active reports the number of live sessions, for diagnostics.
	Active() int
}
