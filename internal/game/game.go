package game

// Player identifies a chat participant taking part in a game.
type Player struct {
	ID   string
	Name string
}

// State represents the lifecycle of a game instance.
// Transitions are one-way: WAITING_FOR_PLAYER → IN_PROGRESS → OVER.
type State string

const (
	StateWaitingForPlayer State = "WAITING_FOR_PLAYER"
	StateInProgress       State = "IN_PROGRESS"
	StateOver             State = "OVER"
)

// MoveParser turns one raw chat token into a structured move.
// A parser is single-use: Parse once, then hand it back to the instance
// that produced it for validation and application.
type MoveParser interface {
	Parse(raw string) bool
	ErrorMessage() string
}

// Instance is one running game owned by a session. Implementations keep
// their full board state and are not safe for concurrent use; the session
// layer serializes access.
type Instance interface {
	CodeName() string
	DisplayName() string
	AddPlayer(p Player)
	WaitingForPlayer() bool
	IsTurnOf(p Player) bool
	NewMoveParser() MoveParser
	IsValidMove(p Player, mv MoveParser) bool
	ApplyMove(p Player, mv MoveParser)
	State() State
	Render() string
}

// Scored is an optional capability: variants that track a winner expose it
// here so finished matches can be recorded. ok is false on a draw or when
// the game is still running.
type Scored interface {
	Winner() (p Player, ok bool)
}
