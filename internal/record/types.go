package record

import "time"

// Match is the persisted summary of one finished game.
type Match struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Room      string    `json:"room"`
	HostID    string    `json:"host_id"`
	HostName  string    `json:"host_name"`
	GuestID   string    `json:"guest_id"`
	GuestName string    `json:"guest_name"`
	WinnerID  string    `json:"winner_id,omitempty"`
	Outcome   string    `json:"outcome"` // "win" or "draw"
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// Tally is a player's lifetime win/loss/draw count.
type Tally struct {
	Wins   int64
	Losses int64
	Draws  int64
}
