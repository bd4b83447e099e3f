package playmode

import "sync"

// Tracker remembers, per player, the single room whose messages should be
// treated as game input without a command prefix. Entries are independent
// per player; entering a second room overwrites the first.
type Tracker struct {
	mu    sync.RWMutex
	rooms map[string]string // playerID -> roomID
}

func NewTracker() *Tracker {
	return &Tracker{rooms: make(map[string]string)}
}

func (t *Tracker) Enter(playerID, roomID string) {
	t.mu.Lock()
	t.rooms[playerID] = roomID
	t.mu.Unlock()
}

// Leave clears the player's assignment and reports whether one existed.
func (t *Tracker) Leave(playerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rooms[playerID]; !ok {
		return false
	}
	delete(t.rooms, playerID)
	return true
}

func (t *Tracker) Active(playerID, roomID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rooms[playerID] == roomID && roomID != ""
}
