package session

import (
	"errors"
	"sync"
	"time"

	"github.com/kapu/kakao-gamebot-go/internal/game"
)

var (
	ErrAlreadyInSession = errors.New("player already in a session")
	ErrNotInSession     = errors.New("player not in a session")
	ErrTargetNotWaiting = errors.New("target session is not waiting for a player")
	ErrTargetBusy       = errors.New("target player is unavailable")
)

// Session is one pending or running two-player game. Its mutex serializes
// every read and mutation of the owned instance; membership changes are
// the registry's business.
type Session struct {
	mu        sync.Mutex
	host      game.Player
	guest     *game.Player
	inst      game.Instance
	createdAt time.Time
}

func newSession(host game.Player, inst game.Instance) *Session {
	return &Session{host: host, inst: inst, createdAt: time.Now()}
}

func (s *Session) Host() game.Player { return s.host }

// Members returns the current membership, host first.
func (s *Session) Members() []game.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.guest == nil {
		return []game.Player{s.host}
	}
	return []game.Player{s.host, *s.guest}
}

func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) CodeName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inst.CodeName()
}

// Waiting reports whether the session still needs a second player.
func (s *Session) Waiting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inst.WaitingForPlayer()
}

func (s *Session) Over() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inst.State() == game.StateOver
}

func (s *Session) Render() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inst.Render()
}

// Winner exposes the instance's winner when the variant tracks one.
func (s *Session) Winner() (game.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if scored, ok := s.inst.(game.Scored); ok {
		return scored.Winner()
	}
	return game.Player{}, false
}

// addGuest registers the second player. Caller must hold the registry
// lock; the session lock still guards the instance mutation.
func (s *Session) addGuest(p game.Player) {
	s.mu.Lock()
	s.guest = &p
	s.inst.AddPlayer(p)
	s.mu.Unlock()
}
