package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kapu/kakao-gamebot-go/internal/game"
	"github.com/kapu/kakao-gamebot-go/internal/obslog"
)

// Registry maps players to the session they belong to. A single mutex
// covers every multi-step membership mutation, so check-then-act sequences
// (create, join, cancel, completion removal) are atomic and both members
// of a session always appear or disappear together.
type Registry struct {
	mu       sync.RWMutex
	games    *game.Registry
	byPlayer map[string]*Session
}

func NewRegistry(games *game.Registry) *Registry {
	return &Registry{games: games, byPlayer: make(map[string]*Session)}
}

func (r *Registry) InSession(playerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byPlayer[playerID]
	return ok
}

// Get returns the player's session, nil when there is none.
func (r *Registry) Get(playerID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byPlayer[playerID]
}

// Create opens a new session hosted by host, waiting for a second player.
func (r *Registry) Create(host game.Player, code string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.byPlayer[host.ID]; busy {
		return nil, ErrAlreadyInSession
	}
	inst, err := r.games.New(code)
	if err != nil {
		return nil, err
	}
	inst.AddPlayer(host)
	s := newSession(host, inst)
	r.byPlayer[host.ID] = s
	obslog.L().Info("session_create",
		zap.String("host_id", host.ID),
		zap.String("code", inst.CodeName()),
	)
	return s, nil
}

// CreateWithGuest opens a session and seats both players immediately, the
// mention-invite path when the target has no session yet.
func (r *Registry) CreateWithGuest(host, guest game.Player, code string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.byPlayer[host.ID]; busy {
		return nil, ErrAlreadyInSession
	}
	if _, busy := r.byPlayer[guest.ID]; busy {
		return nil, ErrTargetBusy
	}
	inst, err := r.games.New(code)
	if err != nil {
		return nil, err
	}
	inst.AddPlayer(host)
	s := newSession(host, inst)
	r.byPlayer[host.ID] = s
	s.addGuest(guest)
	r.byPlayer[guest.ID] = s
	obslog.L().Info("session_create",
		zap.String("host_id", host.ID),
		zap.String("guest_id", guest.ID),
		zap.String("code", inst.CodeName()),
	)
	return s, nil
}

// Join seats joiner in the session hosted by hostID.
func (r *Registry) Join(joiner game.Player, hostID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.byPlayer[joiner.ID]; busy {
		return nil, ErrAlreadyInSession
	}
	s, ok := r.byPlayer[hostID]
	if !ok {
		return nil, ErrTargetNotWaiting
	}
	if !s.Waiting() {
		return nil, ErrTargetBusy
	}
	s.addGuest(joiner)
	r.byPlayer[joiner.ID] = s
	obslog.L().Info("session_join",
		zap.String("host_id", hostID),
		zap.String("joiner_id", joiner.ID),
		zap.String("code", s.CodeName()),
	)
	return s, nil
}

// Cancel removes the session the player belongs to, freeing every member,
// and reports whether one existed.
func (r *Registry) Cancel(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byPlayer[playerID]
	if !ok {
		return false
	}
	r.removeLocked(s)
	obslog.L().Info("session_cancel",
		zap.String("player_id", playerID),
		zap.String("code", s.CodeName()),
	)
	return true
}

// Remove unregisters a finished session for all of its members. Same
// semantics as Cancel, invoked by the turn processor after a terminal
// move.
func (r *Registry) Remove(s *Session) {
	if s == nil {
		return
	}
	r.mu.Lock()
	r.removeLocked(s)
	r.mu.Unlock()
	obslog.L().Info("session_complete",
		zap.String("host_id", s.Host().ID),
		zap.String("code", s.CodeName()),
	)
}

func (r *Registry) removeLocked(s *Session) {
	for _, p := range s.Members() {
		if r.byPlayer[p.ID] == s {
			delete(r.byPlayer, p.ID)
		}
	}
}
