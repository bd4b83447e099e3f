package gamehub

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/kakao-gamebot-go/internal/game"
	"github.com/kapu/kakao-gamebot-go/internal/obslog"
	"github.com/kapu/kakao-gamebot-go/internal/record"
	"github.com/kapu/kakao-gamebot-go/internal/session"
)

// playTurn maps the session turn pipeline onto user-facing text. A bare
// game code from a free player opens a waiting session instead. A
// terminal move frees both players and records the result before the
// final render goes out.
func (h *Hub) playTurn(ctx context.Context, player game.Player, room, input string) string {
	s := h.sessions.Get(player.ID)
	if s == nil {
		if h.games.Has(input) {
			return h.openSession(player, input)
		}
		return h.text("play.not_in_game")
	}
	outcome, render, detail := s.PlayTurn(player, input)
	switch outcome {
	case session.TurnWaiting:
		return h.text("play.waiting_for_player")
	case session.TurnNotYours:
		return render + "\n" + h.text("play.not_your_turn")
	case session.TurnParseError:
		return render + "\n❗ " + detail
	case session.TurnIllegal:
		return render + "\n" + h.text("play.not_a_valid_move")
	case session.TurnCorrupt:
		obslog.L().Error("session_corrupt",
			zap.String("player_id", player.ID),
			zap.String("code", s.CodeName()),
		)
		return h.text("play.internal_error")
	case session.TurnGameOver:
		h.sessions.Remove(s)
		h.recordResult(ctx, room, s)
		return render
	default:
		return render
	}
}

// openSession creates a waiting session for a bare game code; an
// opponent joins it through the mention invite.
func (h *Hub) openSession(player game.Player, code string) string {
	s, err := h.sessions.Create(player, code)
	switch {
	case errors.Is(err, session.ErrAlreadyInSession):
		return h.text("play.already_in_game")
	case err != nil:
		obslog.L().Error("session_create_error",
			zap.String("code", code),
			zap.String("host_id", player.ID),
			zap.Error(err),
		)
		return h.text("play.internal_error")
	}
	return h.text("play.created_waiting") + "\n" + s.Render()
}

// recordResult is best-effort: a ledger failure never blocks the reply.
func (h *Hub) recordResult(ctx context.Context, room string, s *session.Session) {
	if h.records == nil {
		return
	}
	members := s.Members()
	m := &record.Match{
		ID:        uuid.NewString(),
		Code:      s.CodeName(),
		Room:      room,
		HostID:    members[0].ID,
		HostName:  members[0].Name,
		Outcome:   "draw",
		StartedAt: s.CreatedAt(),
		EndedAt:   time.Now(),
	}
	if len(members) > 1 {
		m.GuestID = members[1].ID
		m.GuestName = members[1].Name
	}
	if winner, ok := s.Winner(); ok {
		m.WinnerID = winner.ID
		m.Outcome = "win"
	}
	_ = h.records.RecordMatch(ctx, m)
}
