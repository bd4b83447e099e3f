package gamehub

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/kakao-gamebot-go/internal/game"
	"github.com/kapu/kakao-gamebot-go/internal/obslog"
	"github.com/kapu/kakao-gamebot-go/internal/record"
	"github.com/kapu/kakao-gamebot-go/internal/session"
)

// recentShown caps the ledger entries appended to the record reply.
const recentShown = 5

// Handle processes one inbound chat message for a (player, room) pair.
// Every failure resolves into a response string here; nothing escapes to
// the caller. Commands and moves are matched case-folded, but the raw
// text is kept alongside: mention tokens must reach the bridge lookup
// with their original casing.
func (h *Hub) Handle(ctx context.Context, player game.Player, room, rawText string) {
	raw := strings.TrimSpace(rawText)
	if cmd := h.gameCommand(); !h.modes.Active(player.ID, room) &&
		len(raw) >= len(cmd) && strings.EqualFold(raw[:len(cmd)], cmd) {
		raw = strings.TrimSpace(raw[len(cmd):])
	}
	msg := strings.ToLower(raw)

	switch msg {
	case "playmode", "enter", "play":
		h.modes.Enter(player.ID, room)
		h.reply(ctx, room, h.text("play.enter_mode"))
		return
	case "exit", "leave", "stop":
		if h.modes.Leave(player.ID) {
			h.reply(ctx, room, h.text("play.leave_mode"))
		}
		return
	}

	args := strings.Fields(msg)
	out := h.dispatch(ctx, player, room, args, strings.Fields(raw))
	if h.modes.Active(player.ID, room) {
		out = "*note: " + h.text("play.in_mode_note") + "*\n" + out
	} else if msg == "" || msg == "help" {
		out = h.renderList()
	}
	if out != "" {
		h.reply(ctx, room, out)
	}
}

// dispatch classifies the tokenized input: cancel, listing, mention
// invite (either token order), or a bare move. rawArgs holds the same
// tokens with their original casing for the mention lookup.
func (h *Hub) dispatch(ctx context.Context, player game.Player, room string, args, rawArgs []string) string {
	if len(args) == 0 {
		if s := h.sessions.Get(player.ID); s != nil {
			return s.Render()
		}
		return h.text("play.not_in_game")
	}
	switch args[0] {
	case "cancel", "stop":
		return h.cancel(player)
	case "help", "list":
		return h.renderList()
	case "record", "stats":
		return h.renderRecord(ctx, player)
	}
	if isMention(args[0]) {
		if len(args) > 1 {
			return h.invite(ctx, player, room, rawArgs[0], args[1])
		}
		return h.text("play.invalid_usage")
	}
	if len(args) > 1 && isMention(args[1]) {
		return h.invite(ctx, player, room, rawArgs[1], args[0])
	}
	return h.playTurn(ctx, player, room, args[0])
}

func isMention(token string) bool {
	return len(token) > 1 && strings.HasPrefix(token, "@")
}

func (h *Hub) cancel(player game.Player) string {
	if h.sessions.Cancel(player.ID) {
		return h.text("play.canceled_game")
	}
	return h.text("play.not_in_game")
}

// invite handles `@user code`: join the target's waiting session, or
// create a new one seating both players immediately.
func (h *Hub) invite(ctx context.Context, player game.Player, room, mention, code string) string {
	if h.sessions.InSession(player.ID) {
		return h.text("play.already_in_game")
	}
	target, err := h.resolver.ResolveMention(ctx, room, mention)
	if err != nil {
		obslog.L().Warn("mention_resolve_error",
			zap.String("room", room),
			zap.String("mention", mention),
			zap.Error(err),
		)
		return h.text("play.unknown_user")
	}
	if target.ID == player.ID {
		return h.text("play.self_invite")
	}

	if existing := h.sessions.Get(target.ID); existing != nil {
		if !existing.Waiting() {
			return h.text("play.target_busy")
		}
		s, jerr := h.sessions.Join(player, target.ID)
		switch {
		case errors.Is(jerr, session.ErrAlreadyInSession):
			return h.text("play.already_in_game")
		case jerr != nil:
			return h.text("play.target_busy")
		}
		return h.text("play.joined_target") + "\n" + s.Render()
	}

	s, cerr := h.sessions.CreateWithGuest(player, target, code)
	switch {
	case errors.Is(cerr, game.ErrUnknownVariant):
		return h.text("play.invalid_code")
	case errors.Is(cerr, game.ErrInstanceFailed):
		obslog.L().Error("variant_instance_error",
			zap.String("code", code),
			zap.String("host_id", player.ID),
		)
		return h.text("play.internal_error")
	case errors.Is(cerr, session.ErrTargetBusy):
		return h.text("play.target_busy")
	case errors.Is(cerr, session.ErrAlreadyInSession):
		return h.text("play.already_in_game")
	case cerr != nil:
		obslog.L().Error("session_create_error", zap.String("code", code), zap.Error(cerr))
		return h.text("play.internal_error")
	}
	return s.Render()
}

func (h *Hub) renderRecord(ctx context.Context, player game.Player) string {
	if h.records == nil {
		return h.text("play.record_none")
	}
	t, err := h.records.Tally(ctx, player.ID)
	if err != nil {
		obslog.L().Error("record_tally_error", zap.String("player_id", player.ID), zap.Error(err))
		return h.text("play.internal_error")
	}
	if t.Wins == 0 && t.Losses == 0 && t.Draws == 0 {
		return h.text("play.record_none")
	}
	out, rerr := h.cat.Render("record.summary", map[string]any{
		"Name":   player.Name,
		"Wins":   t.Wins,
		"Losses": t.Losses,
		"Draws":  t.Draws,
	})
	if rerr != nil {
		return h.text("play.record_none")
	}
	recent, err := h.records.RecentMatches(ctx, player.ID, recentShown)
	if err != nil {
		obslog.L().Warn("record_recent_error", zap.String("player_id", player.ID), zap.Error(err))
		return out
	}
	for _, m := range recent {
		line, lerr := h.cat.Render("record.recent_line", map[string]string{
			"Result":   resultFor(player.ID, m),
			"Opponent": opponentOf(player.ID, m),
			"Code":     m.Code,
		})
		if lerr != nil {
			break
		}
		out += "\n" + line
	}
	return out
}

// resultFor and opponentOf view a ledger entry from the caller's side.
func resultFor(viewerID string, m *record.Match) string {
	switch m.WinnerID {
	case "":
		return "draw"
	case viewerID:
		return "won"
	default:
		return "lost"
	}
}

func opponentOf(viewerID string, m *record.Match) string {
	if m.GuestID == viewerID {
		return m.HostName
	}
	return m.GuestName
}
