package gamehub

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"github.com/kapu/kakao-gamebot-go/internal/game"
	"github.com/kapu/kakao-gamebot-go/internal/msgcat"
	"github.com/kapu/kakao-gamebot-go/internal/obslog"
	"github.com/kapu/kakao-gamebot-go/internal/playmode"
	"github.com/kapu/kakao-gamebot-go/internal/record"
	"github.com/kapu/kakao-gamebot-go/internal/session"
	"github.com/kapu/kakao-gamebot-go/internal/util"
)

const commandName = "game"

// Transport posts and deletes chat replies. SendMessage returns the
// posted message id, empty when the bridge does not report one.
type Transport interface {
	SendMessage(ctx context.Context, room, text string) (string, error)
	DeleteMessage(ctx context.Context, room, messageID string) error
}

// Resolver turns a mention token (leading @ included) into a player.
type Resolver interface {
	ResolveMention(ctx context.Context, room, mention string) (game.Player, error)
}

// Hub is the chat-facing entry point of the game module: it classifies
// inbound text, drives the session registry and turn pipeline, and keeps
// at most one live bot reply per room.
type Hub struct {
	prefix    string
	enabled   func(room string) bool
	games     *game.Registry
	sessions  *session.Registry
	modes     *playmode.Tracker
	cat       *msgcat.Catalog
	transport Transport
	resolver  Resolver
	records   *record.Store // optional

	lastMu  sync.Mutex
	lastMsg map[string]string // room → last reply id
}

// Config collects the hub's collaborators.
type Config struct {
	Prefix    string
	Enabled   func(room string) bool
	Games     *game.Registry
	Sessions  *session.Registry
	Modes     *playmode.Tracker
	Catalog   *msgcat.Catalog
	Transport Transport
	Resolver  Resolver
	Records   *record.Store
}

func New(cfg Config) *Hub {
	h := &Hub{
		prefix:    strings.TrimSpace(cfg.Prefix),
		enabled:   cfg.Enabled,
		games:     cfg.Games,
		sessions:  cfg.Sessions,
		modes:     cfg.Modes,
		cat:       cfg.Catalog,
		transport: cfg.Transport,
		resolver:  cfg.Resolver,
		records:   cfg.Records,
		lastMsg:   make(map[string]string),
	}
	if h.enabled == nil {
		h.enabled = func(string) bool { return true }
	}
	return h
}

// gameCommand is the full command token, e.g. "!game".
func (h *Hub) gameCommand() string { return h.prefix + commandName }

// IsGameInput gates whether Handle should run at all: the module must be
// enabled for the room, and the text must either carry the game command
// prefix or come from a player in play mode for that room.
func (h *Hub) IsGameInput(room string, player game.Player, text string) bool {
	if !h.enabled(room) {
		return false
	}
	if h.modes.Active(player.ID, room) {
		return true
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), h.gameCommand())
}

func (h *Hub) text(key string) string { return h.cat.Text(key) }

// reply posts the response and drops the previous bot reply for the
// room, so a channel never accumulates stale boards.
func (h *Hub) reply(ctx context.Context, room, text string) {
	id, err := h.transport.SendMessage(ctx, room, text)
	if err != nil {
		obslog.L().Error("reply_send_error", zap.String("room", room), zap.Error(err))
		return
	}
	h.lastMu.Lock()
	prev := h.lastMsg[room]
	if id != "" {
		h.lastMsg[room] = id
	} else {
		delete(h.lastMsg, room)
	}
	h.lastMu.Unlock()
	if prev != "" {
		if err := h.transport.DeleteMessage(ctx, room, prev); err != nil {
			obslog.L().Warn("reply_delete_error", zap.String("room", room), zap.Error(err))
		}
	}
}

// renderList builds the available-games table plus usage footer.
func (h *Hub) renderList() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"code", "gamename"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, v := range h.games.List() {
		table.Append([]string{v.Code, v.Name})
	}
	table.Render()

	footer, err := h.cat.Render("list.footer", map[string]string{"Prefix": h.gameCommand()})
	if err != nil {
		footer = ""
	}
	// long output, collapse it behind the header in KakaoTalk
	return util.ApplyKakaoSeeMorePadding(buf.String()+footer, h.text("list.header"))
}
