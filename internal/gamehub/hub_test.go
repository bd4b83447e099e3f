package gamehub

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/kapu/kakao-gamebot-go/internal/game"
	"github.com/kapu/kakao-gamebot-go/internal/game/chessgame"
	"github.com/kapu/kakao-gamebot-go/internal/game/tictactoe"
	"github.com/kapu/kakao-gamebot-go/internal/msgcat"
	"github.com/kapu/kakao-gamebot-go/internal/playmode"
	"github.com/kapu/kakao-gamebot-go/internal/record"
	"github.com/kapu/kakao-gamebot-go/internal/session"
)

var (
	alice = game.Player{ID: "u1", Name: "alice"}
	bob   = game.Player{ID: "u2", Name: "bob"}
)

type fakeTransport struct {
	mu      sync.Mutex
	sent    []string
	deleted []string
	nextID  int
}

func (f *fakeTransport) SendMessage(ctx context.Context, room, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, text)
	return fmt.Sprintf("m%d", f.nextID), nil
}

func (f *fakeTransport) DeleteMessage(ctx context.Context, room, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeTransport) last(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 { t.Fatalf("no reply was sent") }
	return f.sent[len(f.sent)-1]
}

type fakeResolver struct {
	users map[string]game.Player // mention name → player
}

func (f *fakeResolver) ResolveMention(ctx context.Context, room, mention string) (game.Player, error) {
	p, ok := f.users[strings.TrimPrefix(mention, "@")]
	if !ok {
		return game.Player{}, fmt.Errorf("no such user: %s", mention)
	}
	return p, nil
}

func newTestHub(t *testing.T) (*Hub, *fakeTransport) {
	t.Helper()
	return newTestHubWith(t, game.NewRegistry(tictactoe.Factory()), nil)
}

func newTestHubWith(t *testing.T, games *game.Registry, records *record.Store) (*Hub, *fakeTransport) {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil { t.Fatalf("msgcat: %v", err) }
	tr := &fakeTransport{}
	h := New(Config{
		Prefix:    "!",
		Games:     games,
		Sessions:  session.NewRegistry(games),
		Modes:     playmode.NewTracker(),
		Catalog:   cat,
		Transport: tr,
		Resolver:  &fakeResolver{users: map[string]game.Player{"alice": alice, "bob": bob}},
		Records:   records,
	})
	return h, tr
}

func TestIsGameInput(t *testing.T) {
	h, _ := newTestHub(t)
	if !h.IsGameInput("room", alice, "!game help") { t.Fatalf("command prefix should match") }
	if !h.IsGameInput("room", alice, "  !GAME 5") { t.Fatalf("match is case and space tolerant") }
	if h.IsGameInput("room", alice, "hello there") { t.Fatalf("plain chat must not match") }

	h.modes.Enter(alice.ID, "room")
	if !h.IsGameInput("room", alice, "5") { t.Fatalf("play mode accepts bare input") }
	if h.IsGameInput("other", alice, "5") { t.Fatalf("play mode is scoped to its room") }
}

func TestIsGameInputDisabledRoom(t *testing.T) {
	h, _ := newTestHub(t)
	h.enabled = func(room string) bool { return room == "allowed" }
	if h.IsGameInput("blocked", alice, "!game help") { t.Fatalf("disabled room must be ignored") }
	if !h.IsGameInput("allowed", alice, "!game help") { t.Fatalf("allowed room should pass") }
}

func TestHelpListsGames(t *testing.T) {
	h, tr := newTestHub(t)
	h.Handle(context.Background(), alice, "room", "!game help")
	out := tr.last(t)
	if !strings.Contains(out, "ttt") || !strings.Contains(out, "Tic-tac-toe") {
		t.Fatalf("list missing variant:\n%s", out)
	}
	if !strings.Contains(out, "!game") { t.Fatalf("footer should name the command:\n%s", out) }
}

func TestBareCommandListsGames(t *testing.T) {
	h, tr := newTestHub(t)
	h.Handle(context.Background(), alice, "room", "!game")
	if !strings.Contains(tr.last(t), "ttt") { t.Fatalf("bare command should list games") }
}

func TestMentionInviteCreatesSharedSession(t *testing.T) {
	h, tr := newTestHub(t)
	ctx := context.Background()

	h.Handle(ctx, alice, "room", "!game @bob ttt")
	if h.sessions.Get(alice.ID) == nil { t.Fatalf("host not registered") }
	if h.sessions.Get(alice.ID) != h.sessions.Get(bob.ID) { t.Fatalf("players should share one session") }
	if !strings.Contains(tr.last(t), "Turn:") { t.Fatalf("reply should render the board:\n%s", tr.last(t)) }
}

func TestMentionInviteTokenOrderSwapped(t *testing.T) {
	h, _ := newTestHub(t)
	h.Handle(context.Background(), alice, "room", "!game ttt @bob")
	if h.sessions.Get(alice.ID) == nil || h.sessions.Get(alice.ID) != h.sessions.Get(bob.ID) {
		t.Fatalf("code-then-mention should create the same session")
	}
}

func TestInviteUnknownUser(t *testing.T) {
	h, tr := newTestHub(t)
	h.Handle(context.Background(), alice, "room", "!game @nobody ttt")
	if !strings.Contains(tr.last(t), "Could not find") { t.Fatalf("reply = %q", tr.last(t)) }
	if h.sessions.InSession(alice.ID) { t.Fatalf("failed invite must not create a session") }
}

func TestInviteSelf(t *testing.T) {
	h, tr := newTestHub(t)
	h.Handle(context.Background(), alice, "room", "!game @alice ttt")
	if !strings.Contains(tr.last(t), "yourself") { t.Fatalf("reply = %q", tr.last(t)) }
	if h.sessions.InSession(alice.ID) { t.Fatalf("self invite must not create a session") }
}

func TestInviteUnknownCode(t *testing.T) {
	h, tr := newTestHub(t)
	h.Handle(context.Background(), alice, "room", "!game @bob nosuch")
	if !strings.Contains(tr.last(t), "does not exist") { t.Fatalf("reply = %q", tr.last(t)) }
}

func TestInviteMentionAlone(t *testing.T) {
	h, tr := newTestHub(t)
	h.Handle(context.Background(), alice, "room", "!game @bob")
	if !strings.Contains(tr.last(t), "Usage:") { t.Fatalf("reply = %q", tr.last(t)) }
}

func TestCancelThenMove(t *testing.T) {
	h, tr := newTestHub(t)
	ctx := context.Background()
	h.Handle(ctx, alice, "room", "!game @bob ttt")
	h.Handle(ctx, alice, "room", "!game cancel")
	if !strings.Contains(tr.last(t), "canceled") { t.Fatalf("reply = %q", tr.last(t)) }
	if h.sessions.InSession(alice.ID) || h.sessions.InSession(bob.ID) {
		t.Fatalf("cancel must free both members")
	}
	h.Handle(ctx, alice, "room", "!game 5")
	if !strings.Contains(tr.last(t), "not in a game") { t.Fatalf("reply = %q", tr.last(t)) }
}

func TestPlayToCompletion(t *testing.T) {
	h, tr := newTestHub(t)
	ctx := context.Background()
	h.Handle(ctx, alice, "room", "!game @bob ttt")

	moves := []struct {
		p   game.Player
		raw string
	}{
		{alice, "!game 1"}, {bob, "!game 4"}, {alice, "!game 2"}, {bob, "!game 5"}, {alice, "!game 3"},
	}
	for _, m := range moves {
		h.Handle(ctx, m.p, "room", m.raw)
	}
	if !strings.Contains(tr.last(t), "alice (X) wins!") { t.Fatalf("final reply:\n%s", tr.last(t)) }
	if h.sessions.InSession(alice.ID) || h.sessions.InSession(bob.ID) {
		t.Fatalf("finished game must free both members")
	}
}

func TestOutOfTurnAndBadMoves(t *testing.T) {
	h, tr := newTestHub(t)
	ctx := context.Background()
	h.Handle(ctx, alice, "room", "!game @bob ttt")

	h.Handle(ctx, bob, "room", "!game 5")
	if !strings.Contains(tr.last(t), "not your turn") { t.Fatalf("reply = %q", tr.last(t)) }

	h.Handle(ctx, alice, "room", "!game banana")
	if !strings.Contains(tr.last(t), "between 1 and 9") { t.Fatalf("reply = %q", tr.last(t)) }

	h.Handle(ctx, alice, "room", "!game 5")
	h.Handle(ctx, bob, "room", "!game 5")
	if !strings.Contains(tr.last(t), "not a valid move") { t.Fatalf("reply = %q", tr.last(t)) }
}

func TestPlayModeFlow(t *testing.T) {
	h, tr := newTestHub(t)
	ctx := context.Background()

	h.Handle(ctx, alice, "room", "!game enter")
	if !strings.Contains(tr.last(t), "play mode") { t.Fatalf("reply = %q", tr.last(t)) }
	if !h.modes.Active(alice.ID, "room") { t.Fatalf("player should be in play mode") }

	// bare input, no command prefix, gets the mode note
	h.Handle(ctx, alice, "room", "help")
	if !strings.HasPrefix(tr.last(t), "*note: ") { t.Fatalf("mode note missing:\n%s", tr.last(t)) }

	h.Handle(ctx, alice, "room", "exit")
	if h.modes.Active(alice.ID, "room") { t.Fatalf("exit should leave play mode") }
	if !strings.Contains(tr.last(t), "Left play mode") { t.Fatalf("reply = %q", tr.last(t)) }
}

func TestExitWithoutModeStaysSilent(t *testing.T) {
	h, tr := newTestHub(t)
	h.Handle(context.Background(), alice, "room", "!game exit")
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.sent) != 0 { t.Fatalf("no reply expected, got %v", tr.sent) }
}

func TestMentionKeepsOriginalCase(t *testing.T) {
	h, _ := newTestHub(t)
	h.resolver = &fakeResolver{users: map[string]game.Player{"Bob": bob}}
	h.Handle(context.Background(), alice, "room", "!game @Bob ttt")
	if h.sessions.Get(alice.ID) == nil || h.sessions.Get(alice.ID) != h.sessions.Get(bob.ID) {
		t.Fatalf("mixed-case mention should resolve and create the session")
	}
}

func TestBareCodeOpensWaitingSession(t *testing.T) {
	h, tr := newTestHub(t)
	ctx := context.Background()
	h.Handle(ctx, alice, "room", "!game ttt")
	if !strings.Contains(tr.last(t), "waiting for a second player") { t.Fatalf("reply = %q", tr.last(t)) }
	s := h.sessions.Get(alice.ID)
	if s == nil || !s.Waiting() { t.Fatalf("a waiting session should exist") }

	h.Handle(ctx, bob, "room", "!game @alice ttt")
	if !strings.Contains(tr.last(t), "You joined the game!") { t.Fatalf("reply = %q", tr.last(t)) }
	if h.sessions.Get(bob.ID) != s { t.Fatalf("invite should join the waiting session") }
}

// piece moves and castling arrive folded to lowercase by Handle
func TestChessMovesThroughHub(t *testing.T) {
	h, tr := newTestHubWith(t, game.NewRegistry(chessgame.Factory()), nil)
	ctx := context.Background()
	h.Handle(ctx, alice, "room", "!game @bob chess")
	h.Handle(ctx, alice, "room", "!game e2e4")
	h.Handle(ctx, bob, "room", "!game Nf6")
	out := tr.last(t)
	if strings.Contains(out, "not a valid move") { t.Fatalf("piece SAN rejected:\n%s", out) }
	if !strings.Contains(out, "Turn: alice (white)") { t.Fatalf("turn should return to white:\n%s", out) }
}

func TestRecordCommand(t *testing.T) {
	mr := miniredis.RunT(t)
	records, err := record.NewStore("redis://" + mr.Addr())
	if err != nil { t.Fatalf("record store: %v", err) }
	t.Cleanup(func() { _ = records.Close() })

	h, tr := newTestHubWith(t, game.NewRegistry(tictactoe.Factory()), records)
	ctx := context.Background()

	h.Handle(ctx, alice, "room", "!game record")
	if !strings.Contains(tr.last(t), "No recorded matches") { t.Fatalf("reply = %q", tr.last(t)) }

	h.Handle(ctx, alice, "room", "!game @bob ttt")
	for _, m := range []struct {
		p   game.Player
		raw string
	}{
		{alice, "!game 1"}, {bob, "!game 4"}, {alice, "!game 2"}, {bob, "!game 5"}, {alice, "!game 3"},
	} {
		h.Handle(ctx, m.p, "room", m.raw)
	}

	h.Handle(ctx, alice, "room", "!game record")
	out := tr.last(t)
	if !strings.Contains(out, "1 wins, 0 losses, 0 draws") { t.Fatalf("summary wrong:\n%s", out) }
	if !strings.Contains(out, "- won vs bob (ttt)") { t.Fatalf("recent line missing:\n%s", out) }

	h.Handle(ctx, bob, "room", "!game record")
	if !strings.Contains(tr.last(t), "- lost vs alice (ttt)") { t.Fatalf("loser view wrong:\n%s", tr.last(t)) }
}

func TestReplyDeletesPrevious(t *testing.T) {
	h, tr := newTestHub(t)
	ctx := context.Background()
	h.Handle(ctx, alice, "room", "!game help")
	h.Handle(ctx, alice, "room", "!game help")
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if len(tr.deleted) != 1 || tr.deleted[0] != "m1" {
		t.Fatalf("previous reply should be deleted, got %v", tr.deleted)
	}
}
