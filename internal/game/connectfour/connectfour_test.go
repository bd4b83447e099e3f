package connectfour

import (
	"strings"
	"testing"

	"github.com/kapu/kakao-gamebot-go/internal/game"
)

var (
	alice = game.Player{ID: "u1", Name: "alice"}
	bob   = game.Player{ID: "u2", Name: "bob"}
)

func newGame(t *testing.T) *Game {
	t.Helper()
	g := New()
	g.AddPlayer(alice)
	g.AddPlayer(bob)
	if g.State() != game.StateInProgress { t.Fatalf("state = %s", g.State()) }
	return g
}

func drop(t *testing.T, g *Game, p game.Player, col string) {
	t.Helper()
	mv := g.NewMoveParser()
	if !mv.Parse(col) { t.Fatalf("parse %q: %s", col, mv.ErrorMessage()) }
	if !g.IsValidMove(p, mv) { t.Fatalf("drop %q rejected", col) }
	g.ApplyMove(p, mv)
}

func TestParserBounds(t *testing.T) {
	for _, raw := range []string{"", "0", "8", "abc"} {
		p := &Parser{col: -1}
		if p.Parse(raw) { t.Fatalf("parse %q should fail", raw) }
	}
}

func TestVerticalWin(t *testing.T) {
	g := newGame(t)
	for i := 0; i < 3; i++ {
		drop(t, g, alice, "1")
		drop(t, g, bob, "2")
	}
	drop(t, g, alice, "1")
	if g.State() != game.StateOver { t.Fatalf("state = %s", g.State()) }
	w, ok := g.Winner()
	if !ok || w.ID != alice.ID { t.Fatalf("winner = %v ok=%v", w, ok) }
}

func TestHorizontalWin(t *testing.T) {
	g := newGame(t)
	for _, col := range []string{"1", "1", "2", "2", "3", "3"} {
		p := alice
		if g.IsTurnOf(bob) {
			p = bob
		}
		drop(t, g, p, col)
	}
	drop(t, g, alice, "4")
	w, ok := g.Winner()
	if !ok || w.ID != alice.ID { t.Fatalf("winner = %v ok=%v", w, ok) }
	if !strings.Contains(g.Render(), "wins!") { t.Fatalf("render missing winner line:\n%s", g.Render()) }
}

func TestFullColumnRejected(t *testing.T) {
	g := newGame(t)
	players := [2]game.Player{alice, bob}
	for i := 0; i < 6; i++ {
		drop(t, g, players[i%2], "4")
	}
	mv := g.NewMoveParser()
	if !mv.Parse("4") { t.Fatalf("parse: %s", mv.ErrorMessage()) }
	if g.IsValidMove(alice, mv) { t.Fatalf("full column should be invalid") }
}
