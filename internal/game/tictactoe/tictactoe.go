package tictactoe

import (
	"strconv"
	"strings"

	"github.com/kapu/kakao-gamebot-go/internal/game"
)

const (
	Code = "ttt"
	Name = "Tic-tac-toe"
)

var marks = [2]string{"X", "O"}

// winLines are the 8 winning triples over a 3x3 board.
var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func Factory() game.Factory {
	return game.Factory{Code: Code, Name: Name, New: func() game.Instance { return New() }}
}

// Game is a 3x3 tic-tac-toe board. Cell values: -1 empty, otherwise the
// index of the player who owns the cell.
type Game struct {
	players [2]game.Player
	joined  int
	board   [9]int
	turn    int
	state   game.State
	winner  int
}

func New() *Game {
	g := &Game{state: game.StateWaitingForPlayer, winner: -1}
	for i := range g.board {
		g.board[i] = -1
	}
	return g
}

func (g *Game) CodeName() string    { return Code }
func (g *Game) DisplayName() string { return Name }

func (g *Game) AddPlayer(p game.Player) {
	if g.joined >= 2 {
		return
	}
	g.players[g.joined] = p
	g.joined++
	if g.joined == 2 {
		g.state = game.StateInProgress
	}
}

func (g *Game) WaitingForPlayer() bool { return g.joined < 2 }

func (g *Game) IsTurnOf(p game.Player) bool {
	return g.state == game.StateInProgress && g.players[g.turn].ID == p.ID
}

func (g *Game) NewMoveParser() game.MoveParser { return &Parser{cell: -1} }

func (g *Game) IsValidMove(p game.Player, mv game.MoveParser) bool {
	parsed, ok := mv.(*Parser)
	if !ok || parsed.cell < 0 || parsed.cell > 8 {
		return false
	}
	return g.state == game.StateInProgress && g.board[parsed.cell] == -1
}

func (g *Game) ApplyMove(p game.Player, mv game.MoveParser) {
	parsed, ok := mv.(*Parser)
	if !ok || g.state != game.StateInProgress {
		return
	}
	g.board[parsed.cell] = g.turn
	if g.hasWin(g.turn) {
		g.winner = g.turn
		g.state = game.StateOver
		return
	}
	if g.full() {
		g.state = game.StateOver
		return
	}
	g.turn = 1 - g.turn
}

func (g *Game) State() game.State { return g.state }

// Winner reports the winning player once the game is over; ok is false on
// a draw.
func (g *Game) Winner() (game.Player, bool) {
	if g.state != game.StateOver || g.winner < 0 {
		return game.Player{}, false
	}
	return g.players[g.winner], true
}

func (g *Game) Render() string {
	var b strings.Builder
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			idx := row*3 + col
			if col > 0 {
				b.WriteString(" | ")
			}
			if owner := g.board[idx]; owner >= 0 {
				b.WriteString(marks[owner])
			} else {
				b.WriteString(strconv.Itoa(idx + 1))
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(g.statusLine())
	return b.String()
}

func (g *Game) statusLine() string {
	switch {
	case g.state == game.StateWaitingForPlayer:
		return "Waiting for an opponent."
	case g.state == game.StateOver && g.winner >= 0:
		return g.players[g.winner].Name + " (" + marks[g.winner] + ") wins!"
	case g.state == game.StateOver:
		return "Draw."
	default:
		return "Turn: " + g.players[g.turn].Name + " (" + marks[g.turn] + ")"
	}
}

func (g *Game) hasWin(owner int) bool {
	for _, line := range winLines {
		if g.board[line[0]] == owner && g.board[line[1]] == owner && g.board[line[2]] == owner {
			return true
		}
	}
	return false
}

func (g *Game) full() bool {
	for _, c := range g.board {
		if c == -1 {
			return false
		}
	}
	return true
}

// Parser reads a single cell number 1..9.
type Parser struct {
	cell int
	err  string
}

func (p *Parser) Parse(raw string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > 9 {
		p.err = "expected a cell number between 1 and 9"
		return false
	}
	p.cell = n - 1
	return true
}

func (p *Parser) ErrorMessage() string { return p.err }
