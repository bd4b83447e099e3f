package connectfour

import (
	"strconv"
	"strings"

	"github.com/kapu/kakao-gamebot-go/internal/game"
)

const (
	Code = "cf"
	Name = "Connect four"

	cols = 7
	rows = 6
)

var discs = [2]string{"🔴", "🔵"}

func Factory() game.Factory {
	return game.Factory{Code: Code, Name: Name, New: func() game.Instance { return New() }}
}

// Game is a 7x6 connect-four grid. grid[col][row] holds the owning player
// index, -1 for empty; row 0 is the bottom of the column.
type Game struct {
	players [2]game.Player
	joined  int
	grid    [cols][rows]int
	turn    int
	state   game.State
	winner  int
}

func New() *Game {
	g := &Game{state: game.StateWaitingForPlayer, winner: -1}
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			g.grid[c][r] = -1
		}
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

func (g *Game) NewMoveParser() game.MoveParser { return &Parser{col: -1} }

func (g *Game) IsValidMove(p game.Player, mv game.MoveParser) bool {
	parsed, ok := mv.(*Parser)
	if !ok || parsed.col < 0 || parsed.col >= cols {
		return false
	}
	return g.state == game.StateInProgress && g.grid[parsed.col][rows-1] == -1
}

func (g *Game) ApplyMove(p game.Player, mv game.MoveParser) {
	parsed, ok := mv.(*Parser)
	if !ok || g.state != game.StateInProgress {
		return
	}
	row := 0
	for row < rows && g.grid[parsed.col][row] != -1 {
		row++
	}
	if row == rows {
		return
	}
	g.grid[parsed.col][row] = g.turn
	if g.connects(parsed.col, row, g.turn) {
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

func (g *Game) Winner() (game.Player, bool) {
	if g.state != game.StateOver || g.winner < 0 {
		return game.Player{}, false
	}
	return g.players[g.winner], true
}

func (g *Game) Render() string {
	var b strings.Builder
	for r := rows - 1; r >= 0; r-- {
		for c := 0; c < cols; c++ {
			if owner := g.grid[c][r]; owner >= 0 {
				b.WriteString(discs[owner])
			} else {
				b.WriteString("⚪")
			}
		}
		b.WriteByte('\n')
	}
	for c := 1; c <= cols; c++ {
		b.WriteString(strconv.Itoa(c))
		b.WriteByte(' ')
	}
	b.WriteByte('\n')
	b.WriteString(g.statusLine())
	return b.String()
}

func (g *Game) statusLine() string {
	switch {
	case g.state == game.StateWaitingForPlayer:
		return "Waiting for an opponent."
	case g.state == game.StateOver && g.winner >= 0:
		return g.players[g.winner].Name + " " + discs[g.winner] + " wins!"
	case g.state == game.StateOver:
		return "Draw."
	default:
		return "Turn: " + g.players[g.turn].Name + " " + discs[g.turn]
	}
}

// connects checks the four directions through (col, row) for four in a row.
func (g *Game) connects(col, row, owner int) bool {
	dirs := [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}
	for _, d := range dirs {
		count := 1
		for _, sign := range [2]int{1, -1} {
			c, r := col+d[0]*sign, row+d[1]*sign
			for c >= 0 && c < cols && r >= 0 && r < rows && g.grid[c][r] == owner {
				count++
				c += d[0] * sign
				r += d[1] * sign
			}
		}
		if count >= 4 {
			return true
		}
	}
	return false
}

func (g *Game) full() bool {
	for c := 0; c < cols; c++ {
		if g.grid[c][rows-1] == -1 {
			return false
		}
	}
	return true
}

// Parser reads a single column number 1..7.
type Parser struct {
	col int
	err string
}

func (p *Parser) Parse(raw string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 || n > cols {
		p.err = "expected a column number between 1 and 7"
		return false
	}
	p.col = n - 1
	return true
}

func (p *Parser) ErrorMessage() string { return p.err }
