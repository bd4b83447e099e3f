package chessgame

import (
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/kapu/kakao-gamebot-go/internal/game"
)

const (
	Code = "chess"
	Name = "Chess"
)

func Factory() game.Factory {
	return game.Factory{Code: Code, Name: Name, New: func() game.Instance { return New() }}
}

// Game wraps a chess position. The first player to join plays white.
type Game struct {
	inner   *nchess.Game
	players [2]game.Player
	joined  int
	state   game.State
	winner  int
}

func New() *Game {
	return &Game{inner: nchess.NewGame(), state: game.StateWaitingForPlayer, winner: -1}
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
	if g.state != game.StateInProgress {
		return false
	}
	idx := 0
	if g.inner.Position().Turn() != nchess.White {
		idx = 1
	}
	return g.players[idx].ID == p.ID
}

func (g *Game) NewMoveParser() game.MoveParser { return &Parser{} }

// IsValidMove decodes the raw token against the current position, trying
// UCI first and algebraic notation second (the order the PvP chess flow
// accepts input). The decoded move is kept on the parser for ApplyMove.
func (g *Game) IsValidMove(p game.Player, mv game.MoveParser) bool {
	parsed, ok := mv.(*Parser)
	if !ok || g.state != game.StateInProgress {
		return false
	}
	pos := g.inner.Position()
	if m, err := (nchess.UCINotation{}).Decode(pos, strings.ToLower(parsed.raw)); err == nil {
		parsed.move = m
		return true
	}
	for _, cand := range sanCandidates(parsed.raw) {
		if m, err := (nchess.AlgebraicNotation{}).Decode(pos, cand); err == nil {
			parsed.move = m
			return true
		}
	}
	return false
}

// sanCandidates restores the casing algebraic notation expects from
// case-folded chat input: castling and piece letters uppercase, files and
// ranks lowercase. "nf3" becomes "Nf3", "o-o" becomes "O-O". A leading
// 'b' is ambiguous between the b-pawn and the bishop, so both readings
// are tried; only one can be legal in a given position.
func sanCandidates(raw string) []string {
	s := strings.ToLower(strings.TrimSpace(raw))
	suffix := ""
	for strings.HasSuffix(s, "+") || strings.HasSuffix(s, "#") {
		suffix = s[len(s)-1:] + suffix
		s = s[:len(s)-1]
	}
	switch s {
	case "o-o", "0-0":
		return []string{"O-O" + suffix}
	case "o-o-o", "0-0-0":
		return []string{"O-O-O" + suffix}
	}
	if i := strings.IndexByte(s, '='); i >= 0 && i+1 < len(s) {
		s = s[:i+1] + strings.ToUpper(s[i+1:i+2]) + s[i+2:]
	}
	if len(s) > 2 {
		switch s[0] {
		case 'k', 'q', 'r', 'n':
			return []string{strings.ToUpper(s[:1]) + s[1:] + suffix}
		case 'b':
			return []string{s + suffix, "B" + s[1:] + suffix}
		}
	}
	return []string{s + suffix}
}

func (g *Game) ApplyMove(p game.Player, mv game.MoveParser) {
	parsed, ok := mv.(*Parser)
	if !ok || parsed.move == nil || g.state != game.StateInProgress {
		return
	}
	g.inner.Move(parsed.move, nil)
	parsed.move = nil
	switch g.inner.Outcome() {
	case nchess.WhiteWon:
		g.winner = 0
		g.state = game.StateOver
	case nchess.BlackWon:
		g.winner = 1
		g.state = game.StateOver
	case nchess.Draw:
		g.state = game.StateOver
	}
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
	b.WriteString(renderFEN(g.inner.FEN()))
	b.WriteString(g.statusLine())
	return b.String()
}

func (g *Game) statusLine() string {
	switch {
	case g.state == game.StateWaitingForPlayer:
		return "Waiting for an opponent."
	case g.state == game.StateOver && g.winner >= 0:
		side := "white"
		if g.winner == 1 {
			side = "black"
		}
		return g.players[g.winner].Name + " (" + side + ") wins!"
	case g.state == game.StateOver:
		return "Draw."
	default:
		side := "white"
		idx := 0
		if g.inner.Position().Turn() != nchess.White {
			side = "black"
			idx = 1
		}
		return "Turn: " + g.players[idx].Name + " (" + side + ")"
	}
}

var pieceGlyphs = map[rune]string{
	'K': "♔", 'Q': "♕", 'R': "♖", 'B': "♗", 'N': "♘", 'P': "♙",
	'k': "♚", 'q': "♛", 'r': "♜", 'b': "♝", 'n': "♞", 'p': "♟",
}

// renderFEN draws the piece-placement field of a FEN string as text,
// rank 8 at the top.
func renderFEN(fen string) string {
	placement := fen
	if i := strings.IndexByte(fen, ' '); i > 0 {
		placement = fen[:i]
	}
	var b strings.Builder
	rank := 8
	for _, row := range strings.Split(placement, "/") {
		b.WriteString(string(rune('0' + rank)))
		b.WriteByte(' ')
		for _, ch := range row {
			if ch >= '1' && ch <= '8' {
				for n := 0; n < int(ch-'0'); n++ {
					b.WriteString("·")
				}
				continue
			}
			if glyph, ok := pieceGlyphs[ch]; ok {
				b.WriteString(glyph)
			}
		}
		b.WriteByte('\n')
		rank--
	}
	b.WriteString("  abcdefgh\n")
	return b.String()
}

// Parser accepts one move token in UCI or algebraic notation, in either
// case (chat input arrives folded to lowercase). Legality is
// position-dependent, so Parse only checks shape; decoding happens in
// IsValidMove.
type Parser struct {
	raw  string
	move *nchess.Move
	err  string
}

func (p *Parser) Parse(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 7 {
		p.err = "expected a move like e2e4 or Nf3"
		return false
	}
	for _, ch := range raw {
		if !strings.ContainsRune("abcdefghoqrnx12345678=+#-0KQRBNO", ch) {
			p.err = "expected a move like e2e4 or Nf3"
			return false
		}
	}
	p.raw = raw
	return true
}

func (p *Parser) ErrorMessage() string { return p.err }
