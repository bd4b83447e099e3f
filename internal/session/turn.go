package session

import (
	"go.uber.org/zap"

	"github.com/kapu/kakao-gamebot-go/internal/game"
	"github.com/kapu/kakao-gamebot-go/internal/obslog"
)

// TurnOutcome classifies the result of one PlayTurn call.
type TurnOutcome int

const (
	TurnApplied TurnOutcome = iota
	TurnGameOver
	TurnWaiting
	TurnNotYours
	TurnParseError
	TurnIllegal
	TurnCorrupt
)

// PlayTurn runs one move attempt through the turn pipeline: turn check,
// parse, validate, apply. The instance is mutated exactly once, and only
// when every earlier step passed; a rejected input leaves the game
// unchanged so the same player can resubmit.
//
// render is the board render accompanying the outcome (current state for
// rejections, post-move state on success); detail carries the parser's
// error message for TurnParseError.
func (s *Session) PlayTurn(p game.Player, raw string) (outcome TurnOutcome, render string, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inst.WaitingForPlayer() {
		return TurnWaiting, "", ""
	}
	if !s.inst.IsTurnOf(p) {
		return TurnNotYours, s.inst.Render(), ""
	}
	parser := s.inst.NewMoveParser()
	if parser == nil {
		// invariant break: an in-progress instance must supply a parser
		return TurnCorrupt, "", ""
	}
	if !parser.Parse(raw) {
		return TurnParseError, s.inst.Render(), parser.ErrorMessage()
	}
	if !s.inst.IsValidMove(p, parser) {
		return TurnIllegal, s.inst.Render(), ""
	}
	s.inst.ApplyMove(p, parser)
	render = s.inst.Render()
	over := s.inst.State() == game.StateOver
	obslog.L().Info("session_move",
		zap.String("player_id", p.ID),
		zap.String("code", s.inst.CodeName()),
		zap.Bool("over", over),
	)
	if over {
		return TurnGameOver, render, ""
	}
	return TurnApplied, render, ""
}
