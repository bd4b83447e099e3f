package game

import (
	"errors"
	"testing"
)

type stubInstance struct{ code string }

func (s *stubInstance) CodeName() string                        { return s.code }
func (s *stubInstance) DisplayName() string                     { return s.code }
func (s *stubInstance) AddPlayer(Player)                        {}
func (s *stubInstance) WaitingForPlayer() bool                  { return true }
func (s *stubInstance) IsTurnOf(Player) bool                    { return false }
func (s *stubInstance) NewMoveParser() MoveParser               { return nil }
func (s *stubInstance) IsValidMove(Player, MoveParser) bool     { return false }
func (s *stubInstance) ApplyMove(Player, MoveParser)            {}
func (s *stubInstance) State() State                            { return StateWaitingForPlayer }
func (s *stubInstance) Render() string                          { return s.code }

func stubFactory(code string) Factory {
	return Factory{Code: code, Name: "Game " + code, New: func() Instance { return &stubInstance{code: code} }}
}

func TestListSortedByCode(t *testing.T) {
	r := NewRegistry(stubFactory("zz"), stubFactory("aa"), stubFactory("mm"))
	got := r.List()
	if len(got) != 3 { t.Fatalf("expected 3 variants, got %d", len(got)) }
	if got[0].Code != "aa" || got[1].Code != "mm" || got[2].Code != "zz" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestNewUnknownCode(t *testing.T) {
	r := NewRegistry(stubFactory("aa"))
	if _, err := r.New("nope"); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestNewNormalizesCode(t *testing.T) {
	r := NewRegistry(stubFactory("AA"))
	if _, err := r.New("  aA "); err != nil { t.Fatalf("New: %v", err) }
	if !r.Has("aa") { t.Fatalf("Has should accept normalized code") }
}

func TestNilFactoryResult(t *testing.T) {
	r := NewRegistry(Factory{Code: "bad", Name: "Bad", New: func() Instance { return nil }})
	if _, err := r.New("bad"); !errors.Is(err, ErrInstanceFailed) {
		t.Fatalf("expected ErrInstanceFailed, got %v", err)
	}
}

func TestDuplicateCodeKeepsFirst(t *testing.T) {
	first := Factory{Code: "x", Name: "First", New: func() Instance { return &stubInstance{code: "x"} }}
	second := Factory{Code: "x", Name: "Second", New: func() Instance { return nil }}
	r := NewRegistry(first, second)
	list := r.List()
	if len(list) != 1 || list[0].Name != "First" { t.Fatalf("expected first registration kept: %v", list) }
}
