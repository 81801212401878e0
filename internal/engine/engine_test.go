package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hailam/chessrules/internal/board"
)

func mustPos(t *testing.T, fen string) board.Position {
	t.Helper()
	pos, err := board.LoadFEN(fen)
	if err != nil {
		t.Fatalf("LoadFEN(%q): %v", fen, err)
	}
	return pos
}

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(4)
	eng.SetDifficulty(Easy)

	move, err := eng.ChooseMove(context.Background(), pos, board.DefaultRules())
	if err != nil {
		t.Fatalf("ChooseMove: %v", err)
	}
	if !board.IsLegal(&pos, move, board.DefaultRules()) {
		t.Errorf("ChooseMove returned illegal move %v", move)
	}
	t.Logf("Best move: %s", move)
}

func TestFindsMateInOne(t *testing.T) {
	pos := mustPos(t, "6k1/5ppp/8/8/8/8/8/R3K3 w - - 0 1")
	eng := NewEngine(4)

	move, err := eng.SearchWithLimits(context.Background(), pos, board.DefaultRules(), SearchLimits{Depth: 2})
	if err != nil {
		t.Fatalf("SearchWithLimits: %v", err)
	}
	if move.String() != "a1a8" {
		t.Errorf("got %v, want a1a8", move)
	}
}

func TestCapturesHangingQueen(t *testing.T) {
	pos := mustPos(t, "4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 1")
	eng := NewEngine(4)

	move, err := eng.SearchWithLimits(context.Background(), pos, board.DefaultRules(), SearchLimits{Depth: 2})
	if err != nil {
		t.Fatalf("SearchWithLimits: %v", err)
	}
	if move.String() != "d2d5" {
		t.Errorf("got %v, want d2d5", move)
	}
}

func TestNoLegalMove(t *testing.T) {
	eng := NewEngine(1)
	for _, fen := range []string{
		"R6k/6pp/8/8/8/8/8/K7 b - - 0 1", // checkmate
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", // stalemate
	} {
		_, err := eng.ChooseMove(context.Background(), mustPos(t, fen), board.DefaultRules())
		if !errors.Is(err, ErrNoLegalMove) {
			t.Errorf("%s: err = %v, want ErrNoLegalMove", fen, err)
		}
	}
}

func TestRespectsRules(t *testing.T) {
	pos := mustPos(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	rules := board.DefaultRules()
	rules.CastleAllowed = false

	move, err := NewEngine(1).SearchWithLimits(context.Background(), pos, rules, SearchLimits{Depth: 2})
	if err != nil {
		t.Fatalf("SearchWithLimits: %v", err)
	}
	if move.IsCastling() {
		t.Errorf("engine castled with castling disabled: %v", move)
	}
	if !board.IsLegal(&pos, move, rules) {
		t.Errorf("illegal move %v", move)
	}
}

func TestCancelledSearch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(1).ChooseMove(ctx, board.NewPosition(), board.DefaultRules())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSearchHonoursMoveTime(t *testing.T) {
	eng := NewEngine(4)
	start := time.Now()
	_, err := eng.SearchWithLimits(context.Background(), board.NewPosition(), board.DefaultRules(),
		SearchLimits{MoveTime: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("SearchWithLimits: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("search took %v", elapsed)
	}
}

func TestPerft(t *testing.T) {
	pos := board.NewPosition()
	if got := Perft(pos, board.DefaultRules(), 3); got != 8902 {
		t.Errorf("Perft(3) = %d, want 8902", got)
	}

	var total uint64
	for _, e := range Divide(pos, board.DefaultRules(), 2) {
		total += e.Nodes
	}
	if total != 400 {
		t.Errorf("Divide(2) total = %d, want 400", total)
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0.00"},
		{150, "1.50"},
		{-35, "-0.35"},
		{MateScore - 1, "Mate in 1"},
		{-MateScore + 2, "Mated in 1"},
	}
	for _, tc := range tests {
		if got := ScoreToString(tc.score); got != tc.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		got, err := ParseDifficulty(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDifficulty(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDifficulty("impossible"); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}
