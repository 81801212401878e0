package ui

import (
	"testing"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/storage"
)

func TestApplyRulesRejectedDuringPromotion(t *testing.T) {
	g := &Game{
		session: game.NewSession(board.DefaultRules()),
		prefs:   storage.DefaultPreferences(),
	}
	if err := g.session.LoadFEN("4k3/P7/8/8/8/8/8/4K3 w - - 0 1"); err != nil {
		t.Fatalf("LoadFEN: %v", err)
	}
	if _, err := g.session.Select(board.A7); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := g.session.AttemptMove(board.A8); err != nil {
		t.Fatalf("AttemptMove: %v", err)
	}

	off, _ := board.DefaultRules().Set("castle", false)
	if g.applyRules(off) {
		t.Fatal("rule change accepted while a promotion is pending")
	}
	if g.session.Rules() != board.DefaultRules() {
		t.Errorf("session rules = %v, want defaults", g.session.Rules())
	}
	if g.prefs.Rules != board.DefaultRules() {
		t.Errorf("preferences rules = %v, want defaults", g.prefs.Rules)
	}

	if err := g.session.Promote(board.A8, board.Queen); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if !g.applyRules(off) {
		t.Fatal("rule change rejected between turns")
	}
	if g.prefs.Rules != off || g.session.Rules() != off {
		t.Errorf("rules not applied: session %v, preferences %v", g.session.Rules(), g.prefs.Rules)
	}
}
