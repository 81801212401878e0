package board

import (
	"errors"
	"math/rand"
	"testing"
)

func hasMove(moves []Move, uci string) bool {
	_, ok := FindMove(moves, uci)
	return ok
}

// TestOpeningDoublePushes plays 1.e4 e5: both legal, and no en-passant
// target remains because no pawn could take either double step.
func TestOpeningDoublePushes(t *testing.T) {
	pos := NewPosition()
	rules := DefaultRules()

	for _, uci := range []string{"e2e4", "e7e5"} {
		m, ok := FindMove(LegalMovesAll(&pos, pos.SideToMove, rules), uci)
		if !ok {
			t.Fatalf("%s should be legal", uci)
		}
		pos.Apply(m)
	}

	if pos.EnPassant != NoSquare {
		t.Errorf("EnPassant = %v, want none", pos.EnPassant)
	}
	if got := pos.ToFEN(); got != "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2" {
		t.Errorf("FEN after 1.e4 e5 = %s", got)
	}
}

func TestKingsideCastling(t *testing.T) {
	rules := DefaultRules()

	pos := mustParse(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	m, ok := FindMove(LegalMoves(&pos, E1, rules), "e1g1")
	if !ok {
		t.Fatal("kingside castle should be legal")
	}
	if !m.IsCastling() {
		t.Error("e1g1 should carry the castling flag")
	}

	pos.Apply(m)
	if pos.PieceAt(G1) != WhiteKing || pos.PieceAt(F1) != WhiteRook || !pos.IsEmpty(H1) {
		t.Errorf("castling did not relocate king and rook:%s", pos.String())
	}
	if pos.CastlingRights != NoCastling {
		t.Errorf("CastlingRights = %v, want -", pos.CastlingRights)
	}

	// f1 attacked by the rook on f8
	attacked := mustParse(t, "4kr2/8/8/8/8/8/8/4K2R w K - 0 1")
	if hasMove(LegalMoves(&attacked, E1, rules), "e1g1") {
		t.Error("castling through an attacked square should be illegal")
	}

	// The transit condition holds even when check is not enforced.
	rules.CheckAllowed = false
	if hasMove(LegalMoves(&attacked, E1, rules), "e1g1") {
		t.Error("castling through an attacked square should be illegal with check off")
	}
}

func TestCastlingConditions(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		rules func(Rules) Rules
		uci   string
		want  bool
	}{
		{"queenside", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", nil, "e1c1", true},
		{"black kingside", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", nil, "e8g8", true},
		{"no right", "r3k2r/8/8/8/8/8/8/R3K2R w Kkq - 0 1", nil, "e1c1", false},
		{"blocked b1", "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1", nil, "e1c1", false},
		{"b1 attacked is fine", "1r2k3/8/8/8/8/8/8/R3K3 w Q - 0 1", nil, "e1c1", true},
		{"in check", "4k3/8/8/8/8/8/4r3/R3K2R w KQ - 0 1", nil, "e1g1", false},
		{"rook missing", "4k3/8/8/8/8/8/8/4K3 w K - 0 1", nil, "e1g1", false},
		{"castling disabled", "4k3/8/8/8/8/8/8/4K2R w K - 0 1", func(r Rules) Rules { r.CastleAllowed = false; return r }, "e1g1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rules := DefaultRules()
			if tc.rules != nil {
				rules = tc.rules(rules)
			}
			pos := mustParse(t, tc.fen)
			if got := hasMove(LegalMovesAll(&pos, pos.SideToMove, rules), tc.uci); got != tc.want {
				t.Errorf("%s legal = %v, want %v", tc.uci, got, tc.want)
			}
		})
	}
}

func TestBackRankMate(t *testing.T) {
	pos := mustParse(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	rules := DefaultRules()

	if moves := LegalMovesAll(&pos, Black, rules); len(moves) != 0 {
		t.Errorf("expected no legal moves, got %v", moves)
	}
	if !pos.IsCheckmate(rules) {
		t.Error("position should be checkmate")
	}
	if pos.IsStalemate(rules) {
		t.Error("checkmate is not stalemate")
	}

	// Without check enforcement the king may walk into the rook's line.
	rules.CheckAllowed = false
	moves := LegalMovesAll(&pos, Black, rules)
	if len(moves) == 0 {
		t.Fatal("expected moves with check disabled")
	}
	if !hasMove(moves, "h8g8") {
		t.Error("h8g8 should be allowed with check disabled")
	}
	if pos.IsCheckmate(rules) {
		t.Error("checkmate is never reported with check disabled")
	}
}

func TestNotMateWhenKingCanCapture(t *testing.T) {
	pos := mustParse(t, "6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	rules := DefaultRules()

	if pos.IsCheckmate(rules) {
		t.Error("king can capture the unprotected rook")
	}
	if !hasMove(LegalMovesAll(&pos, Black, rules), "h8g8") {
		t.Error("h8g8 should be legal")
	}
}

func TestFoolsMateAndStalemate(t *testing.T) {
	rules := DefaultRules()

	mate := mustParse(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	if !mate.IsCheckmate(rules) {
		t.Error("fool's mate should be checkmate")
	}

	stale := mustParse(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if !stale.IsStalemate(rules) {
		t.Error("position should be stalemate")
	}
	if stale.IsCheckmate(rules) {
		t.Error("stalemate is not checkmate")
	}
}

func TestPins(t *testing.T) {
	rules := DefaultRules()

	pos := mustParse(t, "4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1")
	if !IsPinned(&pos, E2, rules) {
		t.Error("bishop on e2 should be pinned")
	}
	if moves := LegalMoves(&pos, E2, rules); len(moves) != 0 {
		t.Errorf("pinned bishop has moves %v", moves)
	}
	if IsPinned(&pos, E1, rules) {
		t.Error("kings are never pinned")
	}

	// A rook pinned on the file keeps its moves along it.
	pos = mustParse(t, "4k3/4r3/8/8/8/8/4R3/4K3 w - - 0 1")
	if !IsPinned(&pos, E2, rules) {
		t.Error("rook on e2 should be pinned")
	}
	if moves := LegalMoves(&pos, E2, rules); len(moves) != 5 {
		t.Errorf("pinned rook has %d moves, want 5 (e3-e7)", len(moves))
	}

	rules.CheckAllowed = false
	if IsPinned(&pos, E2, rules) {
		t.Error("nothing is pinned when check is not enforced")
	}
}

func TestPromotionMoves(t *testing.T) {
	pos := mustParse(t, "3r4/4P3/8/8/8/8/8/k3K3 w - - 0 1")
	rules := DefaultRules()

	moves := LegalMoves(&pos, E7, rules)
	if len(moves) != 8 {
		t.Fatalf("got %d moves %v, want 4 pushes and 4 captures", len(moves), moves)
	}
	for _, uci := range []string{"e7e8q", "e7e8r", "e7e8b", "e7e8n", "e7d8q", "e7d8n"} {
		if !hasMove(moves, uci) {
			t.Errorf("missing %s", uci)
		}
	}

	rules.PawnPromotionAllowed = false
	moves = LegalMoves(&pos, E7, rules)
	if len(moves) != 2 || !hasMove(moves, "e7e8") || !hasMove(moves, "e7d8") {
		t.Fatalf("got %v, want e7e8 and e7d8 without promotion", moves)
	}

	m, _ := FindMove(moves, "e7e8")
	pos.Apply(m)
	if pos.PieceAt(E8) != WhitePawn {
		t.Errorf("pawn should stay a pawn, got %v", pos.PieceAt(E8))
	}
	pos.SideToMove = White
	if moves := LegalMoves(&pos, E8, rules); len(moves) != 0 {
		t.Errorf("pawn on the last rank has moves %v", moves)
	}
}

func TestEnPassant(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 1")
	rules := DefaultRules()

	m, ok := FindMove(LegalMoves(&pos, D5, rules), "d5e6")
	if !ok || !m.IsEnPassant() || !m.IsCapture() {
		t.Fatalf("d5e6 should be an en passant capture, got %v ok=%v", m, ok)
	}
	pos.Apply(m)
	if !pos.IsEmpty(E5) || pos.PieceAt(E6) != WhitePawn {
		t.Errorf("en passant did not remove the captured pawn:%s", pos.String())
	}

	pos = mustParse(t, "4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 1")
	rules.EnPassantAllowed = false
	if hasMove(LegalMoves(&pos, D5, rules), "d5e6") {
		t.Error("en passant should be unavailable when disabled")
	}
}

func TestEnPassantNeedsPushedPawn(t *testing.T) {
	// parses, but fails validation: nothing stands on e5
	pos := mustParse(t, "4k3/8/8/3P4/8/8/8/4K3 w - e6 0 1")
	if err := pos.Validate(); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("Validate() = %v, want ErrInvalidPosition", err)
	}
	for _, m := range LegalMoves(&pos, D5, DefaultRules()) {
		if m.IsEnPassant() || m.IsCapture() {
			t.Errorf("generated %v with no pawn to capture", m)
		}
	}
}

// TestEnPassantExpiry checks the target lasts exactly one move.
func TestEnPassantExpiry(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/3p4/8/4P3/4K3 w - - 0 1")
	rules := DefaultRules()

	pos.Apply(NewMove(E2, E4, 0))
	if pos.EnPassant != E3 {
		t.Fatalf("EnPassant = %v, want e3", pos.EnPassant)
	}
	if !hasMove(LegalMoves(&pos, D4, rules), "d4e3") {
		t.Fatal("d4e3 en passant should be available immediately")
	}

	pos.Apply(NewMove(E8, D8, 0))
	pos.Apply(NewMove(E1, D1, 0))
	if pos.EnPassant != NoSquare {
		t.Errorf("EnPassant = %v, want none", pos.EnPassant)
	}
	if hasMove(PseudoLegalMoves(&pos, D4, rules), "d4e3") {
		t.Error("expired en passant capture still generated")
	}
}

// randomGame plays up to plies random legal moves from pos and calls visit
// with each position and the move about to be played.
func randomGame(rng *rand.Rand, pos Position, rules Rules, plies int, visit func(Position, []Move)) {
	for i := 0; i < plies; i++ {
		moves := LegalMovesAll(&pos, pos.SideToMove, rules)
		visit(pos, moves)
		if len(moves) == 0 {
			return
		}
		pos.Apply(moves[rng.Intn(len(moves))])
	}
}

func TestKingNeverCaptured(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	checkOff := DefaultRules()
	checkOff.CheckAllowed = false

	for _, rules := range []Rules{DefaultRules(), checkOff} {
		for game := 0; game < 20; game++ {
			randomGame(rng, NewPosition(), rules, 120, func(pos Position, moves []Move) {
				for _, m := range moves {
					if pos.PieceAt(m.To()).Type() == King {
						t.Fatalf("%v captures a king in %s", m, pos.ToFEN())
					}
				}
			})
		}
	}
}

func TestFENRoundTripReachable(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for game := 0; game < 20; game++ {
		randomGame(rng, NewPosition(), DefaultRules(), 150, func(pos Position, _ []Move) {
			fen := pos.ToFEN()
			got, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN(%q): %v", fen, err)
			}
			if got != pos {
				t.Fatalf("round trip changed %q into %q", fen, got.ToFEN())
			}
		})
	}
}

func TestCastlingRightsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for game := 0; game < 30; game++ {
		prev := AllCastling
		randomGame(rng, mustParse(t, "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1"), DefaultRules(), 80,
			func(pos Position, _ []Move) {
				if pos.CastlingRights&^prev != 0 {
					t.Fatalf("castling rights regained: %v after %v", pos.CastlingRights, prev)
				}
				prev = pos.CastlingRights
			})
	}
}

func TestRookCaptureClearsRights(t *testing.T) {
	pos := mustParse(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	pos.Apply(NewMove(A1, A8, FlagCapture))
	if got := pos.CastlingRights.String(); got != "Kk" {
		t.Errorf("CastlingRights = %s, want Kk", got)
	}
}

func TestAttackedSquares(t *testing.T) {
	pos := mustParse(t, "4k3/8/8/8/3R4/8/8/4K3 w - - 0 1")
	attacked := AttackedSquares(&pos, White)

	for _, sq := range []Square{D1, D8, A4, H4, D2, E2, F1} {
		if !attacked.IsSet(sq) {
			t.Errorf("%v should be attacked", sq)
		}
	}
	if attacked.IsSet(E4 + 8) {
		t.Errorf("%v should not be attacked", E4+8)
	}

	// Sliders stop at, and include, the first blocker of either color.
	pos = mustParse(t, "4k3/8/8/8/R2p3r/8/8/4K3 w - - 0 1")
	attacked = AttackedSquares(&pos, White)
	if !attacked.IsSet(D4) || attacked.IsSet(E4) {
		t.Error("rook attack should stop at d4")
	}
}
