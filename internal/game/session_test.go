package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hailam/chessrules/internal/board"
)

type recorder struct {
	selects  []Selection
	moves    []board.Move
	pending  []board.Square
	over     []Outcome
	rejected []error
}

func (r *recorder) OnSelect(sel Selection)               { r.selects = append(r.selects, sel) }
func (r *recorder) OnMove(m board.Move, _ board.Position) { r.moves = append(r.moves, m) }
func (r *recorder) OnGameOver(o Outcome)                  { r.over = append(r.over, o) }
func (r *recorder) OnRejected(err error)                  { r.rejected = append(r.rejected, err) }

func (r *recorder) OnPromotionPending(sq board.Square, _ board.Color) {
	r.pending = append(r.pending, sq)
}

func newSession(t *testing.T, fen string, rules board.Rules) *Session {
	t.Helper()
	s := NewSession(rules)
	if err := s.LoadFEN(fen); err != nil {
		t.Fatalf("LoadFEN(%q): %v", fen, err)
	}
	return s
}

func play(t *testing.T, s *Session, from, to board.Square) {
	t.Helper()
	if _, err := s.Select(from); err != nil {
		t.Fatalf("Select(%v): %v", from, err)
	}
	if _, err := s.AttemptMove(to); err != nil {
		t.Fatalf("AttemptMove(%v): %v", to, err)
	}
}

func TestSelectIsIdempotent(t *testing.T) {
	s := NewSession(board.DefaultRules())
	before := s.Position()

	first, err := s.Select(board.E2)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	second, err := s.Select(board.E2)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	if len(first.Moves) != 2 || len(second.Moves) != 2 {
		t.Fatalf("moves = %v / %v, want 2 each", first.Moves, second.Moves)
	}
	for i := range first.Moves {
		if first.Moves[i] != second.Moves[i] {
			t.Errorf("move %d differs: %v vs %v", i, first.Moves[i], second.Moves[i])
		}
	}
	if s.Position() != before {
		t.Error("selection mutated the position")
	}
	if s.Phase() != Selected {
		t.Errorf("phase = %v, want selected", s.Phase())
	}
}

func TestInvalidSelection(t *testing.T) {
	s := NewSession(board.DefaultRules())
	rec := &recorder{}
	s.SetObserver(rec)

	for _, sq := range []board.Square{board.E4, board.E7} {
		if _, err := s.Select(sq); !errors.Is(err, ErrInvalidSelection) {
			t.Errorf("Select(%v) err = %v, want ErrInvalidSelection", sq, err)
		}
	}
	if s.Phase() != Idle {
		t.Errorf("phase = %v, want idle", s.Phase())
	}
	if len(rec.rejected) != 2 || len(rec.selects) != 0 {
		t.Errorf("observer saw %d rejections and %d selects", len(rec.rejected), len(rec.selects))
	}
}

func TestIllegalDestinationKeepsSelection(t *testing.T) {
	s := NewSession(board.DefaultRules())
	if _, err := s.Select(board.G1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AttemptMove(board.G3); !errors.Is(err, ErrIllegalDestination) {
		t.Fatalf("err = %v, want ErrIllegalDestination", err)
	}
	sel, ok := s.Selection()
	if !ok || sel.Square != board.G1 {
		t.Errorf("selection = %v, %v; want g1 kept", sel.Square, ok)
	}
	if _, err := s.AttemptMove(board.F3); err != nil {
		t.Errorf("AttemptMove(f3): %v", err)
	}
}

func TestAttemptWithoutSelection(t *testing.T) {
	s := NewSession(board.DefaultRules())
	if _, err := s.AttemptMove(board.E4); !errors.Is(err, ErrNothingSelected) {
		t.Errorf("err = %v, want ErrNothingSelected", err)
	}
}

func TestOpeningMoves(t *testing.T) {
	s := NewSession(board.DefaultRules())
	play(t, s, board.E2, board.E4)
	play(t, s, board.E7, board.E5)

	if got := s.FEN(); got != "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2" {
		t.Errorf("FEN = %s", got)
	}
	if s.Position().EnPassant != board.NoSquare {
		t.Error("no en-passant target expected")
	}
}

func TestPromotionPending(t *testing.T) {
	s := newSession(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1", board.DefaultRules())
	rec := &recorder{}
	s.SetObserver(rec)

	sel, err := s.Select(board.A7)
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Moves) != 4 {
		t.Errorf("got %d promotion moves, want 4", len(sel.Moves))
	}
	if d := sel.Destinations(); len(d) != 1 || d[0] != board.A8 {
		t.Errorf("destinations = %v, want [a8]", d)
	}

	if _, err := s.AttemptMove(board.A8); err != nil {
		t.Fatal(err)
	}
	if s.Phase() != PromotionPending {
		t.Fatalf("phase = %v, want promotion pending", s.Phase())
	}
	pos := s.Position()
	if pos.SideToMove != board.White {
		t.Error("turn passed before promotion was chosen")
	}
	if pos.PieceAt(board.A8) != board.WhitePawn {
		t.Errorf("a8 holds %v, want the pawn", pos.PieceAt(board.A8))
	}
	if sq, ok := s.PendingPromotion(); !ok || sq != board.A8 {
		t.Errorf("PendingPromotion = %v, %v", sq, ok)
	}

	if _, err := s.Select(board.E1); !errors.Is(err, ErrPromotionPending) {
		t.Errorf("Select during promotion: %v", err)
	}
	if err := s.Promote(board.A8, board.King); !errors.Is(err, ErrInvalidPromotion) {
		t.Errorf("Promote(king): %v", err)
	}
	if err := s.Promote(board.B8, board.Queen); !errors.Is(err, ErrNoPromotionPending) {
		t.Errorf("Promote(b8): %v", err)
	}

	if err := s.Promote(board.A8, board.Knight); err != nil {
		t.Fatal(err)
	}
	pos = s.Position()
	if pos.PieceAt(board.A8) != board.WhiteKnight {
		t.Errorf("a8 holds %v, want a knight", pos.PieceAt(board.A8))
	}
	if pos.SideToMove != board.Black || s.Phase() != Idle {
		t.Errorf("side %v phase %v after promotion", pos.SideToMove, s.Phase())
	}
	if len(rec.pending) != 1 || len(rec.moves) != 1 || rec.moves[0].Promotion() != board.Knight {
		t.Errorf("observer: pending %v moves %v", rec.pending, rec.moves)
	}
}

func TestPromotionDisabled(t *testing.T) {
	rules := board.DefaultRules()
	rules.PawnPromotionAllowed = false
	s := newSession(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1", rules)

	play(t, s, board.A7, board.A8)
	pos := s.Position()
	if pos.PieceAt(board.A8) != board.WhitePawn {
		t.Errorf("a8 holds %v, want the pawn", pos.PieceAt(board.A8))
	}
	if pos.SideToMove != board.Black || s.Phase() != Idle {
		t.Errorf("side %v phase %v", pos.SideToMove, s.Phase())
	}
}

func TestFoolsMate(t *testing.T) {
	s := NewSession(board.DefaultRules())
	rec := &recorder{}
	s.SetObserver(rec)

	for _, sq := range []board.Square{
		board.F2, board.F3,
		board.E7, board.E5,
		board.G2, board.G4,
		board.D8, board.H4,
	} {
		if err := s.HandleSquare(sq); err != nil {
			t.Fatalf("HandleSquare(%v): %v", sq, err)
		}
	}

	want := Outcome{Status: Checkmate, Winner: board.Black}
	if s.Outcome() != want {
		t.Errorf("outcome = %v, want %v", s.Outcome(), want)
	}
	if s.Phase() != GameOver {
		t.Errorf("phase = %v", s.Phase())
	}
	if len(rec.over) != 1 || rec.over[0].String() != "Black wins by checkmate" {
		t.Errorf("observer outcomes = %v", rec.over)
	}
	if _, err := s.Select(board.E2); !errors.Is(err, ErrGameOver) {
		t.Errorf("Select after mate: %v", err)
	}
}

func TestStalemateOnLoad(t *testing.T) {
	s := newSession(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", board.DefaultRules())
	if s.Outcome().Status != Stalemate || s.Phase() != GameOver {
		t.Errorf("outcome = %v phase = %v", s.Outcome(), s.Phase())
	}
}

func TestCheckDisabledAvoidsMate(t *testing.T) {
	rules := board.DefaultRules()
	rules.CheckAllowed = false
	s := newSession(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", rules)
	if s.Outcome().IsOver() {
		t.Fatalf("outcome = %v with check disabled", s.Outcome())
	}

	if err := s.SetRules(board.DefaultRules()); err != nil {
		t.Fatal(err)
	}
	if s.Outcome() != (Outcome{Status: Checkmate, Winner: board.White}) {
		t.Errorf("outcome = %v after enabling check", s.Outcome())
	}
}

func TestKingOntoRookCastles(t *testing.T) {
	s := newSession(t, "4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", board.DefaultRules())
	if _, err := s.Select(board.E1); err != nil {
		t.Fatal(err)
	}
	m, err := s.AttemptMove(board.A1)
	if err != nil {
		t.Fatal(err)
	}
	if !m.IsCastling() || m.To() != board.C1 {
		t.Errorf("move = %v, want queenside castle", m)
	}
	pos := s.Position()
	if pos.PieceAt(board.C1) != board.WhiteKing || pos.PieceAt(board.D1) != board.WhiteRook {
		t.Errorf("board after castling:\n%s", pos.String())
	}
}

func TestHandleSquareKingOntoRook(t *testing.T) {
	s := newSession(t, "4k3/8/8/8/8/8/8/R3K2R w KQ - 0 1", board.DefaultRules())
	if err := s.HandleSquare(board.E1); err != nil {
		t.Fatal(err)
	}
	if err := s.HandleSquare(board.H1); err != nil {
		t.Fatal(err)
	}
	pos := s.Position()
	if pos.PieceAt(board.G1) != board.WhiteKing || pos.PieceAt(board.F1) != board.WhiteRook {
		t.Errorf("board after castling:\n%s", pos.String())
	}
	if s.Phase() != Idle || pos.SideToMove != board.Black {
		t.Errorf("phase %v, side %v after castling", s.Phase(), pos.SideToMove)
	}

	// Without the right the rook is simply selected.
	s = newSession(t, "4k3/8/8/8/8/8/8/R3K2R w - - 0 1", board.DefaultRules())
	if err := s.HandleSquare(board.E1); err != nil {
		t.Fatal(err)
	}
	if err := s.HandleSquare(board.H1); err != nil {
		t.Fatal(err)
	}
	sel, ok := s.Selection()
	if !ok || sel.Square != board.H1 {
		t.Errorf("selection = %v %v, want the h1 rook", sel.Square, ok)
	}
}

func TestLoadFENErrorsLeaveStateUnchanged(t *testing.T) {
	s := NewSession(board.DefaultRules())
	play(t, s, board.E2, board.E4)
	if _, err := s.Select(board.E7); err != nil {
		t.Fatal(err)
	}
	before := s.Position()

	tests := []struct {
		fen  string
		want error
	}{
		{"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1 extra garbage", board.ErrMalformedFEN},
		{"not a fen", board.ErrMalformedFEN},
		{"4k3/8/8/8/8/8/8/4KK2 w - - 0 1", board.ErrInvalidPosition},
		{"P3k3/8/8/8/8/8/8/4K3 w - - 0 1", board.ErrInvalidPosition},
	}
	for _, tc := range tests {
		if err := s.LoadFEN(tc.fen); !errors.Is(err, tc.want) {
			t.Errorf("LoadFEN(%q) err = %v, want %v", tc.fen, err, tc.want)
		}
	}

	if s.Position() != before {
		t.Error("position changed after rejected FEN")
	}
	if sel, ok := s.Selection(); !ok || sel.Square != board.E7 {
		t.Error("selection lost after rejected FEN")
	}
}

func TestSetRulesDuringPromotion(t *testing.T) {
	s := newSession(t, "4k3/P7/8/8/8/8/8/4K3 w - - 0 1", board.DefaultRules())
	play(t, s, board.A7, board.A8)
	if err := s.SetRules(board.Rules{}); !errors.Is(err, ErrPromotionPending) {
		t.Errorf("err = %v, want ErrPromotionPending", err)
	}
}

func TestAbort(t *testing.T) {
	s := NewSession(board.DefaultRules())
	if err := s.Abort(); err != nil {
		t.Fatal(err)
	}
	if s.Outcome().Status != Aborted || s.Phase() != GameOver {
		t.Errorf("outcome = %v phase = %v", s.Outcome(), s.Phase())
	}
	if err := s.Abort(); !errors.Is(err, ErrGameOver) {
		t.Errorf("second Abort: %v", err)
	}

	s.Reset()
	if s.Phase() != Idle || s.FEN() != board.StartFEN {
		t.Errorf("after Reset: phase %v FEN %s", s.Phase(), s.FEN())
	}
}

// firstMove plays the first legal move it finds.
var firstMove = OpponentFunc(func(_ context.Context, pos board.Position, rules board.Rules) (board.Move, error) {
	moves := board.LegalMovesAll(&pos, pos.SideToMove, rules)
	if len(moves) == 0 {
		return board.NoMove, errors.New("no legal move")
	}
	return moves[0], nil
})

func TestOpponentTurn(t *testing.T) {
	s := NewSession(board.DefaultRules())
	s.SetOpponent(firstMove, board.Black)

	if err := s.StartOpponent(context.Background()); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("StartOpponent on White's turn: %v", err)
	}
	play(t, s, board.E2, board.E4)

	if _, err := s.Select(board.E7); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("human Select on opponent's turn: %v", err)
	}
	if err := s.StartOpponent(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !s.Thinking() {
		t.Error("Thinking should be true during search")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m, err := s.WaitOpponent(ctx)
	if err != nil {
		t.Fatalf("WaitOpponent: %v", err)
	}
	if s.Thinking() {
		t.Error("Thinking should be false after the result")
	}
	pos := s.Position()
	if pos.SideToMove != board.White || pos.PieceAt(m.To()).Color() != board.Black {
		t.Errorf("opponent move %v not applied", m)
	}
}

func TestHumanInputRejectedWhileThinking(t *testing.T) {
	release := make(chan struct{})
	blocked := OpponentFunc(func(ctx context.Context, pos board.Position, rules board.Rules) (board.Move, error) {
		<-release
		return firstMove(ctx, pos, rules)
	})

	s := NewSession(board.DefaultRules())
	s.SetOpponent(blocked, board.White)
	if err := s.StartOpponent(context.Background()); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := s.PollOpponent(); ok || err != nil {
		t.Errorf("PollOpponent before result = %v, %v", ok, err)
	}
	if _, err := s.Select(board.E2); !errors.Is(err, ErrOpponentThinking) {
		t.Errorf("Select while thinking: %v", err)
	}
	if err := s.SetRules(board.Rules{}); !errors.Is(err, ErrOpponentThinking) {
		t.Errorf("SetRules while thinking: %v", err)
	}
	if err := s.StartOpponent(context.Background()); !errors.Is(err, ErrOpponentThinking) {
		t.Errorf("second StartOpponent: %v", err)
	}

	close(release)
	if _, err := s.WaitOpponent(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Position().SideToMove != board.Black {
		t.Error("opponent move not applied")
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	blocked := OpponentFunc(func(ctx context.Context, pos board.Position, rules board.Rules) (board.Move, error) {
		<-release
		return firstMove(ctx, pos, rules)
	})

	s := NewSession(board.DefaultRules())
	s.SetOpponent(blocked, board.White)
	if err := s.StartOpponent(context.Background()); err != nil {
		t.Fatal(err)
	}

	const fen = "4k3/8/8/8/8/8/4P3/4K3 b - - 0 1"
	if err := s.LoadFEN(fen); err != nil {
		t.Fatal(err)
	}
	close(release)

	if _, err := s.WaitOpponent(context.Background()); !errors.Is(err, ErrStaleResult) {
		t.Fatalf("err = %v, want ErrStaleResult", err)
	}
	if s.FEN() != fen {
		t.Errorf("stale result changed the position: %s", s.FEN())
	}
	if _, _, err := s.PollOpponent(); !errors.Is(err, ErrNoSearch) {
		t.Errorf("PollOpponent after collection: %v", err)
	}
}

func TestOpponentPromotes(t *testing.T) {
	underpromote := OpponentFunc(func(_ context.Context, pos board.Position, rules board.Rules) (board.Move, error) {
		return board.NewPromotion(board.A2, board.A1, board.Rook, 0), nil
	})
	s := newSession(t, "4k3/8/8/8/8/8/p7/7K b - - 0 1", board.DefaultRules())
	s.SetOpponent(underpromote, board.Black)

	if err := s.StartOpponent(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.WaitOpponent(context.Background()); err != nil {
		t.Fatal(err)
	}
	pos := s.Position()
	if pos.PieceAt(board.A1) != board.BlackRook || pos.SideToMove != board.White {
		t.Errorf("after opponent promotion:\n%s", pos.String())
	}
}

func TestOpponentIllegalMoveRejected(t *testing.T) {
	bogus := OpponentFunc(func(context.Context, board.Position, board.Rules) (board.Move, error) {
		return board.NewMove(board.E2, board.E5, 0), nil
	})
	s := NewSession(board.DefaultRules())
	s.SetOpponent(bogus, board.White)
	if err := s.StartOpponent(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.WaitOpponent(context.Background()); !errors.Is(err, ErrIllegalDestination) {
		t.Errorf("err = %v, want ErrIllegalDestination", err)
	}
	if s.FEN() != board.StartFEN {
		t.Error("illegal opponent move changed the position")
	}
}

func TestStartOpponentAfterGameOver(t *testing.T) {
	s := newSession(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", board.DefaultRules())
	s.SetOpponent(firstMove, board.Black)
	if err := s.StartOpponent(context.Background()); !errors.Is(err, ErrGameOver) {
		t.Errorf("err = %v, want ErrGameOver", err)
	}
}
