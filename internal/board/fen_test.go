package board

import (
	"errors"
	"testing"
)

func TestParseFENStartPosition(t *testing.T) {
	pos := mustParse(t, StartFEN)

	if pos.SideToMove != White {
		t.Errorf("SideToMove = %v, want White", pos.SideToMove)
	}
	if pos.CastlingRights != AllCastling {
		t.Errorf("CastlingRights = %v, want KQkq", pos.CastlingRights)
	}
	if pos.EnPassant != NoSquare {
		t.Errorf("EnPassant = %v, want -", pos.EnPassant)
	}
	if pos.PieceAt(E1) != WhiteKing || pos.PieceAt(D8) != BlackQueen {
		t.Error("pieces misplaced")
	}
	if pos.PieceCount() != 32 {
		t.Errorf("PieceCount = %d, want 32", pos.PieceCount())
	}
	if got := pos.ToFEN(); got != StartFEN {
		t.Errorf("ToFEN = %q, want %q", got, StartFEN)
	}
}

func TestParseFENMalformed(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"four fields", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"},
		{"extra garbage", StartFEN + " extra garbage"},
		{"seven ranks", "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"long rank", "rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"short rank", "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"bad piece", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNX w KQkq - 0 1"},
		{"bad side", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1"},
		{"bad castling", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkx - 0 1"},
		{"repeated castling", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KK - 0 1"},
		{"bad en passant", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1"},
		{"en passant rank", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1"},
		{"negative clock", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1"},
		{"zero fullmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0"},
		{"word clock", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFEN(tc.fen)
			if !errors.Is(err, ErrMalformedFEN) {
				t.Errorf("ParseFEN(%q) error = %v, want ErrMalformedFEN", tc.fen, err)
			}
			if IsValidFEN(tc.fen) {
				t.Errorf("IsValidFEN(%q) = true", tc.fen)
			}
		})
	}
}

func TestValidateFEN(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want error
	}{
		{"start", StartFEN, nil},
		{"kiwipete", kiwipeteFEN, nil},
		{"two white kings", "4k3/8/8/8/8/8/8/3KK3 w - - 0 1", ErrInvalidPosition},
		{"no black king", "8/8/8/8/8/8/8/4K3 w - - 0 1", ErrInvalidPosition},
		{"pawn on rank 8", "P3k3/8/8/8/8/8/8/4K3 w - - 0 1", ErrInvalidPosition},
		{"pawn on rank 1", "4k3/8/8/8/8/8/8/p3K3 w - - 0 1", ErrInvalidPosition},
		{"too many pieces", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR/ w KQkq - 0 1", ErrMalformedFEN},
		{"thirty three", "rnbqkbnr/pppppppp/8/8/8/7N/PPPPPPPP/RNBQKBNR w KQkq - 0 1", ErrInvalidPosition},
		{"side to move in check", "4k3/8/8/8/8/8/8/4R1K1 b - - 0 1", nil},
		{"opponent king attacked", "4k3/4R3/8/8/8/8/8/4K3 w - - 0 1", ErrInvalidPosition},
		{"en passant after double push", "4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 1", nil},
		{"en passant for the wrong side", "4k3/8/8/3Pp3/8/8/8/4K3 w - e3 0 1", ErrMalformedFEN},
		{"en passant without a pawn", "4k3/8/8/8/8/8/3P4/4K3 b - e3 0 1", ErrInvalidPosition},
		{"en passant square occupied", "4k3/8/4n3/3Pp3/8/8/8/4K3 w - e6 0 1", ErrInvalidPosition},
		{"en passant origin occupied", "4k3/4n3/8/3Pp3/8/8/8/4K3 w - e6 0 1", ErrInvalidPosition},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFEN(tc.fen)
			if tc.want == nil {
				if err != nil {
					t.Errorf("ValidateFEN: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("ValidateFEN error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestLoadFENDistinguishesErrors(t *testing.T) {
	_, err := LoadFEN("4k3/8/8/8/8/8/8/3KK3 w - - 0 1")
	if !errors.Is(err, ErrInvalidPosition) || errors.Is(err, ErrMalformedFEN) {
		t.Errorf("two kings: got %v", err)
	}

	_, err = LoadFEN("not a fen")
	if !errors.Is(err, ErrMalformedFEN) || errors.Is(err, ErrInvalidPosition) {
		t.Errorf("garbage: got %v", err)
	}
}

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		kiwipeteFEN,
		position3FEN,
		epPinFEN,
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2",
		"4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R b Kq - 12 40",
	}

	for _, fen := range fens {
		pos := mustParse(t, fen)
		if got := pos.ToFEN(); got != fen {
			t.Errorf("ToFEN() = %q, want %q", got, fen)
		}
	}
}

func TestHash(t *testing.T) {
	a := NewPosition()
	b := NewPosition()
	if a.Hash() != b.Hash() {
		t.Error("equal positions hash differently")
	}

	b.Apply(NewMove(G1, F3, 0))
	if a.Hash() == b.Hash() {
		t.Error("different positions hash alike")
	}

	// Knights out and back: same placement, clocks differ.
	b.Apply(NewMove(G8, F6, 0))
	b.Apply(NewMove(F3, G1, 0))
	b.Apply(NewMove(F6, G8, 0))
	if a.Hash() != b.Hash() {
		t.Error("hash depends on the clocks")
	}
	if a == b {
		t.Error("positions with different clocks compare equal")
	}
}
