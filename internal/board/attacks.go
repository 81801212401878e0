package board

// Pre-computed attack tables for non-sliding pieces
var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard // [Color][Square]
)

// Step directions as (file, rank) deltas.
var (
	knightSteps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
	bishopRays  = [4][2]int{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
	rookRays    = [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
)

func init() {
	initStepAttacks()
	initPawnAttacks()
}

func initStepAttacks() {
	for sq := A1; sq <= H8; sq++ {
		for _, d := range knightSteps {
			if to, ok := sq.Offset(d[0], d[1]); ok {
				knightAttacks[sq] |= SquareBB(to)
			}
		}
		for _, d := range kingSteps {
			if to, ok := sq.Offset(d[0], d[1]); ok {
				kingAttacks[sq] |= SquareBB(to)
			}
		}
	}
}

func initPawnAttacks() {
	for sq := A1; sq <= H8; sq++ {
		for _, df := range []int{-1, 1} {
			if to, ok := sq.Offset(df, 1); ok {
				pawnAttacks[White][sq] |= SquareBB(to)
			}
			if to, ok := sq.Offset(df, -1); ok {
				pawnAttacks[Black][sq] |= SquareBB(to)
			}
		}
	}
}

// KnightAttacks returns the knight attack set for a square.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack set for a square.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// PawnAttacks returns the squares a pawn of color c on sq captures on.
func PawnAttacks(sq Square, c Color) Bitboard {
	return pawnAttacks[c][sq]
}

// rayAttacks walks each ray from sq up to and including the first occupied
// square.
func rayAttacks(sq Square, occupied Bitboard, rays [4][2]int) Bitboard {
	var attacks Bitboard
	for _, d := range rays {
		to, ok := sq.Offset(d[0], d[1])
		for ok {
			attacks |= SquareBB(to)
			if occupied.IsSet(to) {
				break
			}
			to, ok = to.Offset(d[0], d[1])
		}
	}
	return attacks
}

// BishopAttacks returns the bishop attack set for a square with given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return rayAttacks(sq, occupied, bishopRays)
}

// RookAttacks returns the rook attack set for a square with given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return rayAttacks(sq, occupied, rookRays)
}

// QueenAttacks returns the queen attack set for a square with given occupancy.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// pieceAttacks returns the squares the piece on sq attacks.
func pieceAttacks(piece Piece, sq Square, occupied Bitboard) Bitboard {
	switch piece.Type() {
	case Pawn:
		return pawnAttacks[piece.Color()][sq]
	case Knight:
		return knightAttacks[sq]
	case Bishop:
		return BishopAttacks(sq, occupied)
	case Rook:
		return RookAttacks(sq, occupied)
	case Queen:
		return QueenAttacks(sq, occupied)
	case King:
		return kingAttacks[sq]
	}
	return Empty
}

// AttackedSquares returns every square a piece of color by could capture
// on. Sliding pieces are blocked by every piece, kings included, and the
// blocking square itself is attacked.
func AttackedSquares(pos *Position, by Color) Bitboard {
	occupied := pos.Occupied()
	var attacked Bitboard
	for sq, piece := range pos.Board {
		if piece == NoPiece || piece.Color() != by {
			continue
		}
		attacked |= pieceAttacks(piece, Square(sq), occupied)
	}
	return attacked
}

// AttackersByColor returns the squares of pieces of color c attacking sq.
func (p *Position) AttackersByColor(sq Square, c Color) Bitboard {
	occupied := p.Occupied()
	return (pawnAttacks[c.Other()][sq] & p.Pieces(c, Pawn)) |
		(knightAttacks[sq] & p.Pieces(c, Knight)) |
		(kingAttacks[sq] & p.Pieces(c, King)) |
		(BishopAttacks(sq, occupied) & (p.Pieces(c, Bishop) | p.Pieces(c, Queen))) |
		(RookAttacks(sq, occupied) & (p.Pieces(c, Rook) | p.Pieces(c, Queen)))
}

// IsSquareAttacked returns true if the square is attacked by the given color.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	return AttackedSquares(p, byColor).IsSet(sq)
}

// InCheck returns true if the king of color c is attacked.
func (p *Position) InCheck(c Color) bool {
	ksq := p.KingSquare(c)
	if ksq == NoSquare {
		return false
	}
	return p.IsSquareAttacked(ksq, c.Other())
}

// Checkers returns the pieces giving check to the side to move.
func (p *Position) Checkers() Bitboard {
	ksq := p.KingSquare(p.SideToMove)
	if ksq == NoSquare {
		return Empty
	}
	return p.AttackersByColor(ksq, p.SideToMove.Other())
}
