package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	if cr&WhiteKingSideCastle != 0 {
		sb.WriteByte('K')
	}
	if cr&WhiteQueenSideCastle != 0 {
		sb.WriteByte('Q')
	}
	if cr&BlackKingSideCastle != 0 {
		sb.WriteByte('k')
	}
	if cr&BlackQueenSideCastle != 0 {
		sb.WriteByte('q')
	}
	return sb.String()
}

// CanCastle returns true if the given side keeps the right to castle in the
// given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castlingBit(c, kingSide) != 0
}

func castlingBit(c Color, kingSide bool) CastlingRights {
	if c == White {
		if kingSide {
			return WhiteKingSideCastle
		}
		return WhiteQueenSideCastle
	}
	if kingSide {
		return BlackKingSideCastle
	}
	return BlackQueenSideCastle
}

// castlingRightsLost maps a square to the rights that vanish once anything
// moves from or to it.
var castlingRightsLost = map[Square]CastlingRights{
	E1: WhiteKingSideCastle | WhiteQueenSideCastle,
	H1: WhiteKingSideCastle,
	A1: WhiteQueenSideCastle,
	E8: BlackKingSideCastle | BlackQueenSideCastle,
	H8: BlackKingSideCastle,
	A8: BlackQueenSideCastle,
}

// Position is a complete chess position. It is a plain value: assignment
// copies it, and two positions compare equal with ==.
type Position struct {
	Board          [64]Piece
	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // Target square for en passant, NoSquare if none
	HalfMoveClock  int
	FullMoveNumber int
}

// NewPosition creates the starting position.
func NewPosition() Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// EmptyPosition returns a board with no pieces, White to move.
func EmptyPosition() Position {
	return Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	if sq >= NoSquare {
		return NoPiece
	}
	return p.Board[sq]
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.PieceAt(sq) == NoPiece
}

// Put places a piece on a square, replacing whatever was there.
func (p *Position) Put(piece Piece, sq Square) {
	p.Board[sq] = piece
}

// Remove empties a square and returns the piece that stood there.
func (p *Position) Remove(sq Square) Piece {
	piece := p.Board[sq]
	p.Board[sq] = NoPiece
	return piece
}

// Occupied returns the set of occupied squares.
func (p *Position) Occupied() Bitboard {
	var bb Bitboard
	for sq, piece := range p.Board {
		if piece != NoPiece {
			bb |= 1 << uint(sq)
		}
	}
	return bb
}

// Pieces returns the squares holding pieces of the given color and type.
// NoPieceType selects every piece of the color.
func (p *Position) Pieces(c Color, pt PieceType) Bitboard {
	var bb Bitboard
	for sq, piece := range p.Board {
		if piece == NoPiece || piece.Color() != c {
			continue
		}
		if pt == NoPieceType || piece.Type() == pt {
			bb |= 1 << uint(sq)
		}
	}
	return bb
}

// KingSquare returns the square of the given color's king, NoSquare if the
// king is missing.
func (p *Position) KingSquare(c Color) Square {
	king := NewPiece(King, c)
	for sq, piece := range p.Board {
		if piece == king {
			return Square(sq)
		}
	}
	return NoSquare
}

// PieceCount returns the number of pieces on the board.
func (p *Position) PieceCount() int {
	return p.Occupied().PopCount()
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber)
	return sb.String()
}

// Validate checks the invariants every legal position satisfies.
// Errors wrap ErrInvalidPosition.
func (p *Position) Validate() error {
	for _, c := range []Color{White, Black} {
		if n := p.Pieces(c, King).PopCount(); n != 1 {
			return fmt.Errorf("%w: %s must have exactly one king, has %d", ErrInvalidPosition, c, n)
		}
	}

	if (p.Pieces(White, Pawn)|p.Pieces(Black, Pawn))&(Rank1|Rank8) != 0 {
		return fmt.Errorf("%w: pawns cannot be on rank 1 or 8", ErrInvalidPosition)
	}

	if n := p.PieceCount(); n > 32 {
		return fmt.Errorf("%w: %d pieces on the board", ErrInvalidPosition, n)
	}

	if err := p.validateEnPassant(); err != nil {
		return err
	}

	// The side that just moved cannot have left its own king attacked.
	them := p.SideToMove.Other()
	if p.InCheck(them) {
		return fmt.Errorf("%w: %s is in check but not to move", ErrInvalidPosition, them)
	}

	return nil
}

// validateEnPassant checks that the en-passant target could follow a double
// push: the pushed pawn stands in front of it, and the target and the
// pawn's start square are empty.
func (p *Position) validateEnPassant() error {
	ep := p.EnPassant
	if ep == NoSquare {
		return nil
	}
	them := p.SideToMove.Other()
	dir := 1
	if them == Black {
		dir = -1
	}
	pawn, ok1 := ep.Offset(0, dir)
	origin, ok2 := ep.Offset(0, -dir)
	if !ok1 || !ok2 || ep.RelativeRank(them) != 2 {
		return fmt.Errorf("%w: en passant square %s off the push rank", ErrInvalidPosition, ep)
	}
	if p.PieceAt(pawn) != NewPiece(Pawn, them) {
		return fmt.Errorf("%w: no %s pawn in front of en passant square %s", ErrInvalidPosition, them, ep)
	}
	if !p.IsEmpty(ep) || !p.IsEmpty(origin) {
		return fmt.Errorf("%w: en passant square %s or its origin is occupied", ErrInvalidPosition, ep)
	}
	return nil
}

// MakeBoardMove performs every board mutation of m: capture, en-passant pawn
// removal, castling rook relocation, promotion, castling rights, en-passant
// target and half-move clock. The side to move is left unchanged; PassTurn
// completes the move. The mover is taken from the piece on m.From().
func (p *Position) MakeBoardMove(m Move) {
	from, to := m.From(), m.To()
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return
	}
	us := piece.Color()
	pt := piece.Type()

	p.EnPassant = NoSquare

	captured := p.Remove(to)
	if m.IsEnPassant() {
		capSq := NewSquare(to.File(), from.Rank())
		if victim := p.PieceAt(capSq); victim == NewPiece(Pawn, us.Other()) {
			captured = p.Remove(capSq)
		}
	}

	p.Remove(from)
	if promo := m.Promotion(); promo != NoPieceType {
		p.Put(NewPiece(promo, us), to)
	} else {
		p.Put(piece, to)
	}

	if m.IsCastling() {
		rank := from.Rank()
		rookFrom, rookTo := NewSquare(7, rank), NewSquare(5, rank)
		if to.File() < from.File() {
			rookFrom, rookTo = NewSquare(0, rank), NewSquare(3, rank)
		}
		p.Put(p.Remove(rookFrom), rookTo)
	}

	p.CastlingRights &^= castlingRightsLost[from] | castlingRightsLost[to]

	// The target is only recorded when an enemy pawn stands ready to take it.
	if pt == Pawn && (int(to)-int(from) == 16 || int(from)-int(to) == 16) {
		ep := Square((int(from) + int(to)) / 2)
		if PawnAttacks(ep, us)&p.Pieces(us.Other(), Pawn) != 0 {
			p.EnPassant = ep
		}
	}

	if pt == Pawn || captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
}

// PassTurn hands the move to the other side.
func (p *Position) PassTurn() {
	if p.SideToMove == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = p.SideToMove.Other()
}

// Promote replaces the pawn on sq with a piece of the given kind.
func (p *Position) Promote(sq Square, pt PieceType) {
	pawn := p.PieceAt(sq)
	if pawn.Type() != Pawn {
		return
	}
	p.Put(NewPiece(pt, pawn.Color()), sq)
}

// Apply plays m completely: board mutation followed by the turn change.
func (p *Position) Apply(m Move) {
	p.MakeBoardMove(m)
	p.PassTurn()
}
