package board

import "fmt"

// Move describes an intended transition, packed into 32 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-14: promotion piece type (0 = none, Knight..Queen)
// bits 15-17: flags (capture, castling, en passant)
type Move uint32

// MoveFlag marks the special properties of a move.
type MoveFlag uint32

// Move flags
const (
	FlagCapture   MoveFlag = 1 << 15
	FlagCastling  MoveFlag = 1 << 16
	FlagEnPassant MoveFlag = 1 << 17
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a move with the given flags.
func NewMove(from, to Square, flags MoveFlag) Move {
	return Move(from) | Move(to)<<6 | Move(flags)
}

// NewPromotion creates a pawn move that promotes to promo.
func NewPromotion(from, to Square, promo PieceType, flags MoveFlag) Move {
	return NewMove(from, to, flags) | Move(promo)<<12
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Promotion returns the promotion kind, NoPieceType if the move does not promote.
func (m Move) Promotion() PieceType {
	pt := PieceType((m >> 12) & 7)
	if pt == Pawn {
		return NoPieceType
	}
	return pt
}

// WithPromotion returns m promoting to pt instead.
func (m Move) WithPromotion(pt PieceType) Move {
	m &^= 7 << 12
	if pt.IsPromotionKind() {
		m |= Move(pt) << 12
	}
	return m
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Promotion() != NoPieceType
}

// IsCapture returns true if this move captures a piece (including en passant).
func (m Move) IsCapture() bool {
	return MoveFlag(m)&FlagCapture != 0
}

// IsCastling returns true if this is a castling move (the king's part).
func (m Move) IsCastling() bool {
	return MoveFlag(m)&FlagCastling != 0
}

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool {
	return MoveFlag(m)&FlagEnPassant != 0
}

// String returns the UCI form of the move (e.g. "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if promo := m.Promotion(); promo != NoPieceType {
		s += string(promo.Char())
	}
	return s
}

// ParseUCI splits a UCI move string into its squares and optional promotion
// kind. It does not check legality.
func ParseUCI(s string) (from, to Square, promo PieceType, err error) {
	if len(s) != 4 && len(s) != 5 {
		return NoSquare, NoSquare, NoPieceType, fmt.Errorf("invalid move string: %q", s)
	}
	if from, err = ParseSquare(s[0:2]); err != nil {
		return NoSquare, NoSquare, NoPieceType, err
	}
	if to, err = ParseSquare(s[2:4]); err != nil {
		return NoSquare, NoSquare, NoPieceType, err
	}
	promo = NoPieceType
	if len(s) == 5 {
		promo = PieceTypeFromChar(s[4])
		if !promo.IsPromotionKind() {
			return NoSquare, NoSquare, NoPieceType, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
	}
	return from, to, promo, nil
}

// FindMove returns the move in moves matching the UCI string.
func FindMove(moves []Move, uci string) (Move, bool) {
	for _, m := range moves {
		if m.String() == uci {
			return m, true
		}
	}
	return NoMove, false
}
