package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position. All six fields are
// required. Errors wrap ErrMalformedFEN; the position itself is not checked
// for chess invariants (see ValidateFEN).
func ParseFEN(fen string) (Position, error) {
	parts := strings.Fields(fen)
	if len(parts) != 6 {
		return Position{}, fmt.Errorf("%w: need 6 fields, got %d", ErrMalformedFEN, len(parts))
	}

	pos := EmptyPosition()

	// Piece placement (field 0)
	if err := parsePiecePlacement(&pos, parts[0]); err != nil {
		return Position{}, err
	}

	// Side to move (field 1)
	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return Position{}, fmt.Errorf("%w: invalid side to move %q", ErrMalformedFEN, parts[1])
	}

	// Castling rights (field 2)
	cr, err := parseCastlingRights(parts[2])
	if err != nil {
		return Position{}, err
	}
	pos.CastlingRights = cr

	// En passant square (field 3)
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return Position{}, fmt.Errorf("%w: invalid en passant square %q", ErrMalformedFEN, parts[3])
		}
		// the target lies behind a pawn the opponent just pushed
		if sq.RelativeRank(pos.SideToMove) != 5 {
			return Position{}, fmt.Errorf("%w: en passant square %q with %s to move", ErrMalformedFEN, parts[3], pos.SideToMove)
		}
		pos.EnPassant = sq
	}

	// Half-move clock (field 4)
	hmc, err := parseCounter(parts[4])
	if err != nil {
		return Position{}, fmt.Errorf("%w: invalid half-move clock %q", ErrMalformedFEN, parts[4])
	}
	pos.HalfMoveClock = hmc

	// Full-move number (field 5)
	fmn, err := parseCounter(parts[5])
	if err != nil || fmn == 0 {
		return Position{}, fmt.Errorf("%w: invalid full-move number %q", ErrMalformedFEN, parts[5])
	}
	pos.FullMoveNumber = fmn

	return pos, nil
}

// parseCounter accepts a non-negative decimal integer without sign.
func parseCounter(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
	}
	return strconv.Atoi(s)
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrMalformedFEN, len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for j := 0; j < len(rankStr); j++ {
			c := rankStr[j]
			if file > 7 {
				return fmt.Errorf("%w: too many squares in rank %d", ErrMalformedFEN, rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			piece := PieceFromChar(c)
			if piece == NoPiece {
				return fmt.Errorf("%w: invalid piece character %q", ErrMalformedFEN, c)
			}
			pos.Put(piece, NewSquare(file, rank))
			file++
		}

		if file != 8 {
			return fmt.Errorf("%w: rank %d has %d squares", ErrMalformedFEN, rank+1, file)
		}
	}

	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(castling string) (CastlingRights, error) {
	if castling == "-" {
		return NoCastling, nil
	}

	cr := NoCastling
	for i := 0; i < len(castling); i++ {
		var bit CastlingRights
		switch castling[i] {
		case 'K':
			bit = WhiteKingSideCastle
		case 'Q':
			bit = WhiteQueenSideCastle
		case 'k':
			bit = BlackKingSideCastle
		case 'q':
			bit = BlackQueenSideCastle
		default:
			return NoCastling, fmt.Errorf("%w: invalid castling character %q", ErrMalformedFEN, castling[i])
		}
		if cr&bit != 0 {
			return NoCastling, fmt.Errorf("%w: repeated castling character %q", ErrMalformedFEN, castling[i])
		}
		cr |= bit
	}
	return cr, nil
}

// ValidateFEN parses fen and checks the position invariants. Structural
// errors wrap ErrMalformedFEN, invariant violations wrap ErrInvalidPosition.
func ValidateFEN(fen string) error {
	_, err := LoadFEN(fen)
	return err
}

// IsValidFEN reports whether fen parses and describes a valid position.
func IsValidFEN(fen string) bool {
	return ValidateFEN(fen) == nil
}

// LoadFEN parses and validates fen.
func LoadFEN(fen string) (Position, error) {
	pos, err := ParseFEN(fen)
	if err != nil {
		return Position{}, err
	}
	if err := pos.Validate(); err != nil {
		return Position{}, err
	}
	return pos, nil
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())

	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}
