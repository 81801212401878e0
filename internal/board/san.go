package board

import (
	"fmt"
	"strings"
)

// SAN converts a legal move to Standard Algebraic Notation under the given
// rules. The check suffix is only added when check is enforced.
func (m Move) SAN(pos *Position, rules Rules) string {
	if m == NoMove {
		return "-"
	}

	from, to := m.From(), m.To()
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return m.String() // Fallback to UCI
	}

	if m.IsCastling() {
		if to > from {
			return "O-O"
		}
		return "O-O-O"
	}

	var sb strings.Builder
	pt := piece.Type()

	if pt != Pawn {
		sb.WriteByte("PNBRQK"[pt])
		sb.WriteString(disambiguation(pos, m, piece, rules))
	}

	if m.IsCapture() {
		if pt == Pawn {
			sb.WriteByte('a' + byte(from.File()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(to.String())

	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteByte("PNBRQK"[m.Promotion()])
	}

	if rules.CheckAllowed {
		after := *pos
		after.Apply(m)
		if after.IsCheckmate(rules) {
			sb.WriteByte('#')
		} else if after.InCheck(after.SideToMove) {
			sb.WriteByte('+')
		}
	}

	return sb.String()
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from moves of identical pieces to the same square.
func disambiguation(pos *Position, m Move, piece Piece, rules Rules) string {
	from, to := m.From(), m.To()

	var candidates []Square
	for _, other := range LegalMovesAll(pos, piece.Color(), rules) {
		if other.To() != to || other.From() == from {
			continue
		}
		if pos.PieceAt(other.From()) == piece {
			candidates = append(candidates, other.From())
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, sq := range candidates {
		if sq.File() == from.File() {
			sameFile = true
		}
		if sq.Rank() == from.Rank() {
			sameRank = true
		}
	}

	if !sameFile {
		return string(rune('a' + from.File()))
	}
	if !sameRank {
		return string(rune('1' + from.Rank()))
	}
	return from.String()
}

// ParseSAN finds the legal move of the side to move written as s in
// Standard Algebraic Notation.
func ParseSAN(s string, pos *Position, rules Rules) (Move, error) {
	orig := s
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+#!?")

	legal := LegalMovesAll(pos, pos.SideToMove, rules)

	if s == "O-O" || s == "0-0" || s == "O-O-O" || s == "0-0-0" {
		kingSide := len(s) == 3
		for _, m := range legal {
			if m.IsCastling() && (m.To() > m.From()) == kingSide {
				return m, nil
			}
		}
		return NoMove, fmt.Errorf("castling not available: %q", orig)
	}

	promo := NoPieceType
	if idx := strings.Index(s, "="); idx >= 0 {
		if idx+1 >= len(s) {
			return NoMove, fmt.Errorf("invalid SAN %q", orig)
		}
		promo = PieceTypeFromChar(s[idx+1])
		if !promo.IsPromotionKind() || s[idx+1] < 'A' || s[idx+1] > 'Z' {
			return NoMove, fmt.Errorf("invalid promotion in %q", orig)
		}
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		pt = PieceTypeFromChar(s[0])
		if pt == NoPieceType || pt == Pawn {
			return NoMove, fmt.Errorf("invalid piece in %q", orig)
		}
		s = s[1:]
	}

	if len(s) < 2 {
		return NoMove, fmt.Errorf("invalid SAN %q", orig)
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NoMove, err
	}
	s = s[:len(s)-2]

	fileHint, rankHint := -1, -1
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 'a' && c <= 'h':
			fileHint = int(c - 'a')
		case c >= '1' && c <= '8':
			rankHint = int(c - '1')
		default:
			return NoMove, fmt.Errorf("invalid SAN %q", orig)
		}
	}

	for _, m := range legal {
		from := m.From()
		if m.To() != dest || pos.PieceAt(from).Type() != pt || m.IsCastling() {
			continue
		}
		if fileHint >= 0 && from.File() != fileHint {
			continue
		}
		if rankHint >= 0 && from.Rank() != rankHint {
			continue
		}
		if isCapture && !m.IsCapture() {
			continue
		}
		if m.Promotion() != promo {
			continue
		}
		return m, nil
	}

	return NoMove, fmt.Errorf("no legal move matches %q", orig)
}
