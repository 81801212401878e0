package board

// LegalMoves returns the legal moves of the piece on from. With
// rules.CheckAllowed off the pseudo-legal moves are returned unfiltered.
func LegalMoves(pos *Position, from Square, rules Rules) []Move {
	return filterLegal(pos, PseudoLegalMoves(pos, from, rules), rules)
}

// LegalMovesAll returns the legal moves of every piece of color c.
func LegalMovesAll(pos *Position, c Color, rules Rules) []Move {
	return filterLegal(pos, PseudoLegalMovesAll(pos, c, rules), rules)
}

// filterLegal keeps the moves that do not leave the mover's king attacked.
// The slice is filtered in place.
func filterLegal(pos *Position, moves []Move, rules Rules) []Move {
	if !rules.CheckAllowed {
		return moves
	}
	legal := moves[:0]
	for _, m := range moves {
		if leavesKingSafe(pos, m) {
			legal = append(legal, m)
		}
	}
	return legal
}

// leavesKingSafe plays m on a scratch copy and reports whether the mover's
// king is unattacked afterwards.
func leavesKingSafe(pos *Position, m Move) bool {
	us := pos.PieceAt(m.From()).Color()
	scratch := *pos
	scratch.MakeBoardMove(m)
	ksq := scratch.KingSquare(us)
	if ksq == NoSquare {
		return true
	}
	return !AttackedSquares(&scratch, us.Other()).IsSet(ksq)
}

// IsLegal reports whether m is among the legal moves of its piece.
func IsLegal(pos *Position, m Move, rules Rules) bool {
	for _, lm := range LegalMoves(pos, m.From(), rules) {
		if lm == m {
			return true
		}
	}
	return false
}

// IsPinned reports whether the piece on sq loses moves to the legality
// filter. Kings are never pinned.
func IsPinned(pos *Position, sq Square, rules Rules) bool {
	piece := pos.PieceAt(sq)
	if piece == NoPiece || piece.Type() == King || !rules.CheckAllowed {
		return false
	}
	pseudo := PseudoLegalMoves(pos, sq, rules)
	n := len(pseudo)
	return len(filterLegal(pos, pseudo, rules)) < n
}

// HasLegalMoves returns true if color c has at least one legal move.
func HasLegalMoves(pos *Position, c Color, rules Rules) bool {
	for sq, piece := range pos.Board {
		if piece == NoPiece || piece.Color() != c {
			continue
		}
		for _, m := range PseudoLegalMoves(pos, Square(sq), rules) {
			if !rules.CheckAllowed || leavesKingSafe(pos, m) {
				return true
			}
		}
	}
	return false
}

// IsCheckmate returns true if the side to move is in check with no legal
// moves. It is never true when check is not enforced.
func (p *Position) IsCheckmate(rules Rules) bool {
	if !rules.CheckAllowed {
		return false
	}
	return p.InCheck(p.SideToMove) && !HasLegalMoves(p, p.SideToMove, rules)
}

// IsStalemate returns true if the side to move has no legal moves and is not
// checkmated.
func (p *Position) IsStalemate(rules Rules) bool {
	if HasLegalMoves(p, p.SideToMove, rules) {
		return false
	}
	return !rules.CheckAllowed || !p.InCheck(p.SideToMove)
}
