package board

// castlePath describes one castling option for a color.
type castlePath struct {
	kingSide bool
	king     Square   // king home square
	rook     Square   // rook home square
	to       Square   // king destination
	empty    []Square // squares between king and rook
	safe     []Square // king start, transit and destination
}

var castlePaths = [2][2]castlePath{
	White: {
		{kingSide: true, king: E1, rook: H1, to: G1, empty: []Square{F1, G1}, safe: []Square{E1, F1, G1}},
		{kingSide: false, king: E1, rook: A1, to: C1, empty: []Square{B1, C1, D1}, safe: []Square{E1, D1, C1}},
	},
	Black: {
		{kingSide: true, king: E8, rook: H8, to: G8, empty: []Square{F8, G8}, safe: []Square{E8, F8, G8}},
		{kingSide: false, king: E8, rook: A8, to: C8, empty: []Square{B8, C8, D8}, safe: []Square{E8, D8, C8}},
	},
}

// PseudoLegalMoves generates the moves of the piece on from, ignoring
// whether they leave its own king attacked.
func PseudoLegalMoves(pos *Position, from Square, rules Rules) []Move {
	return appendPieceMoves(nil, pos, from, rules)
}

// PseudoLegalMovesAll generates pseudo-legal moves for every piece of color c.
func PseudoLegalMovesAll(pos *Position, c Color, rules Rules) []Move {
	moves := make([]Move, 0, 48)
	for sq, piece := range pos.Board {
		if piece != NoPiece && piece.Color() == c {
			moves = appendPieceMoves(moves, pos, Square(sq), rules)
		}
	}
	return moves
}

// appendPieceMoves dispatches on the piece kind standing on from.
func appendPieceMoves(moves []Move, pos *Position, from Square, rules Rules) []Move {
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return moves
	}
	us := piece.Color()
	occupied := pos.Occupied()

	switch piece.Type() {
	case Pawn:
		return appendPawnMoves(moves, pos, from, us, rules)
	case Knight:
		return appendTargets(moves, pos, from, us, KnightAttacks(from))
	case Bishop:
		return appendTargets(moves, pos, from, us, BishopAttacks(from, occupied))
	case Rook:
		return appendTargets(moves, pos, from, us, RookAttacks(from, occupied))
	case Queen:
		return appendTargets(moves, pos, from, us, QueenAttacks(from, occupied))
	case King:
		moves = appendTargets(moves, pos, from, us, KingAttacks(from))
		return appendCastlingMoves(moves, pos, from, us, rules)
	}
	return moves
}

// appendTargets adds a move to every target square that is empty or holds
// an opposing piece other than the king.
func appendTargets(moves []Move, pos *Position, from Square, us Color, targets Bitboard) []Move {
	for targets != 0 {
		to := targets.PopLSB()
		victim := pos.PieceAt(to)
		switch {
		case victim == NoPiece:
			moves = append(moves, NewMove(from, to, 0))
		case victim.Color() != us && victim.Type() != King:
			moves = append(moves, NewMove(from, to, FlagCapture))
		}
	}
	return moves
}

// appendPawnMoves generates pushes, captures, en passant and promotions.
func appendPawnMoves(moves []Move, pos *Position, from Square, us Color, rules Rules) []Move {
	dir := 1
	if us == Black {
		dir = -1
	}

	// Pushes
	if one, ok := from.Offset(0, dir); ok && pos.IsEmpty(one) {
		moves = appendPawnMove(moves, from, one, us, 0, rules)
		if from.RelativeRank(us) == 1 {
			if two, ok := one.Offset(0, dir); ok && pos.IsEmpty(two) {
				moves = append(moves, NewMove(from, two, 0))
			}
		}
	}

	// Captures
	targets := PawnAttacks(from, us)
	for targets != 0 {
		to := targets.PopLSB()
		victim := pos.PieceAt(to)
		if victim != NoPiece && victim.Color() != us && victim.Type() != King {
			moves = appendPawnMove(moves, from, to, us, FlagCapture, rules)
			continue
		}
		if victim == NoPiece && to == pos.EnPassant && rules.EnPassantAllowed &&
			pos.PieceAt(NewSquare(to.File(), from.Rank())) == NewPiece(Pawn, us.Other()) {
			moves = append(moves, NewMove(from, to, FlagCapture|FlagEnPassant))
		}
	}
	return moves
}

// appendPawnMove adds one pawn move, expanded into the four promotion
// kinds when it reaches the last rank and promotion is enabled.
func appendPawnMove(moves []Move, from, to Square, us Color, flags MoveFlag, rules Rules) []Move {
	if to.RelativeRank(us) == 7 && rules.PawnPromotionAllowed {
		for _, pt := range PromotionKinds {
			moves = append(moves, NewPromotion(from, to, pt, flags))
		}
		return moves
	}
	return append(moves, NewMove(from, to, flags))
}

// appendCastlingMoves adds the castling moves available to the king on from.
func appendCastlingMoves(moves []Move, pos *Position, from Square, us Color, rules Rules) []Move {
	if !rules.CastleAllowed {
		return moves
	}
	them := us.Other()
	var attacked Bitboard
	attackedKnown := false

	for _, path := range castlePaths[us] {
		if from != path.king || !pos.CastlingRights.CanCastle(us, path.kingSide) {
			continue
		}
		if pos.PieceAt(path.rook) != NewPiece(Rook, us) {
			continue
		}
		if !allEmpty(pos, path.empty) {
			continue
		}
		if !attackedKnown {
			attacked = AttackedSquares(pos, them)
			attackedKnown = true
		}
		if anyIn(attacked, path.safe) {
			continue
		}
		moves = append(moves, NewMove(path.king, path.to, FlagCastling))
	}
	return moves
}

func allEmpty(pos *Position, squares []Square) bool {
	for _, sq := range squares {
		if !pos.IsEmpty(sq) {
			return false
		}
	}
	return true
}

func anyIn(set Bitboard, squares []Square) bool {
	for _, sq := range squares {
		if set.IsSet(sq) {
			return true
		}
	}
	return false
}
