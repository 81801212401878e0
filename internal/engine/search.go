package engine

import (
	"github.com/hailam/chessrules/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 64
)

// Quiescence depth cap
const maxQuiescencePly = 16

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

// update makes m followed by the child line the principal variation at ply.
func (pv *PVTable) update(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	for i := ply + 1; i < pv.length[ply+1]; i++ {
		pv.moves[ply][i] = pv.moves[ply+1][i]
	}
	pv.length[ply] = pv.length[ply+1]
	if pv.length[ply] < ply+1 {
		pv.length[ply] = ply + 1
	}
}

// line returns the principal variation from the root.
func (pv *PVTable) line() []board.Move {
	out := make([]board.Move, pv.length[0])
	copy(out, pv.moves[0][:pv.length[0]])
	return out
}

// Rule toggles change the move set, so they are folded into the hash key.
var rulesKeys = [4]uint64{
	0x9E3779B97F4A7C15,
	0xBF58476D1CE4E5B9,
	0x94D049BB133111EB,
	0xD6E8FEB86659FD93,
}

// searchKey returns the transposition key of pos under rules.
func searchKey(pos *board.Position, rules board.Rules) uint64 {
	key := pos.Hash()
	if !rules.CastleAllowed {
		key ^= rulesKeys[0]
	}
	if !rules.CheckAllowed {
		key ^= rulesKeys[1]
	}
	if !rules.EnPassantAllowed {
		key ^= rulesKeys[2]
	}
	if !rules.PawnPromotionAllowed {
		key ^= rulesKeys[3]
	}
	return key
}

// abs returns the absolute value of an integer.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
