package engine

import (
	"context"
	"time"

	"github.com/hailam/chessrules/internal/board"
)

// Worker runs one alpha-beta search over copies of the root position.
type Worker struct {
	rules    board.Rules
	tt       *TranspositionTable
	orderer  *MoveOrderer
	pv       PVTable
	nodes    uint64
	ctx      context.Context
	deadline time.Time
	stopped  bool
}

// NewWorker creates a worker sharing the engine's table and orderer.
func NewWorker(tt *TranspositionTable, orderer *MoveOrderer) *Worker {
	return &Worker{tt: tt, orderer: orderer}
}

// Nodes returns the number of nodes searched by this worker.
func (w *Worker) Nodes() uint64 {
	return w.nodes
}

// InitSearch prepares the worker for a new search.
func (w *Worker) InitSearch(ctx context.Context, rules board.Rules, deadline time.Time) {
	w.ctx = ctx
	w.rules = rules
	w.deadline = deadline
	w.nodes = 0
	w.stopped = false
}

// checkStop polls the context and deadline every 1024 nodes.
func (w *Worker) checkStop() bool {
	if w.stopped {
		return true
	}
	if w.nodes&1023 != 0 {
		return false
	}
	if w.ctx.Err() != nil || (!w.deadline.IsZero() && time.Now().After(w.deadline)) {
		w.stopped = true
	}
	return w.stopped
}

// SearchDepth searches the root to the given depth and returns the best
// move with its score. A stopped search returns NoMove.
func (w *Worker) SearchDepth(root *board.Position, depth int) (board.Move, int) {
	score := w.negamax(root, depth, 0, -Infinity, Infinity)
	if w.stopped || w.pv.length[0] == 0 {
		return board.NoMove, score
	}
	return w.pv.moves[0][0], score
}

// GetPV returns the principal variation from the last search.
func (w *Worker) GetPV() []board.Move {
	return w.pv.line()
}

// isDraw checks the fifty-move rule. Repetitions are not tracked because
// the session keeps no move history.
func (w *Worker) isDraw(pos *board.Position) bool {
	return pos.HalfMoveClock >= 100
}

// terminalScore scores a position without legal moves.
func (w *Worker) terminalScore(pos *board.Position, ply int) int {
	if w.rules.CheckAllowed && pos.InCheck(pos.SideToMove) {
		return -MateScore + ply
	}
	return 0
}

// negamax implements the negamax algorithm with alpha-beta pruning.
func (w *Worker) negamax(pos *board.Position, depth, ply int, alpha, beta int) int {
	w.pv.length[ply] = ply

	if w.checkStop() {
		return 0
	}
	w.nodes++

	if ply > 0 && w.isDraw(pos) {
		return 0
	}
	if ply >= MaxPly-1 {
		return Evaluate(pos)
	}

	moves := board.LegalMovesAll(pos, pos.SideToMove, w.rules)
	if len(moves) == 0 {
		return w.terminalScore(pos, ply)
	}
	if depth <= 0 {
		return w.quiescence(pos, ply, 0, alpha, beta)
	}

	key := searchKey(pos, w.rules)
	ttMove := board.NoMove
	if entry, ok := w.tt.Probe(key); ok {
		ttMove = entry.BestMove
		if ply > 0 && int(entry.Depth) >= depth {
			score := AdjustScoreFromTT(int(entry.Score), ply)
			switch {
			case entry.Flag == TTExact:
				return score
			case entry.Flag == TTLowerBound && score >= beta:
				return score
			case entry.Flag == TTUpperBound && score <= alpha:
				return score
			}
		}
	}

	origAlpha := alpha
	bestScore := -Infinity
	bestMove := board.NoMove
	scores := w.orderer.ScoreMoves(pos, moves, ply, ttMove)

	for i := range moves {
		PickMove(moves, scores, i)
		m := moves[i]

		child := *pos
		child.Apply(m)
		score := -w.negamax(&child, depth-1, ply+1, -beta, -alpha)

		if w.stopped {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
			w.pv.update(ply, m)
		}
		if alpha >= beta {
			w.orderer.UpdateKillers(m, ply)
			w.orderer.UpdateHistory(m, depth)
			break
		}
	}

	flag := TTExact
	switch {
	case bestScore <= origAlpha:
		flag = TTUpperBound
	case bestScore >= beta:
		flag = TTLowerBound
	}
	w.tt.Store(key, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)

	return bestScore
}

// quiescence searches captures and promotions until the position is quiet.
func (w *Worker) quiescence(pos *board.Position, ply, qPly int, alpha, beta int) int {
	w.pv.length[ply] = ply

	if w.checkStop() {
		return 0
	}
	w.nodes++

	standPat := Evaluate(pos)
	if ply >= MaxPly-1 || qPly >= maxQuiescencePly {
		return standPat
	}
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}

	moves := board.LegalMovesAll(pos, pos.SideToMove, w.rules)
	if len(moves) == 0 {
		return w.terminalScore(pos, ply)
	}

	noisy := moves[:0]
	for _, m := range moves {
		if m.IsCapture() || m.IsPromotion() {
			noisy = append(noisy, m)
		}
	}
	scores := w.orderer.ScoreMoves(pos, noisy, ply, board.NoMove)

	for i := range noisy {
		PickMove(noisy, scores, i)
		m := noisy[i]

		child := *pos
		child.Apply(m)
		score := -w.quiescence(&child, ply+1, qPly+1, -beta, -alpha)

		if w.stopped {
			return 0
		}
		if score >= beta {
			return score
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}
