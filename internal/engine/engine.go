package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hailam/chessrules/internal/board"
)

// ErrNoLegalMove is returned by ChooseMove when the side to move has no legal
// move. It confirms the checkmate or stalemate the game already detected.
var ErrNoLegalMove = errors.New("no legal move")

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = MaxPly)
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply, 300ms
	Medium                   // 3 ply, 1s
	Hard                     // 5 ply, 3s
)

// DifficultySettings maps difficulty to search limits. Every level is
// bounded in both depth and time.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MoveTime: 300 * time.Millisecond},
	Medium: {Depth: 3, MoveTime: time.Second},
	Hard:   {Depth: 5, MoveTime: 3 * time.Second},
}

// String returns the difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		if d.String() == s {
			return d, nil
		}
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// Engine is the automated opponent. It may be shared between goroutines;
// searches are serialized.
type Engine struct {
	mu         sync.Mutex
	tt         *TranspositionTable
	orderer    *MoveOrderer
	difficulty Difficulty

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine with the given transposition table size in MB.
func NewEngine(ttSizeMB int) *Engine {
	return &Engine{
		tt:         NewTranspositionTable(ttSizeMB),
		orderer:    NewMoveOrderer(),
		difficulty: Medium,
	}
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.mu.Lock()
	e.difficulty = d
	e.mu.Unlock()
}

// Difficulty returns the current difficulty.
func (e *Engine) Difficulty() Difficulty {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.difficulty
}

// ChooseMove returns one legal move for the side to move in pos, searched
// within the current difficulty's limits. It returns ErrNoLegalMove when
// there is nothing to play, and ctx.Err() when cancelled before any move was
// found.
func (e *Engine) ChooseMove(ctx context.Context, pos board.Position, rules board.Rules) (board.Move, error) {
	limits := DifficultySettings[e.Difficulty()]
	return e.SearchWithLimits(ctx, pos, rules, limits)
}

// SearchWithLimits finds the best move with specific search limits.
func (e *Engine) SearchWithLimits(ctx context.Context, pos board.Position, rules board.Rules, limits SearchLimits) (board.Move, error) {
	moves := board.LegalMovesAll(&pos, pos.SideToMove, rules)
	if len(moves) == 0 {
		return board.NoMove, ErrNoLegalMove
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return board.NoMove, err
	}
	if len(moves) == 1 {
		return moves[0], nil
	}

	startTime := time.Now()
	var deadline time.Time
	if limits.MoveTime > 0 {
		deadline = startTime.Add(limits.MoveTime)
	}

	maxDepth := MaxPly - 1
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	e.tt.NewSearch()
	e.orderer.Clear()
	w := NewWorker(e.tt, e.orderer)
	w.InitSearch(ctx, rules, deadline)

	bestMove := board.NoMove

	// Iterative deepening
	for depth := 1; depth <= maxDepth; depth++ {
		move, score := w.SearchDepth(&pos, depth)
		if w.stopped {
			break
		}
		if move != board.NoMove {
			bestMove = move
		}

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    score,
				Nodes:    w.Nodes(),
				Time:     time.Since(startTime),
				PV:       w.GetPV(),
				HashFull: e.tt.HashFull(),
			})
		}

		// Early termination: found mate
		if abs(score) > MateScore-MaxPly {
			break
		}

		// If we've used more than half the time, don't start another iteration
		if !deadline.IsZero() && time.Since(startTime) > limits.MoveTime/2 {
			break
		}
	}

	if bestMove == board.NoMove {
		if err := ctx.Err(); err != nil {
			return board.NoMove, err
		}
		// Deadline hit before depth 1 finished; fall back to ordering.
		scores := e.orderer.ScoreMoves(&pos, moves, 0, board.NoMove)
		PickMove(moves, scores, 0)
		bestMove = moves[0]
	}

	log.Printf("[AI] %s chose %s after %v", pos.SideToMove, bestMove, time.Since(startTime).Round(time.Millisecond))
	return bestMove, nil
}

// Clear clears the transposition table and move ordering history.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.Clear()
	e.orderer = NewMoveOrderer()
}

// Perft counts the leaf nodes of the legal move tree under rules.
func Perft(pos board.Position, rules board.Rules, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := board.LegalMovesAll(&pos, pos.SideToMove, rules)
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		child := pos
		child.Apply(m)
		nodes += Perft(child, rules, depth-1)
	}
	return nodes
}

// DivideEntry is the perft count below one root move.
type DivideEntry struct {
	Move  board.Move
	Nodes uint64
}

// Divide returns the perft count below every root move.
func Divide(pos board.Position, rules board.Rules, depth int) []DivideEntry {
	if depth < 1 {
		return nil
	}
	moves := board.LegalMovesAll(&pos, pos.SideToMove, rules)
	out := make([]DivideEntry, 0, len(moves))
	for _, m := range moves {
		child := pos
		child.Apply(m)
		out = append(out, DivideEntry{Move: m, Nodes: Perft(child, rules, depth-1)})
	}
	return out
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-MaxPly {
		return fmt.Sprintf("Mate in %d", (MateScore-score+1)/2)
	}
	if score < -MateScore+MaxPly {
		return fmt.Sprintf("Mated in %d", (MateScore+score+1)/2)
	}
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
