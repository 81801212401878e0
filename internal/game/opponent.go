package game

import (
	"context"
	"fmt"
	"log"

	"github.com/hailam/chessrules/internal/board"
)

// Opponent chooses a move for the side to move. It is called on its own
// goroutine with a private copy of the position and must return a legal
// move, or an error when there is none or ctx is cancelled.
type Opponent interface {
	ChooseMove(ctx context.Context, pos board.Position, rules board.Rules) (board.Move, error)
}

// OpponentFunc adapts a function to the Opponent interface.
type OpponentFunc func(ctx context.Context, pos board.Position, rules board.Rules) (board.Move, error)

// ChooseMove calls f.
func (f OpponentFunc) ChooseMove(ctx context.Context, pos board.Position, rules board.Rules) (board.Move, error) {
	return f(ctx, pos, rules)
}

// snapshot identifies the position a search was started on.
type snapshot struct {
	generation uint64
	hash       uint64
}

type searchResult struct {
	move board.Move
	err  error
}

// search is one opponent computation in flight.
type search struct {
	snap   snapshot
	result chan searchResult
	cancel context.CancelFunc
}

// SetOpponent seats op as the given color. A nil op or NoColor makes both
// sides human. Any running search is cancelled.
func (s *Session) SetOpponent(op Opponent, color board.Color) {
	s.cancelSearch()
	if op == nil || color == board.NoColor {
		op, color = nil, board.NoColor
	}
	s.opponent = op
	s.opponentColor = color
}

// OpponentColor returns the side played by the opponent, NoColor if none.
func (s *Session) OpponentColor() board.Color {
	return s.opponentColor
}

// OpponentToMove reports whether the side to move belongs to the opponent.
func (s *Session) OpponentToMove() bool {
	return s.opponent != nil && s.opponentColor == s.pos.SideToMove
}

// Thinking reports whether an opponent search is running for this position.
func (s *Session) Thinking() bool {
	return s.thinking
}

func (s *Session) snapshot() snapshot {
	return snapshot{generation: s.generation, hash: s.pos.Hash()}
}

// StartOpponent launches the opponent's search on a copy of the current
// position. Human input is rejected until the result is collected with
// PollOpponent or WaitOpponent.
func (s *Session) StartOpponent(ctx context.Context) error {
	switch {
	case s.opponent == nil:
		return ErrNoOpponent
	case s.phase == GameOver:
		return ErrGameOver
	case s.phase == PromotionPending:
		return ErrPromotionPending
	case s.thinking:
		return ErrOpponentThinking
	case !s.OpponentToMove():
		return ErrNotYourTurn
	}

	s.Deselect()
	ctx, cancel := context.WithCancel(ctx)
	sr := &search{
		snap:   s.snapshot(),
		result: make(chan searchResult, 1),
		cancel: cancel,
	}
	op, pos, rules := s.opponent, s.pos, s.rules
	go func() {
		m, err := op.ChooseMove(ctx, pos, rules)
		sr.result <- searchResult{move: m, err: err}
	}()

	s.search = sr
	s.thinking = true
	log.Printf("[AI] thinking for %s", pos.SideToMove)
	return nil
}

// PollOpponent collects the opponent's move without blocking. The bool is
// false while the search is still running. A result computed for a position
// that has since been replaced is discarded with ErrStaleResult.
func (s *Session) PollOpponent() (board.Move, bool, error) {
	if s.search == nil {
		return board.NoMove, false, ErrNoSearch
	}
	select {
	case r := <-s.search.result:
		m, err := s.finishSearch(r)
		return m, true, err
	default:
		return board.NoMove, false, nil
	}
}

// WaitOpponent blocks until the opponent's move arrives or ctx is done.
func (s *Session) WaitOpponent(ctx context.Context) (board.Move, error) {
	if s.search == nil {
		return board.NoMove, ErrNoSearch
	}
	select {
	case r := <-s.search.result:
		return s.finishSearch(r)
	case <-ctx.Done():
		return board.NoMove, ctx.Err()
	}
}

// finishSearch applies a delivered result if its snapshot still matches.
func (s *Session) finishSearch(r searchResult) (board.Move, error) {
	sr := s.search
	s.search = nil
	sr.cancel()

	if sr.snap != s.snapshot() {
		log.Printf("[AI] discarded result %s from an old position", r.move)
		return board.NoMove, ErrStaleResult
	}
	s.thinking = false

	if r.err != nil {
		log.Printf("[AI] no move: %v", r.err)
		s.detectOutcome()
		return board.NoMove, fmt.Errorf("opponent: %w", r.err)
	}
	if err := s.applyOpponentMove(r.move); err != nil {
		return board.NoMove, err
	}
	return r.move, nil
}

// applyOpponentMove plays m through the same select, attempt and promote
// steps as a human move.
func (s *Session) applyOpponentMove(m board.Move) error {
	if !board.IsLegal(&s.pos, m, s.rules) {
		return s.reject(fmt.Errorf("%w: opponent played %s", ErrIllegalDestination, m))
	}
	if _, err := s.selectSquare(m.From()); err != nil {
		return err
	}
	if _, err := s.attemptMove(m.To()); err != nil {
		return err
	}
	if s.phase == PromotionPending {
		kind := m.Promotion()
		if kind == board.NoPieceType {
			kind = board.Queen
		}
		return s.Promote(m.To(), kind)
	}
	return nil
}

// cancelSearch abandons any running search. Its result stays collectable
// but is reported as stale.
func (s *Session) cancelSearch() {
	if s.search != nil {
		s.search.cancel()
	}
	s.generation++
	s.thinking = false
}
