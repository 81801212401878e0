package game

import (
	"fmt"

	"github.com/hailam/chessrules/internal/board"
)

// Status is the state of play.
type Status int

const (
	InProgress Status = iota
	Checkmate
	Stalemate
	Aborted
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Outcome is the result of a game. Winner is only meaningful for Checkmate.
type Outcome struct {
	Status Status
	Winner board.Color
}

// IsOver reports whether the game has ended.
func (o Outcome) IsOver() bool {
	return o.Status != InProgress
}

// String returns display text such as "White wins by checkmate".
func (o Outcome) String() string {
	switch o.Status {
	case Checkmate:
		return fmt.Sprintf("%s wins by checkmate", o.Winner)
	case Stalemate:
		return "Draw by stalemate"
	case Aborted:
		return "Game aborted"
	}
	return "In progress"
}

// DetectOutcome classifies pos for its side to move. A side without legal
// moves is checkmated when check is enforced and its king is attacked;
// every other side without moves is stalemated.
func DetectOutcome(pos *board.Position, rules board.Rules) Outcome {
	stm := pos.SideToMove
	if board.HasLegalMoves(pos, stm, rules) {
		return Outcome{Status: InProgress, Winner: board.NoColor}
	}
	if rules.CheckAllowed && pos.InCheck(stm) {
		return Outcome{Status: Checkmate, Winner: stm.Other()}
	}
	return Outcome{Status: Stalemate, Winner: board.NoColor}
}
