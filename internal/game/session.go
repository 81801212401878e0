// Package game drives a chess game through selection, move commitment,
// promotion and terminal detection, and hands turns to an automated
// opponent when one is configured.
package game

import (
	"fmt"
	"log"

	"github.com/hailam/chessrules/internal/board"
)

// Phase is the interaction state of a session.
type Phase int

const (
	Idle Phase = iota
	Selected
	PromotionPending
	GameOver
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Selected:
		return "selected"
	case PromotionPending:
		return "promotion pending"
	case GameOver:
		return "game over"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Selection is the piece picked by the side to move with its legal moves.
type Selection struct {
	Square board.Square
	Piece  board.Piece
	Moves  []board.Move
	Pinned bool
}

// Destinations returns the distinct target squares of the selection.
func (s Selection) Destinations() []board.Square {
	var seen board.Bitboard
	out := make([]board.Square, 0, len(s.Moves))
	for _, m := range s.Moves {
		if !seen.IsSet(m.To()) {
			seen = seen.Set(m.To())
			out = append(out, m.To())
		}
	}
	return out
}

// Observer receives presentation events. It has no way to mutate the
// session other than calling its public methods.
type Observer interface {
	OnSelect(sel Selection)
	OnMove(m board.Move, pos board.Position)
	OnPromotionPending(sq board.Square, c board.Color)
	OnGameOver(o Outcome)
	OnRejected(err error)
}

type noopObserver struct{}

func (noopObserver) OnSelect(Selection) {}
func (noopObserver) OnMove(board.Move, board.Position) {}
func (noopObserver) OnPromotionPending(board.Square, board.Color) {}
func (noopObserver) OnGameOver(Outcome) {}
func (noopObserver) OnRejected(error) {}

// Session is one game. It is driven from a single goroutine and is not safe
// for concurrent use; only the opponent search runs elsewhere, on a copy.
type Session struct {
	pos       board.Position
	rules     board.Rules
	phase     Phase
	selection Selection
	outcome   Outcome

	// Pawn move waiting for its promotion kind.
	pendingMove board.Move

	observer Observer

	opponent      Opponent
	opponentColor board.Color
	generation    uint64
	search        *search
	thinking      bool
}

// NewSession starts a game from the initial position under rules.
func NewSession(rules board.Rules) *Session {
	s := &Session{
		rules:         rules,
		observer:      noopObserver{},
		opponentColor: board.NoColor,
	}
	s.setPosition(board.NewPosition())
	return s
}

// SetObserver registers the presentation observer; nil removes it.
func (s *Session) SetObserver(o Observer) {
	if o == nil {
		o = noopObserver{}
	}
	s.observer = o
}

// Position returns a copy of the current position.
func (s *Session) Position() board.Position {
	return s.pos
}

// Rules returns the active rule toggles.
func (s *Session) Rules() board.Rules {
	return s.rules
}

// Phase returns the interaction phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Outcome returns the current game outcome.
func (s *Session) Outcome() Outcome {
	return s.outcome
}

// Selection returns the current selection and whether there is one.
func (s *Session) Selection() (Selection, bool) {
	return s.selection, s.phase == Selected
}

// PendingPromotion returns the square of the pawn awaiting promotion.
func (s *Session) PendingPromotion() (board.Square, bool) {
	if s.phase != PromotionPending {
		return board.NoSquare, false
	}
	return s.pendingMove.To(), true
}

// FEN returns the current position in FEN.
func (s *Session) FEN() string {
	return s.pos.ToFEN()
}

// reject reports err to the observer and returns it.
func (s *Session) reject(err error) error {
	s.observer.OnRejected(err)
	return err
}

// humanGuard rejects human input while it is not a human's turn to act.
func (s *Session) humanGuard() error {
	switch {
	case s.phase == GameOver:
		return ErrGameOver
	case s.thinking:
		return ErrOpponentThinking
	case s.OpponentToMove():
		return ErrNotYourTurn
	}
	return nil
}

// Select picks the piece on sq for the side to move.
func (s *Session) Select(sq board.Square) (Selection, error) {
	if err := s.humanGuard(); err != nil {
		return Selection{}, s.reject(err)
	}
	return s.selectSquare(sq)
}

func (s *Session) selectSquare(sq board.Square) (Selection, error) {
	switch s.phase {
	case GameOver:
		return Selection{}, s.reject(ErrGameOver)
	case PromotionPending:
		return Selection{}, s.reject(ErrPromotionPending)
	}

	piece := s.pos.PieceAt(sq)
	if piece == board.NoPiece || piece.Color() != s.pos.SideToMove {
		return Selection{}, s.reject(fmt.Errorf("%w: %v", ErrInvalidSelection, sq))
	}

	s.selection = Selection{
		Square: sq,
		Piece:  piece,
		Moves:  board.LegalMoves(&s.pos, sq, s.rules),
		Pinned: board.IsPinned(&s.pos, sq, s.rules),
	}
	s.phase = Selected
	s.observer.OnSelect(s.selection)
	return s.selection, nil
}

// Deselect drops the current selection.
func (s *Session) Deselect() {
	if s.phase == Selected {
		s.phase = Idle
		s.selection = Selection{}
	}
}

// AttemptMove moves the selected piece to dest. A pawn reaching the last
// rank with promotion enabled stops in PromotionPending and the turn passes
// only after Promote. Dropping the king on its own rook castles that way.
func (s *Session) AttemptMove(dest board.Square) (board.Move, error) {
	if err := s.humanGuard(); err != nil {
		return board.NoMove, s.reject(err)
	}
	return s.attemptMove(dest)
}

func (s *Session) attemptMove(dest board.Square) (board.Move, error) {
	switch s.phase {
	case GameOver:
		return board.NoMove, s.reject(ErrGameOver)
	case PromotionPending:
		return board.NoMove, s.reject(ErrPromotionPending)
	case Idle:
		return board.NoMove, s.reject(ErrNothingSelected)
	}

	m, ok := s.findMove(dest)
	if !ok {
		return board.NoMove, s.reject(fmt.Errorf("%w: %v to %v", ErrIllegalDestination, s.selection.Square, dest))
	}

	log.Printf("[MOVE] %s plays %s", s.pos.SideToMove, m)

	if m.IsPromotion() {
		s.pendingMove = m.WithPromotion(board.NoPieceType)
		s.pos.MakeBoardMove(s.pendingMove)
		s.selection = Selection{}
		s.phase = PromotionPending
		s.observer.OnPromotionPending(dest, s.pos.SideToMove)
		return s.pendingMove, nil
	}

	s.pos.Apply(m)
	s.selection = Selection{}
	s.phase = Idle
	s.observer.OnMove(m, s.pos)
	s.detectOutcome()
	return m, nil
}

// findMove maps dest to one of the selection's moves. Promotion variants
// collapse to the first one; the kind is chosen later.
func (s *Session) findMove(dest board.Square) (board.Move, bool) {
	for _, m := range s.selection.Moves {
		if m.To() == dest {
			return m, true
		}
	}

	// King dropped on its own rook
	if s.selection.Piece.Type() == board.King {
		if target := s.pos.PieceAt(dest); target == board.NewPiece(board.Rook, s.selection.Piece.Color()) {
			from := s.selection.Square
			for _, m := range s.selection.Moves {
				if m.IsCastling() && (m.To() > from) == (dest > from) {
					return m, true
				}
			}
		}
	}
	return board.NoMove, false
}

// HandleSquare forwards a square chosen on the board: an own piece is
// selected, a legal destination is moved to, anything else clears the
// selection. A selected king clicked onto its own rook castles, as in
// AttemptMove.
func (s *Session) HandleSquare(sq board.Square) error {
	if err := s.humanGuard(); err != nil {
		return s.reject(err)
	}
	if s.phase == PromotionPending {
		return s.reject(ErrPromotionPending)
	}

	if s.phase == Selected {
		if m, ok := s.findMove(sq); ok && m.IsCastling() {
			_, err := s.attemptMove(sq)
			return err
		}
	}

	piece := s.pos.PieceAt(sq)
	if piece != board.NoPiece && piece.Color() == s.pos.SideToMove {
		_, err := s.selectSquare(sq)
		return err
	}
	if s.phase == Selected {
		if _, ok := s.findMove(sq); ok {
			_, err := s.attemptMove(sq)
			return err
		}
	}
	s.Deselect()
	return nil
}

// Promote completes a pending promotion on sq with the given kind.
func (s *Session) Promote(sq board.Square, kind board.PieceType) error {
	if s.phase == GameOver {
		return s.reject(ErrGameOver)
	}
	if s.phase != PromotionPending {
		return s.reject(ErrNoPromotionPending)
	}
	if sq != s.pendingMove.To() {
		return s.reject(fmt.Errorf("%w on %v", ErrNoPromotionPending, sq))
	}
	if !kind.IsPromotionKind() {
		return s.reject(fmt.Errorf("%w: %v", ErrInvalidPromotion, kind))
	}

	m := s.pendingMove.WithPromotion(kind)
	s.pos.Promote(sq, kind)
	s.pos.PassTurn()
	s.pendingMove = board.NoMove
	s.phase = Idle
	log.Printf("[MOVE] promoted on %s to %s", sq, kind)
	s.observer.OnMove(m, s.pos)
	s.detectOutcome()
	return nil
}

// detectOutcome ends the game when the side to move has no legal moves.
func (s *Session) detectOutcome() {
	s.outcome = DetectOutcome(&s.pos, s.rules)
	if s.outcome.IsOver() {
		s.phase = GameOver
		log.Printf("[MOVE] game over: %s", s.outcome)
		s.observer.OnGameOver(s.outcome)
	}
}

// Abort ends the game without a result.
func (s *Session) Abort() error {
	if s.phase == GameOver {
		return s.reject(ErrGameOver)
	}
	s.cancelSearch()
	s.phase = GameOver
	s.selection = Selection{}
	s.pendingMove = board.NoMove
	s.outcome = Outcome{Status: Aborted, Winner: board.NoColor}
	s.observer.OnGameOver(s.outcome)
	return nil
}

// LoadFEN replaces the position with a validated FEN position. On error the
// session is unchanged; errors wrap board.ErrMalformedFEN or
// board.ErrInvalidPosition.
func (s *Session) LoadFEN(fen string) error {
	pos, err := board.LoadFEN(fen)
	if err != nil {
		log.Printf("[FEN] rejected %q: %v", fen, err)
		return s.reject(err)
	}
	s.cancelSearch()
	s.setPosition(pos)
	log.Printf("[FEN] loaded %s", fen)
	return nil
}

// Reset starts a new game from the initial position with every rule enabled.
func (s *Session) Reset() {
	s.cancelSearch()
	s.rules = board.DefaultRules()
	s.setPosition(board.NewPosition())
}

// setPosition installs pos and clears all transient state.
func (s *Session) setPosition(pos board.Position) {
	s.pos = pos
	s.phase = Idle
	s.selection = Selection{}
	s.pendingMove = board.NoMove
	s.outcome = Outcome{Status: InProgress, Winner: board.NoColor}
	s.detectOutcome()
}

// SetRules changes the rule toggles between turns. The selection is
// dropped and the current position is re-examined for a terminal state.
func (s *Session) SetRules(rules board.Rules) error {
	switch {
	case s.phase == PromotionPending:
		return s.reject(ErrPromotionPending)
	case s.thinking:
		return s.reject(ErrOpponentThinking)
	}
	s.rules = rules
	log.Printf("[MOVE] rules: %s", rules)
	if s.phase == GameOver {
		return nil
	}
	s.Deselect()
	s.detectOutcome()
	return nil
}
