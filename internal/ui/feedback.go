package ui

import (
	"errors"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

// InvalidMoveReason explains a rejected drop.
type InvalidMoveReason int

const (
	ReasonUnknown InvalidMoveReason = iota
	ReasonWouldLeaveKingInCheck
	ReasonBlockedByOwnPiece
	ReasonInvalidPieceMovement
	ReasonNotYourTurn
	ReasonOpponentThinking
	ReasonGameOver
	ReasonPromotionPending
)

// Message returns the toast text for the reason.
func (r InvalidMoveReason) Message() string {
	switch r {
	case ReasonWouldLeaveKingInCheck:
		return "Illegal move - King would be in check"
	case ReasonBlockedByOwnPiece:
		return "Square occupied by your piece"
	case ReasonInvalidPieceMovement:
		return "Invalid move for this piece"
	case ReasonNotYourTurn:
		return "Not your turn"
	case ReasonOpponentThinking:
		return "Computer is thinking"
	case ReasonGameOver:
		return "Game is over"
	case ReasonPromotionPending:
		return "Choose a promotion piece first"
	}
	return "Invalid move"
}

// classifyDrop explains why from-to is not among the legal moves. A move the
// piece could make if king safety were ignored must have been refused for
// leaving the king attacked.
func classifyDrop(pos *board.Position, rules board.Rules, from, to board.Square) InvalidMoveReason {
	piece := pos.PieceAt(from)
	if piece == board.NoPiece {
		return ReasonUnknown
	}
	if dest := pos.PieceAt(to); dest != board.NoPiece && dest.Color() == piece.Color() {
		return ReasonBlockedByOwnPiece
	}
	for _, m := range board.PseudoLegalMoves(pos, from, rules) {
		if m.To() == to {
			return ReasonWouldLeaveKingInCheck
		}
	}
	return ReasonInvalidPieceMovement
}

// reasonFor maps a session rejection to a reason. Illegal destinations
// need the position and are classified by classifyDrop instead.
func reasonFor(err error) InvalidMoveReason {
	switch {
	case errors.Is(err, game.ErrNotYourTurn):
		return ReasonNotYourTurn
	case errors.Is(err, game.ErrOpponentThinking):
		return ReasonOpponentThinking
	case errors.Is(err, game.ErrGameOver):
		return ReasonGameOver
	case errors.Is(err, game.ErrPromotionPending):
		return ReasonPromotionPending
	}
	return ReasonUnknown
}

// ToastType represents the type of toast notification.
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastWarning
	ToastError
	ToastSuccess
)

// Toast is a transient notification.
type Toast struct {
	Message   string
	Type      ToastType
	StartTime time.Time
	Duration  time.Duration
}

// ToastManager stacks up to maxStack toasts above the board.
type ToastManager struct {
	toasts   []*Toast
	maxStack int
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{maxStack: 3}
}

// Show displays a new toast, dropping the oldest past the stack limit.
// A toast repeating the newest one only restarts its timer.
func (tm *ToastManager) Show(message string, toastType ToastType, duration time.Duration) {
	if n := len(tm.toasts); n > 0 && tm.toasts[n-1].Message == message {
		tm.toasts[n-1].StartTime = time.Now()
		return
	}
	tm.toasts = append(tm.toasts, &Toast{
		Message:   message,
		Type:      toastType,
		StartTime: time.Now(),
		Duration:  duration,
	})
	if len(tm.toasts) > tm.maxStack {
		tm.toasts = tm.toasts[1:]
	}
}

// Update removes expired toasts.
func (tm *ToastManager) Update() {
	now := time.Now()
	active := tm.toasts[:0]
	for _, t := range tm.toasts {
		if now.Sub(t.StartTime) < t.Duration {
			active = append(active, t)
		}
	}
	tm.toasts = active
}

func toastColors(t ToastType, alpha float64) (bg, fg color.RGBA) {
	a := func(v float64) uint8 { return uint8(v * alpha) }
	switch t {
	case ToastWarning:
		return color.RGBA{180, 140, 20, a(220)}, color.RGBA{40, 30, 0, a(255)}
	case ToastError:
		return color.RGBA{180, 50, 50, a(220)}, color.RGBA{255, 255, 255, a(255)}
	case ToastSuccess:
		return color.RGBA{50, 150, 50, a(220)}, color.RGBA{255, 255, 255, a(255)}
	}
	return color.RGBA{50, 100, 150, a(220)}, color.RGBA{255, 255, 255, a(255)}
}

// Draw renders the active toasts centered over the board.
func (tm *ToastManager) Draw(screen *ebiten.Image) {
	face := GetRegularFace()
	if face == nil {
		return
	}

	const fade, padding = 0.2, 12.0
	y := 50.0
	for _, t := range tm.toasts {
		elapsed := time.Since(t.StartTime).Seconds()
		alpha := 1.0
		if elapsed < fade {
			alpha = elapsed / fade
		} else if remaining := t.Duration.Seconds() - elapsed; remaining < fade {
			alpha = math.Max(0, remaining/fade)
		}
		bg, fg := toastColors(t.Type, alpha)

		w, h := MeasureText(t.Message, face)
		boxW, boxH := w+padding*2, h+padding*2
		x := float64(BoardSize)/2 - boxW/2

		vector.DrawFilledRect(screen, float32(x), float32(y), float32(boxW), float32(boxH), bg, false)
		drawText(screen, t.Message, face, int(x+padding), int(y+padding), fg)
		y += boxH + 8
	}
}

// ShakeAnimation wobbles the piece on a square.
type ShakeAnimation struct {
	Square    board.Square
	StartTime time.Time
	Duration  time.Duration
	Intensity float64
}

// FlashAnimation tints a square and fades out.
type FlashAnimation struct {
	Square    board.Square
	StartTime time.Time
	Duration  time.Duration
	Color     color.RGBA
}

// AnimationManager tracks square animations.
type AnimationManager struct {
	shakes  []*ShakeAnimation
	flashes []*FlashAnimation
}

// NewAnimationManager creates a new animation manager.
func NewAnimationManager() *AnimationManager {
	return &AnimationManager{}
}

// StartShake begins a shake animation on a square.
func (am *AnimationManager) StartShake(sq board.Square) {
	am.shakes = append(am.shakes, &ShakeAnimation{
		Square:    sq,
		StartTime: time.Now(),
		Duration:  300 * time.Millisecond,
		Intensity: 8.0,
	})
}

// StartFlash begins a flash animation on a square.
func (am *AnimationManager) StartFlash(sq board.Square, c color.RGBA) {
	am.flashes = append(am.flashes, &FlashAnimation{
		Square:    sq,
		StartTime: time.Now(),
		Duration:  400 * time.Millisecond,
		Color:     c,
	})
}

// Update removes expired animations.
func (am *AnimationManager) Update() {
	now := time.Now()
	shakes := am.shakes[:0]
	for _, s := range am.shakes {
		if now.Sub(s.StartTime) < s.Duration {
			shakes = append(shakes, s)
		}
	}
	am.shakes = shakes

	flashes := am.flashes[:0]
	for _, f := range am.flashes {
		if now.Sub(f.StartTime) < f.Duration {
			flashes = append(flashes, f)
		}
	}
	am.flashes = flashes
}

// GetShakeOffset returns the current shake offset for a square.
func (am *AnimationManager) GetShakeOffset(sq board.Square) (float64, float64) {
	for _, s := range am.shakes {
		if s.Square != sq {
			continue
		}
		progress := time.Since(s.StartTime).Seconds() / s.Duration.Seconds()
		if progress >= 1.0 {
			return 0, 0
		}
		// damped sine
		amplitude := s.Intensity * math.Exp(-5*progress)
		return amplitude * math.Sin(40*progress), 0
	}
	return 0, 0
}

// DrawFlashes renders the active flash overlays.
func (am *AnimationManager) DrawFlashes(screen *ebiten.Image, r *Renderer) {
	size := float32(r.SquareSize())
	for _, f := range am.flashes {
		progress := time.Since(f.StartTime).Seconds() / f.Duration.Seconds()
		if progress >= 1.0 {
			continue
		}
		c := f.Color
		c.A = uint8(float64(c.A) * (1.0 - progress))
		x, y := r.SquareToScreen(f.Square)
		vector.DrawFilledRect(screen, float32(x), float32(y), size, size, c, false)
	}
}

// FeedbackManager turns session events into toasts, animations and sounds.
type FeedbackManager struct {
	toasts     *ToastManager
	animations *AnimationManager
	audio      *AudioManager
}

// NewFeedbackManager creates a new feedback manager.
func NewFeedbackManager() *FeedbackManager {
	return &FeedbackManager{
		toasts:     NewToastManager(),
		animations: NewAnimationManager(),
		audio:      NewAudioManager(),
	}
}

// Update advances toasts and animations.
func (fm *FeedbackManager) Update() {
	fm.toasts.Update()
	fm.animations.Update()
}

// Draw renders flashes and toasts.
func (fm *FeedbackManager) Draw(screen *ebiten.Image, r *Renderer) {
	fm.animations.DrawFlashes(screen, r)
	fm.toasts.Draw(screen)
}

// Animations returns the animation manager for the renderer.
func (fm *FeedbackManager) Animations() *AnimationManager {
	return fm.animations
}

// Audio returns the audio manager.
func (fm *FeedbackManager) Audio() *AudioManager {
	return fm.audio
}

// Info shows a neutral toast.
func (fm *FeedbackManager) Info(message string) {
	fm.toasts.Show(message, ToastInfo, 2*time.Second)
}

// Error shows an error toast with the invalid sound.
func (fm *FeedbackManager) Error(message string) {
	fm.toasts.Show(message, ToastError, 3*time.Second)
	fm.audio.Play(SoundInvalid)
}

// OnInvalidMove reports a refused drop of the piece on from onto to.
func (fm *FeedbackManager) OnInvalidMove(from, to board.Square, reason InvalidMoveReason) {
	fm.toasts.Show(reason.Message(), ToastWarning, 2*time.Second)
	if from.IsValid() {
		fm.animations.StartShake(from)
	}
	if to.IsValid() {
		fm.animations.StartFlash(to, color.RGBA{255, 80, 80, 150})
	}
	fm.audio.Play(SoundInvalid)
}

// OnMoveMade plays the sound for m and announces check.
func (fm *FeedbackManager) OnMoveMade(m board.Move, givesCheck bool) {
	if givesCheck {
		fm.toasts.Show("Check!", ToastWarning, 2*time.Second)
	}
	fm.audio.Play(soundForMove(m, givesCheck))
}

// OnPromotionPending prompts for the promotion piece.
func (fm *FeedbackManager) OnPromotionPending() {
	fm.toasts.Show("Choose a piece: Q, R, B or N", ToastInfo, 3*time.Second)
}

// OnGameOver announces the outcome.
func (fm *FeedbackManager) OnGameOver(o game.Outcome) {
	tt := ToastInfo
	if o.Status == game.Checkmate {
		tt = ToastSuccess
	}
	fm.toasts.Show(o.String(), tt, 5*time.Second)
	fm.audio.Play(SoundGameEnd)
}
