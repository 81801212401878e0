package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/chessrules/internal/board"
)

var (
	promotionShade = color.RGBA{0, 0, 0, 120}
	promotionTile  = color.RGBA{235, 235, 235, 255}
	promotionHover = color.RGBA{250, 220, 140, 255}
)

// PromotionPicker asks which piece a pawn on the last rank becomes. The
// choices stack from the promotion square toward the middle of the board.
type PromotionPicker struct {
	square  board.Square
	color   board.Color
	visible bool
	hovered int
}

// NewPromotionPicker creates a hidden picker.
func NewPromotionPicker() *PromotionPicker {
	return &PromotionPicker{hovered: -1}
}

// Show opens the picker for a pawn of color c on sq.
func (pp *PromotionPicker) Show(sq board.Square, c board.Color) {
	pp.square, pp.color = sq, c
	pp.visible = true
	pp.hovered = -1
}

// Hide closes the picker.
func (pp *PromotionPicker) Hide() {
	pp.visible = false
}

// IsVisible reports whether the picker is open.
func (pp *PromotionPicker) IsVisible() bool {
	return pp.visible
}

// Square returns the promotion square.
func (pp *PromotionPicker) Square() board.Square {
	return pp.square
}

func (pp *PromotionPicker) tile(r *Renderer, i int) rect {
	x, y := r.SquareToScreen(pp.square)
	ss := r.SquareSize()
	if y == 0 {
		return rect{x, y + i*ss, ss, ss}
	}
	return rect{x, y - i*ss, ss, ss}
}

// Update returns the chosen kind once the user clicks a tile or presses
// its key.
func (pp *PromotionPicker) Update(input *InputHandler, r *Renderer) (board.PieceType, bool) {
	if !pp.visible {
		return board.NoPieceType, false
	}
	if kind, ok := promotionKeyPressed(); ok {
		return kind, true
	}

	mx, my := input.MousePosition()
	pp.hovered = -1
	for i := range board.PromotionKinds {
		if pp.tile(r, i).contains(mx, my) {
			pp.hovered = i
		}
	}
	if pp.hovered >= 0 && input.IsLeftJustPressed() {
		return board.PromotionKinds[pp.hovered], true
	}
	return board.NoPieceType, false
}

// IsHovered reports whether a tile is under the cursor.
func (pp *PromotionPicker) IsHovered() bool {
	return pp.visible && pp.hovered >= 0
}

// Draw renders the choices over a shaded board.
func (pp *PromotionPicker) Draw(screen *ebiten.Image, r *Renderer) {
	if !pp.visible {
		return
	}
	vector.DrawFilledRect(screen, 0, 0, BoardSize, BoardSize, promotionShade, false)
	for i, kind := range board.PromotionKinds {
		t := pp.tile(r, i)
		c := promotionTile
		if i == pp.hovered {
			c = promotionHover
		}
		vector.DrawFilledCircle(screen, float32(t.X+t.W/2), float32(t.Y+t.H/2), float32(t.W)/2, c, true)
		r.Sprites().DrawPieceScaled(screen, board.NewPiece(kind, pp.color),
			float64(t.X)+float64(t.W)*0.1, float64(t.Y)+float64(t.H)*0.1, 0.8)
	}
}
