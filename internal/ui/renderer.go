package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

// Theme defines the board colors.
type Theme struct {
	LightSquare    color.RGBA
	DarkSquare     color.RGBA
	SelectedSquare color.RGBA
	PinnedSquare   color.RGBA
	LegalMoveColor color.RGBA
	LastMoveColor  color.RGBA
	CheckColor     color.RGBA
	Background     color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() *Theme {
	return &Theme{
		LightSquare:    color.RGBA{240, 217, 181, 255},
		DarkSquare:     color.RGBA{181, 136, 99, 255},
		SelectedSquare: color.RGBA{247, 247, 105, 180},
		PinnedSquare:   color.RGBA{230, 140, 60, 200},
		LegalMoveColor: color.RGBA{130, 151, 105, 200},
		LastMoveColor:  color.RGBA{180, 190, 100, 90},
		CheckColor:     color.RGBA{255, 100, 100, 180},
		Background:     color.RGBA{40, 44, 52, 255},
	}
}

// Renderer draws the board, highlights and pieces.
type Renderer struct {
	sprites    *SpriteManager
	theme      *Theme
	boardSize  int
	squareSize int
	flipped    bool // Black at the bottom
}

// NewRenderer creates a new renderer.
func NewRenderer(boardSize, squareSize int) *Renderer {
	return &Renderer{
		sprites:    NewSpriteManager(squareSize),
		theme:      DefaultTheme(),
		boardSize:  boardSize,
		squareSize: squareSize,
	}
}

// SetFlipped puts Black at the bottom of the board when true.
func (r *Renderer) SetFlipped(flipped bool) {
	r.flipped = flipped
}

// Flipped reports whether Black is at the bottom.
func (r *Renderer) Flipped() bool {
	return r.flipped
}

// DrawBoard draws the squares and their file and rank labels.
func (r *Renderer) DrawBoard(screen *ebiten.Image) {
	ss := float32(r.squareSize)
	for sq := board.A1; sq <= board.H8; sq++ {
		c := r.theme.LightSquare
		if (sq.File()+sq.Rank())%2 == 0 {
			c = r.theme.DarkSquare
		}
		x, y := r.SquareToScreen(sq)
		vector.DrawFilledRect(screen, float32(x), float32(y), ss, ss, c, false)
	}
	r.drawCoordinates(screen)
}

// drawCoordinates labels the bottom rank with files and the left file with
// ranks, in the contrasting square color.
func (r *Renderer) drawCoordinates(screen *ebiten.Image) {
	bottom, left := board.A1, board.A1
	if r.flipped {
		bottom, left = board.H8, board.H8
	}
	for i := 0; i < 8; i++ {
		fileSq := board.NewSquare(i, bottom.Rank())
		x, y := r.SquareToScreen(fileSq)
		label := string(rune('a' + fileSq.File()))
		drawText(screen, label, smallFace, x+r.squareSize-10, y+r.squareSize-15, r.labelColor(fileSq))

		rankSq := board.NewSquare(left.File(), i)
		x, y = r.SquareToScreen(rankSq)
		label = string(rune('1' + rankSq.Rank()))
		drawText(screen, label, smallFace, x+3, y+2, r.labelColor(rankSq))
	}
}

func (r *Renderer) labelColor(sq board.Square) color.RGBA {
	if (sq.File()+sq.Rank())%2 == 0 {
		return r.theme.LightSquare
	}
	return r.theme.DarkSquare
}

// DrawLastMove shades the origin and target of the previous move.
func (r *Renderer) DrawLastMove(screen *ebiten.Image, m board.Move) {
	if m == board.NoMove {
		return
	}
	r.highlightSquare(screen, m.From(), r.theme.LastMoveColor)
	r.highlightSquare(screen, m.To(), r.theme.LastMoveColor)
}

// DrawSelection highlights the selected piece, in the pinned color when it
// is pinned, and marks each destination: a dot for quiet moves, a ring
// for captures.
func (r *Renderer) DrawSelection(screen *ebiten.Image, sel game.Selection) {
	c := r.theme.SelectedSquare
	if sel.Pinned {
		c = r.theme.PinnedSquare
	}
	r.highlightSquare(screen, sel.Square, c)

	for _, m := range sel.Moves {
		if m.IsCapture() {
			r.drawCaptureIndicator(screen, m.To())
		} else {
			r.drawLegalMoveIndicator(screen, m.To())
		}
	}
}

// DrawCheck highlights the king's square.
func (r *Renderer) DrawCheck(screen *ebiten.Image, kingSq board.Square) {
	r.highlightSquare(screen, kingSq, r.theme.CheckColor)
}

func (r *Renderer) highlightSquare(screen *ebiten.Image, sq board.Square, c color.RGBA) {
	if !sq.IsValid() {
		return
	}
	x, y := r.SquareToScreen(sq)
	ss := float32(r.squareSize)
	vector.DrawFilledRect(screen, float32(x), float32(y), ss, ss, c, false)
}

func (r *Renderer) drawLegalMoveIndicator(screen *ebiten.Image, sq board.Square) {
	cx, cy := r.squareCenter(sq)
	vector.DrawFilledCircle(screen, cx, cy, float32(r.squareSize)*0.15, r.theme.LegalMoveColor, false)
}

func (r *Renderer) drawCaptureIndicator(screen *ebiten.Image, sq board.Square) {
	cx, cy := r.squareCenter(sq)
	ss := float32(r.squareSize)
	vector.StrokeCircle(screen, cx, cy, ss*0.45, ss*0.08, r.theme.LegalMoveColor, true)
}

func (r *Renderer) squareCenter(sq board.Square) (float32, float32) {
	x, y := r.SquareToScreen(sq)
	half := float32(r.squareSize) / 2
	return float32(x) + half, float32(y) + half
}

// DrawPieces draws every piece except the one on skip, applying shake
// offsets from anims when given.
func (r *Renderer) DrawPieces(screen *ebiten.Image, pos *board.Position, skip board.Square, anims *AnimationManager) {
	for sq := board.A1; sq <= board.H8; sq++ {
		if sq == skip {
			continue
		}
		piece := pos.PieceAt(sq)
		if piece == board.NoPiece {
			continue
		}
		x, y := r.SquareToScreen(sq)
		if anims != nil {
			dx, dy := anims.GetShakeOffset(sq)
			x += int(dx)
			y += int(dy)
		}
		r.sprites.DrawPieceAt(screen, piece, x, y)
	}
}

// DrawDraggedPiece draws piece centered on the cursor.
func (r *Renderer) DrawDraggedPiece(screen *ebiten.Image, piece board.Piece, mouseX, mouseY int) {
	half := r.squareSize / 2
	r.sprites.DrawPieceAt(screen, piece, mouseX-half, mouseY-half)
}

// SquareToScreen returns the top-left corner of sq.
func (r *Renderer) SquareToScreen(sq board.Square) (int, int) {
	file, rank := sq.File(), sq.Rank()
	if r.flipped {
		file, rank = 7-file, 7-rank
	}
	return file * r.squareSize, (7 - rank) * r.squareSize
}

// ScreenToSquare returns the square under x, y, NoSquare off the board.
func (r *Renderer) ScreenToSquare(x, y int) board.Square {
	if x < 0 || x >= r.boardSize || y < 0 || y >= r.boardSize {
		return board.NoSquare
	}
	file := x / r.squareSize
	rank := 7 - y/r.squareSize
	if r.flipped {
		file, rank = 7-file, 7-rank
	}
	return board.NewSquare(file, rank)
}

// SquareSize returns the size of one square in pixels.
func (r *Renderer) SquareSize() int {
	return r.squareSize
}

// Theme returns the current theme.
func (r *Renderer) Theme() *Theme {
	return r.theme
}

// Sprites returns the sprite manager.
func (r *Renderer) Sprites() *SpriteManager {
	return r.sprites
}
