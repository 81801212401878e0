package ui

import (
	"image"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/hailam/chessrules/internal/board"
)

// Piece outlines on a 45x45 canvas. FILL, STROKE and DETAIL are replaced
// per color before rasterizing.
var pieceShapes = map[board.PieceType]string{
	board.Pawn: `<circle cx="22.5" cy="13" r="4.5"/>
<polygon points="17,30 19.5,18 25.5,18 28,30"/>
<rect x="11" y="30" width="23" height="6" rx="1"/>`,

	board.Knight: `<polygon points="14,37 34,37 33,22 29,13 23,9 20,11 13,18 10,25 13,27.5 18,23 21,25 15,32"/>
<circle cx="19" cy="15.5" r="1.2" fill="DETAIL" stroke="none"/>
<rect x="12" y="33" width="22" height="4" rx="1"/>`,

	board.Bishop: `<circle cx="22.5" cy="8.5" r="2.5"/>
<ellipse cx="22.5" cy="21" rx="7" ry="9.5"/>
<line x1="22.5" y1="16" x2="22.5" y2="25" stroke="DETAIL"/>
<line x1="18.5" y1="20.5" x2="26.5" y2="20.5" stroke="DETAIL"/>
<rect x="12" y="31" width="21" height="5" rx="1"/>`,

	board.Rook: `<path d="M11 9h5v3h4V9h5v3h4V9h5v7H11z"/>
<rect x="14" y="16" width="17" height="15"/>
<rect x="11" y="31" width="23" height="5" rx="1"/>`,

	board.Queen: `<polygon points="9,26 12,12 17,23 22.5,10 28,23 33,12 36,26"/>
<circle cx="12" cy="11" r="2.5"/>
<circle cx="22.5" cy="8.5" r="2.5"/>
<circle cx="33" cy="11" r="2.5"/>
<rect x="10" y="26" width="25" height="5"/>
<rect x="9" y="31" width="27" height="5" rx="1"/>`,

	board.King: `<rect x="21" y="4" width="3" height="10"/>
<rect x="18" y="7" width="9" height="3"/>
<path d="M11 33 L13 20 Q22.5 11 32 20 L34 33 Z"/>
<line x1="14" y1="26" x2="31" y2="26" stroke="DETAIL"/>
<rect x="9" y="33" width="27" height="4" rx="1"/>`,
}

var pieceColors = map[board.Color]*strings.Replacer{
	board.White: strings.NewReplacer("FILL", "#fafafa", "STROKE", "#1a1a1a", "DETAIL", "#1a1a1a"),
	board.Black: strings.NewReplacer("FILL", "#2a2a2a", "STROKE", "#000000", "DETAIL", "#e8e8e8"),
}

// pieceSVG returns the SVG document for p.
func pieceSVG(p board.Piece) string {
	doc := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">` +
		`<g fill="FILL" stroke="STROKE" stroke-width="1.5" stroke-linejoin="round">` +
		pieceShapes[p.Type()] + `</g></svg>`
	return pieceColors[p.Color()].Replace(doc)
}

// SpriteManager rasterizes piece sprites.
type SpriteManager struct {
	pieces      map[board.Piece]*ebiten.Image
	size        int     // display size
	renderScale float64 // supersampling factor for smooth downscaling
}

// NewSpriteManager creates sprites for every piece at the given size.
func NewSpriteManager(size int) *SpriteManager {
	sm := &SpriteManager{
		pieces:      make(map[board.Piece]*ebiten.Image),
		size:        size,
		renderScale: 3.0,
	}
	sm.loadPieces()
	return sm
}

// GetPiece returns the sprite for a piece.
func (sm *SpriteManager) GetPiece(p board.Piece) *ebiten.Image {
	return sm.pieces[p]
}

func (sm *SpriteManager) loadPieces() {
	renderSize := int(float64(sm.size) * sm.renderScale)

	for _, c := range []board.Color{board.White, board.Black} {
		for pt := board.Pawn; pt <= board.King; pt++ {
			p := board.NewPiece(pt, c)
			icon, err := oksvg.ReadIconStream(strings.NewReader(pieceSVG(p)))
			if err != nil {
				log.Printf("Warning: Failed to parse sprite for %s: %v", p, err)
				continue
			}
			icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))

			rgba := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
			scanner := rasterx.NewScannerGV(renderSize, renderSize, rgba, rgba.Bounds())
			raster := rasterx.NewDasher(renderSize, renderSize, scanner)
			icon.Draw(raster, 1.0)

			sm.pieces[p] = ebiten.NewImageFromImage(rgba)
		}
	}
}

// DrawPieceAt draws a piece with its top-left corner at x, y.
func (sm *SpriteManager) DrawPieceAt(screen *ebiten.Image, p board.Piece, x, y int) {
	sm.DrawPieceScaled(screen, p, float64(x), float64(y), 1.0)
}

// DrawPieceScaled draws a piece at x, y scaled relative to the square size.
func (sm *SpriteManager) DrawPieceScaled(screen *ebiten.Image, p board.Piece, x, y, scale float64) {
	if p == board.NoPiece {
		return
	}
	sprite := sm.GetPiece(p)
	if sprite == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	s := scale / sm.renderScale
	op.GeoM.Scale(s, s)
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sprite, op)
}

// Size returns the display size of piece sprites.
func (sm *SpriteManager) Size() int {
	return sm.size
}
