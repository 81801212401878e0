package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Welcome screen dimensions
const (
	WelcomeWidth  = 420
	WelcomeHeight = 400
	WelcomePadX   = 32
	WelcomePadY   = 24
)

var welcomeLines = []string{
	"Click or drag one of your pieces to see where it can go.",
	"Dots mark quiet moves, rings mark captures.",
	"An orange square means the piece is pinned.",
	"Pawns reaching the last rank ask for Q, R, B or N.",
	"",
	"Settings turns castling, check, en passant and",
	"promotion on or off, seats the computer on",
	"either side, and loads positions from FEN.",
}

// WelcomeScreen explains the controls on first launch.
type WelcomeScreen struct {
	visible    bool
	x, y       int
	startBtn   *ModalButton
	onComplete func()
}

// NewWelcomeScreen creates a new welcome screen.
func NewWelcomeScreen() *WelcomeScreen {
	ws := &WelcomeScreen{
		x: (ScreenWidth - WelcomeWidth) / 2,
		y: (ScreenHeight - WelcomeHeight) / 2,
	}
	btnW, btnH := 160, 44
	ws.startBtn = NewModalButton(ws.x+(WelcomeWidth-btnW)/2, ws.y+WelcomeHeight-WelcomePadY-btnH,
		btnW, btnH, "Start Playing", true, ws.handleStart)
	return ws
}

// Show displays the welcome screen; onComplete runs when it is dismissed.
func (ws *WelcomeScreen) Show(onComplete func()) {
	ws.visible = true
	ws.onComplete = onComplete
}

// IsVisible returns true if the screen is visible.
func (ws *WelcomeScreen) IsVisible() bool {
	return ws.visible
}

func (ws *WelcomeScreen) handleStart() {
	ws.visible = false
	if ws.onComplete != nil {
		ws.onComplete()
	}
}

// Update handles input for the welcome screen, which consumes all input.
func (ws *WelcomeScreen) Update(input *InputHandler) bool {
	if !ws.visible {
		return false
	}
	if IsKeyJustPressed(ebiten.KeyEnter) {
		ws.handleStart()
		return true
	}
	ws.startBtn.Update(input)
	return true
}

// AnyButtonHovered returns true if the start button is hovered.
func (ws *WelcomeScreen) AnyButtonHovered() bool {
	return ws.visible && ws.startBtn.IsHovered()
}

// Draw renders the welcome screen.
func (ws *WelcomeScreen) Draw(screen *ebiten.Image) {
	if !ws.visible {
		return
	}
	vector.DrawFilledRect(screen, 0, 0, ScreenWidth, ScreenHeight, modalOverlay, false)

	frame := rect{ws.x, ws.y, WelcomeWidth, WelcomeHeight}
	frame.fill(screen, modalBg)
	frame.stroke(screen, 2, modalBorder)

	ws.drawKingIcon(screen)
	drawTextCentered(screen, "CHESS RULES", GetFaceWithSize(24), ws.x+WelcomeWidth/2, ws.y+76, textPrimary)

	face := GetRegularFace()
	y := ws.y + 110
	for _, line := range welcomeLines {
		drawText(screen, line, face, ws.x+WelcomePadX, y, textSecondary)
		y += 22
	}
	ws.startBtn.Draw(screen)
}

// drawKingIcon draws a small crown and cross.
func (ws *WelcomeScreen) drawKingIcon(screen *ebiten.Image) {
	cx := float32(ws.x + WelcomeWidth/2)
	y := float32(ws.y + 24)
	vector.DrawFilledCircle(screen, cx, y+8, 6, accentColor, false)
	vector.DrawFilledRect(screen, cx-8, y+10, 16, 14, accentColor, false)
	vector.DrawFilledRect(screen, cx-1, y-2, 3, 10, accentColor, false)
	vector.DrawFilledRect(screen, cx-4, y+2, 9, 3, accentColor, false)
}
