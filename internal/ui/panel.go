package ui

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/engine"
	"github.com/hailam/chessrules/internal/storage"
)

// Panel dimensions
const (
	PanelPadding    = 20
	SectionSpacing  = 24
	ButtonHeight    = 40
	TabHeight       = 32
	CollapsedWidth  = 20
	CollapseButtonW = 16
	CollapseButtonH = 48
	SectionLabelH   = 20
	StatusBarH      = 70
)

// Panel colors
var (
	panelBg         = color.RGBA{38, 40, 45, 255}
	sectionBg       = color.RGBA{48, 52, 58, 255}
	tabActiveBg     = color.RGBA{76, 132, 96, 255}
	tabInactiveBg   = color.RGBA{50, 54, 60, 255}
	tabHoverBg      = color.RGBA{65, 70, 78, 255}
	buttonBg        = color.RGBA{50, 54, 60, 255}
	buttonHoverBg   = color.RGBA{65, 70, 78, 255}
	buttonPressedBg = color.RGBA{40, 44, 50, 255}
	buttonBorder    = color.RGBA{70, 75, 82, 255}
	accentColor     = color.RGBA{76, 175, 120, 255}
	accentHover     = color.RGBA{96, 195, 140, 255}
	accentPressed   = color.RGBA{56, 155, 100, 255}
	textPrimary     = color.RGBA{240, 240, 245, 255}
	textSecondary   = color.RGBA{160, 165, 175, 255}
	textMuted       = color.RGBA{120, 125, 135, 255}
	dividerColor    = color.RGBA{60, 65, 72, 255}
	moveRowAlt      = color.RGBA{44, 48, 54, 255}
	statusThinking  = color.RGBA{100, 180, 255, 255}
	statusGameOver  = color.RGBA{255, 200, 80, 255}
	statusCheck     = color.RGBA{255, 120, 120, 255}
	ruleOffBg       = color.RGBA{90, 50, 50, 255}
)

// Button is a clickable panel element.
type Button struct {
	rect
	Label   string
	OnClick func()
	hovered bool
	pressed bool
}

func (b *Button) track(input *InputHandler) {
	mx, my := input.MousePosition()
	b.hovered = b.contains(mx, my)
	b.pressed = b.hovered && input.IsLeftPressed()
}

var ruleShortLabels = map[string]string{
	"castle":    "Castle",
	"check":     "Check",
	"enpassant": "E.p.",
	"promotion": "Promo",
}

// Panel is the side panel with game controls, rule toggles, the current
// selection and the move list.
type Panel struct {
	game      *Game
	collapsed bool

	collapseBtn *Button
	newGameBtn  *Button
	settingsBtn *Button
	abortBtn    *Button
	modeTabs    []*Button // vs Human, vs Computer
	diffTabs    []*Button // Easy, Medium, Hard
	ruleTabs    []*Button // board.RuleNames order

	// Move history scroll
	scrollY    int
	maxScrollY int
}

// NewPanel creates a new panel for the given game.
func NewPanel(g *Game) *Panel {
	p := &Panel{game: g}
	p.createButtons()
	return p
}

func (p *Panel) createButtons() {
	tabY := (ScreenHeight - CollapseButtonH) / 2
	x := BoardSize
	if p.collapsed {
		x = BoardSize + 2
	}
	p.collapseBtn = &Button{rect: rect{x, tabY, CollapseButtonW, CollapseButtonH}, OnClick: p.toggleCollapse}

	contentX := BoardSize + PanelPadding
	contentW := PanelWidth - PanelPadding*2
	half := (contentW - 8) / 2

	y := PanelPadding + 8
	p.newGameBtn = &Button{rect: rect{contentX, y, contentW, ButtonHeight}, Label: "New Game", OnClick: p.game.NewGameAction}
	y += ButtonHeight + 8
	p.settingsBtn = &Button{rect: rect{contentX, y, half, ButtonHeight - 6}, Label: "Settings", OnClick: p.game.ShowSettings}
	p.abortBtn = &Button{rect: rect{contentX + half + 8, y, half, ButtonHeight - 6}, Label: "Abort", OnClick: p.game.AbortAction}

	p.modeTabs = nil
	for i, label := range []string{"vs Human", "vs Computer"} {
		mode := storage.GameMode(i)
		p.modeTabs = append(p.modeTabs, &Button{
			rect:    rect{contentX + i*contentW/2, 0, contentW / 2, TabHeight},
			Label:   label,
			OnClick: func() { p.game.SetGameMode(mode) },
		})
	}

	p.diffTabs = nil
	for i, label := range []string{"Easy", "Medium", "Hard"} {
		d := engine.Difficulty(i)
		p.diffTabs = append(p.diffTabs, &Button{
			rect:    rect{contentX + i*contentW/3, 0, contentW / 3, TabHeight - 2},
			Label:   label,
			OnClick: func() { p.game.SetDifficulty(d) },
		})
	}

	p.ruleTabs = nil
	for i, name := range board.RuleNames {
		p.ruleTabs = append(p.ruleTabs, &Button{
			rect:    rect{contentX + i*contentW/4, 0, contentW / 4, TabHeight - 4},
			Label:   ruleShortLabels[name],
			OnClick: func() { p.game.ToggleRule(name) },
		})
	}
	p.layout()
}

// layout places the sections below the fixed buttons. The difficulty row
// only exists against the computer.
func (p *Panel) layout() {
	y := p.settingsBtn.Y + p.settingsBtn.H + SectionSpacing + SectionLabelH
	for _, b := range p.modeTabs {
		b.Y = y
	}
	y += TabHeight + SectionSpacing + SectionLabelH
	if p.game.GameMode() == storage.ModeHumanVsComputer {
		for _, b := range p.diffTabs {
			b.Y = y
		}
		y += TabHeight + SectionSpacing + SectionLabelH
	}
	for _, b := range p.ruleTabs {
		b.Y = y
	}
}

func (p *Panel) visibleButtons() []*Button {
	btns := []*Button{p.newGameBtn, p.settingsBtn, p.abortBtn}
	btns = append(btns, p.modeTabs...)
	if p.game.GameMode() == storage.ModeHumanVsComputer {
		btns = append(btns, p.diffTabs...)
	}
	return append(btns, p.ruleTabs...)
}

// HandleInput processes input for the panel and reports whether it was
// consumed.
func (p *Panel) HandleInput(input *InputHandler) bool {
	p.collapseBtn.track(input)
	if input.IsLeftJustPressed() && p.collapseBtn.hovered {
		p.collapseBtn.OnClick()
		return true
	}
	if p.collapsed {
		return false
	}
	p.layout()

	mx, my := input.MousePosition()
	if wheel := input.Wheel(); wheel != 0 && mx >= BoardSize && my >= p.historyStartY() && my < ScreenHeight-StatusBarH {
		p.scrollY -= int(wheel * 30)
		p.scrollY = max(0, min(p.scrollY, p.maxScrollY))
	}

	for _, b := range p.visibleButtons() {
		b.track(input)
		if b.hovered && input.IsLeftJustPressed() {
			b.OnClick()
			return true
		}
	}
	return input.IsLeftJustPressed() && mx >= BoardSize
}

// AnyButtonHovered returns true if any button in the panel is hovered.
func (p *Panel) AnyButtonHovered() bool {
	if p.collapseBtn.hovered {
		return true
	}
	if p.collapsed {
		return false
	}
	for _, b := range p.visibleButtons() {
		if b.hovered {
			return true
		}
	}
	return false
}

// Draw renders the panel.
func (p *Panel) Draw(screen *ebiten.Image) {
	if p.collapsed {
		rect{BoardSize, 0, CollapsedWidth, ScreenHeight}.fill(screen, panelBg)
		p.drawCollapseButton(screen, true)
		return
	}
	p.layout()

	rect{BoardSize, 0, PanelWidth, ScreenHeight}.fill(screen, panelBg)
	p.drawCollapseButton(screen, false)

	p.drawPrimaryButton(screen, p.newGameBtn)
	p.drawSecondaryButton(screen, p.settingsBtn)
	p.drawSecondaryButton(screen, p.abortBtn)

	labelX := BoardSize + PanelPadding
	p.drawSectionLabel(screen, "Game Mode", labelX, p.modeTabs[0].Y-SectionLabelH)
	for i, b := range p.modeTabs {
		p.drawTab(screen, b, storage.GameMode(i) == p.game.GameMode())
	}

	if p.game.GameMode() == storage.ModeHumanVsComputer {
		p.drawSectionLabel(screen, "Difficulty", labelX, p.diffTabs[0].Y-SectionLabelH)
		for i, b := range p.diffTabs {
			p.drawTab(screen, b, engine.Difficulty(i) == p.game.Difficulty())
		}
	}

	p.drawSectionLabel(screen, "Rules", labelX, p.ruleTabs[0].Y-SectionLabelH)
	rules := p.game.Rules()
	for i, b := range p.ruleTabs {
		on, _ := rules.Get(board.RuleNames[i])
		p.drawRuleTab(screen, b, on)
	}

	selY := p.ruleTabs[0].Y + p.ruleTabs[0].H + 10
	p.drawText(screen, p.game.SelectionInfo(), labelX, selY, textSecondary)

	historyY := p.historyStartY()
	p.drawSectionLabel(screen, "Moves", labelX, historyY)
	p.drawMoveHistory(screen, historyY+SectionLabelH+4)

	p.drawStatusBar(screen)
}

func (p *Panel) historyStartY() int {
	return p.ruleTabs[0].Y + p.ruleTabs[0].H + 10 + SectionLabelH + 8
}

func (p *Panel) drawCollapseButton(screen *ebiten.Image, expand bool) {
	btn := p.collapseBtn
	bg := panelBg
	if btn.hovered {
		bg = sectionBg
	}
	btn.fill(screen, bg)

	arrow := "‹"
	if expand {
		arrow = "›"
	}
	c := textMuted
	if btn.hovered {
		c = textPrimary
	}
	p.drawTextCentered(screen, arrow, btn.X+btn.W/2, btn.Y+btn.H/2, c)
}

func (p *Panel) drawPrimaryButton(screen *ebiten.Image, btn *Button) {
	bg := accentColor
	if btn.pressed {
		bg = accentPressed
	} else if btn.hovered {
		bg = accentHover
	}
	btn.fill(screen, bg)

	border := accentPressed
	if btn.hovered {
		border = color.RGBA{116, 215, 160, 255}
	}
	btn.stroke(screen, 1, border)
	p.drawTextCentered(screen, btn.Label, btn.X+btn.W/2, btn.Y+btn.H/2, textPrimary)
}

func (p *Panel) drawSecondaryButton(screen *ebiten.Image, btn *Button) {
	bg := buttonBg
	if btn.pressed {
		bg = buttonPressedBg
	} else if btn.hovered {
		bg = buttonHoverBg
	}
	btn.fill(screen, bg)

	border := buttonBorder
	if btn.hovered {
		border = accentColor
	}
	btn.stroke(screen, 1, border)
	p.drawTextCentered(screen, btn.Label, btn.X+btn.W/2, btn.Y+btn.H/2, textSecondary)
}

func (p *Panel) drawTab(screen *ebiten.Image, btn *Button, active bool) {
	bg := tabInactiveBg
	switch {
	case active:
		bg = tabActiveBg
	case btn.pressed:
		bg = buttonPressedBg
	case btn.hovered:
		bg = tabHoverBg
	}
	btn.fill(screen, bg)

	border := buttonBorder
	if active {
		border = tabActiveBg
	} else if btn.hovered {
		border = accentColor
	}
	btn.stroke(screen, 1, border)

	c := textSecondary
	if active {
		c = textPrimary
	}
	p.drawTextCentered(screen, btn.Label, btn.X+btn.W/2, btn.Y+btn.H/2, c)
}

// drawRuleTab shows an enabled rule in green and a disabled one in red.
func (p *Panel) drawRuleTab(screen *ebiten.Image, btn *Button, on bool) {
	bg := ruleOffBg
	if on {
		bg = tabActiveBg
	}
	if btn.hovered {
		bg.R, bg.G, bg.B = bg.R+15, bg.G+15, bg.B+15
	}
	btn.fill(screen, bg)
	btn.stroke(screen, 1, buttonBorder)
	p.drawTextCentered(screen, btn.Label, btn.X+btn.W/2, btn.Y+btn.H/2, textPrimary)
}

func (p *Panel) drawSectionLabel(screen *ebiten.Image, label string, x, y int) {
	p.drawText(screen, label, x, y, textMuted)
}

func (p *Panel) drawMoveHistory(screen *ebiten.Image, startY int) {
	moves := p.game.SANHistory()
	x := BoardSize + PanelPadding
	if len(moves) == 0 {
		p.drawText(screen, "No moves yet", x, startY+5, textMuted)
		return
	}

	// A game loaded with Black to move starts its list with an empty slot.
	offset := 0
	if p.game.StartedWithBlack() {
		offset = 1
	}

	rowHeight := 22
	maxY := ScreenHeight - StatusBarH
	visibleHeight := maxY - startY

	totalRows := (len(moves) + offset + 1) / 2
	contentHeight := totalRows * rowHeight
	p.maxScrollY = max(0, contentHeight-visibleHeight)
	p.scrollY = min(p.scrollY, p.maxScrollY)

	startRow := p.scrollY / rowHeight
	y := startY - p.scrollY%rowHeight
	for row := startRow; row < totalRows && y <= maxY-rowHeight; row++ {
		if y >= startY {
			if row%2 == 1 {
				vector.DrawFilledRect(screen, float32(x-4), float32(y-2),
					float32(PanelWidth-PanelPadding*2+8), float32(rowHeight), moveRowAlt, false)
			}
			p.drawText(screen, fmt.Sprintf("%d.", p.game.FirstMoveNumber()+row), x, y, textMuted)
			if i := row*2 - offset; i >= 0 {
				p.drawText(screen, moves[i], x+40, y, textPrimary)
			} else {
				p.drawText(screen, "...", x+40, y, textMuted)
			}
			if i := row*2 + 1 - offset; i < len(moves) {
				p.drawText(screen, moves[i], x+120, y, textPrimary)
			}
		}
		y += rowHeight
	}

	if p.maxScrollY > 0 {
		pct := float32(p.scrollY) / float32(p.maxScrollY)
		h := max(float32(20), float32(visibleHeight)*float32(visibleHeight)/float32(contentHeight))
		iy := float32(startY) + pct*(float32(visibleHeight)-h)
		vector.DrawFilledRect(screen, float32(BoardSize+PanelWidth-8), iy, 4, h, textMuted, false)
	}
}

func (p *Panel) drawStatusBar(screen *ebiten.Image) {
	statusY := ScreenHeight - StatusBarH
	x := BoardSize + PanelPadding
	DrawDivider(screen, x, statusY-10, PanelWidth-PanelPadding*2)

	p.drawText(screen, p.game.SeatingText(), x, statusY, textSecondary)
	text, c := p.game.StatusText()
	p.drawText(screen, text, x, statusY+22, c)
}

func (p *Panel) drawText(screen *ebiten.Image, s string, x, y int, c color.Color) {
	drawText(screen, s, GetRegularFace(), x, y, c)
}

func (p *Panel) drawTextCentered(screen *ebiten.Image, s string, cx, cy int, c color.Color) {
	drawTextCentered(screen, s, GetRegularFace(), cx, cy, c)
}

// Collapsed returns whether the panel is collapsed.
func (p *Panel) Collapsed() bool {
	return p.collapsed
}

// toggleCollapse toggles the panel and resizes the window to match.
func (p *Panel) toggleCollapse() {
	p.collapsed = !p.collapsed
	p.createButtons()
	if p.collapsed {
		ebiten.SetWindowSize(BoardSize+CollapsedWidth, ScreenHeight)
	} else {
		ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	}
}
