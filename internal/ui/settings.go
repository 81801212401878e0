package ui

import (
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/engine"
	"github.com/hailam/chessrules/internal/storage"
)

// Settings modal dimensions
const (
	SettingsWidth  = 400
	SettingsHeight = 470
	SettingsPadX   = 24
	SettingsPadY   = 20
)

// Modal colors
var (
	modalOverlay = color.RGBA{0, 0, 0, 180}
	modalBg      = color.RGBA{38, 40, 45, 255}
	modalHeader  = color.RGBA{48, 52, 58, 255}
	modalBorder  = color.RGBA{58, 62, 68, 255}
)

var difficultyNames = []string{"easy", "medium", "hard"}

// SettingsValues is what the settings modal hands back on save.
type SettingsValues struct {
	Rules        board.Rules
	HumanColor   board.Color
	Difficulty   engine.Difficulty
	SoundEnabled bool
	FEN          string // empty keeps the current position
}

// SettingsModal edits rule toggles, seating, difficulty and sound, and can
// load a position from FEN.
type SettingsModal struct {
	visible bool
	x, y    int

	ruleBoxes      []*Checkbox // in board.RuleNames order
	colorBtns      *ButtonGroup
	difficultyBtns *ButtonGroup
	soundCheckbox  *Checkbox
	fenInput       *TextInput
	saveBtn        *ModalButton
	cancelBtn      *ModalButton

	fenError string
	onSave   func(SettingsValues)
}

// NewSettingsModal creates a new settings modal.
func NewSettingsModal() *SettingsModal {
	sm := &SettingsModal{
		x: (ScreenWidth - SettingsWidth) / 2,
		y: (ScreenHeight - SettingsHeight) / 2,
	}
	sm.createWidgets()
	return sm
}

var ruleLabels = map[string]string{
	"castle":    "Castling",
	"check":     "Check",
	"enpassant": "En passant",
	"promotion": "Promotion",
}

func (sm *SettingsModal) createWidgets() {
	contentX := sm.x + SettingsPadX
	contentW := SettingsWidth - SettingsPadX*2
	colW := contentW / 2

	for i, name := range board.RuleNames {
		x := contentX + (i%2)*colW
		y := sm.y + 78 + (i/2)*28
		sm.ruleBoxes = append(sm.ruleBoxes, NewCheckbox(x, y, colW, ruleLabels[name], true))
	}

	sm.colorBtns = NewButtonGroup(contentX, sm.y+160, []string{"White", "Black"}, 0, contentW/2, 34)
	sm.difficultyBtns = NewButtonGroup(contentX, sm.y+226, []string{"Easy", "Medium", "Hard"}, 1, contentW/3, 34)
	sm.soundCheckbox = NewCheckbox(contentX, sm.y+292, contentW, "Sound Effects", true)
	sm.fenInput = NewTextInput(contentX, sm.y+348, contentW, 36, "Paste a FEN to load it", 100)

	btnW, btnH, spacing := 100, 38, 12
	btnY := sm.y + SettingsHeight - SettingsPadY - btnH
	sm.cancelBtn = NewModalButton(sm.x+SettingsWidth-SettingsPadX-btnW*2-spacing, btnY, btnW, btnH, "Cancel", false, sm.Hide)
	sm.saveBtn = NewModalButton(sm.x+SettingsWidth-SettingsPadX-btnW, btnY, btnW, btnH, "Save", true, sm.handleSave)
}

// Show opens the modal with the current preferences.
func (sm *SettingsModal) Show(prefs *storage.UserPreferences, onSave func(SettingsValues)) {
	sm.visible = true
	sm.onSave = onSave
	sm.fenError = ""

	for i, name := range board.RuleNames {
		sm.ruleBoxes[i].Checked, _ = prefs.Rules.Get(name)
	}
	sm.colorBtns.Selected = 0
	if prefs.HumanColor == board.Black {
		sm.colorBtns.Selected = 1
	}
	sm.difficultyBtns.Selected = 1
	for i, name := range difficultyNames {
		if name == prefs.Difficulty {
			sm.difficultyBtns.Selected = i
		}
	}
	sm.soundCheckbox.Checked = prefs.SoundEnabled
	sm.fenInput.Value = ""
}

// Hide closes the modal.
func (sm *SettingsModal) Hide() {
	sm.visible = false
	sm.fenInput.SetFocused(false)
}

// IsVisible returns true if the modal is visible.
func (sm *SettingsModal) IsVisible() bool {
	return sm.visible
}

// values collects the widget state. A FEN that does not describe a valid
// position is reported instead.
func (sm *SettingsModal) values() (SettingsValues, error) {
	v := SettingsValues{
		Rules:        board.DefaultRules(),
		HumanColor:   board.Color(sm.colorBtns.Selected),
		Difficulty:   engine.Difficulty(sm.difficultyBtns.Selected),
		SoundEnabled: sm.soundCheckbox.Checked,
		FEN:          strings.TrimSpace(sm.fenInput.Value),
	}
	for i, name := range board.RuleNames {
		v.Rules, _ = v.Rules.Set(name, sm.ruleBoxes[i].Checked)
	}
	if v.FEN != "" {
		if err := board.ValidateFEN(v.FEN); err != nil {
			return v, err
		}
	}
	return v, nil
}

func (sm *SettingsModal) handleSave() {
	v, err := sm.values()
	if err != nil {
		sm.fenError = err.Error()
		return
	}
	if sm.onSave != nil {
		sm.onSave(v)
	}
	sm.Hide()
}

// Update handles input while the modal is open. The modal consumes all
// input.
func (sm *SettingsModal) Update(input *InputHandler) bool {
	if !sm.visible {
		return false
	}
	if IsKeyJustPressed(ebiten.KeyEscape) && !sm.fenInput.IsFocused() {
		sm.Hide()
		return true
	}
	if IsKeyJustPressed(ebiten.KeyEnter) {
		sm.handleSave()
		return true
	}

	for _, cb := range sm.ruleBoxes {
		cb.Update(input)
	}
	sm.colorBtns.Update(input)
	sm.difficultyBtns.Update(input)
	sm.soundCheckbox.Update(input)
	if sm.fenInput.Update(input) {
		sm.fenError = ""
	}
	sm.saveBtn.Update(input)
	sm.cancelBtn.Update(input)
	return true
}

// AnyButtonHovered returns true if any control in the modal is hovered.
func (sm *SettingsModal) AnyButtonHovered() bool {
	if !sm.visible {
		return false
	}
	for _, cb := range sm.ruleBoxes {
		if cb.hovered {
			return true
		}
	}
	return sm.saveBtn.IsHovered() || sm.cancelBtn.IsHovered() ||
		sm.colorBtns.IsHovered() || sm.difficultyBtns.IsHovered() ||
		sm.soundCheckbox.hovered
}

// Draw renders the modal over a dimmed screen.
func (sm *SettingsModal) Draw(screen *ebiten.Image) {
	if !sm.visible {
		return
	}
	vector.DrawFilledRect(screen, 0, 0, ScreenWidth, ScreenHeight, modalOverlay, false)

	frame := rect{sm.x, sm.y, SettingsWidth, SettingsHeight}
	frame.fill(screen, modalBg)
	frame.stroke(screen, 2, modalBorder)
	rect{sm.x, sm.y, SettingsWidth, 44}.fill(screen, modalHeader)
	drawTextCentered(screen, "Settings", GetBoldFace(), sm.x+SettingsWidth/2, sm.y+22, textPrimary)

	contentX := sm.x + SettingsPadX
	face := GetRegularFace()
	drawText(screen, "Rules", face, contentX, sm.y+54, textMuted)
	drawText(screen, "You Play", face, contentX, sm.colorBtns.Y-22, textMuted)
	drawText(screen, "Computer Difficulty", face, contentX, sm.difficultyBtns.Y-22, textMuted)
	drawText(screen, "Audio", face, contentX, sm.soundCheckbox.Y-22, textMuted)
	drawText(screen, "Load Position (FEN)", face, contentX, sm.fenInput.Y-22, textMuted)

	for _, cb := range sm.ruleBoxes {
		cb.Draw(screen)
	}
	sm.colorBtns.Draw(screen)
	sm.difficultyBtns.Draw(screen)
	sm.soundCheckbox.Draw(screen)
	sm.fenInput.Draw(screen)
	if sm.fenError != "" {
		drawText(screen, sm.fenError, face, contentX, sm.fenInput.Y+sm.fenInput.H+4, inputErrorColor)
	}
	sm.saveBtn.Draw(screen)
	sm.cancelBtn.Draw(screen)
}
