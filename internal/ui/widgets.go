package ui

import (
	"image/color"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget colors (shares buttonBg, buttonHoverBg, accentColor, textPrimary and textSecondary with panel.go)
var (
	widgetBg          = color.RGBA{48, 52, 58, 255}
	widgetBorder      = color.RGBA{68, 72, 78, 255}
	widgetFocusBorder = color.RGBA{76, 175, 120, 255}
	widgetHoverBg     = color.RGBA{65, 70, 78, 255}
	checkboxCheck     = color.RGBA{76, 175, 120, 255}
	inputTextColor    = color.RGBA{240, 240, 245, 255}
	inputPlaceholder  = color.RGBA{120, 125, 135, 255}
	inputErrorColor   = color.RGBA{235, 110, 110, 255}
)

// rect is a widget's hit box.
type rect struct {
	X, Y, W, H int
}

func (r rect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

func (r rect) fill(screen *ebiten.Image, c color.Color) {
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), c, false)
}

func (r rect) stroke(screen *ebiten.Image, width float32, c color.Color) {
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), width, c, false)
}

// TextInput is a single-line editable text field.
type TextInput struct {
	rect
	Value       string
	Placeholder string
	MaxLength   int
	focused     bool
	hovered     bool
	cursorBlink int
}

// NewTextInput creates a new text input widget.
func NewTextInput(x, y, w, h int, placeholder string, maxLen int) *TextInput {
	return &TextInput{
		rect:        rect{x, y, w, h},
		Placeholder: placeholder,
		MaxLength:   maxLen,
	}
}

// Update handles focus and typing. It reports whether the input is focused.
func (ti *TextInput) Update(input *InputHandler) bool {
	mx, my := input.MousePosition()
	ti.hovered = ti.contains(mx, my)
	if input.IsLeftJustPressed() {
		ti.focused = ti.hovered
	}
	if !ti.focused {
		return false
	}

	ti.cursorBlink = (ti.cursorBlink + 1) % 60

	for _, c := range ebiten.AppendInputChars(nil) {
		if ti.MaxLength == 0 || utf8.RuneCountInString(ti.Value) < ti.MaxLength {
			ti.Value += string(c)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(ti.Value) > 0 {
		_, size := utf8.DecodeLastRuneInString(ti.Value)
		ti.Value = ti.Value[:len(ti.Value)-size]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		ti.focused = false
	}
	return true
}

// Draw renders the text input, keeping the tail of long values visible.
func (ti *TextInput) Draw(screen *ebiten.Image) {
	bg := widgetBg
	if ti.hovered && !ti.focused {
		bg = color.RGBA{52, 56, 62, 255}
	}
	ti.fill(screen, bg)

	border := widgetBorder
	if ti.focused {
		border = widgetFocusBorder
	} else if ti.hovered {
		border = accentColor
	}
	ti.stroke(screen, 2, border)

	face := GetRegularFace()
	if face == nil {
		return
	}
	textX := ti.X + 10
	maxW := float64(ti.W - 24)

	shown, c := ti.Value, inputTextColor
	if shown == "" {
		shown, c = ti.Placeholder, inputPlaceholder
	}
	for w, _ := MeasureText(shown, face); w > maxW && len(shown) > 0; w, _ = MeasureText(shown, face) {
		_, size := utf8.DecodeRuneInString(shown)
		shown = shown[size:]
	}
	_, h := MeasureText("Ag", face)
	drawText(screen, shown, face, textX, ti.Y+ti.H/2-int(h/2), c)

	if ti.focused && ti.cursorBlink < 30 {
		cursorX := float32(textX)
		if ti.Value != "" {
			w, _ := MeasureText(shown, face)
			cursorX += float32(w) + 2
		}
		vector.DrawFilledRect(screen, cursorX, float32(ti.Y+8), 2, float32(ti.H-16), inputTextColor, false)
	}
}

// IsFocused returns true if the input is focused.
func (ti *TextInput) IsFocused() bool {
	return ti.focused
}

// SetFocused sets the focus state.
func (ti *TextInput) SetFocused(focused bool) {
	ti.focused = focused
}

// Checkbox is a labelled toggle.
type Checkbox struct {
	rect
	Label   string
	Checked bool
	hovered bool
}

// NewCheckbox creates a new checkbox whose hit box covers its label.
func NewCheckbox(x, y, w int, label string, checked bool) *Checkbox {
	return &Checkbox{
		rect:    rect{x, y, w, 24},
		Label:   label,
		Checked: checked,
	}
}

// Update toggles the checkbox on click and reports whether it changed.
func (cb *Checkbox) Update(input *InputHandler) bool {
	mx, my := input.MousePosition()
	cb.hovered = cb.contains(mx, my)
	if input.IsLeftJustPressed() && cb.hovered {
		cb.Checked = !cb.Checked
		return true
	}
	return false
}

// Draw renders the checkbox.
func (cb *Checkbox) Draw(screen *ebiten.Image) {
	box := rect{cb.X, cb.Y, 20, 20}
	bg := widgetBg
	if cb.hovered {
		bg = widgetHoverBg
	}
	box.fill(screen, bg)

	border := widgetBorder
	if cb.hovered {
		border = accentColor
	} else if cb.Checked {
		border = checkboxCheck
	}
	box.stroke(screen, 2, border)

	if cb.Checked {
		bx, by := float32(box.X), float32(box.Y)
		vector.StrokeLine(screen, bx+4, by+10, bx+8, by+14, 2, checkboxCheck, false)
		vector.StrokeLine(screen, bx+8, by+14, bx+16, by+6, 2, checkboxCheck, false)
	}

	c := textSecondary
	if cb.Checked {
		c = textPrimary
	} else if cb.hovered {
		c = inputTextColor
	}
	face := GetRegularFace()
	_, h := MeasureText(cb.Label, face)
	drawText(screen, cb.Label, face, cb.X+30, cb.Y+10-int(h/2), c)
}

// ButtonGroup is a row of mutually exclusive toggle buttons.
type ButtonGroup struct {
	X, Y     int
	Options  []string
	Selected int
	ButtonW  int
	ButtonH  int
	hovered  int
	pressed  int
}

// NewButtonGroup creates a new button group.
func NewButtonGroup(x, y int, options []string, selected int, buttonW, buttonH int) *ButtonGroup {
	return &ButtonGroup{
		X:        x,
		Y:        y,
		Options:  options,
		Selected: selected,
		ButtonW:  buttonW,
		ButtonH:  buttonH,
		hovered:  -1,
		pressed:  -1,
	}
}

func (bg *ButtonGroup) button(i int) rect {
	return rect{bg.X + i*bg.ButtonW, bg.Y, bg.ButtonW, bg.ButtonH}
}

// Update selects the clicked option and reports whether it changed.
func (bg *ButtonGroup) Update(input *InputHandler) bool {
	mx, my := input.MousePosition()
	bg.hovered, bg.pressed = -1, -1
	for i := range bg.Options {
		if !bg.button(i).contains(mx, my) {
			continue
		}
		bg.hovered = i
		if input.IsLeftPressed() {
			bg.pressed = i
		}
		if input.IsLeftJustPressed() && bg.Selected != i {
			bg.Selected = i
			return true
		}
	}
	return false
}

// Draw renders the button group.
func (bg *ButtonGroup) Draw(screen *ebiten.Image) {
	face := GetRegularFace()
	for i, label := range bg.Options {
		b := bg.button(i)
		selected, hovered := i == bg.Selected, i == bg.hovered

		fill := tabInactiveBg
		switch {
		case selected:
			fill = tabActiveBg
		case i == bg.pressed:
			fill = buttonPressedBg
		case hovered:
			fill = tabHoverBg
		}
		b.fill(screen, fill)

		border := buttonBorder
		if selected {
			border = tabActiveBg
		} else if hovered {
			border = accentColor
		}
		b.stroke(screen, 1, border)

		c := textSecondary
		if selected {
			c = textPrimary
		}
		drawTextCentered(screen, label, face, b.X+b.W/2, b.Y+b.H/2, c)
	}
}

// IsHovered reports whether any option is under the cursor.
func (bg *ButtonGroup) IsHovered() bool {
	return bg.hovered >= 0
}

// ModalButton is a push button for dialogs.
type ModalButton struct {
	rect
	Label   string
	Primary bool
	OnClick func()
	hovered bool
	pressed bool
}

// NewModalButton creates a new modal button.
func NewModalButton(x, y, w, h int, label string, primary bool, onClick func()) *ModalButton {
	return &ModalButton{
		rect:    rect{x, y, w, h},
		Label:   label,
		Primary: primary,
		OnClick: onClick,
	}
}

// IsHovered returns true if the button is hovered.
func (mb *ModalButton) IsHovered() bool {
	return mb.hovered
}

// Update fires OnClick on a click and reports whether it did.
func (mb *ModalButton) Update(input *InputHandler) bool {
	mx, my := input.MousePosition()
	mb.hovered = mb.contains(mx, my)
	mb.pressed = input.IsLeftPressed() && mb.hovered
	if input.IsLeftJustPressed() && mb.hovered && mb.OnClick != nil {
		mb.OnClick()
		return true
	}
	return false
}

// Draw renders the modal button.
func (mb *ModalButton) Draw(screen *ebiten.Image) {
	var fill, border color.RGBA
	if mb.Primary {
		fill, border = accentColor, accentPressed
		if mb.pressed {
			fill = accentPressed
		} else if mb.hovered {
			fill, border = accentHover, color.RGBA{116, 215, 160, 255}
		}
	} else {
		fill, border = buttonBg, widgetBorder
		if mb.pressed {
			fill = buttonPressedBg
		} else if mb.hovered {
			fill, border = buttonHoverBg, accentColor
		}
	}
	mb.fill(screen, fill)
	mb.stroke(screen, 1, border)
	drawTextCentered(screen, mb.Label, GetRegularFace(), mb.X+mb.W/2, mb.Y+mb.H/2, textPrimary)
}

// DrawDivider draws a horizontal divider line.
func DrawDivider(screen *ebiten.Image, x, y, w int) {
	rect{x, y, w, 1}.fill(screen, dividerColor)
}
