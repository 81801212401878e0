// Package ui is the Ebitengine front end: it draws the board and forwards
// clicks and drags to a game.Session, whose events it turns into
// highlights, sounds and toasts.
package ui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/engine"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/storage"
)

// UI Constants
const (
	ScreenWidth  = 960
	ScreenHeight = 640
	BoardSize    = 640
	SquareSize   = BoardSize / 8
	PanelWidth   = ScreenWidth - BoardSize
)

// Game implements ebiten.Game on top of a game.Session.
type Game struct {
	session *game.Session
	engine  *engine.Engine

	storage *storage.Storage
	prefs   *storage.UserPreferences

	renderer      *Renderer
	input         *InputHandler
	panel         *Panel
	feedback      *FeedbackManager
	settingsModal *SettingsModal
	welcomeScreen *WelcomeScreen
	promotion     *PromotionPicker

	ctx    context.Context
	cancel context.CancelFunc

	// Move list, kept from session events. shown is the position the next
	// move is played from, for SAN.
	shown      board.Position
	sanHistory []string
	lastMove   board.Move
	startColor board.Color
	startMove  int
	started    time.Time
	moved      bool

	dragging   bool
	dragSquare board.Square

	// set when the opponent failed; cleared by the next new position
	opponentFailed bool
}

// NewGame creates the game, restoring preferences and the last unfinished
// position from storage when it is available.
func NewGame() *Game {
	ctx, cancel := context.WithCancel(context.Background())
	g := &Game{
		engine:        engine.NewEngine(64),
		renderer:      NewRenderer(BoardSize, SquareSize),
		input:         NewInputHandler(),
		feedback:      NewFeedbackManager(),
		settingsModal: NewSettingsModal(),
		welcomeScreen: NewWelcomeScreen(),
		promotion:     NewPromotionPicker(),
		ctx:           ctx,
		cancel:        cancel,
		dragSquare:    board.NoSquare,
	}

	var err error
	g.storage, err = storage.NewStorage()
	if err != nil {
		log.Printf("Warning: Failed to initialize storage: %v", err)
	}
	g.loadPreferences()

	g.session = game.NewSession(g.prefs.Rules)
	g.session.SetObserver(g)
	resumed := false
	if g.prefs.LastFEN != "" {
		if err := g.session.LoadFEN(g.prefs.LastFEN); err != nil {
			log.Printf("Warning: Failed to restore position: %v", err)
		} else {
			resumed = true
		}
	}
	g.resetHistory()
	// a resumed game counts as played
	g.moved = resumed
	g.seatOpponent()

	g.panel = NewPanel(g)
	g.checkFirstLaunch()
	return g
}

func (g *Game) loadPreferences() {
	if g.storage == nil {
		g.prefs = storage.DefaultPreferences()
	} else {
		var err error
		g.prefs, err = g.storage.LoadPreferences()
		if err != nil {
			log.Printf("Warning: Failed to load preferences: %v", err)
		}
	}

	d, err := engine.ParseDifficulty(g.prefs.Difficulty)
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	g.engine.SetDifficulty(d)
	g.feedback.Audio().SetEnabled(g.prefs.SoundEnabled)
}

// savePreferences stores the settings and, while a game is running, its
// position so the next launch resumes it.
func (g *Game) savePreferences() {
	if g.storage == nil {
		return
	}
	g.prefs.Rules = g.session.Rules()
	g.prefs.LastFEN = ""
	if g.moved && !g.session.Outcome().IsOver() {
		g.prefs.LastFEN = g.session.FEN()
	}
	if err := g.storage.SavePreferences(g.prefs); err != nil {
		log.Printf("Warning: Failed to save preferences: %v", err)
	}
}

func (g *Game) checkFirstLaunch() {
	if g.storage == nil {
		return
	}
	first, err := g.storage.IsFirstLaunch()
	if err != nil {
		log.Printf("Warning: Failed to check first launch: %v", err)
		return
	}
	if !first {
		return
	}
	g.welcomeScreen.Show(func() {
		if err := g.storage.MarkFirstLaunchComplete(); err != nil {
			log.Printf("Warning: Failed to mark first launch complete: %v", err)
		}
	})
}

// seatOpponent hands the computer's side to the engine, or to nobody in
// human-vs-human mode, and turns the board toward the human.
func (g *Game) seatOpponent() {
	if c := g.prefs.OpponentColor(); c != board.NoColor {
		g.session.SetOpponent(g.engine, c)
	} else {
		g.session.SetOpponent(nil, board.NoColor)
	}
	g.opponentFailed = false
	g.renderer.SetFlipped(g.prefs.HumanColor == board.Black)
}

// resetHistory starts a fresh move list from the session's position.
func (g *Game) resetHistory() {
	g.shown = g.session.Position()
	g.sanHistory = nil
	g.lastMove = board.NoMove
	g.startColor = g.shown.SideToMove
	g.startMove = g.shown.FullMoveNumber
	g.started = time.Now()
	g.moved = false
	g.dragging = false
	g.opponentFailed = false
	g.promotion.Hide()
}

// replacePosition runs load, which installs a new position in the session,
// and starts a new move list if it succeeds. A position that is already
// over when loaded is not recorded as a game.
func (g *Game) replacePosition(load func() error) error {
	moved := g.moved
	g.moved = false
	if err := load(); err != nil {
		g.moved = moved
		return err
	}
	g.resetHistory()
	return nil
}

// OnSelect implements game.Observer. The selection is drawn straight from
// the session.
func (g *Game) OnSelect(game.Selection) {}

// OnMove implements game.Observer.
func (g *Game) OnMove(m board.Move, pos board.Position) {
	rules := g.session.Rules()
	g.sanHistory = append(g.sanHistory, m.SAN(&g.shown, rules))
	g.shown = pos
	g.lastMove = m
	g.moved = true
	g.promotion.Hide()
	g.feedback.OnMoveMade(m, rules.CheckAllowed && pos.InCheck(pos.SideToMove))
}

// OnPromotionPending implements game.Observer. The opponent names its own
// piece, so the picker only opens for a human.
func (g *Game) OnPromotionPending(sq board.Square, c board.Color) {
	if c == g.session.OpponentColor() {
		return
	}
	g.promotion.Show(sq, c)
	g.feedback.OnPromotionPending()
}

// OnGameOver implements game.Observer.
func (g *Game) OnGameOver(o game.Outcome) {
	g.promotion.Hide()
	g.dragging = false
	g.feedback.OnGameOver(o)
	g.recordGame(o)
}

// OnRejected implements game.Observer. Illegal drops are reported by the
// drag handler, which knows both squares.
func (g *Game) OnRejected(err error) {
	switch {
	case errors.Is(err, game.ErrIllegalDestination):
	case errors.Is(err, board.ErrMalformedFEN), errors.Is(err, board.ErrInvalidPosition):
		g.feedback.Error(err.Error())
	default:
		if r := reasonFor(err); r != ReasonUnknown {
			g.feedback.OnInvalidMove(board.NoSquare, board.NoSquare, r)
		}
	}
}

func (g *Game) recordGame(o game.Outcome) {
	if g.storage == nil || !g.moved {
		return
	}
	result := storage.GameResult{
		Outcome:  o,
		Human:    board.NoColor,
		Mode:     g.prefs.GameMode,
		Duration: time.Since(g.started),
	}
	if op := g.session.OpponentColor(); op != board.NoColor {
		result.Human = op.Other()
		result.Difficulty = g.engine.Difficulty().String()
	}
	if err := g.storage.RecordGame(result); err != nil {
		log.Printf("[STORAGE] Warning: Failed to record game: %v", err)
	}
	g.savePreferences()
}

// Update advances one frame.
func (g *Game) Update() error {
	g.input.Update()
	g.feedback.Update()

	switch {
	case g.welcomeScreen.IsVisible():
		g.welcomeScreen.Update(g.input)
	case g.settingsModal.IsVisible():
		g.settingsModal.Update(g.input)
	case g.promotion.IsVisible():
		if kind, ok := g.promotion.Update(g.input, g.renderer); ok {
			if err := g.session.Promote(g.promotion.Square(), kind); err != nil {
				log.Printf("[MOVE] Warning: Failed to promote: %v", err)
			}
		}
	default:
		g.updateOpponent()
		if !g.panel.HandleInput(g.input) {
			g.handleBoardInput()
		}
	}

	g.updateCursor()
	return nil
}

// updateOpponent collects a finished search or starts one when the
// computer is to move.
func (g *Game) updateOpponent() {
	s := g.session
	if s.Thinking() {
		_, done, err := s.PollOpponent()
		if done && err != nil && !errors.Is(err, game.ErrStaleResult) && s.Phase() != game.GameOver {
			log.Printf("[AI] Warning: %v", err)
			g.opponentFailed = true
			g.feedback.Error("Computer could not move")
		}
		return
	}
	if g.opponentFailed || !s.OpponentToMove() {
		return
	}
	if p := s.Phase(); p == game.GameOver || p == game.PromotionPending {
		return
	}
	if err := s.StartOpponent(g.ctx); err != nil {
		log.Printf("[AI] Warning: Failed to start search: %v", err)
		g.opponentFailed = true
	}
}

// handleBoardInput turns clicks and drags on the board into session calls.
func (g *Game) handleBoardInput() {
	if g.input.IsRightJustPressed() || IsKeyJustPressed(ebiten.KeyEscape) {
		g.session.Deselect()
		g.dragging = false
		return
	}

	mx, my := g.input.MousePosition()
	if g.input.IsLeftJustPressed() {
		sq := g.renderer.ScreenToSquare(mx, my)
		if sq == board.NoSquare {
			return
		}
		pos := g.session.Position()
		piece := pos.PieceAt(sq)
		if err := g.session.HandleSquare(sq); err != nil {
			return
		}
		if piece != board.NoPiece && piece.Color() == pos.SideToMove {
			g.dragging = true
			g.dragSquare = sq
		}
		return
	}

	if g.dragging && g.input.IsLeftJustReleased() {
		g.dragging = false
		target := g.renderer.ScreenToSquare(mx, my)
		if target == board.NoSquare || target == g.dragSquare {
			return
		}
		pos, rules := g.session.Position(), g.session.Rules()
		if _, err := g.session.AttemptMove(target); errors.Is(err, game.ErrIllegalDestination) {
			g.feedback.OnInvalidMove(g.dragSquare, target, classifyDrop(&pos, rules, g.dragSquare, target))
		}
	}
}

func (g *Game) updateCursor() {
	var hovered bool
	switch {
	case g.welcomeScreen.IsVisible():
		hovered = g.welcomeScreen.AnyButtonHovered()
	case g.settingsModal.IsVisible():
		hovered = g.settingsModal.AnyButtonHovered()
	case g.promotion.IsVisible():
		hovered = g.promotion.IsHovered()
	default:
		hovered = g.panel.AnyButtonHovered()
	}
	if hovered {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
}

// Draw renders the game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.renderer.Theme().Background)
	g.renderer.DrawBoard(screen)

	pos := g.session.Position()
	g.renderer.DrawLastMove(screen, g.lastMove)
	if g.session.Rules().CheckAllowed && pos.InCheck(pos.SideToMove) {
		g.renderer.DrawCheck(screen, pos.KingSquare(pos.SideToMove))
	}
	if sel, ok := g.session.Selection(); ok {
		g.renderer.DrawSelection(screen, sel)
	}

	skip := board.NoSquare
	if g.dragging {
		skip = g.dragSquare
	}
	g.renderer.DrawPieces(screen, &pos, skip, g.feedback.Animations())
	if g.dragging {
		mx, my := g.input.MousePosition()
		g.renderer.DrawDraggedPiece(screen, pos.PieceAt(g.dragSquare), mx, my)
	}

	g.promotion.Draw(screen, g.renderer)
	g.feedback.Draw(screen, g.renderer)
	g.panel.Draw(screen)
	g.settingsModal.Draw(screen)
	g.welcomeScreen.Draw(screen)
}

// Layout returns the logical screen size; Ebitengine scales it to the
// window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.panel != nil && g.panel.Collapsed() {
		return BoardSize + CollapsedWidth, ScreenHeight
	}
	return ScreenWidth, ScreenHeight
}

// NewGameAction starts over from the initial position under the chosen
// rules.
func (g *Game) NewGameAction() {
	g.replacePosition(func() error {
		g.session.Reset()
		return g.session.SetRules(g.prefs.Rules)
	})
	g.seatOpponent()
	g.savePreferences()
}

// AbortAction ends the current game without a result.
func (g *Game) AbortAction() {
	if err := g.session.Abort(); err != nil {
		log.Printf("[MOVE] Warning: Failed to abort: %v", err)
	}
}

// SetGameMode switches between human and computer opponents.
func (g *Game) SetGameMode(mode storage.GameMode) {
	if g.prefs.GameMode == mode {
		return
	}
	g.prefs.GameMode = mode
	g.seatOpponent()
	g.savePreferences()
}

// SetDifficulty sets the computer's strength.
func (g *Game) SetDifficulty(d engine.Difficulty) {
	g.engine.SetDifficulty(d)
	g.prefs.Difficulty = d.String()
	g.savePreferences()
}

// ToggleRule flips one rule toggle for the running game.
func (g *Game) ToggleRule(name string) {
	rules := g.session.Rules()
	on, ok := rules.Get(name)
	if !ok {
		return
	}
	rules, _ = rules.Set(name, !on)
	if !g.applyRules(rules) {
		return
	}
	state := "on"
	if on {
		state = "off"
	}
	g.feedback.Info(fmt.Sprintf("%s %s", ruleLabels[name], state))
	g.savePreferences()
}

// applyRules installs rules in the session and the preferences. A change
// the session rejects leaves both untouched.
func (g *Game) applyRules(rules board.Rules) bool {
	if err := g.session.SetRules(rules); err != nil {
		log.Printf("Warning: Failed to change rules: %v", err)
		return false
	}
	g.prefs.Rules = rules
	return true
}

// ShowSettings opens the settings modal.
func (g *Game) ShowSettings() {
	g.prefs.Rules = g.session.Rules()
	g.settingsModal.Show(g.prefs, g.applySettings)
}

func (g *Game) applySettings(v SettingsValues) {
	g.SetDifficulty(v.Difficulty)
	g.prefs.SoundEnabled = v.SoundEnabled
	g.feedback.Audio().SetEnabled(v.SoundEnabled)

	if v.Rules != g.session.Rules() {
		g.applyRules(v.Rules)
	}
	if v.HumanColor != g.prefs.HumanColor {
		g.prefs.HumanColor = v.HumanColor
		g.seatOpponent()
	}
	if v.FEN != "" {
		if err := g.replacePosition(func() error { return g.session.LoadFEN(v.FEN) }); err == nil {
			g.feedback.Info("Position loaded")
		}
	}
	g.savePreferences()
}

// Close stops any search and saves preferences.
func (g *Game) Close() {
	g.cancel()
	if g.storage == nil {
		return
	}
	g.savePreferences()
	if err := g.storage.Close(); err != nil {
		log.Printf("Warning: Failed to close storage: %v", err)
	}
}

// Rules returns the rule toggles in force.
func (g *Game) Rules() board.Rules {
	return g.session.Rules()
}

// GameMode returns the current game mode.
func (g *Game) GameMode() storage.GameMode {
	return g.prefs.GameMode
}

// Difficulty returns the computer's strength.
func (g *Game) Difficulty() engine.Difficulty {
	return g.engine.Difficulty()
}

// SANHistory returns the moves played since the position was set up.
func (g *Game) SANHistory() []string {
	return g.sanHistory
}

// StartedWithBlack reports whether the move list begins with Black.
func (g *Game) StartedWithBlack() bool {
	return g.startColor == board.Black
}

// FirstMoveNumber returns the full-move number the move list starts at.
func (g *Game) FirstMoveNumber() int {
	return g.startMove
}

// SelectionInfo describes the selected piece and its move count.
func (g *Game) SelectionInfo() string {
	sel, ok := g.session.Selection()
	if !ok {
		return "Select a piece"
	}
	n := len(sel.Destinations())
	info := fmt.Sprintf("%s %s: %d moves", sel.Piece.Type(), sel.Square, n)
	switch n {
	case 0:
		info = fmt.Sprintf("%s %s: no moves", sel.Piece.Type(), sel.Square)
	case 1:
		info = fmt.Sprintf("%s %s: 1 move", sel.Piece.Type(), sel.Square)
	}
	if sel.Pinned {
		info += " (pinned)"
	}
	return info
}

// SeatingText says who plays which side.
func (g *Game) SeatingText() string {
	op := g.session.OpponentColor()
	if op == board.NoColor {
		return "Two players"
	}
	return fmt.Sprintf("You: %s  Computer: %s", op.Other(), op)
}

// StatusText returns the status line and its color.
func (g *Game) StatusText() (string, color.RGBA) {
	s := g.session
	pos := s.Position()
	switch {
	case s.Phase() == game.GameOver:
		return s.Outcome().String(), statusGameOver
	case s.Phase() == game.PromotionPending:
		return "Choose a promotion piece", statusThinking
	case s.Thinking():
		return "Computer thinking...", statusThinking
	case s.Rules().CheckAllowed && pos.InCheck(pos.SideToMove):
		return fmt.Sprintf("%s to move, in check", pos.SideToMove), statusCheck
	}
	return fmt.Sprintf("%s to move", pos.SideToMove), textPrimary
}
