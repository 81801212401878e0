// Package cli is a line-oriented text front end for a game session. It reads
// commands from an io.Reader and answers on an io.Writer.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/engine"
	"github.com/hailam/chessrules/internal/game"
	"github.com/hailam/chessrules/internal/storage"
)

// ErrNoStorage is returned by persistence commands when no database is open.
var ErrNoStorage = errors.New("storage unavailable")

// opponentTimeout bounds a single opponent search from the command line.
const opponentTimeout = 30 * time.Second

// CLI holds the session driven by text commands.
type CLI struct {
	session *game.Session
	engine  *engine.Engine
	store   *storage.Storage // may be nil
	out     io.Writer

	started time.Time
	moved   bool // a move was played since the last new game or FEN
}

// New creates a CLI writing to out. store may be nil, in which case the
// save/load commands report ErrNoStorage.
func New(eng *engine.Engine, store *storage.Storage, out io.Writer) *CLI {
	c := &CLI{
		session: game.NewSession(board.DefaultRules()),
		engine:  eng,
		store:   store,
		out:     out,
		started: time.Now(),
	}
	c.session.SetObserver(c)
	return c
}

// Session returns the driven session.
func (c *CLI) Session() *game.Session {
	return c.session
}

// Run reads commands until EOF or "quit".
func (c *CLI) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		if parts[0] == "quit" || parts[0] == "exit" {
			return nil
		}
		if err := c.Execute(parts[0], parts[1:]); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// Execute runs one command.
func (c *CLI) Execute(cmd string, args []string) error {
	switch cmd {
	case "help":
		c.printHelp()
	case "new":
		c.session.Reset()
		c.started = time.Now()
		c.moved = false
		fmt.Fprintln(c.out, c.session.FEN())
	case "d":
		pos := c.session.Position()
		fmt.Fprint(c.out, pos.String())
		fmt.Fprintf(c.out, "FEN: %s\n", c.session.FEN())
		fmt.Fprintf(c.out, "Status: %s\n", c.session.Outcome())
	case "fen":
		return c.handleFEN(args)
	case "validate":
		return c.handleValidate(args)
	case "select":
		return c.handleSelect(args)
	case "to":
		return c.handleTo(args)
	case "move", "m":
		return c.handleMove(args)
	case "promote":
		return c.handlePromote(args)
	case "legal":
		return c.handleLegal(args)
	case "rules":
		fmt.Fprintln(c.out, c.session.Rules())
	case "rule":
		return c.handleRule(args)
	case "perft":
		return c.handlePerft(args, false)
	case "divide":
		return c.handlePerft(args, true)
	case "play":
		return c.handlePlay(args)
	case "difficulty":
		return c.handleDifficulty(args)
	case "go":
		return c.handleGo()
	case "outcome":
		fmt.Fprintln(c.out, c.session.Outcome())
	case "abort":
		return c.session.Abort()
	case "save":
		return c.handleSave(args)
	case "load":
		return c.handleLoad(args)
	case "positions":
		return c.handlePositions()
	case "delete":
		return c.handleDelete(args)
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func (c *CLI) printHelp() {
	fmt.Fprint(c.out, `commands:
  new                      start a new game, all rules on
  d                        show the board
  fen [FEN]                print or load the position
  validate FEN             check a FEN without loading it
  select SQ                select a piece and list its destinations
  to SQ                    move the selected piece
  move MOVE                play a move in UCI (e2e4) or SAN (Nf3)
  promote SQ q|r|b|n       finish a pending promotion
  legal [SQ]               list legal moves
  rules                    show rule toggles
  rule NAME on|off         castle, check, enpassant, promotion
  perft N / divide N       count move paths
  play white|black|none    seat the computer
  difficulty easy|medium|hard
  go                       computer move, or a hint when nobody is seated
  outcome / abort
  save NAME / load NAME / positions / delete NAME
  quit
`)
}

func (c *CLI) handleFEN(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(c.out, c.session.FEN())
		return nil
	}
	moved := c.moved
	c.moved = false
	if err := c.session.LoadFEN(strings.Join(args, " ")); err != nil {
		c.moved = moved
		return err
	}
	c.started = time.Now()
	fmt.Fprintln(c.out, "ok")
	return c.continueOpponent()
}

func (c *CLI) handleValidate(args []string) error {
	if err := board.ValidateFEN(strings.Join(args, " ")); err != nil {
		fmt.Fprintf(c.out, "invalid: %v\n", err)
		return nil
	}
	fmt.Fprintln(c.out, "valid")
	return nil
}

func parseSquareArg(args []string) (board.Square, error) {
	if len(args) != 1 {
		return board.NoSquare, errors.New("expected one square")
	}
	return board.ParseSquare(args[0])
}

func (c *CLI) handleSelect(args []string) error {
	sq, err := parseSquareArg(args)
	if err != nil {
		return err
	}
	_, err = c.session.Select(sq)
	return err
}

func (c *CLI) handleTo(args []string) error {
	sq, err := parseSquareArg(args)
	if err != nil {
		return err
	}
	if _, err := c.session.AttemptMove(sq); err != nil {
		return err
	}
	return c.continueOpponent()
}

// handleMove plays a UCI or SAN move through select and attempt. A UCI
// promotion without a kind leaves the promotion pending.
func (c *CLI) handleMove(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: move MOVE")
	}

	from, to, promo, err := board.ParseUCI(args[0])
	if err != nil {
		pos := c.session.Position()
		m, sanErr := board.ParseSAN(args[0], &pos, c.session.Rules())
		if sanErr != nil {
			return sanErr
		}
		from, to, promo = m.From(), m.To(), m.Promotion()
	}

	if _, err := c.session.Select(from); err != nil {
		return err
	}
	if _, err := c.session.AttemptMove(to); err != nil {
		return err
	}
	if c.session.Phase() == game.PromotionPending && promo != board.NoPieceType {
		if err := c.session.Promote(to, promo); err != nil {
			return err
		}
	}
	return c.continueOpponent()
}

func (c *CLI) handlePromote(args []string) error {
	if len(args) != 2 || len(args[1]) != 1 {
		return errors.New("usage: promote SQ q|r|b|n")
	}
	sq, err := board.ParseSquare(args[0])
	if err != nil {
		return err
	}
	if err := c.session.Promote(sq, board.PieceTypeFromChar(args[1][0])); err != nil {
		return err
	}
	return c.continueOpponent()
}

func (c *CLI) handleLegal(args []string) error {
	pos := c.session.Position()
	rules := c.session.Rules()

	var moves []board.Move
	if len(args) == 0 {
		moves = board.LegalMovesAll(&pos, pos.SideToMove, rules)
	} else {
		sq, err := parseSquareArg(args)
		if err != nil {
			return err
		}
		moves = board.LegalMoves(&pos, sq, rules)
	}

	parts := make([]string, 0, len(moves))
	for _, m := range moves {
		parts = append(parts, fmt.Sprintf("%s(%s)", m, m.SAN(&pos, rules)))
	}
	fmt.Fprintf(c.out, "%d: %s\n", len(moves), strings.Join(parts, " "))
	return nil
}

func (c *CLI) handleRule(args []string) error {
	if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
		return fmt.Errorf("usage: rule %s on|off", strings.Join(board.RuleNames, "|"))
	}
	rules, ok := c.session.Rules().Set(args[0], args[1] == "on")
	if !ok {
		return fmt.Errorf("unknown rule %q", args[0])
	}
	if err := c.session.SetRules(rules); err != nil {
		return err
	}
	fmt.Fprintln(c.out, rules)
	return nil
}

// handlePerft counts paths from the session's position under its rules.
func (c *CLI) handlePerft(args []string, divide bool) error {
	depth := 3
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			return fmt.Errorf("invalid depth %q", args[0])
		}
		depth = d
	}

	pos := c.session.Position()
	rules := c.session.Rules()
	start := time.Now()

	var nodes uint64
	if divide {
		for _, e := range engine.Divide(pos, rules, depth) {
			fmt.Fprintf(c.out, "%s: %d\n", e.Move, e.Nodes)
			nodes += e.Nodes
		}
	} else {
		nodes = engine.Perft(pos, rules, depth)
	}
	elapsed := time.Since(start)

	fmt.Fprintf(c.out, "Nodes: %d\n", nodes)
	fmt.Fprintf(c.out, "Time: %v\n", elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		fmt.Fprintf(c.out, "NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
	return nil
}

func (c *CLI) handlePlay(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: play white|black|none")
	}
	switch args[0] {
	case "white":
		c.session.SetOpponent(c.engine, board.White)
	case "black":
		c.session.SetOpponent(c.engine, board.Black)
	case "none":
		c.session.SetOpponent(nil, board.NoColor)
	default:
		return fmt.Errorf("unknown side %q", args[0])
	}
	return c.continueOpponent()
}

func (c *CLI) handleDifficulty(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(c.out, c.engine.Difficulty())
		return nil
	}
	d, err := engine.ParseDifficulty(args[0])
	if err != nil {
		return err
	}
	c.engine.SetDifficulty(d)
	return nil
}

// handleGo runs the seated opponent, or prints the engine's choice without
// playing it when the side to move is human.
func (c *CLI) handleGo() error {
	if c.session.OpponentToMove() {
		return c.continueOpponent()
	}
	ctx, cancel := context.WithTimeout(context.Background(), opponentTimeout)
	defer cancel()

	pos := c.session.Position()
	m, err := c.engine.ChooseMove(ctx, pos, c.session.Rules())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "bestmove %s (%s)\n", m, m.SAN(&pos, c.session.Rules()))
	return nil
}

// continueOpponent lets the seated opponent move while it is its turn.
func (c *CLI) continueOpponent() error {
	for c.session.OpponentToMove() && c.session.Phase() == game.Idle {
		ctx, cancel := context.WithTimeout(context.Background(), opponentTimeout)
		err := c.session.StartOpponent(ctx)
		if err == nil {
			_, err = c.session.WaitOpponent(ctx)
		}
		cancel()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) handleSave(args []string) error {
	if c.store == nil {
		return ErrNoStorage
	}
	if len(args) != 1 {
		return errors.New("usage: save NAME")
	}
	return c.store.SavePosition(args[0], c.session.FEN())
}

func (c *CLI) handleLoad(args []string) error {
	if c.store == nil {
		return ErrNoStorage
	}
	if len(args) != 1 {
		return errors.New("usage: load NAME")
	}
	sp, err := c.store.LoadPosition(args[0])
	if err != nil {
		return err
	}
	return c.handleFEN(strings.Fields(sp.FEN))
}

func (c *CLI) handlePositions() error {
	if c.store == nil {
		return ErrNoStorage
	}
	list, err := c.store.ListPositions()
	if err != nil {
		return err
	}
	for _, sp := range list {
		fmt.Fprintf(c.out, "%s\t%s\n", sp.Name, sp.FEN)
	}
	return nil
}

func (c *CLI) handleDelete(args []string) error {
	if c.store == nil {
		return ErrNoStorage
	}
	if len(args) != 1 {
		return errors.New("usage: delete NAME")
	}
	return c.store.DeletePosition(args[0])
}

// Observer callbacks.

func (c *CLI) OnSelect(sel game.Selection) {
	dests := sel.Destinations()
	names := make([]string, len(dests))
	for i, sq := range dests {
		names[i] = sq.String()
	}
	pinned := ""
	if sel.Pinned {
		pinned = " (pinned)"
	}
	fmt.Fprintf(c.out, "%s %s%s: %s\n", sel.Piece, sel.Square, pinned, strings.Join(names, " "))
}

func (c *CLI) OnMove(m board.Move, pos board.Position) {
	c.moved = true
	fmt.Fprintf(c.out, "%s played %s\n", pos.SideToMove.Other(), m)
}

func (c *CLI) OnPromotionPending(sq board.Square, color board.Color) {
	fmt.Fprintf(c.out, "%s promotes on %s: promote %s q|r|b|n\n", color, sq, sq)
}

func (c *CLI) OnGameOver(o game.Outcome) {
	fmt.Fprintf(c.out, "game over: %s\n", o)
	c.recordGame(o)
}

func (c *CLI) OnRejected(error) {}

// recordGame stores a finished game in the statistics. Positions loaded
// already finished are not games.
func (c *CLI) recordGame(o game.Outcome) {
	if c.store == nil || !c.moved {
		return
	}
	result := storage.GameResult{
		Outcome:  o,
		Human:    board.NoColor,
		Mode:     storage.ModeHumanVsHuman,
		Duration: time.Since(c.started),
	}
	if op := c.session.OpponentColor(); op != board.NoColor {
		result.Human = op.Other()
		result.Mode = storage.ModeHumanVsComputer
		result.Difficulty = c.engine.Difficulty().String()
	}
	if err := c.store.RecordGame(result); err != nil {
		log.Printf("[STORAGE] Warning: Failed to record game: %v", err)
	}
}
