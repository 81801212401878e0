package storage

import (
	"errors"
	"os"
	"testing"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferences(t *testing.T) {
	s := openTest(t)

	prefs, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if prefs.Rules != board.DefaultRules() {
		t.Errorf("default rules = %v", prefs.Rules)
	}
	if prefs.Difficulty != "medium" || !prefs.SoundEnabled {
		t.Errorf("unexpected defaults: %+v", prefs)
	}

	prefs.Rules.EnPassantAllowed = false
	prefs.GameMode = ModeHumanVsHuman
	prefs.HumanColor = board.Black
	prefs.LastFEN = "4k3/8/8/8/8/8/8/4K3 w - - 0 1"
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if got.Rules.EnPassantAllowed || !got.Rules.CastleAllowed {
		t.Errorf("rules not persisted: %v", got.Rules)
	}
	if got.GameMode != ModeHumanVsHuman || got.HumanColor != board.Black || got.LastFEN != prefs.LastFEN {
		t.Errorf("prefs = %+v", got)
	}
	if got.OpponentColor() != board.NoColor {
		t.Error("human-vs-human has no opponent")
	}
}

func TestPreferencesDropInvalidFEN(t *testing.T) {
	s := openTest(t)
	prefs := DefaultPreferences()
	prefs.LastFEN = "8/8/8/8/8/8/8/8 w - - 0 1"
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatal(err)
	}
	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if got.LastFEN != "" {
		t.Errorf("LastFEN = %q, want dropped", got.LastFEN)
	}
}

func TestOpponentColor(t *testing.T) {
	prefs := DefaultPreferences()
	if prefs.OpponentColor() != board.Black {
		t.Errorf("opponent = %v, want Black", prefs.OpponentColor())
	}
	prefs.HumanColor = board.Black
	if prefs.OpponentColor() != board.White {
		t.Errorf("opponent = %v, want White", prefs.OpponentColor())
	}
}

func TestFirstLaunch(t *testing.T) {
	s := openTest(t)
	first, err := s.IsFirstLaunch()
	if err != nil || !first {
		t.Fatalf("IsFirstLaunch = %v, %v", first, err)
	}
	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatal(err)
	}
	if first, _ := s.IsFirstLaunch(); first {
		t.Error("still first launch after marking")
	}
}

func TestRecordGame(t *testing.T) {
	s := openTest(t)

	results := []GameResult{
		{Outcome: game.Outcome{Status: game.Checkmate, Winner: board.White}, Human: board.White, Mode: ModeHumanVsComputer, Difficulty: "hard"},
		{Outcome: game.Outcome{Status: game.Checkmate, Winner: board.White}, Human: board.White, Mode: ModeHumanVsComputer, Difficulty: "easy"},
		{Outcome: game.Outcome{Status: game.Stalemate, Winner: board.NoColor}, Human: board.White, Mode: ModeHumanVsComputer},
		{Outcome: game.Outcome{Status: game.Checkmate, Winner: board.White}, Human: board.Black, Mode: ModeHumanVsComputer},
		{Outcome: game.Outcome{Status: game.Aborted, Winner: board.NoColor}, Human: board.NoColor, Mode: ModeHumanVsHuman},
	}
	for _, r := range results {
		if err := s.RecordGame(r); err != nil {
			t.Fatalf("RecordGame(%v): %v", r.Outcome, err)
		}
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 5 || stats.Wins != 2 || stats.Losses != 1 || stats.Draws != 1 || stats.Aborted != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Checkmates != 3 || stats.Stalemates != 1 {
		t.Errorf("checkmates %d stalemates %d", stats.Checkmates, stats.Stalemates)
	}
	if stats.LongestWinStrk != 2 || stats.CurrentStreak != 0 {
		t.Errorf("streaks: longest %d current %d", stats.LongestWinStrk, stats.CurrentStreak)
	}
	if stats.WinsByMode["hvc"] != 2 || stats.WinsByDiff["hard"] != 1 {
		t.Errorf("wins by mode %v by difficulty %v", stats.WinsByMode, stats.WinsByDiff)
	}
	if rate := stats.GetWinRate(); rate != 40 {
		t.Errorf("win rate = %.2f, want 40", rate)
	}

	if err := s.RecordGame(GameResult{Outcome: game.Outcome{Status: game.InProgress}}); err == nil {
		t.Error("recording an unfinished game should fail")
	}
}

func TestSavedPositions(t *testing.T) {
	s := openTest(t)

	if err := s.SavePosition("start", board.StartFEN); err != nil {
		t.Fatal(err)
	}
	if err := s.SavePosition("kings", "4k3/8/8/8/8/8/8/4K3 w - - 0 1"); err != nil {
		t.Fatal(err)
	}
	if err := s.SavePosition("broken", "8/8/8 w - - 0 1"); !errors.Is(err, board.ErrMalformedFEN) {
		t.Errorf("SavePosition(malformed) = %v", err)
	}
	if err := s.SavePosition("bad name", board.StartFEN); err == nil {
		t.Error("names with spaces should be rejected")
	}

	sp, err := s.LoadPosition("start")
	if err != nil {
		t.Fatal(err)
	}
	if sp.FEN != board.StartFEN || sp.Name != "start" {
		t.Errorf("LoadPosition = %+v", sp)
	}

	list, err := s.ListPositions()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "kings" || list[1].Name != "start" {
		t.Errorf("ListPositions = %+v", list)
	}

	if err := s.DeletePosition("kings"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadPosition("kings"); !errors.Is(err, ErrPositionNotFound) {
		t.Errorf("LoadPosition after delete = %v", err)
	}
	if err := s.DeletePosition("kings"); !errors.Is(err, ErrPositionNotFound) {
		t.Errorf("second delete = %v", err)
	}
}

func TestOpenDirectory(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SavePosition("start", board.StartFEN); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.LoadPosition("start"); err != nil {
		t.Errorf("position lost across reopen: %v", err)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}
}
