package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chessrules/internal/board"
	"github.com/hailam/chessrules/internal/game"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyFirstLaunch = "first_launch"
)

// GameMode represents the game mode
type GameMode int

const (
	ModeHumanVsHuman GameMode = iota
	ModeHumanVsComputer
)

// String returns the short mode key used in statistics.
func (m GameMode) String() string {
	if m == ModeHumanVsComputer {
		return "hvc"
	}
	return "hvh"
}

// UserPreferences stores user settings
type UserPreferences struct {
	Rules        board.Rules `json:"rules"`
	GameMode     GameMode    `json:"game_mode"`
	HumanColor   board.Color `json:"human_color"`
	Difficulty   string      `json:"difficulty"`
	SoundEnabled bool        `json:"sound_enabled"`
	LastFEN      string      `json:"last_fen,omitempty"`
	LastPlayed   time.Time   `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Rules:        board.DefaultRules(),
		GameMode:     ModeHumanVsComputer,
		HumanColor:   board.White,
		Difficulty:   "medium",
		SoundEnabled: true,
		LastPlayed:   time.Now(),
	}
}

// OpponentColor returns the side the computer plays, NoColor in
// human-vs-human mode.
func (p *UserPreferences) OpponentColor() board.Color {
	if p.GameMode != ModeHumanVsComputer || p.HumanColor > board.Black {
		return board.NoColor
	}
	return p.HumanColor.Other()
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Draws          int            `json:"draws"`
	Aborted        int            `json:"aborted"`
	Checkmates     int            `json:"checkmates"`
	Stalemates     int            `json:"stalemates"`
	WinsByMode     map[string]int `json:"wins_by_mode"`
	WinsByDiff     map[string]int `json:"wins_by_difficulty"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByMode: make(map[string]int),
		WinsByDiff: make(map[string]int),
	}
}

// GameResult describes a finished game from the human's side. Human is
// NoColor for human-vs-human games, which count as neither win nor loss
// unless drawn.
type GameResult struct {
	Outcome    game.Outcome
	Human      board.Color
	Mode       GameMode
	Difficulty string
	Duration   time.Duration
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir)
}

// Open opens the database stored in dir.
func Open(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging
	return open(opts)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Storage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch
func (s *Storage) IsFirstLaunch() (bool, error) {
	firstLaunch := true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// putJSON stores v under key.
func (s *Storage) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// getJSON decodes the value under key into v. A missing key leaves v as is
// and reports false.
func (s *Storage) getJSON(key string, v any) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()
	return s.putJSON(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found.
// A stored LastFEN that no longer validates is dropped.
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()
	if _, err := s.getJSON(keyPreferences, prefs); err != nil {
		return DefaultPreferences(), err
	}
	if prefs.LastFEN != "" && !board.IsValidFEN(prefs.LastFEN) {
		prefs.LastFEN = ""
	}
	return prefs, nil
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.putJSON(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	if _, err := s.getJSON(keyStats, stats); err != nil {
		return NewGameStats(), err
	}
	if stats.WinsByMode == nil {
		stats.WinsByMode = make(map[string]int)
	}
	if stats.WinsByDiff == nil {
		stats.WinsByDiff = make(map[string]int)
	}
	return stats, nil
}

// RecordGame records a completed game and updates statistics
func (s *Storage) RecordGame(result GameResult) error {
	if !result.Outcome.IsOver() {
		return fmt.Errorf("record game: %s is not finished", result.Outcome)
	}

	stats, err := s.LoadStats()
	if err != nil {
		return err
	}
	stats.apply(result)
	return s.SaveStats(stats)
}

func (stats *GameStats) apply(result GameResult) {
	stats.GamesPlayed++
	stats.TotalPlayTime += result.Duration

	switch result.Outcome.Status {
	case game.Aborted:
		stats.Aborted++
		stats.CurrentStreak = 0
		return
	case game.Stalemate:
		stats.Stalemates++
		stats.Draws++
		stats.CurrentStreak = 0
		return
	case game.Checkmate:
		stats.Checkmates++
	}

	if result.Human == board.NoColor {
		return
	}
	if result.Outcome.Winner == result.Human {
		stats.Wins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestWinStrk {
			stats.LongestWinStrk = stats.CurrentStreak
		}
		stats.WinsByMode[result.Mode.String()]++
		if result.Difficulty != "" {
			stats.WinsByDiff[result.Difficulty]++
		}
	} else {
		stats.Losses++
		stats.CurrentStreak = 0
	}
}

// GetWinRate returns the win rate as a percentage (0-100)
func (stats *GameStats) GetWinRate() float64 {
	if stats.GamesPlayed == 0 {
		return 0
	}
	return float64(stats.Wins) / float64(stats.GamesPlayed) * 100
}
