package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chessrules/internal/board"
)

const positionPrefix = "position/"

// ErrPositionNotFound is returned when no position is saved under a name.
var ErrPositionNotFound = errors.New("position not found")

// SavedPosition is a named FEN slot.
type SavedPosition struct {
	Name    string    `json:"name"`
	FEN     string    `json:"fen"`
	SavedAt time.Time `json:"saved_at"`
}

func positionKey(name string) ([]byte, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t\n/") {
		return nil, fmt.Errorf("invalid position name %q", name)
	}
	return []byte(positionPrefix + name), nil
}

// SavePosition stores fen under name, replacing any earlier slot. The FEN
// must describe a valid position.
func (s *Storage) SavePosition(name, fen string) error {
	key, err := positionKey(name)
	if err != nil {
		return err
	}
	if err := board.ValidateFEN(fen); err != nil {
		return err
	}

	data, err := json.Marshal(SavedPosition{Name: strings.TrimSpace(name), FEN: fen, SavedAt: time.Now()})
	if err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	}); err != nil {
		return err
	}
	log.Printf("[STORAGE] saved position %q", name)
	return nil
}

// LoadPosition returns the slot saved under name.
func (s *Storage) LoadPosition(name string) (SavedPosition, error) {
	var sp SavedPosition
	key, err := positionKey(name)
	if err != nil {
		return sp, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", ErrPositionNotFound, name)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sp)
		})
	})
	return sp, err
}

// DeletePosition removes the slot saved under name.
func (s *Storage) DeletePosition(name string) error {
	key, err := positionKey(name)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", ErrPositionNotFound, name)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// ListPositions returns every saved slot ordered by name.
func (s *Storage) ListPositions() ([]SavedPosition, error) {
	var out []SavedPosition
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(positionPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var sp SavedPosition
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &sp)
			}); err != nil {
				return err
			}
			out = append(out, sp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}
