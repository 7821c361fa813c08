// Package archive persists finished games and player snapshots in BadgerDB,
// surviving the restarts that wipe the volatile store.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/kokexgggguu/haxball/domain"
)

const (
	gamePrefix   = "game:"
	playerPrefix = "player:"
	// maxPaddedStamp seeks past every real timestamp on a reverse scan.
	maxPaddedStamp = "9999999999999999999"
)

// Archive is the on-disk game history.
type Archive struct {
	db  *badger.DB
	log *slog.Logger
}

// Open opens (or creates) the archive at the given path.
func Open(path string, log *slog.Logger) (*Archive, error) {
	options := badger.DefaultOptions(path)
	options.Logger = nil
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("opening archive at %s: %w", path, err)
	}
	return &Archive{db: db, log: log.With(slog.String("component", "archive"))}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveGame archives one finished game.
// The key is "game:{timestamp_padded}:{id}": 19-digit zero padding keeps the
// keys chronologically sorted under lexicographical order, and the game ID
// disambiguates two games ending in the same nanosecond.
func (a *Archive) SaveGame(game domain.Game) error {
	stamp := game.StartedAt
	if game.EndedAt != nil {
		stamp = *game.EndedAt
	}
	key := fmt.Sprintf("%s%019d:%s", gamePrefix, stamp.UnixNano(), game.ID)

	payload, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("encoding game %s: %w", game.ID, err)
	}
	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), payload)
	})
	if err != nil {
		return fmt.Errorf("archiving game %s: %w", game.ID, err)
	}
	a.log.Debug("game archived", slog.String("game_id", game.ID))
	return nil
}

// RecentGames returns up to limit archived games, most recent first.
// The padded timestamp in the key makes a reverse prefix scan return them
// already ordered.
func (a *Archive) RecentGames(limit int) ([]domain.Game, error) {
	var payloads [][]byte
	err := a.db.View(func(txn *badger.Txn) error {
		prefix := []byte(gamePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(append(prefix, []byte(maxPaddedStamp)...)); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(payloads) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				payloads = append(payloads, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning archived games: %w", err)
	}

	games := make([]domain.Game, 0, len(payloads))
	for _, payload := range payloads {
		var game domain.Game
		if err := json.Unmarshal(payload, &game); err != nil {
			return nil, fmt.Errorf("decoding archived game: %w", err)
		}
		games = append(games, game)
	}
	return games, nil
}

// playerSnapshot is the durable career record for one player name.
type playerSnapshot struct {
	Player     domain.Player `json:"player"`
	ArchivedAt time.Time     `json:"archivedAt"`
}

// SavePlayer upserts the career snapshot for a player, keyed by name so the
// latest snapshot wins across sessions.
func (a *Archive) SavePlayer(player domain.Player) error {
	key := playerPrefix + player.Name
	payload, err := json.Marshal(playerSnapshot{Player: player, ArchivedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("encoding player %s: %w", player.Name, err)
	}
	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), payload)
	})
	if err != nil {
		return fmt.Errorf("archiving player %s: %w", player.Name, err)
	}
	return nil
}

// GetPlayer loads the archived snapshot for a player name.
func (a *Archive) GetPlayer(name string) (domain.Player, bool, error) {
	var snap playerSnapshot
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(playerPrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &snap)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Player{}, false, nil
	}
	if err != nil {
		return domain.Player{}, false, fmt.Errorf("loading player %s: %w", name, err)
	}
	return snap.Player, true, nil
}
