package winrate

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists per-game results to a local sqlite database so a replay
// directory only has to be parsed once. Aggregates are rebuilt from the
// stored rows on load.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	path        TEXT PRIMARY KEY,
	match_id    TEXT NOT NULL DEFAULT '',
	game_number INTEGER NOT NULL DEFAULT 0,
	game_mode   TEXT NOT NULL DEFAULT 'unknown',
	stage_id    INTEGER NOT NULL,
	played_at   TEXT NOT NULL,
	my_port     INTEGER NOT NULL,
	opp_port    INTEGER NOT NULL,
	my_label    TEXT NOT NULL,
	opp_label   TEXT NOT NULL,
	my_char     INTEGER NOT NULL,
	opp_char    INTEGER NOT NULL,
	winner_port INTEGER
);
CREATE INDEX IF NOT EXISTS idx_games_match ON games (match_id, game_number);
`

// OpenStore opens (and if needed initializes) the database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening winrate store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing winrate store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Has reports whether a replay path has already been recorded.
func (s *Store) Has(path string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM games WHERE path = ?`, path).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SaveGame records one parsed game, keyed by replay path. The aggregator's
// port split must already have been applied by the caller.
func (s *Store) SaveGame(path string, res *GameResult, myPort, oppPort int) error {
	var winner any
	if res.WinnerPort != nil {
		winner = *res.WinnerPort
	}
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO games
		(path, match_id, game_number, game_mode, stage_id, played_at,
		 my_port, opp_port, my_label, opp_label, my_char, opp_char, winner_port)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		path, res.MatchID, res.GameNumber, res.GameMode, res.StageID,
		res.PlayedAt.UTC().Format(time.RFC3339),
		myPort, oppPort, res.Players[myPort], res.Players[oppPort],
		res.Characters[myPort], res.Characters[oppPort], winner,
	)
	return err
}

// LoadInto replays every stored game through the aggregator, oldest first.
func (s *Store) LoadInto(agg *Aggregator) error {
	rows, err := s.db.Query(`
		SELECT match_id, game_number, game_mode, stage_id, played_at,
		       my_port, opp_port, my_label, opp_label, my_char, opp_char, winner_port
		FROM games ORDER BY played_at ASC`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			res              GameResult
			playedAt         string
			myPort, oppPort  int
			myLabel, oppName string
			myChar, oppChar  uint8
			winner           sql.NullInt64
		)
		res.Players = make(map[int]string, 2)
		res.Characters = make(map[int]uint8, 2)
		if err := rows.Scan(&res.MatchID, &res.GameNumber, &res.GameMode, &res.StageID,
			&playedAt, &myPort, &oppPort, &myLabel, &oppName, &myChar, &oppChar, &winner); err != nil {
			return err
		}
		res.Players[myPort] = myLabel
		res.Players[oppPort] = oppName
		res.Characters[myPort] = myChar
		res.Characters[oppPort] = oppChar
		if t, err := time.Parse(time.RFC3339, playedAt); err == nil {
			res.PlayedAt = t
		}
		if winner.Valid {
			w := int(winner.Int64)
			res.WinnerPort = &w
		}
		agg.AddGame(&res)
	}
	return rows.Err()
}
