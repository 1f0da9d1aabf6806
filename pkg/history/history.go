// Package history persists completed match records: winner, loser, the
// neurons and potentials each side built, how long the match ran, and
// which audio file drove it.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// MatchRecord is one finished game.
type MatchRecord struct {
	ID                 int64
	WinnerName         string
	LoserName          string
	WinnerNeuronsBuilt int
	LoserNeuronsBuilt  int
	PotentialsLaunched int
	DurationMS         int64
	AudioFile          string
	FinishedAt         time.Time
}

// History manages match-record persistence.
type History struct {
	db *sql.DB
}

// New opens (creating if necessary) a SQLite-backed match history at dbPath.
func New(dbPath string) (*History, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	h := &History{db: db}

	if err := h.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"db_path": dbPath,
	}).Info("match history initialized")

	return h, nil
}

func (h *History) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		winner_name TEXT NOT NULL,
		loser_name TEXT NOT NULL,
		winner_neurons_built INTEGER NOT NULL DEFAULT 0,
		loser_neurons_built INTEGER NOT NULL DEFAULT 0,
		potentials_launched INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		audio_file TEXT NOT NULL,
		finished_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_matches_winner ON matches(winner_name);
	CREATE INDEX IF NOT EXISTS idx_matches_loser ON matches(loser_name);
	CREATE INDEX IF NOT EXISTS idx_matches_finished_at ON matches(finished_at DESC);
	`

	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// RecordMatch inserts one finished match and returns its assigned ID.
func (h *History) RecordMatch(rec MatchRecord) (int64, error) {
	query := `
	INSERT INTO matches (
		winner_name, loser_name, winner_neurons_built, loser_neurons_built,
		potentials_launched, duration_ms, audio_file, finished_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := h.db.Exec(query,
		rec.WinnerName, rec.LoserName, rec.WinnerNeuronsBuilt, rec.LoserNeuronsBuilt,
		rec.PotentialsLaunched, rec.DurationMS, rec.AudioFile, rec.FinishedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record match: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted match id: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"winner":      rec.WinnerName,
		"loser":       rec.LoserName,
		"duration_ms": rec.DurationMS,
		"audio_file":  rec.AudioFile,
	}).Debug("match recorded")

	return id, nil
}

// RecentMatches returns up to limit matches, most recently finished first.
func (h *History) RecentMatches(limit int) ([]MatchRecord, error) {
	query := `
	SELECT id, winner_name, loser_name, winner_neurons_built, loser_neurons_built,
		potentials_launched, duration_ms, audio_file, finished_at
	FROM matches
	ORDER BY finished_at DESC
	LIMIT ?
	`

	rows, err := h.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent matches: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// MatchesForPlayer returns up to limit matches, most recent first, in which
// name played either side.
func (h *History) MatchesForPlayer(name string, limit int) ([]MatchRecord, error) {
	query := `
	SELECT id, winner_name, loser_name, winner_neurons_built, loser_neurons_built,
		potentials_launched, duration_ms, audio_file, finished_at
	FROM matches
	WHERE winner_name = ? OR loser_name = ?
	ORDER BY finished_at DESC
	LIMIT ?
	`

	rows, err := h.db.Query(query, name, name, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for player: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

func scanMatches(rows *sql.Rows) ([]MatchRecord, error) {
	var recs []MatchRecord
	for rows.Next() {
		var r MatchRecord
		if err := rows.Scan(
			&r.ID, &r.WinnerName, &r.LoserName, &r.WinnerNeuronsBuilt, &r.LoserNeuronsBuilt,
			&r.PotentialsLaunched, &r.DurationMS, &r.AudioFile, &r.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		recs = append(recs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return recs, nil
}

// WinRate returns the win/loss count for name across all recorded matches.
func (h *History) WinRate(name string) (wins, losses int, err error) {
	if err = h.db.QueryRow(`SELECT COUNT(*) FROM matches WHERE winner_name = ?`, name).Scan(&wins); err != nil {
		return 0, 0, fmt.Errorf("failed to count wins: %w", err)
	}
	if err = h.db.QueryRow(`SELECT COUNT(*) FROM matches WHERE loser_name = ?`, name).Scan(&losses); err != nil {
		return 0, 0, fmt.Errorf("failed to count losses: %w", err)
	}
	return wins, losses, nil
}

// Close closes the underlying database connection.
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}
