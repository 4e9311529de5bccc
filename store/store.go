// Package store keeps analysed matches and their per-player statistics in
// a sqlite database, so that players can be followed over many matches.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/domino14/bgstats/game"
	"github.com/domino14/bgstats/gameanalysis"
)

var (
	ErrDuplicateMatch = errors.New("match is already in the database")
	ErrNoPlayer       = errors.New("no such player")
	ErrNotAnalysed    = errors.New("match has not been analysed")
)

var schema = `
CREATE TABLE IF NOT EXISTS player (
	player_id INTEGER PRIMARY KEY AUTOINCREMENT,
	name      TEXT NOT NULL UNIQUE,
	notes     TEXT
);

CREATE TABLE IF NOT EXISTS match (
	match_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	checksum   TEXT NOT NULL UNIQUE,
	player_id0 INTEGER NOT NULL,
	player_id1 INTEGER NOT NULL,
	result     INTEGER NOT NULL,
	length     INTEGER NOT NULL,
	added      TEXT NOT NULL,
	event      TEXT,
	round      TEXT,
	place      TEXT,
	date       TEXT,
	FOREIGN KEY (player_id0) REFERENCES player(player_id),
	FOREIGN KEY (player_id1) REFERENCES player(player_id)
);

CREATE TABLE IF NOT EXISTS matchstat (
	matchstat_id INTEGER PRIMARY KEY AUTOINCREMENT,
	match_id     INTEGER NOT NULL,
	player_id    INTEGER NOT NULL,
` + statColumnsDDL + `
	FOREIGN KEY (match_id) REFERENCES match(match_id),
	FOREIGN KEY (player_id) REFERENCES player(player_id)
);
`

// Store is a match database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Checksum identifies a match by what was played: the players, the match
// details and every decision's dice, play and cube action. Analysis
// results are left out, so re-analysing a match does not change it.
func Checksum(m *game.Match) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%q %q %d %q %q %q %q\n", m.Players[0], m.Players[1], m.MatchTo,
		m.Event, m.Round, m.Place, m.Date)
	for gn, g := range m.Games {
		fmt.Fprintf(h, "game %d\n", gn)
		for _, d := range g.Decisions {
			writeRecord(h, d)
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

func writeRecord(w io.Writer, d game.Decision) {
	fmt.Fprintf(w, "%s", d.Kind())
	switch d := d.(type) {
	case *game.GameInfo:
		fmt.Fprintf(w, " %d %d %v %t %t %d %d %t", d.Game, d.MatchTo, d.Score,
			d.Crawford, d.Jacoby, d.Winner, d.Points, d.Resigned)
	case *game.NormalMove:
		fmt.Fprintf(w, " %d %v %v", d.Player, d.Dice, d.Move)
	case *game.Double:
		fmt.Fprintf(w, " %d", d.Player)
	case *game.Take:
		fmt.Fprintf(w, " %d", d.Player)
	case *game.Drop:
		fmt.Fprintf(w, " %d", d.Player)
	case *game.Resign:
		fmt.Fprintf(w, " %d %d %t", d.Player, d.Points, d.Accepted)
	case *game.SetDice:
		fmt.Fprintf(w, " %d %v", d.Player, d.Dice)
	case *game.SetBoard:
		fmt.Fprintf(w, " %d %v", d.Player, d.Board)
	case *game.SetCubeValue:
		fmt.Fprintf(w, " %d", d.Value)
	case *game.SetCubePosition:
		fmt.Fprintf(w, " %d", d.Owner)
	}
	io.WriteString(w, "\n")
}

// matchResult is 1 if player 0 won the match or session, -1 if player 1
// did, and 0 if it is unfinished or drawn.
func matchResult(m *game.Match) int {
	if len(m.Games) == 0 {
		return 0
	}
	gi, err := m.Games[len(m.Games)-1].Info()
	if err != nil || gi.Winner < 0 {
		return 0
	}
	score := gi.Score
	score[gi.Winner] += gi.Points
	if m.MatchTo > 0 && score[gi.Winner] < m.MatchTo {
		return 0
	}
	switch {
	case score[0] > score[1]:
		return 1
	case score[1] > score[0]:
		return -1
	}
	return 0
}

func (s *Store) playerID(ctx context.Context, q queryer, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, "SELECT player_id FROM player WHERE name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", ErrNoPlayer, name)
	}
	return id, err
}

func (s *Store) addPlayer(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO player (name) VALUES (?)", name); err != nil {
		return 0, fmt.Errorf("add player %s: %w", name, err)
	}
	return s.playerID(ctx, tx, name)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AddMatch stores an analysed match with the statistics of both players
// and returns its id. A match that is already stored is refused with
// ErrDuplicateMatch unless force is set, in which case it is replaced.
func (s *Store) AddMatch(ctx context.Context, m *game.Match, force bool) (int64, error) {
	if m.Stats.Empty() {
		return 0, ErrNotAnalysed
	}
	key := Checksum(m)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var existing int64
	err = tx.QueryRowContext(ctx, "SELECT match_id FROM match WHERE checksum = ?", key).Scan(&existing)
	switch {
	case err == nil && !force:
		return 0, fmt.Errorf("%w (id %d)", ErrDuplicateMatch, existing)
	case err == nil:
		if err := deleteMatches(ctx, tx, "match_id = ?", existing); err != nil {
			return 0, err
		}
	case !errors.Is(err, sql.ErrNoRows):
		return 0, err
	}

	var ids [2]int64
	for p, name := range m.Players {
		if ids[p], err = s.addPlayer(ctx, tx, name); err != nil {
			return 0, err
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO match (checksum, player_id0, player_id1, result, length, added, event, round, place, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key, ids[0], ids[1], matchResult(m), m.MatchTo, time.Now().UTC().Format(time.RFC3339),
		m.Event, m.Round, m.Place, m.Date)
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}
	matchID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	insert := fmt.Sprintf("INSERT INTO matchstat (match_id, player_id, %s) VALUES (?, ?%s)",
		strings.Join(statColumnNames, ", "), strings.Repeat(", ?", len(statColumnNames)))
	for p := 0; p < 2; p++ {
		args := append([]any{matchID, ids[p]}, statValues(&m.Stats, p)...)
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return 0, fmt.Errorf("insert matchstat: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Info().Int64("match-id", matchID).Str("checksum", key).
		Strs("players", m.Players[:]).Msg("added match")
	return matchID, nil
}

func deleteMatches(ctx context.Context, tx *sql.Tx, where string, args ...any) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM matchstat WHERE match_id IN (SELECT match_id FROM match WHERE "+where+")", args...); err != nil {
		return fmt.Errorf("delete matchstat: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM match WHERE "+where, args...); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return nil
}

// MatchCount returns the number of stored matches.
func (s *Store) MatchCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM match").Scan(&n)
	return n, err
}

// PlayerDetails summarises a player's stored matches.
type PlayerDetails struct {
	Name          string
	MatchesPlayed int
	MatchesWon    int
	// AvgErrorRate is the mean of the per-match overall error rates.
	AvgErrorRate float64
	Rating       gameanalysis.Rating
}

// ListDetails returns the summary for the player called name.
func (s *Store) ListDetails(ctx context.Context, name string) (*PlayerDetails, error) {
	id, err := s.playerID(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	pd := &PlayerDetails{Name: name}
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM match WHERE player_id0 = ? OR player_id1 = ?", id, id).Scan(&pd.MatchesPlayed)
	if err != nil {
		return nil, err
	}
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM match WHERE (player_id0 = ? AND result = 1) OR (player_id1 = ? AND result = -1)",
		id, id).Scan(&pd.MatchesWon)
	if err != nil {
		return nil, err
	}
	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		"SELECT AVG(overall_error_per_move_normalised) FROM matchstat WHERE player_id = ?", id).Scan(&avg)
	if err != nil {
		return nil, err
	}
	pd.AvgErrorRate = avg.Float64
	pd.Rating = gameanalysis.GetRating(pd.AvgErrorRate)
	return pd, nil
}

// Players returns the names of all stored players in alphabetical order.
func (s *Store) Players(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM player ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// ErasePlayer removes a player and every match they played.
func (s *Store) ErasePlayer(ctx context.Context, name string) error {
	id, err := s.playerID(ctx, s.db, name)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := deleteMatches(ctx, tx, "player_id0 = ? OR player_id1 = ?", id, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM player WHERE player_id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// EraseAll empties the database.
func (s *Store) EraseAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{"matchstat", "match", "player"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("erase %s: %w", table, err)
		}
	}
	return tx.Commit()
}
