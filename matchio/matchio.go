// Package matchio reads and writes matches as YAML or JSON. Each decision
// is stored as a record with a kind and a body named after that kind, for
// example
//
//	- kind: move
//	  play: 24/18 13/8
//	  move: {player: 0, dice: [6, 5]}
package matchio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/game"
)

var (
	ErrUnknownFormat = errors.New("unknown match file format")
	ErrUnknownKind   = errors.New("unknown decision kind")
	ErrBadRecord     = errors.New("bad decision record")
)

type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

type matchFile struct {
	Players [2]string    `json:"players" yaml:"players"`
	MatchTo int          `json:"match-to" yaml:"match-to"`
	Event   string       `json:"event,omitempty" yaml:"event,omitempty"`
	Round   string       `json:"round,omitempty" yaml:"round,omitempty"`
	Place   string       `json:"place,omitempty" yaml:"place,omitempty"`
	Date    string       `json:"date,omitempty" yaml:"date,omitempty"`
	Games   []gameRecord `json:"games" yaml:"games"`
}

type gameRecord struct {
	Decisions []record `json:"decisions" yaml:"decisions"`
}

// record is one decision. Exactly one body is set and it must agree with
// Kind.
type record struct {
	Kind string `json:"kind" yaml:"kind"`
	// Play is the written form of a move record's chequer play.
	Play string `json:"play,omitempty" yaml:"play,omitempty"`

	GameInfo        *game.GameInfo        `json:"game-info,omitempty" yaml:"game-info,omitempty"`
	Move            *game.NormalMove      `json:"move,omitempty" yaml:"move,omitempty"`
	Double          *game.Double          `json:"double,omitempty" yaml:"double,omitempty"`
	Take            *game.Take            `json:"take,omitempty" yaml:"take,omitempty"`
	Drop            *game.Drop            `json:"drop,omitempty" yaml:"drop,omitempty"`
	Resign          *game.Resign          `json:"resign,omitempty" yaml:"resign,omitempty"`
	SetDice         *game.SetDice         `json:"set-dice,omitempty" yaml:"set-dice,omitempty"`
	SetBoard        *game.SetBoard        `json:"set-board,omitempty" yaml:"set-board,omitempty"`
	SetCubeValue    *game.SetCubeValue    `json:"set-cube-value,omitempty" yaml:"set-cube-value,omitempty"`
	SetCubePosition *game.SetCubePosition `json:"set-cube-position,omitempty" yaml:"set-cube-position,omitempty"`
}

func formatPlay(m board.Move) string {
	// an empty board marks no hits, which the notation doesn't need
	return board.FormatMove(board.Board{}, m)
}

func parsePlay(s string) (board.Move, error) {
	if s == "cannot move" {
		return board.NoMove, nil
	}
	return board.ParseMove(s)
}

func toRecord(d game.Decision) (record, error) {
	r := record{Kind: d.Kind().String()}
	switch d := d.(type) {
	case *game.GameInfo:
		r.GameInfo = d
	case *game.NormalMove:
		r.Move = d
		r.Play = formatPlay(d.Move)
	case *game.Double:
		r.Double = d
	case *game.Take:
		r.Take = d
	case *game.Drop:
		r.Drop = d
	case *game.Resign:
		r.Resign = d
	case *game.SetDice:
		r.SetDice = d
	case *game.SetBoard:
		r.SetBoard = d
	case *game.SetCubeValue:
		r.SetCubeValue = d
	case *game.SetCubePosition:
		r.SetCubePosition = d
	default:
		return r, fmt.Errorf("%w: %T", ErrUnknownKind, d)
	}
	return r, nil
}

// decision returns the body of r, checking it against r.Kind.
func (r record) decision() (game.Decision, error) {
	kind, ok := game.KindFromString(r.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
	var d game.Decision
	n := 0
	set := func(dd game.Decision, present bool) {
		if present {
			d = dd
			n++
		}
	}
	set(r.GameInfo, r.GameInfo != nil)
	set(r.Move, r.Move != nil)
	set(r.Double, r.Double != nil)
	set(r.Take, r.Take != nil)
	set(r.Drop, r.Drop != nil)
	set(r.Resign, r.Resign != nil)
	set(r.SetDice, r.SetDice != nil)
	set(r.SetBoard, r.SetBoard != nil)
	set(r.SetCubeValue, r.SetCubeValue != nil)
	set(r.SetCubePosition, r.SetCubePosition != nil)

	if n > 1 {
		return nil, fmt.Errorf("%w: %d bodies in a %s record", ErrBadRecord, n, r.Kind)
	}
	if n == 0 {
		// bodies with only zero values may be left out
		d = emptyDecision(kind)
	}
	if d.Kind() != kind {
		return nil, fmt.Errorf("%w: %s record has a %s body", ErrBadRecord, r.Kind, d.Kind())
	}

	switch d := d.(type) {
	case *game.NormalMove:
		if r.Play == "" {
			return nil, fmt.Errorf("%w: move record without a play", ErrBadRecord)
		}
		m, err := parsePlay(r.Play)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRecord, err)
		}
		d.Move = m
	case *game.GameInfo:
		if r.GameInfo == nil {
			d.Winner = -1
		}
	}
	return d, nil
}

func emptyDecision(k game.Kind) game.Decision {
	switch k {
	case game.KindGameInfo:
		return &game.GameInfo{}
	case game.KindNormalMove:
		return &game.NormalMove{MoveIndex: -1}
	case game.KindDouble:
		return &game.Double{}
	case game.KindTake:
		return &game.Take{}
	case game.KindDrop:
		return &game.Drop{}
	case game.KindResign:
		return &game.Resign{}
	case game.KindSetDice:
		return &game.SetDice{}
	case game.KindSetBoard:
		return &game.SetBoard{}
	case game.KindSetCubeValue:
		return &game.SetCubeValue{}
	}
	return &game.SetCubePosition{}
}

func toFile(m *game.Match) (*matchFile, error) {
	f := &matchFile{
		Players: m.Players,
		MatchTo: m.MatchTo,
		Event:   m.Event,
		Round:   m.Round,
		Place:   m.Place,
		Date:    m.Date,
		Games:   make([]gameRecord, len(m.Games)),
	}
	for i, g := range m.Games {
		recs := make([]record, len(g.Decisions))
		for j, d := range g.Decisions {
			r, err := toRecord(d)
			if err != nil {
				return nil, fmt.Errorf("game %d, decision %d: %w", i+1, j, err)
			}
			recs[j] = r
		}
		f.Games[i].Decisions = recs
	}
	return f, nil
}

func fromFile(f *matchFile) (*game.Match, error) {
	m := &game.Match{
		Players: f.Players,
		MatchTo: f.MatchTo,
		Event:   f.Event,
		Round:   f.Round,
		Place:   f.Place,
		Date:    f.Date,
		Games:   make([]*game.Game, len(f.Games)),
	}
	for i, gr := range f.Games {
		g := &game.Game{Decisions: make([]game.Decision, len(gr.Decisions))}
		for j, r := range gr.Decisions {
			d, err := r.decision()
			if err != nil {
				return nil, fmt.Errorf("game %d, decision %d: %w", i+1, j, err)
			}
			g.Decisions[j] = d
		}
		gi, err := g.Info()
		if err != nil {
			return nil, fmt.Errorf("game %d: %w", i+1, err)
		}
		gi.Game = i
		if gi.MatchTo == 0 {
			gi.MatchTo = f.MatchTo
		}
		m.Games[i] = g
	}
	return m, nil
}

// Marshal encodes m in format f. The encoding of a match is deterministic,
// so it can be used to recognise a match that was seen before.
func Marshal(m *game.Match, f Format) ([]byte, error) {
	mf, err := toFile(m)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(mf); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(mf, "", "  ")
	}
	return nil, ErrUnknownFormat
}

// Unmarshal decodes a match in format f.
func Unmarshal(data []byte, f Format) (*game.Match, error) {
	var mf matchFile
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &mf); err != nil {
			return nil, err
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &mf); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownFormat
	}
	return fromFile(&mf)
}

// Read decodes a match from r.
func Read(r io.Reader, f Format) (*game.Match, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data, f)
}

// Write encodes m to w.
func Write(w io.Writer, m *game.Match, f Format) error {
	data, err := Marshal(m, f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Load reads the match in the file at path.
func Load(path string) (*game.Match, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Unmarshal(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Save writes m to the file at path.
func Save(path string, m *game.Match) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(m, f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
