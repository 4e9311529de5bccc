package game

import (
	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/equity"
	"github.com/domino14/bgstats/evaluator"
)

// Kind identifies a decision variant.
type Kind int

const (
	KindGameInfo Kind = iota
	KindNormalMove
	KindDouble
	KindTake
	KindDrop
	KindResign
	KindSetDice
	KindSetBoard
	KindSetCubeValue
	KindSetCubePosition
)

var kindNames = [...]string{
	KindGameInfo:        "game-info",
	KindNormalMove:      "move",
	KindDouble:          "double",
	KindTake:            "take",
	KindDrop:            "drop",
	KindResign:          "resign",
	KindSetDice:         "set-dice",
	KindSetBoard:        "set-board",
	KindSetCubeValue:    "set-cube-value",
	KindSetCubePosition: "set-cube-position",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindFromString is the inverse of Kind.String.
func KindFromString(s string) (Kind, bool) {
	for k, n := range kindNames {
		if n == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Decision is one recorded ply of a game. The set of implementations is
// closed; switch on the concrete type.
type Decision interface {
	Kind() Kind
	decision()
}

// GameInfo starts a game and carries the game's statistics.
type GameInfo struct {
	// Game is the number of the game in the match, starting at 0.
	Game     int    `json:"game" yaml:"game"`
	MatchTo  int    `json:"match-to" yaml:"match-to"`
	Score    [2]int `json:"score" yaml:"score"`
	Crawford bool   `json:"crawford" yaml:"crawford"`
	Jacoby   bool   `json:"jacoby,omitempty" yaml:"jacoby,omitempty"`
	// Winner is -1 if the game was not finished.
	Winner   int  `json:"winner" yaml:"winner"`
	Points   int  `json:"points" yaml:"points"`
	Resigned bool `json:"resigned,omitempty" yaml:"resigned,omitempty"`

	Stats StatContext `json:"-" yaml:"-"`
}

// CubeAnalysis is the stored cube evaluation of a position.
type CubeAnalysis struct {
	Setup    evaluator.EvalSetup      `json:"setup" yaml:"setup"`
	Eval     evaluator.CubeEvaluation `json:"eval" yaml:"eval"`
	Decision equity.CubeDecision      `json:"decision" yaml:"decision"`
}

// Present reports whether a cube evaluation was performed.
func (c CubeAnalysis) Present() bool {
	return c.Setup.Type != evaluator.EvalNone
}

// NormalMove is a chequer play.
type NormalMove struct {
	Player int        `json:"player" yaml:"player"`
	Dice   [2]int     `json:"dice" yaml:"dice"`
	// Move is stored in files in its written form; see matchio.
	Move   board.Move `json:"-" yaml:"-"`

	Cube CubeAnalysis `json:"cube" yaml:"cube"`

	HasLuck  bool     `json:"has-luck,omitempty" yaml:"has-luck,omitempty"`
	Luck     float64  `json:"luck,omitempty" yaml:"luck,omitempty"`
	LuckType LuckType `json:"luck-type" yaml:"luck-type"`

	// Moves is the retained candidate list, best first. MoveIndex is the
	// played move's position in it, or -1.
	Moves        []evaluator.Move    `json:"moves,omitempty" yaml:"moves,omitempty"`
	MoveIndex    int                 `json:"move-index" yaml:"move-index"`
	ChequerSetup evaluator.EvalSetup `json:"chequer-setup" yaml:"chequer-setup"`

	Skill SkillType `json:"skill" yaml:"skill"`
}

// Double is a cube offer.
type Double struct {
	Player int          `json:"player" yaml:"player"`
	Cube   CubeAnalysis `json:"cube" yaml:"cube"`
	Skill  SkillType    `json:"skill" yaml:"skill"`
}

// Take accepts the preceding double.
type Take struct {
	Player int          `json:"player" yaml:"player"`
	Cube   CubeAnalysis `json:"cube" yaml:"cube"`
	Skill  SkillType    `json:"skill" yaml:"skill"`
}

// Drop refuses the preceding double.
type Drop struct {
	Player int          `json:"player" yaml:"player"`
	Cube   CubeAnalysis `json:"cube" yaml:"cube"`
	Skill  SkillType    `json:"skill" yaml:"skill"`
}

// Resign is a resignation. Points is 1, 2 or 3 for a single game, gammon
// or backgammon.
type Resign struct {
	Player   int  `json:"player" yaml:"player"`
	Points   int  `json:"points" yaml:"points"`
	Accepted bool `json:"accepted" yaml:"accepted"`

	Setup   evaluator.EvalSetup `json:"setup" yaml:"setup"`
	Outputs equity.Outputs      `json:"outputs" yaml:"outputs"`
	// equities of the resigner before and after resigning
	Before float64 `json:"before" yaml:"before"`
	After  float64 `json:"after" yaml:"after"`

	SkillResign SkillType `json:"skill-resign" yaml:"skill-resign"`
	SkillAccept SkillType `json:"skill-accept" yaml:"skill-accept"`
}

// SetDice is a manually set roll.
type SetDice struct {
	Player   int      `json:"player" yaml:"player"`
	Dice     [2]int   `json:"dice" yaml:"dice"`
	HasLuck  bool     `json:"has-luck,omitempty" yaml:"has-luck,omitempty"`
	Luck     float64  `json:"luck,omitempty" yaml:"luck,omitempty"`
	LuckType LuckType `json:"luck-type" yaml:"luck-type"`
}

// SetBoard replaces the position. Board is from Player's point of view.
type SetBoard struct {
	Player int         `json:"player" yaml:"player"`
	Board  board.Board `json:"board" yaml:"board"`
}

type SetCubeValue struct {
	Value int `json:"value" yaml:"value"`
}

type SetCubePosition struct {
	// Owner is -1 for a centred cube.
	Owner int `json:"owner" yaml:"owner"`
}

func (*GameInfo) Kind() Kind        { return KindGameInfo }
func (*NormalMove) Kind() Kind      { return KindNormalMove }
func (*Double) Kind() Kind          { return KindDouble }
func (*Take) Kind() Kind            { return KindTake }
func (*Drop) Kind() Kind            { return KindDrop }
func (*Resign) Kind() Kind          { return KindResign }
func (*SetDice) Kind() Kind         { return KindSetDice }
func (*SetBoard) Kind() Kind        { return KindSetBoard }
func (*SetCubeValue) Kind() Kind    { return KindSetCubeValue }
func (*SetCubePosition) Kind() Kind { return KindSetCubePosition }

func (*GameInfo) decision()        {}
func (*NormalMove) decision()      {}
func (*Double) decision()          {}
func (*Take) decision()            {}
func (*Drop) decision()            {}
func (*Resign) decision()          {}
func (*SetDice) decision()         {}
func (*SetBoard) decision()        {}
func (*SetCubeValue) decision()    {}
func (*SetCubePosition) decision() {}

// Player returns the player making d, or -1 for decisions that have none.
func Player(d Decision) int {
	switch d := d.(type) {
	case *NormalMove:
		return d.Player
	case *Double:
		return d.Player
	case *Take:
		return d.Player
	case *Drop:
		return d.Player
	case *Resign:
		return d.Player
	case *SetDice:
		return d.Player
	case *SetBoard:
		return d.Player
	}
	return -1
}
