package game

import (
	"errors"
	"fmt"

	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/equity"
	"github.com/domino14/bgstats/met"
)

var (
	ErrGameOver     = errors.New("game is already over")
	ErrNotDoubled   = errors.New("no double to respond to")
	ErrIllegalMove  = errors.New("illegal move")
	ErrBadDecisions = errors.New("game must start with game info")
)

// MatchState is the running state of a game being replayed.
type MatchState struct {
	// Board is from the point of view of player Move.
	Board board.Board
	Move  int
	// Turn is the player who must act next, -1 before the first roll.
	Turn      int
	Dice      [2]int
	Cube      int
	CubeOwner int
	Doubled   bool

	MatchTo      int
	Score        [2]int
	Crawford     bool
	PostCrawford bool
	Jacoby       bool

	GameOver bool
	Winner   int
	Points   int

	// Table is the match equity table; nil means the default.
	Table *met.Table
}

// NewMatchState returns a state ready for a game's GameInfo.
func NewMatchState(table *met.Table) *MatchState {
	return &MatchState{
		Board:     board.Initial(),
		Turn:      -1,
		Cube:      1,
		CubeOwner: -1,
		Winner:    -1,
		Table:     table,
	}
}

// CubeInfo returns the cube context for the player whose point of view the
// board is in.
func (ms *MatchState) CubeInfo() (equity.CubeInfo, error) {
	return equity.NewCubeInfo(ms.Cube, ms.CubeOwner, ms.Move, ms.MatchTo,
		ms.Score, ms.Crawford, ms.Jacoby, ms.Table)
}

// SetPerspective flips the board so that it is from player's point of
// view.
func (ms *MatchState) SetPerspective(player int) {
	if player != ms.Move {
		ms.Board.SwapSides()
		ms.Move = player
	}
}

func (ms *MatchState) endGame(winner, points int) {
	ms.GameOver = true
	ms.Winner = winner
	ms.Points = points
	ms.Doubled = false
	ms.Turn = -1
}

// gameValue returns how many cubes a finished game is worth to the winner
// on roll: 1, 2 for a gammon, 3 for a backgammon.
func gameValue(b board.Board) int {
	if b.Checkers(0) < board.NumCheckers {
		return 1
	}
	for i := 18; i < board.NumPoints; i++ {
		if b[0][i] > 0 {
			return 3
		}
	}
	return 2
}

// Apply advances the state by the effect of d.
func (ms *MatchState) Apply(d Decision) error {
	if _, ok := d.(*GameInfo); !ok && ms.GameOver {
		return fmt.Errorf("%w: %v", ErrGameOver, d.Kind())
	}
	switch d := d.(type) {
	case *GameInfo:
		table := ms.Table
		*ms = *NewMatchState(table)
		ms.MatchTo = d.MatchTo
		ms.Score = d.Score
		ms.Crawford = d.Crawford
		ms.Jacoby = d.Jacoby
		ms.PostCrawford = d.MatchTo > 0 && !d.Crawford &&
			(d.Score[0] == d.MatchTo-1 || d.Score[1] == d.MatchTo-1)

	case *NormalMove:
		ms.SetPerspective(d.Player)
		if err := ms.Board.ApplyMove(d.Move, true); err != nil {
			return fmt.Errorf("%w: %w", ErrIllegalMove, err)
		}
		if ms.Board.Checkers(1) == 0 {
			ms.endGame(d.Player, gameValue(ms.Board)*ms.Cube)
			return nil
		}
		ms.Board.SwapSides()
		ms.Move = 1 - d.Player
		ms.Turn = 1 - d.Player
		ms.Doubled = false
		ms.Dice = [2]int{}

	case *Double:
		ms.SetPerspective(d.Player)
		ms.Doubled = true
		ms.Turn = 1 - d.Player

	case *Take:
		if !ms.Doubled {
			return ErrNotDoubled
		}
		ms.Cube *= 2
		ms.CubeOwner = d.Player
		ms.Doubled = false
		ms.Turn = 1 - d.Player

	case *Drop:
		if !ms.Doubled {
			return ErrNotDoubled
		}
		ms.endGame(1-d.Player, ms.Cube)

	case *Resign:
		if d.Accepted {
			ms.endGame(1-d.Player, d.Points*ms.Cube)
		}

	case *SetDice:
		ms.SetPerspective(d.Player)
		ms.Dice = d.Dice
		ms.Turn = d.Player

	case *SetBoard:
		ms.Board = d.Board
		ms.Move = d.Player

	case *SetCubeValue:
		ms.Cube = d.Value

	case *SetCubePosition:
		ms.CubeOwner = d.Owner
	}
	return nil
}
