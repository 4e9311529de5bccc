// Package evaluator defines the position evaluator the analysis calls
// out to, the records it returns, and a caching decorator.
package evaluator

import (
	"context"
	"errors"

	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/equity"
)

var ErrEvaluation = errors.New("evaluation failed")

// Move is a ranked candidate move.
type Move struct {
	Move    board.Move     `json:"move" yaml:"move"`
	Key     board.Key      `json:"key" yaml:"key"`
	Outputs equity.Outputs `json:"outputs" yaml:"outputs"`
	// Score is the equity used for ranking, normalised to the cube.
	Score float64   `json:"score" yaml:"score"`
	Setup EvalSetup `json:"setup" yaml:"setup"`
}

// CubeEvaluation is the result of a cube decision evaluation. NoDouble
// and DoubleTake are normalised cubeful equities for the doubler.
type CubeEvaluation struct {
	Outputs    equity.Outputs `json:"outputs" yaml:"outputs"`
	NoDouble   float64        `json:"no-double" yaml:"no-double"`
	DoubleTake float64        `json:"double-take" yaml:"double-take"`
	StdDev     [2]float64     `json:"stddev" yaml:"stddev"`
}

// Evaluator evaluates positions. All calls may block for a long time and
// must honour ctx. Boards are always from the point of view of the side
// on roll, and ci.Move is that side.
type Evaluator interface {
	// EvaluatePosition returns cubeless probabilities for b.
	EvaluatePosition(ctx context.Context, b board.Board, ci equity.CubeInfo, ec EvalContext) (equity.Outputs, error)
	// FindBestMove plays the best move for the roll and returns the
	// resulting board, still from the mover's point of view.
	FindBestMove(ctx context.Context, b board.Board, d0, d1 int, ci equity.CubeInfo) (board.Board, error)
	// FindnSaveBestMoves returns every legal move ranked best first.
	FindnSaveBestMoves(ctx context.Context, b board.Board, d0, d1 int, ci equity.CubeInfo, ec EvalContext) ([]Move, error)
	// GeneralCubeDecision evaluates the cube action for the side on roll.
	GeneralCubeDecision(ctx context.Context, b board.Board, ci equity.CubeInfo, es EvalSetup) (CubeEvaluation, error)
	// Resignation evaluates b for a resignation decision. ci.Move is the
	// resigner and the outputs are from the resigner's point of view.
	Resignation(ctx context.Context, b board.Board, ci equity.CubeInfo, es EvalSetup) (equity.Outputs, error)
}
