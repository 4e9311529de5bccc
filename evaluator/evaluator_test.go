package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/equity"
)

func TestCompareSetups(t *testing.T) {
	is := is.New(t)
	none := EvalSetup{}
	ply0 := EvalSetup{Type: EvalEval}
	ply2 := EvalSetup{Type: EvalEval, Eval: EvalContext{Plies: 2}}
	noisy := EvalSetup{Type: EvalEval, Eval: EvalContext{Noise: 0.05}}
	pruned := EvalSetup{Type: EvalEval, Eval: EvalContext{Plies: 2, Prune: true}}
	ro := EvalSetup{Type: EvalRollout, Rollout: RolloutContext{Trials: 1296}}

	is.True(CompareSetups(ply0, none) > 0)
	is.True(CompareSetups(none, ply0) < 0)
	is.Equal(CompareSetups(ply0, ply0), 0)
	is.True(CompareSetups(ply2, ply0) > 0)
	is.True(CompareSetups(ply0, noisy) > 0)
	is.True(CompareSetups(ply2, pruned) > 0)
	is.True(CompareSetups(ro, ply2) > 0)
	is.Equal(CompareSetups(none, none), 0)
}

type countingEval struct {
	Evaluator
	evals int
	moves int
	fail  bool
}

func (c *countingEval) EvaluatePosition(ctx context.Context, b board.Board, ci equity.CubeInfo, ec EvalContext) (equity.Outputs, error) {
	c.evals++
	if c.fail {
		return equity.Outputs{}, ErrEvaluation
	}
	return equity.Outputs{0.5}, nil
}

func (c *countingEval) FindBestMove(ctx context.Context, b board.Board, d0, d1 int, ci equity.CubeInfo) (board.Board, error) {
	c.moves++
	return b, nil
}

func TestCached(t *testing.T) {
	is := is.New(t)
	inner := &countingEval{}
	c, err := NewCached(inner, 0.0)
	is.NoErr(err)
	ctx := context.Background()
	ci := equity.MustCubeInfo(1, -1, 0, 0, [2]int{}, false)
	b := board.Initial()

	for i := 0; i < 3; i++ {
		out, err := c.EvaluatePosition(ctx, b, ci, EvalContext{})
		is.NoErr(err)
		is.Equal(out[equity.OutputWin], 0.5)
	}
	is.Equal(inner.evals, 1)

	// a different context is a different entry
	_, err = c.EvaluatePosition(ctx, b, ci, EvalContext{Plies: 1})
	is.NoErr(err)
	is.Equal(inner.evals, 2)

	_, _ = c.FindBestMove(ctx, b, 3, 1, ci)
	_, _ = c.FindBestMove(ctx, b, 1, 3, ci)
	is.Equal(inner.moves, 1)

	hits, misses := c.Stats()
	is.Equal(hits, uint64(3))
	is.Equal(misses, uint64(3))
}

func TestCachedErrorsNotStored(t *testing.T) {
	is := is.New(t)
	inner := &countingEval{fail: true}
	c, err := NewCached(inner, 0.0)
	is.NoErr(err)
	ci := equity.MustCubeInfo(1, -1, 0, 0, [2]int{}, false)
	for i := 0; i < 2; i++ {
		_, err = c.EvaluatePosition(context.Background(), board.Initial(), ci, EvalContext{})
		is.True(errors.Is(err, ErrEvaluation))
	}
	is.Equal(inner.evals, 2)
}
