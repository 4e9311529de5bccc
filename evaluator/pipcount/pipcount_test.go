package pipcount

import (
	"context"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/equity"
	"github.com/domino14/bgstats/evaluator"
)

var money = equity.MustCubeInfo(1, -1, 0, 0, [2]int{}, false)

func TestStaticOpening(t *testing.T) {
	is := is.New(t)
	o, err := New().EvaluatePosition(context.Background(), board.Initial(), money, evaluator.EvalContext{})
	is.NoErr(err)
	is.True(o[equity.OutputWin] > 0.5)
	is.True(o[equity.OutputWin] < 0.7)
	is.True(o[equity.OutputWinGammon] <= o[equity.OutputWin])
	is.True(o[equity.OutputWinBackgammon] <= o[equity.OutputWinGammon])
}

func TestGameOver(t *testing.T) {
	is := is.New(t)
	var b board.Board
	b[0][20] = 15
	o := static(b)
	is.Equal(o[equity.OutputWin], 1.0)
	is.Equal(o[equity.OutputWinGammon], 1.0)
	is.Equal(o[equity.OutputWinBackgammon], 1.0)
}

func TestDeterministicNoise(t *testing.T) {
	is := is.New(t)
	ec := evaluator.EvalContext{Noise: 0.05, Deterministic: true}
	ev := New()
	a, err := ev.EvaluatePosition(context.Background(), board.Initial(), money, ec)
	is.NoErr(err)
	b, err := ev.EvaluatePosition(context.Background(), board.Initial(), money, ec)
	is.NoErr(err)
	is.Equal(a, b)
}

func TestFindnSaveBestMoves(t *testing.T) {
	is := is.New(t)
	ev := New()
	moves, err := ev.FindnSaveBestMoves(context.Background(), board.Initial(), 6, 5, money, evaluator.EvalContext{})
	is.NoErr(err)
	is.True(len(moves) > 1)
	for i := 1; i < len(moves); i++ {
		is.True(moves[i-1].Score >= moves[i].Score)
	}
	is.Equal(moves[0].Setup.Type, evaluator.EvalEval)

	best, err := ev.FindBestMove(context.Background(), board.Initial(), 6, 5, money)
	is.NoErr(err)
	is.Equal(board.PositionKey(best), moves[0].Key)
}

func TestOnePly(t *testing.T) {
	is := is.New(t)
	var b board.Board
	b[1][2] = 2
	b[0][3] = 2
	o, err := New().EvaluatePosition(context.Background(), b, money, evaluator.EvalContext{Plies: 1})
	is.NoErr(err)
	is.True(o[equity.OutputWin] >= 0 && o[equity.OutputWin] <= 1)
}

func TestCubeDecision(t *testing.T) {
	is := is.New(t)
	ev := New()
	es := evaluator.EvalSetup{Type: evaluator.EvalEval, Eval: evaluator.EvalContext{Cubeful: true}}

	// far ahead in a race
	var b board.Board
	b[1][0] = 15
	b[0][23] = 15
	ce, err := ev.GeneralCubeDecision(context.Background(), b, money, es)
	is.NoErr(err)
	cd, action := equity.FindCubeDecision(ce.NoDouble, ce.DoubleTake, money)
	is.True(action == equity.DoublePass || action == equity.TooGood)
	is.True(cd[equity.OutputOptimal] >= 1.0-1e-9)

	ce, err = ev.GeneralCubeDecision(context.Background(), board.Initial(), money, es)
	is.NoErr(err)
	_, action = equity.FindCubeDecision(ce.NoDouble, ce.DoubleTake, money)
	is.Equal(action, equity.NoDouble)
}

func TestCancelled(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().EvaluatePosition(ctx, board.Initial(), money, evaluator.EvalContext{})
	is.True(err != nil)
}
