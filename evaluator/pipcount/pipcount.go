// Package pipcount is a small reference evaluator. It estimates winning
// chances from the race and cube equities from a live/dead cube mix. It
// is nowhere near a neural net, but it is deterministic, quick, and lets
// every command run end to end.
package pipcount

import (
	"context"
	"encoding/binary"
	"math"
	"sort"

	"github.com/cespare/xxhash"
	"gonum.org/v1/gonum/stat/distuv"
	"lukechampine.com/frand"

	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/equity"
	"github.com/domino14/bgstats/evaluator"
)

const (
	// pips the side on roll is worth
	rollAdvantage = 4.0
	// cube efficiency used to mix live and dead cube equities
	cubeEfficiency = 0.68
)

type Evaluator struct{}

func New() *Evaluator {
	return &Evaluator{}
}

var _ evaluator.Evaluator = (*Evaluator)(nil)

func gammonChance(loser [board.NumPoints]int) float64 {
	n := 0
	for _, c := range loser {
		n += c
	}
	if n < board.NumCheckers {
		return 0
	}
	pips := 0
	for i, c := range loser {
		pips += c * (i + 1)
	}
	return min(0.45, float64(pips)/400.0)
}

func backgammonChance(loser [board.NumPoints]int) float64 {
	// checkers on the bar or in the winner's home board
	n := 0
	for i := 18; i < board.NumPoints; i++ {
		n += loser[i]
	}
	if n == 0 {
		return 0
	}
	return 0.1
}

// static evaluates b with no lookahead.
func static(b board.Board) equity.Outputs {
	var o equity.Outputs
	switch {
	case b.Checkers(1) == 0:
		o[equity.OutputWin] = 1
		if b.Checkers(0) == board.NumCheckers {
			o[equity.OutputWinGammon] = 1
			if backgammonChance(b[0]) > 0 {
				o[equity.OutputWinBackgammon] = 1
			}
		}
		return o
	case b.Checkers(0) == 0:
		if b.Checkers(1) == board.NumCheckers {
			o[equity.OutputLoseGammon] = 1
			if backgammonChance(b[1]) > 0 {
				o[equity.OutputLoseBackgammon] = 1
			}
		}
		return o
	}
	pips := b.PipCount()
	me, opp := float64(pips[1]), float64(pips[0])
	sigma := math.Sqrt(me+opp)*0.9 + 1
	p := distuv.UnitNormal.CDF((opp - me + rollAdvantage) / sigma)
	p = min(max(p, 0.001), 0.999)

	o[equity.OutputWin] = p
	o[equity.OutputWinGammon] = p * gammonChance(b[0])
	o[equity.OutputWinBackgammon] = o[equity.OutputWinGammon] * backgammonChance(b[0])
	o[equity.OutputLoseGammon] = (1 - p) * gammonChance(b[1])
	o[equity.OutputLoseBackgammon] = o[equity.OutputLoseGammon] * backgammonChance(b[1])
	return o
}

func noise(b board.Board, ec evaluator.EvalContext) float64 {
	if ec.Noise <= 0 {
		return 0
	}
	var r float64
	if ec.Deterministic {
		key := board.PositionKey(b)
		buf := make([]byte, 0, 28)
		for _, w := range key {
			buf = binary.LittleEndian.AppendUint32(buf, w)
		}
		seed := make([]byte, 32)
		binary.LittleEndian.PutUint64(seed, xxhash.Sum64(buf))
		r = frand.NewCustom(seed, 32, 12).Float64()
	} else {
		r = frand.Float64()
	}
	return (2*r - 1) * ec.Noise
}

func (e *Evaluator) evaluate(ctx context.Context, b board.Board, ci equity.CubeInfo, ec evaluator.EvalContext, plies int) (equity.Outputs, error) {
	if err := ctx.Err(); err != nil {
		return equity.Outputs{}, err
	}
	if plies <= 0 || b.Checkers(0) == 0 || b.Checkers(1) == 0 {
		o := static(b)
		if n := noise(b, ec); n != 0 {
			o[equity.OutputWin] = min(max(o[equity.OutputWin]+n, 0), 1)
		}
		return o, nil
	}
	// average over the 21 rolls of the best reply, one ply shallower
	var sum equity.Outputs
	for i := 1; i <= 6; i++ {
		for j := 1; j <= i; j++ {
			nb, err := e.bestMove(ctx, b, i, j, ci)
			if err != nil {
				return equity.Outputs{}, err
			}
			nb.SwapSides()
			o, err := e.evaluate(ctx, nb, ci.Flip(), ec, plies-1)
			if err != nil {
				return equity.Outputs{}, err
			}
			o = o.Invert()
			w := 2.0
			if i == j {
				w = 1.0
			}
			for k := range sum {
				sum[k] += w * o[k]
			}
		}
	}
	for k := range sum {
		sum[k] /= 36.0
	}
	return sum, nil
}

func (e *Evaluator) EvaluatePosition(ctx context.Context, b board.Board, ci equity.CubeInfo, ec evaluator.EvalContext) (equity.Outputs, error) {
	return e.evaluate(ctx, b, ci, ec, ec.Plies)
}

type scored struct {
	gm      board.GeneratedMove
	outputs equity.Outputs
	score   float64
}

// rank scores every legal move at 0 ply from the mover's point of view.
func (e *Evaluator) rank(ctx context.Context, b board.Board, d0, d1 int, ci equity.CubeInfo, ec evaluator.EvalContext) ([]scored, error) {
	moves := board.GenerateMoves(b, d0, d1)
	out := make([]scored, 0, len(moves))
	for _, gm := range moves {
		nb := gm.Board
		nb.SwapSides()
		o, err := e.evaluate(ctx, nb, ci.Flip(), ec, ec.Plies)
		if err != nil {
			return nil, err
		}
		o = o.Invert()
		out = append(out, scored{gm: gm, outputs: o, score: ci.Utility(o)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score > out[j].score
	})
	return out, nil
}

func (e *Evaluator) bestMove(ctx context.Context, b board.Board, d0, d1 int, ci equity.CubeInfo) (board.Board, error) {
	ranked, err := e.rank(ctx, b, d0, d1, ci, evaluator.EvalContext{})
	if err != nil {
		return b, err
	}
	return ranked[0].gm.Board, nil
}

func (e *Evaluator) FindBestMove(ctx context.Context, b board.Board, d0, d1 int, ci equity.CubeInfo) (board.Board, error) {
	return e.bestMove(ctx, b, d0, d1, ci)
}

func (e *Evaluator) FindnSaveBestMoves(ctx context.Context, b board.Board, d0, d1 int, ci equity.CubeInfo, ec evaluator.EvalContext) ([]evaluator.Move, error) {
	ranked, err := e.rank(ctx, b, d0, d1, ci, ec)
	if err != nil {
		return nil, err
	}
	setup := evaluator.EvalSetup{Type: evaluator.EvalEval, Eval: ec}
	moves := make([]evaluator.Move, len(ranked))
	for i, r := range ranked {
		moves[i] = evaluator.Move{
			Move:    r.gm.Move,
			Key:     r.gm.Key,
			Outputs: r.outputs,
			Score:   r.score,
			Setup:   setup,
		}
	}
	return moves, nil
}

// liveEquity is the gammonless equity with a perfectly efficient cube.
// owner is relative to the side on roll: -1 centred, 0 opponent, 1 us.
func liveEquity(p float64, owner int) float64 {
	var e float64
	switch owner {
	case 1:
		e = 2.5*p - 1
	case 0:
		e = 2.5*p - 1.5
	default:
		e = (p - 0.5) / 0.3
	}
	return min(max(e, -1), 1)
}

func (e *Evaluator) GeneralCubeDecision(ctx context.Context, b board.Board, ci equity.CubeInfo, es evaluator.EvalSetup) (evaluator.CubeEvaluation, error) {
	o, err := e.evaluate(ctx, b, ci, es.Eval, es.Eval.Plies)
	if err != nil {
		return evaluator.CubeEvaluation{}, err
	}
	p := o[equity.OutputWin]
	dead := ci.Utility(o)
	owner := -1
	switch ci.CubeOwner {
	case ci.Move:
		owner = 1
	case 1 - ci.Move:
		owner = 0
	}
	nd := dead
	dt := 2 * dead
	if es.Eval.Cubeful {
		nd = cubeEfficiency*liveEquity(p, owner) + (1-cubeEfficiency)*dead
		dt = 2 * (cubeEfficiency*liveEquity(p, 0) + (1-cubeEfficiency)*dead)
	}
	return evaluator.CubeEvaluation{
		Outputs:    o,
		NoDouble:   nd,
		DoubleTake: dt,
	}, nil
}

func (e *Evaluator) Resignation(ctx context.Context, b board.Board, ci equity.CubeInfo, es evaluator.EvalSetup) (equity.Outputs, error) {
	return e.evaluate(ctx, b, ci, es.Eval, es.Eval.Plies)
}
