package gameanalysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/equity"
	"github.com/domino14/bgstats/evaluator"
)

var ErrLuckUnavailable = errors.New("luck unavailable")

// Luck is always measured with a quick cubeless evaluation, whatever the
// analysis settings are.
var luckContext = evaluator.EvalContext{Deterministic: true}

// LuckAnalysis returns how much better the roll d0-d1 is for the side on
// roll in b than the average roll. On the first move of a game doubles
// cannot be thrown and are left out of the average. Any evaluator error
// is returned wrapped in ErrLuckUnavailable.
func LuckAnalysis(ctx context.Context, ev evaluator.Evaluator, b board.Board,
	d0, d1 int, ci equity.CubeInfo, firstMove bool) (float64, error) {

	if d0 < 1 || d0 > 6 || d1 < 1 || d1 > 6 {
		return 0, fmt.Errorf("%w: bad roll %d%d", ErrLuckUnavailable, d0, d1)
	}
	if firstMove && d0 == d1 {
		// a double can't be the opening roll, so this game must have been
		// set up by hand
		firstMove = false
	}
	n0, n1 := d0-1, d1-1
	if n1 > n0 {
		n0, n1 = n1, n0
	}

	var utilities [6][6]float64
	mean := 0.0
	oppCI := ci.Flip()
	for i := 0; i < 6; i++ {
		for j := 0; j <= i; j++ {
			if firstMove && i == j {
				continue
			}
			after, err := ev.FindBestMove(ctx, b, i+1, j+1, ci)
			if err != nil {
				return 0, fmt.Errorf("%w: %w", ErrLuckUnavailable, err)
			}
			after.SwapSides()
			out, err := ev.EvaluatePosition(ctx, after, oppCI, luckContext)
			if err != nil {
				return 0, fmt.Errorf("%w: %w", ErrLuckUnavailable, err)
			}
			u := ci.Utility(out.Invert())
			utilities[i][j] = u
			if i == j {
				mean += u
			} else {
				mean += 2 * u
			}
		}
	}
	if firstMove {
		mean /= 30
	} else {
		mean /= 36
	}
	return utilities[n0][n1] - mean, nil
}
