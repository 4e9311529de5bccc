// Package equity converts evaluator outputs into equities. It knows about
// the doubling cube, the match score and match winning chances, but
// nothing about how the outputs were produced.
package equity

import (
	"fmt"

	"github.com/domino14/bgstats/met"
)

// Indexes into Outputs.
const (
	OutputWin = iota
	OutputWinGammon
	OutputWinBackgammon
	OutputLoseGammon
	OutputLoseBackgammon
	NumOutputs
)

// Outputs are cubeless game probabilities from the point of view of the
// side on roll. Gammon entries include backgammons.
type Outputs [NumOutputs]float64

// Invert returns the outputs from the other side's point of view.
func (o Outputs) Invert() Outputs {
	return Outputs{
		OutputWin:            1.0 - o[OutputWin],
		OutputWinGammon:      o[OutputLoseGammon],
		OutputWinBackgammon:  o[OutputLoseBackgammon],
		OutputLoseGammon:     o[OutputWinGammon],
		OutputLoseBackgammon: o[OutputWinBackgammon],
	}
}

// CubeInfo is the doubling cube context for one side: cube value and
// owner, match length and score, and the gammon prices that follow.
// MatchTo of zero means money play.
type CubeInfo struct {
	Cube int
	// CubeOwner is -1 for a centred cube.
	CubeOwner int
	// Move is the player we are calculating equities for.
	Move     int
	MatchTo  int
	Score    [2]int
	Crawford bool
	Jacoby   bool
	// GammonPrice: [0] gammon price for player 0, [1] for player 1,
	// [2] and [3] the backgammon prices.
	GammonPrice [4]float64

	table *met.Table
}

// NewCubeInfo builds a cube context. For match play, table supplies the
// match equities; nil means the default table.
func NewCubeInfo(cube, owner, move, matchTo int, score [2]int, crawford, jacoby bool, table *met.Table) (CubeInfo, error) {
	if cube < 1 || owner < -1 || owner > 1 || move < 0 || move > 1 {
		return CubeInfo{}, fmt.Errorf("illegal cube info: cube %d owner %d move %d", cube, owner, move)
	}
	ci := CubeInfo{
		Cube:      cube,
		CubeOwner: owner,
		Move:      move,
		MatchTo:   matchTo,
		Score:     score,
		Crawford:  crawford,
	}
	if matchTo == 0 {
		ci.Jacoby = jacoby
		if jacoby && owner == -1 {
			// gammons don't count with a centred cube
			return ci, nil
		}
		ci.GammonPrice = [4]float64{1, 1, 1, 1}
		return ci, nil
	}
	if score[0] >= matchTo || score[1] >= matchTo {
		return CubeInfo{}, fmt.Errorf("illegal score %d-%d in a %d point match", score[0], score[1], matchTo)
	}
	if table == nil {
		table = met.Default()
	}
	ci.table = table
	ci.GammonPrice = table.GammonPrices(score[0], score[1], matchTo, cube)
	return ci, nil
}

// MustCubeInfo is NewCubeInfo for callers that know the arguments are legal.
func MustCubeInfo(cube, owner, move, matchTo int, score [2]int, crawford bool) CubeInfo {
	ci, err := NewCubeInfo(cube, owner, move, matchTo, score, crawford, false, nil)
	if err != nil {
		panic(err)
	}
	return ci
}

// Table returns the match equity table, or nil in money play.
func (ci CubeInfo) Table() *met.Table {
	return ci.table
}

// Flip returns the context for the other player.
func (ci CubeInfo) Flip() CubeInfo {
	ci.Move = 1 - ci.Move
	return ci
}

// PostCrawford reports whether this is a post-Crawford game.
func (ci CubeInfo) PostCrawford() bool {
	return ci.MatchTo > 0 && !ci.Crawford &&
		(ci.Score[0] == ci.MatchTo-1 || ci.Score[1] == ci.MatchTo-1)
}

// GetDPEq reports whether the player in ci may double, and the equity of a
// double/pass.
func (ci CubeInfo) GetDPEq() (bool, float64) {
	if ci.MatchTo == 0 {
		return ci.CubeOwner == -1 || ci.CubeOwner == ci.Move, 1.0
	}
	canDouble := !ci.Crawford &&
		ci.Score[ci.Move]+ci.Cube < ci.MatchTo &&
		!(ci.PostCrawford() && ci.Score[ci.Move] == ci.MatchTo-1) &&
		(ci.CubeOwner == -1 || ci.CubeOwner == ci.Move)
	dp := ci.table.GetME(ci.Score[0], ci.Score[1], ci.MatchTo, ci.Move, ci.Cube, ci.Move, ci.Crawford)
	return canDouble, dp
}

// Utility returns the cubeless equity of o using the current gammon
// prices.
func (ci CubeInfo) Utility(o Outputs) float64 {
	if ci.MatchTo == 0 {
		return o[OutputWin]*2.0 - 1.0 +
			(o[OutputWinGammon]-o[OutputLoseGammon])*ci.GammonPrice[0] +
			(o[OutputWinBackgammon]-o[OutputLoseBackgammon])*ci.GammonPrice[1]
	}
	me, opp := ci.Move, 1-ci.Move
	return o[OutputWin]*2.0 - 1.0 +
		o[OutputWinGammon]*ci.GammonPrice[me] -
		o[OutputLoseGammon]*ci.GammonPrice[opp] +
		o[OutputWinBackgammon]*ci.GammonPrice[2+me] -
		o[OutputLoseBackgammon]*ci.GammonPrice[2+opp]
}

func (ci CubeInfo) mwcWinLose() (float64, float64) {
	win := ci.table.GetME(ci.Score[0], ci.Score[1], ci.MatchTo, ci.Move, ci.Cube, ci.Move, ci.Crawford)
	lose := ci.table.GetME(ci.Score[0], ci.Score[1], ci.MatchTo, ci.Move, ci.Cube, 1-ci.Move, ci.Crawford)
	return win, lose
}

// Eq2MWC converts a normalised equity to match winning chance by linear
// interpolation between losing and winning a cube's worth of points.
// Only meaningful in match play.
func (ci CubeInfo) Eq2MWC(eq float64) float64 {
	win, lose := ci.mwcWinLose()
	return 0.5 * (eq*(win-lose) + (win + lose))
}

// MWC2Eq is the inverse of Eq2MWC.
func (ci CubeInfo) MWC2Eq(mwc float64) float64 {
	win, lose := ci.mwcWinLose()
	return (2.0*mwc - (win + lose)) / (win - lose)
}

// ResignEquities returns the resigner's normalised equity if play
// continues and after the resignation of points points (1 single,
// 2 gammon, 3 backgammon). ci.Move must be the resigner and o must be
// from the resigner's point of view.
func (ci CubeInfo) ResignEquities(o Outputs, points int) (before, after float64) {
	before = ci.Utility(o)
	if ci.MatchTo == 0 {
		return before, -float64(points)
	}
	mwc := ci.table.GetME(ci.Score[0], ci.Score[1], ci.MatchTo, ci.Move,
		points*ci.Cube, 1-ci.Move, ci.Crawford)
	return before, ci.MWC2Eq(mwc)
}
