package gameanalysis

import (
	"github.com/domino14/bgstats/equity"
	"github.com/domino14/bgstats/game"
)

// A missed or wrong double with a no-double equity at least this high is
// counted as being around the too-good point rather than the double point.
const tooGoodCutoff = 0.95

// cost converts an equity difference to the second statistics unit:
// match winning chance in match play, cube-scaled equity in money play.
func cost(ms *game.MatchState, ci equity.CubeInfo, v float64) float64 {
	if ms.MatchTo > 0 {
		return ci.Eq2MWC(v) - ci.Eq2MWC(0)
	}
	return float64(ms.Cube) * v
}

func addError(count *[2]int, sum *[2][2]float64, player int, skill, cost float64) {
	count[player]++
	sum[player][0] -= skill
	sum[player][1] -= cost
}

// updateStatContext counts an analysed decision in sc. ms is the state
// before the decision is played and ci its cube info.
func updateStatContext(sc *game.StatContext, d game.Decision, ms *game.MatchState,
	ci equity.CubeInfo, ac *AnalysisConfig) {

	switch d := d.(type) {
	case *game.NormalMove:
		p := d.Player

		if ac.AnalyseCube && d.Cube.Present() {
			sc.TotalCube[p]++
			cd := d.Cube.Decision
			if cd[equity.OutputNoDouble] < cd[equity.OutputOptimal] {
				skill := cd[equity.OutputNoDouble] - cd[equity.OutputOptimal]
				c := cost(ms, ci, skill)
				if cd[equity.OutputNoDouble] >= tooGoodCutoff {
					addError(&sc.MissedDoubleTG, &sc.ErrorMissedDoubleTG, p, skill, c)
				} else {
					addError(&sc.MissedDoubleDP, &sc.ErrorMissedDoubleDP, p, skill, c)
				}
			}
		}

		if ac.AnalyseLuck && d.HasLuck {
			sc.Luck[p][0] += d.Luck
			sc.Luck[p][1] += cost(ms, ci, d.Luck)
			sc.LuckCounts[p][d.LuckType]++
		}

		if ac.AnalyseMoves {
			chequer := 0.0
			if d.MoveIndex >= 0 && d.MoveIndex < len(d.Moves) {
				chequer = d.Moves[d.MoveIndex].Score - d.Moves[0].Score
			}
			sc.TotalMoves[p]++
			sc.Moves[p][ac.Skill.Skill(chequer)]++
			if len(d.Moves) > 1 {
				sc.UnforcedMoves[p]++
				sc.ErrorCheckerplay[p][0] -= chequer
				sc.ErrorCheckerplay[p][1] -= cost(ms, ci, chequer)
			}
		}

	case *game.Double:
		if !ac.AnalyseCube || !d.Cube.Present() {
			return
		}
		p := d.Player
		cd := d.Cube.Decision
		skill := cd[equity.OutputDrop] - cd[equity.OutputOptimal]
		if cd[equity.OutputTake] < cd[equity.OutputDrop] {
			skill = cd[equity.OutputTake] - cd[equity.OutputOptimal]
		}
		sc.TotalCube[p]++
		sc.Doubles[p]++
		if skill < 0 {
			c := cost(ms, ci, skill)
			if cd[equity.OutputNoDouble] >= tooGoodCutoff {
				addError(&sc.WrongDoubleTG, &sc.ErrorWrongDoubleTG, p, skill, c)
			} else {
				addError(&sc.WrongDoubleDP, &sc.ErrorWrongDoubleDP, p, skill, c)
			}
		}

	case *game.Take:
		if !ac.AnalyseCube || !d.Cube.Present() {
			return
		}
		p := d.Player
		cd := d.Cube.Decision
		sc.TotalCube[p]++
		sc.Takes[p]++
		if -cd[equity.OutputTake] < -cd[equity.OutputDrop] {
			skill := -cd[equity.OutputTake] - -cd[equity.OutputDrop]
			addError(&sc.WrongTake, &sc.ErrorWrongTake, p, skill, cost(ms, ci, skill))
		}

	case *game.Drop:
		if !ac.AnalyseCube || !d.Cube.Present() {
			return
		}
		p := d.Player
		cd := d.Cube.Decision
		sc.TotalCube[p]++
		sc.Passes[p]++
		if -cd[equity.OutputDrop] < -cd[equity.OutputTake] {
			skill := -cd[equity.OutputDrop] - -cd[equity.OutputTake]
			addError(&sc.WrongPass, &sc.ErrorWrongPass, p, skill, cost(ms, ci, skill))
		}
	}
}
