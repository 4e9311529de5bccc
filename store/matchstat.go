package store

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/bgstats/game"
	"github.com/domino14/bgstats/gameanalysis"
)

// calcRate is a/b, or 0 when there is nothing to divide by.
func calcRate(a float64, b int) float64 {
	if b == 0 {
		return 0
	}
	return a / float64(b)
}

type statColumn struct {
	name    string
	sqlType string
	value   func(sc *game.StatContext, p int) any
}

func intCol(name string, f func(sc *game.StatContext, p int) int) statColumn {
	return statColumn{name, "INTEGER", func(sc *game.StatContext, p int) any { return f(sc, p) }}
}

func realCol(name string, f func(sc *game.StatContext, p int) float64) statColumn {
	return statColumn{name, "REAL", func(sc *game.StatContext, p int) any { return f(sc, p) }}
}

func textCol(name string, f func(sc *game.StatContext, p int) string) statColumn {
	return statColumn{name, "TEXT", func(sc *game.StatContext, p int) any { return f(sc, p) }}
}

func moves(st game.SkillType) func(*game.StatContext, int) int {
	return func(sc *game.StatContext, p int) int { return sc.Moves[p][st] }
}

func rolls(lt game.LuckType) func(*game.StatContext, int) int {
	return func(sc *game.StatContext, p int) int { return sc.LuckCounts[p][lt] }
}

func overallErrors(sc *game.StatContext, p, unit int) float64 {
	return lo.Sum([]float64{sc.ErrorCheckerplay[p][unit], sc.CubeErrors(p, unit)})
}

func overallDecisions(sc *game.StatContext, p int) int {
	return sc.UnforcedMoves[p] + sc.TotalCube[p]
}

// statColumns are the per-player columns of a matchstat row. Totals and
// rates come in pairs: normalised equity, then money or match winning
// chance.
var statColumns = []statColumn{
	intCol("total_moves", func(sc *game.StatContext, p int) int { return sc.TotalMoves[p] }),
	intCol("unforced_moves", func(sc *game.StatContext, p int) int { return sc.UnforcedMoves[p] }),
	intCol("unmarked_moves", moves(game.SkillNone)),
	intCol("good_moves", moves(game.SkillGood)),
	intCol("doubtful_moves", moves(game.SkillDoubtful)),
	intCol("bad_moves", moves(game.SkillBad)),
	intCol("verybad_moves", moves(game.SkillVeryBad)),
	realCol("chequer_error_total_normalised", func(sc *game.StatContext, p int) float64 {
		return sc.ErrorCheckerplay[p][0]
	}),
	realCol("chequer_error_total", func(sc *game.StatContext, p int) float64 {
		return sc.ErrorCheckerplay[p][1]
	}),
	realCol("chequer_error_per_move_normalised", func(sc *game.StatContext, p int) float64 {
		return calcRate(sc.ErrorCheckerplay[p][0], sc.UnforcedMoves[p])
	}),
	realCol("chequer_error_per_move", func(sc *game.StatContext, p int) float64 {
		return calcRate(sc.ErrorCheckerplay[p][1], sc.UnforcedMoves[p])
	}),
	textCol("chequer_rating", func(sc *game.StatContext, p int) string {
		return gameanalysis.GetRating(calcRate(sc.ErrorCheckerplay[p][0], sc.UnforcedMoves[p])).String()
	}),

	intCol("verylucky_rolls", rolls(game.LuckVeryGood)),
	intCol("lucky_rolls", rolls(game.LuckGood)),
	intCol("unmarked_rolls", rolls(game.LuckNone)),
	intCol("unlucky_rolls", rolls(game.LuckBad)),
	intCol("veryunlucky_rolls", rolls(game.LuckVeryBad)),
	realCol("luck_total_normalised", func(sc *game.StatContext, p int) float64 { return sc.Luck[p][0] }),
	realCol("luck_total", func(sc *game.StatContext, p int) float64 { return sc.Luck[p][1] }),
	realCol("luck_per_move_normalised", func(sc *game.StatContext, p int) float64 {
		return calcRate(sc.Luck[p][0], sc.TotalMoves[p])
	}),
	realCol("luck_per_move", func(sc *game.StatContext, p int) float64 {
		return calcRate(sc.Luck[p][1], sc.TotalMoves[p])
	}),
	textCol("luck_rating", func(sc *game.StatContext, p int) string {
		return gameanalysis.GetLuckRating(calcRate(sc.Luck[p][0], sc.TotalMoves[p])).String()
	}),

	intCol("total_cube_decisions", func(sc *game.StatContext, p int) int { return sc.TotalCube[p] }),
	intCol("doubles", func(sc *game.StatContext, p int) int { return sc.Doubles[p] }),
	intCol("takes", func(sc *game.StatContext, p int) int { return sc.Takes[p] }),
	intCol("drops", func(sc *game.StatContext, p int) int { return sc.Passes[p] }),
	intCol("missed_double_dp", func(sc *game.StatContext, p int) int { return sc.MissedDoubleDP[p] }),
	intCol("missed_double_tg", func(sc *game.StatContext, p int) int { return sc.MissedDoubleTG[p] }),
	intCol("wrong_double_dp", func(sc *game.StatContext, p int) int { return sc.WrongDoubleDP[p] }),
	intCol("wrong_double_tg", func(sc *game.StatContext, p int) int { return sc.WrongDoubleTG[p] }),
	intCol("wrong_take", func(sc *game.StatContext, p int) int { return sc.WrongTake[p] }),
	intCol("wrong_drop", func(sc *game.StatContext, p int) int { return sc.WrongPass[p] }),
	realCol("cube_error_total_normalised", func(sc *game.StatContext, p int) float64 { return sc.CubeErrors(p, 0) }),
	realCol("cube_error_total", func(sc *game.StatContext, p int) float64 { return sc.CubeErrors(p, 1) }),
	realCol("cube_error_per_move_normalised", func(sc *game.StatContext, p int) float64 {
		return calcRate(sc.CubeErrors(p, 0), sc.TotalCube[p])
	}),
	realCol("cube_error_per_move", func(sc *game.StatContext, p int) float64 {
		return calcRate(sc.CubeErrors(p, 1), sc.TotalCube[p])
	}),
	textCol("cube_rating", func(sc *game.StatContext, p int) string {
		return gameanalysis.GetRating(calcRate(sc.CubeErrors(p, 0), sc.TotalCube[p])).String()
	}),

	realCol("overall_error_total_normalised", func(sc *game.StatContext, p int) float64 {
		return overallErrors(sc, p, 0)
	}),
	realCol("overall_error_total", func(sc *game.StatContext, p int) float64 {
		return overallErrors(sc, p, 1)
	}),
	realCol("overall_error_per_move_normalised", func(sc *game.StatContext, p int) float64 {
		return calcRate(overallErrors(sc, p, 0), overallDecisions(sc, p))
	}),
	realCol("overall_error_per_move", func(sc *game.StatContext, p int) float64 {
		return calcRate(overallErrors(sc, p, 1), overallDecisions(sc, p))
	}),
	textCol("overall_rating", func(sc *game.StatContext, p int) string {
		return gameanalysis.GetRating(calcRate(overallErrors(sc, p, 0), overallDecisions(sc, p))).String()
	}),
}

var statColumnNames = lo.Map(statColumns, func(c statColumn, _ int) string { return c.name })

var statColumnsDDL = strings.Join(lo.Map(statColumns, func(c statColumn, _ int) string {
	return fmt.Sprintf("\t%s %s NOT NULL,\n", c.name, c.sqlType)
}), "")

// statValues returns player p's matchstat values in column order.
func statValues(sc *game.StatContext, p int) []any {
	return lo.Map(statColumns, func(c statColumn, _ int) any { return c.value(sc, p) })
}
