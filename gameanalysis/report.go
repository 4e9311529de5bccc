package gameanalysis

import (
	"fmt"
	"math"

	"github.com/domino14/bgstats/game"
)

// Row is one labelled line of a report with a value per player.
type Row struct {
	Label  string
	Values [2]string
}

// Section is a titled group of rows.
type Section struct {
	Title string
	Rows  []Row
}

// Report is a statistics summary ready to be rendered.
type Report struct {
	Title    string
	Players  [2]string
	Sections []Section
	Rates    [2]PlayerRates
}

// PlayerRates are the per-decision averages derived from a StatContext.
// A rate with no decisions to average over is NaN.
type PlayerRates struct {
	// Checker play errors per unforced move.
	CheckerErrorRate     float64
	CheckerErrorRateConv float64
	// Luck per move.
	LuckRate     float64
	LuckRateConv float64
	// Cube errors per cube decision.
	CubeErrorRate     float64
	CubeErrorRateConv float64
	// Checker and cube errors per unforced move or cube decision.
	OverallErrorRate     float64
	OverallErrorRateConv float64

	CheckerRating Rating
	CubeRating    Rating
	OverallRating Rating
}

func perDecision(sum float64, n int) float64 {
	// 0/0 is NaN, which renders as n/a
	return sum / float64(n)
}

// Rates computes the averages and ratings for player.
func Rates(sc *game.StatContext, player int) PlayerRates {
	var r PlayerRates
	p := player
	unforced, cube := sc.UnforcedMoves[p], sc.TotalCube[p]

	r.CheckerErrorRate = perDecision(sc.ErrorCheckerplay[p][0], unforced)
	r.CheckerErrorRateConv = perDecision(sc.ErrorCheckerplay[p][1], unforced)
	r.LuckRate = perDecision(sc.Luck[p][0], sc.TotalMoves[p])
	r.LuckRateConv = perDecision(sc.Luck[p][1], sc.TotalMoves[p])
	r.CubeErrorRate = perDecision(sc.CubeErrors(p, 0), cube)
	r.CubeErrorRateConv = perDecision(sc.CubeErrors(p, 1), cube)
	r.OverallErrorRate = perDecision(sc.CubeErrors(p, 0)+sc.ErrorCheckerplay[p][0], cube+unforced)
	r.OverallErrorRateConv = perDecision(sc.CubeErrors(p, 1)+sc.ErrorCheckerplay[p][1], cube+unforced)

	r.CheckerRating = GetRating(r.CheckerErrorRate)
	r.CubeRating = GetRating(r.CubeErrorRate)
	r.OverallRating = GetRating(r.OverallErrorRate)
	return r
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// formatEquity shows an equity and its converted form, as a percentage in
// match play.
func formatEquity(raw, conv float64, matchTo int) string {
	if !finite(raw, conv) {
		return "n/a"
	}
	if matchTo > 0 {
		return fmt.Sprintf("%+6.3f (%+7.3f%%)", raw, conv*100)
	}
	return fmt.Sprintf("%+6.3f (%+7.3f)", raw, conv)
}

func countRow(label string, v [2]int) Row {
	return Row{Label: label, Values: [2]string{fmt.Sprintf("%3d", v[0]), fmt.Sprintf("%3d", v[1])}}
}

func errorCountRow(label string, n [2]int, sum [2][2]float64, matchTo int) Row {
	var r Row
	r.Label = label
	for p := 0; p < 2; p++ {
		r.Values[p] = fmt.Sprintf("%3d (%s)", n[p], formatEquity(sum[p][0], sum[p][1], matchTo))
	}
	return r
}

func ratingRow(label string, r [2]Rating) Row {
	return Row{Label: label, Values: [2]string{r[0].String(), r[1].String()}}
}

// NewReport summarises sc. Only the categories that were analysed get a
// section.
func NewReport(title string, sc *game.StatContext, players [2]string, matchTo int) *Report {
	rep := &Report{Title: title, Players: players}
	for p := 0; p < 2; p++ {
		rep.Rates[p] = Rates(sc, p)
	}
	rates := rep.Rates

	if sc.MovesAnalysed {
		s := Section{Title: "Checkerplay statistics"}
		s.Rows = append(s.Rows,
			countRow("Total moves", sc.TotalMoves),
			countRow("Unforced moves", sc.UnforcedMoves))
		for _, st := range []game.SkillType{
			game.SkillVeryGood, game.SkillGood, game.SkillInteresting, game.SkillNone,
			game.SkillDoubtful, game.SkillBad, game.SkillVeryBad,
		} {
			label := "Moves marked " + st.String()
			if st == game.SkillNone {
				label = "Moves unmarked"
			}
			s.Rows = append(s.Rows, countRow(label, [2]int{sc.Moves[0][st], sc.Moves[1][st]}))
		}
		s.Rows = append(s.Rows,
			Row{Label: "Error rate (total)", Values: [2]string{
				formatEquity(sc.ErrorCheckerplay[0][0], sc.ErrorCheckerplay[0][1], matchTo),
				formatEquity(sc.ErrorCheckerplay[1][0], sc.ErrorCheckerplay[1][1], matchTo)}},
			Row{Label: "Error rate (pr. move)", Values: [2]string{
				formatEquity(rates[0].CheckerErrorRate, rates[0].CheckerErrorRateConv, matchTo),
				formatEquity(rates[1].CheckerErrorRate, rates[1].CheckerErrorRateConv, matchTo)}},
			ratingRow("Checker play rating", [2]Rating{rates[0].CheckerRating, rates[1].CheckerRating}))
		rep.Sections = append(rep.Sections, s)
	}

	if sc.LuckAnalysed {
		s := Section{Title: "Luck statistics"}
		for _, lt := range []game.LuckType{
			game.LuckVeryGood, game.LuckGood, game.LuckNone, game.LuckBad, game.LuckVeryBad,
		} {
			label := "Rolls marked " + lt.String()
			if lt == game.LuckNone {
				label = "Rolls unmarked"
			}
			s.Rows = append(s.Rows, countRow(label, [2]int{sc.LuckCounts[0][lt], sc.LuckCounts[1][lt]}))
		}
		s.Rows = append(s.Rows,
			Row{Label: "Luck rate (total)", Values: [2]string{
				formatEquity(sc.Luck[0][0], sc.Luck[0][1], matchTo),
				formatEquity(sc.Luck[1][0], sc.Luck[1][1], matchTo)}},
			Row{Label: "Luck rate (pr. move)", Values: [2]string{
				formatEquity(rates[0].LuckRate, rates[0].LuckRateConv, matchTo),
				formatEquity(rates[1].LuckRate, rates[1].LuckRateConv, matchTo)}})
		rep.Sections = append(rep.Sections, s)
	}

	if sc.CubeAnalysed {
		s := Section{Title: "Cube decisions statistics"}
		s.Rows = append(s.Rows,
			countRow("Total cube decisions", sc.TotalCube),
			countRow("Doubles", sc.Doubles),
			countRow("Takes", sc.Takes),
			countRow("Pass", sc.Passes),
			errorCountRow("Missed doubles around DP", sc.MissedDoubleDP, sc.ErrorMissedDoubleDP, matchTo),
			errorCountRow("Missed doubles around TG", sc.MissedDoubleTG, sc.ErrorMissedDoubleTG, matchTo),
			errorCountRow("Wrong doubles around DP", sc.WrongDoubleDP, sc.ErrorWrongDoubleDP, matchTo),
			errorCountRow("Wrong doubles around TG", sc.WrongDoubleTG, sc.ErrorWrongDoubleTG, matchTo),
			errorCountRow("Wrong takes", sc.WrongTake, sc.ErrorWrongTake, matchTo),
			errorCountRow("Wrong passes", sc.WrongPass, sc.ErrorWrongPass, matchTo),
			Row{Label: "Error rate (pr. decision)", Values: [2]string{
				formatEquity(rates[0].CubeErrorRate, rates[0].CubeErrorRateConv, matchTo),
				formatEquity(rates[1].CubeErrorRate, rates[1].CubeErrorRateConv, matchTo)}},
			ratingRow("Cube decision rating", [2]Rating{rates[0].CubeRating, rates[1].CubeRating}))
		rep.Sections = append(rep.Sections, s)
	}

	if sc.MovesAnalysed && sc.CubeAnalysed {
		rep.Sections = append(rep.Sections, Section{
			Title: "Overall",
			Rows: []Row{
				ratingRow("Overall rating", [2]Rating{rates[0].OverallRating, rates[1].OverallRating}),
			},
		})
	}
	return rep
}

// Find returns the row with the given label.
func (r *Report) Find(label string) (Row, bool) {
	for _, s := range r.Sections {
		for _, row := range s.Rows {
			if row.Label == label {
				return row, true
			}
		}
	}
	return Row{}, false
}
