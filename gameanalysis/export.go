package gameanalysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/equity"
	"github.com/domino14/bgstats/game"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf(one, n)
	}
	return fmt.Sprintf(many, n)
}

func writePrologue(sb *strings.Builder, m *game.Match, gi *game.GameInfo) {
	sb.WriteString(fmt.Sprintf(plural(gi.Game,
		"The score (after %d game) is: ", "The score (after %d games) is: ")+"%s %d, %s %d",
		m.Players[0], gi.Score[0], m.Players[1], gi.Score[1]))
	if gi.MatchTo > 0 {
		sb.WriteString(plural(gi.MatchTo, " (match to %d point)", " (match to %d points)"))
		postCrawford := !gi.Crawford &&
			(gi.Score[0] == gi.MatchTo-1 || gi.Score[1] == gi.MatchTo-1)
		if gi.Crawford {
			sb.WriteString(", Crawford game")
		}
		if postCrawford {
			sb.WriteString(", post-Crawford play")
		}
	}
	sb.WriteString("\n\n")
}

// equityOrMWC formats an equity difference for alerts.
func equityOrMWC(ci equity.CubeInfo, a, b float64, mwc bool) string {
	if ci.MatchTo == 0 || !mwc {
		return fmt.Sprintf("(%+7.3f)", a-b)
	}
	return fmt.Sprintf("(%+6.3f%%)", 100*ci.Eq2MWC(a)-100*ci.Eq2MWC(b))
}

func writeCubeAnalysis(sb *strings.Builder, ca game.CubeAnalysis, ci equity.CubeInfo) {
	if !ca.Present() {
		return
	}
	cd := ca.Decision
	_, action := equity.FindCubeDecision(ca.Eval.NoDouble, ca.Eval.DoubleTake, ci)
	sb.WriteString(fmt.Sprintf("Cube analysis\n%s\n", ca.Setup))
	opt := cd[equity.OutputOptimal]
	for i, row := range []struct {
		name string
		eq   float64
	}{
		{"No double", cd[equity.OutputNoDouble]},
		{"Double, take", cd[equity.OutputTake]},
		{"Double, pass", cd[equity.OutputDrop]},
	} {
		sb.WriteString(fmt.Sprintf("%d. %-16s %+7.3f", i+1, row.name, row.eq))
		if row.eq != opt {
			sb.WriteString(fmt.Sprintf(" (%+7.3f)", row.eq-opt))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Proper cube action: %s\n\n", action))
}

func writeMoveAnalysis(sb *strings.Builder, d *game.NormalMove, ms *game.MatchState,
	ci equity.CubeInfo, mwc bool) {

	if d.Skill.Bad() && d.MoveIndex >= 0 && d.MoveIndex < len(d.Moves) {
		sb.WriteString(fmt.Sprintf("Alert: %s move %s\n", d.Skill,
			equityOrMWC(ci, d.Moves[d.MoveIndex].Score, d.Moves[0].Score, mwc)))
	}
	if d.HasLuck && d.LuckType != game.LuckNone {
		sb.WriteString(fmt.Sprintf("Alert: %s roll! %s\n", d.LuckType,
			equityOrMWC(ci, d.Luck, 0, mwc)))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Rolled %d%d", d.Dice[0], d.Dice[1]))
	if d.HasLuck {
		sb.WriteString(fmt.Sprintf(" (%+.3f):\n", d.Luck))
	} else {
		sb.WriteString(":\n")
	}
	if len(d.Moves) == 0 {
		sb.WriteString("*    " + board.FormatMove(ms.Board, d.Move) + "\n")
	}
	for i, m := range d.Moves {
		mark := " "
		if i == d.MoveIndex {
			mark = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %3d. %-28s Eq.: %+6.3f", mark, i+1,
			board.FormatMove(ms.Board, m.Move), m.Score))
		if i > 0 {
			sb.WriteString(fmt.Sprintf(" (%+6.3f)", m.Score-d.Moves[0].Score))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n\n")
}

func writeStats(sb *strings.Builder, title string, sc *game.StatContext, m *game.Match) {
	sb.WriteString(title + "\n\n")
	sb.WriteString(NewReport("", sc, m.Players, m.MatchTo).RenderText())
	sb.WriteString("\n\n")
}

// exportGame writes game i of m to sb and returns its statistics.
func exportGame(sb *strings.Builder, m *game.Match, i int, ac *AnalysisConfig) (*game.StatContext, error) {
	g := m.Games[i]
	gi, err := g.Info()
	if err != nil {
		return nil, err
	}
	writePrologue(sb, m, gi)

	ms := game.NewMatchState(ac.Table)
	moveNo := 0
	for _, d := range g.Decisions {
		switch d := d.(type) {
		case *game.NormalMove:
			ms.SetPerspective(d.Player)
			ci, err := ms.CubeInfo()
			if err != nil {
				return nil, err
			}
			moveNo++
			sb.WriteString(fmt.Sprintf("Move number %d: %s to play %d%d\n\n",
				moveNo, m.Players[d.Player], d.Dice[0], d.Dice[1]))
			sb.WriteString(ms.Board.String())
			sb.WriteString("\n")
			if d.Move.Len() > 0 {
				sb.WriteString(fmt.Sprintf("* %s moves %s\n", m.Players[d.Player],
					board.FormatMove(ms.Board, d.Move)))
			} else {
				sb.WriteString(fmt.Sprintf("* %s cannot move\n", m.Players[d.Player]))
			}
			writeCubeAnalysis(sb, d.Cube, ci)
			writeMoveAnalysis(sb, d, ms, ci, ac.OutputMWC)

		case *game.Double:
			ms.SetPerspective(d.Player)
			ci, err := ms.CubeInfo()
			if err != nil {
				return nil, err
			}
			sb.WriteString(fmt.Sprintf("* %s doubles\n\n", m.Players[d.Player]))
			writeCubeAnalysis(sb, d.Cube, ci)

		case *game.Take, *game.Drop:
			ci, err := ms.CubeInfo()
			if err != nil {
				return nil, err
			}
			moveNo++
			sb.WriteString(fmt.Sprintf("Move number %d: %s doubles to %d\n\n",
				moveNo, m.Players[ms.Move], ms.Cube*2))
			verb, ca := "rejects", game.CubeAnalysis{}
			if t, ok := d.(*game.Take); ok {
				verb, ca = "accepts", t.Cube
			} else {
				ca = d.(*game.Drop).Cube
			}
			sb.WriteString(fmt.Sprintf("* %s %s\n\n", m.Players[game.Player(d)], verb))
			writeCubeAnalysis(sb, ca, ci)
		}
		if err := ms.Apply(d); err != nil {
			return nil, err
		}
	}

	if gi.Winner != -1 {
		sb.WriteString(plural(gi.Points, m.Players[gi.Winner]+" wins %d point\n\n",
			m.Players[gi.Winner]+" wins %d points\n\n"))
	}
	writeStats(sb, fmt.Sprintf("Game statistics for game %d", gi.Game+1), &gi.Stats, m)
	return &gi.Stats, nil
}

// ExportGameText writes game i of m, with its analysis and statistics,
// as plain text.
func ExportGameText(w io.Writer, m *game.Match, i int, ac *AnalysisConfig) error {
	if i < 0 || i >= len(m.Games) {
		return ErrNoGame
	}
	var sb strings.Builder
	if _, err := exportGame(&sb, m, i, ac); err != nil {
		return err
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// ExportMatchText writes every game of m followed by the statistics for
// the whole match or session.
func ExportMatchText(w io.Writer, m *game.Match, ac *AnalysisConfig) error {
	if len(m.Games) == 0 {
		return ErrNoMatch
	}
	var sb strings.Builder
	var total game.StatContext
	for i := range m.Games {
		sc, err := exportGame(&sb, m, i, ac)
		if err != nil {
			return err
		}
		total.Add(sc)
	}
	if m.Money() {
		writeStats(&sb, "Session statistics", &total, m)
	} else {
		writeStats(&sb, "Match statistics", &total, m)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
