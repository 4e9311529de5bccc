package shell

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/bgstats/config"
	"github.com/domino14/bgstats/gameanalysis"
	"github.com/domino14/bgstats/matchio"
	"github.com/domino14/bgstats/store"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return usage("standard")
	}
	return usageTopic(cmd.args[0])
}

func (sc *ShellController) alias(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 || cmd.args[0] == "list" {
		if len(sc.aliases) == 0 {
			return msg("No aliases defined"), nil
		}
		names := make([]string, 0, len(sc.aliases))
		for name := range sc.aliases {
			names = append(names, name)
		}
		sort.Strings(names)

		var result strings.Builder
		result.WriteString("Defined aliases:\n")
		for _, name := range names {
			result.WriteString(fmt.Sprintf("  %s = %s\n", name, sc.aliases[name]))
		}
		return msg(result.String()), nil
	}

	switch cmd.args[0] {
	case "set":
		if len(cmd.args) < 3 {
			return nil, errors.New("usage: alias set <name> <command>")
		}
		name := cmd.args[1]
		commandParts := cmd.args[2:]
		for opt, values := range cmd.options {
			for _, val := range values {
				commandParts = append(commandParts, "-"+opt, val)
			}
		}
		command := strings.Join(commandParts, " ")
		sc.aliases[name] = command
		return msg(fmt.Sprintf("Alias '%s' set to: %s", name, command)), nil

	case "delete", "remove", "rm":
		if len(cmd.args) < 2 {
			return nil, errors.New("usage: alias delete <name>")
		}
		name := cmd.args[1]
		if _, exists := sc.aliases[name]; !exists {
			return nil, fmt.Errorf("alias '%s' not found", name)
		}
		delete(sc.aliases, name)
		return msg(fmt.Sprintf("Alias '%s' deleted", name)), nil

	default:
		return nil, fmt.Errorf("unknown subcommand '%s'. Valid: set, delete, list", cmd.args[0])
	}
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <match-file>")
	}
	m, err := matchio.Load(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.match = m
	sc.filename = cmd.args[0]
	sc.curGame = 0
	log.Debug().Strs("players", m.Players[:]).Msg("loaded match")
	kind := fmt.Sprintf("%d-point match", m.MatchTo)
	if m.Money() {
		kind = "money session"
	}
	return msg(fmt.Sprintf("Loaded %s between %s and %s, %d game(s), %d decision(s)",
		kind, m.Players[0], m.Players[1], len(m.Games),
		gameanalysis.NumberMovesMatch(m))), nil
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	if sc.match == nil {
		return nil, errNoMatchLoaded
	}
	path := sc.filename
	if len(cmd.args) > 0 {
		path = cmd.args[0]
	}
	if path == "" {
		return nil, errors.New("usage: save <match-file>")
	}
	if err := matchio.Save(path, sc.match); err != nil {
		return nil, err
	}
	sc.filename = path
	return msg("saved to " + path), nil
}

func (sc *ShellController) selectGame(cmd *shellcmd) (*Response, error) {
	if sc.match == nil {
		return nil, errNoMatchLoaded
	}
	if len(cmd.args) != 1 {
		return msg(fmt.Sprintf("game %d of %d", sc.curGame+1, len(sc.match.Games))), nil
	}
	n, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if n < 1 || n > len(sc.match.Games) {
		return nil, fmt.Errorf("game must be between 1 and %d", len(sc.match.Games))
	}
	sc.curGame = n - 1
	return msg(fmt.Sprintf("game %d of %d", n, len(sc.match.Games))), nil
}

func (sc *ShellController) list(cmd *shellcmd) (*Response, error) {
	if sc.match == nil {
		return nil, errNoMatchLoaded
	}
	var sb strings.Builder
	for i, g := range sc.match.Games {
		gi, err := g.Info()
		if err != nil {
			return nil, err
		}
		marker := " "
		if i == sc.curGame {
			marker = "*"
		}
		result := "unfinished"
		if gi.Winner >= 0 {
			result = fmt.Sprintf("%s wins %d", sc.match.Players[gi.Winner], gi.Points)
		}
		fmt.Fprintf(&sb, "%s %3d  %2d-%-2d  %3d decisions  %s\n", marker, i+1,
			gi.Score[0], gi.Score[1], gameanalysis.NumberMovesGame(g), result)
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) analyse(cmd *shellcmd) (*Response, error) {
	if sc.match == nil {
		return nil, errNoMatchLoaded
	}
	what := "match"
	if len(cmd.args) > 0 {
		what = cmd.args[0]
	}
	ctx, done := sc.analysisContext()
	defer done()
	var err error
	switch what {
	case "match":
		err = sc.analyzer.AnalyzeMatch(ctx, sc.match)
	case "session":
		err = sc.analyzer.AnalyzeSession(ctx, sc.match)
	case "game":
		err = sc.analyzer.AnalyzeGame(ctx, sc.match.Games[sc.curGame])
		if err == nil {
			sc.recomputeMatchStats()
		}
	default:
		return nil, fmt.Errorf("cannot analyse %q; try game, match or session", what)
	}
	if err != nil {
		return nil, err
	}
	return msg(what + " analysed"), nil
}

// recomputeMatchStats sums the statistics of every game into the match.
func (sc *ShellController) recomputeMatchStats() {
	sc.match.Stats.Reset()
	for _, g := range sc.match.Games {
		if gi, err := g.Info(); err == nil {
			sc.match.Stats.Add(&gi.Stats)
		}
	}
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: show statistics [game|match|session]")
	}
	switch cmd.args[0] {
	case "statistics", "stats":
		what := "match"
		if sc.match != nil && sc.match.Money() {
			what = "session"
		}
		if len(cmd.args) > 1 {
			what = cmd.args[1]
		}
		return sc.showStatistics(what)
	}
	return nil, fmt.Errorf("cannot show %q", cmd.args[0])
}

func (sc *ShellController) showStatistics(what string) (*Response, error) {
	if sc.match == nil {
		return nil, errNoMatchLoaded
	}
	m := sc.match
	var r *gameanalysis.Report
	switch what {
	case "game":
		gi, err := sc.curGameInfo()
		if err != nil {
			return nil, err
		}
		r = gameanalysis.NewReport(fmt.Sprintf("Game statistics for game %d", sc.curGame+1),
			&gi.Stats, m.Players, m.MatchTo)
	case "match":
		if m.Money() {
			return nil, errors.New("this is a money session; use `show statistics session`")
		}
		r = gameanalysis.NewReport("Match statistics", &m.Stats, m.Players, m.MatchTo)
	case "session":
		r = gameanalysis.NewReport("Session statistics", &m.Stats, m.Players, m.MatchTo)
	default:
		return nil, fmt.Errorf("no statistics for %q; try game, match or session", what)
	}
	return msg(r.RenderText()), nil
}

func (sc *ShellController) export(cmd *shellcmd) (*Response, error) {
	if sc.match == nil {
		return nil, errNoMatchLoaded
	}
	if len(cmd.args) != 2 {
		return nil, errors.New("usage: export game|match <file>")
	}
	f, err := os.Create(cmd.args[1])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ac := sc.analyzer.Config()
	switch cmd.args[0] {
	case "game":
		err = gameanalysis.ExportGameText(f, sc.match, sc.curGame, ac)
	case "match", "session":
		err = gameanalysis.ExportMatchText(f, sc.match, ac)
	default:
		err = fmt.Errorf("cannot export %q", cmd.args[0])
	}
	if err != nil {
		return nil, err
	}
	return msg("exported to " + cmd.args[1]), nil
}

func (sc *ShellController) openDB() (*store.Store, error) {
	if sc.db != nil {
		return sc.db, nil
	}
	db, err := store.Open(sc.config.GetString(config.ConfigDBPath))
	if err != nil {
		return nil, err
	}
	sc.db = db
	return db, nil
}

func (sc *ShellController) dbCommand(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: db add|list|players|erase")
	}
	db, err := sc.openDB()
	if err != nil {
		return nil, err
	}
	switch cmd.args[0] {
	case "add":
		if sc.match == nil {
			return nil, errNoMatchLoaded
		}
		id, err := db.AddMatch(sc.ctx, sc.match, cmd.options.Bool("force"))
		if err != nil {
			return nil, err
		}
		return msg(fmt.Sprintf("added match %d", id)), nil

	case "list":
		if len(cmd.args) < 2 {
			return nil, errors.New("usage: db list <player>")
		}
		pd, err := db.ListDetails(sc.ctx, cmd.args[1])
		if err != nil {
			return nil, err
		}
		return msg(fmt.Sprintf("%s: %d matches, %d won, error rate %+.4f (%s)",
			pd.Name, pd.MatchesPlayed, pd.MatchesWon, -pd.AvgErrorRate, pd.Rating)), nil

	case "players":
		names, err := db.Players(sc.ctx)
		if err != nil {
			return nil, err
		}
		return msg(strings.Join(names, "\n")), nil

	case "erase":
		if len(cmd.args) < 2 {
			return nil, errors.New("usage: db erase <player>|all")
		}
		if cmd.args[1] == "all" {
			err = db.EraseAll(sc.ctx)
		} else {
			err = db.ErasePlayer(sc.ctx, cmd.args[1])
		}
		if err != nil {
			return nil, err
		}
		return msg("erased " + cmd.args[1]), nil
	}
	return nil, fmt.Errorf("unknown db command %q", cmd.args[0])
}

func (sc *ShellController) setConfig(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) < 2 {
		return nil, errors.New("usage: setconfig <key> <value>")
	}
	key, value := cmd.args[0], cmd.args[1]
	sc.config.Set(key, value)
	if err := sc.rebuildAnalyzer(); err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("set %s to %s", key, value)), nil
}
