package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/bgstats/config"
	"github.com/domino14/bgstats/evaluator"
	"github.com/domino14/bgstats/evaluator/pipcount"
	"github.com/domino14/bgstats/game"
	"github.com/domino14/bgstats/gameanalysis"
	"github.com/domino14/bgstats/store"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoMatchLoaded     = errors.New("please load a match first with the `load` command")
	errQuit              = errors.New("sending quit signal")
)

type ShellController struct {
	l        *readline.Instance
	config   *config.Config
	execPath string

	ev       evaluator.Evaluator
	analyzer *gameanalysis.Analyzer
	db       *store.Store

	ctx    context.Context
	cancel context.CancelFunc

	// stopAnalysis cancels the analysis in progress, if any.
	mu           sync.Mutex
	stopAnalysis context.CancelFunc

	match    *game.Match
	filename string
	curGame  int

	aliases map[string]string
	out     io.Writer
}

type shellcmd struct {
	cmd     string
	args    []string
	options CmdOptions
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// newController builds everything but the line reader.
func newController(cfg *config.Config, execPath string) (*ShellController, error) {
	ev, err := pipcount.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	sc := &ShellController{
		config:   cfg,
		execPath: execPath,
		ev:       ev,
		aliases:  map[string]string{},
		out:      os.Stdout,
	}
	sc.ctx, sc.cancel = context.WithCancel(context.Background())
	if err := sc.rebuildAnalyzer(); err != nil {
		return nil, err
	}
	return sc, nil
}

func NewShellController(cfg *config.Config, execPath, gitVersion string) *ShellController {
	sc, err := newController(cfg, execPath)
	if err != nil {
		panic(err)
	}
	prompt := "bgstats>"
	if gitVersion != "" {
		prompt = "bgstats " + gitVersion + ">"
	}
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31m" + prompt + "\033[0m ",
		HistoryFile:     "/tmp/bgstats-readline.tmp",
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	sc.out = l.Stderr()
	return sc
}

// rebuildAnalyzer reads the analysis settings from the config again.
func (sc *ShellController) rebuildAnalyzer() error {
	ac, err := gameanalysis.AnalysisConfigFromConfig(sc.config)
	if err != nil {
		return err
	}
	sc.analyzer = gameanalysis.New(sc.config, ac, sc.ev)
	sc.analyzer.OnProgress(func(done, total int) {
		if total > 0 && (done%50 == 0 || done == total) {
			log.Info().Int("done", done).Int("total", total).Msg("analysis-progress")
		}
	})
	return nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) curGameInfo() (*game.GameInfo, error) {
	if sc.match == nil {
		return nil, errNoMatchLoaded
	}
	if sc.curGame < 0 || sc.curGame >= len(sc.match.Games) {
		return nil, gameanalysis.ErrNoGame
	}
	return sc.match.Games[sc.curGame].Info()
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := CmdOptions{}
	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			key := fields[idx][1:]
			options[key] = append(options[key], fields[idx+1])
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// expandAlias replaces an aliased command with what it stands for.
func (sc *ShellController) expandAlias(cmd *shellcmd) (*shellcmd, error) {
	expansion, ok := sc.aliases[cmd.cmd]
	if !ok {
		return cmd, nil
	}
	expanded, err := extractFields(expansion)
	if err != nil {
		return nil, err
	}
	expanded.args = append(expanded.args, cmd.args...)
	for k, v := range cmd.options {
		expanded.options[k] = append(expanded.options[k], v...)
	}
	return expanded, nil
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	cmd, err = sc.expandAlias(cmd)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "bye":
		if sig != nil {
			sig <- syscall.SIGINT
		}
		return nil, errQuit
	case "help":
		return sc.help(cmd)
	case "alias":
		return sc.alias(cmd)
	case "load":
		return sc.load(cmd)
	case "save":
		return sc.save(cmd)
	case "game":
		return sc.selectGame(cmd)
	case "list":
		return sc.list(cmd)
	case "analyse", "analyze":
		return sc.analyse(cmd)
	case "show":
		return sc.show(cmd)
	case "export":
		return sc.export(cmd)
	case "db":
		return sc.dbCommand(cmd)
	case "setconfig":
		return sc.setConfig(cmd)
	default:
		log.Debug().Msgf("you said: %v", line)
		return nil, fmt.Errorf("unrecognized command %q; try `help`", cmd.cmd)
	}
}

// Execute runs a single command line.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line, sig)
	if err != nil {
		if !errors.Is(err, errNoData) && !errors.Is(err, errQuit) {
			sc.showError(err)
		}
		return
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "exit" || line == "bye" {
			sig <- syscall.SIGINT
			break
		}
		sc.Execute(sig, line)
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// analysisContext returns a context for one analysis run. Interrupt
// cancels it; done must be called when the run ends.
func (sc *ShellController) analysisContext() (ctx context.Context, done func()) {
	ctx, cancel := context.WithCancel(sc.ctx)
	sc.mu.Lock()
	sc.stopAnalysis = cancel
	sc.mu.Unlock()
	return ctx, func() {
		sc.mu.Lock()
		sc.stopAnalysis = nil
		sc.mu.Unlock()
		cancel()
	}
}

// Interrupt stops the analysis in progress. It returns false if nothing
// was being analysed.
func (sc *ShellController) Interrupt() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.stopAnalysis == nil {
		return false
	}
	sc.stopAnalysis()
	sc.stopAnalysis = nil
	log.Info().Msg("interrupting analysis")
	return true
}

// Cleanup stops any running analysis and closes the database.
func (sc *ShellController) Cleanup() {
	sc.cancel()
	if sc.db != nil {
		if err := sc.db.Close(); err != nil {
			log.Err(err).Msg("closing database")
		}
	}
}
