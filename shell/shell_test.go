package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/bgstats/config"
)

const testMatch = `
players: [Alice, Bob]
match-to: 3
games:
  - decisions:
      - kind: game-info
        game-info: {winner: -1}
      - kind: move
        play: 8/5 6/5
        move: {player: 0, dice: [3, 1]}
      - kind: move
        play: 24/18 13/9
        move: {player: 1, dice: [6, 4]}
`

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"export match /path/to/out.txt",
			&shellcmd{"export", []string{"match", "/path/to/out.txt"}, CmdOptions{}},
			nil},
		{"db add -force true",
			&shellcmd{"db", []string{"add"}, CmdOptions{"force": {"true"}}},
			nil},
		{`load "my matches/club.yaml"`,
			&shellcmd{"load", []string{"my matches/club.yaml"}, CmdOptions{}},
			nil},
		{"db add -force",
			nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func testController(t *testing.T) (*ShellController, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigDBPath, filepath.Join(dir, "test.db"))
	sc, err := newController(cfg, dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sc.Cleanup)
	out := &bytes.Buffer{}
	sc.out = out

	if err := os.WriteFile(filepath.Join(dir, "match.yaml"), []byte(testMatch), 0644); err != nil {
		t.Fatal(err)
	}
	return sc, out, dir
}

func TestLoadAnalyseShow(t *testing.T) {
	is := is.New(t)
	sc, out, dir := testController(t)

	sc.Execute(nil, "show statistics")
	is.True(strings.Contains(out.String(), errNoMatchLoaded.Error()))
	out.Reset()

	sc.Execute(nil, "load "+filepath.Join(dir, "match.yaml"))
	is.True(strings.Contains(out.String(), "Loaded 3-point match between Alice and Bob"))
	out.Reset()

	sc.Execute(nil, "analyse")
	is.Equal(out.String(), "match analysed\n")
	is.Equal(sc.match.Stats.TotalMoves[0]+sc.match.Stats.TotalMoves[1], 2)
	out.Reset()

	sc.Execute(nil, "show statistics game")
	is.True(strings.Contains(out.String(), "Game statistics for game 1"))
	out.Reset()

	sc.Execute(nil, "show statistics")
	is.True(strings.Contains(out.String(), "Match statistics"))
	is.True(strings.Contains(out.String(), "Alice"))
	out.Reset()

	sc.Execute(nil, "game 2")
	is.True(strings.HasPrefix(out.String(), "Error: game must be between 1 and 1"))
	out.Reset()

	exported := filepath.Join(dir, "export.txt")
	sc.Execute(nil, "export match "+exported)
	is.Equal(out.String(), "exported to "+exported+"\n")
	data, err := os.ReadFile(exported)
	is.NoErr(err)
	is.True(strings.Contains(string(data), "Match statistics"))
}

func TestAnalyseGameUpdatesMatchStats(t *testing.T) {
	is := is.New(t)
	sc, _, dir := testController(t)
	sc.Execute(nil, "load "+filepath.Join(dir, "match.yaml"))
	sc.Execute(nil, "analyse game")
	is.True(sc.match.Stats.MovesAnalysed)
	is.Equal(sc.match.Stats.TotalMoves[0], 1)
}

func TestInterruptAnalysis(t *testing.T) {
	is := is.New(t)
	sc, out, dir := testController(t)
	is.True(!sc.Interrupt())

	sc.Execute(nil, "load "+filepath.Join(dir, "match.yaml"))
	out.Reset()
	sc.analyzer.OnProgress(func(done, total int) {
		if done == 1 {
			is.True(sc.Interrupt())
		}
	})
	sc.Execute(nil, "analyse")
	is.True(strings.Contains(out.String(), "analysis interrupted"))
	is.Equal(sc.match.Stats.TotalMoves, [2]int{})
	is.True(!sc.Interrupt())
	out.Reset()

	// the shell itself keeps running
	sc.analyzer.OnProgress(nil)
	sc.Execute(nil, "analyse")
	is.Equal(out.String(), "match analysed\n")
}

func TestDatabaseCommands(t *testing.T) {
	is := is.New(t)
	sc, out, dir := testController(t)

	sc.Execute(nil, "load "+filepath.Join(dir, "match.yaml"))
	sc.Execute(nil, "db add")
	is.True(strings.Contains(out.String(), "has not been analysed"))
	out.Reset()

	sc.Execute(nil, "analyse")
	sc.Execute(nil, "db add")
	is.True(strings.Contains(out.String(), "added match"))
	out.Reset()

	sc.Execute(nil, "db add")
	is.True(strings.Contains(out.String(), "already in the database"))
	out.Reset()

	sc.Execute(nil, "db add -force true")
	is.True(strings.Contains(out.String(), "added match"))
	out.Reset()

	sc.Execute(nil, "db players")
	is.Equal(out.String(), "Alice\nBob\n")
	out.Reset()

	sc.Execute(nil, "db list Alice")
	is.True(strings.HasPrefix(out.String(), "Alice: 1 matches, 0 won"))
	out.Reset()

	sc.Execute(nil, "db erase all")
	sc.Execute(nil, "db players")
	is.Equal(out.String(), "erased all\n")
}

func TestAliasAndHelp(t *testing.T) {
	is := is.New(t)
	sc, out, dir := testController(t)

	sc.Execute(nil, "alias set stats show statistics")
	is.Equal(out.String(), "Alias 'stats' set to: show statistics\n")
	out.Reset()

	sc.Execute(nil, "load "+filepath.Join(dir, "match.yaml"))
	out.Reset()
	sc.Execute(nil, "stats game")
	is.True(strings.Contains(out.String(), "Game statistics for game 1"))
	out.Reset()

	sc.Execute(nil, "help")
	is.True(strings.Contains(out.String(), "analyse [game|match|session]"))
	out.Reset()

	sc.Execute(nil, "help db")
	is.True(strings.Contains(out.String(), "sqlite"))
	out.Reset()

	sc.Execute(nil, "help nothing")
	is.True(strings.Contains(out.String(), "There is no help text for the topic nothing"))
	out.Reset()

	sc.Execute(nil, "frobnicate")
	is.True(strings.Contains(out.String(), `unrecognized command "frobnicate"`))
}

func TestSetConfigRebuildsAnalyzer(t *testing.T) {
	is := is.New(t)
	sc, out, _ := testController(t)
	sc.Execute(nil, "setconfig analysis-threshold-bad 0.1")
	is.Equal(out.String(), "set analysis-threshold-bad to 0.1\n")
	is.Equal(sc.analyzer.Config().Skill.Bad, 0.1)
}

func TestCompleter(t *testing.T) {
	is := is.New(t)
	sc, _, _ := testController(t)
	c := NewShellCompleter(sc)

	matches, n := c.Do([]rune("ana"), 3)
	is.Equal(n, 3)
	is.Equal(matches, [][]rune{[]rune("lyse"), []rune("lyze")})

	line := "show statistics g"
	matches, _ = c.Do([]rune(line), len(line))
	is.Equal(matches, [][]rune{[]rune("ame")})

	line = "db add -force "
	matches, _ = c.Do([]rune(line), len(line))
	is.Equal(len(matches), 2)
}
