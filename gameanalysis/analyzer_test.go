package gameanalysis

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/config"
	"github.com/domino14/bgstats/equity"
	"github.com/domino14/bgstats/evaluator"
	"github.com/domino14/bgstats/evaluator/pipcount"
	"github.com/domino14/bgstats/game"
)

// fakeEvaluator returns canned answers and counts how often it is asked.
type fakeEvaluator struct {
	outputs equity.Outputs
	cube    evaluator.CubeEvaluation
	resign  equity.Outputs
	lists   [][]evaluator.Move
	next    int

	failMoves bool
	failLuck  bool

	evals, bestMoves, rankings, cubes, resigns int
}

var errFake = errors.New("fake evaluator failure")

func (f *fakeEvaluator) EvaluatePosition(ctx context.Context, b board.Board, ci equity.CubeInfo, ec evaluator.EvalContext) (equity.Outputs, error) {
	f.evals++
	if err := ctx.Err(); err != nil {
		return equity.Outputs{}, err
	}
	return f.outputs, nil
}

func (f *fakeEvaluator) FindBestMove(ctx context.Context, b board.Board, d0, d1 int, ci equity.CubeInfo) (board.Board, error) {
	f.bestMoves++
	if err := ctx.Err(); err != nil {
		return b, err
	}
	if f.failLuck {
		return b, errFake
	}
	return b, nil
}

func (f *fakeEvaluator) FindnSaveBestMoves(ctx context.Context, b board.Board, d0, d1 int, ci equity.CubeInfo, ec evaluator.EvalContext) ([]evaluator.Move, error) {
	f.rankings++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.failMoves {
		return nil, errFake
	}
	list := f.lists[min(f.next, len(f.lists)-1)]
	f.next++
	return slices.Clone(list), nil
}

func (f *fakeEvaluator) GeneralCubeDecision(ctx context.Context, b board.Board, ci equity.CubeInfo, es evaluator.EvalSetup) (evaluator.CubeEvaluation, error) {
	f.cubes++
	if err := ctx.Err(); err != nil {
		return evaluator.CubeEvaluation{}, err
	}
	return f.cube, nil
}

func (f *fakeEvaluator) Resignation(ctx context.Context, b board.Board, ci equity.CubeInfo, es evaluator.EvalSetup) (equity.Outputs, error) {
	f.resigns++
	return f.resign, nil
}

func keyAfter(b board.Board, m board.Move) board.Key {
	_ = b.ApplyMove(m, false)
	return board.PositionKey(b)
}

func testConfig() *AnalysisConfig {
	ac := DefaultAnalysisConfig()
	ac.Skill = SkillThresholds{VeryBad: 0.08, Bad: 0.04, Doubtful: 0.02}
	return ac
}

func moneyState(t *testing.T) *game.MatchState {
	ms := game.NewMatchState(nil)
	if err := ms.Apply(&game.GameInfo{Winner: -1}); err != nil {
		t.Fatal(err)
	}
	return ms
}

var (
	// 24/18/13 then 24/18 13/8, both for player 0
	firstMove  = board.NewMove(23, 17, 17, 12)
	secondMove = board.NewMove(23, 17, 12, 7)
)

// twoMoveGame is a game of two chequer plays by player 0: the first has
// only one candidate, the second is 1/32 worse than the best candidate.
func twoMoveGame() (*game.Game, *fakeEvaluator) {
	b := board.Initial()
	k1 := keyAfter(b, firstMove)
	_ = b.ApplyMove(firstMove, true)
	k2 := keyAfter(b, secondMove)

	ev := &fakeEvaluator{
		outputs: equity.Outputs{0.5, 0.1, 0, 0.1, 0},
		lists: [][]evaluator.Move{
			{{Move: firstMove, Key: k1, Score: 0.1}},
			{
				{Move: board.NewMove(12, 6, 12, 7), Key: board.Key{1}, Score: 0.5},
				{Move: secondMove, Key: k2, Score: 0.46875},
			},
		},
	}
	g := &game.Game{Decisions: []game.Decision{
		&game.GameInfo{Winner: -1},
		&game.NormalMove{Player: 0, Dice: [2]int{6, 5}, Move: firstMove},
		&game.NormalMove{Player: 0, Dice: [2]int{6, 5}, Move: secondMove},
	}}
	return g, ev
}

func TestNewAnalyzer(t *testing.T) {
	is := is.New(t)
	ac := DefaultAnalysisConfig()
	ac.Compare = nil
	a := New(config.DefaultConfig(), ac, &fakeEvaluator{})
	is.True(a.Config().Compare != nil)
	is.Equal(a.Config().MaxMoves, 20)
	is.Equal(New(nil, nil, nil).Config().Skill.VeryBad, 0.16)
}

func TestAnalysisConfigFromConfig(t *testing.T) {
	is := is.New(t)
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigSkillDoubtful, 0.02)
	cfg.Set(config.ConfigChequerPlies, 2)
	cfg.Set(config.ConfigAnalyseDice, false)
	ac, err := AnalysisConfigFromConfig(cfg)
	is.NoErr(err)
	is.Equal(ac.Skill.Doubtful, 0.02)
	is.Equal(ac.ChequerSetup.Eval.Plies, 2)
	is.Equal(ac.CubeSetup.Eval.Plies, 0)
	is.True(!ac.AnalyseLuck)
	is.True(ac.Table != nil)

	cfg.Set(config.ConfigSkillBad, 0.5)
	_, err = AnalysisConfigFromConfig(cfg)
	is.True(err != nil)
}

func TestCheckSettings(t *testing.T) {
	is := is.New(t)
	ac := testConfig()
	ac.AnalyseMoves, ac.AnalyseCube, ac.AnalyseLuck = false, false, false
	a := New(nil, ac, &fakeEvaluator{})
	is.True(errors.Is(a.CheckSettings(), ErrNoAnalysis))

	g, _ := twoMoveGame()
	m := &game.Match{Games: []*game.Game{g}}
	is.True(errors.Is(a.AnalyzeMatch(context.Background(), m), ErrNoAnalysis))
	is.True(errors.Is(a.AnalyzeMatch(context.Background(), &game.Match{}), ErrNoMatch))
}

func TestEndToEndTwoMoves(t *testing.T) {
	g, ev := twoMoveGame()
	ac := testConfig()
	ac.AnalyseCube = false
	a := New(nil, ac, ev)
	m := &game.Match{Players: [2]string{"Alice", "Bob"}, Games: []*game.Game{g}}

	var ticks []int
	a.OnProgress(func(done, total int) {
		ticks = append(ticks, done)
		assert.Equal(t, 3, total)
	})

	assert.NoError(t, a.AnalyzeMatch(context.Background(), m))
	gi, _ := g.Info()
	sc := gi.Stats

	assert.Equal(t, 2, sc.TotalMoves[0])
	assert.Equal(t, 1, sc.UnforcedMoves[0])
	assert.Equal(t, 1, sc.Moves[0][game.SkillDoubtful])
	assert.Equal(t, 1, sc.Moves[0][game.SkillNone])
	assert.InDelta(t, 0.03125, sc.ErrorCheckerplay[0][0], 1e-9)
	assert.InDelta(t, 0.03125, sc.ErrorCheckerplay[0][1], 1e-9)
	assert.Equal(t, 0, sc.TotalMoves[1])
	assert.True(t, sc.MovesAnalysed)
	assert.True(t, sc.LuckAnalysed)
	assert.False(t, sc.CubeAnalysed)

	// constant evaluations: no roll is luckier than another
	assert.Equal(t, 2, sc.LuckCounts[0][game.LuckNone])
	assert.InDelta(t, 0.0, sc.Luck[0][0], 1e-12)

	assert.Equal(t, sc, m.Stats)
	assert.Equal(t, []int{1, 2, 3}, ticks)

	second := g.Decisions[2].(*game.NormalMove)
	assert.Equal(t, game.SkillDoubtful, second.Skill)
	assert.Equal(t, 1, second.MoveIndex)
	assert.Equal(t, ac.ChequerSetup, second.ChequerSetup)
}

func TestEndToEndDoubtfulBoundary(t *testing.T) {
	g, ev := twoMoveGame()
	ev.lists[1][0].Score = 0.50
	ev.lists[1][1].Score = 0.48
	ac := testConfig()
	ac.AnalyseCube = false
	a := New(nil, ac, ev)
	m := &game.Match{Players: [2]string{"Alice", "Bob"}, Games: []*game.Game{g}}

	assert.NoError(t, a.AnalyzeMatch(context.Background(), m))
	gi, _ := g.Info()
	sc := gi.Stats
	assert.Equal(t, 0.02, ac.Skill.Doubtful)
	assert.Equal(t, 2, sc.TotalMoves[0])
	assert.Equal(t, 1, sc.UnforcedMoves[0])
	assert.Equal(t, 1, sc.Moves[0][game.SkillDoubtful])
	assert.Equal(t, 1, sc.Moves[0][game.SkillNone])
	assert.InDelta(t, 0.02, sc.ErrorCheckerplay[0][0], 1e-9)
	assert.Equal(t, game.SkillDoubtful, g.Decisions[2].(*game.NormalMove).Skill)
}

func TestProvenanceReuse(t *testing.T) {
	is := is.New(t)
	_, ev := twoMoveGame()
	ev.lists = ev.lists[:1]
	ac := testConfig()
	ac.AnalyseCube, ac.AnalyseLuck = false, false
	a := New(nil, ac, ev)
	ctx := context.Background()

	d := &game.NormalMove{Player: 0, Dice: [2]int{6, 5}, Move: firstMove}
	is.NoErr(a.AnalyzeMove(ctx, NewSession(), d, moneyState(t), nil))
	is.Equal(ev.rankings, 1)

	// same settings: the stored ranking is good enough
	is.NoErr(a.AnalyzeMove(ctx, NewSession(), d, moneyState(t), nil))
	is.Equal(ev.rankings, 1)

	// less thorough settings don't replace it either
	a.analysisCfg.ChequerSetup.Eval.Noise = 0.1
	is.NoErr(a.AnalyzeMove(ctx, NewSession(), d, moneyState(t), nil))
	is.Equal(ev.rankings, 1)

	// more thorough settings do
	a.analysisCfg.ChequerSetup.Eval.Noise = 0
	a.analysisCfg.ChequerSetup.Eval.Plies = 2
	is.NoErr(a.AnalyzeMove(ctx, NewSession(), d, moneyState(t), nil))
	is.Equal(ev.rankings, 2)
	is.Equal(d.ChequerSetup.Eval.Plies, 2)
}

func TestCubeProvenanceReuse(t *testing.T) {
	is := is.New(t)
	ev := &fakeEvaluator{cube: evaluator.CubeEvaluation{NoDouble: 0.5, DoubleTake: 0.7}}
	ac := testConfig()
	ac.AnalyseMoves, ac.AnalyseLuck = false, false
	a := New(nil, ac, ev)
	ctx := context.Background()

	d := &game.Double{Player: 0}
	is.NoErr(a.AnalyzeMove(ctx, NewSession(), d, moneyState(t), nil))
	is.NoErr(a.AnalyzeMove(ctx, NewSession(), d, moneyState(t), nil))
	is.Equal(ev.cubes, 1)

	a.analysisCfg.CubeSetup.Eval.Plies = 1
	is.NoErr(a.AnalyzeMove(ctx, NewSession(), d, moneyState(t), nil))
	is.Equal(ev.cubes, 2)
}

func TestSharedCubeSlot(t *testing.T) {
	ev := &fakeEvaluator{cube: evaluator.CubeEvaluation{NoDouble: 0.5, DoubleTake: 0.7}}
	ac := testConfig()
	ac.AnalyseMoves, ac.AnalyseLuck = false, false
	a := New(nil, ac, ev)
	ctx := context.Background()

	ms := moneyState(t)
	s := NewSession()
	var sc game.StatContext
	dbl := &game.Double{Player: 0}
	take := &game.Take{Player: 1}
	assert.NoError(t, a.AnalyzeMove(ctx, s, dbl, ms, &sc))
	assert.NoError(t, a.AnalyzeMove(ctx, s, take, ms, &sc))

	assert.True(t, take.Cube.Present())
	assert.Equal(t, dbl.Cube, take.Cube)
	assert.True(t, dbl.Cube.Decision == take.Cube.Decision)
	assert.Equal(t, 1, ev.cubes)
	assert.InDelta(t, 0.7, dbl.Cube.Decision[equity.OutputOptimal], 1e-12)
	assert.Equal(t, game.SkillNone, dbl.Skill)
	assert.Equal(t, game.SkillNone, take.Skill)
	assert.Equal(t, 1, sc.Doubles[0])
	assert.Equal(t, 1, sc.Takes[1])
	assert.Equal(t, [2]int{1, 1}, sc.TotalCube)
	assert.Equal(t, 2, ms.Cube)

	// without cube analysis the take gets no evaluation, not a stale one
	ac.AnalyseCube = false
	ms = moneyState(t)
	s = NewSession()
	dbl = &game.Double{Player: 0}
	take = &game.Take{Player: 1, Cube: game.CubeAnalysis{
		Setup:    ac.CubeSetup,
		Decision: equity.CubeDecision{9, 9, 9, 9},
	}}
	assert.NoError(t, a.AnalyzeMove(ctx, s, dbl, ms, nil))
	assert.NoError(t, a.AnalyzeMove(ctx, s, take, ms, nil))
	assert.False(t, take.Cube.Present())
	assert.Equal(t, game.CubeAnalysis{}, take.Cube)
	assert.False(t, s.SharedCube().Present())
}

func TestDoubleOutsideWindow(t *testing.T) {
	is := is.New(t)
	ev := &fakeEvaluator{cube: evaluator.CubeEvaluation{NoDouble: 0.5, DoubleTake: 0.7}}
	ac := testConfig()
	a := New(nil, ac, ev)
	ms := moneyState(t)
	// opponent owns the cube so player 0 can't double
	ms.CubeOwner = 1
	s := NewSession()
	var sc game.StatContext
	dbl := &game.Double{Player: 0}
	is.NoErr(a.AnalyzeMove(context.Background(), s, dbl, ms, &sc))
	is.Equal(ev.cubes, 0)
	is.True(!dbl.Cube.Present())
	is.True(!s.SharedCube().Present())
	is.Equal(sc.Doubles[0], 0)
}

func TestWrongTakeAndPass(t *testing.T) {
	is := is.New(t)
	// a clear pass: doubling to 2 is worth more than the pass
	ev := &fakeEvaluator{cube: evaluator.CubeEvaluation{NoDouble: 0.8, DoubleTake: 1.4}}
	ac := testConfig()
	ac.AnalyseMoves, ac.AnalyseLuck = false, false
	a := New(nil, ac, ev)
	ctx := context.Background()

	ms := moneyState(t)
	s := NewSession()
	var sc game.StatContext
	take := &game.Take{Player: 1}
	is.NoErr(a.AnalyzeMove(ctx, s, &game.Double{Player: 0}, ms, &sc))
	is.NoErr(a.AnalyzeMove(ctx, s, take, ms, &sc))
	is.Equal(take.Skill, game.SkillVeryBad)
	is.Equal(sc.WrongTake[1], 1)
	is.True(sc.ErrorWrongTake[1][0] > 0.39 && sc.ErrorWrongTake[1][0] < 0.41)
	is.Equal(sc.WrongDoubleDP[0]+sc.WrongDoubleTG[0], 0)

	// a clear take dropped
	ev.cube = evaluator.CubeEvaluation{NoDouble: 0.4, DoubleTake: 0.6}
	ms = moneyState(t)
	s = NewSession()
	sc.Reset()
	drop := &game.Drop{Player: 1}
	is.NoErr(a.AnalyzeMove(ctx, s, &game.Double{Player: 0}, ms, &sc))
	is.NoErr(a.AnalyzeMove(ctx, s, drop, ms, &sc))
	is.Equal(drop.Skill, game.SkillVeryBad)
	is.Equal(sc.WrongPass[1], 1)
	is.Equal(sc.Passes[1], 1)
	is.True(ms.GameOver)
}

func TestMissedDoubleBuckets(t *testing.T) {
	is := is.New(t)
	ac := testConfig()
	for _, tc := range []struct {
		nd     float64
		tg, dp int
	}{
		{0.95, 1, 0},
		{0.9499, 0, 1},
	} {
		ms := moneyState(t)
		ci, err := ms.CubeInfo()
		is.NoErr(err)
		var sc game.StatContext
		d := &game.NormalMove{Player: 0, MoveIndex: -1, Cube: game.CubeAnalysis{
			Setup:    ac.CubeSetup,
			Decision: equity.CubeDecision{1.0, tc.nd, 1.2, 1.0},
		}}
		updateStatContext(&sc, d, ms, ci, ac)
		is.Equal(sc.MissedDoubleTG[0], tc.tg)
		is.Equal(sc.MissedDoubleDP[0], tc.dp)
		is.Equal(sc.TotalCube[0], 1)
		is.True(approx(sc.ErrorMissedDoubleTG[0][0]+sc.ErrorMissedDoubleDP[0][0], 1.0-tc.nd))
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func TestWrongDoubleBuckets(t *testing.T) {
	is := is.New(t)
	ac := testConfig()
	ms := moneyState(t)
	ci, _ := ms.CubeInfo()
	var sc game.StatContext
	// doubling costs 0.2 compared to holding
	d := &game.Double{Player: 0, Cube: game.CubeAnalysis{
		Setup:    ac.CubeSetup,
		Decision: equity.CubeDecision{0.5, 0.5, 0.3, 1.0},
	}}
	updateStatContext(&sc, d, ms, ci, ac)
	is.Equal(sc.WrongDoubleDP[0], 1)
	is.True(approx(sc.ErrorWrongDoubleDP[0][0], 0.2))
	is.True(approx(sc.ErrorWrongDoubleDP[0][1], 0.2))

	// too good to double: cashing gives up a likely gammon
	d.Cube.Decision = equity.CubeDecision{1.2, 1.2, 1.5, 1.0}
	updateStatContext(&sc, d, ms, ci, ac)
	is.Equal(sc.WrongDoubleTG[0], 1)
	is.Equal(sc.Doubles[0], 2)
}

func TestMatchPlayCost(t *testing.T) {
	is := is.New(t)
	ac := testConfig()
	ms := game.NewMatchState(nil)
	is.NoErr(ms.Apply(&game.GameInfo{MatchTo: 7, Score: [2]int{2, 3}, Winner: -1}))
	ci, err := ms.CubeInfo()
	is.NoErr(err)
	var sc game.StatContext
	d := &game.NormalMove{Player: 0, MoveIndex: 1, Moves: []evaluator.Move{{Score: 0.1}, {Score: 0.0}}}
	updateStatContext(&sc, d, ms, ci, ac)
	is.True(approx(sc.ErrorCheckerplay[0][0], 0.1))
	is.True(approx(sc.ErrorCheckerplay[0][1], ci.Eq2MWC(0)-ci.Eq2MWC(-0.1)))
	is.True(sc.ErrorCheckerplay[0][1] > 0 && sc.ErrorCheckerplay[0][1] < 0.1)
}

func TestTruncationKeepsPlayedMove(t *testing.T) {
	is := is.New(t)
	b := board.Initial()
	k := keyAfter(b, firstMove)
	ev := &fakeEvaluator{lists: [][]evaluator.Move{{
		{Key: board.Key{1}, Score: 0.3},
		{Key: board.Key{2}, Score: 0.2},
		{Key: board.Key{3}, Score: 0.1},
		{Move: firstMove, Key: k, Score: -0.1},
	}}}
	ac := testConfig()
	ac.AnalyseCube, ac.AnalyseLuck = false, false
	ac.MaxMoves = 2
	a := New(nil, ac, ev)
	d := &game.NormalMove{Player: 0, Dice: [2]int{6, 5}, Move: firstMove}
	is.NoErr(a.AnalyzeMove(context.Background(), NewSession(), d, moneyState(t), nil))
	is.Equal(len(d.Moves), 2)
	is.Equal(d.MoveIndex, 1)
	is.True(board.EqualKeys(d.Moves[1].Key, k))
	is.True(board.EqualKeys(d.Moves[0].Key, board.Key{1}))
	is.Equal(d.Skill, game.SkillVeryBad)
}

func TestCubeSkillFloorsChequerSkill(t *testing.T) {
	is := is.New(t)
	b := board.Initial()
	k := keyAfter(b, firstMove)
	ev := &fakeEvaluator{
		cube:  evaluator.CubeEvaluation{NoDouble: 0.5, DoubleTake: 0.55},
		lists: [][]evaluator.Move{{{Move: firstMove, Key: k}}},
	}
	ac := testConfig()
	ac.AnalyseLuck = false
	a := New(nil, ac, ev)
	s := NewSession()
	// not the opening move, so the cube is analysed
	s.firstMove = false
	d := &game.NormalMove{Player: 0, Dice: [2]int{6, 5}, Move: firstMove}
	var sc game.StatContext
	is.NoErr(a.AnalyzeMove(context.Background(), s, d, moneyState(t), &sc))
	is.True(d.Cube.Present())
	// the missed double costs 0.05
	is.Equal(d.Skill, game.SkillBad)
	is.Equal(sc.MissedDoubleDP[0], 1)
	is.Equal(sc.Moves[0][game.SkillNone], 1)
}

func TestResign(t *testing.T) {
	is := is.New(t)
	ev := &fakeEvaluator{resign: equity.Outputs{0.9, 0, 0, 0, 0}}
	a := New(nil, testConfig(), ev)
	ctx := context.Background()

	// resigning a winning position
	r := &game.Resign{Player: 0, Points: 1}
	is.NoErr(a.AnalyzeMove(ctx, NewSession(), r, moneyState(t), nil))
	is.True(approx(r.Before, 0.8))
	is.True(approx(r.After, -1))
	is.Equal(r.SkillResign, game.SkillVeryBad)
	is.Equal(r.SkillAccept, game.SkillVeryGood)

	// offering a single game when a gammon is certain
	ev.resign = equity.Outputs{0, 0, 0, 1, 0}
	r = &game.Resign{Player: 1, Points: 1}
	is.NoErr(a.AnalyzeMove(ctx, NewSession(), r, moneyState(t), nil))
	is.Equal(r.SkillResign, game.SkillVeryGood)
	is.Equal(r.SkillAccept, game.SkillVeryBad)
	is.Equal(ev.resigns, 2)

	// nothing wrong with resigning a lost gammon
	r = &game.Resign{Player: 1, Points: 2}
	is.NoErr(a.AnalyzeMove(ctx, NewSession(), r, moneyState(t), nil))
	is.Equal(r.SkillResign, game.SkillNone)
	is.Equal(r.SkillAccept, game.SkillNone)
}

func TestLuckUnavailableIsNotFatal(t *testing.T) {
	g, ev := twoMoveGame()
	ev.failLuck = true
	a := New(nil, testConfig(), ev)
	m := &game.Match{Games: []*game.Game{g}}
	assert.NoError(t, a.AnalyzeMatch(context.Background(), m))
	mv := g.Decisions[1].(*game.NormalMove)
	assert.False(t, mv.HasLuck)
	assert.Equal(t, game.LuckNone, mv.LuckType)
	assert.Equal(t, [game.NumLuckTypes]int{}, m.Stats.LuckCounts[0])
	assert.Equal(t, 2, m.Stats.TotalMoves[0])
}

func TestFailureResetsStatistics(t *testing.T) {
	is := is.New(t)
	g, ev := twoMoveGame()
	ev.failMoves = true
	a := New(nil, testConfig(), ev)
	gi, _ := g.Info()
	gi.Stats.TotalMoves[0] = 7
	m := &game.Match{Games: []*game.Game{g}}
	m.Stats.TotalMoves[1] = 3

	err := a.AnalyzeMatch(context.Background(), m)
	is.True(errors.Is(err, errFake))
	is.Equal(gi.Stats, game.StatContext{})
	is.Equal(m.Stats, game.StatContext{})
}

func TestInterrupt(t *testing.T) {
	is := is.New(t)
	g, ev := twoMoveGame()
	a := New(nil, testConfig(), ev)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &game.Match{Games: []*game.Game{g}}
	err := a.AnalyzeMatch(ctx, m)
	is.True(errors.Is(err, ErrInterrupted))
	is.Equal(m.Stats, game.StatContext{})
	gi, _ := g.Info()
	is.Equal(gi.Stats, game.StatContext{})
}

func TestInterruptWithStoredAnalysis(t *testing.T) {
	is := is.New(t)
	g, ev := twoMoveGame()
	ac := testConfig()
	ac.AnalyseCube, ac.AnalyseLuck = false, false
	a := New(nil, ac, ev)
	m := &game.Match{Games: []*game.Game{g}}
	is.NoErr(a.AnalyzeMatch(context.Background(), m))
	is.Equal(ev.rankings, 2)

	// every ranking is stored, so nothing below asks the evaluator
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := a.AnalyzeMatch(ctx, m)
	is.True(errors.Is(err, ErrInterrupted))
	is.Equal(ev.rankings, 2)
	is.Equal(m.Stats, game.StatContext{})
	gi, _ := g.Info()
	is.Equal(gi.Stats, game.StatContext{})
}

func TestGameInfoResetsSession(t *testing.T) {
	is := is.New(t)
	a := New(nil, testConfig(), &fakeEvaluator{})
	s := &Session{cube: game.CubeAnalysis{Setup: evaluator.EvalSetup{Type: evaluator.EvalEval}}}
	sc := game.StatContext{TotalMoves: [2]int{4, 4}}
	is.NoErr(a.AnalyzeMove(context.Background(), s, &game.GameInfo{Winner: -1}, game.NewMatchState(nil), &sc))
	is.True(s.firstMove)
	is.True(!s.SharedCube().Present())
	is.Equal(sc.TotalMoves, [2]int{})
	// flags are set even by a game info
	is.True(sc.MovesAnalysed)
}

func TestNumberMoves(t *testing.T) {
	is := is.New(t)
	g, _ := twoMoveGame()
	m := &game.Match{Games: []*game.Game{g, g}}
	is.Equal(NumberMovesGame(g), 3)
	is.Equal(NumberMovesMatch(m), 6)
}

func TestPipcountEndToEnd(t *testing.T) {
	is := is.New(t)
	g := &game.Game{Decisions: []game.Decision{
		&game.GameInfo{MatchTo: 5, Winner: -1},
		&game.NormalMove{Player: 0, Dice: [2]int{3, 1}, Move: board.NewMove(7, 4, 5, 4)},
		&game.NormalMove{Player: 1, Dice: [2]int{6, 4}, Move: board.NewMove(23, 17, 12, 8)},
		&game.Double{Player: 0},
		&game.Take{Player: 1},
		&game.NormalMove{Player: 0, Dice: [2]int{6, 5}, Move: board.NewMove(23, 17, 17, 12)},
	}}
	m := &game.Match{Players: [2]string{"Alice", "Bob"}, MatchTo: 5, Games: []*game.Game{g}}
	a := New(nil, DefaultAnalysisConfig(), pipcount.New())
	is.NoErr(a.AnalyzeMatch(context.Background(), m))

	is.Equal(m.Stats.TotalMoves[0]+m.Stats.TotalMoves[1], 3)
	is.Equal(m.Stats.Doubles[0], 1)
	is.Equal(m.Stats.Takes[1], 1)
	is.True(m.Stats.MovesAnalysed && m.Stats.CubeAnalysed && m.Stats.LuckAnalysed)
	for _, d := range g.Decisions[1:3] {
		mv := d.(*game.NormalMove)
		is.True(mv.MoveIndex >= 0)
		is.True(len(mv.Moves) > 1)
		is.True(mv.HasLuck)
	}
	take := g.Decisions[4].(*game.Take)
	is.Equal(take.Cube, g.Decisions[3].(*game.Double).Cube)
}
