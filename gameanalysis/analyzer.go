package gameanalysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/config"
	"github.com/domino14/bgstats/equity"
	"github.com/domino14/bgstats/evaluator"
	"github.com/domino14/bgstats/game"
	"github.com/domino14/bgstats/met"
)

var (
	ErrNoAnalysis  = errors.New("you must specify at least one type of analysis to perform")
	ErrInterrupted = errors.New("analysis interrupted")
	ErrNoMatch     = errors.New("no match is being played")
	ErrNoGame      = errors.New("no game is being played")
)

// AnalysisConfig holds configuration for match analysis
type AnalysisConfig struct {
	AnalyseMoves bool
	AnalyseCube  bool
	AnalyseLuck  bool

	// MaxMoves is how many candidate moves are kept per chequer play.
	// Values below 2 keep them all.
	MaxMoves int

	Skill SkillThresholds
	Luck  LuckThresholds

	ChequerSetup evaluator.EvalSetup
	CubeSetup    evaluator.EvalSetup
	// Compare decides whether a stored evaluation is good enough to keep.
	// nil means evaluator.CompareSetups.
	Compare evaluator.Comparator

	// OutputMWC shows match play errors as match winning chance.
	OutputMWC bool

	// Table is the match equity table; nil means the default.
	Table *met.Table
}

// DefaultAnalysisConfig returns 0-ply cubeful analysis of moves, cube and
// luck with the standard thresholds.
func DefaultAnalysisConfig() *AnalysisConfig {
	ec := evaluator.EvalContext{Cubeful: true, Deterministic: true}
	return &AnalysisConfig{
		AnalyseMoves: true,
		AnalyseCube:  true,
		AnalyseLuck:  true,
		MaxMoves:     20,
		Skill:        SkillThresholds{VeryBad: 0.16, Bad: 0.08, Doubtful: 0.04},
		Luck:         LuckThresholds{VeryGood: 0.6, Good: 0.3, Bad: 0.3, VeryBad: 0.6},
		ChequerSetup: evaluator.EvalSetup{Type: evaluator.EvalEval, Eval: ec},
		CubeSetup:    evaluator.EvalSetup{Type: evaluator.EvalEval, Eval: ec},
		Compare:      evaluator.CompareSetups,
		OutputMWC:    true,
	}
}

// AnalysisConfigFromConfig reads the analysis-* settings.
func AnalysisConfigFromConfig(cfg *config.Config) (*AnalysisConfig, error) {
	ac := DefaultAnalysisConfig()
	ac.AnalyseMoves = cfg.GetBool(config.ConfigAnalyseMove)
	ac.AnalyseCube = cfg.GetBool(config.ConfigAnalyseCube)
	ac.AnalyseLuck = cfg.GetBool(config.ConfigAnalyseDice)
	ac.MaxMoves = cfg.GetInt(config.ConfigAnalysisLimit)
	ac.Skill = SkillThresholds{
		VeryBad:  cfg.GetFloat64(config.ConfigSkillVeryBad),
		Bad:      cfg.GetFloat64(config.ConfigSkillBad),
		Doubtful: cfg.GetFloat64(config.ConfigSkillDoubtful),
	}
	ac.Luck = LuckThresholds{
		VeryGood: cfg.GetFloat64(config.ConfigLuckVeryGood),
		Good:     cfg.GetFloat64(config.ConfigLuckGood),
		Bad:      cfg.GetFloat64(config.ConfigLuckBad),
		VeryBad:  cfg.GetFloat64(config.ConfigLuckVeryBad),
	}
	if !(ac.Skill.VeryBad >= ac.Skill.Bad && ac.Skill.Bad >= ac.Skill.Doubtful && ac.Skill.Doubtful > 0) {
		return nil, fmt.Errorf("skill thresholds must be positive and ascending: %+v", ac.Skill)
	}

	ec := evaluator.EvalContext{
		Cubeful:       cfg.GetBool(config.ConfigEvalCubeful),
		Deterministic: cfg.GetBool(config.ConfigEvalDeterministic),
		Noise:         cfg.GetFloat64(config.ConfigEvalNoise),
	}
	ac.ChequerSetup.Eval = ec
	ac.ChequerSetup.Eval.Plies = cfg.GetInt(config.ConfigChequerPlies)
	ac.CubeSetup.Eval = ec
	ac.CubeSetup.Eval.Plies = cfg.GetInt(config.ConfigCubePlies)
	ac.OutputMWC = cfg.GetBool(config.ConfigOutputMWC)

	table, err := met.Load(cfg, cfg.GetString(config.ConfigMETFile))
	if err != nil {
		return nil, fmt.Errorf("loading match equity table: %w", err)
	}
	ac.Table = table
	return ac, nil
}

// ProgressFunc is called after every analysed decision.
type ProgressFunc func(done, total int)

// Analyzer analyzes recorded games and matches
type Analyzer struct {
	cfg         *config.Config
	analysisCfg *AnalysisConfig
	ev          evaluator.Evaluator
	progress    ProgressFunc
}

// New creates a new Analyzer
func New(cfg *config.Config, analysisCfg *AnalysisConfig, ev evaluator.Evaluator) *Analyzer {
	if analysisCfg == nil {
		analysisCfg = DefaultAnalysisConfig()
	}
	if analysisCfg.Compare == nil {
		analysisCfg.Compare = evaluator.CompareSetups
	}
	return &Analyzer{
		cfg:         cfg,
		analysisCfg: analysisCfg,
		ev:          ev,
	}
}

// Config returns the analysis settings in use.
func (a *Analyzer) Config() *AnalysisConfig {
	return a.analysisCfg
}

// OnProgress registers fn to be told about progress.
func (a *Analyzer) OnProgress(fn ProgressFunc) {
	a.progress = fn
}

// CheckSettings rejects an analysis that would do nothing.
func (a *Analyzer) CheckSettings() error {
	ac := a.analysisCfg
	if !ac.AnalyseMoves && !ac.AnalyseCube && !ac.AnalyseLuck {
		return ErrNoAnalysis
	}
	return nil
}

// Session is the memory the analysis of one game carries from one
// decision to the next. It is reset by every GameInfo.
type Session struct {
	firstMove bool
	// cube is the evaluation of the last double, for the take or drop
	// that follows it. A zero value means there is none.
	cube game.CubeAnalysis
}

// NewSession returns a session ready for a game's first decision.
func NewSession() *Session {
	return &Session{firstMove: true}
}

// SharedCube returns the cube evaluation waiting for a take or drop.
func (s *Session) SharedCube() game.CubeAnalysis {
	return s.cube
}

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	return nil
}

// stale reports whether an evaluation made with stored should be redone
// with the configured setup.
func (a *Analyzer) stale(configured, stored evaluator.EvalSetup) bool {
	return a.analysisCfg.Compare(configured, stored) > 0
}

func (a *Analyzer) cubeAnalysis(ctx context.Context, ms *game.MatchState, ci equity.CubeInfo) (game.CubeAnalysis, error) {
	setup := a.analysisCfg.CubeSetup
	ce, err := a.ev.GeneralCubeDecision(ctx, ms.Board, ci, setup)
	if ierr := interrupted(ctx); ierr != nil {
		return game.CubeAnalysis{}, ierr
	}
	if err != nil {
		return game.CubeAnalysis{}, fmt.Errorf("cube decision: %w", err)
	}
	cd, _ := equity.FindCubeDecision(ce.NoDouble, ce.DoubleTake, ci)
	return game.CubeAnalysis{Setup: setup, Eval: ce, Decision: cd}, nil
}

func (a *Analyzer) luck(ctx context.Context, ms *game.MatchState, dice [2]int,
	ci equity.CubeInfo, firstMove bool) (float64, game.LuckType, bool, error) {

	luck, err := LuckAnalysis(ctx, a.ev, ms.Board, dice[0], dice[1], ci, firstMove)
	if ierr := interrupted(ctx); ierr != nil {
		return 0, game.LuckNone, false, ierr
	}
	if err != nil {
		log.Debug().Err(err).Ints("dice", dice[:]).Msg("no luck for roll")
		return 0, game.LuckNone, false, nil
	}
	return luck, a.analysisCfg.Luck.Luck(luck), true, nil
}

// AnalyzeMove analyses one decision d and then plays it on ms. The
// analysis is stored in d. If sc is not nil the decision is also counted
// in it.
func (a *Analyzer) AnalyzeMove(ctx context.Context, s *Session, d game.Decision,
	ms *game.MatchState, sc *game.StatContext) error {

	ac := a.analysisCfg

	switch d := d.(type) {
	case *game.GameInfo:
		*s = *NewSession()
		if sc != nil {
			sc.Reset()
		}

	case *game.NormalMove:
		ms.SetPerspective(d.Player)
		ci, err := ms.CubeInfo()
		if err != nil {
			return err
		}
		skill := 0.0
		d.Skill = game.SkillNone

		canDouble, _ := ci.GetDPEq()
		if ac.AnalyseCube && !s.firstMove && canDouble {
			if a.stale(ac.CubeSetup, d.Cube.Setup) {
				if d.Cube, err = a.cubeAnalysis(ctx, ms, ci); err != nil {
					return err
				}
			}
			skill = d.Cube.Decision[equity.OutputNoDouble] - d.Cube.Decision[equity.OutputOptimal]
		} else {
			d.Cube = game.CubeAnalysis{}
		}

		if ac.AnalyseLuck {
			if d.Luck, d.LuckType, d.HasLuck, err = a.luck(ctx, ms, d.Dice, ci, s.firstMove); err != nil {
				return err
			}
		}

		if ac.AnalyseMoves {
			if err := a.analyzeChequerPlay(ctx, d, ms, ci, &skill); err != nil {
				return err
			}
			d.Skill = ac.Skill.Skill(skill)
		}

		if sc != nil {
			updateStatContext(sc, d, ms, ci, ac)
		}
		s.firstMove = false

	case *game.Double:
		ms.SetPerspective(d.Player)
		d.Skill = game.SkillNone
		s.cube = game.CubeAnalysis{}
		if ac.AnalyseCube {
			ci, err := ms.CubeInfo()
			if err != nil {
				return err
			}
			if canDouble, _ := ci.GetDPEq(); canDouble {
				if a.stale(ac.CubeSetup, d.Cube.Setup) {
					if d.Cube, err = a.cubeAnalysis(ctx, ms, ci); err != nil {
						return err
					}
				}
				s.cube = d.Cube
				cd := d.Cube.Decision
				var skill float64
				if cd[equity.OutputTake] < cd[equity.OutputDrop] {
					skill = cd[equity.OutputTake] - cd[equity.OutputOptimal]
				} else {
					skill = cd[equity.OutputDrop] - cd[equity.OutputOptimal]
				}
				d.Skill = ac.Skill.Skill(skill)
			} else {
				d.Cube = game.CubeAnalysis{}
			}
			if sc != nil {
				updateStatContext(sc, d, ms, ci, ac)
			}
		}

	case *game.Take:
		d.Skill = game.SkillNone
		if ac.AnalyseCube && s.cube.Present() {
			d.Cube = s.cube
			cd := d.Cube.Decision
			d.Skill = ac.Skill.Skill(-cd[equity.OutputTake] - -cd[equity.OutputDrop])
		} else {
			d.Cube = game.CubeAnalysis{}
		}
		if err := a.foldResponse(sc, d, ms); err != nil {
			return err
		}

	case *game.Drop:
		d.Skill = game.SkillNone
		if ac.AnalyseCube && s.cube.Present() {
			d.Cube = s.cube
			cd := d.Cube.Decision
			d.Skill = ac.Skill.Skill(-cd[equity.OutputDrop] - -cd[equity.OutputTake])
		} else {
			d.Cube = game.CubeAnalysis{}
		}
		if err := a.foldResponse(sc, d, ms); err != nil {
			return err
		}

	case *game.Resign:
		ms.SetPerspective(d.Player)
		d.SkillResign, d.SkillAccept = game.SkillNone, game.SkillNone
		if ac.AnalyseCube && ac.CubeSetup.Type != evaluator.EvalNone {
			ci, err := ms.CubeInfo()
			if err != nil {
				return err
			}
			if a.stale(ac.CubeSetup, d.Setup) {
				out, err := a.ev.Resignation(ctx, ms.Board, ci, ac.CubeSetup)
				if ierr := interrupted(ctx); ierr != nil {
					return ierr
				}
				if err != nil {
					return fmt.Errorf("resignation: %w", err)
				}
				d.Outputs, d.Setup = out, ac.CubeSetup
			}
			d.Before, d.After = ci.ResignEquities(d.Outputs, d.Points)
			if d.After < d.Before {
				d.SkillResign = ac.Skill.Skill(d.After - d.Before)
				d.SkillAccept = game.SkillVeryGood
			}
			if d.Before < d.After {
				d.SkillAccept = ac.Skill.Skill(d.Before - d.After)
				d.SkillResign = game.SkillVeryGood
			}
		}

	case *game.SetDice:
		ms.SetPerspective(d.Player)
		if ac.AnalyseLuck {
			ci, err := ms.CubeInfo()
			if err != nil {
				return err
			}
			if d.Luck, d.LuckType, d.HasLuck, err = a.luck(ctx, ms, d.Dice, ci, s.firstMove); err != nil {
				return err
			}
		}

	case *game.SetBoard, *game.SetCubeValue, *game.SetCubePosition:
	}

	if err := ms.Apply(d); err != nil {
		return err
	}
	if sc != nil {
		sc.MovesAnalysed = sc.MovesAnalysed || ac.AnalyseMoves
		sc.CubeAnalysed = sc.CubeAnalysed || ac.AnalyseCube
		sc.LuckAnalysed = sc.LuckAnalysed || ac.AnalyseLuck
	}
	return nil
}

// foldResponse counts a take or drop. The cube info is the doubler's,
// since the board has not been turned around for the response.
func (a *Analyzer) foldResponse(sc *game.StatContext, d game.Decision, ms *game.MatchState) error {
	if sc == nil {
		return nil
	}
	ci, err := ms.CubeInfo()
	if err != nil {
		return err
	}
	updateStatContext(sc, d, ms, ci, a.analysisCfg)
	return nil
}

// analyzeChequerPlay ranks the candidate moves if needed, finds the move
// that was played and lowers *skill to its loss if that is worse.
func (a *Analyzer) analyzeChequerPlay(ctx context.Context, d *game.NormalMove,
	ms *game.MatchState, ci equity.CubeInfo, skill *float64) error {

	ac := a.analysisCfg
	after := ms.Board
	if err := after.ApplyMove(d.Move, false); err != nil {
		return fmt.Errorf("%w: %w", game.ErrIllegalMove, err)
	}
	key := board.PositionKey(after)

	if a.stale(ac.ChequerSetup, d.ChequerSetup) {
		moves, err := a.ev.FindnSaveBestMoves(ctx, ms.Board, d.Dice[0], d.Dice[1], ci, ac.ChequerSetup.Eval)
		if ierr := interrupted(ctx); ierr != nil {
			return ierr
		}
		if err != nil {
			return fmt.Errorf("ranking moves: %w", err)
		}
		d.Moves = moves
		d.ChequerSetup = ac.ChequerSetup
	}

	d.MoveIndex = -1
	for i := range d.Moves {
		if board.EqualKeys(key, d.Moves[i].Key) {
			d.MoveIndex = i
			if loss := d.Moves[i].Score - d.Moves[0].Score; loss < *skill {
				*skill = loss
			}
			break
		}
	}

	if ac.MaxMoves >= 2 && len(d.Moves) > ac.MaxMoves {
		// keep the played move even if it ranks below the cutoff
		if d.MoveIndex >= ac.MaxMoves {
			d.Moves[ac.MaxMoves-1] = d.Moves[d.MoveIndex]
			d.MoveIndex = ac.MaxMoves - 1
		}
		d.Moves = d.Moves[:ac.MaxMoves]
	}
	return nil
}

// NumberMovesGame returns the number of decisions in g.
func NumberMovesGame(g *game.Game) int {
	return len(g.Decisions)
}

// NumberMovesMatch returns the number of decisions in all games of m.
func NumberMovesMatch(m *game.Match) int {
	n := 0
	for _, g := range m.Games {
		n += NumberMovesGame(g)
	}
	return n
}

type progress struct {
	done, total int
}

func (a *Analyzer) analyzeGame(ctx context.Context, g *game.Game, p *progress) error {
	gi, err := g.Info()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoGame, err)
	}
	ms := game.NewMatchState(a.analysisCfg.Table)
	s := NewSession()
	for i, d := range g.Decisions {
		if err := interrupted(ctx); err != nil {
			gi.Stats.Reset()
			return fmt.Errorf("game %d, decision %d: %w", gi.Game+1, i, err)
		}
		if err := a.AnalyzeMove(ctx, s, d, ms, &gi.Stats); err != nil {
			// don't leave half a game in the statistics
			gi.Stats.Reset()
			return fmt.Errorf("game %d, decision %d (%v): %w", gi.Game+1, i, d.Kind(), err)
		}
		p.done++
		if a.progress != nil {
			a.progress(p.done, p.total)
		}
		log.Debug().Int("decision", p.done).Int("total", p.total).
			Str("kind", d.Kind().String()).Msg("analyzed decision")
	}
	return nil
}

// AnalyzeGame analyses every decision of g and fills in its statistics.
// On failure or interruption the game's statistics are zeroed.
func (a *Analyzer) AnalyzeGame(ctx context.Context, g *game.Game) error {
	if g == nil {
		return ErrNoGame
	}
	if err := a.CheckSettings(); err != nil {
		return err
	}
	return a.analyzeGame(ctx, g, &progress{total: NumberMovesGame(g)})
}

// AnalyzeMatch analyses every game of m and sums their statistics into
// m.Stats. On failure or interruption the match statistics are zeroed.
func (a *Analyzer) AnalyzeMatch(ctx context.Context, m *game.Match) error {
	if m == nil || len(m.Games) == 0 {
		return ErrNoMatch
	}
	if err := a.CheckSettings(); err != nil {
		return err
	}
	p := &progress{total: NumberMovesMatch(m)}
	m.Stats.Reset()
	for _, g := range m.Games {
		if err := a.analyzeGame(ctx, g, p); err != nil {
			m.Stats.Reset()
			return err
		}
		gi, _ := g.Info()
		m.Stats.Add(&gi.Stats)
		log.Info().
			Int("game", gi.Game+1).
			Int("games", len(m.Games)).
			Int("decisions", p.done).
			Int("total", p.total).
			Msg("analyzed game")
	}
	return nil
}

// AnalyzeSession analyses a money session. Sessions are stored the same
// way as matches.
func (a *Analyzer) AnalyzeSession(ctx context.Context, m *game.Match) error {
	return a.AnalyzeMatch(ctx, m)
}
