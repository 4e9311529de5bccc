package gameanalysis

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"

	"github.com/domino14/bgstats/game"
	"github.com/domino14/bgstats/stats"
)

// BatchMatchResult represents the results for a single match in a batch analysis
type BatchMatchResult struct {
	Source      string      // e.g. "/path/to/match.yaml"
	MatchInfo   string      // e.g. "Player1 vs Player2"
	LoadError   error       // Error during match loading
	AnalysisErr error       // Error during match analysis
	Match       *game.Match // Analysed match if successful
}

// BatchPlayerStats represents aggregate statistics for a player across multiple matches
type BatchPlayerStats struct {
	PlayerName    string
	MatchesPlayed int
	GamesPlayed   int
	// Stats is the sum of the player's side of every analysed game, kept
	// in slot 0.
	Stats game.StatContext

	// Overall error rate of each game with at least one decision.
	GameErrorRates stats.Statistic
	gameRates      []float64

	AvgErrorRate  float64
	ErrorRateLow  float64 // confidence interval around AvgErrorRate
	ErrorRateHigh float64
	Rating        Rating
}

// BatchAnalysisResult represents the aggregate results of analyzing multiple matches
type BatchAnalysisResult struct {
	Matches           []*BatchMatchResult
	PlayerStats       map[string]*BatchPlayerStats
	TotalMatches      int
	SuccessfulMatches int
	FailedMatches     int
}

// NewBatchAnalysisResult creates a new BatchAnalysisResult
func NewBatchAnalysisResult() *BatchAnalysisResult {
	return &BatchAnalysisResult{
		Matches:     make([]*BatchMatchResult, 0),
		PlayerStats: make(map[string]*BatchPlayerStats),
	}
}

// playerSide copies player p's half of sc into slot 0 of a new context.
func playerSide(sc *game.StatContext, p int) game.StatContext {
	out := game.StatContext{
		MovesAnalysed: sc.MovesAnalysed,
		LuckAnalysed:  sc.LuckAnalysed,
		CubeAnalysed:  sc.CubeAnalysed,
	}
	out.TotalMoves[0] = sc.TotalMoves[p]
	out.UnforcedMoves[0] = sc.UnforcedMoves[p]
	out.Moves[0] = sc.Moves[p]
	out.LuckCounts[0] = sc.LuckCounts[p]
	out.Luck[0] = sc.Luck[p]
	out.TotalCube[0] = sc.TotalCube[p]
	out.Doubles[0] = sc.Doubles[p]
	out.Takes[0] = sc.Takes[p]
	out.Passes[0] = sc.Passes[p]
	out.MissedDoubleDP[0] = sc.MissedDoubleDP[p]
	out.MissedDoubleTG[0] = sc.MissedDoubleTG[p]
	out.WrongDoubleDP[0] = sc.WrongDoubleDP[p]
	out.WrongDoubleTG[0] = sc.WrongDoubleTG[p]
	out.WrongTake[0] = sc.WrongTake[p]
	out.WrongPass[0] = sc.WrongPass[p]
	out.ErrorCheckerplay[0] = sc.ErrorCheckerplay[p]
	out.ErrorMissedDoubleDP[0] = sc.ErrorMissedDoubleDP[p]
	out.ErrorMissedDoubleTG[0] = sc.ErrorMissedDoubleTG[p]
	out.ErrorWrongDoubleDP[0] = sc.ErrorWrongDoubleDP[p]
	out.ErrorWrongDoubleTG[0] = sc.ErrorWrongDoubleTG[p]
	out.ErrorWrongTake[0] = sc.ErrorWrongTake[p]
	out.ErrorWrongPass[0] = sc.ErrorWrongPass[p]
	return out
}

// AddMatchResult adds a match result to the batch and updates aggregate statistics
func (b *BatchAnalysisResult) AddMatchResult(mr *BatchMatchResult) {
	b.Matches = append(b.Matches, mr)
	b.TotalMatches++

	if mr.LoadError != nil || mr.AnalysisErr != nil || mr.Match == nil {
		b.FailedMatches++
		return
	}
	b.SuccessfulMatches++

	m := mr.Match
	for p, name := range m.Players {
		ps, exists := b.PlayerStats[name]
		if !exists {
			ps = &BatchPlayerStats{PlayerName: name}
			b.PlayerStats[name] = ps
		}
		ps.MatchesPlayed++
		for _, g := range m.Games {
			gi, err := g.Info()
			if err != nil {
				continue
			}
			ps.GamesPlayed++
			side := playerSide(&gi.Stats, p)
			ps.Stats.Add(&side)
			rate := Rates(&gi.Stats, p).OverallErrorRate
			if !math.IsNaN(rate) && !math.IsInf(rate, 0) {
				ps.GameErrorRates.Push(rate)
				ps.gameRates = append(ps.gameRates, rate)
			}
		}
	}
}

// CalculateAverages calculates average statistics for all players. level
// is the confidence level of the error rate interval, in percent.
func (b *BatchAnalysisResult) CalculateAverages(level float64) {
	for _, ps := range b.PlayerStats {
		ps.AvgErrorRate = Rates(&ps.Stats, 0).OverallErrorRate
		ps.Rating = GetRating(ps.AvgErrorRate)
		if ps.GameErrorRates.Iterations() == 0 {
			ps.ErrorRateLow, ps.ErrorRateHigh = math.NaN(), math.NaN()
			continue
		}
		ps.ErrorRateLow, ps.ErrorRateHigh = ps.GameErrorRates.ConfidenceInterval(level)
	}
}

// PlayerNames returns the players in the batch in alphabetical order.
func (b *BatchAnalysisResult) PlayerNames() []string {
	names := lo.Keys(b.PlayerStats)
	slices.Sort(names)
	return names
}

// FprintHistogram draws the distribution of the player's per-game error
// rates.
func (b *BatchAnalysisResult) FprintHistogram(w io.Writer, player string, bins int) error {
	ps, ok := b.PlayerStats[player]
	if !ok {
		return fmt.Errorf("no player named %q in batch", player)
	}
	if len(ps.gameRates) == 0 {
		_, err := fmt.Fprintln(w, "no analysed games")
		return err
	}
	// millipoints read better than tiny fractions
	rates := lo.Map(ps.gameRates, func(r float64, _ int) float64 { return r * 1000 })
	return histogram.Fprint(w, histogram.Hist(bins, rates), histogram.Linear(40))
}
