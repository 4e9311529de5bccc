package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/evaluator/pipcount"
	"github.com/domino14/bgstats/game"
	"github.com/domino14/bgstats/gameanalysis"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func analysedMatch(p0, p1, event string, winner int) *game.Match {
	gi := &game.GameInfo{MatchTo: 1, Winner: winner, Points: 1}
	m := &game.Match{
		Players: [2]string{p0, p1},
		MatchTo: 1,
		Event:   event,
		Games:   []*game.Game{{Decisions: []game.Decision{gi}}},
	}
	sc := &m.Stats
	sc.MovesAnalysed, sc.CubeAnalysed, sc.LuckAnalysed = true, true, true
	sc.TotalMoves = [2]int{10, 10}
	sc.UnforcedMoves = [2]int{8, 10}
	sc.ErrorCheckerplay = [2][2]float64{{0.1, 0.05}, {0.22, 0.11}}
	sc.TotalCube = [2]int{2, 0}
	sc.WrongTake = [2]int{1, 0}
	sc.ErrorWrongTake = [2][2]float64{{0.12, 0.06}, {}}
	return m
}

func TestAddMatch(t *testing.T) {
	is := is.New(t)
	s := tempStore(t)
	ctx := context.Background()

	m := analysedMatch("Alice", "Bob", "club", 0)
	id, err := s.AddMatch(ctx, m, false)
	is.NoErr(err)
	is.True(id > 0)

	_, err = s.AddMatch(ctx, m, false)
	is.True(errors.Is(err, ErrDuplicateMatch))

	// forcing replaces the stored copy
	id2, err := s.AddMatch(ctx, m, true)
	is.NoErr(err)
	is.True(id2 != id)
	n, err := s.MatchCount(ctx)
	is.NoErr(err)
	is.Equal(n, 1)

	_, err = s.AddMatch(ctx, &game.Match{Players: [2]string{"A", "B"}}, false)
	is.True(errors.Is(err, ErrNotAnalysed))
}

func playedMatch() *game.Match {
	g := &game.Game{Decisions: []game.Decision{
		&game.GameInfo{MatchTo: 5, Winner: -1},
		&game.NormalMove{Player: 0, Dice: [2]int{3, 1}, Move: board.NewMove(7, 4, 5, 4)},
		&game.NormalMove{Player: 1, Dice: [2]int{6, 4}, Move: board.NewMove(23, 17, 12, 8)},
		&game.Double{Player: 0},
		&game.Take{Player: 1},
	}}
	return &game.Match{Players: [2]string{"Alice", "Bob"}, MatchTo: 5, Games: []*game.Game{g}}
}

func TestDuplicateIgnoresAnalysisSettings(t *testing.T) {
	is := is.New(t)
	s := tempStore(t)
	ctx := context.Background()

	m := playedMatch()
	before := Checksum(m)
	a := gameanalysis.New(nil, gameanalysis.DefaultAnalysisConfig(), pipcount.New())
	is.NoErr(a.AnalyzeMatch(ctx, m))
	is.Equal(Checksum(m), before)
	_, err := s.AddMatch(ctx, m, false)
	is.NoErr(err)

	ac := gameanalysis.DefaultAnalysisConfig()
	ac.AnalyseLuck = false
	again := playedMatch()
	is.NoErr(gameanalysis.New(nil, ac, pipcount.New()).AnalyzeMatch(ctx, again))
	_, err = s.AddMatch(ctx, again, false)
	is.True(errors.Is(err, ErrDuplicateMatch))
	n, err := s.MatchCount(ctx)
	is.NoErr(err)
	is.Equal(n, 1)

	// a different play is a different match
	other := playedMatch()
	other.Games[0].Decisions[1].(*game.NormalMove).Dice = [2]int{1, 3}
	is.True(Checksum(other) != before)
}

func TestListDetails(t *testing.T) {
	is := is.New(t)
	s := tempStore(t)
	ctx := context.Background()

	_, err := s.AddMatch(ctx, analysedMatch("Alice", "Bob", "one", 0), false)
	is.NoErr(err)
	_, err = s.AddMatch(ctx, analysedMatch("Carol", "Alice", "two", 0), false)
	is.NoErr(err)

	pd, err := s.ListDetails(ctx, "Alice")
	is.NoErr(err)
	is.Equal(pd.MatchesPlayed, 2)
	is.Equal(pd.MatchesWon, 1)
	// (0.1+0.12)/10 as player 0, 0.22/10 as player 1
	is.True(pd.AvgErrorRate > 0.02199 && pd.AvgErrorRate < 0.02201)
	is.Equal(pd.Rating, gameanalysis.RatingIntermediate)

	pd, err = s.ListDetails(ctx, "Bob")
	is.NoErr(err)
	is.Equal(pd.MatchesWon, 0)

	_, err = s.ListDetails(ctx, "Dave")
	is.True(errors.Is(err, ErrNoPlayer))

	names, err := s.Players(ctx)
	is.NoErr(err)
	is.Equal(names, []string{"Alice", "Bob", "Carol"})
}

func TestErase(t *testing.T) {
	is := is.New(t)
	s := tempStore(t)
	ctx := context.Background()

	_, err := s.AddMatch(ctx, analysedMatch("Alice", "Bob", "one", 0), false)
	is.NoErr(err)
	_, err = s.AddMatch(ctx, analysedMatch("Carol", "Dave", "two", 1), false)
	is.NoErr(err)

	is.NoErr(s.ErasePlayer(ctx, "Bob"))
	n, _ := s.MatchCount(ctx)
	is.Equal(n, 1)
	_, err = s.ListDetails(ctx, "Bob")
	is.True(errors.Is(err, ErrNoPlayer))
	pd, err := s.ListDetails(ctx, "Alice")
	is.NoErr(err)
	is.Equal(pd.MatchesPlayed, 0)
	is.Equal(pd.AvgErrorRate, 0.0)

	is.NoErr(s.EraseAll(ctx))
	n, _ = s.MatchCount(ctx)
	is.Equal(n, 0)
	names, _ := s.Players(ctx)
	is.Equal(len(names), 0)
}

func TestStatValuesUseZeroForEmptyDenominators(t *testing.T) {
	is := is.New(t)
	var sc game.StatContext
	vals := statValues(&sc, 1)
	is.Equal(len(vals), len(statColumnNames))
	for i, name := range statColumnNames {
		switch v := vals[i].(type) {
		case float64:
			is.Equal(v, 0.0)
		case string:
			// a zero rate is the best rating
			is.True(v == "Extra-terrestrial" || v == "None")
		case int:
			is.Equal(v, 0)
		default:
			t.Fatalf("column %s has unexpected type %T", name, v)
		}
	}
}

func TestMatchResult(t *testing.T) {
	is := is.New(t)
	is.Equal(matchResult(analysedMatch("A", "B", "", 0)), 1)
	is.Equal(matchResult(analysedMatch("A", "B", "", 1)), -1)
	is.Equal(matchResult(analysedMatch("A", "B", "", -1)), 0)
	m := analysedMatch("A", "B", "", 0)
	m.MatchTo = 5
	is.Equal(matchResult(m), 0)
}
