// Package met holds match equity tables: the probability of winning a
// match from a given away score. Tables are indexed by points still
// needed minus one, from player 0's point of view.
package met

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/yaml.v3"

	"github.com/domino14/bgstats/cache"
	"github.com/domino14/bgstats/config"
)

const (
	MaxScore     = 64
	MaxCubeLevel = 7

	gammonRate = 0.25
	freeDrop2  = 0.015
	freeDrop4  = 0.004
)

var ErrBadTable = errors.New("bad match equity table")

// Table is a complete match equity table.
type Table struct {
	Name string
	// Pre[i][j] is player 0's match winning chance when player 0 needs i+1
	// points and player 1 needs j+1 points, before the Crawford game.
	Pre [MaxScore][MaxScore]float64
	// Post[p][n] is the chance of the trailer (player p) who needs n+1
	// points against a leader who needs one point.
	Post [2][MaxScore]float64
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in table: post-Crawford equities from a
// gammon-rate recursion with free-drop adjustments, and pre-Crawford
// equities from a normal approximation of the score difference.
func Default() *Table {
	defaultOnce.Do(func() {
		t := &Table{Name: "default"}
		for p := 0; p < 2; p++ {
			initPostCrawford(&t.Post[p], 0)
		}
		t.extend(0)
		defaultTable = t
	})
	return defaultTable
}

func initPostCrawford(post *[MaxScore]float64, start int) {
	at := func(i int) float64 {
		if i < 0 {
			return 1.0
		}
		return post[i]
	}
	for i := start; i < MaxScore; i++ {
		post[i] = gammonRate*0.5*at(i-4) + (1.0-gammonRate)*0.5*at(i-2)
		switch i {
		case 1:
			post[i] -= freeDrop2
		case 3:
			post[i] -= freeDrop4
		}
	}
}

var stddevTable = []float64{0, 1.24, 1.27, 1.47, 1.50, 1.60, 1.61, 1.66, 1.68, 1.70, 1.72, 1.77}

func scoreStddev(score int) float64 {
	if score > 10 {
		return 1.77
	}
	return stddevTable[score]
}

// extend fills every entry from known onwards. Entries below known are
// kept as given.
func (t *Table) extend(known int) {
	for i := known; i < MaxScore; i++ {
		s0 := i + 1
		for j := 0; j <= i; j++ {
			s1 := j + 1
			games := float64(s0+s1) / 2.0
			sigma := math.Hypot(scoreStddev(s0), scoreStddev(s1)) * math.Sqrt(games)
			if 6.0*sigma > float64(s0-s1) {
				t.Pre[i][j] = normalArea(float64(s0-s1), 6.0*sigma, sigma)
			} else {
				t.Pre[i][j] = 0.0
			}
		}
	}
	for i := 0; i < MaxScore; i++ {
		from := i + 1
		if i < known {
			from = known
		}
		for j := from; j < MaxScore; j++ {
			t.Pre[i][j] = 1.0 - t.Pre[j][i]
		}
	}
}

func normalArea(lo, hi, sigma float64) float64 {
	n := distuv.Normal{Mu: 0, Sigma: sigma}
	return n.CDF(hi) - n.CDF(lo)
}

// GetME returns the match winning chance of player if whoWins wins points
// points from the given score.
func (t *Table) GetME(score0, score1, matchTo, player, points, whoWins int, crawford bool) float64 {
	n0 := matchTo - (score0 + (1-whoWins)*points) - 1
	n1 := matchTo - (score1 + whoWins*points) - 1

	switch {
	case n0 < 0:
		if player > 0 {
			return 0.0
		}
		return 1.0
	case n1 < 0:
		if player > 0 {
			return 1.0
		}
		return 0.0
	}
	n0 = min(n0, MaxScore-1)
	n1 = min(n1, MaxScore-1)

	if crawford || matchTo-score0 == 1 || matchTo-score1 == 1 {
		// the next game is post-Crawford
		if n0 == 0 {
			if player > 0 {
				return t.Post[1][n1]
			}
			return 1.0 - t.Post[1][n1]
		}
		if player > 0 {
			return 1.0 - t.Post[0][n0]
		}
		return t.Post[0][n0]
	}
	if player > 0 {
		return 1.0 - t.Pre[n0][n1]
	}
	return t.Pre[n0][n1]
}

// GammonPrices returns the gammon and backgammon prices at a match score:
// [0] gammon price for player 0, [1] for player 1, [2] and [3] the
// backgammon prices.
func (t *Table) GammonPrices(score0, score1, matchTo, cube int) [4]float64 {
	const epsilon = 1.0e-7
	var gp [4]float64

	win := t.GetME(score0, score1, matchTo, 0, cube, 0, false)
	winG := t.GetME(score0, score1, matchTo, 0, 2*cube, 0, false)
	winBG := t.GetME(score0, score1, matchTo, 0, 3*cube, 0, false)
	lose := t.GetME(score0, score1, matchTo, 0, cube, 1, false)
	loseG := t.GetME(score0, score1, matchTo, 0, 2*cube, 1, false)
	loseBG := t.GetME(score0, score1, matchTo, 0, 3*cube, 1, false)

	center := (win + lose) / 2.0
	if math.Abs(win-center) > epsilon {
		gp[0] = (winG-center)/(win-center) - 1.0
		gp[1] = (center-loseG)/(win-center) - 1.0
		gp[2] = (winBG-center)/(win-center) - (gp[0] + 1.0)
		gp[3] = (center-loseBG)/(win-center) - (gp[1] + 1.0)
	}
	for i := range gp {
		gp[i] = max(gp[i], 0.0)
	}
	return gp
}

type tableFile struct {
	Name         string      `yaml:"name"`
	PreCrawford  [][]float64 `yaml:"pre-crawford"`
	PostCrawford []float64   `yaml:"post-crawford"`
}

// Parse builds a table from YAML. Rows of the pre-Crawford table must be
// square; both parts are extended to the full size the same way the
// default table is built.
func Parse(data []byte) (*Table, error) {
	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadTable, err)
	}
	n := len(tf.PreCrawford)
	if n > MaxScore || len(tf.PostCrawford) > MaxScore {
		return nil, fmt.Errorf("%w: more than %d scores", ErrBadTable, MaxScore)
	}
	t := &Table{Name: tf.Name}
	for i, row := range tf.PreCrawford {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrBadTable, i, len(row), n)
		}
		for j, v := range row {
			if v < 0 || v > 1 {
				return nil, fmt.Errorf("%w: entry %d,%d out of range", ErrBadTable, i, j)
			}
			t.Pre[i][j] = v
		}
	}
	for p := 0; p < 2; p++ {
		copy(t.Post[p][:], tf.PostCrawford)
		initPostCrawford(&t.Post[p], len(tf.PostCrawford))
	}
	t.extend(n)
	return t, nil
}

func loadFile(_ *config.Config, key string) (*Table, error) {
	path := key[len("met:"):]
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load returns the table stored in a YAML file, or the default table if
// path is empty. Tables are cached by path.
func Load(cfg *config.Config, path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	return cache.LoadTyped(cfg, "met:"+path, loadFile)
}
