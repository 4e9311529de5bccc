// Package game holds the recorded form of a backgammon match: decision
// records, games, matches, the state they are replayed through, and the
// statistics accumulated while analysing them.
package game

// Game is the list of decisions of one game. The first decision is always
// a *GameInfo.
type Game struct {
	Decisions []Decision
}

// Info returns the game's GameInfo record.
func (g *Game) Info() (*GameInfo, error) {
	if len(g.Decisions) == 0 {
		return nil, ErrBadDecisions
	}
	gi, ok := g.Decisions[0].(*GameInfo)
	if !ok {
		return nil, ErrBadDecisions
	}
	return gi, nil
}

// Match is a sequence of games between two players. MatchTo of zero is a
// money session.
type Match struct {
	Players [2]string
	MatchTo int
	Event   string
	Round   string
	Place   string
	Date    string
	Games   []*Game

	// Stats is the match-wide accumulator, filled in by analysis.
	Stats StatContext
}

// Money reports whether this is a money session rather than a match.
func (m *Match) Money() bool {
	return m.MatchTo == 0
}
