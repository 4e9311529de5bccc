package board

// GeneratedMove is a legal move together with the position it leads to.
type GeneratedMove struct {
	Move  Move
	Key   Key
	Board Board
	// number of checkers moved and pips used
	NumMoves int
	NumPips  int
}

type moveGen struct {
	moves    []GeneratedMove
	maxMoves int
	maxPips  int
}

// GenerateMoves returns every legal move for the side on roll with dice d0
// and d1. Only moves using the maximum number of dice (and pips) are
// legal, and moves leading to the same position are merged.
// A position where no checker can move yields a single empty move.
func GenerateMoves(b Board, d0, d1 int) []GeneratedMove {
	roll := [4]int{d0, d1}
	if d0 == d1 {
		roll[2], roll[3] = d0, d0
	}
	g := &moveGen{}
	cur := NoMove
	g.sub(roll, 0, 23, 0, b, &cur)
	if d0 != d1 {
		roll[0], roll[1] = roll[1], roll[0]
		g.sub(roll, 0, 23, 0, b, &cur)
	}
	if len(g.moves) == 0 {
		g.moves = append(g.moves, GeneratedMove{
			Move:  NoMove,
			Key:   PositionKey(b),
			Board: b,
		})
	}
	return g.moves
}

func (g *moveGen) sub(roll [4]int, depth, pip, pips int, b Board, cur *Move) bool {
	if depth > 3 || roll[depth] == 0 {
		return true
	}
	die := roll[depth]
	if b[1][BarPoint] > 0 {
		if b[0][die-1] >= 2 {
			return true
		}
		cur[depth*2] = BarPoint
		cur[depth*2+1] = BarPoint - die
		nb := b
		_ = nb.ApplySubMove(BarPoint, die, true)
		if g.sub(roll, depth+1, 23, pips+die, nb, cur) {
			g.save(depth+1, pips+die, *cur, nb)
		}
		return false
	}

	used := false
	for i := pip; i >= 0; i-- {
		if b[1][i] == 0 || !legalSubMove(b, i, die) {
			continue
		}
		cur[depth*2] = i
		cur[depth*2+1] = i - die
		nb := b
		_ = nb.ApplySubMove(i, die, true)
		next := 23
		if roll[0] == roll[1] {
			next = i
		}
		if g.sub(roll, depth+1, next, pips+die, nb, cur) {
			g.save(depth+1, pips+die, *cur, nb)
		}
		used = true
	}
	return !used
}

func legalSubMove(b Board, src, die int) bool {
	dest := src - die
	if dest >= 0 {
		return b[0][23-dest] < 2
	}
	// bearing off
	back := 24
	for ; back > 0; back-- {
		if b[1][back] > 0 {
			break
		}
	}
	return back <= 5 && (src == back || dest == -1)
}

func (g *moveGen) save(numMoves, pips int, cur Move, b Board) {
	if numMoves < g.maxMoves || pips < g.maxPips {
		return
	}
	if numMoves > g.maxMoves || pips > g.maxPips {
		g.moves = g.moves[:0]
	}
	g.maxMoves = numMoves
	g.maxPips = pips

	m := NoMove
	for i := 0; i < numMoves*2; i++ {
		m[i] = max(cur[i], -1)
	}
	key := PositionKey(b)
	for i := range g.moves {
		if !EqualKeys(key, g.moves[i].Key) {
			continue
		}
		if numMoves > g.moves[i].NumMoves || pips > g.moves[i].NumPips {
			g.moves[i].Move = m
			g.moves[i].NumMoves = numMoves
			g.moves[i].NumPips = pips
		}
		return
	}
	g.moves = append(g.moves, GeneratedMove{
		Move:     m,
		Key:      key,
		Board:    b,
		NumMoves: numMoves,
		NumPips:  pips,
	})
}
