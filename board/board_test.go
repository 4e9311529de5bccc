package board

import (
	"testing"

	"github.com/matryer/is"
)

func TestInitialPips(t *testing.T) {
	is := is.New(t)
	b := Initial()
	is.Equal(b.PipCount(), [2]int{167, 167})
	is.NoErr(b.Validate())
	is.Equal(b.Checkers(0), 15)
}

func TestKeyRoundTrip(t *testing.T) {
	is := is.New(t)
	b := Initial()
	b[1][BarPoint] = 2
	b[1][23] = 0
	k := PositionKey(b)
	is.Equal(k.Board(), b)
	is.True(EqualKeys(k, PositionKey(k.Board())))
	is.True(!EqualKeys(k, PositionKey(Initial())))
}

func TestApplyMoveHit(t *testing.T) {
	is := is.New(t)
	var b Board
	b[1][12] = 1
	b[0][14] = 1 // blot on our 10 point
	m := NewMove(12, 9)
	is.Equal(FormatMove(b, m), "13/10*")
	is.NoErr(b.ApplyMove(m, true))
	is.Equal(b[1][9], 1)
	is.Equal(b[0][14], 0)
	is.Equal(b[0][BarPoint], 1)
}

func TestApplyMoveBlocked(t *testing.T) {
	is := is.New(t)
	var b Board
	b[1][12] = 1
	b[0][14] = 2
	err := b.ApplyMove(NewMove(12, 9), true)
	is.True(err != nil)
}

func TestGenerateOpening31(t *testing.T) {
	is := is.New(t)
	b := Initial()
	moves := GenerateMoves(b, 3, 1)
	is.True(len(moves) > 1)

	want := b
	is.NoErr(want.ApplyMove(NewMove(7, 4, 5, 4), true))
	wantKey := PositionKey(want)
	found := 0
	for _, m := range moves {
		is.Equal(m.NumMoves, 2)
		is.Equal(m.NumPips, 4)
		if EqualKeys(m.Key, wantKey) {
			found++
		}
	}
	is.Equal(found, 1)
}

func TestGenerateMaxDiceRule(t *testing.T) {
	is := is.New(t)
	var b Board
	b[1][5] = 1
	b[0][0] = 15
	moves := GenerateMoves(b, 6, 5)
	is.Equal(len(moves), 1)
	is.Equal(moves[0].Move.Len(), 2)
	is.Equal(FormatMove(b, moves[0].Move), "6/1 1/off")
}

func TestGenerateNoMoves(t *testing.T) {
	is := is.New(t)
	var b Board
	b[1][BarPoint] = 1
	b[1][10] = 14
	b[0][18] = 15 - 2
	b[0][5] = 2
	moves := GenerateMoves(b, 6, 6)
	is.Equal(len(moves), 1)
	is.Equal(moves[0].Move, NoMove)
	is.Equal(FormatMove(b, moves[0].Move), "cannot move")
}

func TestParseMove(t *testing.T) {
	is := is.New(t)
	m, err := ParseMove("13/7(2)")
	is.NoErr(err)
	is.Equal(m, NewMove(12, 6, 12, 6))

	m, err = ParseMove("24/18/13")
	is.NoErr(err)
	is.Equal(m, NewMove(23, 17, 17, 12))

	m, err = ParseMove("bar/22 6/off*")
	is.NoErr(err)
	is.Equal(m, NewMove(24, 21, 5, -1))

	_, err = ParseMove("x/y")
	is.True(err != nil)
	_, err = ParseMove("5/9")
	is.True(err != nil)
}
