// Package board holds the backgammon position representation and the
// pure utility functions the analysis code treats as primitives: applying
// moves, swapping perspective and position keys.
package board

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// NumPoints is the number of slots per side: 24 points plus the bar.
	NumPoints = 25
	// BarPoint is the index of the bar in each side's array.
	BarPoint    = 24
	NumCheckers = 15
	// MaxSubMoves is the most checker moves one roll can produce (doubles).
	MaxSubMoves = 4
)

var (
	ErrIllegalSubMove = errors.New("illegal checker move")
	ErrBadPoint       = errors.New("invalid point number, or source is empty")
)

// Board holds the checkers of both sides. Board[1] is the side on roll and
// Board[0] its opponent. Each side counts from its own point of view:
// index 0 is its one-point, index 23 its 24-point and index 24 the bar.
type Board [2][NumPoints]int

// Initial returns the starting position.
func Initial() Board {
	var b Board
	for side := 0; side < 2; side++ {
		b[side][5] = 5
		b[side][7] = 3
		b[side][12] = 5
		b[side][23] = 2
	}
	return b
}

// SwapSides flips the board so that the other player is on roll.
func (b *Board) SwapSides() {
	b[0], b[1] = b[1], b[0]
}

// Swapped returns a flipped copy.
func (b Board) Swapped() Board {
	b.SwapSides()
	return b
}

// Checkers returns how many checkers a side still has on the board
// (including the bar).
func (b Board) Checkers(side int) int {
	n := 0
	for _, c := range b[side] {
		n += c
	}
	return n
}

// PipCount returns the pip count of both sides.
func (b Board) PipCount() [2]int {
	var pips [2]int
	for side := 0; side < 2; side++ {
		for i := 0; i < NumPoints; i++ {
			pips[side] += b[side][i] * (i + 1)
		}
	}
	return pips
}

// Validate checks checker counts and that no point is held by both sides.
func (b Board) Validate() error {
	for side := 0; side < 2; side++ {
		n := 0
		for i := 0; i < NumPoints; i++ {
			if b[side][i] < 0 {
				return fmt.Errorf("side %d has a negative count on point %d", side, i+1)
			}
			n += b[side][i]
		}
		if n > NumCheckers {
			return fmt.Errorf("side %d has %d checkers", side, n)
		}
	}
	for i := 0; i < 24; i++ {
		if b[1][i] > 0 && b[0][23-i] > 0 {
			return fmt.Errorf("point %d is occupied by both sides", i+1)
		}
	}
	return nil
}

// ApplySubMove moves one checker of the side on roll from src by roll
// pips, hitting a blot if there is one.
func (b *Board) ApplySubMove(src, roll int, checkLegal bool) error {
	dest := src - roll
	if checkLegal && (roll < 1 || roll > 6) {
		return fmt.Errorf("%w: roll %d", ErrIllegalSubMove, roll)
	}
	if src < 0 || src > BarPoint || dest >= src || b[1][src] < 1 {
		return fmt.Errorf("%w: %d", ErrBadPoint, src+1)
	}
	b[1][src]--
	if dest < 0 {
		return nil
	}
	opp := 23 - dest
	switch {
	case b[0][opp] > 1:
		return fmt.Errorf("%w: point %d is made", ErrIllegalSubMove, dest+1)
	case b[0][opp] == 1:
		b[0][opp] = 0
		b[0][BarPoint]++
		b[1][dest] = 1
	default:
		b[1][dest]++
	}
	return nil
}

// ApplyMove plays every checker move in m.
func (b *Board) ApplyMove(m Move, checkLegal bool) error {
	for i := 0; i < MaxSubMoves; i++ {
		src, dest := m[2*i], m[2*i+1]
		if src < 0 {
			break
		}
		roll := src - dest
		if dest < 0 {
			roll = src + 1
		}
		if err := b.ApplySubMove(src, roll, checkLegal); err != nil {
			return err
		}
	}
	return nil
}

func (b Board) String() string {
	var sb strings.Builder
	pips := b.PipCount()
	sb.WriteString(" 13 14 15 16 17 18 | 19 20 21 22 23 24\n")
	sb.WriteString(b.row(12, 23))
	sb.WriteString(" 12 11 10  9  8  7 |  6  5  4  3  2  1\n")
	sb.WriteString(b.row(11, 0))
	fmt.Fprintf(&sb, "bar: X %d O %d   off: X %d O %d   pips: X %d O %d\n",
		b[1][BarPoint], b[0][BarPoint],
		NumCheckers-b.Checkers(1), NumCheckers-b.Checkers(0),
		pips[1], pips[0])
	return sb.String()
}

// row renders points from..to (0-based, from the side on roll's view).
// X is the side on roll.
func (b Board) row(from, to int) string {
	var sb strings.Builder
	step := 1
	if to < from {
		step = -1
	}
	for i := from; ; i += step {
		cell := "  ."
		if n := b[1][i]; n > 0 {
			cell = fmt.Sprintf("%2dX", n)
		} else if n := b[0][23-i]; n > 0 {
			cell = fmt.Sprintf("%2dO", n)
		}
		sb.WriteString(cell)
		if i == from+5*step {
			sb.WriteString(" |")
		}
		if i == to {
			break
		}
	}
	sb.WriteString("\n")
	return sb.String()
}
