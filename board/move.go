package board

// Move lists up to four checker moves as (source, destination) pairs.
// Unused pairs are -1; a destination of -1 means the checker was borne off.
type Move [2 * MaxSubMoves]int

// NoMove is the empty move, played when a side cannot move.
var NoMove = Move{-1, -1, -1, -1, -1, -1, -1, -1}

// NewMove builds a Move from flat (source, destination) pairs.
func NewMove(pairs ...int) Move {
	m := NoMove
	for i := 0; i+1 < len(pairs) && i < len(m); i += 2 {
		m[i] = pairs[i]
		m[i+1] = pairs[i+1]
		if m[i+1] < -1 {
			m[i+1] = -1
		}
	}
	return m
}

// Len returns the number of checker moves in m.
func (m Move) Len() int {
	n := 0
	for i := 0; i < MaxSubMoves; i++ {
		if m[2*i] < 0 {
			break
		}
		n++
	}
	return n
}

// Key is a compact encoding of a position, 4 bits per point.
type Key [7]uint32

// PositionKey encodes b. Two positions with equal keys are identical.
func PositionKey(b Board) Key {
	var k Key
	for i, j := 0, 0; i < 3; i, j = i+1, j+8 {
		for p := 0; p < 8; p++ {
			k[i] |= uint32(b[1][j+p]) << (4 * p)
			k[i+3] |= uint32(b[0][j+p]) << (4 * p)
		}
	}
	k[6] = uint32(b[0][BarPoint]) | uint32(b[1][BarPoint])<<4
	return k
}

// EqualKeys reports whether two keys describe the same position.
func EqualKeys(a, b Key) bool {
	return a == b
}

// Board decodes the key back into a position.
func (k Key) Board() Board {
	var b Board
	for i, j := 0, 0; i < 3; i, j = i+1, j+8 {
		for p := 0; p < 8; p++ {
			b[1][j+p] = int(k[i]>>(4*p)) & 0x0f
			b[0][j+p] = int(k[i+3]>>(4*p)) & 0x0f
		}
	}
	b[0][BarPoint] = int(k[6]) & 0x0f
	b[1][BarPoint] = int(k[6]>>4) & 0x0f
	return b
}
