package board

import (
	"fmt"
	"strconv"
	"strings"
)

func pointName(p int) string {
	switch {
	case p == BarPoint:
		return "bar"
	case p < 0:
		return "off"
	}
	return strconv.Itoa(p + 1)
}

// FormatMove renders m as played from b in the usual notation, for example
// "13/10 6/5*" or "bar/22 6/off". Hits are marked with '*'.
func FormatMove(b Board, m Move) string {
	if m.Len() == 0 {
		return "cannot move"
	}
	parts := make([]string, 0, MaxSubMoves)
	for i := 0; i < m.Len(); i++ {
		src, dest := m[2*i], m[2*i+1]
		s := pointName(src) + "/" + pointName(dest)
		if dest >= 0 && b[0][23-dest] == 1 {
			s += "*"
		}
		roll := src - dest
		if dest < 0 {
			roll = src + 1
		}
		_ = b.ApplySubMove(src, roll, false)
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func parsePoint(s string) (int, error) {
	switch strings.ToLower(s) {
	case "bar", "b":
		return BarPoint, nil
	case "off", "o", "0":
		return -1, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 25 {
		return 0, fmt.Errorf("bad point %q", s)
	}
	return n - 1, nil
}

// ParseMove parses notation such as "13/10 6/5", "bar/22", "6/off",
// "13/7(2)" or "24/18/13". Hit markers are ignored.
func ParseMove(s string) (Move, error) {
	var pairs []int
	for _, tok := range strings.Fields(s) {
		tok = strings.ReplaceAll(tok, "*", "")
		count := 1
		if i := strings.Index(tok, "("); i >= 0 {
			if !strings.HasSuffix(tok, ")") {
				return NoMove, fmt.Errorf("bad repeat in %q", tok)
			}
			n, err := strconv.Atoi(tok[i+1 : len(tok)-1])
			if err != nil || n < 1 || n > MaxSubMoves {
				return NoMove, fmt.Errorf("bad repeat in %q", tok)
			}
			count = n
			tok = tok[:i]
		}
		pts := strings.Split(tok, "/")
		if len(pts) < 2 {
			return NoMove, fmt.Errorf("bad checker move %q", tok)
		}
		for c := 0; c < count; c++ {
			for i := 0; i+1 < len(pts); i++ {
				src, err := parsePoint(pts[i])
				if err != nil {
					return NoMove, err
				}
				dest, err := parsePoint(pts[i+1])
				if err != nil {
					return NoMove, err
				}
				if src < 0 || dest >= src {
					return NoMove, fmt.Errorf("bad checker move %q", tok)
				}
				pairs = append(pairs, src, dest)
			}
		}
	}
	if len(pairs) > 2*MaxSubMoves {
		return NoMove, fmt.Errorf("too many checker moves in %q", s)
	}
	return NewMove(pairs...), nil
}
