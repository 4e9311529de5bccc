package evaluator

import (
	"context"
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/cespare/xxhash"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/domino14/bgstats/board"
	"github.com/domino14/bgstats/equity"
)

const (
	// rough per-entry footprint, including the LRU's bookkeeping
	entrySize = 160

	minCacheEntries = 1 << 12
	maxCacheEntries = 1 << 22
)

// Cached wraps an Evaluator and memoises position evaluations and best
// moves. Luck analysis asks for the same positions over and over.
type Cached struct {
	Evaluator

	evals *lru.Cache[uint64, equity.Outputs]
	moves *lru.Cache[uint64, board.Board]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCached sizes the caches to use about fractionOfMemory of the
// machine's memory.
func NewCached(ev Evaluator, fractionOfMemory float64) (*Cached, error) {
	totalMem := memory.TotalMemory()
	n := int(fractionOfMemory * float64(totalMem) / entrySize)
	n = min(max(n, minCacheEntries), maxCacheEntries)
	evals, err := lru.New[uint64, equity.Outputs](n)
	if err != nil {
		return nil, err
	}
	moves, err := lru.New[uint64, board.Board](n / 4)
	if err != nil {
		return nil, err
	}
	log.Info().Int("num-elems", n).
		Uint64("total-system-memory-bytes", totalMem).
		Msg("eval-cache-size")
	return &Cached{Evaluator: ev, evals: evals, moves: moves}, nil
}

type hasher struct {
	buf []byte
}

func (h *hasher) putInt(v int) {
	h.buf = binary.LittleEndian.AppendUint64(h.buf, uint64(v))
}

func (h *hasher) putBool(v bool) {
	if v {
		h.buf = append(h.buf, 1)
	} else {
		h.buf = append(h.buf, 0)
	}
}

func (h *hasher) putFloat(v float64) {
	h.buf = binary.LittleEndian.AppendUint64(h.buf, math.Float64bits(v))
}

func (h *hasher) putBoard(b board.Board) {
	for _, w := range board.PositionKey(b) {
		h.buf = binary.LittleEndian.AppendUint32(h.buf, w)
	}
}

func (h *hasher) putCube(ci equity.CubeInfo) {
	h.putInt(ci.Cube)
	h.putInt(ci.CubeOwner)
	h.putInt(ci.Move)
	h.putInt(ci.MatchTo)
	h.putInt(ci.Score[0])
	h.putInt(ci.Score[1])
	h.putBool(ci.Crawford)
	h.putBool(ci.Jacoby)
}

func (h *hasher) sum() uint64 {
	return xxhash.Sum64(h.buf)
}

func (c *Cached) EvaluatePosition(ctx context.Context, b board.Board, ci equity.CubeInfo, ec EvalContext) (equity.Outputs, error) {
	// noisy evaluations are not repeatable
	if ec.Noise > 0 && !ec.Deterministic {
		return c.Evaluator.EvaluatePosition(ctx, b, ci, ec)
	}
	h := &hasher{buf: make([]byte, 0, 128)}
	h.buf = append(h.buf, 'e')
	h.putBoard(b)
	h.putCube(ci)
	h.putBool(ec.Cubeful)
	h.putInt(ec.Plies)
	h.putBool(ec.Prune)
	h.putFloat(ec.Noise)
	key := h.sum()
	if out, ok := c.evals.Get(key); ok {
		c.hits.Add(1)
		return out, nil
	}
	c.misses.Add(1)
	out, err := c.Evaluator.EvaluatePosition(ctx, b, ci, ec)
	if err != nil {
		return out, err
	}
	c.evals.Add(key, out)
	return out, nil
}

func (c *Cached) FindBestMove(ctx context.Context, b board.Board, d0, d1 int, ci equity.CubeInfo) (board.Board, error) {
	h := &hasher{buf: make([]byte, 0, 128)}
	h.buf = append(h.buf, 'm')
	h.putBoard(b)
	h.putCube(ci)
	h.putInt(min(d0, d1))
	h.putInt(max(d0, d1))
	key := h.sum()
	if nb, ok := c.moves.Get(key); ok {
		c.hits.Add(1)
		return nb, nil
	}
	c.misses.Add(1)
	nb, err := c.Evaluator.FindBestMove(ctx, b, d0, d1, ci)
	if err != nil {
		return nb, err
	}
	c.moves.Add(key, nb)
	return nb, nil
}

// Stats returns cache hits and misses so far.
func (c *Cached) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
