package solver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/lox/holdem-resolver/poker"
)

// UtilityMatrix holds the showdown outcome of every pair of holdings on one
// board: +1 when the row holding wins, -1 when it loses and 0 on ties or
// when the two holdings share a card or touch the board.
type UtilityMatrix struct {
	Board poker.Hand
	cells []int8
	live  []int
}

// At returns the cell for holdings i and j.
func (m *UtilityMatrix) At(i, j int) int8 {
	return m.cells[i*poker.NumHoldings+j]
}

// Live lists the holdings that do not touch the board.
func (m *UtilityMatrix) Live() []int {
	return m.live
}

// MulVec returns U·r, the expected showdown result of each row holding
// against the distribution r.
func (m *UtilityMatrix) MulVec(r []float64) []float64 {
	out := make([]float64, poker.NumHoldings)
	nz := m.support(r)
	for _, i := range m.live {
		row := m.cells[i*poker.NumHoldings:]
		sum := 0.0
		for _, j := range nz {
			sum += float64(row[j]) * r[j]
		}
		out[i] = sum
	}
	return out
}

// VecMul returns rᵀ·U.
func (m *UtilityMatrix) VecMul(r []float64) []float64 {
	out := make([]float64, poker.NumHoldings)
	for _, i := range m.support(r) {
		row := m.cells[i*poker.NumHoldings:]
		w := r[i]
		for _, j := range m.live {
			out[j] += w * float64(row[j])
		}
	}
	return out
}

func (m *UtilityMatrix) support(r []float64) []int {
	nz := make([]int, 0, len(m.live))
	for _, i := range m.live {
		if r[i] != 0 {
			nz = append(nz, i)
		}
	}
	return nz
}

// BoardKey is the canonical cache key for a board. Card order in the input
// does not matter.
func BoardKey(board poker.Hand) string {
	return board.String()
}

// BuildUtilityMatrix computes the matrix for board using up to workers
// goroutines. Each holding's strength is evaluated once; rows are dealt to
// workers round robin and each worker fills the upper triangle of its rows
// and the mirrored lower cells.
func BuildUtilityMatrix(ctx context.Context, board poker.Hand, workers int) (*UtilityMatrix, error) {
	if n := board.CountCards(); n < 3 || n > 5 {
		return nil, fmt.Errorf("utility matrix needs a 3-5 card board, got %d: %w", n, poker.ErrInvalidHand)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 1
	}

	const n = poker.NumHoldings
	m := &UtilityMatrix{Board: board, cells: make([]int8, n*n)}
	var strengths [n]uint32
	for i := 0; i < n; i++ {
		h := poker.HoldingAt(i)
		if h.Overlaps(board) {
			continue
		}
		s, err := poker.Evaluate(h | board)
		if err != nil {
			return nil, err
		}
		strengths[i] = s.Value()
		m.live = append(m.live, i)
	}

	live := m.live
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for k := w; k < len(live); k += workers {
				if k%64 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				i := live[k]
				hi := poker.HoldingAt(i)
				for _, j := range live[k+1:] {
					if hi.Overlaps(poker.HoldingAt(j)) {
						continue
					}
					var c int8
					switch {
					case strengths[i] > strengths[j]:
						c = 1
					case strengths[i] < strengths[j]:
						c = -1
					}
					m.cells[i*n+j] = c
					m.cells[j*n+i] = -c
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

// UtilityCache shares utility matrices between decisions of one hand. Each
// board is built at most once even under concurrent requests.
type UtilityCache struct {
	logger  zerolog.Logger
	workers int
	build   func(ctx context.Context, board poker.Hand, workers int) (*UtilityMatrix, error)
	group   singleflight.Group
	builds  atomic.Int64

	mu       sync.RWMutex
	matrices map[string]*UtilityMatrix
}

// NewUtilityCache creates an empty cache that builds with NumCPU workers.
func NewUtilityCache(logger zerolog.Logger) *UtilityCache {
	return &UtilityCache{
		logger:   logger,
		workers:  runtime.NumCPU(),
		build:    BuildUtilityMatrix,
		matrices: make(map[string]*UtilityMatrix),
	}
}

// SetWorkers changes the build parallelism.
func (c *UtilityCache) SetWorkers(n int) {
	if n > 0 {
		c.workers = n
	}
}

// GetOrBuild returns the matrix for board, building it on first use.
// Concurrent callers share one build; a caller whose own context is still
// live retries when the shared build was cancelled by another caller.
func (c *UtilityCache) GetOrBuild(ctx context.Context, board poker.Hand) (*UtilityMatrix, error) {
	key := BoardKey(board)
	for {
		if m, ok := c.lookup(key); ok {
			return m, nil
		}
		m, err := c.buildShared(ctx, key, board)
		if err == nil {
			return m, nil
		}
		if ctx.Err() != nil || !isContextError(err) {
			return nil, err
		}
		c.logger.Debug().Err(err).Str("board", key).Msg("Shared utility build cancelled, retrying")
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (c *UtilityCache) buildShared(ctx context.Context, key string, board poker.Hand) (*UtilityMatrix, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		if m, ok := c.lookup(key); ok {
			return m, nil
		}
		start := time.Now()
		m, err := c.build(ctx, board, c.workers)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.matrices[key] = m
		c.mu.Unlock()
		c.builds.Add(1)
		c.logger.Debug().
			Str("board", key).
			Int("live", len(m.live)).
			Dur("elapsed", time.Since(start)).
			Msg("Built utility matrix")
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*UtilityMatrix), nil
}

func (c *UtilityCache) lookup(key string) (*UtilityMatrix, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.matrices[key]
	return m, ok
}

// Reset drops every cached matrix. Call it when a hand ends.
func (c *UtilityCache) Reset() {
	c.mu.Lock()
	c.matrices = make(map[string]*UtilityMatrix)
	c.mu.Unlock()
}

// Len reports how many matrices are cached.
func (c *UtilityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matrices)
}

// Builds reports how many matrices have been built since creation.
func (c *UtilityCache) Builds() int64 {
	return c.builds.Load()
}
