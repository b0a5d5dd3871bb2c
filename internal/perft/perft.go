// Package perft counts the leaf nodes of the legal move tree. It is the
// standard way to verify move generation correctness.
package perft

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/AbdelrahmanAbdelhalim/RustyRaven/internal/board"
)

// Count returns the number of leaf nodes at the given depth. The position is
// restored before Count returns.
func Count(p *board.Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}

	var ml board.MoveList
	p.Generate(board.Legal, &ml)
	if depth == 1 {
		return uint64(ml.Len())
	}

	var nodes uint64
	for _, m := range ml.Slice() {
		p.DoMove(m)
		nodes += Count(p, depth-1)
		p.UndoMove(m)
	}
	return nodes
}

// MoveCount is the subtree size below one root move.
type MoveCount struct {
	Move  board.Move
	Nodes uint64
}

func (mc MoveCount) String() string {
	return fmt.Sprintf("%v: %d", mc.Move, mc.Nodes)
}

// Divide returns the subtree size of every legal root move, in generation
// order.
func Divide(p *board.Position, depth int) []MoveCount {
	if depth <= 0 {
		return nil
	}

	ml := p.GenerateLegalMoves()
	counts := make([]MoveCount, 0, ml.Len())
	for _, m := range ml.Slice() {
		p.DoMove(m)
		counts = append(counts, MoveCount{Move: m, Nodes: Count(p, depth-1)})
		p.UndoMove(m)
	}
	return counts
}

// Cache stores subtree sizes by position key and remaining depth.
type Cache interface {
	Get(key uint64, depth int) (nodes uint64, ok bool, err error)
	Put(key uint64, depth int, nodes uint64) error
}

// Runner splits a perft run over the root moves.
type Runner struct {
	threads int
	cache   Cache
}

// Option configures a Runner.
type Option func(*Runner)

// WithThreads sets the number of concurrent workers. Values below one mean
// one worker per CPU.
func WithThreads(n int) Option {
	return func(r *Runner) {
		r.threads = n
	}
}

// WithCache looks up and records root move subtrees in c.
func WithCache(c Cache) Option {
	return func(r *Runner) {
		r.cache = c
	}
}

// NewRunner returns a Runner configured by opts.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.threads < 1 {
		r.threads = runtime.NumCPU()
	}
	return r
}

// Result is the outcome of Runner.Run.
type Result struct {
	Nodes uint64
	Moves []MoveCount
	// CacheHits counts root moves answered by the cache.
	CacheHits int
}

// Run counts perft(depth) of p. Each root move is searched on its own clone
// of p, so p is never modified and must not be modified during the call.
// Cancelling ctx stops the run between root moves.
func (r *Runner) Run(ctx context.Context, p *board.Position, depth int) (Result, error) {
	if depth <= 0 {
		return Result{Nodes: 1}, nil
	}

	moves := p.GenerateLegalMoves().Slice()
	counts := make([]MoveCount, len(moves))
	hits := make([]bool, len(moves))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.threads)

	for i, m := range moves {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			child := p.Clone()
			child.DoMove(m)

			nodes, hit, err := r.count(child, depth-1)
			if err != nil {
				return fmt.Errorf("perft %v: %w", m, err)
			}
			counts[i] = MoveCount{Move: m, Nodes: nodes}
			hits[i] = hit
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Moves: counts}
	for i, mc := range counts {
		res.Nodes += mc.Nodes
		if hits[i] {
			res.CacheHits++
		}
	}
	return res, nil
}

func (r *Runner) count(p *board.Position, depth int) (uint64, bool, error) {
	if r.cache == nil {
		return Count(p, depth), false, nil
	}

	nodes, ok, err := r.cache.Get(p.Key(), depth)
	if err != nil {
		return 0, false, err
	}
	if ok {
		return nodes, true, nil
	}

	nodes = Count(p, depth)
	if err := r.cache.Put(p.Key(), depth, nodes); err != nil {
		return 0, false, err
	}
	return nodes, false, nil
}
