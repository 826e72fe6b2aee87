package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tmijieux/tistouchess/internal/board"
)

// DefaultDepth is the depth limit when a "go" gives no depth, with or
// without a clock.
const DefaultDepth = 7

// ErrEngineBusy is returned when a search is started while one runs.
var ErrEngineBusy = errors.New("engine already running")

// SearchInfo is the per-iteration report passed to the OnInfo callback.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	NPS   uint64
	Time  time.Duration
	PV    []board.Move
}

// SearchResult summarizes one completed search.
type SearchResult struct {
	Best    board.Move
	Found   bool
	Nodes   uint64
	Elapsed time.Duration
}

// Engine owns the search state: the transposition table, the killer
// lists, the node counters and the small block of atomics shared with
// the timer goroutine and the controller.
type Engine struct {
	tt           *Table
	killers      [][]killerMove
	defaultDepth int

	// Per-iteration node counters, reset by the driver.
	nodes  uint64
	qnodes uint64

	// Cross-goroutine state. runID invalidates timers from earlier
	// searches that fire late.
	runID         atomic.Uint64
	stopRequired  atomic.Bool
	stopByTimeout atomic.Bool
	running       atomic.Bool

	mu   sync.Mutex
	done chan struct{}

	// OnInfo, when set, receives one report per completed iteration.
	OnInfo func(SearchInfo)
}

// New creates an engine with a transposition table of the given bucket
// count (DefaultTableSize when 0).
func New(ttCapacity int) *Engine {
	return &Engine{tt: NewTable(ttCapacity), defaultDepth: DefaultDepth}
}

// SetDefaultDepth overrides the depth limit used when a "go" carries no
// depth.
func (e *Engine) SetDefaultDepth(depth int) {
	if depth > 0 {
		e.defaultDepth = depth
	}
}

// NewGame clears the transposition table between games.
func (e *Engine) NewGame() {
	e.tt.Clear()
	e.killers = nil
}

// IsRunning reports whether a search is in flight.
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// Table exposes the transposition table for statistics.
func (e *Engine) Table() *Table {
	return e.tt
}

// ResizeTable replaces the transposition table. Must not be called
// during a search.
func (e *Engine) ResizeTable(capacity int) {
	e.tt = NewTable(capacity)
}

// Search runs a full search synchronously and returns its result.
func (e *Engine) Search(pos *board.Position, params GoParams) (SearchResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return SearchResult{}, ErrEngineBusy
	}
	done := make(chan struct{})
	e.mu.Lock()
	e.done = done
	e.mu.Unlock()
	defer func() {
		e.running.Store(false)
		e.stopRequired.Store(false)
		e.stopByTimeout.Store(false)
		close(done)
	}()
	return e.run(pos, params), nil
}

// StartSearch launches a search in the background; onDone receives the
// result when it finishes. Returns ErrEngineBusy when a search is
// already running.
func (e *Engine) StartSearch(pos *board.Position, params GoParams, onDone func(SearchResult)) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrEngineBusy
	}
	done := make(chan struct{})
	e.mu.Lock()
	e.done = done
	e.mu.Unlock()

	go func() {
		res := e.run(pos, params)
		e.running.Store(false)
		e.stopRequired.Store(false)
		e.stopByTimeout.Store(false)
		close(done)
		if onDone != nil {
			onDone(res)
		}
	}()
	return nil
}

// Stop requests cancellation and waits for the running search to
// return. Idempotent; a no-op when nothing runs.
func (e *Engine) Stop() {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done == nil || !e.running.Load() {
		return
	}
	e.stopRequired.Store(true)
	<-done
}

// run executes one search on a private copy of the position: arms the
// timeout timer, drives iterative deepening and reports the result.
func (e *Engine) run(pos *board.Position, params GoParams) SearchResult {
	depth := params.Depth
	if depth <= 0 {
		depth = e.defaultDepth
	}
	budget := allocateTime(params, pos)
	id := e.runID.Add(1)

	if budget > 0 {
		time.AfterFunc(time.Duration(budget)*time.Millisecond, func() {
			if e.running.Load() && e.runID.Load() == id {
				e.stopByTimeout.Store(true)
				e.stopRequired.Store(true)
			}
		})
	}

	// The search mutates its board through make/unmake; a private copy
	// keeps the caller's position untouched whatever happens.
	p := *pos

	start := time.Now()
	best, found, totalNodes := e.iterativeDeepening(&p, depth, budget)
	return SearchResult{
		Best:    best,
		Found:   found,
		Nodes:   totalNodes,
		Elapsed: time.Since(start),
	}
}

// iterativeDeepening runs depth 1..maxDepth passes. Each pass feeds
// the next: the previous PV steers ordering, and the root move list is
// re-sorted by the scores of the completed pass. A pass cut short by
// the clock is discarded; the last fully completed pass supplies the
// best move.
func (e *Engine) iterativeDeepening(p *board.Position, maxDepth int, budgetMs int64) (board.Move, bool, uint64) {
	color := 1
	if p.SideToMove == board.Black {
		color = -1
	}

	e.killers = make([][]killerMove, maxDepth+1)
	var (
		best       board.Move
		found      bool
		totalNodes uint64
		previousPV []board.Move
		rootMoves  []searchMove
	)
	start := time.Now()

	for depth := 1; depth <= maxDepth; depth++ {
		pv := make([]board.Move, 0, depth)
		e.nodes, e.qnodes = 0, 0
		iterStart := time.Now()

		score := e.negamax(p, depth, depth, 0, color,
			-scoreInfinite, +scoreInfinite, &pv, previousPV, &rootMoves)

		iterNodes := e.nodes + e.qnodes
		totalNodes += iterNodes

		if e.stopByTimeout.Load() && budgetMs > 0 &&
			time.Since(start).Milliseconds() > budgetMs {
			return best, found, totalNodes
		}
		if e.stopRequired.Load() {
			return best, found, totalNodes
		}
		if len(pv) == 0 {
			return best, found, totalNodes
		}

		elapsed := time.Since(iterStart)
		if e.OnInfo != nil {
			seconds := elapsed.Seconds()
			if seconds < 0.001 {
				seconds = 0.001
			}
			e.OnInfo(SearchInfo{
				Depth: depth,
				Score: score,
				Nodes: iterNodes,
				NPS:   uint64(float64(iterNodes) / seconds),
				Time:  elapsed,
				PV:    pv,
			})
		}

		best = pv[0]
		found = true
		previousPV = pv
	}
	return best, found, totalNodes
}

// Perft counts legal move paths to the given depth, filling
// counters[maxDepth-remaining] with the number of legal moves found at
// each level. Returns the leaf count.
func Perft(p *board.Position, maxDepth, remaining int, counters []uint64) uint64 {
	if remaining == 0 {
		return 1
	}

	var ml board.MoveList
	p.GeneratePseudoLegalMoves(&ml)
	mover := p.SideToMove

	var total uint64
	numLegal := 0
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		undo := p.MakeMove(m)
		if p.KingChecked(mover) {
			p.UnmakeMove(m, undo)
			continue
		}
		numLegal++
		total += Perft(p, maxDepth, remaining-1, counters)
		p.UnmakeMove(m, undo)
	}
	counters[maxDepth-remaining] += uint64(numLegal)
	return total
}
