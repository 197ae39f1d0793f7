package gibbs

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	log "github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/wangkuiyi/parallel"
)

var (
	ErrEmptyCorpus = errors.New("corpus contains no token")
	ErrClosed      = errors.New("engine is closed")
)

type State int

const (
	Uninitialized State = iota
	Initialized
	Sampling
	Stopped
	Aborted
	Closed
)

var stateNames = []string{
	"Uninitialized", "Initialized", "Sampling", "Stopped", "Aborted", "Closed"}

func (s State) String() string {
	if int(s) < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// AbortError reports a failure inside a sampling cell.  The counts may
// violate their invariants afterwards, so the engine refuses to run
// again.
type AbortError struct {
	Cycle int
	Epoch int
	Err   error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("aborted in cycle %d epoch %d: %v", e.Cycle, e.Epoch, e.Err)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}

// CycleStats describes one completed cycle.  Perplexity is 0 unless it
// was computed in this cycle.
type CycleStats struct {
	Cycle      int
	Moves      int
	Visited    int
	Duration   time.Duration
	Perplexity float64
	Sampled    bool
	Optimized  bool
}

// Engine runs parallel collapsed Gibbs sampling for LDA.
//
// A cycle consists of one epoch per partition.  In every epoch the
// coordinator (the goroutine calling Run) queues one cell per document
// partition to the pool, waits for all sweeps, then folds their deltas
// into the shared tokens-per-topic vector before it queues the next
// epoch.  Only the coordinator writes that vector and the priors.
type Engine struct {
	cfg       Config
	id        string
	vocab     *Vocabulary
	store     *TokenStore
	model     *Model
	parts     *Partitioning
	optimizer *Optimizer
	workers   int
	rngs      []*rand.Rand

	cells  chan cell
	sweeps chan sweep
	pool   sync.WaitGroup

	phiSum   [][]float64 // [word][topic]
	thetaSum [][]float64 // [topic][doc]
	samples  int

	running   sync.Mutex // serializes Run
	mu        sync.Mutex // guards everything below and the counts
	state     State
	cycle     int
	abort     error
	observers []func(CycleStats)
}

// NewEngine builds the vocabulary and token store of docs, assigns
// every token a uniformly random topic, builds the counts and starts
// the worker pool.  The caller must Close the engine.
func NewEngine(docs [][]string, cfg Config) (*Engine, error) {
	if e := cfg.Validate(); e != nil {
		return nil, fmt.Errorf("NewEngine: %w", e)
	}
	vocab := NewVocabulary().Build(docs)
	store := NewTokenStore(docs, vocab)
	if store.Len() == 0 {
		return nil, ErrEmptyCorpus
	}

	model := NewModel(cfg.Topics, vocab.Len(), store.NumDocs(), cfg.Alpha, cfg.Beta)
	rng := rand.New(rand.NewSource(cfg.Seed))
	for i := 0; i < store.Len(); i++ {
		store.SetTopic(i, int32(rng.Intn(cfg.Topics)))
	}
	model.Apply(store)

	parts := NewPartitioning(cfg.NumPartitions(), store, vocab.Len())
	workers := cfg.NumWorkers()
	if workers > parts.Parts {
		workers = parts.Parts
	}

	e := &Engine{
		cfg:       cfg,
		id:        uuid.New().String(),
		vocab:     vocab,
		store:     store,
		model:     model,
		parts:     parts,
		optimizer: NewOptimizer(cfg.Topics),
		workers:   workers,
		rngs:      make([]*rand.Rand, parts.Parts),
		cells:     make(chan cell, parts.Parts),
		sweeps:    make(chan sweep, parts.Parts),
		phiSum:    make([][]float64, vocab.Len()),
		thetaSum:  make([][]float64, cfg.Topics),
	}
	for p := range e.rngs {
		e.rngs[p] = rand.New(rand.NewSource(cfg.Seed + int64(p) + 1))
	}
	for w := range e.phiSum {
		e.phiSum[w] = make([]float64, cfg.Topics)
	}
	for t := range e.thetaSum {
		e.thetaSum[t] = make([]float64, store.NumDocs())
	}

	for i := 0; i < workers; i++ {
		e.pool.Add(1)
		go e.work()
	}
	e.state = Initialized

	log.Infof("Engine %s: %d tokens, %d documents, %d words, %d topics, "+
		"%d partitions, %d workers", e.id, store.Len(), store.NumDocs(),
		vocab.Len(), cfg.Topics, parts.Parts, workers)
	return e, nil
}

func (e *Engine) work() {
	defer e.pool.Done()
	s := NewSampler(e.model, e.store, e.parts)
	for c := range e.cells {
		e.sweeps <- s.Sample(c, e.rngs[c.Row])
	}
}

// OnCycle registers f to be called by Run after every cycle.  f runs
// while the engine is locked and must not call methods of the engine.
func (e *Engine) OnCycle(f func(CycleStats)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, f)
}

// Run runs the given number of cycles.  Cycles are numbered across
// calls, so burn-in, sample lag and optimize interval refer to the
// total number of cycles run by the engine.  Concurrent calls are
// serialized; accessors may be called between cycles.
//
// ctx is checked before each epoch.  A cancelled (or timed out) Run
// returns an error wrapping ctx.Err(); the counts are consistent and
// Run may be called again.  A failure inside a cell returns an
// *AbortError, and so does every later Run.
func (e *Engine) Run(ctx context.Context, cycles int) error {
	e.running.Lock()
	defer e.running.Unlock()

	for c := 0; c < cycles; c++ {
		if err := e.step(ctx); err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case Closed:
		return ErrClosed
	case Aborted:
		return e.abort
	}
	if cycles > 0 {
		e.state = Stopped
	}
	return nil
}

// step runs one cycle while holding e.mu.
func (e *Engine) step(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case Closed:
		return ErrClosed
	case Aborted:
		return e.abort
	}

	e.state = Sampling
	stats, err := e.runCycle(ctx)
	if err != nil {
		var ae *AbortError
		if errors.As(err, &ae) {
			e.state = Aborted
			e.abort = err
			log.Errorf("Engine %s: %v", e.id, err)
		} else {
			e.state = Stopped
			log.Infof("Engine %s: %v", e.id, err)
		}
		return err
	}
	e.cycle++
	stats.Cycle = e.cycle
	e.afterCycle(&stats)
	for _, f := range e.observers {
		f(stats)
	}
	return nil
}

func (e *Engine) runCycle(ctx context.Context) (CycleStats, error) {
	var stats CycleStats
	start := time.Now()
	q := e.parts.Parts
	global := e.model.TokensInTopic
	deltas := make([]sweep, q)

	for epoch := 0; epoch < q; epoch++ {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("cycle %d cancelled before epoch %d: %w",
				e.cycle+1, epoch, err)
		}

		for row := 0; row < q; row++ {
			e.cells <- cell{
				Cycle:  e.cycle + 1,
				Epoch:  epoch,
				Row:    row,
				Column: e.parts.Column(epoch, row),
				Global: global,
			}
		}

		var failed error
		for i := 0; i < q; i++ {
			s := <-e.sweeps
			if s.Err != nil {
				if failed == nil {
					failed = s.Err
				}
				continue
			}
			deltas[s.Row] = s
		}
		if failed != nil {
			return stats, &AbortError{Cycle: e.cycle + 1, Epoch: epoch, Err: failed}
		}

		// Every cell has returned, nobody reads global any more.
		for _, s := range deltas {
			global.Add(s.Delta)
			stats.Moves += s.Moves
			stats.Visited += s.Visited
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (e *Engine) afterCycle(stats *CycleStats) {
	if since := e.cycle - e.cfg.BurnIn; since > 0 {
		if since%e.cfg.SampleLag == 0 {
			e.accumulate()
			stats.Sampled = true
		}
		if e.cfg.OptimizeInterval > 0 && since%e.cfg.OptimizeInterval == 0 {
			e.optimize()
			stats.Optimized = true
		}
	}

	if e.cfg.PerplexityInterval > 0 && e.cycle%e.cfg.PerplexityInterval == 0 {
		pp, err := e.perplexity()
		if err != nil {
			log.Warningf("Engine %s: cycle %04d perplexity: %v", e.id, e.cycle, err)
		} else {
			stats.Perplexity = pp
			log.Infof("Engine %s: cycle %04d perplexity %f moves %d in %s",
				e.id, e.cycle, pp, stats.Moves, stats.Duration)
		}
	}
}

// accumulate adds the posterior means of the current counts to the
// phi and theta sums.
func (e *Engine) accumulate() {
	m := e.model
	parallel.ForN(0, e.parts.Parts, 1, e.workers, func(j int) {
		for w := e.parts.WordBounds[j]; w < e.parts.WordBounds[j+1]; w++ {
			for t := range e.phiSum[w] {
				e.phiSum[w][t] += m.Phi(w, t)
			}
		}
	})
	parallel.ForN(0, len(e.thetaSum), 1, e.workers, func(t int) {
		for d := range e.thetaSum[t] {
			e.thetaSum[t][d] += m.Theta(t, d)
		}
	})
	e.samples++
}

func (e *Engine) optimize() {
	iterations := e.cfg.OptimizeIterations
	if iterations == 0 {
		iterations = DefaultOptimizeIterations
	}
	e.optimizer.Reset()
	e.optimizer.CollectModelStatistics(e.model)
	if e.optimizer.OptimizeTopicPriors(e.model, iterations) {
		log.V(1).Infof("Engine %s: cycle %04d alpha sum %f", e.id, e.cycle,
			e.model.AlphaSum)
	}
}

func (e *Engine) perplexity() (float64, error) {
	return NewEvaluator(e.model, e.store).Perplexity(e.parts, e.workers)
}

// Close shuts the worker pool down.  It waits for a running Run to
// return.
func (e *Engine) Close() {
	e.running.Lock()
	defer e.running.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Closed {
		return
	}
	close(e.cells)
	e.pool.Wait()
	e.state = Closed
	log.Infof("Engine %s: closed after %d cycles, %d samples", e.id, e.cycle,
		e.samples)
}
