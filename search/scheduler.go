// Package search orchestrates live similarity queries. A single mutable
// pending slot plus an in-flight flag give single-flight, latest-wins
// semantics: at most one similarity computation runs at a time, newer
// submissions overwrite the pending slot, and a completed run's results are
// applied only if no newer query has been scheduled since it started.
package search

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/viant/neuromap/embedding"
	"github.com/viant/neuromap/rank"
)

// Backend supplies the data a query run ranks against. Implementations must
// be safe for concurrent use; the session is the canonical implementation.
type Backend interface {
	// PointCount reports the size of the current point set.
	PointCount() int
	// Rank scores the current point set against the query vector and reports
	// the identifier of the point-set generation it ranked. The caller uses
	// the identifier to discard results that outlive their generation.
	Rank(query embedding.Vector) ([]rank.Result, uuid.UUID, error)
}

// Outcome is the wholesale product of one completed query run. Empty Results
// with a non-nil Outcome is a handled state (blank query, no points, upstream
// failure), not an error. RunID identifies the point-set generation Results
// were ranked against; it is zero when no ranking happened.
type Outcome struct {
	Query       string
	QueryVector embedding.Vector
	Results     []rank.Result
	RunID       uuid.UUID
}

// ApplyFunc receives the outcome of the latest completed run. It is invoked
// from the scheduler's worker goroutine, serialized with the latest-intent
// check and the dequeue of the pending query; it must not call back into the
// scheduler.
type ApplyFunc func(Outcome)

// Scheduler enforces the single-flight, latest-wins discipline over query
// submissions.
type Scheduler struct {
	embedder embedding.Embedder
	backend  Backend
	apply    ApplyFunc
	logger   logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	pending  *string
	inFlight bool
	gen      uint64
}

// New creates a Scheduler. Close releases its worker context.
func New(embedder embedding.Embedder, backend Backend, apply ApplyFunc, logger logrus.FieldLogger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		embedder: embedder,
		backend:  backend,
		apply:    apply,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Submit schedules a query run for text. It never blocks: while a run is in
// flight the text overwrites the pending slot, discarding any previously
// pending value. Only the most recent submission before each run starts is
// ever computed.
func (s *Scheduler) Submit(text string) {
	s.mu.Lock()
	s.gen++
	if s.inFlight {
		s.pending = &text
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	gen := s.gen
	s.mu.Unlock()
	go s.run(text, gen)
}

// Close cancels the scheduler's context. In-flight work is allowed to finish;
// its outcome is discarded by the generation check if it no longer matters.
func (s *Scheduler) Close() {
	s.cancel()
}

func (s *Scheduler) run(text string, gen uint64) {
	outcome := s.compute(text)

	s.mu.Lock()
	// Latest-intent check happens at apply time, not when the call started.
	if gen == s.gen {
		s.apply(outcome)
	}
	if s.pending != nil {
		next := *s.pending
		s.pending = nil
		nextGen := s.gen
		s.mu.Unlock()
		go s.run(next, nextGen)
		return
	}
	s.inFlight = false
	s.mu.Unlock()
}

// compute performs one query run. Upstream failures are swallowed: they are
// logged and produce an empty outcome, never an error, so a transient
// embedding failure cannot wedge the scheduler.
func (s *Scheduler) compute(text string) Outcome {
	outcome := Outcome{Query: text}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" || s.backend.PointCount() == 0 || !s.embedder.Ready() {
		return outcome
	}

	vecs, err := s.embedder.Embed(s.ctx, []string{trimmed})
	if err != nil {
		s.logger.WithField("action", "similarity_query").
			WithError(err).Warn("embedding failed; treating query as no results")
		return outcome
	}
	if len(vecs) != 1 {
		s.logger.WithField("action", "similarity_query").
			Warnf("embedder returned %d vectors for one query", len(vecs))
		return outcome
	}

	results, runID, err := s.backend.Rank(vecs[0])
	if err != nil {
		s.logger.WithField("action", "similarity_query").
			WithError(err).Warn("ranking failed; treating query as no results")
		return outcome
	}

	outcome.QueryVector = vecs[0]
	outcome.Results = results
	outcome.RunID = runID
	return outcome
}
