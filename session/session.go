// Package session ties the pipeline together: it generates layout runs from
// input texts, serves live similarity queries through the scheduler, and owns
// the camera and color state the UI reads each frame.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/viant/neuromap/camera"
	"github.com/viant/neuromap/catalog"
	"github.com/viant/neuromap/embedding"
	"github.com/viant/neuromap/geom"
	"github.com/viant/neuromap/layout"
	"github.com/viant/neuromap/palette"
	"github.com/viant/neuromap/projection"
	"github.com/viant/neuromap/rank"
	"github.com/viant/neuromap/search"
	"github.com/viant/neuromap/spatial"
)

// Config collects the session's collaborators. Embedder is required; the
// rest default sensibly.
type Config struct {
	Embedder embedding.Embedder
	// Reducer overrides the default t-SNE reducer, mainly for tests.
	Reducer   projection.Reducer
	Container geom.Container
	Device    geom.DeviceProfile
	Logger    logrus.FieldLogger
}

// Session is the orchestrator for one interactive 3D map. All mutable state
// behind mu is replaced wholesale: a new generation swaps points, ranking and
// picking structures together, and each completed query swaps the full
// result set.
//
// Lock order is scheduler before session: the scheduler's apply callback
// takes the session mutex, so no session method may call into the scheduler
// while holding it.
type Session struct {
	embedder  embedding.Embedder
	generator *layout.Generator
	store     *catalog.Catalog
	scheduler *search.Scheduler
	palette   *palette.Engine
	container geom.Container
	logger    logrus.FieldLogger

	mu      sync.Mutex
	camera  *camera.Controller
	runID   uuid.UUID
	points  []layout.Point
	ranker  rank.Ranker
	tree    spatial.Tree
	results []rank.Result
	colors  []palette.Color
	query   string
}

// New creates a Session. Close releases the catalog and scheduler.
func New(cfg Config) (*Session, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("session: embedder is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	container := cfg.Container
	if container == (geom.Container{}) {
		container = geom.DefaultContainer()
	}
	device := cfg.Device
	if device.DistanceScale <= 0 {
		device = geom.DesktopProfile()
	}

	store, err := catalog.Open()
	if err != nil {
		return nil, err
	}

	var adapter *projection.Adapter
	if cfg.Reducer != nil {
		adapter = projection.NewAdapter(cfg.Reducer, logger)
	}

	s := &Session{
		embedder:  cfg.Embedder,
		generator: layout.NewGenerator(adapter, logger),
		store:     store,
		palette:   palette.New(),
		container: container,
		logger:    logger,
		camera:    camera.NewController(container, device),
	}
	s.scheduler = search.New(cfg.Embedder, s, s.applyOutcome, logger)
	return s, nil
}

// Close releases the scheduler and the in-memory catalog.
func (s *Session) Close() error {
	s.scheduler.Close()
	return s.store.Close()
}

// Generate embeds texts and replaces the whole map with a fresh layout run.
// Texts must be unique, non-blank and at least projection.MinimumInputs many.
// Any failure leaves the previous map fully intact.
func (s *Session) Generate(ctx context.Context, texts []string) error {
	if len(texts) < projection.MinimumInputs {
		return fmt.Errorf("session: need at least %d texts, got %d", projection.MinimumInputs, len(texts))
	}
	seen := make(map[string]struct{}, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("session: text %d is blank", i)
		}
		if _, dup := seen[text]; dup {
			return fmt.Errorf("session: duplicate text %q", text)
		}
		seen[text] = struct{}{}
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return errors.Wrap(err, "embed inputs")
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("session: embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	run, err := s.generator.Generate(ctx, texts, vectors, s.container)
	if err != nil {
		return errors.Wrap(err, "generate layout")
	}

	// Build the derived structures before touching session state so a
	// failed generation never leaves a partial map behind.
	labels := make([]string, len(run.Points))
	positions := make([]r3.Vec, len(run.Points))
	for i, p := range run.Points {
		labels[i] = p.Label
		positions[i] = p.Position
	}
	var ranker rank.Ranker
	if err := ranker.Build(labels, vectors); err != nil {
		return errors.Wrap(err, "build ranker")
	}
	var tree spatial.Tree
	if err := tree.Build(labels, positions); err != nil {
		return errors.Wrap(err, "build picking tree")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Replace(ctx, run); err != nil {
		return errors.Wrap(err, "replace catalog")
	}

	s.ranker = ranker
	s.tree = tree
	s.runID = run.ID
	s.points = run.Points
	s.results = nil
	s.query = ""
	s.colors = s.palette.BaseColors(len(run.Points))
	s.camera.SetPointCount(len(run.Points))
	s.camera.ClearFocus()
	return nil
}

// Query schedules a similarity query. It never blocks; superseded queries
// are dropped by the scheduler and only the latest outcome is applied.
func (s *Session) Query(text string) {
	// Deliberately lock-free here: Submit takes the scheduler mutex and the
	// apply callback takes ours.
	s.scheduler.Submit(text)
}

// PointCount implements search.Backend.
func (s *Session) PointCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.points)
}

// Rank implements search.Backend. The run identifier is captured under the
// same lock as the ranking so results and generation always correspond.
func (s *Session) Rank(query embedding.Vector) ([]rank.Result, uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results, err := s.ranker.Rank(query)
	return results, s.runID, err
}

// applyOutcome installs the latest completed query run: results, colors and
// camera focus move together. Runs on the scheduler goroutine.
func (s *Session) applyOutcome(out search.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A regeneration may have swapped the point set while this query was in
	// flight; its indices and scores describe the old run, so drop it.
	if len(out.Results) > 0 && out.RunID != s.runID {
		s.logger.WithFields(logrus.Fields{
			"action": "similarity_query",
			"run_id": out.RunID,
		}).Debug("discarding results ranked against a replaced run")
		return
	}

	s.query = out.Query
	if len(out.Results) == 0 {
		s.results = nil
		s.colors = s.palette.BaseColors(len(s.points))
		if len(s.points) > 0 {
			s.camera.ClearFocus()
		}
		return
	}

	s.results = out.Results
	colors := make([]palette.Color, len(s.points))
	for i := range colors {
		colors[i] = palette.Base
	}
	for _, res := range out.Results {
		if res.Index >= 0 && res.Index < len(colors) {
			colors[res.Index] = s.palette.ForScore(res.Score)
		}
	}
	s.colors = colors

	top := out.Results[0]
	if top.Index >= 0 && top.Index < len(s.points) {
		s.camera.FocusOn(s.points[top.Index].Position, top.Score, len(top.Label))
	}
}

// Select focuses the camera on the labeled point directly. When an active
// result set scores the point its score sets the focus distance; an
// unscored selection focuses at the closest inspection distance.
func (s *Session) Select(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.points {
		if p.Label == label {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("session: unknown label %q", label)
	}

	score := 1.0
	for i, res := range s.results {
		if res.Index == idx {
			score = res.Score
			// Promote the chosen point to the top of the ranking, keeping
			// the relative order of the rest.
			promoted := make([]rank.Result, 0, len(s.results))
			promoted = append(promoted, res)
			promoted = append(promoted, s.results[:i]...)
			promoted = append(promoted, s.results[i+1:]...)
			s.results = promoted
			break
		}
	}
	s.camera.FocusOn(s.points[idx].Position, score, len(label))
	return nil
}

// SelectNearest resolves a pick location to its nearest point and selects
// it, returning the chosen label.
func (s *Session) SelectNearest(pos r3.Vec) (string, error) {
	s.mu.Lock()
	label, _, ok := s.tree.Nearest(pos)
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("session: no points to select")
	}
	return label, s.Select(label)
}

// Related returns the k points most similar to the labeled point by
// embedding, excluding the point itself.
func (s *Session) Related(ctx context.Context, label string, k int) ([]catalog.Related, error) {
	return s.store.Neighbors(ctx, label, k)
}

// Tick advances the camera by dt seconds.
func (s *Session) Tick(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Tick(dt)
}

// RunID returns the identifier of the current layout run.
func (s *Session) RunID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Points returns a copy of the current point set in generation order.
func (s *Session) Points() []layout.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]layout.Point(nil), s.points...)
}

// Results returns a copy of the latest query's ranking, nil when no query is
// active.
func (s *Session) Results() []rank.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rank.Result(nil), s.results...)
}

// Colors returns a copy of the per-point colors, index-aligned with Points.
func (s *Session) Colors() []palette.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]palette.Color(nil), s.colors...)
}

// ActiveQuery returns the query text of the latest applied outcome.
func (s *Session) ActiveQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Pose returns the current camera pose.
func (s *Session) Pose() camera.Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.Pose()
}

// Mode returns the current camera focus mode.
func (s *Session) Mode() camera.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.Mode()
}

// ManualControlEnabled reports whether user camera input is currently
// allowed.
func (s *Session) ManualControlEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera.ManualControlEnabled()
}

var _ search.Backend = (*Session)(nil)
