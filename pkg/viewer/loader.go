package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fortio.org/log"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/scene"
	"golang.org/x/sync/errgroup"
)

// ErrSuperseded is returned by a Load that a newer Load replaced.
var ErrSuperseded = errors.New("viewer: load superseded")

// LoadState is the loader phase for the active model.
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateReady
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "idle"
	}
}

// LoadStatus is a snapshot of the loader state.
type LoadStatus struct {
	State   LoadState
	ModelID string
}

// DefaultConcurrency bounds parallel component synthesis.
const DefaultConcurrency = 8

// Loader turns a model's components into registered scene objects.
type Loader struct {
	engine *scene.Engine
	reg    *Registry
	limit  int

	gen atomic.Uint64

	mu      sync.Mutex
	status  LoadStatus
	model   *bim.Model
	ready   chan struct{}
	onReady []func(modelID string)
}

// NewLoader creates a loader that adds objects to engine's scene.
func NewLoader(engine *scene.Engine, reg *Registry, concurrency int) *Loader {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Loader{engine: engine, reg: reg, limit: concurrency, ready: make(chan struct{})}
}

// Status returns the current state.
func (l *Loader) Status() LoadStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Model returns the model of the latest Load call.
func (l *Loader) Model() *bim.Model {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.model
}

// IsReady reports whether modelID is the target and fully built.
func (l *Loader) IsReady(modelID string) bool {
	s := l.Status()
	return s.State == StateReady && s.ModelID == modelID
}

// Ready returns a channel closed when the current target becomes ready.
// Each Load gets a fresh channel; a superseded target's channel never closes.
func (l *Loader) Ready() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

// OnReady registers fn to run, outside any lock, each time a target
// becomes ready.
func (l *Loader) OnReady(fn func(modelID string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onReady = append(l.onReady, fn)
}

// expected is the readiness count for m: its actual component list. The
// metadata count is informational and may disagree. A model without
// components never becomes ready.
func expected(m *bim.Model) int {
	return len(m.Components)
}

// Load makes m the active model. Loading the model that is already ready
// does nothing. Switching models disposes the previous model's objects
// first. Per-component failures are logged and skipped, in which case the
// model stays Loading. A newer Load makes this one return ErrSuperseded.
func (l *Loader) Load(ctx context.Context, m *bim.Model) error {
	if m == nil {
		return fmt.Errorf("load: %w", bim.ErrInvalidModel)
	}
	id := m.Metadata.ID
	start := time.Now()

	l.mu.Lock()
	if l.status.State == StateReady && l.status.ModelID == id &&
		l.reg.ModelID() == id && l.reg.Len() == expected(m) {
		l.mu.Unlock()
		log.Debugf("Model %s already loaded with %d components, skipping", id, expected(m))
		return nil
	}
	gen := l.gen.Add(1)
	l.status = LoadStatus{State: StateLoading, ModelID: id}
	l.model = m
	l.ready = make(chan struct{})
	ready := l.ready
	l.mu.Unlock()

	log.Infof("Loading model %s: %d components, %d geometries", id, len(m.Components), len(m.Geometries))
	err := l.engine.Do(func(s *scene.Scene, _ *render.Camera, _ *scene.OrbitControls) {
		if l.gen.Load() != gen || l.reg.ModelID() == id {
			return
		}
		old := l.reg.Reset(id)
		for _, e := range old {
			s.Remove(e.Object)
			e.Object.Dispose()
		}
		if len(old) > 0 {
			log.Infof("Disposed %d objects of the previous model", len(old))
		}
	})
	if err != nil {
		return l.fail(gen, id, start, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)
	for i := range m.Components {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if l.gen.Load() != gen {
				componentsBuilt.WithLabelValues("stale").Inc()
				return nil
			}
			return l.build(m, i, gen)
		})
	}
	err = g.Wait()
	if l.gen.Load() != gen {
		loadDuration.WithLabelValues("superseded").Observe(time.Since(start).Seconds())
		log.Infof("Load of model %s superseded", id)
		return ErrSuperseded
	}
	if err != nil {
		return l.fail(gen, id, start, err)
	}

	n := l.reg.Len()
	if n == 0 || n != expected(m) {
		loadDuration.WithLabelValues("incomplete").Observe(time.Since(start).Seconds())
		log.Warnf("Model %s built %d of %d components, not ready", id, n, expected(m))
		return nil
	}

	l.mu.Lock()
	if l.gen.Load() != gen {
		l.mu.Unlock()
		return ErrSuperseded
	}
	l.status = LoadStatus{State: StateReady, ModelID: id}
	close(ready)
	callbacks := append([]func(string){}, l.onReady...)
	l.mu.Unlock()

	loadDuration.WithLabelValues("ready").Observe(time.Since(start).Seconds())
	log.Infof("Model %s ready: %d components in %v", id, n, time.Since(start).Round(time.Millisecond))
	for _, fn := range callbacks {
		fn(id)
	}
	return nil
}

// build synthesizes one component and adds it if gen is still current.
// Only engine failures are returned; synthesis errors are skipped.
func (l *Loader) build(m *bim.Model, index int, gen uint64) error {
	c := m.Components[index]
	syn, err := SynthesizeComponent(m, index)
	if err != nil {
		componentsBuilt.WithLabelValues("failed").Inc()
		log.Errf("Skipping component %s: %v", c.ID, err)
		return nil
	}
	obj := syn.Object
	obj.Tag = &scene.Tag{ModelID: m.Metadata.ID, ComponentID: c.ID}

	outcome := "built"
	if syn.Fallback {
		outcome = "fallback"
	}
	err = l.engine.Do(func(s *scene.Scene, _ *render.Camera, _ *scene.OrbitControls) {
		if l.gen.Load() != gen {
			outcome = "stale"
			obj.Dispose()
			return
		}
		if _, ok := l.reg.Add(m.Metadata.ID, c, obj); !ok {
			outcome = "duplicate"
			obj.Dispose()
			return
		}
		s.Add(obj)
	})
	if err != nil {
		obj.Dispose()
		return fmt.Errorf("component %s: %w", c.ID, err)
	}
	componentsBuilt.WithLabelValues(outcome).Inc()
	return nil
}

func (l *Loader) fail(gen uint64, id string, start time.Time, err error) error {
	l.mu.Lock()
	if l.gen.Load() == gen {
		l.status = LoadStatus{State: StateIdle}
	}
	l.mu.Unlock()
	loadDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
	log.Errf("Load of model %s failed: %v", id, err)
	return fmt.Errorf("load %s: %w", id, err)
}

// Unload disposes every registered object and returns to Idle.
func (l *Loader) Unload() error {
	l.gen.Add(1)
	l.mu.Lock()
	l.status = LoadStatus{}
	l.model = nil
	l.ready = make(chan struct{})
	l.mu.Unlock()
	return l.engine.Do(func(s *scene.Scene, _ *render.Camera, _ *scene.OrbitControls) {
		for _, e := range l.reg.Reset("") {
			s.Remove(e.Object)
			e.Object.Dispose()
		}
	})
}
