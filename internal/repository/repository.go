// Package repository serves bridges and BIM models from an in-memory
// fixture set.
package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
)

// Bridges is the bridge read model.
type Bridges interface {
	ListBridges(ctx context.Context) ([]bim.Bridge, error)
	GetBridge(ctx context.Context, id string) (bim.Bridge, error)
}

// Models is the BIM read model. Lookups of a missing model or component
// return an error wrapping bim.ErrNotFound; list calls on an unknown model
// return an empty slice.
type Models interface {
	ListModels(ctx context.Context) ([]bim.Metadata, error)
	ModelByBridge(ctx context.Context, bridgeID string) (*bim.Model, error)
	Model(ctx context.Context, modelID string) (*bim.Model, error)
	Components(ctx context.Context, modelID string, f bim.Filter) ([]bim.Component, error)
	Component(ctx context.Context, modelID, componentID string) (bim.Component, error)
	Geometry(ctx context.Context, modelID, componentID string) (bim.Geometry, error)
	Relationships(ctx context.Context, modelID string) ([]bim.Relationship, error)
}

// Memory implements Bridges and Models over loaded fixtures.
type Memory struct {
	mu      sync.RWMutex
	bridges []bim.Bridge
	models  []*bim.Model
	byID    map[string]*bim.Model
}

var (
	_ Bridges = (*Memory)(nil)
	_ Models  = (*Memory)(nil)
)

// NewMemory indexes f. Duplicate model ids are rejected.
func NewMemory(f *bim.Fixtures) (*Memory, error) {
	r := &Memory{byID: make(map[string]*bim.Model)}
	if f == nil {
		return r, nil
	}
	r.bridges = slices.Clone(f.Bridges)
	for i := range f.Models {
		m := &f.Models[i]
		if _, dup := r.byID[m.Metadata.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate model id %q", bim.ErrInvalidModel, m.Metadata.ID)
		}
		r.byID[m.Metadata.ID] = m
		r.models = append(r.models, m)
	}
	return r, nil
}

// Open loads fixtures from dir, or the built-in set when dir is empty.
func Open(dir string) (*Memory, error) {
	var (
		f   *bim.Fixtures
		err error
	)
	if dir == "" {
		f, err = bim.DefaultFixtures()
	} else {
		f, err = bim.LoadFixturesDir(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("fixtures: %w", err)
	}
	return NewMemory(f)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, bim.ErrNotFound)
}

func (r *Memory) ListBridges(_ context.Context) ([]bim.Bridge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]bim.Bridge, len(r.bridges))
	copy(out, r.bridges)
	return out, nil
}

func (r *Memory) GetBridge(_ context.Context, id string) (bim.Bridge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bridges {
		if b.ID == id {
			return b, nil
		}
	}
	return bim.Bridge{}, notFound("bridge", id)
}

func (r *Memory) ListModels(_ context.Context) ([]bim.Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]bim.Metadata, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m.Metadata)
	}
	return out, nil
}

// ModelByBridge returns the first model converted for bridgeID.
func (r *Memory) ModelByBridge(_ context.Context, bridgeID string) (*bim.Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.models {
		if m.Metadata.BridgeID == bridgeID {
			return m, nil
		}
	}
	return nil, notFound("model for bridge", bridgeID)
}

func (r *Memory) Model(_ context.Context, modelID string) (*bim.Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[modelID]
	if !ok {
		return nil, notFound("model", modelID)
	}
	return m, nil
}

// Components applies f to the model's components. An invalid filter wraps
// bim.ErrInvalidFilter.
func (r *Memory) Components(_ context.Context, modelID string, f bim.Filter) ([]bim.Component, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[modelID]
	if !ok {
		return []bim.Component{}, nil
	}
	return f.Apply(m.Components), nil
}

func (r *Memory) Component(_ context.Context, modelID, componentID string) (bim.Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[modelID]
	if !ok {
		return bim.Component{}, notFound("model", modelID)
	}
	c, ok := m.Component(componentID)
	if !ok {
		return bim.Component{}, notFound("component", componentID)
	}
	return c, nil
}

func (r *Memory) Geometry(_ context.Context, modelID, componentID string) (bim.Geometry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[modelID]
	if !ok {
		return bim.Geometry{}, notFound("model", modelID)
	}
	g, ok := m.GeometryFor(componentID)
	if !ok {
		return bim.Geometry{}, notFound("geometry", componentID)
	}
	return g, nil
}

func (r *Memory) Relationships(_ context.Context, modelID string) ([]bim.Relationship, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[modelID]
	if !ok {
		return []bim.Relationship{}, nil
	}
	out := make([]bim.Relationship, len(m.Relationships))
	copy(out, m.Relationships)
	return out, nil
}
