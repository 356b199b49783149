package viewer

import (
	"slices"
	"sync"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/scene"
)

// Entry is the registry record of one synthesized component.
type Entry struct {
	Component         bim.Component
	Object            *scene.Object
	OriginalColor     render.Color
	OriginalEmissive  render.Color
	OriginalIntensity float64
}

// Registry maps component ids of the active model to their scene objects.
// Object materials are only touched under Engine.Do.
type Registry struct {
	mu      sync.RWMutex
	modelID string
	entries map[string]*Entry
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// ModelID returns the model the registry currently holds.
func (r *Registry) ModelID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.modelID
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Has reports whether componentID is registered.
func (r *Registry) Has(componentID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[componentID]
	return ok
}

// Get returns the entry of componentID.
func (r *Registry) Get(componentID string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[componentID]
	return e, ok
}

// IDs returns the registered ids in insertion order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Entries returns the entries in insertion order.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, len(r.order))
	for i, id := range r.order {
		out[i] = r.entries[id]
	}
	return out
}

// Add registers c for modelID, recording the object's current material as
// the original appearance. It returns false for another model or a
// duplicate id.
func (r *Registry) Add(modelID string, c bim.Component, obj *scene.Object) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if modelID != r.modelID {
		return nil, false
	}
	if _, dup := r.entries[c.ID]; dup {
		return nil, false
	}
	e := &Entry{Component: c, Object: obj}
	if m := obj.Material; m != nil {
		e.OriginalColor = m.Color
		e.OriginalEmissive = m.Emissive
		e.OriginalIntensity = m.EmissiveIntensity
	}
	r.entries[c.ID] = e
	r.order = append(r.order, c.ID)
	return e, true
}

// Reset empties the registry and rebinds it to modelID. The removed
// entries are returned so the caller can dispose their objects.
func (r *Registry) Reset(modelID string) []*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Entry, len(r.order))
	for i, id := range r.order {
		out[i] = r.entries[id]
	}
	r.modelID = modelID
	r.entries = make(map[string]*Entry)
	r.order = nil
	return out
}

// Bounds returns the union of the registered objects' world bounds.
func (r *Registry) Bounds() math3d.Box3 {
	b := math3d.EmptyBox3()
	for _, e := range r.Entries() {
		b = b.Union(e.Object.WorldBounds())
	}
	return b
}
