package viewer

import (
	"context"
	"strings"
	"sync"
	"time"

	"fortio.org/log"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
)

// Selection is the selected component id, or none when Valid is false.
type Selection struct {
	ID    string
	Valid bool
}

// NoSelection is the overview state.
var NoSelection = Selection{}

// Select returns a selection of id.
func Select(id string) Selection {
	return Selection{ID: id, Valid: true}
}

func (s Selection) String() string {
	if !s.Valid {
		return "<none>"
	}
	return s.ID
}

// Source tells where a selection came from.
type Source int

const (
	SourceList Source = iota
	SourcePick
	SourceReset
)

func (s Source) String() string {
	switch s {
	case SourcePick:
		return "pick"
	case SourceReset:
		return "reset"
	default:
		return "list"
	}
}

// Publisher broadcasts selection changes outside the process.
type Publisher interface {
	PublishSelection(ctx context.Context, ev bim.SelectionEvent) error
}

// Coordinator keeps a single selection in sync across highlight, camera
// focus and listeners.
type Coordinator struct {
	highlighter *Highlighter
	framer      *Framer
	publisher   Publisher
	ready       func(modelID string) bool

	mu          sync.Mutex
	modelID     string
	current     Selection
	lastFocused string
	listeners   []func(Selection)
}

func NewCoordinator(h *Highlighter, f *Framer, p Publisher) *Coordinator {
	return &Coordinator{highlighter: h, framer: f, publisher: p}
}

// GateOn defers component focus until ready reports the active model as
// fully built. Without a gate focus runs immediately.
func (c *Coordinator) GateOn(ready func(modelID string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = ready
}

// Current returns the selection.
func (c *Coordinator) Current() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// OnChange registers fn to receive every selection change.
func (c *Coordinator) OnChange(fn func(Selection)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Select makes id the selection. Blank ids are rejected with a warning and
// reselecting the current id does nothing. It reports whether the
// selection changed.
func (c *Coordinator) Select(ctx context.Context, id string, src Source) bool {
	if strings.TrimSpace(id) == "" {
		log.Warnf("Ignoring blank component id from %s", src)
		return false
	}
	c.mu.Lock()
	if c.current.Valid && c.current.ID == id {
		c.mu.Unlock()
		return false
	}
	sel := Select(id)
	c.current = sel
	focus := id != c.lastFocused
	modelID := c.modelID
	ready := c.ready
	listeners := append([]func(Selection){}, c.listeners...)
	c.mu.Unlock()

	log.LogVf("Selected %s from %s", id, src)
	if err := c.highlighter.Apply(sel); err != nil {
		log.Warnf("Highlight of %s skipped: %v", id, err)
	}
	switch {
	case !focus:
	case ready != nil && !ready(modelID):
		log.LogVf("Focus on %s deferred until %s is ready", id, modelID)
	default:
		c.focus(id)
	}
	c.notify(ctx, modelID, sel, listeners)
	return true
}

// focus frames id and records it as focused only when the transition
// actually started.
func (c *Coordinator) focus(id string) {
	ok, err := c.framer.FocusComponent(id)
	switch {
	case err != nil:
		log.Warnf("Focus on %s skipped: %v", id, err)
	case !ok:
		log.Warnf("Focus on %s skipped: no mesh", id)
	default:
		c.mu.Lock()
		if c.current.Valid && c.current.ID == id {
			c.lastFocused = id
		}
		c.mu.Unlock()
	}
}

// Resume reapplies the highlight and runs a deferred focus once modelID
// becomes ready. Selections made while its objects were still being built
// take effect here.
func (c *Coordinator) Resume(modelID string) {
	c.mu.Lock()
	if c.modelID != modelID {
		c.mu.Unlock()
		return
	}
	sel := c.current
	pending := sel.Valid && sel.ID != c.lastFocused
	c.mu.Unlock()

	if err := c.highlighter.Apply(sel); err != nil {
		log.Warnf("Highlight of %s skipped: %v", sel, err)
	}
	if pending {
		c.focus(sel.ID)
	}
}

// Clear returns to the overview: no selection, original appearance.
func (c *Coordinator) Clear(ctx context.Context) bool {
	c.mu.Lock()
	if !c.current.Valid {
		c.mu.Unlock()
		return false
	}
	c.current = NoSelection
	c.lastFocused = ""
	modelID := c.modelID
	listeners := append([]func(Selection){}, c.listeners...)
	c.mu.Unlock()

	if err := c.highlighter.Apply(NoSelection); err != nil {
		log.Warnf("Highlight reset skipped: %v", err)
	}
	c.notify(ctx, modelID, NoSelection, listeners)
	return true
}

// Reset drops the selection for a model change. The new model's objects
// already show their original appearance, so nothing is recolored.
func (c *Coordinator) Reset(ctx context.Context, modelID string) {
	c.mu.Lock()
	changed := c.current.Valid
	c.modelID = modelID
	c.current = NoSelection
	c.lastFocused = ""
	listeners := append([]func(Selection){}, c.listeners...)
	c.mu.Unlock()
	if changed {
		log.LogVf("Selection reset for model %s", modelID)
		c.notify(ctx, modelID, NoSelection, listeners)
	}
}

func (c *Coordinator) notify(ctx context.Context, modelID string, sel Selection, listeners []func(Selection)) {
	for _, fn := range listeners {
		fn(sel)
	}
	if c.publisher == nil {
		return
	}
	ev := bim.SelectionEvent{ModelID: modelID, ComponentID: sel.ID, Selected: sel.Valid, At: time.Now().UTC()}
	if err := c.publisher.PublishSelection(ctx, ev); err != nil {
		log.Warnf("Publishing selection of %s failed: %v", sel, err)
	}
}
