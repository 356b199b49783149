// Package viewer turns BIM models into an interactive scene: it synthesizes
// meshes from component bounding boxes, loads them into a scene engine,
// picks and highlights components and frames the camera on them.
package viewer

import (
	"context"
	"image"
	"sync"
	"time"

	"fortio.org/log"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/models"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/scene"
)

// Options configures a Viewer. Zero values pick the defaults.
type Options struct {
	FPS           int
	FillRatio     float64
	FocusDuration time.Duration
	Concurrency   int
	Publisher     Publisher
	FrameSource   scene.FrameSource
	Renderer      func(scene.Size) scene.Renderer
}

// Viewer is the explicit context tying the engine and the viewer
// components together.
type Viewer struct {
	Engine      *scene.Engine
	Registry    *Registry
	Loader      *Loader
	Picker      *Picker
	Highlighter *Highlighter
	Framer      *Framer
	Coordinator *Coordinator

	mu            sync.Mutex
	sceneFramedID string
}

// New wires a viewer; call Mount before loading models.
func New(opts Options) *Viewer {
	var eo []scene.Option
	if opts.FPS > 0 {
		eo = append(eo, scene.WithFPS(opts.FPS))
	}
	if opts.FrameSource != nil {
		eo = append(eo, scene.WithFrameSource(opts.FrameSource))
	}
	if opts.Renderer != nil {
		eo = append(eo, scene.WithRenderer(opts.Renderer))
	}
	engine := scene.NewEngine(eo...)
	reg := NewRegistry()
	framer := NewFramer(engine, reg)
	if opts.FillRatio > 0 {
		framer.Fill = opts.FillRatio
	}
	if opts.FocusDuration > 0 {
		framer.Duration = opts.FocusDuration
	}
	hl := NewHighlighter(engine, reg)
	v := &Viewer{
		Engine:      engine,
		Registry:    reg,
		Loader:      NewLoader(engine, reg, opts.Concurrency),
		Picker:      NewPicker(engine, reg),
		Highlighter: hl,
		Framer:      framer,
		Coordinator: NewCoordinator(hl, framer, opts.Publisher),
	}
	v.Coordinator.GateOn(v.Loader.IsReady)
	v.Loader.OnReady(v.frameInitial)
	return v
}

// Mount initializes the engine at size.
func (v *Viewer) Mount(ctx context.Context, size scene.Size) error {
	return v.Engine.Init(ctx, size)
}

// Resize forwards a viewport change to the engine.
func (v *Viewer) Resize(size scene.Size) {
	v.Engine.Resize(size)
}

// Close disposes the model and stops the engine.
func (v *Viewer) Close() {
	if err := v.Loader.Unload(); err != nil {
		log.LogVf("Unload on close: %v", err)
	}
	v.Engine.Destroy()
}

// LoadModel makes m the active model. The selection is reset when the
// model changes, and the camera frames the model once it is ready.
func (v *Viewer) LoadModel(ctx context.Context, m *bim.Model) error {
	if m != nil && v.Registry.ModelID() != m.Metadata.ID {
		v.Coordinator.Reset(ctx, m.Metadata.ID)
		v.mu.Lock()
		v.sceneFramedID = ""
		v.mu.Unlock()
	}
	return v.Loader.Load(ctx, m)
}

// frameInitial frames a newly ready model once, then lets the
// coordinator catch up on a selection made while it was loading.
func (v *Viewer) frameInitial(modelID string) {
	v.mu.Lock()
	first := v.sceneFramedID != modelID
	v.sceneFramedID = modelID
	v.mu.Unlock()
	if first {
		if err := v.Framer.FocusScene(v.Loader.Model()); err != nil {
			log.Warnf("Initial framing of %s skipped: %v", modelID, err)
		}
	}
	v.Coordinator.Resume(modelID)
}

// Ready returns the completion channel of the current load target.
func (v *Viewer) Ready() <-chan struct{} {
	return v.Loader.Ready()
}

// Select selects a component from the list.
func (v *Viewer) Select(ctx context.Context, componentID string) bool {
	return v.Coordinator.Select(ctx, componentID, SourceList)
}

// ClearSelection returns to the overview.
func (v *Viewer) ClearSelection(ctx context.Context) bool {
	return v.Coordinator.Clear(ctx)
}

// Click picks at a screen point and selects the hit component. A miss
// leaves the selection unchanged.
func (v *Viewer) Click(ctx context.Context, x, y float64, vp Viewport) (string, bool) {
	id, ok := v.Picker.Pick(x, y, vp)
	if !ok {
		return "", false
	}
	v.Coordinator.Select(ctx, id, SourcePick)
	return id, true
}

// Selection returns the current selection.
func (v *Viewer) Selection() Selection {
	return v.Coordinator.Current()
}

// OnSelect registers a selection listener.
func (v *Viewer) OnSelect(fn func(Selection)) {
	v.Coordinator.OnChange(fn)
}

// SelectedComponent resolves the selection through the registry.
func (v *Viewer) SelectedComponent() (bim.Component, bool) {
	sel := v.Selection()
	if !sel.Valid {
		return bim.Component{}, false
	}
	e, ok := v.Registry.Get(sel.ID)
	if !ok {
		return bim.Component{}, false
	}
	return e.Component, true
}

// Snapshot returns the last rendered frame.
func (v *Viewer) Snapshot() (image.Image, error) {
	return v.Engine.Snapshot()
}

// ExportNodes returns the active model's meshes for file export.
func (v *Viewer) ExportNodes() ([]models.ExportNode, error) {
	var nodes []models.ExportNode
	err := v.Engine.Do(func(s *scene.Scene, _ *render.Camera, _ *scene.OrbitControls) {
		nodes = s.ExportNodes()
	})
	return nodes, err
}
