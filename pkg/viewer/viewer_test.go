package viewer

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testViewport = Viewport{Width: 64, Height: 48}

type recordingPublisher struct {
	mu     sync.Mutex
	events []bim.SelectionEvent
}

func (p *recordingPublisher) PublishSelection(_ context.Context, ev bim.SelectionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Events() []bim.SelectionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]bim.SelectionEvent{}, p.events...)
}

func newTestViewer(t *testing.T, opts Options) *Viewer {
	t.Helper()
	opts.FrameSource = scene.NewManualFrames()
	v := New(opts)
	require.NoError(t, v.Mount(context.Background(), scene.Size{Width: testViewport.Width, Height: testViewport.Height}))
	t.Cleanup(v.Close)
	return v
}

func demoModel(t *testing.T) *bim.Model {
	t.Helper()
	f, err := bim.DefaultFixtures()
	require.NoError(t, err)
	require.NotEmpty(t, f.Models)
	m := f.Models[0]
	return &m
}

// gridModel has n deck components laid out along X, each with a box.
func gridModel(id string, n int) *bim.Model {
	m := &bim.Model{Metadata: bim.Metadata{ID: id, ComponentCount: n}}
	for i := range n {
		cid := id + "-" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		m.Components = append(m.Components, bim.Component{ID: cid, Name: cid, Type: bim.TypeDeck, Status: bim.StatusSafe})
		x := float64(i) * 3
		m.Geometries = append(m.Geometries, bim.Geometry{
			ComponentID: cid,
			BoundingBox: bim.BoundingBox{Min: [3]float64{x, 0, 0}, Max: [3]float64{x + 2, 1, 2}},
		})
	}
	return m
}

func load(t *testing.T, v *Viewer, m *bim.Model) {
	t.Helper()
	require.NoError(t, v.LoadModel(context.Background(), m))
	select {
	case <-v.Ready():
	case <-time.After(time.Second):
		t.Fatalf("model %s never became ready", m.Metadata.ID)
	}
}

// runFrames renders frames spaced by step.
func runFrames(v *Viewer, start time.Time, n int, step time.Duration) time.Time {
	now := start
	for range n {
		v.Engine.RenderFrame(now)
		now = now.Add(step)
	}
	return now
}

func cameraState(t *testing.T, v *Viewer) (pos, target [3]float64) {
	t.Helper()
	require.NoError(t, v.Engine.Do(func(_ *scene.Scene, cam *render.Camera, ctl *scene.OrbitControls) {
		pos, target = cam.Position.Array(), ctl.Target.Array()
	}))
	return pos, target
}

func TestViewerLoadFramesScene(t *testing.T) {
	v := newTestViewer(t, Options{})
	m := demoModel(t)
	load(t, v, m)

	// Only comp-1 has a box, so the scene is framed on it alone.
	want := FrameBox(SceneBounds(m), &render.Camera{FOV: scene.DefaultFOVDegrees * math.Pi / 180, Aspect: 64.0 / 48.0}, DefaultFillRatio)
	pos, target := cameraState(t, v)
	wantPos := want.Position.Array()
	assert.InDeltaSlice(t, wantPos[:], pos[:], 1e-6)
	assert.Equal(t, [3]float64{2.5, 25, 2.5}, target)
}

func TestViewerSelectionFlow(t *testing.T) {
	pub := &recordingPublisher{}
	v := newTestViewer(t, Options{Publisher: pub})
	load(t, v, demoModel(t))

	var seen []Selection
	v.OnSelect(func(s Selection) { seen = append(seen, s) })

	assert.True(t, v.Select(context.Background(), "comp-3"))
	c, ok := v.SelectedComponent()
	require.True(t, ok)
	assert.Equal(t, bim.TypeDeck, c.Type)

	assert.True(t, v.ClearSelection(context.Background()))
	_, ok = v.SelectedComponent()
	assert.False(t, ok)

	assert.Equal(t, []Selection{Select("comp-3"), NoSelection}, seen)
	events := pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "bim-1", events[0].ModelID)
	assert.Equal(t, "comp-3", events[0].ComponentID)
	assert.True(t, events[0].Selected)
	assert.False(t, events[1].Selected)
}

func TestViewerModelChangeResetsSelection(t *testing.T) {
	v := newTestViewer(t, Options{})
	load(t, v, demoModel(t))
	v.Select(context.Background(), "comp-1")

	load(t, v, gridModel("other", 2))
	assert.Equal(t, NoSelection, v.Selection())
	assert.Equal(t, "other", v.Registry.ModelID())
}

func TestViewerExportNodes(t *testing.T) {
	v := newTestViewer(t, Options{})
	load(t, v, demoModel(t))
	nodes, err := v.ExportNodes()
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.ElementsMatch(t, []string{"comp-1", "comp-2", "comp-3"}, []string{nodes[0].Name, nodes[1].Name, nodes[2].Name})
}

func TestViewerSnapshot(t *testing.T) {
	v := newTestViewer(t, Options{})
	load(t, v, demoModel(t))
	v.Engine.RenderFrame(time.Now())
	img, err := v.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}
