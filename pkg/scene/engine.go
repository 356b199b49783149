package scene

import (
	"context"
	"errors"
	"image"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"fortio.org/log"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
)

var (
	// ErrNotInitialized is returned when the engine has no live camera.
	ErrNotInitialized = errors.New("scene: engine not initialized")
	// ErrDestroyed is returned by operations on a destroyed engine's renderer.
	ErrDestroyed = errors.New("scene: engine destroyed")
)

// Defaults for the viewer camera and scene.
const (
	DefaultFOVDegrees = 75
	DefaultNear       = 0.1
	DefaultFar        = 10000
	DefaultFPS        = 30
	BackgroundHex     = 0x1a1a1a
)

// DefaultCameraPosition is where the camera starts before any framing.
var DefaultCameraPosition = math3d.V3(0, 10, 20)

// Size is a viewport size in pixels.
type Size struct {
	Width, Height int
}

func (s Size) aspect() float64 {
	if s.Width <= 0 || s.Height <= 0 {
		return 1
	}
	return float64(s.Width) / float64(s.Height)
}

// Animation is stepped once per frame until it reports done.
type Animation func(now time.Time, cam *render.Camera, ctl *OrbitControls) (done bool)

// Option configures an Engine.
type Option func(*Engine)

// WithFrameSource replaces the ticker-driven frame source.
func WithFrameSource(fs FrameSource) Option {
	return func(e *Engine) { e.newFrames = func() FrameSource { return fs } }
}

// WithRenderer replaces the software renderer.
func WithRenderer(newRenderer func(Size) Renderer) Option {
	return func(e *Engine) { e.newRenderer = newRenderer }
}

// WithFPS sets the frame rate of the default frame source and the orbit
// spring step.
func WithFPS(fps int) Option {
	return func(e *Engine) {
		if fps > 0 {
			e.fps = fps
		}
	}
}

// Engine owns the scene, camera, renderer and orbit controls, and runs the
// render loop. All access to them goes through Do or the render loop, which
// share one mutex.
type Engine struct {
	mu          sync.Mutex
	scene       *Scene
	camera      *render.Camera
	controls    *OrbitControls
	renderer    Renderer
	size        Size
	animations  map[string]Animation
	initialized bool

	fps         int
	newFrames   func() FrameSource
	newRenderer func(Size) Renderer
	frames      FrameSource
	cancel      context.CancelFunc
	done        chan struct{}
	frameCount  atomic.Uint64
}

// NewEngine creates an uninitialized engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{fps: DefaultFPS}
	for _, o := range opts {
		o(e)
	}
	if e.newFrames == nil {
		e.newFrames = func() FrameSource { return NewTickerFrames(e.fps) }
	}
	if e.newRenderer == nil {
		e.newRenderer = func(s Size) Renderer { return NewRasterRenderer(s.Width, s.Height) }
	}
	return e
}

// Init creates the camera, renderer and controls, adds the default lights
// and helpers when missing, and starts the render loop. Calling Init on an
// initialized engine does nothing.
func (e *Engine) Init(ctx context.Context, size Size) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}
	if e.scene == nil {
		e.scene = NewScene(render.Hex(BackgroundHex))
	}
	e.scene.ensureDefaults()

	cam := render.NewCamera()
	cam.SetFOV(DefaultFOVDegrees * math.Pi / 180)
	cam.SetAspectRatio(size.aspect())
	cam.SetClipPlanes(DefaultNear, DefaultFar)
	cam.SetPosition(DefaultCameraPosition)
	cam.LookAt(math3d.Zero3())
	e.camera = cam
	e.controls = NewOrbitControls(cam, e.fps)
	e.renderer = e.newRenderer(size)
	e.size = size
	e.animations = make(map[string]Animation)

	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})
	e.frames = e.newFrames()
	e.initialized = true
	go e.loop(loopCtx, e.frames, e.done)
	log.Infof("Viewer engine initialized %dx%d", size.Width, size.Height)
	return nil
}

// Resize updates the camera aspect and renderer size.
func (e *Engine) Resize(size Size) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return
	}
	e.size = size
	e.camera.SetAspectRatio(size.aspect())
	e.renderer.SetSize(size.Width, size.Height)
}

// Destroy stops the render loop, waits for it to exit, and releases the
// controls and renderer. The scene and its objects are kept.
func (e *Engine) Destroy() {
	e.mu.Lock()
	if !e.initialized {
		e.mu.Unlock()
		return
	}
	cancel, done, frames := e.cancel, e.done, e.frames
	e.mu.Unlock()

	cancel()
	<-done
	frames.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized || e.done != done {
		return
	}
	e.controls.Dispose()
	e.renderer.Dispose()
	e.controls = nil
	e.renderer = nil
	e.camera = nil
	e.animations = nil
	e.cancel = nil
	e.frames = nil
	e.initialized = false
	log.Infof("Viewer engine destroyed after %d frames", e.frameCount.Load())
}

// Initialized reports whether the engine has a live camera and loop.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// Do runs fn with exclusive access to the scene graph.
func (e *Engine) Do(fn func(s *Scene, cam *render.Camera, ctl *OrbitControls)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	fn(e.scene, e.camera, e.controls)
	return nil
}

// Animate installs a on channel, replacing any animation already there.
func (e *Engine) Animate(channel string, a Animation) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	e.animations[channel] = a
	return nil
}

// Animating reports whether channel has an animation in flight.
func (e *Engine) Animating(channel string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.animations[channel]
	return ok
}

// Snapshot returns a copy of the last rendered frame.
func (e *Engine) Snapshot() (image.Image, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return nil, ErrDestroyed
	}
	img := e.renderer.Image()
	if img == nil {
		return nil, ErrDestroyed
	}
	return img, nil
}

// Scene returns the scene, creating it on first use. Callers must mutate it
// through Do once the engine is running.
func (e *Engine) Scene() *Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene == nil {
		e.scene = NewScene(render.Hex(BackgroundHex))
	}
	return e.scene
}

// Frames returns the number of frames rendered so far.
func (e *Engine) Frames() uint64 {
	return e.frameCount.Load()
}

// RenderFrame runs one frame: animations, controls, render.
func (e *Engine) RenderFrame(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return
	}
	for name, a := range e.animations {
		if a(now, e.camera, e.controls) {
			delete(e.animations, name)
		}
	}
	e.controls.Update()
	e.renderer.Render(e.scene, e.camera)
	e.frameCount.Add(1)
}

func (e *Engine) loop(ctx context.Context, frames FrameSource, done chan struct{}) {
	defer close(done)
	for {
		now, ok := frames.Next(ctx)
		if !ok || ctx.Err() != nil {
			return
		}
		e.RenderFrame(now)
	}
}
