package main

import (
	"context"
	"fmt"
	"image"
	"time"

	"fortio.org/log"
	"fortio.org/terminal/ansipixels"
	"github.com/spf13/cobra"

	"github.com/LeeJaeHyekk/bridge-bim-platform/internal/config"
	"github.com/LeeJaeHyekk/bridge-bim-platform/internal/notify"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/scene"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/viewer"
)

func newViewCmd(opts *rootOptions) *cobra.Command {
	var (
		src sourceFlags
		fps int
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View a BIM model in the terminal",
		Long: `View a BIM model in the terminal.

Controls:
  Click model    - Select the component under the cursor
  Click list     - Select a component from the list
  Mouse drag     - Orbit camera
  Scroll, +/-    - Zoom
  j/k, Up/Down   - Move list cursor
  Left/Right     - Pan camera sideways
  PgUp/PgDn      - Pan camera up/down
  Enter          - Select list cursor
  W/S/A/D        - Orbit camera
  F              - Frame whole model
  ?              - Toggle HUD
  Esc            - Clear selection (quit when nothing is selected)
  Q, Ctrl-C      - Quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if fps > 0 {
				cfg.Viewer.FPS = fps
			}
			s, err := src.open(cfg)
			if err != nil {
				return err
			}
			m, err := src.load(cmd.Context(), s)
			if err != nil {
				return err
			}
			return runView(cmd.Context(), cfg, m)
		},
	}
	src.register(cmd)
	cmd.Flags().IntVar(&fps, "fps", 0, "Target FPS (overrides viewer.fps)")
	return cmd
}

const (
	orbitStep = 0.08
	dragScale = 0.02
	zoomStep  = 0.15
	panStep   = 0.05
)

type navKey int

const (
	navNone navKey = iota
	navUp
	navDown
	navRight
	navLeft
	navPageUp
	navPageDown
)

// parseEscape decodes a CSI key sequence at the start of b: arrows are
// ESC [ A..D, page keys ESC [ 5 ~ and ESC [ 6 ~. It returns the bytes
// consumed, 0 when b does not start with a CSI sequence.
func parseEscape(b []byte) (navKey, int) {
	if len(b) < 3 || b[0] != 27 || b[1] != '[' {
		return navNone, 0
	}
	switch b[2] {
	case 'A':
		return navUp, 3
	case 'B':
		return navDown, 3
	case 'C':
		return navRight, 3
	case 'D':
		return navLeft, 3
	case '5', '6':
		k := navPageUp
		if b[2] == '6' {
			k = navPageDown
		}
		if len(b) > 3 && b[3] == '~' {
			return k, 4
		}
		return k, 3
	}
	return navNone, 3
}

// mouseCell converts the terminal's 1-based mouse report to the 0-based
// cells WriteAt and the panel use.
func mouseCell(mx, my int) (x, y int) {
	return mx - 1, my - 1
}

func newViewer(cfg config.Config) (*viewer.Viewer, func(), error) {
	opts := viewer.Options{
		FPS:           cfg.Viewer.FPS,
		FillRatio:     cfg.Viewer.FillRatio,
		FocusDuration: cfg.Viewer.FocusDuration.Std(),
		Concurrency:   cfg.Viewer.Concurrency,
		FrameSource:   scene.NewManualFrames(),
	}
	cleanup := func() {}
	if cfg.NATS.URL != "" {
		pub, err := notify.Connect(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			return nil, nil, err
		}
		opts.Publisher = pub
		cleanup = pub.Close
	}
	return viewer.New(opts), cleanup, nil
}

//nolint:gocognit,funlen // one event loop.
func runView(ctx context.Context, cfg config.Config, m *bim.Model) error {
	v, cleanup, err := newViewer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ap := ansipixels.NewAnsiPixels(float64(cfg.Viewer.FPS))
	if err := ap.Open(); err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer func() {
		ap.ShowCursor()
		ap.MouseTrackingOff()
		ap.Out.Flush()
		ap.Restore()
	}()
	ap.SyncBackgroundColor()
	ap.MouseTrackingOn()
	ap.HideCursor()
	if ap.W <= 0 || ap.H <= 0 {
		return fmt.Errorf("invalid terminal size: %dx%d", ap.W, ap.H)
	}

	// Half-block cells: two pixel rows per terminal row.
	if err := v.Mount(ctx, scene.Size{Width: ap.W, Height: ap.H * 2}); err != nil {
		return err
	}
	defer v.Close()
	if err := v.LoadModel(ctx, m); err != nil {
		return err
	}

	p := newPanel(m)
	p.layout(ap.W, ap.H)
	h := newHUD(m.Metadata.Name)
	v.OnSelect(func(sel viewer.Selection) {
		if sel.Valid {
			p.focus(sel.ID)
		}
	})

	controls := func(fn func(*scene.OrbitControls)) {
		if err := v.Engine.Do(func(_ *scene.Scene, _ *render.Camera, ctl *scene.OrbitControls) { fn(ctl) }); err != nil {
			log.Warnf("Camera control: %v", err)
		}
	}
	viewport := func() viewer.Viewport {
		return viewer.Viewport{Width: ap.W, Height: ap.H * 2}
	}
	click := func(x, y int) {
		if id, ok := p.hit(x, y); ok {
			v.Select(ctx, id)
			return
		}
		// Cell centre in pixel space.
		if id, ok := v.Click(ctx, float64(x)+0.5, float64(y)*2+1, viewport()); ok {
			log.LogVf("Picked %s", id)
		}
	}

	var (
		pressX, pressY = -1, -1
		lastX, lastY   int
	)
	ap.OnMouse = func() {
		x, y := mouseCell(ap.Mx, ap.My)
		switch {
		case ap.MouseWheelUp():
			controls(func(c *scene.OrbitControls) { c.Zoom(zoomStep) })
		case ap.MouseWheelDown():
			controls(func(c *scene.OrbitControls) { c.Zoom(-zoomStep) })
		case ap.LeftClick():
			pressX, pressY = x, y
		case ap.LeftDrag():
			dx, dy := x-lastX, y-lastY
			controls(func(c *scene.OrbitControls) { c.Rotate(-float64(dx)*dragScale, -float64(dy)*dragScale) })
		case ap.MouseRelease():
			if x == pressX && y == pressY {
				click(x, y)
			}
			pressX, pressY = -1, -1
		}
		lastX, lastY = x, y
	}
	ap.OnResize = func() error {
		v.Resize(scene.Size{Width: ap.W, Height: ap.H * 2})
		p.layout(ap.W, ap.H)
		return nil
	}

	key := func(b byte) bool {
		switch b {
		case 'q', 'Q', 3, 4: // Ctrl-C, Ctrl-D
			return false
		case 27:
			if !v.ClearSelection(ctx) {
				return false
			}
		case 'j':
			p.move(1)
		case 'k':
			p.move(-1)
		case '\r', '\n':
			if id, ok := p.current(); ok {
				v.Select(ctx, id)
			}
		case 'w', 'W':
			controls(func(c *scene.OrbitControls) { c.Rotate(0, -orbitStep) })
		case 's', 'S':
			controls(func(c *scene.OrbitControls) { c.Rotate(0, orbitStep) })
		case 'a', 'A':
			controls(func(c *scene.OrbitControls) { c.Rotate(-orbitStep, 0) })
		case 'd', 'D':
			controls(func(c *scene.OrbitControls) { c.Rotate(orbitStep, 0) })
		case '+', '=':
			controls(func(c *scene.OrbitControls) { c.Zoom(zoomStep) })
		case '-', '_':
			controls(func(c *scene.OrbitControls) { c.Zoom(-zoomStep) })
		case 'f', 'F':
			if err := v.Framer.FocusScene(v.Loader.Model()); err != nil {
				log.Warnf("Frame model: %v", err)
			}
		case '?':
			h.show = !h.show
		}
		return true
	}

	err = ap.FPSTicks(func() bool {
		for i := 0; i < len(ap.Data); i++ {
			if k, n := parseEscape(ap.Data[i:]); n > 0 {
				switch k {
				case navUp:
					p.move(-1)
				case navDown:
					p.move(1)
				case navRight:
					controls(func(c *scene.OrbitControls) { c.Pan(panStep, 0) })
				case navLeft:
					controls(func(c *scene.OrbitControls) { c.Pan(-panStep, 0) })
				case navPageUp:
					controls(func(c *scene.OrbitControls) { c.Pan(0, panStep) })
				case navPageDown:
					controls(func(c *scene.OrbitControls) { c.Pan(0, -panStep) })
				}
				i += n - 1
				continue
			}
			if !key(ap.Data[i]) {
				return false
			}
		}

		v.Engine.RenderFrame(time.Now())
		img, err := v.Snapshot()
		if err != nil {
			log.Errf("snapshot: %v", err)
			return false
		}
		rgba, ok := img.(*image.RGBA)
		if !ok {
			log.Errf("unexpected frame type %T", img)
			return false
		}
		ap.ClearScreen()
		if err := ap.ShowScaledImage(rgba); err != nil {
			log.Errf("show image: %v", err)
			return false
		}
		sel := v.Selection()
		var selected *bim.Component
		if c, ok := v.SelectedComponent(); ok {
			selected = &c
		}
		p.draw(ap, sel, selected)
		h.tick()
		h.draw(ap, v.Loader.Status(), sel)
		return true
	})
	if err != nil {
		return fmt.Errorf("main loop: %w", err)
	}
	return nil
}
