package main

import (
	"fmt"
	"time"

	"fortio.org/terminal/ansipixels"
	"fortio.org/terminal/ansipixels/tcolor"
	"github.com/mattn/go-runewidth"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/viewer"
)

// panel is the component list and property panel drawn over the left side
// of the scene.
type panel struct {
	components []bim.Component
	cursor     int
	offset     int

	width      int
	listTop    int
	listHeight int
	propsTop   int
	propsRows  int
}

func newPanel(m *bim.Model) *panel {
	return &panel{components: m.Components}
}

// layout fits the panel to a terminal of w×h cells: the list takes the
// upper half, properties the rest, leaving the last row to the HUD.
func (p *panel) layout(w, h int) {
	p.width = min(36, max(w/3, 0))
	p.listTop = 1
	usable := max(h-2, 0)
	p.listHeight = min(len(p.components), usable/2)
	p.propsTop = p.listTop + p.listHeight + 1
	p.propsRows = max(h-1-p.propsTop, 0)
	p.scroll()
}

func (p *panel) scroll() {
	if p.listHeight <= 0 {
		p.offset = 0
		return
	}
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+p.listHeight {
		p.offset = p.cursor - p.listHeight + 1
	}
}

// move shifts the cursor by delta, clamped to the list.
func (p *panel) move(delta int) {
	if len(p.components) == 0 {
		return
	}
	p.cursor = min(max(p.cursor+delta, 0), len(p.components)-1)
	p.scroll()
}

// current returns the component id under the cursor.
func (p *panel) current() (string, bool) {
	if p.cursor < 0 || p.cursor >= len(p.components) {
		return "", false
	}
	return p.components[p.cursor].ID, true
}

// focus moves the cursor onto id, e.g. after a pick in the scene.
func (p *panel) focus(id string) {
	for i, c := range p.components {
		if c.ID == id {
			p.cursor = i
			p.scroll()
			return
		}
	}
}

// hit maps a terminal cell to the list row under it.
func (p *panel) hit(x, y int) (string, bool) {
	if x < 0 || x >= p.width || y < p.listTop || y >= p.listTop+p.listHeight {
		return "", false
	}
	i := p.offset + y - p.listTop
	if i >= len(p.components) {
		return "", false
	}
	p.cursor = i
	return p.components[i].ID, true
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.Truncate(s, w, "…")
}

// listLines renders the visible rows of the list.
func (p *panel) listLines(sel viewer.Selection) []string {
	end := min(p.offset+p.listHeight, len(p.components))
	lines := make([]string, 0, end-p.offset)
	for i := p.offset; i < end; i++ {
		c := p.components[i]
		mark := "  "
		switch {
		case sel.Valid && sel.ID == c.ID:
			mark = "* "
		case i == p.cursor:
			mark = "> "
		}
		lines = append(lines, truncate(mark+c.Name, p.width))
	}
	return lines
}

// propertyLines renders the property panel of c.
func propertyLines(c bim.Component, width int) []string {
	lines := []string{
		truncate(c.Name, width),
		truncate(fmt.Sprintf("id: %s  type: %s", c.ID, c.Type), width),
	}
	if c.Status != "" {
		lines = append(lines, truncate("status: "+string(c.Status), width))
	}
	for _, prop := range c.Properties {
		s := fmt.Sprintf("%s: %s", prop.Key, prop.Value)
		if prop.Unit != "" {
			s += " " + prop.Unit
		}
		lines = append(lines, truncate(s, width))
	}
	return lines
}

func statusColor(s bim.Status) string {
	switch s {
	case bim.StatusSafe:
		return tcolor.Green.Foreground()
	case bim.StatusWarning:
		return tcolor.Yellow.Foreground()
	case bim.StatusDanger:
		return tcolor.Red.Foreground()
	}
	return ""
}

func (p *panel) draw(ap *ansipixels.AnsiPixels, sel viewer.Selection, selected *bim.Component) {
	if p.width <= 0 {
		return
	}
	ap.WriteAt(0, 0, "%s%s%s", tcolor.Cyan.Foreground(), truncate(fmt.Sprintf("Components (%d)", len(p.components)), p.width), tcolor.Reset)
	if len(p.components) == 0 {
		ap.WriteAt(0, p.listTop, "%s", truncate("No components in this model", p.width))
	}
	for i, line := range p.listLines(sel) {
		c := p.components[p.offset+i]
		ap.WriteAt(0, p.listTop+i, "%s%s%s", statusColor(c.Status), line, tcolor.Reset)
	}
	if p.propsRows <= 0 {
		return
	}
	ap.WriteAt(0, p.propsTop, "%s%s%s", tcolor.Cyan.Foreground(), "Properties", tcolor.Reset)
	if selected == nil {
		ap.WriteAt(0, p.propsTop+1, "%s", truncate("Click a component to inspect it", p.width))
		return
	}
	for i, line := range propertyLines(*selected, p.width) {
		if i+1 >= p.propsRows {
			break
		}
		ap.WriteAt(0, p.propsTop+1+i, "%s", line)
	}
}

// hud shows frame rate, model name and load state on the last row.
type hud struct {
	model     string
	show      bool
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func newHUD(model string) *hud {
	return &hud{model: model, show: true, fpsTime: time.Now()}
}

// tick updates the FPS counter; call once per frame.
func (h *hud) tick() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

func (h *hud) draw(ap *ansipixels.AnsiPixels, status viewer.LoadStatus, sel viewer.Selection) {
	if !h.show {
		return
	}
	ap.WriteRight(0, tcolor.Green.Foreground()+"%.0f FPS"+tcolor.Reset, h.fps)
	ap.WriteCentered(ap.H-1, "%s [%s] selection: %s", h.model, status.State, sel)
	ap.WriteRight(ap.H-1, "%s?: hud  q: quit%s", tcolor.Yellow.Foreground(), tcolor.Reset)
}
