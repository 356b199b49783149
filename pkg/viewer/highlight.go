package viewer

import (
	"fortio.org/log"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/scene"
)

// Highlight appearance of the selected component.
const (
	HighlightIntensity  = 0.8
	HighlightBrightness = 1.3
)

// Highlighter recolors registered objects for a selection.
type Highlighter struct {
	engine *scene.Engine
	reg    *Registry
}

func NewHighlighter(engine *scene.Engine, reg *Registry) *Highlighter {
	return &Highlighter{engine: engine, reg: reg}
}

// Apply brightens the selected component and restores every other one to
// its original appearance. With no selection everything is restored.
func (h *Highlighter) Apply(sel Selection) error {
	return h.engine.Do(func(*scene.Scene, *render.Camera, *scene.OrbitControls) {
		applyHighlight(h.reg, sel)
	})
}

func applyHighlight(reg *Registry, sel Selection) {
	found := false
	for _, e := range reg.Entries() {
		m := e.Object.Material
		if m == nil {
			continue
		}
		if sel.Valid && e.Component.ID == sel.ID {
			found = true
			m.Color = render.MultiplyColor(e.OriginalColor, HighlightBrightness)
			m.Emissive = e.OriginalEmissive
			m.EmissiveIntensity = HighlightIntensity
			continue
		}
		m.Color = e.OriginalColor
		m.Emissive = e.OriginalEmissive
		m.EmissiveIntensity = e.OriginalIntensity
	}
	if sel.Valid && !found {
		log.Warnf("Selected component %s has no mesh among %d registered", sel.ID, reg.Len())
	}
}
