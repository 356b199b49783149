package scene

import "github.com/LeeJaeHyekk/bridge-bim-platform/pkg/render"

// Material is a standard PBR-style surface description.
type Material struct {
	Color             render.Color
	Emissive          render.Color
	EmissiveIntensity float64
	Metalness         float64
	Roughness         float64

	disposed bool
}

// Dispose marks the material released.
func (m *Material) Dispose() {
	m.disposed = true
}

// Disposed reports whether Dispose has been called.
func (m *Material) Disposed() bool {
	return m.disposed
}
