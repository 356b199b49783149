package scene

import (
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/models"
)

// ExportNodes converts the tagged meshes into export nodes, carrying the
// material and the component binding along as extras.
func (s *Scene) ExportNodes() []models.ExportNode {
	var nodes []models.ExportNode
	for _, o := range s.Tagged() {
		if o.Mesh == nil || o.Mesh.Disposed() {
			continue
		}
		n := models.ExportNode{
			Name:        o.Tag.ComponentID,
			Mesh:        o.Mesh,
			Translation: o.Position,
			Rotation:    o.Rotation,
			Scale:       o.Scale,
			Extras: map[string]any{
				"modelId":     o.Tag.ModelID,
				"componentId": o.Tag.ComponentID,
			},
		}
		if m := o.Material; m != nil {
			c := m.Color.Floats()
			e := m.Emissive.Floats()
			n.Material = models.Material{
				Name:      o.Name,
				BaseColor: [4]float64{c[0], c[1], c[2], 1},
				Emissive:  [3]float64{e[0] * m.EmissiveIntensity, e[1] * m.EmissiveIntensity, e[2] * m.EmissiveIntensity},
				Metallic:  m.Metalness,
				Roughness: m.Roughness,
			}
		}
		nodes = append(nodes, n)
	}
	return nodes
}
