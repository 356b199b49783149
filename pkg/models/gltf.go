package models

import (
	"bytes"
	"fmt"
	"io"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// Material is the PBR material written alongside an exported mesh.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
	Emissive  [3]float64 // RGB in 0-1 range, already scaled by intensity
	Metallic  float64    // 0 = dielectric, 1 = metal
	Roughness float64    // 0 = smooth, 1 = rough
}

// ExportNode is one placed mesh in an exported scene.
type ExportNode struct {
	Name        string
	Mesh        *Mesh
	Translation math3d.Vec3
	Rotation    math3d.Quat
	Scale       math3d.Vec3
	Material    Material
	Extras      map[string]any
}

// Transform returns the node's local-to-world matrix.
func (n ExportNode) Transform() math3d.Mat4 {
	scale := n.Scale
	if scale == (math3d.Vec3{}) {
		scale = math3d.V3(1, 1, 1)
	}
	rot := n.Rotation
	if rot == (math3d.Quat{}) {
		rot = math3d.IdentityQuat()
	}
	return math3d.Compose(n.Translation, rot, scale)
}

// BuildGLTF converts nodes into a glTF document: one mesh, material and
// node per entry, all under the default scene.
func BuildGLTF(nodes []ExportNode) (*gltf.Document, error) {
	doc := gltf.NewDocument()
	for i, n := range nodes {
		if n.Mesh == nil || n.Mesh.TriangleCount() == 0 {
			return nil, fmt.Errorf("node %d (%s): empty mesh", i, n.Name)
		}

		positions := make([][3]float32, len(n.Mesh.Vertices))
		normals := make([][3]float32, len(n.Mesh.Vertices))
		for j, v := range n.Mesh.Vertices {
			positions[j] = toFloat32(v.Position)
			normals[j] = toFloat32(v.Normal)
		}
		indices := make([]uint32, 0, len(n.Mesh.Faces)*3)
		for _, f := range n.Mesh.Faces {
			indices = append(indices, uint32(f.V[0]), uint32(f.V[1]), uint32(f.V[2]))
		}

		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: n.Material.Name,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &n.Material.BaseColor,
				MetallicFactor:  gltf.Float(n.Material.Metallic),
				RoughnessFactor: gltf.Float(n.Material.Roughness),
			},
			EmissiveFactor: n.Material.Emissive,
		})
		matIdx := len(doc.Materials) - 1

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: n.Name,
			Primitives: []*gltf.Primitive{{
				Indices: gltf.Index(modeler.WriteIndices(doc, indices)),
				Attributes: gltf.PrimitiveAttributes{
					gltf.POSITION: modeler.WritePosition(doc, positions),
					gltf.NORMAL:   modeler.WriteNormal(doc, normals),
				},
				Material: gltf.Index(matIdx),
			}},
		})

		rot := n.Rotation
		if rot == (math3d.Quat{}) {
			rot = math3d.IdentityQuat()
		}
		scale := n.Scale
		if scale == (math3d.Vec3{}) {
			scale = math3d.V3(1, 1, 1)
		}
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        n.Name,
			Mesh:        gltf.Index(len(doc.Meshes) - 1),
			Translation: n.Translation.Array(),
			Rotation:    [4]float64{rot.X, rot.Y, rot.Z, rot.W},
			Scale:       scale.Array(),
			Extras:      n.Extras,
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc, nil
}

// WriteGLB encodes nodes as a binary glTF (.glb) stream.
func WriteGLB(w io.Writer, nodes []ExportNode) error {
	doc, err := BuildGLTF(nodes)
	if err != nil {
		return fmt.Errorf("build gltf: %w", err)
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode glb: %w", err)
	}
	return nil
}

// GLBSummary describes a decoded GLB file.
type GLBSummary struct {
	Nodes     []string
	Meshes    int
	Materials int
	Triangles int
}

// SummarizeGLB decodes a GLB stream and counts its contents.
func SummarizeGLB(r io.Reader) (GLBSummary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return GLBSummary{}, fmt.Errorf("read glb: %w", err)
	}
	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return GLBSummary{}, fmt.Errorf("decode glb: %w", err)
	}
	s := GLBSummary{Meshes: len(doc.Meshes), Materials: len(doc.Materials)}
	for _, n := range doc.Nodes {
		s.Nodes = append(s.Nodes, n.Name)
	}
	for _, m := range doc.Meshes {
		for _, p := range m.Primitives {
			if p.Indices == nil {
				continue
			}
			i := *p.Indices
			if i < 0 || i >= len(doc.Accessors) || doc.Accessors[i] == nil {
				return GLBSummary{}, fmt.Errorf("mesh %q: index accessor %d out of range (%d accessors)", m.Name, i, len(doc.Accessors))
			}
			s.Triangles += int(doc.Accessors[i].Count) / 3
		}
	}
	return s, nil
}

func toFloat32(v math3d.Vec3) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}
