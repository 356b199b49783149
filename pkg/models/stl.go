package models

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
)

// stlHeaderSize is the fixed 80-byte header plus the uint32 triangle count.
const stlHeaderSize = 84

// stlTriangleSize is normal + 3 vertices (12 float32) + attribute count.
const stlTriangleSize = 50

// WriteSTL writes the given world-space meshes as one binary STL solid.
// Each entry's Transform is applied to its vertices.
func WriteSTL(w io.Writer, name string, nodes []ExportNode) error {
	bw := bufio.NewWriter(w)

	var header [80]byte
	copy(header[:], "bimview "+name)
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("write stl header: %w", err)
	}

	total := 0
	for _, n := range nodes {
		total += n.Mesh.TriangleCount()
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(total)); err != nil {
		return fmt.Errorf("write stl count: %w", err)
	}

	var buf [stlTriangleSize]byte
	for _, n := range nodes {
		xf := n.Transform()
		for i := range n.Mesh.TriangleCount() {
			f := n.Mesh.GetFace(i)
			var p [3]math3d.Vec3
			for k := range 3 {
				pos, _, _ := n.Mesh.GetVertex(f[k])
				p[k] = xf.MulVec3(pos)
			}
			normal := p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Normalize()
			putVec3LE(buf[0:], normal)
			putVec3LE(buf[12:], p[0])
			putVec3LE(buf[24:], p[1])
			putVec3LE(buf[36:], p[2])
			binary.LittleEndian.PutUint16(buf[48:], 0)
			if _, err := bw.Write(buf[:]); err != nil {
				return fmt.Errorf("write stl triangle: %w", err)
			}
		}
	}
	return bw.Flush()
}

func putVec3LE(b []byte, v math3d.Vec3) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z)))
}

// ReadSTL parses a binary STL file, deduplicating identical vertices.
func ReadSTL(r io.Reader, name string) (*Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL data: %w", err)
	}
	if len(data) < stlHeaderSize {
		return nil, fmt.Errorf("binary STL too short: %d bytes", len(data))
	}

	triCount := binary.LittleEndian.Uint32(data[80:84])
	expectedSize := stlHeaderSize + uint64(triCount)*stlTriangleSize
	if uint64(len(data)) < expectedSize {
		return nil, fmt.Errorf("binary STL truncated: expected %d bytes, got %d", expectedSize, len(data))
	}

	mesh := NewMesh(name)
	vertexMap := make(map[math3d.Vec3]int)

	offset := stlHeaderSize
	for range triCount {
		normal := readVec3LE(data[offset:])
		offset += 12

		var face [3]int
		for v := range 3 {
			pos := readVec3LE(data[offset:])
			offset += 12
			idx, ok := vertexMap[pos]
			if !ok {
				idx = mesh.AddVertex(pos, normal, math3d.Vec2{})
				vertexMap[pos] = idx
			}
			face[v] = idx
		}
		offset += 2 // attribute byte count

		mesh.Faces = append(mesh.Faces, Face{V: face})
	}

	mesh.CalculateBounds()
	return mesh, nil
}

func readVec3LE(b []byte) math3d.Vec3 {
	return math3d.V3(
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
	)
}
