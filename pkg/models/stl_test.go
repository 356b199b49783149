package models

import (
	"bytes"
	"testing"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/math3d"
)

func TestWriteSTLRoundTrip(t *testing.T) {
	box, err := NewBox("b", math3d.V3(2, 2, 2))
	if err != nil {
		t.Fatal(err)
	}
	nodes := []ExportNode{{
		Name:        "b",
		Mesh:        box,
		Translation: math3d.V3(10, 0, 0),
	}}

	var buf bytes.Buffer
	if err := WriteSTL(&buf, "test", nodes); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	if got, want := buf.Len(), stlHeaderSize+12*stlTriangleSize; got != want {
		t.Fatalf("stl size = %d, want %d", got, want)
	}

	mesh, err := ReadSTL(&buf, "test.stl")
	if err != nil {
		t.Fatalf("ReadSTL: %v", err)
	}
	if mesh.TriangleCount() != 12 {
		t.Errorf("TriangleCount = %d, want 12", mesh.TriangleCount())
	}
	// 8 corners after deduplication
	if mesh.VertexCount() != 8 {
		t.Errorf("VertexCount = %d, want 8", mesh.VertexCount())
	}
	if mesh.BoundsMin != math3d.V3(9, -1, -1) || mesh.BoundsMax != math3d.V3(11, 1, 1) {
		t.Errorf("bounds = %v..%v, want translated box", mesh.BoundsMin, mesh.BoundsMax)
	}
}

func TestReadSTLTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", make([]byte, 10)},
		{"missing triangles", append(make([]byte, 80), 2, 0, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadSTL(bytes.NewReader(tt.data), "bad.stl"); err == nil {
				t.Error("expected error")
			}
		})
	}
}
