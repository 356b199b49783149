package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/models"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/viewer"
)

func newInfoCmd(opts *rootOptions) *cobra.Command {
	var (
		src        sourceFlags
		filterJSON string
	)
	cmd := &cobra.Command{
		Use:   "info [exported.glb|exported.stl]",
		Short: "Display BIM model or exported file information",
		Long: `Display a BIM model: metadata, components with their synthesized
shapes, and relationships. With a file argument, summarize a file written
by "bimview export" instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				return fileInfo(out, args[0])
			}
			var f bim.Filter
			if filterJSON != "" {
				if err := json.Unmarshal([]byte(filterJSON), &f); err != nil {
					return fmt.Errorf("%w: %v", bim.ErrInvalidFilter, err)
				}
				if err := f.Validate(); err != nil {
					return err
				}
			}
			s, err := src.open(opts.cfg)
			if err != nil {
				return err
			}
			m, err := src.load(cmd.Context(), s)
			if err != nil {
				return err
			}
			return modelInfo(out, m, f)
		},
	}
	src.register(cmd)
	cmd.Flags().StringVar(&filterJSON, "filter", "", `Component filter as JSON, e.g. '{"status":["WARNING"]}'`)
	return cmd
}

func modelInfo(out io.Writer, m *bim.Model, f bim.Filter) error {
	md := m.Metadata
	fmt.Fprintf(out, "Model:      %s (%s)\n", md.Name, md.ID)
	fmt.Fprintf(out, "Bridge:     %s\n", md.BridgeID)
	fmt.Fprintf(out, "Version:    %s\n", md.Version)
	fmt.Fprintf(out, "Source:     %s -> %s\n", md.SourceFormat, md.GeometryFormat)
	if !md.ConvertedAt.IsZero() {
		fmt.Fprintf(out, "Converted:  %s\n", md.ConvertedAt.Format("2006-01-02 15:04 MST"))
	}
	fmt.Fprintf(out, "Components: %d listed, %d declared, %d with geometry\n",
		len(m.Components), md.ComponentCount, len(m.Geometries))
	fmt.Fprintln(out)

	components := f.Apply(m.Components)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tSHAPE\tPOSITION")
	for _, c := range components {
		idx := indexOf(m, c.ID)
		shape, pos := "-", "-"
		if syn, err := viewer.SynthesizeComponent(m, idx); err == nil {
			shape = describeShape(syn.Shape)
			if syn.Fallback {
				shape += " (placeholder)"
			}
			p := syn.Object.Position
			pos = fmt.Sprintf("%.1f, %.1f, %.1f", p.X, p.Y, p.Z)
		} else {
			shape = "error: " + err.Error()
		}
		status := string(c.Status)
		if status == "" {
			status = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Type, status, shape, pos)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if !f.IsZero() {
		fmt.Fprintf(out, "(%d of %d components match the filter)\n", len(components), len(m.Components))
	}

	if len(m.Relationships) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Relationships:")
		for _, r := range m.Relationships {
			fmt.Fprintf(out, "  %s: %s -%s-> %s\n", r.ID, r.FromComponentID, r.Type, r.ToComponentID)
		}
	}
	return nil
}

func indexOf(m *bim.Model, id string) int {
	for i, c := range m.Components {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func describeShape(s viewer.Shape) string {
	if s.Kind == viewer.ShapeCylinder {
		return fmt.Sprintf("cylinder r=%.2f h=%.2f", s.Radius, s.Height)
	}
	return fmt.Sprintf("box %.2fx%.2fx%.2f", s.Size.X, s.Size.Y, s.Size.Z)
}

// fileInfo summarizes an exported GLB or STL file.
func fileInfo(out io.Writer, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	fmt.Fprintf(out, "File:       %s\n", filepath.Base(path))
	fmt.Fprintf(out, "Format:     %s\n", strings.ToUpper(strings.TrimPrefix(ext, ".")))
	fmt.Fprintf(out, "Size:       %.2f KB\n", float64(st.Size())/1024)

	switch ext {
	case ".glb":
		s, err := models.SummarizeGLB(f)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Nodes:      %d (%s)\n", len(s.Nodes), strings.Join(s.Nodes, ", "))
		fmt.Fprintf(out, "Meshes:     %d\n", s.Meshes)
		fmt.Fprintf(out, "Materials:  %d\n", s.Materials)
		fmt.Fprintf(out, "Triangles:  %d\n", s.Triangles)
	case ".stl":
		mesh, err := models.ReadSTL(f, filepath.Base(path))
		if err != nil {
			return err
		}
		mesh.CalculateBounds()
		size, center := mesh.Size(), mesh.Center()
		fmt.Fprintf(out, "Vertices:   %d\n", mesh.VertexCount())
		fmt.Fprintf(out, "Triangles:  %d\n", mesh.TriangleCount())
		fmt.Fprintf(out, "Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
		fmt.Fprintf(out, "Center:     (%.3f, %.3f, %.3f)\n", center.X, center.Y, center.Z)
	default:
		return fmt.Errorf("unsupported format: %s (use .glb or .stl)", ext)
	}
	return nil
}
