package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fortio.org/log"
	"github.com/spf13/cobra"

	"github.com/LeeJaeHyekk/bridge-bim-platform/internal/config"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/models"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/scene"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/viewer"
)

type exportOptions struct {
	output   string
	format   string
	width    int
	height   int
	selectID string
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		src sourceFlags
		eo  exportOptions
	)
	cmd := &cobra.Command{
		Use:   "export -o <file.glb|file.stl|file.png>",
		Short: "Export the synthesized scene of a BIM model",
		Long: `Export the synthesized scene of a BIM model.

glb and stl write the component meshes; png renders a snapshot, framed on
the --select component when given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := src.open(opts.cfg)
			if err != nil {
				return err
			}
			m, err := src.load(cmd.Context(), s)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), opts.cfg, m, eo)
		},
	}
	src.register(cmd)
	cmd.Flags().StringVarP(&eo.output, "output", "o", "", "Output file")
	cmd.Flags().StringVarP(&eo.format, "format", "f", "", "glb, stl or png (default: from the output extension)")
	cmd.Flags().IntVar(&eo.width, "width", 800, "Snapshot width in pixels")
	cmd.Flags().IntVar(&eo.height, "height", 600, "Snapshot height in pixels")
	cmd.Flags().StringVar(&eo.selectID, "select", "", "Component to select and frame before the snapshot")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func exportFormat(eo exportOptions) (string, error) {
	f := strings.ToLower(eo.format)
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(eo.output)), ".")
	}
	switch f {
	case "glb", "stl", "png":
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q (use glb, stl or png)", f)
}

// headlessViewer mounts a viewer driven by explicit RenderFrame calls.
func headlessViewer(ctx context.Context, cfg config.Config, width, height int) (*viewer.Viewer, error) {
	v := viewer.New(viewer.Options{
		FPS:           cfg.Viewer.FPS,
		FillRatio:     cfg.Viewer.FillRatio,
		FocusDuration: cfg.Viewer.FocusDuration.Std(),
		Concurrency:   cfg.Viewer.Concurrency,
		FrameSource:   scene.NewManualFrames(),
	})
	if err := v.Mount(ctx, scene.Size{Width: width, Height: height}); err != nil {
		return nil, err
	}
	return v, nil
}

// settle renders frames on a synthetic clock until camera animations end.
func settle(v *viewer.Viewer, fps int) {
	step := time.Second / time.Duration(max(fps, 1))
	now := time.Now()
	for i := 0; i < 10*max(fps, 1); i++ {
		v.Engine.RenderFrame(now)
		now = now.Add(step)
		if !v.Framer.Animating() {
			break
		}
	}
	v.Engine.RenderFrame(now)
}

func runExport(ctx context.Context, cfg config.Config, m *bim.Model, eo exportOptions) error {
	format, err := exportFormat(eo)
	if err != nil {
		return err
	}
	if eo.width <= 0 || eo.height <= 0 {
		return fmt.Errorf("invalid snapshot size %dx%d", eo.width, eo.height)
	}
	v, err := headlessViewer(ctx, cfg, eo.width, eo.height)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.LoadModel(ctx, m); err != nil {
		return err
	}
	select {
	case <-v.Ready():
	default:
		log.Warnf("Model %s is only partially loaded (%d of %d components)",
			m.Metadata.ID, v.Registry.Len(), len(m.Components))
	}
	if eo.selectID != "" {
		if !v.Registry.Has(eo.selectID) {
			return fmt.Errorf("component %q: %w", eo.selectID, bim.ErrNotFound)
		}
		v.Select(ctx, eo.selectID)
	}

	f, err := os.Create(eo.output)
	if err != nil {
		return err
	}
	if err := writeExport(f, format, v, m, cfg.Viewer.FPS); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Infof("Exported %s (%d components) to %s", m.Metadata.ID, v.Registry.Len(), eo.output)
	return nil
}

func writeExport(w io.Writer, format string, v *viewer.Viewer, m *bim.Model, fps int) error {
	if format == "png" {
		settle(v, fps)
		img, err := v.Snapshot()
		if err != nil {
			return err
		}
		return png.Encode(w, img)
	}
	nodes, err := v.ExportNodes()
	if err != nil {
		return err
	}
	if format == "stl" {
		return models.WriteSTL(w, m.Metadata.ID, nodes)
	}
	return models.WriteGLB(w, nodes)
}
