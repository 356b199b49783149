package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeeJaeHyekk/bridge-bim-platform/internal/config"
	"github.com/LeeJaeHyekk/bridge-bim-platform/internal/repository"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/bim"
	"github.com/LeeJaeHyekk/bridge-bim-platform/pkg/client"
)

// modelSource is where the CLI reads bridges and models from: the local
// fixtures or a running API server.
type modelSource interface {
	Bridges(ctx context.Context) ([]bim.Bridge, error)
	Models(ctx context.Context) ([]bim.Metadata, error)
	Model(ctx context.Context, modelID string) (*bim.Model, error)
	ModelByBridge(ctx context.Context, bridgeID string) (*bim.Model, error)
}

type localSource struct {
	*repository.Memory
}

func (l localSource) Bridges(ctx context.Context) ([]bim.Bridge, error) {
	return l.ListBridges(ctx)
}

func (l localSource) Models(ctx context.Context) ([]bim.Metadata, error) {
	return l.ListModels(ctx)
}

var _ modelSource = (*client.Client)(nil)

type sourceFlags struct {
	modelID  string
	bridgeID string
	remote   bool
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.modelID, "model", "m", "", "BIM model id (default: first model)")
	cmd.Flags().StringVarP(&s.bridgeID, "bridge", "b", "", "Bridge id; loads the bridge's model")
	cmd.Flags().BoolVar(&s.remote, "remote", false, "Read from the API server at client.api_url instead of local fixtures")
}

func (s *sourceFlags) open(cfg config.Config) (modelSource, error) {
	if s.remote {
		return client.New(cfg.Client.APIURL, client.WithTimeout(cfg.Client.Timeout.Std()))
	}
	repo, err := repository.Open(cfg.Fixtures)
	if err != nil {
		return nil, err
	}
	return localSource{repo}, nil
}

// load resolves the model named by the flags.
func (s *sourceFlags) load(ctx context.Context, src modelSource) (*bim.Model, error) {
	var (
		m   *bim.Model
		err error
	)
	switch {
	case s.bridgeID != "":
		m, err = src.ModelByBridge(ctx, s.bridgeID)
	case s.modelID != "":
		m, err = src.Model(ctx, s.modelID)
	default:
		var metas []bim.Metadata
		if metas, err = src.Models(ctx); err != nil {
			break
		}
		if len(metas) == 0 {
			return nil, errors.New("no BIM models available")
		}
		m, err = src.Model(ctx, metas[0].ID)
	}
	if err != nil {
		return nil, describeLoadError(err)
	}
	return m, nil
}

// describeLoadError separates a missing resource from an unreachable server.
func describeLoadError(err error) error {
	switch {
	case errors.Is(err, client.ErrUnreachable):
		return fmt.Errorf("cannot reach the API server (is `bimview serve` running?): %w", err)
	case errors.Is(err, bim.ErrNotFound):
		return fmt.Errorf("BIM model not found: %w", err)
	}
	return err
}
