package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModelsCmd(opts *rootOptions) *cobra.Command {
	var src sourceFlags
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List bridges and their BIM models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := src.open(opts.cfg)
			if err != nil {
				return err
			}
			return listModels(cmd.Context(), cmd.OutOrStdout(), s)
		},
	}
	cmd.Flags().BoolVar(&src.remote, "remote", false, "Read from the API server at client.api_url instead of local fixtures")
	return cmd
}

func listModels(ctx context.Context, out io.Writer, s modelSource) error {
	bridges, err := s.Bridges(ctx)
	if err != nil {
		return describeLoadError(err)
	}
	metas, err := s.Models(ctx)
	if err != nil {
		return describeLoadError(err)
	}
	byBridge := make(map[string][]string)
	for _, m := range metas {
		byBridge[m.BridgeID] = append(byBridge[m.BridgeID], m.ID)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BRIDGE\tNAME\tLOCATION\tSTATUS\tMODELS")
	seen := make(map[string]bool)
	for _, b := range bridges {
		seen[b.ID] = true
		ids := byBridge[b.ID]
		models := "-"
		if len(ids) > 0 {
			models = fmt.Sprint(ids)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.Name, b.Location, b.Status, models)
	}
	for _, m := range metas {
		if !seen[m.BridgeID] {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t[%s]\n", m.BridgeID, "(unknown bridge)", m.ID)
		}
	}
	return tw.Flush()
}
