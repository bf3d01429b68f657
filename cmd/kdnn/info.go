package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the point set and its index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close(cmd.Context())

			ps := e.idx.PointSet()
			st := e.idx.Stats()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "source:\t%s\n", sourceName(a.cfg.Source))
			fmt.Fprintf(tw, "points:\t%d\n", ps.Len())
			if b, ok := ps.Bounds(); ok {
				fmt.Fprintf(tw, "bounds:\t%v - %v\n", b.Min, b.Max)
			}
			fmt.Fprintf(tw, "tree depth:\t%d\n", st.Depth)
			fmt.Fprintf(tw, "leaf size:\t%d\n", st.LeafSize)
			fmt.Fprintf(tw, "leaves:\t%d\n", st.Leaves)
			fmt.Fprintf(tw, "memory:\t%d bytes\n", ps.MemoryUsage()+st.MemoryBytes)
			if err := tw.Flush(); err != nil {
				return err
			}

			labels := ps.Labels()
			if len(labels) == 0 {
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout())
			tw = tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "LABEL\tPOINTS")
			for _, l := range labels {
				fmt.Fprintf(tw, "%d\t%d\n", l, ps.LabelCount(l))
			}
			return tw.Flush()
		},
	}
}
