package cmd

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newRoutesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List envelope keys and registered message types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := opts.build(cmd.Context(), io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tMESSAGE")
			for _, b := range a.Inbox().Bindings() {
				fmt.Fprintf(w, "%s\t%s\n", b.Key, b.Type)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			types := a.Mediator().Registry().Types()
			names := make([]string, len(types))
			for i, t := range types {
				names[i] = t.String()
			}
			slices.Sort(names)

			fmt.Fprintf(cmd.OutOrStdout(), "\n%d handlers, %d behaviors\n", len(names), a.Mediator().Behaviors())
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), " ", n)
			}
			return nil
		},
	}
}
