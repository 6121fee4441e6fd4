package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/KOMKZ/go-yogan-servicemgr/errcode"
	"github.com/spf13/cobra"
)

func newCodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List registered error codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tMODULE\tKEY")
			for _, e := range errcode.RegisteredEntries() {
				fmt.Fprintf(w, "%d\t%s\t%s\n", e.Code, e.Module, e.MsgKey)
			}
			return w.Flush()
		},
	}
}
