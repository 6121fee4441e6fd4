package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(global *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List defined services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd, global)
			if err != nil {
				return err
			}
			defer app.Shutdown()

			names := app.Strategy().DefinedNames()
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no services defined")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tACTIVE")
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%t\n", name, app.Strategy().IsServiceActive(name))
			}
			return w.Flush()
		},
	}
}
