package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/KOMKZ/go-yogan-servicemgr/flagx"
	"github.com/spf13/cobra"
)

// RunFlags configures the run command
type RunFlags struct {
	All bool          `flag:"all,a" usage:"start every defined service"`
	For time.Duration `flag:"for" usage:"stop after this long instead of waiting for a signal"`
}

func newRunCmd(global *GlobalFlags) *cobra.Command {
	var opts RunFlags

	cmd := &cobra.Command{
		Use:   "run [service...]",
		Short: "Start services and block until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flagx.ParseFlags(cmd, &opts); err != nil {
				return err
			}
			if !opts.All && len(args) == 0 {
				return fmt.Errorf("name at least one service or pass --all")
			}

			app, err := newApp(cmd, global)
			if err != nil {
				return err
			}

			names := args
			if opts.All {
				names = app.Strategy().DefinedNames()
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := app.Setup(ctx, names...); err != nil {
				_ = app.Shutdown()
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "running: %v\n", app.Strategy().ActiveNames())

			if opts.For > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.For)
				defer cancel()
			}
			app.WaitShutdown(ctx)
			return app.Shutdown()
		},
	}

	if err := flagx.BindFlags(cmd, &opts); err != nil {
		panic(err)
	}
	return cmd
}
