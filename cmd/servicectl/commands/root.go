// Package commands implements the servicectl CLI.
package commands

import (
	"github.com/KOMKZ/go-yogan-servicemgr/application"
	"github.com/KOMKZ/go-yogan-servicemgr/components"
	"github.com/KOMKZ/go-yogan-servicemgr/config"
	"github.com/KOMKZ/go-yogan-servicemgr/flagx"
	"github.com/spf13/cobra"
)

// Version is injected at build time
var Version = "dev"

// GlobalFlags are shared by every subcommand
type GlobalFlags struct {
	ConfigDir string `flag:"config,c" usage:"directory holding config.yaml and <env>.yaml" default:"./configs"`
	Env       string `flag:"env" usage:"environment file name (default $APP_ENV, $ENV or dev)"`
	EnvPrefix string `flag:"env-prefix" usage:"environment variable prefix" default:"SERVICECTL"`
	Section   string `flag:"section" usage:"configuration key holding service definitions" default:"services"`
	LogLevel  string `flag:"log-level" usage:"override logger.level"`
}

// flagBindings maps CLI flags onto configuration keys
var flagBindings = map[string]string{
	"log-level": "logger.level",
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	var global GlobalFlags

	root := &cobra.Command{
		Use:   "servicectl",
		Short: "Inspect and run configured services",
		Long: `servicectl loads service definitions from the services section of the
configuration and manages their lifecycle.

Examples:
  # List defined services
  servicectl list --config ./configs

  # Start two services and wait for Ctrl+C
  servicectl run cache jobs

  # Print the error code table
  servicectl codes

  # Raise the log level through the flag source
  servicectl run --all --log-level debug`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := flagx.BindPersistentFlags(root, &global); err != nil {
		panic(err)
	}

	root.AddCommand(newListCmd(&global), newRunCmd(&global), newCodesCmd())
	return root
}

// newApp builds the application from the parsed global flags
func newApp(cmd *cobra.Command, global *GlobalFlags) (*application.App, error) {
	if err := flagx.ParseFlags(cmd, global); err != nil {
		return nil, err
	}
	return application.New(application.Options{
		Loader: config.ProvideLoaderOptions{
			ConfigPath:   global.ConfigDir,
			ConfigPrefix: global.EnvPrefix,
			Env:          global.Env,
			Flags:        cmd.Flags(),
			FlagBindings: flagBindings,
		},
		Catalog: components.Catalog(),
		Section: global.Section,
	})
}
