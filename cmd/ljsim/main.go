package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/ljsim/internal/config"
	"github.com/san-kum/ljsim/internal/logging"
)

const envPrefix = "LJSIM"

var (
	dataDir string
	verbose int
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := newViper()

	rootCmd := &cobra.Command{
		Use:           "ljsim",
		Short:         "lennard-jones molecular dynamics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultOutputDir, "run directory")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "log verbosity (repeat for more)")

	rootCmd.AddCommand(
		newRunCommand(v),
		newSweepCommand(v),
		newListCommand(),
		newPlotCommand(),
		newExportCommand(),
		newRenderCommand(),
		newPresetsCommand(),
	)
	return rootCmd
}

// newViper resolves each flag key from LJSIM_<KEY> as well, with dashes
// mapped to underscores.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

func newLogger() (logr.Logger, error) {
	return logging.New(verbose > 0, verbose)
}
