// Command sqlmd loads extended XYZ molecular dynamics trajectories into an
// SQLite database and draws density maps of the positions of their atoms.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqlmd",
		Short: "Load XYZ MD trajectories into SQLite and plot atom densities",
		Long: `sqlmd reads molecular dynamics trajectories in the extended XYZ format
(element, position, a scalar and a vector property per atom, "iter:<step>"
in each comment line), stores every atom of every frame in an SQLite
database, and draws log-scaled 2D density maps of the atom positions.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(cmd, verbose)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default ./sqlmd.{yaml,toml,json} if present)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every step")

	rootCmd.AddCommand(
		newLoadCmd(),
		newPlotCmd(),
		newInfoCmd(),
	)
	return rootCmd
}

// setupLogging sends the logs of the command to its error output.
func setupLogging(cmd *cobra.Command, verbose bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(level).With().Timestamp().Logger()
}
