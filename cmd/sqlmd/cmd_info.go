package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rmera/sqlmd"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <trajectory.xyz>",
		Short: "Print a summary of a trajectory file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			traj, err := sqlmd.XYZFileRead(args[0], cfg.IterOffset)
			if err != nil {
				return err
			}
			printInfo(cmd, args[0], traj)
			return nil
		},
	}
	cmd.Flags().Int("iter-offset", 0, "Number added to the iteration index of every frame")
	return cmd
}

func printInfo(cmd *cobra.Command, name string, traj *sqlmd.Trajectory) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file: %s\n", name)
	fmt.Fprintf(out, "frames: %d\n", traj.Len())
	if traj.Len() == 0 {
		return
	}
	minAtoms, maxAtoms := traj.Frame(0).Len(), traj.Frame(0).Len()
	for _, f := range traj.Frames() {
		minAtoms = min(minAtoms, f.Len())
		maxAtoms = max(maxAtoms, f.Len())
	}
	if minAtoms == maxAtoms {
		fmt.Fprintf(out, "atoms per frame: %d\n", minAtoms)
	} else {
		fmt.Fprintf(out, "atoms per frame: %d-%d\n", minAtoms, maxAtoms)
	}
	fmt.Fprintf(out, "iterations: %d-%d\n", traj.Frame(0).Iter(), traj.LastIter())
	fmt.Fprintf(out, "elements: %s\n", strings.Join(traj.Elements(), " "))
}
