package main

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rmera/sqlmd"
	"github.com/rmera/sqlmd/store"
)

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <trajectory.xyz>",
		Short: "Load a trajectory into an SQLite database",
		Long: `Load reads all the frames of an XYZ trajectory (optionally compressed,
.zst or .gz) and stores its atoms in the database given with --db, by
default the trajectory file name plus ".db". If the database already holds
an identical copy of the file, nothing is done, unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runLoad(cmd, cfg, args[0])
		},
	}
	cmd.Flags().String("db", "", "Database file (default <trajectory>.db)")
	cmd.Flags().Int("iter-offset", 0, "Number added to the iteration index of every frame")
	cmd.Flags().Bool("force", false, "Reload even if the trajectory is unchanged")
	return cmd
}

func runLoad(cmd *cobra.Command, cfg *Config, xyzpath string) error {
	ctx := cmd.Context()
	dbpath := cfg.DB
	if dbpath == "" {
		dbpath = xyzpath + ".db"
	}
	key, err := filepath.Abs(xyzpath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", xyzpath, err)
	}

	log.Info().Str("xyz", xyzpath).Str("db", dbpath).Msg("opening database")
	st, err := store.Open(dbpath)
	if err != nil {
		return err
	}
	defer st.Close()

	log.Debug().Str("xyz", xyzpath).Msg("calculating checksum")
	sum, err := store.Checksum(xyzpath)
	if err != nil {
		return fmt.Errorf("checksum of %s: %w", xyzpath, err)
	}
	if !cfg.Force {
		current, err := st.UpToDate(ctx, key, sum)
		if err != nil {
			return err
		}
		if current {
			log.Info().Str("db", dbpath).Msg("trajectory unchanged, not reloading")
			fmt.Fprintf(cmd.OutOrStdout(), "%s is up to date in %s\n", xyzpath, dbpath)
			return nil
		}
	}

	log.Info().Str("xyz", xyzpath).Int("iter_offset", cfg.IterOffset).Msg("reading trajectory")
	traj, err := sqlmd.XYZFileRead(xyzpath, cfg.IterOffset)
	if err != nil {
		return err
	}
	if err := st.Clear(ctx); err != nil {
		return err
	}
	rows, err := st.Save(ctx, traj, func(step int) {
		log.Debug().Int("step", step).Msg("loading MD step")
	})
	if err != nil {
		return err
	}
	if err := st.SetSourceChecksum(ctx, key, sum); err != nil {
		return err
	}
	log.Info().Int("frames", traj.Len()).Int("atoms", rows).Msg("trajectory loaded")
	fmt.Fprintf(cmd.OutOrStdout(), "loaded %d frames (%d atoms) from %s into %s\n", traj.Len(), rows, xyzpath, dbpath)
	return nil
}
