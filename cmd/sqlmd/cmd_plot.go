package main

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/rmera/sqlmd/densplot"
	"github.com/rmera/sqlmd/histo"
	"github.com/rmera/sqlmd/store"
)

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Draw the xy density of an element from a database",
		Long: `Plot bins the x and y coordinates of all the atoms of an element, over all
the frames in the database, in a 2D histogram, and draws it as a density map
with a logarithmic color scale. The output format is taken from the
extension of --out. With --json the histogram is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runPlot(cmd, cfg)
		},
	}
	cmd.Flags().String("db", "", "Database file, as created by load")
	cmd.Flags().StringP("element", "e", "C", "Element to plot (empty for all atoms)")
	cmd.Flags().Int("bins", 100, "Number of bins in each direction")
	cmd.Flags().StringP("out", "o", "density.png", "Output file")
	cmd.Flags().String("title", "", "Plot title (default \"<element> density\")")
	cmd.Flags().Float64("width", 6, "Width of the image, in inches")
	cmd.Flags().Float64("height", 5, "Height of the image, in inches")
	cmd.Flags().Bool("json", false, "Print the histogram as JSON instead of plotting")
	return cmd
}

func runPlot(cmd *cobra.Command, cfg *Config) error {
	ctx := cmd.Context()
	if cfg.DB == "" {
		return fmt.Errorf("no database given, use --db")
	}
	if cfg.Bins < 2 {
		return fmt.Errorf("at least 2 bins needed, got %d", cfg.Bins)
	}
	st, err := store.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	xs, ys, err := st.XY(ctx, cfg.Element)
	if err != nil {
		return err
	}
	if len(xs) == 0 {
		return fmt.Errorf("no atoms with element %q in %s", cfg.Element, cfg.DB)
	}
	log.Info().Str("element", cfg.Element).Int("points", len(xs)).Int("bins", cfg.Bins).Msg("binning positions")
	h, err := histo.FromXY(xs, ys, cfg.Bins)
	if err != nil {
		return err
	}
	if cfg.JSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(h)
	}

	title := cfg.Title
	if title == "" {
		title = cfg.Element + " density"
		if cfg.Element == "" {
			title = "Atom density"
		}
	}
	d, err := densplot.New(h, title)
	if err != nil {
		return err
	}
	if err := d.Save(vg.Length(cfg.Width)*vg.Inch, vg.Length(cfg.Height)*vg.Inch, cfg.Out); err != nil {
		return err
	}
	log.Info().Str("out", cfg.Out).Msg("density map written")
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d points)\n", cfg.Out, h.Total())
	return nil
}
