/*
 * densplot.go, part of sqlmd
 *
 * Copyright 2026 The sqlmd authors
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
*/

//Package densplot draws 2D histograms as density maps, with a logarithmic color scale.
package densplot

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rmera/sqlmd/histo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

//colors in the palette of the heat map
const ncolors = 255

//logGrid shows a histogram as a plotter.GridXYZ with the base-10 logarithm
//of the bin values. Empty bins are NaN, so they are not painted.
type logGrid struct {
	h *histo.Hist2D
}

func (g logGrid) Dims() (c, r int) { return g.h.Dims() }

func (g logGrid) Z(c, r int) float64 {
	v := g.h.At(c, r)
	if v <= 0 {
		return math.NaN()
	}
	return math.Log10(v)
}

func (g logGrid) X(c int) float64 { return g.h.XCenter(c) }

func (g logGrid) Y(r int) float64 { return g.h.YCenter(r) }

//zRange returns the smallest and largest non-NaN values in the grid.
//ok is false if all of them are NaN.
func (g logGrid) zRange() (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	c, r := g.Dims()
	for i := 0; i < c; i++ {
		for j := 0; j < r; j++ {
			z := g.Z(i, j)
			if math.IsNaN(z) {
				continue
			}
			min = math.Min(min, z)
			max = math.Max(max, z)
			ok = true
		}
	}
	return min, max, ok
}

//powTicks labels a log10 axis with the corresponding powers of ten.
type powTicks struct{}

func (powTicks) Ticks(min, max float64) []plot.Tick {
	ret := make([]plot.Tick, 0)
	for e := math.Ceil(min); e <= max; e++ {
		ret = append(ret, plot.Tick{Value: e, Label: fmt.Sprintf("1e%d", int(e))})
	}
	if len(ret) > 1 {
		return ret
	}
	//less than a decade, we just use the default ticks and label them with the real values.
	ret = plot.DefaultTicks{}.Ticks(min, max)
	for i, t := range ret {
		if t.Label != "" {
			ret[i].Label = fmt.Sprintf("%.3g", math.Pow(10, t.Value))
		}
	}
	return ret
}

//Density is a density map with its color bar.
type Density struct {
	main *plot.Plot
	bar  *plot.Plot
}

//New returns the density map for the histogram h, with the given title.
//The x and y axes are given the same range, so the map is not distorted
//when drawn on a square canvas.
func New(h *histo.Hist2D, title string) (*Density, error) {
	if h == nil {
		return nil, fmt.Errorf("sqlmd/densplot.New: nil histogram")
	}
	if nx, ny := h.Dims(); nx < 2 || ny < 2 {
		return nil, fmt.Errorf("sqlmd/densplot.New: at least 2x2 bins needed, got %dx%d", nx, ny)
	}
	g := logGrid{h}
	zmin, zmax, ok := g.zRange()
	if !ok {
		return nil, fmt.Errorf("sqlmd/densplot.New: empty histogram")
	}
	if zmax <= zmin {
		zmax = zmin + 1
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(zmin)
	cm.SetMax(zmax)

	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	hm := plotter.NewHeatMap(g, cm.Palette(ncolors))
	hm.Min = zmin
	hm.Max = zmax
	hm.NaN = color.Transparent
	p.Add(hm)
	setEqualRanges(p, h)

	bar := plot.New()
	bar.Title.Text = " " //so both plots have the same vertical padding
	bar.Title.Padding = 3 * vg.Millimeter
	bar.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: ncolors})
	bar.HideX()
	bar.Y.Tick.Marker = powTicks{}
	bar.Y.Label.Text = "count"
	return &Density{main: p, bar: bar}, nil
}

//setEqualRanges expands the shorter of the axis ranges of p so both have the same length.
func setEqualRanges(p *plot.Plot, h *histo.Hist2D) {
	xd, yd := h.XDividers(), h.YDividers()
	xmin, xmax := xd[0], xd[len(xd)-1]
	ymin, ymax := yd[0], yd[len(yd)-1]
	w, hh := xmax-xmin, ymax-ymin
	if w > hh {
		ymin -= (w - hh) / 2
		ymax += (w - hh) / 2
	} else {
		xmin -= (hh - w) / 2
		xmax += (hh - w) / 2
	}
	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = ymin, ymax
}

//Plot returns the plot with the density map, for further customization.
func (D *Density) Plot() *plot.Plot {
	return D.main
}

//Save writes the density map and its color bar to filename, in the format
//given by its extension (png, svg, pdf, eps, jpg, tif).
func (D *Density) Save(width, height vg.Length, filename string) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	c, err := draw.NewFormattedCanvas(width, height, format)
	if err != nil {
		return fmt.Errorf("sqlmd/densplot.Save: %w", err)
	}
	dc := draw.New(c)
	barw := width / 7
	D.main.Draw(draw.Crop(dc, 0, -barw, 0, 0))
	D.bar.Draw(draw.Crop(dc, width-barw, 0, 0, 0))
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("sqlmd/densplot.Save: %w", err)
	}
	if _, err = c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("sqlmd/densplot.Save: writing %s: %w", filename, err)
	}
	return f.Close()
}
