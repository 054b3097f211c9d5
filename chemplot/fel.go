/*
 * fel.go, part of cgtools.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package chemplot plots free energy landscapes and Markov state model
// macrostates with gonum/plot.
package chemplot

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/rmera/cgtools/histo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// KB is the Boltzmann constant in kcal/(mol K).
const KB = 0.0019872041

// DefaultTemperature is the temperature, in K, used when none is given.
const DefaultTemperature = 350.0

// Grid is a free energy surface on the bin centers of a 2D histogram.
// It implements plotter.GridXYZ.
type Grid struct {
	x, y     []float64
	z        [][]float64 //z[row][column], rows along y
	min, max float64
}

// Dims returns the number of columns (x) and rows (y) of the grid.
func (g *Grid) Dims() (c, r int) { return len(g.x), len(g.y) }

// Z returns the value at column c and row r.
func (g *Grid) Z(c, r int) float64 { return g.z[r][c] }

// X returns the x coordinate of column c.
func (g *Grid) X(c int) float64 { return g.x[c] }

// Y returns the y coordinate of row r.
func (g *Grid) Y(r int) float64 { return g.y[r] }

// Min returns the smallest value in the grid, always 0 for free energies.
func (g *Grid) Min() float64 { return g.min }

// Max returns the largest value in the grid.
func (g *Grid) Max() float64 { return g.max }

// FreeEnergy converts the counts of h into free energies, in kcal/mol, at the given
// temperature (DefaultTemperature if it is not positive): E = -kB T ln(count).
// Empty bins get the largest energy plus 10. The energies are shifted so the
// minimum is 0.
func FreeEnergy(h *histo.Hist2D, temperature float64) (*Grid, error) {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	kt := KB * temperature
	nx, ny := h.Dims()
	g := &Grid{x: h.XCenters(), y: h.YCenters(), z: make([][]float64, ny)}
	emin, emax := math.Inf(1), math.Inf(-1)
	for j := 0; j < ny; j++ {
		g.z[j] = make([]float64, nx)
		for i := 0; i < nx; i++ {
			c := h.Counts[j][i]
			if c <= 0 {
				g.z[j][i] = math.NaN()
				continue
			}
			e := -kt * math.Log(c)
			g.z[j][i] = e
			emin, emax = math.Min(emin, e), math.Max(emax, e)
		}
	}
	if math.IsInf(emin, 1) {
		return nil, fmt.Errorf("chemplot.FreeEnergy: the histogram is empty")
	}
	empty := emax + 10
	g.min, g.max = 0, emax-emin
	for _, row := range g.z {
		for i, v := range row {
			if math.IsNaN(v) {
				v = empty
				g.max = empty - emin
			}
			row[i] = v - emin
		}
	}
	return g, nil
}

// FreeEnergyProfile returns the 1D free energy profile of the histogram d, with
// the same conventions as FreeEnergy, except that empty bins are omitted.
func FreeEnergyProfile(d *histo.Data, temperature float64) (plotter.XYs, error) {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	centers := d.Centers()
	counts := d.View()
	xys := make(plotter.XYs, 0, len(counts))
	emin := math.Inf(1)
	for i, c := range counts {
		if c <= 0 {
			continue
		}
		e := -KB * temperature * math.Log(c)
		xys = append(xys, plotter.XY{X: centers[i], Y: e})
		emin = math.Min(emin, e)
	}
	if len(xys) == 0 {
		return nil, fmt.Errorf("chemplot.FreeEnergyProfile: the histogram is empty")
	}
	for i := range xys {
		xys[i].Y -= emin
	}
	return xys, nil
}

// ContourOptions controls PlotContour.
type ContourOptions struct {
	Fill      bool   //draw the filled, quantized, surface
	Lines     bool   //draw contour lines
	Palette   string //palette for the filled surface, see Palette
	LineWidth vg.Length
	LineColor color.Color
}

// DefaultContourOptions returns options to draw both the filled surface, in grey
// scale, and black contour lines.
func DefaultContourOptions() *ContourOptions {
	return &ContourOptions{Fill: true, Lines: true, Palette: "Greys", LineWidth: 2, LineColor: color.Black}
}

// bands maps each value of a Grid to the index of the interval between
// levels it falls in. Values outside the levels are mapped under or over
// the index range.
type bands struct {
	*Grid
	levels []float64
}

func (b bands) Z(c, r int) float64 {
	v := b.Grid.Z(c, r)
	last := len(b.levels) - 1
	switch {
	case v < b.levels[0]:
		return -1
	case v > b.levels[last]:
		return float64(last)
	case v == b.levels[last]:
		return float64(last - 1)
	}
	return float64(sort.SearchFloat64s(b.levels, math.Nextafter(v, math.Inf(1))) - 1)
}

// PlotContour adds to p the free energy surface g, as a heat map quantized at the
// given levels and/or as contour lines at the same levels. Values below the
// first level or above the last one are left white.
func PlotContour(p *plot.Plot, g *Grid, levels []float64, o *ContourOptions) error {
	if o == nil {
		o = DefaultContourOptions()
	}
	if len(levels) < 2 || !sort.Float64sAreSorted(levels) {
		return fmt.Errorf("chemplot.PlotContour: need at least 2 sorted levels, got %v", levels)
	}
	if o.Fill {
		nbands := len(levels) - 1
		ncolors := max(nbands, 2)
		pal, err := Palette(o.Palette, ncolors)
		if err != nil {
			return fmt.Errorf("chemplot.PlotContour: %w", err)
		}
		h := plotter.NewHeatMap(bands{g, levels}, pal)
		h.Min, h.Max = 0, float64(ncolors-1)
		h.Underflow, h.Overflow = color.White, color.White
		p.Add(h)
	}
	if o.Lines {
		c := plotter.NewContour(g, levels, nil)
		c.LineStyles = []draw.LineStyle{{Color: o.LineColor, Width: o.LineWidth}}
		p.Add(c)
	}
	return nil
}

// LevelsUpTo returns n+1 evenly spaced levels from 0 to top.
func LevelsUpTo(top float64, n int) []float64 {
	return histo.Dividers(0, top, n)
}
