/*
 * states.go, part of cgtools.
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

package chemplot

import (
	"fmt"

	"github.com/rmera/cgtools/msm"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotStates adds to p a scatter plot of the centers of the microstates in each of
// the given macrostates (all of them if states is nil), projected on the dimensions
// dimx and dimy. Each macrostate gets a color from the palette paletteName and a
// legend entry with its equilibrium population.
func PlotStates(p *plot.Plot, m *msm.Model, states []int, dimx, dimy int, paletteName string) error {
	if m.Macronum < 1 {
		return fmt.Errorf("chemplot.PlotStates: the model has no macrostates")
	}
	if states == nil {
		states = make([]int, m.Macronum)
		for i := range states {
			states[i] = i
		}
	}
	pal, err := Palette(paletteName, m.Macronum)
	if err != nil {
		return fmt.Errorf("chemplot.PlotStates: %w", err)
	}
	cols := pal.Colors()
	pop := msm.MacroPopulations(m)
	for _, macro := range states {
		if macro < 0 || macro >= m.Macronum {
			return fmt.Errorf("chemplot.PlotStates: macrostate %d out of range", macro)
		}
		centers := msm.MacroCenters(m, macro)
		if len(centers) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(centers))
		for i, c := range centers {
			if dimx >= len(c) || dimy >= len(c) || dimx < 0 || dimy < 0 {
				return fmt.Errorf("chemplot.PlotStates: dimensions %d, %d out of range for %d-dimensional centers", dimx, dimy, len(c))
			}
			xys[i].X, xys[i].Y = c[dimx], c[dimy]
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("chemplot.PlotStates: %w", err)
		}
		s.GlyphStyle = draw.GlyphStyle{Color: cols[macro], Radius: vg.Points(3), Shape: draw.CircleGlyph{}}
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("Macro %d-%.1f%%", macro, pop[macro]*100), s)
	}
	return nil
}

// NewFEL returns an empty plot with the given title and axis labels, and a grid.
func NewFEL(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

// PlotProfile adds the free energy profile xys to p as a line.
func PlotProfile(p *plot.Plot, xys plotter.XYs, name string) error {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("chemplot.PlotProfile: %w", err)
	}
	l.LineStyle.Width = vg.Points(2)
	p.Add(l)
	if name != "" {
		p.Legend.Add(name, l)
	}
	return nil
}
