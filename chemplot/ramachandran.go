/*
 * ramachandran.go, part of cgtools.
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
	"slices"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NewRama returns an empty Ramachandran plot, with both axes fixed to [-180, 180] degrees.
func NewRama(title string) *plot.Plot {
	p := NewFEL(title, "Phi", "Psi")
	p.X.Min, p.X.Max = -180, 180
	p.Y.Min, p.Y.Max = -180, 180
	return p
}

// tagShapes are the glyphs used for highlighted residues, in order.
var tagShapes = []draw.GlyphDrawer{draw.PyramidGlyph{}, draw.SquareGlyph{}, draw.CrossGlyph{}, draw.RingGlyph{}}

// RamaPlot adds to p one point per {phi, psi} pair in data. Points are colored
// by their position in data using the palette paletteName, so sequence neighbours
// get similar colors. The points with indexes in tag, at most 4, are drawn with
// larger, distinct glyphs and get a legend entry with the corresponding label
// (or their index, if labels is too short).
func RamaPlot(p *plot.Plot, data [][]float64, tag []int, labels []string, paletteName string) error {
	if len(data) == 0 {
		return fmt.Errorf("chemplot.RamaPlot: no data")
	}
	if len(tag) > len(tagShapes) {
		return fmt.Errorf("chemplot.RamaPlot: at most %d points can be tagged, got %d", len(tagShapes), len(tag))
	}
	pal, err := Palette(paletteName, len(data))
	if err != nil {
		return fmt.Errorf("chemplot.RamaPlot: %w", err)
	}
	cols := pal.Colors()
	for i, v := range data {
		if len(v) < 2 {
			return fmt.Errorf("chemplot.RamaPlot: point %d has %d values", i, len(v))
		}
		s, err := plotter.NewScatter(plotter.XYs{{X: v[0], Y: v[1]}})
		if err != nil {
			return fmt.Errorf("chemplot.RamaPlot: %w", err)
		}
		s.GlyphStyle = draw.GlyphStyle{Color: cols[i], Radius: vg.Points(2.5), Shape: draw.CircleGlyph{}}
		if t := slices.Index(tag, i); t >= 0 {
			s.GlyphStyle.Shape = tagShapes[t]
			s.GlyphStyle.Radius = vg.Points(5)
			label := fmt.Sprint(i)
			if i < len(labels) {
				label = labels[i]
			}
			p.Legend.Add(label, s)
		}
		p.Add(s)
	}
	return nil
}
