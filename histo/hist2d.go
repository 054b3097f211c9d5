/*
 * hist2d.go, part of cgtools.
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

package histo

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Hist2D is a weighted 2D histogram. Counts are stored row-major,
// with rows along y, so Counts[j][i] is the bin of the j-th y and i-th x interval.
type Hist2D struct {
	XEdges []float64
	YEdges []float64
	Counts [][]float64
}

// NewHist2D builds a histogram of the points (x[i], y[i]) with bins×bins bins,
// spanning from the minimum minus pad to the maximum plus pad along each axis.
// weights can be nil, in which case all points weight 1. A point on the last
// edge of an axis is counted in the last bin.
func NewHist2D(x, y, weights []float64, bins int, pad float64) (*Hist2D, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, fmt.Errorf("histo.NewHist2D: %d x values and %d y values", len(x), len(y))
	}
	if weights != nil && len(weights) != len(x) {
		return nil, fmt.Errorf("histo.NewHist2D: %d weights for %d points", len(weights), len(x))
	}
	if bins < 1 || pad < 0 {
		return nil, fmt.Errorf("histo.NewHist2D: invalid bins (%d) or pad (%g)", bins, pad)
	}
	xl, xh := Range(x, pad)
	yl, yh := Range(y, pad)
	//a single value along an axis gives an empty range otherwise.
	if xh == xl {
		xl, xh = xl-0.5, xh+0.5
	}
	if yh == yl {
		yl, yh = yl-0.5, yh+0.5
	}
	h := &Hist2D{XEdges: Dividers(xl, xh, bins), YEdges: Dividers(yl, yh, bins)}
	h.Counts = make([][]float64, bins)
	for j := range h.Counts {
		h.Counts[j] = make([]float64, bins)
	}
	for k := range x {
		w := 1.0
		if weights != nil {
			w = weights[k]
		}
		h.Add(x[k], y[k], w)
	}
	return h, nil
}

func edgeBin(edges []float64, v float64) int {
	last := len(edges) - 1
	if v < edges[0] || v > edges[last] || math.IsNaN(v) {
		return -1
	}
	if v == edges[last] {
		return last - 1
	}
	return sort.SearchFloat64s(edges, math.Nextafter(v, math.Inf(1))) - 1
}

// Add adds weight w to the bin containing (x, y). It returns false if the
// point is out of the histogram range.
func (H *Hist2D) Add(x, y, w float64) bool {
	i := edgeBin(H.XEdges, x)
	j := edgeBin(H.YEdges, y)
	if i < 0 || j < 0 {
		return false
	}
	H.Counts[j][i] += w
	return true
}

// Dims returns the number of bins along x and y.
func (H *Hist2D) Dims() (nx, ny int) {
	return len(H.XEdges) - 1, len(H.YEdges) - 1
}

// XCenters returns the centers of the bins along x.
func (H *Hist2D) XCenters() []float64 { return centers(H.XEdges) }

// YCenters returns the centers of the bins along y.
func (H *Hist2D) YCenters() []float64 { return centers(H.YEdges) }

// Total returns the sum of all the counts.
func (H *Hist2D) Total() float64 {
	t := 0.0
	for _, row := range H.Counts {
		t += floats.Sum(row)
	}
	return t
}
