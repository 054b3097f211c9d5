/*
 * chemplot_test.go, part of cgtools.
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
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/cgtools/histo"
	"github.com/rmera/cgtools/msm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/plot/vg"
)

func TestFreeEnergy(Te *testing.T) {
	x := []float64{0, 0, 0, 0, 0, 0, 2}
	y := []float64{0, 0, 0, 0, 0, 0, 2}
	h, err := histo.NewHist2D(x, y, nil, 2, 0)
	require.NoError(Te, err)
	//counts: row 0 {6, 0}, row 1 {0, 1}
	g, err := FreeEnergy(h, 0)
	require.NoError(Te, err)
	kt := KB * DefaultTemperature
	c, r := g.Dims()
	assert.Equal(Te, 2, c)
	assert.Equal(Te, 2, r)
	fmt.Println("Free energies:", g.z)
	assert.InDelta(Te, 0, g.Z(0, 0), 1e-12)
	assert.InDelta(Te, kt*math.Log(6), g.Z(1, 1), 1e-12)
	//empty bins: the largest energy plus 10, minus the minimum.
	assert.InDelta(Te, kt*math.Log(6)+10, g.Z(1, 0), 1e-12)
	assert.Equal(Te, g.Z(1, 0), g.Z(0, 1))
	assert.Equal(Te, 0.0, g.Min())
	assert.InDelta(Te, kt*math.Log(6)+10, g.Max(), 1e-12)
	assert.Equal(Te, 0.5, g.X(0))
	assert.Equal(Te, 1.5, g.Y(1))

	h.Counts = [][]float64{{0, 0}, {0, 0}}
	_, err = FreeEnergy(h, 300)
	assert.Error(Te, err)
}

func TestBands(Te *testing.T) {
	g := &Grid{x: []float64{0, 1, 2, 3, 4}, y: []float64{0}, z: [][]float64{{-1, 0, 1.5, 3, 7}}}
	b := bands{g, []float64{0, 1, 2, 3}}
	var got []float64
	for i := 0; i < 5; i++ {
		got = append(got, b.Z(i, 0))
	}
	assert.Equal(Te, []float64{-1, 0, 1, 2, 3}, got)
}

func TestPalette(Te *testing.T) {
	for _, name := range []string{"Greys", "Set1", "RdBu", "rainbow", "heat", "moreland", "moreland-bluetan", "moreland-blackbody", "moreland-kindlmann"} {
		for _, n := range []int{1, 2, 5, 30} {
			p, err := Palette(name, n)
			require.NoError(Te, err, name)
			assert.Len(Te, p.Colors(), n, "%s with %d colors", name, n)
		}
	}
	_, err := Palette("nopalette", 4)
	assert.Error(Te, err)
	_, err = Palette("Greys", 0)
	assert.Error(Te, err)
}

func TestPlotFEL(Te *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	n := 4000
	x := make([]float64, n)
	y := make([]float64, n)
	w := make([]float64, n)
	for i := range x {
		//two basins
		c := 0.0
		if i%3 == 0 {
			c = 4
		}
		x[i] = c + rnd.NormFloat64()
		y[i] = c + 0.5*rnd.NormFloat64()
		w[i] = 1.0 / float64(n)
	}
	h, err := histo.NewHist2D(x, y, w, 40, 0.5)
	require.NoError(Te, err)
	g, err := FreeEnergy(h, 350)
	require.NoError(Te, err)
	p := NewFEL("Free energy", "dim 0", "dim 1")
	assert.Equal(Te, 3*vg.Millimeter, p.Title.Padding)
	levels := LevelsUpTo(5, 10)
	require.NoError(Te, PlotContour(p, g, levels, nil))
	assert.Error(Te, PlotContour(p, g, []float64{3, 1}, nil))

	m := &msm.Model{
		St: [][]int{{0, 1, 2}}, K: 3, N: []float64{1, 1, 1},
		ActiveSet: []int{0, 1, 2}, Stationary: []float64{0.5, 0.25, 0.25},
		MacroOfCluster: []int{0, 0, 1}, Macronum: 2,
		Centers: [][]float64{{0, 0}, {0.5, 0.2}, {4, 4}},
	}
	require.NoError(Te, m.Check())
	require.NoError(Te, PlotStates(p, m, nil, 0, 1, "Set1"))
	assert.Error(Te, PlotStates(p, m, []int{3}, 0, 1, "Set1"))
	assert.Error(Te, PlotStates(p, m, nil, 0, 2, "Set1"))

	name := filepath.Join(Te.TempDir(), "fel.png")
	require.NoError(Te, p.Save(6*vg.Inch, 5*vg.Inch, name))
	info, err := os.Stat(name)
	require.NoError(Te, err)
	fmt.Println("FEL plot size:", info.Size())
	assert.Greater(Te, info.Size(), int64(0))

	d := histo.NewData(histo.Dividers(-4, 8, 30), x, w)
	prof, err := FreeEnergyProfile(d, 0)
	require.NoError(Te, err)
	minE := math.Inf(1)
	for _, v := range prof {
		minE = math.Min(minE, v.Y)
	}
	assert.Equal(Te, 0.0, minE)
	p2 := NewFEL("Profile", "dim 0", "E")
	require.NoError(Te, PlotProfile(p2, prof, "dim 0"))
	require.NoError(Te, p2.Save(4*vg.Inch, 3*vg.Inch, filepath.Join(Te.TempDir(), "profile.svg")))
}

func TestRamaPlot(Te *testing.T) {
	data := [][]float64{{-60, -45}, {-65, -40}, {-120, 130}, {60, 45}, {-70, 150}}
	p := NewRama("Ramachandran")
	assert.Equal(Te, -180.0, p.X.Min)
	require.NoError(Te, RamaPlot(p, data, []int{3}, []string{"A1", "A2", "A3", "G4"}, "rainbow"))
	assert.Error(Te, RamaPlot(p, data, []int{0, 1, 2, 3, 4}, nil, "rainbow"))
	assert.Error(Te, RamaPlot(p, nil, nil, nil, "rainbow"))
	assert.Error(Te, RamaPlot(p, [][]float64{{1}}, nil, nil, "rainbow"))
	assert.Error(Te, RamaPlot(p, data, nil, nil, "nosuchpalette"))
	name := filepath.Join(Te.TempDir(), "rama.png")
	require.NoError(Te, p.Save(4*vg.Inch, 4*vg.Inch, name))
	info, err := os.Stat(name)
	require.NoError(Te, err)
	assert.Greater(Te, info.Size(), int64(0))
}
