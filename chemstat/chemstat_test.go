/*
 * chemstat_test.go, part of cgtools.
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

package chemstat

import (
	"fmt"
	"math"
	"testing"

	chem "github.com/rmera/cgtools"
	"github.com/rmera/cgtools/internal/helix"
	v3 "github.com/rmera/cgtools/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// direct O(n^2) cross-correlation, to check the FFT one.
func directCC(x, y []float64) []float64 {
	n := len(x)
	mx, vx := stat.PopMeanVariance(x, nil)
	my, vy := stat.PopMeanVariance(y, nil)
	ret := make([]float64, n)
	for k := 0; k < n; k++ {
		for t := 0; t+k < n; t++ {
			ret[k] += (x[t+k] - mx) * (y[t] - my)
		}
		ret[k] /= float64(n) * math.Sqrt(vx*vy)
	}
	return ret
}

func TestCorrelation(Te *testing.T) {
	n := 200
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = math.Cos(2 * math.Pi * float64(i) / 20)
		y[i] = math.Sin(2*math.Pi*float64(i)/20) + 0.01*float64(i%7)
	}
	ac, err := AutoCorrelation(x)
	require.NoError(Te, err)
	require.Len(Te, ac, n)
	assert.InDelta(Te, 1.0, ac[0], 1e-9)
	assert.InDeltaSlice(Te, directCC(x, x), ac, 1e-9)
	assert.Less(Te, ac[10], -0.9)
	lag := DecorrelationLag(ac)
	fmt.Println("Decorrelation lag of a period 20 cosine:", lag)
	assert.Equal(Te, 4, lag)

	cc, err := CrossCorrelation(x, y)
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, directCC(x, y), cc, 1e-9)

	_, err = CrossCorrelation(x, y[:10])
	assert.Error(Te, err)
	_, err = AutoCorrelation([]float64{3, 3, 3})
	assert.Error(Te, err)
	assert.Equal(Te, -1, DecorrelationLag([]float64{1, 0.9, 0.8}))
}

func TestRMSDSeries(Te *testing.T) {
	mol := helix.Backbone(6)
	ref := mol.Coords[0]
	frames := []*v3.Matrix{ref}
	frames = append(frames, helix.Frames(ref, 3, 0, 7)...)
	frames = append(frames, helix.Frames(ref, 2, 0.5, 8)...)
	traj, err := chem.NewMolecule(frames, mol, nil)
	require.NoError(Te, err)
	rmsd, err := Series(traj, RMSDFunc(ref, nil))
	require.NoError(Te, err)
	fmt.Println("RMSD series:", rmsd)
	require.Len(Te, rmsd, 6)
	for _, v := range rmsd[:4] {
		assert.InDelta(Te, 0.0, v, 1e-5)
	}
	assert.Greater(Te, rmsd[4], 0.1)
	assert.Greater(Te, rmsd[5], 0.1)

	//only the CA atoms
	cas := make([]int, 0, 6)
	for i := 0; i < mol.Len(); i++ {
		if mol.Atom(i).Name == "CA" {
			cas = append(cas, i)
		}
	}
	traj.Rewind()
	carmsd, err := Series(traj, RMSDFunc(ref, cas))
	require.NoError(Te, err)
	require.Len(Te, carmsd, 6)
	assert.InDelta(Te, 0.0, carmsd[2], 1e-5)
}
