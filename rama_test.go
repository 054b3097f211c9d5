/*
 * rama_test.go, part of cgtools.
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

package chem_test

import (
	"fmt"
	"math"
	"testing"

	chem "github.com/rmera/cgtools"
	"github.com/rmera/cgtools/internal/helix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestDihedral(Te *testing.T) {
	a := r3.Vec{X: 1}
	b := r3.Vec{}
	c := r3.Vec{Z: 1}
	for _, deg := range []float64{60, -120, 179, 0} {
		t := deg * math.Pi / 180
		d := r3.Vec{X: math.Cos(t), Y: math.Sin(t), Z: 1}
		assert.InDelta(Te, t, chem.Dihedral(a, b, c, d), 1e-12, "%g degrees", deg)
	}
}

func TestRamachandran(Te *testing.T) {
	mol := helix.Backbone(8)
	sets, err := chem.RamaList(mol, nil, nil)
	require.NoError(Te, err)
	require.Len(Te, sets, 6)
	assert.Equal(Te, 2, sets[0].MolID)
	assert.Equal(Te, "ALA", sets[0].MolName)
	assert.Equal(Te, 2, sets[0].Cprev)
	assert.Equal(Te, 4, sets[0].N)
	assert.Equal(Te, 8, sets[0].Npost)

	rama, err := chem.RamaCalc(mol.Coords[0], sets)
	require.NoError(Te, err)
	fmt.Println("Helix phi/psi:", rama[0])
	for _, v := range rama {
		//every residue of a regular helix has the same dihedrals.
		assert.InDelta(Te, rama[0][0], v[0], 1e-9)
		assert.InDelta(Te, rama[0][1], v[1], 1e-9)
		assert.LessOrEqual(Te, math.Abs(v[0]), 180.0)
	}

	sets, err = chem.RamaList(mol, []string{"A"}, []int{3, 5})
	require.NoError(Te, err)
	assert.Len(Te, sets, 3)
	sets, err = chem.RamaList(mol, nil, []int{4, -1})
	require.NoError(Te, err)
	assert.Len(Te, sets, 4)
	sets, err = chem.RamaList(mol, nil, []int{6})
	require.NoError(Te, err)
	assert.Len(Te, sets, 1)
	_, err = chem.RamaList(mol, []string{"B"}, nil)
	assert.Error(Te, err)

	filtered, index := chem.RamaResidueFilter(sets, []string{"GLY"}, false)
	assert.Len(Te, filtered, 1)
	assert.Equal(Te, []int{0}, index)
	filtered, index = chem.RamaResidueFilter(sets, []string{"ALA"}, false)
	assert.Empty(Te, filtered)
	assert.Equal(Te, []int{-1}, index)

	_, err = chem.RamaCalc(mol.Coords[0].View(0, 8), sets)
	assert.Error(Te, err)
}
