/*
 * helix.go, part of cgtools.
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

// Package helix builds idealized alpha-helical backbones and perturbed
// copies of them. They are used as fixtures by the tests of the other packages.
package helix

import (
	"math"

	chem "github.com/rmera/cgtools"
	v3 "github.com/rmera/cgtools/v3"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// cylindrical coordinates of each backbone atom relative to its CA: radius, phase (degrees), rise.
var bbgeom = []struct {
	name         string
	r, phase, dz float64
}{
	{"N", 1.55, -28, -0.85},
	{"CA", 2.3, 0, 0},
	{"C", 1.65, 30, 0.9},
	{"O", 2.0, 48, 2.05},
}

// Backbone returns a single-frame molecule with nres alanine residues in chain A,
// each one with its N, CA, C and O atoms, in that order, on an ideal helix.
func Backbone(nres int) *chem.Molecule {
	ats := make([]*chem.Atom, 0, 4*nres)
	data := make([]float64, 0, 12*nres)
	for k := 0; k < nres; k++ {
		theta := float64(k) * 100
		z := float64(k) * 1.5
		for _, g := range bbgeom {
			a := (theta + g.phase) * math.Pi / 180
			data = append(data, g.r*math.Cos(a), g.r*math.Sin(a), z+g.dz)
			at := &chem.Atom{
				Name:     g.name,
				ID:       len(ats) + 1,
				MolName:  "ALA",
				MolName1: 'A',
				MolID:    k + 1,
				Chain:    "A",
				Symbol:   g.name[:1],
			}
			ats = append(ats, at)
		}
	}
	coords, _ := v3.NewMatrix(data)
	mol, err := chem.NewMolecule([]*v3.Matrix{coords}, chem.NewTopology(0, 1, ats), nil)
	if err != nil {
		panic(err)
	}
	return mol
}

// Rotation returns the rotation (acting on row vectors) by angle radians about the
// axis given, which does not need to be normalized.
func Rotation(axis [3]float64, angle float64) *mat.Dense {
	n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	x, y, z := axis[0]/n, axis[1]/n, axis[2]/n
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	//the usual column-vector matrix, transposed.
	return mat.NewDense(3, 3, []float64{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c,
	})
}

// Move returns a copy of coords rotated by rot and then translated by trans.
func Move(coords *v3.Matrix, rot *mat.Dense, trans [3]float64) *v3.Matrix {
	ret := v3.Zeros(coords.NVecs())
	ret.Mul(coords, rot)
	t, _ := v3.NewMatrix(trans[:])
	ret.AddVec(ret, t)
	return ret
}

// Frames returns n rigidly moved copies of coords, each one with Gaussian noise
// of standard deviation noise (Angstrom) added to every coordinate.
// The same seed gives the same frames.
func Frames(coords *v3.Matrix, n int, noise float64, seed uint64) []*v3.Matrix {
	src := rand.New(rand.NewSource(seed))
	ret := make([]*v3.Matrix, 0, n)
	for i := 0; i < n; i++ {
		axis := [3]float64{src.Float64() + 0.1, src.Float64(), src.Float64()}
		rot := Rotation(axis, src.Float64()*2*math.Pi)
		trans := [3]float64{10 * src.NormFloat64(), 10 * src.NormFloat64(), 10 * src.NormFloat64()}
		f := Move(coords, rot, trans)
		if noise > 0 {
			r, c := f.Dims()
			for j := 0; j < r; j++ {
				for k := 0; k < c; k++ {
					f.Set(j, k, f.At(j, k)+noise*src.NormFloat64())
				}
			}
		}
		ret = append(ret, f)
	}
	return ret
}
