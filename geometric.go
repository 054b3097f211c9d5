/*
 * geometric.go, part of cgtools.
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

package chem

import (
	"fmt"
	"math"

	v3 "github.com/rmera/cgtools/v3"
	"gonum.org/v1/gonum/mat"
)

// DefaultAlignTolerance is the smallest ratio between the second and the first singular
// values of the correlation matrix for which a superposition is considered determined.
const DefaultAlignTolerance = 1e-8

// Superposition is a rigid-body transformation. A set of points (as rows) is
// transformed by subtracting From, multiplying by Rotation, and adding To.
type Superposition struct {
	Rotation *mat.Dense
	From     [3]float64
	To       [3]float64
}

// Apply returns a new matrix with the transformation applied to the rows of A.
// A is not modified.
func (S *Superposition) Apply(A *v3.Matrix) *v3.Matrix {
	ret := v3.Zeros(A.NVecs())
	S.ApplyTo(ret, A)
	return ret
}

// ApplyTo puts in dst the rows of A transformed by S. dst and A can be the same matrix.
func (S *Superposition) ApplyTo(dst, A *v3.Matrix) {
	from, _ := v3.NewMatrix(S.From[:])
	to, _ := v3.NewMatrix(S.To[:])
	tmp := v3.Zeros(A.NVecs())
	tmp.SubVec(A, from)
	dst.Mul(tmp, S.Rotation)
	dst.AddVec(dst, to)
}

// ApplyVec returns the point v transformed by S.
func (S *Superposition) ApplyVec(v [3]float64) [3]float64 {
	var ret [3]float64
	for j := 0; j < 3; j++ {
		for k := 0; k < 3; k++ {
			ret[j] += (v[k] - S.From[k]) * S.Rotation.At(k, j)
		}
		ret[j] += S.To[j]
	}
	return ret
}

// Inverse returns the transformation that undoes S.
func (S *Superposition) Inverse() *Superposition {
	rot := mat.DenseCopyOf(S.Rotation.T())
	return &Superposition{Rotation: rot, From: S.To, To: S.From}
}

// Centroid returns the geometric center of the rows of A.
func Centroid(A *v3.Matrix) [3]float64 {
	var c [3]float64
	n := A.NVecs()
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			c[j] += A.At(i, j)
		}
	}
	for j := range c {
		c[j] /= float64(n)
	}
	return c
}

// CenterOfMass returns the center of mass of the atoms represented by the coordinates in geometry
// and the masses in mass. If mass is nil, it calculates the geometric center.
func CenterOfMass(geometry *v3.Matrix, mass []float64) (*v3.Matrix, error) {
	if geometry == nil || geometry.NVecs() == 0 {
		return nil, &CError{msg: "empty or nil geometry", deco: []string{"CenterOfMass"}}
	}
	if mass == nil {
		c := Centroid(geometry)
		return v3.NewMatrix(c[:])
	}
	if len(mass) != geometry.NVecs() {
		return nil, &CError{msg: fmt.Sprintf("%d masses for %d atoms", len(mass), geometry.NVecs()), deco: []string{"CenterOfMass"}}
	}
	var c [3]float64
	var total float64
	for i, m := range mass {
		for j := 0; j < 3; j++ {
			c[j] += m * geometry.At(i, j)
		}
		total += m
	}
	if total == 0 {
		return nil, &CError{msg: "total mass is zero", deco: []string{"CenterOfMass"}}
	}
	for j := range c {
		c[j] /= total
	}
	return v3.NewMatrix(c[:])
}

// Superpose obtains the rigid transformation that superimposes the rows of moving on
// the rows of fixed, in the least-squares sense (Kabsch algorithm). Reflections are
// never returned. tol, if given, replaces DefaultAlignTolerance.
// It returns an *AlignmentError if there are fewer than 3 points, the sets differ
// in size, or the points are degenerate (coincident or collinear).
func Superpose(moving, fixed *v3.Matrix, tol ...float64) (*Superposition, error) {
	tolerance := DefaultAlignTolerance
	if len(tol) > 0 && tol[0] > 0 {
		tolerance = tol[0]
	}
	n := moving.NVecs()
	if n != fixed.NVecs() {
		return nil, &AlignmentError{Atoms: n, Reason: fmt.Sprintf("moving set has %d points, fixed set has %d", n, fixed.NVecs()), deco: []string{"Superpose"}}
	}
	if n < 3 {
		return nil, &AlignmentError{Atoms: n, Reason: "at least 3 points are needed", deco: []string{"Superpose"}}
	}
	cm := Centroid(moving)
	cf := Centroid(fixed)
	cmm, _ := v3.NewMatrix(cm[:])
	cfm, _ := v3.NewMatrix(cf[:])
	P := v3.Zeros(n)
	P.SubVec(moving, cmm)
	Q := v3.Zeros(n)
	Q.SubVec(fixed, cfm)
	var H mat.Dense
	H.Mul(P.T(), Q)
	var svd mat.SVD
	if ok := svd.Factorize(&H, mat.SVDFull); !ok {
		return nil, &AlignmentError{Atoms: n, Reason: "SVD factorization failed", deco: []string{"Superpose"}}
	}
	s := svd.Values(nil)
	if s[0] == 0 || s[1] <= tolerance*s[0] {
		return nil, &AlignmentError{Atoms: n, Reason: "degenerate (coincident or collinear) points", deco: []string{"Superpose"}}
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	d := 1.0
	if mat.Det(&U)*mat.Det(&V) < 0 {
		d = -1.0 //it would be a reflection.
	}
	D := mat.NewDiagDense(3, []float64{1, 1, d})
	var UD mat.Dense
	UD.Mul(&U, D)
	rot := mat.NewDense(3, 3, nil)
	rot.Mul(&UD, V.T())
	return &Superposition{Rotation: rot, From: cm, To: cf}, nil
}

// Align obtains the transformation that superimposes the atoms of moving with indexes
// movingSel on the atoms of fixed with indexes fixedSel. Nil selections mean all atoms.
// The transformation can then be applied to the whole moving set. Neither matrix is modified.
func Align(moving *v3.Matrix, movingSel []int, fixed *v3.Matrix, fixedSel []int, tol ...float64) (*Superposition, error) {
	if len(movingSel) != len(fixedSel) {
		return nil, &AlignmentError{Atoms: len(movingSel), Reason: fmt.Sprintf("selections have %d and %d atoms", len(movingSel), len(fixedSel)), deco: []string{"Align"}}
	}
	m, err := selected(moving, movingSel)
	if err != nil {
		return nil, errDecorate(err, "Align")
	}
	f, err := selected(fixed, fixedSel)
	if err != nil {
		return nil, errDecorate(err, "Align")
	}
	S, err := Superpose(m, f, tol...)
	return S, errDecorate(err, "Align")
}

func selected(A *v3.Matrix, sel []int) (*v3.Matrix, error) {
	if sel == nil {
		return A, nil
	}
	ret := v3.Zeros(len(sel))
	if err := ret.SomeVecsSafe(A, sel); err != nil {
		return nil, &AlignmentError{Atoms: len(sel), Reason: "selection out of range: " + err.Error()}
	}
	return ret, nil
}

// Super determines the best rotation and translations to superimpose the coords in test,
// considering only the atoms present in the slice of int testlst, onto the atoms in templa
// with indexes templalst. It returns a new matrix with the whole of test transformed.
func Super(test, templa *v3.Matrix, testlst, templalst []int) (*v3.Matrix, error) {
	S, err := Align(test, testlst, templa, templalst)
	if err != nil {
		return nil, errDecorate(err, "Super")
	}
	return S.Apply(test), nil
}

// RotatorTranslatorToSuper superimposes the rows of test on the rows of templa.
// It returns the transformed matrix, the rotation matrix, and the 2 translation row vectors.
// To apply the transformation without using the transformed matrix, add the first
// translation vector to the moving matrix, then rotate, then add the second translation.
func RotatorTranslatorToSuper(test, templa *v3.Matrix) (*v3.Matrix, *mat.Dense, *v3.Matrix, *v3.Matrix, error) {
	S, err := Superpose(test, templa)
	if err != nil {
		return nil, nil, nil, nil, errDecorate(err, "RotatorTranslatorToSuper")
	}
	minusfrom := [3]float64{-S.From[0], -S.From[1], -S.From[2]}
	t1, _ := v3.NewMatrix(minusfrom[:])
	t2, _ := v3.NewMatrix(S.To[:])
	return S.Apply(test), S.Rotation, t1, t2, nil
}

// RMSD returns the RMSD (root of the mean square deviation) for the sets of cartesian
// coordinates in test and template. No superposition is performed.
func RMSD(test, template *v3.Matrix) (float64, error) {
	if test.NVecs() != template.NVecs() || test.NVecs() == 0 {
		return 0, &CError{msg: fmt.Sprintf("ill-formed matrices for RMSD: %d and %d vectors", test.NVecs(), template.NVecs()), deco: []string{"RMSD"}}
	}
	var sq float64
	for i := 0; i < test.NVecs(); i++ {
		for j := 0; j < 3; j++ {
			d := test.At(i, j) - template.At(i, j)
			sq += d * d
		}
	}
	return math.Sqrt(sq / float64(test.NVecs())), nil
}
