/*
 * matrix.go, part of cgtools.
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

package v3

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of vectors in 3D space, stored as a row-major Nx3 gonum Dense.
// Within the package a "vector" is a row, i.e. the cartesian coordinates of one
// point (normally an atom).
type Matrix struct {
	*mat.Dense
}

// Dense2Matrix wraps A, which must have 3 columns, into a Matrix. No copy is made.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

// Zeros returns a zero-filled Matrix with vecs vectors.
func Zeros(vecs int) *Matrix {
	return &Matrix{mat.NewDense(vecs, 3, make([]float64, 3*vecs))}
}

// NewMatrix returns a Matrix with 3 columns built on data (not copied).
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("input slice length %d not a positive multiple of %d", l, cols), []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(l/cols, cols, data)}, nil
}

// Clone returns a deep copy of F.
func (F *Matrix) Clone() *Matrix {
	r := Zeros(F.NVecs())
	r.Copy(F.Dense)
	return r
}

// NVecs returns the number of vectors in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

// VecView returns a view of the ith vector of F. Changes in the view
// are reflected in F and vice versa.
func (F *Matrix) VecView(i int) *Matrix {
	if i >= F.NVecs() {
		panic(ErrIndexOutOfRange)
	}
	return &Matrix{F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)}
}

// View returns a view of the r vectors of F starting from the ith.
func (F *Matrix) View(i, r int) *Matrix {
	return &Matrix{F.Dense.Slice(i, i+r, 0, 3).(*mat.Dense)}
}

// SomeVecs puts in F the vectors of A with the indexes in clist, in the
// order of clist. F must have len(clist) vectors.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	if F.NVecs() != len(clist) {
		panic(ErrShape)
	}
	an := A.NVecs()
	for key, val := range clist {
		if val >= an || val < 0 {
			panic(ErrIndexOutOfRange)
		}
		for j := 0; j < 3; j++ {
			F.Set(key, j, A.At(val, j))
		}
	}
}

// SomeVecsSafe is like SomeVecs but returns an error instead of panicking.
func (F *Matrix) SomeVecsSafe(A *Matrix, clist []int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case PanicMsg:
				err = Error{string(e), []string{"SomeVecsSafe"}, true}
			case mat.Error:
				err = Error{fmt.Sprintf("error in a gonum function: %s", e), []string{"SomeVecsSafe"}, true}
			default:
				panic(r)
			}
		}
	}()
	F.SomeVecs(A, clist)
	return err
}

// SetVecs sets the vectors of F with the indexes in clist to
// the consecutive vectors of A.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	if A.NVecs() < len(clist) {
		panic(ErrShape)
	}
	fn := F.NVecs()
	for key, val := range clist {
		if val >= fn || val < 0 {
			panic(ErrIndexOutOfRange)
		}
		for j := 0; j < 3; j++ {
			F.Set(val, j, A.At(key, j))
		}
	}
}

// AddVec adds the 1x3 vec to each vector of A, putting the result in F.
func (F *Matrix) AddVec(A, vec *Matrix) {
	if vec.NVecs() != 1 || A.NVecs() != F.NVecs() {
		panic(ErrShape)
	}
	v := [3]float64{vec.At(0, 0), vec.At(0, 1), vec.At(0, 2)}
	for i := 0; i < A.NVecs(); i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)+v[j])
		}
	}
}

// SubVec subtracts the 1x3 vec from each vector of A, putting the result in F.
// A, F and vec can be the same.
func (F *Matrix) SubVec(A, vec *Matrix) {
	if vec.NVecs() != 1 || A.NVecs() != F.NVecs() {
		panic(ErrShape)
	}
	v := [3]float64{vec.At(0, 0), vec.At(0, 1), vec.At(0, 2)}
	for i := 0; i < A.NVecs(); i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)-v[j])
		}
	}
}

// Stack puts A on top of B in F, which must have room for both.
func (F *Matrix) Stack(A, B *Matrix) {
	ar := A.NVecs()
	if F.NVecs() < ar+B.NVecs() {
		panic(ErrShape)
	}
	F.View(0, ar).Copy(A.Dense)
	F.View(ar, B.NVecs()).Copy(B.Dense)
}

// String returns a neat string representation of a Matrix.
func (F *Matrix) String() string {
	r := F.NVecs()
	v := make([]string, 0, r)
	for i := 0; i < r; i++ {
		v = append(v, fmt.Sprintf("%8.3f %8.3f %8.3f", F.At(i, 0), F.At(i, 1), F.At(i, 2)))
	}
	return "\n[" + strings.Join(v, "\n ") + " ]"
}
