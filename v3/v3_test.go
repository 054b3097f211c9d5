/*
 * v3_test.go, part of cgtools.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewMatrix(Te *testing.T) {
	_, err := NewMatrix([]float64{1, 2, 3, 4})
	require.Error(Te, err)
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(Te, err)
	assert.Equal(Te, 3, A.NVecs())
	View := A.VecView(1)
	View.Set(0, 0, 100)
	fmt.Println("View\n", A, "\n", View)
	assert.Equal(Te, 100.0, A.At(1, 0))
}

func TestSomeVecs(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	require.NoError(Te, err)
	B := Zeros(3)
	cind := []int{1, 3, 5}
	require.NoError(Te, B.SomeVecsSafe(A, cind))
	assert.Equal(Te, []float64{4, 5, 6}, B.RawRowView(0))
	assert.Equal(Te, []float64{16, 17, 18}, B.RawRowView(2))
	B.Set(1, 1, 55)
	A.SetVecs(B, cind)
	assert.Equal(Te, 55.0, A.At(3, 1))
	assert.Error(Te, B.SomeVecsSafe(A, []int{1, 2}))
	assert.Error(Te, B.SomeVecsSafe(A, []int{1, 2, 9}))
}

func TestAddSubVec(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	orig := A.Clone()
	Row, err := NewMatrix([]float64{10, 20, 30})
	require.NoError(Te, err)
	A.AddVec(A, Row)
	assert.Equal(Te, []float64{14, 25, 36}, A.RawRowView(1))
	A.SubVec(A, Row)
	assert.True(Te, mat.Equal(orig, A))
	//subtracting a view of the same matrix must use the value before the operation.
	A.SubVec(A, A.VecView(0))
	assert.Equal(Te, []float64{0, 0, 0}, A.RawRowView(0))
	assert.Equal(Te, []float64{3, 3, 3}, A.RawRowView(1))
}

func TestStack(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 2, 3})
	B, _ := NewMatrix([]float64{4, 5, 6, 7, 8, 9})
	C := Zeros(3)
	C.Stack(A, B)
	fmt.Println(C)
	assert.Equal(Te, []float64{7, 8, 9}, C.RawRowView(2))
}
