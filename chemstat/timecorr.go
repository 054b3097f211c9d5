/*
 * timecorr.go, part of cgtools.
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

// Package chemstat contains time series statistics for simulation data,
// such as the correlation functions used to choose the lag time of a
// Markov state model.
package chemstat

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	chem "github.com/rmera/cgtools"
	v3 "github.com/rmera/cgtools/v3"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

func cmplxMulConj(dst, b []complex128) {
	if len(dst) != len(b) {
		panic(fmt.Sprintf("complex conjugate multiplication of slices: Both slices should have the same len %d, %d", len(dst), len(b)))
	}
	for i, v := range b {
		dst[i] *= cmplx.Conj(v)
	}
}

// CrossCorrelation returns the normalized cross-correlation of the series
// x and y, which must have the same length n, for lags 0 to n-1:
//
//	C(k) = sum_t (x[t+k]-<x>)(y[t]-<y>) / (n σx σy)
//
// It is computed with FFTs on zero-padded series, so it is not circular.
func CrossCorrelation(x, y []float64) ([]float64, error) {
	n := len(x)
	if n < 2 || len(y) != n {
		return nil, fmt.Errorf("chemstat.CrossCorrelation: series of length %d and %d", len(x), len(y))
	}
	xmean, xvar := stat.PopMeanVariance(x, nil)
	ymean, yvar := stat.PopMeanVariance(y, nil)
	if xvar == 0 || yvar == 0 {
		return nil, fmt.Errorf("chemstat.CrossCorrelation: constant series")
	}
	xpad := make([]complex128, 2*n)
	ypad := make([]complex128, 2*n)
	for i := range x {
		xpad[i] = complex(x[i]-xmean, 0)
		ypad[i] = complex(y[i]-ymean, 0)
	}
	f := fourier.NewCmplxFFT(len(xpad))
	f.Coefficients(xpad, xpad)
	f.Coefficients(ypad, ypad)
	cmplxMulConj(xpad, ypad)
	f.Sequence(xpad, xpad)
	//the inverse transform is not normalized, hence the extra len(xpad).
	norm := 1 / (math.Sqrt(xvar*yvar) * float64(n) * float64(len(xpad)))
	ret := make([]float64, n)
	for i := range ret {
		ret[i] = real(xpad[i]) * norm
	}
	return ret, nil
}

// AutoCorrelation returns the normalized autocorrelation of x for lags 0 to len(x)-1.
func AutoCorrelation(x []float64) ([]float64, error) {
	return CrossCorrelation(x, x)
}

// DecorrelationLag returns the first lag at which the correlation function c drops
// below 1/e, or -1 if it never does.
func DecorrelationLag(c []float64) int {
	for i, v := range c {
		if v < 1/math.E {
			return i
		}
	}
	return -1
}

// Series applies f to each remaining frame of t, and returns the results.
func Series(t chem.Traj, f func(c *v3.Matrix) (float64, error)) ([]float64, error) {
	var ret []float64
	coord := v3.Zeros(t.Len())
	for {
		err := t.Next(coord)
		if err != nil {
			var last chem.LastFrameError
			if errors.As(err, &last) {
				return ret, nil
			}
			return nil, fmt.Errorf("chemstat.Series: frame %d: %w", len(ret), err)
		}
		v, err := f(coord)
		if err != nil {
			return nil, fmt.Errorf("chemstat.Series: frame %d: %w", len(ret), err)
		}
		ret = append(ret, v)
	}
}

// RMSDFunc returns a function that gives the RMSD between a frame and ref after
// superimposing them on the atoms in indexes (all atoms if indexes is nil).
// The RMSD is computed over the same atoms.
func RMSDFunc(ref *v3.Matrix, indexes []int) func(c *v3.Matrix) (float64, error) {
	fixed := ref
	if indexes != nil {
		fixed = v3.Zeros(len(indexes))
		fixed.SomeVecs(ref, indexes)
	}
	return func(c *v3.Matrix) (float64, error) {
		moving := c
		if indexes != nil {
			moving = v3.Zeros(len(indexes))
			if err := moving.SomeVecsSafe(c, indexes); err != nil {
				return 0, err
			}
		}
		S, err := chem.Superpose(moving, fixed)
		if err != nil {
			return 0, err
		}
		return chem.RMSD(S.Apply(moving), fixed)
	}
}
