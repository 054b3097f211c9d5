/*
 * rama.go, part of cgtools.
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
	"gonum.org/v1/gonum/spatial/r3"
)

// RamaSet contains the indexes of the atoms that define the phi and psi
// dihedrals of one residue.
type RamaSet struct {
	Cprev   int
	N       int
	Ca      int
	C       int
	Npost   int
	MolID   int
	MolName string
	Chain   string
}

func vec(M *v3.Matrix, i int) r3.Vec {
	return r3.Vec{X: M.At(i, 0), Y: M.At(i, 1), Z: M.At(i, 2)}
}

// Dihedral returns the dihedral angle, in radians, defined by the positions a, b, c and d,
// with the IUPAC sign convention.
func Dihedral(a, b, c, d r3.Vec) float64 {
	b1 := r3.Sub(b, a)
	b2 := r3.Sub(c, b)
	b3 := r3.Sub(d, c)
	n1 := r3.Cross(b1, b2)
	n2 := r3.Cross(b2, b3)
	y := r3.Norm(b2) * r3.Dot(b1, n2)
	x := r3.Dot(n1, n2)
	return math.Atan2(y, x)
}

// RamaCalc obtains the values for the phi and psi dihedrals indicated in dihedrals, for the
// structure M. The angles are in degrees. It returns one {phi, psi} pair per RamaSet.
func RamaCalc(M *v3.Matrix, dihedrals []RamaSet) ([][]float64, error) {
	if M == nil || dihedrals == nil {
		return nil, &CError{"RamaCalc: given nil data", []string{"RamaCalc"}}
	}
	r := M.NVecs()
	rama := make([][]float64, 0, len(dihedrals))
	for _, j := range dihedrals {
		for _, v := range []int{j.Cprev, j.N, j.Ca, j.C, j.Npost} {
			if v < 0 || v >= r {
				return nil, &CError{fmt.Sprintf("RamaCalc: atom %d out of range for %d coordinates", v, r), []string{"RamaCalc"}}
			}
		}
		Cprev, N, Ca, C, Npost := vec(M, j.Cprev), vec(M, j.N), vec(M, j.Ca), vec(M, j.C), vec(M, j.Npost)
		phi := Dihedral(Cprev, N, Ca, C)
		psi := Dihedral(N, Ca, C, Npost)
		rama = append(rama, []float64{phi * (180 / math.Pi), psi * (180 / math.Pi)})
	}
	return rama, nil
}

// RamaResidueFilter filters the dihedral sets by residue name (ex. only GLY, everything but GLY).
// The residues to keep or drop are in filterdata, whether they are kept or
// dropped depends on shouldBePresent. It returns the filtered data and, for each element
// of the original data, its index in the filtered data, or -1 if it was left out.
func RamaResidueFilter(dihedrals []RamaSet, filterdata []string, shouldBePresent bool) ([]RamaSet, []int) {
	ret := make([]RamaSet, 0, len(dihedrals))
	index := make([]int, len(dihedrals))
	for i, v := range dihedrals {
		if isInString(filterdata, v.MolName) != shouldBePresent {
			index[i] = -1
			continue
		}
		index[i] = len(ret)
		ret = append(ret, v)
	}
	return ret, index
}

func atomNamed(M Atomer, r *Residue, name string) int {
	for _, i := range r.Atoms {
		if M.Atom(i).Name == name {
			return i
		}
	}
	return -1
}

// RamaList returns the dihedral sets for every residue of M with a defined phi and psi, that is,
// residues with N, CA and C atoms, preceded by a residue with a C atom and followed by one
// with an N atom, both in the same chain and with consecutive residue IDs. Only residues in
// the given chains (all if chains is empty) are considered. If resran has 2 elements, only
// residues with IDs in the [resran[0], resran[1]] range are included (a -1 upper
// limit means the end of the chain). Otherwise, if resran is not empty, only the residues
// with IDs in resran are included.
func RamaList(M Atomer, chains []string, resran []int) ([]RamaSet, error) {
	if M == nil {
		return nil, &CError{"RamaList: given nil data", []string{"RamaList"}}
	}
	included := func(id int) bool {
		switch {
		case len(resran) == 2:
			return id >= resran[0] && (resran[1] == -1 || id <= resran[1])
		case len(resran) > 0:
			return isInInt(resran, id)
		}
		return true
	}
	res := Residues(M)
	ret := make([]RamaSet, 0, len(res))
	for i := 1; i+1 < len(res); i++ {
		prev, cur, next := res[i-1], res[i], res[i+1]
		if len(chains) > 0 && !isInString(chains, cur.Chain) {
			continue
		}
		if prev.Chain != cur.Chain || next.Chain != cur.Chain || !included(cur.MolID) {
			continue
		}
		if prev.MolID != cur.MolID-1 || next.MolID != cur.MolID+1 {
			continue
		}
		set := RamaSet{
			Cprev:   atomNamed(M, prev, "C"),
			N:       atomNamed(M, cur, "N"),
			Ca:      atomNamed(M, cur, "CA"),
			C:       atomNamed(M, cur, "C"),
			Npost:   atomNamed(M, next, "N"),
			MolID:   cur.MolID,
			MolName: cur.MolName,
			Chain:   cur.Chain,
		}
		if set.Cprev < 0 || set.N < 0 || set.Ca < 0 || set.C < 0 || set.Npost < 0 {
			continue
		}
		ret = append(ret, set)
	}
	if len(ret) == 0 {
		return nil, &CError{"RamaList: no residue with complete phi/psi dihedrals", []string{"RamaList"}}
	}
	return ret, nil
}
