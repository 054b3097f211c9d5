/*
 * cg.go, part of cgtools.
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

	v3 "github.com/rmera/cgtools/v3"
	"go.uber.org/zap"
)

// CAReduce returns a CA-only molecule built from the aminoacidic residues of mol.
// Every frame of coords (or of mol, if coords is nil) is reduced.
// Atoms, frames and b-factors are copied; mol is not modified.
func CAReduce(coords []*v3.Matrix, mol *Molecule) (*Molecule, error) {
	if coords == nil {
		coords = mol.Coords
	}
	ca := CAIndexes(mol, true)
	if len(ca) == 0 {
		return nil, &CError{msg: "no CA atoms in aminoacidic residues", deco: []string{"CAReduce"}}
	}
	top := NewTopology(mol.Charge(), mol.Multi())
	top.SomeAtoms(mol, ca)
	frames := make([]*v3.Matrix, 0, len(coords))
	for i, c := range coords {
		r := v3.Zeros(len(ca))
		if err := r.SomeVecsSafe(c, ca); err != nil {
			return nil, &CError{msg: fmt.Sprintf("frame %d: %s", i, err.Error()), deco: []string{"CAReduce"}}
		}
		frames = append(frames, r)
	}
	var bf [][]float64
	for _, b := range mol.Bfactors {
		if b == nil {
			bf = append(bf, nil)
			continue
		}
		nb := make([]float64, 0, len(ca))
		for _, j := range ca {
			nb = append(nb, b[j])
		}
		bf = append(bf, nb)
	}
	return NewMolecule(frames, top, bf)
}

// BackboneCGize takes a coord and a mol for a protein, and returns a new set of coordinates
// each of which cooresponds to the center of mass of the backbone of the corresponding residue
// in the original molecule. If top is true, it also returns a topology where each atom corrsponds
// to the center of mass, with the name "BB", and the correct residue name and ID. Otherwise it returns
// an empty topology.
// If centroid is given and true, the geometric center is used instead of the center of mass.
func BackboneCGize(coord *v3.Matrix, mol Atomer, top bool, centroid ...bool) (*v3.Matrix, *Topology, error) {
	topol := NewTopology(0, 1)
	beads := make([]float64, 0, 3*mol.Len()/4)
	bbtop := NewTopology(0, 1)
	for _, res := range Residues(mol) {
		bbin := make([]int, 0, 4)
		for _, i := range res.Atoms {
			at := mol.Atom(i)
			if IsAminoAcid(at.MolName) && isInString(cgBackboneNames, at.Name) {
				bbin = append(bbin, i)
			}
		}
		if len(bbin) == 0 {
			continue //not a protein residue, perhaps a ligand
		}
		if len(bbin) != 4 {
			zap.S().Warnw("abnormal backbone, the BB bead uses the atoms present", "residue", res.MolName, "id", res.MolID, "atoms", len(bbin))
		}
		bb := v3.Zeros(len(bbin))
		bb.SomeVecs(coord, bbin)
		bbtop.SomeAtoms(mol, bbin)
		var mass []float64
		if len(centroid) == 0 || !centroid[0] {
			var err error
			mass, err = bbtop.Masses()
			if err != nil {
				return nil, nil, cgDecorate(err, res)
			}
		}
		com, err := CenterOfMass(bb, mass)
		if err != nil {
			return nil, nil, cgDecorate(err, res)
		}
		beads = append(beads, com.RawRowView(0)...)
		if top {
			at := new(Atom)
			at.Copy(mol.Atom(bbin[0]))
			at.ID = res.MolID
			at.Name = "BB"
			topol.AppendAtom(at)
		}
	}
	if len(beads) == 0 {
		return nil, nil, &CError{msg: "no backbone atoms found", deco: []string{"BackboneCGize"}}
	}
	ret, err := v3.NewMatrix(beads)
	return ret, topol, err
}

// OC1 and OC2 are for C-terminal residues which have 2 O.
var cgBackboneNames = []string{"N", "CA", "C", "O", "OC1", "OC2"}

func cgDecorate(err error, res *Residue) error {
	return errDecorate(err, fmt.Sprintf("BackboneCGize: residue %s %d", res.MolName, res.MolID))
}
