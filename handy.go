/*
 * handy.go, part of cgtools.
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

// Residue is a contiguous group of atoms sharing chain and residue ID.
type Residue struct {
	Chain   string
	MolID   int
	MolName string
	Atoms   []int //indexes in the parent Atomer
}

// Residues groups the atoms of mol into residues. A new residue starts every time
// the chain or the residue ID changes, so repeated IDs in different places of the
// file give different residues.
func Residues(mol Atomer) []*Residue {
	ret := make([]*Residue, 0, mol.Len()/4+1)
	var cur *Residue
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if cur == nil || at.MolID != cur.MolID || at.Chain != cur.Chain {
			cur = &Residue{Chain: at.Chain, MolID: at.MolID, MolName: at.MolName}
			ret = append(ret, cur)
		}
		cur.Atoms = append(cur.Atoms, i)
	}
	return ret
}

var backboneNames = []string{"N", "CA", "C", "O"}

// MainLocation returns true if at has no alternate location indicator,
// or if it is the first one, A.
func MainLocation(at *Atom) bool {
	switch at.Char16 {
	case 0, ' ', '.', '?', 'A':
		return true
	}
	return false
}

// BackboneSelect returns the indexes of the N, CA, C and O atoms of the
// aminoacidic residues in mol, in file order. Only the main location
// (see MainLocation) of atoms with alternate locations is included.
func BackboneSelect(mol Atomer) []int {
	ret := make([]int, 0, mol.Len()/2)
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if at.Het || !IsAminoAcid(at.MolName) || !MainLocation(at) {
			continue
		}
		if isInString(backboneNames, at.Name) {
			ret = append(ret, i)
		}
	}
	return ret
}

// CAIndexes returns the indexes of the atoms named CA in mol.
// If protein is true, only CAs belonging to aminoacidic residues are returned
// (so calcium ions are left out). As in BackboneSelect, alternate locations other
// than the main one are skipped.
func CAIndexes(mol Atomer, protein bool) []int {
	ret := make([]int, 0, mol.Len()/4+1)
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if at.Name != "CA" || !MainLocation(at) {
			continue
		}
		if protein && !IsAminoAcid(at.MolName) {
			continue
		}
		ret = append(ret, i)
	}
	return ret
}

// Molecules2Atoms gets a selection list from a list of residues.
// It select all the atoms that form part of the residues in the list.
// It doesnt return errors. If chains is empty, all chains are considered.
func Molecules2Atoms(mol Atomer, residues []int, chains []string) []int {
	atlist := make([]int, 0, len(residues)*3)
	for key := 0; key < mol.Len(); key++ {
		at := mol.Atom(key)
		if isInInt(residues, at.MolID) && (len(chains) == 0 || isInString(chains, at.Chain)) {
			atlist = append(atlist, key)
		}
	}
	return atlist
}

func isInInt(container []int, test int) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
