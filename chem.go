/*
 * chem.go, part of cgtools.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import (
	"fmt"

	v3 "github.com/rmera/cgtools/v3"
)

/**Note: Some functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is most likely wrong and should
 * crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
 * fields**/

// Atom contains the information of an atom except for the coordinates, which will be in a
// v3.Matrix, and the b-factors, which are in a separate slice of float64.
type Atom struct {
	Name      string  //PDB name of the atom
	ID        int     //The PDB index of the atom
	Tag       int     //Just added this for something that someone might want to keep that is not a float.
	MolName   string  //PDB name of the residue or molecule (3-letter code for residues)
	MolName1  byte    //the one letter name for residues and nucleotids
	Char16    byte    //Whatever is in the column 16 (counting from 0) in a PDB file, anything.
	MolID     int     //PDB index of the corresponding residue or molecule
	Chain     string  //One-character PDB name for a chain.
	Mass      float64 //hopefully all these float64 are not too much memory
	Occupancy float64 //a PDB crystallographic field, often used to store values of interest.
	Vdw       float64 //radius
	Charge    float64 //Partial charge on an atom
	Symbol    string
	Het       bool // is the atom an hetatm in the pdb file? (if applicable)
}

// Copy copies B into the receiver.
func (N *Atom) Copy(B *Atom) {
	if N == nil || B == nil {
		panic(ErrNilAtoms)
	}
	*N = *B
}

// Topology contains information about a molecule which is not expected to change in time
// (i.e. everything except for coordinates and b-factors)
type Topology struct {
	Atoms  []*Atom
	charge int
	multi  int
}

// NewTopology returns a topology with the given charge, multiplicity and atoms.
// Only the first slice of atoms given is used. The atoms are not copied.
func NewTopology(charge, multi int, ats ...[]*Atom) *Topology {
	top := new(Topology)
	if len(ats) == 0 || ats[0] == nil {
		top.Atoms = make([]*Atom, 0, 0)
	} else {
		top.Atoms = ats[0]
	}
	top.charge = charge
	top.multi = multi
	return top
}

// Charge gets the total charge of the topology
func (T *Topology) Charge() int {
	return T.charge
}

// Multi returns the multiplicity in the topology
func (T *Topology) Multi() int {
	return T.multi
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic(ErrAtomOutOfRange)
	}
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// AppendAtom appends an atom at the end of the reference
func (T *Topology) AppendAtom(at *Atom) {
	T.Atoms = append(T.Atoms, at)
}

// CopyAtoms puts in the receiver copies of all the atoms in A.
func (T *Topology) CopyAtoms(A Atomer) {
	T.Atoms = make([]*Atom, A.Len())
	for i := 0; i < A.Len(); i++ {
		T.Atoms[i] = new(Atom)
		T.Atoms[i].Copy(A.Atom(i))
	}
}

// SomeAtoms puts in the receiver copies of the atoms of A with the indexes in atomlist.
func (T *Topology) SomeAtoms(A Atomer, atomlist []int) {
	T.Atoms = make([]*Atom, 0, len(atomlist))
	for _, v := range atomlist {
		at := new(Atom)
		at.Copy(A.Atom(v))
		T.Atoms = append(T.Atoms, at)
	}
}

// Masses returns a slice of float64 with the masses of the atoms in the topology, or an error
// if an atom has no mass and no known symbol.
func (T *Topology) Masses() ([]float64, error) {
	mass := make([]float64, T.Len())
	for i, at := range T.Atoms {
		m := at.Mass
		if m == 0 {
			var ok bool
			if m, ok = symbolMass[at.Symbol]; !ok {
				return nil, &CError{msg: fmt.Sprintf("no mass for atom %d (%s, symbol %q)", i, at.Name, at.Symbol), deco: []string{"Masses"}}
			}
		}
		mass[i] = m
	}
	return mass, nil
}

// Molecule contains all the info for a molecule in many states.
// The info that is expected to change between states,
// Coordinates and b-factors are stored separately from other atomic info.
type Molecule struct {
	*Topology
	Coords   []*v3.Matrix
	Bfactors [][]float64
	current  int
}

// NewMolecule makes a molecule with ats atoms, coords coordinates and bfactors b-factors
// and returns it. Each coordinate frame must have as many vectors as ats has atoms.
// The atoms are copied; the coordinates are not.
func NewMolecule(coords []*v3.Matrix, ats Atomer, bfactors [][]float64) (*Molecule, error) {
	if ats == nil {
		return nil, &CError{msg: "supplied a nil topology", deco: []string{"NewMolecule"}}
	}
	top := NewTopology(0, 1)
	top.CopyAtoms(ats)
	mol := &Molecule{Topology: top, Coords: coords, Bfactors: bfactors}
	if err := mol.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	return mol, nil
}

// Corrupted checks whether the molecule is corrupted, i.e. the
// coordinates don't match the number of atoms.
func (M *Molecule) Corrupted() error {
	for i, c := range M.Coords {
		if c.NVecs() != M.Len() {
			return &CError{msg: fmt.Sprintf("frame %d has %d coordinates for %d atoms", i, c.NVecs(), M.Len()), deco: []string{"Corrupted"}}
		}
	}
	for i, b := range M.Bfactors {
		if b != nil && len(b) != M.Len() {
			return &CError{msg: fmt.Sprintf("frame %d has %d b-factors for %d atoms", i, len(b), M.Len()), deco: []string{"Corrupted"}}
		}
	}
	return nil
}

// NFrames returns the number of frames in the molecule.
func (M *Molecule) NFrames() int {
	return len(M.Coords)
}

// Copy returns a deep copy of the molecule.
func (M *Molecule) Copy() *Molecule {
	top := NewTopology(M.Charge(), M.Multi())
	top.CopyAtoms(M)
	coords := make([]*v3.Matrix, 0, len(M.Coords))
	for _, v := range M.Coords {
		coords = append(coords, v.Clone())
	}
	var bf [][]float64
	if M.Bfactors != nil {
		bf = make([][]float64, 0, len(M.Bfactors))
		for _, v := range M.Bfactors {
			bf = append(bf, append([]float64(nil), v...))
		}
	}
	return &Molecule{Topology: top, Coords: coords, Bfactors: bf}
}

//Traj interface

// Readable returns true if the molecule has a frame available for reading.
func (M *Molecule) Readable() bool {
	return M.current < len(M.Coords)
}

// Next puts the next frame into V and returns an error or nil.
// The box argument is ignored, molecules have no box information.
func (M *Molecule) Next(V *v3.Matrix, box ...[]float64) error {
	if M.current >= len(M.Coords) {
		return &lastFrameError{deco: []string{"Next"}}
	}
	M.current++
	if V == nil {
		return nil
	}
	V.Copy(M.Coords[M.current-1].Dense)
	return nil
}

// Rewind sets the frame counter so the next call to Next reads the first frame.
func (M *Molecule) Rewind() {
	M.current = 0
}

//Panic messages

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNilAtoms       = PanicMsg("cgtools: Given nil atom(s)")
	ErrAtomOutOfRange = PanicMsg("cgtools: Requested atom out of range")
)
