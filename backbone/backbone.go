/*
 * backbone.go, part of cgtools.
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

// Package backbone rebuilds the N, CA, C and O atoms of a protein from a CA-only
// (reduced) model, using an all-atom reference structure with the same sequence.
//
// Each frame is first fitted globally on the CAs. Then every residue takes its
// non-CA atoms from the reference, superimposed on a window of three consecutive
// CAs around it. The CA atoms are always taken from the reduced model, unchanged.
// The result is only meaningful when reference and reduced model are conformationally close.
package backbone

import (
	"errors"
	"fmt"

	chem "github.com/rmera/cgtools"
	v3 "github.com/rmera/cgtools/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WindowSize is the number of consecutive residues whose CAs are used in each local fit.
const WindowSize = 3

type role int

const (
	roleOther role = iota
	roleCA
)

// a residue of the reference, with the role of each of its atoms.
type residue struct {
	atoms []int //indexes in the reference
	roles []role
	ca    int //reference index of the CA
	redCA int //index of the corresponding CA in the reduced structure
}

// Reconstructor rebuilds backbones on a given reference. It can be used
// concurrently: nothing in it changes after New.
type Reconstructor struct {
	top      *chem.Topology
	ref      *v3.Matrix
	residues []residue
	refCA    []int
	redCA    []int
	nreduced int
	o        *Options
}

var bbNames = map[string]bool{"N": true, "CA": true, "C": true, "O": true}

// New returns a Reconstructor for the reference given by refAtoms and refCoords, which
// must contain only the backbone atoms (N, CA, C and O, in any order) of each residue,
// and the reduced (CA-only) topology reduced. The residues in both must correspond, in order.
// The reference is copied. If o is nil, DefaultOptions() is used.
func New(refAtoms chem.Atomer, refCoords *v3.Matrix, reduced chem.Atomer, o *Options) (*Reconstructor, error) {
	if o == nil {
		o = DefaultOptions()
	}
	log := o.Logger()
	if refCoords.NVecs() != refAtoms.Len() {
		return nil, topologyError(-1, "New", "%d reference coordinates for %d atoms", refCoords.NVecs(), refAtoms.Len())
	}
	r := &Reconstructor{o: o, ref: refCoords.Clone()}
	r.top = chem.NewTopology(0, 1)
	r.top.CopyAtoms(refAtoms)
	redCA := chem.CAIndexes(reduced, false)
	for i, res := range chem.Residues(refAtoms) {
		if len(res.Atoms) != 4 {
			return nil, topologyError(i, "New", "reference residue %s %d has %d atoms, not N, CA, C, O", res.MolName, res.MolID, len(res.Atoms))
		}
		rr := residue{atoms: res.Atoms, roles: make([]role, 4), ca: -1}
		seen := make(map[string]bool, 4)
		for k, idx := range res.Atoms {
			name := refAtoms.Atom(idx).Name
			if !bbNames[name] || seen[name] {
				return nil, topologyError(i, "New", "reference residue %s %d has an unexpected or repeated atom %s", res.MolName, res.MolID, name)
			}
			seen[name] = true
			if name == "CA" {
				rr.roles[k] = roleCA
				rr.ca = idx
			}
		}
		r.residues = append(r.residues, rr)
	}
	R := len(r.residues)
	if R < WindowSize {
		return nil, topologyError(-1, "New", "%d residues, at least %d are needed", R, WindowSize)
	}
	if len(redCA) != R {
		return nil, topologyError(-1, "New", "the reduced structure has %d CAs, the reference has %d residues", len(redCA), R)
	}
	for i := range r.residues {
		r.residues[i].redCA = redCA[i]
		r.refCA = append(r.refCA, r.residues[i].ca)
		ra, rd := refAtoms.Atom(r.residues[i].ca), reduced.Atom(redCA[i])
		if ra.MolName != rd.MolName {
			log.Warn("residue names differ between reference and reduced structure",
				zap.Int("residue", i), zap.String("reference", ra.MolName), zap.String("reduced", rd.MolName))
		}
	}
	r.redCA = redCA
	r.nreduced = reduced.Len()
	return r, nil
}

// Topology returns a copy of the topology of the reconstructed structures.
func (r *Reconstructor) Topology() *chem.Topology {
	top := chem.NewTopology(0, 1)
	top.CopyAtoms(r.top)
	return top
}

// window returns the first residue of the window used for residue i.
// The first and last two residues share the first and last windows.
func (r *Reconstructor) window(i int) int {
	return max(0, min(i-1, len(r.residues)-WindowSize))
}

// Frame reconstructs the backbone for one frame of the reduced structure,
// which is not modified. The rows of the result follow the reference atoms.
func (r *Reconstructor) Frame(reduced *v3.Matrix) (*v3.Matrix, error) {
	if reduced.NVecs() != r.nreduced {
		return nil, topologyError(-1, "Frame", "frame has %d atoms, the reduced topology has %d", reduced.NVecs(), r.nreduced)
	}
	tol := r.o.Tolerance()
	global, err := chem.Align(r.ref, r.refCA, reduced, r.redCA, tol)
	if err != nil {
		return nil, decorate(err, "Frame: global fit")
	}
	work := global.Apply(r.ref)
	windows := make([]*chem.Superposition, len(r.residues)-WindowSize+1)
	out := v3.Zeros(r.ref.NVecs())
	for i, res := range r.residues {
		w := r.window(i)
		if windows[w] == nil {
			windows[w], err = chem.Align(work, r.refCA[w:w+WindowSize], reduced, r.redCA[w:w+WindowSize], tol)
			if err != nil {
				return nil, decorate(err, fmt.Sprintf("Frame: window %d", w))
			}
		}
		for k, idx := range res.atoms {
			var c [3]float64
			if res.roles[k] == roleCA {
				copy(c[:], reduced.RawRowView(res.redCA))
			} else {
				copy(c[:], work.RawRowView(idx))
				c = windows[w].ApplyVec(c)
			}
			out.SetRow(idx, c[:])
		}
	}
	if r.o.RefFrame() {
		return global.Inverse().Apply(out), nil
	}
	return out, nil
}

// Trajectory reconstructs all the frames given, in parallel. The i-th
// element of the result corresponds to the i-th frame. The first error found is returned.
func (r *Reconstructor) Trajectory(frames []*v3.Matrix) ([]*v3.Matrix, error) {
	ret := make([]*v3.Matrix, len(frames))
	var g errgroup.Group
	g.SetLimit(max(1, r.o.Cpus()))
	for i, f := range frames {
		i, f := i, f // per-iteration copies (go directive < 1.22)
		g.Go(func() error {
			var err error
			ret[i], err = r.Frame(f)
			if err != nil {
				return decorate(err, fmt.Sprintf("Trajectory: frame %d", i))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.o.Logger().Debug("reconstructed trajectory", zap.Int("frames", len(frames)), zap.Int("atoms", r.ref.NVecs()))
	return ret, nil
}

// FromTraj reads all the remaining frames of t and reconstructs them.
func (r *Reconstructor) FromTraj(t chem.Traj) ([]*v3.Matrix, error) {
	frames := make([]*v3.Matrix, 0, 10)
	for {
		f := v3.Zeros(t.Len())
		err := t.Next(f)
		if err != nil {
			var last chem.LastFrameError
			if errors.As(err, &last) {
				break
			}
			return nil, decorate(err, fmt.Sprintf("FromTraj: reading frame %d", len(frames)))
		}
		frames = append(frames, f)
	}
	return r.Trajectory(frames)
}

// Build reconstructs every frame of reduced using the backbone atoms of the
// aminoacidic residues of the first frame of ref, and returns the result as a new molecule.
func Build(ref, reduced *chem.Molecule, o *Options) (*chem.Molecule, error) {
	if ref.NFrames() == 0 || reduced.NFrames() == 0 {
		return nil, topologyError(-1, "Build", "empty structure")
	}
	bb := chem.BackboneSelect(ref)
	if len(bb) == 0 {
		return nil, topologyError(-1, "Build", "no protein backbone atoms in the reference")
	}
	top := chem.NewTopology(0, 1)
	top.SomeAtoms(ref, bb)
	coords := v3.Zeros(len(bb))
	coords.SomeVecs(ref.Coords[0], bb)
	r, err := New(top, coords, reduced, o)
	if err != nil {
		return nil, decorate(err, "Build")
	}
	frames, err := r.Trajectory(reduced.Coords)
	if err != nil {
		return nil, decorate(err, "Build")
	}
	mol, err := chem.NewMolecule(frames, r.top, nil)
	return mol, decorate(err, "Build")
}

func decorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(chem.Error); ok {
		e.Decorate(caller)
	}
	return err
}
