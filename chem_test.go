/*
 * chem_test.go, part of cgtools.
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

package chem_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	chem "github.com/rmera/cgtools"
	"github.com/rmera/cgtools/internal/helix"
	v3 "github.com/rmera/cgtools/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func names(mol chem.Atomer) []string {
	ret := make([]string, 0, mol.Len())
	for i := 0; i < mol.Len(); i++ {
		ret = append(ret, mol.Atom(i).Name)
	}
	return ret
}

func TestSuperposeRecoversMotion(Te *testing.T) {
	mol := helix.Backbone(6)
	orig := mol.Coords[0]
	rot := helix.Rotation([3]float64{1, 2, 0.5}, 1.1)
	moved := helix.Move(orig, rot, [3]float64{3, -7, 12})
	S, err := chem.Superpose(orig, moved)
	require.NoError(Te, err)
	assert.True(Te, mat.EqualApprox(S.Rotation, rot, 1e-9), "rotation not recovered: %v", mat.Formatted(S.Rotation))
	res := S.Apply(orig)
	rmsd, err := chem.RMSD(res, moved)
	require.NoError(Te, err)
	fmt.Println("RMSD after superposition:", rmsd)
	assert.Less(Te, rmsd, 1e-9)
	back := S.Inverse().Apply(moved)
	assert.True(Te, mat.EqualApprox(back, orig, 1e-9))
	//the input is left alone
	assert.True(Te, mat.Equal(orig, helix.Backbone(6).Coords[0]))
}

func TestSuperposeNoReflection(Te *testing.T) {
	orig := helix.Backbone(5).Coords[0]
	mirror := orig.Clone()
	for i := 0; i < mirror.NVecs(); i++ {
		mirror.Set(i, 0, -mirror.At(i, 0))
	}
	S, err := chem.Superpose(orig, mirror)
	require.NoError(Te, err)
	det := mat.Det(S.Rotation)
	fmt.Println("Determinant of the rotation for a mirror image:", det)
	assert.InDelta(Te, 1.0, det, 1e-9)
	rmsd, _ := chem.RMSD(S.Apply(orig), mirror)
	assert.Greater(Te, rmsd, 0.1)
}

func TestSuperposeDegenerate(Te *testing.T) {
	line, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3})
	other, _ := v3.NewMatrix([]float64{1, 0, 0, 2, 0, 0, 3, 0, 0, 4, 0, 0})
	_, err := chem.Superpose(line, other)
	var aerr *chem.AlignmentError
	require.True(Te, errors.As(err, &aerr), "expected an AlignmentError, got %v", err)
	assert.Equal(Te, 4, aerr.Atoms)

	two, _ := v3.NewMatrix([]float64{0, 0, 0, 1, 0, 0})
	_, err = chem.Superpose(two, two)
	require.True(Te, errors.As(err, &aerr))
	_, err = chem.Align(line, []int{0, 1, 2}, other, []int{0, 1})
	require.True(Te, errors.As(err, &aerr))
	_, err = chem.Align(line, []int{0, 1, 9}, other, []int{0, 1, 2})
	require.True(Te, errors.As(err, &aerr))
	fmt.Println("Degenerate alignment error:", err)
}

func TestAlignOnSelection(Te *testing.T) {
	mol := helix.Backbone(5)
	orig := mol.Coords[0]
	ca := chem.CAIndexes(mol, true)
	require.Len(Te, ca, 5)
	moved := helix.Move(orig, helix.Rotation([3]float64{0, 0, 1}, 0.7), [3]float64{1, 1, 1})
	//distort the non-CA atoms of the target, the fit should only see the CAs.
	for i := 0; i < moved.NVecs(); i++ {
		if mol.Atom(i).Name != "CA" {
			moved.Set(i, 2, moved.At(i, 2)+5)
		}
	}
	fitted, err := chem.Super(orig, moved, ca, ca)
	require.NoError(Te, err)
	for _, i := range ca {
		for j := 0; j < 3; j++ {
			assert.InDelta(Te, moved.At(i, j), fitted.At(i, j), 1e-9)
		}
	}
	target := helix.Move(orig, helix.Rotation([3]float64{0, 0, 1}, 0.7), [3]float64{1, 1, 1})
	transformed, rot, t1, t2, err := chem.RotatorTranslatorToSuper(orig, target)
	require.NoError(Te, err)
	shifted := v3.Zeros(orig.NVecs())
	shifted.AddVec(orig, t1)
	manual := v3.Zeros(orig.NVecs())
	manual.Mul(shifted, rot)
	manual.AddVec(manual, t2)
	assert.True(Te, mat.EqualApprox(manual, transformed, 1e-9))
	assert.True(Te, mat.EqualApprox(target, transformed, 1e-9))
}

func TestCenterOfMass(Te *testing.T) {
	c, _ := v3.NewMatrix([]float64{0, 0, 0, 2, 0, 0})
	com, err := chem.CenterOfMass(c, []float64{1, 3})
	require.NoError(Te, err)
	assert.InDelta(Te, 1.5, com.At(0, 0), 1e-12)
	cen, err := chem.CenterOfMass(c, nil)
	require.NoError(Te, err)
	assert.InDelta(Te, 1.0, cen.At(0, 0), 1e-12)
	_, err = chem.CenterOfMass(c, []float64{1})
	assert.Error(Te, err)
}

func TestResiduesAndSelections(Te *testing.T) {
	mol := helix.Backbone(3)
	water := &chem.Atom{Name: "O", MolName: "HOH", MolID: 4, Chain: "A", Symbol: "O", Het: true}
	ca := &chem.Atom{Name: "CA", MolName: "CA", MolID: 5, Chain: "B", Symbol: "Ca", Het: true}
	mol.AppendAtom(water)
	mol.AppendAtom(ca)
	res := chem.Residues(mol)
	require.Len(Te, res, 5)
	assert.Equal(Te, []int{4, 5, 6, 7}, res[1].Atoms)
	assert.Equal(Te, "HOH", res[3].MolName)
	bb := chem.BackboneSelect(mol)
	assert.Len(Te, bb, 12)
	assert.Len(Te, chem.CAIndexes(mol, true), 3)
	assert.Len(Te, chem.CAIndexes(mol, false), 4)
	assert.Equal(Te, []int{12}, chem.Molecules2Atoms(mol, []int{4}, nil))
	assert.Empty(Te, chem.Molecules2Atoms(mol, []int{4}, []string{"B"}))
}

func TestAlternateLocationSelection(Te *testing.T) {
	mol := helix.Backbone(3)
	mol.Atom(1).Char16 = 'A'
	alt := *mol.Atom(1)
	alt.Char16 = 'B'
	mol.AppendAtom(&alt)
	assert.True(Te, chem.MainLocation(mol.Atom(0)))
	assert.True(Te, chem.MainLocation(mol.Atom(1)))
	assert.False(Te, chem.MainLocation(&alt))
	assert.Len(Te, chem.BackboneSelect(mol), 12)
	assert.Equal(Te, []int{1, 5, 9}, chem.CAIndexes(mol, true))
	mol.Atom(6).Char16 = 'C'
	assert.Len(Te, chem.BackboneSelect(mol), 11)
}

func TestCAReduce(Te *testing.T) {
	mol := helix.Backbone(5)
	mol.Coords = append(mol.Coords, helix.Frames(mol.Coords[0], 1, 0, 3)...)
	red, err := chem.CAReduce(nil, mol)
	require.NoError(Te, err)
	assert.Equal(Te, 5, red.Len())
	assert.Equal(Te, 2, red.NFrames())
	assert.Equal(Te, []string{"CA", "CA", "CA", "CA", "CA"}, names(red))
	for f := 0; f < 2; f++ {
		for i := 0; i < 5; i++ {
			assert.Equal(Te, mol.Coords[f].RawRowView(4*i+1), red.Coords[f].RawRowView(i))
		}
	}
	red.Atom(0).Name = "XX"
	assert.Equal(Te, "N", mol.Atom(0).Name, "CAReduce must copy the atoms")
}

func TestBackboneCGize(Te *testing.T) {
	mol := helix.Backbone(4)
	beads, top, err := chem.BackboneCGize(mol.Coords[0], mol, true)
	require.NoError(Te, err)
	assert.Equal(Te, 4, beads.NVecs())
	assert.Equal(Te, 4, top.Len())
	assert.Equal(Te, "BB", top.Atom(2).Name)
	assert.Equal(Te, 3, top.Atom(2).ID)
	cent, _, err := chem.BackboneCGize(mol.Coords[0], mol, false, true)
	require.NoError(Te, err)
	sel := v3.Zeros(4)
	sel.SomeVecs(mol.Coords[0], []int{4, 5, 6, 7})
	c := chem.Centroid(sel)
	assert.InDelta(Te, c[1], cent.At(1, 1), 1e-12)
}

func TestMoleculeAsTraj(Te *testing.T) {
	mol := helix.Backbone(4)
	mol.Coords = append(mol.Coords, helix.Frames(mol.Coords[0], 2, 0.1, 1)...)
	frame := v3.Zeros(mol.Len())
	read := 0
	for {
		err := mol.Next(frame)
		if err != nil {
			_, ok := err.(chem.LastFrameError)
			require.True(Te, ok, "unexpected error %v", err)
			break
		}
		read++
	}
	assert.Equal(Te, 3, read)
	assert.False(Te, mol.Readable())
	mol.Rewind()
	assert.True(Te, mol.Readable())
}

func TestStructureFilesRoundTrip(Te *testing.T) {
	mol := helix.Backbone(4)
	mol.Coords = append(mol.Coords, helix.Frames(mol.Coords[0], 1, 0.2, 7)...)
	dir := Te.TempDir()
	approx := cmpopts.EquateApprox(0, 1.1e-3)
	for _, name := range []string{"h.pdb", "h.pdb.gz", "h.pdb.zst", "h.cif", "h.cif.gz", "h.mmcif.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(Te, chem.FileWrite(path, mol.Coords, mol, nil), name)
		read, err := chem.FileRead(path)
		require.NoError(Te, err, name)
		fmt.Printf("%s: %d atoms, %d frames\n", name, read.Len(), read.NFrames())
		require.Equal(Te, 2, read.NFrames(), name)
		assert.Equal(Te, names(mol), names(read), name)
		assert.Equal(Te, "ALA", read.Atom(5).MolName)
		assert.Equal(Te, 2, read.Atom(5).MolID)
		assert.Equal(Te, "A", read.Atom(5).Chain)
		for f := range mol.Coords {
			want := mol.Coords[f].RawMatrix().Data
			got := read.Coords[f].RawMatrix().Data
			if diff := cmp.Diff(want, got, approx); diff != "" {
				Te.Errorf("%s frame %d coordinates differ (-want +got):\n%s", name, f, diff)
			}
		}
	}
}

func TestFileReadErrors(Te *testing.T) {
	dir := Te.TempDir()
	_, err := chem.FileRead(filepath.Join(dir, "missing.pdb"))
	var ferr *chem.FileLoadError
	require.True(Te, errors.As(err, &ferr))
	assert.Equal(Te, "pdb", ferr.Format)
	assert.NotNil(Te, errors.Unwrap(ferr))

	_, err = chem.FileRead(filepath.Join(dir, "thing.xyz"))
	require.True(Te, errors.As(err, &ferr))

	_, err = chem.PDBRead(strings.NewReader("ATOM      1  CA  ALA A   X      1.000   2.000   3.000  1.00  0.00           C\n"))
	require.True(Te, errors.As(err, &ferr))
	fmt.Println("Malformed PDB:", err)

	_, err = chem.PDBRead(strings.NewReader("REMARK nothing here\nEND\n"))
	require.True(Te, errors.As(err, &ferr))
}

func TestPDBMultiModel(Te *testing.T) {
	pdb := `MODEL        1
ATOM      1  CA  GLY A   1       0.000   0.000   0.000  1.00  0.00           C
ATOM      2  CA  GLY A   2       3.800   0.000   0.000  1.00  0.00           C
ENDMDL
MODEL        2
ATOM      1  CA  GLY A   1       0.000   1.000   0.000  1.00  0.00           C
ATOM      2  CA  GLY A   2       3.800   1.000   0.000  1.00  0.00           C
ENDMDL
END
`
	mol, err := chem.PDBRead(strings.NewReader(pdb))
	require.NoError(Te, err)
	assert.Equal(Te, 2, mol.NFrames())
	assert.Equal(Te, 2, mol.Len())
	assert.InDelta(Te, 1.0, mol.Coords[1].At(1, 1), 1e-9)
	assert.Equal(Te, byte('G'), mol.Atom(0).MolName1)

	bad := strings.Replace(pdb, "ATOM      2  CA  GLY A   2       3.800   1.000", "REMARK", 1)
	_, err = chem.PDBRead(strings.NewReader(bad))
	var ferr *chem.FileLoadError
	assert.True(Te, errors.As(err, &ferr), "frames of different size must fail")
}
