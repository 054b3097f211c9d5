/*
 * open_test.go, part of cgtools.
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

package traj

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rmera/cgtools/internal/helix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(Te *testing.T) {
	cases := map[string]string{
		"a.dcd":      "dcd",
		"a.DCD.gz":   "dcd",
		"b.stf":      "stf",
		"b.stfz":     "stf",
		"c.pdb.zst":  "pdb",
		"d.cif":      "cif",
		"e.mmcif.gz": "cif",
		"f.xtc":      "",
	}
	for name, want := range cases {
		assert.Equal(Te, want, Format(name), name)
	}
}

func TestCreateOpenRoundTrip(Te *testing.T) {
	mol := helix.Backbone(4)
	frames := helix.Frames(mol.Coords[0], 3, 0.3, 21)
	dir := Te.TempDir()
	tols := map[string]float64{"t.dcd": 1e-4, "t.stf": 0.51e-2, "t.stfz": 0.51e-2, "t.pdb": 1.1e-3, "t.cif.gz": 1.1e-3}
	for name, tol := range tols {
		path := filepath.Join(dir, name)
		w, err := Create(path, mol, map[string]string{"prec": "2"})
		require.NoError(Te, err, name)
		assert.Equal(Te, mol.Len(), w.Len())
		for _, f := range frames {
			require.NoError(Te, w.WNext(f))
		}
		require.NoError(Te, w.Close())

		r, err := Open(path)
		require.NoError(Te, err, name)
		assert.Equal(Te, mol.Len(), r.Len())
		read, err := ReadAll(r)
		require.NoError(Te, err, name)
		require.NoError(Te, r.Close())
		fmt.Printf("%s: %d frames\n", name, len(read))
		require.Len(Te, read, len(frames), name)
		for i := range frames {
			if diff := cmp.Diff(frames[i].RawMatrix().Data, read[i].RawMatrix().Data, cmpopts.EquateApprox(0, tol)); diff != "" {
				Te.Errorf("%s frame %d differs:\n%s", name, i, diff)
			}
		}
	}
}

func TestCreateOpenErrors(Te *testing.T) {
	dir := Te.TempDir()
	mol := helix.Backbone(3)
	_, err := Open(filepath.Join(dir, "a.xtc"))
	assert.Error(Te, err)
	_, err = Open(filepath.Join(dir, "missing.dcd"))
	assert.Error(Te, err)
	_, err = Create(filepath.Join(dir, "a.dcd.gz"), mol)
	assert.Error(Te, err)
	_, err = Create(filepath.Join(dir, "a.xyz"), mol)
	assert.Error(Te, err)
	w, err := Create(filepath.Join(dir, "a.pdb"), mol)
	require.NoError(Te, err)
	assert.Error(Te, w.WNext(mol.Coords[0].VecView(0)))
	assert.Error(Te, w.Close(), "nothing to write")
}
