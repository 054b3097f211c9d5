/*
 * dcd_test.go, part of cgtools.
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

package dcd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	chem "github.com/rmera/cgtools"
	"github.com/rmera/cgtools/internal/helix"
	v3 "github.com/rmera/cgtools/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrames(Te *testing.T, path string, frames []*v3.Matrix) {
	w, err := NewWriter(path, frames[0].NVecs(), "helix test")
	require.NoError(Te, err)
	for _, f := range frames {
		require.NoError(Te, w.WNext(f))
	}
	require.NoError(Te, w.Close())
}

func readAll(Te *testing.T, path string) (*DCDObj, []*v3.Matrix) {
	traj, err := New(path)
	require.NoError(Te, err)
	var ret []*v3.Matrix
	for {
		m := v3.Zeros(traj.Len())
		err := traj.Next(m)
		if err != nil {
			_, ok := err.(chem.LastFrameError)
			require.True(Te, ok, "unexpected error: %v", err)
			break
		}
		ret = append(ret, m)
	}
	return traj, ret
}

func TestDCDRoundTrip(Te *testing.T) {
	mol := helix.Backbone(5)
	frames := helix.Frames(mol.Coords[0], 6, 0.5, 3)
	path := filepath.Join(Te.TempDir(), "h.dcd")
	writeFrames(Te, path, frames)
	traj, read := readAll(Te, path)
	fmt.Println("DCD frames read:", len(read))
	require.Len(Te, read, len(frames))
	assert.Equal(Te, len(frames), traj.NFrames())
	assert.Equal(Te, "helix test", traj.Title())
	assert.InDelta(Te, 1.0, traj.Delta(), 1e-9)
	assert.False(Te, traj.Readable())
	for i := range frames {
		for j := 0; j < frames[i].NVecs(); j++ {
			for k := 0; k < 3; k++ {
				assert.InDelta(Te, frames[i].At(j, k), read[i].At(j, k), 1e-4)
			}
		}
	}
}

func TestDCDHeaderLayout(Te *testing.T) {
	mol := helix.Backbone(3)
	path := filepath.Join(Te.TempDir(), "h.dcd")
	writeFrames(Te, path, []*v3.Matrix{mol.Coords[0], mol.Coords[0]})
	data, err := os.ReadFile(path)
	require.NoError(Te, err)
	le := binary.LittleEndian
	assert.Equal(Te, uint32(84), le.Uint32(data[0:]))
	assert.Equal(Te, "CORD", string(data[4:8]))
	assert.Equal(Te, uint32(2), le.Uint32(data[8:]), "NSET")
	assert.Equal(Te, uint32(24), le.Uint32(data[4+4+76:]), "CHARMM version")
	assert.Equal(Te, uint32(84), le.Uint32(data[88:]))
	//header, title (4+4+80+4), natoms block (12), then two frames of 3 blocks.
	expected := 92 + 92 + 12 + 2*3*(8+4*mol.Len())
	assert.Equal(Te, expected, len(data))
}

func TestDCDCompressedAndBigEndian(Te *testing.T) {
	mol := helix.Backbone(4)
	frames := helix.Frames(mol.Coords[0], 3, 0, 5)
	dir := Te.TempDir()
	plain := filepath.Join(dir, "h.dcd")
	writeFrames(Te, plain, frames)
	data, err := os.ReadFile(plain)
	require.NoError(Te, err)

	var buf bytes.Buffer
	z := gzip.NewWriter(&buf)
	_, err = z.Write(data)
	require.NoError(Te, err)
	require.NoError(Te, z.Close())
	gz := filepath.Join(dir, "h.dcd.gz")
	require.NoError(Te, os.WriteFile(gz, buf.Bytes(), 0o644))
	_, read := readAll(Te, gz)
	require.Len(Te, read, 3)
	assert.InDelta(Te, frames[2].At(7, 1), read[2].At(7, 1), 1e-4)

	//every record of a DCD is made of 4-byte words, so swapping each word gives the big-endian file.
	big := make([]byte, len(data))
	for i := 0; i+4 <= len(data); i += 4 {
		copy(big[i:], []byte{data[i+3], data[i+2], data[i+1], data[i]})
	}
	//except the magic number and the title, which are bytes.
	copy(big[4:8], "CORD")
	copy(big[100:180], data[100:180])
	bpath := filepath.Join(dir, "big.dcd")
	require.NoError(Te, os.WriteFile(bpath, big, 0o644))
	traj, read := readAll(Te, bpath)
	require.Len(Te, read, 3)
	assert.Equal(Te, binary.BigEndian, traj.endian)
	assert.InDelta(Te, frames[1].At(3, 2), read[1].At(3, 2), 1e-4)
}

func TestDCDErrors(Te *testing.T) {
	dir := Te.TempDir()
	_, err := New(filepath.Join(dir, "nothere.dcd"))
	require.Error(Te, err)
	terr, ok := err.(chem.TrajError)
	require.True(Te, ok)
	assert.Equal(Te, "dcd", terr.Format())
	assert.Equal(Te, []string{"openSource", "initRead", "New"}, terr.Decorate(""))
	terr.Decorate("TestDCDErrors")
	assert.Equal(Te, "TestDCDErrors", terr.Decorate("")[3])

	mol := helix.Backbone(3)
	path := filepath.Join(dir, "t.dcd")
	writeFrames(Te, path, []*v3.Matrix{mol.Coords[0], mol.Coords[0]})
	data, _ := os.ReadFile(path)
	trunc := filepath.Join(dir, "trunc.dcd")
	require.NoError(Te, os.WriteFile(trunc, data[:len(data)-10], 0o644))
	traj, err := New(trunc)
	require.NoError(Te, err)
	require.NoError(Te, traj.Next(nil))
	err = traj.Next(nil)
	require.Error(Te, err)
	_, last := err.(chem.LastFrameError)
	assert.False(Te, last, "a truncated frame is not a normal end")
	traj.Close()

	bad := append([]byte(nil), data...)
	copy(bad[4:8], "XXXX")
	badpath := filepath.Join(dir, "bad.dcd")
	require.NoError(Te, os.WriteFile(badpath, bad, 0o644))
	_, err = New(badpath)
	assert.Error(Te, err)

	w, err := NewWriter(filepath.Join(dir, "w.dcd"), 3)
	require.NoError(Te, err)
	assert.Error(Te, w.WNext(v3.Zeros(2)))
	assert.Error(Te, w.WNext(nil))
	require.NoError(Te, w.Close())
	assert.Error(Te, w.WNext(v3.Zeros(3)))
	_, err = NewWriter(filepath.Join(dir, "z.dcd"), 0)
	assert.Error(Te, err)
}
