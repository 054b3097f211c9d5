/*
 * msm_test.go, part of cgtools.
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

package msm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/cgtools"
	"github.com/rmera/cgtools/internal/helix"
	"github.com/rmera/cgtools/traj"
	v3 "github.com/rmera/cgtools/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testModel has 4 microstates, the last one out of the active set,
// and 2 macrostates.
func testModel() *Model {
	return &Model{
		St:             [][]int{{0, 0, 1, 2}, {3, 1, 1, 0}},
		K:              4,
		N:              []float64{3, 3, 1, 1},
		ActiveSet:      []int{0, 1, 2},
		Stationary:     []float64{0.5, 0.3, 0.2},
		MacroOfCluster: []int{0, 0, 1},
		Centers:        [][]float64{{0, 0}, {1, 1}, {5, 5}, {9, 9}},
		Macronum:       2,
		Sims: []Sim{
			{MolFile: "a.pdb", Trajectory: []string{"a.dcd"}, NumFrames: []int{40}},
			{MolFile: "b.pdb", Trajectory: []string{"b.dcd"}, NumFrames: []int{40}},
		},
	}
}

func TestComputeWeights(Te *testing.T) {
	m := testModel()
	w, err := ComputeWeights(m)
	require.NoError(Te, err)
	fmt.Println("Weights:", w)
	expected := []float64{0.5 / 3, 0.5 / 3, 0.1, 0.2, 0, 0.1, 0.1, 0.5 / 3}
	require.Len(Te, w, len(expected))
	sum := 0.0
	for i := range w {
		assert.InDelta(Te, expected[i], w[i], 1e-12, "frame %d", i)
		sum += w[i]
	}
	assert.InDelta(Te, 1.0, sum, 1e-12)

	pop := MacroPopulations(m)
	assert.InDeltaSlice(Te, []float64{0.8, 0.2}, pop, 1e-12)
	assert.Equal(Te, [][]float64{{0, 0}, {1, 1}}, MacroCenters(m, 0))
	assert.Equal(Te, -1, m.ActiveIndex(3))
	assert.Equal(Te, 2, m.ActiveIndex(2))
}

func TestCheck(Te *testing.T) {
	m := testModel()
	m.St[1][0] = 7
	assert.Error(Te, m.Check())
	m = testModel()
	m.Stationary = m.Stationary[:2]
	_, err := ComputeWeights(m)
	assert.Error(Te, err)
	m = testModel()
	m.MacroOfCluster[2] = 2
	assert.Error(Te, m.Check())
	m = testModel()
	m.Frames = [][]int{{0, 1, 2, 3}}
	assert.Error(Te, m.Check())
}

func TestLoadModel(Te *testing.T) {
	dir := Te.TempDir()
	path := filepath.Join(dir, "model.json")
	data, err := json.Marshal(testModel())
	require.NoError(Te, err)
	require.NoError(Te, os.WriteFile(path, data, 0o644))
	m, err := LoadModel(path)
	require.NoError(Te, err)
	assert.Equal(Te, testModel().St, m.St)
	assert.Equal(Te, 1, m.ActiveIndex(1))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(Te, os.WriteFile(bad, []byte(`{"K": 2, "N": [1], "St": [[0]]}`), 0o644))
	_, err = LoadModel(bad)
	assert.Error(Te, err)
	_, err = LoadModel(filepath.Join(dir, "missing.json"))
	assert.Error(Te, err)
}

func TestSampleState(Te *testing.T) {
	m := testModel()
	o := DefaultSampleOptions()
	o.Frames(20)
	refs, err := SampleState(m, 1, Macro, o)
	require.NoError(Te, err)
	require.Len(Te, refs, 20)
	for _, r := range refs {
		//the only frame of macrostate 1, plus 10% of 40 initial frames.
		assert.Equal(Te, FrameRef{Sim: 0, Frame: 7}, r)
	}

	o.Frames(200)
	refs, err = SampleState(m, 0, Macro, o)
	require.NoError(Te, err)
	allowed := map[FrameRef]bool{{0, 4}: true, {0, 5}: true, {0, 6}: true, {1, 5}: true, {1, 6}: true, {1, 7}: true}
	seen := map[FrameRef]int{}
	for _, r := range refs {
		assert.True(Te, allowed[r], "%v not in macrostate 0", r)
		seen[r]++
	}
	fmt.Println("Macro 0 sample counts:", seen)
	assert.Len(Te, seen, len(allowed))
	again, err := SampleState(m, 0, Macro, o)
	require.NoError(Te, err)
	assert.Equal(Te, refs, again, "same seed, same sample")

	o.InitFrames(0)
	refs, err = SampleState(m, 1, Micro, o)
	require.NoError(Te, err)
	assert.ElementsMatch(Te, []FrameRef{{0, 2}, {1, 1}, {1, 2}}, refs)
	refs, err = SampleState(m, 3, Micro, o)
	require.NoError(Te, err)
	assert.Equal(Te, []FrameRef{{1, 0}}, refs)

	_, err = SampleState(m, 2, Macro, o)
	assert.Error(Te, err)
	_, err = SampleState(m, 4, Micro, o)
	assert.Error(Te, err)
	k, err := ParseStateKind("MACRO")
	require.NoError(Te, err)
	assert.Equal(Te, Macro, k)
	_, err = ParseStateKind("meso")
	assert.Error(Te, err)
}

func TestReadSamples(Te *testing.T) {
	dir := Te.TempDir()
	mol := helix.Backbone(3)
	pdb := filepath.Join(dir, "top.pdb")
	require.NoError(Te, chem.FileWrite(pdb, mol.Coords, mol, nil))
	dcdname := filepath.Join(dir, "sim.dcd")
	w, err := traj.Create(dcdname, mol)
	require.NoError(Te, err)
	for i := 0; i < 8; i++ {
		shift, err := v3.NewMatrix([]float64{float64(i), 0, 0})
		require.NoError(Te, err)
		f := mol.Coords[0].Clone()
		f.AddVec(f, shift)
		require.NoError(Te, w.WNext(f))
	}
	require.NoError(Te, w.Close())

	m := &Model{Sims: []Sim{{MolFile: pdb, Trajectory: []string{dcdname}, NumFrames: []int{8}}}}
	refs := []FrameRef{{0, 5}, {0, 2}, {0, 5}, {0, 7}}
	got, err := ReadSamples(m, refs, nil)
	require.NoError(Te, err)
	require.Equal(Te, len(refs), got.NFrames())
	for i, r := range refs {
		want := mol.Coords[0].At(4, 0) + float64(r.Frame)
		assert.InDelta(Te, want, got.Coords[i].At(4, 0), 1e-3, "sample %d", i)
	}
	_, err = ReadSamples(m, []FrameRef{{0, 8}}, nil)
	assert.Error(Te, err)
	_, err = ReadSamples(m, []FrameRef{{1, 0}}, nil)
	assert.Error(Te, err)
}
