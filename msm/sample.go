/*
 * sample.go, part of cgtools.
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
	"fmt"
	"sort"
	"strings"

	chem "github.com/rmera/cgtools"
	"github.com/rmera/cgtools/traj"
	v3 "github.com/rmera/cgtools/v3"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// StateKind tells whether a state index refers to a microstate or a macrostate.
type StateKind int

const (
	Micro StateKind = iota
	Macro
)

func (k StateKind) String() string {
	if k == Macro {
		return "macro"
	}
	return "micro"
}

// ParseStateKind returns the StateKind named by s ("micro" or "macro").
func ParseStateKind(s string) (StateKind, error) {
	switch strings.ToLower(s) {
	case "micro":
		return Micro, nil
	case "macro":
		return Macro, nil
	}
	return Micro, fmt.Errorf("msm: unknown state kind %q", s)
}

// SampleOptions contains the options for state sampling.
type SampleOptions struct {
	frames     int
	initFrames float64
	seed       uint64
}

// DefaultSampleOptions returns options for sampling 50 frames, skipping
// the first 10% of the first simulation's frames.
func DefaultSampleOptions() *SampleOptions {
	return &SampleOptions{frames: 50, initFrames: 0.1, seed: 1}
}

// Frames sets the number of frames to sample, if a positive number is given,
// and returns the current value.
func (O *SampleOptions) Frames(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.frames = n[0]
	}
	return O.frames
}

// InitFrames sets the fraction of the first simulation's frames that is added as an
// offset to every sampled frame index, and returns the current value.
// The offset accounts for the frames discarded when the model was built.
func (O *SampleOptions) InitFrames(f ...float64) float64 {
	if len(f) > 0 && f[0] >= 0 {
		O.initFrames = f[0]
	}
	return O.initFrames
}

// Seed sets the seed for the random number generator and returns the current value.
func (O *SampleOptions) Seed(s ...uint64) uint64 {
	if len(s) > 0 {
		O.seed = s[0]
	}
	return O.seed
}

// FrameRef identifies a frame of one of the model's simulations.
type FrameRef struct {
	Sim   int
	Frame int
}

// SampleState picks frames belonging to state. Macrostates are sampled with
// replacement, each frame with probability proportional to its equilibrium weight.
// Microstates are sampled uniformly without replacement, so fewer frames than
// requested are returned if the microstate does not have enough.
func SampleState(m *Model, state int, kind StateKind, o *SampleOptions) ([]FrameRef, error) {
	if o == nil {
		o = DefaultSampleOptions()
	}
	if m.active == nil {
		if err := m.Check(); err != nil {
			return nil, fmt.Errorf("msm.SampleState: %w", err)
		}
	}
	var cands []FrameRef
	var weights []float64
	switch kind {
	case Macro:
		if state < 0 || state >= m.Macronum || m.MacroOfCluster == nil {
			return nil, fmt.Errorf("msm.SampleState: macrostate %d out of range (%d macrostates)", state, m.Macronum)
		}
		for i, sim := range m.St {
			for j, s := range sim {
				a := m.active[s]
				if a < 0 || m.MacroOfCluster[a] != state || m.N[s] <= 0 {
					continue
				}
				cands = append(cands, FrameRef{Sim: i, Frame: m.frameIndex(i, j)})
				weights = append(weights, m.Stationary[a]/m.N[s])
			}
		}
	case Micro:
		if state < 0 || state >= m.K {
			return nil, fmt.Errorf("msm.SampleState: microstate %d out of range (%d microstates)", state, m.K)
		}
		for i, sim := range m.St {
			for j, s := range sim {
				if s == state {
					cands = append(cands, FrameRef{Sim: i, Frame: m.frameIndex(i, j)})
				}
			}
		}
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("msm.SampleState: %s state %d has no frames", kind, state)
	}
	src := rand.NewSource(o.Seed())
	var ret []FrameRef
	if kind == Macro {
		w := sampleuv.NewWeighted(weights, src)
		ret = make([]FrameRef, 0, o.Frames())
		for len(ret) < o.Frames() {
			idx, ok := w.Take()
			if !ok {
				return nil, fmt.Errorf("msm.SampleState: macrostate %d has zero equilibrium weight", state)
			}
			w.Reweight(idx, weights[idx])
			ret = append(ret, cands[idx])
		}
	} else {
		n := min(o.Frames(), len(cands))
		if n < o.Frames() {
			zap.S().Warnw("microstate has fewer frames than requested", "state", state, "frames", len(cands), "requested", o.Frames())
		}
		idxs := make([]int, n)
		sampleuv.WithoutReplacement(idxs, len(cands), src)
		ret = make([]FrameRef, n)
		for i, v := range idxs {
			ret[i] = cands[v]
		}
	}
	off := 0
	if len(m.Sims) > 0 && len(m.Sims[0].NumFrames) > 0 {
		off = int(float64(m.Sims[0].NumFrames[0]) * o.InitFrames())
	}
	for i := range ret {
		ret[i].Frame += off
	}
	return ret, nil
}

// ReadSamples reads the frames in refs from the first trajectory of each simulation,
// and returns them, in the order of refs, on the topology of the first simulation.
// If open is nil, traj.Open is used.
func ReadSamples(m *Model, refs []FrameRef, open func(string) (traj.Reader, error)) (*chem.Molecule, error) {
	if len(m.Sims) == 0 {
		return nil, fmt.Errorf("msm.ReadSamples: the model has no simulations")
	}
	if open == nil {
		open = traj.Open
	}
	top, err := chem.FileRead(m.Sims[0].MolFile)
	if err != nil {
		return nil, fmt.Errorf("msm.ReadSamples: %w", err)
	}
	bysim := make(map[int][]int) //simulation to positions in refs
	for i, r := range refs {
		if r.Sim < 0 || r.Sim >= len(m.Sims) || len(m.Sims[r.Sim].Trajectory) == 0 {
			return nil, fmt.Errorf("msm.ReadSamples: no trajectory for simulation %d", r.Sim)
		}
		bysim[r.Sim] = append(bysim[r.Sim], i)
	}
	coords := make([]*v3.Matrix, len(refs))
	for sim, pos := range bysim {
		sort.Slice(pos, func(a, b int) bool { return refs[pos[a]].Frame < refs[pos[b]].Frame })
		name := m.Sims[sim].Trajectory[0]
		t, err := open(name)
		if err != nil {
			return nil, fmt.Errorf("msm.ReadSamples: %w", err)
		}
		if t.Len() != top.Len() {
			t.Close()
			return nil, fmt.Errorf("msm.ReadSamples: %s has %d atoms, topology has %d", name, t.Len(), top.Len())
		}
		err = readFrames(t, refs, pos, coords)
		t.Close()
		if err != nil {
			return nil, fmt.Errorf("msm.ReadSamples: %s: %w", name, err)
		}
	}
	return chem.NewMolecule(coords, top, nil)
}

// readFrames reads t sequentially, copying the frames for the positions in pos,
// which must be sorted by frame, into coords.
func readFrames(t traj.Reader, refs []FrameRef, pos []int, coords []*v3.Matrix) error {
	current := -1
	var last *v3.Matrix
	for _, p := range pos {
		want := refs[p].Frame
		if want < 0 {
			return fmt.Errorf("negative frame index %d", want)
		}
		for current < want {
			var keep *v3.Matrix
			if current+1 == want {
				keep = v3.Zeros(t.Len())
			}
			if err := t.Next(keep); err != nil {
				return fmt.Errorf("frame %d: %w", want, err)
			}
			current++
			if keep != nil {
				last = keep
			}
		}
		coords[p] = last.Clone()
	}
	return nil
}
