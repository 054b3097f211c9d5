/*
 * model.go, part of cgtools.
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

// Package msm works on Markov state models built elsewhere: it computes
// equilibrium weights for the simulation frames and samples frames from
// micro- or macrostates.
package msm

import (
	"encoding/json"
	"fmt"
	"os"
)

// Sim is one of the simulations the model was built from.
type Sim struct {
	MolFile    string   `json:"molfile"`
	Trajectory []string `json:"trajectory"`
	NumFrames  []int    `json:"numframes"`
}

// Model contains the data of a Markov state model needed to weight and sample frames.
type Model struct {
	St             [][]int     `json:"St"`                      //microstate of each frame, one slice per simulation
	K              int         `json:"K"`                       //number of microstates
	N              []float64   `json:"N"`                       //frames in each microstate
	ActiveSet      []int       `json:"active_set"`              //microstates kept by the MSM estimation
	Stationary     []float64   `json:"stationary_distribution"` //one per active state
	MacroOfCluster []int       `json:"macro_ofcluster"`         //one per active state
	Centers        [][]float64 `json:"Centers"`                 //one per microstate
	Macronum       int         `json:"macronum"`
	Sims           []Sim       `json:"simlist"`
	// Frames optionally gives, for each element of St, the index of the frame in its
	// trajectory. When absent, the position in St is used.
	Frames [][]int `json:"frames,omitempty"`

	active []int //microstate to active index, -1 if inactive
}

// LoadModel reads a JSON-encoded model from path and checks it.
func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("msm.LoadModel: %w", err)
	}
	defer f.Close()
	m := new(Model)
	if err := json.NewDecoder(f).Decode(m); err != nil {
		return nil, fmt.Errorf("msm.LoadModel: decoding %s: %w", path, err)
	}
	if err := m.Check(); err != nil {
		return nil, fmt.Errorf("msm.LoadModel: %s: %w", path, err)
	}
	return m, nil
}

// Check verifies the consistency of the model data and builds the
// microstate-to-active-state map. It must be called if the model is not
// obtained with LoadModel.
func (m *Model) Check() error {
	if m.K <= 0 {
		return fmt.Errorf("the model has %d microstates", m.K)
	}
	if len(m.N) != m.K {
		return fmt.Errorf("%d frame counts for %d microstates", len(m.N), m.K)
	}
	if len(m.Stationary) != len(m.ActiveSet) {
		return fmt.Errorf("%d stationary probabilities for %d active states", len(m.Stationary), len(m.ActiveSet))
	}
	if m.MacroOfCluster != nil && len(m.MacroOfCluster) != len(m.ActiveSet) {
		return fmt.Errorf("%d macrostate assignments for %d active states", len(m.MacroOfCluster), len(m.ActiveSet))
	}
	for _, v := range m.MacroOfCluster {
		if v < 0 || v >= m.Macronum {
			return fmt.Errorf("macrostate %d out of range (%d macrostates)", v, m.Macronum)
		}
	}
	m.active = make([]int, m.K)
	for i := range m.active {
		m.active[i] = -1
	}
	for i, v := range m.ActiveSet {
		if v < 0 || v >= m.K {
			return fmt.Errorf("active state %d out of range (%d microstates)", v, m.K)
		}
		m.active[v] = i
	}
	for i, sim := range m.St {
		for j, s := range sim {
			if s < 0 || s >= m.K {
				return fmt.Errorf("simulation %d frame %d: microstate %d out of range", i, j, s)
			}
		}
	}
	if m.Frames != nil {
		if len(m.Frames) != len(m.St) {
			return fmt.Errorf("%d frame index lists for %d simulations", len(m.Frames), len(m.St))
		}
		for i := range m.Frames {
			if len(m.Frames[i]) != len(m.St[i]) {
				return fmt.Errorf("simulation %d: %d frame indexes for %d states", i, len(m.Frames[i]), len(m.St[i]))
			}
		}
	}
	if m.Sims != nil && len(m.Sims) != len(m.St) {
		return fmt.Errorf("%d simulations for %d state lists", len(m.Sims), len(m.St))
	}
	return nil
}

// ActiveIndex returns the index of microstate in the active set, or -1 if it is
// not active.
func (m *Model) ActiveIndex(micro int) int {
	if m.active == nil || micro < 0 || micro >= len(m.active) {
		return -1
	}
	return m.active[micro]
}

// NFrames returns the total number of frames assigned to states.
func (m *Model) NFrames() int {
	n := 0
	for _, v := range m.St {
		n += len(v)
	}
	return n
}

// frameIndex returns the trajectory frame for the j-th state of simulation i.
func (m *Model) frameIndex(i, j int) int {
	if m.Frames != nil {
		return m.Frames[i][j]
	}
	return j
}
