/*
 * weights.go, part of cgtools.
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

	"gonum.org/v1/gonum/floats"
)

// ComputeWeights returns the equilibrium weight of each frame of the model, with the
// simulations concatenated in order. The weight of a frame is the stationary
// probability of its microstate divided by the number of frames in the microstate.
// Frames in microstates outside the active set get a weight of 0.
func ComputeWeights(m *Model) ([]float64, error) {
	if m.active == nil {
		if err := m.Check(); err != nil {
			return nil, fmt.Errorf("msm.ComputeWeights: %w", err)
		}
	}
	w := make([]float64, 0, m.NFrames())
	for _, sim := range m.St {
		for _, s := range sim {
			a := m.active[s]
			if a < 0 {
				w = append(w, 0)
				continue
			}
			if m.N[s] <= 0 {
				return nil, fmt.Errorf("msm.ComputeWeights: active microstate %d has no frames", s)
			}
			w = append(w, m.Stationary[a]/m.N[s])
		}
	}
	return w, nil
}

// MacroPopulations returns the equilibrium population of each macrostate, that is, the
// sum of the stationary probabilities of its microstates.
func MacroPopulations(m *Model) []float64 {
	pop := make([]float64, m.Macronum)
	for i, macro := range m.MacroOfCluster {
		pop[macro] += m.Stationary[i]
	}
	if s := floats.Sum(pop); s > 0 {
		floats.Scale(1/s, pop)
	}
	return pop
}

// MacroCenters returns the centers of the microstates that belong to macrostate macro.
func MacroCenters(m *Model, macro int) [][]float64 {
	var ret [][]float64
	for i, v := range m.MacroOfCluster {
		micro := m.ActiveSet[i]
		if v == macro && micro < len(m.Centers) {
			ret = append(ret, m.Centers[micro])
		}
	}
	return ret
}
