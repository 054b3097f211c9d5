/*
 * msm.go, part of cgtools.
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

package main

import (
	"fmt"
	"os"

	"github.com/rmera/cgtools/msm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWeightsCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "weights model.json",
		Short: "Compute the equilibrium weight of each simulation frame",
		Long: `Writes, one per line, the weight of each frame of the model's simulations
(concatenated in order): the stationary probability of the frame's microstate
divided by the number of frames in the microstate. Frames in microstates
outside the active set get 0.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := msm.LoadModel(args[0])
			if err != nil {
				return err
			}
			w, err := msm.ComputeWeights(m)
			if err != nil {
				return err
			}
			if out == "" {
				return writeWeights(cmd.OutOrStdout(), w)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := writeWeights(f, w); err != nil {
				f.Close()
				return err
			}
			a.logger.Info("weights written", zap.String("file", out), zap.Int("frames", len(w)))
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: standard output)")
	return cmd
}

type sampleFlags struct {
	state  int
	kind   string
	frames int
	init   float64
	seed   uint64
	out    string
}

func newSampleCmd(a *app) *cobra.Command {
	f := new(sampleFlags)
	cmd := &cobra.Command{
		Use:   "sample model.json",
		Short: "Sample frames from a micro- or macrostate",
		Long: `Samples frames belonging to a state of the model and writes them, read from
the simulations' trajectories, to a multi-model structure or trajectory file.
Macrostates are sampled according to the equilibrium weight of each frame,
microstates uniformly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sample(cmd, args[0], f)
		},
	}
	cmd.Flags().IntVarP(&f.state, "state", "s", 0, "State to sample (required)")
	cmd.Flags().StringVarP(&f.kind, "kind", "k", "macro", "State kind: macro or micro")
	cmd.Flags().IntVarP(&f.frames, "frames", "n", 0, "Number of frames (default from config, 50)")
	cmd.Flags().Float64Var(&f.init, "init", -1, "Fraction of the first simulation's frames skipped when the model was built (default from config, 0.1)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "Random seed (default from config)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output file (default: <kind><state>.pdb)")
	cmd.MarkFlagRequired("state")
	return cmd
}

func (a *app) sample(cmd *cobra.Command, model string, f *sampleFlags) error {
	m, err := msm.LoadModel(model)
	if err != nil {
		return err
	}
	kind, err := msm.ParseStateKind(f.kind)
	if err != nil {
		return err
	}
	o := msm.DefaultSampleOptions()
	o.Frames(a.cfg.Sample.Frames)
	o.InitFrames(a.cfg.Sample.InitFrames)
	o.Seed(a.cfg.Sample.Seed)
	o.Frames(f.frames)
	o.InitFrames(f.init)
	if cmd.Flags().Changed("seed") {
		o.Seed(f.seed)
	}
	refs, err := msm.SampleState(m, f.state, kind, o)
	if err != nil {
		return err
	}
	a.logger.Debug("sampled frames", zap.Any("frames", refs))
	mol, err := msm.ReadSamples(m, refs, nil)
	if err != nil {
		return err
	}
	out := f.out
	if out == "" {
		out = fmt.Sprintf("%s%d.pdb", kind, f.state)
	}
	if err := writeMolecule(out, mol); err != nil {
		return err
	}
	a.logger.Info("samples written", zap.String("file", out), zap.Stringer("kind", kind), zap.Int("state", f.state), zap.Int("frames", len(refs)))
	return nil
}
