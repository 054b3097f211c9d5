/*
 * buildbb.go, part of cgtools.
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

	chem "github.com/rmera/cgtools"
	"github.com/rmera/cgtools/backbone"
	"github.com/rmera/cgtools/traj"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type buildBBFlags struct {
	cgmol, refmol, traj, out string
	refFrame                 bool
}

func newBuildBBCmd(a *app) *cobra.Command {
	f := new(buildBBFlags)
	cmd := &cobra.Command{
		Use:   "buildbb",
		Short: "Rebuild the N, CA, C, O backbone of a CA-only structure",
		Long: `Rebuilds the backbone of every frame of a CA-only structure, or trajectory,
by aligning a reference backbone on each window of three consecutive CAs.
CA positions are kept as they are in the CA-only input.

The output defaults to <cgmol>_BB<ext>, next to the CA-only file. With a
trajectory, the output can be a multi-model structure or a DCD/STF trajectory.`,
		Example: `  cgtools buildbb -c protein_CA.pdb -r reference.pdb
  cgtools buildbb -c protein_CA.pdb -r reference.pdb -t sim.dcd -o sim_BB.dcd`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.buildBB(f)
		},
	}
	cmd.Flags().StringVarP(&f.cgmol, "cgmol", "c", "", "CA-only structure (required)")
	cmd.Flags().StringVarP(&f.refmol, "refmol", "r", "", "All-atom or backbone reference structure (required)")
	cmd.Flags().StringVarP(&f.traj, "traj", "t", "", "Trajectory of the CA-only structure")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output file")
	cmd.Flags().BoolVar(&f.refFrame, "ref-frame", false, "Move each output frame onto the reference")
	cmd.MarkFlagRequired("cgmol")
	cmd.MarkFlagRequired("refmol")
	return cmd
}

func (a *app) buildBB(f *buildBBFlags) error {
	ref, err := chem.FileRead(f.refmol)
	if err != nil {
		return err
	}
	cg, err := chem.FileRead(f.cgmol)
	if err != nil {
		return err
	}
	if f.traj != "" {
		t, err := traj.Open(f.traj)
		if err != nil {
			return err
		}
		frames, err := traj.ReadAll(t)
		t.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", f.traj, err)
		}
		if cg, err = chem.NewMolecule(frames, cg, nil); err != nil {
			return fmt.Errorf("%s does not match %s: %w", f.traj, f.cgmol, err)
		}
	}
	o := backbone.DefaultOptions()
	if a.cfg.Cpus > 0 {
		o.Cpus(a.cfg.Cpus)
	}
	o.RefFrame(f.refFrame || a.cfg.Backbone.RefFrame)
	o.Tolerance(a.cfg.Backbone.Tolerance)
	o.Logger(a.logger)
	a.logger.Info("rebuilding backbone", zap.String("cgmol", f.cgmol), zap.String("refmol", f.refmol), zap.Int("frames", cg.NFrames()))
	mol, err := backbone.Build(ref, cg, o)
	if err != nil {
		return err
	}
	out := f.out
	if out == "" {
		out = outputName(f.cgmol, "_BB")
	}
	if err := writeMolecule(out, mol); err != nil {
		return err
	}
	a.logger.Info("backbone written", zap.String("file", out), zap.Int("atoms", mol.Len()), zap.Int("frames", mol.NFrames()))
	return nil
}
