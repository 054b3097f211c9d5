/*
 * rama.go, part of cgtools.
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
	"bufio"
	"fmt"
	"io"

	chem "github.com/rmera/cgtools"
	"github.com/rmera/cgtools/chemplot"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type ramaFlags struct {
	chains  []string
	resids  []int
	tag     []int
	frame   int
	palette string
	title   string
	out     string
}

func newRamaCmd(a *app) *cobra.Command {
	f := new(ramaFlags)
	cmd := &cobra.Command{
		Use:   "rama structure",
		Short: "Phi/psi dihedrals of a backbone, such as one rebuilt by buildbb",
		Long: `Writes the phi and psi dihedrals (degrees) of every residue with complete
backbone neighbours, one "chain resid resname phi psi" line per residue, and,
with -o, a Ramachandran plot colored along the sequence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.rama(cmd, args[0], f)
		},
	}
	cmd.Flags().StringSliceVar(&f.chains, "chains", nil, "Chains to include (default: all)")
	cmd.Flags().IntSliceVar(&f.resids, "resids", nil, "Residue IDs to include, or a first,last range if two are given (-1 as last means the chain end)")
	cmd.Flags().IntSliceVar(&f.tag, "tag", nil, "Residue IDs to highlight in the plot (at most 4)")
	cmd.Flags().IntVar(&f.frame, "frame", 0, "Model (frame) of the structure file to use")
	cmd.Flags().StringVar(&f.palette, "palette", "rainbow", "Palette to color residues along the sequence")
	cmd.Flags().StringVar(&f.title, "title", "Ramachandran plot", "Plot title")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Plot file (png, svg, pdf, eps)")
	return cmd
}

func (a *app) rama(cmd *cobra.Command, in string, f *ramaFlags) error {
	mol, err := chem.FileRead(in)
	if err != nil {
		return err
	}
	if f.frame < 0 || f.frame >= len(mol.Coords) {
		return fmt.Errorf("frame %d out of range, %s has %d", f.frame, in, len(mol.Coords))
	}
	sets, err := chem.RamaList(mol, f.chains, f.resids)
	if err != nil {
		return err
	}
	angles, err := chem.RamaCalc(mol.Coords[f.frame], sets)
	if err != nil {
		return err
	}
	a.logger.Debug("dihedrals computed", zap.String("file", in), zap.Int("residues", len(sets)))
	if err := writeRama(cmd.OutOrStdout(), sets, angles); err != nil {
		return err
	}
	if f.out == "" {
		return nil
	}
	labels := make([]string, len(sets))
	var tagged []int
	for i, s := range sets {
		labels[i] = fmt.Sprintf("%s%d", s.MolName, s.MolID)
		for _, t := range f.tag {
			if t == s.MolID {
				tagged = append(tagged, i)
			}
		}
	}
	p := chemplot.NewRama(f.title)
	if err := chemplot.RamaPlot(p, angles, tagged, labels, f.palette); err != nil {
		return err
	}
	return a.save(p.Save, a.cfg.FEL, f.out)
}

func writeRama(w io.Writer, sets []chem.RamaSet, angles [][]float64) error {
	b := bufio.NewWriter(w)
	for i, s := range sets {
		if _, err := fmt.Fprintf(b, "%s %d %s %.2f %.2f\n", s.Chain, s.MolID, s.MolName, angles[i][0], angles[i][1]); err != nil {
			return err
		}
	}
	return b.Flush()
}
