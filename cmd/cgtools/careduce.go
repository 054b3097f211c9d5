/*
 * careduce.go, part of cgtools.
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
	chem "github.com/rmera/cgtools"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCAReduceCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "careduce structure",
		Short: "Keep only the CA atoms of the aminoacidic residues of a structure",
		Long: `Writes a CA-only version of every model in the structure, to be used as
input for coarse-grained simulations or to test backbone reconstruction.
The output defaults to <structure>_CA<ext>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mol, err := chem.FileRead(args[0])
			if err != nil {
				return err
			}
			ca, err := chem.CAReduce(nil, mol)
			if err != nil {
				return err
			}
			if out == "" {
				out = outputName(args[0], "_CA")
			}
			if err := writeMolecule(out, ca); err != nil {
				return err
			}
			a.logger.Info("CA-only structure written", zap.String("file", out), zap.Int("atoms", ca.Len()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	return cmd
}
