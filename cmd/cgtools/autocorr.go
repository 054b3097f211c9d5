/*
 * autocorr.go, part of cgtools.
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
	"os"

	chem "github.com/rmera/cgtools"
	"github.com/rmera/cgtools/chemstat"
	"github.com/rmera/cgtools/traj"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type autocorrFlags struct {
	dim    int
	rmsd   string
	ca     bool
	maxLag int
	out    string
}

func newAutocorrCmd(a *app) *cobra.Command {
	f := new(autocorrFlags)
	cmd := &cobra.Command{
		Use:   "autocorr data.txt|trajectory",
		Short: "Autocorrelation function of a time series",
		Long: `Writes the normalized autocorrelation function, one "lag value" pair per line,
of a column of a data file or, with --rmsd, of the RMSD of each frame of a
trajectory to a reference structure. The first lag at which the function drops
below 1/e is reported as a comment on the first line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.autocorr(cmd, args[0], f)
		},
	}
	cmd.Flags().IntVar(&f.dim, "dim", 0, "Column of the data file to use")
	cmd.Flags().StringVar(&f.rmsd, "rmsd", "", "Reference structure: correlate the RMSD of each trajectory frame to it")
	cmd.Flags().BoolVar(&f.ca, "ca", false, "With --rmsd, superimpose and compare only CA atoms")
	cmd.Flags().IntVar(&f.maxLag, "max-lag", 0, "Largest lag written (default: all)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output file (default: standard output)")
	return cmd
}

func (a *app) autocorr(cmd *cobra.Command, in string, f *autocorrFlags) error {
	var series []float64
	var err error
	if f.rmsd != "" {
		series, err = rmsdSeries(in, f.rmsd, f.ca)
	} else {
		var rows [][]float64
		rows, err = readTable(in)
		if err == nil {
			series, err = column(rows, f.dim)
		}
	}
	if err != nil {
		return err
	}
	ac, err := chemstat.AutoCorrelation(series)
	if err != nil {
		return err
	}
	lag := chemstat.DecorrelationLag(ac)
	a.logger.Info("autocorrelation computed", zap.String("input", in), zap.Int("points", len(series)), zap.Int("decorrelation_lag", lag))
	if f.maxLag > 0 && f.maxLag < len(ac)-1 {
		ac = ac[:f.maxLag+1]
	}
	if f.out == "" {
		return writeCorrelation(cmd.OutOrStdout(), ac, lag)
	}
	o, err := os.Create(f.out)
	if err != nil {
		return err
	}
	if err := writeCorrelation(o, ac, lag); err != nil {
		o.Close()
		return err
	}
	return o.Close()
}

func rmsdSeries(trajname, refname string, ca bool) ([]float64, error) {
	ref, err := chem.FileRead(refname)
	if err != nil {
		return nil, err
	}
	var indexes []int
	if ca {
		for i := 0; i < ref.Len(); i++ {
			if ref.Atom(i).Name == "CA" {
				indexes = append(indexes, i)
			}
		}
		if len(indexes) == 0 {
			return nil, fmt.Errorf("%s has no CA atoms", refname)
		}
	}
	t, err := traj.Open(trajname)
	if err != nil {
		return nil, err
	}
	defer t.Close()
	if t.Len() != ref.Len() {
		return nil, fmt.Errorf("%s has %d atoms, %s has %d", trajname, t.Len(), refname, ref.Len())
	}
	return chemstat.Series(t, chemstat.RMSDFunc(ref.Coords[0], indexes))
}

func writeCorrelation(w io.Writer, c []float64, lag int) error {
	b := bufio.NewWriter(w)
	fmt.Fprintf(b, "# decorrelation lag %d\n", lag)
	for i, v := range c {
		if _, err := fmt.Fprintf(b, "%d %.6f\n", i, v); err != nil {
			return err
		}
	}
	return b.Flush()
}
