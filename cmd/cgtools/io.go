/*
 * io.go, part of cgtools.
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
	"path/filepath"
	"strconv"
	"strings"

	chem "github.com/rmera/cgtools"
	"github.com/rmera/cgtools/traj"
)

// outputName inserts suffix between the base name of in and its extension,
// keeping any compression extension: outputName("a/b.pdb.gz", "_BB") gives "a/b_BB.pdb.gz".
func outputName(in, suffix string) string {
	comp := ""
	for _, c := range []string{".gz", ".zst"} {
		if strings.HasSuffix(strings.ToLower(in), c) {
			comp = in[len(in)-len(c):]
			in = in[:len(in)-len(c)]
			break
		}
	}
	ext := filepath.Ext(in)
	return strings.TrimSuffix(in, ext) + suffix + ext + comp
}

// writeMolecule writes every frame of mol to name. Structure files (PDB, mmCIF)
// get one model per frame, DCD and STF files get only the coordinates.
func writeMolecule(name string, mol *chem.Molecule) error {
	switch traj.Format(name) {
	case "pdb", "cif":
		return chem.FileWrite(name, mol.Coords, mol, mol.Bfactors)
	case "":
		return fmt.Errorf("unknown output format for %s", name)
	}
	w, err := traj.Create(name, mol)
	if err != nil {
		return err
	}
	for i, c := range mol.Coords {
		if err := w.WNext(c); err != nil {
			w.Close()
			return fmt.Errorf("writing frame %d to %s: %w", i, name, err)
		}
	}
	return w.Close()
}

// readTable reads whitespace-separated numbers, one row per line. Empty lines and
// lines starting with # are skipped. All rows must have the same number of columns.
func readTable(name string) ([][]float64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows [][]float64
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for s.Scan() {
		line++
		t := strings.TrimSpace(s.Text())
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		fields := strings.Fields(t)
		row := make([]float64, len(fields))
		for i, v := range fields {
			row[i], err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", name, line, err)
			}
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("%s line %d: %d columns, expected %d", name, line, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no data", name)
	}
	return rows, nil
}

// column returns the i-th column of rows.
func column(rows [][]float64, i int) ([]float64, error) {
	if i < 0 || i >= len(rows[0]) {
		return nil, fmt.Errorf("column %d out of range (%d columns)", i, len(rows[0]))
	}
	c := make([]float64, len(rows))
	for j, r := range rows {
		c[j] = r[i]
	}
	return c, nil
}

// readWeights reads one weight per line, as written by the weights command.
func readWeights(name string) ([]float64, error) {
	rows, err := readTable(name)
	if err != nil {
		return nil, err
	}
	return column(rows, 0)
}

func writeWeights(w io.Writer, weights []float64) error {
	b := bufio.NewWriter(w)
	for _, v := range weights {
		if _, err := fmt.Fprintln(b, strconv.FormatFloat(v, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return b.Flush()
}
