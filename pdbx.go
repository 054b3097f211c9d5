/*
 * pdbx.go, part of cgtools.
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

package chem

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	v3 "github.com/rmera/cgtools/v3"
	"go.uber.org/zap"
)

// PDBxRead reads an mmCIF (PDBx) file from an io.Reader. Only the _atom_site loop is read.
// Each pdbx_PDB_model_num becomes a frame.
func PDBxRead(pdbx io.Reader) (*Molecule, error) {
	mol, err := pdbxBufIORead(bufio.NewReader(pdbx), "")
	return mol, errDecorate(err, "PDBxRead")
}

// PDBxFileRead reads an mmCIF file, which can be gzip (.gz) or zstd (.zst) compressed.
func PDBxFileRead(name string) (*Molecule, error) {
	f, err := openCompressed(name)
	if err != nil {
		return nil, newFileLoadError(name, "mmCIF", "can't open file", err, "PDBxFileRead")
	}
	defer f.Close()
	mol, err := pdbxBufIORead(bufio.NewReader(f), name)
	return mol, errDecorate(err, "PDBxFileRead")
}

// cifColumns maps the lowercase _atom_site item names to their column in the loop.
// Items not present in the file map to -1.
type cifColumns map[string]int

func newCIFColumns() cifColumns {
	m := make(cifColumns, len(cifAtomSite))
	for _, v := range cifAtomSite {
		m[v] = -1
	}
	return m
}

// get returns the field of data corresponding to item, and whether it was present.
// CIF uses "." and "?" for missing values, those count as absent.
func (m cifColumns) get(item string, data []string) (string, bool) {
	k, ok := m[item]
	if !ok || k < 0 || k >= len(data) {
		return "", false
	}
	if data[k] == "." || data[k] == "?" {
		return "", false
	}
	return data[k], true
}

var cifAtomSite = []string{
	"_atom_site.group_pdb",
	"_atom_site.id",
	"_atom_site.type_symbol",
	"_atom_site.label_atom_id",
	"_atom_site.label_alt_id",
	"_atom_site.label_comp_id",
	"_atom_site.label_asym_id",
	"_atom_site.label_seq_id",
	"_atom_site.cartn_x",
	"_atom_site.cartn_y",
	"_atom_site.cartn_z",
	"_atom_site.occupancy",
	"_atom_site.b_iso_or_equiv",
	"_atom_site.pdbx_formal_charge",
	"_atom_site.auth_seq_id",
	"_atom_site.auth_comp_id",
	"_atom_site.auth_asym_id",
	"_atom_site.auth_atom_id",
	"_atom_site.pdbx_pdb_model_num",
}

// cifFields splits a CIF data line into tokens, honoring single and double quotes.
func cifFields(line string) []string {
	ret := make([]string, 0, 20)
	for i := 0; i < len(line); {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= len(line) {
			break
		}
		if q := line[i]; q == '\'' || q == '"' {
			j := i + 1
			//a quote only closes a token if followed by whitespace or the end of the line.
			for j < len(line) && !(line[j] == q && (j+1 == len(line) || line[j+1] == ' ' || line[j+1] == '\t')) {
				j++
			}
			ret = append(ret, line[i+1:min(j, len(line))])
			i = j + 1
			continue
		}
		j := i
		for j < len(line) && line[j] != ' ' && line[j] != '\t' {
			j++
		}
		ret = append(ret, line[i:j])
		i = j
	}
	return ret
}

// cifAtom builds an Atom from the tokens of an _atom_site line. Author fields are
// preferred over label fields, as in PDB files.
func cifAtom(data []string, m cifColumns) (*Atom, error) {
	at := new(Atom)
	first := func(items ...string) string {
		for _, v := range items {
			if s, ok := m.get(v, data); ok {
				return s
			}
		}
		return ""
	}
	at.Name = first("_atom_site.auth_atom_id", "_atom_site.label_atom_id")
	at.MolName = first("_atom_site.auth_comp_id", "_atom_site.label_comp_id")
	at.MolName1 = three2OneLetter[at.MolName]
	at.Chain = first("_atom_site.auth_asym_id", "_atom_site.label_asym_id")
	at.Het = first("_atom_site.group_pdb") == "HETATM"
	if alt := first("_atom_site.label_alt_id"); alt != "" {
		at.Char16 = alt[0]
	}
	at.Symbol = normalizeSymbol(first("_atom_site.type_symbol"))
	if at.Symbol == "" {
		at.Symbol, _ = symbolFromName(at.Name)
	}
	at.Mass = symbolMass[at.Symbol]
	var err error
	if s := first("_atom_site.id"); s != "" {
		if at.ID, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("can't parse ID from %s: %w", s, err)
		}
	}
	if s := first("_atom_site.auth_seq_id", "_atom_site.label_seq_id"); s != "" {
		if at.MolID, err = strconv.Atoi(s); err != nil {
			return nil, fmt.Errorf("can't parse residue ID from %s: %w", s, err)
		}
	}
	if s := first("_atom_site.occupancy"); s != "" {
		if at.Occupancy, err = strconv.ParseFloat(s, 64); err != nil {
			return nil, fmt.Errorf("can't parse occupancy from %s: %w", s, err)
		}
	}
	//Charge, but we won't do anything if we somehow can't read it.
	if s := first("_atom_site.pdbx_formal_charge"); s != "" {
		at.Charge, _ = strconv.ParseFloat(s, 64)
	}
	return at, nil
}

func cifCoords(data []string, m cifColumns) ([3]float64, error) {
	var c [3]float64
	for j, v := range []string{"_atom_site.cartn_x", "_atom_site.cartn_y", "_atom_site.cartn_z"} {
		s, ok := m.get(v, data)
		if !ok {
			return c, fmt.Errorf("field %s not present", v)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return c, fmt.Errorf("can't parse %s from %s: %w", v, s, err)
		}
		c[j] = f
	}
	return c, nil
}

func pdbxBufIORead(pdbx *bufio.Reader, name string) (*Molecule, error) {
	m := newCIFColumns()
	atoms := make([]*Atom, 0)
	coords := [][]float64{make([]float64, 0, 300)}
	bfactors := [][]float64{make([]float64, 0, 100)}
	havebfactors := true
	model := -1
	inLoop, reading, done := false, false, false
	field := 0
	lineno := 0
	for !done {
		line, err := pdbx.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, newFileLoadError(name, "mmCIF", "error reading file", err, "pdbxBufIORead")
		}
		if err == io.EOF {
			done = true
		}
		lineno++
		line = strings.TrimSpace(line)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			//a "#" ends a category.
			if reading && len(atoms) > 0 {
				done = true
			}
			continue
		case strings.HasPrefix(line, "loop_"):
			if reading && len(atoms) > 0 {
				done = true
			}
			inLoop = true
			reading = false
			field = 0
			continue
		case strings.HasPrefix(line, "_"):
			tl := strings.ToLower(strings.Fields(line)[0])
			if inLoop && strings.HasPrefix(tl, "_atom_site.") {
				reading = true
				if _, ok := m[tl]; ok {
					m[tl] = field
				}
				field++
			} else if reading {
				done = true
			} else {
				inLoop = false
				field = 0
			}
			continue
		}
		if !reading {
			continue
		}
		data := cifFields(line)
		if mod, ok := m.get("_atom_site.pdbx_pdb_model_num", data); ok {
			mn, err := strconv.Atoi(mod)
			if err != nil {
				return nil, newFileLoadError(name, "mmCIF", fmt.Sprintf("can't parse model number at line %d", lineno), err, "pdbxBufIORead")
			}
			if model >= 0 && mn != model {
				coords = append(coords, make([]float64, 0, 3*len(atoms)))
				bfactors = append(bfactors, make([]float64, 0, len(atoms)))
			}
			model = mn
		}
		last := len(coords) - 1
		if last == 0 {
			at, err := cifAtom(data, m)
			if err != nil {
				return nil, newFileLoadError(name, "mmCIF", fmt.Sprintf("can't read atom at line %d", lineno), err, "pdbxBufIORead")
			}
			atoms = append(atoms, at)
		}
		c, err := cifCoords(data, m)
		if err != nil {
			return nil, newFileLoadError(name, "mmCIF", fmt.Sprintf("can't read coordinates at line %d", lineno), err, "pdbxBufIORead")
		}
		coords[last] = append(coords[last], c[:]...)
		var bf float64
		if s, ok := m.get("_atom_site.b_iso_or_equiv", data); ok && havebfactors {
			bf, err = strconv.ParseFloat(s, 64)
		}
		if err != nil && havebfactors {
			zap.S().Warnw("can't read b-factors, they will be ignored", "file", name, "line", lineno, "error", err)
			havebfactors = false
		}
		bfactors[last] = append(bfactors[last], bf)
	}
	if len(atoms) == 0 {
		return nil, newFileLoadError(name, "mmCIF", "no _atom_site records found", nil, "pdbxBufIORead")
	}
	frames := make([]*v3.Matrix, 0, len(coords))
	for i, c := range coords {
		if len(c) != 3*len(atoms) {
			return nil, newFileLoadError(name, "mmCIF", fmt.Sprintf("model %d has %d atoms, expected %d", i+1, len(c)/3, len(atoms)), nil, "pdbxBufIORead")
		}
		f, _ := v3.NewMatrix(c)
		frames = append(frames, f)
	}
	if !havebfactors {
		bfactors = nil
	}
	return &Molecule{Topology: NewTopology(0, 1, atoms), Coords: frames, Bfactors: bfactors}, nil
}

// PDBxFileWrite writes an mmCIF file with the given name, compressed if the name ends in .gz or .zst.
func PDBxFileWrite(name string, coords []*v3.Matrix, mol Atomer, bfact [][]float64) error {
	out, err := createCompressed(name)
	if err != nil {
		return &CError{msg: fmt.Sprintf("can't create %s: %v", name, err), deco: []string{"PDBxFileWrite"}}
	}
	base := filepath.Base(name)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	if err = PDBxWrite(out, coords, mol, bfact, base); err != nil {
		out.Close()
		return errDecorate(err, "PDBxFileWrite")
	}
	if err = out.Close(); err != nil {
		return &CError{msg: fmt.Sprintf("can't close %s: %v", name, err), deco: []string{"PDBxFileWrite"}}
	}
	return nil
}

// PDBxWrite writes the frames in coords, with the topology mol, to out as a single
// _atom_site loop, one pdbx_PDB_model_num per frame. name is used for the data block.
func PDBxWrite(out io.Writer, coords []*v3.Matrix, mol Atomer, bfact [][]float64, name string) error {
	if name == "" {
		name = "cgtools"
	}
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "data_%s\n#\nloop_\n", name)
	for _, v := range []string{"group_PDB", "id", "type_symbol", "label_atom_id", "label_alt_id", "label_comp_id",
		"label_asym_id", "label_seq_id", "Cartn_x", "Cartn_y", "Cartn_z", "occupancy", "B_iso_or_equiv",
		"pdbx_formal_charge", "auth_seq_id", "auth_comp_id", "auth_asym_id", "auth_atom_id", "pdbx_PDB_model_num"} {
		fmt.Fprintf(w, "_atom_site.%s\n", v)
	}
	quote := func(s string) string {
		if s == "" {
			return "."
		}
		if strings.ContainsAny(s, " '") {
			return "\"" + s + "\""
		}
		if strings.Contains(s, "\"") {
			return "'" + s + "'"
		}
		return s
	}
	for i, c := range coords {
		if c.NVecs() != mol.Len() {
			return &CError{msg: fmt.Sprintf("frame %d has %d coordinates for %d atoms", i, c.NVecs(), mol.Len()), deco: []string{"PDBxWrite"}}
		}
		for j := 0; j < mol.Len(); j++ {
			a := mol.Atom(j)
			het := "ATOM"
			if a.Het {
				het = "HETATM"
			}
			alt := "."
			if a.Char16 >= 'A' && a.Char16 <= 'Z' {
				alt = string(a.Char16)
			}
			b := 0.0
			if len(bfact) > i && len(bfact[i]) == mol.Len() {
				b = bfact[i][j]
			}
			sym := a.Symbol
			if sym == "" {
				sym = "?"
			}
			name, res, chain := quote(a.Name), quote(a.MolName), quote(a.Chain)
			fmt.Fprintf(w, "%s %d %s %s %s %s %s %d %.3f %.3f %.3f %.2f %.2f %d %d %s %s %s %d\n",
				het, j+1, sym, name, alt, res, chain, a.MolID, c.At(j, 0), c.At(j, 1), c.At(j, 2),
				a.Occupancy, b, int(a.Charge), a.MolID, res, chain, name, i+1)
		}
	}
	w.WriteString("#\n")
	return w.Flush()
}
