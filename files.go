/*
 * files.go, part of cgtools.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/cgtools/v3"
	"go.uber.org/zap"
)

//Compression

// multiCloser is a reader or writer that needs to close several things, in order, when done.
type multiCloser struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if e := c.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// openCompressed opens name for reading, decompressing it on the fly
// if the extension is .gz or .zst.
func openCompressed(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		z, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, err
		}
		return &multiCloser{Reader: z, closers: []io.Closer{z, f}}, nil
	case ".zst":
		z, err := zstd.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, err
		}
		rc := z.IOReadCloser()
		return &multiCloser{Reader: rc, closers: []io.Closer{rc, f}}, nil
	}
	return f, nil
}

// createCompressed creates name for writing, compressing the output
// if the extension is .gz or .zst.
func createCompressed(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		z := gzip.NewWriter(f)
		return &multiCloser{Writer: z, closers: []io.Closer{z, f}}, nil
	case ".zst":
		z, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &multiCloser{Writer: z, closers: []io.Closer{z, f}}, nil
	}
	return f, nil
}

// StructureFormat returns "pdb" or "cif" depending on the extension of name, ignoring
// a compression extension (.gz, .zst), or an empty string if the format is not known.
func StructureFormat(name string) string {
	n := strings.ToLower(name)
	for _, c := range []string{".gz", ".zst"} {
		n = strings.TrimSuffix(n, c)
	}
	switch filepath.Ext(n) {
	case ".pdb", ".ent":
		return "pdb"
	case ".cif", ".mmcif":
		return "cif"
	}
	return ""
}

// FileRead reads a PDB or mmCIF file, possibly compressed, choosing the format by extension.
func FileRead(name string) (*Molecule, error) {
	switch StructureFormat(name) {
	case "pdb":
		return PDBFileRead(name)
	case "cif":
		return PDBxFileRead(name)
	}
	return nil, newFileLoadError(name, "unknown", "unsupported structure file extension", nil, "FileRead")
}

// FileWrite writes coords and mol to a PDB or mmCIF file, possibly compressed, choosing the format by extension.
func FileWrite(name string, coords []*v3.Matrix, mol Atomer, bfact [][]float64) error {
	switch StructureFormat(name) {
	case "pdb":
		return PDBFileWrite(name, coords, mol, bfact)
	case "cif":
		return PDBxFileWrite(name, coords, mol, bfact)
	}
	return &CError{msg: fmt.Sprintf("unsupported structure file extension for %s", name), deco: []string{"FileWrite"}}
}

//PDB read family

// PDBRead reads a PDB file from an io.Reader. Returns a Molecule. If there is one frame in the PDB
// the coordinates slice will be of length 1. Multi-model files give one frame per MODEL,
// the topology is taken from the first one.
func PDBRead(pdb io.Reader) (*Molecule, error) {
	mol, err := pdbBufIORead(bufio.NewReader(pdb), "")
	return mol, errDecorate(err, "PDBRead")
}

// PDBFileRead reads a PDB file, which can be gzip (.gz) or zstd (.zst) compressed.
func PDBFileRead(pdbname string) (*Molecule, error) {
	f, err := openCompressed(pdbname)
	if err != nil {
		return nil, newFileLoadError(pdbname, "pdb", "can't open file", err, "PDBFileRead")
	}
	defer f.Close()
	mol, err := pdbBufIORead(bufio.NewReader(f), pdbname)
	return mol, errDecorate(err, "PDBFileRead")
}

func pdbBufIORead(pdb *bufio.Reader, name string) (*Molecule, error) {
	atoms := make([]*Atom, 0)
	coords := [][]float64{make([]float64, 0, 300)}
	bfactors := [][]float64{make([]float64, 0, 100)}
	closed := false //we just read an ENDMDL
	lineno := 0
	for {
		line, err := pdb.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, newFileLoadError(name, "pdb", "error reading file", err, "pdbBufIORead")
		}
		if line == "" && err == io.EOF {
			break
		}
		lineno++
		line = strings.TrimRight(line, "\r\n")
		record := strings.TrimSpace(line[:min(6, len(line))])
		switch record {
		case "MODEL":
			if len(coords[len(coords)-1]) > 0 {
				coords = append(coords, make([]float64, 0, len(atoms)*3))
				bfactors = append(bfactors, make([]float64, 0, len(atoms)))
			}
			closed = false
		case "ENDMDL":
			closed = true
		case "ATOM", "HETATM":
			if closed {
				coords = append(coords, make([]float64, 0, len(atoms)*3))
				bfactors = append(bfactors, make([]float64, 0, len(atoms)))
				closed = false
			}
			at, c, bf, err := pdbParseLine(line)
			if err != nil {
				return nil, newFileLoadError(name, "pdb", fmt.Sprintf("malformed line %d", lineno), err, "pdbBufIORead")
			}
			last := len(coords) - 1
			if last == 0 {
				if at.ID == 0 {
					at.ID = len(atoms) + 1
				}
				atoms = append(atoms, at)
			} else if len(coords[last]) >= 3*len(atoms) {
				return nil, newFileLoadError(name, "pdb", fmt.Sprintf("frame %d has more atoms than the first one (%d)", last+1, len(atoms)), nil, "pdbBufIORead")
			}
			coords[last] = append(coords[last], c[:]...)
			bfactors[last] = append(bfactors[last], bf)
		case "END":
			err = io.EOF
		}
		if err == io.EOF {
			break
		}
	}
	if len(atoms) == 0 {
		return nil, newFileLoadError(name, "pdb", "no atoms found", nil, "pdbBufIORead")
	}
	//a trailing MODEL record with nothing after it.
	if len(coords[len(coords)-1]) == 0 {
		coords = coords[:len(coords)-1]
		bfactors = bfactors[:len(bfactors)-1]
	}
	frames := make([]*v3.Matrix, 0, len(coords))
	for i, c := range coords {
		if len(c) != 3*len(atoms) {
			return nil, newFileLoadError(name, "pdb", fmt.Sprintf("frame %d has %d atoms, expected %d", i+1, len(c)/3, len(atoms)), nil, "pdbBufIORead")
		}
		m, err := v3.NewMatrix(c)
		if err != nil {
			return nil, newFileLoadError(name, "pdb", fmt.Sprintf("can't build coordinates for frame %d", i+1), err, "pdbBufIORead")
		}
		frames = append(frames, m)
	}
	top := NewTopology(0, 1, atoms)
	mol := &Molecule{Topology: top, Coords: frames, Bfactors: bfactors}
	return mol, nil
}

// pdbParseLine parses a valid ATOM or HETATM line of a PDB file, returns an Atom
// object with the info except for the coordinates and b-factors, which are returned
// separately.
func pdbParseLine(line string) (*Atom, [3]float64, float64, error) {
	var c [3]float64
	if len(line) < 54 {
		return nil, c, 0, fmt.Errorf("line too short (%d characters)", len(line))
	}
	if len(line) < 80 {
		line += strings.Repeat(" ", 80-len(line))
	}
	ts := strings.TrimSpace
	at := new(Atom)
	at.Het = strings.HasPrefix(line, "HETATM")
	//Large systems sometimes use non-decimal serials, the order of the atom is used then.
	at.ID, _ = strconv.Atoi(ts(line[6:11]))
	at.Name = ts(line[12:16])
	at.Char16 = line[16]
	at.MolName = ts(line[17:20])
	at.MolName1 = three2OneLetter[at.MolName]
	at.Chain = ts(line[21:22])
	var err error
	at.MolID, err = strconv.Atoi(ts(line[22:26]))
	if err != nil {
		return nil, c, 0, fmt.Errorf("can't parse residue ID %q: %w", line[22:26], err)
	}
	for i := 0; i < 3; i++ {
		c[i], err = strconv.ParseFloat(ts(line[30+8*i:38+8*i]), 64)
		if err != nil {
			return nil, c, 0, fmt.Errorf("can't parse coordinate %d: %w", i, err)
		}
	}
	var bfac float64
	if f := ts(line[54:60]); f != "" {
		if at.Occupancy, err = strconv.ParseFloat(f, 64); err != nil {
			return nil, c, 0, fmt.Errorf("can't parse occupancy %q: %w", f, err)
		}
	}
	if f := ts(line[60:66]); f != "" {
		if bfac, err = strconv.ParseFloat(f, 64); err != nil {
			return nil, c, 0, fmt.Errorf("can't parse b-factor %q: %w", f, err)
		}
	}
	at.Symbol = normalizeSymbol(ts(line[76:78]))
	if at.Symbol == "" {
		at.Symbol, err = symbolFromName(at.Name)
		if err != nil {
			zap.S().Debugw("no element symbol for atom", "name", at.Name, "residue", at.MolID)
		}
	}
	at.Mass = symbolMass[at.Symbol]
	return at, c, bfac, nil
}

// normalizeSymbol turns PDB-style element symbols (FE) into the usual form (Fe).
func normalizeSymbol(s string) string {
	if len(s) <= 1 {
		return strings.ToUpper(s)
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

//PDB write family

// PDBFileWrite writes a PDB file with the given name, compressed if the name ends in .gz or .zst.
// If coords has more than one frame, a multi-model file is written.
func PDBFileWrite(pdbname string, coords []*v3.Matrix, mol Atomer, bfact [][]float64) error {
	out, err := createCompressed(pdbname)
	if err != nil {
		return &CError{msg: fmt.Sprintf("can't create %s: %v", pdbname, err), deco: []string{"PDBFileWrite"}}
	}
	if err = PDBWrite(out, coords, mol, bfact); err != nil {
		out.Close()
		return errDecorate(err, "PDBFileWrite")
	}
	if err = out.Close(); err != nil {
		return &CError{msg: fmt.Sprintf("can't close %s: %v", pdbname, err), deco: []string{"PDBFileWrite"}}
	}
	return nil
}

// PDBWrite writes the frames in coords, with the topology mol, to out in PDB format.
// bfact can be nil, if not, each element must be nil or contain one value per atom.
func PDBWrite(out io.Writer, coords []*v3.Matrix, mol Atomer, bfact [][]float64) error {
	w := bufio.NewWriter(out)
	multi := len(coords) > 1
	for i, c := range coords {
		if c.NVecs() != mol.Len() {
			return &CError{msg: fmt.Sprintf("frame %d has %d coordinates for %d atoms", i, c.NVecs(), mol.Len()), deco: []string{"PDBWrite"}}
		}
		if multi {
			fmt.Fprintf(w, "MODEL     %4d\n", i+1)
		}
		var bf []float64
		if len(bfact) > i && len(bfact[i]) == mol.Len() {
			bf = bfact[i]
		}
		for j := 0; j < mol.Len(); j++ {
			at := mol.Atom(j)
			b := 0.0
			if bf != nil {
				b = bf[j]
			}
			w.WriteString(pdbLine(at, j, c.At(j, 0), c.At(j, 1), c.At(j, 2), b))
			if j < mol.Len()-1 && mol.Atom(j+1).Chain != at.Chain {
				w.WriteString("TER\n")
			}
		}
		if multi {
			w.WriteString("ENDMDL\n")
		}
	}
	w.WriteString("END\n")
	return w.Flush()
}

func pdbLine(at *Atom, index int, x, y, z, bfac float64) string {
	record := "ATOM"
	if at.Het {
		record = "HETATM"
	}
	name := at.Name
	if len(name) < 4 {
		name = " " + name
	} else if len(name) > 4 {
		name = name[:4]
	}
	chain := at.Chain
	if chain == "" {
		chain = " "
	}
	alt := byte(' ')
	if at.Char16 >= 'A' && at.Char16 <= 'Z' {
		alt = at.Char16
	}
	id := at.ID
	if id <= 0 {
		id = index + 1
	}
	return fmt.Sprintf("%-6s%5d %-4s%c%-3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s  \n",
		record, id%100000, name, alt, at.MolName, chain[:1], at.MolID%10000, x, y, z, at.Occupancy, bfac, strings.ToUpper(at.Symbol))
}
