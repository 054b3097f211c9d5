/*
 * open.go, part of cgtools.
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

// Package traj opens trajectory and structure files by name, returning
// readers and writers that share the chem.Traj interface.
package traj

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	chem "github.com/rmera/cgtools"
	"github.com/rmera/cgtools/traj/dcd"
	"github.com/rmera/cgtools/traj/stf"
	v3 "github.com/rmera/cgtools/v3"
)

// Reader is a trajectory that can be closed before it is exhausted.
type Reader interface {
	chem.Traj
	Close() error
}

// Writer is a trajectory opened for writing. Frames are only guaranteed to be
// on disk after Close.
type Writer interface {
	WNext(coords *v3.Matrix, box ...[]float64) error
	Len() int
	Close() error
}

// Format returns "dcd", "stf", "pdb" or "cif" for name, or an empty string if
// the extension is not known.
func Format(name string) string {
	n := strings.ToLower(name)
	for _, c := range []string{".gz", ".zst"} {
		n = strings.TrimSuffix(n, c)
	}
	if filepath.Ext(n) == ".dcd" {
		return "dcd"
	}
	if strings.HasPrefix(filepath.Ext(n), ".stf") {
		return "stf"
	}
	return chem.StructureFormat(name)
}

// molReader lets a multi-model structure be read as a trajectory.
type molReader struct {
	*chem.Molecule
}

func (m molReader) Close() error { return nil }

// Open opens name for reading. DCD and STF files are read frame by frame,
// PDB and mmCIF files are read whole, one frame per model.
// For STF files the header is discarded, use stf.New to obtain it.
func Open(name string) (Reader, error) {
	switch Format(name) {
	case "dcd":
		r, err := dcd.New(name)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "stf":
		r, _, err := stf.New(name)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "pdb", "cif":
		mol, err := chem.FileRead(name)
		if err != nil {
			return nil, err
		}
		return molReader{mol}, nil
	}
	return nil, fmt.Errorf("traj.Open: unknown trajectory format for %s", name)
}

// ReadAll reads every remaining frame of t. A chem.LastFrameError ends the reading normally.
func ReadAll(t chem.Traj) ([]*v3.Matrix, error) {
	var frames []*v3.Matrix
	for {
		c := v3.Zeros(t.Len())
		err := t.Next(c)
		if err != nil {
			var last chem.LastFrameError
			if errors.As(err, &last) {
				return frames, nil
			}
			return frames, err
		}
		frames = append(frames, c)
	}
}

// molWriter collects frames and writes a multi-model structure file on Close.
type molWriter struct {
	name   string
	top    chem.Atomer
	frames []*v3.Matrix
	closed bool
}

func (w *molWriter) Len() int { return w.top.Len() }

func (w *molWriter) WNext(coords *v3.Matrix, box ...[]float64) error {
	if w.closed {
		return fmt.Errorf("traj: writer for %s already closed", w.name)
	}
	if coords == nil || coords.NVecs() != w.top.Len() {
		return fmt.Errorf("traj: frame for %s does not have %d atoms", w.name, w.top.Len())
	}
	w.frames = append(w.frames, coords.Clone())
	return nil
}

func (w *molWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if len(w.frames) == 0 {
		return fmt.Errorf("traj: no frames to write to %s", w.name)
	}
	return chem.FileWrite(w.name, w.frames, w.top, nil)
}

// Create opens name for writing frames of the atoms in top. The format is chosen
// by extension: DCD, STF (with the given header, which can be nil) or a
// multi-model PDB/mmCIF file, for which top also supplies the atom records.
func Create(name string, top chem.Atomer, header ...map[string]string) (Writer, error) {
	if top == nil || top.Len() == 0 {
		return nil, fmt.Errorf("traj.Create: no atoms to write to %s", name)
	}
	switch Format(name) {
	case "dcd":
		if strings.HasSuffix(strings.ToLower(name), ".dcd") {
			w, err := dcd.NewWriter(name, top.Len())
			if err != nil {
				return nil, err
			}
			return w, nil
		}
		return nil, fmt.Errorf("traj.Create: compressed DCD output (%s) is not supported", name)
	case "stf":
		var h map[string]string
		if len(header) > 0 {
			h = header[0]
		}
		w, err := stf.NewWriter(name, top.Len(), h)
		if err != nil {
			return nil, err
		}
		return w, nil
	case "pdb", "cif":
		return &molWriter{name: name, top: top}, nil
	}
	return nil, fmt.Errorf("traj.Create: unknown trajectory format for %s", name)
}
