/*
 * dcd_write.go, part of cgtools.
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

package dcd

import (
	"bufio"
	"encoding/binary"
	"math"
	"os"

	v3 "github.com/rmera/cgtools/v3"
)

// DCDWObj is a CHARMM/NAMD binary trajectory file opened for writing.
type DCDWObj struct {
	natoms    int32
	frames    int32
	writable  bool
	filename  string
	f         *os.File
	dcd       *bufio.Writer
	dcdFields [3][]float32
	endian    binary.ByteOrder
}

// NewWriter creates a little-endian, CHARMM-flavoured DCD file for frames of natoms atoms.
// The number of frames in the header is set when the file is closed.
func NewWriter(filename string, natoms int, title ...string) (*DCDWObj, error) {
	if natoms <= 0 {
		return nil, &Error{"the number of atoms must be positive", filename, []string{"NewWriter"}, true}
	}
	D := &DCDWObj{natoms: int32(natoms), filename: filename, endian: binary.LittleEndian}
	t := "Created by cgtools"
	if len(title) > 0 && title[0] != "" {
		t = title[0]
	}
	if err := D.initWrite(t); err != nil {
		if D.f != nil {
			D.f.Close()
		}
		return nil, errDecorate(err, "NewWriter")
	}
	for i := range D.dcdFields {
		D.dcdFields[i] = make([]float32, natoms)
	}
	return D, nil
}

func (D *DCDWObj) initWrite(title string) error {
	var err error
	D.f, err = os.Create(D.filename)
	if err != nil {
		return &Error{UnableToOpen + ": " + err.Error(), D.filename, []string{"initWrite"}, true}
	}
	D.dcd = bufio.NewWriter(D.f)
	var icntrl [20]int32
	icntrl[0] = 0                            //NSET, patched on Close
	icntrl[1] = 0                            //ISTART
	icntrl[2] = 1                            //NSAVC
	icntrl[9] = int32(math.Float32bits(1.0)) //DELTA
	icntrl[19] = 24                          //CHARMM version
	ntitle := int32(1 + (len(title)-1)/int(MAXTITLE))
	tb := make([]byte, MAXTITLE*ntitle)
	for i := range tb {
		tb[i] = ' '
	}
	copy(tb, title)
	fields := []any{
		int32(84), []byte("CORD"), icntrl, int32(84),
		4 + MAXTITLE*ntitle, ntitle, tb, 4 + MAXTITLE*ntitle,
		int32(4), D.natoms, int32(4),
	}
	for _, v := range fields {
		if err := binary.Write(D.dcd, D.endian, v); err != nil {
			return &Error{err.Error(), D.filename, []string{"binary.Write", "initWrite"}, true}
		}
	}
	D.writable = true
	return nil
}

// Len returns the number of atoms per frame.
func (D *DCDWObj) Len() int {
	return int(D.natoms)
}

// WNext writes the next frame to the trajectory.
// The box is not written, it is accepted for compatibility with other writers.
func (D *DCDWObj) WNext(towrite *v3.Matrix, box ...[]float64) error {
	if !D.writable {
		return &Error{TrajUnIni, D.filename, []string{"WNext"}, true}
	}
	if towrite == nil {
		return &Error{NilCoordinates, D.filename, []string{"WNext"}, true}
	}
	if int32(towrite.NVecs()) != D.natoms {
		return &Error{"coordinates don't match the trajectory size", D.filename, []string{"WNext"}, true}
	}
	for i := 0; i < int(D.natoms); i++ {
		for j := range D.dcdFields {
			D.dcdFields[j][i] = float32(towrite.At(i, j))
		}
	}
	blocksize := D.natoms * 4
	for _, b := range D.dcdFields {
		for _, v := range []any{blocksize, b, blocksize} {
			if err := binary.Write(D.dcd, D.endian, v); err != nil {
				return &Error{err.Error(), D.filename, []string{"binary.Write", "WNext"}, true}
			}
		}
	}
	D.frames++
	return nil
}

// Close writes the number of frames to the header, and closes the file.
func (D *DCDWObj) Close() error {
	if !D.writable {
		return nil
	}
	D.writable = false
	wrap := func(err error) error {
		return &Error{err.Error(), D.filename, []string{"Close"}, true}
	}
	if err := D.dcd.Flush(); err != nil {
		D.f.Close()
		return wrap(err)
	}
	//DCD requires the number of frames at the begining.
	nset := make([]byte, 4)
	D.endian.PutUint32(nset, uint32(D.frames))
	if _, err := D.f.WriteAt(nset, 8); err != nil {
		D.f.Close()
		return wrap(err)
	}
	if err := D.f.Close(); err != nil {
		return wrap(err)
	}
	return nil
}
