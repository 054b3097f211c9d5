/*
 * dcd.go, part of cgtools.
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

// Package dcd reads and writes CHARMM/NAMD binary (DCD) trajectories.
package dcd

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/cgtools/v3"
	"go.uber.org/zap"
)

// MAXTITLE is the length of each title line in a DCD header.
const MAXTITLE int32 = 80

// DCDObj is a CHARMM/NAMD binary trajectory file opened for reading.
type DCDObj struct {
	natoms     int32
	nset       int32
	delta      float32
	title      string
	readLast   bool //Have we read the last frame?
	readable   bool
	filename   string
	extrablock bool
	fourdim    bool
	fixed      int32 //Fixed atoms (not supported)
	f          *os.File
	src        io.ReadCloser //the decompressor, if any.
	dcd        *bufio.Reader
	dcdFields  [3][]float32
	endian     binary.ByteOrder
}

// New opens a DCD trajectory for reading. Files ending in .gz or .zst
// are decompressed on the fly. Both endianness are supported, fixed atoms are not.
func New(filename string) (*DCDObj, error) {
	D := &DCDObj{filename: filename}
	if err := D.initRead(filename); err != nil {
		D.closeFiles()
		return nil, errDecorate(err, "New")
	}
	for i := range D.dcdFields {
		D.dcdFields[i] = make([]float32, int(D.natoms))
	}
	return D, nil
}

func (D *DCDObj) openSource(name string) error {
	var err error
	D.f, err = os.Open(name)
	if err != nil {
		return &Error{UnableToOpen + ": " + err.Error(), name, []string{"openSource"}, true}
	}
	var r io.Reader = bufio.NewReader(D.f)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		z, err := gzip.NewReader(r)
		if err != nil {
			return &Error{"can't decompress: " + err.Error(), name, []string{"openSource"}, true}
		}
		D.src = z
		r = z
	case ".zst":
		z, err := zstd.NewReader(r)
		if err != nil {
			return &Error{"can't decompress: " + err.Error(), name, []string{"openSource"}, true}
		}
		D.src = z.IOReadCloser()
		r = D.src
	}
	D.dcd = bufio.NewReader(r)
	return nil
}

func (D *DCDObj) initRead(name string) error {
	if err := D.openSource(name); err != nil {
		return errDecorate(err, "initRead")
	}
	wrap := func(err error) error {
		return &Error{fmt.Sprintf("%s: %v", WrongFormat, err), D.filename, []string{"initRead"}, true}
	}
	var check int32
	D.endian = binary.LittleEndian
	head := make([]byte, 4)
	if _, err := io.ReadFull(D.dcd, head); err != nil {
		return wrap(err)
	}
	//The first thing we should read is an 84.
	//If this fails it means that the file is big endian.
	if binary.LittleEndian.Uint32(head) != 84 {
		if binary.BigEndian.Uint32(head) != 84 {
			return &Error{WrongFormat + ": no 84 at the beginning", D.filename, []string{"initRead"}, true}
		}
		D.endian = binary.BigEndian
	}
	magic := make([]byte, 4)
	if _, err := io.ReadFull(D.dcd, magic); err != nil {
		return wrap(err)
	}
	if string(magic) != "CORD" {
		return &Error{WrongFormat + ": wrong magic number " + string(magic), D.filename, []string{"initRead"}, true}
	}
	//The control block, read in one go.
	buf := make([]byte, 80)
	if _, err := io.ReadFull(D.dcd, buf); err != nil {
		return wrap(err)
	}
	icntrl := func(i int) int32 { return int32(D.endian.Uint32(buf[4*i:])) }
	//X-plor sets this last int to zero, charmm sets it to its version number.
	if icntrl(19) == 0 {
		return &Error{"X-plor DCD not supported", D.filename, []string{"initRead"}, true}
	}
	D.nset = icntrl(0)
	D.fixed = icntrl(8)
	D.delta = math.Float32frombits(uint32(icntrl(9)))
	D.extrablock = icntrl(10) != 0
	D.fourdim = icntrl(11) == 1
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrap(err)
	}
	if check != 84 {
		return &Error{WrongFormat + ": header block not closed", D.filename, []string{"initRead"}, true}
	}
	//title block
	var titlesize, ntitle int32
	if err := binary.Read(D.dcd, D.endian, &titlesize); err != nil {
		return wrap(err)
	}
	if err := binary.Read(D.dcd, D.endian, &ntitle); err != nil {
		return wrap(err)
	}
	if ntitle < 0 || titlesize != 4+MAXTITLE*ntitle {
		return &Error{fmt.Sprintf("%s: title block of %d bytes for %d lines", WrongFormat, titlesize, ntitle), D.filename, []string{"initRead"}, true}
	}
	title := make([]byte, MAXTITLE*ntitle)
	if _, err := io.ReadFull(D.dcd, title); err != nil {
		return wrap(err)
	}
	D.title = strings.TrimSpace(string(bytes.TrimRight(title, "\x00")))
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrap(err)
	}
	if check != titlesize {
		return &Error{WrongFormat + ": title block not closed", D.filename, []string{"initRead"}, true}
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrap(err)
	}
	if check != 4 { //one must read a 4 before the natoms
		return &Error{WrongFormat + ": no 4 before the number of atoms", D.filename, []string{"initRead"}, true}
	}
	if err := binary.Read(D.dcd, D.endian, &D.natoms); err != nil {
		return wrap(err)
	}
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return wrap(err)
	}
	if check != 4 { //and one more 4
		return &Error{WrongFormat + ": no 4 after the number of atoms", D.filename, []string{"initRead"}, true}
	}
	if D.fixed != 0 {
		return &Error{"fixed atoms not supported", D.filename, []string{"initRead"}, true}
	}
	D.readable = true
	zap.S().Debugw("opened DCD", "file", D.filename, "atoms", D.natoms, "frames", D.nset, "unitcell", D.extrablock, "4D", D.fourdim)
	return nil
}

// Readable returns true if the object is ready to be read from.
// It doesnt guarantee that there is something to read.
func (D *DCDObj) Readable() bool {
	return D.readable
}

// Len returns the number of atoms per frame.
func (D *DCDObj) Len() int {
	return int(D.natoms)
}

// NFrames returns the number of frames declared in the header. Some programs
// don't set it, so it should be taken as a hint.
func (D *DCDObj) NFrames() int {
	return int(D.nset)
}

// Delta returns the time step declared in the header.
func (D *DCDObj) Delta() float64 { return float64(D.delta) }

// Title returns the title of the trajectory.
func (D *DCDObj) Title() string { return D.title }

// Next reads the next frame into keep. If keep is nil the frame is discarded.
// If box is given with at least 9 elements and the frame has a unit cell, the
// diagonal of box gets the cell lengths (orthogonal cells).
// A chem.LastFrameError is returned, and the file closed, when there are no more frames.
func (D *DCDObj) Next(keep *v3.Matrix, box ...[]float64) error {
	if !D.readable {
		return &Error{TrajUnIni, D.filename, []string{"Next"}, true}
	}
	var b []float64
	if len(box) > 0 && len(box[0]) >= 9 {
		b = box[0]
	}
	if err := D.nextRaw(b); err != nil {
		if _, ok := err.(*lastFrameError); ok {
			D.Close()
		}
		return errDecorate(err, "Next")
	}
	if keep == nil {
		return nil
	}
	if keep.NVecs() < int(D.natoms) {
		return &Error{NotEnoughSpace, D.filename, []string{"Next"}, true}
	}
	for i := 0; i < int(D.natoms); i++ {
		keep.Set(i, 0, float64(D.dcdFields[0][i]))
		keep.Set(i, 1, float64(D.dcdFields[1][i]))
		keep.Set(i, 2, float64(D.dcdFields[2][i]))
	}
	return nil
}

func (D *DCDObj) nextRaw(box []float64) error {
	if D.readLast {
		return newlastFrameError(D.filename, "nextRaw")
	}
	var blocksize int32
	first := true
	if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
		if err == io.EOF {
			D.readLast = true
			return newlastFrameError(D.filename, "nextRaw")
		}
		return D.readError(err)
	}
	//The unit cell is not present in all snapshots for some programs, so we use
	//the block size to see if the X block starts inmediately.
	if D.extrablock && blocksize != D.natoms*4 {
		cell, err := D.readByteBlock(blocksize)
		if err != nil {
			return err
		}
		if box != nil && len(cell) == 48 {
			var uc [6]float64
			binary.Read(bytes.NewReader(cell), D.endian, &uc)
			//CHARMM order: A, gamma, B, beta, alpha, C
			clear(box)
			box[0], box[4], box[8] = uc[0], uc[2], uc[5]
		}
		first = false
	}
	for i := range D.dcdFields {
		if !first || i > 0 {
			if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
				return D.readError(err)
			}
		}
		if err := D.readFloat32Block(blocksize, D.dcdFields[i]); err != nil {
			return err
		}
	}
	//we skip the 4-D values if they exist. Apparently this is not present in the
	//last snapshot, so an EOF here signals that we have read the last snapshot.
	if D.fourdim {
		if err := binary.Read(D.dcd, D.endian, &blocksize); err != nil {
			if err != io.EOF {
				return D.readError(err)
			}
			D.readLast = true
			return nil
		}
		if _, err := D.readByteBlock(blocksize); err != nil {
			return err
		}
	}
	return nil
}

func (D *DCDObj) readError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Error{ReadError + ": truncated frame", D.filename, []string{"nextRaw"}, true}
	}
	return &Error{ReadError + ": " + err.Error(), D.filename, []string{"nextRaw"}, true}
}

// readFloat32Block reads a block of float32 into block, which must have the
// appropiate size, and checks the closing block size.
func (D *DCDObj) readFloat32Block(blocksize int32, block []float32) error {
	if blocksize != int32(4*len(block)) {
		return &Error{fmt.Sprintf("%s: coordinate block of %d bytes for %d atoms", WrongFormat, blocksize, len(block)), D.filename, []string{"readFloat32Block"}, true}
	}
	if err := binary.Read(D.dcd, D.endian, block); err != nil {
		return D.readError(err)
	}
	var check int32
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return D.readError(err)
	}
	if check != blocksize {
		return &Error{SecurityCheckFailed, D.filename, []string{"readFloat32Block"}, true}
	}
	return nil
}

func (D *DCDObj) readByteBlock(blocksize int32) ([]byte, error) {
	if blocksize < 0 {
		return nil, &Error{SecurityCheckFailed, D.filename, []string{"readByteBlock"}, true}
	}
	block := make([]byte, blocksize)
	if _, err := io.ReadFull(D.dcd, block); err != nil {
		return nil, D.readError(err)
	}
	var check int32
	if err := binary.Read(D.dcd, D.endian, &check); err != nil {
		return nil, D.readError(err)
	}
	if check != blocksize {
		return nil, &Error{SecurityCheckFailed, D.filename, []string{"readByteBlock"}, true}
	}
	return block, nil
}

func (D *DCDObj) closeFiles() error {
	var err error
	if D.src != nil {
		err = D.src.Close()
	}
	if D.f != nil {
		if e := D.f.Close(); err == nil {
			err = e
		}
	}
	return err
}

// Close closes the trajectory. It can't be read afterwards.
func (D *DCDObj) Close() error {
	if !D.readable {
		return nil
	}
	D.readable = false
	if err := D.closeFiles(); err != nil {
		return &Error{err.Error(), D.filename, []string{"Close"}, true}
	}
	return nil
}
