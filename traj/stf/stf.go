/*
 * stf.go, part of cgtools.
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

package stf

import (
	"bufio"
	"compress/lzw"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/cgtools/v3"
	"go.uber.org/zap"
	xmaps "golang.org/x/exp/maps"
)

const (
	lzwLitwidth = 8
	// DefaultPrec is the precision used when none is given.
	DefaultPrec = 2
)

// kind of compression, from the last letter of the file name.
func compression(name string) byte {
	if name == "" {
		return 's'
	}
	switch c := strings.ToLower(name)[len(name)-1]; c {
	case 'l', 'z', 'r':
		return c
	}
	return 's'
}

func newCompressedReader(name string, r io.Reader) (io.ReadCloser, error) {
	switch compression(name) {
	case 'l':
		return lzw.NewReader(r, lzw.MSB, lzwLitwidth), nil
	case 'z':
		return gzip.NewReader(r)
	case 'r':
		return flate.NewReader(r), nil
	}
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

func newCompressedWriter(name string, w io.Writer, level int) (io.WriteCloser, error) {
	switch compression(name) {
	case 'l':
		return lzw.NewWriter(w, lzw.MSB, lzwLitwidth), nil
	case 'z':
		return gzip.NewWriterLevel(w, min(level, gzip.BestCompression))
	case 'r':
		return flate.NewWriter(w, min(level, flate.BestCompression))
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
}

func scale(prec int) float64 {
	if prec == DefaultPrec {
		return 100
	}
	return math.Pow(10, float64(prec))
}

// parsePrec reads the precision from a header, returning DefaultPrec if absent or invalid.
func parsePrec(header map[string]string, filename string) int {
	p, ok := header["prec"]
	if !ok {
		return DefaultPrec
	}
	prec, err := strconv.Atoi(strings.TrimSpace(p))
	if err != nil || prec < 0 {
		zap.S().Warnw("invalid precision in STF header, using the default", "file", filename, "prec", p)
		return DefaultPrec
	}
	return prec
}

//Write!

// StfW writes STF trajectories.
type StfW struct {
	f         *os.File
	h         io.WriteCloser
	w         *bufio.Writer
	natoms    int
	filename  string
	writeable bool
	prec      int
	mult      float64
}

// NewWriter creates the STF file name for frames of natoms atoms, and writes the
// header to it. A "prec" entry is added to the header if not present.
// compressionLevel is the zstd-style level (1-22) and is clamped for gzip and deflate.
func NewWriter(name string, natoms int, header map[string]string, compressionLevel ...int) (*StfW, error) {
	level := 11
	if len(compressionLevel) > 0 && compressionLevel[0] > 0 {
		level = compressionLevel[0]
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, &Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	h, err := newCompressedWriter(name, f, level)
	if err != nil {
		f.Close()
		return nil, &Error{"can't start compression: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	S := &StfW{f: f, h: h, w: bufio.NewWriter(h), natoms: natoms, filename: name, writeable: true}
	hd := make(map[string]string, len(header)+1)
	maps.Copy(hd, header)
	if _, ok := hd["prec"]; !ok {
		hd["prec"] = strconv.Itoa(DefaultPrec)
	}
	S.prec = parsePrec(hd, name)
	hd["prec"] = strconv.Itoa(S.prec)
	S.mult = scale(S.prec)
	keys := xmaps.Keys(hd)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(S.w, "%s=%s\n", k, hd[k])
	}
	fmt.Fprintf(S.w, "** %d\n", natoms)
	return S, nil
}

// Len returns the number of atoms per frame.
func (S *StfW) Len() int {
	return S.natoms
}

// WNext writes a frame. If box is given and has at least 9 elements, they are
// written as the box vectors.
func (S *StfW) WNext(coord *v3.Matrix, box ...[]float64) error {
	if !S.writeable {
		return &Error{TrajUnIniWrite, S.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return &Error{NilCoordinates, S.filename, []string{"WNext"}, true}
	}
	if v := coord.NVecs(); v != S.natoms {
		return &Error{fmt.Sprintf("%d coordinates given, but %d expected", v, S.natoms), S.filename, []string{"WNext"}, true}
	}
	buf := make([]byte, 0, 32)
	for i := 0; i < S.natoms; i++ {
		buf = buf[:0]
		for j := 0; j < 3; j++ {
			if j > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendInt(buf, int64(math.RoundToEven(coord.At(i, j)*S.mult)), 10)
		}
		buf = append(buf, '\n')
		S.w.Write(buf)
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		b := box[0]
		fmt.Fprintf(S.w, "* %g %g %g %g %g %g %g %g %g\n", b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7], b[8])
	} else {
		S.w.WriteString("*\n")
	}
	return nil
}

// Close flushes and closes the file. The writer can't be used afterwards.
func (S *StfW) Close() error {
	if S == nil || !S.writeable {
		return nil
	}
	S.writeable = false
	err := S.w.Flush()
	if e := S.h.Close(); err == nil {
		err = e
	}
	if e := S.f.Close(); err == nil {
		err = e
	}
	if err != nil {
		return &Error{"error closing the file: " + err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}

//Read!

// StfR reads STF trajectories.
type StfR struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	mult     float64
	readable bool
}

// New opens a STF trajectory for reading, and returns a pointer
// to the handle, a map with the header (never nil) and error or nil.
func New(name string) (*StfR, map[string]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, &Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, true}
	}
	dec, err := newCompressedReader(name, bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, nil, &Error{"can't start decompression: " + err.Error(), name, []string{"New"}, true}
	}
	S := &StfR{f: f, dec: dec, h: bufio.NewReader(dec), natoms: -1, filename: name}
	m := make(map[string]string)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.close()
			return nil, nil, &Error{"can't read header: " + err.Error(), name, []string{"New"}, true}
		}
		str = strings.TrimRight(str, "\r\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.close()
				return nil, nil, &Error{fmt.Sprintf("can't read the number of atoms from %q", str), name, []string{"New"}, true}
			}
			if S.natoms, err = strconv.Atoi(nat[1]); err != nil {
				S.close()
				return nil, nil, &Error{fmt.Sprintf("can't read the number of atoms from %q: %v", str, err), name, []string{"New"}, true}
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			S.close()
			return nil, nil, &Error{fmt.Sprintf("%s: malformed header line %q", WrongFormat, str), name, []string{"New"}, true}
		}
		m[k] = v
	}
	S.prec = parsePrec(m, name)
	S.mult = scale(S.prec)
	S.readable = true
	return S, m, nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

// Prec returns the precision of the trajectory.
func (S *StfR) Prec() int {
	return S.prec
}

func coordsDecode(str string, temp *[3]float64, mult float64) error {
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("ill formated coordinates line, %d fields: %q", len(s), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("can't parse coordinate %d (%s): %w", i, v, err)
		}
		temp[i] = float64(f) / mult
	}
	return nil
}

// Next puts in c the coordinates for the next frame of the trajectory and, if given,
// and the information is present, puts the box vectors in box.
// If c is nil, the frame is read and checked, but discarded.
// At the end of the trajectory a chem.LastFrameError is returned and the file is closed.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return &Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil && !(err == io.EOF && b != "") {
			if err == io.EOF && i == 0 {
				//nothing bad happened here, the trajectory just ended.
				S.Close()
				return newlastFrameError(S.filename, "Next")
			}
			return &Error{ReadError + ": " + err.Error(), S.filename, []string{"Next"}, true}
		}
		if err = coordsDecode(b, &temp, S.mult); err != nil {
			return &Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		c.SetRow(i, temp[:])
	}
	s, err := S.h.ReadString('\n')
	if err != nil && !(err == io.EOF && s != "") {
		return &Error{"can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if s == "" || s[0] != '*' || strings.HasPrefix(s, "**") {
		return &Error{WrongFormat + ": wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	if len(box) == 0 || len(box[0]) < 9 {
		return nil
	}
	fields := strings.Fields(s)
	if len(fields) < 10 {
		zap.S().Debugw("no box information in frame", "file", S.filename)
		return nil
	}
	for j, v := range fields[1:10] {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			zap.S().Warnw("failed to read the box in a frame", "file", S.filename, "error", err)
			clear(box[0])
			return nil
		}
		box[0][j] = f
	}
	return nil
}

func (S *StfR) close() error {
	err := S.dec.Close()
	if e := S.f.Close(); err == nil {
		err = e
	}
	return err
}

// Close closes the object, and marks it as unreadable.
func (S *StfR) Close() error {
	if !S.readable {
		return nil
	}
	S.readable = false
	if err := S.close(); err != nil {
		return &Error{"error closing the file: " + err.Error(), S.filename, []string{"Close"}, true}
	}
	return nil
}
