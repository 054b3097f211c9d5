/*
 * errors.go, part of cgtools.
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
	"fmt"
	"strings"
)

// CError is the general error type of the package. It implements Error.
type CError struct {
	msg  string
	deco []string
}

func (err *CError) Error() string { return err.msg }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// FileLoadError is returned when a structure file can't be opened, decompressed or parsed.
type FileLoadError struct {
	FileName string
	Format   string
	msg      string
	deco     []string
	err      error
}

func newFileLoadError(name, format, msg string, cause error, caller string) *FileLoadError {
	return &FileLoadError{FileName: name, Format: format, msg: msg, err: cause, deco: []string{caller}}
}

func (err *FileLoadError) Error() string {
	s := fmt.Sprintf("%s file %s: %s", err.Format, err.FileName, err.msg)
	if err.err != nil {
		s += ": " + err.err.Error()
	}
	return s
}

// Unwrap returns the underlying error, if any.
func (err *FileLoadError) Unwrap() error { return err.err }

// Decorate adds dec to the call-stack information of the error and returns it.
func (err *FileLoadError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// AlignmentError is returned when a rigid superposition is underdetermined:
// too few atoms, mismatched selections or degenerate (collinear, coincident) points.
type AlignmentError struct {
	Atoms  int
	Reason string
	deco   []string
}

func (err *AlignmentError) Error() string {
	return fmt.Sprintf("alignment on %d atoms failed: %s (%s)", err.Atoms, err.Reason, strings.Join(err.deco, " < "))
}

// Decorate adds dec to the call-stack information of the error and returns it.
func (err *AlignmentError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// lastFrameError implements LastFrameError for Molecules read as trajectories.
type lastFrameError struct {
	deco []string
}

func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return "" }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "Molecule" }

func (E *lastFrameError) Decorate(dec string) []string {
	if dec != "" {
		E.deco = append(E.deco, dec)
	}
	return E.deco
}

// errDecorate decorates err with the caller's name, if err implements Error,
// and returns it.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if err2, ok := err.(Error); ok {
		err2.Decorate(caller)
	}
	return err
}
