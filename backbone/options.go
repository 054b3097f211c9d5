/*
 * options.go, part of cgtools.
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

package backbone

import (
	"runtime"

	chem "github.com/rmera/cgtools"
	"go.uber.org/zap"
)

// Options contains the options for a Reconstructor.
type Options struct {
	cpus      int
	refFrame  bool
	tolerance float64
	logger    *zap.Logger
}

// DefaultOptions returns options that use all logical CPUs, leave the
// output in the frame of the reduced structure, and log to the global zap logger.
func DefaultOptions() *Options {
	r := new(Options)
	r.cpus = runtime.NumCPU()
	r.tolerance = chem.DefaultAlignTolerance
	return r
}

// Cpus returns the number of gorutines to be used,
// and sets it to a new value, if given.
func (O *Options) Cpus(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.cpus = n[0]
	}
	return O.cpus
}

// RefFrame returns whether the reconstructed frames are moved back
// onto the reference structure, and sets it, if given.
// The move uses the global CA fit, so CA positions change (rigidly).
func (O *Options) RefFrame(b ...bool) bool {
	if len(b) > 0 {
		O.refFrame = b[0]
	}
	return O.refFrame
}

// Tolerance returns the degeneracy threshold for the window fits
// and sets it to a new value, if given.
func (O *Options) Tolerance(t ...float64) float64 {
	if len(t) > 0 && t[0] > 0 {
		O.tolerance = t[0]
	}
	return O.tolerance
}

// Logger returns the logger used, and sets it, if given.
// A nil logger means the global zap logger.
func (O *Options) Logger(l ...*zap.Logger) *zap.Logger {
	if len(l) > 0 {
		O.logger = l[0]
	}
	if O.logger == nil {
		return zap.L()
	}
	return O.logger
}
