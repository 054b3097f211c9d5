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

package backbone

import (
	"fmt"
	"strings"
)

// InvalidTopologyError is returned when the reference and reduced structures can't
// be matched: wrong backbone atoms in a reference residue, different residue counts,
// too few residues, or a frame of the wrong size.
type InvalidTopologyError struct {
	Residue int //index of the offending residue, -1 if not applicable
	msg     string
	deco    []string
}

func topologyError(residue int, caller, format string, a ...any) *InvalidTopologyError {
	return &InvalidTopologyError{Residue: residue, msg: fmt.Sprintf(format, a...), deco: []string{caller}}
}

func (err *InvalidTopologyError) Error() string {
	return fmt.Sprintf("invalid topology: %s (%s)", err.msg, strings.Join(err.deco, " < "))
}

// Decorate adds dec to the call-stack information of the error and returns it.
func (err *InvalidTopologyError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}
