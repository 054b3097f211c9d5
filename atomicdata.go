/*
 * atomicdata.go, part of cgtools.
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

// A map for assigning mass to elements.
// Note that just common "bio-elements" are present
var symbolMass = map[string]float64{
	"H":  1.0,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.30,
	"Cl": 35.45,
	"Na": 22.99,
	"Cu": 63.55,
	"Zn": 65.38,
	"Co": 58.93,
	"Fe": 55.84,
	"Mn": 54.94,
}

// A map between 3-letters name for aminoacidic residues to the corresponding 1-letter names.
// Protonation-state and force-field variants map to their parent residue.
var three2OneLetter = map[string]byte{
	"SER": 'S',
	"THR": 'T',
	"ASN": 'N',
	"GLN": 'Q',
	"SEC": 'U', //Selenocysteine!
	"CYS": 'C',
	"CYX": 'C',
	"CYM": 'C',
	"GLY": 'G',
	"PRO": 'P',
	"ALA": 'A',
	"VAL": 'V',
	"ILE": 'I',
	"LEU": 'L',
	"MET": 'M',
	"MSE": 'M',
	"PHE": 'F',
	"TYR": 'Y',
	"TRP": 'W',
	"ARG": 'R',
	"HIS": 'H',
	"HID": 'H',
	"HIE": 'H',
	"HIP": 'H',
	"HSD": 'H',
	"HSE": 'H',
	"HSP": 'H',
	"LYS": 'K',
	"LYN": 'K',
	"ASP": 'D',
	"ASH": 'D',
	"GLU": 'E',
	"GLH": 'E',
}

// IsAminoAcid returns true if molname is the PDB name of a (possibly modified) aminoacidic residue.
func IsAminoAcid(molname string) bool {
	_, ok := three2OneLetter[strings.ToUpper(molname)]
	return ok
}

// This tries to guess a chemical element symbol from a PDB atom name. Mostly based on AMBER names.
// It only deals with some common bio-elements.
func symbolFromName(name string) (string, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("can't guess symbol from an empty name")
	}
	switch {
	case len(name) == 4 || name[0] == 'H':
		return "H", nil
	case name == "CU":
		return "Cu", nil
	case name == "CO":
		return "Co", nil
	case name == "CL":
		return "Cl", nil
	case name[0] == 'C':
		return "C", nil //CA is here a carbon, not calcium.
	case name == "NA":
		return "Na", nil
	case name[0] == 'N':
		return "N", nil
	case name[0] == 'O':
		return "O", nil
	case name[0] == 'P':
		return "P", nil
	case name == "SE":
		return "Se", nil
	case name[0] == 'S':
		return "S", nil
	case strings.HasPrefix(name, "ZN"):
		return "Zn", nil
	}
	return "", fmt.Errorf("can't guess symbol from PDB name %s", name)
}
