/*
 * doc.go, part of cgtools.
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

// Package stf reads and writes the simple trajectory format (STF), a compressed
// text trajectory format meant to be easy to implement anywhere.
//
// An STF file is ASCII text, compressed as a whole. It starts with a header of
// key=value lines (at least prec=N, the precision) closed by a line "** natoms".
// Then, for each frame, one line per atom with the three coordinates, in Angstrom,
// multiplied by 10^prec and rounded to integers, and a line starting with "*",
// optionally followed by the 9 components of the box vectors.
//
// The compression is chosen by the last letter of the file name: "l" for LZW,
// "z" for gzip, "r" for raw deflate, anything else (typically .stf) for zstd.
package stf
