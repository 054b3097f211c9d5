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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*
Package chem is the base package of cgtools. It provides atom and molecule structures,
facilities for reading and writing structure files and the geometric primitives
(rigid superposition, RMSD, centers of mass) used by the backbone reconstruction
and the analysis packages.

	**Capabilities**

	Reads/writes PDB (multi-model) and mmCIF files, optionally gzip- or zstd-compressed.

	Superimposes sets of coordinates using any pair of atom selections. The
	transformation is returned as a value that can be applied to other coordinates,
	so no input is modified.

	Calculates RMSD between sets of coordinates.

	Selects atoms by residue, chain and name, groups atoms into residues.

	Reduces all-atom proteins to CA-only or backbone-bead models.

Coordinates are kept in v3.Matrix objects, one per frame, apart from the topology
(the Atom information), so a Molecule is just a Topology plus a slice of frames.
*/
package chem
