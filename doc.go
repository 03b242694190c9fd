/*
 * doc.go, part of interaph.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

/*
Package chem provides the molecular structures the interaction analyses work on:
atoms, residues, topologies and multi-state molecules, plus readers for PDB and
GRO files, a PDB writer, distance-based bond assignment and a small atom
selection language.

A Molecule is also a trajectory: it implements Traj and ConcTraj, one state per
frame, so analyses can run on a multi-model structure exactly as they would on a
DCD or STF file (see the traj subpackages).

Coordinates are kept in v3.Matrix values, one atom per row, based on the gonum
Dense type.

Errors returned by this package and by the trajectory readers implement Error.
The end of a trajectory is signaled with an error implementing LastFrameError,
which is not a failure.
*/
package chem
