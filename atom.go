/*
 * atom.go, part of interaph.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import (
	"fmt"

	v3 "github.com/rmera/interaph/v3"
)

/**Note: Many functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is way-most likely wrong and should
 * crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
 * fields**/

// Atom contains the atoms read except for the coordinates, which will be in a matrix
// and the b-factors, which are in a separate slice of float64.
type Atom struct {
	Name      string
	ID        int
	MolName   string
	MolName1  byte //the one letter name for residues
	MolID     int
	Chain     string
	Mass      float64
	Occupancy float64
	Charge    float64
	Symbol    string
	Het       bool // is hetatm in the pdb file?
	Bonds     []*Bond
	index     int
}

// Index returns the position of the atom in its topology.
func (A *Atom) Index() int {
	return A.index
}

// Residue is a set of consecutive atoms sharing chain, residue number and residue name.
type Residue struct {
	Chain string
	ID    int
	Name  string
	Atoms []int
}

/*****Topology type***/

// Topology contains information about a molecule which is not expected to change in time (i.e. everything except for coordinates and b-factors)
type Topology struct {
	Atoms    []*Atom
	residues []*Residue
}

// NewTopology returns a topology with the atoms ats. The Index of each atom is set
// to its position in ats.
func NewTopology(ats []*Atom) (*Topology, error) {
	if ats == nil {
		return nil, newCError("Supplied a nil atom slice", "NewTopology")
	}
	top := &Topology{Atoms: ats}
	top.FillIndexes()
	return top, nil
}

// FillIndexes sets the Index of each atom to its position in the topology.
func (T *Topology) FillIndexes() {
	for i, v := range T.Atoms {
		v.index = i
	}
	T.residues = nil
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// Residues returns the residues of the topology in file order. A new residue starts
// whenever chain, residue number or residue name change between consecutive atoms.
// The returned slice is shared, and should not be modified.
func (T *Topology) Residues() []*Residue {
	if T.residues != nil {
		return T.residues
	}
	var cur *Residue
	for i, at := range T.Atoms {
		if cur == nil || at.Chain != cur.Chain || at.MolID != cur.ID || at.MolName != cur.Name {
			cur = &Residue{Chain: at.Chain, ID: at.MolID, Name: at.MolName}
			T.residues = append(T.residues, cur)
		}
		cur.Atoms = append(cur.Atoms, i)
	}
	return T.residues
}

/**Type Molecule**/

// Molecule contains all the info for a molecule in many states. The info that is expected to change between states,
// Coordinates and b-factors are stored separately from other atomic info.
// A Molecule can be read as a trajectory, one state per frame.
type Molecule struct {
	*Topology
	Coords   []*v3.Matrix
	Bfactors [][]float64
	current  int
}

// NewMolecule makes a molecule with topology top, coordinates coords and b-factors bfactors
// and returns it. It returns an error if a set of coordinates doesn't have as many vectors as
// top has atoms. bfactors can be nil.
func NewMolecule(top *Topology, coords []*v3.Matrix, bfactors [][]float64) (*Molecule, error) {
	if top == nil {
		return nil, newCError("Supplied a nil Topology", "NewMolecule")
	}
	if len(coords) == 0 {
		return nil, newCError("Supplied no coordinates", "NewMolecule")
	}
	mol := &Molecule{Topology: top, Coords: coords, Bfactors: bfactors}
	if err := mol.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	return mol, nil
}

// Corrupted checks whether the molecule is corrupted, i.e. the
// coordinates don't match the number of atoms.
func (M *Molecule) Corrupted() error {
	for i, c := range M.Coords {
		if c.NVecs() != M.Len() {
			err := newCError(fmt.Sprintf("Inconsistent coordinates/atoms in frame %d: Atoms %d, coords: %d", i, M.Len(), c.NVecs()), "Corrupted")
			err.wrapped = ErrMismatch
			return err
		}
	}
	return nil
}

// LenFrames returns the number of frames in the molecule
func (M *Molecule) LenFrames() int {
	return len(M.Coords)
}

// Current returns the number of the next frame to be read
func (M *Molecule) Current() int {
	if M == nil {
		return -1
	}
	return M.current
}

// SetCurrent sets the value of the frame next to be read to i.
func (M *Molecule) SetCurrent(i int) {
	if i < 0 || i >= len(M.Coords) {
		panic("Invalid new value for current")
	}
	M.current = i
}

/******************************************
//The following implement the Traj interface
**********************************************/

// Readable returns true if the molecule has frames left to be read.
func (M *Molecule) Readable() bool {
	return M != nil && M.current < len(M.Coords)
}

// Next puts the next frame into output. If output is nil, the frame is skipped.
// It returns a LastFrameError when no frames are left.
func (M *Molecule) Next(output *v3.Matrix, box ...[]float64) error {
	if M.current >= len(M.Coords) {
		return newlastFrameError("", "molecule", "Next")
	}
	M.current++
	if output == nil {
		return nil
	}
	output.Copy(M.Coords[M.current-1])
	return nil
}

/*NextConc takes a slice of matrices and reads as many frames as elements the list has
from the trajectory. The frames are discarted if the corresponding element of the slice
is nil. The function returns a slice of channels through each of each of which
a *v3.Matrix will be transmited*/
func (M *Molecule) NextConc(frames []*v3.Matrix) ([]chan *v3.Matrix, error) {
	toreturn := make([]chan *v3.Matrix, 0, len(frames))
	used := false
	for _, val := range frames {
		if M.current >= len(M.Coords) {
			lastframe := newlastFrameError("", "molecule", "NextConc")
			if !used {
				return nil, lastframe
			}
			return toreturn, lastframe
		}
		if val == nil {
			M.current++
			toreturn = append(toreturn, nil)
			continue
		}
		used = true
		toreturn = append(toreturn, make(chan *v3.Matrix))
		val.Copy(M.Coords[M.current])
		go func(a *v3.Matrix, pipe chan *v3.Matrix) {
			pipe <- a
		}(val, toreturn[len(toreturn)-1])
		M.current++
	}
	return toreturn, nil
}

/**End Traj interface implementation***********/
