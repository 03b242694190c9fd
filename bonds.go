/*
 * bonds.go, part of interaph.
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

package chem

import (
	"fmt"
	"sort"

	v3 "github.com/rmera/interaph/v3"
)

// constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
)

// Bond is a covalent bond between two atoms.
type Bond struct {
	Index int
	At1   *Atom
	At2   *Atom
	Dist  float64
	Order float64 //Order 0 means undetermined
}

// Cross returns the atom bonded to origin by B.
func (B *Bond) Cross(origin *Atom) *Atom {
	if origin.index == B.At1.index {
		return B.At2
	}
	if origin.index == B.At2.index {
		return B.At1
	}
	panic("Trying to cross a bond: The origin atom given is not present in the bond!") //this got to be a programming error, so a panic is warranted.

}

// return a new *Bond slice with the element id removed
func takefromslice(bonds []*Bond, id int) []*Bond {
	newb := make([]*Bond, 0, len(bonds))
	for _, v := range bonds {
		if v.Index != id {
			newb = append(newb, v)
		}
	}
	return newb
}

// RemoveBond deletes b from the bond lists of both its atoms.
func RemoveBond(b *Bond) error {
	lenb1 := len(b.At1.Bonds)
	lenb2 := len(b.At2.Bonds)
	b.At1.Bonds = takefromslice(b.At1.Bonds, b.Index)
	b.At2.Bonds = takefromslice(b.At2.Bonds, b.Index)
	if len(b.At1.Bonds) == lenb1 || len(b.At2.Bonds) == lenb2 {
		return newCError(fmt.Sprintf("Failed to remove bond Index:%d between atoms %d and %d", b.Index, b.At1.index, b.At2.index), "RemoveBond")
	}
	return nil
}

// AssignBonds assigns bonds to the atoms of top based on a simple distance
// criterium, similar to that described in DOI:10.1186/1758-2946-3-33, using
// the coordinates in coord. Only atoms in the same residue, or in consecutive
// residues of the same chain, are considered, so the cost grows linearly with
// the number of residues. Previously assigned bonds are discarded.
func AssignBonds(coord *v3.Matrix, top *Topology) error {
	if coord.NVecs() != top.Len() {
		err := newCError(fmt.Sprintf("Topology has %d atoms, coordinates %d", top.Len(), coord.NVecs()), "AssignBonds")
		err.wrapped = ErrMismatch
		return err
	}
	for _, at := range top.Atoms {
		at.Bonds = nil
	}
	var nextIndex int
	//atoms with elements we don't have radii for (ions, mostly) don't get bonds.
	tryBond := func(i, j int) {
		at1 := top.Atoms[i]
		at2 := top.Atoms[j]
		cov1 := symbolCovrad[at1.Symbol]
		cov2 := symbolCovrad[at2.Symbol]
		if cov1 == 0 || cov2 == 0 {
			return
		}
		d := v3.Distance(coord, i, coord, j)
		if d < cov1+cov2+bondtol && d > tooclose {
			b := &Bond{Index: nextIndex, Dist: d, At1: at1, At2: at2}
			at1.Bonds = append(at1.Bonds, b)
			at2.Bonds = append(at2.Bonds, b)
			nextIndex++
		}
	}
	res := top.Residues()
	for k, r := range res {
		for a, i := range r.Atoms {
			for _, j := range r.Atoms[a+1:] {
				tryBond(i, j)
			}
		}
		if k+1 >= len(res) || res[k+1].Chain != r.Chain {
			continue
		}
		for _, i := range r.Atoms {
			for _, j := range res[k+1].Atoms {
				tryBond(i, j)
			}
		}
	}

	//Now we check that no atom has too many bonds.
	for _, at := range top.Atoms {
		max := symbolMaxBonds[at.Symbol]
		if max == 0 { //means there is not a specified number of bonds for this atom.
			continue
		}
		sort.Slice(at.Bonds, func(i, j int) bool { return at.Bonds[i].Dist < at.Bonds[j].Dist })
		for len(at.Bonds) > max {
			err := RemoveBond(at.Bonds[len(at.Bonds)-1]) //we remove the longest bond
			if err != nil {
				return errDecorate(err, "AssignBonds")
			}
		}

	}
	return nil
}
