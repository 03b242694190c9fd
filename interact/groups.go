/*
 * groups.go, part of interaph.
 *
 * Copyright 2021 Raul Mera <rmera{at}usachDOTcl>
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

package interact

import (
	"fmt"
	"strings"

	chem "github.com/rmera/interaph"
)

// NoChain is the chain name used in identifiers for atoms without chain.
const NoChain = "SYSTEM"

// DefaultHCResidues are the residues considered for hydrophobic contacts by default.
var DefaultHCResidues = []string{"ALA", "VAL", "LEU", "ILE", "PHE", "PRO", "TRP", "MET"}

// main chain atom names, never part of a side chain group.
var mainChainNames = []string{"N", "CA", "C", "O", "OXT", "O1", "O2", "OT1", "OT2", "H", "H1", "H2", "H3", "HN", "HA", "HA2", "HA3"}

// ResidueID returns the identifier of r used in reports, such as A-12ASP.
func ResidueID(r *chem.Residue) string {
	return fmt.Sprintf("%s-%d%s", chainName(r.Chain), r.ID, r.Name)
}

// AtomID returns the identifier of at used in reports, such as A-12SER:OG.
func AtomID(at *chem.Atom) string {
	return fmt.Sprintf("%s-%d%s:%s", chainName(at.Chain), at.MolID, at.MolName, at.Name)
}

func chainName(c string) string {
	if strings.TrimSpace(c) == "" {
		return NoChain
	}
	return c
}

// SubGroup is a signed set of atoms within a Group, such as the carboxylate of an Asp.
type SubGroup struct {
	Name  string
	Sign  int //+1 or -1
	Atoms []int
}

// Group is the set of atoms of one residue that takes part in one kind of
// interaction. Groups are not modified after they are built.
type Group struct {
	Chain   string
	ResID   int
	ResName string
	Label   string //the residue identifier
	Index   int    //position of the residue in the topology
	Atoms   []int
	Masses  []float64 //weights for the centroid, same length as Atoms
	Sub     []SubGroup
}

// ID returns the identifier of the residue the group belongs to.
func (G *Group) ID() string {
	return G.Label
}

func newGroup(r *chem.Residue, index int) *Group {
	return &Group{Chain: r.Chain, ResID: r.ID, ResName: r.Name, Label: ResidueID(r), Index: index}
}

func inUpper(list []string, name string) bool {
	name = strings.ToUpper(name)
	for _, v := range list {
		if strings.ToUpper(v) == name {
			return true
		}
	}
	return false
}

// SideChainGroups returns one centroid group per residue whose name is in
// reslist (case insensitive), made of the side-chain heavy atoms of the residue.
// The centroid weights are taken from masses, or from the element masses for
// atoms masses doesn't have (masses can be nil). Residues without side-chain
// heavy atoms are skipped.
func SideChainGroups(top *chem.Topology, reslist []string, masses MassTable) []*Group {
	var ret []*Group
	for i, r := range top.Residues() {
		if !inUpper(reslist, r.Name) {
			continue
		}
		g := newGroup(r, i)
		for _, a := range r.Atoms {
			at := top.Atom(a)
			if at.Symbol == "H" || inUpper(mainChainNames, at.Name) {
				continue
			}
			m := masses.Mass(at)
			if m <= 0 {
				continue
			}
			g.Atoms = append(g.Atoms, a)
			g.Masses = append(g.Masses, m)
		}
		if len(g.Atoms) == 0 {
			continue
		}
		ret = append(ret, g)
	}
	return ret
}

// ChargedGroups returns one group per residue that has at least one of the charged
// groups defined for its residue name in defs. Each charged group found, i.e. whose
// atom names are all present in the residue, becomes a SubGroup.
func ChargedGroups(top *chem.Topology, defs ChargedDefs) []*Group {
	var ret []*Group
	for i, r := range top.Residues() {
		gdefs, ok := defs[strings.ToUpper(r.Name)]
		if !ok {
			continue
		}
		names := make(map[string]int, len(r.Atoms))
		for _, a := range r.Atoms {
			names[strings.ToUpper(top.Atom(a).Name)] = a
		}
		g := newGroup(r, i)
	defs:
		for _, d := range gdefs {
			sub := SubGroup{Name: d.Name, Sign: d.Sign, Atoms: make([]int, 0, len(d.Atoms))}
			for _, n := range d.Atoms {
				a, ok := names[strings.ToUpper(n)]
				if !ok {
					continue defs
				}
				sub.Atoms = append(sub.Atoms, a)
			}
			g.Sub = append(g.Sub, sub)
			g.Atoms = append(g.Atoms, sub.Atoms...)
		}
		if len(g.Sub) == 0 {
			continue
		}
		ret = append(ret, g)
	}
	return ret
}

// HBondAtoms returns the indexes in selection of the atoms whose names are in names.
func HBondAtoms(top chem.Atomer, selection []int, names []string) []int {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToUpper(n)] = true
	}
	var ret []int
	for _, i := range selection {
		if set[strings.ToUpper(top.Atom(i).Name)] {
			ret = append(ret, i)
		}
	}
	return ret
}

// residueOfAtoms maps each atom index of top to the index of its residue.
func residueOfAtoms(top *chem.Topology) []int {
	ret := make([]int, top.Len())
	for i, r := range top.Residues() {
		for _, a := range r.Atoms {
			ret[a] = i
		}
	}
	return ret
}
