/*
 * hbonds.go, part of interaph.
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
	"sort"

	chem "github.com/rmera/interaph"
	v3 "github.com/rmera/interaph/v3"
)

// Hydrogen bond classes, selecting the atoms that can take part.
const (
	ClassAll    = "all"
	ClassMCMC   = "mc-mc"
	ClassMCSC   = "mc-sc"
	ClassSCSC   = "sc-sc"
	ClassCustom = "custom"
)

// ClassSelections returns the two atom selections for the hydrogen bond class
// class. For ClassCustom, custom1 and custom2 are the selections, and each must
// match at least one atom.
func ClassSelections(top chem.Atomer, class, custom1, custom2 string) ([]int, []int, error) {
	var s1, s2 string
	switch class {
	case ClassAll:
		s1, s2 = "protein", "protein"
	case ClassMCMC:
		s1, s2 = chem.MainChain, chem.MainChain
	case ClassMCSC:
		s1, s2 = chem.MainChain, chem.SideChain
	case ClassSCSC:
		s1, s2 = chem.SideChain, chem.SideChain
	case ClassCustom:
		if custom1 == "" || custom2 == "" {
			return nil, nil, newError(ConfigError, nil, "ClassSelections", "class %s requires two custom groups", ClassCustom)
		}
		s1, s2 = custom1, custom2
	default:
		return nil, nil, newError(ConfigError, nil, "ClassSelections", "unknown hydrogen bond class %q", class)
	}
	var sels [2][]int
	for i, s := range []string{s1, s2} {
		sel, err := chem.Select(top, s)
		if err != nil {
			return nil, nil, newError(ConfigError, err, "ClassSelections", "hydrogen bonds group %d is not valid: %v", i+1, err)
		}
		if len(sel) == 0 && class == ClassCustom {
			return nil, nil, newError(SelectionError, ErrNoAtoms, "ClassSelections", "no atoms in hydrogen bonds group %d", i+1)
		}
		sels[i] = sel
	}
	return sels[0], sels[1], nil
}

// HBondEngine counts the frames in which donor-acceptor pairs form a hydrogen bond.
type HBondEngine struct {
	Distance float64 //maximum donor-acceptor distance
	Angle    float64 //minimum donor-hydrogen-acceptor angle, in degrees
	Workers  int
}

type hbPair struct {
	donor, acceptor int
	hydrogens       []int
	res             int //index of the residue pair record
}

// hydrogens returns the hydrogens bonded to atom i.
func hydrogens(top *chem.Topology, i int) []int {
	var ret []int
	at := top.Atom(i)
	for _, b := range at.Bonds {
		if h := b.Cross(at); h != nil && h.Symbol == "H" {
			ret = append(ret, h.Index())
		}
	}
	sort.Ints(ret)
	return ret
}

// candidates returns the donor-acceptor pairs between sel1 and sel2, in both
// directions, without repetitions or pairs within one residue.
func candidates(top *chem.Topology, resOf []int, sel1, sel2 []int, defs *HBondDefs) [][2]int {
	seen := make(map[[2]int]bool)
	var ret [][2]int
	add := func(donors, acceptors []int) {
		for _, d := range donors {
			for _, a := range acceptors {
				p := [2]int{d, a}
				if d == a || resOf[d] == resOf[a] || seen[p] {
					continue
				}
				seen[p] = true
				ret = append(ret, p)
			}
		}
	}
	add(HBondAtoms(top, sel1, defs.Donors), HBondAtoms(top, sel2, defs.Acceptors))
	add(HBondAtoms(top, sel2, defs.Donors), HBondAtoms(top, sel1, defs.Acceptors))
	return ret
}

// Scan reads traj to the end and counts, for each donor in one selection and
// acceptor in the other, the frames where the donor-acceptor distance is at most
// Distance and the donor-hydrogen-acceptor angle is at least Angle, for any
// hydrogen bonded to the donor. The bonds of top must have been assigned.
// It returns the atom pair records and the residue pair records, where a
// residue pair is counted at most once per frame.
func (H *HBondEngine) Scan(traj chem.Traj, top *chem.Topology, sel1, sel2 []int, defs *HBondDefs) (*Records, *Records, error) {
	if !(H.Distance > 0) {
		return nil, nil, newError(ConfigError, ErrCutoff, "HBondEngine.Scan", "distance cutoff %g", H.Distance)
	}
	if H.Angle < 0 || H.Angle > 180 {
		return nil, nil, newError(ConfigError, ErrCutoff, "HBondEngine.Scan", "angle cutoff %g out of range", H.Angle)
	}
	if defs == nil {
		return nil, nil, newError(ConfigError, nil, "HBondEngine.Scan", "no donor/acceptor definitions")
	}
	if len(sel1) == 0 || len(sel2) == 0 {
		return nil, nil, newError(SelectionError, ErrNoAtoms, "HBondEngine.Scan", "empty selection")
	}
	if err := checkSize(top, traj, "HBondEngine.Scan"); err != nil {
		return nil, nil, err
	}
	resOf := residueOfAtoms(top)
	residues := top.Residues()
	atoms := newRecords(false)
	res := newRecords(false)
	resIndex := make(map[[2]int]int)
	var pairs []hbPair
	for _, c := range candidates(top, resOf, sel1, sel2, defs) {
		d, a := top.Atom(c[0]), top.Atom(c[1])
		ri, rj := resOf[c[0]], resOf[c[1]]
		atoms.add(PairKey{AtomID(d), AtomID(a)}, ri, rj)
		if ri > rj {
			ri, rj = rj, ri
		}
		k, ok := resIndex[[2]int{ri, rj}]
		if !ok {
			k = res.add(PairKey{ResidueID(residues[ri]), ResidueID(residues[rj])}, ri, rj)
			resIndex[[2]int{ri, rj}] = k
		}
		pairs = append(pairs, hbPair{donor: c[0], acceptor: c[1], hydrogens: hydrogens(top, c[0]), res: k})
	}
	natoms := len(pairs)
	minangle := chem.Deg2Rad(H.Angle)
	eval := func(coords *v3.Matrix) []float64 {
		hits := make([]float64, natoms+res.Len())
		for i, p := range pairs {
			if len(p.hydrogens) == 0 || v3.Distance(coords, p.donor, coords, p.acceptor) > H.Distance {
				continue
			}
			for _, h := range p.hydrogens {
				if v3.Angle(coords, p.donor, h, p.acceptor) >= minangle {
					hits[i] = 1
					hits[natoms+p.res] = 1
					break
				}
			}
		}
		return hits
	}
	sums, frames, err := scanFrames(traj, H.Workers, natoms+res.Len(), eval)
	if err != nil {
		return nil, nil, errDecorate(err, "HBondEngine.Scan")
	}
	atoms.Frames, res.Frames = frames, frames
	atoms.accumulate(sums[:natoms])
	res.accumulate(sums[natoms:])
	return atoms, res, nil
}
