/*
 * potential.go, part of interaph.
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
	"math"
	"strings"

	chem "github.com/rmera/interaph"
	v3 "github.com/rmera/interaph/v3"
)

// ReferenceModel gives the reference probability of an entry at the distance d.
type ReferenceModel interface {
	PRef(e *SparseEntry, d float64) float64
}

// PiecewiseReference is the linear reference probability of the potential
// files, with one line below R1, another up to R2, and a constant beyond.
type PiecewiseReference struct{}

func (PiecewiseReference) PRef(e *SparseEntry, d float64) float64 {
	switch {
	case d < e.R1:
		return e.P11 + e.P12*d
	case d < e.R2:
		return e.P21 + e.P22*d
	}
	return e.P21 + e.P22*e.R2
}

// PairEnergy returns the energy term of an entry for the four distances
// between the atoms of two residues, ordered a0b0, a0b1, a1b0, a1b1.
// It is zero if any distance is beyond the cutoff, if the bin is not stored,
// or if either probability is not positive.
func PairEnergy(e *SparseEntry, ref ReferenceModel, kbt float64, d [4]float64) float64 {
	if e == nil || !(e.Total > 0) {
		return 0
	}
	key, ok := e.Key(d)
	if !ok {
		return 0
	}
	pobs := e.Lookup(key) / e.Total
	if !(pobs > 0) {
		return 0
	}
	if ref == nil {
		ref = PiecewiseReference{}
	}
	min := math.Min(math.Min(d[0], d[1]), math.Min(d[2], d[3]))
	pref := ref.PRef(e, min)
	if !(pref > 0) {
		return 0
	}
	return -kbt * math.Log(pobs/pref)
}

// PotentialEngine averages over a trajectory the statistical potential
// energy between pairs of residues.
type PotentialEngine struct {
	Table    *SparseTable
	AtomList AtomList
	// Residue types scored. DefaultKBPResidues if nil.
	Residues []string
	// Pairs in the same chain need to be more than this many
	// residues apart to be scored.
	SeqDistCutoff int
	KbT           float64
	InterChain    bool //also score pairs in different chains
	Workers       int
	Reference     ReferenceModel //PiecewiseReference if nil
}

type kbpResidue struct {
	index int //position in the topology
	rtype int
	atoms [2]int
}

type kbpPair struct {
	a, b  [2]int //atoms of the residue with the lower type first
	entry *SparseEntry
}

// eligible returns the residues to be scored, and the identifiers of those
// that were left out for lacking atoms.
func (P *PotentialEngine) eligible(top *chem.Topology) ([]kbpResidue, []string) {
	reslist := P.Residues
	if reslist == nil {
		reslist = DefaultKBPResidues
	}
	var ret []kbpResidue
	var skipped []string
	for i, r := range top.Residues() {
		name := strings.ToUpper(r.Name)
		if !inUpper(reslist, name) {
			continue
		}
		rtype, ok := ResTypeIndex(name)
		names := P.AtomList[name]
		if !ok || len(names) < 2 {
			continue
		}
		res := kbpResidue{index: i, rtype: rtype, atoms: [2]int{-1, -1}}
		for _, a := range r.Atoms {
			n := strings.ToUpper(top.Atom(a).Name)
			if n == strings.ToUpper(names[len(names)-2]) {
				res.atoms[0] = a
			} else if n == strings.ToUpper(names[len(names)-1]) {
				res.atoms[1] = a
			}
		}
		if res.atoms[0] < 0 || res.atoms[1] < 0 {
			skipped = append(skipped, ResidueID(r))
			continue
		}
		ret = append(ret, res)
	}
	return ret, skipped
}

// Skipped returns the identifiers of the residues that would be scored, but
// lack some of the atoms in the atom list.
func (P *PotentialEngine) Skipped(top *chem.Topology) []string {
	_, s := P.eligible(top)
	return s
}

func absInt(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// Scan reads traj to the end and returns, for every eligible pair of residues
// with an entry in the table, the sum over frames of the potential energy.
// Records.Value gives the average.
func (P *PotentialEngine) Scan(traj chem.Traj, top *chem.Topology) (*Records, error) {
	if P.Table == nil || P.AtomList == nil {
		return nil, newError(ConfigError, nil, "PotentialEngine.Scan", "the potential table and the atom list are required")
	}
	if !(P.KbT > 0) {
		return nil, newError(ConfigError, nil, "PotentialEngine.Scan", "kbT must be positive, not %g", P.KbT)
	}
	if P.SeqDistCutoff < 0 {
		return nil, newError(ConfigError, nil, "PotentialEngine.Scan", "negative sequence distance cutoff %d", P.SeqDistCutoff)
	}
	if err := checkSize(top, traj, "PotentialEngine.Scan"); err != nil {
		return nil, err
	}
	residues := top.Residues()
	scored, _ := P.eligible(top)
	recs := newRecords(true)
	var pairs []kbpPair
	for i, r1 := range scored {
		for _, r2 := range scored[i+1:] {
			c1, c2 := residues[r1.index], residues[r2.index]
			if c1.Chain != c2.Chain {
				if !P.InterChain {
					continue
				}
			} else if absInt(c1.ID-c2.ID) <= P.SeqDistCutoff {
				continue
			}
			lo, hi := r1, r2
			if lo.rtype > hi.rtype {
				lo, hi = hi, lo
			}
			e := P.Table.Entry(lo.rtype, hi.rtype)
			if e == nil {
				continue
			}
			recs.add(PairKey{ResidueID(c1), ResidueID(c2)}, r1.index, r2.index)
			pairs = append(pairs, kbpPair{a: lo.atoms, b: hi.atoms, entry: e})
		}
	}
	ref := P.Reference
	if ref == nil {
		ref = PiecewiseReference{}
	}
	eval := func(coords *v3.Matrix) []float64 {
		energies := make([]float64, len(pairs))
		for i, p := range pairs {
			d := [4]float64{
				v3.Distance(coords, p.a[0], coords, p.b[0]),
				v3.Distance(coords, p.a[0], coords, p.b[1]),
				v3.Distance(coords, p.a[1], coords, p.b[0]),
				v3.Distance(coords, p.a[1], coords, p.b[1]),
			}
			energies[i] = PairEnergy(p.entry, ref, P.KbT, d)
		}
		return energies
	}
	sums, frames, err := scanFrames(traj, P.Workers, len(pairs), eval)
	if err != nil {
		return nil, errDecorate(err, "PotentialEngine.Scan")
	}
	recs.Frames = frames
	recs.accumulate(sums)
	return recs, nil
}
