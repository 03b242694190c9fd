/*
 * contacts.go, part of interaph.
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
	"math"
	"strings"

	chem "github.com/rmera/interaph"
	"github.com/rmera/interaph/histo"
	v3 "github.com/rmera/interaph/v3"
)

// Mode is the way the distance between two groups is measured.
type Mode int

const (
	// Direct is the distance between the centroids of the groups.
	Direct Mode = iota
	// Same is the minimum distance between sub-groups of the same sign.
	Same
	// Diff is the minimum distance between sub-groups of opposite sign.
	Diff
	// Both is the minimum distance between any sub-groups.
	Both
)

func (m Mode) String() string {
	return [...]string{"direct", "same", "diff", "both"}[m]
}

// ParseMode converts a mode name to a Mode. Both the short names (same, diff,
// both) and the long ones (same_charge, different_charge, all) are accepted.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "direct":
		return Direct, nil
	case "same", "same_charge":
		return Same, nil
	case "diff", "different_charge":
		return Diff, nil
	case "both", "all":
		return Both, nil
	}
	return 0, newError(ConfigError, nil, "ParseMode", "unknown distance mode %q", s)
}

// admits returns true if two sub-groups with signs a and b are compared in mode m.
func (m Mode) admits(a, b int) bool {
	switch m {
	case Same:
		return a == b
	case Diff:
		return a != b
	}
	return true
}

// ContactEngine counts, for each pair of groups, the frames in which the
// groups are within Cutoff of each other.
type ContactEngine struct {
	Cutoff  float64
	Mode    Mode
	Workers int
	// If not nil, the distances of the pairs in contact are added to Dist,
	// labeled "id1 id2".
	Dist *histo.Set
}

// a pair of sub-group atom lists compared in minimum distance mode.
type subPair struct {
	a, b []int
}

type groupPair struct {
	g1, g2 *Group
	subs   []subPair
}

// pairs returns every pair of distinct groups, in order, with their admissible
// sub-group pairs when a minimum distance mode is used.
func (C *ContactEngine) pairs(groups []*Group) []groupPair {
	var ret []groupPair
	for i, g1 := range groups {
		for _, g2 := range groups[i+1:] {
			p := groupPair{g1: g1, g2: g2}
			if C.Mode != Direct {
				for _, s1 := range g1.Sub {
					for _, s2 := range g2.Sub {
						if C.Mode.admits(s1.Sign, s2.Sign) {
							p.subs = append(p.subs, subPair{s1.Atoms, s2.Atoms})
						}
					}
				}
			}
			ret = append(ret, p)
		}
	}
	return ret
}

// distance returns the distance between the groups of p in the current frame.
// In Direct mode, centroids holds the centroid of each group, in the order of groups.
func (C *ContactEngine) distance(coords *v3.Matrix, p groupPair, centroids *v3.Matrix, cindex map[*Group]int) float64 {
	if C.Mode == Direct {
		return v3.Distance(centroids, cindex[p.g1], centroids, cindex[p.g2])
	}
	min := math.Inf(1)
	for _, s := range p.subs {
		if d := v3.MinDistance(coords, s.a, coords, s.b); d < min {
			min = d
		}
	}
	return min
}

// Distances returns the distance between every pair of groups in coords, in
// the order the pairs are scanned.
func (C *ContactEngine) Distances(coords *v3.Matrix, groups []*Group) []float64 {
	pairs := C.pairs(groups)
	centroids, cindex := C.centroids(coords, groups)
	ret := make([]float64, len(pairs))
	for i, p := range pairs {
		ret[i] = C.distance(coords, p, centroids, cindex)
	}
	return ret
}

func (C *ContactEngine) centroids(coords *v3.Matrix, groups []*Group) (*v3.Matrix, map[*Group]int) {
	if C.Mode != Direct || len(groups) == 0 {
		return nil, nil
	}
	centroids := v3.Zeros(len(groups))
	cindex := make(map[*Group]int, len(groups))
	for i, g := range groups {
		centroids.VecView(i).Centroid(coords, g.Atoms, g.Masses)
		cindex[g] = i
	}
	return centroids, cindex
}

// Scan reads traj to the end and counts, for every pair of groups, the frames
// in which their distance is at most Cutoff. Every pair gets a record, even if
// it never made contact. An empty group list gives empty records.
func (C *ContactEngine) Scan(traj chem.Traj, groups []*Group) (*Records, error) {
	if !(C.Cutoff > 0) {
		return nil, newError(ConfigError, ErrCutoff, "ContactEngine.Scan", "cutoff %g", C.Cutoff)
	}
	for _, g := range groups {
		if len(g.Atoms) == 0 {
			return nil, newError(SelectionError, ErrNoAtoms, "ContactEngine.Scan", "group %s", g.Label)
		}
		if C.Mode == Direct && g.Masses != nil && len(g.Masses) != len(g.Atoms) {
			return nil, newError(ConfigError, nil, "ContactEngine.Scan", "group %s has %d masses for %d atoms", g.Label, len(g.Masses), len(g.Atoms))
		}
		for _, a := range g.Atoms {
			if a < 0 || a >= traj.Len() {
				return nil, newError(DataError, ErrMismatch, "ContactEngine.Scan", "atom %d of group %s is not in the trajectory", a, g.Label)
			}
		}
	}
	recs := newRecords(false)
	pairs := C.pairs(groups)
	for _, p := range pairs {
		recs.add(PairKey{p.g1.Label, p.g2.Label}, p.g1.Index, p.g2.Index)
	}
	eval := func(coords *v3.Matrix) []float64 {
		hits := make([]float64, len(pairs))
		centroids, cindex := C.centroids(coords, groups)
		for i, p := range pairs {
			d := C.distance(coords, p, centroids, cindex)
			if d <= C.Cutoff {
				hits[i] = 1
				if C.Dist != nil {
					C.Dist.Add(fmt.Sprintf("%s %s", p.g1.Label, p.g2.Label), d)
				}
			}
		}
		return hits
	}
	sums, frames, err := scanFrames(traj, C.Workers, len(pairs), eval)
	if err != nil {
		return nil, errDecorate(err, "ContactEngine.Scan")
	}
	recs.Frames = frames
	recs.accumulate(sums)
	return recs, nil
}
