/*
 * records.go, part of interaph.
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

// PairKey identifies a pair of residues (or atoms). A is the residue with the
// lower index, or the donor for hydrogen bonds between atoms.
type PairKey struct {
	A, B string
}

// Record accumulates the results of one pair over a scan.
type Record struct {
	Key  PairKey
	I, J int     //indexes of the residues of A and B in the topology
	Hits int     //frames in which the interaction was present
	Sum  float64 //accumulated energy, for the potential
}

// Persistence returns the percentage of the frames in which the interaction
// was present, or 0 if frames is 0.
func (R *Record) Persistence(frames int) float64 {
	if frames <= 0 {
		return 0
	}
	return 100 * float64(R.Hits) / float64(frames)
}

// Records is the result of a scan: one Record per candidate pair, in the
// order the pairs were considered, and the number of frames scanned.
type Records struct {
	Frames int
	Energy bool //the records hold energies rather than hit counts
	recs   []*Record
	index  map[PairKey]int
}

func newRecords(energy bool) *Records {
	return &Records{Energy: energy, index: make(map[PairKey]int)}
}

// add appends a record for a pair and returns its position. Records stay
// aligned with the values of the scan even if a key repeats, but Get only finds
// the first one.
func (R *Records) add(key PairKey, i, j int) int {
	R.recs = append(R.recs, &Record{Key: key, I: i, J: j})
	if _, ok := R.index[key]; !ok {
		R.index[key] = len(R.recs) - 1
	}
	return len(R.recs) - 1
}

// accumulate adds the per-pair sums of a scan, in the order of the records.
func (R *Records) accumulate(sums []float64) {
	for i, v := range sums {
		if R.Energy {
			R.recs[i].Sum += v
		} else {
			R.recs[i].Hits += int(v)
		}
	}
}

// Len returns the number of records.
func (R *Records) Len() int {
	return len(R.recs)
}

// All returns the records. They should not be modified.
func (R *Records) All() []*Record {
	return R.recs
}

// Get returns the record for key, or nil. Since keys are ordered, both
// orders are tried.
func (R *Records) Get(a, b string) *Record {
	if n, ok := R.index[PairKey{a, b}]; ok {
		return R.recs[n]
	}
	if n, ok := R.index[PairKey{b, a}]; ok {
		return R.recs[n]
	}
	return nil
}

// Value is the number reported for a record: the persistence, or the
// energy averaged over the frames.
func (R *Records) Value(rec *Record) float64 {
	if !R.Energy {
		return rec.Persistence(R.Frames)
	}
	if R.Frames <= 0 {
		return 0
	}
	return rec.Sum / float64(R.Frames)
}

// Precision is the number of decimal places used to write the values.
func (R *Records) Precision() int {
	if R.Energy {
		return 3
	}
	return 1
}
