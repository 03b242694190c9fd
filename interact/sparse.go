/*
 * sparse.go, part of interaph.
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
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// NResTypes is the number of residue types in the statistical potential.
const NResTypes = 20

// ResidueTypes are the residue types of the statistical potential, in the
// order used to index the potential file.
var ResidueTypes = [NResTypes]string{"ALA", "ARG", "ASN", "ASP", "CYS", "GLN", "GLU", "GLY", "HIS", "ILE",
	"LEU", "LYS", "MET", "PHE", "PRO", "SER", "THR", "TRP", "TYR", "VAL"}

// DefaultKBPResidues are the residues scored by default: every type but GLY.
var DefaultKBPResidues = []string{"ALA", "ARG", "ASN", "ASP", "CYS", "GLN", "GLU", "HIS", "ILE",
	"LEU", "LYS", "MET", "PHE", "PRO", "SER", "THR", "TRP", "TYR", "VAL"}

// ResTypeIndex returns the index of the residue type name (case insensitive)
// in ResidueTypes.
func ResTypeIndex(name string) (int, bool) {
	name = strings.ToUpper(name)
	for i, v := range ResidueTypes {
		if v == name {
			return i, true
		}
	}
	return -1, false
}

// BinKey packs the bins of the four distances of a residue pair, one byte
// each, the first distance in the lowest byte.
type BinKey uint32

// NewBinKey packs 4 bins into a key.
func NewBinKey(b [4]uint8) BinKey {
	return BinKey(binary.LittleEndian.Uint32(b[:]))
}

// Bins unpacks the key.
func (K BinKey) Bins() [4]uint8 {
	var b [4]uint8
	binary.LittleEndian.PutUint32(b[:], uint32(K))
	return b
}

func (K BinKey) String() string {
	b := K.Bins()
	return fmt.Sprintf("%d-%d-%d-%d", b[0], b[1], b[2], b[3])
}

// SparseEntry is the binned distribution for one ordered pair of residue types.
type SparseEntry struct {
	R1, R2   float64
	P11, P12 float64
	P21, P22 float64
	Cutoff   float64
	Step     float64
	Total    float64
	Bins     map[BinKey]float64
}

// NBins is the number of bins per distance, cutoff/step.
func (S *SparseEntry) NBins() float64 {
	return S.Cutoff / S.Step
}

// Validate checks the invariants of the entry.
func (S *SparseEntry) Validate() error {
	switch {
	case !(S.Step > 0):
		return fmt.Errorf("step %g is not positive", S.Step)
	case !(S.R1 <= S.R2 && S.R2 <= S.Cutoff):
		return fmt.Errorf("breakpoints %g, %g and cutoff %g are not ordered", S.R1, S.R2, S.Cutoff)
	case S.NBins() > math.MaxUint8:
		return fmt.Errorf("%g bins don't fit in a byte", S.NBins())
	}
	nb := S.NBins()
	for k := range S.Bins {
		for _, b := range k.Bins() {
			if float64(b) >= nb {
				return fmt.Errorf("bin key %s out of range", k)
			}
		}
	}
	return nil
}

// Key returns the bin key for the four distances, and false if any of them
// is at or beyond the cutoff.
func (S *SparseEntry) Key(d [4]float64) (BinKey, bool) {
	var b [4]uint8
	for i, v := range d {
		if v >= S.Cutoff || v < 0 {
			return 0, false
		}
		b[i] = uint8(math.Floor(v / S.Step))
	}
	return NewBinKey(b), true
}

// Lookup returns the value stored for key, or 0 if there is none.
func (S *SparseEntry) Lookup(key BinKey) float64 {
	return S.Bins[key]
}

// SparseTable holds the entries of the statistical potential for each
// ordered pair of residue types. Missing pairs are nil.
type SparseTable struct {
	entries [NResTypes * NResTypes]*SparseEntry
}

// Entry returns the entry for the residue types i and j, or nil.
func (T *SparseTable) Entry(i, j int) *SparseEntry {
	if i < 0 || j < 0 || i >= NResTypes || j >= NResTypes {
		return nil
	}
	return T.entries[i*NResTypes+j]
}

// Set puts e as the entry for the residue types i and j, after validating it.
func (T *SparseTable) Set(i, j int, e *SparseEntry) error {
	if i < 0 || j < 0 || i >= NResTypes || j >= NResTypes {
		return newError(ConfigError, ErrFormat, "SparseTable.Set", "residue type pair %d,%d out of range", i, j)
	}
	if err := e.Validate(); err != nil {
		return newError(ConfigError, ErrFormat, "SparseTable.Set", "%s-%s: %v", ResidueTypes[i], ResidueTypes[j], err)
	}
	T.entries[i*NResTypes+j] = e
	return nil
}

// Len returns the number of residue type pairs with an entry.
func (T *SparseTable) Len() int {
	n := 0
	for _, e := range T.entries {
		if e != nil {
			n++
		}
	}
	return n
}

// SparseFile reads a binary statistical potential file.
func SparseFile(fname string) (*SparseTable, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, newError(ConfigError, err, "SparseFile", "can't open potential file: %v", err)
	}
	defer f.Close()
	t, err := ParseSparse(bufio.NewReader(f))
	if e, ok := err.(*Error); ok {
		e.filename = fname
	}
	return t, errDecorate(err, "SparseFile")
}

// the 10 float64 fields of an entry, as stored.
type sparseHeader struct {
	R1, R2, P11, P12, P21, P22 float64
	Cutoff2, InvStep           float64
	Total, Num                 float64
}

type sparseBin struct {
	Key   [4]uint8
	Value float32
}

// ParseSparse reads a binary statistical potential. The stream is little
// endian: 400 int32 counts, one per ordered residue type pair, each 0 or 1.
// Then, for each pair with count 1, 10 float64 (r1, r2, p11, p12, p21, p22,
// the squared cutoff, 1/step, the total and the number of bins) followed by that
// many bins, each 4 key bytes and a float32 value.
func ParseSparse(r io.Reader) (*SparseTable, error) {
	ferr := func(format string, args ...any) error {
		return newError(ConfigError, ErrFormat, "ParseSparse", format, args...)
	}
	var counts [NResTypes * NResTypes]int32
	if err := binary.Read(r, binary.LittleEndian, &counts); err != nil {
		return nil, ferr("can't read the header: %v", err)
	}
	T := new(SparseTable)
	for i, c := range counts {
		switch {
		case c == 0:
			continue
		case c != 1:
			return nil, ferr("%d records for %s-%s", c, ResidueTypes[i/NResTypes], ResidueTypes[i%NResTypes])
		}
		var h sparseHeader
		if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
			return nil, ferr("truncated record %d: %v", i, err)
		}
		if h.Num < 0 || h.Num != math.Trunc(h.Num) || h.Num > math.MaxUint32 || !(h.InvStep > 0) || h.Cutoff2 < 0 {
			return nil, ferr("invalid record %d", i)
		}
		e := &SparseEntry{R1: h.R1, R2: h.R2, P11: h.P11, P12: h.P12, P21: h.P21, P22: h.P22,
			Cutoff: math.Sqrt(h.Cutoff2), Step: 1 / h.InvStep, Total: h.Total, Bins: make(map[BinKey]float64, min(int(h.Num), 1<<16))}
		var b sparseBin
		for j := 0; j < int(h.Num); j++ {
			if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
				return nil, ferr("truncated bins in record %d: %v", i, err)
			}
			e.Bins[NewBinKey(b.Key)] = float64(b.Value)
		}
		if err := T.Set(i/NResTypes, i%NResTypes, e); err != nil {
			return nil, errDecorate(err, "ParseSparse")
		}
	}
	var extra [1]byte
	if _, err := io.ReadFull(r, extra[:]); !errors.Is(err, io.EOF) {
		return nil, ferr("trailing data after the last record")
	}
	return T, nil
}

func sortedKeys(m map[BinKey]float64) []BinKey {
	keys := make([]BinKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// WriteSparse writes T in the layout read by ParseSparse. Bins are written in
// ascending key order.
func WriteSparse(w io.Writer, T *SparseTable) error {
	bw := bufio.NewWriter(w)
	var counts [NResTypes * NResTypes]int32
	for i, e := range T.entries {
		if e != nil {
			counts[i] = 1
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, counts); err != nil {
		return err
	}
	for _, e := range T.entries {
		if e == nil {
			continue
		}
		h := sparseHeader{e.R1, e.R2, e.P11, e.P12, e.P21, e.P22, e.Cutoff * e.Cutoff, 1 / e.Step, e.Total, float64(len(e.Bins))}
		if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
			return err
		}
		for _, k := range sortedKeys(e.Bins) {
			if err := binary.Write(bw, binary.LittleEndian, sparseBin{k.Bins(), float32(e.Bins[k])}); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ReadSparseText reads a potential in text form. Each entry starts with a line
// with the two residue types followed by r1 r2 p11 p12 p21 p22 cutoff step total,
// and continues with one line per bin, with the four bin indexes and the value.
// Empty lines and lines starting with # are ignored.
func ReadSparseText(r io.Reader) (*SparseTable, error) {
	ferr := func(n int, format string, args ...any) error {
		return newError(ConfigError, ErrFormat, "ReadSparseText", "line %d: "+format, append([]any{n}, args...)...)
	}
	T := new(SparseTable)
	var cur *SparseEntry
	var ci, cj int
	flush := func() error {
		if cur == nil {
			return nil
		}
		if T.Entry(ci, cj) != nil {
			return newError(ConfigError, ErrFormat, "ReadSparseText", "repeated entry %s-%s", ResidueTypes[ci], ResidueTypes[cj])
		}
		return T.Set(ci, cj, cur)
	}
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Fields(line)
		if i, ok := ResTypeIndex(f[0]); ok {
			if err := flush(); err != nil {
				return nil, errDecorate(err, "ReadSparseText")
			}
			if len(f) != 11 {
				return nil, ferr(n, "malformed entry header")
			}
			j, ok := ResTypeIndex(f[1])
			if !ok {
				return nil, ferr(n, "unknown residue type %s", f[1])
			}
			var v [9]float64
			for k := range v {
				var err error
				if v[k], err = strconv.ParseFloat(f[k+2], 64); err != nil {
					return nil, ferr(n, "%v", err)
				}
			}
			ci, cj = i, j
			cur = &SparseEntry{R1: v[0], R2: v[1], P11: v[2], P12: v[3], P21: v[4], P22: v[5],
				Cutoff: v[6], Step: v[7], Total: v[8], Bins: make(map[BinKey]float64)}
			continue
		}
		if cur == nil || len(f) != 5 {
			return nil, ferr(n, "bin line outside an entry, or malformed")
		}
		var b [4]uint8
		for k := range b {
			u, err := strconv.ParseUint(f[k], 10, 8)
			if err != nil {
				return nil, ferr(n, "%v", err)
			}
			b[k] = uint8(u)
		}
		val, err := strconv.ParseFloat(f[4], 64)
		if err != nil {
			return nil, ferr(n, "%v", err)
		}
		cur.Bins[NewBinKey(b)] = val
	}
	if err := s.Err(); err != nil {
		return nil, newError(ConfigError, err, "ReadSparseText", "%v", err)
	}
	if err := flush(); err != nil {
		return nil, errDecorate(err, "ReadSparseText")
	}
	return T, nil
}

// WriteSparseText writes T in the form read by ReadSparseText.
func WriteSparseText(w io.Writer, T *SparseTable) error {
	bw := bufio.NewWriter(w)
	for i, e := range T.entries {
		if e == nil {
			continue
		}
		fmt.Fprintf(bw, "%s %s %g %g %g %g %g %g %g %g %g\n", ResidueTypes[i/NResTypes], ResidueTypes[i%NResTypes],
			e.R1, e.R2, e.P11, e.P12, e.P21, e.P22, e.Cutoff, e.Step, e.Total)
		for _, k := range sortedKeys(e.Bins) {
			b := k.Bins()
			fmt.Fprintf(bw, "%d %d %d %d %g\n", b[0], b[1], b[2], b[3], e.Bins[k])
		}
	}
	return bw.Flush()
}
