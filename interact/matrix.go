/*
 * matrix.go, part of interaph.
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
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	chem "github.com/rmera/interaph"
	"github.com/rmera/interaph/resgraph"
	"gonum.org/v1/gonum/mat"
)

// Line is one reported pair.
type Line struct {
	ID1, ID2 string
	I, J     int //residue indexes
	Value    float64
}

// Report is the list of reported pairs, sorted by decreasing value.
type Report struct {
	Lines     []Line
	Precision int //decimal places used to write the values
}

// Assembler turns records into reports and adjacency matrices, for a given
// set of residues.
type Assembler struct {
	residues []*chem.Residue
	index    map[string]int
}

// NewAssembler returns an assembler for residues, normally the residues of
// the topology used in the scans.
func NewAssembler(residues []*chem.Residue) *Assembler {
	A := &Assembler{residues: residues, index: make(map[string]int, len(residues))}
	for i, r := range residues {
		A.index[ResidueID(r)] = i
	}
	return A
}

// Len returns the number of residues, i.e. the dimension of the matrices.
func (A *Assembler) Len() int {
	return len(A.residues)
}

// Index returns the position of the residue with identifier id, and false if
// there is no such residue.
func (A *Assembler) Index(id string) (int, bool) {
	i, ok := A.index[id]
	return i, ok
}

// Matrix returns the symmetric matrix with the value of each record in the
// positions of its two residues. It is not filtered. Records should be at most
// one per residue pair (use the residue level records for hydrogen bonds),
// otherwise the last one is kept. Records on the diagonal are ignored.
// Returns nil if there are no residues.
func (A *Assembler) Matrix(recs *Records) *mat.SymDense {
	n := len(A.residues)
	if n == 0 {
		return nil
	}
	m := mat.NewSymDense(n, nil)
	for _, r := range recs.All() {
		if r.I == r.J || r.I < 0 || r.J < 0 || r.I >= n || r.J >= n {
			continue
		}
		m.SetSym(r.I, r.J, recs.Value(r))
	}
	return m
}

// Report returns the pairs to be reported. For persistences, those are the ones
// present in some frame, with persistence of at least perco. For energies, the
// ones with a non-zero value (perco is not used).
func (A *Assembler) Report(recs *Records, perco float64) Report {
	rep := Report{Precision: recs.Precision()}
	for _, r := range recs.All() {
		v := recs.Value(r)
		if recs.Energy {
			if v == 0 {
				continue
			}
		} else if v <= 0 || v < perco {
			continue
		}
		rep.Lines = append(rep.Lines, Line{ID1: r.Key.A, ID2: r.Key.B, I: r.I, J: r.J, Value: v})
	}
	sort.SliceStable(rep.Lines, func(i, j int) bool {
		a, b := rep.Lines[i], rep.Lines[j]
		if a.Value != b.Value {
			return a.Value > b.Value
		}
		if a.ID1 != b.ID1 {
			return a.ID1 < b.ID1
		}
		return a.ID2 < b.ID2
	})
	return rep
}

// Graph returns the residue graph with one edge per reported pair.
func (A *Assembler) Graph(rep Report) (*resgraph.Graph, error) {
	g := resgraph.New(A.residues, ResidueID)
	for _, l := range rep.Lines {
		if l.I == l.J {
			continue
		}
		if err := g.SetWeight(l.I, l.J, l.Value); err != nil {
			return nil, newError(DataError, err, "Assembler.Graph", "pair %s %s: %v", l.ID1, l.ID2, err)
		}
	}
	return g, nil
}

// WriteReport writes one line per reported pair: the two identifiers and the value.
func WriteReport(w io.Writer, rep Report) error {
	b := bufio.NewWriter(w)
	for _, l := range rep.Lines {
		fmt.Fprintf(b, "%s %s %.*f\n", l.ID1, l.ID2, rep.Precision, l.Value)
	}
	if err := b.Flush(); err != nil {
		return newError(DataError, err, "WriteReport", "%v", err)
	}
	return nil
}

// WriteMatrix writes m as rows of space-separated values with prec decimal places.
// A nil matrix writes nothing.
func WriteMatrix(w io.Writer, m mat.Symmetric, prec int) error {
	if m == nil {
		return nil
	}
	b := bufio.NewWriter(w)
	n := m.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatFloat(m.At(i, j), 'f', prec, 64))
		}
		b.WriteByte('\n')
	}
	if err := b.Flush(); err != nil {
		return newError(DataError, err, "WriteMatrix", "%v", err)
	}
	return nil
}

// ReadMatrix reads a matrix written by WriteMatrix. The matrix must be square
// and symmetric.
func ReadMatrix(r io.Reader) (*mat.SymDense, error) {
	var rows [][]float64
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for s.Scan() {
		f := strings.Fields(s.Text())
		if len(f) == 0 {
			continue
		}
		row := make([]float64, len(f))
		for i, v := range f {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, newError(ConfigError, ErrFormat, "ReadMatrix", "row %d: %v", len(rows)+1, err)
			}
			row[i] = x
		}
		rows = append(rows, row)
	}
	if err := s.Err(); err != nil {
		return nil, newError(ConfigError, err, "ReadMatrix", "%v", err)
	}
	n := len(rows)
	if n == 0 {
		return nil, newError(ConfigError, ErrFormat, "ReadMatrix", "empty matrix")
	}
	for i, row := range rows {
		if len(row) != n {
			return nil, newError(ConfigError, ErrFormat, "ReadMatrix", "row %d has %d values, not %d", i+1, len(row), n)
		}
	}
	m := mat.NewSymDense(n, nil)
	for i, row := range rows {
		for j := i; j < n; j++ {
			if row[j] != rows[j][i] {
				return nil, newError(ConfigError, ErrFormat, "ReadMatrix", "not symmetric at %d,%d", i+1, j+1)
			}
			m.SetSym(i, j, row[j])
		}
	}
	return m, nil
}
