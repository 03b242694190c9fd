/*
 * mdcrd.go, part of interaph
 *
 * Copyright 2018 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

// Package mdcrd reads and writes ASCII Amber trajectories (mdcrd). The files
// have a title line followed by the coordinates of each frame, 10 per line in
// 8-character fields. Each frame may be followed by a line with the 3 box lengths.
package mdcrd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	chem "github.com/rmera/interaph"
	v3 "github.com/rmera/interaph/v3"
)

const (
	fieldWidth = 8
	perLine    = 10
)

// Reader is an mdcrd trajectory open for reading. It implements chem.Traj.
type Reader struct {
	natoms   int
	filename string
	file     *os.File
	r        *bufio.Reader
	readable bool
	buf      []float64
}

// New opens the mdcrd file filename, with natoms atoms per frame.
func New(filename string, natoms int) (*Reader, error) {
	if natoms <= 0 {
		return nil, Error{fmt.Sprintf("invalid number of atoms %d", natoms), filename, []string{"New"}, true}
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), filename, []string{"New"}, true}
	}
	R := &Reader{natoms: natoms, filename: filename, file: f, r: bufio.NewReader(f), buf: make([]float64, 0, 3*natoms)}
	//The first line is just a title
	if _, err := R.r.ReadString('\n'); err != nil {
		f.Close()
		return nil, Error{WrongFormat + ": no title line", filename, []string{"New"}, true}
	}
	R.readable = true
	return R, nil
}

// Readable returns true if the object is ready to be read from
// false otherwise. It doesnt guarantee that there is something
// to read.
func (R *Reader) Readable() bool {
	return R.readable
}

// Len returns the number of atoms per frame.
func (R *Reader) Len() int {
	return R.natoms
}

// Close closes the underlying file.
func (R *Reader) Close() {
	R.readable = false
	R.file.Close()
}

// fields parses the fixed-width numbers of line.
func fields(line string) ([]float64, error) {
	line = strings.TrimRight(line, "\r\n")
	var ret []float64
	for i := 0; i < len(line); i += fieldWidth {
		end := min(i+fieldWidth, len(line))
		s := strings.TrimSpace(line[i:end])
		if s == "" {
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		ret = append(ret, f)
	}
	return ret, nil
}

// Next reads the next frame into keep, or discards it if keep is nil. If
// box is given and the frame has box lengths, they are put in box[0].
func (R *Reader) Next(keep *v3.Matrix, box ...[]float64) error {
	if !R.readable {
		return Error{TrajUnIni, R.filename, []string{"Next"}, true}
	}
	want := 3 * R.natoms
	R.buf = R.buf[:0]
	for len(R.buf) < want {
		line, err := R.r.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			R.readable = false
			if len(R.buf) == 0 && err == io.EOF {
				return newlastFrameError(R.filename, "Next")
			}
			if err == io.EOF {
				return Error{fmt.Sprintf("%s: truncated frame, %d of %d coordinates", WrongFormat, len(R.buf), want), R.filename, []string{"Next"}, true}
			}
			return Error{ReadError + ": " + err.Error(), R.filename, []string{"Next"}, true}
		}
		vals, err := fields(line)
		if err != nil {
			R.readable = false
			return Error{WrongFormat + ": " + err.Error(), R.filename, []string{"Next"}, true}
		}
		if len(R.buf)+len(vals) > want {
			R.readable = false
			return Error{fmt.Sprintf("%s: frame line with %d values overflows the frame", WrongFormat, len(vals)), R.filename, []string{"Next"}, true}
		}
		R.buf = append(R.buf, vals...)
	}
	b, err := R.nextBox()
	if err != nil {
		return err
	}
	if b != nil && len(box) > 0 && len(box[0]) >= 3 {
		copy(box[0], b)
	}
	if keep == nil {
		return nil
	}
	if keep.NVecs() != R.natoms {
		return Error{fmt.Sprintf("%s: matrix has %d rows, frame %d atoms", NotEnoughSpace, keep.NVecs(), R.natoms), R.filename, []string{"Next"}, true}
	}
	for i := 0; i < R.natoms; i++ {
		keep.Set(i, 0, R.buf[3*i])
		keep.Set(i, 1, R.buf[3*i+1])
		keep.Set(i, 2, R.buf[3*i+2])
	}
	return nil
}

// nextBox consumes the box line that follows a frame, if there is one. A frame
// line never has exactly 3 values unless the system has a single atom, in
// which case no box is assumed.
func (R *Reader) nextBox() ([]float64, error) {
	if R.natoms == 1 {
		return nil, nil
	}
	peek, err := R.r.Peek(3*fieldWidth + 2)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, Error{ReadError + ": " + err.Error(), R.filename, []string{"nextBox"}, true}
	}
	s := string(peek)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	} else if err == nil {
		return nil, nil //a longer line, so the next frame.
	}
	vals, err := fields(s)
	if err != nil || len(vals) != 3 {
		return nil, nil
	}
	if _, err := R.r.ReadString('\n'); err != nil && err != io.EOF {
		return nil, Error{ReadError + ": " + err.Error(), R.filename, []string{"nextBox"}, true}
	}
	return vals, nil
}

// Writer writes an mdcrd trajectory.
type Writer struct {
	natoms   int
	filename string
	file     *os.File
	w        *bufio.Writer
	buf      []float64
}

// NewWriter creates the mdcrd file filename for frames of natoms atoms, and
// writes the title line.
func NewWriter(filename string, natoms int, title string) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), filename, []string{"NewWriter"}, true}
	}
	W := &Writer{natoms: natoms, filename: filename, file: f, w: bufio.NewWriter(f), buf: make([]float64, 3*natoms)}
	fmt.Fprintln(W.w, strings.ReplaceAll(title, "\n", " "))
	return W, nil
}

// WNext writes the coordinates in coords as a new frame. If box is given,
// its first 3 values are written as the box lengths.
func (W *Writer) WNext(coords *v3.Matrix, box ...[]float64) error {
	if coords.NVecs() != W.natoms {
		return Error{fmt.Sprintf("%d atoms given, %d expected", coords.NVecs(), W.natoms), W.filename, []string{"WNext"}, true}
	}
	for i := 0; i < W.natoms; i++ {
		for j := 0; j < 3; j++ {
			W.buf[3*i+j] = coords.At(i, j)
		}
	}
	if err := W.writeLines(W.buf); err != nil {
		return err
	}
	if len(box) > 0 && len(box[0]) >= 3 {
		return W.writeLines(box[0][:3])
	}
	return nil
}

func (W *Writer) writeLines(vals []float64) error {
	for i, v := range vals {
		s := strconv.FormatFloat(v, 'f', 3, 64)
		if len(s) > fieldWidth {
			return Error{fmt.Sprintf("value %s doesn't fit in the format", s), W.filename, []string{"writeLines"}, true}
		}
		fmt.Fprintf(W.w, "%8s", s)
		if (i+1)%perLine == 0 || i == len(vals)-1 {
			W.w.WriteByte('\n')
		}
	}
	return nil
}

// Close flushes the buffered frames and closes the file.
func (W *Writer) Close() error {
	if err := W.w.Flush(); err != nil {
		W.file.Close()
		return Error{err.Error(), W.filename, []string{"Close"}, true}
	}
	return W.file.Close()
}

//Errors

// Error is the general structure for mdcrd trajectory errors. It fullfills chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("mdcrd file %s error: %s", err.filename, err.message)
}

// Decorate adds new information to the error.
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func (err Error) FileName() string { return err.filename }

func (err Error) Format() string { return "mdcrd" }

func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIni      = "Traj object uninitialized to read"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	WrongFormat    = "Wrong format in the trajectory file or frame"
	NotEnoughSpace = "Not enough space in passed matrix"
)

// lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

// NormalLastFrameTermination does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return "mdcrd" }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, deco: []string{caller}}
}

var (
	_ chem.Traj           = (*Reader)(nil)
	_ chem.LastFrameError = (*lastFrameError)(nil)
	_ chem.TrajError      = Error{}
)
