/*
 * stf.go, part of interaph.
 *
 * Copyright 2021 Raul Mera <rauldotmeraatusachdotcl>
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

package stf

import (
	"bufio"
	"compress/lzw"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	v3 "github.com/rmera/interaph/v3"
)

const (
	lzwLitwidth int = 8
	defaultPrec int = 2
)

// StfR is an STF trajectory opened for reading.
type StfR struct {
	f        *os.File
	dec      io.ReadCloser
	h        *bufio.Reader
	natoms   int
	filename string
	prec     int
	readable bool
}

// *zstd.Decoder has a Close without return value.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

func decompressor(name string) func(io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(name)[len(name)-1] {
	case 'l':
		return func(a io.Reader) (io.ReadCloser, error) { return lzw.NewReader(a, lzw.MSB, lzwLitwidth), nil }
	case 'z':
		return func(a io.Reader) (io.ReadCloser, error) { return gzip.NewReader(a) }
	case 'r':
		return func(a io.Reader) (io.ReadCloser, error) { return flate.NewReader(a), nil }
	default:
		return func(a io.Reader) (io.ReadCloser, error) {
			r, err := zstd.NewReader(a)
			if err != nil {
				return nil, err
			}
			return zstdReadCloser{r}, nil
		}
	}
}

func precFromHeader(m map[string]string, filename string) int {
	p, ok := m["prec"]
	if !ok {
		return defaultPrec
	}
	prec, err := strconv.Atoi(p)
	if err != nil || prec < 0 {
		log.Printf("Invalid precision %q for trajectory %s. Will use the default", p, filename)
		return defaultPrec
	}
	return prec
}

// New opens a STF trajectory for reading, and returns the handle, a map with
// the header metadata (empty if there is none) and an error or nil.
func New(name string) (*StfR, map[string]string, error) {
	if name == "" {
		return nil, nil, Error{"empty file name", name, []string{"New"}, true}
	}
	S := &StfR{filename: name, natoms: -1}
	m := make(map[string]string)
	var err error
	S.f, err = os.Open(name)
	if err != nil {
		return nil, nil, Error{err.Error(), name, []string{"os.Open", "New"}, true}
	}
	S.dec, err = decompressor(name)(bufio.NewReader(S.f))
	if err != nil {
		S.f.Close()
		return nil, nil, Error{"Can't open compressed stream: " + err.Error(), name, []string{"New"}, true}
	}
	S.h = bufio.NewReader(S.dec)
	for {
		str, err := S.h.ReadString('\n')
		if err != nil {
			S.closeFiles()
			return nil, nil, Error{"Can't read header: " + err.Error(), name, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			nat := strings.Fields(str)
			if len(nat) < 2 {
				S.closeFiles()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", str), name, []string{"New"}, true}
			}
			S.natoms, err = strconv.Atoi(nat[1])
			if err != nil || S.natoms <= 0 {
				S.closeFiles()
				return nil, nil, Error{fmt.Sprintf("Can't read atom number from '%s'", nat[1]), name, []string{"New"}, true}
			}
			break
		}
		k, v, ok := strings.Cut(str, "=")
		if !ok {
			S.closeFiles()
			return nil, nil, Error{"Malformed header line: " + str, name, []string{"New"}, true}
		}
		m[k] = v
	}
	S.prec = precFromHeader(m, name)
	S.readable = true
	return S, m, nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (S *StfR) Readable() bool {
	return S.readable
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("Ill formated coordinates line: %d fields in %q", len(s), str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("Can't parse coordinate %d (%s): %w", i, v, err)
		}
		temp[i] = float64(f) / p
	}
	return nil
}

// Next puts in c the coordinates for the next frame of the trajectory
// and, if given and present in the file, the box vectors in box.
// If c is nil the frame is read and checked, but discarded.
// The end of the trajectory is signaled with a chem.LastFrameError.
func (S *StfR) Next(c *v3.Matrix, box ...[]float64) error {
	if !S.readable {
		return Error{TrajUnIniRead, S.filename, []string{"Next"}, true}
	}
	var temp [3]float64
	for i := 0; i < S.natoms; i++ {
		b, err := S.h.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && i == 0 && b == "" {
				S.Close()
				return newlastFrameError(S.filename, "Next")
			}
			return Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if err = coordsDecode(strings.TrimSuffix(b, "\n"), &temp, S.prec); err != nil {
			return Error{err.Error(), S.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := S.h.ReadString('\n')
	if err != nil && s == "" {
		return Error{"Can't read the frame termination mark: " + err.Error(), S.filename, []string{"Next"}, true}
	}
	if s[0] != '*' {
		return Error{WrongFormat + ": wrong number of atoms in frame", S.filename, []string{"Next"}, true}
	}
	if len(box) > 0 && len(box[0]) >= 9 {
		S.readBox(strings.Fields(s), box[0])
	}
	return nil
}

// readBox fills box from the frame termination line. A missing or
// malformed box leaves zeros and is only logged.
func (S *StfR) readBox(fields []string, box []float64) {
	if len(fields) < 10 {
		log.Printf("Trajectory file %s does not contain (correct) box information", S.filename)
		return
	}
	for j, v := range fields[1:10] {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Printf("Failed to read box in a frame from %s", S.filename)
			for i := range box {
				box[i] = 0
			}
			return
		}
		box[j] = f
	}
}

func (S *StfR) closeFiles() {
	if S.dec != nil {
		S.dec.Close()
	}
	if S.f != nil {
		S.f.Close()
	}
}

// Close closes the object, and marks it as unreadable
func (S *StfR) Close() {
	if !S.readable {
		return
	}
	S.closeFiles()
	S.readable = false
}

// Len returns the number of atoms in each frame of the trajectory.
func (S *StfR) Len() int {
	return S.natoms
}

// NextConc reads as many frames as elements frames has, and returns one channel per frame
// through which the corresponding matrix will be transmited. nil elements of frames mean
// that the frame is discarded, and get a nil channel. If the trajectory ends before all the
// requested frames are read, the channels for the read ones are returned with a LastFrameError.
func (S *StfR) NextConc(frames []*v3.Matrix) ([]chan *v3.Matrix, error) {
	if !S.Readable() {
		return nil, Error{TrajUnIniRead, S.filename, []string{"NextConc"}, true}
	}
	framechans := make([]chan *v3.Matrix, 0, len(frames))
	for _, v := range frames {
		if err := S.Next(v); err != nil {
			if _, ok := err.(*lastFrameError); ok && len(framechans) > 0 {
				return framechans, err
			}
			return nil, errDecorate(err, "NextConc")
		}
		if v == nil {
			framechans = append(framechans, nil)
			continue
		}
		pipe := make(chan *v3.Matrix, 1)
		pipe <- v
		framechans = append(framechans, pipe)
	}
	return framechans, nil
}
