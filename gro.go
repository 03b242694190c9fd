/*
 * gro.go, part of interaph.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/interaph/v3"
)

const nm2A = 10.0

// GroFileRead reads the Gromacs gro file groname into a Molecule. Several
// concatenated frames are read as several states of the molecule.
// Coordinates are converted from nm to A.
func GroFileRead(groname string) (*Molecule, error) {
	f, err := os.Open(groname)
	if err != nil {
		return nil, newCError(err.Error(), "GroFileRead")
	}
	defer f.Close()
	mol, err := GroRead(f)
	if err != nil {
		if e, ok := err.(*CError); ok {
			e.filename = groname
			e.format = "gro"
		}
		return nil, errDecorate(err, "GroFileRead")
	}
	return mol, nil
}

// GroRead reads gro-formatted data from r. See GroFileRead.
func GroRead(r io.Reader) (*Molecule, error) {
	scanner := bufio.NewScanner(r)
	var ats []*Atom
	var coords []*v3.Matrix
	lineno := 0
	next := func() (string, bool) {
		ok := scanner.Scan()
		lineno++
		return scanner.Text(), ok
	}
	for {
		if _, ok := next(); !ok { //title
			break
		}
		nline, ok := next()
		if !ok {
			return nil, newCError(fmt.Sprintf("Truncated frame at line %d", lineno), "GroRead")
		}
		natoms, err := strconv.Atoi(strings.TrimSpace(nline))
		if err != nil {
			return nil, newCError(fmt.Sprintf("Malformed atom count at line %d", lineno), "GroRead")
		}
		first := ats == nil
		if !first && natoms != len(ats) {
			err := newCError(fmt.Sprintf("Frame %d has %d atoms, the first one %d", len(coords)+1, natoms, len(ats)), "GroRead")
			err.wrapped = ErrMismatch
			return nil, err
		}
		c := make([]float64, 0, 3*natoms)
		for i := 0; i < natoms; i++ {
			line, ok := next()
			if !ok || len(line) < 44 {
				return nil, newCError(fmt.Sprintf("Truncated or malformed line %d", lineno), "GroRead")
			}
			xyz, err := readGroCoords(line)
			if err != nil {
				return nil, newCError(fmt.Sprintf("Malformed line %d: %s", lineno, err.Error()), "GroRead")
			}
			c = append(c, xyz...)
			if !first {
				continue
			}
			at := new(Atom)
			at.MolID, err = strconv.Atoi(strings.TrimSpace(line[0:5]))
			if err != nil {
				return nil, newCError(fmt.Sprintf("Malformed residue number at line %d", lineno), "GroRead")
			}
			at.MolName = strings.TrimSpace(line[5:10])
			at.Name = strings.TrimSpace(line[10:15])
			at.ID, _ = strconv.Atoi(strings.TrimSpace(line[15:20])) //wraps at 100000, so we don't rely on it
			fillAtom(at)
			ats = append(ats, at)
		}
		if _, ok := next(); !ok { //box
			return nil, newCError(fmt.Sprintf("Missing box line at line %d", lineno), "GroRead")
		}
		m, _ := v3.NewMatrix(c)
		coords = append(coords, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, newCError(err.Error(), "GroRead")
	}
	if len(ats) == 0 {
		return nil, newCError("No atoms found", "GroRead")
	}
	top, _ := NewTopology(ats)
	return NewMolecule(top, coords, nil)
}

func readGroCoords(line string) ([]float64, error) {
	var err error
	coords := make([]float64, 3)
	for i := 0; i < 3; i++ {
		coords[i], err = strconv.ParseFloat(strings.TrimSpace(line[20+8*i:28+8*i]), 64)
		if err != nil {
			return nil, err
		}
		coords[i] *= nm2A
	}
	return coords, nil
}
