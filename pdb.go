/*
 * pdb.go, part of interaph.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

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

//Pdb_read family

// parses a valid ATOM or HETATM line of a PDB file, returns an Atom
// object with the info except for the coordinates and b-factors, which  are returned
// separately as an array of 3 float64 and a float64, respectively
func readFullPDBLine(line string, contlines int) (*Atom, []float64, float64, error) {
	if len(line) < 54 {
		return nil, nil, 0, newCError(fmt.Sprintf("Line %d too short for an ATOM record", contlines), "readFullPDBLine")
	}
	err := make([]error, 2) //accumulate errors to check at the end of the read line.
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	atom.ID, _ = strconv.Atoi(strings.TrimSpace(line[6:11])) //large systems often use non-decimal serials
	atom.Name = strings.TrimSpace(line[12:16])
	//PDB says that pos. 21 is for the chain but the residue name
	//often spills into it (CHARMM), so we only take it if there is a space before
	atom.MolName = strings.TrimSpace(line[17:20])
	if line[20] != ' ' && line[21] != ' ' {
		atom.MolName = strings.TrimSpace(line[17:21])
	} else {
		atom.Chain = strings.TrimSpace(line[21:22])
	}
	atom.MolID, err[0] = strconv.Atoi(strings.TrimSpace(line[22:26]))
	coords, err2 := readPDBCoords(line)
	err[1] = err2
	if len(line) >= 60 {
		atom.Occupancy, _ = strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64)
	}
	var bfactor float64
	if len(line) >= 66 {
		bfactor, _ = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	}
	//segment id is used as chain if the latter is missing
	if atom.Chain == "" && len(line) >= 76 {
		atom.Chain = strings.TrimSpace(line[72:76])
	}
	if len(line) >= 78 {
		atom.Symbol = strings.TrimSpace(line[76:78])
		if len(atom.Symbol) > 1 {
			atom.Symbol = atom.Symbol[:1] + strings.ToLower(atom.Symbol[1:])
		}
	}
	for i := range err {
		if err[i] != nil {
			return nil, nil, 0, newCError(fmt.Sprintf("Malformed line %d: %s", contlines, err[i].Error()), "readFullPDBLine")
		}
	}
	fillAtom(atom)
	return atom, coords, bfactor, nil
}

func readPDBCoords(line string) ([]float64, error) {
	var err error
	coords := make([]float64, 3)
	for i := 0; i < 3; i++ {
		coords[i], err = strconv.ParseFloat(strings.TrimSpace(line[30+8*i:38+8*i]), 64)
		if err != nil {
			return nil, err
		}
	}
	return coords, nil
}

// PDBFileRead reads the PDB file pdbname and returns a Molecule, with as many
// frames as models the file has.
func PDBFileRead(pdbname string) (*Molecule, error) {
	pdbfile, err := os.Open(pdbname)
	if err != nil {
		return nil, newCError(err.Error(), "PDBFileRead")
	}
	defer pdbfile.Close()
	mol, err := PDBRead(pdbfile)
	if err != nil {
		if e, ok := err.(*CError); ok {
			e.filename = pdbname
			e.format = "pdb"
		}
		return nil, errDecorate(err, "PDBFileRead")
	}
	return mol, nil
}

// PDBRead reads a PDB from pdb and returns a Molecule, with as many frames as
// models the PDB has. The atomic information is read from the first model only.
// Every other model must have the same number of atoms as the first one.
func PDBRead(pdb io.Reader) (*Molecule, error) {
	molecule := make([]*Atom, 0)
	coords := [][]float64{{}}
	bfactors := [][]float64{{}}
	firstModel := true //are we reading the first model? if not we only save coordinates
	reader := bufio.NewReader(pdb)
	contlines := 0
	for {
		line, err := reader.ReadString('\n')
		contlines++
		if err != nil && err != io.EOF {
			return nil, newCError(err.Error(), "PDBRead")
		}
		if strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM") {
			if !firstModel {
				c, err2 := readPDBCoords(line)
				if err2 != nil {
					return nil, newCError(fmt.Sprintf("Malformed line %d: %s", contlines, err2.Error()), "PDBRead")
				}
				coords[len(coords)-1] = append(coords[len(coords)-1], c...)
				bfactors[len(bfactors)-1] = append(bfactors[len(bfactors)-1], 0)
			} else {
				at, c, bfac, err2 := readFullPDBLine(line, contlines)
				if err2 != nil {
					return nil, errDecorate(err2, "PDBRead")
				}
				molecule = append(molecule, at)
				coords[0] = append(coords[0], c...)
				bfactors[0] = append(bfactors[0], bfac)
			}
		} else if strings.HasPrefix(line, "ENDMDL") {
			if len(molecule) > 0 {
				firstModel = false
			}
		} else if strings.HasPrefix(line, "MODEL") && !firstModel {
			coords = append(coords, []float64{}) //new bunch of coords for a new frame
			bfactors = append(bfactors, []float64{})
		}
		if err == io.EOF {
			break
		}
	}
	if len(molecule) == 0 {
		return nil, newCError("No atoms found", "PDBRead")
	}
	//an ENDMDL-terminated last model leaves no empty frame, but a trailing MODEL record would.
	if len(coords[len(coords)-1]) == 0 {
		coords = coords[:len(coords)-1]
		bfactors = bfactors[:len(bfactors)-1]
	}
	top, _ := NewTopology(molecule)
	mcoords := make([]*v3.Matrix, len(coords))
	for i, c := range coords {
		if len(c) != 3*len(molecule) {
			err := newCError(fmt.Sprintf("Model %d has %d atoms, the first one %d", i+1, len(c)/3, len(molecule)), "PDBRead")
			err.wrapped = ErrMismatch
			return nil, err
		}
		mcoords[i], _ = v3.NewMatrix(c)
	}
	return NewMolecule(top, mcoords, bfactors)
}

//End Pdb_read family

// PDBWrite writes every frame of mol to w as a multi-model PDB. A TER record
// is written whenever the chain changes.
func PDBWrite(w io.Writer, mol *Molecule) error {
	if err := mol.Corrupted(); err != nil {
		return errDecorate(err, "PDBWrite")
	}
	out := bufio.NewWriter(w)
	fmt.Fprint(out, "REMARK     WRITTEN WITH INTERAPH\n")
	for j, coords := range mol.Coords {
		chainprev := mol.Atoms[0].Chain
		fmt.Fprintf(out, "MODEL     %4d\n", j+1)
		for i, at := range mol.Atoms {
			if at.Chain != chainprev {
				fmt.Fprintln(out, "TER")
				chainprev = at.Chain
			}
			first := "ATOM"
			if at.Het {
				first = "HETATM"
			}
			var bfac float64
			if j < len(mol.Bfactors) && i < len(mol.Bfactors[j]) {
				bfac = mol.Bfactors[j][i]
			}
			//names shorter than 4 characters start on the second column of the field
			name := at.Name
			if len(name) < 4 {
				name = " " + name
			} else if len(name) > 4 {
				return newCError(fmt.Sprintf("Atom name %s too long for a PDB", name), "PDBWrite")
			}
			v := coords.VecView(i)
			fmt.Fprintf(out, "%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s  \n", first, i+1, name,
				at.MolName, at.Chain, at.MolID, v.At(0, 0), v.At(0, 1), v.At(0, 2), at.Occupancy, bfac, at.Symbol)
		}
		fmt.Fprint(out, "ENDMDL\n")
	}
	fmt.Fprint(out, "END\n")
	if err := out.Flush(); err != nil {
		return newCError(err.Error(), "PDBWrite")
	}
	return nil
}
