/*
 * atomicdata.go, part of interaph.
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
	"strings"
	"unicode"
)

// A map for assigning mass to elements.
// Note that just common "bio-elements" are present
var symbolMass = map[string]float64{
	"H":  1.0,
	"C":  12.01,
	"O":  16.00,
	"N":  14.01,
	"P":  30.97,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.30,
	"Cl": 35.45,
	"Na": 22.99,
	"Cu": 63.55,
	"Zn": 65.38,
	"Co": 58.93,
	"Fe": 55.84,
	"Mn": 54.94,
}

// A map for assigning covalent radii to elements
// Values from Cordero et al., 2008 (DOI:10.1039/B801115J)
// Note that just common "bio-elements" are present
var symbolCovrad = map[string]float64{
	"H":  0.4, // 0.31 altered. Since H always has only one bond, a longer radius doesn't matter, the extra bonds get eliminated later.
	"C":  0.76, //the sp3 radius
	"O":  0.66,
	"N":  0.71,
	"P":  1.07,
	"S":  1.05,
	"Se": 1.2,
	"K":  2.03,
	"Ca": 1.76,
	"Mg": 1.41,
	"Cl": 1.02,
	"Na": 1.66,
	"Cu": 1.32,
	"Zn": 1.22,
	"Co": 1.5,  // hs
	"Fe": 1.52, //hs
	"Mn": 1.61, //hs
}

// A map for checking that atoms don't
// have too many bonds. A value of 0 means
// undefined, i.e. that this atom shouldn't
// be checked for max bonds.
var symbolMaxBonds = map[string]int{
	"H": 1, //this is the only one truly important.
	"C": 4,
	"O": 2,
}

// A map between 3-letters name for aminoacidic residues to the corresponding 1-letter names.
// Common protonation-state variants are included.
var three2OneLetter = map[string]byte{
	"SER": 'S',
	"THR": 'T',
	"ASN": 'N',
	"GLN": 'Q',
	"SEC": 'U', //Selenocysteine!
	"CYS": 'C',
	"CYX": 'C',
	"GLY": 'G',
	"PRO": 'P',
	"ALA": 'A',
	"VAL": 'V',
	"ILE": 'I',
	"LEU": 'L',
	"MET": 'M',
	"PHE": 'F',
	"TYR": 'Y',
	"TRP": 'W',
	"ARG": 'R',
	"HIS": 'H',
	"HID": 'H',
	"HIE": 'H',
	"HIP": 'H',
	"HSD": 'H',
	"HSE": 'H',
	"HSP": 'H',
	"LYS": 'K',
	"ASP": 'D',
	"GLU": 'E',
}

// IsAminoacid returns true if resname (case insensitive) is the name of an aminoacidic residue.
func IsAminoacid(resname string) bool {
	_, ok := three2OneLetter[strings.ToUpper(resname)]
	return ok
}

// ElementMass returns the mass for the element symbol, or 0 if it is not known.
func ElementMass(symbol string) float64 {
	return symbolMass[symbol]
}

// symbolFromName tries to guess a chemical element symbol from a PDB atom name.
// Mostly based on AMBER and CHARMM names, only common bio-elements are considered.
// It returns an empty string if it can't guess.
func symbolFromName(name string) string {
	name = strings.TrimLeftFunc(strings.ToUpper(name), unicode.IsDigit)
	if name == "" {
		return ""
	}
	switch {
	case name[0] == 'H':
		return "H"
	case name == "CU":
		return "Cu"
	case name == "CL" || name == "CLA":
		return "Cl"
	case name == "NA" || name == "SOD":
		return "Na"
	case name == "SE":
		return "Se"
	case strings.HasPrefix(name, "ZN"):
		return "Zn"
	case strings.HasPrefix(name, "MG"):
		return "Mg"
	case strings.HasPrefix(name, "FE"):
		return "Fe"
	case name[0] == 'C':
		return "C"
	case name[0] == 'N':
		return "N"
	case name[0] == 'O':
		return "O"
	case name[0] == 'P':
		return "P"
	case name[0] == 'S':
		return "S"
	case name[0] == 'K' || name == "POT":
		return "K"
	}
	return ""
}

// fillAtom completes the symbol, mass and one-letter residue name of at, where possible.
func fillAtom(at *Atom) {
	if at.Symbol == "" {
		at.Symbol = symbolFromName(at.Name)
	}
	if at.Mass == 0 {
		at.Mass = symbolMass[at.Symbol]
	}
	at.MolName1 = three2OneLetter[at.MolName]
}
