/*
 * traj.go, part of interaph.
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
	"path/filepath"
	"strings"

	chem "github.com/rmera/interaph"
	"github.com/rmera/interaph/traj/dcd"
	"github.com/rmera/interaph/traj/mdcrd"
	"github.com/rmera/interaph/traj/stf"
)

// OpenStructure reads a PDB or GRO file, chosen by extension.
func OpenStructure(name string) (*chem.Molecule, error) {
	var mol *chem.Molecule
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdb", ".ent":
		mol, err = chem.PDBFileRead(name)
	case ".gro":
		mol, err = chem.GroFileRead(name)
	default:
		return nil, newError(ConfigError, ErrFormat, "OpenStructure", "unknown structure format for %s", name)
	}
	if err != nil {
		e := dataError(err, "OpenStructure")
		if ie, ok := e.(*Error); ok && ie.filename == "" {
			ie.filename = name
		}
		return nil, e
	}
	return mol, nil
}

// OpenTrajectory opens a trajectory file for reading, with the format given
// by its extension: DCD (.dcd, also gzip, lzw or zstd compressed as .dcd.gz,
// .dcd.lzw and .dcd.zst), STF (.stf, .stz, .stl, .str), ASCII Amber (.mdcrd,
// .crd) or a multi-model structure (.pdb, .gro). natoms is the number of atoms
// of the topology. A trajectory with a different number of atoms gives a
// DataError wrapping ErrMismatch. If natoms is 0 the size is not checked, but
// mdcrd files, which don't record it, can't be opened. It returns the
// trajectory and a function that closes it.
func OpenTrajectory(name string, natoms int) (chem.Traj, func(), error) {
	t, closer, err := openTrajectory(name, natoms)
	if err != nil {
		return nil, nil, err
	}
	if natoms > 0 && t.Len() != natoms {
		closer()
		e := newError(DataError, ErrMismatch, "OpenTrajectory", "trajectory has %d atoms, the topology %d", t.Len(), natoms)
		e.filename = name
		return nil, nil, e
	}
	return t, closer, nil
}

func openTrajectory(name string, natoms int) (chem.Traj, func(), error) {
	lower := strings.ToLower(name)
	base := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSuffix(lower, ".gz"), ".lzw"), ".zst")
	switch {
	case strings.HasSuffix(base, ".dcd"):
		t, err := dcd.New(name)
		if err != nil {
			return nil, nil, dataError(err, "OpenTrajectory")
		}
		return t, t.Close, nil
	case strings.HasSuffix(lower, ".stf"), strings.HasSuffix(lower, ".stz"),
		strings.HasSuffix(lower, ".stl"), strings.HasSuffix(lower, ".str"):
		t, _, err := stf.New(name)
		if err != nil {
			return nil, nil, dataError(err, "OpenTrajectory")
		}
		return t, t.Close, nil
	case strings.HasSuffix(lower, ".mdcrd"), strings.HasSuffix(lower, ".crd"):
		t, err := mdcrd.New(name, natoms)
		if err != nil {
			return nil, nil, dataError(err, "OpenTrajectory")
		}
		return t, t.Close, nil
	}
	mol, err := OpenStructure(name)
	if err != nil {
		return nil, nil, errDecorate(err, "OpenTrajectory")
	}
	return mol, func() {}, nil
}

// Frames returns a trajectory over the coordinates of mol, starting at
// the first one. Each call gives an independent reader.
func Frames(mol *chem.Molecule) (chem.Traj, error) {
	m, err := chem.NewMolecule(mol.Topology, mol.Coords, nil)
	if err != nil {
		return nil, newError(DataError, err, "Frames", "%v", err)
	}
	return m, nil
}
