/*
 * helpers_test.go, part of interaph.
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
	"testing"

	chem "github.com/rmera/interaph"
	v3 "github.com/rmera/interaph/v3"
	"github.com/stretchr/testify/require"
)

func testAtom(chain string, resid int, resname, name, symbol string) *chem.Atom {
	return &chem.Atom{Chain: chain, MolID: resid, MolName: resname, Name: name, Symbol: symbol}
}

func testTopology(Te *testing.T, atoms ...*chem.Atom) *chem.Topology {
	top, err := chem.NewTopology(atoms)
	require.NoError(Te, err)
	return top
}

// testMolecule returns a trajectory over frames, each a list of positions,
// one per atom of top.
func testMolecule(Te *testing.T, top *chem.Topology, frames ...[][3]float64) *chem.Molecule {
	coords := make([]*v3.Matrix, 0, len(frames))
	for _, f := range frames {
		data := make([]float64, 0, 3*len(f))
		for _, p := range f {
			data = append(data, p[0], p[1], p[2])
		}
		m, err := v3.NewMatrix(data)
		require.NoError(Te, err)
		coords = append(coords, m)
	}
	mol, err := chem.NewMolecule(top, coords, nil)
	require.NoError(Te, err)
	return mol
}

func bond(a, b *chem.Atom) {
	bo := &chem.Bond{At1: a, At2: b}
	a.Bonds = append(a.Bonds, bo)
	b.Bonds = append(b.Bonds, bo)
}
