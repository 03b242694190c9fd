/*
 * hbonds_test.go, part of interaph.
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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// acceptor position at 2 A from a hydrogen at (1,0,0), bonded to a donor at the
// origin, with a donor-hydrogen-acceptor angle of deg degrees.
func acceptorAt(deg float64) [3]float64 {
	t := (180 - deg) * math.Pi / 180
	return [3]float64{1 + 2*math.Cos(t), 2 * math.Sin(t), 0}
}

func TestHBondAngle(Te *testing.T) {
	top := testTopology(Te,
		testAtom("A", 1, "SER", "N", "N"),
		testAtom("A", 1, "SER", "H", "H"),
		testAtom("A", 5, "ASP", "OD1", "O"),
	)
	bond(top.Atom(0), top.Atom(1))
	mol := testMolecule(Te, top,
		[][3]float64{{0, 0, 0}, {1, 0, 0}, acceptorAt(150)},
		[][3]float64{{0, 0, 0}, {1, 0, 0}, acceptorAt(100)},
	)
	all := []int{0, 1, 2}
	defs := &HBondDefs{Donors: []string{"N"}, Acceptors: []string{"OD1"}}
	eng := &HBondEngine{Distance: 3.5, Angle: 120}
	atoms, res, err := eng.Scan(mol, top, all, all, defs)
	require.NoError(Te, err)
	require.Equal(Te, 1, atoms.Len())
	rec := atoms.Get("A-1SER:N", "A-5ASP:OD1")
	require.NotNil(Te, rec)
	assert.Equal(Te, 1, rec.Hits)
	assert.InDelta(Te, 50.0, atoms.Value(rec), 1e-9)
	rrec := res.Get("A-1SER", "A-5ASP")
	require.NotNil(Te, rrec)
	assert.Equal(Te, 1, rrec.Hits)
	assert.Equal(Te, 2, res.Frames)

	//the same frames with a looser angle: both count.
	mol.SetCurrent(0)
	eng.Angle = 90
	atoms, _, err = eng.Scan(mol, top, all, all, defs)
	require.NoError(Te, err)
	assert.Equal(Te, 2, atoms.Get("A-1SER:N", "A-5ASP:OD1").Hits)
}

// two donors of one residue bond to two acceptors of another in the same frame:
// two atom pair hits, but one residue pair hit.
func TestHBondResidueExclusive(Te *testing.T) {
	top := testTopology(Te,
		testAtom("A", 1, "SER", "N", "N"),
		testAtom("A", 1, "SER", "H", "H"),
		testAtom("A", 1, "SER", "OG", "O"),
		testAtom("A", 1, "SER", "HG", "H"),
		testAtom("A", 8, "ASP", "OD1", "O"),
		testAtom("A", 8, "ASP", "OD2", "O"),
	)
	bond(top.Atom(0), top.Atom(1))
	bond(top.Atom(2), top.Atom(3))
	frame := [][3]float64{
		{0, 0, 0}, {1, 0, 0},
		{0, 10, 0}, {1, 10, 0},
		{2.9, 0, 0},
		{2.9, 10, 0},
	}
	mol := testMolecule(Te, top, frame, frame, frame)
	s1, s2, err := ClassSelections(top, ClassCustom, "resname SER", "resname ASP")
	require.NoError(Te, err)
	assert.Equal(Te, []int{0, 1, 2, 3}, s1)
	assert.Equal(Te, []int{4, 5}, s2)
	defs := &HBondDefs{Donors: []string{"N", "OG"}, Acceptors: []string{"OD1", "OD2", "OG"}}
	atoms, res, err := (&HBondEngine{Distance: 3.5, Angle: 120, Workers: 2}).Scan(mol, top, s1, s2, defs)
	require.NoError(Te, err)
	assert.Equal(Te, 3, atoms.Get("A-1SER:N", "A-8ASP:OD1").Hits)
	assert.Equal(Te, 3, atoms.Get("A-1SER:OG", "A-8ASP:OD2").Hits)
	assert.Equal(Te, 0, atoms.Get("A-1SER:N", "A-8ASP:OD2").Hits)
	require.Equal(Te, 1, res.Len())
	assert.Equal(Te, 3, res.All()[0].Hits)
	assert.InDelta(Te, 100.0, res.Value(res.All()[0]), 1e-9)
}

func TestHBondErrors(Te *testing.T) {
	top := testTopology(Te, testAtom("A", 1, "SER", "N", "N"), testAtom("A", 2, "SER", "OG", "O"))
	mol := testMolecule(Te, top, [][3]float64{{0, 0, 0}, {3, 0, 0}})
	defs := &HBondDefs{Donors: []string{"N"}, Acceptors: []string{"OG"}}
	_, _, err := (&HBondEngine{Distance: 0, Angle: 120}).Scan(mol, top, []int{0}, []int{1}, defs)
	assert.Equal(Te, ConfigError, KindOf(err))
	_, _, err = (&HBondEngine{Distance: 3.5, Angle: 120}).Scan(mol, top, nil, []int{1}, defs)
	assert.Equal(Te, SelectionError, KindOf(err))

	_, _, err = ClassSelections(top, ClassCustom, "resname LYS", "resname SER")
	assert.Equal(Te, SelectionError, KindOf(err))
	_, _, err = ClassSelections(top, "sc-bb", "", "")
	assert.Equal(Te, ConfigError, KindOf(err))
	s1, s2, err := ClassSelections(top, ClassAll, "", "")
	require.NoError(Te, err)
	assert.Equal(Te, []int{0, 1}, s1)
	assert.Equal(Te, []int{0, 1}, s2)
}
