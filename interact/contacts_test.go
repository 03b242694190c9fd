/*
 * contacts_test.go, part of interaph.
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
	"bytes"
	"errors"
	"testing"

	chem "github.com/rmera/interaph"
	"github.com/rmera/interaph/histo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// two leucines whose side chains are 4 A apart in 8 frames out of 10, and 6 A in the rest.
func leucinePair(Te *testing.T) (*chem.Topology, *chem.Molecule) {
	top := testTopology(Te,
		testAtom("A", 1, "LEU", "CA", "C"),
		testAtom("A", 1, "LEU", "CB", "C"),
		testAtom("A", 2, "LEU", "CA", "C"),
		testAtom("A", 2, "LEU", "CB", "C"),
	)
	var frames [][][3]float64
	for i := 0; i < 10; i++ {
		x := 4.0
		if i >= 8 {
			x = 6.0
		}
		frames = append(frames, [][3]float64{{0, -1.5, 0}, {0, 0, 0}, {x, -1.5, 0}, {x, 0, 0}})
	}
	return top, testMolecule(Te, top, frames...)
}

func TestContactPersistence(Te *testing.T) {
	top, mol := leucinePair(Te)
	groups := SideChainGroups(top, DefaultHCResidues, nil)
	require.Len(Te, groups, 2)
	assert.Equal(Te, []int{1}, groups[0].Atoms)
	dist := histo.NewSet(histo.Dividers(0, 10, 20))
	eng := &ContactEngine{Cutoff: 5.0, Mode: Direct, Dist: dist}
	recs, err := eng.Scan(mol, groups)
	require.NoError(Te, err)
	assert.Equal(Te, 10, recs.Frames)
	rec := recs.Get("A-2LEU", "A-1LEU")
	require.NotNil(Te, rec)
	assert.Equal(Te, 8, rec.Hits)
	assert.InDelta(Te, 80.0, recs.Value(rec), 1e-9)
	assert.Equal(Te, 8, dist.View("A-1LEU A-2LEU").Total())

	asm := NewAssembler(top.Residues())
	assert.Empty(Te, asm.Report(recs, 85).Lines)
	rep := asm.Report(recs, 80)
	require.Len(Te, rep.Lines, 1)
	var b bytes.Buffer
	require.NoError(Te, WriteReport(&b, rep))
	assert.Equal(Te, "A-1LEU A-2LEU 80.0\n", b.String())
	m := asm.Matrix(recs)
	assert.Equal(Te, 80.0, m.At(0, 1))
	assert.Equal(Te, 80.0, m.At(1, 0))
	assert.Equal(Te, 0.0, m.At(0, 0))
}

func TestContactConcurrent(Te *testing.T) {
	top, mol := leucinePair(Te)
	groups := SideChainGroups(top, DefaultHCResidues, nil)
	seq, err := (&ContactEngine{Cutoff: 5.0}).Scan(mol, groups)
	require.NoError(Te, err)
	for _, w := range []int{2, 3, 4, 16} {
		mol.SetCurrent(0)
		conc, err := (&ContactEngine{Cutoff: 5.0, Workers: w}).Scan(mol, groups)
		require.NoError(Te, err)
		assert.Equal(Te, seq.Frames, conc.Frames, "workers %d", w)
		for i, r := range seq.All() {
			assert.Equal(Te, r.Hits, conc.All()[i].Hits, "workers %d", w)
		}
	}
}

func TestContactErrors(Te *testing.T) {
	top, mol := leucinePair(Te)
	groups := SideChainGroups(top, DefaultHCResidues, nil)
	_, err := (&ContactEngine{Cutoff: 0}).Scan(mol, groups)
	require.Error(Te, err)
	assert.Equal(Te, ConfigError, KindOf(err))
	assert.True(Te, errors.Is(err, ErrCutoff))

	recs, err := (&ContactEngine{Cutoff: 5}).Scan(mol, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 0, recs.Len())

	empty := &Group{Label: "A-3LEU"}
	mol.SetCurrent(0)
	_, err = (&ContactEngine{Cutoff: 5}).Scan(mol, append(groups, empty))
	assert.Equal(Te, SelectionError, KindOf(err))
}

func saltBridgeSystem(Te *testing.T) (*chem.Topology, *chem.Molecule, ChargedDefs) {
	top := testTopology(Te,
		testAtom("A", 1, "ASP", "OD1", "O"),
		testAtom("A", 1, "ASP", "OD2", "O"),
		testAtom("A", 7, "LYS", "NZ", "N"),
		testAtom("A", 9, "GLU", "OE1", "O"),
		testAtom("A", 9, "GLU", "OE2", "O"),
		testAtom("A", 11, "SER", "OG", "O"),
	)
	mol := testMolecule(Te, top, [][3]float64{{0, 0, 0}, {1, 0, 0}, {4, 0, 0}, {0, 3.5, 0}, {0, 4.5, 0}, {9, 9, 9}})
	defs := ChargedDefs{
		"ASP": {{Name: "sc.asp.coo-", Sign: -1, Atoms: []string{"OD1", "OD2"}}},
		"GLU": {{Name: "sc.glu.coo-", Sign: -1, Atoms: []string{"OE1", "OE2"}}},
		"LYS": {{Name: "sc.lys.nz+", Sign: 1, Atoms: []string{"NZ"}}},
	}
	return top, mol, defs
}

func TestSaltBridgeModes(Te *testing.T) {
	top, mol, defs := saltBridgeSystem(Te)
	groups := ChargedGroups(top, defs)
	require.Len(Te, groups, 3)
	persistence := make(map[Mode]map[PairKey]float64)
	for _, m := range []Mode{Same, Diff, Both} {
		mol.SetCurrent(0)
		recs, err := (&ContactEngine{Cutoff: 4.5, Mode: m}).Scan(mol, groups)
		require.NoError(Te, err)
		require.Equal(Te, 3, recs.Len())
		persistence[m] = make(map[PairKey]float64)
		for _, r := range recs.All() {
			persistence[m][r.Key] = recs.Value(r)
		}
	}
	aspLys := PairKey{"A-1ASP", "A-7LYS"}
	aspGlu := PairKey{"A-1ASP", "A-9GLU"}
	lysGlu := PairKey{"A-7LYS", "A-9GLU"}
	assert.Equal(Te, 100.0, persistence[Diff][aspLys])
	assert.Equal(Te, 0.0, persistence[Diff][aspGlu])
	assert.Equal(Te, 0.0, persistence[Same][aspLys])
	assert.Equal(Te, 100.0, persistence[Same][aspGlu])
	assert.Equal(Te, 0.0, persistence[Both][lysGlu])
	for k, v := range persistence[Both] {
		assert.GreaterOrEqual(Te, v, persistence[Same][k], k)
		assert.GreaterOrEqual(Te, v, persistence[Diff][k], k)
	}
}

func TestParseMode(Te *testing.T) {
	for s, m := range map[string]Mode{"direct": Direct, "same_charge": Same, "DIFF": Diff, "different_charge": Diff, "all": Both, "both": Both} {
		got, err := ParseMode(s)
		require.NoError(Te, err)
		assert.Equal(Te, m, got, s)
	}
	_, err := ParseMode("opposite")
	assert.Equal(Te, ConfigError, KindOf(err))
}
