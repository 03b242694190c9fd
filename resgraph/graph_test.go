/*
 * graph_test.go, part of interaph.
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

package resgraph

import (
	"bytes"
	"fmt"
	"testing"

	chem "github.com/rmera/interaph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testResidues() []*chem.Residue {
	return []*chem.Residue{
		{Chain: "A", ID: 1, Name: "ALA"},
		{Chain: "A", ID: 2, Name: "LEU"},
		{Chain: "A", ID: 3, Name: "ASP"},
		{Chain: "B", ID: 1, Name: "LYS"},
	}
}

func label(r *chem.Residue) string { return fmt.Sprintf("%s-%d%s", r.Chain, r.ID, r.Name) }

func TestResGraphFromMatrix(Te *testing.T) {
	m := mat.NewSymDense(4, []float64{
		0, 50, 0, 0,
		50, 0, 0, 12.5,
		0, 0, 0, 100,
		0, 12.5, 100, 0,
	})
	G, err := FromMatrix(testResidues(), label, m, 20)
	require.NoError(Te, err)
	assert.Equal(Te, 4, G.Len())
	assert.Equal(Te, "B-1LYS", G.ResNode(3).Label)
	edges := G.EdgeList()
	require.Len(Te, edges, 2)
	assert.Equal(Te, "A-1ALA", edges[0].From.Label)
	assert.Equal(Te, "A-2LEU", edges[0].To.Label)
	assert.Equal(Te, "A-3ASP", edges[1].From.Label)
	assert.Equal(Te, "B-1LYS", edges[1].To.Label)
	w, ok := G.Weight(3, 2)
	assert.True(Te, ok)
	assert.Equal(Te, 100.0, w)
	assert.False(Te, G.HasEdgeBetween(1, 3))

	var buf bytes.Buffer
	require.NoError(Te, G.WriteEdgeList(&buf, 1))
	assert.Equal(Te, "A-1ALA A-2LEU 50.0\nA-3ASP B-1LYS 100.0\n", buf.String())

	_, err = FromMatrix(testResidues()[:2], label, m, 0)
	assert.Error(Te, err)
}

func TestResGraphEdges(Te *testing.T) {
	G := New(testResidues(), label)
	require.NoError(Te, G.SetWeight(0, 3, -1.5))
	require.NoError(Te, G.SetWeight(2, 0, 2))
	assert.Error(Te, G.SetWeight(1, 1, 1))
	assert.Error(Te, G.SetWeight(1, 7, 1))
	n := G.Neighbors(0)
	require.Len(Te, n, 2)
	assert.Equal(Te, "ASP", n[0].Name)
	assert.Equal(Te, 1, n[1].Residue.ID)
	//replacing an edge keeps a single one
	require.NoError(Te, G.SetWeight(3, 0, 4))
	w, _ := G.Weight(0, 3)
	assert.Equal(Te, 4.0, w)
	assert.Len(Te, G.EdgeList(), 2)
}
