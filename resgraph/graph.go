/*
 * graph.go, part of interaph.
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

// Package resgraph represents an interaction network as a gonum weighted
// undirected graph, with residues as nodes and interactions as edges.
package resgraph

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	chem "github.com/rmera/interaph"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// Node is a residue in the graph. It implements graph.Node.
type Node struct {
	*chem.Residue
	Label string
	id    int64
}

// ID returns the position of the residue in the list the graph was built from.
func (N *Node) ID() int64 {
	return N.id
}

// Edge is an interaction between two residues, with the node of lower ID first.
type Edge struct {
	From, To *Node
	Weight   float64
}

// Graph implements gonum's graph.Graph and graph.Weighted interfaces.
type Graph struct {
	*simple.WeightedUndirectedGraph
	nodes []*Node
}

// New returns a graph with one node per residue and no edges.
// label gives the node labels, used when writing the graph.
func New(residues []*chem.Residue, label func(*chem.Residue) string) *Graph {
	G := &Graph{WeightedUndirectedGraph: simple.NewWeightedUndirectedGraph(0, 0)}
	for i, r := range residues {
		n := &Node{Residue: r, Label: label(r), id: int64(i)}
		G.nodes = append(G.nodes, n)
		G.AddNode(n)
	}
	return G
}

// FromMatrix builds a graph from a symmetric adjacency matrix with one row per
// residue. Elements with absolute value larger than threshold become edges.
func FromMatrix(residues []*chem.Residue, label func(*chem.Residue) string, m mat.Symmetric, threshold float64) (*Graph, error) {
	if m.SymmetricDim() != len(residues) {
		return nil, fmt.Errorf("interaph/resgraph: %d residues for a matrix of dimension %d", len(residues), m.SymmetricDim())
	}
	G := New(residues, label)
	for i := range residues {
		for j := i + 1; j < len(residues); j++ {
			w := m.At(i, j)
			if w > threshold || w < -threshold {
				if err := G.SetWeight(i, j, w); err != nil {
					return nil, err
				}
			}
		}
	}
	return G, nil
}

// Len returns the number of nodes in the graph.
func (G *Graph) Len() int {
	return len(G.nodes)
}

// ResNode returns the i-th node. It panics if i is out of range.
func (G *Graph) ResNode(i int) *Node {
	return G.nodes[i]
}

// SetWeight adds or replaces the edge between the residues i and j.
func (G *Graph) SetWeight(i, j int, w float64) error {
	if i < 0 || j < 0 || i >= len(G.nodes) || j >= len(G.nodes) {
		return fmt.Errorf("interaph/resgraph: edge %d-%d out of range", i, j)
	}
	if i == j {
		return fmt.Errorf("interaph/resgraph: self edge requested for %s", G.nodes[i].Label)
	}
	G.SetWeightedEdge(G.NewWeightedEdge(G.nodes[i], G.nodes[j], w))
	return nil
}

// Neighbors returns the nodes that share an edge with node i, ordered by ID.
func (G *Graph) Neighbors(i int) []*Node {
	ns := graph.NodesOf(G.From(int64(i)))
	ret := make([]*Node, 0, len(ns))
	for _, n := range ns {
		ret = append(ret, n.(*Node))
	}
	sort.Slice(ret, func(a, b int) bool { return ret[a].id < ret[b].id })
	return ret
}

// EdgeList returns the edges of the graph ordered by the IDs of their nodes.
func (G *Graph) EdgeList() []Edge {
	var ret []Edge
	it := G.WeightedEdges()
	for it.Next() {
		e := it.WeightedEdge()
		f, t := e.From().(*Node), e.To().(*Node)
		if f.id > t.id {
			f, t = t, f
		}
		ret = append(ret, Edge{From: f, To: t, Weight: e.Weight()})
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].From.id != ret[j].From.id {
			return ret[i].From.id < ret[j].From.id
		}
		return ret[i].To.id < ret[j].To.id
	})
	return ret
}

// WriteEdgeList writes one "label1 label2 weight" line per edge, with prec
// decimal places for the weight.
func (G *Graph) WriteEdgeList(w io.Writer, prec int) error {
	bw := bufio.NewWriter(w)
	for _, e := range G.EdgeList() {
		if _, err := fmt.Fprintf(bw, "%s %s %.*f\n", e.From.Label, e.To.Label, prec, e.Weight); err != nil {
			return err
		}
	}
	return bw.Flush()
}
