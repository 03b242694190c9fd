/*
 * main_test.go, part of interaph.
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

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/interaph/histo"
	"github.com/rmera/interaph/interact"
	"github.com/rmera/interaph/traj/dcd"
	v3 "github.com/rmera/interaph/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// leucines writes a 10-model PDB with two leucines whose CB atoms are 4 A apart
// in the first 8 models, and 6 A apart in the last 2.
func leucines(Te *testing.T, dir string) string {
	var b strings.Builder
	line := "ATOM  %5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n"
	for m := 0; m < 10; m++ {
		x := 4.0
		if m >= 8 {
			x = 6.0
		}
		fmt.Fprintf(&b, "MODEL     %4d\n", m+1)
		fmt.Fprintf(&b, line, 1, "CA", "LEU", "A", 1, 0.0, -1.5, 0.0, 1.0, 0.0, "C")
		fmt.Fprintf(&b, line, 2, "CB", "LEU", "A", 1, 0.0, 0.0, 0.0, 1.0, 0.0, "C")
		fmt.Fprintf(&b, line, 3, "CA", "LEU", "A", 2, x, -1.5, 0.0, 1.0, 0.0, "C")
		fmt.Fprintf(&b, line, 4, "CB", "LEU", "A", 2, x, 0.0, 0.0, 1.0, 0.0, "C")
		b.WriteString("ENDMDL\n")
	}
	b.WriteString("END\n")
	name := filepath.Join(dir, "leu.pdb")
	require.NoError(Te, os.WriteFile(name, []byte(b.String()), 0o644))
	return name
}

func TestAnalyzeContacts(Te *testing.T) {
	dir := Te.TempDir()
	pdb := leucines(Te, dir)
	dat := filepath.Join(dir, "hc.dat")
	graph := filepath.Join(dir, "hc.mat")
	db := filepath.Join(dir, "runs.db")
	dist := filepath.Join(dir, "hc.json")
	var stderr bytes.Buffer
	err := analyze([]string{"-s", pdb, "-f", "-hc-perco", "50", "-hc-dat", dat, "-hc-graph", graph,
		"-edges", "-db", db, "-workers", "2", "-hc-dist", dist, "-dist-norm", "-v"}, &stderr)
	require.NoError(Te, err, stderr.String())

	rep, err := os.ReadFile(dat)
	require.NoError(Te, err)
	assert.Equal(Te, "A-1LEU A-2LEU 80.0\n", string(rep))
	f, err := os.Open(graph)
	require.NoError(Te, err)
	m, err := interact.ReadMatrix(f)
	f.Close()
	require.NoError(Te, err)
	assert.Equal(Te, 80.0, m.At(1, 0))
	_, err = os.Stat(graph + ".edges")
	assert.NoError(Te, err)
	assert.Contains(Te, stderr.String(), "hydrophobic contacts: 10 frames")

	js, err := os.ReadFile(dist)
	require.NoError(Te, err)
	set := new(histo.Set)
	require.NoError(Te, json.Unmarshal(js, set))
	d := set.View("A-1LEU A-2LEU")
	require.NotNil(Te, d)
	assert.Equal(Te, 8, d.Total())
	assert.True(Te, d.Normalized())
	assert.InDelta(Te, 1.0, d.Sum(), 1e-9)

	var out bytes.Buffer
	require.NoError(Te, runsCmd([]string{"-db", db}, &out))
	fields := strings.Fields(out.String())
	require.NotEmpty(Te, fields)
	assert.Contains(Te, out.String(), "frames=10")
	out.Reset()
	require.NoError(Te, runsCmd([]string{"-db", db, "-run", fields[0]}, &out))
	assert.Equal(Te, "A-1LEU A-2LEU 80.0\n", out.String())

	//a persistence cutoff above the observed one leaves an empty report
	require.NoError(Te, analyze([]string{"-s", pdb, "-f", "-hc-perco", "90", "-hc-dat", dat}, &stderr))
	rep, err = os.ReadFile(dat)
	require.NoError(Te, err)
	assert.Empty(Te, rep)
}

func TestAnalyzeErrors(Te *testing.T) {
	dir := Te.TempDir()
	pdb := leucines(Te, dir)
	var stderr bytes.Buffer
	assert.Error(Te, analyze([]string{"-s", pdb}, &stderr))
	assert.Error(Te, analyze([]string{"-f"}, &stderr))
	assert.Error(Te, analyze([]string{"-s", pdb, "-f", "-hc-co", "-1"}, &stderr))
	assert.Error(Te, analyze([]string{"-s", pdb, "-b", "-sb-mode", "sideways"}, &stderr))
	assert.Error(Te, analyze([]string{"-s", pdb, "-f", "extra"}, &stderr))
	assert.Error(Te, analyze([]string{"-s", filepath.Join(dir, "missing.pdb"), "-f"}, &stderr))

	//nothing is written if an analysis fails
	dat := filepath.Join(dir, "hc.dat")
	err := analyze([]string{"-s", pdb, "-t", filepath.Join(dir, "missing.dcd"), "-f", "-hc-dat", dat}, &stderr)
	assert.Error(Te, err)
	_, err = os.Stat(dat)
	assert.True(Te, os.IsNotExist(err))
}

const sparseText = `# two entries
ALA LEU 3 5 0.02 0.01 0.1 0 10 0.5 100
8 8 8 8 20
2 3 4 5 5.5
GLY GLY 3 3 0.01 0.01 0.01 0.01 10 0.5 40
1 1 1 1 40
`

func TestSparseCmd(Te *testing.T) {
	dir := Te.TempDir()
	txt := filepath.Join(dir, "table.txt")
	bin := filepath.Join(dir, "ff.bin64")
	back := filepath.Join(dir, "back.txt")
	require.NoError(Te, os.WriteFile(txt, []byte(sparseText), 0o644))
	var out bytes.Buffer
	require.NoError(Te, sparseCmd([]string{"-in", txt, "-out", bin}, &out))
	assert.Contains(Te, out.String(), "2 residue type pairs")

	T, err := interact.SparseFile(bin)
	require.NoError(Te, err)
	i, _ := interact.ResTypeIndex("ALA")
	j, _ := interact.ResTypeIndex("LEU")
	e := T.Entry(i, j)
	require.NotNil(Te, e)
	assert.Equal(Te, 100.0, e.Total)
	assert.Len(Te, e.Bins, 2)

	require.NoError(Te, sparseCmd([]string{"-reverse", "-in", bin, "-out", back}, &out))
	T2 := readText(Te, back)
	assert.Equal(Te, T.Len(), T2.Len())
	assert.Equal(Te, e, T2.Entry(i, j))

	assert.Error(Te, sparseCmd([]string{"-in", txt}, &out))
	assert.Error(Te, sparseCmd([]string{"-in", filepath.Join(dir, "none"), "-out", bin}, &out))
}

func readText(Te *testing.T, name string) *interact.SparseTable {
	f, err := os.Open(name)
	require.NoError(Te, err)
	defer f.Close()
	T, err := interact.ReadSparseText(f)
	require.NoError(Te, err)
	return T
}

func TestRunsCmdErrors(Te *testing.T) {
	var out bytes.Buffer
	assert.Error(Te, runsCmd(nil, &out))
	db := filepath.Join(Te.TempDir(), "runs.db")
	require.NoError(Te, runsCmd([]string{"-db", db}, &out))
	assert.Empty(Te, out.String())
	assert.Error(Te, runsCmd([]string{"-db", db, "-run", "nope"}, &out))
}

func TestSplitNames(Te *testing.T) {
	assert.Equal(Te, []string{"ALA", "LEU"}, splitNames(" ala, LEU,,"))
	assert.Nil(Te, splitNames(""))
}

const leuCharged = `
[CHARGED_GROUPS]
sc.leu.cb+ = CB
default_charged_groups =

[RESIDUES]
LEU = sc.leu.cb+
`

func TestAnalyzeSizeMismatch(Te *testing.T) {
	dir := Te.TempDir()
	pdb := leucines(Te, dir)
	cg := filepath.Join(dir, "cg.ini")
	require.NoError(Te, os.WriteFile(cg, []byte(leuCharged), 0o644))
	dat := filepath.Join(dir, "out.dat")
	var stderr bytes.Buffer

	//the structure frames give a salt bridge between the two CB
	require.NoError(Te, analyze([]string{"-s", pdb, "-b", "-sb-mode", "same_charge", "-sb-cg-file", cg, "-sb-dat", dat}, &stderr))
	rep, err := os.ReadFile(dat)
	require.NoError(Te, err)
	assert.Equal(Te, "A-1LEU A-2LEU 80.0\n", string(rep))
	require.NoError(Te, os.Remove(dat))

	//a trajectory with 3 atoms more than the topology
	big := filepath.Join(dir, "big.dcd")
	w, err := dcd.NewWriter(big, 7)
	require.NoError(Te, err)
	for i := 0; i < 3; i++ {
		require.NoError(Te, w.WNext(v3.Zeros(7)))
	}
	require.NoError(Te, w.Close())
	for _, args := range [][]string{
		{"-s", pdb, "-t", big, "-f", "-hc-dat", dat},
		{"-s", pdb, "-t", big, "-b", "-sb-mode", "same_charge", "-sb-cg-file", cg, "-sb-dat", dat},
	} {
		err := analyze(args, &stderr)
		require.Error(Te, err, args)
		assert.True(Te, errors.Is(err, interact.ErrMismatch), err.Error())
		assert.Equal(Te, interact.DataError, interact.KindOf(err))
		_, err = os.Stat(dat)
		assert.True(Te, os.IsNotExist(err), args)
	}
}

// a LEU-LEU entry whose only bin is the one of the frames where the CB are 4 A apart.
const leuTable = `LEU LEU 3 5 0 0 0.25 0 10 1 100
4 4 4 4 50
`

func TestAnalyzePotentialFile(Te *testing.T) {
	dir := Te.TempDir()
	pdb := leucines(Te, dir)
	txt := filepath.Join(dir, "leu.txt")
	pot := filepath.Join(dir, "mypot.bin64")
	atoms := filepath.Join(dir, "atomlist")
	require.NoError(Te, os.WriteFile(txt, []byte(leuTable), 0o644))
	require.NoError(Te, os.WriteFile(atoms, []byte("LEU CA CB\n"), 0o644))
	var out bytes.Buffer
	require.NoError(Te, sparseCmd([]string{"-in", txt, "-out", pot}, &out))

	dat := filepath.Join(dir, "kbp.dat")
	var stderr bytes.Buffer
	require.NoError(Te, analyze([]string{"-s", pdb, "-p", "-kbp-ff", pot, "-kbp-atomlist", atoms, "-kbp-dat", dat}, &stderr), stderr.String())
	rep, err := os.ReadFile(dat)
	require.NoError(Te, err)
	//-ln(0.5/0.25) in 8 of 10 frames
	assert.Equal(Te, "A-1LEU A-2LEU -0.555\n", string(rep))

	//without -kbp-ff the default file is looked up in the data directory
	err = analyze([]string{"-s", pdb, "-p", "-kbp-atomlist", atoms, "-datadir", dir, "-kbp-dat", dat}, &stderr)
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), interact.PotentialName)
}

func TestAnalyzeMasses(Te *testing.T) {
	dir := Te.TempDir()
	pdb := leucines(Te, dir)
	dat := filepath.Join(dir, "hc.dat")
	var stderr bytes.Buffer
	require.NoError(Te, analyze([]string{"-s", pdb, "-f", "-hc-dat", dat, "-v"}, &stderr))
	assert.Contains(Te, stderr.String(), "element masses used")

	//a force field name is looked up under ff_masses in the data directory
	require.NoError(Te, os.Mkdir(filepath.Join(dir, interact.MassesDir), 0o755))
	require.NoError(Te, os.WriteFile(filepath.Join(dir, interact.MassesDir, "amber99"), []byte("LEU CB 12.011\n"), 0o644))
	stderr.Reset()
	require.NoError(Te, analyze([]string{"-s", pdb, "-f", "-hc-dat", dat, "-datadir", dir, "-ff-masses", "amber99", "-v"}, &stderr))
	assert.Contains(Te, stderr.String(), "masses read from "+filepath.Join(dir, interact.MassesDir, "amber99"))
	rep, err := os.ReadFile(dat)
	require.NoError(Te, err)
	assert.Equal(Te, "A-1LEU A-2LEU 80.0\n", string(rep))

	//requested masses must exist
	assert.Error(Te, analyze([]string{"-s", pdb, "-f", "-hc-dat", dat, "-ff-masses", "gromos"}, &stderr))
	assert.Error(Te, analyze([]string{"-s", pdb, "-f", "-hc-dat", dat, "-datadir", filepath.Join(dir, "none")}, &stderr))
	assert.Error(Te, analyze([]string{"-s", pdb, "-f", "-hc-dat", dat, "-ff-masses-file", filepath.Join(dir, "none")}, &stderr))
}
