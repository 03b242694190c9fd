/*
 * analyze.go, part of interaph.
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
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	chem "github.com/rmera/interaph"
	"github.com/rmera/interaph/histo"
	"github.com/rmera/interaph/interact"
	"github.com/rmera/interaph/internal/store"
	"github.com/rmera/interaph/resgraph"
	"gonum.org/v1/gonum/mat"
)

// options of a run that are not part of interact.Config: file names.
type options struct {
	top, traj, ref string
	workers        int
	verbose        bool
	db             string
	edges          bool
	distNorm       bool
	out            map[string]*outputs
}

// output files of one analysis. Empty names are not written.
type outputs struct {
	report, graph, dist string
}

// analysis is one of the enabled analyses, ready to run.
type analysis struct {
	kind   string
	name   string
	perco  float64
	params map[string]string
	// run scans a trajectory and returns the records to report, and the
	// residue pair records used for the matrix.
	run   func(traj chem.Traj) (*interact.Records, *interact.Records, error)
	dist  *histo.Set
	recs  *interact.Records
	mrecs *interact.Records
}

func parseFlags(args []string, stderr io.Writer) (*interact.Config, *options, error) {
	cfg := interact.DefaultConfig()
	o := &options{out: map[string]*outputs{
		store.KindHC:  {report: "hydrophobic-clusters.dat"},
		store.KindSB:  {report: "salt-bridges.dat"},
		store.KindHB:  {report: "hydrogen-bonds.dat"},
		store.KindKBP: {report: "kb-potential.dat"},
	}}
	fs := flag.NewFlagSet("interaph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	usage(fs, "Usage: interaph -s topology [-t trajectory] [-r reference] [-f] [-b] [-y] [-p] [options]")
	for _, n := range []string{"s", "top"} {
		fs.StringVar(&o.top, n, "", "topology file (PDB or GRO)")
	}
	for _, n := range []string{"t", "trj"} {
		fs.StringVar(&o.traj, n, "", "trajectory file (DCD, STF, mdcrd or multi-model PDB/GRO). The topology coordinates if not given")
	}
	for _, n := range []string{"r", "ref"} {
		fs.StringVar(&o.ref, n, "", "reference structure used to assign bonds. The topology if not given")
	}
	fs.BoolVar(&cfg.HC.Enabled, "f", false, "analyze hydrophobic contacts")
	fs.BoolVar(&cfg.SB.Enabled, "b", false, "analyze salt bridges")
	fs.BoolVar(&cfg.HB.Enabled, "y", false, "analyze hydrogen bonds")
	fs.BoolVar(&cfg.KBP.Enabled, "p", false, "compute the statistical potential")
	fs.StringVar(&cfg.DataDir, "datadir", "", "directory with the default definition files")
	fs.IntVar(&o.workers, "workers", 1, "frames evaluated in parallel by each analysis")
	fs.BoolVar(&o.verbose, "v", false, "verbose output")
	fs.StringVar(&o.db, "db", "", "SQLite database where the reports are archived")
	fs.BoolVar(&o.edges, "edges", false, "also write each requested matrix as an edge list (.edges)")
	fs.BoolVar(&o.distNorm, "dist-norm", false, "normalize the distance distributions before writing them")

	hcres := fs.String("hc-residues", strings.Join(cfg.HC.Residues, ","), "residues for hydrophobic contacts")
	fs.Float64Var(&cfg.HC.Cutoff, "hc-co", cfg.HC.Cutoff, "hydrophobic contacts distance cutoff")
	fs.Float64Var(&cfg.HC.Perco, "hc-perco", cfg.HC.Perco, "hydrophobic contacts persistence cutoff")
	fs.StringVar(&o.out[store.KindHC].report, "hc-dat", o.out[store.KindHC].report, "hydrophobic contacts report file")
	fs.StringVar(&o.out[store.KindHC].graph, "hc-graph", "", "hydrophobic contacts matrix file")
	fs.StringVar(&o.out[store.KindHC].dist, "hc-dist", "", "hydrophobic contacts distance distributions (JSON)")

	sbmode := fs.String("sb-mode", "different_charge", "salt bridges mode: different_charge, same_charge or all")
	fs.Float64Var(&cfg.SB.Cutoff, "sb-co", cfg.SB.Cutoff, "salt bridges distance cutoff")
	fs.Float64Var(&cfg.SB.Perco, "sb-perco", cfg.SB.Perco, "salt bridges persistence cutoff")
	fs.StringVar(&cfg.SB.Groups, "sb-cg-file", "", "charged groups file")
	fs.StringVar(&o.out[store.KindSB].report, "sb-dat", o.out[store.KindSB].report, "salt bridges report file")
	fs.StringVar(&o.out[store.KindSB].graph, "sb-graph", "", "salt bridges matrix file")
	fs.StringVar(&o.out[store.KindSB].dist, "sb-dist", "", "salt bridges distance distributions (JSON)")

	fs.Float64Var(&cfg.HB.Distance, "hb-co", cfg.HB.Distance, "hydrogen bonds donor-acceptor distance cutoff")
	fs.Float64Var(&cfg.HB.Angle, "hb-ang", cfg.HB.Angle, "hydrogen bonds angle cutoff (degrees)")
	fs.Float64Var(&cfg.HB.Perco, "hb-perco", cfg.HB.Perco, "hydrogen bonds persistence cutoff")
	fs.StringVar(&cfg.HB.Class, "hb-class", cfg.HB.Class, "hydrogen bonds class: all, mc-mc, mc-sc, sc-sc or custom")
	fs.StringVar(&cfg.HB.Custom1, "hb-custom-group-1", "", "first custom hydrogen bonds group (selection)")
	fs.StringVar(&cfg.HB.Custom2, "hb-custom-group-2", "", "second custom hydrogen bonds group (selection)")
	fs.StringVar(&cfg.HB.Defs, "hb-ad-file", "", "donors and acceptors file")
	fs.BoolVar(&cfg.HB.ByResidue, "hb-res", false, "report hydrogen bonds by residue pair")
	fs.StringVar(&o.out[store.KindHB].report, "hb-dat", o.out[store.KindHB].report, "hydrogen bonds report file")
	fs.StringVar(&o.out[store.KindHB].graph, "hb-graph", "", "hydrogen bonds matrix file")

	fs.StringVar(&cfg.KBP.Table, "kbp-ff", "", "statistical potential file ("+interact.PotentialName+" in the data directory if not given)")
	fs.StringVar(&cfg.ForceField, "ff-masses", cfg.ForceField, "force field whose masses are used for the centroids, read from "+interact.MassesDir+"/ in the data directory")
	fs.StringVar(&cfg.Masses, "ff-masses-file", "", "masses file, overrides -ff-masses")
	fs.StringVar(&cfg.KBP.AtomList, "kbp-atomlist", "", "statistical potential atom list")
	fs.Float64Var(&cfg.KBP.KbT, "kbp-kbt", cfg.KBP.KbT, "kbT for the statistical potential")
	fs.IntVar(&cfg.KBP.SeqDistCutoff, "kbp-seq-co", cfg.KBP.SeqDistCutoff, "minimum sequence separation for the statistical potential")
	fs.BoolVar(&cfg.KBP.InterChain, "kbp-interchain", false, "also score residue pairs in different chains")
	fs.StringVar(&o.out[store.KindKBP].report, "kbp-dat", o.out[store.KindKBP].report, "statistical potential report file")
	fs.StringVar(&o.out[store.KindKBP].graph, "kbp-graph", "", "statistical potential matrix file")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg.HC.Residues = splitNames(*hcres)
	var err error
	if cfg.SB.Mode, err = interact.ParseMode(*sbmode); err != nil {
		return nil, nil, err
	}
	cfg.Workers = o.workers
	return cfg, o, nil
}

// analyze runs the analyses requested in args. Output files are only
// written if every analysis succeeds.
func analyze(args []string, stderr io.Writer) error {
	cfg, o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	vlog := verboseLogger(o.verbose, stderr)
	warnings, err := cfg.Validate()
	for _, w := range warnings {
		log.Print(w)
	}
	if err != nil {
		return err
	}
	if o.top == "" {
		return errors.New("a topology file is required (-s)")
	}
	if !cfg.HC.Enabled && !cfg.SB.Enabled && !cfg.HB.Enabled && !cfg.KBP.Enabled {
		return errors.New("no analysis requested (-f, -b, -y, -p)")
	}
	mol, err := interact.OpenStructure(o.top)
	if err != nil {
		return err
	}
	vlog.Printf("topology %s: %d atoms, %d residues", o.top, mol.Len(), len(mol.Residues()))
	analyses, err := prepare(cfg, o, mol, vlog)
	if err != nil {
		return err
	}
	var wg sync.WaitGroup
	errs := make([]error, len(analyses))
	for i, a := range analyses {
		wg.Add(1)
		go func(i int, a *analysis) {
			defer wg.Done()
			traj, closer, err := openTraj(o.traj, mol)
			if err != nil {
				errs[i] = err
				return
			}
			defer closer()
			a.recs, a.mrecs, errs[i] = a.run(traj)
			if errs[i] == nil {
				vlog.Printf("%s: %d frames, %d pairs", a.name, a.recs.Frames, a.recs.Len())
			}
		}(i, a)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("%s: %w", analyses[i].name, err)
		}
	}
	return write(o, mol, analyses, vlog)
}

func openTraj(name string, mol *chem.Molecule) (chem.Traj, func(), error) {
	if name == "" {
		t, err := interact.Frames(mol)
		return t, func() {}, err
	}
	return interact.OpenTrajectory(name, mol.Len())
}

// prepare reads the definition files and builds the groups of the enabled analyses.
func prepare(cfg *interact.Config, o *options, mol *chem.Molecule, vlog *log.Logger) ([]*analysis, error) {
	top := mol.Topology
	var ret []*analysis
	ftoa := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
	if cfg.HC.Enabled {
		masses, err := loadMasses(cfg, vlog)
		if err != nil {
			return nil, err
		}
		groups := interact.SideChainGroups(top, cfg.HC.Residues, masses)
		vlog.Printf("hydrophobic contacts: %d groups", len(groups))
		eng := &interact.ContactEngine{Cutoff: cfg.HC.Cutoff, Mode: interact.Direct, Workers: cfg.Workers}
		a := &analysis{kind: store.KindHC, name: "hydrophobic contacts", perco: cfg.HC.Perco,
			params: map[string]string{"cutoff": ftoa(cfg.HC.Cutoff), "perco": ftoa(cfg.HC.Perco), "residues": strings.Join(cfg.HC.Residues, ",")}}
		if o.out[store.KindHC].dist != "" {
			a.dist = histo.NewSet(histo.Dividers(0, cfg.HC.Cutoff, 50))
			eng.Dist = a.dist
		}
		a.run = func(traj chem.Traj) (*interact.Records, *interact.Records, error) {
			r, err := eng.Scan(traj, groups)
			return r, r, err
		}
		ret = append(ret, a)
	}
	if cfg.SB.Enabled {
		defs, err := interact.ChargedGroupsFile(cfg.DataPath(interact.ChargedGroupsName, cfg.SB.Groups))
		if err != nil {
			return nil, err
		}
		groups := interact.ChargedGroups(top, defs)
		vlog.Printf("salt bridges: %d charged residues", len(groups))
		eng := &interact.ContactEngine{Cutoff: cfg.SB.Cutoff, Mode: cfg.SB.Mode, Workers: cfg.Workers}
		a := &analysis{kind: store.KindSB, name: "salt bridges", perco: cfg.SB.Perco,
			params: map[string]string{"cutoff": ftoa(cfg.SB.Cutoff), "perco": ftoa(cfg.SB.Perco), "mode": cfg.SB.Mode.String()}}
		if o.out[store.KindSB].dist != "" {
			a.dist = histo.NewSet(histo.Dividers(0, cfg.SB.Cutoff, 50))
			eng.Dist = a.dist
		}
		a.run = func(traj chem.Traj) (*interact.Records, *interact.Records, error) {
			r, err := eng.Scan(traj, groups)
			return r, r, err
		}
		ret = append(ret, a)
	}
	if cfg.HB.Enabled {
		defs, err := interact.HBondsFile(cfg.DataPath(interact.HBondsName, cfg.HB.Defs))
		if err != nil {
			return nil, err
		}
		sel1, sel2, err := interact.ClassSelections(top, cfg.HB.Class, cfg.HB.Custom1, cfg.HB.Custom2)
		if err != nil {
			return nil, err
		}
		ref := mol
		if o.ref != "" {
			if ref, err = interact.OpenStructure(o.ref); err != nil {
				return nil, err
			}
			if ref.Len() != mol.Len() {
				return nil, fmt.Errorf("reference %s has %d atoms, the topology %d", o.ref, ref.Len(), mol.Len())
			}
		}
		if err := chem.AssignBonds(ref.Coords[0], top); err != nil {
			return nil, err
		}
		eng := &interact.HBondEngine{Distance: cfg.HB.Distance, Angle: cfg.HB.Angle, Workers: cfg.Workers}
		byres := cfg.HB.ByResidue
		a := &analysis{kind: store.KindHB, name: "hydrogen bonds", perco: cfg.HB.Perco,
			params: map[string]string{"distance": ftoa(cfg.HB.Distance), "angle": ftoa(cfg.HB.Angle), "perco": ftoa(cfg.HB.Perco),
				"class": cfg.HB.Class, "by_residue": strconv.FormatBool(byres)}}
		a.run = func(traj chem.Traj) (*interact.Records, *interact.Records, error) {
			atoms, res, err := eng.Scan(traj, top, sel1, sel2, defs)
			if byres {
				return res, res, err
			}
			return atoms, res, err
		}
		ret = append(ret, a)
	}
	if cfg.KBP.Enabled {
		atoms, err := interact.AtomListFile(cfg.DataPath(interact.AtomListName, cfg.KBP.AtomList))
		if err != nil {
			return nil, err
		}
		table, err := interact.SparseFile(cfg.DataPath(interact.PotentialName, cfg.KBP.Table))
		if err != nil {
			return nil, err
		}
		eng := &interact.PotentialEngine{Table: table, AtomList: atoms, Residues: cfg.KBP.Residues,
			SeqDistCutoff: cfg.KBP.SeqDistCutoff, KbT: cfg.KBP.KbT, InterChain: cfg.KBP.InterChain, Workers: cfg.Workers}
		for _, s := range eng.Skipped(top) {
			vlog.Printf("statistical potential: residue %s lacks atoms, skipped", s)
		}
		a := &analysis{kind: store.KindKBP, name: "statistical potential",
			params: map[string]string{"kbt": ftoa(cfg.KBP.KbT), "seq_dist_co": strconv.Itoa(cfg.KBP.SeqDistCutoff)}}
		a.run = func(traj chem.Traj) (*interact.Records, *interact.Records, error) {
			r, err := eng.Scan(traj, top)
			return r, r, err
		}
		ret = append(ret, a)
	}
	return ret, nil
}

// loadMasses reads the masses file of the force field. If none of the options
// that locate it was given and the default file doesn't exist, element masses
// are used instead.
func loadMasses(cfg *interact.Config, vlog *log.Logger) (interact.MassTable, error) {
	name := cfg.MassesPath()
	masses, err := interact.MassesFile(name)
	if err == nil {
		vlog.Printf("masses read from %s", name)
		return masses, nil
	}
	explicit := cfg.Masses != "" || cfg.DataDir != "" || cfg.ForceField != interact.DefaultForceField
	if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	vlog.Printf("masses file %s not found, element masses used for the centroids", name)
	return nil, nil
}

// create opens name for writing and calls f with it.
func create(name string, f func(w io.Writer) error) error {
	fout, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := f(fout); err != nil {
		fout.Close()
		return fmt.Errorf("%s: %w", name, err)
	}
	return fout.Close()
}

// write writes the reports, matrices and distributions of the finished
// analyses, and archives them if a database was given.
func write(o *options, mol *chem.Molecule, analyses []*analysis, vlog *log.Logger) error {
	asm := interact.NewAssembler(mol.Residues())
	var st *store.Store
	if o.db != "" {
		st = store.New(o.db)
		if err := st.Init(context.Background()); err != nil {
			return fmt.Errorf("database %s: %w", o.db, err)
		}
		defer st.Close()
	}
	for _, a := range analyses {
		out := o.out[a.kind]
		rep := asm.Report(a.recs, a.perco)
		if out.report != "" {
			if err := create(out.report, func(w io.Writer) error { return interact.WriteReport(w, rep) }); err != nil {
				return err
			}
			vlog.Printf("%s: %d pairs written to %s", a.name, len(rep.Lines), out.report)
		}
		if out.graph != "" {
			m := asm.Matrix(a.mrecs)
			if err := create(out.graph, func(w io.Writer) error { return interact.WriteMatrix(w, m, a.mrecs.Precision()) }); err != nil {
				return err
			}
			if o.edges && m != nil {
				if err := writeEdges(out.graph+".edges", mol, m, a.mrecs.Precision()); err != nil {
					return err
				}
			}
		}
		if out.dist != "" && a.dist != nil {
			if o.distNorm {
				a.dist.NormalizeAll()
			}
			if err := create(out.dist, a.dist.WriteJSON); err != nil {
				return err
			}
		}
		if st != nil {
			id, err := st.SaveRun(context.Background(), a.kind, a.params, a.recs.Frames, rep)
			if err != nil {
				return fmt.Errorf("database %s: %w", o.db, err)
			}
			vlog.Printf("%s archived as run %s", a.name, id)
		}
	}
	return nil
}

func writeEdges(name string, mol *chem.Molecule, m mat.Symmetric, prec int) error {
	g, err := resgraph.FromMatrix(mol.Residues(), interact.ResidueID, m, 0)
	if err != nil {
		return err
	}
	return create(name, func(w io.Writer) error { return g.WriteEdgeList(w, prec) })
}
