/*
 * files.go, part of interaph.
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
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	chem "github.com/rmera/interaph"
	"gopkg.in/ini.v1"
)

const (
	cgSection       = "CHARGED_GROUPS"
	resSection      = "RESIDUES"
	defaultGroupKey = "default_charged_groups"
	hbSection       = "HYDROGEN_BONDS"
	acceptorsKey    = "ACCEPTORS"
	donorsKey       = "DONORS"
)

// GroupDef is a charged group definition: a name ending in + or -, and atom names.
type GroupDef struct {
	Name  string
	Sign  int
	Atoms []string
}

// ChargedDefs maps upper-case residue names to the charged groups that can be
// found in them. The default groups come first.
type ChargedDefs map[string][]GroupDef

// HBondDefs holds the names of the atoms that can act as donors and acceptors.
type HBondDefs struct {
	Donors    []string
	Acceptors []string
}

func splitList(s string) []string {
	var ret []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}

func signOf(name string) (int, bool) {
	switch {
	case strings.HasSuffix(name, "+"):
		return 1, true
	case strings.HasSuffix(name, "-"):
		return -1, true
	}
	return 0, false
}

// ChargedGroupsFile reads the charged group definitions from the INI file fname.
func ChargedGroupsFile(fname string) (ChargedDefs, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, newError(ConfigError, err, "ChargedGroupsFile", "can't open charged groups file: %v", err)
	}
	defer f.Close()
	defs, err := ReadChargedGroups(f)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.filename = fname
		}
		return nil, errDecorate(err, "ChargedGroupsFile")
	}
	return defs, nil
}

// ReadChargedGroups parses charged group definitions. The CHARGED_GROUPS section
// maps group names to comma-separated atom names, and its default_charged_groups
// key lists the groups attempted in every residue. The RESIDUES section maps residue
// names to their specific groups. Section and key names are case-insensitive.
func ReadChargedGroups(r io.Reader) (ChargedDefs, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, io.NopCloser(r))
	if err != nil {
		return nil, newError(ConfigError, ErrFormat, "ReadChargedGroups", "malformed charged groups definitions: %v", err)
	}
	cgs, err := cfg.GetSection(cgSection)
	if err != nil {
		return nil, newError(ConfigError, ErrFormat, "ReadChargedGroups", "missing [%s] section", cgSection)
	}
	ress, err := cfg.GetSection(resSection)
	if err != nil {
		return nil, newError(ConfigError, ErrFormat, "ReadChargedGroups", "missing [%s] section", resSection)
	}
	if !cgs.HasKey(defaultGroupKey) {
		return nil, newError(ConfigError, ErrFormat, "ReadChargedGroups", "missing %s key", defaultGroupKey)
	}
	groups := make(map[string]GroupDef)
	for _, k := range cgs.Keys() {
		name := k.Name()
		if name == defaultGroupKey {
			continue
		}
		sign, ok := signOf(name)
		if !ok {
			return nil, newError(ConfigError, ErrFormat, "ReadChargedGroups", "charged group %q must end in + or -", name)
		}
		atoms := splitList(k.String())
		if len(atoms) == 0 {
			return nil, newError(ConfigError, ErrFormat, "ReadChargedGroups", "charged group %q has no atoms", name)
		}
		groups[name] = GroupDef{Name: name, Sign: sign, Atoms: atoms}
	}
	var defaults []GroupDef
	for _, n := range splitList(cgs.Key(defaultGroupKey).String()) {
		g, ok := groups[strings.ToLower(n)]
		if !ok {
			return nil, newError(ConfigError, ErrFormat, "ReadChargedGroups", "default charged group %q is not defined", n)
		}
		defaults = append(defaults, g)
	}
	ret := make(ChargedDefs)
	for _, k := range ress.Keys() {
		res := strings.ToUpper(k.Name())
		defs := append([]GroupDef(nil), defaults...)
		for _, n := range splitList(k.String()) {
			g, ok := groups[strings.ToLower(n)]
			if !ok {
				return nil, newError(ConfigError, ErrFormat, "ReadChargedGroups", "charged group %q of residue %s is not defined", n, res)
			}
			if !hasGroup(defs, g.Name) {
				defs = append(defs, g)
			}
		}
		ret[res] = defs
	}
	return ret, nil
}

func hasGroup(defs []GroupDef, name string) bool {
	for _, d := range defs {
		if d.Name == name {
			return true
		}
	}
	return false
}

// HBondsFile reads donor and acceptor definitions from the INI file fname.
func HBondsFile(fname string) (*HBondDefs, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, newError(ConfigError, err, "HBondsFile", "can't open hydrogen bonds file: %v", err)
	}
	defer f.Close()
	defs, err := ReadHBonds(f)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.filename = fname
		}
		return nil, errDecorate(err, "HBondsFile")
	}
	return defs, nil
}

// ReadHBonds parses the HYDROGEN_BONDS section, with comma-separated
// ACCEPTORS and DONORS atom names.
func ReadHBonds(r io.Reader) (*HBondDefs, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, io.NopCloser(r))
	if err != nil {
		return nil, newError(ConfigError, ErrFormat, "ReadHBonds", "malformed hydrogen bonds definitions: %v", err)
	}
	sec, err := cfg.GetSection(hbSection)
	if err != nil {
		return nil, newError(ConfigError, ErrFormat, "ReadHBonds", "missing [%s] section", hbSection)
	}
	ret := new(HBondDefs)
	for _, k := range []string{acceptorsKey, donorsKey} {
		if !sec.HasKey(k) {
			return nil, newError(ConfigError, ErrFormat, "ReadHBonds", "missing %s key", k)
		}
	}
	ret.Acceptors = splitList(sec.Key(acceptorsKey).String())
	ret.Donors = splitList(sec.Key(donorsKey).String())
	if len(ret.Acceptors) == 0 || len(ret.Donors) == 0 {
		return nil, newError(ConfigError, ErrFormat, "ReadHBonds", "empty donor or acceptor list")
	}
	return ret, nil
}

// MassTable gives force-field masses per residue and atom name. A nil
// MassTable is valid, and gives the element masses.
type MassTable map[string]map[string]float64

// Mass returns the mass of at from the table, or its element mass if the
// table doesn't have it.
func (M MassTable) Mass(at *chem.Atom) float64 {
	if m, ok := M[strings.ToUpper(at.MolName)][strings.ToUpper(at.Name)]; ok {
		return m
	}
	if at.Mass > 0 {
		return at.Mass
	}
	return chem.ElementMass(at.Symbol)
}

// MassesFile reads a force field masses file (see ReadMasses).
func MassesFile(fname string) (MassTable, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, newError(ConfigError, err, "MassesFile", "can't open masses file: %v", err)
	}
	defer f.Close()
	m, err := ReadMasses(f)
	if e, ok := err.(*Error); ok {
		e.filename = fname
	}
	return m, errDecorate(err, "MassesFile")
}

// ReadMasses reads lines with residue name, atom name and mass. Empty lines and
// lines starting with # are ignored.
func ReadMasses(r io.Reader) (MassTable, error) {
	ret := make(MassTable)
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		f := strings.Fields(line)
		if len(f) != 3 {
			return nil, newError(ConfigError, ErrFormat, "ReadMasses", "line %d: expected residue, atom and mass", n)
		}
		m, err := strconv.ParseFloat(f[2], 64)
		if err != nil || m <= 0 {
			return nil, newError(ConfigError, ErrFormat, "ReadMasses", "line %d: invalid mass %q", n, f[2])
		}
		res := strings.ToUpper(f[0])
		if ret[res] == nil {
			ret[res] = make(map[string]float64)
		}
		ret[res][strings.ToUpper(f[1])] = m
	}
	if err := s.Err(); err != nil {
		return nil, newError(ConfigError, err, "ReadMasses", "%v", err)
	}
	return ret, nil
}

// AtomList gives, for each residue type, the ordered atom names used by the
// statistical potential.
type AtomList map[string][]string

// AtomListFile reads an atom list file (see ReadAtomList).
func AtomListFile(fname string) (AtomList, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, newError(ConfigError, err, "AtomListFile", "can't open atom list: %v", err)
	}
	defer f.Close()
	a, err := ReadAtomList(f)
	if e, ok := err.(*Error); ok {
		e.filename = fname
	}
	return a, errDecorate(err, "AtomListFile")
}

// ReadAtomList reads lines with a residue type followed by its atom names.
// Residue types must be among ResidueTypes, and have at least two atoms.
// Text after a # is ignored.
func ReadAtomList(r io.Reader) (AtomList, error) {
	ret := make(AtomList)
	s := bufio.NewScanner(r)
	for n := 1; s.Scan(); n++ {
		line, _, _ := strings.Cut(s.Text(), "#")
		f := strings.Fields(line)
		if len(f) == 0 {
			continue
		}
		res := strings.ToUpper(f[0])
		if _, ok := ResTypeIndex(res); !ok {
			return nil, newError(ConfigError, ErrFormat, "ReadAtomList", "line %d: unknown residue type %s", n, f[0])
		}
		if len(f) < 3 {
			return nil, newError(ConfigError, ErrFormat, "ReadAtomList", "line %d: residue %s needs at least two atoms", n, res)
		}
		ret[res] = f[1:]
	}
	if err := s.Err(); err != nil {
		return nil, newError(ConfigError, err, "ReadAtomList", "%v", err)
	}
	if len(ret) == 0 {
		return nil, newError(ConfigError, ErrFormat, "ReadAtomList", "no residues in atom list")
	}
	return ret, nil
}
