/*
 * config.go, part of interaph.
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
)

// Names of the default data files, relative to the data directory.
const (
	ChargedGroupsName = "charged_groups.ini"
	HBondsName        = "hydrogen_bonds.ini"
	AtomListName      = "kbp_atomlist"
	PotentialName     = "ff.S050.bin64"
	MassesDir         = "ff_masses"
	DefaultForceField = "charmm27"
)

// ContactConfig holds the options of a contact analysis.
type ContactConfig struct {
	Enabled  bool
	Cutoff   float64
	Perco    float64
	Residues []string //residue names, hydrophobic contacts only
	Mode     Mode
	Groups   string //charged groups file, salt bridges only. Empty for the default.
}

// HBondConfig holds the options of the hydrogen bond analysis.
type HBondConfig struct {
	Enabled   bool
	Distance  float64
	Angle     float64
	Perco     float64
	Class     string
	Custom1   string
	Custom2   string
	ByResidue bool   //report residue pairs rather than atom pairs
	Defs      string //donors/acceptors file. Empty for the default.
}

// PotentialConfig holds the options of the statistical potential.
type PotentialConfig struct {
	Enabled       bool
	KbT           float64
	SeqDistCutoff int
	Residues      []string
	InterChain    bool
	AtomList      string //empty for the default
	Table         string //empty for the default
}

// Config is the configuration of a run.
type Config struct {
	DataDir    string
	ForceField string
	Masses     string //masses file, overrides ForceField if not empty
	Workers    int
	HC         ContactConfig
	SB         ContactConfig
	HB         HBondConfig
	KBP        PotentialConfig
}

// DefaultConfig returns the default options, with every analysis disabled.
func DefaultConfig() *Config {
	return &Config{
		ForceField: DefaultForceField,
		Workers:    1,
		HC: ContactConfig{
			Cutoff:   5.0,
			Residues: append([]string(nil), DefaultHCResidues...),
			Mode:     Direct,
		},
		SB: ContactConfig{
			Cutoff: 4.5,
			Mode:   Diff,
		},
		HB: HBondConfig{
			Distance: 3.5,
			Angle:    120,
			Class:    ClassAll,
		},
		KBP: PotentialConfig{
			KbT:      1.0,
			Residues: append([]string(nil), DefaultKBPResidues...),
		},
	}
}

// DataPath returns the path of the data file name, given as a path relative
// to the data directory, unless override is not empty, in which case it is
// returned.
func (C *Config) DataPath(name, override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(C.DataDir, name)
}

// MassesPath returns the path of the masses file.
func (C *Config) MassesPath() string {
	ff := C.ForceField
	if ff == "" {
		ff = DefaultForceField
	}
	return C.DataPath(filepath.Join(MassesDir, ff), C.Masses)
}

// Validate checks the options of the enabled analyses, and sets the hydrogen
// bond class to custom if custom groups were given with another class. It
// returns the warnings produced, if any.
func (C *Config) Validate() ([]string, error) {
	var warnings []string
	if C.Workers < 1 {
		C.Workers = 1
	}
	for _, c := range []struct {
		name string
		cc   *ContactConfig
	}{{"hydrophobic contacts", &C.HC}, {"salt bridges", &C.SB}} {
		if !c.cc.Enabled {
			continue
		}
		if !(c.cc.Cutoff > 0) {
			return warnings, newError(ConfigError, ErrCutoff, "Config.Validate", "%s cutoff %g", c.name, c.cc.Cutoff)
		}
		if c.cc.Perco < 0 || c.cc.Perco > 100 {
			return warnings, newError(ConfigError, nil, "Config.Validate", "%s persistence cutoff %g out of range", c.name, c.cc.Perco)
		}
	}
	if C.HC.Enabled && len(C.HC.Residues) == 0 {
		return warnings, newError(ConfigError, nil, "Config.Validate", "no residues for hydrophobic contacts")
	}
	if C.SB.Enabled && C.SB.Mode == Direct {
		return warnings, newError(ConfigError, nil, "Config.Validate", "salt bridges need a charge mode, not %s", C.SB.Mode)
	}
	if hb := &C.HB; hb.Enabled {
		if !(hb.Distance > 0) {
			return warnings, newError(ConfigError, ErrCutoff, "Config.Validate", "hydrogen bonds distance cutoff %g", hb.Distance)
		}
		if hb.Angle < 0 || hb.Angle > 180 {
			return warnings, newError(ConfigError, nil, "Config.Validate", "hydrogen bonds angle cutoff %g out of range", hb.Angle)
		}
		if hb.Perco < 0 || hb.Perco > 100 {
			return warnings, newError(ConfigError, nil, "Config.Validate", "hydrogen bonds persistence cutoff %g out of range", hb.Perco)
		}
		switch hb.Class {
		case ClassAll, ClassMCMC, ClassMCSC, ClassSCSC, ClassCustom:
		default:
			return warnings, newError(ConfigError, nil, "Config.Validate", "unknown hydrogen bond class %q", hb.Class)
		}
		custom := hb.Custom1 != "" || hb.Custom2 != ""
		if custom && hb.Class != ClassCustom {
			warnings = append(warnings, "custom groups were given: hydrogen bond class set to "+ClassCustom)
			hb.Class = ClassCustom
		}
		if hb.Class == ClassCustom && (hb.Custom1 == "" || hb.Custom2 == "") {
			return warnings, newError(ConfigError, nil, "Config.Validate", "class %s needs two custom groups", ClassCustom)
		}
	}
	if C.KBP.Enabled {
		if !(C.KBP.KbT > 0) {
			return warnings, newError(ConfigError, nil, "Config.Validate", "kbT must be positive, not %g", C.KBP.KbT)
		}
		if C.KBP.SeqDistCutoff < 0 {
			return warnings, newError(ConfigError, nil, "Config.Validate", "negative sequence distance cutoff %d", C.KBP.SeqDistCutoff)
		}
	}
	return warnings, nil
}
