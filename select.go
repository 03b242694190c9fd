/*
 * select.go, part of interaph.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package chem

import (
	"fmt"
	"strconv"
	"strings"
)

// Backbone contains the names of the protein backbone atoms.
var Backbone = []string{"N", "CA", "C", "O"}

// MainChain is the selection for the protein main chain, including
// terminal atoms and amide hydrogens.
const MainChain = "backbone or name H or name H1 or name H2 or name H3 or name O1 or name O2 or name OXT"

// SideChain is the selection for the protein side chains.
const SideChain = "protein and not (" + MainChain + ")"

type predicate func(at *Atom) bool

// Select returns the sorted indexes of the atoms in mol that match the selection
// sel. The language is a small subset of the usual one in MD analysis:
//
//	all, protein, backbone
//	name N1 N2 ..., resname R1 R2 ..., chain C1 C2 ..., element E1 E2 ...
//	resid 5 7-12 ...
//	and, or, not and parentheses, with the usual precedence
//
// Names and residue names are case sensitive, as in the structure files.
func Select(mol Atomer, sel string) ([]int, error) {
	p := &selParser{tokens: tokenizeSel(sel)}
	pred, err := p.or()
	if err != nil {
		return nil, errDecorate(err, "Select")
	}
	if p.pos != len(p.tokens) {
		return nil, newCError(fmt.Sprintf("Unexpected token %q in selection %q", p.tokens[p.pos], sel), "Select")
	}
	ret := make([]int, 0, mol.Len()/4)
	for i := 0; i < mol.Len(); i++ {
		if pred(mol.Atom(i)) {
			ret = append(ret, i)
		}
	}
	return ret, nil
}

func tokenizeSel(sel string) []string {
	sel = strings.ReplaceAll(sel, "(", " ( ")
	sel = strings.ReplaceAll(sel, ")", " ) ")
	return strings.Fields(sel)
}

type selParser struct {
	tokens []string
	pos    int
}

func (p *selParser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func isSelKeyword(t string) bool {
	switch t {
	case "and", "or", "not", "(", ")", "all", "protein", "backbone", "name", "resname", "chain", "element", "resid":
		return true
	}
	return false
}

func (p *selParser) or() (predicate, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.peek() == "or" {
		p.pos++
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(at *Atom) bool { return l(at) || right(at) }
	}
	return left, nil
}

func (p *selParser) and() (predicate, error) {
	left, err := p.not()
	if err != nil {
		return nil, err
	}
	for p.peek() == "and" {
		p.pos++
		right, err := p.not()
		if err != nil {
			return nil, err
		}
		l := left
		left = func(at *Atom) bool { return l(at) && right(at) }
	}
	return left, nil
}

func (p *selParser) not() (predicate, error) {
	if p.peek() == "not" {
		p.pos++
		inner, err := p.not()
		if err != nil {
			return nil, err
		}
		return func(at *Atom) bool { return !inner(at) }, nil
	}
	return p.primary()
}

// values consumes the arguments of a keyword. There must be at least one.
func (p *selParser) values(key string) ([]string, error) {
	var ret []string
	for p.pos < len(p.tokens) && !isSelKeyword(p.tokens[p.pos]) {
		ret = append(ret, p.tokens[p.pos])
		p.pos++
	}
	if len(ret) == 0 {
		return nil, newCError(fmt.Sprintf("Keyword %s requires at least one value", key), "values")
	}
	return ret, nil
}

func (p *selParser) primary() (predicate, error) {
	t := p.peek()
	if t == "" {
		return nil, newCError("Unexpected end of selection", "primary")
	}
	p.pos++
	switch t {
	case "(":
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, newCError("Unbalanced parentheses in selection", "primary")
		}
		p.pos++
		return inner, nil
	case "all":
		return func(at *Atom) bool { return true }, nil
	case "protein":
		return func(at *Atom) bool { return IsAminoacid(at.MolName) }, nil
	case "backbone":
		return func(at *Atom) bool { return IsAminoacid(at.MolName) && isInString(Backbone, at.Name) }, nil
	case "name", "resname", "chain", "element":
		vals, err := p.values(t)
		if err != nil {
			return nil, err
		}
		field := map[string]func(*Atom) string{
			"name":    func(at *Atom) string { return at.Name },
			"resname": func(at *Atom) string { return at.MolName },
			"chain":   func(at *Atom) string { return at.Chain },
			"element": func(at *Atom) string { return at.Symbol },
		}[t]
		return func(at *Atom) bool { return isInString(vals, field(at)) }, nil
	case "resid":
		vals, err := p.values(t)
		if err != nil {
			return nil, err
		}
		ranges := make([][2]int, 0, len(vals))
		for _, v := range vals {
			r, err := parseResidRange(v)
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, r)
		}
		return func(at *Atom) bool {
			for _, r := range ranges {
				if at.MolID >= r[0] && at.MolID <= r[1] {
					return true
				}
			}
			return false
		}, nil
	}
	return nil, newCError(fmt.Sprintf("Unknown selection keyword %q", t), "primary")
}

// parses "5" or "5-12". Negative residue numbers can only be given alone.
func parseResidRange(v string) ([2]int, error) {
	if i := strings.Index(v[1:], "-"); i >= 0 {
		i++
		a, err1 := strconv.Atoi(v[:i])
		b, err2 := strconv.Atoi(v[i+1:])
		if err1 != nil || err2 != nil || b < a {
			return [2]int{}, newCError(fmt.Sprintf("Malformed residue range %q", v), "parseResidRange")
		}
		return [2]int{a, b}, nil
	}
	a, err := strconv.Atoi(v)
	if err != nil {
		return [2]int{}, newCError(fmt.Sprintf("Malformed residue number %q", v), "parseResidRange")
	}
	return [2]int{a, a}, nil
}
