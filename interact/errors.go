/*
 * errors.go, part of interaph.
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
	"errors"
	"fmt"
	"strings"

	chem "github.com/rmera/interaph"
)

// Kind classifies the errors of this package.
type Kind int

const (
	// ConfigError is a malformed or unreadable definition, table or option.
	ConfigError Kind = iota + 1
	// SelectionError is an atom group that resolved to no atoms where atoms are required.
	SelectionError
	// DataError is an inconsistency between topology and trajectory, or a failed frame read.
	DataError
)

func (k Kind) String() string {
	switch k {
	case ConfigError:
		return "configuration error"
	case SelectionError:
		return "selection error"
	case DataError:
		return "data error"
	}
	return "unknown error"
}

var (
	ErrCutoff   = errors.New("cutoff must be positive")
	ErrFormat   = errors.New("wrong file format")
	ErrNoAtoms  = errors.New("selection has no atoms")
	ErrMismatch = chem.ErrMismatch
)

// Error is the error type of the package. It implements chem.Error, and
// can be inspected with errors.Is for the sentinel it wraps, if any.
type Error struct {
	message  string
	filename string
	deco     []string
	kind     Kind
	wrapped  error
}

func newError(kind Kind, wrapped error, caller string, format string, args ...any) *Error {
	return &Error{message: fmt.Sprintf(format, args...), deco: []string{caller}, kind: kind, wrapped: wrapped}
}

func (E *Error) Error() string {
	var b strings.Builder
	b.WriteString(E.kind.String())
	if E.filename != "" {
		b.WriteString(" in " + E.filename)
	}
	b.WriteString(": " + E.message)
	if E.wrapped != nil && !strings.Contains(E.message, E.wrapped.Error()) {
		b.WriteString(" (" + E.wrapped.Error() + ")")
	}
	return b.String()
}

// Decorate adds deco to the list of callers and returns the list.
func (E *Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// Kind returns the class of the error.
func (E *Error) Kind() Kind { return E.kind }

// Critical is always true. Every error of this package aborts the analysis.
func (E *Error) Critical() bool { return true }

func (E *Error) FileName() string { return E.filename }

func (E *Error) Unwrap() error { return E.wrapped }

// KindOf returns the Kind of err, or 0 if err was not produced by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return 0
}

func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	err2, ok := err.(chem.Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}

// dataError wraps an error from the trajectory or structure readers.
func dataError(err error, caller string) error {
	if _, ok := err.(*Error); ok {
		return errDecorate(err, caller)
	}
	e := newError(DataError, err, caller, "%v", err)
	if te, ok := err.(chem.TrajError); ok {
		e.filename = te.FileName()
	}
	return e
}
