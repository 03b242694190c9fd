/*
 * errors.go, part of interaph.
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
	"errors"
	"fmt"
)

// ErrMismatch is wrapped by the errors returned when a topology and a set of
// coordinates don't have the same number of atoms.
var ErrMismatch = errors.New("mismatched number of atoms/coordinates")

// CError is the error type of the chem package. It implements Error and,
// when a file name is set, TrajError.
type CError struct {
	msg      string
	filename string
	format   string
	deco     []string
	critical bool
	wrapped  error
}

func newCError(msg, caller string) *CError {
	return &CError{msg: msg, deco: []string{caller}, critical: true}
}

// Error returns a string with an error message.
func (err *CError) Error() string {
	if err.filename != "" {
		return fmt.Sprintf("%s file %s: %s", err.format, err.filename, err.msg)
	}
	return err.msg
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err *CError) Critical() bool { return err.critical }

// FileName returns the file to which the error is associated, if any.
func (err *CError) FileName() string { return err.filename }

// Format returns the format of the file associated to the error.
func (err *CError) Format() string { return err.format }

func (err *CError) Unwrap() error { return err.wrapped }

// errDecorate is a helper function that asserts that the error
// implements chem.Error and decorates the error with the caller's name before returning it.
// if used with a non-chem.Error error, it will just return the error.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	err2, ok := err.(Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}

// lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
	format   string
}

// NormalLastFrameTermination does nothing
func (E *lastFrameError) NormalLastFrameTermination() {}

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) Format() string { return E.format }

func (E *lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename, format, caller string) *lastFrameError {
	return &lastFrameError{fileName: filename, format: format, deco: []string{caller}}
}
