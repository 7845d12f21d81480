/*
 * errors.go, part of golattice.
 *
 * Copyright 2026 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package lattice

import (
	"errors"
	"fmt"
	"strings"
)

//Errors

//Each error returned by goLattice is an *Error, which wraps one of the sentinel values
//below, so callers can use errors.Is to tell them apart. The Decorate method allows to add
//the chain of callers to the error without changing its type.
var (
	//ErrDegenerateBasis means that a set of lattice vectors does not span a lattice of the expected rank.
	ErrDegenerateBasis = errors.New("goLattice: degenerate basis")
	//ErrReductionDiverged means that the greedy reduction did not finish within MaxGreedyIterations.
	ErrReductionDiverged = errors.New("goLattice: greedy reduction did not terminate")
	//ErrNiggliNotConverged means that the Niggli reduction did not finish.
	ErrNiggliNotConverged = errors.New("goLattice: Niggli reduction not converged")
	//ErrUnconventional is returned when parameters don't give a conventional member of a Bravais class.
	ErrUnconventional = errors.New("goLattice: unconventional lattice")
	//ErrNoMatch is returned when a cell doesn't match the canonical form of a Bravais class.
	ErrNoMatch = errors.New("goLattice: cell does not match lattice")
	//ErrUnrecognized is returned when no Bravais class matches a cell.
	ErrUnrecognized = errors.New("goLattice: unrecognized lattice")
	//ErrIntegrity signals a transformation that fails an integrity check. It indicates a bug.
	ErrIntegrity = errors.New("goLattice: data integrity")
	//ErrInput is returned for malformed input (wrong shapes, unknown names, bad parameters).
	ErrInput = errors.New("goLattice: invalid input")
)

//Error is the error type for all packages in goLattice.
type Error struct {
	message  string
	kind     error
	deco     []string
	critical bool
}

//NewError returns a new *Error of the given kind. caller is the first decoration.
func NewError(kind error, critical bool, caller string, format string, args ...interface{}) *Error {
	err := &Error{message: fmt.Sprintf(format, args...), kind: kind, critical: critical}
	if caller != "" {
		err.deco = []string{caller}
	}
	return err
}

//Error returns a string with an error message.
func (err *Error) Error() string {
	if len(err.deco) == 0 {
		return fmt.Sprintf("%v: %s", err.kind, err.message)
	}
	return fmt.Sprintf("%v: %s (%s)", err.kind, err.message, strings.Join(err.deco, " < "))
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice. An empty string just returns the current value.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns whether the error is critical or it can be ignored.
func (err *Error) Critical() bool { return err.critical }

//Unwrap returns the sentinel kind of the error.
func (err *Error) Unwrap() error { return err.kind }

//IsCritical returns true if err, or any error it wraps, reports itself as critical.
//Errors that don't implement Critical() are considered critical.
func IsCritical(err error) bool {
	if err == nil {
		return false
	}
	var c interface{ Critical() bool }
	if errors.As(err, &c) {
		return c.Critical()
	}
	return true
}

//errDecorate decorates err with the caller's name, if err is an *Error, and returns it.
func errDecorate(err error, caller string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
