/*
 * identify.go, part of golattice.
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

package bravais

import (
	"errors"
	"fmt"
	"log/slog"

	lattice "github.com/rmera/golattice"
)

//DefaultEps is the default tolerance for Identify.
const DefaultEps = 2e-4

//UnrecognizedError is returned when a cell can't be assigned to any Bravais lattice.
//It contains the parameters of the cell.
type UnrecognizedError struct {
	Par lattice.Par
}

func (err *UnrecognizedError) Error() string {
	return fmt.Sprintf("%v: no Bravais lattice matches a cell with parameters %v", lattice.ErrUnrecognized, err.Par)
}

//Is allows errors.Is(err, lattice.ErrUnrecognized) to work.
func (err *UnrecognizedError) Is(target error) bool {
	return target == lattice.ErrUnrecognized
}

//Critical always returns true.
func (err *UnrecognizedError) Critical() bool { return true }

//Classifier assigns cells to Bravais lattices. It Niggli-reduces a cell, applies
//to the reduced cell the inverse of each operation in Table, and asks the Recognizer
//whether the result is the canonical cell of some lattice. The operations are tried
//in the order of Names for the lattice they are listed under.
type Classifier struct {
	Table      OpTable
	Recognizer Recognizer
	NiggliEps  float64      //relative tolerance for the Niggli reduction. Zero means lattice.DefaultNiggliEps
	Log        *slog.Logger //if nil, nothing is logged
}

//NewClassifier returns a Classifier with the default table and a CheckerRecognizer.
func NewClassifier() *Classifier {
	return &Classifier{
		Table:      DefaultTable(),
		Recognizer: CheckerRecognizer{},
		NiggliEps:  lattice.DefaultNiggliEps,
	}
}

type match struct {
	lat *Lattice
	op  lattice.Op
}

//Identify returns the Bravais lattice of cell, and the operation T that relates
//the canonical cell of that lattice to cell, i.e. cell = Tᵀ·L.Cell(), up to a rotation.
//eps is the tolerance passed to the Recognizer; if not positive, DefaultEps is used.
//When the cell matches more than one lattice, the first in Names is returned.
//TRI is never returned: if no other lattice matches, the error is an *UnrecognizedError.
func (c *Classifier) Identify(cell *lattice.Cell, eps float64) (*Lattice, lattice.Op, error) {
	if eps <= 0 {
		eps = DefaultEps
	}
	log := c.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	rcell, nop, err := lattice.NiggliReduce(cell, c.NiggliEps)
	if err != nil {
		var e *lattice.Error
		if errors.As(err, &e) {
			e.Decorate("Classifier.Identify")
		}
		return nil, lattice.Op{}, err
	}
	var matches []match
	for _, name := range Names {
		if name == TRI {
			continue
		}
		for _, t := range c.Table[name] {
			tinv, err := t.Inverse()
			if err != nil {
				return nil, lattice.Op{}, lattice.NewError(lattice.ErrIntegrity, true, "Classifier.Identify", "%s operation in table: %v", name, err)
			}
			candidate := rcell.Transformed(tinv)
			lat, err := c.Recognizer.Recognize(candidate, eps)
			if err != nil {
				if lattice.IsCritical(err) {
					return nil, lattice.Op{}, err
				}
				continue
			}
			if lat == nil || lat.Name() == TRI {
				continue
			}
			log.Debug("lattice match", "lattice", lat.String(), "operation", t.String())
			matches = append(matches, match{lat, t})
		}
	}
	for _, name := range Names {
		for _, m := range matches {
			if m.lat.Name() != name {
				continue
			}
			ninv, err := nop.Inverse()
			if err != nil {
				return nil, lattice.Op{}, lattice.NewError(lattice.ErrIntegrity, true, "Classifier.Identify", "Niggli operation: %v", err)
			}
			return m.lat, m.op.Mul(ninv), nil
		}
	}
	return nil, lattice.Op{}, &UnrecognizedError{Par: cell.Par()}
}

var defaultClassifier = NewClassifier()

//Identify uses a Classifier with the default table and recognizer
//to identify the Bravais lattice of cell. See Classifier.Identify.
func Identify(cell *lattice.Cell, eps float64) (*Lattice, lattice.Op, error) {
	return defaultClassifier.Identify(cell, eps)
}
