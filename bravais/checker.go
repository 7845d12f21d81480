/*
 * checker.go, part of golattice.
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
	"math"

	lattice "github.com/rmera/golattice"
	"gonum.org/v1/gonum/floats"
)

//Checker tests whether a cell is, within a tolerance, the canonical cell
//of a given Bravais lattice. For each lattice, the Checker proposes the parameters
//that the cell would have if it were that lattice, builds the canonical cell for those
//parameters, and compares it with the cell.
type Checker struct {
	cell  *lattice.Cell
	eps   float64
	par   lattice.Par
	a0    float64    //mean length
	prods [6]float64 //a1·a1, a2·a2, a3·a3, a2·a3, a3·a1, a1·a2
}

//NewChecker returns a Checker for cell, which accepts a match when the
//difference between the cell and the proposed canonical cell (see lattice.Diff) is smaller than eps.
func NewChecker(cell *lattice.Cell, eps float64) *Checker {
	C := &Checker{cell: cell, eps: eps, par: cell.Par()}
	l := C.par.Lengths()
	C.a0 = floats.Sum(l[:]) / 3
	m := cell.Metric()
	C.prods = [6]float64{m.At(0, 0), m.At(1, 1), m.At(2, 2), m.At(1, 2), m.At(2, 0), m.At(0, 1)}
	return C
}

//Query checks whether the cell is the canonical cell of the lattice name. If it is,
//the lattice is returned. Otherwise, a non-critical error is returned: of kind ErrNoMatch
//if the cell doesn't match, or of kind ErrUnconventional if the proposed parameters
//don't give a conventional lattice.
func (C *Checker) Query(name Name) (*Lattice, error) {
	p := C.par
	A, B, Cl := p[0], p[1], p[2]
	switch name {
	case CUB:
		return C.check(CUB, C.a0)
	case FCC:
		return C.check(FCC, math.Sqrt2*C.a0)
	case BCC:
		return C.check(BCC, 2*C.a0/math.Sqrt(3))
	case TET:
		return C.check(TET, A, Cl)
	case HEX:
		return C.check(HEX, A, Cl)
	case RHL:
		return C.check(RHL, A, p[3])
	case ORC:
		return C.check(ORC, A, B, Cl)
	case MCL:
		return C.check(MCL, A, B, Cl, p[3])
	case TRI:
		return C.check(TRI, p[:]...)
	case BCT:
		l, err := C.bodyCentered(BCT)
		if err != nil {
			return nil, err
		}
		return C.check(BCT, l[0], l[2])
	case ORCI:
		l, err := C.bodyCentered(ORCI)
		if err != nil {
			return nil, err
		}
		return C.check(ORCI, l[0], l[1], l[2])
	case ORCF:
		pr := C.prods[3:]
		if !(pr[0] > 0 && pr[1] > 0 && pr[2] > 0) {
			return nil, C.noMatch(ORCF, "non-positive products %v", pr)
		}
		return C.check(ORCF, 2*math.Sqrt(pr[0]), 2*math.Sqrt(pr[1]), 2*math.Sqrt(pr[2]))
	case ORCC:
		a, b, err := C.baseCentered(ORCC)
		if err != nil {
			return nil, err
		}
		return C.check(ORCC, a, b, Cl)
	case MCLC:
		//a and b are swapped with respect to ORCC.
		b, a, err := C.baseCentered(MCLC)
		if err != nil {
			return nil, err
		}
		cosa := 2 * C.prods[3] / (b * Cl)
		if !(cosa > -1 && cosa < 1) {
			return nil, C.noMatch(MCLC, "impossible cos(alpha) %g", cosa)
		}
		alpha := lattice.Rad2Deg(math.Acos(cosa))
		c := Cl
		if b > c {
			//Some cells that are almost, but not exactly, MCLC get b > c.
			b = 0.5 * (b + c)
			c = b
		}
		return C.check(MCLC, a, b, c, alpha)
	}
	return nil, lattice.NewError(lattice.ErrInput, true, "Checker.Query", "unknown Bravais lattice %q", name)
}

//bodyCentered returns the lengths of the conventional cell assuming that the cell
//is the primitive cell of a body-centered lattice.
func (C *Checker) bodyCentered(name Name) ([3]float64, error) {
	var l [3]float64
	for i := range l {
		l2 := 2 * (C.prods[i] + C.prods[i+3])
		if l2 <= 0 {
			return l, C.noMatch(name, "negative squared length %g", l2)
		}
		l[i] = math.Sqrt(l2)
	}
	return l, nil
}

//baseCentered returns a and b of the conventional cell assuming that the
//cell is the primitive cell of a base-centered orthorhombic lattice.
func (C *Checker) baseCentered(name Name) (float64, float64, error) {
	a2 := 2 * (C.prods[0] + C.prods[5])
	b2 := 2 * (C.prods[1] - C.prods[5])
	if !(a2 > 0 && b2 > 0) {
		return 0, 0, C.noMatch(name, "non-positive squared lengths %g, %g", a2, b2)
	}
	return math.Sqrt(a2), math.Sqrt(b2), nil
}

func (C *Checker) noMatch(name Name, format string, args ...interface{}) error {
	return lattice.NewError(lattice.ErrNoMatch, false, "Checker.Query", string(name)+": "+format, args...)
}

//check builds the lattice name with the given values, and returns it if it
//matches the cell.
func (C *Checker) check(name Name, values ...float64) (*Lattice, error) {
	for _, v := range values {
		if !(v > 0) {
			return nil, C.noMatch(name, "non-positive parameter in %v", values)
		}
	}
	L, err := New(name, values...)
	if err != nil {
		return nil, err
	}
	diff, err := lattice.Diff(C.cell, L.Cell())
	if err != nil {
		return nil, C.noMatch(name, "%v", err)
	}
	if diff >= C.eps {
		return nil, C.noMatch(name, "difference %g with %v", diff, L)
	}
	return L, nil
}

//CheckOrder is the order in which Best queries the lattices. It differs from Names
//in that HEX comes before the orthorhombic lattices: a hexagonal cell is also a base-centered
//orthorhombic one, with b = √3a.
var CheckOrder = []Name{CUB, FCC, BCC, TET, BCT, HEX, ORC, ORCC, ORCF, ORCI, RHL, MCL, MCLC, TRI}

//Match returns all the lattices that match the cell, in the order of Names.
func (C *Checker) Match() []*Lattice {
	var ret []*Lattice
	for _, n := range Names {
		if L, err := C.Query(n); err == nil {
			ret = append(ret, L)
		}
	}
	return ret
}

//Best returns the first lattice in CheckOrder that matches the cell. If none does, the
//error is non-critical, of kind ErrNoMatch.
func (C *Checker) Best() (*Lattice, error) {
	for _, n := range CheckOrder {
		L, err := C.Query(n)
		if err == nil {
			return L, nil
		}
		if lattice.IsCritical(err) {
			return nil, err
		}
	}
	return nil, lattice.NewError(lattice.ErrNoMatch, false, "Checker.Best", "no lattice matches a cell with parameters %v", C.par)
}

//Recognizer tells whether a cell is the canonical cell of some Bravais lattice,
//within the tolerance eps, and returns the lattice if so.
//A non-critical error means only that the cell doesn't match. Critical errors
//are reserved for failures that make further attempts pointless.
type Recognizer interface {
	Recognize(cell *lattice.Cell, eps float64) (*Lattice, error)
}

//RecognizerFunc allows to use a function as a Recognizer.
type RecognizerFunc func(cell *lattice.Cell, eps float64) (*Lattice, error)

//Recognize calls f.
func (f RecognizerFunc) Recognize(cell *lattice.Cell, eps float64) (*Lattice, error) {
	return f(cell, eps)
}

//CheckerRecognizer is the default Recognizer. It returns the best match of a Checker.
type CheckerRecognizer struct{}

//Recognize returns NewChecker(cell, eps).Best().
func (CheckerRecognizer) Recognize(cell *lattice.Cell, eps float64) (*Lattice, error) {
	return NewChecker(cell, eps).Best()
}
