/*
 * lattice.go, part of golattice.
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
	"fmt"
	"math"
	"strings"

	lattice "github.com/rmera/golattice"
)

//Name identifies one of the 14 Bravais lattices.
type Name string

//The 14 Bravais lattices.
const (
	CUB  Name = "CUB"  //primitive cubic
	FCC  Name = "FCC"  //face-centered cubic
	BCC  Name = "BCC"  //body-centered cubic
	TET  Name = "TET"  //primitive tetragonal
	BCT  Name = "BCT"  //body-centered tetragonal
	ORC  Name = "ORC"  //primitive orthorhombic
	ORCC Name = "ORCC" //base-centered orthorhombic
	ORCF Name = "ORCF" //face-centered orthorhombic
	ORCI Name = "ORCI" //body-centered orthorhombic
	HEX  Name = "HEX"  //hexagonal
	RHL  Name = "RHL"  //rhombohedral
	MCL  Name = "MCL"  //primitive monoclinic
	MCLC Name = "MCLC" //base-centered monoclinic
	TRI  Name = "TRI"  //triclinic
)

//Names contains all the Bravais lattices, in order of decreasing symmetry.
//When a cell matches more than one lattice, the first one in this order is preferred.
var Names = []Name{CUB, FCC, BCC, TET, BCT, ORC, ORCC, ORCF, ORCI, HEX, RHL, MCL, MCLC, TRI}

//parNames are the free parameters of each lattice, in order.
var parNames = map[Name][]string{
	CUB:  {"a"},
	FCC:  {"a"},
	BCC:  {"a"},
	TET:  {"a", "c"},
	BCT:  {"a", "c"},
	ORC:  {"a", "b", "c"},
	ORCC: {"a", "b", "c"},
	ORCF: {"a", "b", "c"},
	ORCI: {"a", "b", "c"},
	HEX:  {"a", "c"},
	RHL:  {"a", "alpha"},
	MCL:  {"a", "b", "c", "alpha"},
	MCLC: {"a", "b", "c", "alpha"},
	TRI:  {"a", "b", "c", "alpha", "beta", "gamma"},
}

//ParseName returns the Name corresponding to s, which is case-insensitive.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := parNames[n]; !ok {
		return "", lattice.NewError(lattice.ErrInput, true, "ParseName", "unknown Bravais lattice %q", s)
	}
	return n, nil
}

//ParNames returns the names of the free parameters of the lattice n, or nil if
//n is not a known lattice.
func ParNames(n Name) []string {
	p, ok := parNames[n]
	if !ok {
		return nil
	}
	return append([]string(nil), p...)
}

//Lattice is a Bravais lattice in its canonical form. It is given by
//the lattice name plus up to 6 parameters, whose meaning depends on the name.
//Lengths are in arbitrary units, angles in degrees.
type Lattice struct {
	name Name
	n    int
	par  [6]float64
	cell *lattice.Cell
}

//New returns the lattice name with the given parameters, in the order given by ParNames.
//Parameters that don't give a conventional lattice of the type requested
//(for instance, ORC with b < a) produce a non-critical error of kind ErrUnconventional.
func New(name Name, values ...float64) (*Lattice, error) {
	pn, ok := parNames[name]
	if !ok {
		return nil, lattice.NewError(lattice.ErrInput, true, "bravais.New", "unknown Bravais lattice %q", name)
	}
	if len(values) != len(pn) {
		return nil, lattice.NewError(lattice.ErrInput, true, "bravais.New", "%s needs %d parameters (%s), got %d", name, len(pn), strings.Join(pn, ", "), len(values))
	}
	for i, v := range values {
		if !(v > 0) {
			return nil, lattice.NewError(lattice.ErrInput, true, "bravais.New", "%s: parameter %s must be positive, got %g", name, pn[i], v)
		}
	}
	L := &Lattice{name: name, n: len(values)}
	copy(L.par[:], values)
	if err := L.checkConventional(); err != nil {
		return nil, err
	}
	cell, err := L.canonicalCell()
	if err != nil {
		return nil, err
	}
	L.cell = cell
	return L, nil
}

func (L *Lattice) checkConventional() error {
	p := L.par
	unconv := func(format string, args ...interface{}) error {
		return lattice.NewError(lattice.ErrUnconventional, false, "bravais.New", string(L.name)+": "+format, args...)
	}
	switch L.name {
	case ORC, ORCF, ORCI:
		if !(p[0] < p[1] && p[1] < p[2]) {
			return unconv("expected a < b < c, got %g, %g, %g", p[0], p[1], p[2])
		}
	case ORCC:
		if p[0] >= p[1] {
			return unconv("expected a < b, got %g, %g", p[0], p[1])
		}
	case RHL:
		if p[1] >= 120 {
			return unconv("expected alpha < 120, got %g", p[1])
		}
	case MCL, MCLC:
		if !(p[1] <= p[2] && p[3] < 90) {
			return unconv("expected b <= c and alpha < 90, got b=%g c=%g alpha=%g", p[1], p[2], p[3])
		}
	}
	return nil
}

//canonicalCell builds the standard lattice vectors for L.
func (L *Lattice) canonicalCell() (*lattice.Cell, error) {
	p := L.par
	var d []float64
	switch L.name {
	case CUB:
		a := p[0]
		d = []float64{a, 0, 0, 0, a, 0, 0, 0, a}
	case FCC:
		h := p[0] / 2
		d = []float64{0, h, h, h, 0, h, h, h, 0}
	case BCC:
		h := p[0] / 2
		d = []float64{-h, h, h, h, -h, h, h, h, -h}
	case TET:
		d = []float64{p[0], 0, 0, 0, p[0], 0, 0, 0, p[1]}
	case BCT:
		a, c := p[0]/2, p[1]/2
		d = []float64{-a, a, c, a, -a, c, a, a, -c}
	case ORC:
		d = []float64{p[0], 0, 0, 0, p[1], 0, 0, 0, p[2]}
	case ORCC:
		a, b := p[0]/2, p[1]/2
		d = []float64{a, -b, 0, a, b, 0, 0, 0, p[2]}
	case ORCF:
		a, b, c := p[0]/2, p[1]/2, p[2]/2
		d = []float64{0, b, c, a, 0, c, a, b, 0}
	case ORCI:
		a, b, c := p[0]/2, p[1]/2, p[2]/2
		d = []float64{-a, b, c, a, -b, c, a, b, -c}
	case HEX:
		a := p[0]
		s := math.Sqrt(3) / 2 * a
		d = []float64{a / 2, -s, 0, a / 2, s, 0, 0, 0, p[1]}
	case RHL:
		a, alpha := p[0], lattice.Deg2Rad(p[1])
		acosa := a * math.Cos(alpha)
		acosa2 := a * math.Cos(alpha/2)
		asina2 := a * math.Sin(alpha/2)
		acosfrac := acosa / acosa2
		xx := 1 - acosfrac*acosfrac
		d = []float64{
			acosa2, -asina2, 0,
			acosa2, asina2, 0,
			a * acosfrac, 0, a * math.Sqrt(xx),
		}
	case MCL:
		alpha := lattice.Deg2Rad(p[3])
		d = []float64{p[0], 0, 0, 0, p[1], 0, 0, p[2] * math.Cos(alpha), p[2] * math.Sin(alpha)}
	case MCLC:
		a, b := p[0]/2, p[1]/2
		alpha := lattice.Deg2Rad(p[3])
		d = []float64{a, b, 0, -a, b, 0, 0, p[2] * math.Cos(alpha), p[2] * math.Sin(alpha)}
	case TRI:
		cell, err := lattice.FromPar(lattice.Par(p))
		if err != nil {
			return nil, lattice.NewError(lattice.ErrUnconventional, false, "bravais.New", "TRI: %v", err)
		}
		return cell, nil
	}
	return lattice.NewCell(d)
}

//Name returns the name of the lattice.
func (L *Lattice) Name() Name {
	return L.name
}

//Values returns a copy of the parameters of the lattice, in the order given by ParNames.
func (L *Lattice) Values() []float64 {
	return append([]float64(nil), L.par[:L.n]...)
}

//Parameters returns the parameters of the lattice, by name.
func (L *Lattice) Parameters() map[string]float64 {
	ret := make(map[string]float64, L.n)
	for i, n := range parNames[L.name] {
		ret[n] = L.par[i]
	}
	return ret
}

//Cell returns the canonical cell of the lattice.
//Cells are immutable, so the same cell is always returned.
func (L *Lattice) Cell() *lattice.Cell {
	return L.cell
}

func (L *Lattice) String() string {
	pn := parNames[L.name]
	s := make([]string, L.n)
	for i := range s {
		s[i] = fmt.Sprintf("%s=%.6g", pn[i], L.par[i])
	}
	return fmt.Sprintf("%s(%s)", L.name, strings.Join(s, ", "))
}
