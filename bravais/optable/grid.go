/*
 * grid.go, part of golattice.
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

package optable

import (
	"math"

	lattice "github.com/rmera/golattice"
	"github.com/rmera/golattice/bravais"
	"gonum.org/v1/gonum/floats"
)

//Grid contains the values sampled for lengths and angles (in degrees) when
//generating lattices of each type.
type Grid struct {
	Lengths []float64 `json:"lengths"`
	Angles  []float64 `json:"angles"`
}

//NewGrid returns a grid with nlengths lengths between 10^-0.5 and 10^1.5, evenly spaced
//in logarithmic scale and rounded to 3 decimals, and nangles angles between 10 and 179 degrees,
//rounded to integers.
func NewGrid(nlengths, nangles int) Grid {
	return Grid{
		Lengths: Round(LogSpace(-0.5, 1.5, nlengths), 3),
		Angles:  Round(LinSpace(10, 179, nangles), 0),
	}
}

//DefaultGrid is the grid used to build the default operation table.
func DefaultGrid() Grid {
	return NewGrid(50, 50)
}

//TestGrid is a coarser grid, good enough to check a table.
func TestGrid() Grid {
	return NewGrid(11, 11)
}

//LinSpace returns n values evenly spaced between start and stop, both included.
func LinSpace(start, stop float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, stop)
}

//LogSpace returns n values between 10^start and 10^stop, both included,
//evenly spaced in logarithmic scale.
func LogSpace(start, stop float64, n int) []float64 {
	ret := LinSpace(start, stop, n)
	for i, v := range ret {
		ret[i] = math.Pow(10, v)
	}
	return ret
}

//Round rounds in place each element of x to the given number of decimals, and returns x.
func Round(x []float64, decimals int) []float64 {
	p := math.Pow(10, float64(decimals))
	for i, v := range x {
		x[i] = math.Round(v*p) / p
	}
	return x
}

//fixedPar returns the parameter that is set to 1 when sampling the lattice name.
func fixedPar(name bravais.Name) string {
	if name == bravais.MCL || name == bravais.MCLC {
		return "c"
	}
	return "a"
}

//Samples returns the lattices of type name with the parameters in grid. Lattices are
//scale-invariant, so one length (c for MCL and MCLC, a for all others) is always 1.
//The other lengths are taken from grid.Lengths, and alpha from grid.Angles. Combinations that
//don't give a conventional lattice are skipped, and their number is returned.
//Lattices with other parameters (i.e. TRI) can't be sampled.
func Samples(name bravais.Name, grid Grid) ([]*bravais.Lattice, int, error) {
	pn := bravais.ParNames(name)
	if pn == nil {
		return nil, 0, lattice.NewError(lattice.ErrInput, true, "optable.Samples", "unknown Bravais lattice %q", name)
	}
	values := make([][]float64, len(pn))
	fixed := fixedPar(name)
	for i, p := range pn {
		switch {
		case p == fixed:
			values[i] = []float64{1}
		case p == "alpha":
			values[i] = grid.Angles
		case p == "a" || p == "b" || p == "c":
			values[i] = grid.Lengths
		default:
			return nil, 0, lattice.NewError(lattice.ErrInput, true, "optable.Samples", "can't sample parameter %s of %s", p, name)
		}
		if len(values[i]) == 0 {
			return nil, 0, lattice.NewError(lattice.ErrInput, true, "optable.Samples", "no values for parameter %s of %s", p, name)
		}
	}
	var ret []*bravais.Lattice
	skipped := 0
	cur := make([]float64, len(pn))
	idx := make([]int, len(pn))
	for {
		for i, j := range idx {
			cur[i] = values[i][j]
		}
		L, err := bravais.New(name, cur...)
		switch {
		case err == nil:
			ret = append(ret, L)
		case lattice.IsCritical(err):
			return nil, skipped, err
		default:
			skipped++
		}
		//next combination, the last parameter varying fastest
		k := len(idx) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(values[k]) {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			break
		}
	}
	return ret, skipped, nil
}
