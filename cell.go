/*
 * cell.go, part of golattice.
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
	"fmt"
	"math"

	v3 "github.com/rmera/golattice/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//Lengths shorter than this are considered zero when computing angles.
const zeroLength = 1e-8

//Par contains the cell parameters of a cell: the lengths a, b, c
//and the angles alpha, beta and gamma, in degrees.
type Par [6]float64

//Lengths returns a, b and c.
func (p Par) Lengths() [3]float64 {
	return [3]float64{p[0], p[1], p[2]}
}

//Angles returns alpha, beta and gamma.
func (p Par) Angles() [3]float64 {
	return [3]float64{p[3], p[4], p[5]}
}

//MaxDiff returns the largest absolute difference between the elements of p and q.
func (p Par) MaxDiff(q Par) float64 {
	d := make([]float64, 6)
	floats.SubTo(d, p[:], q[:])
	return math.Max(floats.Max(d), -floats.Min(d))
}

func (p Par) String() string {
	return fmt.Sprintf("[%.6g, %.6g, %.6g, %.6g, %.6g, %.6g]", p[0], p[1], p[2], p[3], p[4], p[5])
}

//Cell is a lattice basis: three lattice vectors, one per row.
//A Cell is not modified once created: all the methods that change
//the basis return a new Cell.
type Cell struct {
	m *v3.Matrix
}

//NewCell returns a cell with the 3 lattice vectors given, one after the other, in data.
//data is copied.
func NewCell(data []float64) (*Cell, error) {
	if len(data) != 9 {
		return nil, NewError(ErrInput, true, "NewCell", "a cell needs 9 numbers, got %d", len(data))
	}
	d := make([]float64, 9)
	copy(d, data)
	m, err := v3.NewMatrix(d)
	if err != nil {
		return nil, NewError(ErrInput, true, "NewCell", "%v", err)
	}
	return &Cell{m}, nil
}

//CellFromMatrix returns a cell with the rows of the 3x3 matrix m as lattice vectors.
//m is copied.
func CellFromMatrix(m mat.Matrix) (*Cell, error) {
	r, c := m.Dims()
	if r != 3 || c != 3 {
		return nil, NewError(ErrInput, true, "CellFromMatrix", "a cell must be 3x3, got %dx%d", r, c)
	}
	d := mat.DenseCopyOf(m)
	return &Cell{v3.Dense2Matrix(d)}, nil
}

//Matrix returns a copy of the lattice vectors of C.
func (C *Cell) Matrix() *v3.Matrix {
	return v3.Dense2Matrix(mat.DenseCopyOf(C.m.Dense))
}

//Dims returns 3,3. Together with At and T makes Cell a mat.Matrix.
func (C *Cell) Dims() (int, int) { return 3, 3 }

//At returns the jth component of the ith lattice vector.
func (C *Cell) At(i, j int) float64 { return C.m.At(i, j) }

//T returns the transpose of the cell, as a mat.Matrix.
func (C *Cell) T() mat.Matrix { return mat.Transpose{Matrix: C} }

//Vec returns a copy of the ith lattice vector.
func (C *Cell) Vec(i int) []float64 {
	v := make([]float64, 3)
	copy(v, C.m.RawRowView(i))
	return v
}

//Lengths returns the lengths of the three lattice vectors.
func (C *Cell) Lengths() [3]float64 {
	var l [3]float64
	for i := range l {
		l[i] = C.m.VecNorm(i)
	}
	return l
}

//Angles returns the angles alpha (between b and c), beta (a and c) and gamma (a and b),
//in degrees.
func (C *Cell) Angles() [3]float64 {
	l := C.Lengths()
	var angles [3]float64
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		k := (i + 2) % 3
		ll := l[j] * l[k]
		if ll < zeroLength*zeroLength {
			angles[i] = 90.0
			continue
		}
		x := floats.Dot(C.m.RawRowView(j), C.m.RawRowView(k)) / ll
		x = math.Max(-1, math.Min(1, x))
		angles[i] = Rad2Deg(math.Acos(x))
	}
	return angles
}

//Par returns the cell parameters of C.
func (C *Cell) Par() Par {
	l := C.Lengths()
	a := C.Angles()
	return Par{l[0], l[1], l[2], a[0], a[1], a[2]}
}

//Metric returns the metric tensor of C, i.e. C·Cᵀ.
func (C *Cell) Metric() *mat.Dense {
	g := mat.NewDense(3, 3, nil)
	g.Mul(C.m.Dense, C.m.Dense.T())
	return g
}

//Det returns the determinant of the lattice vectors.
func (C *Cell) Det() float64 {
	return v3.Det(C.m.Dense)
}

//Volume returns the volume of the cell.
func (C *Cell) Volume() float64 {
	return math.Abs(C.Det())
}

//Mul returns a new cell, M·C.
func (C *Cell) Mul(M mat.Matrix) *Cell {
	ret := v3.Zeros(3)
	ret.Mul(M, C.m.Dense)
	return &Cell{ret}
}

//Transformed returns the cell opᵀ·C. This is the convention used by
//NiggliReduce, i.e. the reduced cell is cell.Transformed(op).
func (C *Cell) Transformed(op Op) *Cell {
	return C.Mul(op.T().Dense())
}

//String returns the lattice vectors as a string.
func (C *Cell) String() string {
	return C.m.String()
}

//FromPar returns a cell with the given parameters, with a along the x axis
//and b in the xy plane.
func FromPar(p Par) (*Cell, error) {
	for i, v := range p {
		if v <= 0 {
			return nil, NewError(ErrInput, true, "FromPar", "parameter %d must be positive, got %g", i, v)
		}
	}
	a, b, c := p[0], p[1], p[2]
	cosa, cosb, cosg := cosd(p[3]), cosd(p[4]), cosd(p[5])
	sing := sind(p[5])
	cx := cosb
	cy := (cosa - cosb*cosg) / sing
	cz2 := 1 - cx*cx - cy*cy
	if cz2 <= 0 {
		return nil, NewError(ErrInput, true, "FromPar", "impossible cell angles %g, %g, %g", p[3], p[4], p[5])
	}
	return NewCell([]float64{
		a, 0, 0,
		b * cosg, b * sing, 0,
		c * cx, c * cy, c * math.Sqrt(cz2),
	})
}

//cosd is the cosine of an angle in degrees. It is exactly zero for 90 degrees.
func cosd(angle float64) float64 {
	if angle == 90 {
		return 0
	}
	return math.Cos(Deg2Rad(angle))
}

func sind(angle float64) float64 {
	if angle == 90 {
		return 1
	}
	return math.Sin(Deg2Rad(angle))
}

//Diff returns a unitless measure of the difference between two cells,
//which doesn't depend on their orientation. It compares the metric tensors,
//scaled by the volumes of the cells.
func Diff(c1, c2 *Cell) (float64, error) {
	v1v2 := c1.Volume() * c2.Volume()
	if v1v2 == 0 {
		return 0, NewError(ErrDegenerateBasis, false, "Diff", "cells with zero volume can't be compared")
	}
	scale := math.Pow(v1v2, -1.0/3.0)
	x := c2.Metric()
	x.Sub(x, c1.Metric())
	return scale * math.Max(mat.Max(x), -mat.Min(x)), nil
}

//Deg2Rad converts degrees to radians.
func Deg2Rad(f float64) float64 {
	return f * math.Pi / 180
}

//Rad2Deg converts radians to degrees.
func Rad2Deg(f float64) float64 {
	return f * 180 / math.Pi
}
