/*
 * op.go, part of golattice.
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
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Op is an integer 3x3 matrix, used as a change of lattice basis.
//Ops are comparable, so they can be used as map keys.
type Op [3][3]int

//Identity is the identity Op.
var Identity = Op{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

//OpFromFlat builds an Op from its 9 elements in row-major order.
func OpFromFlat(f [9]int) Op {
	var o Op
	for i := 0; i < 9; i++ {
		o[i/3][i%3] = f[i]
	}
	return o
}

//OpFromSlice is like OpFromFlat, but the number of elements is checked.
func OpFromSlice(s []int) (Op, error) {
	if len(s) != 9 {
		return Op{}, NewError(ErrInput, true, "OpFromSlice", "an operation needs 9 elements, got %d", len(s))
	}
	var f [9]int
	copy(f[:], s)
	return OpFromFlat(f), nil
}

//RoundOp returns the integer matrix closest to m, and the largest
//absolute difference between an element of m and its rounded value.
func RoundOp(m mat.Matrix) (Op, float64) {
	var o Op
	maxerr := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v := m.At(i, j)
			r := math.Round(v)
			o[i][j] = int(r)
			maxerr = math.Max(maxerr, math.Abs(v-r))
		}
	}
	return o, maxerr
}

//Flat returns the elements of o in row-major order.
func (o Op) Flat() [9]int {
	var f [9]int
	for i := 0; i < 9; i++ {
		f[i] = o[i/3][i%3]
	}
	return f
}

//T returns the transpose of o.
func (o Op) T() Op {
	var t Op
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = o[j][i]
		}
	}
	return t
}

//Mul returns the matrix product o·p.
func (o Op) Mul(p Op) Op {
	var r Op
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += o[i][k] * p[k][j]
			}
		}
	}
	return r
}

//Det returns the determinant of o.
func (o Op) Det() int {
	return o[0][0]*(o[1][1]*o[2][2]-o[2][1]*o[1][2]) -
		o[1][0]*(o[0][1]*o[2][2]-o[2][1]*o[0][2]) +
		o[2][0]*(o[0][1]*o[1][2]-o[1][1]*o[0][2])
}

//Unimodular returns true if the determinant of o is 1 or -1.
func (o Op) Unimodular() bool {
	d := o.Det()
	return d == 1 || d == -1
}

//Inverse returns the exact inverse of o, computed from the adjugate.
//Only unimodular operations have an integer inverse.
func (o Op) Inverse() (Op, error) {
	d := o.Det()
	if d != 1 && d != -1 {
		return Op{}, NewError(ErrInput, true, "Op.Inverse", "operation %v is not unimodular (det=%d)", o, d)
	}
	var inv Op
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			//cofactor of element (j,i)
			r0, r1 := others(j)
			c0, c1 := others(i)
			cof := o[r0][c0]*o[r1][c1] - o[r0][c1]*o[r1][c0]
			if (i+j)%2 != 0 {
				cof = -cof
			}
			inv[i][j] = cof * d //d is its own inverse
		}
	}
	return inv, nil
}

//others returns the two indexes in 0..2 different from i, in order.
func others(i int) (int, int) {
	switch i {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

//Dense returns o as a gonum matrix.
func (o Op) Dense() *mat.Dense {
	d := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, float64(o[i][j]))
		}
	}
	return d
}

//String returns the flat, tuple-like representation used in the operation tables.
func (o Op) String() string {
	f := o.Flat()
	s := make([]string, 9)
	for i, v := range f {
		s[i] = fmt.Sprint(v)
	}
	return "(" + strings.Join(s, ", ") + ")"
}
