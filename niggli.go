/*
 * niggli.go, part of golattice.
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
	"math"
)

//DefaultNiggliEps is the default relative tolerance for NiggliReduce.
const DefaultNiggliEps = 1e-5

const maxNiggliIterations = 10000

//sixOp is a 6x6 integer matrix acting on the metric vector of a cell.
type sixOp [6][6]int

func sixIdentity() sixOp {
	var s sixOp
	for i := range s {
		s[i][i] = 1
	}
	return s
}

func (s sixOp) mul(t sixOp) sixOp {
	var r sixOp
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			for k := 0; k < 6; k++ {
				r[i][j] += s[i][k] * t[k][j]
			}
		}
	}
	return r
}

//permuteRows returns a matrix where row i is the row perm[i] of s.
func (s sixOp) permuteRows(perm [6]int) sixOp {
	var r sixOp
	for i, p := range perm {
		r[i] = s[p]
	}
	return r
}

func (s sixOp) apply(g0 [6]float64) [6]float64 {
	var g [6]float64
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			g[i] += float64(s[i][j]) * g0[j]
		}
	}
	return g
}

//metricVector returns (a·a, b·b, c·c, 2b·c, 2a·c, 2a·b) for the cell.
func metricVector(C *Cell) [6]float64 {
	m := C.Metric()
	return [6]float64{
		m.At(0, 0), m.At(1, 1), m.At(2, 2),
		2 * m.At(1, 2), 2 * m.At(0, 2), 2 * m.At(0, 1),
	}
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

//NiggliReduce returns the Niggli-reduced form of cell, and the
//operation op such that reduced = cell.Transformed(op), i.e. opᵀ·cell.
//The comparisons use a tolerance of epsfactor·V^(1/3), where V is the volume of the cell.
//If epsfactor is not positive, DefaultNiggliEps is used.
//The algorithm is that of I. Křivý and B. Gruber, Acta Cryst. A32, 297 (1976),
//with the numerically stable comparisons of R. W. Grosse-Kunstleve,
//N. K. Sauter and P. D. Adams, Acta Cryst. A60, 1 (2004).
func NiggliReduce(cell *Cell, epsfactor float64) (*Cell, Op, error) {
	C, _, err := niggliReduce(cell, epsfactor)
	if err != nil {
		return nil, C, err
	}
	return cell.Transformed(C), C, nil
}

//NiggliPar returns the parameters of the Niggli-reduced form of cell, and the
//operation that NiggliReduce would return. The parameters come from the metric vector
//updated along the reduction, not from the reduced cell, so they can be used to check the operation.
func NiggliPar(cell *Cell, epsfactor float64) (Par, Op, error) {
	C, g, err := niggliReduce(cell, epsfactor)
	if err != nil {
		return Par{}, C, errDecorate(err, "NiggliPar")
	}
	return metricPar(g), C, nil
}

//metricPar returns the cell parameters for the metric vector g (see metricVector).
func metricPar(g [6]float64) Par {
	var p Par
	for i := 0; i < 3; i++ {
		p[i] = math.Sqrt(math.Max(g[i], 0))
	}
	for i := 0; i < 3; i++ {
		ll := p[(i+1)%3] * p[(i+2)%3]
		if ll < zeroLength*zeroLength {
			p[3+i] = 90
			continue
		}
		x := g[3+i] / (2 * ll)
		p[3+i] = Rad2Deg(math.Acos(math.Max(-1, math.Min(1, x))))
	}
	return p
}

//niggliReduce returns the Niggli operation for cell and the metric vector of the reduced cell.
func niggliReduce(cell *Cell, epsfactor float64) (Op, [6]float64, error) {
	if epsfactor <= 0 {
		epsfactor = DefaultNiggliEps
	}
	vol := cell.Volume()
	if vol == 0 {
		return Op{}, [6]float64{}, NewError(ErrDegenerateBasis, true, "NiggliReduce", "cell has zero volume: %v", cell.Par())
	}
	eps := epsfactor * math.Cbrt(vol)

	lt := func(x, y, eps float64) bool { return x < y-eps }
	gt := func(x, y, eps float64) bool { return lt(y, x, eps) }
	eq := func(x, y, eps float64) bool { return !(lt(x, y, eps) || gt(x, y, eps)) }

	g0 := metricVector(cell)
	C := Identity
	D := sixIdentity()
	g := D.apply(g0)

	for iter := 0; iter < maxNiggliIterations; iter++ {
		if gt(g[0], g[1], eps) || (eq(g[0], g[1], eps) && gt(math.Abs(g[3]), math.Abs(g[4]), eps)) {
			C = C.Mul(Op{{0, -1, 0}, {-1, 0, 0}, {0, 0, -1}})
			D = D.permuteRows([6]int{1, 0, 2, 4, 3, 5})
			g = D.apply(g0)
			continue
		} else if gt(g[1], g[2], eps) || (eq(g[1], g[2], eps) && gt(math.Abs(g[4]), math.Abs(g[5]), eps)) {
			C = C.Mul(Op{{-1, 0, 0}, {0, 0, -1}, {0, -1, 0}})
			D = D.permuteRows([6]int{0, 2, 1, 3, 5, 4})
			g = D.apply(g0)
			continue
		}

		//Signs of the off-diagonal terms: either all positive or none.
		var lmn [3]int
		for i := 0; i < 3; i++ {
			if gt(g[3+i], 0, eps/2) {
				lmn[i] = 1
			} else if lt(g[3+i], 0, eps/2) {
				lmn[i] = -1
			}
		}
		ijk := [3]int{1, 1, 1}
		if lmn[0]*lmn[1]*lmn[2] == 1 {
			ijk = lmn
		} else if lmn != [3]int{-1, -1, -1} {
			r := -1
			for i := 0; i < 3; i++ {
				if lmn[i] == 1 {
					ijk[i] = -1
				} else if lmn[i] == 0 {
					r = i
				}
			}
			if ijk[0]*ijk[1]*ijk[2] == -1 && r >= 0 {
				ijk[r] = -1
			}
		}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				C[i][j] *= ijk[j]
			}
		}
		for j := 0; j < 6; j++ {
			D[3][j] *= ijk[1] * ijk[2]
			D[4][j] *= ijk[0] * ijk[2]
			D[5][j] *= ijk[0] * ijk[1]
		}
		g = D.apply(g0)

		A := Identity
		B := sixIdentity()
		switch {
		case gt(math.Abs(g[3]), g[1], eps) || (eq(g[3], g[1], eps) && lt(2*g[4], g[5], eps)) || (eq(g[3], -g[1], eps) && lt(g[5], 0, eps)):
			s := sign(g[3])
			A[1][2] = -s
			B[2][1] = 1
			B[2][3] = -s
			B[3][1] = -2 * s
			B[4][5] = -s
		case gt(math.Abs(g[4]), g[0], eps) || (eq(g[4], g[0], eps) && lt(2*g[3], g[5], eps)) || (eq(g[4], -g[0], eps) && lt(g[5], 0, eps)):
			s := sign(g[4])
			A[0][2] = -s
			B[2][0] = 1
			B[2][4] = -s
			B[3][5] = -s
			B[4][0] = -2 * s
		case gt(math.Abs(g[5]), g[0], eps) || (eq(g[5], g[0], eps) && lt(2*g[3], g[4], eps)) || (eq(g[5], -g[0], eps) && lt(g[4], 0, eps)):
			s := sign(g[5])
			A[0][1] = -s
			B[1][0] = 1
			B[1][5] = -s
			B[3][4] = -s
			B[5][0] = -2 * s
		case lt(g[0]+g[1]+g[3]+g[4]+g[5], 0, eps) || (eq(g[0]+g[1]+g[3]+g[4]+g[5], 0, eps) && gt(2*(g[0]+g[4])+g[5], 0, eps)):
			A[0][2] = 1
			A[1][2] = 1
			A[2][2] = 1
			B[2] = [6]int{1, 1, 1, 1, 1, 1}
			B[3][1] = 2
			B[3][5] = 1
			B[4][0] = 2
			B[4][5] = 1
		default:
			return C, g, nil
		}
		C = C.Mul(A)
		D = B.mul(D)
		g = D.apply(g0)
	}
	return C, g, NewError(ErrNiggliNotConverged, true, "NiggliReduce", "not done in %d steps. cell=%v operation=%v", maxNiggliIterations, cell.Par(), C)
}
