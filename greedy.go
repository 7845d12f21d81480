/*
 * greedy.go, part of golattice.
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
	"sort"

	v3 "github.com/rmera/golattice/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//MaxGreedyIterations is the maximum number of iterations that GreedyReduce
//will perform at each level of the recursion before giving up.
const MaxGreedyIterations = 1000

//GreedyReduce returns a shorter, more orthogonal basis for the lattice spanned by the
//vectors (1 to 3) in cell, and the total number of iterations needed.
//cell is not modified.
//The reduction is recursive: the n-1 shortest vectors are reduced, and then the
//closest point of the lattice they span is subtracted from the longest vector,
//until that vector is no shorter than the second-longest one.
func GreedyReduce(cell *v3.Matrix) (*v3.Matrix, int, error) {
	n := cell.NVecs()
	if n < 1 || n > 3 {
		return nil, 0, NewError(ErrInput, true, "GreedyReduce", "can only reduce 1 to 3 vectors, got %d", n)
	}
	var vecs [3][3]float64
	for i := 0; i < n; i++ {
		copy(vecs[i][:], cell.RawRowView(i))
	}
	iters, err := greedyReduce(vecs[:n])
	if err != nil {
		return nil, iters, errDecorate(err, "GreedyReduce")
	}
	ret := v3.Zeros(n)
	for i := 0; i < n; i++ {
		copy(ret.RawRowView(i), vecs[i][:])
	}
	return ret, iters, nil
}

//greedyReduce works in place on vecs. Sub-bases are just shorter slices of
//the same array.
func greedyReduce(vecs [][3]float64) (int, error) {
	n := len(vecs)
	if n == 1 {
		return 0, nil
	}
	m := n - 1
	sub := vecs[:m]
	H := mat.NewDense(m, m, nil)
	var Hinv mat.Dense
	coords := mat.NewVecDense(m, nil)
	y := mat.NewVecDense(m, nil)
	iters := 0
	for it := 0; it < MaxGreedyIterations; it++ {
		sortByNorm(vecs)
		subiters, err := greedyReduce(sub)
		iters += subiters + 1
		if err != nil {
			return iters, err
		}
		last := vecs[m][:]
		for i := 0; i < m; i++ {
			vv := floats.Dot(sub[i][:], sub[i][:])
			if vv == 0 {
				return iters, NewError(ErrDegenerateBasis, true, "greedyReduce", "zero-length vector in basis")
			}
			//Not the symmetric Gram matrix: each row is normalized by the norm of its vector.
			for j := 0; j < m; j++ {
				H.Set(i, j, floats.Dot(sub[i][:], sub[j][:])/vv)
			}
			coords.SetVec(i, floats.Dot(sub[i][:], last)/vv)
		}
		if err := Hinv.Inverse(H); err != nil {
			if c, ok := err.(mat.Condition); !ok || math.IsInf(float64(c), 1) {
				return iters, NewError(ErrDegenerateBasis, true, "greedyReduce", "linearly dependent vectors: %v", err)
			}
		}
		y.MulVec(&Hinv, coords)
		closest := closestCandidate(sub, y.RawVector().Data, last)
		floats.Sub(last, closest[:])
		//Squared norms, as in sortByNorm. The norms themselves can differ in the last bit.
		if floats.Dot(last, last) >= floats.Dot(vecs[m-1][:], vecs[m-1][:]) {
			return iters, nil
		}
	}
	return iters, NewError(ErrReductionDiverged, true, "greedyReduce", "no convergence after %d iterations in rank %d", MaxGreedyIterations, n)
}

//closestCandidate returns, among the lattice points of sub with each coefficient
//either the floor or the ceiling of the corresponding element of y, the one closest
//to target. Ties are resolved in favor of the first candidate, with the coefficient of
//the first vector varying slowest.
func closestCandidate(sub [][3]float64, y []float64, target []float64) [3]float64 {
	m := len(sub)
	var closest [3]float64
	mindist := math.Inf(1)
	coefs := make([]float64, m)
	for combo := 0; combo < 1<<m; combo++ {
		for k := 0; k < m; k++ {
			if combo&(1<<(m-1-k)) == 0 {
				coefs[k] = math.Floor(y[k])
			} else {
				coefs[k] = math.Ceil(y[k])
			}
		}
		var candidate [3]float64
		for k := 0; k < m; k++ {
			floats.AddScaled(candidate[:], coefs[k], sub[k][:])
		}
		dist := floats.Distance(candidate[:], target, 2)
		if dist < mindist {
			mindist = dist
			closest = candidate
		}
	}
	return closest
}

//sortByNorm sorts the vectors by increasing squared norm. The sort is stable.
func sortByNorm(vecs [][3]float64) {
	sort.SliceStable(vecs, func(i, j int) bool {
		return floats.Dot(vecs[i][:], vecs[i][:]) < floats.Dot(vecs[j][:], vecs[j][:])
	})
}
