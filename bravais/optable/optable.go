/*
 * optable.go, part of golattice.
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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"strings"
	"time"

	lattice "github.com/rmera/golattice"
	"github.com/rmera/golattice/bravais"
	"github.com/rmera/golattice/histo"
	v3 "github.com/rmera/golattice/v3"
	"golang.org/x/sync/errgroup"
)

const (
	// VolumeTolerance is the largest relative change in the volume of a cell
	// allowed after the greedy reduction.
	VolumeTolerance = 1e-8
	// ParTolerance is the largest difference allowed between the parameters of a
	// Niggli-reduced cell and those of the original cell transformed with the Niggli operation.
	ParTolerance = 1e-7
)

//greedyDividers are the bins for the histogram of greedy iteration counts.
var greedyDividers = histo.UniformDividers(0, 40, 20)

//DefaultNames returns the lattices for which tables are built by default.
//MCL and MCLC have, in principle, an unbounded number of operations, and TRI has none.
func DefaultNames() []bravais.Name {
	ret := make([]bravais.Name, 0, len(bravais.Names))
	for _, n := range bravais.Names {
		if n != bravais.MCL && n != bravais.MCLC && n != bravais.TRI {
			ret = append(ret, n)
		}
	}
	return ret
}

//OpCount is a Niggli operation and the number of sampled cells that produced it.
type OpCount struct {
	Op    lattice.Op `json:"op"`
	Count int        `json:"count"`
}

//ClassResult contains the Niggli operations found for the samples of one Bravais lattice.
type ClassResult struct {
	Name    bravais.Name `json:"name"`
	Ops     []OpCount    `json:"operations"` //in the order in which they were first found
	Samples int          `json:"samples"`
	Skipped int          `json:"skipped"` //unconventional parameter combinations
	Greedy  *histo.Data  `json:"greedy_iterations"`
	index   map[lattice.Op]int
}

func newClassResult(name bravais.Name) *ClassResult {
	return &ClassResult{
		Name:   name,
		Greedy: histo.NewData(greedyDividers, nil, classID(name)),
		index:  make(map[lattice.Op]int),
	}
}

//classID is the position of name in bravais.Names. It is the ID of the greedy histogram of the class.
func classID(name bravais.Name) int {
	return slices.Index(bravais.Names, name)
}

func (C *ClassResult) add(op lattice.Op) bool {
	if i, ok := C.index[op]; ok {
		C.Ops[i].Count++
		return false
	}
	C.index[op] = len(C.Ops)
	C.Ops = append(C.Ops, OpCount{Op: op, Count: 1})
	return true
}

//FindOps Niggli-reduces every sample of the lattice name in grid, and collects the
//distinct operations obtained. Each sample is also greedy-reduced, for diagnostics.
//Any failed consistency check returns a critical error of kind ErrIntegrity.
func FindOps(ctx context.Context, name bravais.Name, grid Grid, log *slog.Logger) (*ClassResult, error) {
	if log == nil {
		log = slog.Default()
	}
	lats, skipped, err := Samples(name, grid)
	if err != nil {
		return nil, err
	}
	res := newClassResult(name)
	res.Skipped = skipped
	for _, L := range lats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		op, iters, err := reduceSample(L)
		if err != nil {
			return nil, err
		}
		res.Samples++
		res.Greedy.AddData(float64(iters))
		if res.add(op) {
			log.Debug("new Niggli operation", "lattice", name, "operation", op.String(), "sample", L.String())
		}
	}
	return res, nil
}

//reduceSample returns the Niggli operation for the canonical cell of L, and the number
//of iterations needed to greedy-reduce it.
func reduceSample(L *bravais.Lattice) (lattice.Op, int, error) {
	cell := L.Cell()
	integrity := func(format string, args ...interface{}) error {
		return lattice.NewError(lattice.ErrIntegrity, true, "optable.FindOps", L.String()+": "+format, args...)
	}
	greedy, iters, err := lattice.GreedyReduce(cell.Matrix())
	if err != nil {
		return lattice.Op{}, iters, err
	}
	vol := cell.Volume()
	if gvol := math.Abs(v3.Det(greedy)); math.Abs(gvol-vol) > VolumeTolerance*vol {
		return lattice.Op{}, iters, integrity("greedy reduction changed the volume from %g to %g", vol, gvol)
	}
	rpar, op, err := lattice.NiggliPar(cell, lattice.DefaultNiggliEps)
	if err != nil {
		return lattice.Op{}, iters, err
	}
	if err := bravais.CheckOp(op); err != nil {
		return lattice.Op{}, iters, integrity("Niggli operation: %v", err)
	}
	if d := cell.Transformed(op).Par().MaxDiff(rpar); d > ParTolerance {
		return lattice.Op{}, iters, integrity("operation %v doesn't reproduce the reduced cell (difference %g)", op, d)
	}
	return op, iters, nil
}

//Results contains the operations found for several lattices.
type Results struct {
	Classes []*ClassResult `json:"lattices"`
	Grid    Grid           `json:"grid"`
	Elapsed time.Duration  `json:"elapsed_ns"`
}

//Build runs FindOps for each lattice in names (DefaultNames if names is empty), using up to
//workers goroutines (the number of CPUs, if workers is not positive). The first error
//cancels the rest of the work and is returned. If log is nil, slog.Default() is used.
func Build(ctx context.Context, log *slog.Logger, names []bravais.Name, grid Grid, workers int) (*Results, error) {
	if log == nil {
		log = slog.Default()
	}
	if len(names) == 0 {
		names = DefaultNames()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	start := time.Now()
	classes := make([]*ClassResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		g.Go(func() error {
			t := time.Now()
			log.Info("sampling lattice", "lattice", name)
			res, err := FindOps(gctx, name, grid, log)
			if err != nil {
				log.Error("sampling failed", "lattice", name, "error", err)
				return err
			}
			classes[i] = res
			log.Info("lattice done", "lattice", name, "samples", res.Samples, "skipped", res.Skipped, "operations", len(res.Ops), "elapsed", time.Since(t))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Results{Classes: classes, Grid: grid, Elapsed: time.Since(start)}, nil
}

//Table returns the operations in r as a table. All distinct operations are kept, in the
//order in which they were found.
func (r *Results) Table() bravais.OpTable {
	t := make(bravais.OpTable, len(r.Classes))
	for _, c := range r.Classes {
		ops := make([]lattice.Op, 0, len(c.Ops))
		for _, o := range c.Ops {
			ops = append(ops, o.Op)
		}
		t[c.Name] = ops
	}
	return t
}

//Report writes a human-readable summary of r to w.
func (r *Results) Report(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Grid: %d lengths (%g to %g), %d angles (%g to %g). Elapsed: %v\n",
		len(r.Grid.Lengths), first(r.Grid.Lengths), last(r.Grid.Lengths),
		len(r.Grid.Angles), first(r.Grid.Angles), last(r.Grid.Angles), r.Elapsed.Round(time.Millisecond))
	if err != nil {
		return err
	}
	for _, c := range r.Classes {
		mean, sd := c.Greedy.MeanStdDev()
		if _, err := fmt.Fprintf(w, "%s: %d samples, %d skipped, %d operations. Greedy iterations: mean %.2f, stddev %.2f, max %g\n",
			c.Name, c.Samples, c.Skipped, len(c.Ops), mean, sd, c.Greedy.Max()); err != nil {
			return err
		}
		for _, o := range c.Ops {
			if _, err := fmt.Fprintf(w, "    %-40s %d\n", o.Op.String(), o.Count); err != nil {
				return err
			}
		}
	}
	all := r.Greedy()
	if all.Total() == 0 {
		return nil
	}
	raw := all.String()
	_, err = fmt.Fprintf(w, "Greedy iterations, all lattices:\n%s\n%s", raw, distribution(all))
	return err
}

//distribution normalizes h and returns the fraction of the data in each non-empty bin, one per line.
//The data are iteration counts, so whatever is not in a bin is beyond the last divider.
func distribution(h *histo.Data) string {
	h.Normalize()
	div := h.Dividers()
	var b strings.Builder
	for i, v := range h.View() {
		if v == 0 {
			continue
		}
		fmt.Fprintf(&b, "    %g-%g: %5.1f%%\n", div[i], div[i+1], 100*v)
	}
	fmt.Fprintf(&b, "    %g or more: %5.1f%%\n", div[len(div)-1], 100*math.Max(0, 1-h.Sum()))
	return b.String()
}

//Greedy returns the histogram of greedy iteration counts for all the lattices in r.
func (r *Results) Greedy() *histo.Data {
	all := histo.NewData(greedyDividers, nil)
	for _, c := range r.Classes {
		//All the histograms are built with the same dividers.
		if err := all.Merge(c.Greedy); err != nil {
			panic(fmt.Sprintf("goLattice/optable: histogram %d: %v", c.Greedy.ID(), err))
		}
	}
	return all
}

//WriteJSON writes r, including the greedy histograms, in JSON format to w.
func (r *Results) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func first(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return s[0]
}

func last(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}
