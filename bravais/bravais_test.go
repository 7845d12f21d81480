/*
 * bravais_test.go, part of golattice.
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
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	lattice "github.com/rmera/golattice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func mustNew(t *testing.T, name Name, values ...float64) *Lattice {
	t.Helper()
	L, err := New(name, values...)
	require.NoError(t, err, "%s%v", name, values)
	return L
}

func TestNew(t *testing.T) {
	L := mustNew(t, BCT, 3, 5)
	assert.Equal(t, BCT, L.Name())
	assert.Equal(t, []float64{3, 5}, L.Values())
	assert.Equal(t, map[string]float64{"a": 3, "c": 5}, L.Parameters())
	assert.Equal(t, "BCT(a=3, c=5)", L.String())

	_, err := New("XYZ", 1)
	assert.ErrorIs(t, err, lattice.ErrInput)
	_, err = New(ORC, 1, 2)
	assert.ErrorIs(t, err, lattice.ErrInput)
	assert.True(t, lattice.IsCritical(err))
	_, err = New(TET, 1, -2)
	assert.ErrorIs(t, err, lattice.ErrInput)
	_, err = New(TET, 1, math.NaN())
	assert.ErrorIs(t, err, lattice.ErrInput)

	for _, c := range []struct {
		name   Name
		values []float64
	}{
		{ORC, []float64{3, 2, 1}},
		{ORCF, []float64{1, 1, 2}},
		{ORCI, []float64{1, 3, 2}},
		{ORCC, []float64{2, 2, 1}},
		{RHL, []float64{1, 120}},
		{MCL, []float64{1, 3, 2, 70}},
		{MCLC, []float64{1, 2, 3, 95}},
		{TRI, []float64{1, 1, 1, 10, 10, 100}},
	} {
		_, err := New(c.name, c.values...)
		require.Error(t, err, "%s%v", c.name, c.values)
		assert.ErrorIs(t, err, lattice.ErrUnconventional)
		assert.False(t, lattice.IsCritical(err))
	}
}

func TestParseName(t *testing.T) {
	n, err := ParseName(" mclc")
	require.NoError(t, err)
	assert.Equal(t, MCLC, n)
	_, err = ParseName("FOO")
	assert.ErrorIs(t, err, lattice.ErrInput)
	assert.Equal(t, []string{"a", "alpha"}, ParNames(RHL))
	assert.Nil(t, ParNames("FOO"))
	assert.Len(t, Names, 14)
}

func TestCanonicalCells(t *testing.T) {
	bccAngle := lattice.Rad2Deg(math.Acos(-1.0 / 3.0))
	orccLen := math.Sqrt(5) / 2
	cases := []struct {
		lat *Lattice
		par lattice.Par
	}{
		{mustNew(t, CUB, 2), lattice.Par{2, 2, 2, 90, 90, 90}},
		{mustNew(t, FCC, 1), lattice.Par{math.Sqrt(0.5), math.Sqrt(0.5), math.Sqrt(0.5), 60, 60, 60}},
		{mustNew(t, BCC, 1), lattice.Par{math.Sqrt(3) / 2, math.Sqrt(3) / 2, math.Sqrt(3) / 2, bccAngle, bccAngle, bccAngle}},
		{mustNew(t, TET, 1, 2), lattice.Par{1, 1, 2, 90, 90, 90}},
		{mustNew(t, ORC, 1, 2, 3), lattice.Par{1, 2, 3, 90, 90, 90}},
		{mustNew(t, ORCC, 1, 2, 3), lattice.Par{orccLen, orccLen, 3, 90, 90, lattice.Rad2Deg(math.Acos(-0.6))}},
		{mustNew(t, HEX, 1, 2), lattice.Par{1, 1, 2, 90, 90, 120}},
		{mustNew(t, RHL, 1, 70), lattice.Par{1, 1, 1, 70, 70, 70}},
		{mustNew(t, RHL, 2, 110), lattice.Par{2, 2, 2, 110, 110, 110}},
		{mustNew(t, MCL, 1, 2, 3, 70), lattice.Par{1, 2, 3, 70, 90, 90}},
		{mustNew(t, TRI, 2, 3, 4, 70, 80, 100), lattice.Par{2, 3, 4, 70, 80, 100}},
	}
	for _, c := range cases {
		assert.Less(t, c.lat.Cell().Par().MaxDiff(c.par), 1e-10, "%v: %v", c.lat, c.lat.Cell().Par())
	}
}

func TestCheckerQuery(t *testing.T) {
	lats := []*Lattice{
		mustNew(t, CUB, 1.5),
		mustNew(t, FCC, 1),
		mustNew(t, BCC, 1),
		mustNew(t, TET, 1, 2),
		mustNew(t, BCT, 3, 5),
		mustNew(t, ORC, 1, 2, 3),
		mustNew(t, ORCC, 1, 2, 3),
		mustNew(t, ORCF, 1, 2, 3),
		mustNew(t, ORCI, 1, 2, 3),
		mustNew(t, HEX, 1, 2),
		mustNew(t, RHL, 1, 70),
		mustNew(t, MCL, 1, 2, 3, 70),
		mustNew(t, MCLC, 1, 2, 3, 70),
		mustNew(t, TRI, 2, 3, 4, 70, 80, 100),
	}
	for _, L := range lats {
		got, err := NewChecker(L.Cell(), 1e-6).Query(L.Name())
		require.NoError(t, err, "%v", L)
		assert.Equal(t, L.Name(), got.Name())
		assert.InDeltaSlice(t, L.Values(), got.Values(), 1e-9, "%v", L)
	}
}

func TestCheckerNoMatch(t *testing.T) {
	cub := mustNew(t, CUB, 1)
	ch := NewChecker(cub.Cell(), 1e-6)
	_, err := ch.Query(FCC)
	require.Error(t, err)
	assert.ErrorIs(t, err, lattice.ErrNoMatch)
	assert.False(t, lattice.IsCritical(err))
	_, err = ch.Query(ORCC) //a = b gives an unconventional ORCC
	assert.ErrorIs(t, err, lattice.ErrUnconventional)
	assert.False(t, lattice.IsCritical(err))
	_, err = ch.Query("XYZ")
	assert.True(t, lattice.IsCritical(err))

	var names []Name
	for _, L := range ch.Match() {
		names = append(names, L.Name())
	}
	assert.Equal(t, []Name{CUB, TET, RHL, TRI}, names)
}

func TestDefaultTable(t *testing.T) {
	tab := DefaultTable()
	require.NoError(t, tab.Validate())
	expected := map[Name]int{CUB: 1, FCC: 1, BCC: 1, TET: 2, BCT: 5, ORC: 1, ORCC: 5, ORCF: 2, ORCI: 4, HEX: 2, RHL: 3, MCL: 8, MCLC: 15}
	assert.Len(t, tab, len(expected))
	for name, n := range expected {
		assert.Len(t, tab[name], n, "%s", name)
	}
	assert.NotContains(t, tab, TRI)
	assert.Equal(t, 50, tab.Len())
	for name, ops := range tab {
		seen := make(map[lattice.Op]bool)
		for _, op := range ops {
			assert.True(t, op.Unimodular(), "%s %v", name, op)
			assert.NoError(t, CheckOp(op))
			assert.False(t, seen[op], "%s: repeated operation %v", name, op)
			seen[op] = true
		}
	}
	assert.Contains(t, tab[BCT], lattice.OpFromFlat([9]int{0, 1, 0, 1, 0, 0, 1, 1, -1}))

	//The copies are independent.
	tab[CUB][0] = lattice.Op{}
	delete(tab, BCC)
	again := DefaultTable()
	assert.Equal(t, lattice.Identity, again[CUB][0])
	assert.Contains(t, again, BCC)
}

func TestParseTableErrors(t *testing.T) {
	_, err := ParseTable([]byte("CUB:\n  - [2, 0, 0, 0, 1, 0, 0, 0, 1]\n"))
	assert.ErrorIs(t, err, lattice.ErrIntegrity)
	_, err = ParseTable([]byte("FOO:\n  - [1, 0, 0, 0, 1, 0, 0, 0, 1]\n"))
	assert.ErrorIs(t, err, lattice.ErrInput)
	_, err = ParseTable([]byte("CUB:\n  - [1, 0, 0, 0, 1, 0, 0, 0]\n"))
	assert.ErrorIs(t, err, lattice.ErrInput)
	_, err = ParseTable([]byte("TRI:\n  - [1, 0, 0, 0, 1, 0, 0, 0, 1]\n"))
	assert.ErrorIs(t, err, lattice.ErrIntegrity)
	_, err = ParseTable([]byte("CUB: [[1, 0"))
	assert.ErrorIs(t, err, lattice.ErrInput)
	_, err = ReadTable(strings.NewReader("BCT:\n  - [1, 0, 0, 0, 1, 0, 0, 0, 1]\n"))
	assert.NoError(t, err)
}

func TestTableFiles(t *testing.T) {
	tab := DefaultTable()
	data, err := tab.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "[0, 1, 0, 1, 0, 0, 1, 1, -1]")
	//canonical order
	assert.Less(t, bytes.Index(data, []byte("CUB:")), bytes.Index(data, []byte("FCC:")))
	assert.Less(t, bytes.Index(data, []byte("RHL:")), bytes.Index(data, []byte("MCLC:")))
	parsed, err := ParseTable(data)
	require.NoError(t, err)
	assert.Equal(t, tab, parsed)

	dir := t.TempDir()
	for _, name := range []string{"ops.yaml", "ops.yaml.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(t, tab.WriteFile(path))
		read, err := LoadTable(path)
		require.NoError(t, err, name)
		assert.Equal(t, tab, read, name)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "ops.yaml.zst"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte{0x28, 0xb5, 0x2f, 0xfd}), "the .zst file should be compressed")

	_, err = LoadTable(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, lattice.ErrInput)
}

//checkRoundTrip verifies that cell = opᵀ·L.Cell(), up to a rotation.
func checkRoundTrip(t *testing.T, cell *lattice.Cell, L *Lattice, op lattice.Op, tol float64) {
	t.Helper()
	assert.True(t, op.Unimodular(), "%v", op)
	d, err := lattice.Diff(cell, L.Cell().Transformed(op))
	require.NoError(t, err)
	assert.Less(t, d, tol, "%v %v", L, op)
}

func TestIdentifyCubic(t *testing.T) {
	cell, err := lattice.NewCell([]float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	require.NoError(t, err)
	L, op, err := Identify(cell, DefaultEps)
	require.NoError(t, err)
	assert.Equal(t, CUB, L.Name())
	assert.InDelta(t, 1.0, L.Values()[0], 1e-12)
	assert.Equal(t, lattice.Identity, op)
}

func TestIdentifyFCC(t *testing.T) {
	cell, err := lattice.NewCell([]float64{0, 0.5, 0.5, 0.5, 0, 0.5, 0.5, 0.5, 0})
	require.NoError(t, err)
	L, op, err := Identify(cell, 0)
	require.NoError(t, err)
	assert.Equal(t, FCC, L.Name())
	assert.InDelta(t, 1.0, L.Values()[0], 1e-12)
	checkRoundTrip(t, cell, L, op, 1e-10)
}

func TestIdentifyBCT(t *testing.T) {
	cell := mustNew(t, BCT, 3, 5).Cell()
	L, op, err := Identify(cell, DefaultEps)
	require.NoError(t, err)
	assert.Equal(t, BCT, L.Name())
	assert.InDeltaSlice(t, []float64{3, 5}, L.Values(), 1e-8)
	checkRoundTrip(t, cell, L, op, 1e-10)
}

//A BCT cell in a different basis, rotated.
func TestIdentifyTransformedBCT(t *testing.T) {
	base := mustNew(t, BCT, 3, 5).Cell()
	U := lattice.Op{{1, 1, 0}, {0, 1, 0}, {-1, 0, 1}}
	s, c := math.Sin(0.4), math.Cos(0.4)
	R := mat.NewDense(3, 3, []float64{c, -s, 0, s, c, 0, 0, 0, 1})
	var m mat.Dense
	m.Mul(base.Transformed(U), R)
	cell, err := lattice.CellFromMatrix(&m)
	require.NoError(t, err)
	L, op, err := Identify(cell, DefaultEps)
	require.NoError(t, err)
	assert.Equal(t, BCT, L.Name())
	assert.InDeltaSlice(t, []float64{3, 5}, L.Values(), 1e-8)
	checkRoundTrip(t, cell, L, op, 1e-10)
}

func TestIdentifyMCL(t *testing.T) {
	cell := mustNew(t, MCL, 2, 3, 4, 70).Cell()
	L, op, err := Identify(cell, DefaultEps)
	require.NoError(t, err)
	assert.Equal(t, MCL, L.Name())
	assert.InDeltaSlice(t, []float64{2, 3, 4, 70}, L.Values(), 1e-8)
	assert.Equal(t, lattice.Identity, op)
}

func TestIdentifyUnrecognized(t *testing.T) {
	cell, err := lattice.NewCell([]float64{1.3, 0.1, 0.2, 0.3, 1.7, 0.05, 0.4, 0.25, 2.3})
	require.NoError(t, err)
	_, _, err = Identify(cell, DefaultEps)
	require.Error(t, err)
	assert.ErrorIs(t, err, lattice.ErrUnrecognized)
	assert.True(t, lattice.IsCritical(err))
	var uerr *UnrecognizedError
	require.ErrorAs(t, err, &uerr)
	assert.Less(t, uerr.Par.MaxDiff(cell.Par()), 1e-12)
}

func TestIdentifyDegenerate(t *testing.T) {
	cell, err := lattice.NewCell([]float64{1, 0, 0, 0, 1, 0, 1, 1, 0})
	require.NoError(t, err)
	_, _, err = Identify(cell, DefaultEps)
	assert.ErrorIs(t, err, lattice.ErrDegenerateBasis)
}

func TestClassifierRecognizerErrors(t *testing.T) {
	cell := mustNew(t, CUB, 1).Cell()
	crit := lattice.NewError(lattice.ErrIntegrity, true, "test", "broken")
	calls := 0
	c := NewClassifier()
	c.Recognizer = RecognizerFunc(func(cell *lattice.Cell, eps float64) (*Lattice, error) {
		calls++
		return nil, crit
	})
	_, _, err := c.Identify(cell, DefaultEps)
	assert.ErrorIs(t, err, lattice.ErrIntegrity)
	assert.Equal(t, 1, calls)

	//Non-critical errors are just non-matches, and TRI results are ignored.
	tri := mustNew(t, TRI, 1, 1, 1, 90, 90, 90)
	c.Recognizer = RecognizerFunc(func(cell *lattice.Cell, eps float64) (*Lattice, error) {
		calls++
		if calls%2 == 0 {
			return tri, nil
		}
		return nil, lattice.NewError(lattice.ErrNoMatch, false, "test", "no")
	})
	calls = 0
	_, _, err = c.Identify(cell, DefaultEps)
	assert.ErrorIs(t, err, lattice.ErrUnrecognized)
	assert.Equal(t, c.Table.Len(), calls)
}

//When several lattices match, the one that comes first in Names wins, no matter
//which operation gave it.
func TestClassifierPriority(t *testing.T) {
	cell := mustNew(t, CUB, 1).Cell()
	cub := mustNew(t, CUB, 1)
	tet := mustNew(t, TET, 1, 1)
	calls := 0
	c := NewClassifier()
	c.Recognizer = RecognizerFunc(func(cell *lattice.Cell, eps float64) (*Lattice, error) {
		calls++
		switch calls {
		case 1:
			return tet, nil
		case 2:
			return cub, nil
		}
		return nil, lattice.NewError(lattice.ErrNoMatch, false, "test", "no")
	})
	L, _, err := c.Identify(cell, DefaultEps)
	require.NoError(t, err)
	assert.Same(t, cub, L)

	c.Table = OpTable{TET: c.Table[TET]}
	c.Recognizer = RecognizerFunc(func(cell *lattice.Cell, eps float64) (*Lattice, error) {
		return tet, nil
	})
	L, _, err = c.Identify(cell, DefaultEps)
	require.NoError(t, err)
	assert.Same(t, tet, L)
}

//A hexagonal cell is also a base-centered orthorhombic one with b = √3a.
//Best must prefer HEX.
func TestCheckerBest(t *testing.T) {
	hex := mustNew(t, HEX, 1, 2)
	ch := NewChecker(hex.Cell(), 1e-6)
	var names []Name
	for _, L := range ch.Match() {
		names = append(names, L.Name())
	}
	assert.Contains(t, names, ORCC)
	assert.Contains(t, names, HEX)
	L, err := ch.Best()
	require.NoError(t, err)
	assert.Equal(t, HEX, L.Name())
	assert.InDeltaSlice(t, []float64{1, 2}, L.Values(), 1e-9)

	L, err = NewChecker(mustNew(t, CUB, 1).Cell(), 1e-6).Best()
	require.NoError(t, err)
	assert.Equal(t, CUB, L.Name())

	//Only TRI matches an arbitrary cell, and Best does return it.
	tri := mustNew(t, TRI, 2, 3, 4, 70, 80, 100)
	L, err = NewChecker(tri.Cell(), 1e-6).Best()
	require.NoError(t, err)
	assert.Equal(t, TRI, L.Name())

	//A degenerate cell matches nothing.
	flat, err := lattice.NewCell([]float64{1, 0, 0, 0, 1, 0, 1, 1, 0})
	require.NoError(t, err)
	_, err = NewChecker(flat, 1e-6).Best()
	assert.ErrorIs(t, err, lattice.ErrNoMatch)
	assert.False(t, lattice.IsCritical(err))
}

func TestIdentifyHEX(t *testing.T) {
	for _, v := range [][]float64{{1, 2}, {2.46, 6.7}, {3, 0.5}} {
		cell := mustNew(t, HEX, v...).Cell()
		L, op, err := Identify(cell, DefaultEps)
		require.NoError(t, err, "%v", v)
		assert.Equal(t, HEX, L.Name(), "%v identified as %v", v, L)
		assert.InDeltaSlice(t, v, L.Values(), 1e-8)
		checkRoundTrip(t, cell, L, op, 1e-10)
	}
}

//Rhombohedral cells have three vectors of the same length, which the
//reductions have to handle without looping.
func TestIdentifyRHL(t *testing.T) {
	for _, v := range [][]float64{{1, 78}, {2, 60.5}, {1, 44}, {0.5, 111}} {
		cell := mustNew(t, RHL, v...).Cell()
		L, op, err := Identify(cell, DefaultEps)
		require.NoError(t, err, "%v", v)
		assert.Equal(t, RHL, L.Name(), "%v identified as %v", v, L)
		assert.InDeltaSlice(t, v, L.Values(), 1e-8)
		checkRoundTrip(t, cell, L, op, 1e-10)
	}
}

//samples returns the lattices of the given type with parameters from the grid. The first
//length (the third, for MCL and MCLC) is always 1. Unconventional combinations are skipped.
func samples(name Name, lengths, angles []float64) []*Lattice {
	var ret []*Lattice
	pn := ParNames(name)
	vals := make([]float64, len(pn))
	var rec func(i int)
	rec = func(i int) {
		if i == len(pn) {
			if L, err := New(name, vals...); err == nil {
				ret = append(ret, L)
			}
			return
		}
		var grid []float64
		switch {
		case (pn[i] == "a" && name != MCL && name != MCLC) || (pn[i] == "c" && (name == MCL || name == MCLC)):
			grid = []float64{1}
		case pn[i] == "alpha":
			grid = angles
		default:
			grid = lengths
		}
		for _, v := range grid {
			vals[i] = v
			rec(i + 1)
		}
	}
	rec(0)
	return ret
}

func testGrid() ([]float64, []float64) {
	lengths := make([]float64, 11)
	angles := make([]float64, 11)
	for i := range lengths {
		lengths[i] = math.Round(math.Pow(10, -0.5+0.2*float64(i))*1000) / 1000
		angles[i] = math.Round(10 + 16.9*float64(i))
	}
	return lengths, angles
}

//Every lattice of the grid is recognized as itself.
func TestIdentifyGrid(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive grid test skipped in short mode")
	}
	lengths, angles := testGrid()
	for _, name := range []Name{CUB, FCC, BCC, TET, BCT, ORC, ORCC, ORCF, ORCI, HEX, RHL} {
		lats := samples(name, lengths, angles)
		require.NotEmpty(t, lats, "%s", name)
		for _, in := range lats {
			cell := in.Cell()
			L, op, err := Identify(cell, DefaultEps)
			if !assert.NoError(t, err, "%v", in) {
				continue
			}
			assert.NotEqual(t, TRI, L.Name())
			assert.Equal(t, in.Name(), L.Name(), "%v", in)
			assert.Less(t, L.Cell().Par().MaxDiff(cell.Par()), 1e-8, "%v identified as %v", in, L)
			checkRoundTrip(t, cell, L, op, 1e-6)
		}
	}
}
