/*
 * main_test.go, part of golattice.
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

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	lattice "github.com/rmera/golattice"
	"github.com/rmera/golattice/bravais"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//run executes golattice with args, and returns the app, the standard output and the error.
func run(t *testing.T, args ...string) (*app, string, error) {
	t.Helper()
	a := newApp()
	cmd := a.command()
	var out, errout bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errout)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return a, out.String(), err
}

func TestIdentifyCommand(t *testing.T) {
	a, out, err := run(t, "identify", "2", "0", "0", "0", "2", "0", "0", "0", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Lattice: CUB(a=2)")
	assert.Contains(t, out, "Operation: "+lattice.Identity.String())
	assert.Equal(t, bravais.DefaultEps, a.settings.Eps)
	assert.Equal(t, lattice.DefaultNiggliEps, a.settings.NiggliEps)
	assert.False(t, a.settings.Debug)

	_, out, err = run(t, "identify", "--", "-2", "0", "0", "0", "2", "0", "0", "0", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Lattice: CUB(a=2)")

	_, _, err = run(t, "identify", "1", "0", "0")
	assert.Error(t, err)
	_, _, err = run(t, "identify", "1", "0", "0", "0", "1", "0", "0", "0", "x")
	assert.Error(t, err)
	_, _, err = run(t, "identify", "1", "0", "0", "0", "1", "0", "1", "1", "0")
	assert.ErrorIs(t, err, lattice.ErrDegenerateBasis)
	_, _, err = run(t, "identify", "--table", filepath.Join(t.TempDir(), "none.yaml"), "1", "0", "0", "0", "1", "0", "0", "0", "1")
	assert.ErrorIs(t, err, lattice.ErrInput)
}

func TestSettingsSources(t *testing.T) {
	t.Setenv("GOLATTICE_NIGGLI_EPS", "0.001")
	a, _, err := run(t, "identify", "--eps", "0.01", "1", "0", "0", "0", "1", "0", "0", "0", "1")
	require.NoError(t, err)
	assert.Equal(t, 0.01, a.settings.Eps)
	assert.Equal(t, 0.001, a.settings.NiggliEps)

	conf := filepath.Join(t.TempDir(), "golattice.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("debug: true\neps: 0.003\n"), 0o644))
	a, _, err = run(t, "--config", conf, "identify", "1", "0", "0", "0", "1", "0", "0", "0", "1")
	require.NoError(t, err)
	assert.True(t, a.settings.Debug)
	assert.Equal(t, 0.003, a.settings.Eps)

	_, _, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "identify", "1", "0", "0", "0", "1", "0", "0", "0", "1")
	assert.Error(t, err)
}

func TestTableCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ops.yaml.zst")
	diag := filepath.Join(dir, "diagnostics.json")
	a, out, err := run(t, "table", "--lattices", "cub,tet", "--lengths", "3", "--angles", "3", "-w", "1", "-o", path, "--diagnostics", diag)
	require.NoError(t, err)
	assert.Equal(t, []string{"cub", "tet"}, a.settings.Lattices)
	assert.Contains(t, out, "CUB: 1 samples, 0 skipped, 1 operations")
	assert.Contains(t, out, "TET: 3 samples")

	tab, err := bravais.LoadTable(path)
	require.NoError(t, err)
	assert.Len(t, tab, 2)
	assert.Equal(t, []lattice.Op{lattice.Identity}, tab[bravais.CUB])

	data, err := os.ReadFile(diag)
	require.NoError(t, err)
	var d struct {
		Lattices []struct {
			Name    string `json:"name"`
			Samples int    `json:"samples"`
		} `json:"lattices"`
	}
	require.NoError(t, json.Unmarshal(data, &d))
	require.Len(t, d.Lattices, 2)
	assert.Equal(t, "TET", d.Lattices[1].Name)
	assert.Equal(t, 3, d.Lattices[1].Samples)

	// The table goes to the standard output if no file is given.
	_, out, err = run(t, "table", "--lattices", "CUB", "--lengths", "3", "--angles", "3")
	require.NoError(t, err)
	tab, err = bravais.ParseTable([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []lattice.Op{lattice.Identity}, tab[bravais.CUB])

	_, _, err = run(t, "table", "--lattices", "FOO")
	assert.ErrorIs(t, err, lattice.ErrInput)
	_, _, err = run(t, "table", "--lengths", "0")
	assert.Error(t, err)
}
