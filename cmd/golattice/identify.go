/*
 * identify.go, part of golattice.
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
	"fmt"
	"strconv"

	lattice "github.com/rmera/golattice"
	"github.com/rmera/golattice/bravais"
	"github.com/spf13/cobra"
)

func identifyCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identify [--] a1x a1y a1z a2x a2y a2z a3x a3y a3z",
		Short: "Identify the Bravais lattice of a cell",
		Long:  `Identify the Bravais lattice of the cell given by its 3 lattice vectors, and print the operation that relates the cell with the canonical cell of the lattice.
Use -- before the vectors if any component is negative.`,
		Args:  cobra.ExactArgs(9),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.identify(cmd, args)
		},
	}
	cmd.Flags().Float64("eps", bravais.DefaultEps, "Tolerance for the recognition of lattices")
	cmd.Flags().Float64("niggli-eps", lattice.DefaultNiggliEps, "Relative tolerance for the Niggli reduction")
	cmd.Flags().String("table", "", "File with the table of Niggli operations (.yaml or .yaml.zst). The embedded table is used if not given")
	a.bindFlags(cmd)
	return cmd
}

func (a *app) identify(cmd *cobra.Command, args []string) error {
	data := make([]float64, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid lattice vector component %q: %w", s, err)
		}
		data[i] = v
	}
	cell, err := lattice.NewCell(data)
	if err != nil {
		return err
	}
	tab, err := a.table()
	if err != nil {
		return err
	}
	c := &bravais.Classifier{
		Table:      tab,
		Recognizer: bravais.CheckerRecognizer{},
		NiggliEps:  a.settings.NiggliEps,
		Log:        a.log,
	}
	L, op, err := c.Identify(cell, a.settings.Eps)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Lattice: %v\n", L)
	fmt.Fprintf(out, "Cell parameters: %v\n", cell.Par())
	fmt.Fprintf(out, "Operation: %v\n", op)
	fmt.Fprintf(out, "Canonical cell:\n%v\n", L.Cell())
	return nil
}
