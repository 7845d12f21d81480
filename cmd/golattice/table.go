/*
 * table.go, part of golattice.
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
	"os"

	"github.com/rmera/golattice/bravais"
	"github.com/rmera/golattice/bravais/optable"
	"github.com/spf13/cobra"
)

func tableCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Build the table of Niggli operations",
		Long: `Sample lattices of each Bravais type over a grid of lengths and angles, Niggli-reduce them,
and collect the operations obtained. A report is printed, and the table is written to the file given with --out,
or to the standard output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.buildTable(cmd)
		},
	}
	def := optable.DefaultNames()
	names := make([]string, len(def))
	for i, n := range def {
		names[i] = string(n)
	}
	cmd.Flags().StringSlice("lattices", names, "Bravais lattices to sample")
	cmd.Flags().Int("lengths", 50, "Number of lengths in the grid")
	cmd.Flags().Int("angles", 50, "Number of angles in the grid")
	cmd.Flags().IntP("workers", "w", 0, "Number of lattices sampled at the same time. 0 means one per CPU")
	cmd.Flags().StringP("out", "o", "", "Output file (.yaml or .yaml.zst)")
	cmd.Flags().String("diagnostics", "", "Write the operation counts and greedy iteration histograms to this JSON file")
	a.bindFlags(cmd)
	return cmd
}

func (a *app) buildTable(cmd *cobra.Command) error {
	s := a.settings
	if s.Lengths < 1 || s.Angles < 1 {
		return fmt.Errorf("the grid needs at least one length and one angle, got %d and %d", s.Lengths, s.Angles)
	}
	names := make([]bravais.Name, 0, len(s.Lattices))
	for _, l := range s.Lattices {
		n, err := bravais.ParseName(l)
		if err != nil {
			return err
		}
		names = append(names, n)
	}
	res, err := optable.Build(cmd.Context(), a.log, names, optable.NewGrid(s.Lengths, s.Angles), s.Workers)
	if err != nil {
		return err
	}
	if s.Diagnostics != "" {
		if err := writeDiagnostics(res, s.Diagnostics); err != nil {
			return err
		}
		a.log.Info("diagnostics written", "path", s.Diagnostics)
	}
	tab := res.Table()
	if err := tab.Validate(); err != nil {
		return err
	}
	if s.Out == "" {
		if err := res.Report(cmd.ErrOrStderr()); err != nil {
			return err
		}
		data, err := tab.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := res.Report(cmd.OutOrStdout()); err != nil {
		return err
	}
	if err := tab.WriteFile(s.Out); err != nil {
		return err
	}
	a.log.Info("table written", "path", s.Out, "operations", tab.Len())
	return nil
}

func writeDiagnostics(res *optable.Results, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating diagnostics file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing diagnostics file: %w", cerr)
		}
	}()
	return res.WriteJSON(f)
}
