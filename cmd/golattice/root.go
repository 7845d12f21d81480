/*
 * root.go, part of golattice.
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
	"log/slog"
	"strings"

	"github.com/rmera/golattice/bravais"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//Settings contains the configuration of golattice. Values come, in
//order of precedence, from flags, GOLATTICE_* environment variables, the configuration
//file given with --config, and the defaults.
type Settings struct {
	Debug     bool     `mapstructure:"debug"`
	Eps       float64  `mapstructure:"eps"`
	NiggliEps float64  `mapstructure:"niggli-eps"`
	Table     string   `mapstructure:"table"`
	Lattices  []string `mapstructure:"lattices"`
	Lengths   int      `mapstructure:"lengths"`
	Angles    int      `mapstructure:"angles"`
	Workers   int      `mapstructure:"workers"`
	Out       string   `mapstructure:"out"`

	Diagnostics string `mapstructure:"diagnostics"`
}

//app holds what the subcommands share.
type app struct {
	v        *viper.Viper
	settings Settings
	log      *slog.Logger
}

func newApp() *app {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("GOLATTICE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	return a
}

//newRootCommand creates and returns the root command, with all subcommands.
func newRootCommand() *cobra.Command {
	return newApp().command()
}

func (a *app) command() *cobra.Command {
	var configFile string
	rootCmd := &cobra.Command{
		Use:           "golattice",
		Short:         "Bravais lattice recognition",
		Long:          `golattice identifies the Bravais lattice of a cell, and builds the tables of Niggli operations needed for that.`,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd, configFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")
	if err := a.v.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(fmt.Sprintf("golattice: error binding flags: %v", err))
	}

	rootCmd.AddCommand(identifyCommand(a), tableCommand(a))
	return rootCmd
}

//initialize reads the configuration and sets up the logger. It is called
//before any subcommand runs.
func (a *app) initialize(cmd *cobra.Command, configFile string) error {
	if configFile != "" {
		a.v.SetConfigFile(configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}
	if err := a.v.Unmarshal(&a.settings); err != nil {
		return fmt.Errorf("error parsing configuration: %w", err)
	}
	level := slog.LevelInfo
	if a.settings.Debug {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	a.log.Debug("configuration", "settings", fmt.Sprintf("%+v", a.settings))
	return nil
}

//bindFlags binds the local flags of cmd to the configuration.
func (a *app) bindFlags(cmd *cobra.Command) {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		panic(fmt.Sprintf("golattice: error binding flags of %s: %v", cmd.Name(), err))
	}
}

//table returns the operation table given in the configuration, or the default one.
func (a *app) table() (bravais.OpTable, error) {
	if a.settings.Table == "" {
		return bravais.DefaultTable(), nil
	}
	a.log.Debug("loading operation table", "path", a.settings.Table)
	return bravais.LoadTable(a.settings.Table)
}
