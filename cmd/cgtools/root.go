/*
 * root.go, part of cgtools.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool
	cpus       int

	cfg    *Config
	logger *zap.Logger
	undo   func() //restores the previous global logger
}

// newRootCmd returns the root command and the state it shares with its
// subcommands. Run it with execute.
func newRootCmd() (*cobra.Command, *app) {
	a := new(app)
	root := &cobra.Command{
		Use:   "cgtools",
		Short: "Tools for coarse-grained (CA-only) protein simulations",
		Long: `cgtools rebuilds N, CA, C, O backbones from CA-only structures and trajectories,
reduces all-atom structures to CA-only ones, and works with Markov state models
built on coarse-grained simulations: frame weights, state sampling and free
energy landscapes. It also computes autocorrelation functions, useful to pick
MSM lag times, and the phi/psi dihedrals of rebuilt backbones.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().IntVar(&a.cpus, "cpus", 0, "Number of CPUs to use (default: all)")
	root.AddCommand(
		newBuildBBCmd(a),
		newCAReduceCmd(a),
		newWeightsCmd(a),
		newSampleCmd(a),
		newFELCmd(a),
		newAutocorrCmd(a),
		newRamaCmd(a),
	)
	return root, a
}

// execute runs root and then releases the logger set up for it, also
// when the command fails.
func execute(root *cobra.Command, a *app) error {
	defer a.teardown()
	return root.Execute()
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	config := zap.NewProductionConfig()
	if a.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	a.undo = zap.ReplaceGlobals(logger)
	a.cfg, err = LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.cpus > 0 {
		a.cfg.Cpus = a.cpus
	}
	a.logger.Debug("configuration loaded", zap.String("file", a.configPath), zap.Int("cpus", a.cfg.Cpus))
	return nil
}

func (a *app) teardown() {
	if a.logger != nil {
		_ = a.logger.Sync()
		a.logger = nil
	}
	if a.undo != nil {
		a.undo()
		a.undo = nil
	}
}
