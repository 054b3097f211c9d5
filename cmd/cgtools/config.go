/*
 * config.go, part of cgtools.
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
	"os"

	"github.com/rmera/cgtools/chemplot"
	"gopkg.in/yaml.v3"
)

// Config holds the settings that can be given in a YAML file.
// Command line flags override them.
type Config struct {
	Cpus     int            `yaml:"cpus"`
	Backbone BackboneConfig `yaml:"backbone"`
	Sample   SampleConfig   `yaml:"sample"`
	FEL      FELConfig      `yaml:"fel"`
}

type BackboneConfig struct {
	RefFrame  bool    `yaml:"ref_frame"`
	Tolerance float64 `yaml:"tolerance"`
}

type SampleConfig struct {
	Frames     int     `yaml:"frames"`
	InitFrames float64 `yaml:"init_frames"`
	Seed       uint64  `yaml:"seed"`
}

type FELConfig struct {
	Temperature   float64   `yaml:"temperature"`
	Bins          int       `yaml:"bins"`
	Pad           float64   `yaml:"pad"`
	Levels        []float64 `yaml:"levels"`
	Palette       string    `yaml:"palette"`
	StatesPalette string    `yaml:"states_palette"`
	Width         float64   `yaml:"width"`  //inches
	Height        float64   `yaml:"height"` //inches
}

// DefaultConfig returns the settings used when no configuration file is given.
func DefaultConfig() *Config {
	return &Config{
		Backbone: BackboneConfig{Tolerance: 1e-8},
		Sample:   SampleConfig{Frames: 50, InitFrames: 0.1, Seed: 1},
		FEL: FELConfig{
			Temperature:   chemplot.DefaultTemperature,
			Bins:          80,
			Pad:           0.5,
			Levels:        chemplot.LevelsUpTo(6, 12),
			Palette:       "Greys",
			StatesPalette: "Set1",
			Width:         6,
			Height:        5,
		},
	}
}

// LoadConfig reads the YAML file path on top of the default configuration.
// An empty path gives the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Cpus < 0:
		return fmt.Errorf("cpus can't be negative")
	case c.Sample.Frames < 1:
		return fmt.Errorf("sample.frames must be positive")
	case c.Sample.InitFrames < 0:
		return fmt.Errorf("sample.init_frames can't be negative")
	case c.FEL.Bins < 1:
		return fmt.Errorf("fel.bins must be positive")
	case c.FEL.Pad < 0:
		return fmt.Errorf("fel.pad can't be negative")
	case len(c.FEL.Levels) < 2:
		return fmt.Errorf("fel.levels needs at least 2 values")
	case c.FEL.Width <= 0 || c.FEL.Height <= 0:
		return fmt.Errorf("fel.width and fel.height must be positive")
	}
	return nil
}
