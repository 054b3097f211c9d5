/*
 * fel.go, part of cgtools.
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

	"github.com/rmera/cgtools/chemplot"
	"github.com/rmera/cgtools/histo"
	"github.com/rmera/cgtools/msm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
)

type felFlags struct {
	weights     string
	model       string
	states      []int
	showStates  bool
	dimx, dimy  int
	bins        int
	pad         float64
	temperature float64
	levels      []float64
	palette     string
	profile     bool
	noFill      bool
	noLines     bool
	title       string
	out         string
}

func newFELCmd(a *app) *cobra.Command {
	f := new(felFlags)
	cmd := &cobra.Command{
		Use:   "fel data.txt",
		Short: "Plot a free energy landscape from projected simulation data",
		Long: `Plots the free energy landscape, in kcal/mol, of two columns of a data file
(whitespace-separated, one frame per line), as a filled contour plot.
Frames are weighted with the weights file, if given (see the weights command).
The macrostates of a model can be drawn on top, and with --profile a 1D
free energy profile along the x dimension is plotted instead.`,
		Example: `  cgtools weights model.json -o w.txt
  cgtools fel projected.txt --weights w.txt --model model.json --states -o fel.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fel(cmd, args[0], f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.weights, "weights", "w", "", "Frame weights, one per line")
	fl.StringVarP(&f.model, "model", "m", "", "Model whose macrostates are plotted with --states")
	fl.BoolVar(&f.showStates, "states", false, "Plot the microstate centers of the model's macrostates")
	fl.IntSliceVar(&f.states, "macro", nil, "Macrostates to plot (default: all)")
	fl.IntVar(&f.dimx, "dimx", 0, "Column for the x axis")
	fl.IntVar(&f.dimy, "dimy", 1, "Column for the y axis")
	fl.IntVar(&f.bins, "bins", 0, "Number of bins per axis (default from config, 80)")
	fl.Float64Var(&f.pad, "pad", -1, "Padding around the data range (default from config, 0.5)")
	fl.Float64VarP(&f.temperature, "temperature", "T", 0, "Temperature in K (default from config, 350)")
	fl.Float64SliceVar(&f.levels, "levels", nil, "Contour levels in kcal/mol")
	fl.StringVar(&f.palette, "palette", "", "Palette for the filled contours")
	fl.BoolVar(&f.profile, "profile", false, "Plot a 1D profile along dimx")
	fl.BoolVar(&f.noFill, "no-fill", false, "Don't fill the contours")
	fl.BoolVar(&f.noLines, "no-lines", false, "Don't draw contour lines")
	fl.StringVar(&f.title, "title", "Free energy landscape", "Plot title")
	fl.StringVarP(&f.out, "out", "o", "fel.png", "Output image (png, svg, pdf, eps...)")
	return cmd
}

// merge applies the flags that were given on top of the configuration.
func (f *felFlags) merge(c FELConfig) FELConfig {
	if f.bins > 0 {
		c.Bins = f.bins
	}
	if f.pad >= 0 {
		c.Pad = f.pad
	}
	if f.temperature > 0 {
		c.Temperature = f.temperature
	}
	if len(f.levels) > 0 {
		c.Levels = f.levels
	}
	if f.palette != "" {
		c.Palette = f.palette
	}
	return c
}

func (a *app) fel(cmd *cobra.Command, data string, f *felFlags) error {
	c := f.merge(a.cfg.FEL)
	rows, err := readTable(data)
	if err != nil {
		return err
	}
	x, err := column(rows, f.dimx)
	if err != nil {
		return err
	}
	var w []float64
	if f.weights != "" {
		if w, err = readWeights(f.weights); err != nil {
			return err
		}
		if len(w) != len(rows) {
			return fmt.Errorf("%d weights for %d frames", len(w), len(rows))
		}
	}
	xlabel, ylabel := fmt.Sprintf("Dimension %d", f.dimx), fmt.Sprintf("Dimension %d", f.dimy)
	if f.profile {
		lo, hi := histo.Range(x, c.Pad)
		if !(hi > lo) {
			lo, hi = lo-0.5, hi+0.5
		}
		d := histo.NewData(histo.Dividers(lo, hi, c.Bins), x, w)
		xys, err := chemplot.FreeEnergyProfile(d, c.Temperature)
		if err != nil {
			return err
		}
		p := chemplot.NewFEL(f.title, xlabel, "Free energy (kcal/mol)")
		if err := chemplot.PlotProfile(p, xys, ""); err != nil {
			return err
		}
		return a.save(p.Save, c, f.out)
	}
	y, err := column(rows, f.dimy)
	if err != nil {
		return err
	}
	h, err := histo.NewHist2D(x, y, w, c.Bins, c.Pad)
	if err != nil {
		return err
	}
	g, err := chemplot.FreeEnergy(h, c.Temperature)
	if err != nil {
		return err
	}
	p := chemplot.NewFEL(f.title, xlabel, ylabel)
	o := chemplot.DefaultContourOptions()
	o.Fill, o.Lines, o.Palette = !f.noFill, !f.noLines, c.Palette
	if err := chemplot.PlotContour(p, g, c.Levels, o); err != nil {
		return err
	}
	if f.showStates {
		if f.model == "" {
			return fmt.Errorf("--states requires --model")
		}
		m, err := msm.LoadModel(f.model)
		if err != nil {
			return err
		}
		if err := chemplot.PlotStates(p, m, f.states, f.dimx, f.dimy, c.StatesPalette); err != nil {
			return err
		}
	}
	return a.save(p.Save, c, f.out)
}

func (a *app) save(save func(w, h vg.Length, file string) error, c FELConfig, out string) error {
	if err := save(vg.Length(c.Width)*vg.Inch, vg.Length(c.Height)*vg.Inch, out); err != nil {
		return fmt.Errorf("saving %s: %w", out, err)
	}
	a.logger.Info("plot written", zap.String("file", out))
	return nil
}
