/*
 * palette.go, part of cgtools.
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

package chemplot

import (
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
)

// Palette returns a palette with n colors. name can be the name of a ColorBrewer
// palette (e.g. "Greys", "Set1", "RdBu"), "rainbow", "heat", or one of the Moreland
// color maps: "moreland-bluered", "moreland-bluetan", "moreland-blackbody" and
// "moreland-kindlmann". Brewer palettes with less colors than requested are interpolated.
func Palette(name string, n int) (palette.Palette, error) {
	if n < 1 {
		return nil, fmt.Errorf("chemplot.Palette: requested %d colors", n)
	}
	//most generators need at least 2 colors.
	m := max(n, 2)
	var p palette.Palette
	switch strings.ToLower(name) {
	case "rainbow":
		p = palette.Rainbow(m, palette.Blue, palette.Red, 1, 1, 1)
	case "heat":
		p = palette.Heat(m, 1)
	case "moreland", "moreland-bluered":
		p = moreland.SmoothBlueRed().Palette(m)
	case "moreland-bluetan":
		p = moreland.SmoothBlueTan().Palette(m)
	case "moreland-blackbody":
		p = moreland.BlackBody().Palette(m)
	case "moreland-kindlmann":
		p = moreland.Kindlmann().Palette(m)
	default:
		var err error
		p, err = brewerPalette(name, m)
		if err != nil {
			return nil, fmt.Errorf("chemplot.Palette: %w", err)
		}
	}
	return truncated(p.Colors()[:n]), nil
}

type truncated []color.Color

func (t truncated) Colors() []color.Color { return t }

// brewerPalette returns the ColorBrewer palette name with n colors, interpolating
// the largest version of the palette if n is larger than its size.
func brewerPalette(name string, n int) (palette.Palette, error) {
	sizes := brewerSizes(name)
	if len(sizes) == 0 {
		return nil, fmt.Errorf("unknown palette %q", name)
	}
	lo, hi := sizes[0], sizes[0]
	for _, s := range sizes {
		lo, hi = min(lo, s), max(hi, s)
	}
	switch {
	case n < lo:
		p, err := brewer.GetPalette(brewer.TypeAny, name, lo)
		if err != nil {
			return nil, err
		}
		return truncated(p.Colors()[:n]), nil
	case n > hi:
		p, err := brewer.GetPalette(brewer.TypeAny, name, hi)
		if err != nil {
			return nil, err
		}
		return interpolate(p.Colors(), n), nil
	}
	return brewer.GetPalette(brewer.TypeAny, name, n)
}

func brewerSizes(name string) []int {
	var sizes []int
	if p, ok := brewer.SequentialPalettes[name]; ok {
		for k := range p {
			sizes = append(sizes, k)
		}
	}
	if p, ok := brewer.DivergingPalettes[name]; ok {
		for k := range p {
			sizes = append(sizes, k)
		}
	}
	if p, ok := brewer.QualitativePalettes[name]; ok {
		for k := range p {
			sizes = append(sizes, k)
		}
	}
	return sizes
}

// interpolate returns n colors linearly interpolated in RGB space along cols.
func interpolate(cols []color.Color, n int) truncated {
	ret := make(truncated, n)
	seg := float64(len(cols)-1) / float64(n-1)
	for i := range ret {
		pos := float64(i) * seg
		k := min(int(pos), len(cols)-2)
		f := pos - float64(k)
		a := color.NRGBAModel.Convert(cols[k]).(color.NRGBA)
		b := color.NRGBAModel.Convert(cols[k+1]).(color.NRGBA)
		mix := func(x, y uint8) uint8 { return uint8(float64(x) + f*(float64(y)-float64(x)) + 0.5) }
		ret[i] = color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
	}
	return ret
}
