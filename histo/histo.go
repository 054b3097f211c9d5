/*
 * histo.go, part of cgtools.
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

// Package histo contains weighted 1D and 2D histograms.
package histo

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Data is a weighted 1D histogram.
type Data struct {
	id         int
	normalized bool
	total      float64 //sum of the weights of the points in the histogram
	dividers   []float64
	histo      []float64
}

type jsonData struct {
	ID         int       `json:"id"`
	Normalized bool      `json:"normalized"`
	Total      float64   `json:"total"`
	Dividers   []float64 `json:"dividers"`
	Histo      []float64 `json:"histo"`
}

func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonData{
		ID:         D.id,
		Normalized: D.normalized,
		Total:      D.total,
		Dividers:   D.dividers,
		Histo:      D.histo,
	})
}

func (D *Data) UnmarshalJSON(b []byte) error {
	var a jsonData
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.Dividers) < 2 || len(a.Histo) != len(a.Dividers)-1 {
		return fmt.Errorf("histo: %d bins for %d dividers", len(a.Histo), len(a.Dividers))
	}
	D.id = a.ID
	D.normalized = a.Normalized
	D.total = a.Total
	D.dividers = a.Dividers
	D.histo = a.Histo
	return nil
}

// ID returns the ID of the histogram
func (D *Data) ID() int {
	return D.id
}

// String prints a -hopefully- pretty string representation of
// the histogram. The representation uses 3 lines of text.
func (D *Data) String() string {
	ret := fmt.Sprintf("ID: %d, Normalized: %v, Total: %g\n", D.id, D.normalized, D.total)
	d := make([]string, 0, len(D.histo))
	h := make([]string, 0, len(D.histo))
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", D.dividers[i], D.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return ret + fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

// Dividers returns bins+1 evenly spaced dividers from lo to hi.
func Dividers(lo, hi float64, bins int) []float64 {
	if bins < 1 || !(hi > lo) {
		panic(fmt.Sprintf("histo: can't divide [%g, %g] in %d bins", lo, hi, bins))
	}
	d := floats.Span(make([]float64, bins+1), lo, hi)
	d[bins] = hi
	return d
}

// Range returns the minimum of data minus pad and the maximum plus pad.
func Range(data []float64, pad float64) (float64, float64) {
	return floats.Min(data) - pad, floats.Max(data) + pad
}

// NewData returns a new histogram from the dividers and rawdata given.
// rawdata can be nil, in which case an empty histogram is created.
// weights can be nil, in which case every point has a weight of 1.
// If an ID for the histogram is given, it will be set. If not, the ID will
// be set to -1.
func NewData(dividers, rawdata, weights []float64, ID ...int) *Data {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		panic("histo: dividers must be at least 2, and sorted")
	}
	d := &Data{id: -1}
	d.dividers = append([]float64(nil), dividers...)
	d.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		d.ReHisto(d.dividers, rawdata, weights)
	}
	if len(ID) > 0 {
		d.id = ID[0]
	}
	return d
}

// AddData adds the given data point(s), each with a weight of 1.
// Values outside the dividers are omitted. A value equal to the last
// divider goes in the last bin.
func (D *Data) AddData(point ...float64) {
	for _, v := range point {
		D.AddWeighted(v, 1)
	}
}

// AddWeighted adds the point v with weight w.
func (D *Data) AddWeighted(v, w float64) {
	norma := D.normalized
	if norma {
		D.UnNormalize()
	}
	if i := D.bin(v); i >= 0 {
		D.histo[i] += w
		D.total += w
	}
	if norma {
		D.Normalize()
	}
}

// bin returns the bin for v, or -1 if v is out of range.
// The last divider belongs to the last bin.
func (D *Data) bin(v float64) int {
	return edgeBin(D.dividers, v)
}

// Normalized Returns true if the histogram is normalized
func (D *Data) Normalized() bool {
	return D.normalized
}

// Normalize normalizes the histogram so it sums to 1.
func (D *Data) Normalize() {
	D.normaunnorma(true)
}

// UnNormalize un-normalizes the histogram
func (D *Data) UnNormalize() {
	D.normaunnorma(false)
}

func (D *Data) normaunnorma(normalize bool) {
	if D.total <= 0 || D.normalized == normalize {
		return
	}
	n := D.total
	if normalize {
		n = 1 / D.total
	}
	D.normalized = normalize
	floats.Scale(n, D.histo)
}

// CopyDividers copies the dividers of the histogram into dest, if given and
// large enough, or into a new slice.
func (D *Data) CopyDividers(dest ...[]float64) []float64 {
	d := getCopySlice(len(D.dividers), dest...)
	copy(d, D.dividers)
	return d
}

// Copy copies the histogram values.
func (D *Data) Copy(dest ...[]float64) []float64 {
	d := getCopySlice(len(D.histo), dest...)
	copy(d, D.histo)
	return d
}

// View returns the histogram values, not a copy.
func (D *Data) View() []float64 {
	return D.histo
}

// Centers returns the center of each bin.
func (D *Data) Centers() []float64 {
	return centers(D.dividers)
}

func centers(dividers []float64) []float64 {
	c := make([]float64, len(dividers)-1)
	for i := range c {
		c[i] = (dividers[i] + dividers[i+1]) / 2
	}
	return c
}

func (D *Data) checkDividers(a, b *Data, caller string) error {
	if !floats.Equal(a.dividers, b.dividers) {
		return fmt.Errorf("histo.Data.%s: dividers must match", caller)
	}
	return nil
}

// Add adds the histograms a and b putting the result in the receiver.
func (D *Data) Add(a, b *Data) error {
	if err := D.checkDividers(a, b, "Add"); err != nil {
		return err
	}
	D.dividers = a.CopyDividers(D.dividers)
	D.histo = getCopySlice(len(a.histo), D.histo)
	floats.AddTo(D.histo, a.histo, b.histo)
	D.total = a.total + b.total
	D.normalized = false
	return nil
}

// Sub substracts b from a, putting the results in the receiver.
// If abs is given and true, the absolute value of each difference is used.
func (D *Data) Sub(a, b *Data, abs ...bool) error {
	if err := D.checkDividers(a, b, "Sub"); err != nil {
		return err
	}
	D.dividers = a.CopyDividers(D.dividers)
	D.histo = getCopySlice(len(a.histo), D.histo)
	floats.SubTo(D.histo, a.histo, b.histo)
	if len(abs) > 0 && abs[0] {
		for i, v := range D.histo {
			D.histo[i] = math.Abs(v)
		}
	}
	D.total = floats.Sum(D.histo)
	D.normalized = false
	return nil
}

// Sum returns the sum of the histogram values.
func (D *Data) Sum() float64 {
	return floats.Sum(D.histo)
}

// ReHisto replaces the contents of the histogram with a histogram of rawdata,
// weighted by weights (which can be nil), on the given dividers.
// Neither rawdata nor weights are modified.
func (D *Data) ReHisto(dividers, rawdata, weights []float64) {
	if weights != nil && len(weights) != len(rawdata) {
		panic("histo.Data.ReHisto: data and weights have different lengths")
	}
	x := make([]float64, 0, len(rawdata))
	var w []float64
	if weights != nil {
		w = make([]float64, 0, len(rawdata))
	}
	//stat.Histogram panics with values out of range, so they are removed here.
	//It also leaves the last divider out, so those values are added afterwards.
	last := dividers[len(dividers)-1]
	var atlast float64
	for i, v := range rawdata {
		if v < dividers[0] || v > last || math.IsNaN(v) {
			continue
		}
		if v == last {
			if weights != nil {
				atlast += weights[i]
			} else {
				atlast++
			}
			continue
		}
		x = append(x, v)
		if weights != nil {
			w = append(w, weights[i])
		}
	}
	if w != nil {
		sort.Sort(byValue{x, w})
		D.total = floats.Sum(w)
	} else {
		sort.Float64s(x)
		D.total = float64(len(x))
	}
	D.total += atlast
	D.dividers = append(D.dividers[:0], dividers...)
	D.histo = stat.Histogram(nil, D.dividers, x, w)
	D.histo[len(D.histo)-1] += atlast
	D.normalized = false
}

// byValue sorts values and their weights together.
type byValue struct {
	x, w []float64
}

func (b byValue) Len() int           { return len(b.x) }
func (b byValue) Less(i, j int) bool { return b.x[i] < b.x[j] }
func (b byValue) Swap(i, j int) {
	b.x[i], b.x[j] = b.x[j], b.x[i]
	b.w[i], b.w[j] = b.w[j], b.w[i]
}

func getCopySlice(N int, dest ...[]float64) []float64 {
	if len(dest) > 0 && len(dest[0]) >= N {
		return dest[0][:N]
	}
	return make([]float64, N)
}
