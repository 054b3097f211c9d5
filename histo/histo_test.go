/*
 * histo_test.go, part of cgtools.
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

package histo

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoIO(Te *testing.T) {
	fmt.Println("Histogram JSON output test!")
	rawdata := []float64{1, 6, 3, 2, 4, 5, 7, 6, 3.5, 3, 5, 1, 1, 0, 0, 5, 8, 1, 2, 3, 44, 3, 7, 3, 1, 3, 5, 32, 1}
	D := NewData([]float64{0, 1, 2, 3, 4, 8}, rawdata, nil, 3)
	fmt.Println(D.String())
	//44 and 32 are out of range, 8 is the last divider.
	assert.Equal(Te, []float64{2, 6, 2, 7, 10}, D.View())
	assert.Equal(Te, 27.0, D.Sum())
	j, err := json.Marshal(D)
	require.NoError(Te, err)
	fmt.Println("JSON:", string(j))
	D2 := new(Data)
	require.NoError(Te, json.Unmarshal(j, D2))
	assert.Equal(Te, D, D2)
	assert.Error(Te, json.Unmarshal([]byte(`{"dividers":[0,1],"histo":[1,2]}`), D2))
}

func TestWeightedData(Te *testing.T) {
	raw := []float64{0.5, 2.5, 0.25, 1.5}
	w := []float64{1, 2, 3, 4}
	D := NewData(Dividers(0, 3, 3), raw, w)
	assert.Equal(Te, []float64{4, 4, 2}, D.View())
	assert.Equal(Te, []float64{0.5, 2.5, 0.25, 1.5}, raw, "input not modified")
	assert.Equal(Te, -1, D.ID())
	D.Normalize()
	assert.InDeltaSlice(Te, []float64{0.4, 0.4, 0.2}, D.View(), 1e-12)
	D.AddWeighted(2.9, 10)
	assert.True(Te, D.Normalized())
	assert.InDeltaSlice(Te, []float64{0.2, 0.2, 0.6}, D.View(), 1e-12)
	D.UnNormalize()
	assert.InDeltaSlice(Te, []float64{4, 4, 12}, D.View(), 1e-12)
	D.AddData(3, -1, 1)
	assert.InDeltaSlice(Te, []float64{4, 5, 13}, D.View(), 1e-12)
	assert.Equal(Te, []float64{0.5, 1.5, 2.5}, D.Centers())

	E := NewData(Dividers(0, 3, 3), []float64{0.1}, nil)
	S := new(Data)
	require.NoError(Te, S.Add(D, E))
	assert.InDeltaSlice(Te, []float64{5, 5, 13}, S.View(), 1e-12)
	require.NoError(Te, S.Sub(E, D, true))
	assert.InDeltaSlice(Te, []float64{3, 5, 13}, S.View(), 1e-12)
	assert.Error(Te, S.Add(D, NewData(Dividers(0, 4, 3), nil, nil)))
}

func TestUpperEdge(Te *testing.T) {
	fmt.Println("Histogram upper edge test!")
	div := Dividers(-1, 2, 3)
	D := NewData(div, []float64{-1, 2, 2, 2.5, math.NaN()}, nil)
	assert.Equal(Te, []float64{1, 0, 2}, D.View())
	assert.Equal(Te, 3.0, D.Sum())
	D = NewData(div, []float64{2, 0.5}, []float64{4, 1})
	assert.Equal(Te, []float64{0, 1, 4}, D.View())
	D.AddData(2)
	D.AddWeighted(2, 0.5)
	D.AddWeighted(math.Nextafter(2, 3), 100)
	assert.Equal(Te, []float64{0, 1, 5.5}, D.View())
	//same bins as the 2D histogram.
	H, err := NewHist2D([]float64{-1, 0.5, 2}, []float64{0, 0, 1}, nil, 3, 0)
	require.NoError(Te, err)
	for _, v := range []float64{-1, 0.5, 2} {
		assert.Equal(Te, edgeBin(H.XEdges, v), D.bin(v))
	}
}

func TestHist2D(Te *testing.T) {
	x := []float64{0, 1, 2, 2, 0}
	y := []float64{0, 0, 4, 4, 4}
	w := []float64{1, 2, 3, 4, 5}
	H, err := NewHist2D(x, y, w, 2, 0)
	require.NoError(Te, err)
	fmt.Println("2D histogram:", H.Counts)
	nx, ny := H.Dims()
	assert.Equal(Te, 2, nx)
	assert.Equal(Te, 2, ny)
	assert.Equal(Te, []float64{0, 1, 2}, H.XEdges)
	assert.Equal(Te, []float64{0, 2, 4}, H.YEdges)
	//rows are y bins, the last edge goes in the last bin.
	assert.Equal(Te, [][]float64{{1, 2}, {5, 7}}, H.Counts)
	assert.Equal(Te, 15.0, H.Total())
	assert.Equal(Te, []float64{0.5, 1.5}, H.XCenters())
	assert.False(Te, H.Add(5, 0, 1))

	H, err = NewHist2D(x, y, nil, 4, 0.5)
	require.NoError(Te, err)
	assert.Equal(Te, -0.5, H.XEdges[0])
	assert.Equal(Te, 4.5, H.YEdges[4])
	assert.Equal(Te, 5.0, H.Total())

	_, err = NewHist2D(x, y[:2], nil, 4, 0)
	assert.Error(Te, err)
	_, err = NewHist2D(x, y, w[:1], 4, 0)
	assert.Error(Te, err)
	_, err = NewHist2D(x, y, nil, 0, 0)
	assert.Error(Te, err)
}
