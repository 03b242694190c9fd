/*
 * histo_test.go, part of interaph.
 *
 * Copyright 2021 Raul Mera <rmera{at}usachDOTcl>
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
	"bytes"
	"encoding/json"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoData(Te *testing.T) {
	div := Dividers(0, 8, 4)
	assert.Equal(Te, []float64{0, 2, 4, 6, 8}, div)
	d := NewData("A-1ALA A-5VAL", div, []float64{1, 6, 3, 2, 4, 5, 7, 6, 3.5, 9, -1})
	assert.Equal(Te, []float64{1, 3, 2, 3}, d.View())
	assert.Equal(Te, 9, d.Total())
	assert.Equal(Te, 2, d.Outside())
	assert.InDelta(Te, 37.5/9, d.Mean(), 1e-9)

	d.AddData(2, 7.99, 8)
	assert.Equal(Te, []float64{1, 4, 2, 4}, d.View())
	assert.Equal(Te, 3, d.Outside())

	d.Normalize()
	assert.InDelta(Te, 1.0, d.Sum(), 1e-9)
	d.AddData(0.5)
	assert.True(Te, d.Normalized())
	d.UnNormalize()
	assert.InDeltaSlice(Te, []float64{2, 4, 2, 4}, d.View(), 1e-9)

	empty := NewData("x", div, nil)
	assert.True(Te, math.IsNaN(empty.Mean()))
	assert.Panics(Te, func() { NewData("bad", []float64{2, 1}, nil) })
}

func TestHistoSetJSON(Te *testing.T) {
	S := NewSet(Dividers(0, 10, 5))
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			S.Add("A-1ASP A-9LYS", 3.1, 3.5)
			S.Add("A-2GLU A-7ARG", 4.2)
		}()
	}
	wg.Wait()
	S.Add("A-3LEU A-4ILE")
	assert.Equal(Te, 3, S.Len())
	assert.Equal(Te, []string{"A-1ASP A-9LYS", "A-2GLU A-7ARG", "A-3LEU A-4ILE"}, S.Labels())
	assert.Equal(Te, 8, S.View("A-1ASP A-9LYS").Total())

	var buf bytes.Buffer
	require.NoError(Te, S.WriteJSON(&buf))
	S2 := new(Set)
	require.NoError(Te, json.Unmarshal(buf.Bytes(), S2))
	assert.Equal(Te, S.Labels(), S2.Labels())
	h := S2.View("A-2GLU A-7ARG")
	require.NotNil(Te, h)
	assert.Equal(Te, []float64{0, 0, 4, 0, 0}, h.View())
	assert.InDelta(Te, 4.2, h.Mean(), 1e-9)
}
