/*
 * stf_test.go, part of interaph.
 *
 * Copyright 2021 Raul Mera <rauldotmeraatusachdotcl>
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
 */

package stf

import (
	"path/filepath"
	"testing"

	chem "github.com/rmera/interaph"
	v3 "github.com/rmera/interaph/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const natoms = 3

func frame(i int) *v3.Matrix {
	m := v3.Zeros(natoms)
	for j := 0; j < natoms; j++ {
		m.Set(j, 0, float64(i)+0.25)
		m.Set(j, 1, -float64(j)*1.5)
		m.Set(j, 2, float64(i*j)+0.01)
	}
	return m
}

func writeFrames(Te *testing.T, name string, n int, header map[string]string) {
	w, err := NewWriter(name, natoms, header)
	require.NoError(Te, err)
	box := []float64{10, 0, 0, 0, 10, 0, 0, 0, 10}
	for i := 0; i < n; i++ {
		require.NoError(Te, w.WNext(frame(i), box))
	}
	require.NoError(Te, w.Close())
}

func TestSTFRoundTrip(Te *testing.T) {
	for _, ext := range []string{"stf", "stz", "str", "stl"} {
		name := filepath.Join(Te.TempDir(), "traj."+ext)
		writeFrames(Te, name, 4, map[string]string{"prec": "2", "title": "test"})
		r, header, err := New(name)
		require.NoError(Te, err, ext)
		assert.Equal(Te, "test", header["title"])
		assert.Equal(Te, natoms, r.Len())
		m := v3.Zeros(natoms)
		box := make([]float64, 9)
		read := 0
		for {
			err := r.Next(m, box)
			if err != nil {
				_, ok := err.(chem.LastFrameError)
				require.True(Te, ok, "%s: %v", ext, err)
				break
			}
			assert.InDeltaSlice(Te, frame(read).RawMatrix().Data, m.RawMatrix().Data, 0.006, ext)
			assert.InDelta(Te, 10.0, box[4], 1e-6)
			read++
		}
		assert.Equal(Te, 4, read, ext)
		assert.False(Te, r.Readable())
	}
}

func TestSTFPrecision(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "prec.stf")
	writeFrames(Te, name, 1, map[string]string{"prec": "0"})
	r, _, err := New(name)
	require.NoError(Te, err)
	defer r.Close()
	m := v3.Zeros(natoms)
	require.NoError(Te, r.Next(m))
	//0.25 rounds to even, so 0
	assert.Equal(Te, 0.0, m.At(0, 0))
	assert.Equal(Te, -2.0, m.At(1, 1))
}

func TestSTFConc(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "conc.stf")
	writeFrames(Te, name, 5, nil)
	r, _, err := New(name)
	require.NoError(Te, err)
	defer r.Close()
	frames := []*v3.Matrix{v3.Zeros(natoms), nil, v3.Zeros(natoms)}
	var got []float64
	for {
		chans, err := r.NextConc(frames)
		for _, c := range chans {
			if c != nil {
				got = append(got, (<-c).At(0, 0))
			}
		}
		if err != nil {
			_, ok := err.(chem.LastFrameError)
			require.True(Te, ok, "unexpected error: %v", err)
			break
		}
	}
	//frames 1 and 4 are discarded
	assert.Equal(Te, []float64{0.25, 2.25, 3.25}, got)
}

func TestSTFErrors(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "err.stf")
	w, err := NewWriter(name, natoms, nil)
	require.NoError(Te, err)
	assert.Error(Te, w.WNext(v3.Zeros(natoms+1)))
	assert.Error(Te, w.WNext(nil))
	require.NoError(Te, w.Close())
	assert.Error(Te, w.WNext(frame(0)))
	_, err = NewWriter(name, 0, nil)
	assert.Error(Te, err)
	_, _, err = New(filepath.Join(Te.TempDir(), "missing.stf"))
	assert.Error(Te, err)
}
