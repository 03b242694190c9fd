/*
 * mdcrd_test.go, part of interaph
 *
 * Copyright 2018 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package mdcrd

import (
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/interaph"
	v3 "github.com/rmera/interaph/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(Te *testing.T, natoms int, shift float64) *v3.Matrix {
	data := make([]float64, 3*natoms)
	for i := range data {
		data[i] = float64(i) + shift - 5
	}
	m, err := v3.NewMatrix(data)
	require.NoError(Te, err)
	return m
}

func readAll(Te *testing.T, name string, natoms int) ([]*v3.Matrix, [][]float64) {
	r, err := New(name, natoms)
	require.NoError(Te, err)
	defer r.Close()
	var frames []*v3.Matrix
	var boxes [][]float64
	for {
		m := v3.Zeros(natoms)
		box := make([]float64, 3)
		err := r.Next(m, box)
		if err != nil {
			_, ok := err.(chem.LastFrameError)
			require.True(Te, ok, err.Error())
			break
		}
		frames = append(frames, m)
		boxes = append(boxes, box)
	}
	assert.False(Te, r.Readable())
	return frames, boxes
}

func TestMdcrdRoundTrip(Te *testing.T) {
	dir := Te.TempDir()
	//4 atoms fill 12 fields, so each frame takes 2 lines, the last one with 2 values
	for _, natoms := range []int{4, 5, 1} {
		for _, withBox := range []bool{false, true} {
			name := filepath.Join(dir, "t.mdcrd")
			w, err := NewWriter(name, natoms, "test\ntrajectory")
			require.NoError(Te, err)
			var box [][]float64
			if withBox {
				box = [][]float64{{30, 31.5, 32}}
			}
			for i := 0; i < 3; i++ {
				require.NoError(Te, w.WNext(frame(Te, natoms, float64(i)), box...))
			}
			require.NoError(Te, w.Close())

			frames, boxes := readAll(Te, name, natoms)
			if natoms == 1 && withBox {
				//a single atom frame can't be told apart from a box line
				assert.Len(Te, frames, 6)
				continue
			}
			require.Len(Te, frames, 3, "natoms %d box %v", natoms, withBox)
			for i, f := range frames {
				assert.InDelta(Te, float64(i)-5, f.At(0, 0), 1e-9)
				assert.InDelta(Te, float64(3*natoms-1+i)-5, f.At(natoms-1, 2), 1e-9)
				if withBox {
					assert.Equal(Te, []float64{30, 31.5, 32}, boxes[i])
				} else {
					assert.Equal(Te, []float64{0, 0, 0}, boxes[i])
				}
			}
		}
	}
}

func TestMdcrdErrors(Te *testing.T) {
	dir := Te.TempDir()
	_, err := New(filepath.Join(dir, "missing.mdcrd"), 3)
	assert.Error(Te, err)
	name := filepath.Join(dir, "t.mdcrd")
	require.NoError(Te, os.WriteFile(name, []byte("title\n   1.000   2.000   3.000   4.000\n"), 0o644))
	_, err = New(name, 0)
	assert.Error(Te, err)

	//the frame is truncated
	r, err := New(name, 2)
	require.NoError(Te, err)
	err = r.Next(v3.Zeros(2))
	require.Error(Te, err)
	_, ok := err.(chem.LastFrameError)
	assert.False(Te, ok)
	r.Close()

	//frames are discarded with a nil matrix
	require.NoError(Te, os.WriteFile(name, []byte("title\n   1.000   2.000   3.000   4.000   5.000   6.000\n   1.000   2.000   3.000   4.000   5.000   6.000\n"), 0o644))
	r, err = New(name, 2)
	require.NoError(Te, err)
	defer r.Close()
	require.NoError(Te, r.Next(nil))
	require.Error(Te, r.Next(v3.Zeros(3)))

	w, err := NewWriter(filepath.Join(dir, "w.mdcrd"), 2, "")
	require.NoError(Te, err)
	assert.Error(Te, w.WNext(v3.Zeros(3)))
	big, _ := v3.NewMatrix([]float64{1e6, 0, 0, 0, 0, 0})
	assert.Error(Te, w.WNext(big))
	require.NoError(Te, w.Close())
}
