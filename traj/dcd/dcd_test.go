/*
 * dcd_test.go, part of interaph.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package dcd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/interaph"
	v3 "github.com/rmera/interaph/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAtoms = 4

// frame i has atom j at (i, j, i+j)
func testFrame(i int) *v3.Matrix {
	m := v3.Zeros(testAtoms)
	for j := 0; j < testAtoms; j++ {
		m.Set(j, 0, float64(i))
		m.Set(j, 1, float64(j))
		m.Set(j, 2, float64(i+j))
	}
	return m
}

func writeTestDCD(Te *testing.T, frames int) string {
	name := filepath.Join(Te.TempDir(), "test.dcd")
	w, err := NewWriter(name, testAtoms)
	require.NoError(Te, err)
	for i := 0; i < frames; i++ {
		require.NoError(Te, w.WNext(testFrame(i)))
	}
	require.NoError(Te, w.Close())
	return name
}

func readAll(Te *testing.T, traj *DCDObj) []*v3.Matrix {
	var ret []*v3.Matrix
	for {
		m := v3.Zeros(traj.Len())
		err := traj.Next(m)
		if err != nil {
			_, ok := err.(chem.LastFrameError)
			require.True(Te, ok, "unexpected error: %v", err)
			return ret
		}
		ret = append(ret, m)
	}
}

func TestDCDWriteRead(Te *testing.T) {
	name := writeTestDCD(Te, 5)
	traj, err := New(name)
	require.NoError(Te, err)
	defer traj.Close()
	assert.Equal(Te, testAtoms, traj.Len())
	frames := readAll(Te, traj)
	require.Len(Te, frames, 5)
	for i, f := range frames {
		assert.InDeltaSlice(Te, testFrame(i).RawMatrix().Data, f.RawMatrix().Data, 1e-5)
	}
}

func TestDCDSkip(Te *testing.T) {
	name := writeTestDCD(Te, 3)
	traj, err := New(name)
	require.NoError(Te, err)
	defer traj.Close()
	require.NoError(Te, traj.Next(nil))
	m := v3.Zeros(testAtoms)
	require.NoError(Te, traj.Next(m))
	assert.Equal(Te, 1.0, m.At(0, 0))
}

func TestDCDMismatch(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "bad.dcd")
	w, err := NewWriter(name, testAtoms)
	require.NoError(Te, err)
	defer w.Close()
	assert.Error(Te, w.WNext(v3.Zeros(testAtoms+1)))
	_, err = NewWriter(filepath.Join(Te.TempDir(), "empty.dcd"), 0)
	assert.Error(Te, err)
}

func TestDCDWrongFormat(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "garbage.dcd")
	require.NoError(Te, os.WriteFile(name, []byte("this is not a dcd file at all, not even close to one"), 0644))
	_, err := New(name)
	require.Error(Te, err)
	terr, ok := err.(chem.TrajError)
	require.True(Te, ok)
	assert.True(Te, terr.Critical())
	assert.Equal(Te, "dcd", terr.Format())
}

func TestDCDConc(Te *testing.T) {
	name := writeTestDCD(Te, 5)
	traj, err := New(name)
	require.NoError(Te, err)
	defer traj.Close()
	buf := []*v3.Matrix{v3.Zeros(testAtoms), v3.Zeros(testAtoms), v3.Zeros(testAtoms)}
	read := 0
	for {
		chans, err := traj.NextConc(buf)
		for _, c := range chans {
			if c == nil {
				continue
			}
			m := <-c
			assert.Equal(Te, float64(read), m.At(0, 0))
			read++
		}
		if err != nil {
			_, ok := err.(chem.LastFrameError)
			require.True(Te, ok, "unexpected error: %v", err)
			break
		}
	}
	assert.Equal(Te, 5, read)
}

func compressCopy(Te *testing.T, src, dst string, compress func(io.Writer) io.WriteCloser) {
	data, err := os.ReadFile(src)
	require.NoError(Te, err)
	f, err := os.Create(dst)
	require.NoError(Te, err)
	defer f.Close()
	w := compress(f)
	_, err = w.Write(data)
	require.NoError(Te, err)
	require.NoError(Te, w.Close())
}

func TestDCDCompressed(Te *testing.T) {
	name := writeTestDCD(Te, 4)
	gzname := name + ".gz"
	compressCopy(Te, name, gzname, func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) })
	zname := name + ".zst"
	compressCopy(Te, name, zname, func(w io.Writer) io.WriteCloser {
		z, err := zstd.NewWriter(w)
		require.NoError(Te, err)
		return z
	})
	for _, n := range []string{gzname, zname} {
		traj, err := New(n)
		require.NoError(Te, err, n)
		frames := readAll(Te, traj)
		traj.Close()
		require.Len(Te, frames, 4, n)
		assert.InDeltaSlice(Te, testFrame(3).RawMatrix().Data, frames[3].RawMatrix().Data, 1e-5)
	}
}
