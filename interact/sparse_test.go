/*
 * sparse_test.go, part of interaph.
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

package interact

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(Te *testing.T) *SparseTable {
	T := new(SparseTable)
	require.NoError(Te, T.Set(0, 10, testEntry()))
	e := testEntry()
	e.Total = 250
	e.Bins = map[BinKey]float64{NewBinKey([4]uint8{0, 1, 19, 19}): 0.25}
	require.NoError(Te, T.Set(19, 3, e))
	return T
}

func TestBinKey(Te *testing.T) {
	k := NewBinKey([4]uint8{8, 1, 0, 255})
	assert.Equal(Te, [4]uint8{8, 1, 0, 255}, k.Bins())
	assert.Equal(Te, BinKey(0xff000108), k)
	assert.Equal(Te, "8-1-0-255", k.String())
	e := testEntry()
	key, ok := e.Key([4]float64{4.3, 0.49, 9.99, 0})
	require.True(Te, ok)
	assert.Equal(Te, [4]uint8{8, 0, 19, 0}, key.Bins())
	_, ok = e.Key([4]float64{4.3, 4.3, 4.3, 10})
	assert.False(Te, ok)
	//lookups are deterministic, and misses are zero.
	assert.Equal(Te, e.Lookup(NewBinKey([4]uint8{8, 8, 8, 8})), e.Lookup(NewBinKey([4]uint8{8, 8, 8, 8})))
	assert.Equal(Te, 0.0, e.Lookup(NewBinKey([4]uint8{8, 8, 8, 7})))
}

func TestSparseBinary(Te *testing.T) {
	T := testTable(Te)
	var b bytes.Buffer
	require.NoError(Te, WriteSparse(&b, T))
	assert.Equal(Te, 400*4+2*10*8+3*8, b.Len())
	name := filepath.Join(Te.TempDir(), "ff.bin64")
	require.NoError(Te, os.WriteFile(name, b.Bytes(), 0o644))
	T2, err := SparseFile(name)
	require.NoError(Te, err)
	assert.Equal(Te, 2, T2.Len())
	assert.Equal(Te, T.Entry(0, 10), T2.Entry(0, 10))
	assert.Equal(Te, T.Entry(19, 3), T2.Entry(19, 3))
	assert.Nil(Te, T2.Entry(10, 0))

	//trailing data
	_, err = ParseSparse(bytes.NewReader(append(b.Bytes(), 0)))
	assert.True(Te, errors.Is(err, ErrFormat))
	//truncated
	_, err = ParseSparse(bytes.NewReader(b.Bytes()[:b.Len()-3]))
	assert.Equal(Te, ConfigError, KindOf(err))
	//a count other than 0 or 1
	bad := append([]byte(nil), b.Bytes()...)
	bad[0] = 2
	_, err = ParseSparse(bytes.NewReader(bad))
	assert.True(Te, errors.Is(err, ErrFormat))
}

func TestSparseValidate(Te *testing.T) {
	T := new(SparseTable)
	e := testEntry()
	e.Step = 0
	assert.Error(Te, T.Set(0, 0, e))
	e = testEntry()
	e.R1 = 6
	assert.Error(Te, T.Set(0, 0, e))
	e = testEntry()
	e.Bins[NewBinKey([4]uint8{20, 0, 0, 0})] = 1
	assert.Error(Te, T.Set(0, 0, e))
	e = testEntry()
	e.Step = 0.01
	assert.Error(Te, T.Set(0, 0, e))
	assert.Error(Te, T.Set(20, 0, testEntry()))
	assert.Equal(Te, 0, T.Len())
}

func TestSparseText(Te *testing.T) {
	T := testTable(Te)
	var b bytes.Buffer
	require.NoError(Te, WriteSparseText(&b, T))
	assert.True(Te, strings.HasPrefix(b.String(), "ALA LEU 3 5 0.02 0.01 0.1 0 10 0.5 100\n2 3 4 5 5.5\n8 8 8 8 20\n"))
	T2, err := ReadSparseText(strings.NewReader("# converted\n\n" + b.String()))
	require.NoError(Te, err)
	assert.Equal(Te, T.Entry(0, 10), T2.Entry(0, 10))
	assert.Equal(Te, T.Entry(19, 3), T2.Entry(19, 3))

	_, err = ReadSparseText(strings.NewReader("1 2 3 4 5\n"))
	assert.True(Te, errors.Is(err, ErrFormat))
	_, err = ReadSparseText(strings.NewReader("ALA XXX 3 5 0.02 0.01 0.1 0 10 0.5 100\n"))
	assert.True(Te, errors.Is(err, ErrFormat))
	_, err = ReadSparseText(strings.NewReader("ALA\n"))
	assert.True(Te, errors.Is(err, ErrFormat))
}
