/*
 * gocoords.go, part of interaph.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package v3

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const appzero float64 = 0.000000000001 //used to correct floating point
//errors. Everything equal or less than this is considered zero.

// Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//METHODS

// NVecs returns the number of vecs in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

// String returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r, c := F.Dims()
	v := make([]string, r+2)
	v[0] = "\n["
	v[len(v)-1] = " ]"
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, F.Dense)
		if i == 0 {
			v[i+1] = fmt.Sprintf("%6.2f %6.2f %6.2f\n", row[0], row[1], row[2])
			continue
		} else if i == r-1 {
			v[i+1] = fmt.Sprintf(" %6.2f %6.2f %6.2f", row[0], row[1], row[2])
			continue
		} else {
			v[i+1] = fmt.Sprintf(" %6.2f %6.2f %6.2f\n", row[0], row[1], row[2])
		}
	}
	v[len(v)-2] = strings.Replace(v[len(v)-2], "\n", "", 1)
	return strings.Join(v, "")
}

// Centroid puts in the receiver (a 1x3 matrix) the weighted average of the
// vectors of A whose indexes are in clist. A nil weights slice means all
// weights are 1. weights, if given, must be as long as clist.
func (F *Matrix) Centroid(A *Matrix, clist []int, weights []float64) {
	if len(clist) == 0 {
		panic(ErrShape)
	}
	if weights != nil && len(weights) != len(clist) {
		panic(ErrShape)
	}
	f := F.RawRowView(0)
	f[0], f[1], f[2] = 0, 0, 0
	var tot float64
	for k, i := range clist {
		w := 1.0
		if weights != nil {
			w = weights[k]
		}
		floats.AddScaled(f, w, A.RawRowView(i))
		tot += w
	}
	if tot <= appzero {
		panic(ErrShape)
	}
	floats.Scale(1/tot, f)
}

// Distance returns the euclidean distance between vector i of A and vector j of B.
// It doesn't allocate.
func Distance(A *Matrix, i int, B *Matrix, j int) float64 {
	a := A.RawRowView(i)
	b := B.RawRowView(j)
	return floats.Distance(a, b, 2)
}

// MinDistance returns the shortest distance between any vector of A with index
// in alist and any vector of B with index in blist. It returns +Inf if either list is empty.
func MinDistance(A *Matrix, alist []int, B *Matrix, blist []int) float64 {
	min := math.Inf(1)
	for _, i := range alist {
		a := A.RawRowView(i)
		for _, j := range blist {
			d := floats.Distance(a, B.RawRowView(j), 2)
			if d < min {
				min = d
			}
		}
	}
	return min
}

// Angle returns the angle in radians between the vectors from b to a and
// from b to c, where a, b and c are vector indexes of A.
func Angle(A *Matrix, a, b, c int) float64 {
	va := A.RawRowView(a)
	vb := A.RawRowView(b)
	vc := A.RawRowView(c)
	var u, w [3]float64
	floats.SubTo(u[:], va, vb)
	floats.SubTo(w[:], vc, vb)
	nu := floats.Norm(u[:], 2)
	nw := floats.Norm(w[:], 2)
	if nu <= appzero || nw <= appzero {
		return 0
	}
	cos := floats.Dot(u[:], w[:]) / (nu * nw)
	//floating point may put us slightly out of the domain of Acos.
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}
